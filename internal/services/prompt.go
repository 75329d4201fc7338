package services

import (
	"fmt"
	"strings"

	"google.golang.org/genai"

	"elevateu/hr-coach/internal/models"
)

// InterviewSystemPrompt sets the persona and reply structure of the live
// interview coach.
const InterviewSystemPrompt = `You are 'Eva', an expert AI HR Interview Coach. Your primary goal is to conduct a realistic, challenging, yet encouraging mock interview to help the user practice and improve.

**Your Persona:**
- Professional, insightful, and encouraging.
- You are an experienced HR manager.
- You keep the conversation flowing naturally.

**Core Instructions:**
1.  **Two-Part Response Structure:** For EVERY user answer, you MUST follow this structure:
    - **Part 1: Feedback (1-2 sentences):** Provide concise, constructive feedback on their previous answer. Start by mentioning one positive aspect, then suggest one specific area for improvement.
    - **Part 2: Next Question (1 sentence):** Seamlessly ask the next logical interview question.
2.  **Maintain the Flow:** Ask a variety of common questions (behavioral, situational, etc.). Do not ask for code.
3.  **Stay in Character:** NEVER break character. DO NOT mention you are an AI, a language model, or a bot.
4.  **Be Concise:** Keep your feedback and questions brief and to the point. Avoid long paragraphs.`

// AnalysisSystemPrompt is used when reviewing a finished live interview.
const AnalysisSystemPrompt = `You are 'Eva', an expert AI HR Interview Coach, now in analysis mode. Your task is to provide a comprehensive and constructive performance review of the user's mock interview based on the provided metrics and conversation history.

**Your Persona:**
- Professional, insightful, and encouraging.
- You are an experienced HR manager providing post-interview feedback.

**Core Instructions:**
1.  **Structure:** Provide your analysis in clear, well-formatted Markdown. Use headings, bullet points, and bold text for readability.
2.  **Key Areas to Cover:**
    * **Overall Performance:** A brief summary of their interview.
    * **Communication Style:** Comment on clarity, conciseness, and confidence (inferred from word counts, response times).
    * **Content & Relevance:** How well did their answers address the questions? Did they use the resume effectively (if provided)?
    * **Engagement & Flow:** Comment on their response latency (too fast/slow?), turn-taking.
    * **Strengths:** Highlight 2-3 specific positive aspects.
    * **Areas for Improvement:** Suggest 2-3 actionable areas for improvement.
    * **Next Steps:** Encourage further practice.
3.  **Use Metrics:** Refer to the provided numerical metrics (e.g., "Your average response time was X seconds," "You spoke Y words").
4.  **Reference Conversation:** Briefly refer to specific examples from the chat history if relevant to illustrate points.
5.  **Be Encouraging:** Maintain a positive and supportive tone, even when giving constructive criticism.
6.  **Conciseness:** While comprehensive, avoid overly long paragraphs. Get straight to the point.
7.  **No Interview Questions:** Do NOT ask any interview questions in this analysis. This is a review, not a continuation of the interview.`

// ResumeAcknowledgement is the model turn that follows the resume preamble.
const ResumeAcknowledgement = "Understood. I will integrate the provided resume content into the interview questions and feedback."

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildResumePreamble introduces the candidate's resume ahead of the
// conversation so questions can be tailored to it.
func (pb *PromptBuilder) BuildResumePreamble(resumeText string) string {
	return fmt.Sprintf("The user has provided the following resume content. Please use this information to tailor your questions and feedback, making the interview more personalized:\n\n---\n%s\n---\n", resumeText)
}

// BuildAnswerAnalysisPrompt creates the prompt for scoring one recorded answer.
func (pb *PromptBuilder) BuildAnswerAnalysisPrompt(transcript, question string, durationSeconds float64, referenceAnswer string) string {
	wpmInfo := ""
	if durationSeconds > 0 {
		minutes := durationSeconds / 60
		wpmInfo = fmt.Sprintf("\n\n- The audio duration was %.2f seconds (%.2f minutes), and the text contains %d words, resulting in a speaking rate of %.2f Words Per Minute (WPM).",
			durationSeconds, minutes, WordCount(transcript), WordsPerMinute(transcript, durationSeconds))
	}

	reference := ""
	if strings.TrimSpace(referenceAnswer) != "" {
		reference = fmt.Sprintf("\n\n**Reference Answer From Our Question Bank (for calibration only, do not expect a verbatim match):**\n\"%s\"", strings.TrimSpace(referenceAnswer))
	}

	return fmt.Sprintf(`You are an expert AI HR Interview Coach and Tutor. Your goal is to provide comprehensive, actionable feedback for a candidate's interview response.

Analyze the following transcribed response in the context of the **given interview question**.
Evaluate the response based on clarity, relevance, confidence, fluency, and speaking rate.
Provide a detailed tutoring plan with what the candidate did well, areas for improvement, and how to practice for each metric.

---
**Candidate Response Analysis**

**Interview Question:**
"%s"

**Candidate's Transcribed Response:**
"%s"%s%s
---

Your response must be a JSON object that strictly adheres to the provided schema.
Score every metric out of 10 and calculate an overall score out of 10 based on all metrics.
If WPM information is not available (i.e., audio duration is 0 or not provided), set the speakingRateAppropriateness score to 0 and its explanations to "N/A".`,
		question, transcript, wpmInfo, reference)
}

// BuildLiveAnalysisPrompt assembles the post-interview review request from
// client metrics, the retained conversation and the optional resume. Resume
// and conversation are each capped at maxContextChars; the conversation keeps
// its most recent part.
func (pb *PromptBuilder) BuildLiveAnalysisPrompt(metrics models.ConversationMetrics, history []models.Turn, resumeText string, maxContextChars int) string {
	var b strings.Builder

	b.WriteString("Please analyze the following mock interview performance metrics and conversation history.\n")
	b.WriteString("Provide a constructive and comprehensive review, highlighting strengths and areas for improvement.\n")
	b.WriteString("Format your response in Markdown, using headings, bullet points, and bold text.\n\n")
	b.WriteString("---\n**Interview Metrics:**\n")
	fmt.Fprintf(&b, "- Total Duration: %.2f seconds\n", metrics.TotalDurationMs/1000)
	fmt.Fprintf(&b, "- User Turns: %d\n", metrics.UserTurns)
	fmt.Fprintf(&b, "- AI Turns: %d\n", metrics.AITurns)
	fmt.Fprintf(&b, "- User Total Words: %d\n", metrics.UserWordCount)
	fmt.Fprintf(&b, "- AI Total Words: %d\n", metrics.AIWordCount)
	fmt.Fprintf(&b, "- Average User Response Latency (from AI speech end to user input start): %s\n", formatAverageMs(metrics.UserResponseLatenciesMs))
	fmt.Fprintf(&b, "- Average AI Response Latency (from user input end to AI response start): %s\n", formatAverageMs(metrics.AIResponseLatenciesMs))
	b.WriteString("---\n")

	if resumeText != "" {
		b.WriteString("\n**Provided Resume Content:**\n```\n")
		b.WriteString(TruncateRunes(resumeText, maxContextChars, "\n... (truncated)"))
		b.WriteString("\n```\n---\n")
	}

	b.WriteString("\n**Conversation History (User vs. AI Coach):**\n```\n")
	var transcript strings.Builder
	for _, turn := range history {
		fmt.Fprintf(&transcript, "%s: %s\n", turn.Speaker, turn.Text)
	}
	b.WriteString(tailRunes(transcript.String(), maxContextChars))
	b.WriteString("```\n---\n\nPlease provide your detailed analysis below:\n")

	return b.String()
}

func formatAverageMs(values []float64) string {
	if len(values) == 0 {
		return "N/A"
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return fmt.Sprintf("%.2f ms", sum/float64(len(values)))
}

func tailRunes(text string, limit int) string {
	runes := []rune(text)
	if limit <= 0 || len(runes) <= limit {
		return text
	}
	return string(runes[len(runes)-limit:]) + "\n... (truncated for analysis)\n"
}

// AnswerFeedbackSchema is the response contract for BuildAnswerAnalysisPrompt.
func AnswerFeedbackSchema() *genai.Schema {
	scoreProps := map[string]*genai.Schema{}
	planProps := map[string]*genai.Schema{}
	for _, key := range models.MetricKeys {
		scoreProps[key] = &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"score":       {Type: genai.TypeNumber},
				"explanation": {Type: genai.TypeString},
			},
			Required: []string{"score", "explanation"},
		}
		planProps[key] = &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"whatYouDidWell":      {Type: genai.TypeString},
				"areasForImprovement": {Type: genai.TypeString},
				"howToPractice":       {Type: genai.TypeString},
			},
			Required: []string{"whatYouDidWell", "areasForImprovement", "howToPractice"},
		}
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"overallScore":         {Type: genai.TypeNumber},
			"scores":               {Type: genai.TypeObject, Properties: scoreProps, Required: models.MetricKeys},
			"tutoringPlan":         {Type: genai.TypeObject, Properties: planProps, Required: models.MetricKeys},
			"transcription":        {Type: genai.TypeString},
			"audioDurationSeconds": {Type: genai.TypeNumber},
			"wordsPerMinute":       {Type: genai.TypeNumber},
		},
		Required: []string{
			"overallScore", "scores", "tutoringPlan", "transcription",
			"audioDurationSeconds", "wordsPerMinute",
		},
	}
}
