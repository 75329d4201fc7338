package services

import (
	"context"
	"fmt"

	"elevateu/hr-coach/internal/models"
)

// InterviewCoach produces the interviewer's side of a live mock interview and
// the review once it is over.
type InterviewCoach interface {
	Reply(ctx context.Context, resumeText string, history []models.Turn, message string) (string, error)
	Analyze(ctx context.Context, metrics models.ConversationMetrics, history []models.Turn, resumeText string) (string, error)
}

type geminiCoach struct {
	gemini             GeminiService
	promptBuilder      *PromptBuilder
	maxAnalysisContext int
}

func NewInterviewCoach(gemini GeminiService, maxAnalysisContext int) InterviewCoach {
	return &geminiCoach{
		gemini:             gemini,
		promptBuilder:      NewPromptBuilder(),
		maxAnalysisContext: maxAnalysisContext,
	}
}

// Reply implements InterviewCoach. history holds the turns before message.
func (c *geminiCoach) Reply(ctx context.Context, resumeText string, history []models.Turn, message string) (string, error) {
	turns := ChatHistory(c.promptBuilder, resumeText, history)

	reply, err := c.gemini.GenerateChat(ctx, InterviewSystemPrompt, turns, message)
	if err != nil {
		return "", fmt.Errorf("failed to generate interview reply: %w", err)
	}
	return reply, nil
}

// Analyze implements InterviewCoach.
func (c *geminiCoach) Analyze(ctx context.Context, metrics models.ConversationMetrics, history []models.Turn, resumeText string) (string, error) {
	prompt := c.promptBuilder.BuildLiveAnalysisPrompt(metrics, history, resumeText, c.maxAnalysisContext)

	analysis, err := c.gemini.GenerateChat(ctx, AnalysisSystemPrompt, nil, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate interview analysis: %w", err)
	}
	return analysis, nil
}

// ChatHistory maps interview turns onto model chat roles, prefixed by the
// resume preamble and its acknowledgement when a resume is present.
func ChatHistory(pb *PromptBuilder, resumeText string, history []models.Turn) []ChatTurn {
	turns := make([]ChatTurn, 0, len(history)+2)
	if resumeText != "" {
		turns = append(turns,
			ChatTurn{Role: RoleUser, Text: pb.BuildResumePreamble(resumeText)},
			ChatTurn{Role: RoleModel, Text: ResumeAcknowledgement},
		)
	}
	for _, turn := range history {
		role := RoleModel
		if turn.Speaker == models.SpeakerUser {
			role = RoleUser
		}
		turns = append(turns, ChatTurn{Role: role, Text: turn.Text})
	}
	return turns
}
