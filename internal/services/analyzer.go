package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"

	"elevateu/hr-coach/internal/models"
	"elevateu/hr-coach/internal/repositories"
)

const (
	minTranscriptChars = 3

	msgTranscriptionFailed = "Transcription failed. The audio might be silent or in an unsupported format."
	msgTranscriptTooShort  = "Transcription is too short to analyze. Please provide a more detailed response."
	msgFeedbackFailed      = "Failed to get structured feedback from the AI coach. The model returned an invalid response that could not be parsed."
)

// AnswerAnalyzer scores one recorded practice answer end to end.
type AnswerAnalyzer interface {
	AnalyzePracticeSession(ctx context.Context, sessionID uuid.UUID) error
}

type answerAnalyzer struct {
	sessionRepo   repositories.PracticeSessionRepository
	audio         AudioProcessor
	transcriber   Transcriber
	gemini        GeminiService
	questionBank  QuestionBankService
	storage       StorageService
	promptBuilder *PromptBuilder
	maxRetries    int
}

func NewAnswerAnalyzer(
	sessionRepo repositories.PracticeSessionRepository,
	audio AudioProcessor,
	transcriber Transcriber,
	gemini GeminiService,
	questionBank QuestionBankService,
	storage StorageService,
	maxRetries int,
) AnswerAnalyzer {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &answerAnalyzer{
		sessionRepo:   sessionRepo,
		audio:         audio,
		transcriber:   transcriber,
		gemini:        gemini,
		questionBank:  questionBank,
		storage:       storage,
		promptBuilder: NewPromptBuilder(),
		maxRetries:    maxRetries,
	}
}

func (a *answerAnalyzer) AnalyzePracticeSession(ctx context.Context, sessionID uuid.UUID) error {
	if err := a.sessionRepo.UpdateStatus(sessionID, models.StatusProcessing); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	log.Printf("🔄 Starting answer analysis for practice session: %s\n", sessionID)

	session, err := a.sessionRepo.FindByID(sessionID)
	if err != nil {
		a.fail(sessionID, err.Error())
		return fmt.Errorf("failed to get practice session: %w", err)
	}

	// Step 1: Make a playable MP3 and measure the recording
	log.Println("🎧 Converting recording to MP3...")
	playbackPath, duration := a.preparePlayback(session.AudioPath)
	if playbackPath != session.AudioPath {
		// The upload is only needed for transcription once the MP3 exists.
		defer a.removeOriginal(session.AudioPath)
	}
	audioURL := a.storage.PublicURL(playbackPath)
	if err := a.sessionRepo.UpdateAudio(sessionID, audioURL); err != nil {
		log.Printf("⚠️  Failed to store audio URL: %v\n", err)
	}

	// Step 2: Transcribe the original recording
	log.Println("🎙️  Transcribing answer...")
	transcript, err := a.transcriber.Transcribe(ctx, session.AudioPath)
	if err != nil {
		a.fail(sessionID, msgTranscriptionFailed)
		return fmt.Errorf("failed to transcribe: %w", err)
	}

	if len(strings.TrimSpace(transcript)) < minTranscriptChars {
		a.fail(sessionID, msgTranscriptTooShort)
		return fmt.Errorf("transcription too short: %q", transcript)
	}

	// Step 3: Calibrate against the question bank (best effort)
	reference, err := a.questionBank.ReferenceAnswer(ctx, session.Question)
	if err != nil {
		log.Printf("⚠️  Warning: Failed to retrieve reference answer: %v\n", err)
		reference = ""
	}

	// Step 4: Score with the LLM
	log.Println("🤖 Scoring answer with LLM...")
	feedback, err := a.scoreAnswer(ctx, transcript, session.Question, duration, reference)
	if err != nil {
		a.fail(sessionID, msgFeedbackFailed)
		return fmt.Errorf("failed to score answer: %w", err)
	}

	// Step 5: Save results
	log.Println("💾 Saving practice feedback...")
	scoresJSON, err := json.Marshal(feedback.Scores)
	if err != nil {
		return fmt.Errorf("failed to encode scores: %w", err)
	}
	planJSON, err := json.Marshal(feedback.TutoringPlan)
	if err != nil {
		return fmt.Errorf("failed to encode tutoring plan: %w", err)
	}
	scores := string(scoresJSON)
	plan := string(planJSON)

	updateData := &repositories.PracticeUpdateData{
		Transcription:    &feedback.Transcription,
		AudioURL:         &audioURL,
		DurationSeconds:  &feedback.AudioDurationSeconds,
		WordsPerMinute:   &feedback.WordsPerMinute,
		OverallScore:     &feedback.OverallScore,
		ScoresJSON:       &scores,
		TutoringPlanJSON: &plan,
	}
	if err := a.sessionRepo.UpdateResult(sessionID, updateData); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}

	log.Printf("✅ Answer analysis completed for practice session: %s\n", sessionID)
	return nil
}

// preparePlayback converts the upload to MP3 and probes its duration. When
// conversion fails the original upload is kept for playback and probed
// instead.
func (a *answerAnalyzer) preparePlayback(original string) (string, float64) {
	mp3Path, err := a.audio.ConvertToMP3(original)
	if err != nil {
		log.Printf("⚠️  MP3 conversion failed, falling back to original audio: %v\n", err)
		return original, a.audio.ProbeDuration(original)
	}
	return mp3Path, a.audio.ProbeDuration(mp3Path)
}

func (a *answerAnalyzer) scoreAnswer(ctx context.Context, transcript, question string, duration float64, reference string) (*models.AnswerFeedback, error) {
	prompt := a.promptBuilder.BuildAnswerAnalysisPrompt(transcript, question, duration, reference)
	log.Printf("📝 Answer analysis prompt length: %d characters", len(prompt))

	var (
		feedback models.AnswerFeedback
		lastErr  error
	)
	for attempt := 1; attempt <= a.maxRetries; attempt++ {
		feedback = models.AnswerFeedback{}
		lastErr = a.gemini.GenerateJSON(ctx, prompt, AnswerFeedbackSchema(), 0.3, &feedback)
		if lastErr == nil {
			break
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
		}
		log.Printf("⚠️ Attempt %d failed: %v", attempt, lastErr)
	}
	if lastErr != nil {
		return nil, fmt.Errorf("failed after %d attempts: %w", a.maxRetries, lastErr)
	}

	NormalizeFeedback(&feedback, transcript, duration)
	return &feedback, nil
}

// NormalizeFeedback overwrites the measured fields of a model answer with the
// values computed server side, and blanks the speaking-rate metric when the
// recording length is unknown.
func NormalizeFeedback(feedback *models.AnswerFeedback, transcript string, duration float64) {
	feedback.Transcription = transcript
	feedback.AudioDurationSeconds = duration
	feedback.WordsPerMinute = WordsPerMinute(transcript, duration)

	if duration <= 0 {
		feedback.Scores.SpeakingRateAppropriateness = models.MetricScore{Score: 0, Explanation: "N/A"}
		feedback.TutoringPlan.SpeakingRateAppropriateness = models.TutoringAdvice{
			WhatYouDidWell:      "N/A",
			AreasForImprovement: "N/A",
			HowToPractice:       "N/A",
		}
	}
}

func (a *answerAnalyzer) fail(sessionID uuid.UUID, msg string) {
	if err := a.sessionRepo.UpdateError(sessionID, msg); err != nil {
		log.Printf("❌ Failed to record error for %s: %v\n", sessionID, err)
	}
}

func (a *answerAnalyzer) removeOriginal(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("⚠️  Failed to clean up original recording %s: %v\n", path, err)
		return
	}
	log.Printf("🧹 Cleaned up original recording: %s\n", path)
}
