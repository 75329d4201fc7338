package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"elevateu/hr-coach/internal/middleware"
	"elevateu/hr-coach/internal/models"
	"elevateu/hr-coach/internal/repositories"
	"elevateu/hr-coach/internal/services"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

type PracticeHandler struct {
	sessionRepo    repositories.PracticeSessionRepository
	storageService services.StorageService
	worker         services.Worker
	maxFileSize    int64
}

func NewPracticeHandler(
	sessionRepo repositories.PracticeSessionRepository,
	storageService services.StorageService,
	worker services.Worker,
	maxFileSize int64,
) *PracticeHandler {
	return &PracticeHandler{
		sessionRepo:    sessionRepo,
		storageService: storageService,
		worker:         worker,
		maxFileSize:    maxFileSize,
	}
}

// HandleAnalyze handles POST /practice/analyze. A nil worker means no model
// is configured and uploads are refused.
func (h *PracticeHandler) HandleAnalyze(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}
	if h.worker == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Answer analysis is not available: the AI model is not configured.",
		})
	}

	audioFile, err := c.FormFile("audioFile")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No audio file part in the request",
		})
	}
	if audioFile.Filename == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No selected audio file",
		})
	}

	question := strings.TrimSpace(c.FormValue("interviewQuestion"))
	if question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No interview question provided.",
		})
	}

	if audioFile.Size > h.maxFileSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("Audio file too large. Max size: %d bytes", h.maxFileSize),
		})
	}
	if !services.AllowedAudioExtensions[strings.ToLower(filepath.Ext(audioFile.Filename))] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unsupported audio format. Please upload webm, mp3, wav, m4a or ogg.",
		})
	}

	// Save file
	filename, filePath, err := h.storageService.SaveFile(audioFile, "answer")
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("failed to save audio file: %v", err),
		})
	}

	session := &models.PracticeSession{
		UserID:    userID,
		Question:  question,
		Status:    models.StatusQueued,
		AudioPath: filePath,
	}
	if err := h.sessionRepo.Create(session); err != nil {
		// Cleanup uploaded file if database insert fails
		if delErr := h.storageService.DeleteFile(filename); delErr != nil {
			log.Printf("⚠️  %v", delErr)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create practice session",
		})
	}

	// Enqueue job to worker
	h.worker.EnqueueJob(session.ID)

	return c.Status(fiber.StatusAccepted).JSON(models.AnalyzeResponse{
		ID:     session.ID.String(),
		Status: string(models.StatusQueued),
	})
}

// HandleGetResult handles GET /practice/:id
func (h *PracticeHandler) HandleGetResult(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid practice session ID format",
		})
	}

	session, err := h.sessionRepo.FindByID(sessionID)
	if err != nil || session.UserID != userID {
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to load practice session",
			})
		}
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Practice session not found",
		})
	}

	return c.JSON(buildPracticeResult(session))
}

// HandleList handles GET /practice
func (h *PracticeHandler) HandleList(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	limit := c.QueryInt("limit", defaultHistoryLimit)
	if limit <= 0 || limit > maxHistoryLimit {
		limit = defaultHistoryLimit
	}

	sessions, err := h.sessionRepo.FindByUser(userID, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load practice history",
		})
	}

	results := make([]models.PracticeResultResponse, 0, len(sessions))
	for i := range sessions {
		results = append(results, buildPracticeResult(&sessions[i]))
	}

	return c.JSON(fiber.Map{
		"sessions": results,
	})
}

func buildPracticeResult(session *models.PracticeSession) models.PracticeResultResponse {
	response := models.PracticeResultResponse{
		ID:       session.ID.String(),
		Status:   string(session.Status),
		Question: session.Question,
	}

	// If completed, include results
	if session.Status == models.StatusCompleted {
		feedback := &models.PracticeFeedback{Question: session.Question}
		if session.OverallScore != nil {
			feedback.OverallScore = *session.OverallScore
		}
		if session.Transcription != nil {
			feedback.Transcription = *session.Transcription
		}
		if session.DurationSeconds != nil {
			feedback.AudioDurationSeconds = *session.DurationSeconds
		}
		if session.WordsPerMinute != nil {
			feedback.WordsPerMinute = *session.WordsPerMinute
		}
		if session.AudioURL != nil {
			feedback.AudioURL = *session.AudioURL
		}
		if session.ScoresJSON != nil {
			if err := json.Unmarshal([]byte(*session.ScoresJSON), &feedback.Scores); err != nil {
				log.Printf("⚠️  Corrupt scores for practice session %s: %v", session.ID, err)
			}
		}
		if session.TutoringPlanJSON != nil {
			if err := json.Unmarshal([]byte(*session.TutoringPlanJSON), &feedback.TutoringPlan); err != nil {
				log.Printf("⚠️  Corrupt tutoring plan for practice session %s: %v", session.ID, err)
			}
		}
		response.Result = feedback
	}

	// If failed, include error message
	if session.Status == models.StatusFailed && session.ErrorMessage != nil {
		response.ErrorMessage = session.ErrorMessage
	}

	return response
}
