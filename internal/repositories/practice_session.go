package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"elevateu/hr-coach/internal/models"
)

type PracticeSessionRepository interface {
	Create(session *models.PracticeSession) error
	FindByID(id uuid.UUID) (*models.PracticeSession, error)
	FindByUser(userID uuid.UUID, limit int) ([]models.PracticeSession, error)
	UpdateStatus(id uuid.UUID, status models.PracticeStatus) error
	UpdateAudio(id uuid.UUID, audioURL string) error
	UpdateResult(id uuid.UUID, result *PracticeUpdateData) error
	UpdateError(id uuid.UUID, errorMsg string) error
	FindPendingJobs(limit int) ([]models.PracticeSession, error)
}

type PracticeUpdateData struct {
	Transcription    *string
	AudioURL         *string
	DurationSeconds  *float64
	WordsPerMinute   *float64
	OverallScore     *float64
	ScoresJSON       *string
	TutoringPlanJSON *string
}

type practiceSessionRepository struct {
	db *gorm.DB
}

func NewPracticeSessionRepository(db *gorm.DB) PracticeSessionRepository {
	return &practiceSessionRepository{db: db}
}

func (r *practiceSessionRepository) Create(session *models.PracticeSession) error {
	if err := r.db.Create(session).Error; err != nil {
		return fmt.Errorf("failed to create practice session: %w", err)
	}
	return nil
}

func (r *practiceSessionRepository) FindByID(id uuid.UUID) (*models.PracticeSession, error) {
	var session models.PracticeSession
	if err := r.db.Where("id = ?", id).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("practice session not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find practice session: %w", err)
	}
	return &session, nil
}

func (r *practiceSessionRepository) FindByUser(userID uuid.UUID, limit int) ([]models.PracticeSession, error) {
	var sessions []models.PracticeSession
	query := r.db.Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("failed to list practice sessions: %w", err)
	}
	return sessions, nil
}

func (r *practiceSessionRepository) UpdateStatus(id uuid.UUID, status models.PracticeStatus) error {
	return r.update(id, map[string]interface{}{
		"status": status,
	}, "status")
}

func (r *practiceSessionRepository) UpdateAudio(id uuid.UUID, audioURL string) error {
	return r.update(id, map[string]interface{}{
		"audio_url": audioURL,
	}, "audio")
}

func (r *practiceSessionRepository) UpdateResult(id uuid.UUID, data *PracticeUpdateData) error {
	updates := map[string]interface{}{
		"status": models.StatusCompleted,
	}

	if data.Transcription != nil {
		updates["transcription"] = *data.Transcription
	}
	if data.AudioURL != nil {
		updates["audio_url"] = *data.AudioURL
	}
	if data.DurationSeconds != nil {
		updates["duration_seconds"] = *data.DurationSeconds
	}
	if data.WordsPerMinute != nil {
		updates["words_per_minute"] = *data.WordsPerMinute
	}
	if data.OverallScore != nil {
		updates["overall_score"] = *data.OverallScore
	}
	if data.ScoresJSON != nil {
		updates["scores_json"] = *data.ScoresJSON
	}
	if data.TutoringPlanJSON != nil {
		updates["tutoring_plan_json"] = *data.TutoringPlanJSON
	}

	return r.update(id, updates, "result")
}

func (r *practiceSessionRepository) UpdateError(id uuid.UUID, errorMsg string) error {
	return r.update(id, map[string]interface{}{
		"status":        models.StatusFailed,
		"error_message": errorMsg,
	}, "error")
}

func (r *practiceSessionRepository) FindPendingJobs(limit int) ([]models.PracticeSession, error) {
	var sessions []models.PracticeSession
	err := r.db.
		Where("status = ?", models.StatusQueued).
		Order("created_at ASC").
		Limit(limit).
		Find(&sessions).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find pending jobs: %w", err)
	}

	return sessions, nil
}

func (r *practiceSessionRepository) update(id uuid.UUID, updates map[string]interface{}, what string) error {
	updates["updated_at"] = time.Now()

	result := r.db.Model(&models.PracticeSession{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to update %s: %w", what, result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("practice session not found: %w", ErrNotFound)
	}

	return nil
}
