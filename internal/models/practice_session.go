package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PracticeStatus string

const (
	StatusQueued     PracticeStatus = "queued"
	StatusProcessing PracticeStatus = "processing"
	StatusCompleted  PracticeStatus = "completed"
	StatusFailed     PracticeStatus = "failed"
)

// PracticeSession is one recorded answer to one interview question together
// with the feedback generated for it.
type PracticeSession struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Question         string         `gorm:"type:text;not null" json:"question"`
	Status           PracticeStatus `gorm:"type:varchar(20);not null;default:'queued'" json:"status"`
	AudioPath        string         `gorm:"type:text" json:"-"`
	AudioURL         *string        `gorm:"type:varchar(512)" json:"audio_url,omitempty"`
	Transcription    *string        `gorm:"type:text" json:"transcription,omitempty"`
	DurationSeconds  *float64       `json:"audio_duration_seconds,omitempty"`
	WordsPerMinute   *float64       `json:"words_per_minute,omitempty"`
	OverallScore     *float64       `json:"overall_score,omitempty"`
	ScoresJSON       *string        `gorm:"type:text" json:"-"`
	TutoringPlanJSON *string        `gorm:"type:text" json:"-"`
	ErrorMessage     *string        `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (PracticeSession) TableName() string {
	return "practice_sessions"
}

func (p *PracticeSession) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = StatusQueued
	}
	return nil
}
