package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuestionBank struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuestionText string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"question_text"`
	ModelAnswer  string    `gorm:"type:text;not null" json:"model_answer"`
	Category     string    `gorm:"type:varchar(50)" json:"category,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (QuestionBank) TableName() string {
	return "question_bank"
}

func (q *QuestionBank) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}
