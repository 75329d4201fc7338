package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"elevateu/hr-coach/internal/models"
)

type QuestionRepository interface {
	Create(question *models.QuestionBank) error
	Upsert(question *models.QuestionBank) error
	FindByID(id uuid.UUID) (*models.QuestionBank, error)
	List(category string) ([]models.QuestionBank, error)
	Random() (*models.QuestionBank, error)
	Delete(id uuid.UUID) error
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) Create(question *models.QuestionBank) error {
	if err := r.db.Create(question).Error; err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}
	return nil
}

// Upsert inserts the question or, when the question text already exists,
// refreshes its model answer and category. The stored row is loaded back into
// question so callers see the persisted ID.
func (r *questionRepository) Upsert(question *models.QuestionBank) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "question_text"}},
		DoUpdates: clause.AssignmentColumns([]string{"model_answer", "category", "updated_at"}),
	}).Create(question).Error
	if err != nil {
		return fmt.Errorf("failed to upsert question: %w", err)
	}

	var stored models.QuestionBank
	if err := r.db.Where("question_text = ?", question.QuestionText).First(&stored).Error; err != nil {
		return fmt.Errorf("failed to reload question: %w", err)
	}
	*question = stored
	return nil
}

func (r *questionRepository) FindByID(id uuid.UUID) (*models.QuestionBank, error) {
	var question models.QuestionBank
	if err := r.db.Where("id = ?", id).First(&question).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("question not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find question: %w", err)
	}
	return &question, nil
}

func (r *questionRepository) List(category string) ([]models.QuestionBank, error) {
	var questions []models.QuestionBank
	query := r.db.Order("question_text ASC")
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if err := query.Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, nil
}

func (r *questionRepository) Random() (*models.QuestionBank, error) {
	var question models.QuestionBank
	// RANDOM() is understood by both Postgres and SQLite.
	if err := r.db.Order("RANDOM()").Take(&question).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("question bank is empty: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to pick question: %w", err)
	}
	return &question, nil
}

func (r *questionRepository) Delete(id uuid.UUID) error {
	result := r.db.Where("id = ?", id).Delete(&models.QuestionBank{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete question: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("question not found: %w", ErrNotFound)
	}
	return nil
}
