package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"elevateu/hr-coach/internal/models"
	"elevateu/hr-coach/internal/repositories"
)

// minReferenceScore is the cosine similarity above which a bank question is
// treated as the same question the candidate answered.
const minReferenceScore = 0.80

type QuestionBankService interface {
	Add(ctx context.Context, question *models.QuestionBank) error
	Index(ctx context.Context, question *models.QuestionBank) error
	Remove(ctx context.Context, id uuid.UUID) error
	ReferenceAnswer(ctx context.Context, questionText string) (string, error)
}

type questionBankService struct {
	repo   repositories.QuestionRepository
	index  QuestionIndex
	gemini GeminiService
}

// NewQuestionBankService wires the question repository to the vector index.
// index may be nil, in which case questions are only stored in the database
// and no reference answers are found.
func NewQuestionBankService(repo repositories.QuestionRepository, index QuestionIndex, gemini GeminiService) QuestionBankService {
	return &questionBankService{repo: repo, index: index, gemini: gemini}
}

// Add stores the question (replacing the model answer of an existing one with
// the same text) and indexes it.
func (s *questionBankService) Add(ctx context.Context, question *models.QuestionBank) error {
	if err := s.repo.Upsert(question); err != nil {
		return err
	}
	if err := s.Index(ctx, question); err != nil {
		log.Printf("⚠️  Question %s stored but not indexed: %v", question.ID, err)
	}
	return nil
}

func (s *questionBankService) Index(ctx context.Context, question *models.QuestionBank) error {
	if s.index == nil || s.gemini == nil {
		return nil
	}

	embedding, err := s.gemini.GenerateEmbedding(ctx, question.QuestionText)
	if err != nil {
		return fmt.Errorf("failed to embed question: %w", err)
	}
	return s.index.UpsertQuestion(ctx, question.ID, question.QuestionText, question.Category, embedding)
}

// Remove deletes the question and drops it from the index. A stale vector
// is harmless since ReferenceAnswer resolves matches through the database.
func (s *questionBankService) Remove(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	if s.index == nil {
		return nil
	}
	if err := s.index.DeleteQuestion(ctx, id); err != nil {
		log.Printf("⚠️  Question %s deleted but still indexed: %v", id, err)
	}
	return nil
}

// ReferenceAnswer returns the model answer of the closest bank question, or
// "" when nothing is similar enough.
func (s *questionBankService) ReferenceAnswer(ctx context.Context, questionText string) (string, error) {
	if s.index == nil || s.gemini == nil {
		return "", nil
	}

	embedding, err := s.gemini.GenerateEmbedding(ctx, questionText)
	if err != nil {
		return "", fmt.Errorf("failed to generate query embedding: %w", err)
	}

	matches, err := s.index.SearchSimilar(ctx, embedding, 1)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 || matches[0].Score < minReferenceScore {
		return "", nil
	}

	question, err := s.repo.FindByID(matches[0].QuestionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", nil
		}
		return "", err
	}

	log.Printf("📚 Matched question bank entry %q (score %.2f)", question.QuestionText, matches[0].Score)
	return question.ModelAnswer, nil
}
