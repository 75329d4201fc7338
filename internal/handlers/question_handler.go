package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"elevateu/hr-coach/internal/models"
	"elevateu/hr-coach/internal/repositories"
	"elevateu/hr-coach/internal/services"
)

type QuestionHandler struct {
	questionRepo repositories.QuestionRepository
	questionBank services.QuestionBankService
}

func NewQuestionHandler(questionRepo repositories.QuestionRepository, questionBank services.QuestionBankService) *QuestionHandler {
	return &QuestionHandler{
		questionRepo: questionRepo,
		questionBank: questionBank,
	}
}

// HandleList handles GET /questions
func (h *QuestionHandler) HandleList(c *fiber.Ctx) error {
	questions, err := h.questionRepo.List(strings.TrimSpace(c.Query("category")))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load questions",
		})
	}

	return c.JSON(fiber.Map{
		"questions": questions,
	})
}

// HandleRandom handles GET /questions/random
func (h *QuestionHandler) HandleRandom(c *fiber.Ctx) error {
	question, err := h.questionRepo.Random()
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "The question bank is empty",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load a question",
		})
	}

	return c.JSON(question)
}

// HandleCreate handles POST /questions
func (h *QuestionHandler) HandleCreate(c *fiber.Ctx) error {
	var req models.QuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	req.QuestionText = strings.TrimSpace(req.QuestionText)
	if req.QuestionText == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "question_text is required",
		})
	}
	if len(req.QuestionText) > 255 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "question_text must be at most 255 characters",
		})
	}

	question := &models.QuestionBank{
		QuestionText: req.QuestionText,
		ModelAnswer:  strings.TrimSpace(req.ModelAnswer),
		Category:     strings.TrimSpace(req.Category),
	}
	if err := h.questionBank.Add(c.UserContext(), question); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save question",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(question)
}

// HandleDelete handles DELETE /questions/:id
func (h *QuestionHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid question ID format",
		})
	}

	if err := h.questionBank.Remove(c.UserContext(), id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Question not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete question",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
