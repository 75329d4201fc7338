package handlers

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elevateu/hr-coach/internal/middleware"
	"elevateu/hr-coach/internal/repositories"
	"elevateu/hr-coach/internal/services"
)

func newQuestionApp(t *testing.T) (*fiber.App, string) {
	t.Helper()
	db := newTestDB(t)
	tokens := newTestTokens()
	_, token := createTestUser(t, repositories.NewUserRepository(db), tokens, "editor")

	repo := repositories.NewQuestionRepository(db)
	h := NewQuestionHandler(repo, services.NewQuestionBankService(repo, nil, nil))

	app := fiber.New()
	questions := app.Group("/api/v1/questions")
	questions.Get("/", h.HandleList)
	questions.Get("/random", h.HandleRandom)
	questions.Post("/", middleware.RequireAuth(tokens), h.HandleCreate)
	questions.Delete("/:id", middleware.RequireAuth(tokens), h.HandleDelete)
	return app, token
}

func TestQuestionHandler_CreateListRandom(t *testing.T) {
	app, token := newQuestionApp(t)

	resp, body := doJSON(t, app, "GET", "/api/v1/questions/random", "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "The question bank is empty", body["error"])

	resp, body = doJSON(t, app, "POST", "/api/v1/questions", token, map[string]string{
		"question_text": "  Tell me about a conflict you resolved.  ",
		"model_answer":  "Use the STAR method...",
		"category":      "behavioral",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, body)
	assert.Equal(t, "Tell me about a conflict you resolved.", body["question_text"])
	assert.NotEmpty(t, body["id"])

	resp, _ = doJSON(t, app, "POST", "/api/v1/questions", token, map[string]string{
		"question_text": "Why should we hire you?",
		"model_answer":  "Tie strengths to the role.",
		"category":      "motivation",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, body = doJSON(t, app, "GET", "/api/v1/questions", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, body["questions"], 2)

	resp, body = doJSON(t, app, "GET", "/api/v1/questions?category=behavioral", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, body["questions"], 1)

	resp, body = doJSON(t, app, "GET", "/api/v1/questions/random", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, []interface{}{"Tell me about a conflict you resolved.", "Why should we hire you?"}, body["question_text"])
}

func TestQuestionHandler_CreateValidation(t *testing.T) {
	app, token := newQuestionApp(t)

	resp, _ := doJSON(t, app, "POST", "/api/v1/questions", "", map[string]string{"question_text": "Why?"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, body := doJSON(t, app, "POST", "/api/v1/questions", token, map[string]string{"question_text": "   "})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "question_text is required", body["error"])
}

func TestQuestionHandler_CreateExistingTextUpdatesAnswer(t *testing.T) {
	app, token := newQuestionApp(t)

	resp, first := doJSON(t, app, "POST", "/api/v1/questions", token, map[string]string{
		"question_text": "Why do you want this job?",
		"model_answer":  "v1",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, second := doJSON(t, app, "POST", "/api/v1/questions", token, map[string]string{
		"question_text": "Why do you want this job?",
		"model_answer":  "v2",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, second)
	assert.Equal(t, first["id"], second["id"])
	assert.Equal(t, "v2", second["model_answer"])

	resp, body := doJSON(t, app, "GET", "/api/v1/questions", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, body["questions"], 1)
}

func TestQuestionHandler_Delete(t *testing.T) {
	app, token := newQuestionApp(t)

	resp, body := doJSON(t, app, "POST", "/api/v1/questions", token, map[string]string{
		"question_text": "What is your greatest weakness?",
		"model_answer":  "Name a real one and how you manage it.",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	path := "/api/v1/questions/" + body["id"].(string)

	resp, _ = doJSON(t, app, "DELETE", path, "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, app, "DELETE", path, token, nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, body = doJSON(t, app, "DELETE", path, token, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Question not found", body["error"])

	resp, body = doJSON(t, app, "DELETE", "/api/v1/questions/not-a-uuid", token, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid question ID format", body["error"])

	resp, body = doJSON(t, app, "GET", "/api/v1/questions", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, body["questions"])
}
