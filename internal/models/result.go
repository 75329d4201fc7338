package models

import "github.com/google/uuid"

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string   `json:"token"`
	User  UserView `json:"user"`
}

type UserView struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

type AnalyzeResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type PracticeResultResponse struct {
	ID           string            `json:"id"`
	Status       string            `json:"status"`
	Question     string            `json:"question"`
	Result       *PracticeFeedback `json:"result,omitempty"`
	ErrorMessage *string           `json:"error_message,omitempty"`
}

// PracticeFeedback is AnswerFeedback plus the playback URL and the question
// the answer was recorded for.
type PracticeFeedback struct {
	AnswerFeedback
	AudioURL string `json:"audio_url"`
	Question string `json:"question"`
}

type QuestionRequest struct {
	QuestionText string `json:"question_text"`
	ModelAnswer  string `json:"model_answer"`
	Category     string `json:"category"`
}
