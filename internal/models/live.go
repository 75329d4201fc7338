package models

type Speaker string

const (
	SpeakerUser Speaker = "User"
	SpeakerAI   Speaker = "AI"
)

// Turn is one utterance in a live interview.
type Turn struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

// ConversationMetrics is reported by the client when a live interview ends.
// Durations and latencies are in milliseconds.
type ConversationMetrics struct {
	TotalDurationMs         float64   `json:"totalDurationMs"`
	UserTurns               int       `json:"userTurns"`
	AITurns                 int       `json:"aiTurns"`
	UserWordCount           int       `json:"userWordCount"`
	AIWordCount             int       `json:"aiWordCount"`
	UserResponseLatenciesMs []float64 `json:"userResponseLatenciesMs"`
	AIResponseLatenciesMs   []float64 `json:"aiResponseLatenciesMs"`
}
