package live

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Client -> server events.
const (
	EventStartConversation   = "start_conversation"
	EventUserTextInput       = "user_text_input"
	EventUserAudioInput      = "user_audio_input"
	EventUploadResume        = "upload_resume"
	EventEndConversation     = "end_conversation"
	EventConversationMetrics = "conversation_metrics"
)

// Server -> client events.
const (
	EventAIResponse         = "ai_response"
	EventAIThinking         = "ai_thinking"
	EventUserTranscript     = "user_transcript"
	EventResumeUploadStatus = "resume_upload_status"
	EventMetricsAnalysis    = "conversation_metrics_analysis"
	EventError              = "error"
)

// Resume upload status types.
const (
	StatusLoading = "loading"
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope is the frame exchanged over the live socket in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type TextPayload struct {
	Text string `json:"text"`
}

type AudioPayload struct {
	AudioContent string `json:"audioContent"`
	MimeType     string `json:"mimeType"`
}

type ResumePayload struct {
	FileName    string `json:"fileName"`
	FileType    string `json:"fileType"`
	FileContent string `json:"fileContent"`
}

type StatusPayload struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

type AnalysisPayload struct {
	Analysis string `json:"analysis"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// DecodeEnvelope parses one inbound frame.
func DecodeEnvelope(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("invalid frame: %w", err)
	}
	env.Event = strings.TrimSpace(env.Event)
	if env.Event == "" {
		return Envelope{}, fmt.Errorf("invalid frame: missing event")
	}
	return env, nil
}

// EncodeEnvelope builds an outbound frame. A nil payload produces a frame
// without data.
func EncodeEnvelope(event string, payload interface{}) ([]byte, error) {
	env := Envelope{Event: event}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s payload: %w", event, err)
		}
		env.Data = data
	}
	return json.Marshal(env)
}

// decodeData unmarshals the envelope payload into v; an absent payload leaves
// v at its zero value.
func (e Envelope) decodeData(v interface{}) error {
	if len(e.Data) == 0 || string(e.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("invalid %s payload: %w", e.Event, err)
	}
	return nil
}
