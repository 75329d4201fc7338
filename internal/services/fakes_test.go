package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"google.golang.org/genai"
)

type chatCall struct {
	SystemPrompt string
	History      []ChatTurn
	Message      string
}

type fakeGemini struct {
	mu sync.Mutex

	chatReply  string
	chatErr    error
	chatCalls  []chatCall
	jsonResult interface{}
	jsonErrs   []error
	jsonCalls  int
	jsonPrompt string
	embedding  []float32
	embedErr   error
	transcript string
	audioMIME  string
}

func (f *fakeGemini) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return f.embedding, f.embedErr
}

// GenerateJSON fails with the queued errors first, then round-trips
// jsonResult into target.
func (f *fakeGemini) GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema, temperature float32, target interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jsonCalls++
	f.jsonPrompt = prompt
	if len(f.jsonErrs) > 0 {
		err := f.jsonErrs[0]
		f.jsonErrs = f.jsonErrs[1:]
		return err
	}
	raw, err := json.Marshal(f.jsonResult)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, target)
}

func (f *fakeGemini) GenerateChat(ctx context.Context, systemPrompt string, history []ChatTurn, message string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chatCalls = append(f.chatCalls, chatCall{SystemPrompt: systemPrompt, History: history, Message: message})
	return f.chatReply, f.chatErr
}

func (f *fakeGemini) TranscribeAudio(ctx context.Context, audio []byte, mimeType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.audioMIME = mimeType
	return f.transcript, nil
}

type fakeIndex struct {
	matches  []QuestionMatch
	upserted []uuid.UUID
	deleted  []uuid.UUID
}

func (f *fakeIndex) InitCollection() error { return nil }

func (f *fakeIndex) UpsertQuestion(ctx context.Context, questionID uuid.UUID, questionText, category string, embedding []float32) error {
	f.upserted = append(f.upserted, questionID)
	return nil
}

func (f *fakeIndex) SearchSimilar(ctx context.Context, queryEmbedding []float32, limit int) ([]QuestionMatch, error) {
	return f.matches, nil
}

func (f *fakeIndex) DeleteQuestion(ctx context.Context, questionID uuid.UUID) error {
	f.deleted = append(f.deleted, questionID)
	return nil
}
