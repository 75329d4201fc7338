package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"google.golang.org/genai"
)

// ChatRole tags a ChatTurn as coming from the candidate or from the model.
type ChatRole string

const (
	RoleUser  ChatRole = "user"
	RoleModel ChatRole = "model"
)

type ChatTurn struct {
	Role ChatRole
	Text string
}

type GeminiService interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema, temperature float32, target interface{}) error
	GenerateChat(ctx context.Context, systemPrompt string, history []ChatTurn, message string) (string, error)
	TranscribeAudio(ctx context.Context, audio []byte, mimeType string) (string, error)
}

type GeminiOptions struct {
	APIKey             string
	ChatModel          string
	EmbedModel         string
	TranscriptionModel string
	MaxRetries         int
	RetryInitialDelay  time.Duration
}

type geminiService struct {
	client             *genai.Client
	modelName          string
	embedModel         string
	transcriptionModel string
	maxRetries         int
	retryDelay         time.Duration
}

var errEmptyResponse = errors.New("no text content in response")

func NewGeminiService(opts GeminiOptions) (GeminiService, error) {
	ctx := context.Background()

	if opts.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	svc := &geminiService{
		client:             client,
		modelName:          opts.ChatModel,
		embedModel:         opts.EmbedModel,
		transcriptionModel: opts.TranscriptionModel,
		maxRetries:         opts.MaxRetries,
		retryDelay:         opts.RetryInitialDelay,
	}
	if svc.modelName == "" {
		svc.modelName = "gemini-2.5-flash"
	}
	if svc.embedModel == "" {
		svc.embedModel = "text-embedding-004"
	}
	if svc.transcriptionModel == "" {
		svc.transcriptionModel = svc.modelName
	}
	if svc.maxRetries < 1 {
		svc.maxRetries = 3
	}
	if svc.retryDelay <= 0 {
		svc.retryDelay = 2 * time.Second
	}
	return svc, nil
}

// GenerateEmbedding implements GeminiService.
func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	// Truncate text if too long (max ~10000 tokens for embedding)
	if len(text) > 40000 {
		text = text[:40000]
	}

	var values []float32
	err := g.withRetry(ctx, g.maxRetries, func(ctx context.Context) error {
		result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
		if err != nil {
			return fmt.Errorf("failed to generate embedding: %w", err)
		}
		if result == nil || len(result.Embeddings) == 0 {
			return fmt.Errorf("empty embedding result")
		}
		values = result.Embeddings[0].Values
		return nil
	})
	if err != nil {
		return nil, err
	}

	return values, nil
}

// GenerateJSON implements GeminiService. The model is constrained to the
// given schema and its answer is decoded into target. It is not retried.
func (g *geminiService) GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema, temperature float32, target interface{}) error {
	config := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	}

	text, err := g.generate(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		return err
	}

	if err := ParseJSONResponse(text, target); err != nil {
		log.Printf("❌ Raw Gemini response that failed to parse: %s", text)
		return err
	}
	return nil
}

// GenerateChat implements GeminiService.
func (g *geminiService) GenerateChat(ctx context.Context, systemPrompt string, history []ChatTurn, message string) (string, error) {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, turn := range history {
		role := genai.RoleUser
		if turn.Role == RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Text, genai.Role(role)))
	}
	contents = append(contents, genai.NewContentFromText(message, genai.RoleUser))

	config := &genai.GenerateContentConfig{}
	if systemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	text, err := g.generateWithRetry(ctx, g.modelName, contents, config)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// TranscribeAudio implements GeminiService.
func (g *geminiService) TranscribeAudio(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("audio is empty")
	}

	parts := []*genai.Part{
		genai.NewPartFromText("Transcribe the spoken English in this recording verbatim. " +
			"Keep filler words such as 'um' and 'uh'. Return only the transcript text without commentary. " +
			"If nothing is spoken, return an empty response."),
		genai.NewPartFromBytes(audio, mimeType),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	temperature := float32(0)
	text, err := g.generateWithRetry(ctx, g.transcriptionModel, contents, &genai.GenerateContentConfig{
		Temperature: &temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to transcribe audio: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func (g *geminiService) generate(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		log.Printf("❌ Gemini API error: %v", err)
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if resp == nil {
		return "", fmt.Errorf("no response generated (nil response)")
	}

	text := resp.Text()
	if text == "" {
		return "", errEmptyResponse
	}

	return text, nil
}

func (g *geminiService) generateWithRetry(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (string, error) {
	var result string
	err := g.withRetry(ctx, g.maxRetries, func(ctx context.Context) error {
		text, err := g.generate(ctx, model, contents, config)
		if err != nil {
			return err
		}
		result = text
		return nil
	})
	if err != nil {
		return "", err
	}
	return result, nil
}

func (g *geminiService) withRetry(ctx context.Context, maxRetries int, fn func(ctx context.Context) error) error {
	if maxRetries < 1 {
		maxRetries = 1
	}

	attempt := 0
	backoff := retry.WithMaxRetries(uint64(maxRetries-1), retry.NewExponential(g.retryDelay))

	var lastErr error
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := fn(ctx); err != nil {
			lastErr = err
			if attempt < maxRetries {
				log.Printf("⚠️ Attempt %d failed: %v. Retrying...", attempt, err)
			}
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("context cancelled: %w", ctx.Err())
		}
		return fmt.Errorf("failed after %d attempts: %w", attempt, lastErr)
	}
	return nil
}

// ParseJSONResponse decodes a model answer into target, tolerating markdown
// fences and prose around the JSON payload.
func ParseJSONResponse(response string, target interface{}) error {
	jsonStr := extractJSON(response)

	if err := json.Unmarshal([]byte(jsonStr), target); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	return nil
}

// extractJSON tries to extract JSON from text that might contain markdown or other formatting
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")
	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")

	if startObj != -1 && endObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	} else if startArr != -1 && endArr != -1 && endArr > startArr {
		return text[startArr : endArr+1]
	}

	return text
}
