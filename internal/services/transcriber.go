package services

import (
	"context"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// Transcriber turns recorded speech into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
	TranscribeBytes(ctx context.Context, audio []byte, mimeType string) (string, error)
}

type geminiTranscriber struct {
	gemini GeminiService
}

func NewTranscriber(gemini GeminiService) Transcriber {
	return &geminiTranscriber{gemini: gemini}
}

// Transcribe implements Transcriber.
func (t *geminiTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return "", fmt.Errorf("failed to read audio file: %w", err)
	}

	log.Printf("🎙️  Transcribing audio from: %s", audioPath)
	return t.TranscribeBytes(ctx, data, AudioMIMEType(audioPath))
}

// TranscribeBytes implements Transcriber.
func (t *geminiTranscriber) TranscribeBytes(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if mimeType == "" {
		mimeType = "audio/webm"
	}
	// Browsers report e.g. "audio/webm;codecs=opus"; the model only wants the media type.
	if mediaType, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = mediaType
	}

	text, err := t.gemini.TranscribeAudio(ctx, audio, mimeType)
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("transcription is empty")
	}
	return text, nil
}

var audioMIMETypes = map[string]string{
	".webm": "audio/webm",
	".mp3":  "audio/mp3",
	".wav":  "audio/wav",
	".m4a":  "audio/mp4",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
}

// AudioMIMEType guesses the media type of an audio file from its extension.
func AudioMIMEType(path string) string {
	if t, ok := audioMIMETypes[strings.ToLower(filepath.Ext(path))]; ok {
		return t
	}
	return "audio/webm"
}
