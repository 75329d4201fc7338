package services

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elevateu/hr-coach/internal/models"
	"elevateu/hr-coach/internal/repositories"
)

type analyzerFixture struct {
	repo     repositories.PracticeSessionRepository
	audio    *fakeAudio
	gemini   *fakeGemini
	tr       *stubTranscriber
	bank     *stubQuestionBank
	analyzer AnswerAnalyzer
	session  *models.PracticeSession
}

func newAnalyzerFixture(t *testing.T) *analyzerFixture {
	t.Helper()

	db := newTestDB(t)
	user := createTestUser(t, db)
	repo := repositories.NewPracticeSessionRepository(db)

	dir := t.TempDir()
	audioPath := filepath.Join(dir, "answer_1.webm")
	require.NoError(t, os.WriteFile(audioPath, []byte("webm"), 0o644))

	session := &models.PracticeSession{UserID: user.ID, Question: "Why should we hire you?", AudioPath: audioPath}
	require.NoError(t, repo.Create(session))

	f := &analyzerFixture{
		repo:   repo,
		audio:  &fakeAudio{duration: 30},
		gemini: &fakeGemini{jsonResult: sampleFeedback()},
		tr:     &stubTranscriber{text: "I bring five years of backend experience and a habit of shipping."},
		bank:   &stubQuestionBank{},
	}
	f.analyzer = NewAnswerAnalyzer(repo, f.audio, f.tr, f.gemini, f.bank, NewStorageService(dir), 2)
	f.session = session
	return f
}

func sampleFeedback() models.AnswerFeedback {
	return models.AnswerFeedback{
		OverallScore:  7.5,
		Transcription: "model echo",
		Scores: models.MetricScores{
			SpeakingRateAppropriateness: models.MetricScore{Score: 8, Explanation: "steady"},
		},
		TutoringPlan: models.TutoringPlan{
			SpeakingRateAppropriateness: models.TutoringAdvice{WhatYouDidWell: "pace"},
		},
	}
}

func (f *analyzerFixture) reload(t *testing.T) *models.PracticeSession {
	t.Helper()
	session, err := f.repo.FindByID(f.session.ID)
	require.NoError(t, err)
	return session
}

func TestAnswerAnalyzer_Success(t *testing.T) {
	f := newAnalyzerFixture(t)
	f.bank.reference = "Tie your strengths to the role."

	require.NoError(t, f.analyzer.AnalyzePracticeSession(context.Background(), f.session.ID))

	got := f.reload(t)
	assert.Equal(t, models.StatusCompleted, got.Status)
	require.NotNil(t, got.AudioURL)
	assert.Equal(t, "/uploads/answer_1.mp3", *got.AudioURL)
	require.NotNil(t, got.Transcription)
	assert.Equal(t, f.tr.text, *got.Transcription)
	require.NotNil(t, got.OverallScore)
	assert.Equal(t, 7.5, *got.OverallScore)
	require.NotNil(t, got.WordsPerMinute)
	assert.InDelta(t, 24.0, *got.WordsPerMinute, 0.01)
	assert.Nil(t, got.ErrorMessage)

	var scores models.MetricScores
	require.NotNil(t, got.ScoresJSON)
	require.NoError(t, json.Unmarshal([]byte(*got.ScoresJSON), &scores))
	assert.Equal(t, "steady", scores.SpeakingRateAppropriateness.Explanation)

	assert.NoFileExists(t, f.session.AudioPath)
	assert.Contains(t, f.gemini.jsonPrompt, "Tie your strengths to the role.")
}

func TestAnswerAnalyzer_ConversionFailureKeepsOriginal(t *testing.T) {
	f := newAnalyzerFixture(t)
	f.audio.convertErr = errors.New("ffmpeg missing")
	f.audio.duration = 0

	require.NoError(t, f.analyzer.AnalyzePracticeSession(context.Background(), f.session.ID))

	got := f.reload(t)
	assert.Equal(t, models.StatusCompleted, got.Status)
	require.NotNil(t, got.AudioURL)
	assert.Equal(t, "/uploads/answer_1.webm", *got.AudioURL)
	assert.FileExists(t, f.session.AudioPath)
	assert.Equal(t, []string{f.session.AudioPath}, f.audio.probed)

	var scores models.MetricScores
	require.NoError(t, json.Unmarshal([]byte(*got.ScoresJSON), &scores))
	assert.Equal(t, "N/A", scores.SpeakingRateAppropriateness.Explanation)
}

func TestAnswerAnalyzer_Failures(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(f *analyzerFixture)
		message string
	}{
		{
			name:    "transcription error",
			setup:   func(f *analyzerFixture) { f.tr.err = errors.New("silent") },
			message: msgTranscriptionFailed,
		},
		{
			name:    "transcript too short",
			setup:   func(f *analyzerFixture) { f.tr.text = "um" },
			message: msgTranscriptTooShort,
		},
		{
			name: "feedback never parses",
			setup: func(f *analyzerFixture) {
				f.gemini.jsonErrs = []error{errors.New("bad json"), errors.New("bad json")}
			},
			message: msgFeedbackFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAnalyzerFixture(t)
			tt.setup(f)

			assert.Error(t, f.analyzer.AnalyzePracticeSession(context.Background(), f.session.ID))

			got := f.reload(t)
			assert.Equal(t, models.StatusFailed, got.Status)
			require.NotNil(t, got.ErrorMessage)
			assert.Equal(t, tt.message, *got.ErrorMessage)
			assert.NoFileExists(t, f.session.AudioPath)
		})
	}
}

func TestAnswerAnalyzer_RetriesFeedback(t *testing.T) {
	f := newAnalyzerFixture(t)
	f.gemini.jsonErrs = []error{errors.New("bad json")}
	f.bank.err = errors.New("qdrant down")

	require.NoError(t, f.analyzer.AnalyzePracticeSession(context.Background(), f.session.ID))
	assert.Equal(t, 2, f.gemini.jsonCalls)
	assert.Equal(t, models.StatusCompleted, f.reload(t).Status)
}

func TestNormalizeFeedback(t *testing.T) {
	feedback := sampleFeedback()
	NormalizeFeedback(&feedback, "one two three", 6)

	assert.Equal(t, "one two three", feedback.Transcription)
	assert.Equal(t, 6.0, feedback.AudioDurationSeconds)
	assert.InDelta(t, 30.0, feedback.WordsPerMinute, 0.01)
	assert.Equal(t, "steady", feedback.Scores.SpeakingRateAppropriateness.Explanation)

	NormalizeFeedback(&feedback, "one two three", 0)
	assert.Zero(t, feedback.WordsPerMinute)
	assert.Equal(t, models.MetricScore{Score: 0, Explanation: "N/A"}, feedback.Scores.SpeakingRateAppropriateness)
	assert.Equal(t, "N/A", feedback.TutoringPlan.SpeakingRateAppropriateness.HowToPractice)
}
