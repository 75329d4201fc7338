package services

import (
	"context"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"elevateu/hr-coach/internal/config"
	"elevateu/hr-coach/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, config.Migrate(db))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{Username: "candidate", Email: "candidate@example.com", PasswordHash: "hash"}
	require.NoError(t, db.Create(user).Error)
	return user
}

type fakeAudio struct {
	convertErr error
	duration   float64
	probed     []string
}

func (f *fakeAudio) ConvertToMP3(src string) (string, error) {
	if f.convertErr != nil {
		return "", f.convertErr
	}
	return src[:len(src)-len(".webm")] + ".mp3", nil
}

func (f *fakeAudio) ProbeDuration(path string) float64 {
	f.probed = append(f.probed, path)
	return f.duration
}

type stubTranscriber struct {
	text string
	err  error
}

func (s *stubTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	return s.text, s.err
}

func (s *stubTranscriber) TranscribeBytes(ctx context.Context, audio []byte, mimeType string) (string, error) {
	return s.text, s.err
}

type stubQuestionBank struct {
	reference string
	err       error
}

func (s *stubQuestionBank) Add(ctx context.Context, question *models.QuestionBank) error { return nil }

func (s *stubQuestionBank) Index(ctx context.Context, question *models.QuestionBank) error {
	return nil
}

func (s *stubQuestionBank) Remove(ctx context.Context, id uuid.UUID) error { return nil }

func (s *stubQuestionBank) ReferenceAnswer(ctx context.Context, questionText string) (string, error) {
	return s.reference, s.err
}

type recordingAnalyzer struct {
	mu    sync.Mutex
	calls []uuid.UUID
}

func (r *recordingAnalyzer) AnalyzePracticeSession(ctx context.Context, sessionID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, sessionID)
	return nil
}

func (r *recordingAnalyzer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}
