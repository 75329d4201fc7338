package repositories

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

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
	// Every new connection to :memory: is a fresh database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.PracticeSession{}, &models.QuestionBank{}))
	return db
}

func createUser(t *testing.T, repo UserRepository, name string) *models.User {
	t.Helper()
	user := &models.User{Username: name, Email: name + "@example.com", PasswordHash: "hash"}
	require.NoError(t, repo.Create(user))
	return user
}

func TestUserRepository_Lookups(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	user := createUser(t, repo, "ada")
	require.NotEqual(t, uuid.Nil, user.ID)

	byID, err := repo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada", byID.Username)

	byEmail, err := repo.FindByEmail("ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byName, err := repo.FindByUsername("ada")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	_, err = repo.FindByEmail("nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepository_DuplicateEmailRejected(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	createUser(t, repo, "ada")

	err := repo.Create(&models.User{Username: "other", Email: "ada@example.com", PasswordHash: "x"})
	assert.Error(t, err)
}

func TestPracticeSessionRepository_Lifecycle(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, NewUserRepository(db), "grace")
	repo := NewPracticeSessionRepository(db)

	session := &models.PracticeSession{UserID: user.ID, Question: "Tell me about yourself."}
	require.NoError(t, repo.Create(session))
	assert.Equal(t, models.StatusQueued, session.Status)

	pending, err := repo.FindPendingJobs(10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, session.ID, pending[0].ID)

	require.NoError(t, repo.UpdateStatus(session.ID, models.StatusProcessing))
	pending, err = repo.FindPendingJobs(10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	transcript := "I led a small team."
	score := 7.5
	wpm := 120.0
	scores := `{"fluency":{"score":8}}`
	require.NoError(t, repo.UpdateResult(session.ID, &PracticeUpdateData{
		Transcription:  &transcript,
		OverallScore:   &score,
		WordsPerMinute: &wpm,
		ScoresJSON:     &scores,
	}))

	got, err := repo.FindByID(session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
	require.NotNil(t, got.Transcription)
	assert.Equal(t, transcript, *got.Transcription)
	require.NotNil(t, got.OverallScore)
	assert.InDelta(t, 7.5, *got.OverallScore, 0.001)
	require.NotNil(t, got.ScoresJSON)
	assert.JSONEq(t, scores, *got.ScoresJSON)
}

func TestPracticeSessionRepository_UpdateError(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, NewUserRepository(db), "linus")
	repo := NewPracticeSessionRepository(db)

	session := &models.PracticeSession{UserID: user.ID, Question: "Why us?"}
	require.NoError(t, repo.Create(session))
	require.NoError(t, repo.UpdateError(session.ID, "transcription failed"))

	got, err := repo.FindByID(session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, got.Status)
	require.NotNil(t, got.ErrorMessage)
	assert.Equal(t, "transcription failed", *got.ErrorMessage)

	assert.ErrorIs(t, repo.UpdateStatus(uuid.New(), models.StatusProcessing), ErrNotFound)
}

func TestPracticeSessionRepository_FindByUserNewestFirst(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bob")
	repo := NewPracticeSessionRepository(db)

	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	for i, q := range []string{"first", "second", "third"} {
		require.NoError(t, repo.Create(&models.PracticeSession{
			UserID:    alice.ID,
			Question:  q,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, repo.Create(&models.PracticeSession{UserID: bob.ID, Question: "bob's"}))

	sessions, err := repo.FindByUser(alice.ID, 2)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "third", sessions[0].Question)
	assert.Equal(t, "second", sessions[1].Question)
}

func TestQuestionRepository_UpsertKeepsSingleRow(t *testing.T) {
	repo := NewQuestionRepository(newTestDB(t))

	first := &models.QuestionBank{QuestionText: "What is your greatest weakness?", ModelAnswer: "v1", Category: "behavioral"}
	require.NoError(t, repo.Upsert(first))

	second := &models.QuestionBank{QuestionText: "What is your greatest weakness?", ModelAnswer: "v2", Category: "behavioral"}
	require.NoError(t, repo.Upsert(second))
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "v2", second.ModelAnswer)

	all, err := repo.List("")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "v2", all[0].ModelAnswer)
}

func TestQuestionRepository_Delete(t *testing.T) {
	repo := NewQuestionRepository(newTestDB(t))

	question := &models.QuestionBank{QuestionText: "Where do you see yourself in five years?", ModelAnswer: "Growth."}
	require.NoError(t, repo.Create(question))

	require.NoError(t, repo.Delete(question.ID))
	_, err := repo.FindByID(question.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(question.ID), ErrNotFound)
}

func TestQuestionRepository_ListAndRandom(t *testing.T) {
	repo := NewQuestionRepository(newTestDB(t))

	_, err := repo.Random()
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Create(&models.QuestionBank{QuestionText: "B question", ModelAnswer: "b", Category: "situational"}))
	require.NoError(t, repo.Create(&models.QuestionBank{QuestionText: "A question", ModelAnswer: "a", Category: "behavioral"}))

	behavioral, err := repo.List("behavioral")
	require.NoError(t, err)
	require.Len(t, behavioral, 1)
	assert.Equal(t, "A question", behavioral[0].QuestionText)

	all, err := repo.List("")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "A question", all[0].QuestionText)

	picked, err := repo.Random()
	require.NoError(t, err)
	assert.Contains(t, []string{"A question", "B question"}, picked.QuestionText)

	byID, err := repo.FindByID(picked.ID)
	require.NoError(t, err)
	assert.Equal(t, picked.QuestionText, byID.QuestionText)
}
