package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"cogniedu_backend/internal/config"
	"cogniedu_backend/internal/model"
	"cogniedu_backend/internal/repository"
	"cogniedu_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newGradingService(db *gorm.DB) *GradingService {
	return NewGradingService(db,
		repository.NewAttemptRepository(db),
		repository.NewExamRepository(db),
		repository.NewUserRepository(db),
		NewAdvisorService(config.AdvisorConfig{}))
}

func createPendingAttempt(t *testing.T, db *gorm.DB, userID uint, exam *model.Exam, answers []model.Answer) *model.Attempt {
	t.Helper()

	raw, err := json.Marshal(answers)
	require.NoError(t, err)
	attempt := &model.Attempt{
		UserID:  userID,
		ExamID:  exam.ID,
		Answers: raw,
	}
	require.NoError(t, db.Create(attempt).Error)
	return attempt
}

func TestGrade(t *testing.T) {
	t.Run("finalizes the attempt and credits progression", func(t *testing.T) {
		db := newTestDB(t)
		svc := newGradingService(db)
		user := createUser(t, db, model.RoleCitizen, 1, 200)
		content := createTextContent(t, db, 1)
		exam := createExam(t, db, false, &content.ID, descriptiveQuestion(0, 1))
		attempt := createPendingAttempt(t, db, user.ID, exam, []model.Answer{
			textAnswer(exam.Questions[0].ID, "essay"),
		})

		require.NoError(t, svc.Grade(attempt.ID, 80))

		var graded model.Attempt
		require.NoError(t, db.Where("id = ?", attempt.ID).First(&graded).Error)
		assert.True(t, graded.IsGraded)
		require.NotNil(t, graded.Score)
		assert.Equal(t, 80, *graded.Score)

		var refreshed model.User
		require.NoError(t, db.First(&refreshed, user.ID).Error)
		assert.Equal(t, 1000, refreshed.XP)
		assert.Equal(t, 2, refreshed.Level)

		var record model.ScoreRecord
		require.NoError(t, db.Where("user_id = ?", user.ID).First(&record).Error)
		assert.Equal(t, 80, record.Score)
	})

	t.Run("repeating the same score is a no-op", func(t *testing.T) {
		db := newTestDB(t)
		svc := newGradingService(db)
		user := createUser(t, db, model.RoleCitizen, 1, 0)
		content := createTextContent(t, db, 1)
		exam := createExam(t, db, false, &content.ID, descriptiveQuestion(0, 1))
		attempt := createPendingAttempt(t, db, user.ID, exam, nil)

		require.NoError(t, svc.Grade(attempt.ID, 60))
		require.NoError(t, svc.Grade(attempt.ID, 60))

		// Progression was credited exactly once.
		var refreshed model.User
		require.NoError(t, db.First(&refreshed, user.ID).Error)
		assert.Equal(t, 600, refreshed.XP)
	})

	t.Run("a different score is rejected", func(t *testing.T) {
		db := newTestDB(t)
		svc := newGradingService(db)
		user := createUser(t, db, model.RoleCitizen, 1, 0)
		content := createTextContent(t, db, 1)
		exam := createExam(t, db, false, &content.ID, descriptiveQuestion(0, 1))
		attempt := createPendingAttempt(t, db, user.ID, exam, nil)

		require.NoError(t, svc.Grade(attempt.ID, 60))
		assert.ErrorIs(t, svc.Grade(attempt.ID, 70), util.ErrAttemptAlreadyGraded)
	})

	t.Run("rejects out-of-range scores", func(t *testing.T) {
		db := newTestDB(t)
		svc := newGradingService(db)

		assert.ErrorIs(t, svc.Grade("whatever", -1), util.ErrInvalidScore)
		assert.ErrorIs(t, svc.Grade("whatever", 101), util.ErrInvalidScore)
	})

	t.Run("unknown attempt", func(t *testing.T) {
		db := newTestDB(t)
		svc := newGradingService(db)

		assert.ErrorIs(t, svc.Grade("missing", 50), util.ErrAttemptNotFound)
	})

	t.Run("placement attempt places the taker", func(t *testing.T) {
		db := newTestDB(t)
		svc := newGradingService(db)
		user := createUser(t, db, model.RoleCitizen, 0, 0)
		exam := createExam(t, db, true, nil, descriptiveQuestion(0, 1))
		attempt := createPendingAttempt(t, db, user.ID, exam, nil)

		require.NoError(t, svc.Grade(attempt.ID, 55))

		var refreshed model.User
		require.NoError(t, db.First(&refreshed, user.ID).Error)
		assert.Equal(t, 5, refreshed.Level)
		assert.Equal(t, 550, refreshed.XP)
	})
}

func TestListPending(t *testing.T) {
	db := newTestDB(t)
	svc := newGradingService(db)
	user := createUser(t, db, model.RoleCitizen, 1, 0)
	content := createTextContent(t, db, 1)
	exam := createExam(t, db, false, &content.ID,
		mcqQuestion(0, 1, 0, "a", "b"),
		descriptiveQuestion(0, 2),
	)

	first := createPendingAttempt(t, db, user.ID, exam, []model.Answer{
		mcqAnswer(exam.Questions[0].ID, 1),
		textAnswer(exam.Questions[1].ID, "older essay"),
	})
	// Backdate so the queue order is deterministic.
	require.NoError(t, db.Model(&model.Attempt{}).Where("id = ?", first.ID).
		Update("created_at", time.Now().Add(-time.Hour)).Error)
	second := createPendingAttempt(t, db, user.ID, exam, []model.Answer{
		textAnswer(exam.Questions[1].ID, "newer essay"),
	})

	// Graded attempts stay out of the queue.
	graded := createPendingAttempt(t, db, user.ID, exam, nil)
	require.NoError(t, svc.Grade(graded.ID, 40))

	pending, err := svc.ListPending()
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first.ID, pending[0].AttemptID)
	assert.Equal(t, second.ID, pending[1].AttemptID)

	// MCQ answers carry a correctness hint for the grader.
	require.Len(t, pending[0].Answers, 2)
	require.NotNil(t, pending[0].Answers[0].Correct)
	assert.False(t, *pending[0].Answers[0].Correct)
	assert.Nil(t, pending[0].Answers[1].Correct)
	assert.Equal(t, "older essay", pending[0].Answers[1].Text)
}

func TestSuggestGradeWithoutAdvisor(t *testing.T) {
	db := newTestDB(t)
	svc := newGradingService(db)
	user := createUser(t, db, model.RoleCitizen, 1, 0)
	content := createTextContent(t, db, 1)
	exam := createExam(t, db, false, &content.ID, descriptiveQuestion(0, 1))
	attempt := createPendingAttempt(t, db, user.ID, exam, []model.Answer{
		textAnswer(exam.Questions[0].ID, "essay"),
	})

	// No advisor configured: the static fallback is returned instead of an
	// error.
	suggestion, err := svc.SuggestGrade(context.Background(), attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, suggestion.Score)
	assert.NotEmpty(t, suggestion.Reason)
}
