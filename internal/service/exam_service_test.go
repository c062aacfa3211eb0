package service

import (
	"encoding/json"
	"testing"
	"time"

	"cogniedu_backend/internal/model"
	"cogniedu_backend/internal/repository"
	"cogniedu_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newExamService(db *gorm.DB) *ExamService {
	return NewExamService(db,
		repository.NewExamRepository(db),
		repository.NewUserRepository(db),
		repository.NewContentRepository(db),
		repository.NewAttemptRepository(db),
		repository.NewSessionRepository(db))
}

func createTextContent(t *testing.T, db *gorm.DB, minLevel int) *model.Content {
	t.Helper()

	content := &model.Content{
		Title:    "reading",
		Kind:     model.ContentText,
		MinLevel: minLevel,
		MaxLevel: 10,
		IsActive: true,
		Body:     "body",
	}
	require.NoError(t, db.Create(content).Error)
	return content
}

func TestStartSession(t *testing.T) {
	t.Run("opens and resumes a session", func(t *testing.T) {
		db := newTestDB(t)
		svc := newExamService(db)
		user := createUser(t, db, model.RoleCitizen, 0, 0)
		exam := createExam(t, db, true, nil, mcqQuestion(0, 1, 0, "a", "b"))

		view, err := svc.StartSession(user.ID, exam.ID)
		require.NoError(t, err)
		assert.NotEmpty(t, view.SessionID)
		require.Len(t, view.Questions, 1)
		assert.Equal(t, []string{"a", "b"}, view.Questions[0].Options)
		assert.WithinDuration(t, time.Now().Add(10*time.Minute), view.ExpiresAt, 5*time.Second)

		again, err := svc.StartSession(user.ID, exam.ID)
		require.NoError(t, err)
		assert.Equal(t, view.SessionID, again.SessionID)
	})

	t.Run("unplaced citizen cannot start regular exam", func(t *testing.T) {
		db := newTestDB(t)
		svc := newExamService(db)
		user := createUser(t, db, model.RoleCitizen, 0, 0)
		content := createTextContent(t, db, 1)
		exam := createExam(t, db, false, &content.ID, mcqQuestion(0, 1, 0, "a", "b"))

		_, err := svc.StartSession(user.ID, exam.ID)
		assert.ErrorIs(t, err, util.ErrPlacementRequired)
	})

	t.Run("content level gates the exam", func(t *testing.T) {
		db := newTestDB(t)
		svc := newExamService(db)
		user := createUser(t, db, model.RoleCitizen, 2, 0)
		content := createTextContent(t, db, 5)
		exam := createExam(t, db, false, &content.ID, mcqQuestion(0, 1, 0, "a", "b"))

		_, err := svc.StartSession(user.ID, exam.ID)
		assert.ErrorIs(t, err, util.ErrPermissionDenied)
	})
}

func TestSubmitRegularExam(t *testing.T) {
	db := newTestDB(t)
	svc := newExamService(db)
	user := createUser(t, db, model.RoleCitizen, 1, 0)
	content := createTextContent(t, db, 1)
	exam := createExam(t, db, false, &content.ID,
		mcqQuestion(0, 1, 0, "a", "b"),
		mcqQuestion(0, 2, 1, "a", "b"),
	)

	view, err := svc.StartSession(user.ID, exam.ID)
	require.NoError(t, err)

	answers := []model.Answer{
		mcqAnswer(exam.Questions[0].ID, 0),
		mcqAnswer(exam.Questions[1].ID, 0),
	}

	result, err := svc.Submit(user.ID, view.SessionID, answers)
	require.NoError(t, err)

	require.NotNil(t, result.Score)
	assert.Equal(t, 50, *result.Score)
	assert.False(t, result.PendingReview)
	assert.Equal(t, 500, result.NewXP)
	assert.Equal(t, 1, result.NewLevel)

	var attempt model.Attempt
	require.NoError(t, db.Where("id = ?", result.AttemptID).First(&attempt).Error)
	assert.True(t, attempt.IsGraded)

	// The session is closed; a second submit is rejected.
	_, err = svc.Submit(user.ID, view.SessionID, answers)
	assert.ErrorIs(t, err, util.ErrSessionClosed)
}

func TestSubmitPlacement(t *testing.T) {
	db := newTestDB(t)
	svc := newExamService(db)
	user := createUser(t, db, model.RoleCitizen, 0, 0)
	exam := createExam(t, db, true, nil,
		mcqQuestion(0, 1, 0, "a", "b"),
		descriptiveQuestion(0, 2),
	)

	view, err := svc.StartSession(user.ID, exam.ID)
	require.NoError(t, err)

	answers := []model.Answer{
		mcqAnswer(exam.Questions[0].ID, 0),
		textAnswer(exam.Questions[1].ID, "essay"),
	}

	result, err := svc.Submit(user.ID, view.SessionID, answers)
	require.NoError(t, err)

	// Placement scores immediately even with a descriptive question.
	require.NotNil(t, result.Score)
	assert.Equal(t, 90, *result.Score)
	assert.Equal(t, 9, result.NewLevel)
	assert.Equal(t, 900, result.NewXP)

	// A placed citizen cannot sit the placement again without a grant.
	_, err = svc.StartSession(user.ID, exam.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}

func TestSubmitDescriptiveQueuesForGrading(t *testing.T) {
	db := newTestDB(t)
	svc := newExamService(db)
	user := createUser(t, db, model.RoleCitizen, 1, 0)
	content := createTextContent(t, db, 1)
	exam := createExam(t, db, false, &content.ID,
		mcqQuestion(0, 1, 0, "a", "b"),
		descriptiveQuestion(0, 2),
	)

	view, err := svc.StartSession(user.ID, exam.ID)
	require.NoError(t, err)

	result, err := svc.Submit(user.ID, view.SessionID, []model.Answer{
		mcqAnswer(exam.Questions[0].ID, 0),
		textAnswer(exam.Questions[1].ID, "essay"),
	})
	require.NoError(t, err)

	assert.True(t, result.PendingReview)
	assert.Nil(t, result.Score)
	assert.Equal(t, 0, result.NewXP)

	var attempt model.Attempt
	require.NoError(t, db.Where("id = ?", result.AttemptID).First(&attempt).Error)
	assert.False(t, attempt.IsGraded)
	assert.Nil(t, attempt.Score)
}

func TestSubmitRejectsInvalidAnswers(t *testing.T) {
	db := newTestDB(t)
	svc := newExamService(db)
	user := createUser(t, db, model.RoleCitizen, 1, 0)
	content := createTextContent(t, db, 1)
	exam := createExam(t, db, false, &content.ID, mcqQuestion(0, 1, 0, "a", "b"))

	view, err := svc.StartSession(user.ID, exam.ID)
	require.NoError(t, err)

	_, err = svc.Submit(user.ID, view.SessionID, []model.Answer{mcqAnswer(exam.Questions[0].ID, 7)})
	assert.ErrorIs(t, err, util.ErrInvalidAnswer)

	// Rejected submits leave the session open.
	_, err = svc.Submit(user.ID, view.SessionID, []model.Answer{mcqAnswer(exam.Questions[0].ID, 0)})
	require.NoError(t, err)
}

func TestCancelSession(t *testing.T) {
	db := newTestDB(t)
	svc := newExamService(db)
	user := createUser(t, db, model.RoleCitizen, 1, 0)
	content := createTextContent(t, db, 1)
	exam := createExam(t, db, false, &content.ID, mcqQuestion(0, 1, 0, "a", "b"))

	view, err := svc.StartSession(user.ID, exam.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(user.ID, view.SessionID))

	// No attempt is recorded for a cancelled session.
	var count int64
	require.NoError(t, db.Model(&model.Attempt{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Zero(t, count)

	_, err = svc.Submit(user.ID, view.SessionID, nil)
	assert.ErrorIs(t, err, util.ErrSessionClosed)
}

func TestSessionOwnership(t *testing.T) {
	db := newTestDB(t)
	svc := newExamService(db)
	owner := createUser(t, db, model.RoleCitizen, 1, 0)
	other := createUser(t, db, model.RoleCitizen, 1, 0)
	content := createTextContent(t, db, 1)
	exam := createExam(t, db, false, &content.ID, mcqQuestion(0, 1, 0, "a", "b"))

	view, err := svc.StartSession(owner.ID, exam.ID)
	require.NoError(t, err)

	_, err = svc.Submit(other.ID, view.SessionID, nil)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}

func TestExpireDueSessions(t *testing.T) {
	db := newTestDB(t)
	svc := newExamService(db)
	user := createUser(t, db, model.RoleCitizen, 1, 0)
	content := createTextContent(t, db, 1)
	exam := createExam(t, db, false, &content.ID,
		mcqQuestion(0, 1, 0, "a", "b"),
	)

	saved, err := json.Marshal([]model.Answer{mcqAnswer(exam.Questions[0].ID, 0)})
	require.NoError(t, err)

	session := &model.ExamSession{
		UserID:    user.ID,
		ExamID:    exam.ID,
		Answers:   saved,
		StartedAt: time.Now().Add(-time.Hour),
		ExpiresAt: time.Now().Add(-time.Minute),
		Status:    model.SessionActive,
	}
	require.NoError(t, db.Create(session).Error)

	svc.ExpireDueSessions()

	var refreshed model.ExamSession
	require.NoError(t, db.Where("id = ?", session.ID).First(&refreshed).Error)
	assert.Equal(t, model.SessionExpired, refreshed.Status)

	// Saved progress was graded as the final submission.
	var attempt model.Attempt
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&attempt).Error)
	require.NotNil(t, attempt.Score)
	assert.Equal(t, 100, *attempt.Score)

	// The sweep is idempotent.
	svc.ExpireDueSessions()
	var count int64
	require.NoError(t, db.Model(&model.Attempt{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestExpireDueSessionsMalformedAnswers(t *testing.T) {
	db := newTestDB(t)
	svc := newExamService(db)
	user := createUser(t, db, model.RoleCitizen, 1, 0)
	content := createTextContent(t, db, 1)
	exam := createExam(t, db, false, &content.ID,
		mcqQuestion(0, 1, 0, "a", "b"),
	)

	session := &model.ExamSession{
		UserID:    user.ID,
		ExamID:    exam.ID,
		Answers:   json.RawMessage(`{"broken`),
		StartedAt: time.Now().Add(-time.Hour),
		ExpiresAt: time.Now().Add(-time.Minute),
		Status:    model.SessionActive,
	}
	require.NoError(t, db.Create(session).Error)

	svc.ExpireDueSessions()

	var refreshed model.ExamSession
	require.NoError(t, db.Where("id = ?", session.ID).First(&refreshed).Error)
	assert.Equal(t, model.SessionExpired, refreshed.Status)

	// Undecodable progress grades as no answers at all.
	var attempt model.Attempt
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&attempt).Error)
	require.NotNil(t, attempt.Score)
	assert.Equal(t, 0, *attempt.Score)
}

func TestSubmitFailureKeepsSessionOpen(t *testing.T) {
	db := newTestDB(t)
	svc := newExamService(db)
	user := createUser(t, db, model.RoleCitizen, 1, 0)
	content := createTextContent(t, db, 1)
	exam := createExam(t, db, false, &content.ID,
		mcqQuestion(0, 1, 0, "a", "b"),
	)

	view, err := svc.StartSession(user.ID, exam.ID)
	require.NoError(t, err)
	answers := []model.Answer{mcqAnswer(exam.Questions[0].ID, 0)}

	// Make the grading transaction fail after the session flip.
	require.NoError(t, db.Unscoped().Delete(&model.User{}, user.ID).Error)

	_, err = svc.Submit(user.ID, view.SessionID, answers)
	require.Error(t, err)

	// The rollback reopens the session and no half-written attempt remains.
	var session model.ExamSession
	require.NoError(t, db.Where("id = ?", view.SessionID).First(&session).Error)
	assert.Equal(t, model.SessionActive, session.Status)

	var count int64
	require.NoError(t, db.Model(&model.Attempt{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)

	// Once the cause clears, the same session submits cleanly.
	require.NoError(t, db.Create(user).Error)
	result, err := svc.Submit(user.ID, view.SessionID, answers)
	require.NoError(t, err)
	require.NotNil(t, result.Score)
	assert.Equal(t, 100, *result.Score)
}

func TestCreateExamDraftStaysInactive(t *testing.T) {
	db := newTestDB(t)
	svc := newExamService(db)
	author := createUser(t, db, model.RoleTeacher, util.StaffDefaultLevel, 0)
	citizen := createUser(t, db, model.RoleCitizen, 5, 0)
	content := createTextContent(t, db, 1)
	content.AuthorID = author.ID
	require.NoError(t, db.Save(content).Error)

	draft := false
	correct := 0
	exam, err := svc.CreateExam(author, ExamRequest{
		Title:     "آزمون پیش‌نویس",
		ContentID: &content.ID,
		TimeLimit: 10,
		IsActive:  &draft,
		Questions: []QuestionRequest{{
			Text:          "q",
			Kind:          model.QuestionMCQ,
			Options:       []string{"a", "b"},
			CorrectOption: &correct,
		}},
	})
	require.NoError(t, err)

	// The inactive flag must survive the insert as written.
	var reloaded model.Exam
	require.NoError(t, db.First(&reloaded, exam.ID).Error)
	assert.False(t, reloaded.IsActive)

	_, err = svc.StartSession(citizen.ID, exam.ID)
	assert.ErrorIs(t, err, util.ErrExamNotFound)
}
