package service

import (
	"encoding/json"
	"fmt"
	"os"
	"sync/atomic"
	"testing"

	"cogniedu_backend/internal/model"
	"cogniedu_backend/pkg/database"
	"cogniedu_backend/pkg/logger"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

var userSeq atomic.Uint64

func createUser(t *testing.T, db *gorm.DB, role model.UserRole, level, xp int) *model.User {
	t.Helper()

	user := &model.User{
		Name:     "test user",
		Email:    fmt.Sprintf("user-%d@example.com", userSeq.Add(1)),
		Password: "hashed",
		Role:     role,
		Level:    level,
		XP:       xp,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func mcqQuestion(examID uint, order, correct int, options ...string) model.Question {
	raw, _ := json.Marshal(options)
	return model.Question{
		ExamID:        examID,
		Text:          "q",
		Kind:          model.QuestionMCQ,
		Options:       raw,
		CorrectOption: &correct,
		Order:         order,
	}
}

func descriptiveQuestion(examID uint, order int) model.Question {
	return model.Question{
		ExamID: examID,
		Text:   "q",
		Kind:   model.QuestionDescriptive,
		Order:  order,
	}
}

func createExam(t *testing.T, db *gorm.DB, isPlacement bool, contentID *uint, questions ...model.Question) *model.Exam {
	t.Helper()

	exam := &model.Exam{
		Title:       "test exam",
		ContentID:   contentID,
		IsPlacement: isPlacement,
		TimeLimit:   10,
		IsActive:    true,
	}
	require.NoError(t, db.Create(exam).Error)
	for i := range questions {
		questions[i].ExamID = exam.ID
		require.NoError(t, db.Create(&questions[i]).Error)
	}
	require.NoError(t, db.Preload("Questions").First(exam, exam.ID).Error)
	return exam
}

func mcqAnswer(questionID uint, option int) model.Answer {
	return model.Answer{QuestionID: questionID, SelectedOption: &option}
}

func textAnswer(questionID uint, text string) model.Answer {
	return model.Answer{QuestionID: questionID, Text: text}
}
