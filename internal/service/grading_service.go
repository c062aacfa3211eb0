package service

import (
	"context"
	"errors"

	"cogniedu_backend/internal/model"
	"cogniedu_backend/internal/repository"
	"cogniedu_backend/internal/util"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"cogniedu_backend/pkg/logger"
)

// GradingService is the manual grading queue for attempts with descriptive
// answers.
type GradingService struct {
	DB          *gorm.DB
	AttemptRepo *repository.AttemptRepository
	ExamRepo    *repository.ExamRepository
	UserRepo    *repository.UserRepository
	Advisor     *AdvisorService
}

func NewGradingService(db *gorm.DB, attemptRepo *repository.AttemptRepository,
	examRepo *repository.ExamRepository, userRepo *repository.UserRepository,
	advisor *AdvisorService) *GradingService {
	return &GradingService{
		DB:          db,
		AttemptRepo: attemptRepo,
		ExamRepo:    examRepo,
		UserRepo:    userRepo,
		Advisor:     advisor,
	}
}

// PendingAttempt pairs an ungraded attempt with the context a grader needs.
type PendingAttempt struct {
	AttemptID   string          `json:"attemptId"`
	ExamID      uint            `json:"examId"`
	ExamTitle   string          `json:"examTitle"`
	UserID      uint            `json:"userId"`
	UserName    string          `json:"userName"`
	SubmittedAt string          `json:"submittedAt"`
	Answers     []GradingAnswer `json:"answers"`
}

// GradingAnswer shows one answer next to its question.
type GradingAnswer struct {
	QuestionID     uint               `json:"questionId"`
	QuestionText   string             `json:"questionText"`
	Kind           model.QuestionKind `json:"kind"`
	SelectedOption *int               `json:"selectedOption,omitempty"`
	Text           string             `json:"text,omitempty"`
	Correct        *bool              `json:"correct,omitempty"`
}

// ListPending returns the grading queue, oldest submission first.
func (s *GradingService) ListPending() ([]PendingAttempt, error) {
	attempts, err := s.AttemptRepo.ListPending()
	if err != nil {
		return nil, err
	}

	out := make([]PendingAttempt, 0, len(attempts))
	for _, attempt := range attempts {
		pending, err := s.pendingView(&attempt)
		if err != nil {
			logger.Log.Warn("skipping unreadable pending attempt",
				zap.String("attempt_id", attempt.ID), zap.Error(err))
			continue
		}
		out = append(out, *pending)
	}
	return out, nil
}

// Grade finalizes an ungraded attempt with a manual score and credits the
// taker's progression. Grading is one shot: repeating the same score is a
// no-op, a different score is rejected.
func (s *GradingService) Grade(attemptID string, score int) error {
	if score < 0 || score > 100 {
		return util.ErrInvalidScore
	}

	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrAttemptNotFound
		}
		return err
	}

	if attempt.IsGraded {
		if attempt.Score != nil && *attempt.Score == score {
			return nil
		}
		return util.ErrAttemptAlreadyGraded
	}

	exam, err := s.ExamRepo.FindByID(attempt.ExamID)
	if err != nil {
		return examErr(err)
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Attempt{}).
			Where("id = ? AND is_graded = ?", attemptID, false).
			Updates(map[string]interface{}{"score": score, "is_graded": true})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return util.ErrAttemptAlreadyGraded
		}

		var user model.User
		if err := tx.First(&user, attempt.UserID).Error; err != nil {
			return err
		}

		if exam.IsPlacement {
			return Place(tx, &user, exam.ID, score)
		}
		return Advance(tx, &user, exam.ID, exam.ContentID, score)
	})
}

// SuggestGrade asks the advisor for a proposed score on an ungraded attempt.
// The suggestion is advisory only and never touches the attempt.
func (s *GradingService) SuggestGrade(ctx context.Context, attemptID string) (*GradeSuggestion, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}

	pending, err := s.pendingView(attempt)
	if err != nil {
		return nil, err
	}
	return s.Advisor.SuggestGrade(ctx, pending)
}

func (s *GradingService) pendingView(attempt *model.Attempt) (*PendingAttempt, error) {
	exam, err := s.ExamRepo.FindByID(attempt.ExamID)
	if err != nil {
		return nil, examErr(err)
	}
	user, err := s.UserRepo.FindByID(attempt.UserID)
	if err != nil {
		return nil, userErr(err)
	}
	answers, err := attempt.AnswerList()
	if err != nil {
		return nil, err
	}

	byQuestion := make(map[uint]model.Question, len(exam.Questions))
	for _, q := range exam.Questions {
		byQuestion[q.ID] = q
	}

	out := make([]GradingAnswer, 0, len(answers))
	for _, a := range answers {
		q, ok := byQuestion[a.QuestionID]
		if !ok {
			continue
		}
		ga := GradingAnswer{
			QuestionID:     a.QuestionID,
			QuestionText:   q.Text,
			Kind:           q.Kind,
			SelectedOption: a.SelectedOption,
			Text:           a.Text,
		}
		if q.Kind == model.QuestionMCQ && a.SelectedOption != nil && q.CorrectOption != nil {
			correct := *a.SelectedOption == *q.CorrectOption
			ga.Correct = &correct
		}
		out = append(out, ga)
	}

	return &PendingAttempt{
		AttemptID:   attempt.ID,
		ExamID:      exam.ID,
		ExamTitle:   exam.Title,
		UserID:      user.ID,
		UserName:    user.Name,
		SubmittedAt: attempt.CreatedAt.Format(util.TimeFormat),
		Answers:     out,
	}, nil
}
