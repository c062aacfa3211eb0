package service

import (
	"encoding/json"
	"errors"
	"time"

	"cogniedu_backend/internal/model"
	"cogniedu_backend/internal/repository"
	"cogniedu_backend/internal/util"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"cogniedu_backend/pkg/logger"
	"cogniedu_backend/pkg/monitoring"
)

// ExamService runs the exam lifecycle: starting a timed session, snapshotting
// progress, submitting for scoring, and force-submitting overdue sessions.
type ExamService struct {
	DB          *gorm.DB
	ExamRepo    *repository.ExamRepository
	UserRepo    *repository.UserRepository
	ContentRepo *repository.ContentRepository
	AttemptRepo *repository.AttemptRepository
	SessionRepo *repository.SessionRepository
}

func NewExamService(db *gorm.DB, examRepo *repository.ExamRepository, userRepo *repository.UserRepository,
	contentRepo *repository.ContentRepository, attemptRepo *repository.AttemptRepository,
	sessionRepo *repository.SessionRepository) *ExamService {
	return &ExamService{
		DB:          db,
		ExamRepo:    examRepo,
		UserRepo:    userRepo,
		ContentRepo: contentRepo,
		AttemptRepo: attemptRepo,
		SessionRepo: sessionRepo,
	}
}

// TakerQuestion is a question as shown to the exam taker, with the correct
// option withheld.
type TakerQuestion struct {
	ID      uint               `json:"id"`
	Text    string             `json:"text"`
	Kind    model.QuestionKind `json:"kind"`
	Options []string           `json:"options,omitempty"`
	Order   int                `json:"order"`
}

type SessionView struct {
	SessionID string          `json:"sessionId"`
	ExamID    uint            `json:"examId"`
	Title     string          `json:"title"`
	Questions []TakerQuestion `json:"questions"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

// SubmitResult is what the taker sees after submitting. PendingReview means
// a grader still has to score descriptive answers.
type SubmitResult struct {
	AttemptID     string `json:"attemptId"`
	Score         *int   `json:"score,omitempty"`
	PendingReview bool   `json:"pendingReview"`
	NewLevel      int    `json:"newLevel"`
	NewXP         int    `json:"newXp"`
}

// StartSession opens a timed session for the exam, reusing an already active
// one so a page reload does not reset the countdown.
func (s *ExamService) StartSession(userID, examID uint) (*SessionView, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, userErr(err)
	}
	exam, err := s.ExamRepo.FindByID(examID)
	if err != nil {
		return nil, examErr(err)
	}
	if !exam.IsActive {
		return nil, util.ErrExamNotFound
	}

	var content *model.Content
	if exam.ContentID != nil {
		content, err = s.ContentRepo.FindByID(*exam.ContentID)
		if err != nil {
			return nil, contentErr(err)
		}
	}
	if err := CanTakeExam(user, exam, content); err != nil {
		return nil, err
	}

	session, err := s.SessionRepo.FindActiveByUserAndExam(userID, examID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		session = &model.ExamSession{
			UserID:    userID,
			ExamID:    examID,
			StartedAt: time.Now(),
			ExpiresAt: time.Now().Add(time.Duration(exam.TimeLimit) * time.Minute),
			Status:    model.SessionActive,
		}
		if err := s.SessionRepo.Create(session); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	return s.sessionView(session, exam)
}

// SaveProgress snapshots the taker's current answers on the active session.
func (s *ExamService) SaveProgress(userID uint, sessionID string, answers []model.Answer) error {
	session, err := s.ownedActiveSession(userID, sessionID)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(answers)
	if err != nil {
		return err
	}
	session.Answers = raw
	return s.SessionRepo.Update(session)
}

// Submit closes the session and grades the attempt. MCQ only exams score
// immediately; anything with a descriptive question lands in the grading
// queue ungraded.
func (s *ExamService) Submit(userID uint, sessionID string, answers []model.Answer) (*SubmitResult, error) {
	session, err := s.ownedActiveSession(userID, sessionID)
	if err != nil {
		return nil, err
	}

	exam, err := s.ExamRepo.FindByID(session.ExamID)
	if err != nil {
		return nil, examErr(err)
	}
	if err := ValidateAnswers(exam.Questions, answers); err != nil {
		return nil, err
	}

	result, err := s.grade(userID, session.ID, exam, answers, model.SessionSubmitted)
	if err != nil {
		return nil, err
	}
	monitoring.ExamSubmissions.WithLabelValues(submitOutcome(result)).Inc()
	return result, nil
}

// Cancel abandons an active session. No attempt is recorded.
func (s *ExamService) Cancel(userID uint, sessionID string) error {
	if _, err := s.ownedActiveSession(userID, sessionID); err != nil {
		return err
	}
	closed, err := s.SessionRepo.Close(sessionID, model.SessionCancelled)
	if err != nil {
		return err
	}
	if !closed {
		return util.ErrSessionClosed
	}
	return nil
}

// ExpireDueSessions force-submits every overdue session using its last saved
// answers. The status guard inside grade keeps each session from being
// finalized twice when a submit races the sweep.
func (s *ExamService) ExpireDueSessions() {
	sessions, err := s.SessionRepo.ListOverdue(time.Now())
	if err != nil {
		logger.Log.Error("failed to list overdue sessions", zap.Error(err))
		return
	}

	for _, session := range sessions {
		exam, err := s.ExamRepo.FindByID(session.ExamID)
		if err != nil {
			logger.Log.Error("expired session references missing exam",
				zap.String("session_id", session.ID), zap.Error(err))
			continue
		}

		answers, err := session.AnswerList()
		if err != nil {
			logger.Log.Error("expired session has malformed answers",
				zap.String("session_id", session.ID), zap.Error(err))
			answers = nil
		}

		if _, err := s.grade(session.UserID, session.ID, exam, answers, model.SessionExpired); err != nil {
			if errors.Is(err, util.ErrSessionClosed) {
				// A submit won the race.
				continue
			}
			logger.Log.Error("failed to grade expired session",
				zap.String("session_id", session.ID), zap.Error(err))
			continue
		}
		monitoring.SessionExpirations.Inc()
		logger.Log.Info("session force-submitted on expiry",
			zap.String("session_id", session.ID), zap.Uint("user_id", session.UserID))
	}
}

// StartExpiryWorker sweeps for overdue sessions until the stop channel
// closes.
func (s *ExamService) StartExpiryWorker(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.ExpireDueSessions()
			case <-stop:
				return
			}
		}
	}()
}

// ListAttempts returns the caller's own attempt history.
func (s *ExamService) ListAttempts(userID uint) ([]model.Attempt, error) {
	return s.AttemptRepo.FindByUser(userID)
}

// GetForTaker returns the exam with correct options withheld, without
// opening a session.
func (s *ExamService) GetForTaker(userID, examID uint) (*SessionView, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, userErr(err)
	}
	exam, err := s.ExamRepo.FindByID(examID)
	if err != nil {
		return nil, examErr(err)
	}
	if !exam.IsActive {
		return nil, util.ErrExamNotFound
	}

	var content *model.Content
	if exam.ContentID != nil {
		content, err = s.ContentRepo.FindByID(*exam.ContentID)
		if err != nil {
			return nil, contentErr(err)
		}
	}
	if err := CanTakeExam(user, exam, content); err != nil {
		return nil, err
	}

	questions, err := takerQuestions(exam.Questions)
	if err != nil {
		return nil, err
	}
	return &SessionView{ExamID: exam.ID, Title: exam.Title, Questions: questions}, nil
}

// GetPlacement returns the active placement exam for the caller.
func (s *ExamService) GetPlacement(userID uint) (*SessionView, error) {
	exam, err := s.ExamRepo.FindPlacement()
	if err != nil {
		return nil, examErr(err)
	}
	return s.GetForTaker(userID, exam.ID)
}

// grade finalizes the session and records the attempt in one transaction.
// If scoring or progression fails, the rollback reopens the session so the
// sitting is not lost.
func (s *ExamService) grade(userID uint, sessionID string, exam *model.Exam, answers []model.Answer, to model.SessionStatus) (*SubmitResult, error) {
	raw, err := json.Marshal(answers)
	if err != nil {
		return nil, err
	}

	result := &SubmitResult{}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		closed, err := s.SessionRepo.CloseTx(tx, sessionID, to)
		if err != nil {
			return err
		}
		if !closed {
			return util.ErrSessionClosed
		}

		var user model.User
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}

		attempt := &model.Attempt{
			UserID:  userID,
			ExamID:  exam.ID,
			Answers: raw,
		}

		if exam.IsPlacement {
			score := ScorePlacement(exam.Questions, answers)
			attempt.Score = &score
			attempt.IsGraded = true
			if err := tx.Create(attempt).Error; err != nil {
				return err
			}
			if err := Place(tx, &user, exam.ID, score); err != nil {
				return err
			}
			result.Score = &score
		} else {
			outcome := ScoreExam(exam.Questions, answers)
			if outcome.NeedsManual {
				if err := tx.Create(attempt).Error; err != nil {
					return err
				}
				result.PendingReview = true
			} else {
				score := outcome.Score
				attempt.Score = &score
				attempt.IsGraded = true
				if err := tx.Create(attempt).Error; err != nil {
					return err
				}
				if err := Advance(tx, &user, exam.ID, exam.ContentID, score); err != nil {
					return err
				}
				result.Score = &score
			}
		}

		result.AttemptID = attempt.ID
		result.NewLevel = user.Level
		result.NewXP = user.XP
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *ExamService) ownedActiveSession(userID uint, sessionID string) (*model.ExamSession, error) {
	session, err := s.SessionRepo.FindByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSessionNotFound
		}
		return nil, err
	}
	if session.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	if session.Status != model.SessionActive {
		return nil, util.ErrSessionClosed
	}
	if time.Now().After(session.ExpiresAt) {
		return nil, util.ErrSessionClosed
	}
	return session, nil
}

func (s *ExamService) sessionView(session *model.ExamSession, exam *model.Exam) (*SessionView, error) {
	questions, err := takerQuestions(exam.Questions)
	if err != nil {
		return nil, err
	}
	return &SessionView{
		SessionID: session.ID,
		ExamID:    exam.ID,
		Title:     exam.Title,
		Questions: questions,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

func takerQuestions(questions []model.Question) ([]TakerQuestion, error) {
	out := make([]TakerQuestion, len(questions))
	for i, q := range questions {
		opts, err := q.OptionList()
		if err != nil {
			return nil, err
		}
		out[i] = TakerQuestion{
			ID:      q.ID,
			Text:    q.Text,
			Kind:    q.Kind,
			Options: opts,
			Order:   q.Order,
		}
	}
	return out, nil
}

func submitOutcome(result *SubmitResult) string {
	if result.PendingReview {
		return "pending_review"
	}
	return "scored"
}

func userErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrUserNotFound
	}
	return err
}

func examErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrExamNotFound
	}
	return err
}

func contentErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrContentNotFound
	}
	return err
}
