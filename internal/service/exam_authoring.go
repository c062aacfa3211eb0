package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"cogniedu_backend/internal/model"
	"cogniedu_backend/internal/util"

	"gorm.io/gorm"
)

type QuestionRequest struct {
	Text          string             `json:"text" binding:"required"`
	Kind          model.QuestionKind `json:"kind" binding:"required"`
	Options       []string           `json:"options"`
	CorrectOption *int               `json:"correctOption"`
	Order         int                `json:"order"`
}

type ExamRequest struct {
	Title     string            `json:"title" binding:"required"`
	ContentID *uint             `json:"contentId"`
	TimeLimit int               `json:"timeLimit" binding:"required"`
	IsActive  *bool             `json:"isActive"`
	Questions []QuestionRequest `json:"questions" binding:"required"`
}

// CreateExam creates an exam with its questions in one transaction. The
// placement exam is seeded, not authored, so ContentID is required here.
func (s *ExamService) CreateExam(actor *model.User, req ExamRequest) (*model.Exam, error) {
	if req.ContentID == nil {
		return nil, errors.New("exam requires a content id")
	}
	content, err := s.ContentRepo.FindByID(*req.ContentID)
	if err != nil {
		return nil, contentErr(err)
	}
	if actor.Role != model.RoleAdmin && content.AuthorID != actor.ID {
		return nil, util.ErrPermissionDenied
	}

	questions, err := buildQuestions(req.Questions)
	if err != nil {
		return nil, err
	}

	exam := &model.Exam{
		Title:     req.Title,
		ContentID: req.ContentID,
		TimeLimit: req.TimeLimit,
		IsActive:  true,
	}
	if req.IsActive != nil {
		exam.IsActive = *req.IsActive
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(exam).Error; err != nil {
			return err
		}
		for i := range questions {
			questions[i].ExamID = exam.ID
			if err := tx.Create(&questions[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	exam.Questions = questions
	return exam, nil
}

// UpdateExam replaces the exam's metadata and its full question list.
func (s *ExamService) UpdateExam(actor *model.User, examID uint, req ExamRequest) (*model.Exam, error) {
	exam, err := s.ExamRepo.FindByID(examID)
	if err != nil {
		return nil, examErr(err)
	}
	if exam.IsPlacement && actor.Role != model.RoleAdmin {
		return nil, util.ErrPermissionDenied
	}
	if !exam.IsPlacement {
		if exam.ContentID == nil {
			return nil, util.ErrExamNotFound
		}
		content, err := s.ContentRepo.FindByID(*exam.ContentID)
		if err != nil {
			return nil, contentErr(err)
		}
		if actor.Role != model.RoleAdmin && content.AuthorID != actor.ID {
			return nil, util.ErrPermissionDenied
		}
	}

	questions, err := buildQuestions(req.Questions)
	if err != nil {
		return nil, err
	}

	exam.Title = req.Title
	exam.TimeLimit = req.TimeLimit
	if req.IsActive != nil {
		exam.IsActive = *req.IsActive
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(exam).Error; err != nil {
			return err
		}
		if err := tx.Where("exam_id = ?", exam.ID).Delete(&model.Question{}).Error; err != nil {
			return err
		}
		for i := range questions {
			questions[i].ID = 0
			questions[i].ExamID = exam.ID
			if err := tx.Create(&questions[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	exam.Questions = questions
	return exam, nil
}

// ListExams returns the full catalog with answers, for staff screens.
func (s *ExamService) ListExams(actor *model.User) ([]model.Exam, error) {
	if actor.Role == model.RoleCitizen {
		return nil, util.ErrPermissionDenied
	}
	return s.ExamRepo.ListAll()
}

func buildQuestions(reqs []QuestionRequest) ([]model.Question, error) {
	if len(reqs) == 0 {
		return nil, errors.New("exam requires at least one question")
	}

	questions := make([]model.Question, len(reqs))
	for i, q := range reqs {
		switch q.Kind {
		case model.QuestionMCQ:
			if len(q.Options) < 2 {
				return nil, fmt.Errorf("question %d: mcq needs at least two options", i+1)
			}
			if q.CorrectOption == nil || *q.CorrectOption < 0 || *q.CorrectOption >= len(q.Options) {
				return nil, fmt.Errorf("question %d: correct option out of range", i+1)
			}
		case model.QuestionDescriptive:
			if len(q.Options) > 0 || q.CorrectOption != nil {
				return nil, fmt.Errorf("question %d: descriptive questions take no options", i+1)
			}
		default:
			return nil, fmt.Errorf("question %d: unknown kind %s", i+1, q.Kind)
		}

		var raw json.RawMessage
		if len(q.Options) > 0 {
			raw, _ = json.Marshal(q.Options)
		}
		order := q.Order
		if order == 0 {
			order = i + 1
		}
		questions[i] = model.Question{
			Text:          q.Text,
			Kind:          q.Kind,
			Options:       raw,
			CorrectOption: q.CorrectOption,
			Order:         order,
		}
	}
	return questions, nil
}
