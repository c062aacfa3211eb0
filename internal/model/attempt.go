package model

import (
	"encoding/json"
	"time"
)

// Answer is one submitted answer, a tagged union keyed by the question kind:
// mcq answers carry SelectedOption, descriptive answers carry Text. The
// scoring engine validates the shape at its boundary.
type Answer struct {
	QuestionID     uint   `json:"questionId"`
	SelectedOption *int   `json:"selectedOption,omitempty"`
	Text           string `json:"text,omitempty"`
}

// Attempt is one user's submission against one exam. Immutable once created,
// except for the single ungraded-to-graded flip performed by the grading
// workflow. Attempts are never deleted.
//
// swagger:model Attempt
type Attempt struct {
	UUIDBase
	UserID   uint            `gorm:"index;not null" json:"userId"`
	ExamID   uint            `gorm:"index;not null" json:"examId"`
	Answers  json.RawMessage `gorm:"type:json" json:"answers"`
	Score    *int            `json:"score,omitempty"`
	IsGraded bool            `gorm:"default:false" json:"isGraded"`
}

func (Attempt) TableName() string {
	return "attempts"
}

// AnswerList decodes the Answers payload.
func (a *Attempt) AnswerList() ([]Answer, error) {
	if len(a.Answers) == 0 {
		return nil, nil
	}
	var answers []Answer
	if err := json.Unmarshal(a.Answers, &answers); err != nil {
		return nil, err
	}
	return answers, nil
}

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionSubmitted SessionStatus = "submitted"
	SessionExpired   SessionStatus = "expired"
	SessionCancelled SessionStatus = "cancelled"
)

// ExamSession is one in-progress, countdown-governed sitting of an exam.
// Finalization (submit or expiry) happens exactly once; the status column
// guards against a double transition. A cancelled session leaves no Attempt.
type ExamSession struct {
	UUIDBase
	UserID    uint            `gorm:"index;not null" json:"userId"`
	ExamID    uint            `gorm:"index;not null" json:"examId"`
	Answers   json.RawMessage `gorm:"type:json" json:"answers,omitempty"`
	StartedAt time.Time       `json:"startedAt"`
	ExpiresAt time.Time       `gorm:"index" json:"expiresAt"`
	Status    SessionStatus   `gorm:"size:20;default:'active';index" json:"status"`
}

func (ExamSession) TableName() string {
	return "exam_sessions"
}

// AnswerList decodes the session's saved answer snapshot.
func (s *ExamSession) AnswerList() ([]Answer, error) {
	if len(s.Answers) == 0 {
		return nil, nil
	}
	var answers []Answer
	if err := json.Unmarshal(s.Answers, &answers); err != nil {
		return nil, err
	}
	return answers, nil
}
