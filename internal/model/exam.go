package model

import (
	"encoding/json"
)

type QuestionKind string

const (
	QuestionMCQ         QuestionKind = "mcq"
	QuestionDescriptive QuestionKind = "descriptive"
)

// swagger:model Question
type Question struct {
	BaseModel
	ExamID uint         `gorm:"index;not null" json:"examId"`
	Text   string       `gorm:"type:text;not null" json:"text"`
	Kind   QuestionKind `gorm:"size:20;not null" json:"kind"`
	// Options is a JSON array of option strings; mcq only.
	Options json.RawMessage `gorm:"type:json" json:"options,omitempty"`
	// CorrectOption is a zero-based index into Options; mcq only.
	CorrectOption *int `json:"correctOption,omitempty"`
	Order         int  `gorm:"default:0" json:"order"`
}

func (Question) TableName() string {
	return "questions"
}

// OptionList decodes the Options payload.
func (q *Question) OptionList() ([]string, error) {
	if len(q.Options) == 0 {
		return nil, nil
	}
	var opts []string
	if err := json.Unmarshal(q.Options, &opts); err != nil {
		return nil, err
	}
	return opts, nil
}

// swagger:model Exam
type Exam struct {
	BaseModel
	Title string `gorm:"size:255;not null" json:"title"`
	// ContentID is nil for the placement exam, which is not tied to content.
	ContentID   *uint      `gorm:"index" json:"contentId,omitempty"`
	IsPlacement bool       `gorm:"default:false" json:"isPlacement"`
	TimeLimit   int        `gorm:"default:0" json:"timeLimit"` // Minutes
	// No column default, same reason as Content.IsActive: gorm would skip
	// a false value on insert and activate the draft.
	IsActive  bool       `json:"isActive"`
	Questions []Question `gorm:"foreignKey:ExamID" json:"questions,omitempty"`
}

func (Exam) TableName() string {
	return "exams"
}
