package model

import (
	"encoding/json"
)

type ContentKind string

const (
	ContentText     ContentKind = "text"
	ContentVideo    ContentKind = "video"
	ContentScenario ContentKind = "scenario"
)

// swagger:model Content
type Content struct {
	BaseModel
	Title           string      `gorm:"size:255;not null" json:"title"`
	Description     string      `gorm:"type:text" json:"description"`
	Kind            ContentKind `gorm:"size:20;not null" json:"kind"`
	MinLevel        int         `gorm:"default:1" json:"minLevel"`
	MaxLevel        int         `gorm:"default:10" json:"maxLevel"` // display-only, never gates access
	DurationMinutes int         `gorm:"default:0" json:"durationMinutes"`
	AuthorID        uint        `gorm:"index" json:"authorId"`
	// No column default: a default tag would make gorm skip the field on
	// insert when false, silently publishing drafts.
	IsActive bool `json:"isActive"`

	// Payloads are mutually exclusive by Kind.
	Body     string          `gorm:"type:text" json:"body,omitempty"`
	VideoURL string          `gorm:"size:512" json:"videoUrl,omitempty"`
	Steps    json.RawMessage `gorm:"type:json" json:"steps,omitempty"`
}

func (Content) TableName() string {
	return "contents"
}

// ScenarioStep is one node of a branching scenario graph. Steps are owned by
// their parent Content, serialized into its Steps column, and addressed by
// string id. The first step in the list is the entry step.
type ScenarioStep struct {
	ID      string           `json:"id"`
	Text    string           `json:"text"`
	Choices []ScenarioChoice `json:"choices"`
}

// ScenarioChoice is a branch out of a step. An empty NextStepID marks a
// terminal branch; its Feedback and Impact become the session outcome.
type ScenarioChoice struct {
	Text       string `json:"text"`
	Impact     int    `json:"impact"`
	Feedback   string `json:"feedback"`
	NextStepID string `json:"nextStepId,omitempty"`
}

// ScenarioSteps decodes the Steps payload. Returns nil for non-scenario
// contents.
func (c *Content) ScenarioSteps() ([]ScenarioStep, error) {
	if len(c.Steps) == 0 {
		return nil, nil
	}
	var steps []ScenarioStep
	if err := json.Unmarshal(c.Steps, &steps); err != nil {
		return nil, err
	}
	return steps, nil
}
