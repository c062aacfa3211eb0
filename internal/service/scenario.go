package service

import (
	"errors"

	"cogniedu_backend/internal/model"
	"cogniedu_backend/internal/repository"
	"cogniedu_backend/internal/util"

	"gorm.io/gorm"
)

// ScenarioService walks branching scenario contents. The first step in the
// steps array is the entry point; a choice with an empty NextStepID ends the
// scenario, as does arriving at a step without choices.
type ScenarioService struct {
	ContentRepo *repository.ContentRepository
}

func NewScenarioService(contentRepo *repository.ContentRepository) *ScenarioService {
	return &ScenarioService{ContentRepo: contentRepo}
}

// StepView is a scenario step as presented to the player, feedback and
// branch targets stripped from the choices.
type StepView struct {
	ID      string       `json:"id"`
	Text    string       `json:"text"`
	Choices []ChoiceView `json:"choices"`
}

type ChoiceView struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// TransitionResult reports the outcome of picking a choice. Finished marks a
// terminal choice; Feedback and Impact belong to the chosen option only.
type TransitionResult struct {
	Finished bool      `json:"finished"`
	Feedback string    `json:"feedback,omitempty"`
	Impact   int       `json:"impact"`
	Next     *StepView `json:"next,omitempty"`
}

// Start returns the entry step of a scenario content.
func (s *ScenarioService) Start(user *model.User, contentID uint) (*StepView, error) {
	steps, err := s.loadScenario(user, contentID)
	if err != nil {
		return nil, err
	}
	return stepView(&steps[0]), nil
}

// Transition applies a choice at the given step. Unknown step or choice ids
// are rejected outright rather than restarting from the entry step.
func (s *ScenarioService) Transition(user *model.User, contentID uint, stepID string, choiceIndex int) (*TransitionResult, error) {
	steps, err := s.loadScenario(user, contentID)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*model.ScenarioStep, len(steps))
	for i := range steps {
		byID[steps[i].ID] = &steps[i]
	}

	step, ok := byID[stepID]
	if !ok {
		return nil, util.ErrMalformedScenario
	}
	if choiceIndex < 0 || choiceIndex >= len(step.Choices) {
		return nil, util.ErrMalformedScenario
	}

	choice := step.Choices[choiceIndex]
	if choice.NextStepID == "" {
		return &TransitionResult{
			Finished: true,
			Feedback: choice.Feedback,
			Impact:   choice.Impact,
		}, nil
	}

	next, ok := byID[choice.NextStepID]
	if !ok {
		return nil, util.ErrMalformedScenario
	}

	return &TransitionResult{
		// A choice-less step is a closing step: it is shown but offers no
		// way onward.
		Finished: len(next.Choices) == 0,
		Feedback: choice.Feedback,
		Impact:   choice.Impact,
		Next:     stepView(next),
	}, nil
}

func (s *ScenarioService) loadScenario(user *model.User, contentID uint) ([]model.ScenarioStep, error) {
	content, err := s.ContentRepo.FindByID(contentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrContentNotFound
		}
		return nil, err
	}
	if content.Kind != model.ContentScenario || !content.IsActive {
		return nil, util.ErrContentNotFound
	}
	if !CanAccessContent(user, content) {
		return nil, util.ErrPermissionDenied
	}

	steps, err := content.ScenarioSteps()
	if err != nil {
		return nil, util.ErrMalformedScenario
	}
	if len(steps) == 0 {
		return nil, util.ErrMalformedScenario
	}
	return steps, nil
}

// ValidateScenario checks a scenario definition at authoring time: at least
// one step, unique step ids, and every branch target resolvable and
// reachable from the entry step. Cycles are allowed; a step without choices
// is a valid closing step.
func ValidateScenario(steps []model.ScenarioStep) error {
	if len(steps) == 0 {
		return util.ErrMalformedScenario
	}

	byID := make(map[string]*model.ScenarioStep, len(steps))
	for i := range steps {
		if steps[i].ID == "" {
			return util.ErrMalformedScenario
		}
		if _, dup := byID[steps[i].ID]; dup {
			return util.ErrMalformedScenario
		}
		byID[steps[i].ID] = &steps[i]
	}

	for _, step := range steps {
		for _, choice := range step.Choices {
			if choice.NextStepID == "" {
				continue
			}
			if _, ok := byID[choice.NextStepID]; !ok {
				return util.ErrMalformedScenario
			}
		}
	}

	visited := make(map[string]bool, len(steps))
	queue := []string{steps[0].ID}
	visited[steps[0].ID] = true
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, choice := range byID[id].Choices {
			if choice.NextStepID != "" && !visited[choice.NextStepID] {
				visited[choice.NextStepID] = true
				queue = append(queue, choice.NextStepID)
			}
		}
	}
	if len(visited) != len(steps) {
		return util.ErrMalformedScenario
	}
	return nil
}

func stepView(step *model.ScenarioStep) *StepView {
	choices := make([]ChoiceView, len(step.Choices))
	for i, c := range step.Choices {
		choices[i] = ChoiceView{Index: i, Text: c.Text}
	}
	return &StepView{ID: step.ID, Text: step.Text, Choices: choices}
}
