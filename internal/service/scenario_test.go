package service

import (
	"encoding/json"
	"testing"

	"cogniedu_backend/internal/model"
	"cogniedu_backend/internal/repository"
	"cogniedu_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func sampleSteps() []model.ScenarioStep {
	return []model.ScenarioStep{
		{
			ID:   "start",
			Text: "A rumor spreads on social media.",
			Choices: []model.ScenarioChoice{
				{Text: "Share it", Impact: -10, Feedback: "Check sources first.", NextStepID: "fallout"},
				{Text: "Verify it", Impact: 10, Feedback: "Good instinct.", NextStepID: "verify"},
			},
		},
		{
			ID:   "fallout",
			Text: "The rumor turns out false.",
			Choices: []model.ScenarioChoice{
				{Text: "Post a correction", Impact: 5, Feedback: "Damage partly undone."},
			},
		},
		{
			ID:   "verify",
			Text: "You find the original report.",
			Choices: []model.ScenarioChoice{
				{Text: "Share the facts", Impact: 15, Feedback: "Well done."},
				{Text: "Start over", Impact: 0, Feedback: "Back to the feed.", NextStepID: "start"},
			},
		},
	}
}

func createScenario(t *testing.T, db *gorm.DB, steps []model.ScenarioStep) *model.Content {
	t.Helper()

	raw, err := json.Marshal(steps)
	require.NoError(t, err)

	content := &model.Content{
		Title:    "media literacy drill",
		Kind:     model.ContentScenario,
		MinLevel: 1,
		MaxLevel: 10,
		IsActive: true,
		Steps:    raw,
	}
	require.NoError(t, db.Create(content).Error)
	return content
}

func TestScenarioStart(t *testing.T) {
	db := newTestDB(t)
	svc := NewScenarioService(repository.NewContentRepository(db))
	content := createScenario(t, db, sampleSteps())
	user := createUser(t, db, model.RoleCitizen, 2, 0)

	step, err := svc.Start(user, content.ID)
	require.NoError(t, err)

	assert.Equal(t, "start", step.ID)
	require.Len(t, step.Choices, 2)
	// Choices are stripped of feedback and branch targets.
	assert.Equal(t, "Share it", step.Choices[0].Text)
}

func TestScenarioTransition(t *testing.T) {
	db := newTestDB(t)
	svc := NewScenarioService(repository.NewContentRepository(db))
	content := createScenario(t, db, sampleSteps())
	user := createUser(t, db, model.RoleCitizen, 2, 0)

	t.Run("branch to next step", func(t *testing.T) {
		result, err := svc.Transition(user, content.ID, "start", 1)
		require.NoError(t, err)

		assert.False(t, result.Finished)
		assert.Equal(t, "Good instinct.", result.Feedback)
		assert.Equal(t, 10, result.Impact)
		require.NotNil(t, result.Next)
		assert.Equal(t, "verify", result.Next.ID)
	})

	t.Run("choice without next step finishes", func(t *testing.T) {
		result, err := svc.Transition(user, content.ID, "verify", 0)
		require.NoError(t, err)

		assert.True(t, result.Finished)
		assert.Equal(t, "Well done.", result.Feedback)
		assert.Equal(t, 15, result.Impact)
		assert.Nil(t, result.Next)
	})

	t.Run("arriving at a choice-less step finishes", func(t *testing.T) {
		steps := sampleSteps()
		steps[1].Choices = nil // fallout becomes a closing step
		closing := createScenario(t, db, steps)

		result, err := svc.Transition(user, closing.ID, "start", 0)
		require.NoError(t, err)

		assert.True(t, result.Finished)
		assert.Equal(t, "Check sources first.", result.Feedback)
		assert.Equal(t, -10, result.Impact)
		require.NotNil(t, result.Next)
		assert.Equal(t, "fallout", result.Next.ID)
		assert.Empty(t, result.Next.Choices)
	})

	t.Run("cycle back to entry is allowed", func(t *testing.T) {
		result, err := svc.Transition(user, content.ID, "verify", 1)
		require.NoError(t, err)

		assert.False(t, result.Finished)
		assert.Equal(t, "start", result.Next.ID)
	})

	t.Run("unknown step rejected", func(t *testing.T) {
		_, err := svc.Transition(user, content.ID, "nope", 0)
		assert.ErrorIs(t, err, util.ErrMalformedScenario)
	})

	t.Run("choice index out of range rejected", func(t *testing.T) {
		_, err := svc.Transition(user, content.ID, "fallout", 5)
		assert.ErrorIs(t, err, util.ErrMalformedScenario)
	})

	t.Run("locked content denied", func(t *testing.T) {
		locked := createScenario(t, db, sampleSteps())
		locked.MinLevel = 9
		require.NoError(t, db.Save(locked).Error)

		_, err := svc.Transition(user, locked.ID, "start", 0)
		assert.ErrorIs(t, err, util.ErrPermissionDenied)
	})
}

func TestValidateScenario(t *testing.T) {
	t.Run("valid graph passes", func(t *testing.T) {
		assert.NoError(t, ValidateScenario(sampleSteps()))
	})

	t.Run("empty scenario rejected", func(t *testing.T) {
		assert.ErrorIs(t, ValidateScenario(nil), util.ErrMalformedScenario)
	})

	t.Run("duplicate step ids rejected", func(t *testing.T) {
		steps := sampleSteps()
		steps[1].ID = "start"
		assert.ErrorIs(t, ValidateScenario(steps), util.ErrMalformedScenario)
	})

	t.Run("dangling branch target rejected", func(t *testing.T) {
		steps := sampleSteps()
		steps[0].Choices[0].NextStepID = "missing"
		assert.ErrorIs(t, ValidateScenario(steps), util.ErrMalformedScenario)
	})

	t.Run("unreachable step rejected", func(t *testing.T) {
		steps := append(sampleSteps(), model.ScenarioStep{
			ID:      "island",
			Text:    "unreachable",
			Choices: []model.ScenarioChoice{{Text: "end", Feedback: "done"}},
		})
		assert.ErrorIs(t, ValidateScenario(steps), util.ErrMalformedScenario)
	})

	t.Run("step without choices is a valid closing step", func(t *testing.T) {
		steps := sampleSteps()
		steps[1].Choices = nil
		assert.NoError(t, ValidateScenario(steps))
	})
}
