package service

import (
	"math"

	"cogniedu_backend/internal/model"
	"cogniedu_backend/internal/util"
)

// ScoreOutcome is the result of automatic scoring. When NeedsManual is set
// the Score field is meaningless and the attempt waits in the grading queue.
type ScoreOutcome struct {
	Score       int
	NeedsManual bool
}

// ScoreExam grades a regular exam. Any descriptive question sends the whole
// attempt to manual grading, regardless of the multiple choice answers.
func ScoreExam(questions []model.Question, answers []model.Answer) ScoreOutcome {
	for _, q := range questions {
		if q.Kind == model.QuestionDescriptive {
			return ScoreOutcome{NeedsManual: true}
		}
	}

	if len(questions) == 0 {
		return ScoreOutcome{Score: 100}
	}

	byQuestion := answerIndex(answers)
	correct := 0
	for _, q := range questions {
		a, ok := byQuestion[q.ID]
		if !ok || a.SelectedOption == nil || q.CorrectOption == nil {
			continue
		}
		if *a.SelectedOption == *q.CorrectOption {
			correct++
		}
	}

	score := int(math.Round(float64(correct) / float64(len(questions)) * 100))
	return ScoreOutcome{Score: score}
}

// ScorePlacement grades the placement exam from its multiple choice questions
// only. Descriptive questions never block the result; with no MCQ at all the
// outcome is the neutral midpoint.
func ScorePlacement(questions []model.Question, answers []model.Answer) int {
	byQuestion := answerIndex(answers)

	totalMCQ := 0
	correct := 0
	for _, q := range questions {
		if q.Kind != model.QuestionMCQ {
			continue
		}
		totalMCQ++
		a, ok := byQuestion[q.ID]
		if !ok || a.SelectedOption == nil || q.CorrectOption == nil {
			continue
		}
		if *a.SelectedOption == *q.CorrectOption {
			correct++
		}
	}

	if totalMCQ == 0 {
		return util.PlacementNeutralScore
	}

	ratio := float64(correct) / float64(totalMCQ)
	return int(math.Round(ratio*util.PlacementMCQWeight)) + util.PlacementBaseScore
}

// PlacementLevel maps a placement score to an initial level in [1, 10].
func PlacementLevel(score int) int {
	level := score / 10
	if level < 1 {
		level = 1
	}
	if level > util.MaxLevel {
		level = util.MaxLevel
	}
	return level
}

// ValidateAnswers rejects answers that reference unknown questions or carry
// an option index outside the question's option list.
func ValidateAnswers(questions []model.Question, answers []model.Answer) error {
	known := make(map[uint]model.Question, len(questions))
	for _, q := range questions {
		known[q.ID] = q
	}

	for _, a := range answers {
		q, ok := known[a.QuestionID]
		if !ok {
			return util.ErrInvalidAnswer
		}
		if a.SelectedOption != nil {
			if q.Kind != model.QuestionMCQ {
				return util.ErrInvalidAnswer
			}
			opts, err := q.OptionList()
			if err != nil {
				return err
			}
			if *a.SelectedOption < 0 || *a.SelectedOption >= len(opts) {
				return util.ErrInvalidAnswer
			}
		}
	}
	return nil
}

func answerIndex(answers []model.Answer) map[uint]model.Answer {
	byQuestion := make(map[uint]model.Answer, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a
	}
	return byQuestion
}
