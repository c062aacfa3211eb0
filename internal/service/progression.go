package service

import (
	"cogniedu_backend/internal/model"
	"cogniedu_backend/internal/util"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"cogniedu_backend/pkg/logger"
)

// LevelForXP derives the level implied by accumulated XP, capped at the top
// level. Level never decreases; callers must take the max with the current
// level.
func LevelForXP(xp int) int {
	level := xp/util.XPPerLevel + 1
	if level > util.MaxLevel {
		level = util.MaxLevel
	}
	return level
}

// Advance credits a regular exam score to the user. XP grows by ten times
// the score and the level only ever moves up.
func Advance(tx *gorm.DB, user *model.User, examID uint, contentID *uint, score int) error {
	if score < 0 || score > 100 {
		return util.ErrInvalidScore
	}

	user.XP += score * util.XPMultiplier
	if next := LevelForXP(user.XP); next > user.Level {
		logger.Log.Info("user leveled up",
			zap.Uint("user_id", user.ID),
			zap.Int("from", user.Level),
			zap.Int("to", next))
		user.Level = next
	}

	if err := tx.Save(user).Error; err != nil {
		return err
	}

	record := &model.ScoreRecord{
		UserID:    user.ID,
		ExamID:    examID,
		ContentID: contentID,
		Score:     score,
	}
	return tx.Create(record).Error
}

// Place assigns the user's initial level from a placement score and credits
// XP for the sitting. A retake can raise the level but never lower it, and
// always consumes the retake grant.
func Place(tx *gorm.DB, user *model.User, examID uint, score int) error {
	if score < 0 || score > 100 {
		return util.ErrInvalidScore
	}

	user.XP += score * util.XPMultiplier
	level := PlacementLevel(score)
	if level > user.Level {
		user.Level = level
	}
	user.CanRetakePlacement = false

	if err := tx.Save(user).Error; err != nil {
		return err
	}

	record := &model.ScoreRecord{
		UserID: user.ID,
		ExamID: examID,
		Score:  score,
	}
	return tx.Create(record).Error
}
