package service

import (
	"cogniedu_backend/internal/model"
	"cogniedu_backend/internal/util"
)

// CanAccessContent reports whether a user may open a content item. Gating is
// on MinLevel only; MaxLevel marks the recommended band and never blocks.
func CanAccessContent(user *model.User, content *model.Content) bool {
	if user.Role == model.RoleTeacher || user.Role == model.RoleAdmin {
		return true
	}
	if user.Level == 0 {
		return false
	}
	return user.Level >= content.MinLevel
}

// IsRecommended marks content whose entry level matches the user's current
// level exactly. The library caps how many recommendations it surfaces.
func IsRecommended(user *model.User, content *model.Content) bool {
	return user.Level == content.MinLevel
}

// CanTakeExam decides whether a user may start the given exam. Unplaced
// citizens may only take the placement exam; a completed placement may be
// retaken only when a teacher has granted a retake.
func CanTakeExam(user *model.User, exam *model.Exam, content *model.Content) error {
	if exam.IsPlacement {
		if user.Role != model.RoleCitizen {
			return util.ErrPermissionDenied
		}
		if user.Level > 0 && !user.CanRetakePlacement {
			return util.ErrPermissionDenied
		}
		return nil
	}

	if user.Role == model.RoleCitizen && user.Level == 0 {
		return util.ErrPlacementRequired
	}
	if content != nil && !CanAccessContent(user, content) {
		return util.ErrPermissionDenied
	}
	return nil
}
