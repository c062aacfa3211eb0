package service

import (
	"context"
	"errors"

	"cogniedu_backend/internal/model"
	"cogniedu_backend/internal/repository"
	"cogniedu_backend/internal/util"

	"gorm.io/gorm"
)

type UserService struct {
	UserRepo *repository.UserRepository
	Advisor  *AdvisorService
}

func NewUserService(userRepo *repository.UserRepository, advisor *AdvisorService) *UserService {
	return &UserService{UserRepo: userRepo, Advisor: advisor}
}

// Profile is the user's own view: identity plus progression state.
type Profile struct {
	User           *model.User         `json:"user"`
	ScoreHistory   []model.ScoreRecord `json:"scoreHistory"`
	XPIntoLevel    int                 `json:"xpIntoLevel"`
	XPPerLevel     int                 `json:"xpPerLevel"`
	NeedsPlacement bool                `json:"needsPlacement"`
}

func (s *UserService) GetProfile(userID uint) (*Profile, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, userErr(err)
	}
	history, err := s.UserRepo.ScoreHistory(userID)
	if err != nil {
		return nil, err
	}

	return &Profile{
		User:           user,
		ScoreHistory:   history,
		XPIntoLevel:    user.XP % util.XPPerLevel,
		XPPerLevel:     util.XPPerLevel,
		NeedsPlacement: user.Role == model.RoleCitizen && user.Level == 0,
	}, nil
}

// StudyAdvice returns the advisor's Persian analysis of the user's history.
func (s *UserService) StudyAdvice(ctx context.Context, userID uint) (string, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return "", userErr(err)
	}
	history, err := s.UserRepo.ScoreHistory(userID)
	if err != nil {
		return "", err
	}
	return s.Advisor.StudyAdvice(ctx, user, history), nil
}

func (s *UserService) List(role model.UserRole, page, pageSize int) ([]model.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.UserRepo.List(role, (page-1)*pageSize, pageSize)
}

func (s *UserService) Leaderboard(limit int) ([]model.User, error) {
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return s.UserRepo.FindTopByXP(limit)
}

// GrantPlacementRetake lets a citizen sit the placement exam again. The next
// placement result can raise the level but never lower it.
func (s *UserService) GrantPlacementRetake(userID uint) error {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return userErr(err)
	}
	if user.Role != model.RoleCitizen {
		return util.ErrPermissionDenied
	}
	user.CanRetakePlacement = true
	return s.UserRepo.Update(user)
}

func (s *UserService) GetByID(userID uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
