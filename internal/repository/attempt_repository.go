package repository

import (
	"cogniedu_backend/internal/model"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) Create(attempt *model.Attempt) error {
	return r.DB.Create(attempt).Error
}

func (r *AttemptRepository) FindByID(id string) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.DB.Where("id = ?", id).First(&attempt).Error
	return &attempt, err
}

func (r *AttemptRepository) FindByUser(userID uint) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&attempts).Error
	return attempts, err
}

// ListPending returns ungraded attempts oldest first, for the grading queue.
func (r *AttemptRepository) ListPending() ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.DB.Where("is_graded = ?", false).Order("created_at").Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) CountPending() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Attempt{}).Where("is_graded = ?", false).Count(&count).Error
	return count, err
}
