package repository

import (
	"cogniedu_backend/internal/model"

	"gorm.io/gorm"
)

type AlertRepository struct {
	DB *gorm.DB
}

func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{DB: db}
}

func (r *AlertRepository) Create(alert *model.Alert) error {
	return r.DB.Create(alert).Error
}

func (r *AlertRepository) ListRecent(limit int) ([]model.Alert, error) {
	var alerts []model.Alert
	err := r.DB.Order("created_at DESC").Limit(limit).Find(&alerts).Error
	return alerts, err
}
