package service

import (
	"context"
	"encoding/json"
	"time"

	"cogniedu_backend/internal/model"
	"cogniedu_backend/internal/repository"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const analyticsCacheKey = "analytics:overview"

// AnalyticsService aggregates platform numbers for the admin dashboard.
type AnalyticsService struct {
	DB          *gorm.DB
	AttemptRepo *repository.AttemptRepository
	Redis       *redis.Client
}

func NewAnalyticsService(db *gorm.DB, attemptRepo *repository.AttemptRepository, rdb *redis.Client) *AnalyticsService {
	return &AnalyticsService{DB: db, AttemptRepo: attemptRepo, Redis: rdb}
}

type Overview struct {
	TotalCitizens  int64         `json:"totalCitizens"`
	PlacedCitizens int64         `json:"placedCitizens"`
	TotalContents  int64         `json:"totalContents"`
	TotalAttempts  int64         `json:"totalAttempts"`
	PendingGrading int64         `json:"pendingGrading"`
	AverageScore   float64       `json:"averageScore"`
	LevelHistogram map[int]int64 `json:"levelHistogram"`
	GeneratedAt    time.Time     `json:"generatedAt"`
}

// GetOverview computes the dashboard aggregates, cached for one minute.
func (s *AnalyticsService) GetOverview(ctx context.Context) (*Overview, error) {
	if s.Redis != nil {
		cached, err := s.Redis.Get(ctx, analyticsCacheKey).Result()
		if err == nil {
			var overview Overview
			if json.Unmarshal([]byte(cached), &overview) == nil {
				return &overview, nil
			}
		}
	}

	overview := &Overview{
		LevelHistogram: make(map[int]int64),
		GeneratedAt:    time.Now(),
	}

	if err := s.DB.Model(&model.User{}).Where("role = ?", model.RoleCitizen).
		Count(&overview.TotalCitizens).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&model.User{}).Where("role = ? AND level > 0", model.RoleCitizen).
		Count(&overview.PlacedCitizens).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&model.Content{}).Where("is_active = ?", true).
		Count(&overview.TotalContents).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&model.Attempt{}).Count(&overview.TotalAttempts).Error; err != nil {
		return nil, err
	}

	pending, err := s.AttemptRepo.CountPending()
	if err != nil {
		return nil, err
	}
	overview.PendingGrading = pending

	var avg *float64
	if err := s.DB.Model(&model.ScoreRecord{}).Select("AVG(score)").Scan(&avg).Error; err != nil {
		return nil, err
	}
	if avg != nil {
		overview.AverageScore = *avg
	}

	type levelCount struct {
		Level int
		Count int64
	}
	var rows []levelCount
	if err := s.DB.Model(&model.User{}).
		Select("level, COUNT(*) as count").
		Where("role = ?", model.RoleCitizen).
		Group("level").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		overview.LevelHistogram[row.Level] = row.Count
	}

	if s.Redis != nil {
		if raw, err := json.Marshal(overview); err == nil {
			s.Redis.Set(ctx, analyticsCacheKey, raw, time.Minute)
		}
	}
	return overview, nil
}
