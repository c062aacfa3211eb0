package service

import (
	"context"
	"encoding/json"
	"time"

	"cogniedu_backend/internal/model"
	"cogniedu_backend/internal/repository"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"cogniedu_backend/pkg/logger"
)

const alertCacheKey = "alerts:recent"

// AlertService publishes admin broadcasts. The recent list is cached in
// redis because every dashboard load reads it.
type AlertService struct {
	AlertRepo *repository.AlertRepository
	Redis     *redis.Client
}

func NewAlertService(alertRepo *repository.AlertRepository, rdb *redis.Client) *AlertService {
	return &AlertService{AlertRepo: alertRepo, Redis: rdb}
}

type AlertRequest struct {
	Title    string              `json:"title" binding:"required"`
	Message  string              `json:"message" binding:"required"`
	Severity model.AlertSeverity `json:"severity"`
}

func (s *AlertService) Publish(ctx context.Context, req AlertRequest) (*model.Alert, error) {
	severity := req.Severity
	if severity == "" {
		severity = model.SeverityLow
	}

	alert := &model.Alert{
		Title:    req.Title,
		Message:  req.Message,
		Severity: severity,
	}
	if err := s.AlertRepo.Create(alert); err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if err := s.Redis.Del(ctx, alertCacheKey).Err(); err != nil {
			logger.Log.Warn("failed to invalidate alert cache", zap.Error(err))
		}
	}
	return alert, nil
}

func (s *AlertService) ListRecent(ctx context.Context, limit int) ([]model.Alert, error) {
	if limit < 1 || limit > 50 {
		limit = 10
	}

	if s.Redis != nil {
		cached, err := s.Redis.Get(ctx, alertCacheKey).Result()
		if err == nil {
			var alerts []model.Alert
			if json.Unmarshal([]byte(cached), &alerts) == nil && len(alerts) >= limit {
				return alerts[:limit], nil
			}
		}
	}

	alerts, err := s.AlertRepo.ListRecent(50)
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if raw, err := json.Marshal(alerts); err == nil {
			s.Redis.Set(ctx, alertCacheKey, raw, 5*time.Minute)
		}
	}

	if len(alerts) > limit {
		alerts = alerts[:limit]
	}
	return alerts, nil
}
