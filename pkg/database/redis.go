package database

import (
	"context"
	"fmt"
	"time"

	"cogniedu_backend/internal/config"

	"github.com/go-redis/redis/v8"
)

// InitRedis opens a client and verifies the connection with a bounded ping.
// Callers may treat failure as non fatal and run without a cache.
func InitRedis(cfg *config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     50,
		MinIdleConns: 5,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}
	return rdb, nil
}
