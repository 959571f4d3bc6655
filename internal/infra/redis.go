package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"mlmadmin/internal/config"
)

// OpenRedis returns nil when REDIS_URL is empty; callers treat a nil client
// as "caching disabled".
func OpenRedis(cfg *config.Config) (*redis.Client, error) {
	if cfg.RedisURL == "" {
		logrus.Info("REDIS_URL not set, caching disabled")
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
