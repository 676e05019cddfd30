package cache

import (
	"context"
	"fmt"

	"clinic-scheduler/config"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// NewRedisClient opens the client backing the token allow-list and the
// appointment event stream, failing fast when the server is unreachable.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig, log *logrus.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", cfg.Addr(), err)
	}

	log.WithFields(logrus.Fields{
		"addr":      cfg.Addr(),
		"db":        cfg.DB,
		"pool_size": cfg.PoolSize,
	}).Info("Connected to Redis")

	return client, nil
}
