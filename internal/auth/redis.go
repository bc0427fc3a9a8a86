package auth

import (
	"context"
	"fmt"
	"time"

	"aufgussplan/internal/config"
	"aufgussplan/internal/logger"

	"github.com/go-redis/redis/v8"
)

// ConnectRedis opens the shared Redis client for sessions, report caching and
// statistics locks, and checks it with a ping.
func ConnectRedis(cfg config.RedisConfig, log *logger.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: 10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Error("REDIS", fmt.Sprintf("Failed to connect to Redis at %s: %v", cfg.Addr, err))
		client.Close()
		return nil, err
	}

	log.Info("REDIS", fmt.Sprintf("Connected to Redis at %s", cfg.Addr))
	return client, nil
}
