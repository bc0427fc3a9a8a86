package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"aufgussplan/internal/auth"
	"aufgussplan/internal/config"
	"aufgussplan/internal/kafka"
	"aufgussplan/internal/logger"
	"aufgussplan/internal/models"
	"aufgussplan/internal/statistics"

	"github.com/joho/godotenv"
)

// stats-consumer drops cached statistics reports whenever any instance logs
// a session, so every replica serves fresh numbers.
func main() {
	log := logger.NewLogger()
	defer log.Close()

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	}
	cfg := config.Load()

	redisClient, err := auth.ConnectRedis(cfg.Redis, log)
	if err != nil {
		log.Fatal("REDIS", err.Error())
	}
	defer redisClient.Close()
	cache := statistics.NewRedisReportCache(redisClient, cfg.Redis.CacheTTL, log)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topics.StatistikLogged, cfg.Kafka.GroupID+"-stats", log)
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = kafka.Consume(ctx, consumer, func(ctx context.Context, event models.StatistikLoggedEvent) {
		cache.Invalidate(ctx)
		log.Info("STATISTIK", fmt.Sprintf("Aufguss %d logged for %s, report cache invalidated", event.AufgussID, event.Datum))
	})
	if err != nil {
		log.Error("KAFKA", fmt.Sprintf("Consumer stopped: %v", err))
	}
	log.Info("APP", "stats-consumer shutdown complete")
}
