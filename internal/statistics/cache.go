package statistics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"aufgussplan/internal/logger"

	"github.com/go-redis/redis/v8"
)

const (
	reportVersionKey = "statistik:report:version"
	defaultReportTTL = 5 * time.Minute
)

// ReportCache keeps aggregated reports between requests. Invalidate drops
// every cached report at once. Get returns the cache version it looked at;
// Set stores under that version, so a report computed across an
// invalidation is never served afterwards. An empty version skips the write.
type ReportCache interface {
	Get(ctx context.Context, key string) (report *Report, version string, ok bool)
	Set(ctx context.Context, version, key string, report *Report)
	Invalidate(ctx context.Context)
}

// RedisReportCache namespaces entries by a version counter, so invalidation
// is a single INCR and stale entries expire on their own.
type RedisReportCache struct {
	Client *redis.Client
	TTL    time.Duration
	Logger *logger.Logger
}

func NewRedisReportCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *RedisReportCache {
	if ttl <= 0 {
		ttl = defaultReportTTL
	}
	return &RedisReportCache{Client: client, TTL: ttl, Logger: log}
}

func (c *RedisReportCache) version(ctx context.Context) (string, error) {
	version, err := c.Client.Get(ctx, reportVersionKey).Result()
	if err == redis.Nil {
		return "0", nil
	}
	return version, err
}

func entryKey(version, key string) string {
	return fmt.Sprintf("statistik:report:%s:%s", version, key)
}

func (c *RedisReportCache) Get(ctx context.Context, key string) (*Report, string, bool) {
	version, err := c.version(ctx)
	if err != nil {
		c.Logger.Warn("REDIS", fmt.Sprintf("report cache read: %v", err))
		return nil, "", false
	}
	raw, err := c.Client.Get(ctx, entryKey(version, key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.Logger.Warn("REDIS", fmt.Sprintf("report cache read: %v", err))
		}
		return nil, version, false
	}
	var report Report
	if err := json.Unmarshal(raw, &report); err != nil {
		c.Logger.Warn("REDIS", fmt.Sprintf("report cache decode: %v", err))
		return nil, version, false
	}
	return &report, version, true
}

func (c *RedisReportCache) Set(ctx context.Context, version, key string, report *Report) {
	if version == "" {
		return
	}
	raw, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := c.Client.Set(ctx, entryKey(version, key), raw, c.TTL).Err(); err != nil {
		c.Logger.Warn("REDIS", fmt.Sprintf("report cache write: %v", err))
	}
}

func (c *RedisReportCache) Invalidate(ctx context.Context) {
	if err := c.Client.Incr(ctx, reportVersionKey).Err(); err != nil {
		c.Logger.Warn("REDIS", fmt.Sprintf("report cache invalidate: %v", err))
	}
}
