package statistics

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const defaultLockTTL = 5 * time.Second

// Locker serializes fact increments across processes with short lived
// Redis keys. Only the holder's token can release a key.
type Locker struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewLocker(client *redis.Client) *Locker {
	return &Locker{Client: client, TTL: defaultLockTTL}
}

func lockKey(a factKey) string {
	return fmt.Sprintf("statistik_lock:%s", a)
}

// Acquire tries to take key for token. It reports false when someone else
// holds it.
func (l *Locker) Acquire(ctx context.Context, key, token string) (bool, error) {
	ttl := l.TTL
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return l.Client.SetNX(ctx, key, token, ttl).Result()
}

// Release drops key if token still holds it.
func (l *Locker) Release(ctx context.Context, key, token string) error {
	val, err := l.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}
	if val != token {
		return nil
	}
	return l.Client.Del(ctx, key).Err()
}

// AcquireWait retries Acquire until it succeeds, ctx ends or attempts run out.
func (l *Locker) AcquireWait(ctx context.Context, key, token string, attempts int, pause time.Duration) (bool, error) {
	for i := 0; i < attempts; i++ {
		ok, err := l.Acquire(ctx, key, token)
		if err != nil || ok {
			return ok, err
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(pause):
		}
	}
	return false, nil
}
