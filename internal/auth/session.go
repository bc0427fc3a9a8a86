package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const (
	sessionKeyPrefix  = "admin_session:"
	defaultSessionTTL = 12 * time.Hour
)

var ErrNoSession = errors.New("no admin session")

// SessionStore keeps admin sessions in Redis, keyed by a random token that
// travels in the session cookie.
type SessionStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionStore{Client: client, TTL: ttl}
}

// Create starts a session for username and returns its token.
func (s *SessionStore) Create(ctx context.Context, username string) (string, error) {
	if s.Client == nil {
		return "", fmt.Errorf("redis client not initialized")
	}
	token := uuid.NewString()
	if err := s.Client.Set(ctx, sessionKeyPrefix+token, username, s.TTL).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return token, nil
}

// Lookup returns the username of a live session and slides its expiry.
func (s *SessionStore) Lookup(ctx context.Context, token string) (string, error) {
	if s.Client == nil || token == "" {
		return "", ErrNoSession
	}
	username, err := s.Client.Get(ctx, sessionKeyPrefix+token).Result()
	if err == redis.Nil {
		return "", ErrNoSession
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session: %w", err)
	}
	s.Client.Expire(ctx, sessionKeyPrefix+token, s.TTL)
	return username, nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if s.Client == nil || token == "" {
		return nil
	}
	return s.Client.Del(ctx, sessionKeyPrefix+token).Err()
}
