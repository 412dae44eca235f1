package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionRevocationStore recuerda sesiones anonimas cerradas hasta que su token expire.
type SessionRevocationStore interface {
	Revoke(ctx context.Context, sessionID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

type memorySessionRevocationStore struct {
	mu    sync.Mutex
	items map[string]time.Time
	now   func() time.Time
}

func NewMemorySessionRevocationStore() SessionRevocationStore {
	return &memorySessionRevocationStore{
		items: make(map[string]time.Time),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *memorySessionRevocationStore) Revoke(_ context.Context, sessionID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil
	}
	s.items[sessionID] = s.now().Add(ttl)
	return nil
}

func (s *memorySessionRevocationStore) IsRevoked(_ context.Context, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sessionID = strings.TrimSpace(sessionID)
	exp, ok := s.items[sessionID]
	if !ok {
		return false, nil
	}
	if s.now().After(exp) {
		delete(s.items, sessionID)
		return false, nil
	}
	return true, nil
}

type redisKVClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}

type redisSessionRevocationStore struct {
	client redisKVClient
	prefix string
}

func NewRedisSessionRevocationStore(client redisKVClient) SessionRevocationStore {
	if isNilRedisClient(client) {
		return nil
	}
	return &redisSessionRevocationStore{
		client: client,
		prefix: "anon-session:revoked:",
	}
}

func (s *redisSessionRevocationStore) Revoke(ctx context.Context, sessionID string, ttl time.Duration) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	return s.client.Set(ctx, s.prefix+sessionID, "1", ttl).Err()
}

func (s *redisSessionRevocationStore) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return false, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	n, err := s.client.Exists(ctx, s.prefix+sessionID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
