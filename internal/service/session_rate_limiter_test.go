package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type mockRedisEvaler struct {
	lastScript string
	lastKeys   []string
	lastArgs   []interface{}
	result     int64
	err        error
}

func (m *mockRedisEvaler) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	m.lastScript = script
	m.lastKeys = keys
	m.lastArgs = args
	cmd := redis.NewCmd(ctx)
	if m.err != nil {
		cmd.SetErr(m.err)
		return cmd
	}
	cmd.SetVal(m.result)
	return cmd
}

func TestMemorySessionRateLimiter(t *testing.T) {
	limiter := NewMemorySessionRateLimiter(time.Minute, 2).(*memorySessionRateLimiter)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	if !limiter.Allow("10.0.0.1") || !limiter.Allow(" 10.0.0.1 ") {
		t.Fatalf("expected first two hits to be allowed")
	}
	if limiter.Allow("10.0.0.1") {
		t.Fatalf("expected third hit inside the window to be denied")
	}
	if !limiter.Allow("10.0.0.2") {
		t.Fatalf("expected other keys to be unaffected")
	}

	now = now.Add(61 * time.Second)
	if !limiter.Allow("10.0.0.1") {
		t.Fatalf("expected hit after window to be allowed")
	}
	if limiter.Allow("") {
		t.Fatalf("expected empty key to be rejected")
	}
}

func TestRedisSessionRateLimiterAllow(t *testing.T) {
	t.Run("nil receiver fail-open", func(t *testing.T) {
		var l *redisSessionRateLimiter
		if !l.Allow("10.0.0.1") {
			t.Fatalf("expected fail-open for nil limiter")
		}
	})

	t.Run("typed nil client disables limiter", func(t *testing.T) {
		var client *redis.Client
		if l := NewRedisSessionRateLimiter(client, time.Minute, 3); l != nil {
			t.Fatalf("expected nil limiter for a nil *redis.Client, got %T", l)
		}
	})

	t.Run("empty key rejected", func(t *testing.T) {
		l := NewRedisSessionRateLimiter(&mockRedisEvaler{result: 1}, time.Minute, 3)
		if l.Allow("   ") {
			t.Fatalf("expected empty key to be rejected")
		}
	})

	t.Run("allow when count within max", func(t *testing.T) {
		mock := &mockRedisEvaler{result: 2}
		l := NewRedisSessionRateLimiter(mock, 2*time.Minute, 3)
		if !l.Allow(" 10.0.0.1 ") {
			t.Fatalf("expected allow when count <= max")
		}
		if len(mock.lastKeys) != 1 || mock.lastKeys[0] != "anon-session:rl:10.0.0.1" {
			t.Fatalf("unexpected key normalization, got %+v", mock.lastKeys)
		}
		if len(mock.lastArgs) != 1 || mock.lastArgs[0] != int64(120000) {
			t.Fatalf("expected window of 120000ms, got %+v", mock.lastArgs)
		}
		if mock.lastScript != redisSessionAllowScript {
			t.Fatalf("expected script to match")
		}
	})

	t.Run("deny when count exceeds max", func(t *testing.T) {
		l := NewRedisSessionRateLimiter(&mockRedisEvaler{result: 4}, time.Minute, 3)
		if l.Allow("10.0.0.1") {
			t.Fatalf("expected deny when count > max")
		}
	})

	t.Run("redis error fail-open", func(t *testing.T) {
		l := NewRedisSessionRateLimiter(&mockRedisEvaler{err: errors.New("redis down")}, time.Minute, 3)
		if !l.Allow("10.0.0.1") {
			t.Fatalf("expected fail-open on redis errors")
		}
	})
}

func TestMemorySessionRateLimiterDropsIdleKeys(t *testing.T) {
	limiter := NewMemorySessionRateLimiter(time.Minute, 1).(*memorySessionRateLimiter)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	for i := 0; i < 100; i++ {
		limiter.Allow(fmt.Sprintf("198.51.100.%d", i))
	}
	if len(limiter.hits) != 100 {
		t.Fatalf("expected 100 tracked keys, got %d", len(limiter.hits))
	}

	now = now.Add(2 * time.Minute)
	if !limiter.Allow("10.0.0.1") {
		t.Fatalf("expected fresh key to be allowed")
	}
	if len(limiter.hits) != 1 {
		t.Fatalf("expected idle keys to be dropped, got %d", len(limiter.hits))
	}
}
