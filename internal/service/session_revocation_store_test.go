package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type mockRedisKVClient struct {
	lastSetKey string
	lastSetTTL time.Duration
	lastExists []string

	setErr    error
	existsErr error
	existsN   int64
}

func (m *mockRedisKVClient) Set(ctx context.Context, key string, _ interface{}, expiration time.Duration) *redis.StatusCmd {
	m.lastSetKey = key
	m.lastSetTTL = expiration
	cmd := redis.NewStatusCmd(ctx)
	if m.setErr != nil {
		cmd.SetErr(m.setErr)
		return cmd
	}
	cmd.SetVal("OK")
	return cmd
}

func (m *mockRedisKVClient) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	m.lastExists = keys
	cmd := redis.NewIntCmd(ctx)
	if m.existsErr != nil {
		cmd.SetErr(m.existsErr)
		return cmd
	}
	cmd.SetVal(m.existsN)
	return cmd
}

func TestMemorySessionRevocationStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionRevocationStore().(*memorySessionRevocationStore)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	revoked, err := store.IsRevoked(ctx, "s1")
	if err != nil || revoked {
		t.Fatalf("expected unknown session not revoked, got %v,%v", revoked, err)
	}

	if err := store.Revoke(ctx, "s1", time.Minute); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	revoked, err = store.IsRevoked(ctx, " s1 ")
	if err != nil || !revoked {
		t.Fatalf("expected revoked session, got %v,%v", revoked, err)
	}

	now = now.Add(2 * time.Minute)
	revoked, err = store.IsRevoked(ctx, "s1")
	if err != nil || revoked {
		t.Fatalf("expected revocation to expire with the token, got %v,%v", revoked, err)
	}

	if err := store.Revoke(ctx, "  ", time.Minute); err != nil {
		t.Fatalf("empty session id should be no-op, got %v", err)
	}
}

func TestRedisSessionRevocationStore(t *testing.T) {
	ctx := context.Background()
	mock := &mockRedisKVClient{existsN: 1}
	store := NewRedisSessionRevocationStore(mock)

	if err := store.Revoke(ctx, " s1 ", 0); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if mock.lastSetKey != "anon-session:revoked:s1" {
		t.Fatalf("unexpected key, got %q", mock.lastSetKey)
	}
	if mock.lastSetTTL <= 0 {
		t.Fatalf("expected positive TTL fallback, got %v", mock.lastSetTTL)
	}

	revoked, err := store.IsRevoked(ctx, "s1")
	if err != nil || !revoked {
		t.Fatalf("expected revoked true,nil; got %v,%v", revoked, err)
	}
	if len(mock.lastExists) != 1 || mock.lastExists[0] != "anon-session:revoked:s1" {
		t.Fatalf("unexpected exists key: %+v", mock.lastExists)
	}
}

func TestRedisSessionRevocationStore_Errors(t *testing.T) {
	ctx := context.Background()
	mock := &mockRedisKVClient{setErr: errors.New("set failed"), existsErr: errors.New("exists failed")}
	store := NewRedisSessionRevocationStore(mock)

	if err := store.Revoke(ctx, "s1", time.Minute); err == nil {
		t.Fatalf("expected revoke error")
	}
	if _, err := store.IsRevoked(ctx, "s1"); err == nil {
		t.Fatalf("expected exists error")
	}
	revoked, err := store.IsRevoked(ctx, "")
	if err != nil || revoked {
		t.Fatalf("empty session id should be false,nil; got %v,%v", revoked, err)
	}
}

func TestRedisSessionRevocationStoreNilClient(t *testing.T) {
	var client *redis.Client
	if store := NewRedisSessionRevocationStore(client); store != nil {
		t.Fatalf("expected nil store for a nil *redis.Client, got %T", store)
	}
	if store := NewRedisSessionRevocationStore(nil); store != nil {
		t.Fatalf("expected nil store without client")
	}
}
