package service

import (
	"strings"
	"sync"
	"time"
)

// SessionRateLimiter limita la creacion de sesiones anonimas por clave de cliente.
type SessionRateLimiter interface {
	Allow(key string) bool
}

type memorySessionRateLimiter struct {
	mu     sync.Mutex
	window time.Duration
	max    int
	hits   map[string][]time.Time
	now    func() time.Time
	swept  time.Time
}

// NewMemorySessionRateLimiter crea un limitador de ventana deslizante en memoria.
func NewMemorySessionRateLimiter(window time.Duration, max int) SessionRateLimiter {
	if max <= 0 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &memorySessionRateLimiter{
		window: window,
		max:    max,
		hits:   make(map[string][]time.Time),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (l *memorySessionRateLimiter) Allow(key string) bool {
	key = normalizeLimiterKey(key)
	if key == "" {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	cutoff := now.Add(-l.window)
	if now.Sub(l.swept) >= l.window {
		l.sweep(cutoff)
		l.swept = now
	}
	entries := l.hits[key]
	kept := entries[:0]
	for _, ts := range entries {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.hits[key] = kept
		return false
	}

	l.hits[key] = append(kept, now)
	return true
}

// sweep descarta las claves sin hits dentro de la ventana.
func (l *memorySessionRateLimiter) sweep(cutoff time.Time) {
	for key, entries := range l.hits {
		if len(entries) == 0 || !entries[len(entries)-1].After(cutoff) {
			delete(l.hits, key)
		}
	}
}

func normalizeLimiterKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
