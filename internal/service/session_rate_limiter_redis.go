package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Ventana fija: el primer hit crea el contador con PEXPIRE y el resto solo incrementa.
const redisSessionAllowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`

const redisLimiterTimeout = 500 * time.Millisecond

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

type redisSessionRateLimiter struct {
	client redisEvaler
	window time.Duration
	max    int
	prefix string
}

// NewRedisSessionRateLimiter comparte el contador entre replicas. Si Redis falla deja
// pasar; sin cliente devuelve nil y el servicio no limita.
func NewRedisSessionRateLimiter(client redisEvaler, window time.Duration, max int) SessionRateLimiter {
	if isNilRedisClient(client) {
		return nil
	}
	if window < time.Millisecond {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &redisSessionRateLimiter{
		client: client,
		window: window,
		max:    max,
		prefix: "anon-session:rl:",
	}
}

func (l *redisSessionRateLimiter) Allow(key string) bool {
	if l == nil || isNilRedisClient(l.client) {
		return true
	}
	key = normalizeLimiterKey(key)
	if key == "" {
		return false
	}
	count, err := l.hit(key)
	if err != nil {
		return true
	}
	return count <= int64(l.max)
}

func (l *redisSessionRateLimiter) hit(key string) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisLimiterTimeout)
	defer cancel()
	return l.client.Eval(ctx, redisSessionAllowScript, []string{l.prefix + key}, l.window.Milliseconds()).Int64()
}

// isNilRedisClient detecta tambien un *redis.Client nil guardado en la interfaz.
func isNilRedisClient(client interface{}) bool {
	switch c := client.(type) {
	case nil:
		return true
	case *redis.Client:
		return c == nil
	case *redis.ClusterClient:
		return c == nil
	default:
		return false
	}
}
