// Package kv adapts application/ports.KVStore onto Redis (go-redis/v9),
// used for scratchpads, namespace locks, and the bounded event log.
package kv

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"ctxmemory/application/ports"
	"ctxmemory/pkg/resilience"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

const releaseLockScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`

// RedisKV is the Redis-backed KVStore adapter, every call gated by its own
// circuit breaker so a stalled Redis instance fails fast instead of
// blocking every scratchpad/lock request.
type RedisKV struct {
	client  *redis.Client
	breaker *gobreaker.CircuitBreaker[any]
}

func NewRedisKV(client *redis.Client) *RedisKV {
	return &RedisKV{client: client, breaker: resilience.NewBreaker[any]("kv")}
}

func (r *RedisKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := r.breaker.Execute(func() (any, error) {
		return nil, r.client.Set(ctx, key, value, ttl).Err()
	})
	return err
}

func (r *RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := r.breaker.Execute(func() (any, error) {
		return r.client.Get(ctx, key).Bytes()
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

func (r *RedisKV) Delete(ctx context.Context, key string) error {
	_, err := r.breaker.Execute(func() (any, error) {
		return nil, r.client.Del(ctx, key).Err()
	})
	return err
}

// AcquireLock sets key only if absent (SET NX), giving TTL-only
// correctness: a lock always expires even if the holder crashes, so it
// can never wedge a namespace permanently.
func (r *RedisKV) AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token, err := randomToken()
	if err != nil {
		return "", false, err
	}
	result, err := r.breaker.Execute(func() (any, error) {
		return r.client.SetNX(ctx, key, token, ttl).Result()
	})
	if err != nil {
		return "", false, err
	}
	return token, result.(bool), nil
}

// ReleaseLock deletes key only if it's still held by token (compare-and-delete
// via a Lua script), so a lock that already expired and was re-acquired by
// someone else is never released out from under them.
func (r *RedisKV) ReleaseLock(ctx context.Context, key string, token string) error {
	_, err := r.breaker.Execute(func() (any, error) {
		return r.client.Eval(ctx, releaseLockScript, []string{key}, token).Result()
	})
	return err
}

// Keys lists scratchpad keys under a prefix, used by get_agent_state's
// no-key variant.
func (r *RedisKV) Keys(ctx context.Context, prefix string) ([]string, error) {
	result, err := r.breaker.Execute(func() (any, error) {
		return r.client.Keys(ctx, prefix+"*").Result()
	})
	if err != nil {
		return nil, err
	}
	return result.([]string), nil
}

func (r *RedisKV) Health(ctx context.Context) ports.BackendHealth {
	start := time.Now()
	err := r.client.Ping(ctx).Err()
	latency := time.Since(start)
	if err != nil {
		return ports.BackendHealth{Available: false, Latency: latency, Detail: err.Error()}
	}
	return ports.BackendHealth{Available: true, Latency: latency}
}

func randomToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
