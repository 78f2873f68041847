package kv

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisKV(t *testing.T) (*RedisKV, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisKV(client), mr
}

func TestRedisKVSetGet(t *testing.T) {
	kv, _ := newTestRedisKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "agent:scratch:1", []byte("hello"), time.Minute))

	got, err := kv.Get(ctx, "agent:scratch:1")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
}

func TestRedisKVGetMissingKey(t *testing.T) {
	kv, _ := newTestRedisKV(t)
	_, err := kv.Get(context.Background(), "does-not-exist")
	assert.Error(t, err)
}

func TestRedisKVDelete(t *testing.T) {
	kv, _ := newTestRedisKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "key", []byte("v"), time.Minute))
	require.NoError(t, kv.Delete(ctx, "key"))

	_, err := kv.Get(ctx, "key")
	assert.Error(t, err)
}

func TestRedisKVAcquireAndReleaseLock(t *testing.T) {
	kv, _ := newTestRedisKV(t)
	ctx := context.Background()

	token, acquired, err := kv.AcquireLock(ctx, "namespace-lock:proj/x", 10*time.Second)
	require.NoError(t, err)
	assert.True(t, acquired)
	assert.NotEmpty(t, token)

	_, acquiredAgain, err := kv.AcquireLock(ctx, "namespace-lock:proj/x", 10*time.Second)
	require.NoError(t, err)
	assert.False(t, acquiredAgain, "second acquire of a held lock must fail")

	require.NoError(t, kv.ReleaseLock(ctx, "namespace-lock:proj/x", token))

	_, acquiredAfterRelease, err := kv.AcquireLock(ctx, "namespace-lock:proj/x", 10*time.Second)
	require.NoError(t, err)
	assert.True(t, acquiredAfterRelease, "lock must be acquirable again after release")
}

func TestRedisKVReleaseLockWrongTokenIsNoop(t *testing.T) {
	kv, _ := newTestRedisKV(t)
	ctx := context.Background()

	_, acquired, err := kv.AcquireLock(ctx, "namespace-lock:proj/y", 10*time.Second)
	require.NoError(t, err)
	require.True(t, acquired)

	require.NoError(t, kv.ReleaseLock(ctx, "namespace-lock:proj/y", "wrong-token"))

	_, acquiredAgain, err := kv.AcquireLock(ctx, "namespace-lock:proj/y", 10*time.Second)
	require.NoError(t, err)
	assert.False(t, acquiredAgain, "a release with the wrong token must not release the lock")
}

func TestRedisKVKeys(t *testing.T) {
	kv, _ := newTestRedisKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "agent:a1:scratch", []byte("1"), time.Minute))
	require.NoError(t, kv.Set(ctx, "agent:a1:other", []byte("2"), time.Minute))
	require.NoError(t, kv.Set(ctx, "agent:a2:scratch", []byte("3"), time.Minute))

	keys, err := kv.Keys(ctx, "agent:a1:")
	require.NoError(t, err)
	assert.Len(t, keys, 2)
}
