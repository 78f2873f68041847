package kv

import (
	"context"
	"testing"
	"time"

	"ctxmemory/application/ports"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEventLog(t *testing.T) *RedisEventLog {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisEventLog(client)
}

func TestRedisEventLogAppendAndRecent(t *testing.T) {
	log := newTestEventLog(t)
	ctx := context.Background()

	require.NoError(t, log.Append(ctx, ports.EventLogEntry{Timestamp: time.Now(), Source: "ttl", Message: "expired scratchpad"}))
	require.NoError(t, log.Append(ctx, ports.EventLogEntry{Timestamp: time.Now(), Source: "ttl", Message: "expired session"}))

	entries, err := log.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "expired session", entries[0].Message, "most recent entry must come first")
}

func TestRedisEventLogRecentRespectsLimit(t *testing.T) {
	log := newTestEventLog(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, log.Append(ctx, ports.EventLogEntry{Timestamp: time.Now(), Source: "ttl", Message: "tick"}))
	}

	entries, err := log.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
