package kv

import (
	"context"
	"encoding/json"

	"ctxmemory/application/ports"
	"github.com/redis/go-redis/v9"
)

const (
	eventLogKey       = "ctxmemory:event-log"
	eventLogCapacity  = 10000
)

// RedisEventLog is a bounded, append-only operational event trail backed by
// a capped Redis list: every Append trims the list back to eventLogCapacity
// so memory use never grows unbounded.
type RedisEventLog struct {
	client *redis.Client
}

func NewRedisEventLog(client *redis.Client) *RedisEventLog {
	return &RedisEventLog{client: client}
}

func (l *RedisEventLog) Append(ctx context.Context, entry ports.EventLogEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	pipe := l.client.TxPipeline()
	pipe.LPush(ctx, eventLogKey, payload)
	pipe.LTrim(ctx, eventLogKey, 0, eventLogCapacity-1)
	_, err = pipe.Exec(ctx)
	return err
}

func (l *RedisEventLog) Recent(ctx context.Context, limit int) ([]ports.EventLogEntry, error) {
	if limit <= 0 || limit > eventLogCapacity {
		limit = eventLogCapacity
	}
	raw, err := l.client.LRange(ctx, eventLogKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]ports.EventLogEntry, 0, len(raw))
	for _, r := range raw {
		var entry ports.EventLogEntry
		if err := json.Unmarshal([]byte(r), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
