// Package ttl provides TTL presets, an EnforcingKV wrapper that fills in the
// category preset when a Set carries no TTL, a Logger that appends
// operations to a bounded event log, and a SyncWorker that periodically
// copies new event-log entries into the graph. The worker does not flush or
// prune scratchpads and does not delete old events.
package ttl

import (
	"context"
	"time"

	"ctxmemory/application/ports"
)

// Category is a named TTL preset.
type Category string

const (
	CategoryScratchpad Category = "scratchpad"
	CategorySession    Category = "session"
	CategoryCache      Category = "cache"
	CategoryTemporary  Category = "temporary"
	CategoryPersistent Category = "persistent"
)

var presetTTLs = map[Category]time.Duration{
	CategoryScratchpad: time.Hour,
	CategorySession:    7 * 24 * time.Hour,
	CategoryCache:      5 * time.Minute,
	CategoryTemporary:  time.Minute,
	CategoryPersistent: 30 * 24 * time.Hour,
}

// PresetTTL returns the configured duration for a category, or the
// scratchpad default if the category is unrecognized.
func PresetTTL(category Category) time.Duration {
	if d, ok := presetTTLs[category]; ok {
		return d
	}
	return presetTTLs[CategoryScratchpad]
}

// EnforcingKV wraps a KVStore so every Set carries an explicit TTL: a
// zero/negative TTL is auto-corrected to the category preset rather than
// silently written forever.
type EnforcingKV struct {
	ports.KVStore
	category Category
}

func NewEnforcingKV(kv ports.KVStore, category Category) *EnforcingKV {
	return &EnforcingKV{KVStore: kv, category: category}
}

func (k *EnforcingKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = PresetTTL(k.category)
	}
	return k.KVStore.Set(ctx, key, value, ttl)
}

// Logger appends storage-affecting operations to a bounded event log.
type Logger struct {
	log ports.EventLog
}

func NewLogger(log ports.EventLog) *Logger {
	return &Logger{log: log}
}

func (l *Logger) Record(ctx context.Context, op, contextID, actor, namespace, outcome string) error {
	return l.log.Append(ctx, ports.EventLogEntry{
		Timestamp: time.Now(),
		Source:    op,
		Message:   outcome,
		Detail: map[string]interface{}{
			"context_id": contextID,
			"actor":      actor,
			"namespace":  namespace,
		},
	})
}

// SyncWorker is the single logical loop draining the event log into the
// graph as Event nodes on a fixed (unjittered) interval, with a final pass
// bounded by a timeout on shutdown. Each pass reads at most the 10,000
// newest entries. The retain duration is stored but not used by any pass.
type SyncWorker struct {
	log      ports.EventLog
	graph    ports.GraphStore
	interval time.Duration
	retain   time.Duration
	synced   time.Time // newest entry timestamp already recorded
}

func NewSyncWorker(log ports.EventLog, graph ports.GraphStore, interval, retain time.Duration) *SyncWorker {
	return &SyncWorker{log: log, graph: graph, interval: interval, retain: retain}
}

// Run blocks until ctx is cancelled, syncing on every tick plus a final
// drain before returning.
func (w *SyncWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			w.sync(drainCtx)
			cancel()
			return
		case <-ticker.C:
			w.sync(ctx)
		}
	}
}

// eventRecorder is an optional capability: a GraphStore may implement it to
// receive operational events as graph nodes. Adapters that don't implement
// it simply never get this traffic, rather than widening the core port.
type eventRecorder interface {
	RecordEvent(ctx context.Context, entry ports.EventLogEntry) error
}

func (w *SyncWorker) sync(ctx context.Context) {
	recorder, ok := w.graph.(eventRecorder)
	if !ok {
		return
	}
	entries, err := w.log.Recent(ctx, 10000)
	if err != nil {
		return
	}
	newest := w.synced
	for _, entry := range entries {
		if !entry.Timestamp.After(w.synced) {
			continue
		}
		_ = recorder.RecordEvent(ctx, entry)
		if entry.Timestamp.After(newest) {
			newest = entry.Timestamp
		}
	}
	w.synced = newest
}
