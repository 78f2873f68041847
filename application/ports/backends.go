// Package ports declares the hexagonal boundary between the application
// layer and the pluggable storage backends: every backend, regardless of
// underlying technology, is reached through one of these four interfaces.
package ports

import (
	"context"
	"time"

	"ctxmemory/domain/core/entities"
	"ctxmemory/domain/core/valueobjects"
)

// BackendHealth is returned by every backend's Health check.
type BackendHealth struct {
	Available bool
	Latency   time.Duration
	Detail    string
}

// VectorMatch is one scored hit from a similarity search.
type VectorMatch struct {
	ContextID valueobjects.ContextID
	Score     float64
}

// VectorStore is the embedding similarity-search backend (pgvector by
// default).
type VectorStore interface {
	// Store writes id's embedding. parentID is the owning context when id
	// names a derived Q&A unit, and its zero value otherwise.
	Store(ctx context.Context, id valueobjects.ContextID, embedding []float32, namespace valueobjects.Namespace, parentID valueobjects.ContextID) error
	Search(ctx context.Context, embedding []float32, namespace valueobjects.Namespace, limit int) ([]VectorMatch, error)
	Delete(ctx context.Context, id valueobjects.ContextID) error
	Health(ctx context.Context) BackendHealth
}

// GraphStore is the relationship-graph backend (Neo4j by default).
type GraphStore interface {
	UpsertNode(ctx context.Context, ctxEntity *entities.Context) (graphID string, err error)
	UpsertEdge(ctx context.Context, edge entities.RelationshipEdge) error
	Neighbors(ctx context.Context, contextID valueobjects.ContextID, relTypes []entities.RelationshipType, depth int) ([]entities.RelationshipEdge, error)
	FetchByIDs(ctx context.Context, ids []valueobjects.ContextID) ([]*entities.Context, error)
	DeleteNode(ctx context.Context, contextID valueobjects.ContextID) error
	Health(ctx context.Context) BackendHealth
}

// KVStore is the scratchpad/lock/event-log backend (Redis by default).
type KVStore interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	// AcquireLock sets key only if absent, returning ok=false if already held.
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	ReleaseLock(ctx context.Context, key string, token string) error
	Health(ctx context.Context) BackendHealth
}

// TextMatch is one scored hit from a lexical search.
type TextMatch struct {
	ContextID valueobjects.ContextID
	Score     float64
}

// TextIndex is the lexical/full-text backend (in-memory bleve by default).
type TextIndex interface {
	Index(ctx context.Context, ctxEntity *entities.Context) error
	Search(ctx context.Context, query string, namespace valueobjects.Namespace, limit int) ([]TextMatch, error)
	Delete(ctx context.Context, id valueobjects.ContextID) error
	Health(ctx context.Context) BackendHealth
}

// Embedder generates vector embeddings for stored content.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
	Health(ctx context.Context) BackendHealth
}

// EventLog is the bounded, append-only operational event trail, distinct
// from domain events: it records backend sync activity for
// operators, not aggregate state transitions.
type EventLog interface {
	Append(ctx context.Context, entry EventLogEntry) error
	Recent(ctx context.Context, limit int) ([]EventLogEntry, error)
}

// EventLogEntry is one row of the operational event trail.
type EventLogEntry struct {
	Timestamp time.Time
	Source    string
	Message   string
	Detail    map[string]interface{}
}

// AuditStore is the append-only record of destructive operations: written
// before the destructive side effect actually runs.
type AuditStore interface {
	Record(ctx context.Context, record entities.AuditRecord) error
}
