// Package audit adapts application/ports.AuditStore onto the same Postgres
// pool the vector store uses: the audit trail and the embeddings live in
// one database, just different tables.
package audit

import (
	"context"

	"ctxmemory/application/ports"
	"ctxmemory/domain/core/entities"
	"ctxmemory/pkg/resilience"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sony/gobreaker"
)

type PostgresAuditStore struct {
	pool    *pgxpool.Pool
	breaker *gobreaker.CircuitBreaker[any]
}

func NewPostgresAuditStore(pool *pgxpool.Pool) *PostgresAuditStore {
	return &PostgresAuditStore{pool: pool, breaker: resilience.NewBreaker[any]("audit")}
}

// Record inserts the audit row. This is called before the destructive
// backend calls run, so a failure here must abort the operation rather
// than being logged and ignored like the backend deletes themselves.
func (s *PostgresAuditStore) Record(ctx context.Context, record entities.AuditRecord) error {
	_, err := s.breaker.Execute(func() (any, error) {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO audit_log (id, context_id, actor, actor_type, reason, timestamp, mode, retention_days)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO NOTHING
		`, record.ID, record.ContextID, record.Actor, record.ActorType, record.Reason, record.Timestamp, string(record.Mode), record.RetentionDays)
		return nil, err
	})
	return err
}

func (s *PostgresAuditStore) Health(ctx context.Context) ports.BackendHealth {
	err := s.pool.Ping(ctx)
	if err != nil {
		return ports.BackendHealth{Available: false, Detail: err.Error()}
	}
	return ports.BackendHealth{Available: true}
}
