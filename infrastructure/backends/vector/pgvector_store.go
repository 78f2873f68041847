// Package vector adapts application/ports.VectorStore onto Postgres with
// the pgvector extension, reached through pgx/v5's connection pool.
package vector

import (
	"context"
	"time"

	"ctxmemory/application/ports"
	"ctxmemory/domain/core/valueobjects"
	"ctxmemory/pkg/resilience"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/sony/gobreaker"
)

type PgVectorStore struct {
	pool    *pgxpool.Pool
	breaker *gobreaker.CircuitBreaker[any]
}

func NewPgVectorStore(pool *pgxpool.Pool) *PgVectorStore {
	return &PgVectorStore{pool: pool, breaker: resilience.NewBreaker[any]("vector")}
}

// Store writes or replaces the embedding for id. parentID is the owning
// context for a stitched Q&A unit, or the zero value when id is itself a
// top-level context — either way it's recorded so a Q&A hit can be traced
// back to the context it was extracted from.
func (s *PgVectorStore) Store(ctx context.Context, id valueobjects.ContextID, embedding []float32, namespace valueobjects.Namespace, parentID valueobjects.ContextID) error {
	var parent *string
	if !parentID.IsZero() {
		p := parentID.String()
		parent = &p
	}
	_, err := s.breaker.Execute(func() (any, error) {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO context_embeddings (context_id, namespace, embedding, parent_id)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (context_id) DO UPDATE SET embedding = EXCLUDED.embedding, namespace = EXCLUDED.namespace, parent_id = EXCLUDED.parent_id
		`, id.String(), namespace.String(), pgvector.NewVector(embedding), parent)
		return nil, err
	})
	return err
}

// Search returns the nearest neighbors by cosine distance within namespace,
// converting pgvector's distance (0 = identical) into a similarity score in
// (0, 1] the way the ranker expects.
func (s *PgVectorStore) Search(ctx context.Context, embedding []float32, namespace valueobjects.Namespace, limit int) ([]ports.VectorMatch, error) {
	if limit <= 0 {
		limit = 10
	}
	result, err := s.breaker.Execute(func() (any, error) {
		rows, err := s.pool.Query(ctx, `
			SELECT context_id, embedding <=> $1 as distance
			FROM context_embeddings
			WHERE namespace = $2
			ORDER BY embedding <=> $1
			LIMIT $3
		`, pgvector.NewVector(embedding), namespace.String(), limit)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var matches []ports.VectorMatch
		for rows.Next() {
			var idStr string
			var distance float64
			if err := rows.Scan(&idStr, &distance); err != nil {
				continue
			}
			id, err := valueobjects.NewContextIDFromString(idStr)
			if err != nil {
				continue
			}
			matches = append(matches, ports.VectorMatch{ContextID: id, Score: 1 / (1 + distance)})
		}
		return matches, rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return result.([]ports.VectorMatch), nil
}

func (s *PgVectorStore) Delete(ctx context.Context, id valueobjects.ContextID) error {
	_, err := s.breaker.Execute(func() (any, error) {
		_, err := s.pool.Exec(ctx, `DELETE FROM context_embeddings WHERE context_id = $1`, id.String())
		return nil, err
	})
	return err
}

func (s *PgVectorStore) Health(ctx context.Context) ports.BackendHealth {
	start := time.Now()
	err := s.pool.Ping(ctx)
	latency := time.Since(start)
	if err != nil {
		return ports.BackendHealth{Available: false, Latency: latency, Detail: err.Error()}
	}
	return ports.BackendHealth{Available: true, Latency: latency}
}
