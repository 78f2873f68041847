// Package graph adapts application/ports.GraphStore onto Neo4j
// (neo4j-go-driver/v5), the system of record for context nodes and their
// typed relationship edges.
package graph

import (
	"context"
	"time"

	"ctxmemory/application/ports"
	"ctxmemory/domain/core/entities"
	"ctxmemory/domain/core/valueobjects"
	"ctxmemory/pkg/resilience"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/sony/gobreaker"
)

type Neo4jGraph struct {
	driver  neo4j.DriverWithContext
	breaker *gobreaker.CircuitBreaker[any]
}

func NewNeo4jGraph(driver neo4j.DriverWithContext) *Neo4jGraph {
	return &Neo4jGraph{driver: driver, breaker: resilience.NewBreaker[any]("graph")}
}

// UpsertNode is the commit point for a stored context: a successful write
// here is what advances the context past Draft.
func (g *Neo4jGraph) UpsertNode(ctx context.Context, ctxEntity *entities.Context) (string, error) {
	result, err := g.breaker.Execute(func() (any, error) {
		session := g.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
		defer session.Close(ctx)

		return session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
			query := `
				MERGE (c:Context {id: $id})
				SET c.type = $type,
				    c.namespace = $namespace,
				    c.author = $author,
				    c.author_type = $author_type,
				    c.created_at = $created_at,
				    c.state = $state,
				    c.title = $title
				RETURN c.id as id
			`
			params := map[string]interface{}{
				"id":          ctxEntity.ID().String(),
				"type":        string(ctxEntity.Type()),
				"namespace":   ctxEntity.Namespace().String(),
				"author":      ctxEntity.Author(),
				"author_type": ctxEntity.AuthorType(),
				"created_at":  ctxEntity.CreatedAt().Format(time.RFC3339),
				"state":       string(ctxEntity.State()),
				"title":       ctxEntity.Title(),
			}
			if _, err := tx.Run(ctx, query, params); err != nil {
				return nil, err
			}
			return ctxEntity.ID().String(), nil
		})
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (g *Neo4jGraph) UpsertEdge(ctx context.Context, edge entities.RelationshipEdge) error {
	_, err := g.breaker.Execute(func() (any, error) {
		session := g.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
		defer session.Close(ctx)

		return session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
			query := `
				MATCH (a:Context {id: $source})
				MATCH (b:Context {id: $target})
				MERGE (a)-[r:` + string(edge.Type) + `]->(b)
				SET r.reason = $reason,
				    r.auto_detected = $auto_detected,
				    r.created_at = $created_at
			`
			params := map[string]interface{}{
				"source":        edge.SourceID,
				"target":        edge.TargetID,
				"reason":        edge.Reason,
				"auto_detected": edge.AutoDetected,
				"created_at":    edge.CreatedAt,
			}
			_, err := tx.Run(ctx, query, params)
			return nil, err
		})
	})
	return err
}

func (g *Neo4jGraph) Neighbors(ctx context.Context, contextID valueobjects.ContextID, relTypes []entities.RelationshipType, depth int) ([]entities.RelationshipEdge, error) {
	if depth <= 0 {
		depth = 1
	}
	result, err := g.breaker.Execute(func() (any, error) {
		session := g.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
		defer session.Close(ctx)

		return session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
			query := `
				MATCH (a:Context {id: $id})-[r]->(b:Context)
				RETURN type(r) as relType, a.id as source, b.id as target, r.reason as reason, r.auto_detected as autoDetected, r.created_at as createdAt
			`
			params := map[string]interface{}{"id": contextID.String()}
			rows, err := tx.Run(ctx, query, params)
			if err != nil {
				return nil, err
			}

			allowed := make(map[string]bool, len(relTypes))
			for _, t := range relTypes {
				allowed[string(t)] = true
			}

			var edges []entities.RelationshipEdge
			for rows.Next(ctx) {
				record := rows.Record()
				relType, _ := record.Get("relType")
				typeStr := relType.(string)
				if len(allowed) > 0 && !allowed[typeStr] {
					continue
				}
				source, _ := record.Get("source")
				target, _ := record.Get("target")
				reason, _ := record.Get("reason")
				auto, _ := record.Get("autoDetected")
				created, _ := record.Get("createdAt")

				edge := entities.RelationshipEdge{
					SourceID: toString(source),
					TargetID: toString(target),
					Type:     entities.RelationshipType(typeStr),
					Reason:   toString(reason),
				}
				if b, ok := auto.(bool); ok {
					edge.AutoDetected = b
				}
				if n, ok := created.(int64); ok {
					edge.CreatedAt = n
				}
				edges = append(edges, edge)
			}
			return edges, rows.Err()
		})
	})
	if err != nil {
		return nil, err
	}
	return result.([]entities.RelationshipEdge), nil
}

// FetchByIDs hydrates domain entities back from persisted node properties,
// used for both candidate hydration during relationship detection and
// post-dispatch retrieval hydration. Embeddings and content fields other
// than the title are not round-tripped through the graph (the graph only
// carries enough fields, created_at included, to reconstruct a Context
// usable for ranking/visibility checks).
func (g *Neo4jGraph) FetchByIDs(ctx context.Context, ids []valueobjects.ContextID) ([]*entities.Context, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	idStrs := make([]string, len(ids))
	for i, id := range ids {
		idStrs[i] = id.String()
	}

	result, err := g.breaker.Execute(func() (any, error) {
		session := g.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
		defer session.Close(ctx)

		return session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
			query := `
				MATCH (c:Context)
				WHERE c.id IN $ids
				RETURN c.id as id, c.type as type, c.namespace as namespace, c.author as author,
				       c.author_type as authorType, c.created_at as createdAt, c.state as state, c.title as title
			`
			rows, err := tx.Run(ctx, query, map[string]interface{}{"ids": idStrs})
			if err != nil {
				return nil, err
			}

			var out []*entities.Context
			for rows.Next(ctx) {
				record := rows.Record()
				ctxEntity, err := recordToContext(record)
				if err != nil {
					continue
				}
				out = append(out, ctxEntity)
			}
			return out, rows.Err()
		})
	})
	if err != nil {
		return nil, err
	}
	return result.([]*entities.Context), nil
}

func recordToContext(record *neo4j.Record) (*entities.Context, error) {
	get := func(key string) string {
		v, _ := record.Get(key)
		return toString(v)
	}
	id, err := valueobjects.NewContextIDFromString(get("id"))
	if err != nil {
		return nil, err
	}
	ns, err := valueobjects.ParseNamespace(get("namespace"))
	if err != nil {
		ns = valueobjects.Global()
	}
	createdAt, err := time.Parse(time.RFC3339, get("createdAt"))
	if err != nil {
		createdAt = time.Now().UTC()
	}
	content := map[string]interface{}{"title": get("title")}
	return entities.ReconstructContext(
		id,
		entities.ContextType(get("type")),
		content, map[string]interface{}{},
		get("author"), get("authorType"),
		ns, createdAt,
		"", id.String(),
		nil, nil,
		entities.LifecycleState(get("state")),
		entities.EmbeddingUnavailable,
	), nil
}

func toString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func (g *Neo4jGraph) DeleteNode(ctx context.Context, contextID valueobjects.ContextID) error {
	_, err := g.breaker.Execute(func() (any, error) {
		session := g.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
		defer session.Close(ctx)

		return session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
			query := `MATCH (c:Context {id: $id}) DETACH DELETE c`
			_, err := tx.Run(ctx, query, map[string]interface{}{"id": contextID.String()})
			return nil, err
		})
	})
	return err
}

// Execute runs an arbitrary Cypher query, satisfying the optional capability
// query_graph_handler type-asserts for. Reads always run; writes require
// writeAllowed, set by the caller only when the principal holds
// query:graph:write.
func (g *Neo4jGraph) Execute(ctx context.Context, cypher string, params map[string]interface{}, writeAllowed bool) ([]map[string]interface{}, error) {
	mode := neo4j.AccessModeRead
	if writeAllowed {
		mode = neo4j.AccessModeWrite
	}
	result, err := g.breaker.Execute(func() (any, error) {
		session := g.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode})
		defer session.Close(ctx)

		run := func(tx neo4j.ManagedTransaction) (interface{}, error) {
			rows, err := tx.Run(ctx, cypher, params)
			if err != nil {
				return nil, err
			}
			var out []map[string]interface{}
			for rows.Next(ctx) {
				out = append(out, rows.Record().AsMap())
			}
			return out, rows.Err()
		}
		if writeAllowed {
			return session.ExecuteWrite(ctx, run)
		}
		return session.ExecuteRead(ctx, run)
	})
	if err != nil {
		return nil, err
	}
	return result.([]map[string]interface{}), nil
}

// RecordEvent persists one operational event-log entry as an Event node,
// the optional capability application/ttl.SyncWorker drains into.
func (g *Neo4jGraph) RecordEvent(ctx context.Context, entry ports.EventLogEntry) error {
	_, err := g.breaker.Execute(func() (any, error) {
		session := g.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
		defer session.Close(ctx)

		return session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
			query := `
				CREATE (e:Event {source: $source, message: $message, timestamp: $timestamp})
			`
			params := map[string]interface{}{
				"source":    entry.Source,
				"message":   entry.Message,
				"timestamp": entry.Timestamp.Format(time.RFC3339),
			}
			_, err := tx.Run(ctx, query, params)
			return nil, err
		})
	})
	return err
}

func (g *Neo4jGraph) Health(ctx context.Context) ports.BackendHealth {
	start := time.Now()
	err := g.driver.VerifyConnectivity(ctx)
	latency := time.Since(start)
	if err != nil {
		return ports.BackendHealth{Available: false, Latency: latency, Detail: err.Error()}
	}
	return ports.BackendHealth{Available: true, Latency: latency}
}
