package handlers

import (
	"context"

	querybus "ctxmemory/application/queries/bus"
	"ctxmemory/application/ports"
	"ctxmemory/application/queries"
)

type HealthDetailedHandler struct {
	vector   ports.VectorStore
	graph    ports.GraphStore
	text     ports.TextIndex
	kv       ports.KVStore
	embedder ports.Embedder
}

func NewHealthDetailedHandler(vector ports.VectorStore, graph ports.GraphStore, text ports.TextIndex, kv ports.KVStore, embedder ports.Embedder) *HealthDetailedHandler {
	return &HealthDetailedHandler{vector: vector, graph: graph, text: text, kv: kv, embedder: embedder}
}

func (h *HealthDetailedHandler) Handle(ctx context.Context, query querybus.Query) (interface{}, error) {
	toStatus := func(health ports.BackendHealth) queries.BackendStatus {
		return queries.BackendStatus{
			Available: health.Available,
			LatencyMS: health.Latency.Milliseconds(),
			Detail:    health.Detail,
		}
	}

	services := map[string]queries.BackendStatus{
		"vector": toStatus(h.vector.Health(ctx)),
		"graph":  toStatus(h.graph.Health(ctx)),
		"text":   toStatus(h.text.Health(ctx)),
		"kv":     toStatus(h.kv.Health(ctx)),
	}

	embeddingHealth := queries.BackendStatus{Available: false, Detail: "embedder not configured"}
	if h.embedder != nil {
		embeddingHealth = toStatus(h.embedder.Health(ctx))
	}

	return &queries.HealthDetailedResult{
		Services:          services,
		EmbeddingPipeline: embeddingHealth,
	}, nil
}
