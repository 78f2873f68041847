package handlers

import (
	"context"

	querybus "ctxmemory/application/queries/bus"
	"ctxmemory/application/ports"
	"ctxmemory/application/queries"
)

// ToolsHandler builds the tool catalog, reflecting current backend health
// rather than a fixed static document.
type ToolsHandler struct {
	vector ports.VectorStore
	graph  ports.GraphStore
	text   ports.TextIndex
	kv     ports.KVStore
}

func NewToolsHandler(vector ports.VectorStore, graph ports.GraphStore, text ports.TextIndex, kv ports.KVStore) *ToolsHandler {
	return &ToolsHandler{vector: vector, graph: graph, text: text, kv: kv}
}

var catalog = []struct {
	name         string
	capability   string
	fields       []string
	backend      string
}{
	{"store_context", "store_context", []string{"type", "content", "metadata", "author", "author_type"}, "graph"},
	{"retrieve_context", "retrieve_context", []string{"query", "search_mode", "limit", "filters", "sort_by"}, "vector"},
	{"query_graph", "query_graph:read", []string{"query", "parameters"}, "graph"},
	{"update_scratchpad", "update_scratchpad", []string{"agent_id", "key", "value", "ttl"}, "kv"},
	{"get_agent_state", "get_agent_state", []string{"agent_id", "key"}, "kv"},
	{"delete_context", "delete_context", []string{"context_id", "reason"}, "graph"},
	{"forget_context", "forget_context", []string{"context_id", "retention_days"}, "graph"},
	{"tools", "tools", nil, ""},
	{"health_detailed", "health", nil, ""},
}

func (h *ToolsHandler) Handle(ctx context.Context, query querybus.Query) (interface{}, error) {
	descriptors := make([]queries.ToolDescriptor, 0, len(catalog))
	for _, entry := range catalog {
		available := true
		reason := ""
		switch entry.backend {
		case "vector":
			if health := h.vector.Health(ctx); !health.Available {
				available, reason = false, health.Detail
			}
		case "graph":
			if health := h.graph.Health(ctx); !health.Available {
				available, reason = false, health.Detail
			}
		case "kv":
			if health := h.kv.Health(ctx); !health.Available {
				available, reason = false, health.Detail
			}
		}
		descriptors = append(descriptors, queries.ToolDescriptor{
			Name:               entry.name,
			RequiredCapability: entry.capability,
			Available:          available,
			UnavailableReason:  reason,
			InputSchema:        entry.fields,
		})
	}
	return &queries.ToolsResult{Tools: descriptors}, nil
}
