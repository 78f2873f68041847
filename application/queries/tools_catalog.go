package queries

import "ctxmemory/pkg/auth"

// ToolsQuery asks for the tool catalog — always permitted (guest-tier).
type ToolsQuery struct{}

func (q *ToolsQuery) Validate() error { return nil }

func (q *ToolsQuery) RequiredCapability() auth.Capability { return auth.CapTools }

// ToolDescriptor documents one tool surface entry, reflecting runtime
// backend health rather than a static list.
type ToolDescriptor struct {
	Name               string   `json:"name"`
	RequiredCapability string   `json:"required_capability"`
	Available          bool     `json:"available"`
	UnavailableReason  string   `json:"unavailable_reason,omitempty"`
	InputSchema        []string `json:"input_fields"`
}

type ToolsResult struct {
	Tools []ToolDescriptor `json:"tools"`
}

// HealthDetailedQuery asks for the full per-backend + embedding-pipeline
// health snapshot.
type HealthDetailedQuery struct{}

func (q *HealthDetailedQuery) Validate() error { return nil }

func (q *HealthDetailedQuery) RequiredCapability() auth.Capability { return auth.CapHealth }

type BackendStatus struct {
	Available bool   `json:"available"`
	LatencyMS int64  `json:"latency_ms"`
	Detail    string `json:"detail,omitempty"`
}

type HealthDetailedResult struct {
	Services         map[string]BackendStatus `json:"services"`
	EmbeddingPipeline BackendStatus           `json:"embedding_pipeline"`
}
