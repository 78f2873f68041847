package queries

import (
	"errors"

	"ctxmemory/pkg/auth"
)

// QueryGraphQuery runs a restricted graph query. Write access is gated by
// the capability matrix: WriteIntent=true requires query_graph:write, which
// the mediator's auth behavior checks before the handler runs; a read-only
// query carries WriteIntent=false and needs only query_graph:read.
type QueryGraphQuery struct {
	Query       string                 `json:"query" validate:"required"`
	Parameters  map[string]interface{} `json:"parameters"`
	WriteIntent bool                   `json:"write_intent"`
}

func (q *QueryGraphQuery) Validate() error {
	if q.Query == "" {
		return errors.New("query is required")
	}
	return nil
}

func (q *QueryGraphQuery) RequiredCapability() auth.Capability {
	if q.WriteIntent {
		return auth.CapQueryGraphWrite
	}
	return auth.CapQueryGraphRead
}

type QueryGraphResult struct {
	Results []map[string]interface{} `json:"results"`
}
