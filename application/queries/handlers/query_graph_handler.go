package handlers

import (
	"context"
	"fmt"

	querybus "ctxmemory/application/queries/bus"
	"ctxmemory/application/ports"
	"ctxmemory/application/queries"
	pkgerrors "ctxmemory/pkg/errors"
)

// QueryGraphHandler executes a restricted Cypher-style query against the
// graph backend. Write access is gated by the caller's role before this
// handler ever runs (AuthBehavior); this handler only decides which
// underlying session mode to use.
type QueryGraphHandler struct {
	graph ports.GraphStore
}

func NewQueryGraphHandler(graph ports.GraphStore) *QueryGraphHandler {
	return &QueryGraphHandler{graph: graph}
}

func (h *QueryGraphHandler) Handle(ctx context.Context, query querybus.Query) (interface{}, error) {
	q, ok := query.(*queries.QueryGraphQuery)
	if !ok {
		return nil, pkgerrors.NewInternalError(fmt.Sprintf("unexpected query type %T", query))
	}

	executor, ok := h.graph.(interface {
		Execute(ctx context.Context, cypher string, params map[string]interface{}, writeAllowed bool) ([]map[string]interface{}, error)
	})
	if !ok {
		return nil, pkgerrors.NewBackendUnavailableError("graph backend does not support ad hoc queries")
	}
	rows, err := executor.Execute(ctx, q.Query, q.Parameters, q.WriteIntent)
	if err != nil {
		return nil, pkgerrors.NewBackendUnavailableError("graph query: " + err.Error())
	}
	return &queries.QueryGraphResult{Results: rows}, nil
}
