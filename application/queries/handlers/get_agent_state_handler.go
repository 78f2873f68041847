package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	querybus "ctxmemory/application/queries/bus"
	"ctxmemory/application/ports"
	"ctxmemory/application/queries"
	"ctxmemory/domain/core/entities"
	pkgerrors "ctxmemory/pkg/errors"
)

type GetAgentStateHandler struct {
	kv ports.KVStore
}

func NewGetAgentStateHandler(kv ports.KVStore) *GetAgentStateHandler {
	return &GetAgentStateHandler{kv: kv}
}

func (h *GetAgentStateHandler) Handle(ctx context.Context, query querybus.Query) (interface{}, error) {
	q, ok := query.(*queries.GetAgentStateQuery)
	if !ok {
		return nil, pkgerrors.NewInternalError(fmt.Sprintf("unexpected query type %T", query))
	}

	if q.Key != "" {
		entry := entities.ScratchpadEntry{AgentID: q.AgentID, Key: q.Key}
		raw, err := h.kv.Get(ctx, entry.StorageKey())
		if err != nil {
			return nil, pkgerrors.NewNotFoundError("no scratchpad value for key " + q.Key)
		}
		var value interface{}
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, pkgerrors.NewInternalError("stored value is not valid JSON: " + err.Error())
		}
		return &queries.GetAgentStateResult{Value: value}, nil
	}

	lister, ok := h.kv.(interface {
		Keys(ctx context.Context, prefix string) ([]string, error)
	})
	if !ok {
		return nil, pkgerrors.NewBackendUnavailableError("kv backend does not support key listing")
	}
	prefix := "scratch:" + q.AgentID + ":"
	keys, err := lister.Keys(ctx, prefix)
	if err != nil {
		return nil, pkgerrors.NewBackendUnavailableError("kv store: " + err.Error())
	}
	trimmed := make([]string, len(keys))
	for i, k := range keys {
		trimmed[i] = strings.TrimPrefix(k, prefix)
	}
	return &queries.GetAgentStateResult{Keys: trimmed}, nil
}
