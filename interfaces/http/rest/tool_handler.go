package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"ctxmemory/application/commands"
	"ctxmemory/application/mediator"
	"ctxmemory/application/queries"
	pkgerrors "ctxmemory/pkg/errors"
	"go.uber.org/zap"
)

// ToolHandler is the single HTTP entry point for every tool-surface
// operation: decode the request body into the tool's concrete
// command/query, run it through the mediator's behavior pipeline, and
// write the response envelope. One method per tool mirrors the way the
// teacher groups related endpoints behind a single handler struct.
type ToolHandler struct {
	mediator *mediator.Mediator
	logger   *zap.Logger
	errors   *pkgerrors.ErrorHandler
}

func NewToolHandler(med *mediator.Mediator, logger *zap.Logger, errorHandler *pkgerrors.ErrorHandler) *ToolHandler {
	return &ToolHandler{mediator: med, logger: logger, errors: errorHandler}
}

func (h *ToolHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		h.errors.Handle(w, r, h.traceID(r), pkgerrors.NewValidationError("malformed request body: "+err.Error()))
		return false
	}
	return true
}

func (h *ToolHandler) traceID(r *http.Request) string {
	return r.Header.Get("X-Request-ID")
}

func (h *ToolHandler) StoreContext(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	cmd := &commands.StoreContextCommand{}
	if !h.decode(w, r, cmd) {
		return
	}
	if err := h.mediator.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, h.traceID(r), err)
		return
	}
	result := commands.StoreContextResult{
		ID:                   cmd.ResultContextID,
		GraphID:              cmd.ResultGraphID,
		EmbeddingStatus:      cmd.ResultEmbeddingStatus,
		RelationshipsCreated: cmd.ResultRelationshipsCreated,
		Namespace:            cmd.ResultNamespace,
		Warnings:             cmd.ResultWarnings,
	}
	if result.Warnings == nil {
		result.Warnings = []string{}
	}
	if cmd.ResultVectorID != "" {
		result.VectorID = &cmd.ResultVectorID
	}
	writeSuccess(w, r, http.StatusCreated, result, cmd.ResultWarnings, start)
}

func (h *ToolHandler) RetrieveContext(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := &queries.RetrieveContextQuery{}
	if !h.decode(w, r, q) {
		return
	}
	result, err := h.mediator.Query(r.Context(), q)
	if err != nil {
		h.errors.Handle(w, r, h.traceID(r), err)
		return
	}
	var warnings []string
	if rcr, ok := result.(*queries.RetrieveContextResult); ok {
		warnings = rcr.Warnings
	}
	writeSuccess(w, r, http.StatusOK, result, warnings, start)
}

func (h *ToolHandler) QueryGraph(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := &queries.QueryGraphQuery{}
	if !h.decode(w, r, q) {
		return
	}
	result, err := h.mediator.Query(r.Context(), q)
	if err != nil {
		h.errors.Handle(w, r, h.traceID(r), err)
		return
	}
	writeSuccess(w, r, http.StatusOK, result, nil, start)
}

func (h *ToolHandler) UpdateScratchpad(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	cmd := &commands.UpdateScratchpadCommand{}
	if !h.decode(w, r, cmd) {
		return
	}
	if err := h.mediator.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, h.traceID(r), err)
		return
	}
	writeSuccess(w, r, http.StatusOK, map[string]bool{"stored": true}, nil, start)
}

func (h *ToolHandler) GetAgentState(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := &queries.GetAgentStateQuery{
		AgentID: r.URL.Query().Get("agent_id"),
		Key:     r.URL.Query().Get("key"),
	}
	result, err := h.mediator.Query(r.Context(), q)
	if err != nil {
		h.errors.Handle(w, r, h.traceID(r), err)
		return
	}
	writeSuccess(w, r, http.StatusOK, result, nil, start)
}

func (h *ToolHandler) DeleteContext(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	cmd := &commands.DeleteContextCommand{}
	if !h.decode(w, r, cmd) {
		return
	}
	if err := h.mediator.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, h.traceID(r), err)
		return
	}
	writeSuccess(w, r, http.StatusOK, map[string]bool{"deleted": true}, nil, start)
}

func (h *ToolHandler) ForgetContext(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	cmd := &commands.ForgetContextCommand{}
	if !h.decode(w, r, cmd) {
		return
	}
	if err := h.mediator.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, h.traceID(r), err)
		return
	}
	writeSuccess(w, r, http.StatusOK, map[string]bool{"forgotten": true}, nil, start)
}

func (h *ToolHandler) Tools(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result, err := h.mediator.Query(r.Context(), &queries.ToolsQuery{})
	if err != nil {
		h.errors.Handle(w, r, h.traceID(r), err)
		return
	}
	writeSuccess(w, r, http.StatusOK, result, nil, start)
}

func (h *ToolHandler) HealthDetailed(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result, err := h.mediator.Query(r.Context(), &queries.HealthDetailedQuery{})
	if err != nil {
		h.errors.Handle(w, r, h.traceID(r), err)
		return
	}
	writeSuccess(w, r, http.StatusOK, result, nil, start)
}

// Health is the liveness probe: it never touches a backend, unlike
// HealthDetailed.
func (h *ToolHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
