package handlers

import (
	"context"
	"fmt"
	"time"

	commandbus "ctxmemory/application/commands/bus"
	"ctxmemory/application/commands"
	"ctxmemory/application/ports"
	"ctxmemory/domain/core/entities"
	"ctxmemory/domain/core/valueobjects"
	pkgerrors "ctxmemory/pkg/errors"
	"go.uber.org/zap"
)

// DeleteContextHandler performs a hard delete: the audit record is written
// first, then the context is removed from every backend.
type DeleteContextHandler struct {
	vector ports.VectorStore
	graph  ports.GraphStore
	text   ports.TextIndex
	audit  ports.AuditStore
	logger *zap.Logger
}

func NewDeleteContextHandler(vector ports.VectorStore, graph ports.GraphStore, text ports.TextIndex, audit ports.AuditStore, logger *zap.Logger) *DeleteContextHandler {
	return &DeleteContextHandler{vector: vector, graph: graph, text: text, audit: audit, logger: logger}
}

func (h *DeleteContextHandler) Handle(ctx context.Context, command commandbus.Command) error {
	cmd, ok := command.(*commands.DeleteContextCommand)
	if !ok {
		return pkgerrors.NewInternalError(fmt.Sprintf("unexpected command type %T", command))
	}

	id, err := valueobjects.NewContextIDFromString(cmd.ContextID)
	if err != nil {
		return pkgerrors.NewValidationError("invalid context_id: " + err.Error())
	}

	if err := h.audit.Record(ctx, entities.AuditRecord{
		ID:        cmd.ContextID,
		ContextID: cmd.ContextID,
		Actor:     cmd.Actor,
		ActorType: "human",
		Reason:    cmd.Reason,
		Timestamp: time.Now(),
		Mode:      entities.DeleteModeHard,
	}); err != nil {
		return pkgerrors.NewInternalError("failed to write audit record: " + err.Error())
	}

	// The audit record is already written: everything below is a
	// best-effort cleanup of the now-audited destructive operation, but a
	// failure here must still be reported as an error, not swallowed —
	// a caller retrying delete_context needs to know the data may still
	// be present in one of the backends.
	if err := h.graph.DeleteNode(ctx, id); err != nil {
		h.logger.Error("graph delete failed", zap.String("context_id", cmd.ContextID), zap.Error(err))
		return pkgerrors.NewBackendUnavailableError("graph delete: " + err.Error())
	}
	if err := h.vector.Delete(ctx, id); err != nil {
		h.logger.Error("vector delete failed", zap.String("context_id", cmd.ContextID), zap.Error(err))
		return pkgerrors.NewBackendUnavailableError("vector delete: " + err.Error())
	}
	if err := h.text.Delete(ctx, id); err != nil {
		h.logger.Error("text index delete failed", zap.String("context_id", cmd.ContextID), zap.Error(err))
		return pkgerrors.NewBackendUnavailableError("text index delete: " + err.Error())
	}
	return nil
}
