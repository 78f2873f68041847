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
	"ctxmemory/pkg/auth"
	pkgerrors "ctxmemory/pkg/errors"
	"go.uber.org/zap"
)

const defaultRetentionDays = 30

// ForgetContextHandler soft-deletes: the context stays in every backend but
// is tombstoned so retrieval/search exclude it, and purge_at is set to
// retention_days out. The sync worker does not act on purge_at; nothing in
// this module purges the context when that time passes.
type ForgetContextHandler struct {
	graph  ports.GraphStore
	audit  ports.AuditStore
	logger *zap.Logger
}

func NewForgetContextHandler(graph ports.GraphStore, audit ports.AuditStore, logger *zap.Logger) *ForgetContextHandler {
	return &ForgetContextHandler{graph: graph, audit: audit, logger: logger}
}

func (h *ForgetContextHandler) Handle(ctx context.Context, command commandbus.Command) error {
	cmd, ok := command.(*commands.ForgetContextCommand)
	if !ok {
		return pkgerrors.NewInternalError(fmt.Sprintf("unexpected command type %T", command))
	}

	id, err := valueobjects.NewContextIDFromString(cmd.ContextID)
	if err != nil {
		return pkgerrors.NewValidationError("invalid context_id: " + err.Error())
	}

	retentionDays := defaultRetentionDays
	if cmd.RetentionDays != nil {
		retentionDays = *cmd.RetentionDays
	}
	purgeAt := time.Now().AddDate(0, 0, retentionDays)

	contexts, err := h.graph.FetchByIDs(ctx, []valueobjects.ContextID{id})
	if err != nil || len(contexts) == 0 {
		return pkgerrors.NewNotFoundError("context not found: " + cmd.ContextID)
	}

	actorType := "human"
	if principal, found := auth.FromContext(ctx); found && principal.IsAgent {
		actorType = "agent"
	}
	if err := h.audit.Record(ctx, entities.AuditRecord{
		ID:            cmd.ContextID,
		ContextID:     cmd.ContextID,
		Actor:         cmd.Actor,
		ActorType:     actorType,
		Reason:        cmd.Reason,
		Timestamp:     time.Now(),
		Mode:          entities.DeleteModeSoft,
		RetentionDays: &retentionDays,
	}); err != nil {
		return pkgerrors.NewInternalError("failed to write audit record: " + err.Error())
	}

	ctxEntity := contexts[0]
	ctxEntity.SoftDelete(purgeAt)

	if _, err := h.graph.UpsertNode(ctx, ctxEntity); err != nil {
		h.logger.Warn("failed to persist tombstone", zap.String("context_id", cmd.ContextID), zap.Error(err))
		return pkgerrors.NewBackendUnavailableError("graph store: " + err.Error())
	}
	ctxEntity.MarkEventsAsCommitted()
	return nil
}
