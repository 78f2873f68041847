package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	commandbus "ctxmemory/application/commands/bus"
	"ctxmemory/application/commands"
	"ctxmemory/application/ports"
	"ctxmemory/domain/core/entities"
	pkgerrors "ctxmemory/pkg/errors"
)

// UpdateScratchpadHandler writes one agent-scoped ephemeral key/value pair
// into the KV backend under a key that namespaces it to the agent.
type UpdateScratchpadHandler struct {
	kv ports.KVStore
}

func NewUpdateScratchpadHandler(kv ports.KVStore) *UpdateScratchpadHandler {
	return &UpdateScratchpadHandler{kv: kv}
}

func (h *UpdateScratchpadHandler) Handle(ctx context.Context, command commandbus.Command) error {
	cmd, ok := command.(*commands.UpdateScratchpadCommand)
	if !ok {
		return pkgerrors.NewInternalError(fmt.Sprintf("unexpected command type %T", command))
	}

	entry := entities.ScratchpadEntry{
		AgentID:   cmd.AgentID,
		Key:       cmd.Key,
		Value:     cmd.Value,
		TTL:       cmd.TTL,
		WrittenAt: time.Now(),
	}
	payload, err := json.Marshal(entry.Value)
	if err != nil {
		return pkgerrors.NewValidationError("value is not JSON-serializable: " + err.Error())
	}
	if err := h.kv.Set(ctx, entry.StorageKey(), payload, cmd.TTL); err != nil {
		return pkgerrors.NewBackendUnavailableError("kv store: " + err.Error())
	}
	return nil
}
