package commands

import (
	"errors"

	"ctxmemory/pkg/auth"
)

// DeleteContextCommand hard-deletes a context. Only human principals may
// issue this; AuthBehavior enforces that via IsAgent, not via the
// capability matrix alone.
type DeleteContextCommand struct {
	ContextID string `json:"context_id" validate:"required"`
	Actor     string `json:"actor" validate:"required"`
	Reason    string `json:"reason"`
}

func (cmd *DeleteContextCommand) Validate() error {
	if cmd.ContextID == "" {
		return errors.New("context_id is required")
	}
	if cmd.Actor == "" {
		return errors.New("actor is required")
	}
	return nil
}

func (cmd *DeleteContextCommand) RequiredCapability() auth.Capability { return auth.CapDeleteContext }

func (cmd *DeleteContextCommand) AuditContextID() string { return cmd.ContextID }
