package commands

import (
	"errors"

	"ctxmemory/pkg/auth"
)

// ForgetContextCommand soft-deletes a context: it stays retrievable by
// direct ID lookup through a grace period (retention_days) but drops out of
// retrieval/search results immediately. The handler records a purge_at
// time; no component in this module deletes the context when it passes.
type ForgetContextCommand struct {
	ContextID     string `json:"context_id" validate:"required"`
	Actor         string `json:"actor" validate:"required"`
	Reason        string `json:"reason"`
	RetentionDays *int   `json:"retention_days"`
}

func (cmd *ForgetContextCommand) Validate() error {
	if cmd.ContextID == "" {
		return errors.New("context_id is required")
	}
	if cmd.Actor == "" {
		return errors.New("actor is required")
	}
	if cmd.RetentionDays != nil && (*cmd.RetentionDays < 1 || *cmd.RetentionDays > 90) {
		return errors.New("retention_days must be between 1 and 90")
	}
	return nil
}

func (cmd *ForgetContextCommand) RequiredCapability() auth.Capability { return auth.CapForgetContext }

func (cmd *ForgetContextCommand) AuditContextID() string { return cmd.ContextID }
