package commands

import (
	"errors"
	"time"

	"ctxmemory/pkg/auth"
)

// UpdateScratchpadCommand writes one ephemeral key/value pair, keyed by the
// agent ID given in the request. The command does not check that agent ID
// against the calling principal.
type UpdateScratchpadCommand struct {
	AgentID string      `json:"agent_id" validate:"required"`
	Key     string      `json:"key" validate:"required"`
	Value   interface{} `json:"value" validate:"required"`
	TTL     time.Duration `json:"ttl"`
}

const defaultScratchpadTTL = time.Hour

func (cmd *UpdateScratchpadCommand) Validate() error {
	if cmd.AgentID == "" {
		return errors.New("agent_id is required")
	}
	if cmd.Key == "" {
		return errors.New("key is required")
	}
	if cmd.Value == nil {
		return errors.New("value is required")
	}
	if cmd.TTL <= 0 {
		cmd.TTL = defaultScratchpadTTL
	}
	return nil
}

func (cmd *UpdateScratchpadCommand) RequiredCapability() auth.Capability {
	return auth.CapUpdateScratchpad
}
