package queries

import (
	"errors"

	"ctxmemory/pkg/auth"
)

// GetAgentStateQuery is a direct KV read — no search involved.
type GetAgentStateQuery struct {
	AgentID string `json:"agent_id" validate:"required"`
	Key     string `json:"key"`
}

func (q *GetAgentStateQuery) Validate() error {
	if q.AgentID == "" {
		return errors.New("agent_id is required")
	}
	return nil
}

func (q *GetAgentStateQuery) RequiredCapability() auth.Capability { return auth.CapGetAgentState }

type GetAgentStateResult struct {
	Value interface{} `json:"value,omitempty"`
	Keys  []string    `json:"keys,omitempty"`
}
