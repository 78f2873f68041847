// Package auth implements the opaque API-key principal/role model.
// Unlike the bearer-JWT shape this replaces, keys carry no expiry or
// signature: they are static, loaded from configuration at startup, and
// validated by table lookup alone.
package auth

import (
	"context"
	"errors"
)

var (
	ErrMissingKey = errors.New("missing authentication key")
	ErrUnknownKey = errors.New("unknown or revoked API key")
)

// Role is the coarse capability tier an API key carries.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleWriter Role = "writer"
	RoleReader Role = "reader"
	RoleGuest  Role = "guest"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleWriter, RoleReader, RoleGuest:
		return true
	default:
		return false
	}
}

// Principal is the authenticated identity behind a request.
type Principal struct {
	ID      string
	Role    Role
	IsAgent bool
}

// Capability is one tool-surface operation, used by the role matrix below.
type Capability string

const (
	CapStoreContext      Capability = "store_context"
	CapRetrieveContext   Capability = "retrieve_context"
	CapQueryGraphRead    Capability = "query_graph:read"
	CapQueryGraphWrite   Capability = "query_graph:write"
	CapUpdateScratchpad  Capability = "update_scratchpad"
	CapGetAgentState     Capability = "get_agent_state"
	CapDeleteContext     Capability = "delete_context"
	CapForgetContext     Capability = "forget_context"
	CapTools             Capability = "tools"
	CapHealth            Capability = "health"
)

// capabilityMatrix implements the role -> capability table.
var capabilityMatrix = map[Role]map[Capability]bool{
	RoleGuest: {
		CapTools: true, CapHealth: true,
	},
	RoleReader: {
		CapRetrieveContext: true, CapQueryGraphRead: true,
		CapTools: true, CapHealth: true, CapGetAgentState: true,
	},
	RoleWriter: {
		CapRetrieveContext: true, CapQueryGraphRead: true,
		CapTools: true, CapHealth: true, CapGetAgentState: true,
		CapStoreContext: true, CapUpdateScratchpad: true, CapForgetContext: true,
	},
	RoleAdmin: {
		CapRetrieveContext: true, CapQueryGraphRead: true,
		CapTools: true, CapHealth: true, CapGetAgentState: true,
		CapStoreContext: true, CapUpdateScratchpad: true, CapForgetContext: true,
		CapDeleteContext: true, CapQueryGraphWrite: true,
	},
}

// Can reports whether p's role carries cap. delete_context additionally
// requires a human principal, enforced separately by the caller via
// p.IsAgent, since the matrix alone cannot express the is_agent=false
// condition.
func (p Principal) Can(cap Capability) bool {
	return capabilityMatrix[p.Role][cap]
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
