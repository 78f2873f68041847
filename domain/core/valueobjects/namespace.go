package valueobjects

import (
	"fmt"
	"strings"

	apperrors "ctxmemory/pkg/errors"
)

// Scope is the kind of a namespace path.
type Scope string

const (
	ScopeGlobal  Scope = "global"
	ScopeProject Scope = "project"
	ScopeTeam    Scope = "team"
	ScopeUser    Scope = "user"
)

func (s Scope) IsValid() bool {
	switch s {
	case ScopeGlobal, ScopeProject, ScopeTeam, ScopeUser:
		return true
	default:
		return false
	}
}

// Namespace is an immutable path-based scoping identity, e.g. "/project/42/"
// or "/global/". Set at creation and never changed.
type Namespace struct {
	scope Scope
	id    string
}

func Global() Namespace { return Namespace{scope: ScopeGlobal} }

func NewNamespace(scope Scope, id string) (Namespace, error) {
	if !scope.IsValid() {
		return Namespace{}, apperrors.NewValidationError(fmt.Sprintf("unknown namespace scope %q", scope))
	}
	if scope != ScopeGlobal && strings.TrimSpace(id) == "" {
		return Namespace{}, apperrors.NewValidationError("namespace id cannot be empty for scope " + string(scope))
	}
	return Namespace{scope: scope, id: id}, nil
}

// ParseNamespace parses a path of the form "/global/", "/project/{id}/",
// "/team/{id}/" or "/user/{id}/".
func ParseNamespace(path string) (Namespace, error) {
	trimmed := strings.Trim(strings.TrimSpace(path), "/")
	if trimmed == "" {
		return Namespace{}, apperrors.NewValidationError("namespace path cannot be empty")
	}
	parts := strings.SplitN(trimmed, "/", 2)
	scope := Scope(parts[0])
	id := ""
	if len(parts) == 2 {
		id = parts[1]
	}
	return NewNamespace(scope, id)
}

// AssignNamespace implements the fixed precedence order:
// project_id -> team_id -> user_id -> global.
func AssignNamespace(content map[string]interface{}) Namespace {
	if v, ok := stringField(content, "project_id"); ok {
		ns, _ := NewNamespace(ScopeProject, v)
		return ns
	}
	if v, ok := stringField(content, "team_id"); ok {
		ns, _ := NewNamespace(ScopeTeam, v)
		return ns
	}
	if v, ok := stringField(content, "user_id"); ok {
		ns, _ := NewNamespace(ScopeUser, v)
		return ns
	}
	return Global()
}

func stringField(content map[string]interface{}, key string) (string, bool) {
	raw, ok := content[key]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

func (n Namespace) Scope() Scope { return n.scope }
func (n Namespace) ID() string   { return n.id }

func (n Namespace) String() string {
	if n.scope == ScopeGlobal {
		return "/global/"
	}
	return fmt.Sprintf("/%s/%s/", n.scope, n.id)
}

func (n Namespace) Equals(other Namespace) bool {
	return n.scope == other.scope && n.id == other.id
}
