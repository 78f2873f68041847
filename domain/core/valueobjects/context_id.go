package valueobjects

import (
	"strings"

	"github.com/google/uuid"
	apperrors "ctxmemory/pkg/errors"
)

// ContextID is the opaque, server-assigned, UUID-shaped identifier of a
// Context. The zero value is invalid; always construct via NewContextID or
// NewContextIDFromString.
type ContextID struct {
	value string
}

// NewContextID assigns a fresh identifier.
func NewContextID() ContextID {
	return ContextID{value: uuid.New().String()}
}

// NewContextIDFromString parses an existing identifier, validating it is a
// well-formed UUID.
func NewContextIDFromString(s string) (ContextID, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return ContextID{}, apperrors.NewValidationError("context ID cannot be empty")
	}
	if _, err := uuid.Parse(trimmed); err != nil {
		return ContextID{}, apperrors.NewValidationError("context ID must be a valid UUID")
	}
	return ContextID{value: s}, nil
}

func (id ContextID) String() string { return id.value }

func (id ContextID) IsZero() bool { return id.value == "" }

func (id ContextID) Equals(other ContextID) bool { return id.value == other.value }
