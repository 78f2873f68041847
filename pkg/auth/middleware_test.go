package auth

import (
	"testing"

	apperrors "ctxmemory/pkg/errors"

	"github.com/stretchr/testify/assert"
)

func TestRequireCapabilityDeniesAgentHardDelete(t *testing.T) {
	agent := Principal{ID: "bot-1", Role: RoleAdmin, IsAgent: true}
	err := RequireCapability(agent, CapDeleteContext)
	require_AppError(t, err, apperrors.KindAuthForbidden)
}

func TestRequireCapabilityAllowsHumanHardDelete(t *testing.T) {
	human := Principal{ID: "alice", Role: RoleAdmin, IsAgent: false}
	assert.NoError(t, RequireCapability(human, CapDeleteContext))
}

func TestRequireCapabilityDeniesMissingRoleCapability(t *testing.T) {
	reader := Principal{ID: "bob", Role: RoleReader}
	require_AppError(t, RequireCapability(reader, CapStoreContext), apperrors.KindAuthForbidden)
}

func require_AppError(t *testing.T, err error, kind apperrors.Kind) {
	t.Helper()
	appErr, ok := err.(*apperrors.AppError)
	if !ok {
		t.Fatalf("expected *apperrors.AppError, got %T: %v", err, err)
	}
	if appErr.Kind != kind {
		t.Fatalf("expected kind %s, got %s", kind, appErr.Kind)
	}
}
