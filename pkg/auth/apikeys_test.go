package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvironParsesWellFormedKeys(t *testing.T) {
	t.Setenv("API_KEY_ADMIN", "sk-admin-1:alice:admin:false")
	t.Setenv("API_KEY_AGENT", "sk-agent-1:bot-7:writer:true")
	t.Setenv("UNRELATED_VAR", "noise")

	table := LoadFromEnviron()

	p, err := table.Lookup("sk-admin-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", p.ID)
	assert.Equal(t, RoleAdmin, p.Role)
	assert.False(t, p.IsAgent)

	p2, err := table.Lookup("sk-agent-1")
	require.NoError(t, err)
	assert.Equal(t, RoleWriter, p2.Role)
	assert.True(t, p2.IsAgent)
}

func TestLoadFromEnvironSkipsMalformedEntries(t *testing.T) {
	t.Setenv("API_KEY_BAD_ROLE", "sk-x:bob:superuser:false")
	t.Setenv("API_KEY_MISSING_PARTS", "sk-y:carol")

	table := LoadFromEnviron()

	_, err := table.Lookup("sk-x")
	assert.ErrorIs(t, err, ErrUnknownKey)
	_, err = table.Lookup("sk-y")
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestLookupMissingKey(t *testing.T) {
	table := KeyTable{}
	_, err := table.Lookup("")
	assert.ErrorIs(t, err, ErrMissingKey)

	_, err = table.Lookup("nope")
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestCapabilityMatrix(t *testing.T) {
	admin := Principal{Role: RoleAdmin}
	guest := Principal{Role: RoleGuest}

	assert.True(t, admin.Can(CapDeleteContext))
	assert.False(t, guest.Can(CapDeleteContext))
	assert.True(t, guest.Can(CapTools))
}
