package services

import (
	"testing"

	"ctxmemory/domain/core/entities"
	"ctxmemory/domain/core/valueobjects"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T, text string) *entities.Context {
	t.Helper()
	ns := valueobjects.Global()
	ctx, err := entities.NewContext(entities.ContextTypeLog, map[string]interface{}{"text": text}, nil, "agent-1", "agent", &ns)
	require.NoError(t, err)
	return ctx
}

func TestFactExpanderExtractsName(t *testing.T) {
	expander := NewFactExpander(nil)
	ctx := newTestContext(t, "Hi there, my name is Grace Hopper and I like compilers.")

	pairs := expander.Expand(ctx, nil)
	require.NotEmpty(t, pairs)
	assert.Equal(t, "name", pairs[0].FactType)
	assert.Contains(t, pairs[0].Answer, "Grace Hopper")
}

func TestFactExpanderEmptyTextProducesNothing(t *testing.T) {
	expander := NewFactExpander(nil)
	ctx := newTestContext(t, "")
	assert.Empty(t, expander.Expand(ctx, nil))
}

func TestFactExpanderRespectsMaxPairsPerContext(t *testing.T) {
	expander := NewFactExpander(&FactExpanderConfig{MaxPairsPerContext: 1})
	ctx := newTestContext(t, "my name is Ada Lovelace. my email is ada@example.com. I prefer tea.")

	pairs := expander.Expand(ctx, nil)
	assert.Len(t, pairs, 1)
}

func TestFactExpanderSkipsPairsOverTokenBudget(t *testing.T) {
	expander := NewFactExpander(nil)
	ctx := newTestContext(t, "my name is Ada Lovelace.")

	pairs := expander.Expand(ctx, func(string) bool { return false })
	assert.Empty(t, pairs)
}

func TestFactExpanderIsIdempotent(t *testing.T) {
	expander := NewFactExpander(nil)
	ctx := newTestContext(t, "my name is Ada Lovelace.")

	first := expander.Expand(ctx, nil)
	second := expander.Expand(ctx, nil)
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].Question, second[0].Question)
	assert.Equal(t, first[0].Answer, second[0].Answer)
}
