package namespace

import (
	"context"
	"testing"
	"time"

	"ctxmemory/domain/core/valueobjects"
	"ctxmemory/infrastructure/backends/kv"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewManager(kv.NewRedisKV(client))
}

func TestManagerAcquireSerializesWrites(t *testing.T) {
	mgr := newTestManager(t)
	ctx := context.Background()
	ns, err := valueobjects.NewNamespace(valueobjects.ScopeProject, "42")
	require.NoError(t, err)

	lock, err := mgr.Acquire(ctx, ns, 10*time.Second)
	require.NoError(t, err)

	_, err = mgr.Acquire(ctx, ns, 10*time.Second)
	assert.Error(t, err, "a second acquire on the same namespace must fail while the first lock is held")

	require.NoError(t, lock.Release(ctx))

	_, err = mgr.Acquire(ctx, ns, 10*time.Second)
	assert.NoError(t, err, "the namespace must be lockable again after release")
}

func TestParseAndAssignDelegateToValueObjects(t *testing.T) {
	ns, err := Parse("/project/42/")
	require.NoError(t, err)
	assert.Equal(t, "42", ns.ID())

	assigned := Assign(map[string]interface{}{"project_id": "7"})
	assert.Equal(t, valueobjects.ScopeProject, assigned.Scope())
}
