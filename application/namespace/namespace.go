// Package namespace wraps the namespace parse/assign helpers with the
// distributed locking needed to serialize writes within one namespace.
package namespace

import (
	"context"
	"time"

	"ctxmemory/application/ports"
	"ctxmemory/domain/core/valueobjects"
	pkgerrors "ctxmemory/pkg/errors"
)

// Manager acquires/releases per-namespace locks backed by the KV store's
// TTL-only correctness guarantee: a held lock always expires, so a crashed
// holder can never wedge a namespace permanently.
type Manager struct {
	kv ports.KVStore
}

func NewManager(kv ports.KVStore) *Manager {
	return &Manager{kv: kv}
}

// Lock is a held namespace lock; callers must call Release exactly once.
type Lock struct {
	key   string
	token string
	kv    ports.KVStore
}

func (m *Manager) Acquire(ctx context.Context, ns valueobjects.Namespace, ttl time.Duration) (*Lock, error) {
	key := "lock:" + ns.String()
	token, ok, err := m.kv.AcquireLock(ctx, key, ttl)
	if err != nil {
		return nil, pkgerrors.NewBackendUnavailableError("lock backend: " + err.Error())
	}
	if !ok {
		return nil, pkgerrors.NewConflictError("namespace " + ns.String() + " is locked by a concurrent write")
	}
	return &Lock{key: key, token: token, kv: m.kv}, nil
}

func (l *Lock) Release(ctx context.Context) error {
	return l.kv.ReleaseLock(ctx, l.key, l.token)
}

// Parse delegates to valueobjects.ParseNamespace; kept here so callers don't
// need to import the value-object package just to validate a namespace
// string from a tool request.
func Parse(path string) (valueobjects.Namespace, error) {
	return valueobjects.ParseNamespace(path)
}

// Assign delegates to valueobjects.AssignNamespace.
func Assign(content map[string]interface{}) valueobjects.Namespace {
	return valueobjects.AssignNamespace(content)
}
