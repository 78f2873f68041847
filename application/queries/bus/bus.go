// Package bus provides the query side of the CQRS bus the mediator wraps.
package bus

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	pkgerrors "ctxmemory/pkg/errors"
)

// Query is implemented by every read-side tool input object.
type Query interface {
	Validate() error
}

// Handler executes exactly one concrete Query type and returns its result.
type Handler interface {
	Handle(ctx context.Context, query Query) (interface{}, error)
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context, query Query) (interface{}, error)

func (f HandlerFunc) Handle(ctx context.Context, query Query) (interface{}, error) {
	return f(ctx, query)
}

// QueryBus routes a Query to the single handler registered for its concrete
// type.
type QueryBus struct {
	mu       sync.RWMutex
	handlers map[reflect.Type]Handler
}

func NewQueryBus() *QueryBus {
	return &QueryBus{handlers: make(map[reflect.Type]Handler)}
}

func (b *QueryBus) Register(query Query, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[reflect.TypeOf(query)] = handler
}

func (b *QueryBus) Ask(ctx context.Context, query Query) (interface{}, error) {
	b.mu.RLock()
	handler, ok := b.handlers[reflect.TypeOf(query)]
	b.mu.RUnlock()
	if !ok {
		return nil, pkgerrors.NewInternalError(fmt.Sprintf("no handler registered for query %T", query))
	}
	return handler.Handle(ctx, query)
}
