// Package bus provides the command side of the CQRS bus the mediator wraps.
package bus

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	pkgerrors "ctxmemory/pkg/errors"
)

// Command is implemented by every write-side tool input object. Validate is
// called by the mediator's ValidationBehavior before a handler ever runs.
type Command interface {
	Validate() error
}

// Handler executes exactly one concrete Command type.
type Handler interface {
	Handle(ctx context.Context, command Command) error
}

// HandlerFunc adapts a plain function to Handler, mirroring the manual
// registration adapter idiom used for query handlers.
type HandlerFunc func(ctx context.Context, command Command) error

func (f HandlerFunc) Handle(ctx context.Context, command Command) error { return f(ctx, command) }

// CommandBus routes a Command to the single handler registered for its
// concrete type.
type CommandBus struct {
	mu       sync.RWMutex
	handlers map[reflect.Type]Handler
}

func NewCommandBus() *CommandBus {
	return &CommandBus{handlers: make(map[reflect.Type]Handler)}
}

// Register associates a command type with its handler. Re-registering the
// same type replaces the previous handler.
func (b *CommandBus) Register(command Command, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[reflect.TypeOf(command)] = handler
}

func (b *CommandBus) Send(ctx context.Context, command Command) error {
	b.mu.RLock()
	handler, ok := b.handlers[reflect.TypeOf(command)]
	b.mu.RUnlock()
	if !ok {
		return pkgerrors.NewInternalError(fmt.Sprintf("no handler registered for command %T", command))
	}
	return handler.Handle(ctx, command)
}
