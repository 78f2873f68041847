// Package mediator implements the CQRS pipeline every tool dispatches
// through: Validation -> Auth -> Audit -> Logging -> Metrics -> Performance
// (the order infrastructure/di adds them), wrapping the command/query buses.
package mediator

import (
	"context"
	"fmt"
	"time"

	commandbus "ctxmemory/application/commands/bus"
	querybus "ctxmemory/application/queries/bus"
	"go.uber.org/zap"
)

// IMediator is the single entry point the tool-surface HTTP handlers
// dispatch through.
type IMediator interface {
	Send(ctx context.Context, command commandbus.Command) error
	Query(ctx context.Context, query querybus.Query) (interface{}, error)
}

type Mediator struct {
	commandBus *commandbus.CommandBus
	queryBus   *querybus.QueryBus
	logger     *zap.Logger
	behaviors  []Behavior
}

func NewMediator(commandBus *commandbus.CommandBus, queryBus *querybus.QueryBus, logger *zap.Logger) *Mediator {
	return &Mediator{
		commandBus: commandBus,
		queryBus:   queryBus,
		logger:     logger,
		behaviors:  []Behavior{},
	}
}

func (m *Mediator) Send(ctx context.Context, command commandbus.Command) error {
	startTime := time.Now()

	for _, behavior := range m.behaviors {
		if err := behavior.PreProcess(ctx, command); err != nil {
			m.logger.Warn("command rejected in pipeline",
				zap.String("type", fmt.Sprintf("%T", command)),
				zap.Error(err))
			return err
		}
	}

	err := m.commandBus.Send(ctx, command)

	for _, behavior := range m.behaviors {
		behavior.PostProcess(ctx, command, err)
	}

	if err != nil {
		m.logger.Error("command execution failed",
			zap.String("type", fmt.Sprintf("%T", command)),
			zap.Error(err),
			zap.Duration("duration", time.Since(startTime)))
		return err
	}

	m.logger.Debug("command executed",
		zap.String("type", fmt.Sprintf("%T", command)),
		zap.Duration("duration", time.Since(startTime)))
	return nil
}

func (m *Mediator) Query(ctx context.Context, query querybus.Query) (interface{}, error) {
	startTime := time.Now()

	for _, behavior := range m.behaviors {
		if err := behavior.PreProcessQuery(ctx, query); err != nil {
			m.logger.Warn("query rejected in pipeline",
				zap.String("type", fmt.Sprintf("%T", query)),
				zap.Error(err))
			return nil, err
		}
	}

	result, err := m.queryBus.Ask(ctx, query)

	for _, behavior := range m.behaviors {
		behavior.PostProcessQuery(ctx, query, result, err)
	}

	if err != nil {
		m.logger.Error("query execution failed",
			zap.String("type", fmt.Sprintf("%T", query)),
			zap.Error(err),
			zap.Duration("duration", time.Since(startTime)))
		return nil, err
	}

	m.logger.Debug("query executed",
		zap.String("type", fmt.Sprintf("%T", query)),
		zap.Duration("duration", time.Since(startTime)))
	return result, nil
}

func (m *Mediator) AddBehavior(behavior Behavior) {
	m.behaviors = append(m.behaviors, behavior)
}

func (m *Mediator) GetBehaviors() []Behavior { return m.behaviors }
