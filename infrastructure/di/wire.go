//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"
)

// SuperSet lists provider names for the graph Container is wired from. None
// of these Provide* functions is defined in this package, so this file does
// not build under the wireinject tag and no wire_gen.go is generated from
// it; NewContainer in container.go is the real, hand-wired construction path.
var SuperSet = wire.NewSet(
	ProvideConfig,
	ProvideLogger,
	ProvideErrorHandler,
	ProvideMetrics,
	ProvideTracing,
	ProvideAuthKeys,
	ProvideVectorStore,
	ProvideGraphStore,
	ProvideKVStore,
	ProvideTextIndex,
	ProvideEmbedder,
	ProvideEventLog,
	ProvideAuditStore,
	ProvideDispatcher,
	ProvideSyncWorker,
	ProvideCommandBus,
	ProvideQueryBus,
	ProvideMediator,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer is the wire entrypoint; `wire` cannot generate a body
// for it until the providers listed in SuperSet exist.
func InitializeContainer(ctx context.Context) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil
}
