// Package di provides the manually-wired dependency injection container.
//
// The google/wire graph in wire.go documents the intended provider set, but
// nothing in this tree generates wire_gen.go, so NewContainer below is the
// actual construction path: one linear initialize() broken into ordered
// steps, mirroring the legacy hand-wired container this module grew out of.
package di

import (
	"context"
	"fmt"
	"log"
	"time"

	"ctxmemory/application/commands"
	commandbus "ctxmemory/application/commands/bus"
	commandhandlers "ctxmemory/application/commands/handlers"
	"ctxmemory/application/dispatch"
	"ctxmemory/application/mediator"
	"ctxmemory/application/ports"
	"ctxmemory/application/queries"
	querybus "ctxmemory/application/queries/bus"
	queryhandlers "ctxmemory/application/queries/handlers"
	"ctxmemory/application/ttl"
	"ctxmemory/domain/services"
	"ctxmemory/infrastructure/backends/audit"
	"ctxmemory/infrastructure/backends/graph"
	"ctxmemory/infrastructure/backends/kv"
	"ctxmemory/infrastructure/backends/text"
	"ctxmemory/infrastructure/backends/vector"
	"ctxmemory/infrastructure/config"
	"ctxmemory/infrastructure/embedding"
	"ctxmemory/pkg/auth"
	pkgerrors "ctxmemory/pkg/errors"
	"ctxmemory/pkg/observability"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Container holds every constructed dependency plus the teardown functions
// needed to release them in reverse order on shutdown.
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	ErrorHandler *pkgerrors.ErrorHandler
	Metrics      *observability.Metrics
	Tracing      *observability.TracerProvider
	AuthKeys     auth.KeyTable

	Vector   ports.VectorStore
	Graph    ports.GraphStore
	KV       ports.KVStore
	Text     ports.TextIndex
	Embedder ports.Embedder
	EventLog ports.EventLog
	Audit    ports.AuditStore

	Dispatcher *dispatch.Dispatcher
	SyncWorker *ttl.SyncWorker

	CommandBus *commandbus.CommandBus
	QueryBus   *querybus.QueryBus
	Mediator   *mediator.Mediator

	shutdownFuncs []func(context.Context) error
}

// NewContainer loads configuration and wires every dependency in the order
// each one needs its predecessors: config, then cross-cutting concerns
// (logging/metrics/tracing/auth), then the five backend adapters, then the
// dispatcher and TTL machinery built on top of them, then the CQRS buses
// and their handlers, then the mediator's behavior pipeline around the
// buses.
func NewContainer(ctx context.Context) (*Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	c := &Container{Config: cfg}

	if err := c.initLogging(); err != nil {
		return nil, err
	}
	if err := c.initAuth(); err != nil {
		return nil, err
	}
	if err := c.initBackends(ctx); err != nil {
		return nil, err
	}
	c.initDomainLayer()
	c.initBusesAndMediator()

	log.Printf("container initialized (environment=%s)", cfg.Environment)
	return c, nil
}

func (c *Container) initLogging() error {
	var logger *zap.Logger
	var err error
	if c.Config.IsProduction() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	c.Logger = logger
	c.ErrorHandler = pkgerrors.NewErrorHandler(logger)

	if c.Config.EnableMetrics {
		c.Metrics = observability.NewMetrics(prometheus.DefaultRegisterer)
	}

	if c.Config.EnableTracing {
		tp, err := observability.InitTracing(observability.TracingConfig{
			ServiceName: "ctxmemory",
			Environment: c.Config.Environment,
		})
		if err != nil {
			// Tracing is an observability nicety, not a correctness
			// requirement: a collector outage must not block startup.
			c.Logger.Warn("tracing disabled: failed to initialize", zap.Error(err))
		} else {
			c.Tracing = tp
			c.addShutdown(tp.Shutdown)
		}
	}
	return nil
}

func (c *Container) initAuth() error {
	c.AuthKeys = auth.LoadFromEnviron()
	return nil
}

func (c *Container) initBackends(ctx context.Context) error {
	redisClient := redis.NewClient(&redis.Options{Addr: c.Config.Storage.KVAddr})
	c.KV = kv.NewRedisKV(redisClient)
	c.EventLog = kv.NewRedisEventLog(redisClient)
	c.addShutdown(func(context.Context) error { return redisClient.Close() })

	pgPool, err := pgxpool.New(ctx, c.Config.Storage.VectorDSN)
	if err != nil {
		return fmt.Errorf("connecting to pgvector: %w", err)
	}
	c.Vector = vector.NewPgVectorStore(pgPool)
	c.Audit = audit.NewPostgresAuditStore(pgPool)
	c.addShutdown(func(context.Context) error { pgPool.Close(); return nil })

	neo4jDriver, err := neo4j.NewDriverWithContext(
		c.Config.Storage.GraphURI,
		neo4j.BasicAuth(c.Config.Storage.GraphUser, c.Config.Storage.GraphPass, ""),
	)
	if err != nil {
		return fmt.Errorf("connecting to neo4j: %w", err)
	}
	c.Graph = graph.NewNeo4jGraph(neo4jDriver)
	c.addShutdown(neo4jDriver.Close)

	bleveText, err := text.NewBleveText()
	if err != nil {
		return fmt.Errorf("opening text index: %w", err)
	}
	c.Text = bleveText

	embedder, err := embedding.NewFastEmbedder(c.Config.Embedding.Model, c.Config.Embedding.Dimensions)
	if err != nil {
		// A dead embedding backend degrades retrieval to text/graph/kv
		// rather than blocking startup.
		c.Logger.Warn("embedder unavailable at startup, continuing without vector search", zap.Error(err))
	} else {
		c.Embedder = embedder
	}
	return nil
}

func (c *Container) initDomainLayer() {
	var tracer trace.Tracer
	if c.Tracing != nil {
		tracer = c.Tracing.Tracer()
	}
	c.Dispatcher = dispatch.NewDispatcher(c.Vector, c.Graph, c.Text, c.KV, c.Metrics, c.Logger, tracer)

	eventLogger := ttl.NewLogger(c.EventLog)
	_ = eventLogger // constructed but not passed to any handler; nothing appends to the event log through it

	c.SyncWorker = ttl.NewSyncWorker(c.EventLog, c.Graph, time.Hour, 30*24*time.Hour)
}

func (c *Container) initBusesAndMediator() {
	relDetector := services.NewRelationshipDetector(services.DefaultRelationshipDetectorConfig())
	factExpander := services.NewFactExpander(services.DefaultFactExpanderConfig())

	storeHandler := commandhandlers.NewStoreContextHandler(c.Vector, c.Graph, c.KV, c.Text, c.Embedder, relDetector, factExpander, c.Metrics, c.Logger)
	deleteHandler := commandhandlers.NewDeleteContextHandler(c.Vector, c.Graph, c.Text, c.Audit, c.Logger)
	forgetHandler := commandhandlers.NewForgetContextHandler(c.Graph, c.Audit, c.Logger)
	scratchpadHandler := commandhandlers.NewUpdateScratchpadHandler(c.KV)

	c.CommandBus = commandbus.NewCommandBus()
	c.CommandBus.Register(&commands.StoreContextCommand{}, storeHandler)
	c.CommandBus.Register(&commands.DeleteContextCommand{}, deleteHandler)
	c.CommandBus.Register(&commands.ForgetContextCommand{}, forgetHandler)
	c.CommandBus.Register(&commands.UpdateScratchpadCommand{}, scratchpadHandler)

	retrieveHandler := queryhandlers.NewRetrieveContextHandler(c.Dispatcher, c.Graph, c.Embedder)
	queryGraphHandler := queryhandlers.NewQueryGraphHandler(c.Graph)
	agentStateHandler := queryhandlers.NewGetAgentStateHandler(c.KV)
	toolsHandler := queryhandlers.NewToolsHandler(c.Vector, c.Graph, c.Text, c.KV)
	healthHandler := queryhandlers.NewHealthDetailedHandler(c.Vector, c.Graph, c.Text, c.KV, c.Embedder)

	c.QueryBus = querybus.NewQueryBus()
	c.QueryBus.Register(&queries.RetrieveContextQuery{}, retrieveHandler)
	c.QueryBus.Register(&queries.QueryGraphQuery{}, queryGraphHandler)
	c.QueryBus.Register(&queries.GetAgentStateQuery{}, agentStateHandler)
	c.QueryBus.Register(&queries.ToolsQuery{}, toolsHandler)
	c.QueryBus.Register(&queries.HealthDetailedQuery{}, healthHandler)

	c.Mediator = mediator.NewMediator(c.CommandBus, c.QueryBus, c.Logger)
	// Validation first (fail fast), then auth (a principal must be allowed
	// to even attempt the operation), then audit/logging/metrics/perf in
	// that order so the audit trail reflects what was actually attempted.
	c.Mediator.AddBehavior(mediator.NewValidationBehavior(c.Logger))
	c.Mediator.AddBehavior(mediator.NewAuthBehavior())
	c.Mediator.AddBehavior(mediator.NewAuditBehavior(c.Logger))
	c.Mediator.AddBehavior(mediator.NewLoggingBehavior(c.Logger))
	if c.Metrics != nil {
		c.Mediator.AddBehavior(mediator.NewMetricsBehavior(c.Metrics))
	}
	c.Mediator.AddBehavior(mediator.NewPerformanceBehavior(c.Logger, 500*time.Millisecond, 200*time.Millisecond))
}

func (c *Container) addShutdown(fn func(context.Context) error) {
	c.shutdownFuncs = append(c.shutdownFuncs, fn)
}

// Shutdown releases every backend connection in reverse acquisition order.
func (c *Container) Shutdown(ctx context.Context) error {
	var firstErr error
	for i := len(c.shutdownFuncs) - 1; i >= 0; i-- {
		if err := c.shutdownFuncs[i](ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
