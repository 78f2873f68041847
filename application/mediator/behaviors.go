package mediator

import (
	"context"
	"fmt"
	"time"

	commandbus "ctxmemory/application/commands/bus"
	querybus "ctxmemory/application/queries/bus"
	"ctxmemory/pkg/auth"
	pkgerrors "ctxmemory/pkg/errors"
	"ctxmemory/pkg/observability"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// structValidator runs the `validate` struct tags every command/query
// carries (required fields, oneof enums) ahead of each type's own
// Validate(), which covers checks a tag can't express.
var structValidator = validator.New()

// Behavior is a cross-cutting pipeline stage applied to every command/query.
type Behavior interface {
	PreProcess(ctx context.Context, command commandbus.Command) error
	PostProcess(ctx context.Context, command commandbus.Command, err error)
	PreProcessQuery(ctx context.Context, query querybus.Query) error
	PostProcessQuery(ctx context.Context, query querybus.Query, result interface{}, err error)
}

// Authorizable is implemented by tool-surface commands/queries that carry a
// fixed required capability. Objects that don't implement it (internal,
// unauthenticated operations) skip the AuthBehavior check entirely.
type Authorizable interface {
	RequiredCapability() auth.Capability
}

// Auditable is implemented by destructive commands (delete_context,
// forget_context) so AuditBehavior can log the operation without needing to
// know about every concrete command type.
type Auditable interface {
	AuditContextID() string
}

// noopBehavior lets concrete behaviors embed only the methods they care
// about.
type noopBehavior struct{}

func (noopBehavior) PreProcess(context.Context, commandbus.Command) error       { return nil }
func (noopBehavior) PostProcess(context.Context, commandbus.Command, error)     {}
func (noopBehavior) PreProcessQuery(context.Context, querybus.Query) error      { return nil }
func (noopBehavior) PostProcessQuery(context.Context, querybus.Query, interface{}, error) {}

// LoggingBehavior logs every command/query at entry and exit.
type LoggingBehavior struct {
	noopBehavior
	logger *zap.Logger
}

func NewLoggingBehavior(logger *zap.Logger) *LoggingBehavior { return &LoggingBehavior{logger: logger} }

func (b *LoggingBehavior) PreProcess(ctx context.Context, command commandbus.Command) error {
	b.logger.Info("dispatching command", zap.String("type", fmt.Sprintf("%T", command)))
	return nil
}

func (b *LoggingBehavior) PostProcess(ctx context.Context, command commandbus.Command, err error) {
	if err != nil {
		b.logger.Error("command failed", zap.String("type", fmt.Sprintf("%T", command)), zap.Error(err))
		return
	}
	b.logger.Info("command succeeded", zap.String("type", fmt.Sprintf("%T", command)))
}

func (b *LoggingBehavior) PreProcessQuery(ctx context.Context, query querybus.Query) error {
	b.logger.Debug("dispatching query", zap.String("type", fmt.Sprintf("%T", query)))
	return nil
}

func (b *LoggingBehavior) PostProcessQuery(ctx context.Context, query querybus.Query, result interface{}, err error) {
	if err != nil {
		b.logger.Error("query failed", zap.String("type", fmt.Sprintf("%T", query)), zap.Error(err))
	}
}

// ValidationBehavior calls Validate() before anything else runs.
type ValidationBehavior struct {
	noopBehavior
	logger *zap.Logger
}

func NewValidationBehavior(logger *zap.Logger) *ValidationBehavior {
	return &ValidationBehavior{logger: logger}
}

func (b *ValidationBehavior) PreProcess(ctx context.Context, command commandbus.Command) error {
	if err := structValidator.Struct(command); err != nil {
		return pkgerrors.NewValidationError("command validation failed: " + err.Error())
	}
	if err := command.Validate(); err != nil {
		return pkgerrors.NewValidationError("command validation failed: " + err.Error())
	}
	return nil
}

func (b *ValidationBehavior) PreProcessQuery(ctx context.Context, query querybus.Query) error {
	if err := structValidator.Struct(query); err != nil {
		return pkgerrors.NewValidationError("query validation failed: " + err.Error())
	}
	if err := query.Validate(); err != nil {
		return pkgerrors.NewValidationError("query validation failed: " + err.Error())
	}
	return nil
}

// AuthBehavior enforces the role -> capability matrix ahead of every
// authorizable command/query. It runs after validation (no point checking
// auth on malformed input) and before logging/metrics.
type AuthBehavior struct {
	noopBehavior
}

func NewAuthBehavior() *AuthBehavior { return &AuthBehavior{} }

func (b *AuthBehavior) PreProcess(ctx context.Context, command commandbus.Command) error {
	authz, ok := command.(Authorizable)
	if !ok {
		return nil
	}
	principal, found := auth.FromContext(ctx)
	if !found {
		return pkgerrors.NewAuthRequiredError("no authenticated principal in context")
	}
	return auth.RequireCapability(principal, authz.RequiredCapability())
}

func (b *AuthBehavior) PreProcessQuery(ctx context.Context, query querybus.Query) error {
	authz, ok := query.(Authorizable)
	if !ok {
		return nil
	}
	principal, found := auth.FromContext(ctx)
	if !found {
		return pkgerrors.NewAuthRequiredError("no authenticated principal in context")
	}
	return auth.RequireCapability(principal, authz.RequiredCapability())
}

// AuditBehavior logs destructive operations' outcome for operator visibility.
// The authoritative append-only AuditRecord write happens inside the
// handler itself, before the destructive side effect; this behavior is a
// secondary, non-authoritative log trail.
type AuditBehavior struct {
	noopBehavior
	logger *zap.Logger
}

func NewAuditBehavior(logger *zap.Logger) *AuditBehavior { return &AuditBehavior{logger: logger} }

func (b *AuditBehavior) PostProcess(ctx context.Context, command commandbus.Command, err error) {
	auditable, ok := command.(Auditable)
	if !ok {
		return
	}
	principal, _ := auth.FromContext(ctx)
	outcome := "ok"
	if err != nil {
		outcome = "failed"
	}
	b.logger.Info("audit-worthy command processed",
		zap.String("context_id", auditable.AuditContextID()),
		zap.String("actor", principal.ID),
		zap.String("outcome", outcome))
}

// MetricsBehavior records duration/outcome of every command/query.
type MetricsBehavior struct {
	noopBehavior
	metrics   *observability.Metrics
	startTime map[string]time.Time
}

func NewMetricsBehavior(metrics *observability.Metrics) *MetricsBehavior {
	return &MetricsBehavior{metrics: metrics, startTime: make(map[string]time.Time)}
}

func (b *MetricsBehavior) PreProcess(ctx context.Context, command commandbus.Command) error {
	b.startTime[fmt.Sprintf("%p", command)] = time.Now()
	return nil
}

func (b *MetricsBehavior) PostProcess(ctx context.Context, command commandbus.Command, err error) {
	key := fmt.Sprintf("%p", command)
	if start, ok := b.startTime[key]; ok {
		delete(b.startTime, key)
		if b.metrics != nil {
			b.metrics.RecordCommandExecution(ctx, fmt.Sprintf("%T", command), time.Since(start), err)
		}
	}
}

func (b *MetricsBehavior) PreProcessQuery(ctx context.Context, query querybus.Query) error {
	b.startTime[fmt.Sprintf("%p", query)] = time.Now()
	return nil
}

func (b *MetricsBehavior) PostProcessQuery(ctx context.Context, query querybus.Query, result interface{}, err error) {
	key := fmt.Sprintf("%p", query)
	if start, ok := b.startTime[key]; ok {
		delete(b.startTime, key)
		if b.metrics != nil {
			b.metrics.RecordLatency(ctx, fmt.Sprintf("query.%T", query), time.Since(start))
			if err != nil {
				b.metrics.RecordError(ctx, "query_error", fmt.Sprintf("%T", query))
			}
		}
	}
}

// PerformanceBehavior logs slow commands/queries.
type PerformanceBehavior struct {
	noopBehavior
	logger           *zap.Logger
	commandThreshold time.Duration
	queryThreshold   time.Duration
	startTime        map[string]time.Time
}

func NewPerformanceBehavior(logger *zap.Logger, commandThreshold, queryThreshold time.Duration) *PerformanceBehavior {
	return &PerformanceBehavior{
		logger:           logger,
		commandThreshold: commandThreshold,
		queryThreshold:   queryThreshold,
		startTime:        make(map[string]time.Time),
	}
}

func (b *PerformanceBehavior) PreProcess(ctx context.Context, command commandbus.Command) error {
	b.startTime[fmt.Sprintf("%p", command)] = time.Now()
	return nil
}

func (b *PerformanceBehavior) PostProcess(ctx context.Context, command commandbus.Command, err error) {
	key := fmt.Sprintf("%p", command)
	if start, ok := b.startTime[key]; ok {
		delete(b.startTime, key)
		if d := time.Since(start); d > b.commandThreshold {
			b.logger.Warn("slow command", zap.String("type", fmt.Sprintf("%T", command)), zap.Duration("duration", d))
		}
	}
}

func (b *PerformanceBehavior) PreProcessQuery(ctx context.Context, query querybus.Query) error {
	b.startTime[fmt.Sprintf("%p", query)] = time.Now()
	return nil
}

func (b *PerformanceBehavior) PostProcessQuery(ctx context.Context, query querybus.Query, result interface{}, err error) {
	key := fmt.Sprintf("%p", query)
	if start, ok := b.startTime[key]; ok {
		delete(b.startTime, key)
		if d := time.Since(start); d > b.queryThreshold {
			b.logger.Warn("slow query", zap.String("type", fmt.Sprintf("%T", query)), zap.Duration("duration", d))
		}
	}
}
