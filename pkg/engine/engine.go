package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"
)

const (
	spanListActions = "codefix.list_actions"
	spanProvider    = "codefix.provider"
)

// Engine dispatches requests to the providers of a registry.
type Engine struct {
	registry *Registry
	logger   *slog.Logger
	tracer   trace.Tracer
	metrics  *Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Nil keeps slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTracer sets the tracer used for request and provider spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) {
		if tracer != nil {
			e.tracer = tracer
		}
	}
}

// WithMetrics sets the provider instruments.
func WithMetrics(metrics *Metrics) Option {
	return func(e *Engine) {
		e.metrics = metrics
	}
}

// New creates an engine over the registry.
func New(registry *Registry, opts ...Option) *Engine {
	e := &Engine{
		registry: registry,
		logger:   slog.Default(),
		tracer:   noop.NewTracerProvider().Tracer("codefix"),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Registry returns the provider registry.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Result is the outcome of ListActions.
type Result struct {
	Actions []*Action
	Faults  []Fault
}

// Find returns the action with the equivalence key.
func (result Result) Find(key string) (*Action, bool) {
	for _, action := range result.Actions {
		if action.EquivalenceKey() == key {
			return action, true
		}
	}

	return nil, false
}

// FindByID returns the action with the per-request id.
func (result Result) FindByID(id string) (*Action, bool) {
	for _, action := range result.Actions {
		if action.ID() == id {
			return action, true
		}
	}

	return nil, false
}

type providerOutcome struct {
	actions []*Action
	fault   *Fault
}

// ListActions runs every enabled provider eligible for req concurrently and
// collects their actions. Actions are ordered by provider declaration order,
// then by registration order. A faulting provider never affects the others.
// If ctx is done before the providers finish, the result is empty and the
// context error is returned.
func (e *Engine) ListActions(ctx context.Context, doc Document, req Request, cfg Config) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("list actions: %w", err)
	}

	ctx, span := e.tracer.Start(ctx, spanListActions, trace.WithAttributes(
		attribute.Int("request.start", req.Span.Start),
		attribute.Int("request.length", req.Span.Length),
		attribute.String("request.diagnostic", req.DiagnosticID),
	))
	defer span.End()

	var eligible []Provider

	for _, provider := range e.registry.Providers() {
		if cfg.IsEnabled(provider.ID()) && provider.Trigger().Accepts(req) {
			eligible = append(eligible, provider)
		}
	}

	outcomes := make([]providerOutcome, len(eligible))

	var group errgroup.Group
	if cfg.Parallelism > 0 {
		group.SetLimit(cfg.Parallelism)
	}

	for idx, provider := range eligible {
		group.Go(func() error {
			outcomes[idx] = e.runProvider(ctx, doc, req, cfg, provider)

			return nil
		})
	}

	_ = group.Wait() //nolint:errcheck // Providers report through their outcome slot.

	if err := ctx.Err(); err != nil {
		span.SetStatus(codes.Error, err.Error())

		return Result{}, fmt.Errorf("list actions: %w", err)
	}

	var result Result

	for _, outcome := range outcomes {
		result.Actions = append(result.Actions, outcome.actions...)

		if outcome.fault != nil {
			result.Faults = append(result.Faults, *outcome.fault)
		}
	}

	span.SetAttributes(
		attribute.Int("actions", len(result.Actions)),
		attribute.Int("faults", len(result.Faults)),
	)

	return result, nil
}

func (e *Engine) runProvider(ctx context.Context, doc Document, req Request, cfg Config, provider Provider) (outcome providerOutcome) {
	id := provider.ID()

	ctx, span := e.tracer.Start(ctx, spanProvider, trace.WithAttributes(attribute.String(attrProvider, id)))
	defer span.End()

	if cfg.ProviderTimeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, cfg.ProviderTimeout)
		defer cancel()
	}

	logger := e.logger.With(slog.String("provider", id))
	pc := &Context{doc: doc, req: req, logger: logger, providerID: id}

	defer func() {
		recovered := recover()
		if recovered == nil {
			return
		}

		logger.ErrorContext(ctx, "provider panicked", "panic", recovered, "stack", string(debug.Stack()))
		span.SetStatus(codes.Error, "panic")
		e.metrics.recordFault(ctx, id)

		outcome = providerOutcome{fault: &Fault{ProviderID: id, Message: fmt.Sprint(recovered)}}
	}()

	err := provider.ComputeActions(ctx, pc)

	switch {
	case ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		logger.DebugContext(ctx, "provider canceled", "error", err)
		e.metrics.recordDecline(ctx, id, ReasonCanceled)

		return providerOutcome{}
	case err != nil && IsDecline(err):
		logger.DebugContext(ctx, "provider declined", "reason", err)
		e.metrics.recordDecline(ctx, id, declineReason(err))
	case err != nil:
		logger.WarnContext(ctx, "provider failed", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.metrics.recordFault(ctx, id)

		return providerOutcome{fault: &Fault{ProviderID: id, Message: err.Error(), Err: err}}
	}

	actions := pc.registered()
	e.metrics.recordActions(ctx, id, len(actions))
	span.SetAttributes(attribute.Int("actions", len(actions)))

	return providerOutcome{actions: actions}
}
