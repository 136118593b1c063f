// Package service ties document loading, binding and the provider engine
// together for the CLI, LSP and MCP surfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/codefix/internal/config"
	"github.com/Sumatoshi-tech/codefix/internal/document"
	"github.com/Sumatoshi-tech/codefix/pkg/engine"
	"github.com/Sumatoshi-tech/codefix/pkg/levenshtein"
	"github.com/Sumatoshi-tech/codefix/pkg/refactorings"
	"github.com/Sumatoshi-tech/codefix/pkg/rewrite"
	"github.com/Sumatoshi-tech/codefix/pkg/semantic/binder"
	"github.com/Sumatoshi-tech/codefix/pkg/syntax"
	"github.com/Sumatoshi-tech/codefix/pkg/syntax/csharp"
)

// ErrActionNotFound is returned when no listed action has the requested key.
var ErrActionNotFound = errors.New("action not found")

// Deps holds injectable telemetry. Zero values disable what they cover.
type Deps struct {
	Logger *slog.Logger
	Tracer trace.Tracer
	Meter  metric.Meter
}

// Service answers list and apply requests over parsed documents. It is safe
// for concurrent use.
type Service struct {
	engine    *engine.Engine
	env       *binder.Environment
	loader    *document.Loader
	engineCfg engine.Config
	writeOpts document.WriteOptions
	logger    *slog.Logger
}

// New builds a service from validated configuration.
func New(cfg *config.Config, deps Deps) (*Service, error) {
	parser, err := csharp.NewParser()
	if err != nil {
		return nil, fmt.Errorf("create parser: %w", err)
	}

	catalog, err := binder.LoadCatalog(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	registry, err := refactorings.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("register providers: %w", err)
	}

	maxSize, err := cfg.MaxFileSizeBytes()
	if err != nil {
		return nil, err
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	opts := []engine.Option{engine.WithLogger(logger)}

	if deps.Tracer != nil {
		opts = append(opts, engine.WithTracer(deps.Tracer))
	}

	if deps.Meter != nil {
		metrics, metricsErr := engine.NewMetrics(deps.Meter)
		if metricsErr != nil {
			return nil, metricsErr
		}

		opts = append(opts, engine.WithMetrics(metrics))
	}

	return &Service{
		engine:    engine.New(registry, opts...),
		env:       binder.NewEnvironment(catalog),
		loader:    document.NewLoader(parser, maxSize),
		engineCfg: cfg.EngineConfig(),
		writeOpts: document.WriteOptions{
			Banner:              cfg.Documents.Banner,
			NormalizeWhitespace: cfg.Documents.NormalizeWhitespace,
		},
		logger: logger,
	}, nil
}

// Load reads and parses a file.
func (s *Service) Load(ctx context.Context, path string) (*document.Document, error) {
	return s.loader.Load(ctx, path) //nolint:wrapcheck // loader errors carry the path.
}

// Parse parses in-memory text attributed to path.
func (s *Service) Parse(ctx context.Context, path string, text []byte) (*document.Document, error) {
	return s.loader.FromText(ctx, path, text) //nolint:wrapcheck // loader errors carry the path.
}

// Providers returns the registered providers in declaration order.
func (s *Service) Providers() []engine.Provider {
	return s.engine.Registry().Providers()
}

// ListActions binds the document and runs the providers for req.
func (s *Service) ListActions(ctx context.Context, doc *document.Document, req engine.Request) (engine.Result, error) {
	input := engine.Document{Tree: doc.Tree, Oracle: s.env.Bind(doc.Tree)}

	result, err := s.engine.ListActions(ctx, input, req, s.engineCfg)
	if err != nil {
		return engine.Result{}, fmt.Errorf("%s: %w", doc.Path, err)
	}

	for _, fault := range result.Faults {
		s.logger.WarnContext(ctx, "provider fault", "path", doc.Path, "provider", fault.ProviderID, "error", fault.Message)
	}

	return result, nil
}

// Applied is a formatted rewrite ready to show or write.
type Applied struct {
	Action  *engine.Action
	Result  *rewrite.Result
	Before  string
	After   string
	Edit    rewrite.Edit
	Renames []syntax.Span
}

// Apply computes the action and formats the replacement.
func (s *Service) Apply(ctx context.Context, action *engine.Action) (*Applied, error) {
	result, err := action.Apply(ctx)
	if err != nil {
		return nil, fmt.Errorf("apply %s: %w", action.EquivalenceKey(), err)
	}

	formatted, err := result.Formatted()
	if err != nil {
		return nil, fmt.Errorf("format %s: %w", action.EquivalenceKey(), err)
	}

	return &Applied{
		Action:  action,
		Result:  formatted,
		Before:  formatted.Original.Text(),
		After:   formatted.Tree.Text(),
		Edit:    formatted.Edit(),
		Renames: formatted.RenameSpans(),
	}, nil
}

// ApplyKey lists the actions for req and applies the one with the
// equivalence key.
func (s *Service) ApplyKey(ctx context.Context, doc *document.Document, req engine.Request, key string) (*Applied, error) {
	result, err := s.ListActions(ctx, doc, req)
	if err != nil {
		return nil, err
	}

	action, ok := result.Find(key)
	if !ok {
		return nil, notFound(key, req, result)
	}

	return s.Apply(ctx, action)
}

func notFound(key string, req engine.Request, result engine.Result) error {
	keys := make([]string, 0, len(result.Actions))
	for _, action := range result.Actions {
		keys = append(keys, action.EquivalenceKey())
	}

	if suggestion, ok := levenshtein.Closest(key, keys); ok {
		return fmt.Errorf("%w: %q at %s (did you mean %q?)", ErrActionNotFound, key, req.Span, suggestion)
	}

	return fmt.Errorf("%w: %q at %s", ErrActionNotFound, key, req.Span)
}

// Write stores the applied tree at path when it changed.
func (s *Service) Write(path string, applied *Applied) (document.WriteStatus, error) {
	status, err := document.WriteIfChanged(path, applied.Result.Tree, s.writeOpts)
	if err != nil {
		return status, err //nolint:wrapcheck // already carries the path.
	}

	s.logger.Debug("document written", "path", path, "status", status.String())

	return status, nil
}
