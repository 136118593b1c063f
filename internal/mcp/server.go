// Package mcp implements a Model Context Protocol server exposing codefix
// actions as MCP tools over stdio transport.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/codefix/internal/observability"
)

const serverName = "codefix"

// ServerDeps holds injectable dependencies for the MCP server.
// Zero-value fields use production defaults.
type ServerDeps struct {
	// Logger is an optional structured logger. Nil uses slog default.
	Logger *slog.Logger

	// Metrics is an optional RED metrics recorder. Nil disables per-tool metrics.
	Metrics *observability.REDMetrics

	// Tracer is an optional OTel tracer for per-tool-call spans. Nil disables tracing.
	Tracer trace.Tracer

	// Version is reported as the implementation version.
	Version string
}

// Server wraps the MCP SDK server with the codefix tools. The tool set is
// fixed at construction.
type Server struct {
	inner   *mcpsdk.Server
	tools   *toolSet
	names   []string
	metrics *observability.REDMetrics
	tracer  trace.Tracer
}

// NewServer creates an MCP server answering from backend.
func NewServer(backend Backend, deps ServerDeps) *Server {
	opts := &mcpsdk.ServerOptions{}
	if deps.Logger != nil {
		opts.Logger = deps.Logger
	}

	version := deps.Version
	if version == "" {
		version = "dev"
	}

	inner := mcpsdk.NewServer(&mcpsdk.Implementation{Name: serverName, Version: version}, opts)

	srv := &Server{
		inner:   inner,
		tools:   &toolSet{backend: backend},
		metrics: deps.Metrics,
		tracer:  deps.Tracer,
	}

	addTool(srv, ToolNameListActions, listActionsDescription, srv.tools.handleListActions)
	addTool(srv, ToolNameApplyAction, applyActionDescription, srv.tools.handleApplyAction)

	return srv
}

// ListToolNames returns the sorted names of all registered tools.
func (s *Server) ListToolNames() []string {
	names := slices.Clone(s.names)
	slices.Sort(names)

	return names
}

// Run serves on stdio until the context is canceled or the connection closes.
func (s *Server) Run(ctx context.Context) error {
	return s.RunWithTransport(ctx, &mcpsdk.StdioTransport{})
}

// RunWithTransport serves on transport until the context is canceled or the
// connection closes.
func (s *Server) RunWithTransport(ctx context.Context, transport mcpsdk.Transport) error {
	err := s.inner.Run(ctx, transport)
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

// addTool registers handler wrapped in tracing and metrics.
func addTool[Input any](srv *Server, name, description string, handler toolHandler[Input]) {
	mcpsdk.AddTool(srv.inner, &mcpsdk.Tool{Name: name, Description: description},
		withMetrics(srv.metrics, name, withTracing(srv.tracer, name, handler)))

	srv.names = append(srv.names, name)
}

const mcpSpanPrefix = "mcp."

// errToolResult marks a tool call answered with an error result.
var errToolResult = errors.New("tool returned an error result")

// traceIDMetaKey is the key of the trace_id line appended to sampled results.
const traceIDMetaKey = "trace_id"

type toolHandler[Input any] = mcpsdk.ToolHandlerFor[Input, ToolOutput]

// withTracing opens a span per invocation and reports its trace_id in the
// result when sampled.
func withTracing[Input any](tracer trace.Tracer, toolName string, handler toolHandler[Input]) toolHandler[Input] {
	if tracer == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		ctx, span := tracer.Start(ctx, mcpSpanPrefix+toolName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("mcp.tool", toolName)),
		)
		defer span.End()

		result, output, err := handler(ctx, req, input)

		if sc := span.SpanContext(); sc.IsSampled() && result != nil {
			result.Content = append(result.Content,
				&mcpsdk.TextContent{Text: fmt.Sprintf("%s=%s", traceIDMetaKey, sc.TraceID().String())})
		}

		return result, output, err
	}
}

// withMetrics records RED metrics per invocation. Error results count as
// errors.
func withMetrics[Input any](metrics *observability.REDMetrics, toolName string, handler toolHandler[Input]) toolHandler[Input] {
	if metrics == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		done := metrics.Observe(ctx, mcpSpanPrefix+toolName)

		result, output, err := handler(ctx, req, input)

		if err == nil && result != nil && result.IsError {
			done(errToolResult)
		} else {
			done(err)
		}

		return result, output, err
	}
}

const (
	listActionsDescription = "List the refactorings and code fixes available at a position in a C# file. " +
		"Accepts a file path or inline code, a byte offset and optional length and diagnostic id."

	applyActionDescription = "Apply one action, chosen by its key from codefix_list_actions, to a C# file. " +
		"Returns the rewritten text or a line diff, and can write the file."
)
