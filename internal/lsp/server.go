// Package lsp serves codefix actions to editors over the Language Server
// Protocol. Refactorings are offered for the selected range and code fixes
// for each diagnostic carrying a code; edits are computed on resolve.
package lsp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/codefix/internal/document"
	"github.com/Sumatoshi-tech/codefix/internal/observability"
	"github.com/Sumatoshi-tech/codefix/internal/service"
	"github.com/Sumatoshi-tech/codefix/pkg/engine"
)

const (
	serverName        = "codefix"
	actionCacheSize   = 1024
	snapshotCacheSize = 64
)

// Sentinel errors for resolve.
var (
	ErrUnknownAction = errors.New("unknown code action")
	ErrStaleAction   = errors.New("document changed since the action was listed")
	ErrNotOpen       = errors.New("document is not open")
)

// Backend lists and applies actions. *service.Service implements it.
type Backend interface {
	Parse(ctx context.Context, path string, text []byte) (*document.Document, error)
	ListActions(ctx context.Context, doc *document.Document, req engine.Request) (engine.Result, error)
	Apply(ctx context.Context, action *engine.Action) (*service.Applied, error)
}

// Options configures a Server. Zero telemetry fields disable what they cover.
type Options struct {
	Version string
	// CacheSize bounds the parsed snapshot cache. Zero uses a default of 64.
	CacheSize int
	Logger    *slog.Logger
	Tracer    trace.Tracer
	Meter     metric.Meter
	RED       *observability.REDMetrics
}

// actionData travels through the client in CodeAction.Data.
type actionData struct {
	ID  string `json:"id"`
	URI string `json:"uri"`
}

// Server implements the codefix language server.
type Server struct {
	backend   Backend
	store     *DocumentStore
	snapshots *SnapshotCache
	actions   *ActionCache
	handler   protocol.Handler
	opts      Options
	baseCtx   context.Context //nolint:containedctx // glsp handlers carry no context.
}

// NewServer creates a server answering from backend.
func NewServer(backend Backend, opts Options) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Tracer == nil {
		opts.Tracer = nooptrace.NewTracerProvider().Tracer(serverName)
	}

	if opts.CacheSize <= 0 {
		opts.CacheSize = snapshotCacheSize
	}

	snapshots, err := NewSnapshotCache(opts.CacheSize, backend.Parse)
	if err != nil {
		return nil, err
	}

	actions, err := NewActionCache(actionCacheSize)
	if err != nil {
		return nil, err
	}

	if opts.Meter != nil {
		err = observability.RegisterCacheMetrics(opts.Meter, map[string]observability.CacheStats{
			"snapshot": snapshots,
			"action":   actions,
		})
		if err != nil {
			return nil, err //nolint:wrapcheck // already names the instrument.
		}
	}

	srv := &Server{
		backend:   backend,
		store:     NewDocumentStore(),
		snapshots: snapshots,
		actions:   actions,
		opts:      opts,
		baseCtx:   context.Background(),
	}

	srv.handler = protocol.Handler{
		Initialize:             srv.initialize,
		Initialized:            srv.initialized,
		Shutdown:               srv.shutdown,
		SetTrace:               srv.setTrace,
		TextDocumentDidOpen:    srv.didOpen,
		TextDocumentDidChange:  srv.didChange,
		TextDocumentDidClose:   srv.didClose,
		TextDocumentCodeAction: srv.codeAction,
		CodeActionResolve:      srv.resolveCodeAction,
	}

	return srv, nil
}

// Run serves the protocol on stdio until the client disconnects.
func (srv *Server) Run(ctx context.Context) error {
	srv.baseCtx = ctx

	lspServer := server.NewServer(&srv.handler, serverName, false)

	if err := lspServer.RunStdio(); err != nil {
		return fmt.Errorf("lsp server: %w", err)
	}

	return nil
}

// Store exposes the open documents.
func (srv *Server) Store() *DocumentStore {
	return srv.store
}

func (srv *Server) initialize(_ *glsp.Context, _ *protocol.InitializeParams) (any, error) {
	capabilities := srv.handler.CreateServerCapabilities()

	openClose := true
	syncKind := protocol.TextDocumentSyncKindIncremental
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: &openClose,
		Change:    &syncKind,
	}

	resolve := true
	capabilities.CodeActionProvider = &protocol.CodeActionOptions{
		CodeActionKinds: []protocol.CodeActionKind{protocol.CodeActionKindRefactor, protocol.CodeActionKindQuickFix},
		ResolveProvider: &resolve,
	}

	version := srv.opts.Version

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &version,
		},
	}, nil
}

func (srv *Server) initialized(_ *glsp.Context, _ *protocol.InitializedParams) error {
	srv.opts.Logger.Info("lsp client initialized")

	return nil
}

func (srv *Server) shutdown(_ *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)

	return nil
}

func (srv *Server) setTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)

	return nil
}

func (srv *Server) didOpen(_ *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	item := params.TextDocument
	srv.store.Open(item.URI, item.LanguageID, item.Text, item.Version)

	return nil
}

func (srv *Server) didChange(_ *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	err := srv.store.Update(uri, params.TextDocument.Version, func(text string) (string, error) {
		for _, change := range params.ContentChanges {
			next, err := applyChange(text, change)
			if err != nil {
				return "", err
			}

			text = next
		}

		return text, nil
	})
	if err != nil {
		return fmt.Errorf("change %s: %w", uri, err)
	}

	return nil
}

func applyChange(text string, change any) (string, error) {
	switch typed := change.(type) {
	case protocol.TextDocumentContentChangeEventWhole:
		return typed.Text, nil
	case protocol.TextDocumentContentChangeEvent:
		if typed.Range == nil {
			return typed.Text, nil
		}

		span, err := SpanOf(text, *typed.Range)
		if err != nil {
			return "", err
		}

		return text[:span.Start] + typed.Text + text[span.End():], nil
	case map[string]any:
		if whole, ok := typed["text"].(string); ok && typed["range"] == nil {
			return whole, nil
		}
	}

	return text, nil
}

func (srv *Server) didClose(_ *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	srv.store.Close(params.TextDocument.URI)

	return nil
}

func (srv *Server) codeAction(_ *glsp.Context, params *protocol.CodeActionParams) (result any, err error) {
	uri := params.TextDocument.URI

	ctx, span := srv.opts.Tracer.Start(srv.baseCtx, "codefix.lsp.codeAction",
		trace.WithAttributes(attribute.String("lsp.uri", uri)))
	defer span.End()

	done := srv.opts.RED.Observe(ctx, "lsp.codeAction")
	defer func() { done(err) }()

	open, ok := srv.store.get(uri)
	if !ok {
		return []protocol.CodeAction{}, nil
	}

	doc, err := srv.snapshots.Get(ctx, open.name(uri), open.text)
	if err != nil {
		// Unsupported or unparsable documents have no actions.
		srv.opts.Logger.DebugContext(ctx, "no snapshot", "uri", uri, "error", err)

		return []protocol.CodeAction{}, nil
	}

	actions := make([]protocol.CodeAction, 0)

	if kindAllowed(params.Context.Only, protocol.CodeActionKindRefactor) {
		selection, spanErr := SpanOf(open.text, params.Range)
		if spanErr != nil {
			return nil, fmt.Errorf("code action %s: %w", uri, spanErr)
		}

		listed, listErr := srv.list(ctx, uri, open.text, doc, engine.Request{Span: selection}, protocol.CodeActionKindRefactor, nil)
		if listErr != nil {
			return nil, listErr
		}

		actions = append(actions, listed...)
	}

	if kindAllowed(params.Context.Only, protocol.CodeActionKindQuickFix) {
		for _, diagnostic := range params.Context.Diagnostics {
			id := diagnosticID(diagnostic)
			if id == "" {
				continue
			}

			location, spanErr := SpanOf(open.text, diagnostic.Range)
			if spanErr != nil {
				continue
			}

			req := engine.Request{Span: location, DiagnosticID: id}

			listed, listErr := srv.list(ctx, uri, open.text, doc, req, protocol.CodeActionKindQuickFix, &diagnostic)
			if listErr != nil {
				return nil, listErr
			}

			actions = append(actions, listed...)
		}
	}

	span.SetAttributes(attribute.Int("lsp.actions", len(actions)))

	return actions, nil
}

func (srv *Server) list(
	ctx context.Context, uri, text string, doc *document.Document, req engine.Request,
	kind protocol.CodeActionKind, diagnostic *protocol.Diagnostic,
) ([]protocol.CodeAction, error) {
	result, err := srv.backend.ListActions(ctx, doc, req)
	if err != nil {
		return nil, fmt.Errorf("list actions %s: %w", uri, err)
	}

	actions := make([]protocol.CodeAction, 0, len(result.Actions))

	for _, action := range result.Actions {
		srv.actions.add(action.ID(), listedAction{uri: uri, text: text, action: action})

		codeAction := protocol.CodeAction{
			Title: action.Title(),
			Kind:  &kind,
			Data:  actionData{ID: action.ID(), URI: uri},
		}

		if diagnostic != nil {
			codeAction.Diagnostics = []protocol.Diagnostic{*diagnostic}
		}

		actions = append(actions, codeAction)
	}

	return actions, nil
}

func (srv *Server) resolveCodeAction(_ *glsp.Context, params *protocol.CodeAction) (resolved *protocol.CodeAction, err error) {
	ctx, span := srv.opts.Tracer.Start(srv.baseCtx, "codefix.lsp.resolve")
	defer span.End()

	done := srv.opts.RED.Observe(ctx, "lsp.resolve")
	defer func() { done(err) }()

	data, err := decodeData(params.Data)
	if err != nil {
		return nil, err
	}

	listed, ok := srv.actions.get(data.ID)
	if !ok || listed.uri != data.URI {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAction, data.ID)
	}

	current, ok := srv.store.Text(listed.uri)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotOpen, listed.uri)
	}

	if current != listed.text {
		srv.actions.remove(data.ID)

		return nil, fmt.Errorf("%w: %s", ErrStaleAction, listed.uri)
	}

	applied, err := srv.backend.Apply(ctx, listed.action)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", data.ID, err)
	}

	rng, err := RangeOf(applied.Before, applied.Edit.Span)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", data.ID, err)
	}

	span.SetAttributes(attribute.String("codefix.action", listed.action.EquivalenceKey()))

	params.Edit = &protocol.WorkspaceEdit{
		Changes: map[protocol.DocumentUri][]protocol.TextEdit{
			listed.uri: {{Range: rng, NewText: applied.Edit.NewText}},
		},
	}

	return params, nil
}

// decodeData accepts the typed payload or its JSON round trip.
func decodeData(raw any) (actionData, error) {
	if data, ok := raw.(actionData); ok {
		return data, nil
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return actionData{}, fmt.Errorf("decode action data: %w", err)
	}

	var data actionData

	if err = json.Unmarshal(encoded, &data); err != nil || data.ID == "" {
		return actionData{}, fmt.Errorf("%w: malformed data", ErrUnknownAction)
	}

	return data, nil
}

func diagnosticID(diagnostic protocol.Diagnostic) string {
	if diagnostic.Code == nil || diagnostic.Code.Value == nil {
		return ""
	}

	if id, ok := diagnostic.Code.Value.(string); ok {
		return id
	}

	return fmt.Sprint(diagnostic.Code.Value)
}

// kindAllowed applies the client's "only" filter, where a kind matches its
// dotted sub-kinds.
func kindAllowed(only []protocol.CodeActionKind, kind protocol.CodeActionKind) bool {
	if len(only) == 0 {
		return true
	}

	for _, want := range only {
		if want == kind || strings.HasPrefix(string(kind), string(want)+".") {
			return true
		}
	}

	return false
}
