package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/codefix/internal/document"
	"github.com/Sumatoshi-tech/codefix/internal/service"
	"github.com/Sumatoshi-tech/codefix/pkg/engine"
	"github.com/Sumatoshi-tech/codefix/pkg/rewrite"
	"github.com/Sumatoshi-tech/codefix/pkg/syntax"
)

// Tool name constants.
const (
	ToolNameListActions = "codefix_list_actions"
	ToolNameApplyAction = "codefix_apply_action"
)

const (
	// MaxCodeInputBytes is the maximum allowed size for inline code input.
	MaxCodeInputBytes = humanize.MiByte

	defaultFilename = "code.cs"
	diffContext     = 2
)

// Sentinel errors for tool input validation.
var (
	ErrNoSource       = errors.New("either path or code is required")
	ErrBothSources    = errors.New("path and code are mutually exclusive")
	ErrCodeTooLarge   = errors.New("code input exceeds maximum size")
	ErrInvalidSpan    = errors.New("offset and length must be non-negative")
	ErrEmptyAction    = errors.New("action parameter is required and must not be empty")
	ErrWriteNeedsPath = errors.New("write requires a path")
)

// Backend lists and applies actions. *service.Service implements it.
type Backend interface {
	Load(ctx context.Context, path string) (*document.Document, error)
	Parse(ctx context.Context, path string, text []byte) (*document.Document, error)
	ListActions(ctx context.Context, doc *document.Document, req engine.Request) (engine.Result, error)
	ApplyKey(ctx context.Context, doc *document.Document, req engine.Request, key string) (*service.Applied, error)
	Write(path string, applied *service.Applied) (document.WriteStatus, error)
}

// ListActionsInput is the input schema for the codefix_list_actions tool.
type ListActionsInput struct {
	Code       string `json:"code,omitempty"       jsonschema:"inline C# source (alternative to path)"`
	Diagnostic string `json:"diagnostic,omitempty" jsonschema:"diagnostic id such as CS0109 to request code fixes"`
	Filename   string `json:"filename,omitempty"   jsonschema:"file name attributed to inline code (default code.cs)"`
	Length     int    `json:"length,omitempty"     jsonschema:"selection length in bytes"`
	Offset     int    `json:"offset"               jsonschema:"byte offset of the selection start"`
	Path       string `json:"path,omitempty"       jsonschema:"path of a C# file to read"`
}

// ApplyActionInput is the input schema for the codefix_apply_action tool.
type ApplyActionInput struct {
	Action     string `json:"action"               jsonschema:"equivalence key of the action, e.g. ReplaceForEachWithFor.ascending"`
	Code       string `json:"code,omitempty"       jsonschema:"inline C# source (alternative to path)"`
	Diagnostic string `json:"diagnostic,omitempty" jsonschema:"diagnostic id such as CS0109 to request code fixes"`
	Diff       bool   `json:"diff,omitempty"       jsonschema:"return a line diff instead of the full text"`
	Filename   string `json:"filename,omitempty"   jsonschema:"file name attributed to inline code (default code.cs)"`
	Length     int    `json:"length,omitempty"     jsonschema:"selection length in bytes"`
	Offset     int    `json:"offset"               jsonschema:"byte offset of the selection start"`
	Path       string `json:"path,omitempty"       jsonschema:"path of a C# file to read"`
	Write      bool   `json:"write,omitempty"      jsonschema:"write the result back to path when it changed"`
}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// ActionSummary describes one listed action.
type ActionSummary struct {
	Key      string `json:"key"`
	Title    string `json:"title"`
	Provider string `json:"provider"`
}

// FaultSummary describes one faulted provider.
type FaultSummary struct {
	Provider string `json:"provider"`
	Message  string `json:"message"`
}

// ListActionsResult is the payload of codefix_list_actions.
type ListActionsResult struct {
	Path    string          `json:"path"`
	Actions []ActionSummary `json:"actions"`
	Faults  []FaultSummary  `json:"faults,omitempty"`
}

// ApplyActionResult is the payload of codefix_apply_action.
type ApplyActionResult struct {
	Path    string        `json:"path"`
	Key     string        `json:"key"`
	Title   string        `json:"title"`
	Edit    rewrite.Edit  `json:"edit"`
	Text    string        `json:"text,omitempty"`
	Diff    string        `json:"diff,omitempty"`
	Renames []syntax.Span `json:"renames,omitempty"`
	Status  string        `json:"status,omitempty"`
}

type toolSet struct {
	backend Backend
}

// source is the shared document selector of both tools.
type source struct {
	path     string
	code     string
	filename string
	offset   int
	length   int
	diag     string
}

func (src source) request() engine.Request {
	return engine.Request{Span: syntax.Span{Start: src.offset, Length: src.length}, DiagnosticID: src.diag}
}

func (src source) validate() error {
	switch {
	case src.path == "" && src.code == "":
		return ErrNoSource
	case src.path != "" && src.code != "":
		return ErrBothSources
	case len(src.code) > MaxCodeInputBytes:
		return fmt.Errorf("%w: %s (max %s)", ErrCodeTooLarge,
			humanize.IBytes(uint64(len(src.code))), humanize.IBytes(MaxCodeInputBytes)) //nolint:gosec // lengths are non-negative.
	case src.offset < 0 || src.length < 0:
		return ErrInvalidSpan
	}

	return nil
}

func (ts *toolSet) load(ctx context.Context, src source) (*document.Document, error) {
	if err := src.validate(); err != nil {
		return nil, err
	}

	if src.path != "" {
		return ts.backend.Load(ctx, src.path) //nolint:wrapcheck // backend errors carry the path.
	}

	name := src.filename
	if name == "" {
		name = defaultFilename
	}

	return ts.backend.Parse(ctx, name, []byte(src.code)) //nolint:wrapcheck // backend errors carry the path.
}

func (ts *toolSet) handleListActions(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input ListActionsInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	src := source{
		path: input.Path, code: input.Code, filename: input.Filename,
		offset: input.Offset, length: input.Length, diag: input.Diagnostic,
	}

	doc, err := ts.load(ctx, src)
	if err != nil {
		return errorResult(err)
	}

	result, err := ts.backend.ListActions(ctx, doc, src.request())
	if err != nil {
		return errorResult(err)
	}

	out := ListActionsResult{Path: doc.Path, Actions: make([]ActionSummary, 0, len(result.Actions))}

	for _, action := range result.Actions {
		out.Actions = append(out.Actions, ActionSummary{
			Key:      action.EquivalenceKey(),
			Title:    action.Title(),
			Provider: action.ProviderID(),
		})
	}

	for _, fault := range result.Faults {
		out.Faults = append(out.Faults, FaultSummary{Provider: fault.ProviderID, Message: fault.Message})
	}

	return jsonResult(out)
}

func (ts *toolSet) handleApplyAction(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input ApplyActionInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if input.Action == "" {
		return errorResult(ErrEmptyAction)
	}

	if input.Write && input.Path == "" {
		return errorResult(ErrWriteNeedsPath)
	}

	src := source{
		path: input.Path, code: input.Code, filename: input.Filename,
		offset: input.Offset, length: input.Length, diag: input.Diagnostic,
	}

	doc, err := ts.load(ctx, src)
	if err != nil {
		return errorResult(err)
	}

	applied, err := ts.backend.ApplyKey(ctx, doc, src.request(), input.Action)
	if err != nil {
		return errorResult(err)
	}

	out := ApplyActionResult{
		Path:    doc.Path,
		Key:     applied.Action.EquivalenceKey(),
		Title:   applied.Action.Title(),
		Edit:    applied.Edit,
		Renames: applied.Renames,
	}

	if input.Diff {
		out.Diff = service.DiffText(service.ChangedLines(service.LineDiff(applied.Before, applied.After), diffContext))
	} else {
		out.Text = applied.After
	}

	if input.Write {
		status, writeErr := ts.backend.Write(input.Path, applied)
		if writeErr != nil {
			return errorResult(writeErr)
		}

		out.Status = status.String()
	}

	return jsonResult(out)
}

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}
