// Package engine runs refactoring and code fix providers over a document
// and collects the actions they offer.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/Sumatoshi-tech/codefix/pkg/rewrite"
	"github.com/Sumatoshi-tech/codefix/pkg/semantic"
	"github.com/Sumatoshi-tech/codefix/pkg/syntax"
)

// ErrNoCandidate is returned by a provider that found nothing to act on.
var ErrNoCandidate = errors.New("no candidate at span")

// ErrSemanticRejected is returned by a provider whose candidate failed its
// semantic preconditions.
var ErrSemanticRejected = errors.New("candidate rejected by semantic check")

// ErrProviderFault marks a provider that panicked or failed unexpectedly.
var ErrProviderFault = errors.New("provider fault")

// ErrDuplicateProvider is returned when two providers share an id.
var ErrDuplicateProvider = errors.New("duplicate provider id")

// TriggerKind tells how a provider is invoked.
type TriggerKind int

// Trigger kinds.
const (
	// TriggerRefactoring providers run for any span.
	TriggerRefactoring TriggerKind = iota
	// TriggerCodeFix providers run only for their diagnostic ids.
	TriggerCodeFix
)

// Trigger describes when a provider is eligible.
type Trigger struct {
	Kind          TriggerKind
	DiagnosticIDs []string
}

// RefactoringTrigger is the trigger of span-based refactorings.
func RefactoringTrigger() Trigger {
	return Trigger{Kind: TriggerRefactoring}
}

// CodeFixTrigger is the trigger of providers fixing the given diagnostics.
func CodeFixTrigger(diagnosticIDs ...string) Trigger {
	return Trigger{Kind: TriggerCodeFix, DiagnosticIDs: diagnosticIDs}
}

// Accepts reports whether a provider with this trigger is eligible for req.
func (trigger Trigger) Accepts(req Request) bool {
	if trigger.Kind == TriggerRefactoring {
		return req.DiagnosticID == ""
	}

	return req.DiagnosticID != "" && slices.Contains(trigger.DiagnosticIDs, req.DiagnosticID)
}

// Provider offers actions for a request. ComputeActions registers actions on
// the context and returns nil, a decline error (ErrNoCandidate,
// ErrSemanticRejected, semantic.ErrUnresolved), or a failure.
type Provider interface {
	ID() string
	Trigger() Trigger
	ComputeActions(ctx context.Context, pc *Context) error
}

// Request is a span, optionally tied to a diagnostic.
type Request struct {
	Span         syntax.Span
	DiagnosticID string
}

// Document is the immutable input of a request.
type Document struct {
	Tree   *syntax.Tree
	Oracle semantic.Oracle
}

// ComputeFunc lazily produces the rewrite of an action.
type ComputeFunc func(ctx context.Context) (*rewrite.Result, error)

// Context is handed to one provider for one request.
type Context struct {
	doc        Document
	req        Request
	logger     *slog.Logger
	providerID string

	mu      sync.Mutex
	actions []*Action
}

// Tree returns the request tree.
func (pc *Context) Tree() *syntax.Tree { return pc.doc.Tree }

// Oracle returns the semantic oracle bound to the tree.
func (pc *Context) Oracle() semantic.Oracle { return pc.doc.Oracle }

// Request returns the request.
func (pc *Context) Request() Request { return pc.req }

// Span returns the request span.
func (pc *Context) Span() syntax.Span { return pc.req.Span }

// Logger returns a logger tagged with the provider id.
func (pc *Context) Logger() *slog.Logger { return pc.logger }

// Register offers an action. The variant distinguishes several actions of
// one provider and may be empty.
func (pc *Context) Register(title, variant string, compute ComputeFunc) {
	key := pc.providerID
	if variant != "" {
		key += "." + variant
	}

	action := &Action{
		id:         uuid.NewString(),
		title:      title,
		key:        key,
		providerID: pc.providerID,
		compute:    compute,
	}

	pc.mu.Lock()
	pc.actions = append(pc.actions, action)
	pc.mu.Unlock()
}

func (pc *Context) registered() []*Action {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	return slices.Clone(pc.actions)
}

// Action is a titled, lazily computed rewrite.
type Action struct {
	id         string
	title      string
	key        string
	providerID string
	compute    ComputeFunc
}

// ID is unique per listed action.
func (action *Action) ID() string { return action.id }

// Title is the human readable label.
func (action *Action) Title() string { return action.title }

// EquivalenceKey is stable across requests: the provider id, optionally
// followed by a dot and the variant.
func (action *Action) EquivalenceKey() string { return action.key }

// ProviderID returns the id of the provider that registered the action.
func (action *Action) ProviderID() string { return action.providerID }

// Apply computes the rewrite. Cancellation is checked before and after the
// computation, and a panic is reported as ErrProviderFault.
func (action *Action) Apply(ctx context.Context) (result *rewrite.Result, err error) {
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			result = nil
			err = fmt.Errorf("apply %s: %w: %v", action.key, ErrProviderFault, recovered)
		}
	}()

	result, err = action.compute(ctx)
	if err != nil {
		return nil, fmt.Errorf("apply %s: %w", action.key, err)
	}

	if err = ctx.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// Fault records a provider failure.
type Fault struct {
	ProviderID string
	Message    string
	Err        error
}

// Error implements error.
func (fault Fault) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrProviderFault, fault.ProviderID, fault.Message)
}

// Unwrap exposes ErrProviderFault and the underlying error.
func (fault Fault) Unwrap() []error {
	if fault.Err == nil {
		return []error{ErrProviderFault}
	}

	return []error{ErrProviderFault, fault.Err}
}

// IsDecline reports whether err is a silent decline.
func IsDecline(err error) bool {
	return errors.Is(err, ErrNoCandidate) || errors.Is(err, ErrSemanticRejected) || errors.Is(err, semantic.ErrUnresolved)
}
