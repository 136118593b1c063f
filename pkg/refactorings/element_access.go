package refactorings

import (
	"context"
	"fmt"

	"github.com/Sumatoshi-tech/codefix/pkg/engine"
	"github.com/Sumatoshi-tech/codefix/pkg/gate"
	"github.com/Sumatoshi-tech/codefix/pkg/match"
	"github.com/Sumatoshi-tech/codefix/pkg/rewrite"
	"github.com/Sumatoshi-tech/codefix/pkg/semantic"
	"github.com/Sumatoshi-tech/codefix/pkg/syntax"
)

// enumerableContainer declares the LINQ extension methods.
const enumerableContainer = "System.Linq.Enumerable"

type useElementAccessInsteadOfEnumerableMethod struct{}

func (useElementAccessInsteadOfEnumerableMethod) ID() string {
	return UseElementAccessInsteadOfEnumerableMethod
}

func (useElementAccessInsteadOfEnumerableMethod) Trigger() engine.Trigger {
	return engine.RefactoringTrigger()
}

func (useElementAccessInsteadOfEnumerableMethod) ComputeActions(ctx context.Context, pc *engine.Context) error {
	node, ok := syntax.FindAncestorOrSelf(pc.Tree(), pc.Span(), syntax.IsKind(syntax.KindInvocationExpression), false)
	if !ok {
		return engine.ErrNoCandidate
	}

	call, ok := match.TryEnumerableCall(pc.Tree(), node)
	if !ok || !within(pc, call.Name) {
		return engine.ErrNoCandidate
	}

	switch call.MethodName() {
	case rewrite.MethodFirst, rewrite.MethodLast:
		if len(call.Arguments) != 0 {
			return engine.ErrNoCandidate
		}
	case rewrite.MethodElementAt:
		if len(call.Arguments) != 1 {
			return engine.ErrNoCandidate
		}
	default:
		return engine.ErrNoCandidate
	}

	method, err := pc.Oracle().ResolveSymbol(ctx, call.Invocation)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", call.MethodName(), err)
	}

	if method == nil {
		return semantic.ErrUnresolved
	}

	if !method.IsExtension() || method.ContainingTypeName() != enumerableContainer {
		return engine.ErrSemanticRejected
	}

	receiverType, err := pc.Oracle().ResolveType(ctx, call.Receiver)
	if err != nil {
		return fmt.Errorf("resolve receiver: %w", err)
	}

	if !semantic.IsUsable(receiverType) {
		return engine.ErrSemanticRejected
	}

	position := pc.Tree().Span(call.Invocation).Start

	indexable, err := gate.IsIndexable(ctx, pc.Oracle(), receiverType, receiverType.ElementType(), position)
	if err != nil {
		return err
	}

	if !indexable {
		return engine.ErrSemanticRejected
	}

	lengthName := gate.LengthName(receiverType)

	pc.Register(fmt.Sprintf("Use [] instead of calling '%s'", call.MethodName()), "", func(context.Context) (*rewrite.Result, error) {
		return rewrite.EnumerableCallToElementAccess(pc.Tree(), call, lengthName)
	})

	return nil
}
