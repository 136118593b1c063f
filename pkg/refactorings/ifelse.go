package refactorings

import (
	"context"

	"github.com/Sumatoshi-tech/codefix/pkg/engine"
	"github.com/Sumatoshi-tech/codefix/pkg/match"
	"github.com/Sumatoshi-tech/codefix/pkg/rewrite"
	"github.com/Sumatoshi-tech/codefix/pkg/syntax"
)

type invertIfElse struct{}

func (invertIfElse) ID() string { return InvertIfElse }

func (invertIfElse) Trigger() engine.Trigger { return engine.RefactoringTrigger() }

func (invertIfElse) ComputeActions(_ context.Context, pc *engine.Context) error {
	node, ok := syntax.FindAncestorOrSelf(pc.Tree(), pc.Span(), syntax.IsKind(syntax.KindIfStatement), false)
	if !ok {
		return engine.ErrNoCandidate
	}

	info, ok := match.TrySimpleIfElse(pc.Tree(), node, match.DefaultOptions())
	if !ok {
		return engine.ErrNoCandidate
	}

	if within(pc, info.WhenTrue) || within(pc, info.WhenFalse) {
		return engine.ErrNoCandidate
	}

	pc.Register("Invert if-else", "", func(ctx context.Context) (*rewrite.Result, error) {
		return rewrite.InvertIfElse(ctx, pc.Oracle(), pc.Tree(), info)
	})

	return nil
}
