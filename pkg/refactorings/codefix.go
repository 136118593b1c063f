package refactorings

import (
	"context"

	"github.com/Sumatoshi-tech/codefix/pkg/engine"
	"github.com/Sumatoshi-tech/codefix/pkg/match"
	"github.com/Sumatoshi-tech/codefix/pkg/rewrite"
	"github.com/Sumatoshi-tech/codefix/pkg/syntax"
)

const newModifier = "new"

func isMemberDeclaration(node *syntax.Node) bool {
	return node.Kind().IsMemberDeclaration()
}

type removeNewModifier struct{}

func (removeNewModifier) ID() string { return RemoveNewModifier }

func (removeNewModifier) Trigger() engine.Trigger {
	return engine.CodeFixTrigger(DiagnosticMemberDoesNotHide)
}

func (removeNewModifier) ComputeActions(_ context.Context, pc *engine.Context) error {
	node, ok := syntax.FindAncestorOrSelf(pc.Tree(), pc.Span(), isMemberDeclaration, false)
	if !ok {
		return engine.ErrNoCandidate
	}

	member, ok := match.TryMemberDeclaration(pc.Tree(), node)
	if !ok || !member.HasModifier(newModifier) {
		return engine.ErrNoCandidate
	}

	pc.Register("Remove 'new' modifier", "", func(context.Context) (*rewrite.Result, error) {
		return rewrite.RemoveModifier(pc.Tree(), member, newModifier)
	})

	return nil
}
