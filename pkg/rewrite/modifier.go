package rewrite

import (
	"fmt"

	"github.com/Sumatoshi-tech/codefix/pkg/match"
	"github.com/Sumatoshi-tech/codefix/pkg/syntax"
)

// RemoveModifier drops a modifier keyword from a member declaration. The
// leading trivia of the removed modifier moves to the token that follows it,
// so indentation and preceding comments survive.
func RemoveModifier(tree *syntax.Tree, member match.MemberDeclaration, keyword string) (*Result, error) {
	if err := requireNodes(member.Declaration); err != nil {
		return nil, err
	}

	modifier := syntax.FindModifier(member.Declaration, keyword)
	if modifier == nil {
		return nil, fmt.Errorf("modifier %q: %w", keyword, ErrMissingNode)
	}

	children := member.Declaration.Children()
	kept := make([]*syntax.Node, 0, len(children)-1)

	var carried syntax.Trivia

	for _, child := range children {
		if child == modifier {
			carried = modifier.LeadingTrivia()

			continue
		}

		if carried != "" {
			child = child.WithLeadingTrivia(carried + child.LeadingTrivia())
			carried = ""
		}

		kept = append(kept, child)
	}

	return newResult(tree, member.Declaration, member.Declaration.WithChildren(kept...))
}
