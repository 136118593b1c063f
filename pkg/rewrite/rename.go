package rewrite

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/codefix/pkg/semantic"
	"github.com/Sumatoshi-tech/codefix/pkg/syntax"
)

// RenameLocal renames the symbol declared by declaration at its declaration
// and every reference in the tree. References are found by symbol, so a
// shadowing local with the same spelling is left alone. A newName already
// visible at the declaration gets a numeric suffix and a rename annotation.
// The anchor is the innermost node covering every occurrence.
func RenameLocal(ctx context.Context, oracle semantic.Oracle, tree *syntax.Tree, declaration *syntax.Node, newName string) (*Result, error) {
	if err := requireNodes(declaration); err != nil {
		return nil, err
	}

	if newName == "" {
		return nil, fmt.Errorf("empty name: %w", ErrMissingNode)
	}

	name, err := oracle.UniqueName(ctx, newName, tree.Span(declaration).Start)
	if err != nil {
		if errors.Is(err, semantic.ErrNameExhausted) {
			return nil, fmt.Errorf("rename to %q: %w", newName, ErrNameGenerationExhausted)
		}

		return nil, fmt.Errorf("rename to %q: %w", newName, err)
	}

	occurrences, err := symbolReferences(ctx, oracle, declaration, tree.Root())
	if err != nil {
		return nil, err
	}

	if len(occurrences) == 0 {
		return nil, fmt.Errorf("no occurrences of the declared symbol: %w", ErrMissingNode)
	}

	anchor := commonAncestor(tree, occurrences)

	replacement := syntax.ReplaceNodes(anchor, occurrences, func(occurrence *syntax.Node) *syntax.Node {
		token := occurrence.FirstToken()
		renamed := token.WithText(name)

		if name != newName && occurrence == occurrences[0] {
			renamed = renamed.WithAnnotations(syntax.RenameAnnotation)
		}

		return syntax.ReplaceNode(occurrence, token, renamed)
	})

	return newResult(tree, anchor, replacement)
}

// commonAncestor returns the innermost node whose subtree holds every node.
func commonAncestor(tree *syntax.Tree, nodes []*syntax.Node) *syntax.Node {
	chain := append([]*syntax.Node{nodes[0]}, tree.Ancestors(nodes[0])...)

	depth := make(map[*syntax.Node]int, len(chain))
	for idx, node := range chain {
		depth[node] = idx
	}

	lowest := 0

	for _, node := range nodes[1:] {
		for current := node; current != nil; current = tree.Parent(current) {
			if idx, ok := depth[current]; ok {
				lowest = max(lowest, idx)

				break
			}
		}
	}

	return chain[lowest]
}
