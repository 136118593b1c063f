package syntax

import "strings"

// Format runs the whitespace normalization pass over every subtree carrying
// FormatterAnnotation and clears the annotation. Inside such a subtree,
// single-line trivia between tokens collapses to at most one space. Trivia
// with newlines or comments, indentation, and the outer trivia of the
// subtree are kept.
func Format(tree *Tree) *Tree {
	targets := outermostAnnotated(tree.Root(), AnnotationFormatter)
	if len(targets) == 0 {
		return tree
	}

	return NewTree(ReplaceNodes(tree.Root(), targets, formatSubtree))
}

// FormatAll normalizes the whole tree as if its root were annotated.
func FormatAll(tree *Tree) *Tree {
	return NewTree(formatSubtree(tree.Root()))
}

func outermostAnnotated(root *Node, kind string) []*Node {
	var found []*Node

	VisitPreOrder(root, func(candidate *Node) bool {
		if candidate.HasAnnotation(kind) {
			found = append(found, candidate)

			return false
		}

		return true
	})

	return found
}

func formatSubtree(subtree *Node) *Node {
	tokens := DescendantTokens(subtree)
	if len(tokens) == 0 {
		return subtree.WithoutAnnotations(AnnotationFormatter)
	}

	first := tokens[0]
	last := tokens[len(tokens)-1]

	lineStarts := make(map[*Node]bool, len(tokens))
	for idx := 1; idx < len(tokens); idx++ {
		lineStarts[tokens[idx]] = tokens[idx-1].trailing.HasNewline()
	}

	formatted := ReplaceNodes(subtree, tokens, func(token *Node) *Node {
		leading := token.leading
		trailing := token.trailing

		if token != first && !lineStarts[token] {
			leading = collapseTrivia(leading)
		}

		if token != last {
			trailing = collapseTrivia(trailing)
		}

		if leading == token.leading && trailing == token.trailing {
			return token
		}

		return token.withTrivia(leading, trailing)
	})

	return clearAnnotations(formatted, AnnotationFormatter)
}

func collapseTrivia(trivia Trivia) Trivia {
	if trivia == "" || trivia.HasNewline() || trivia.HasComment() {
		return trivia
	}

	if strings.TrimSpace(string(trivia)) == "" {
		return space
	}

	return trivia
}

func clearAnnotations(root *Node, kind string) *Node {
	annotated := Find(root, func(candidate *Node) bool {
		return candidate.HasAnnotation(kind)
	})

	if len(annotated) == 0 {
		return root
	}

	return ReplaceNodes(root, annotated, func(original *Node) *Node {
		cleaned := original.WithoutAnnotations(kind)
		if original.IsToken() {
			return cleaned
		}

		return cleaned.WithChildren(clearChildren(original.children, kind)...)
	})
}

func clearChildren(children []*Node, kind string) []*Node {
	out := make([]*Node, len(children))
	for idx, child := range children {
		out[idx] = clearAnnotations(child, kind)
	}

	return out
}
