package syntax

// Predicate decides whether a node has a requested shape.
type Predicate func(*Node) bool

// IsKind builds a predicate matching any of the kinds.
func IsKind(kinds ...Kind) Predicate {
	return func(candidate *Node) bool {
		return candidate.Is(kinds...)
	}
}

// FindAncestorOrSelf walks from the innermost node covering span up to the
// root and returns the first node matching predicate. Missing nodes are
// skipped unless allowMissing is set.
func FindAncestorOrSelf(tree *Tree, span Span, predicate Predicate, allowMissing bool) (*Node, bool) {
	if tree == nil || tree.Root() == nil {
		return nil, false
	}

	if allowMissing {
		for _, token := range tree.MissingTokensAt(span.Start) {
			for current := tree.Parent(token); current != nil && current.IsMissing(); current = tree.Parent(current) {
				if predicate(current) {
					return current, true
				}
			}
		}
	}

	for current := tree.FindNode(span); current != nil; current = tree.Parent(current) {
		if !allowMissing && current.IsMissing() {
			continue
		}

		if predicate(current) {
			return current, true
		}
	}

	return nil, false
}

// FirstAncestor returns the nearest proper ancestor of node matching
// predicate.
func FirstAncestor(tree *Tree, target *Node, predicate Predicate) (*Node, bool) {
	for current := tree.Parent(target); current != nil; current = tree.Parent(current) {
		if predicate(current) {
			return current, true
		}
	}

	return nil, false
}

// WalkDownParentheses strips redundant parentheses around an expression when
// walkDown is true.
func WalkDownParentheses(expression *Node, walkDown bool) *Node {
	if !walkDown {
		return expression
	}

	for expression.Is(KindParenthesizedExpression) {
		inner := ParenthesizedInner(expression)
		if inner == nil {
			return expression
		}

		expression = inner
	}

	return expression
}

// ParenthesizedInner returns the expression inside a parenthesized
// expression.
func ParenthesizedInner(parenthesized *Node) *Node {
	nodes := parenthesized.ChildNodes()
	if len(nodes) != 1 {
		return nil
	}

	return nodes[0]
}
