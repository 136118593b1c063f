package syntax

import (
	"errors"
	"sort"
	"sync"
)

// ErrNodeNotFound is returned when a node to replace is not part of the tree.
var ErrNodeNotFound = errors.New("node not found in tree")

// Tree owns a root node and lazily indexes parents and offsets. A Tree is
// safe for concurrent reads.
type Tree struct {
	root  *Node
	once  sync.Once
	index *treeIndex
}

type treeIndex struct {
	parents     map[*Node]*Node
	fullStarts  map[*Node]int
	tokens      []*Node
	tokenStarts []int
}

// NewTree wraps root in a tree.
func NewTree(root *Node) *Tree {
	return &Tree{root: root}
}

// Root returns the root node.
func (tree *Tree) Root() *Node {
	return tree.root
}

// Text returns the full source text.
func (tree *Tree) Text() string {
	return tree.root.FullText()
}

func (tree *Tree) indexed() *treeIndex {
	tree.once.Do(func() {
		tree.index = buildIndex(tree.root)
	})

	return tree.index
}

type indexFrame struct {
	node   *Node
	parent *Node
	start  int
}

func buildIndex(root *Node) *treeIndex {
	idx := &treeIndex{
		parents:    make(map[*Node]*Node),
		fullStarts: make(map[*Node]int),
	}

	if root == nil {
		return idx
	}

	stack := []indexFrame{{node: root}}

	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, seen := idx.fullStarts[frame.node]; seen {
			continue
		}

		idx.fullStarts[frame.node] = frame.start
		if frame.parent != nil {
			idx.parents[frame.node] = frame.parent
		}

		if frame.node.IsToken() {
			idx.tokens = append(idx.tokens, frame.node)
			idx.tokenStarts = append(idx.tokenStarts, frame.start)

			continue
		}

		offsets := make([]int, len(frame.node.children))
		offset := frame.start

		for childIdx, child := range frame.node.children {
			offsets[childIdx] = offset
			offset += child.fullWidth
		}

		for childIdx := len(frame.node.children) - 1; childIdx >= 0; childIdx-- {
			stack = append(stack, indexFrame{
				node:   frame.node.children[childIdx],
				parent: frame.node,
				start:  offsets[childIdx],
			})
		}
	}

	return idx
}

// Contains reports whether the node belongs to this tree.
func (tree *Tree) Contains(target *Node) bool {
	_, ok := tree.indexed().fullStarts[target]

	return ok
}

// Parent returns the parent of a node, or nil for the root and for nodes
// outside the tree.
func (tree *Tree) Parent(target *Node) *Node {
	return tree.indexed().parents[target]
}

// Ancestors returns the parent chain of target, innermost first.
func (tree *Tree) Ancestors(target *Node) []*Node {
	var chain []*Node

	for parent := tree.Parent(target); parent != nil; parent = tree.Parent(parent) {
		chain = append(chain, parent)
	}

	return chain
}

// FullSpan returns the span of a node including its outer trivia.
func (tree *Tree) FullSpan(target *Node) Span {
	start := tree.indexed().fullStarts[target]

	return Span{Start: start, Length: target.FullWidth()}
}

// Span returns the span of a node without its outer trivia.
func (tree *Tree) Span(target *Node) Span {
	full := tree.FullSpan(target)
	leading := len(target.LeadingTrivia())

	return Span{Start: full.Start + leading, Length: target.Width()}
}

// Tokens returns all tokens of the tree in source order.
func (tree *Tree) Tokens() []*Node {
	return tree.indexed().tokens
}

// FindToken returns the token whose full span contains pos. Positions at or
// past the end of the text resolve to the last token.
func (tree *Tree) FindToken(pos int) *Node {
	idx := tree.indexed()
	if len(idx.tokens) == 0 {
		return nil
	}

	// First token starting after pos, minus one.
	found := sort.Search(len(idx.tokenStarts), func(i int) bool {
		return idx.tokenStarts[i] > pos
	}) - 1

	if found < 0 {
		found = 0
	}

	// Skip zero-width tokens sharing the start of a real token.
	for found+1 < len(idx.tokens) && idx.tokens[found].fullWidth == 0 && idx.tokenStarts[found+1] <= pos {
		found++
	}

	return idx.tokens[found]
}

// MissingTokensAt returns the zero-width missing tokens located at pos.
func (tree *Tree) MissingTokensAt(pos int) []*Node {
	idx := tree.indexed()
	first := sort.SearchInts(idx.tokenStarts, pos)

	var missing []*Node

	for i := first; i < len(idx.tokens) && idx.tokenStarts[i] == pos; i++ {
		if idx.tokens[i].missing {
			missing = append(missing, idx.tokens[i])
		}
	}

	return missing
}

// FindNode returns the innermost non-token node whose full span contains span.
func (tree *Tree) FindNode(span Span) *Node {
	token := tree.FindToken(span.Start)
	if token == nil {
		return tree.root
	}

	for current := tree.Parent(token); current != nil; current = tree.Parent(current) {
		if tree.FullSpan(current).Contains(span) {
			return current
		}
	}

	return tree.root
}

// WithNodeReplaced returns a new tree in which old is replaced by replacement.
// Every subtree off the path from the root to old is shared with the
// receiver.
func (tree *Tree) WithNodeReplaced(old, replacement *Node) (*Tree, error) {
	if !tree.Contains(old) {
		return nil, ErrNodeNotFound
	}

	return NewTree(ReplaceNode(tree.root, old, replacement)), nil
}

// WithNodesReplaced replaces several nodes at once, computing each
// replacement from the original node.
func (tree *Tree) WithNodesReplaced(targets []*Node, fn func(original *Node) *Node) (*Tree, error) {
	for _, target := range targets {
		if !tree.Contains(target) {
			return nil, ErrNodeNotFound
		}
	}

	return NewTree(ReplaceNodes(tree.root, targets, fn)), nil
}

// AnnotatedNodes returns the nodes carrying an annotation of the kind.
func (tree *Tree) AnnotatedNodes(kind string) []*Node {
	return Find(tree.root, func(candidate *Node) bool {
		return candidate.HasAnnotation(kind)
	})
}

// ReplaceNode returns a copy of root with old replaced by replacement.
func ReplaceNode(root, old, replacement *Node) *Node {
	return ReplaceNodes(root, []*Node{old}, func(*Node) *Node {
		return replacement
	})
}

// ReplaceNodes returns a copy of root in which every target is replaced by
// fn(target). Only nodes on a path from root to a target are copied. Targets
// nested inside other targets are handed to fn in their original form.
func ReplaceNodes(root *Node, targets []*Node, fn func(original *Node) *Node) *Node {
	if root == nil || len(targets) == 0 {
		return root
	}

	set := make(map[*Node]struct{}, len(targets))
	for _, target := range targets {
		set[target] = struct{}{}
	}

	return replaceRecursive(root, set, fn)
}

func replaceRecursive(current *Node, targets map[*Node]struct{}, fn func(*Node) *Node) *Node {
	if _, ok := targets[current]; ok {
		return fn(current)
	}

	if current.IsToken() || len(current.children) == 0 {
		return current
	}

	var rebuilt []*Node

	for idx, child := range current.children {
		replaced := replaceRecursive(child, targets, fn)
		if replaced == child && rebuilt == nil {
			continue
		}

		if rebuilt == nil {
			rebuilt = make([]*Node, idx, len(current.children))
			copy(rebuilt, current.children[:idx])
		}

		rebuilt = append(rebuilt, replaced)
	}

	if rebuilt == nil {
		return current
	}

	return current.WithChildren(rebuilt...)
}
