// Package syntax provides an immutable, persistent syntax tree with full
// trivia fidelity, structural-sharing replacement and cursor queries.
package syntax

import (
	"slices"
	"strconv"
	"strings"
)

// Trivia is non-semantic source text attached to a token: whitespace,
// newlines and comments.
type Trivia string

// HasNewline reports whether the trivia spans a line break.
func (t Trivia) HasNewline() bool {
	return strings.ContainsAny(string(t), "\r\n")
}

// HasComment reports whether the trivia contains a comment.
func (t Trivia) HasComment() bool {
	return strings.Contains(string(t), "//") || strings.Contains(string(t), "/*")
}

// Annotation kinds understood by callers of rewrite results.
const (
	AnnotationFormatter = "Formatter"
	AnnotationRename    = "Rename"
)

// Annotation is a marker attached to a node for post-processing. It does not
// contribute text.
type Annotation struct {
	Kind string
	Data string
}

// FormatterAnnotation marks a subtree for the whitespace normalization pass.
//
//nolint:gochecknoglobals // Value constant.
var FormatterAnnotation = Annotation{Kind: AnnotationFormatter}

// RenameAnnotation marks a token the user may want to retype.
//
//nolint:gochecknoglobals // Value constant.
var RenameAnnotation = Annotation{Kind: AnnotationRename}

// Node is an immutable syntax node. Leaves are tokens that own text and
// trivia; inner nodes own ordered children. Nodes carry no position: offsets
// are computed by the Tree that contains them.
type Node struct {
	kind        Kind
	text        string
	leading     Trivia
	trailing    Trivia
	label       string
	children    []*Node
	annotations []Annotation
	fullWidth   int
	missing     bool
}

// NewToken creates a token without trivia.
func NewToken(kind Kind, text string) *Node {
	return &Node{kind: kind, text: text, fullWidth: len(text)}
}

// NewTokenWithTrivia creates a token with leading and trailing trivia.
func NewTokenWithTrivia(kind Kind, leading Trivia, text string, trailing Trivia) *Node {
	return &Node{
		kind:      kind,
		text:      text,
		leading:   leading,
		trailing:  trailing,
		fullWidth: len(leading) + len(text) + len(trailing),
	}
}

// NewMissingToken creates a zero-width token standing in for text the parser
// expected but did not find.
func NewMissingToken(kind Kind) *Node {
	return &Node{kind: kind, missing: true}
}

// NewNode creates an inner node. Nil children are dropped.
func NewNode(kind Kind, children ...*Node) *Node {
	return NewLabeledNode(kind, "", children...)
}

// NewLabeledNode creates an inner node that remembers the grammar name it
// was built from. Used for KindOther and KindError nodes.
func NewLabeledNode(kind Kind, label string, children ...*Node) *Node {
	kept := make([]*Node, 0, len(children))
	width := 0

	for _, child := range children {
		if child == nil {
			continue
		}

		kept = append(kept, child)
		width += child.fullWidth
	}

	return &Node{kind: kind, label: label, children: kept, fullWidth: width}
}

// Kind returns the node tag.
func (targetNode *Node) Kind() Kind {
	if targetNode == nil {
		return KindNone
	}

	return targetNode.kind
}

// Is reports whether the node has one of the given kinds.
func (targetNode *Node) Is(kinds ...Kind) bool {
	return targetNode != nil && slices.Contains(kinds, targetNode.kind)
}

// IsToken reports whether the node is a leaf token.
func (targetNode *Node) IsToken() bool {
	return targetNode != nil && targetNode.kind.IsToken()
}

// IsMissing reports whether the node was synthesized by error recovery, or
// is an inner node made only of missing tokens.
func (targetNode *Node) IsMissing() bool {
	if targetNode == nil {
		return true
	}

	if targetNode.missing {
		return true
	}

	if targetNode.IsToken() || len(targetNode.children) == 0 {
		return false
	}

	for _, child := range targetNode.children {
		if !child.IsMissing() {
			return false
		}
	}

	return true
}

// ContainsMissing reports whether any token under the node is missing, or the
// node holds a parser error.
func (targetNode *Node) ContainsMissing() bool {
	found := Find(targetNode, func(candidate *Node) bool {
		return candidate.missing || candidate.kind == KindError
	})

	return len(found) > 0
}

// Label returns the grammar name recorded for KindOther and KindError nodes.
func (targetNode *Node) Label() string {
	return targetNode.label
}

// Text returns the source text without the outermost trivia. For a token
// this is the token text.
func (targetNode *Node) Text() string {
	if targetNode == nil {
		return ""
	}

	if targetNode.IsToken() {
		return targetNode.text
	}

	full := targetNode.FullText()
	leading := targetNode.LeadingTrivia()
	trailing := targetNode.TrailingTrivia()

	return full[len(leading) : len(full)-len(trailing)]
}

// FullText returns the source text including all trivia.
func (targetNode *Node) FullText() string {
	if targetNode == nil {
		return ""
	}

	var buf strings.Builder

	buf.Grow(targetNode.fullWidth)
	writeFullText(&buf, targetNode)

	return buf.String()
}

func writeFullText(buf *strings.Builder, targetNode *Node) {
	if targetNode.IsToken() {
		buf.WriteString(string(targetNode.leading))
		buf.WriteString(targetNode.text)
		buf.WriteString(string(targetNode.trailing))

		return
	}

	for _, child := range targetNode.children {
		writeFullText(buf, child)
	}
}

// FullWidth returns the text length including trivia.
func (targetNode *Node) FullWidth() int {
	if targetNode == nil {
		return 0
	}

	return targetNode.fullWidth
}

// Width returns the text length without the outermost trivia.
func (targetNode *Node) Width() int {
	return targetNode.FullWidth() - len(targetNode.LeadingTrivia()) - len(targetNode.TrailingTrivia())
}

// Children returns the ordered children. The slice must not be modified.
func (targetNode *Node) Children() []*Node {
	if targetNode == nil {
		return nil
	}

	return targetNode.children
}

// ChildNodes returns the children that are not tokens.
func (targetNode *Node) ChildNodes() []*Node {
	var nodes []*Node

	for _, child := range targetNode.Children() {
		if !child.IsToken() {
			nodes = append(nodes, child)
		}
	}

	return nodes
}

// ChildToken returns the first direct token child with the given text.
func (targetNode *Node) ChildToken(text string) *Node {
	for _, child := range targetNode.Children() {
		if child.IsToken() && child.text == text {
			return child
		}
	}

	return nil
}

// ChildOfKind returns the first direct child with one of the kinds.
func (targetNode *Node) ChildOfKind(kinds ...Kind) *Node {
	for _, child := range targetNode.Children() {
		if child.Is(kinds...) {
			return child
		}
	}

	return nil
}

// FirstToken returns the leftmost token under the node.
func (targetNode *Node) FirstToken() *Node {
	current := targetNode

	for current != nil && !current.IsToken() {
		if len(current.children) == 0 {
			return nil
		}

		current = current.children[0]
	}

	return current
}

// LastToken returns the rightmost token under the node.
func (targetNode *Node) LastToken() *Node {
	current := targetNode

	for current != nil && !current.IsToken() {
		if len(current.children) == 0 {
			return nil
		}

		current = current.children[len(current.children)-1]
	}

	return current
}

// LeadingTrivia returns the trivia before the first token.
func (targetNode *Node) LeadingTrivia() Trivia {
	token := targetNode.FirstToken()
	if token == nil {
		return ""
	}

	return token.leading
}

// TrailingTrivia returns the trivia after the last token.
func (targetNode *Node) TrailingTrivia() Trivia {
	token := targetNode.LastToken()
	if token == nil {
		return ""
	}

	return token.trailing
}

// Annotations returns the node annotations.
func (targetNode *Node) Annotations() []Annotation {
	if targetNode == nil {
		return nil
	}

	return targetNode.annotations
}

// HasAnnotation reports whether the node carries an annotation of the kind.
func (targetNode *Node) HasAnnotation(kind string) bool {
	for _, annotation := range targetNode.Annotations() {
		if annotation.Kind == kind {
			return true
		}
	}

	return false
}

// WithChildren returns a copy of the node with new children.
func (targetNode *Node) WithChildren(children ...*Node) *Node {
	copied := NewLabeledNode(targetNode.kind, targetNode.label, children...)
	copied.annotations = targetNode.annotations
	copied.missing = targetNode.missing

	return copied
}

// WithLeadingTrivia returns a copy whose first token has the given leading
// trivia.
func (targetNode *Node) WithLeadingTrivia(trivia Trivia) *Node {
	first := targetNode.FirstToken()
	if first == nil {
		return targetNode
	}

	if targetNode == first {
		return first.withTrivia(trivia, first.trailing)
	}

	return ReplaceNode(targetNode, first, first.withTrivia(trivia, first.trailing))
}

// WithTrailingTrivia returns a copy whose last token has the given trailing
// trivia.
func (targetNode *Node) WithTrailingTrivia(trivia Trivia) *Node {
	last := targetNode.LastToken()
	if last == nil {
		return targetNode
	}

	if targetNode == last {
		return last.withTrivia(last.leading, trivia)
	}

	return ReplaceNode(targetNode, last, last.withTrivia(last.leading, trivia))
}

// WithTriviaFrom returns a copy carrying the outer trivia of other.
func (targetNode *Node) WithTriviaFrom(other *Node) *Node {
	return targetNode.WithLeadingTrivia(other.LeadingTrivia()).WithTrailingTrivia(other.TrailingTrivia())
}

func (targetNode *Node) withTrivia(leading, trailing Trivia) *Node {
	copied := *targetNode
	copied.leading = leading
	copied.trailing = trailing
	copied.fullWidth = len(leading) + len(copied.text) + len(trailing)

	return &copied
}

// WithText returns a copy of a token with new text and the same trivia.
func (targetNode *Node) WithText(text string) *Node {
	copied := *targetNode
	copied.text = text
	copied.missing = false
	copied.fullWidth = len(copied.leading) + len(text) + len(copied.trailing)

	return &copied
}

// WithAnnotations returns a copy carrying the extra annotations.
func (targetNode *Node) WithAnnotations(annotations ...Annotation) *Node {
	copied := *targetNode
	copied.annotations = append(slices.Clone(targetNode.annotations), annotations...)

	return &copied
}

// WithoutAnnotations returns a copy with every annotation of the kind removed.
func (targetNode *Node) WithoutAnnotations(kind string) *Node {
	if !targetNode.HasAnnotation(kind) {
		return targetNode
	}

	copied := *targetNode
	copied.annotations = slices.DeleteFunc(slices.Clone(targetNode.annotations), func(annotation Annotation) bool {
		return annotation.Kind == kind
	})

	return &copied
}

// Clone returns a deep copy. The copy shares no pointers with the original,
// so it may be inserted into a tree that still holds the original.
func (targetNode *Node) Clone() *Node {
	if targetNode == nil {
		return nil
	}

	copied := *targetNode
	copied.annotations = slices.Clone(targetNode.annotations)

	if len(targetNode.children) > 0 {
		copied.children = make([]*Node, len(targetNode.children))
		for idx, child := range targetNode.children {
			copied.children[idx] = child.Clone()
		}
	}

	return &copied
}

// EquivalentTo reports whether two subtrees have the same kinds and token
// text, ignoring trivia and annotations.
func (targetNode *Node) EquivalentTo(other *Node) bool {
	if targetNode == nil || other == nil {
		return targetNode == other
	}

	if targetNode.kind != other.kind || targetNode.text != other.text || len(targetNode.children) != len(other.children) {
		return false
	}

	for idx, child := range targetNode.children {
		if !child.EquivalentTo(other.children[idx]) {
			return false
		}
	}

	return true
}

// String returns a compact debug representation.
func (targetNode *Node) String() string {
	if targetNode == nil {
		return "<nil>"
	}

	var buf strings.Builder

	buf.WriteString(targetNode.kind.String())

	if targetNode.label != "" {
		buf.WriteString("(" + targetNode.label + ")")
	}

	if targetNode.IsToken() {
		buf.WriteString(" " + strconv.Quote(targetNode.text))
	} else {
		buf.WriteString(" " + strconv.Quote(targetNode.Text()))
	}

	return buf.String()
}

// Find returns all nodes under root (including root) for which predicate is
// true, in pre-order.
func Find(root *Node, predicate func(*Node) bool) []*Node {
	var found []*Node

	VisitPreOrder(root, func(candidate *Node) bool {
		if predicate(candidate) {
			found = append(found, candidate)
		}

		return true
	})

	return found
}

// VisitPreOrder visits root and its descendants left to right. Returning
// false from fn skips the children of the visited node.
func VisitPreOrder(root *Node, fn func(*Node) bool) {
	if root == nil {
		return
	}

	stack := []*Node{root}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !fn(current) {
			continue
		}

		for idx := len(current.children) - 1; idx >= 0; idx-- {
			stack = append(stack, current.children[idx])
		}
	}
}

// DescendantTokens returns the tokens under root in source order.
func DescendantTokens(root *Node) []*Node {
	return Find(root, (*Node).IsToken)
}
