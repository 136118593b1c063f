// Package rewrite builds replacement subtrees for accepted candidates. Every
// builder is atomic: it either returns a complete Result or an error, never a
// partially rewritten tree.
package rewrite

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/codefix/pkg/syntax"
)

// ErrNameGenerationExhausted is returned when no collision-free identifier
// could be produced for a synthesized declaration.
var ErrNameGenerationExhausted = errors.New("name generation exhausted")

// ErrMissingNode is returned when a role the rewrite needs is absent.
var ErrMissingNode = errors.New("required node is missing")

// ErrEditOutOfRange is returned when an edit does not fit the text it is
// applied to.
var ErrEditOutOfRange = errors.New("edit out of range")

// Result is an immutable rewrite outcome. Replacement takes the place of
// Anchor; Tree is Original with that substitution applied.
type Result struct {
	Original    *syntax.Tree
	Anchor      *syntax.Node
	Replacement *syntax.Node
	Tree        *syntax.Tree
}

// Edit is a single text replacement against the original source.
type Edit struct {
	Span    syntax.Span `json:"span"`
	NewText string      `json:"new_text"`
}

// Apply returns text with the edit applied.
func (edit Edit) Apply(text string) (string, error) {
	if edit.Span.Start < 0 || edit.Span.End() > len(text) {
		return "", fmt.Errorf("edit %s outside text of length %d: %w", edit.Span, len(text), ErrEditOutOfRange)
	}

	return text[:edit.Span.Start] + edit.NewText + text[edit.Span.End():], nil
}

func newResult(original *syntax.Tree, anchor, replacement *syntax.Node) (*Result, error) {
	updated, err := original.WithNodeReplaced(anchor, replacement)
	if err != nil {
		return nil, fmt.Errorf("replace %s: %w", anchor.Kind(), err)
	}

	return &Result{
		Original:    original,
		Anchor:      anchor,
		Replacement: replacement,
		Tree:        updated,
	}, nil
}

// Edit returns the text edit equivalent to the rewrite: the full span of the
// anchor in the original text and the full text of the replacement.
func (result *Result) Edit() Edit {
	return Edit{
		Span:    result.Original.FullSpan(result.Anchor),
		NewText: result.Replacement.FullText(),
	}
}

// Formatted runs the whitespace normalization over the replacement and
// returns the equivalent result with formatter annotations cleared.
func (result *Result) Formatted() (*Result, error) {
	formatted := syntax.Format(syntax.NewTree(result.Replacement)).Root()
	if formatted == result.Replacement {
		return result, nil
	}

	return newResult(result.Original, result.Anchor, formatted)
}

// RenameSpans returns the spans, in the new tree, of tokens marked for
// renaming.
func (result *Result) RenameSpans() []syntax.Span {
	marked := result.Tree.AnnotatedNodes(syntax.AnnotationRename)
	spans := make([]syntax.Span, 0, len(marked))

	for _, node := range marked {
		spans = append(spans, result.Tree.Span(node))
	}

	return spans
}

func requireNodes(nodes ...*syntax.Node) error {
	for _, node := range nodes {
		if node == nil || node.IsMissing() {
			return ErrMissingNode
		}
	}

	return nil
}
