// Package match recognizes structural patterns in syntax trees and
// decomposes them into info records. Matchers are pure: they never consult
// semantic information and never fail, they only decline.
package match

import (
	"github.com/Sumatoshi-tech/codefix/pkg/syntax"
)

// Options tune how strictly a matcher checks the roles it extracts.
type Options struct {
	// AllowMissing accepts roles that are absent or synthesized by the
	// parser's error recovery.
	AllowMissing bool
	// WalkDownParentheses strips redundant parentheses around expressions.
	WalkDownParentheses bool
}

// DefaultOptions returns the options matchers use unless told otherwise.
func DefaultOptions() Options {
	return Options{WalkDownParentheses: true}
}

func (opts Options) accepts(node *syntax.Node) bool {
	return opts.AllowMissing || (node != nil && !node.IsMissing())
}

// SimpleIfElse is an if statement with a non-if else branch.
type SimpleIfElse struct {
	If        *syntax.Node
	Condition *syntax.Node
	WhenTrue  *syntax.Node
	WhenFalse *syntax.Node
}

// TrySimpleIfElse matches an if statement that is not itself an else-if,
// whose else branch exists and is not an if statement, and whose branches
// and condition are complete.
func TrySimpleIfElse(tree *syntax.Tree, ifStatement *syntax.Node, opts Options) (SimpleIfElse, bool) {
	if !ifStatement.Is(syntax.KindIfStatement) {
		return SimpleIfElse{}, false
	}

	if syntax.ElseStatement(tree, ifStatement) != nil {
		return SimpleIfElse{}, false
	}

	parts := syntax.IfStatementParts(ifStatement)
	if parts.ElseKeyword == nil && parts.ElseClause == nil {
		return SimpleIfElse{}, false
	}

	whenFalse := parts.Else
	if !opts.accepts(whenFalse) || whenFalse == nil || whenFalse.Is(syntax.KindIfStatement) {
		return SimpleIfElse{}, false
	}

	whenTrue := parts.Statement
	if !opts.accepts(whenTrue) {
		return SimpleIfElse{}, false
	}

	condition := parts.Condition
	if condition != nil {
		condition = syntax.WalkDownParentheses(condition, opts.WalkDownParentheses)
	}

	if !opts.accepts(condition) {
		return SimpleIfElse{}, false
	}

	return SimpleIfElse{
		If:        ifStatement,
		Condition: condition,
		WhenTrue:  whenTrue,
		WhenFalse: whenFalse,
	}, true
}

// ForEach is a decomposed foreach statement.
type ForEach struct {
	Statement  *syntax.Node
	Type       *syntax.Node
	Identifier *syntax.Node
	Expression *syntax.Node
	Body       *syntax.Node
}

// Name returns the declared iteration variable name.
func (info ForEach) Name() string {
	return info.Identifier.Text()
}

// TryForEach matches a foreach statement with a typed single variable, a
// collection expression and a body.
func TryForEach(_ *syntax.Tree, node *syntax.Node) (ForEach, bool) {
	if !node.Is(syntax.KindForEachStatement) {
		return ForEach{}, false
	}

	parts := syntax.ForEachStatementParts(node)

	for _, role := range []*syntax.Node{parts.Type, parts.Identifier, parts.Expression, parts.Statement} {
		if role == nil || role.IsMissing() {
			return ForEach{}, false
		}
	}

	if !parts.Identifier.Is(syntax.KindIdentifierName) {
		return ForEach{}, false
	}

	return ForEach{
		Statement:  node,
		Type:       parts.Type,
		Identifier: parts.Identifier,
		Expression: parts.Expression,
		Body:       parts.Statement,
	}, true
}

// MemberDeclaration is a type member with its modifiers.
type MemberDeclaration struct {
	Declaration *syntax.Node
	Modifiers   []*syntax.Node
	Name        *syntax.Node
}

// HasModifier reports whether the member carries the modifier keyword.
func (info MemberDeclaration) HasModifier(keyword string) bool {
	return syntax.HasModifier(info.Declaration, keyword)
}

// TryMemberDeclaration matches a member declaration of a type.
func TryMemberDeclaration(_ *syntax.Tree, node *syntax.Node) (MemberDeclaration, bool) {
	if !node.Kind().IsMemberDeclaration() {
		return MemberDeclaration{}, false
	}

	return MemberDeclaration{
		Declaration: node,
		Modifiers:   syntax.Modifiers(node),
		Name:        syntax.MemberDeclarationParts(node).Name,
	}, true
}

// EnumerableCall is an invocation of the form receiver.Name(arguments).
type EnumerableCall struct {
	Invocation   *syntax.Node
	MemberAccess *syntax.Node
	Receiver     *syntax.Node
	Name         *syntax.Node
	Arguments    []*syntax.Node
}

// MethodName returns the invoked method name.
func (info EnumerableCall) MethodName() string {
	return info.Name.Text()
}

// TryEnumerableCall matches a member-access invocation whose roles are all
// present.
func TryEnumerableCall(_ *syntax.Tree, invocation *syntax.Node) (EnumerableCall, bool) {
	if !invocation.Is(syntax.KindInvocationExpression) {
		return EnumerableCall{}, false
	}

	var callee, argumentList *syntax.Node

	for _, child := range invocation.ChildNodes() {
		switch {
		case child.Is(syntax.KindArgumentList):
			argumentList = child
		case callee == nil:
			callee = child
		}
	}

	if !callee.Is(syntax.KindMemberAccessExpression) || argumentList == nil || argumentList.IsMissing() {
		return EnumerableCall{}, false
	}

	nodes := callee.ChildNodes()
	if len(nodes) != 2 || nodes[0].IsMissing() || !nodes[1].Is(syntax.KindIdentifierName) || nodes[1].IsMissing() {
		return EnumerableCall{}, false
	}

	if callee.ChildToken(".") == nil {
		return EnumerableCall{}, false
	}

	arguments := syntax.Arguments(argumentList)
	for _, argument := range arguments {
		if argument == nil || argument.IsMissing() {
			return EnumerableCall{}, false
		}
	}

	return EnumerableCall{
		Invocation:   invocation,
		MemberAccess: callee,
		Receiver:     nodes[0],
		Name:         nodes[1],
		Arguments:    arguments,
	}, true
}
