package match_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/codefix/pkg/match"
	"github.com/Sumatoshi-tech/codefix/pkg/syntax"
)

func methodTree(statements ...*syntax.Node) *syntax.Tree {
	method := syntax.MethodDeclaration([]string{"public"}, syntax.PredefinedType("void"), "M",
		[]*syntax.Node{syntax.Parameter(syntax.PredefinedType("bool"), "b")},
		syntax.Block(statements...))

	return syntax.NewTree(syntax.CompilationUnit(syntax.ClassDeclaration(nil, "C", nil, method)))
}

func call(name string) *syntax.Node {
	return syntax.ExpressionStatement(syntax.Invocation(syntax.IdentifierName(name)))
}

func firstOfKind(t *testing.T, tree *syntax.Tree, kind syntax.Kind) *syntax.Node {
	t.Helper()

	found := syntax.Find(tree.Root(), syntax.IsKind(kind))
	require.NotEmpty(t, found)

	return found[0]
}

func TestTrySimpleIfElse_Matches(t *testing.T) {
	t.Parallel()

	condition := syntax.Parenthesized(syntax.IdentifierName("b"))
	tree := methodTree(syntax.IfStatement(condition, syntax.Block(call("A")), syntax.Block(call("B"))))
	ifStatement := firstOfKind(t, tree, syntax.KindIfStatement)

	info, ok := match.TrySimpleIfElse(tree, ifStatement, match.DefaultOptions())
	require.True(t, ok)
	assert.Same(t, ifStatement, info.If)
	assert.Equal(t, "b", info.Condition.Text())
	assert.Equal(t, "{ A(); }", info.WhenTrue.Text())
	assert.Equal(t, "{ B(); }", info.WhenFalse.Text())

	again, ok := match.TrySimpleIfElse(tree, ifStatement, match.DefaultOptions())
	require.True(t, ok)
	assert.True(t, info == again)
}

func TestTrySimpleIfElse_KeepsParenthesesWhenAsked(t *testing.T) {
	t.Parallel()

	condition := syntax.Parenthesized(syntax.IdentifierName("b"))
	tree := methodTree(syntax.IfStatement(condition, call("A"), call("B")))
	ifStatement := firstOfKind(t, tree, syntax.KindIfStatement)

	info, ok := match.TrySimpleIfElse(tree, ifStatement, match.Options{})
	require.True(t, ok)
	assert.Equal(t, syntax.KindParenthesizedExpression, info.Condition.Kind())
}

func TestTrySimpleIfElse_Declines(t *testing.T) {
	t.Parallel()

	b := func() *syntax.Node { return syntax.IdentifierName("b") }

	tests := []struct {
		name      string
		statement *syntax.Node
		pick      func(*syntax.Tree) *syntax.Node
	}{
		{
			name:      "no else",
			statement: syntax.IfStatement(b(), call("A"), nil),
		},
		{
			name:      "else if",
			statement: syntax.IfStatement(b(), call("A"), syntax.IfStatement(b(), call("B"), call("C"))),
		},
		{
			name:      "nested if is the else branch",
			statement: syntax.IfStatement(b(), call("A"), syntax.IfStatement(b(), call("B"), call("C"))),
			pick: func(tree *syntax.Tree) *syntax.Node {
				return syntax.Find(tree.Root(), syntax.IsKind(syntax.KindIfStatement))[1]
			},
		},
		{
			name: "missing condition",
			statement: syntax.IfStatement(syntax.NewNode(syntax.KindIdentifierName,
				syntax.NewMissingToken(syntax.KindIdentifierToken)), call("A"), call("B")),
		},
		{
			name: "missing else statement",
			statement: syntax.IfStatement(b(), call("A"), syntax.NewNode(syntax.KindExpressionStatement,
				syntax.NewMissingToken(syntax.KindIdentifierToken), syntax.NewMissingToken(syntax.KindPunctuationToken))),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tree := methodTree(tt.statement)

			target := firstOfKind(t, tree, syntax.KindIfStatement)
			if tt.pick != nil {
				target = tt.pick(tree)
			}

			_, ok := match.TrySimpleIfElse(tree, target, match.DefaultOptions())
			assert.False(t, ok)
		})
	}
}

func TestTrySimpleIfElse_AllowMissing(t *testing.T) {
	t.Parallel()

	missing := syntax.NewNode(syntax.KindIdentifierName, syntax.NewMissingToken(syntax.KindIdentifierToken))
	tree := methodTree(syntax.IfStatement(missing, call("A"), call("B")))
	ifStatement := firstOfKind(t, tree, syntax.KindIfStatement)

	info, ok := match.TrySimpleIfElse(tree, ifStatement, match.Options{AllowMissing: true, WalkDownParentheses: true})
	require.True(t, ok)
	assert.True(t, info.Condition.IsMissing())
}

func TestTryForEach(t *testing.T) {
	t.Parallel()

	loop := syntax.ForEachStatement(syntax.PredefinedType("char"), "c", syntax.IdentifierName("s"), syntax.Block(call("A")))
	tree := methodTree(loop)
	node := firstOfKind(t, tree, syntax.KindForEachStatement)

	info, ok := match.TryForEach(tree, node)
	require.True(t, ok)
	assert.Equal(t, "char", info.Type.Text())
	assert.Equal(t, "c", info.Name())
	assert.Equal(t, "s", info.Expression.Text())
	assert.Equal(t, syntax.KindBlock, info.Body.Kind())

	again, ok := match.TryForEach(tree, node)
	require.True(t, ok)
	assert.True(t, info == again)

	_, ok = match.TryForEach(tree, firstOfKind(t, tree, syntax.KindBlock))
	assert.False(t, ok)
}

func TestTryMemberDeclaration(t *testing.T) {
	t.Parallel()

	tree := methodTree(call("A"))
	method := firstOfKind(t, tree, syntax.KindMethodDeclaration)

	info, ok := match.TryMemberDeclaration(tree, method)
	require.True(t, ok)
	assert.Equal(t, "M", info.Name.Text())
	assert.True(t, info.HasModifier("public"))
	assert.False(t, info.HasModifier("new"))
	require.Len(t, info.Modifiers, 1)

	_, ok = match.TryMemberDeclaration(tree, firstOfKind(t, tree, syntax.KindBlock))
	assert.False(t, ok)
}

func TestTryEnumerableCall(t *testing.T) {
	t.Parallel()

	invocation := syntax.Invocation(syntax.MemberAccess(syntax.IdentifierName("items"), "ElementAt"), syntax.NumericLiteral(2))
	tree := methodTree(syntax.ExpressionStatement(invocation))
	node := firstOfKind(t, tree, syntax.KindInvocationExpression)

	info, ok := match.TryEnumerableCall(tree, node)
	require.True(t, ok)
	assert.Equal(t, "items", info.Receiver.Text())
	assert.Equal(t, "ElementAt", info.MethodName())
	require.Len(t, info.Arguments, 1)
	assert.Equal(t, "2", info.Arguments[0].Text())

	_, ok = match.TryEnumerableCall(tree, firstOfKind(t, tree, syntax.KindIdentifierName))
	assert.False(t, ok)

	plain := methodTree(call("A"))
	_, ok = match.TryEnumerableCall(plain, firstOfKind(t, plain, syntax.KindInvocationExpression))
	assert.False(t, ok)
}
