package csharp_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/codefix/pkg/syntax"
	"github.com/Sumatoshi-tech/codefix/pkg/syntax/csharp"
)

const loopSource = `class C
{
    // Prints every character.
    void M(string s)
    {
        foreach (char c in s) // walk
        {
            System.Console.WriteLine(c);
        }
    }
}
`

func parse(t *testing.T, source string) *syntax.Tree {
	t.Helper()

	parser, err := csharp.NewParser()
	require.NoError(t, err)

	tree, err := parser.Parse(context.Background(), []byte(source))
	require.NoError(t, err)

	return tree
}

func TestParse_RoundTripsText(t *testing.T) {
	t.Parallel()

	sources := map[string]string{
		"loop":     loopSource,
		"empty":    "",
		"crlf":     "class C\r\n{\r\n    int x;\r\n}\r\n",
		"comments": "/* head */ class C { /* inner */ } // tail\n",
		"broken":   "class C { void M( { foreach ( }\n",
		"if-else":  "class C { int M(bool b) { if (b) return 1; else return 2; } }",
	}

	for name, source := range sources {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			tree := parse(t, source)
			assert.Equal(t, source, tree.Text())
			assert.Equal(t, syntax.KindCompilationUnit, tree.Root().Kind())
		})
	}
}

func TestParse_ForEachShape(t *testing.T) {
	t.Parallel()

	tree := parse(t, loopSource)

	loops := syntax.Find(tree.Root(), syntax.IsKind(syntax.KindForEachStatement))
	require.Len(t, loops, 1)

	parts := syntax.ForEachStatementParts(loops[0])
	require.NotNil(t, parts.Type)
	require.NotNil(t, parts.Identifier)
	require.NotNil(t, parts.Expression)
	require.NotNil(t, parts.Statement)

	assert.Equal(t, "char", parts.Type.Text())
	assert.Equal(t, "c", parts.Identifier.Text())
	assert.Equal(t, "s", parts.Expression.Text())
	assert.Equal(t, syntax.KindBlock, parts.Statement.Kind())
}

func TestParse_CommentsBecomeTrivia(t *testing.T) {
	t.Parallel()

	tree := parse(t, loopSource)

	methods := syntax.Find(tree.Root(), syntax.IsKind(syntax.KindMethodDeclaration))
	require.Len(t, methods, 1)
	assert.Contains(t, string(methods[0].LeadingTrivia()), "// Prints every character.")

	loop := syntax.Find(tree.Root(), syntax.IsKind(syntax.KindForEachStatement))[0]
	closeParen := loop.ChildToken(")")
	require.NotNil(t, closeParen)
	assert.Equal(t, syntax.Trivia(" // walk\n"), closeParen.TrailingTrivia())

	for _, token := range tree.Tokens() {
		assert.NotContains(t, token.Text(), "//")
	}
}

func TestParse_SpansMatchSource(t *testing.T) {
	t.Parallel()

	tree := parse(t, loopSource)
	text := tree.Text()

	for _, name := range syntax.Find(tree.Root(), syntax.IsKind(syntax.KindIdentifierName)) {
		span := tree.Span(name)
		assert.Equal(t, name.Text(), text[span.Start:span.End()])
	}

	pos := strings.Index(loopSource, "WriteLine")
	token := tree.FindToken(pos)
	assert.Equal(t, "WriteLine", token.Text())
}

const functionsSource = `class C
{
    int this[int i] => i;

    void M(string s)
    {
        Use(this.s, base.s);
        Take(c: s);
        Func<char, char> f = c => c;
        Func<char, bool> g = (char c) => c == 'a';
        Func<int, int> h = delegate (int n) { return n; };
        int Twice(int n) { return n * 2; }
    }
}
`

func TestParse_ThisIsAnExpression(t *testing.T) {
	t.Parallel()

	tree := parse(t, functionsSource)

	receivers := syntax.Find(tree.Root(), syntax.IsKind(syntax.KindThisExpression))
	require.Len(t, receivers, 1, "the indexer keyword stays a token")
	assert.Equal(t, "this", receivers[0].Text())

	indexer := syntax.Find(tree.Root(), syntax.IsKind(syntax.KindIndexerDeclaration))
	require.Len(t, indexer, 1)
	assert.NotNil(t, indexer[0].ChildToken("this"))
}

func TestParse_NamedArgument(t *testing.T) {
	t.Parallel()

	tree := parse(t, functionsSource)

	var named []*syntax.Node

	for _, argument := range syntax.Find(tree.Root(), syntax.IsKind(syntax.KindArgument)) {
		if name, _ := syntax.ArgumentParts(argument); name != nil {
			named = append(named, argument)
		}
	}

	require.Len(t, named, 1)

	name, expression := syntax.ArgumentParts(named[0])
	assert.Equal(t, "c", name.Text())
	assert.Equal(t, "s", expression.Text())
}

func TestParse_FunctionShapes(t *testing.T) {
	t.Parallel()

	tree := parse(t, functionsSource)

	anonymous := syntax.Find(tree.Root(), syntax.IsAnonymousFunction)
	require.Len(t, anonymous, 3)

	tests := []struct {
		params []string
		body   string
	}{
		{params: []string{"c"}, body: "c"},
		{params: []string{"char c"}, body: "c == 'a'"},
		{params: []string{"int n"}, body: "{ return n; }"},
	}

	for idx, tt := range tests {
		parameters, body := syntax.AnonymousFunctionParts(anonymous[idx])

		var texts []string
		for _, param := range parameters {
			texts = append(texts, param.Text())
		}

		assert.Equal(t, tt.params, texts)
		require.NotNil(t, body)
		assert.Equal(t, tt.body, body.Text())
	}

	local := syntax.Find(tree.Root(), syntax.IsLocalFunction)
	require.Len(t, local, 1)

	parts := syntax.MemberDeclarationParts(local[0])
	assert.Equal(t, "Twice", parts.Name.Text())
	assert.Equal(t, "int", parts.Type.Text())
	assert.Len(t, syntax.Parameters(parts.Parameters), 1)
	assert.Equal(t, syntax.KindBlock, parts.Body.Kind())
}
