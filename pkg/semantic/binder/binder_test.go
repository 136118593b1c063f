package binder_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/codefix/pkg/semantic"
	"github.com/Sumatoshi-tech/codefix/pkg/semantic/binder"
	"github.com/Sumatoshi-tech/codefix/pkg/syntax"
	"github.com/Sumatoshi-tech/codefix/pkg/syntax/csharp"
)

func bind(t *testing.T, members ...*syntax.Node) (*syntax.Tree, *binder.Binder) {
	t.Helper()

	env, err := binder.DefaultEnvironment()
	require.NoError(t, err)

	tree := syntax.NewTree(syntax.CompilationUnit(members...))

	return tree, env.Bind(tree)
}

// sampleClass builds:
//
//	class C {
//	  List<int> items;
//	  public void M(string s, int[] values) {
//	    foreach (char c in s) { Use(c); }
//	    var n = s.Length;
//	    int i = 0;
//	    var first = s.First();
//	  }
//	  public void N() { return; }
//	}
func sampleClass() *syntax.Node {
	loop := syntax.ForEachStatement(
		syntax.PredefinedType("char"), "c", syntax.IdentifierName("s"),
		syntax.Block(syntax.ExpressionStatement(syntax.Invocation(syntax.IdentifierName("Use"), syntax.IdentifierName("c")))))

	body := syntax.Block(
		loop,
		syntax.LocalDeclarationStatement(syntax.VariableDeclaration(syntax.Var(),
			syntax.VariableDeclarator("n", syntax.MemberAccess(syntax.IdentifierName("s"), "Length")))),
		syntax.LocalDeclarationStatement(syntax.VariableDeclaration(syntax.PredefinedType("int"),
			syntax.VariableDeclarator("i", syntax.NumericLiteral(0)))),
		syntax.LocalDeclarationStatement(syntax.VariableDeclaration(syntax.Var(),
			syntax.VariableDeclarator("first", syntax.Invocation(syntax.MemberAccess(syntax.IdentifierName("s"), "First"))))),
	)

	method := syntax.MethodDeclaration([]string{"public"}, syntax.PredefinedType("void"), "M",
		[]*syntax.Node{
			syntax.Parameter(syntax.PredefinedType("string"), "s"),
			syntax.Parameter(syntax.ArrayType(syntax.PredefinedType("int")), "values"),
		}, body)

	other := syntax.MethodDeclaration([]string{"public"}, syntax.PredefinedType("void"), "N", nil,
		syntax.Block(syntax.ReturnStatement(nil)))

	field := syntax.FieldDeclaration(nil, syntax.GenericName("List", syntax.PredefinedType("int")), "items", nil)

	return syntax.ClassDeclaration(nil, "C", nil, field, method, other)
}

func findNamed(t *testing.T, tree *syntax.Tree, kind syntax.Kind, text string) []*syntax.Node {
	t.Helper()

	return syntax.Find(tree.Root(), func(candidate *syntax.Node) bool {
		return candidate.Is(kind) && candidate.Text() == text
	})
}

func TestBinder_ForEachVariable_ResolvesBySymbol(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tree, oracle := bind(t, sampleClass())

	loop := syntax.Find(tree.Root(), syntax.IsKind(syntax.KindForEachStatement))[0]
	declared, err := oracle.DeclaredSymbol(ctx, loop)
	require.NoError(t, err)
	require.NotNil(t, declared)
	assert.Equal(t, "c", declared.Name())
	assert.Equal(t, semantic.SymbolForEachVariable, declared.Kind())
	assert.Equal(t, "char", declared.Type().Name())

	references := findNamed(t, tree, syntax.KindIdentifierName, "c")
	require.Len(t, references, 2)

	for _, reference := range references {
		resolved, resolveErr := oracle.ResolveSymbol(ctx, reference)
		require.NoError(t, resolveErr)
		assert.True(t, oracle.SymbolsEqual(declared, resolved))
	}
}

func TestBinder_ResolveType_Collections(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tree, oracle := bind(t, sampleClass())

	loop := syntax.Find(tree.Root(), syntax.IsKind(syntax.KindForEachStatement))[0]
	parts := syntax.ForEachStatementParts(loop)

	stringType, err := oracle.ResolveType(ctx, parts.Expression)
	require.NoError(t, err)
	assert.True(t, stringType.IsTextual())
	assert.True(t, stringType.IsArrayLike())
	assert.Equal(t, "char", stringType.ElementType().Name())
	assert.Len(t, stringType.MembersNamed(semantic.IndexerName), 1)

	arrayParam := syntax.Find(tree.Root(), syntax.IsKind(syntax.KindArrayType))[0]
	arrayType, err := oracle.ResolveType(ctx, arrayParam)
	require.NoError(t, err)
	assert.True(t, arrayType.IsArray())
	assert.Equal(t, "int[]", arrayType.Name())
	assert.True(t, arrayType.Implements(semantic.CapabilityList))

	list := syntax.Find(tree.Root(), syntax.IsKind(syntax.KindGenericName))[0]
	listType, err := oracle.ResolveType(ctx, list)
	require.NoError(t, err)
	assert.Equal(t, "List<int>", listType.Name())
	assert.True(t, listType.Implements(semantic.CapabilityList))
	assert.False(t, listType.IsArrayLike())

	indexers := listType.MembersNamed(semantic.IndexerName)
	require.Len(t, indexers, 1)
	assert.Equal(t, "int", indexers[0].Type().Name())
	require.Len(t, indexers[0].Parameters(), 1)
	assert.True(t, indexers[0].Parameters()[0].IsIntegral())
}

func TestBinder_Var_InfersFromInitializer(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tree, oracle := bind(t, sampleClass())

	vars := findNamed(t, tree, syntax.KindIdentifierName, "var")
	require.Len(t, vars, 2)

	lengthType, err := oracle.ResolveType(ctx, vars[0])
	require.NoError(t, err)
	assert.Equal(t, "int", lengthType.Name())

	firstType, err := oracle.ResolveType(ctx, vars[1])
	require.NoError(t, err)
	assert.Equal(t, "char", firstType.Name())
}

func TestBinder_ExtensionMethod_Resolves(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tree, oracle := bind(t, sampleClass())

	invocation := syntax.Find(tree.Root(), func(candidate *syntax.Node) bool {
		return candidate.Is(syntax.KindInvocationExpression) && candidate.Text() == "s.First()"
	})
	require.Len(t, invocation, 1)

	sym, err := oracle.ResolveSymbol(ctx, invocation[0])
	require.NoError(t, err)
	require.NotNil(t, sym)
	assert.True(t, sym.IsExtension())
	assert.Equal(t, "System.Linq.Enumerable", sym.ContainingTypeName())
	assert.Equal(t, "First", sym.Name())
}

func TestBinder_Unresolved_IsErrorType(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tree, oracle := bind(t, sampleClass())

	use := findNamed(t, tree, syntax.KindIdentifierName, "Use")[0]

	sym, err := oracle.ResolveSymbol(ctx, use)
	require.NoError(t, err)
	assert.Nil(t, sym)

	typ, err := oracle.ResolveType(ctx, use)
	require.NoError(t, err)
	assert.True(t, typ.IsError())
	assert.False(t, semantic.IsUsable(typ))
	assert.False(t, typ.Equal(typ))
}

func TestBinder_UniqueName(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tree, oracle := bind(t, sampleClass())

	loop := syntax.Find(tree.Root(), syntax.IsKind(syntax.KindForEachStatement))[0]
	inM := tree.Span(loop).Start

	name, err := oracle.UniqueName(ctx, "i", inM)
	require.NoError(t, err)
	assert.Equal(t, "i2", name)

	name, err = oracle.UniqueName(ctx, "items", inM)
	require.NoError(t, err)
	assert.Equal(t, "items2", name)

	ret := syntax.Find(tree.Root(), syntax.IsKind(syntax.KindReturnStatement))[0]
	name, err = oracle.UniqueName(ctx, "i", tree.Span(ret).Start)
	require.NoError(t, err)
	assert.Equal(t, "i", name)
}

func TestBinder_IsAccessible_PrivateIndexer(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	bag := syntax.ClassDeclaration(nil, "Bag", []*syntax.Node{syntax.GenericName("ICollection", syntax.PredefinedType("int"))},
		syntax.IndexerDeclaration([]string{"private"}, syntax.PredefinedType("int"),
			[]*syntax.Node{syntax.Parameter(syntax.PredefinedType("int"), "index")}, "get"),
		syntax.MethodDeclaration(nil, syntax.PredefinedType("void"), "Inside", nil, syntax.Block(syntax.ReturnStatement(nil))))

	user := syntax.ClassDeclaration(nil, "User", nil,
		syntax.MethodDeclaration(nil, syntax.PredefinedType("void"), "Outside",
			[]*syntax.Node{syntax.Parameter(syntax.IdentifierName("Bag"), "bag")},
			syntax.Block(syntax.ReturnStatement(nil))))

	tree, oracle := bind(t, bag, user)

	param := syntax.Find(tree.Root(), syntax.IsKind(syntax.KindParameter))[1]
	typeSyntax, _ := syntax.ParameterParts(param)

	bagType, err := oracle.ResolveType(ctx, typeSyntax)
	require.NoError(t, err)
	require.False(t, bagType.IsError())
	assert.Equal(t, "int", bagType.ElementType().Name())
	assert.False(t, bagType.Implements(semantic.CapabilityCollection))

	indexers := bagType.MembersNamed(semantic.IndexerName)
	require.Len(t, indexers, 1)
	assert.Equal(t, semantic.AccessPrivate, indexers[0].Accessibility())

	returns := syntax.Find(tree.Root(), syntax.IsKind(syntax.KindReturnStatement))
	require.Len(t, returns, 2)

	inside, err := oracle.IsAccessible(ctx, tree.Span(returns[0]).Start, indexers[0])
	require.NoError(t, err)
	assert.True(t, inside)

	outside, err := oracle.IsAccessible(ctx, tree.Span(returns[1]).Start, indexers[0])
	require.NoError(t, err)
	assert.False(t, outside)
}

func TestBinder_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tree, oracle := bind(t, sampleClass())

	_, err := oracle.ResolveType(ctx, tree.Root())
	require.ErrorIs(t, err, context.Canceled)

	_, err = oracle.UniqueName(ctx, "i", 0)
	require.ErrorIs(t, err, context.Canceled)
}

func parseAndBind(t *testing.T, source string) (*syntax.Tree, semantic.Oracle) {
	t.Helper()

	parser, err := csharp.NewParser()
	require.NoError(t, err)

	tree, err := parser.Parse(context.Background(), []byte(source))
	require.NoError(t, err)

	env, err := binder.DefaultEnvironment()
	require.NoError(t, err)

	return tree, env.Bind(tree)
}

func TestBinder_NestedNamesDoNotBindToLoopVariable(t *testing.T) {
	t.Parallel()

	const source = `class P
{
    public char c;
}

class C
{
    char c;

    void Use(params object[] values) { }

    void Take(char c) { }

    void M(string s)
    {
        foreach (char c in s)
        {
            Use(c);
            %s
        }
    }
}
`

	tests := []struct {
		name string
		body string
		// kind is what the last c in body resolves to.
		kind    semantic.SymbolKind
		unbound bool
	}{
		{name: "this member", body: "Use(this.c);", kind: semantic.SymbolField},
		{name: "lambda parameter", body: "Use((char c) => c);", kind: semantic.SymbolParameter},
		{name: "implicit lambda parameter", body: "Use(c => c);", kind: semantic.SymbolParameter},
		{name: "anonymous method parameter", body: "Use(delegate (char c) { return c; });", kind: semantic.SymbolParameter},
		{name: "local function parameter", body: "int F(int c) { return c; }", kind: semantic.SymbolParameter},
		{name: "named argument", body: "Take(c: 'x');", unbound: true},
		{name: "object initializer", body: "Use(new P { c = 'x' });", kind: semantic.SymbolField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			tree, oracle := parseAndBind(t, fmt.Sprintf(source, tt.body))

			loop := syntax.Find(tree.Root(), syntax.IsKind(syntax.KindForEachStatement))[0]
			declared, err := oracle.DeclaredSymbol(ctx, loop)
			require.NoError(t, err)

			names := findNamed(t, tree, syntax.KindIdentifierName, "c")
			require.NotEmpty(t, names)

			loopReferences := 0

			for _, name := range names {
				resolved, resolveErr := oracle.ResolveSymbol(ctx, name)
				require.NoError(t, resolveErr)

				if resolved != nil && oracle.SymbolsEqual(declared, resolved) {
					loopReferences++
				}
			}

			assert.Equal(t, 2, loopReferences, "declaration and Use(c) only")

			last, err := oracle.ResolveSymbol(ctx, names[len(names)-1])
			require.NoError(t, err)

			if tt.unbound {
				assert.Nil(t, last)

				return
			}

			require.NotNil(t, last)
			assert.Equal(t, tt.kind, last.Kind())
		})
	}
}

func TestBinder_DictionaryElementIsKeyValuePair(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tree, oracle := parseAndBind(t, `using System.Collections.Generic;

class C
{
    void M(Dictionary<string, int> counts)
    {
        foreach (var entry in counts)
        {
            var key = entry.Key;
        }
    }
}
`)

	loop := syntax.Find(tree.Root(), syntax.IsKind(syntax.KindForEachStatement))[0]
	declared, err := oracle.DeclaredSymbol(ctx, loop)
	require.NoError(t, err)
	require.NotNil(t, declared)
	assert.Equal(t, "KeyValuePair<string, int>", declared.Type().Name())

	access := syntax.Find(tree.Root(), syntax.IsKind(syntax.KindMemberAccessExpression))[0]
	keyType, err := oracle.ResolveType(ctx, access)
	require.NoError(t, err)
	assert.Equal(t, "string", keyType.Name())
}
