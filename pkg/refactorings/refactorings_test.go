package refactorings_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/codefix/pkg/engine"
	"github.com/Sumatoshi-tech/codefix/pkg/refactorings"
	"github.com/Sumatoshi-tech/codefix/pkg/semantic"
	"github.com/Sumatoshi-tech/codefix/pkg/semantic/binder"
	"github.com/Sumatoshi-tech/codefix/pkg/syntax"
	"github.com/Sumatoshi-tech/codefix/pkg/syntax/csharp"
)

func use(expression *syntax.Node) *syntax.Node {
	return syntax.ExpressionStatement(syntax.Invocation(syntax.IdentifierName("Use"), expression))
}

func call(name string) *syntax.Node {
	return syntax.ExpressionStatement(syntax.Invocation(syntax.IdentifierName(name)))
}

// method builds: class C { void M(P items) { statements } } plus extra types.
func method(paramType *syntax.Node, statements []*syntax.Node, extra ...*syntax.Node) *syntax.Tree {
	m := syntax.MethodDeclaration(nil, syntax.PredefinedType("void"), "M",
		[]*syntax.Node{syntax.Parameter(paramType, "items")}, syntax.Block(statements...))
	members := append([]*syntax.Node{syntax.ClassDeclaration(nil, "C", nil, m)}, extra...)

	return syntax.NewTree(syntax.CompilationUnit(members...))
}

func loop(typeSyntax *syntax.Node, name string) *syntax.Node {
	return syntax.ForEachStatement(typeSyntax, name, syntax.IdentifierName("items"), syntax.Block(use(syntax.IdentifierName(name))))
}

func list(t *testing.T, tree *syntax.Tree, req engine.Request, cfg engine.Config) engine.Result {
	t.Helper()

	env, err := binder.DefaultEnvironment()
	require.NoError(t, err)

	registry, err := refactorings.NewRegistry()
	require.NoError(t, err)

	result, err := engine.New(registry).ListActions(context.Background(),
		engine.Document{Tree: tree, Oracle: env.Bind(tree)}, req, cfg)
	require.NoError(t, err)
	require.Empty(t, result.Faults)

	return result
}

func at(tree *syntax.Tree, node *syntax.Node) engine.Request {
	return engine.Request{Span: syntax.Span{Start: tree.Span(node).Start}}
}

func first(t *testing.T, tree *syntax.Tree, kind syntax.Kind) *syntax.Node {
	t.Helper()

	found := syntax.Find(tree.Root(), syntax.IsKind(kind))
	require.NotEmpty(t, found)

	return found[0]
}

func titles(result engine.Result) []string {
	out := make([]string, 0, len(result.Actions))
	for _, action := range result.Actions {
		out = append(out, action.Title())
	}

	return out
}

func keys(result engine.Result) []string {
	out := make([]string, 0, len(result.Actions))
	for _, action := range result.Actions {
		out = append(out, action.EquivalenceKey())
	}

	return out
}

func apply(t *testing.T, result engine.Result, key string) string {
	t.Helper()

	action, ok := result.Find(key)
	require.True(t, ok, "action %s not offered; have %v", key, keys(result))

	applied, err := action.Apply(context.Background())
	require.NoError(t, err)

	formatted, err := applied.Formatted()
	require.NoError(t, err)

	return formatted.Tree.Text()
}

func TestReplaceForEachWithFor_OffersBothDirections(t *testing.T) {
	t.Parallel()

	tree := method(syntax.PredefinedType("string"), []*syntax.Node{loop(syntax.PredefinedType("char"), "c")})
	result := list(t, tree, at(tree, first(t, tree, syntax.KindForEachStatement)), engine.DefaultConfig())

	assert.Equal(t, []string{
		"Replace 'foreach' with 'for'",
		"Replace 'foreach' with 'for' and reverse loop",
	}, titles(result))
	assert.Equal(t, []string{"ReplaceForEachWithFor.ascending", "ReplaceForEachWithFor.descending"}, keys(result))

	ascending := apply(t, result, "ReplaceForEachWithFor.ascending")
	assert.Contains(t, ascending, "for (int i = 0; i < items.Length; i++) { Use(items[i]); }")

	descending := apply(t, result, "ReplaceForEachWithFor.descending")
	assert.Contains(t, descending, "for (int i = items.Length - 1; i >= 0; i--) { Use(items[i]); }")

	assert.Contains(t, tree.Text(), "foreach (char c in items)")
}

func TestReplaceForEachWithFor_RejectsUnknownType(t *testing.T) {
	t.Parallel()

	tree := method(syntax.IdentifierName("Mystery"), []*syntax.Node{loop(syntax.PredefinedType("int"), "x")})
	result := list(t, tree, at(tree, first(t, tree, syntax.KindForEachStatement)), engine.DefaultConfig())

	assert.Empty(t, result.Actions)
}

func TestReplaceForEachWithFor_AvoidsOuterCounter(t *testing.T) {
	t.Parallel()

	counter := syntax.LocalDeclarationStatement(syntax.VariableDeclaration(syntax.PredefinedType("int"),
		syntax.VariableDeclarator("i", syntax.NumericLiteral(0))))
	tree := method(syntax.PredefinedType("string"), []*syntax.Node{counter, loop(syntax.PredefinedType("char"), "c")})
	result := list(t, tree, at(tree, first(t, tree, syntax.KindForEachStatement)), engine.DefaultConfig())

	action, ok := result.Find("ReplaceForEachWithFor.ascending")
	require.True(t, ok)

	applied, err := action.Apply(context.Background())
	require.NoError(t, err)

	assert.Contains(t, applied.Tree.Text(), "for (int i2 = 0; i2 < items.Length; i2++)")
	assert.Len(t, applied.RenameSpans(), 1)
}

func TestProviders_DoNotInterfere(t *testing.T) {
	t.Parallel()

	tree := method(syntax.PredefinedType("string"), []*syntax.Node{loop(syntax.PredefinedType("char"), "c")})
	req := at(tree, syntax.ForEachStatementParts(first(t, tree, syntax.KindForEachStatement)).Type)

	all := list(t, tree, req, engine.DefaultConfig())
	assert.Equal(t, []string{
		"Change type to 'var'",
		"Replace 'foreach' with 'for'",
		"Replace 'foreach' with 'for' and reverse loop",
	}, titles(all))

	without := list(t, tree, req, engine.DefaultConfig().Without(refactorings.ChangeExplicitTypeToVar))
	assert.Equal(t, keys(all)[1:], keys(without))

	assert.Contains(t, apply(t, all, refactorings.ChangeExplicitTypeToVar), "foreach (var c in items)")
}

func TestChangeVarToExplicitType(t *testing.T) {
	t.Parallel()

	tree := method(syntax.GenericName("List", syntax.PredefinedType("int")), []*syntax.Node{loop(syntax.Var(), "n")})
	req := at(tree, syntax.ForEachStatementParts(first(t, tree, syntax.KindForEachStatement)).Type)

	result := list(t, tree, req, engine.DefaultConfig())
	assert.Contains(t, titles(result), "Change type to 'int'")
	assert.NotContains(t, titles(result), "Change type to 'var'")

	assert.Contains(t, apply(t, result, refactorings.ChangeVarToExplicitType), "foreach (int n in items)")
}

func TestChangeVarToExplicitType_Dictionary(t *testing.T) {
	t.Parallel()

	dictionary := syntax.GenericName("Dictionary", syntax.PredefinedType("string"), syntax.PredefinedType("int"))
	tree := method(dictionary, []*syntax.Node{loop(syntax.Var(), "entry")})
	req := at(tree, syntax.ForEachStatementParts(first(t, tree, syntax.KindForEachStatement)).Type)

	result := list(t, tree, req, engine.DefaultConfig())
	assert.Contains(t, titles(result), "Change type to 'KeyValuePair<string, int>'")
	assert.Contains(t, apply(t, result, refactorings.ChangeVarToExplicitType),
		"foreach (KeyValuePair<string, int> entry in items)")
}

func TestChangeTypeAccordingToExpression(t *testing.T) {
	t.Parallel()

	tree := method(syntax.PredefinedType("string"), []*syntax.Node{loop(syntax.PredefinedType("object"), "o")})
	req := at(tree, syntax.ForEachStatementParts(first(t, tree, syntax.KindForEachStatement)).Type)

	result := list(t, tree, req, engine.DefaultConfig())
	assert.Contains(t, titles(result), "Change type to 'char'")
	assert.NotContains(t, titles(result), "Change type to 'var'")

	assert.Contains(t, apply(t, result, refactorings.ChangeTypeAccordingToExpression), "foreach (char o in items)")
}

func TestRenameIdentifierAccordingToTypeName(t *testing.T) {
	t.Parallel()

	widget := syntax.ClassDeclaration(nil, "Widget", nil)
	tree := method(syntax.GenericName("List", syntax.IdentifierName("Widget")),
		[]*syntax.Node{loop(syntax.IdentifierName("Widget"), "w")}, widget)
	req := at(tree, syntax.ForEachStatementParts(first(t, tree, syntax.KindForEachStatement)).Identifier)

	result := list(t, tree, req, engine.DefaultConfig())
	assert.Contains(t, titles(result), "Rename 'w' to 'widget'")
	assert.NotContains(t, keys(result), refactorings.ChangeExplicitTypeToVar)

	assert.Contains(t, apply(t, result, refactorings.RenameIdentifierAccordingToTypeName),
		"foreach (Widget widget in items) { Use(widget); }")
}

func TestRenameIdentifierAccordingToTypeName_SkipsKeywords(t *testing.T) {
	t.Parallel()

	tree := method(syntax.PredefinedType("string"), []*syntax.Node{loop(syntax.PredefinedType("char"), "c")})
	req := at(tree, syntax.ForEachStatementParts(first(t, tree, syntax.KindForEachStatement)).Identifier)

	result := list(t, tree, req, engine.DefaultConfig())
	assert.NotContains(t, keys(result), refactorings.RenameIdentifierAccordingToTypeName)
}

func TestRenameIdentifierAccordingToTypeName_AvoidsVisibleName(t *testing.T) {
	t.Parallel()

	parser, err := csharp.NewParser()
	require.NoError(t, err)

	tree, err := parser.Parse(context.Background(), []byte(`using System.Collections.Generic;

class C
{
    void Use(params object[] values) { }

    IEnumerable<List<int>> Get() { return null; }

    void M()
    {
        int list = 0;
        foreach (List<int> x in Get()) { Use(x, list); }
    }
}
`))
	require.NoError(t, err)

	req := at(tree, syntax.ForEachStatementParts(first(t, tree, syntax.KindForEachStatement)).Identifier)

	result := list(t, tree, req, engine.DefaultConfig())
	assert.Contains(t, titles(result), "Rename 'x' to 'list2'")
	assert.Contains(t, apply(t, result, refactorings.RenameIdentifierAccordingToTypeName),
		"foreach (List<int> list2 in Get()) { Use(list2, list); }")
}

func TestInvertIfElse(t *testing.T) {
	t.Parallel()

	statement := syntax.IfStatement(syntax.IdentifierName("items"), syntax.Block(call("A")), syntax.Block(call("B")))
	tree := method(syntax.PredefinedType("bool"), []*syntax.Node{statement})
	ifStatement := first(t, tree, syntax.KindIfStatement)

	result := list(t, tree, at(tree, ifStatement), engine.DefaultConfig())
	assert.Equal(t, []string{"Invert if-else"}, titles(result))
	assert.Contains(t, apply(t, result, refactorings.InvertIfElse), "if (!items) { B(); } else { A(); }")

	inBranch := list(t, tree, at(tree, syntax.IfStatementParts(ifStatement).Statement), engine.DefaultConfig())
	assert.Empty(t, inBranch.Actions)
}

func TestUseElementAccessInsteadOfEnumerableMethod(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		paramType *syntax.Node
		method    string
		arguments []*syntax.Node
		want      string
	}{
		{name: "first on string", paramType: syntax.PredefinedType("string"), method: "First", want: "Use(items[0]);"},
		{name: "last on string", paramType: syntax.PredefinedType("string"), method: "Last", want: "Use(items[items.Length - 1]);"},
		{
			name:      "last on list",
			paramType: syntax.GenericName("List", syntax.PredefinedType("int")),
			method:    "Last",
			want:      "Use(items[items.Count - 1]);",
		},
		{
			name:      "element at on array",
			paramType: syntax.ArrayType(syntax.PredefinedType("int")),
			method:    "ElementAt",
			arguments: []*syntax.Node{syntax.NumericLiteral(3)},
			want:      "Use(items[3]);",
		},
		{name: "set is not indexable", paramType: syntax.GenericName("HashSet", syntax.PredefinedType("int")), method: "First"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			invocation := syntax.Invocation(syntax.MemberAccess(syntax.IdentifierName("items"), tt.method), tt.arguments...)
			tree := method(tt.paramType, []*syntax.Node{use(invocation)})

			calls := syntax.Find(tree.Root(), syntax.IsKind(syntax.KindMemberAccessExpression))
			require.Len(t, calls, 1)

			name := calls[0].ChildNodes()[1]
			result := list(t, tree, at(tree, name), engine.DefaultConfig())

			if tt.want == "" {
				assert.Empty(t, result.Actions)

				return
			}

			assert.Equal(t, []string{"Use [] instead of calling '" + tt.method + "'"}, titles(result))
			assert.Contains(t, apply(t, result, refactorings.UseElementAccessInsteadOfEnumerableMethod), tt.want)
		})
	}
}

func TestRemoveNewModifier(t *testing.T) {
	t.Parallel()

	m := syntax.MethodDeclaration([]string{"public", "new"}, syntax.PredefinedType("void"), "M", nil, syntax.Block())
	tree := syntax.NewTree(syntax.CompilationUnit(syntax.ClassDeclaration(nil, "C", nil, m)))
	name := syntax.MemberDeclarationParts(first(t, tree, syntax.KindMethodDeclaration)).Name

	req := at(tree, name)
	req.DiagnosticID = refactorings.DiagnosticMemberDoesNotHide

	result := list(t, tree, req, engine.DefaultConfig())
	assert.Equal(t, []string{"Remove 'new' modifier"}, titles(result))
	assert.Contains(t, apply(t, result, refactorings.RemoveNewModifier), "public void M() { }")

	plain := list(t, tree, at(tree, name), engine.DefaultConfig())
	assert.NotContains(t, keys(plain), refactorings.RemoveNewModifier)
}

type fakeType struct {
	semantic.Type

	name  string
	array *fakeType
}

func (typ fakeType) Name() string { return typ.name }

func (typ fakeType) IsArray() bool { return typ.array != nil }

func (typ fakeType) ElementType() semantic.Type { return *typ.array }

func TestIdentifierNameFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		typ  fakeType
		want string
	}{
		{typ: fakeType{name: "List<int>"}, want: "list"},
		{typ: fakeType{name: "IEnumerable<string>"}, want: "enumerable"},
		{typ: fakeType{name: "Widget"}, want: "widget"},
		{typ: fakeType{name: "System.Text.StringBuilder"}, want: "stringBuilder"},
		{typ: fakeType{name: "Item"}, want: "item"},
		{typ: fakeType{name: "Widget[]", array: &fakeType{name: "Widget"}}, want: "widget"},
		{typ: fakeType{name: ""}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.typ.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, refactorings.IdentifierNameFor(tt.typ))
		})
	}
}
