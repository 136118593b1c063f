// Package binder implements semantic.Oracle with a single-file scope walker
// over a syntax tree and a catalog of library types.
//
// The binder is not a compiler: it resolves locals, parameters, foreach
// variables, members of source and catalog types, and a handful of LINQ
// extension methods. Everything else resolves to the error type.
package binder

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/Sumatoshi-tech/codefix/pkg/semantic"
	"github.com/Sumatoshi-tech/codefix/pkg/syntax"
)

// maxNameSuffix bounds UniqueName probing.
const maxNameSuffix = 10000

// Environment holds the catalog universe shared by binders of every tree
// snapshot.
type Environment struct {
	universe *universe
}

// NewEnvironment builds an environment from a catalog.
func NewEnvironment(catalog *Catalog) *Environment {
	if catalog == nil {
		catalog = &Catalog{}
	}

	return &Environment{universe: newUniverse(catalog)}
}

// DefaultEnvironment builds an environment from the embedded catalog.
func DefaultEnvironment() (*Environment, error) {
	catalog, err := DefaultCatalog()
	if err != nil {
		return nil, err
	}

	return NewEnvironment(catalog), nil
}

// Bind creates an oracle for one tree snapshot. Binding is lazy: the first
// query walks the tree.
func (env *Environment) Bind(tree *syntax.Tree) *Binder {
	return &Binder{tree: tree, base: env.universe}
}

// Binder answers semantic queries for one tree. It is safe for concurrent
// use.
type Binder struct {
	tree  *syntax.Tree
	base  *universe
	once  sync.Once
	index *bindIndex
}

var _ semantic.Oracle = (*Binder)(nil)

type bindIndex struct {
	universe   *universe
	declared   map[*syntax.Node]*symbol
	references map[*syntax.Node]*symbol
	types      map[*syntax.Node]semantic.Type
	names      map[*syntax.Node]map[string]bool
	classes    map[*syntax.Node]*typeDef
	members    map[memberKey]*symbol
}

func (b *Binder) indexed() *bindIndex {
	b.once.Do(func() {
		b.index = buildBindIndex(b.tree, b.base)
	})

	return b.index
}

// Tree returns the tree the binder was built for.
func (b *Binder) Tree() *syntax.Tree {
	return b.tree
}

// ResolveType implements semantic.Oracle.
func (b *Binder) ResolveType(ctx context.Context, node *syntax.Node) (semantic.Type, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	idx := b.indexed()

	if typ, ok := idx.types[node]; ok {
		return typ, nil
	}

	if node.Kind().IsTypeSyntax() {
		return idx.universe.resolveText(typeText(node), nil), nil
	}

	return &errorType{name: node.Text()}, nil
}

// ResolveSymbol implements semantic.Oracle.
func (b *Binder) ResolveSymbol(ctx context.Context, node *syntax.Node) (semantic.Symbol, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	idx := b.indexed()

	target := node

	switch {
	case node.Is(syntax.KindMemberAccessExpression):
		target = memberName(node)
	case node.Is(syntax.KindInvocationExpression):
		target = calleeName(node)
	case node.Is(syntax.KindGenericName):
		target = node.ChildOfKind(syntax.KindIdentifierName)
	}

	if sym, ok := idx.references[target]; ok && sym != nil {
		return sym, nil
	}

	if sym, ok := idx.declared[node]; ok && sym != nil {
		return sym, nil
	}

	return nil, nil //nolint:nilnil // Unresolved is not an error.
}

// DeclaredSymbol implements semantic.Oracle.
func (b *Binder) DeclaredSymbol(ctx context.Context, node *syntax.Node) (semantic.Symbol, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	idx := b.indexed()

	if sym, ok := idx.declared[node]; ok && sym != nil {
		return sym, nil
	}

	if node.Is(syntax.KindIdentifierName) {
		if sym, ok := idx.declared[b.tree.Parent(node)]; ok && sym != nil {
			return sym, nil
		}
	}

	return nil, nil //nolint:nilnil // Not a declaration.
}

// IsAccessible implements semantic.Oracle. Private members are accessible
// inside their declaring type, protected ones also inside derived types.
func (b *Binder) IsAccessible(ctx context.Context, position int, target semantic.Member) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	switch target.Accessibility() {
	case semantic.AccessPublic, semantic.AccessInternal:
		return true, nil
	}

	owner, ok := target.ContainingType().(*namedType)
	if !ok {
		return false, nil
	}

	idx := b.indexed()
	start := b.tree.FindNode(syntax.Span{Start: position})

	for _, ancestor := range append([]*syntax.Node{start}, b.tree.Ancestors(start)...) {
		def, isClass := idx.classes[ancestor]
		if !isClass {
			continue
		}

		if def == owner.def {
			return true, nil
		}

		if target.Accessibility() == semantic.AccessProtected && derivesFrom(idx.universe, def, owner.def) {
			return true, nil
		}
	}

	return false, nil
}

func derivesFrom(u *universe, def, base *typeDef) bool {
	seen := map[*typeDef]bool{def: true}
	queue := []*typeDef{def}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, baseText := range current.bases {
			expr, ok := parseTypeExpr(baseText)
			if !ok {
				continue
			}

			resolved := u.lookup(expr.name, len(expr.args))
			if resolved == nil || seen[resolved] {
				continue
			}

			if resolved == base {
				return true
			}

			seen[resolved] = true
			queue = append(queue, resolved)
		}
	}

	return false
}

// SymbolsEqual implements semantic.Oracle. Symbols are canonical per tree,
// so identity is equality.
func (b *Binder) SymbolsEqual(a, other semantic.Symbol) bool {
	left, leftOK := a.(*symbol)
	right, rightOK := other.(*symbol)

	return leftOK && rightOK && left == right
}

// UniqueName implements semantic.Oracle. A candidate collides with every
// name visible at position and every local declared anywhere in the
// enclosing members.
func (b *Binder) UniqueName(ctx context.Context, base string, position int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	idx := b.indexed()
	start := b.tree.FindNode(syntax.Span{Start: position})
	taken := make(map[string]bool)

	for _, ancestor := range append([]*syntax.Node{start}, b.tree.Ancestors(start)...) {
		for name := range idx.names[ancestor] {
			taken[name] = true
		}
	}

	if !taken[base] && !syntax.IsKeyword(base) {
		return base, nil
	}

	for suffix := 2; suffix <= maxNameSuffix; suffix++ {
		candidate := base + strconv.Itoa(suffix)
		if !taken[candidate] {
			return candidate, nil
		}
	}

	return "", semantic.ErrNameExhausted
}

// IsKeyword reports whether name is a reserved C# keyword.
func IsKeyword(name string) bool {
	return syntax.IsKeyword(name)
}

// typeText spells a type syntax node without trivia.
func typeText(node *syntax.Node) string {
	var buf strings.Builder

	for _, token := range syntax.DescendantTokens(node) {
		buf.WriteString(token.Text())
	}

	return buf.String()
}

func memberName(memberAccess *syntax.Node) *syntax.Node {
	nodes := memberAccess.ChildNodes()
	if len(nodes) < 2 { //nolint:mnd // receiver and name.
		return nil
	}

	name := nodes[len(nodes)-1]
	if name.Is(syntax.KindGenericName) {
		return name.ChildOfKind(syntax.KindIdentifierName)
	}

	return name
}

func calleeName(invocation *syntax.Node) *syntax.Node {
	callee := invocationCallee(invocation)

	switch {
	case callee.Is(syntax.KindMemberAccessExpression):
		return memberName(callee)
	case callee.Is(syntax.KindGenericName):
		return callee.ChildOfKind(syntax.KindIdentifierName)
	default:
		return callee
	}
}

func invocationCallee(invocation *syntax.Node) *syntax.Node {
	for _, child := range invocation.ChildNodes() {
		if !child.Is(syntax.KindArgumentList) {
			return child
		}
	}

	return nil
}
