package binder

import (
	"github.com/Sumatoshi-tech/codefix/pkg/semantic"
	"github.com/Sumatoshi-tech/codefix/pkg/syntax"
)

type symbol struct {
	name        string
	kind        semantic.SymbolKind
	typ         semantic.Type
	declaration *syntax.Node
	extension   bool
	container   string
}

func (sym *symbol) Name() string               { return sym.name }
func (sym *symbol) Kind() semantic.SymbolKind  { return sym.kind }
func (sym *symbol) Type() semantic.Type        { return sym.typ }
func (sym *symbol) Declaration() *syntax.Node  { return sym.declaration }
func (sym *symbol) IsExtension() bool          { return sym.extension }
func (sym *symbol) ContainingTypeName() string { return sym.container }

// ambiguous marks a name bound to several overloads.
//
//nolint:gochecknoglobals // Sentinel value.
var ambiguous = &symbol{name: "<ambiguous>"}

type scope struct {
	parent *scope
	names  map[string]*symbol
	// owner collects the names declared in this scope for UniqueName.
	owner     *syntax.Node
	classType *namedType
}

func newScope(parent *scope, owner *syntax.Node) *scope {
	child := &scope{parent: parent, names: make(map[string]*symbol), owner: owner}
	if parent != nil {
		child.classType = parent.classType

		if owner == nil {
			child.owner = parent.owner
		}
	}

	return child
}

func (sc *scope) lookup(name string) *symbol {
	for current := sc; current != nil; current = current.parent {
		if sym, ok := current.names[name]; ok {
			return sym
		}
	}

	return nil
}

type walker struct {
	idx *bindIndex
}

func buildBindIndex(tree *syntax.Tree, base *universe) *bindIndex {
	idx := &bindIndex{
		declared:   make(map[*syntax.Node]*symbol),
		references: make(map[*syntax.Node]*symbol),
		types:      make(map[*syntax.Node]semantic.Type),
		names:      make(map[*syntax.Node]map[string]bool),
		classes:    make(map[*syntax.Node]*typeDef),
		members:    make(map[memberKey]*symbol),
	}

	root := tree.Root()
	if root == nil {
		idx.universe = base

		return idx
	}

	var defs []*typeDef

	for _, decl := range syntax.Find(root, syntax.IsKind(
		syntax.KindClassDeclaration, syntax.KindStructDeclaration, syntax.KindInterfaceDeclaration)) {
		def := collectTypeDef(decl)
		if def == nil {
			continue
		}

		idx.classes[decl] = def
		defs = append(defs, def)
	}

	idx.universe = base.overlay(defs)

	w := &walker{idx: idx}
	w.visit(root, newScope(nil, root))

	return idx
}

func collectTypeDef(decl *syntax.Node) *typeDef {
	parts := syntax.MemberDeclarationParts(decl)
	if parts.Name == nil || parts.Name.IsMissing() {
		return nil
	}

	def := &typeDef{name: parts.Name.Text(), declaration: decl}

	switch decl.Kind() {
	case syntax.KindStructDeclaration:
		def.kind = semantic.TypeKindStruct
	case syntax.KindInterfaceDeclaration:
		def.kind = semantic.TypeKindInterface
	default:
		def.kind = semantic.TypeKindClass
	}

	for _, child := range decl.ChildNodes() {
		if child.Is(syntax.KindOther) && child.Label() == "type_parameter_list" {
			for _, param := range syntax.Find(child, syntax.IsKind(syntax.KindIdentifierName)) {
				def.params = append(def.params, param.Text())
			}
		}

		if child.Is(syntax.KindBaseList) {
			for _, base := range child.ChildNodes() {
				def.bases = append(def.bases, typeText(base))
			}
		}
	}

	defaultAccess := semantic.AccessPrivate
	if def.kind == semantic.TypeKindInterface {
		defaultAccess = semantic.AccessPublic
	}

	for _, member := range parts.Body.ChildNodes() {
		def.members = append(def.members, collectMemberDefs(member, defaultAccess)...)
	}

	return def
}

func collectMemberDefs(member *syntax.Node, defaultAccess semantic.Accessibility) []*memberDef {
	access := declaredAccessibility(member, defaultAccess)
	parts := syntax.MemberDeclarationParts(member)

	switch member.Kind() {
	case syntax.KindFieldDeclaration:
		typeSyntax, declarators := syntax.VariableDeclarationParts(member.ChildOfKind(syntax.KindVariableDeclaration))

		defs := make([]*memberDef, 0, len(declarators))

		for _, declarator := range declarators {
			name, _ := syntax.DeclaratorParts(declarator)
			if name == nil {
				continue
			}

			defs = append(defs, &memberDef{
				name: name.Text(), kind: semantic.MemberField, typeExpr: typeText(typeSyntax),
				access: access, readable: true, declaration: declarator,
			})
		}

		return defs
	case syntax.KindPropertyDeclaration:
		if parts.Name == nil {
			return nil
		}

		return []*memberDef{{
			name: parts.Name.Text(), kind: semantic.MemberProperty, typeExpr: typeText(parts.Type),
			access: access, readable: hasGetter(parts.Body), declaration: member,
		}}
	case syntax.KindIndexerDeclaration:
		return []*memberDef{{
			name: semantic.IndexerName, kind: semantic.MemberIndexer, typeExpr: typeText(parts.Type),
			params: parameterTypes(parts.Parameters), access: access,
			readable: hasGetter(parts.Body), declaration: member,
		}}
	case syntax.KindMethodDeclaration:
		if parts.Name == nil {
			return nil
		}

		return []*memberDef{{
			name: parts.Name.Text(), kind: semantic.MemberMethod, typeExpr: typeText(parts.Type),
			params: parameterTypes(parts.Parameters), access: access, readable: true, declaration: member,
		}}
	default:
		return nil
	}
}

func hasGetter(body *syntax.Node) bool {
	for _, keyword := range syntax.AccessorKeywords(body) {
		if keyword == "get" {
			return true
		}
	}

	return false
}

func parameterTypes(list *syntax.Node) []string {
	if list == nil {
		return nil
	}

	var types []string

	for _, param := range syntax.Parameters(list) {
		typeSyntax, _ := syntax.ParameterParts(param)
		types = append(types, typeText(typeSyntax))
	}

	return types
}

func declaredAccessibility(member *syntax.Node, fallback semantic.Accessibility) semantic.Accessibility {
	switch {
	case syntax.HasModifier(member, "public"):
		return semantic.AccessPublic
	case syntax.HasModifier(member, "protected"):
		return semantic.AccessProtected
	case syntax.HasModifier(member, "internal"):
		return semantic.AccessInternal
	case syntax.HasModifier(member, "private"):
		return semantic.AccessPrivate
	default:
		return fallback
	}
}

func (w *walker) declare(sc *scope, sym *symbol) {
	if existing, ok := sc.names[sym.name]; ok && existing != sym {
		if existing.kind == semantic.SymbolMethod && sym.kind == semantic.SymbolMethod {
			sc.names[sym.name] = ambiguous
		}
	} else {
		sc.names[sym.name] = sym
	}

	owner := sc.owner
	if w.idx.names[owner] == nil {
		w.idx.names[owner] = make(map[string]bool)
	}

	w.idx.names[owner][sym.name] = true
}

func (w *walker) typeOfSyntax(typeSyntax *syntax.Node) semantic.Type {
	if typeSyntax == nil {
		return &errorType{name: "?"}
	}

	typ := w.idx.universe.resolveText(typeText(typeSyntax), nil)
	w.idx.types[typeSyntax] = typ

	return typ
}

type memberKey struct {
	def   *memberDef
	owner string
	name  string
}

// memberSymbol returns the canonical symbol of a member.
func (w *walker) memberSymbol(target semantic.Member) *symbol {
	key := memberKey{owner: target.ContainingType().Name(), name: target.Name()}

	if m, ok := target.(*member); ok {
		key.def = m.def
	}

	if sym, ok := w.idx.members[key]; ok {
		return sym
	}

	kind := semantic.SymbolProperty

	switch target.Kind() {
	case semantic.MemberField:
		kind = semantic.SymbolField
	case semantic.MemberMethod:
		kind = semantic.SymbolMethod
	case semantic.MemberProperty, semantic.MemberIndexer:
	}

	container := target.ContainingType().Name()
	if named, ok := target.ContainingType().(*namedType); ok {
		container = named.def.qualifiedName()
	}

	sym := &symbol{
		name:      target.Name(),
		kind:      kind,
		typ:       target.Type(),
		container: container,
	}

	if key.def != nil {
		sym.declaration = key.def.declaration
	}

	w.idx.members[key] = sym

	return sym
}
