package binder

import (
	"slices"
	"strings"

	"github.com/Sumatoshi-tech/codefix/pkg/semantic"
	"github.com/Sumatoshi-tech/codefix/pkg/syntax"
)

type typeDef struct {
	name        string
	namespace   string
	aliases     []string
	kind        semantic.TypeKind
	params      []string
	element     string
	caps        []semantic.Capability
	bases       []string
	integral    bool
	arrayLike   bool
	members     []*memberDef
	declaration *syntax.Node
}

func (def *typeDef) qualifiedName() string {
	if def.namespace == "" {
		return def.name
	}

	return def.namespace + "." + def.name
}

type memberDef struct {
	name        string
	kind        semantic.MemberKind
	typeExpr    string
	params      []string
	access      semantic.Accessibility
	readable    bool
	declaration *syntax.Node
}

type extensionDef struct {
	name      string
	container string
	returns   string
	params    []string
}

// universe maps type names to definitions. A universe is never mutated once
// built; source types are added through overlay.
type universe struct {
	types      map[string]*typeDef
	extensions map[string]*extensionDef
}

func newUniverse(catalog *Catalog) *universe {
	u := &universe{
		types:      make(map[string]*typeDef),
		extensions: make(map[string]*extensionDef),
	}

	for _, definition := range catalog.Types {
		def := &typeDef{
			name:      definition.Name,
			namespace: definition.Namespace,
			aliases:   definition.Aliases,
			kind:      parseTypeKind(definition.Kind),
			params:    definition.TypeParameters,
			element:   definition.Element,
			integral:  definition.Integral,
			arrayLike: definition.ArrayLike,
		}

		for _, capability := range definition.Implements {
			def.caps = append(def.caps, semantic.Capability(capability))
		}

		for _, member := range definition.Members {
			def.members = append(def.members, &memberDef{
				name:     member.Name,
				kind:     parseMemberKind(member.Kind),
				typeExpr: member.Type,
				params:   member.Parameters,
				access:   parseAccessibility(member.Accessibility),
				readable: !member.WriteOnly,
			})
		}

		u.add(def)
	}

	for _, definition := range catalog.Extensions {
		u.extensions[definition.Name] = &extensionDef{
			name:      definition.Name,
			container: definition.Container,
			returns:   definition.Returns,
			params:    definition.Parameters,
		}
	}

	return u
}

func (u *universe) add(def *typeDef) {
	key := typeKey(def.name, len(def.params))
	u.types[key] = def
	u.types[typeKey(def.qualifiedName(), len(def.params))] = def

	for _, alias := range def.aliases {
		u.types[alias] = def
	}
}

// overlay returns a universe extended with source-declared types.
func (u *universe) overlay(defs []*typeDef) *universe {
	extended := &universe{
		types:      make(map[string]*typeDef, len(u.types)+len(defs)),
		extensions: u.extensions,
	}

	for key, def := range u.types {
		extended.types[key] = def
	}

	for _, def := range defs {
		extended.add(def)
	}

	return extended
}

func (u *universe) lookup(name string, arity int) *typeDef {
	if def, ok := u.types[typeKey(name, arity)]; ok {
		return def
	}

	if dot := strings.LastIndexByte(name, '.'); dot >= 0 {
		return u.types[typeKey(name[dot+1:], arity)]
	}

	return nil
}

func (u *universe) resolveText(text string, subst map[string]semantic.Type) semantic.Type {
	expr, ok := parseTypeExpr(text)
	if !ok {
		return &errorType{name: text}
	}

	return u.resolve(expr, subst)
}

func (u *universe) resolve(expr typeExpr, subst map[string]semantic.Type) semantic.Type {
	var base semantic.Type

	if len(expr.args) == 0 {
		if bound, ok := subst[expr.name]; ok {
			base = bound
		}
	}

	if base == nil {
		def := u.lookup(expr.name, len(expr.args))
		if def == nil {
			base = &errorType{name: expr.baseName()}
		} else {
			args := make([]semantic.Type, 0, len(expr.args))
			for _, arg := range expr.args {
				args = append(args, u.resolve(arg, subst))
			}

			base = &namedType{def: def, args: args, universe: u}
		}
	}

	for range expr.rank {
		base = &arrayType{element: base, universe: u}
	}

	return base
}

func (u *universe) named(name string) semantic.Type {
	return u.resolveText(name, nil)
}

// typeExpr is a parsed type expression: Name<Args>[]...
type typeExpr struct {
	name string
	args []typeExpr
	rank int
}

func (expr typeExpr) baseName() string {
	if len(expr.args) == 0 {
		return expr.name
	}

	names := make([]string, 0, len(expr.args))
	for _, arg := range expr.args {
		names = append(names, arg.String())
	}

	return expr.name + "<" + strings.Join(names, ", ") + ">"
}

func (expr typeExpr) String() string {
	return expr.baseName() + strings.Repeat("[]", expr.rank)
}

func parseTypeExpr(text string) (typeExpr, bool) {
	text = strings.Join(strings.Fields(text), "")
	text = strings.ReplaceAll(text, "?", "")

	expr, rest, ok := parseTypeExprPrefix(text)
	if !ok || rest != "" {
		return typeExpr{}, false
	}

	return expr, true
}

func parseTypeExprPrefix(text string) (typeExpr, string, bool) {
	end := 0
	for end < len(text) && isNameByte(text[end]) {
		end++
	}

	if end == 0 {
		return typeExpr{}, text, false
	}

	expr := typeExpr{name: text[:end]}
	rest := text[end:]

	if strings.HasPrefix(rest, "<") {
		rest = rest[1:]

		for {
			arg, after, ok := parseTypeExprPrefix(rest)
			if !ok {
				return typeExpr{}, text, false
			}

			expr.args = append(expr.args, arg)
			rest = after

			if strings.HasPrefix(rest, ",") {
				rest = rest[1:]

				continue
			}

			if !strings.HasPrefix(rest, ">") {
				return typeExpr{}, text, false
			}

			rest = rest[1:]

			break
		}
	}

	for strings.HasPrefix(rest, "[]") {
		expr.rank++
		rest = rest[2:]
	}

	return expr, rest, true
}

func isNameByte(b byte) bool {
	return b == '_' || b == '.' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

type namedType struct {
	def      *typeDef
	args     []semantic.Type
	universe *universe
}

func (typ *namedType) Name() string {
	if len(typ.def.aliases) > 0 && len(typ.args) == 0 {
		return typ.def.aliases[0]
	}

	if len(typ.args) == 0 {
		return typ.def.name
	}

	names := make([]string, 0, len(typ.args))
	for _, arg := range typ.args {
		names = append(names, arg.Name())
	}

	return typ.def.name + "<" + strings.Join(names, ", ") + ">"
}

func (typ *namedType) Kind() semantic.TypeKind { return typ.def.kind }
func (typ *namedType) IsError() bool           { return false }
func (typ *namedType) IsTextual() bool         { return typ.def.kind == semantic.TypeKindTextual }
func (typ *namedType) IsArray() bool           { return false }
func (typ *namedType) IsIntegral() bool        { return typ.def.integral }

func (typ *namedType) IsArrayLike() bool {
	return typ.def.arrayLike || typ.IsTextual()
}

func (typ *namedType) subst() map[string]semantic.Type {
	if len(typ.def.params) == 0 {
		return nil
	}

	bindings := make(map[string]semantic.Type, len(typ.def.params))

	for idx, param := range typ.def.params {
		if idx < len(typ.args) {
			bindings[param] = typ.args[idx]
		} else {
			bindings[param] = &errorType{name: param}
		}
	}

	return bindings
}

func (typ *namedType) baseTypes() []semantic.Type {
	bases := make([]semantic.Type, 0, len(typ.def.bases))
	for _, base := range typ.def.bases {
		bases = append(bases, typ.universe.resolveText(base, typ.subst()))
	}

	return bases
}

func (typ *namedType) ElementType() semantic.Type {
	if typ.def.element != "" {
		return typ.universe.resolveText(typ.def.element, typ.subst())
	}

	for _, base := range typ.baseTypes() {
		if element := base.ElementType(); element != nil {
			return element
		}
	}

	return nil
}

func (typ *namedType) Implements(capability semantic.Capability) bool {
	if slices.Contains(typ.def.caps, capability) {
		return true
	}

	for _, base := range typ.baseTypes() {
		if base.Implements(capability) {
			return true
		}
	}

	return false
}

func (typ *namedType) MembersNamed(name string) []semantic.Member {
	var members []semantic.Member

	bindings := typ.subst()

	for _, def := range typ.def.members {
		if def.name != name {
			continue
		}

		params := make([]semantic.Type, 0, len(def.params))
		for _, param := range def.params {
			params = append(params, typ.universe.resolveText(param, bindings))
		}

		members = append(members, &member{
			def:      def,
			name:     def.name,
			kind:     def.kind,
			typ:      typ.universe.resolveText(def.typeExpr, bindings),
			params:   params,
			readable: def.readable,
			access:   def.access,
			owner:    typ,
		})
	}

	for _, base := range typ.baseTypes() {
		members = append(members, base.MembersNamed(name)...)
	}

	return members
}

func (typ *namedType) Equal(other semantic.Type) bool {
	otherNamed, ok := other.(*namedType)
	if !ok || otherNamed.def != typ.def || len(otherNamed.args) != len(typ.args) {
		return false
	}

	for idx, arg := range typ.args {
		if !arg.Equal(otherNamed.args[idx]) {
			return false
		}
	}

	return true
}

type arrayType struct {
	element  semantic.Type
	universe *universe
}

func (typ *arrayType) Name() string               { return typ.element.Name() + "[]" }
func (typ *arrayType) Kind() semantic.TypeKind    { return semantic.TypeKindArray }
func (typ *arrayType) IsError() bool              { return typ.element.IsError() }
func (typ *arrayType) IsTextual() bool            { return false }
func (typ *arrayType) IsArray() bool              { return true }
func (typ *arrayType) IsArrayLike() bool          { return true }
func (typ *arrayType) IsIntegral() bool           { return false }
func (typ *arrayType) ElementType() semantic.Type { return typ.element }

func (typ *arrayType) Implements(capability semantic.Capability) bool {
	switch capability {
	case semantic.CapabilityList, semantic.CapabilityReadOnlyList,
		semantic.CapabilityCollection, semantic.CapabilityEnumerable:
		return true
	default:
		return false
	}
}

func (typ *arrayType) MembersNamed(name string) []semantic.Member {
	intType := typ.universe.named("int")

	switch name {
	case "Length":
		return []semantic.Member{&member{
			name: name, kind: semantic.MemberProperty, typ: intType,
			readable: true, access: semantic.AccessPublic, owner: typ,
		}}
	case semantic.IndexerName:
		return []semantic.Member{&member{
			name: name, kind: semantic.MemberIndexer, typ: typ.element,
			params: []semantic.Type{intType}, readable: true, access: semantic.AccessPublic, owner: typ,
		}}
	default:
		return nil
	}
}

func (typ *arrayType) Equal(other semantic.Type) bool {
	otherArray, ok := other.(*arrayType)

	return ok && typ.element.Equal(otherArray.element)
}

// errorType stands in for every type that failed to resolve. It equals
// nothing, itself included.
type errorType struct {
	name string
}

func (typ *errorType) Name() string                          { return typ.name }
func (typ *errorType) Kind() semantic.TypeKind               { return semantic.TypeKindError }
func (typ *errorType) IsError() bool                         { return true }
func (typ *errorType) IsTextual() bool                       { return false }
func (typ *errorType) IsArray() bool                         { return false }
func (typ *errorType) IsArrayLike() bool                     { return false }
func (typ *errorType) IsIntegral() bool                      { return false }
func (typ *errorType) ElementType() semantic.Type            { return nil }
func (typ *errorType) Implements(semantic.Capability) bool   { return false }
func (typ *errorType) MembersNamed(string) []semantic.Member { return nil }
func (typ *errorType) Equal(semantic.Type) bool              { return false }

type member struct {
	def      *memberDef
	name     string
	kind     semantic.MemberKind
	typ      semantic.Type
	params   []semantic.Type
	readable bool
	access   semantic.Accessibility
	owner    semantic.Type
}

func (m *member) Name() string                          { return m.name }
func (m *member) Kind() semantic.MemberKind             { return m.kind }
func (m *member) Type() semantic.Type                   { return m.typ }
func (m *member) Parameters() []semantic.Type           { return m.params }
func (m *member) IsReadable() bool                      { return m.readable }
func (m *member) Accessibility() semantic.Accessibility { return m.access }
func (m *member) ContainingType() semantic.Type         { return m.owner }
