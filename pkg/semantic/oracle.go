// Package semantic defines the read-only symbol and type oracle consulted by
// the semantic gate and the rewrite builders.
package semantic

import (
	"context"
	"errors"

	"github.com/Sumatoshi-tech/codefix/pkg/syntax"
)

// ErrUnresolved is returned when a node resolves to no symbol or to more than
// one candidate.
var ErrUnresolved = errors.New("symbol is ambiguous or unresolved")

// ErrNameExhausted is returned when no unique name can be generated.
var ErrNameExhausted = errors.New("unique name candidates exhausted")

// Capability names a well-known collection interface.
type Capability string

// Collection capabilities.
const (
	CapabilityList         Capability = "IList"
	CapabilityReadOnlyList Capability = "IReadOnlyList"
	CapabilityCollection   Capability = "ICollection"
	CapabilityEnumerable   Capability = "IEnumerable"
)

// TypeKind classifies a type.
type TypeKind int

// Type kinds.
const (
	TypeKindError TypeKind = iota
	TypeKindPrimitive
	TypeKindTextual
	TypeKindArray
	TypeKindClass
	TypeKindStruct
	TypeKindInterface
)

// MemberKind classifies a type member.
type MemberKind int

// Member kinds.
const (
	MemberProperty MemberKind = iota
	MemberIndexer
	MemberMethod
	MemberField
)

// Accessibility is the declared visibility of a member.
type Accessibility int

// Accessibility levels.
const (
	AccessPrivate Accessibility = iota
	AccessProtected
	AccessInternal
	AccessPublic
)

// SymbolKind classifies a resolved symbol.
type SymbolKind int

// Symbol kinds.
const (
	SymbolLocal SymbolKind = iota
	SymbolParameter
	SymbolForEachVariable
	SymbolField
	SymbolProperty
	SymbolMethod
	SymbolType
)

// IndexerName is the member name under which indexers are listed.
const IndexerName = "this[]"

// Type is a resolved type. The error type stands in for anything that did
// not resolve.
type Type interface {
	Name() string
	Kind() TypeKind
	IsError() bool
	IsTextual() bool
	IsArray() bool
	// IsArrayLike reports types whose count is exposed as Length.
	IsArrayLike() bool
	IsIntegral() bool
	// ElementType is the type produced by enumeration, or nil.
	ElementType() Type
	Implements(capability Capability) bool
	MembersNamed(name string) []Member
	Equal(other Type) bool
}

// Member is a property, indexer, method or field of a type.
type Member interface {
	Name() string
	Kind() MemberKind
	Type() Type
	Parameters() []Type
	IsReadable() bool
	Accessibility() Accessibility
	ContainingType() Type
}

// Symbol is a named entity a reference can bind to.
type Symbol interface {
	Name() string
	Kind() SymbolKind
	Type() Type
	// Declaration is the declaring node, or nil for catalog symbols.
	Declaration() *syntax.Node
	IsExtension() bool
	// ContainingTypeName is the fully qualified declaring type, if any.
	ContainingTypeName() string
}

// Oracle answers semantic questions about one tree snapshot.
type Oracle interface {
	// ResolveType returns the type of an expression or type syntax. Unknown
	// types come back as an error type, not as an error.
	ResolveType(ctx context.Context, node *syntax.Node) (Type, error)
	// ResolveSymbol returns the symbol a name refers to, or nil when it
	// resolves to nothing.
	ResolveSymbol(ctx context.Context, node *syntax.Node) (Symbol, error)
	// DeclaredSymbol returns the symbol declared by a declaration node.
	DeclaredSymbol(ctx context.Context, node *syntax.Node) (Symbol, error)
	IsAccessible(ctx context.Context, position int, member Member) (bool, error)
	SymbolsEqual(a, b Symbol) bool
	// UniqueName returns base, or base followed by 2, 3 and so on, whichever
	// first does not collide with a name in scope at position.
	UniqueName(ctx context.Context, base string, position int) (string, error)
}

// IsUsable reports whether a type resolved to something other than the
// error type.
func IsUsable(typ Type) bool {
	return typ != nil && !typ.IsError()
}
