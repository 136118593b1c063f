// Package gate holds the semantic preconditions that decide whether a
// structurally matched candidate may be rewritten.
package gate

import (
	"context"
	"fmt"

	"github.com/Sumatoshi-tech/codefix/pkg/match"
	"github.com/Sumatoshi-tech/codefix/pkg/semantic"
	"github.com/Sumatoshi-tech/codefix/pkg/syntax"
)

// Length accessor names.
const (
	LengthProperty = "Length"
	CountProperty  = "Count"
)

// Convertible is the evidence collected while accepting a foreach for the
// conversion to an indexed for loop.
type Convertible struct {
	// CollectionType is the type of the iterated expression.
	CollectionType semantic.Type
	// ElementType is the declared or inferred iteration variable type.
	ElementType semantic.Type
	// LengthName is Length for textual and array-like collections, Count
	// otherwise.
	LengthName string
}

// CanConvertForEachToFor accepts a foreach whose collection is textual, an
// array, a list, or an ICollection exposing an applicable indexer. The bool
// is false when the candidate is rejected; errors are reserved for
// cancellation and oracle failures.
func CanConvertForEachToFor(ctx context.Context, oracle semantic.Oracle, tree *syntax.Tree, info match.ForEach) (Convertible, bool, error) {
	if err := ctx.Err(); err != nil {
		return Convertible{}, false, err
	}

	collectionType, err := oracle.ResolveType(ctx, info.Expression)
	if err != nil {
		return Convertible{}, false, fmt.Errorf("resolve foreach expression: %w", err)
	}

	if !semantic.IsUsable(collectionType) {
		return Convertible{}, false, nil
	}

	if err = ctx.Err(); err != nil {
		return Convertible{}, false, err
	}

	elementType, err := oracle.ResolveType(ctx, info.Type)
	if err != nil {
		return Convertible{}, false, fmt.Errorf("resolve foreach type: %w", err)
	}

	position := tree.Span(info.Statement).Start

	ok, err := IsIndexable(ctx, oracle, collectionType, elementType, position)
	if err != nil || !ok {
		return Convertible{}, false, err
	}

	return Convertible{
		CollectionType: collectionType,
		ElementType:    elementType,
		LengthName:     LengthName(collectionType),
	}, true, nil
}

// IsIndexable reports whether values of typ can be read by integer position
// yielding elementType.
func IsIndexable(ctx context.Context, oracle semantic.Oracle, typ, elementType semantic.Type, position int) (bool, error) {
	if !semantic.IsUsable(typ) {
		return false, nil
	}

	if typ.IsTextual() || typ.IsArray() {
		return true, nil
	}

	if typ.Implements(semantic.CapabilityList) || typ.Implements(semantic.CapabilityReadOnlyList) {
		return true, nil
	}

	if !typ.Implements(semantic.CapabilityCollection) {
		return false, nil
	}

	return HasApplicableIndexer(ctx, oracle, typ, elementType, position)
}

// HasApplicableIndexer reports whether typ declares a readable indexer with
// a single integral parameter, accessible at position, returning
// elementType.
func HasApplicableIndexer(ctx context.Context, oracle semantic.Oracle, typ, elementType semantic.Type, position int) (bool, error) {
	if !semantic.IsUsable(elementType) {
		return false, nil
	}

	for _, indexer := range typ.MembersNamed(semantic.IndexerName) {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		if !indexer.IsReadable() {
			continue
		}

		params := indexer.Parameters()
		if len(params) != 1 || params[0] == nil || !params[0].IsIntegral() {
			continue
		}

		if indexer.Type() == nil || !indexer.Type().Equal(elementType) {
			continue
		}

		accessible, err := oracle.IsAccessible(ctx, position, indexer)
		if err != nil {
			return false, fmt.Errorf("check indexer accessibility: %w", err)
		}

		if accessible {
			return true, nil
		}
	}

	return false, nil
}

// LengthName picks the element count accessor of a collection type.
func LengthName(typ semantic.Type) string {
	if typ != nil && !typ.IsError() && (typ.IsTextual() || typ.IsArray() || typ.IsArrayLike()) {
		return LengthProperty
	}

	return CountProperty
}

// SameSymbol reports whether both nodes resolve to the same symbol. Nodes
// that resolve to nothing are never the same.
func SameSymbol(ctx context.Context, oracle semantic.Oracle, a, b *syntax.Node) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	left, err := oracle.ResolveSymbol(ctx, a)
	if err != nil || left == nil {
		return false, err
	}

	if err = ctx.Err(); err != nil {
		return false, err
	}

	right, err := oracle.ResolveSymbol(ctx, b)
	if err != nil || right == nil {
		return false, err
	}

	return oracle.SymbolsEqual(left, right), nil
}
