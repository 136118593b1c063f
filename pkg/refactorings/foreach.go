package refactorings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Sumatoshi-tech/codefix/pkg/engine"
	"github.com/Sumatoshi-tech/codefix/pkg/gate"
	"github.com/Sumatoshi-tech/codefix/pkg/match"
	"github.com/Sumatoshi-tech/codefix/pkg/rewrite"
	"github.com/Sumatoshi-tech/codefix/pkg/semantic"
	"github.com/Sumatoshi-tech/codefix/pkg/syntax"
)

// forEachAt returns the innermost foreach covering the request span.
func forEachAt(pc *engine.Context) (match.ForEach, error) {
	node, ok := syntax.FindAncestorOrSelf(pc.Tree(), pc.Span(), syntax.IsKind(syntax.KindForEachStatement), false)
	if !ok {
		return match.ForEach{}, engine.ErrNoCandidate
	}

	info, ok := match.TryForEach(pc.Tree(), node)
	if !ok {
		return match.ForEach{}, engine.ErrNoCandidate
	}

	return info, nil
}

// forEachTypes resolves the declared type (the inferred one for var) and the
// element type of the iterated collection.
func forEachTypes(ctx context.Context, pc *engine.Context, info match.ForEach) (declared, element semantic.Type, err error) {
	declared, err = pc.Oracle().ResolveType(ctx, info.Type)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve foreach type: %w", err)
	}

	collection, err := pc.Oracle().ResolveType(ctx, info.Expression)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve foreach expression: %w", err)
	}

	if semantic.IsUsable(collection) {
		element = collection.ElementType()
	}

	return declared, element, nil
}

type changeExplicitTypeToVar struct{}

func (changeExplicitTypeToVar) ID() string { return ChangeExplicitTypeToVar }

func (changeExplicitTypeToVar) Trigger() engine.Trigger { return engine.RefactoringTrigger() }

func (changeExplicitTypeToVar) ComputeActions(ctx context.Context, pc *engine.Context) error {
	info, err := forEachAt(pc)
	if err != nil {
		return err
	}

	if syntax.IsVar(info.Type) || !within(pc, info.Type) {
		return engine.ErrNoCandidate
	}

	declared, element, err := forEachTypes(ctx, pc, info)
	if err != nil {
		return err
	}

	if !semantic.IsUsable(declared) || !semantic.IsUsable(element) || !declared.Equal(element) {
		return engine.ErrSemanticRejected
	}

	pc.Register("Change type to 'var'", "", func(context.Context) (*rewrite.Result, error) {
		return rewrite.ChangeForEachType(pc.Tree(), info, syntax.Var())
	})

	return nil
}

type changeVarToExplicitType struct{}

func (changeVarToExplicitType) ID() string { return ChangeVarToExplicitType }

func (changeVarToExplicitType) Trigger() engine.Trigger { return engine.RefactoringTrigger() }

func (changeVarToExplicitType) ComputeActions(ctx context.Context, pc *engine.Context) error {
	info, err := forEachAt(pc)
	if err != nil {
		return err
	}

	if !syntax.IsVar(info.Type) || !within(pc, info.Type) {
		return engine.ErrNoCandidate
	}

	inferred, err := pc.Oracle().ResolveType(ctx, info.Type)
	if err != nil {
		return fmt.Errorf("resolve var: %w", err)
	}

	if !semantic.IsUsable(inferred) {
		return engine.ErrSemanticRejected
	}

	name := inferred.Name()

	pc.Register(fmt.Sprintf("Change type to '%s'", name), "", func(context.Context) (*rewrite.Result, error) {
		return rewrite.ChangeForEachType(pc.Tree(), info, rewrite.TypeSyntax(name))
	})

	return nil
}

type changeTypeAccordingToExpression struct{}

func (changeTypeAccordingToExpression) ID() string { return ChangeTypeAccordingToExpression }

func (changeTypeAccordingToExpression) Trigger() engine.Trigger { return engine.RefactoringTrigger() }

func (changeTypeAccordingToExpression) ComputeActions(ctx context.Context, pc *engine.Context) error {
	info, err := forEachAt(pc)
	if err != nil {
		return err
	}

	if syntax.IsVar(info.Type) || !within(pc, info.Type) {
		return engine.ErrNoCandidate
	}

	declared, element, err := forEachTypes(ctx, pc, info)
	if err != nil {
		return err
	}

	if !semantic.IsUsable(element) || element.Equal(declared) {
		return engine.ErrSemanticRejected
	}

	name := element.Name()

	pc.Register(fmt.Sprintf("Change type to '%s'", name), "", func(context.Context) (*rewrite.Result, error) {
		return rewrite.ChangeForEachType(pc.Tree(), info, rewrite.TypeSyntax(name))
	})

	return nil
}

type renameIdentifierAccordingToTypeName struct{}

func (renameIdentifierAccordingToTypeName) ID() string { return RenameIdentifierAccordingToTypeName }

func (renameIdentifierAccordingToTypeName) Trigger() engine.Trigger {
	return engine.RefactoringTrigger()
}

func (renameIdentifierAccordingToTypeName) ComputeActions(ctx context.Context, pc *engine.Context) error {
	info, err := forEachAt(pc)
	if err != nil {
		return err
	}

	if !within(pc, info.Identifier) {
		return engine.ErrNoCandidate
	}

	typ, err := pc.Oracle().ResolveType(ctx, info.Type)
	if err != nil {
		return fmt.Errorf("resolve foreach type: %w", err)
	}

	if !semantic.IsUsable(typ) {
		return engine.ErrSemanticRejected
	}

	oldName := info.Name()
	newName := IdentifierNameFor(typ)

	if newName == "" || newName == oldName || syntax.IsKeyword(newName) {
		return engine.ErrSemanticRejected
	}

	// list is taken: offer list2, which RenameLocal picks as well.
	shown, err := pc.Oracle().UniqueName(ctx, newName, pc.Tree().Span(info.Statement).Start)
	if errors.Is(err, semantic.ErrNameExhausted) {
		return engine.ErrSemanticRejected
	}

	if err != nil {
		return fmt.Errorf("unique name: %w", err)
	}

	pc.Register(fmt.Sprintf("Rename '%s' to '%s'", oldName, shown), "", func(ctx context.Context) (*rewrite.Result, error) {
		return rewrite.RenameLocal(ctx, pc.Oracle(), pc.Tree(), info.Statement, newName)
	})

	return nil
}

// IdentifierNameFor derives a variable name from a type: generic arguments
// and array ranks are dropped, an interface I prefix is removed, and the
// first letter is lowered. List<int> gives list, IEnumerable<T> gives
// enumerable.
func IdentifierNameFor(typ semantic.Type) string {
	if typ.IsArray() && typ.ElementType() != nil {
		typ = typ.ElementType()
	}

	name := typ.Name()
	if open := strings.IndexAny(name, "<["); open >= 0 {
		name = name[:open]
	}

	if dot := strings.LastIndexByte(name, '.'); dot >= 0 {
		name = name[dot+1:]
	}

	if len(name) > 1 && name[0] == 'I' && unicode.IsUpper(rune(name[1])) {
		name = name[1:]
	}

	first, size := utf8.DecodeRuneInString(name)
	if first == utf8.RuneError {
		return ""
	}

	return string(unicode.ToLower(first)) + name[size:]
}

type replaceForEachWithFor struct{}

func (replaceForEachWithFor) ID() string { return ReplaceForEachWithFor }

func (replaceForEachWithFor) Trigger() engine.Trigger { return engine.RefactoringTrigger() }

func (replaceForEachWithFor) ComputeActions(ctx context.Context, pc *engine.Context) error {
	info, err := forEachAt(pc)
	if err != nil {
		return err
	}

	if within(pc, info.Body) {
		return engine.ErrNoCandidate
	}

	conv, ok, err := gate.CanConvertForEachToFor(ctx, pc.Oracle(), pc.Tree(), info)
	if err != nil {
		return err
	}

	if !ok {
		return engine.ErrSemanticRejected
	}

	register := func(title string, direction rewrite.Direction) {
		pc.Register(title, direction.String(), func(ctx context.Context) (*rewrite.Result, error) {
			return rewrite.ForEachToFor(ctx, pc.Oracle(), pc.Tree(), info, conv, direction)
		})
	}

	register("Replace 'foreach' with 'for'", rewrite.Ascending)
	register("Replace 'foreach' with 'for' and reverse loop", rewrite.Descending)

	return nil
}
