package rewrite

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/codefix/pkg/gate"
	"github.com/Sumatoshi-tech/codefix/pkg/match"
	"github.com/Sumatoshi-tech/codefix/pkg/semantic"
	"github.com/Sumatoshi-tech/codefix/pkg/syntax"
)

// DefaultIndexName is the preferred name of the synthesized loop counter.
const DefaultIndexName = "i"

// Direction selects the iteration order of a synthesized for loop.
type Direction int

// Loop directions.
const (
	Ascending Direction = iota
	Descending
)

// String returns the direction name used in action keys.
func (direction Direction) String() string {
	if direction == Descending {
		return "descending"
	}

	return "ascending"
}

// ForEachToFor replaces a foreach with an indexed for loop over the same
// collection. References to the iteration variable inside the body become
// element accesses. The counter is named i unless that collides, in which
// case the generated name carries a rename annotation.
func ForEachToFor(
	ctx context.Context, oracle semantic.Oracle, tree *syntax.Tree,
	info match.ForEach, conv gate.Convertible, direction Direction,
) (*Result, error) {
	if err := requireNodes(info.Statement, info.Identifier, info.Expression, info.Body); err != nil {
		return nil, err
	}

	name, err := oracle.UniqueName(ctx, DefaultIndexName, tree.Span(info.Body).Start)
	if err != nil {
		if errors.Is(err, semantic.ErrNameExhausted) {
			return nil, fmt.Errorf("loop counter %q: %w", DefaultIndexName, ErrNameGenerationExhausted)
		}

		return nil, fmt.Errorf("loop counter: %w", err)
	}

	references, err := symbolReferences(ctx, oracle, info.Statement, info.Body)
	if err != nil {
		return nil, err
	}

	expression := info.Expression.WithoutTrivia()

	body := syntax.ReplaceNodes(info.Body, references, func(reference *syntax.Node) *syntax.Node {
		return syntax.ElementAccess(expression.Clone(), syntax.IdentifierName(name)).WithTriviaFrom(reference)
	})

	counter := syntax.NewIdentifierToken(name)
	if name != DefaultIndexName {
		counter = counter.WithAnnotations(syntax.RenameAnnotation)
	}

	length := syntax.MemberAccess(expression.Clone(), conv.LengthName)

	var (
		initial, condition *syntax.Node
		step               string
	)

	switch direction {
	case Descending:
		initial = syntax.Binary(length, "-", syntax.NumericLiteral(1))
		condition = syntax.Binary(syntax.IdentifierName(name), ">=", syntax.NumericLiteral(0))
		step = "--"
	default:
		initial = syntax.NumericLiteral(0)
		condition = syntax.Binary(syntax.IdentifierName(name), "<", length)
		step = "++"
	}

	declaration := syntax.VariableDeclaration(syntax.PredefinedType("int"),
		syntax.VariableDeclaratorFromToken(counter, initial))

	forStatement := syntax.ForStatement(declaration, condition,
		[]*syntax.Node{syntax.PostfixUnary(syntax.IdentifierName(name), step)}, body)
	forStatement = keepCloseParenTrivia(info.Statement, forStatement)

	replacement := forStatement.WithTriviaFrom(info.Statement).WithAnnotations(syntax.FormatterAnnotation)

	return newResult(tree, info.Statement, replacement)
}

// keepCloseParenTrivia copies the trivia after the header's closing
// parenthesis so the body keeps its line.
func keepCloseParenTrivia(from, to *syntax.Node) *syntax.Node {
	source := from.ChildToken(")")
	target := to.ChildToken(")")

	if source == nil || target == nil {
		return to
	}

	return syntax.ReplaceNode(to, target, target.WithTrailingTrivia(source.TrailingTrivia()))
}

// symbolReferences returns the simple names under scope that resolve to the
// symbol declared by declaration.
func symbolReferences(ctx context.Context, oracle semantic.Oracle, declaration, scope *syntax.Node) ([]*syntax.Node, error) {
	declared, err := oracle.DeclaredSymbol(ctx, declaration)
	if err != nil {
		return nil, fmt.Errorf("declared symbol: %w", err)
	}

	if declared == nil {
		return nil, fmt.Errorf("declared symbol of %s: %w", declaration.Kind(), semantic.ErrUnresolved)
	}

	var references []*syntax.Node

	for _, name := range syntax.Find(scope, syntax.IsKind(syntax.KindIdentifierName)) {
		if err = ctx.Err(); err != nil {
			return nil, err
		}

		if name.Text() != declared.Name() {
			continue
		}

		resolved, resolveErr := oracle.ResolveSymbol(ctx, name)
		if resolveErr != nil {
			return nil, fmt.Errorf("resolve %q: %w", name.Text(), resolveErr)
		}

		if resolved != nil && oracle.SymbolsEqual(declared, resolved) {
			references = append(references, name)
		}
	}

	return references, nil
}
