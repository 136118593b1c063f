package rewrite

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/codefix/pkg/match"
	"github.com/Sumatoshi-tech/codefix/pkg/syntax"
)

// Enumerable methods that have an element access equivalent.
const (
	MethodFirst     = "First"
	MethodLast      = "Last"
	MethodElementAt = "ElementAt"
)

// ErrUnsupportedMethod is returned for enumerable calls without an element
// access equivalent.
var ErrUnsupportedMethod = errors.New("no element access equivalent")

// EnumerableCallToElementAccess rewrites First(), Last() and ElementAt(n)
// on an indexable receiver into receiver[0], receiver[receiver.N - 1] and
// receiver[n].
func EnumerableCallToElementAccess(tree *syntax.Tree, call match.EnumerableCall, lengthName string) (*Result, error) {
	if err := requireNodes(call.Invocation, call.Receiver, call.Name); err != nil {
		return nil, err
	}

	receiver := call.Receiver.WithoutTrivia()

	var index *syntax.Node

	switch call.MethodName() {
	case MethodFirst:
		if len(call.Arguments) != 0 {
			return nil, fmt.Errorf("%s with arguments: %w", MethodFirst, ErrUnsupportedMethod)
		}

		index = syntax.NumericLiteral(0)
	case MethodLast:
		if len(call.Arguments) != 0 {
			return nil, fmt.Errorf("%s with arguments: %w", MethodLast, ErrUnsupportedMethod)
		}

		index = syntax.Binary(syntax.MemberAccess(receiver.Clone(), lengthName), "-", syntax.NumericLiteral(1))
	case MethodElementAt:
		if len(call.Arguments) != 1 {
			return nil, fmt.Errorf("%s arity: %w", MethodElementAt, ErrUnsupportedMethod)
		}

		argument := call.Arguments[0]
		if expressions := argument.ChildNodes(); argument.Is(syntax.KindArgument) && len(expressions) == 1 {
			argument = expressions[0]
		}

		index = argument.WithoutTrivia()
	default:
		return nil, fmt.Errorf("%s: %w", call.MethodName(), ErrUnsupportedMethod)
	}

	replacement := syntax.ElementAccess(receiver, index).
		WithTriviaFrom(call.Invocation).
		WithAnnotations(syntax.FormatterAnnotation)

	return newResult(tree, call.Invocation, replacement)
}
