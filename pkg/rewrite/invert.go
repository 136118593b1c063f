package rewrite

import (
	"context"
	"fmt"

	"github.com/Sumatoshi-tech/codefix/pkg/match"
	"github.com/Sumatoshi-tech/codefix/pkg/semantic"
	"github.com/Sumatoshi-tech/codefix/pkg/syntax"
)

//nolint:gochecknoglobals // Read-only operator table.
var (
	negatedEquality = map[string]string{"==": "!=", "!=": "=="}
	negatedRelation = map[string]string{"<": ">=", ">": "<=", "<=": ">", ">=": "<"}
)

// InvertIfElse negates the condition of a simple if-else and swaps its
// branches. Each branch keeps the trivia of the slot it moves into.
func InvertIfElse(ctx context.Context, oracle semantic.Oracle, tree *syntax.Tree, info match.SimpleIfElse) (*Result, error) {
	if err := requireNodes(info.If, info.Condition, info.WhenTrue, info.WhenFalse); err != nil {
		return nil, err
	}

	negated, err := Negate(ctx, oracle, info.Condition)
	if err != nil {
		return nil, err
	}

	targets := []*syntax.Node{info.Condition, info.WhenTrue, info.WhenFalse}

	replacement := syntax.ReplaceNodes(info.If, targets, func(original *syntax.Node) *syntax.Node {
		switch original {
		case info.Condition:
			return negated.WithTriviaFrom(original)
		case info.WhenTrue:
			return info.WhenFalse.WithTriviaFrom(original)
		default:
			return info.WhenTrue.WithTriviaFrom(original)
		}
	})

	return newResult(tree, info.If, replacement.WithAnnotations(syntax.FormatterAnnotation))
}

// Negate returns the logical negation of a boolean expression. Equality
// operators are always flipped. Relational operators are flipped only when
// both operands are integral, since the flip is wrong for NaN. A leading !
// is removed. Anything else is wrapped in !( ), or prefixed with ! when it
// is a primary expression.
func Negate(ctx context.Context, oracle semantic.Oracle, condition *syntax.Node) (*syntax.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch condition.Kind() {
	case syntax.KindPrefixUnaryExpression:
		operator, operand := syntax.UnaryParts(condition)
		if operator != nil && operator.Text() == "!" && operand != nil {
			return syntax.WalkDownParentheses(operand, true).WithTriviaFrom(condition), nil
		}
	case syntax.KindLiteralExpression:
		switch condition.Text() {
		case "true":
			return replaceFirstToken(condition, "false"), nil
		case "false":
			return replaceFirstToken(condition, "true"), nil
		}
	case syntax.KindBinaryExpression:
		flipped, ok, err := flipComparison(ctx, oracle, condition)
		if err != nil || ok {
			return flipped, err
		}
	case syntax.KindParenthesizedExpression:
		inner := syntax.ParenthesizedInner(condition)
		if inner != nil && isPrimary(inner) {
			return Negate(ctx, oracle, inner)
		}
	}

	if isPrimary(condition) {
		return syntax.PrefixUnary("!", condition.WithoutTrivia()), nil
	}

	return syntax.PrefixUnary("!", syntax.Parenthesized(condition.WithoutTrivia())), nil
}

func flipComparison(ctx context.Context, oracle semantic.Oracle, binary *syntax.Node) (*syntax.Node, bool, error) {
	left, operator, right := syntax.BinaryParts(binary)
	if operator == nil || left == nil || right == nil {
		return nil, false, nil
	}

	if flipped, ok := negatedEquality[operator.Text()]; ok {
		return syntax.ReplaceNode(binary, operator, operator.WithText(flipped)), true, nil
	}

	flipped, ok := negatedRelation[operator.Text()]
	if !ok {
		return nil, false, nil
	}

	for _, operand := range []*syntax.Node{left, right} {
		typ, err := oracle.ResolveType(ctx, operand)
		if err != nil {
			return nil, false, fmt.Errorf("resolve comparison operand: %w", err)
		}

		if !semantic.IsUsable(typ) || !typ.IsIntegral() {
			return nil, false, nil
		}
	}

	return syntax.ReplaceNode(binary, operator, operator.WithText(flipped)), true, nil
}

func replaceFirstToken(node *syntax.Node, text string) *syntax.Node {
	token := node.FirstToken()

	return syntax.ReplaceNode(node, token, token.WithText(text))
}

func isPrimary(expression *syntax.Node) bool {
	return expression.Is(
		syntax.KindIdentifierName,
		syntax.KindMemberAccessExpression,
		syntax.KindInvocationExpression,
		syntax.KindElementAccessExpression,
		syntax.KindLiteralExpression,
		syntax.KindThisExpression,
		syntax.KindParenthesizedExpression,
	)
}
