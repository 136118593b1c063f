package rewrite

import (
	"strings"

	"github.com/Sumatoshi-tech/codefix/pkg/match"
	"github.com/Sumatoshi-tech/codefix/pkg/syntax"
)

// ChangeForEachType replaces the declared type of a foreach with newType,
// keeping the trivia around the old type.
func ChangeForEachType(tree *syntax.Tree, info match.ForEach, newType *syntax.Node) (*Result, error) {
	if err := requireNodes(info.Statement, info.Type, newType); err != nil {
		return nil, err
	}

	replacement := newType.WithTriviaFrom(info.Type).WithAnnotations(syntax.FormatterAnnotation)

	return newResult(tree, info.Type, replacement)
}

// TypeSyntax builds type syntax from a display name such as List<int>,
// string[] or Dictionary<string, List<int>>.
func TypeSyntax(name string) *syntax.Node {
	name = strings.TrimSpace(name)

	if base, ok := strings.CutSuffix(name, "[]"); ok {
		return syntax.ArrayType(TypeSyntax(base))
	}

	open := strings.IndexByte(name, '<')
	if open < 0 || !strings.HasSuffix(name, ">") {
		if syntax.IsPredefinedType(name) {
			return syntax.PredefinedType(name)
		}

		return syntax.IdentifierName(name)
	}

	arguments := splitTypeArguments(name[open+1 : len(name)-1])
	nodes := make([]*syntax.Node, 0, len(arguments))

	for _, argument := range arguments {
		nodes = append(nodes, TypeSyntax(argument))
	}

	return syntax.GenericName(name[:open], nodes...)
}

func splitTypeArguments(list string) []string {
	var (
		parts []string
		depth int
		start int
	)

	for idx, r := range list {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, list[start:idx])
				start = idx + 1
			}
		}
	}

	return append(parts, list[start:])
}
