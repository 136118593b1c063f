package csharp

import (
	"strings"
	"unicode"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/codefix/pkg/syntax"
)

// Grammar node types that become inner nodes.
//
//nolint:gochecknoglobals // Read-only mapping table.
var nodeKinds = map[string]syntax.Kind{
	"compilation_unit":                   syntax.KindCompilationUnit,
	"using_directive":                    syntax.KindUsingDirective,
	"namespace_declaration":              syntax.KindNamespaceDeclaration,
	"file_scoped_namespace_declaration":  syntax.KindNamespaceDeclaration,
	"class_declaration":                  syntax.KindClassDeclaration,
	"struct_declaration":                 syntax.KindStructDeclaration,
	"interface_declaration":              syntax.KindInterfaceDeclaration,
	"declaration_list":                   syntax.KindDeclarationList,
	"base_list":                          syntax.KindBaseList,
	"field_declaration":                  syntax.KindFieldDeclaration,
	"property_declaration":               syntax.KindPropertyDeclaration,
	"indexer_declaration":                syntax.KindIndexerDeclaration,
	"method_declaration":                 syntax.KindMethodDeclaration,
	"constructor_declaration":            syntax.KindConstructorDeclaration,
	"accessor_list":                      syntax.KindAccessorList,
	"accessor_declaration":               syntax.KindAccessorDeclaration,
	"arrow_expression_clause":            syntax.KindArrowExpressionClause,
	"modifier":                           syntax.KindModifier,
	"parameter_list":                     syntax.KindParameterList,
	"bracketed_parameter_list":           syntax.KindBracketedParameterList,
	"parameter":                          syntax.KindParameter,
	"block":                              syntax.KindBlock,
	"local_declaration_statement":        syntax.KindLocalDeclarationStatement,
	"variable_declaration":               syntax.KindVariableDeclaration,
	"variable_declarator":                syntax.KindVariableDeclarator,
	"equals_value_clause":                syntax.KindEqualsValueClause,
	"expression_statement":               syntax.KindExpressionStatement,
	"if_statement":                       syntax.KindIfStatement,
	"else_clause":                        syntax.KindElseClause,
	"foreach_statement":                  syntax.KindForEachStatement,
	"for_statement":                      syntax.KindForStatement,
	"while_statement":                    syntax.KindWhileStatement,
	"return_statement":                   syntax.KindReturnStatement,
	"empty_statement":                    syntax.KindEmptyStatement,
	"identifier_name":                    syntax.KindIdentifierName,
	"implicit_type":                      syntax.KindIdentifierName,
	"generic_name":                       syntax.KindGenericName,
	"qualified_name":                     syntax.KindQualifiedName,
	"type_argument_list":                 syntax.KindTypeArgumentList,
	"predefined_type":                    syntax.KindPredefinedType,
	"array_type":                         syntax.KindArrayType,
	"array_rank_specifier":               syntax.KindArrayRankSpecifier,
	"nullable_type":                      syntax.KindNullableType,
	"member_access_expression":           syntax.KindMemberAccessExpression,
	"element_access_expression":          syntax.KindElementAccessExpression,
	"bracketed_argument_list":            syntax.KindBracketedArgumentList,
	"invocation_expression":              syntax.KindInvocationExpression,
	"argument_list":                      syntax.KindArgumentList,
	"argument":                           syntax.KindArgument,
	"binary_expression":                  syntax.KindBinaryExpression,
	"prefix_unary_expression":            syntax.KindPrefixUnaryExpression,
	"postfix_unary_expression":           syntax.KindPostfixUnaryExpression,
	"parenthesized_expression":           syntax.KindParenthesizedExpression,
	"assignment_expression":              syntax.KindAssignmentExpression,
	"string_literal":                     syntax.KindLiteralExpression,
	"verbatim_string_literal":            syntax.KindLiteralExpression,
	"character_literal":                  syntax.KindLiteralExpression,
	"object_creation_expression":         syntax.KindObjectCreationExpression,
	"array_creation_expression":          syntax.KindArrayCreationExpression,
	"implicit_array_creation_expression": syntax.KindArrayCreationExpression,
	"this_expression":                    syntax.KindThisExpression,
	"ERROR":                              syntax.KindError,
}

// Named grammar leaves are wrapped: the node kind holds a single token.
type leafShape struct {
	node  syntax.Kind
	token syntax.Kind
}

//nolint:gochecknoglobals // Read-only mapping table.
var leafShapes = map[string]leafShape{
	"identifier":        {syntax.KindIdentifierName, syntax.KindIdentifierToken},
	"implicit_type":     {syntax.KindIdentifierName, syntax.KindIdentifierToken},
	"predefined_type":   {syntax.KindPredefinedType, syntax.KindKeywordToken},
	"modifier":          {syntax.KindModifier, syntax.KindKeywordToken},
	"integer_literal":   {syntax.KindLiteralExpression, syntax.KindNumericLiteralToken},
	"real_literal":      {syntax.KindLiteralExpression, syntax.KindNumericLiteralToken},
	"boolean_literal":   {syntax.KindLiteralExpression, syntax.KindKeywordToken},
	"null_literal":      {syntax.KindLiteralExpression, syntax.KindKeywordToken},
	"character_literal": {syntax.KindLiteralExpression, syntax.KindCharacterLiteralToken},
	"string_literal":    {syntax.KindLiteralExpression, syntax.KindStringLiteralToken},
	"this_expression":   {syntax.KindThisExpression, syntax.KindKeywordToken},
	// x in x => x * 2.
	"implicit_parameter": {syntax.KindIdentifierName, syntax.KindIdentifierToken},
}

// Parents where the anonymous this keyword is not an expression. Elsewhere
// it is wrapped as a ThisExpression.
//
//nolint:gochecknoglobals // Read-only set.
var thisKeywordParents = map[string]bool{
	"indexer_declaration":     true,
	"constructor_initializer": true,
	"parameter":               true,
	"modifier":                true,
}

// Grammar types whose text is trivia rather than tokens.
//
//nolint:gochecknoglobals // Read-only set.
var triviaTypes = map[string]bool{
	"comment":                true,
	"preproc_region":         true,
	"preproc_endregion":      true,
	"preprocessor_directive": true,
}

// draft is the mutable intermediate form: leaves receive their trivia once
// every token position is known, then the immutable tree is built.
type draft struct {
	kind      syntax.Kind
	label     string
	tokenKind syntax.Kind
	start     int
	end       int
	missing   bool
	leading   syntax.Trivia
	trailing  syntax.Trivia
	children  []*draft
}

func (d *draft) isLeaf() bool {
	return d.tokenKind != syntax.KindNone
}

type converter struct {
	source []byte
	leaves []*draft
}

func convert(root sitter.Node, source []byte) *syntax.Node {
	conv := &converter{source: source}

	top := conv.visit(root)
	if top.kind != syntax.KindCompilationUnit {
		top = &draft{kind: syntax.KindCompilationUnit, start: top.start, end: top.end, children: []*draft{top}}
	}

	eof := &draft{tokenKind: syntax.KindEndOfFileToken, start: len(source), end: len(source)}
	top.children = append(top.children, eof)
	conv.leaves = append(conv.leaves, eof)

	conv.assignTrivia()

	return conv.build(top)
}

func (conv *converter) visit(tsNode sitter.Node) *draft {
	start := int(tsNode.StartByte())
	end := int(tsNode.EndByte())
	nodeType := tsNode.Type()

	if tsNode.ChildCount() == 0 {
		return conv.visitLeaf(nodeType, tsNode.IsNamed(), start, end)
	}

	kind, ok := nodeKinds[nodeType]
	if !ok {
		kind = syntax.KindOther
	}

	current := &draft{kind: kind, start: start, end: end}
	if kind == syntax.KindOther || kind == syntax.KindError {
		current.label = nodeType
	}

	cursor := start

	for idx := range tsNode.ChildCount() {
		child := tsNode.Child(idx)
		if child.IsNull() {
			continue
		}

		childStart := int(child.StartByte())
		conv.fillGap(current, cursor, childStart)

		if triviaTypes[child.Type()] {
			cursor = max(cursor, int(child.EndByte()))

			continue
		}

		next := conv.visit(child)
		if !child.IsNamed() && child.Type() == "this" && !thisKeywordParents[nodeType] {
			next = &draft{kind: syntax.KindThisExpression, start: next.start, end: next.end, children: []*draft{next}}
		}

		current.children = append(current.children, next)
		cursor = max(cursor, int(child.EndByte()))
	}

	conv.fillGap(current, cursor, end)

	return current
}

func (conv *converter) visitLeaf(nodeType string, named bool, start, end int) *draft {
	text := string(conv.source[start:end])
	missing := start == end

	if shape, ok := leafShapes[nodeType]; ok && named {
		token := conv.newLeaf(shape.token, start, end, missing)

		return &draft{kind: shape.node, start: start, end: end, children: []*draft{token}}
	}

	if kind, ok := nodeKinds[nodeType]; ok && named && kind != syntax.KindLiteralExpression {
		token := conv.newLeaf(tokenKindFor(text), start, end, missing)

		return &draft{kind: kind, start: start, end: end, children: []*draft{token}}
	}

	return conv.newLeaf(tokenKindFor(text), start, end, missing)
}

func (conv *converter) newLeaf(kind syntax.Kind, start, end int, missing bool) *draft {
	leaf := &draft{tokenKind: kind, start: start, end: end, missing: missing}
	conv.leaves = append(conv.leaves, leaf)

	return leaf
}

// fillGap turns text inside a node that no child covers into a token, unless
// it is whitespace.
func (conv *converter) fillGap(parent *draft, from, to int) {
	if to <= from {
		return
	}

	gap := string(conv.source[from:to])
	trimmed := strings.TrimSpace(gap)

	if trimmed == "" || strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "/*") {
		return
	}

	offset := from + strings.Index(gap, trimmed)
	kind := syntax.KindBadToken

	if parent.kind == syntax.KindLiteralExpression {
		kind = syntax.KindStringLiteralToken
	}

	parent.children = append(parent.children, conv.newLeaf(kind, offset, offset+len(trimmed), false))
}

func tokenKindFor(text string) syntax.Kind {
	if text == "" {
		return syntax.KindBadToken
	}

	for _, r := range text {
		if !unicode.IsLetter(r) && r != '_' {
			return syntax.KindPunctuationToken
		}
	}

	return syntax.KindKeywordToken
}

// assignTrivia splits the text between consecutive tokens: the previous
// token keeps everything up to and including the first line break, the next
// token receives the rest. Missing tokens never hold trivia.
func (conv *converter) assignTrivia() {
	var previous *draft

	previousEnd := 0

	for _, leaf := range conv.leaves {
		if leaf.missing {
			continue
		}

		start := max(leaf.start, previousEnd)
		gap := string(conv.source[previousEnd:start])

		if previous == nil {
			leaf.leading = syntax.Trivia(gap)
		} else {
			trailing, leading := splitGap(gap)
			previous.trailing = syntax.Trivia(trailing)
			leaf.leading = syntax.Trivia(leading)
		}

		leaf.start = start
		leaf.end = max(leaf.end, start)
		previousEnd = leaf.end
		previous = leaf
	}
}

func splitGap(gap string) (trailing, leading string) {
	newline := strings.IndexByte(gap, '\n')
	if newline < 0 {
		return gap, ""
	}

	return gap[:newline+1], gap[newline+1:]
}

func (conv *converter) build(current *draft) *syntax.Node {
	if current.isLeaf() {
		if current.missing {
			return syntax.NewMissingToken(current.tokenKind)
		}

		text := string(conv.source[current.start:current.end])

		return syntax.NewTokenWithTrivia(current.tokenKind, current.leading, text, current.trailing)
	}

	children := make([]*syntax.Node, 0, len(current.children))
	for _, child := range current.children {
		children = append(children, conv.build(child))
	}

	return syntax.NewLabeledNode(current.kind, current.label, children...)
}
