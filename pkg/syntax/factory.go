package syntax

import "strconv"

// Factory helpers build C#-shaped subtrees with single-space separation.
// Children passed in keep their own trivia; a space is only added where a
// child has none.

const space Trivia = " "

// NewIdentifierToken creates an identifier token.
func NewIdentifierToken(name string) *Node {
	return NewToken(KindIdentifierToken, name)
}

// Keyword creates a keyword token.
func Keyword(text string) *Node {
	return NewToken(KindKeywordToken, text)
}

// Punctuation creates a punctuation or operator token.
func Punctuation(text string) *Node {
	return NewToken(KindPunctuationToken, text)
}

func keywordSpaced(text string) *Node {
	return NewTokenWithTrivia(KindKeywordToken, "", text, space)
}

func punctuationAfter(text string) *Node {
	return NewTokenWithTrivia(KindPunctuationToken, "", text, space)
}

func punctuationAround(text string) *Node {
	return NewTokenWithTrivia(KindPunctuationToken, space, text, space)
}

// WithoutTrivia strips the outer trivia of a node.
func (targetNode *Node) WithoutTrivia() *Node {
	return targetNode.WithLeadingTrivia("").WithTrailingTrivia("")
}

func spaceAfter(targetNode *Node) *Node {
	if targetNode == nil || targetNode.TrailingTrivia() != "" {
		return targetNode
	}

	return targetNode.WithTrailingTrivia(space)
}

func separated(items []*Node, wrap func(*Node) *Node) []*Node {
	out := make([]*Node, 0, 2*len(items)) //nolint:mnd // item and separator.

	for idx, item := range items {
		if idx > 0 {
			out = append(out, punctuationAfter(","))
		}

		if wrap != nil {
			item = wrap(item)
		}

		out = append(out, item)
	}

	return out
}

// IdentifierName creates a simple name.
func IdentifierName(name string) *Node {
	return NewNode(KindIdentifierName, NewIdentifierToken(name))
}

// Var creates the implicit var type.
func Var() *Node {
	return IdentifierName("var")
}

// PredefinedType creates a keyword type such as int or string.
func PredefinedType(keyword string) *Node {
	return NewNode(KindPredefinedType, Keyword(keyword))
}

// GenericName creates Name<T1, T2>.
func GenericName(name string, typeArguments ...*Node) *Node {
	children := []*Node{Punctuation("<")}
	children = append(children, separated(typeArguments, nil)...)
	children = append(children, Punctuation(">"))

	return NewNode(KindGenericName, IdentifierName(name), NewNode(KindTypeArgumentList, children...))
}

// ArrayType creates T[].
func ArrayType(elementType *Node) *Node {
	return NewNode(KindArrayType, elementType, NewNode(KindArrayRankSpecifier, Punctuation("["), Punctuation("]")))
}

// NumericLiteral creates an integer literal expression.
func NumericLiteral(value int) *Node {
	return NewNode(KindLiteralExpression, NewToken(KindNumericLiteralToken, strconv.Itoa(value)))
}

// StringLiteral creates a quoted string literal expression.
func StringLiteral(value string) *Node {
	return NewNode(KindLiteralExpression, NewToken(KindStringLiteralToken, strconv.Quote(value)))
}

// MemberAccess creates expression.name.
func MemberAccess(expression *Node, name string) *Node {
	return NewNode(KindMemberAccessExpression, expression, Punctuation("."), IdentifierName(name))
}

// Argument wraps an expression as an argument.
func Argument(expression *Node) *Node {
	return NewNode(KindArgument, expression)
}

// ArgumentList creates (a, b).
func ArgumentList(arguments ...*Node) *Node {
	children := []*Node{Punctuation("(")}
	children = append(children, separated(arguments, Argument)...)
	children = append(children, Punctuation(")"))

	return NewNode(KindArgumentList, children...)
}

// BracketedArgumentList creates [a, b].
func BracketedArgumentList(arguments ...*Node) *Node {
	children := []*Node{Punctuation("[")}
	children = append(children, separated(arguments, Argument)...)
	children = append(children, Punctuation("]"))

	return NewNode(KindBracketedArgumentList, children...)
}

// ElementAccess creates expression[a, b].
func ElementAccess(expression *Node, arguments ...*Node) *Node {
	return NewNode(KindElementAccessExpression, expression, BracketedArgumentList(arguments...))
}

// Invocation creates expression(a, b).
func Invocation(expression *Node, arguments ...*Node) *Node {
	return NewNode(KindInvocationExpression, expression, ArgumentList(arguments...))
}

// ObjectCreation creates new T(a, b).
func ObjectCreation(typeSyntax *Node, arguments ...*Node) *Node {
	return NewNode(KindObjectCreationExpression, keywordSpaced("new"), typeSyntax, ArgumentList(arguments...))
}

// Binary creates left op right.
func Binary(left *Node, operator string, right *Node) *Node {
	return NewNode(KindBinaryExpression, left, punctuationAround(operator), right)
}

// PrefixUnary creates op operand.
func PrefixUnary(operator string, operand *Node) *Node {
	return NewNode(KindPrefixUnaryExpression, Punctuation(operator), operand)
}

// PostfixUnary creates operand op.
func PostfixUnary(operand *Node, operator string) *Node {
	return NewNode(KindPostfixUnaryExpression, operand, Punctuation(operator))
}

// Parenthesized creates (expression).
func Parenthesized(expression *Node) *Node {
	return NewNode(KindParenthesizedExpression, Punctuation("("), expression, Punctuation(")"))
}

// VariableDeclarator creates name = value, or just name when value is nil.
func VariableDeclarator(name string, value *Node) *Node {
	return VariableDeclaratorFromToken(NewIdentifierToken(name), value)
}

// VariableDeclaratorFromToken creates a declarator around an existing
// identifier token, keeping its annotations.
func VariableDeclaratorFromToken(identifier, value *Node) *Node {
	name := NewNode(KindIdentifierName, identifier)
	if value == nil {
		return NewNode(KindVariableDeclarator, name)
	}

	return NewNode(KindVariableDeclarator,
		name,
		NewNode(KindEqualsValueClause, punctuationAround("="), value))
}

// VariableDeclaration creates T a = x, b.
func VariableDeclaration(typeSyntax *Node, declarators ...*Node) *Node {
	children := []*Node{spaceAfter(typeSyntax)}
	children = append(children, separated(declarators, nil)...)

	return NewNode(KindVariableDeclaration, children...)
}

// LocalDeclarationStatement creates T a = x;.
func LocalDeclarationStatement(declaration *Node) *Node {
	return NewNode(KindLocalDeclarationStatement, declaration, Punctuation(";"))
}

// ExpressionStatement creates expression;.
func ExpressionStatement(expression *Node) *Node {
	return NewNode(KindExpressionStatement, expression, Punctuation(";"))
}

// ReturnStatement creates return expression;.
func ReturnStatement(expression *Node) *Node {
	if expression == nil {
		return NewNode(KindReturnStatement, Keyword("return"), Punctuation(";"))
	}

	return NewNode(KindReturnStatement, keywordSpaced("return"), expression, Punctuation(";"))
}

// Block creates { a; b; }.
func Block(statements ...*Node) *Node {
	children := []*Node{punctuationAfter("{")}
	for _, statement := range statements {
		children = append(children, spaceAfter(statement))
	}

	children = append(children, Punctuation("}"))

	return NewNode(KindBlock, children...)
}

// IfStatement creates if (condition) statement else alternative. The else
// branch is omitted when alternative is nil.
func IfStatement(condition, statement, alternative *Node) *Node {
	children := []*Node{keywordSpaced("if"), Punctuation("("), condition, punctuationAfter(")"), statement}
	if alternative != nil {
		children = append(children, ElseClause(alternative))
	}

	return NewNode(KindIfStatement, children...)
}

// ElseClause creates else statement.
func ElseClause(statement *Node) *Node {
	return NewNode(KindElseClause, NewTokenWithTrivia(KindKeywordToken, space, "else", space), statement)
}

// ForStatement creates for (declaration; condition; incrementors) statement.
func ForStatement(declaration, condition *Node, incrementors []*Node, statement *Node) *Node {
	children := []*Node{
		keywordSpaced("for"),
		Punctuation("("),
		declaration,
		punctuationAfter(";"),
		condition,
		punctuationAfter(";"),
	}
	children = append(children, separated(incrementors, nil)...)
	children = append(children, punctuationAfter(")"), statement)

	return NewNode(KindForStatement, children...)
}

// ForEachStatement creates foreach (T name in expression) statement.
func ForEachStatement(typeSyntax *Node, name string, expression, statement *Node) *Node {
	return NewNode(KindForEachStatement,
		keywordSpaced("foreach"),
		Punctuation("("),
		spaceAfter(typeSyntax),
		IdentifierName(name),
		punctuationAround("in"),
		expression,
		punctuationAfter(")"),
		statement)
}

// Modifier creates a modifier keyword followed by a space.
func Modifier(keyword string) *Node {
	return NewNode(KindModifier, keywordSpaced(keyword))
}

func modifierNodes(keywords []string) []*Node {
	nodes := make([]*Node, 0, len(keywords))
	for _, keyword := range keywords {
		nodes = append(nodes, Modifier(keyword))
	}

	return nodes
}

// Parameter creates T name.
func Parameter(typeSyntax *Node, name string) *Node {
	return NewNode(KindParameter, spaceAfter(typeSyntax), IdentifierName(name))
}

// ParameterList creates (T a, U b).
func ParameterList(parameters ...*Node) *Node {
	children := []*Node{Punctuation("(")}
	children = append(children, separated(parameters, nil)...)
	children = append(children, Punctuation(")"))

	return NewNode(KindParameterList, children...)
}

// MethodDeclaration creates modifiers T Name(parameters) body.
func MethodDeclaration(modifiers []string, returnType *Node, name string, parameters []*Node, body *Node) *Node {
	children := modifierNodes(modifiers)
	children = append(children, spaceAfter(returnType), IdentifierName(name), spaceAfter(ParameterList(parameters...)), body)

	return NewNode(KindMethodDeclaration, children...)
}

// AccessorList creates { get; set; }.
func AccessorList(keywords ...string) *Node {
	children := []*Node{punctuationAfter("{")}
	for _, keyword := range keywords {
		children = append(children, NewNode(KindAccessorDeclaration, Keyword(keyword), punctuationAfter(";")))
	}

	children = append(children, Punctuation("}"))

	return NewNode(KindAccessorList, children...)
}

// PropertyDeclaration creates modifiers T Name { accessors }.
func PropertyDeclaration(modifiers []string, typeSyntax *Node, name string, accessors ...string) *Node {
	children := modifierNodes(modifiers)
	children = append(children, spaceAfter(typeSyntax), spaceAfter(IdentifierName(name)), AccessorList(accessors...))

	return NewNode(KindPropertyDeclaration, children...)
}

// IndexerDeclaration creates modifiers T this[parameters] { accessors }.
func IndexerDeclaration(modifiers []string, typeSyntax *Node, parameters []*Node, accessors ...string) *Node {
	bracketed := []*Node{Punctuation("[")}
	bracketed = append(bracketed, separated(parameters, nil)...)
	bracketed = append(bracketed, punctuationAfter("]"))

	children := modifierNodes(modifiers)
	children = append(children,
		spaceAfter(typeSyntax),
		Keyword("this"),
		NewNode(KindBracketedParameterList, bracketed...),
		AccessorList(accessors...))

	return NewNode(KindIndexerDeclaration, children...)
}

// FieldDeclaration creates modifiers T name = value;.
func FieldDeclaration(modifiers []string, typeSyntax *Node, name string, value *Node) *Node {
	children := modifierNodes(modifiers)
	children = append(children,
		VariableDeclaration(typeSyntax, VariableDeclarator(name, value)),
		Punctuation(";"))

	return NewNode(KindFieldDeclaration, children...)
}

// ClassDeclaration creates modifiers class Name : Bases { members }.
func ClassDeclaration(modifiers []string, name string, bases []*Node, members ...*Node) *Node {
	children := modifierNodes(modifiers)
	children = append(children, keywordSpaced("class"), spaceAfter(IdentifierName(name)))

	if len(bases) > 0 {
		baseChildren := []*Node{punctuationAfter(":")}
		baseChildren = append(baseChildren, separated(bases, nil)...)
		children = append(children, spaceAfter(NewNode(KindBaseList, baseChildren...)))
	}

	body := []*Node{punctuationAfter("{")}
	for _, member := range members {
		body = append(body, spaceAfter(member))
	}

	body = append(body, Punctuation("}"))
	children = append(children, NewNode(KindDeclarationList, body...))

	return NewNode(KindClassDeclaration, children...)
}

// CompilationUnit creates a file from top-level members and an end-of-file
// token.
func CompilationUnit(members ...*Node) *Node {
	children := make([]*Node, 0, len(members)+1)
	for idx, member := range members {
		if idx < len(members)-1 {
			member = spaceAfter(member)
		}

		children = append(children, member)
	}

	children = append(children, NewToken(KindEndOfFileToken, ""))

	return NewNode(KindCompilationUnit, children...)
}
