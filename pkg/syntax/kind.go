package syntax

// Kind is the enumerated tag of a token or node.
type Kind uint16

// Token kinds. Tokens are leaves and carry text plus trivia.
const (
	KindNone Kind = iota
	KindIdentifierToken
	KindKeywordToken
	KindPunctuationToken
	KindNumericLiteralToken
	KindStringLiteralToken
	KindCharacterLiteralToken
	KindEndOfFileToken
	KindBadToken

	lastTokenKind
)

// Node kinds.
const (
	KindCompilationUnit Kind = iota + lastTokenKind + 1
	KindUsingDirective
	KindNamespaceDeclaration
	KindClassDeclaration
	KindStructDeclaration
	KindInterfaceDeclaration
	KindDeclarationList
	KindBaseList
	KindFieldDeclaration
	KindPropertyDeclaration
	KindIndexerDeclaration
	KindMethodDeclaration
	KindConstructorDeclaration
	KindAccessorList
	KindAccessorDeclaration
	KindArrowExpressionClause
	KindModifier
	KindParameterList
	KindBracketedParameterList
	KindParameter
	KindBlock
	KindLocalDeclarationStatement
	KindVariableDeclaration
	KindVariableDeclarator
	KindEqualsValueClause
	KindExpressionStatement
	KindIfStatement
	KindElseClause
	KindForEachStatement
	KindForStatement
	KindWhileStatement
	KindReturnStatement
	KindEmptyStatement
	KindIdentifierName
	KindGenericName
	KindQualifiedName
	KindTypeArgumentList
	KindPredefinedType
	KindArrayType
	KindArrayRankSpecifier
	KindNullableType
	KindMemberAccessExpression
	KindElementAccessExpression
	KindBracketedArgumentList
	KindInvocationExpression
	KindArgumentList
	KindArgument
	KindBinaryExpression
	KindPrefixUnaryExpression
	KindPostfixUnaryExpression
	KindParenthesizedExpression
	KindAssignmentExpression
	KindLiteralExpression
	KindObjectCreationExpression
	KindArrayCreationExpression
	KindThisExpression
	KindError
	KindOther
)

//nolint:gochecknoglobals // Read-only name table.
var kindNames = map[Kind]string{
	KindNone:                      "None",
	KindIdentifierToken:           "IdentifierToken",
	KindKeywordToken:              "KeywordToken",
	KindPunctuationToken:          "PunctuationToken",
	KindNumericLiteralToken:       "NumericLiteralToken",
	KindStringLiteralToken:        "StringLiteralToken",
	KindCharacterLiteralToken:     "CharacterLiteralToken",
	KindEndOfFileToken:            "EndOfFileToken",
	KindBadToken:                  "BadToken",
	KindCompilationUnit:           "CompilationUnit",
	KindUsingDirective:            "UsingDirective",
	KindNamespaceDeclaration:      "NamespaceDeclaration",
	KindClassDeclaration:          "ClassDeclaration",
	KindStructDeclaration:         "StructDeclaration",
	KindInterfaceDeclaration:      "InterfaceDeclaration",
	KindDeclarationList:           "DeclarationList",
	KindBaseList:                  "BaseList",
	KindFieldDeclaration:          "FieldDeclaration",
	KindPropertyDeclaration:       "PropertyDeclaration",
	KindIndexerDeclaration:        "IndexerDeclaration",
	KindMethodDeclaration:         "MethodDeclaration",
	KindConstructorDeclaration:    "ConstructorDeclaration",
	KindAccessorList:              "AccessorList",
	KindAccessorDeclaration:       "AccessorDeclaration",
	KindArrowExpressionClause:     "ArrowExpressionClause",
	KindModifier:                  "Modifier",
	KindParameterList:             "ParameterList",
	KindBracketedParameterList:    "BracketedParameterList",
	KindParameter:                 "Parameter",
	KindBlock:                     "Block",
	KindLocalDeclarationStatement: "LocalDeclarationStatement",
	KindVariableDeclaration:       "VariableDeclaration",
	KindVariableDeclarator:        "VariableDeclarator",
	KindEqualsValueClause:         "EqualsValueClause",
	KindExpressionStatement:       "ExpressionStatement",
	KindIfStatement:               "IfStatement",
	KindElseClause:                "ElseClause",
	KindForEachStatement:          "ForEachStatement",
	KindForStatement:              "ForStatement",
	KindWhileStatement:            "WhileStatement",
	KindReturnStatement:           "ReturnStatement",
	KindEmptyStatement:            "EmptyStatement",
	KindIdentifierName:            "IdentifierName",
	KindGenericName:               "GenericName",
	KindQualifiedName:             "QualifiedName",
	KindTypeArgumentList:          "TypeArgumentList",
	KindPredefinedType:            "PredefinedType",
	KindArrayType:                 "ArrayType",
	KindArrayRankSpecifier:        "ArrayRankSpecifier",
	KindNullableType:              "NullableType",
	KindMemberAccessExpression:    "MemberAccessExpression",
	KindElementAccessExpression:   "ElementAccessExpression",
	KindBracketedArgumentList:     "BracketedArgumentList",
	KindInvocationExpression:      "InvocationExpression",
	KindArgumentList:              "ArgumentList",
	KindArgument:                  "Argument",
	KindBinaryExpression:          "BinaryExpression",
	KindPrefixUnaryExpression:     "PrefixUnaryExpression",
	KindPostfixUnaryExpression:    "PostfixUnaryExpression",
	KindParenthesizedExpression:   "ParenthesizedExpression",
	KindAssignmentExpression:      "AssignmentExpression",
	KindLiteralExpression:         "LiteralExpression",
	KindObjectCreationExpression:  "ObjectCreationExpression",
	KindArrayCreationExpression:   "ArrayCreationExpression",
	KindThisExpression:            "ThisExpression",
	KindError:                     "Error",
	KindOther:                     "Other",
}

// String returns the kind name.
func (k Kind) String() string {
	name, ok := kindNames[k]
	if !ok {
		return "Kind(?)"
	}

	return name
}

// IsToken reports whether the kind tags a leaf token.
func (k Kind) IsToken() bool {
	return k > KindNone && k < lastTokenKind
}

// IsStatement reports whether the kind tags a statement.
func (k Kind) IsStatement() bool {
	switch k {
	case KindBlock, KindLocalDeclarationStatement, KindExpressionStatement, KindIfStatement,
		KindForEachStatement, KindForStatement, KindWhileStatement, KindReturnStatement, KindEmptyStatement:
		return true
	default:
		return false
	}
}

// IsTypeSyntax reports whether the kind tags a type reference.
func (k Kind) IsTypeSyntax() bool {
	switch k {
	case KindIdentifierName, KindGenericName, KindQualifiedName, KindPredefinedType, KindArrayType, KindNullableType:
		return true
	default:
		return false
	}
}

// IsMemberDeclaration reports whether the kind tags a type member.
func (k Kind) IsMemberDeclaration() bool {
	switch k {
	case KindFieldDeclaration, KindPropertyDeclaration, KindIndexerDeclaration, KindMethodDeclaration,
		KindConstructorDeclaration, KindClassDeclaration, KindStructDeclaration, KindInterfaceDeclaration:
		return true
	default:
		return false
	}
}
