package syntax

// Role accessors for the C#-shaped node kinds. They read children
// positionally and never fail: absent roles are nil.

// IfParts are the roles of an if statement.
type IfParts struct {
	Condition   *Node
	Statement   *Node
	ElseClause  *Node
	ElseKeyword *Node
	Else        *Node
}

// IfStatementParts decomposes an if statement. The alternative may be held
// in an ElseClause node or follow a bare else keyword.
func IfStatementParts(ifStatement *Node) IfParts {
	var (
		parts     IfParts
		afterOpen bool
		afterElse bool
		afterBody bool
	)

	for _, child := range ifStatement.Children() {
		switch {
		case child.IsToken() && child.Text() == "(":
			afterOpen = true
		case child.IsToken() && child.Text() == ")":
			afterBody = true
		case child.IsToken() && child.Text() == "else":
			parts.ElseKeyword = child
			afterElse = true
		case child.Is(KindElseClause):
			parts.ElseClause = child
			parts.ElseKeyword = child.ChildToken("else")
			parts.Else = firstOrNil(child.ChildNodes())
		case child.IsToken():
		case afterElse:
			parts.Else = child
		case afterBody:
			parts.Statement = child
		case afterOpen:
			parts.Condition = child
		}
	}

	return parts
}

// ElseStatement returns the statement that owns an else branch: the if
// statement for a bare else, or nil.
func ElseStatement(tree *Tree, statement *Node) *Node {
	parent := tree.Parent(statement)
	if parent.Is(KindElseClause) {
		return tree.Parent(parent)
	}

	if parent.Is(KindIfStatement) && IfStatementParts(parent).Else == statement {
		return parent
	}

	return nil
}

// ForEachParts are the roles of a foreach statement.
type ForEachParts struct {
	Type       *Node
	Identifier *Node
	InKeyword  *Node
	Expression *Node
	Statement  *Node
}

// ForEachStatementParts decomposes a foreach statement.
func ForEachStatementParts(forEach *Node) ForEachParts {
	var (
		parts    ForEachParts
		header   []*Node
		afterIn  bool
		afterEnd bool
	)

	for _, child := range forEach.Children() {
		switch {
		case child.IsToken() && child.Text() == "in":
			parts.InKeyword = child
			afterIn = true
		case child.IsToken() && child.Text() == ")" && afterIn:
			afterEnd = true
		case child.IsToken():
		case afterEnd:
			parts.Statement = child
		case afterIn:
			parts.Expression = child
		default:
			header = append(header, child)
		}
	}

	if len(header) == 2 { //nolint:mnd // type and identifier.
		parts.Type = header[0]
		parts.Identifier = header[1]
	}

	return parts
}

// ForParts are the roles of a for statement.
type ForParts struct {
	Declaration  *Node
	Initializers []*Node
	Condition    *Node
	Incrementors []*Node
	Statement    *Node
}

// ForStatementParts decomposes a for statement.
func ForStatementParts(forStatement *Node) ForParts {
	var (
		parts     ForParts
		section   int
		afterHead bool
	)

	for _, child := range forStatement.Children() {
		switch {
		case child.IsToken() && child.Text() == ";" && !afterHead:
			section++
		case child.IsToken() && child.Text() == ")" && !afterHead:
			afterHead = true
		case child.IsToken():
		case afterHead:
			parts.Statement = child
		case section == 0 && child.Is(KindVariableDeclaration):
			parts.Declaration = child
		case section == 0:
			parts.Initializers = append(parts.Initializers, child)
		case section == 1:
			parts.Condition = child
		default:
			parts.Incrementors = append(parts.Incrementors, child)
		}
	}

	return parts
}

// VariableDeclarationParts returns the type and declarators of a variable
// declaration.
func VariableDeclarationParts(declaration *Node) (typeSyntax *Node, declarators []*Node) {
	for _, child := range declaration.ChildNodes() {
		if child.Is(KindVariableDeclarator) {
			declarators = append(declarators, child)
		} else if typeSyntax == nil {
			typeSyntax = child
		}
	}

	return typeSyntax, declarators
}

// DeclaratorParts returns the name and initializer value of a declarator.
func DeclaratorParts(declarator *Node) (name, value *Node) {
	afterEquals := false

	for _, child := range declarator.Children() {
		switch {
		case child.IsToken() && child.Text() == "=":
			afterEquals = true
		case child.Is(KindEqualsValueClause):
			value = firstOrNil(child.ChildNodes())
		case child.IsToken():
		case afterEquals && value == nil:
			value = child
		case name == nil && child.Is(KindIdentifierName):
			name = child
		}
	}

	return name, value
}

// Modifiers returns the modifier nodes of a declaration.
func Modifiers(declaration *Node) []*Node {
	var modifiers []*Node

	for _, child := range declaration.Children() {
		if child.Is(KindModifier) {
			modifiers = append(modifiers, child)
		}
	}

	return modifiers
}

// HasModifier reports whether a declaration carries the modifier keyword.
func HasModifier(declaration *Node, keyword string) bool {
	return FindModifier(declaration, keyword) != nil
}

// FindModifier returns the modifier node with the keyword, or nil.
func FindModifier(declaration *Node, keyword string) *Node {
	for _, modifier := range Modifiers(declaration) {
		if modifier.Text() == keyword {
			return modifier
		}
	}

	return nil
}

// MemberParts are the roles shared by type member declarations.
type MemberParts struct {
	Type       *Node
	Name       *Node
	Parameters *Node
	Body       *Node
}

// MemberDeclarationParts decomposes methods, properties, indexers, fields,
// constructors and type declarations.
func MemberDeclarationParts(member *Node) MemberParts {
	var (
		parts MemberParts
		nodes []*Node
	)

	for _, child := range member.ChildNodes() {
		if child.Is(KindModifier) || (child.Is(KindOther) && child.Label() == "attribute_list") {
			continue
		}

		nodes = append(nodes, child)
	}

	kind := member.Kind()
	if IsLocalFunction(member) {
		kind = KindMethodDeclaration
	}

	switch kind {
	case KindMethodDeclaration, KindConstructorDeclaration:
		for idx, child := range nodes {
			switch {
			case child.Is(KindParameterList):
				parts.Parameters = child

				nameIdx := idx - 1
				for nameIdx >= 0 && nodes[nameIdx].Is(KindOther) {
					nameIdx--
				}

				if nameIdx >= 0 && nodes[nameIdx].Is(KindIdentifierName) {
					parts.Name = nodes[nameIdx]
				}

				if nameIdx > 0 && kind == KindMethodDeclaration {
					parts.Type = nodes[0]
				}
			case child.Is(KindBlock, KindArrowExpressionClause):
				parts.Body = child
			}
		}
	case KindPropertyDeclaration:
		for idx, child := range nodes {
			if child.Is(KindAccessorList, KindArrowExpressionClause) {
				parts.Body = child
				if idx > 0 {
					parts.Name = nodes[idx-1]
				}

				if idx > 1 {
					parts.Type = nodes[0]
				}

				break
			}
		}
	case KindIndexerDeclaration:
		parts.Type = firstOrNil(nodes)
		parts.Parameters = member.ChildOfKind(KindBracketedParameterList)
		parts.Body = member.ChildOfKind(KindAccessorList, KindArrowExpressionClause)
	case KindFieldDeclaration:
		declaration := member.ChildOfKind(KindVariableDeclaration)
		typeSyntax, declarators := VariableDeclarationParts(declaration)
		parts.Type = typeSyntax

		if len(declarators) > 0 {
			parts.Name, _ = DeclaratorParts(declarators[0])
		}
	case KindClassDeclaration, KindStructDeclaration, KindInterfaceDeclaration:
		parts.Name = member.ChildOfKind(KindIdentifierName)
		parts.Body = member.ChildOfKind(KindDeclarationList)
	}

	return parts
}

// IsLocalFunction reports whether node is a function declared inside a
// method body. MemberDeclarationParts decomposes it like a method.
func IsLocalFunction(node *Node) bool {
	return node.Is(KindOther) && node.Label() == "local_function_statement"
}

// IsAnonymousFunction reports whether node is a lambda or an anonymous
// method.
func IsAnonymousFunction(node *Node) bool {
	if !node.Is(KindOther) {
		return false
	}

	return node.Label() == "lambda_expression" || node.Label() == "anonymous_method_expression"
}

// AnonymousFunctionParts returns the parameters and body of a lambda or an
// anonymous method. The implicit parameter of x => x is returned as its
// IdentifierName.
func AnonymousFunctionParts(function *Node) (parameters []*Node, body *Node) {
	children := function.Children()

	for idx, child := range children {
		switch {
		case child.Is(KindParameterList):
			parameters = append(parameters, Parameters(child)...)
		case child.Is(KindIdentifierName) && idx+1 < len(children) && children[idx+1].Text() == "=>":
			parameters = append(parameters, child)
		case child.Is(KindBlock), !child.IsToken() && idx > 0 && children[idx-1].Text() == "=>":
			body = child
		}
	}

	return parameters, body
}

// ParameterParts returns the type and name of a parameter.
func ParameterParts(parameter *Node) (typeSyntax, name *Node) {
	var nodes []*Node

	for _, child := range parameter.Children() {
		if child.IsToken() && child.Text() == "=" {
			break
		}

		if !child.IsToken() && !child.Is(KindModifier) {
			nodes = append(nodes, child)
		}
	}

	switch len(nodes) {
	case 0:
		return nil, nil
	case 1:
		return nil, nodes[0]
	default:
		return nodes[0], nodes[1]
	}
}

// Parameters returns the Parameter children of a parameter list.
func Parameters(list *Node) []*Node {
	var parameters []*Node

	for _, child := range list.Children() {
		if child.Is(KindParameter) {
			parameters = append(parameters, child)
		}
	}

	return parameters
}

// AccessorKeywords returns the accessor keywords (get, set, init) of an
// accessor list.
func AccessorKeywords(accessorList *Node) []string {
	var keywords []string

	if accessorList.Is(KindArrowExpressionClause) {
		return []string{"get"}
	}

	for _, accessor := range accessorList.Children() {
		if !accessor.Is(KindAccessorDeclaration) {
			continue
		}

		for _, child := range accessor.Children() {
			if child.IsToken() && (child.Text() == "get" || child.Text() == "set" || child.Text() == "init") {
				keywords = append(keywords, child.Text())
			}
		}
	}

	return keywords
}

// Arguments returns the argument expressions of an argument list.
func Arguments(list *Node) []*Node {
	var args []*Node

	for _, child := range list.Children() {
		if child.Is(KindArgument) {
			_, expression := ArgumentParts(child)
			args = append(args, expression)
		}
	}

	return args
}

// ArgumentParts returns the parameter name of a named argument, or nil, and
// the argument expression.
func ArgumentParts(argument *Node) (name, expression *Node) {
	for _, child := range argument.Children() {
		switch {
		case child.IsToken():
			if child.Text() == ":" && name == nil && expression != nil {
				name, expression = expression, nil
			}
		case expression == nil:
			expression = child
		}
	}

	return name, expression
}

// BinaryParts returns the operands and operator token of a binary
// expression.
func BinaryParts(binary *Node) (left, operator, right *Node) {
	for _, child := range binary.Children() {
		switch {
		case child.IsToken() && operator == nil && left != nil:
			operator = child
		case child.IsToken():
		case left == nil:
			left = child
		default:
			right = child
		}
	}

	return left, operator, right
}

// UnaryParts returns the operand and operator token of a prefix or postfix
// unary expression.
func UnaryParts(unary *Node) (operator, operand *Node) {
	for _, child := range unary.Children() {
		if child.IsToken() {
			operator = child
		} else {
			operand = child
		}
	}

	return operator, operand
}

// Identifier returns the identifier token of a simple or generic name.
func Identifier(name *Node) *Node {
	switch {
	case name.Is(KindIdentifierName):
		return name.FirstToken()
	case name.Is(KindGenericName):
		return Identifier(name.ChildOfKind(KindIdentifierName))
	default:
		return nil
	}
}

// IsVar reports whether a type reference is the implicit var type.
func IsVar(typeSyntax *Node) bool {
	return typeSyntax.Is(KindIdentifierName) && typeSyntax.Text() == "var"
}

func firstOrNil(nodes []*Node) *Node {
	if len(nodes) == 0 {
		return nil
	}

	return nodes[0]
}
