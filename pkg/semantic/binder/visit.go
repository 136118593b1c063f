package binder

import (
	"strings"

	"github.com/Sumatoshi-tech/codefix/pkg/semantic"
	"github.com/Sumatoshi-tech/codefix/pkg/syntax"
)

// visit binds node in scope sc and returns its type when it is an
// expression, or nil.
func (w *walker) visit(node *syntax.Node, sc *scope) semantic.Type {
	if node == nil || node.IsToken() {
		return nil
	}

	switch {
	case syntax.IsLocalFunction(node):
		w.visitLocalFunction(node, sc)

		return nil
	case syntax.IsAnonymousFunction(node):
		parameters, body := syntax.AnonymousFunctionParts(node)
		inner := newScope(sc, nil)

		w.declareParameters(parameters, inner)
		w.visit(body, inner)

		return nil
	}

	switch node.Kind() {
	case syntax.KindClassDeclaration, syntax.KindStructDeclaration, syntax.KindInterfaceDeclaration:
		w.visitTypeDeclaration(node, sc)

		return nil
	case syntax.KindMethodDeclaration, syntax.KindConstructorDeclaration,
		syntax.KindPropertyDeclaration, syntax.KindIndexerDeclaration:
		w.visitMemberDeclaration(node, sc)

		return nil
	case syntax.KindFieldDeclaration:
		w.visitVariableDeclaration(node.ChildOfKind(syntax.KindVariableDeclaration), sc, true)

		return nil
	case syntax.KindBlock:
		w.visitChildren(node, newScope(sc, nil))

		return nil
	case syntax.KindForStatement, syntax.KindWhileStatement:
		w.visitChildren(node, newScope(sc, nil))

		return nil
	case syntax.KindVariableDeclaration:
		w.visitVariableDeclaration(node, sc, false)

		return nil
	case syntax.KindForEachStatement:
		w.visitForEach(node, sc)

		return nil
	}

	typ := w.visitExpression(node, sc)
	if typ != nil {
		w.idx.types[node] = typ
	}

	return typ
}

func (w *walker) visitChildren(node *syntax.Node, sc *scope) {
	for _, child := range node.ChildNodes() {
		w.visit(child, sc)
	}
}

func (w *walker) visitTypeDeclaration(decl *syntax.Node, sc *scope) {
	def := w.idx.classes[decl]
	if def == nil {
		w.visitChildren(decl, sc)

		return
	}

	classType, _ := w.idx.universe.resolveText(def.name+typeParameterSuffix(def), nil).(*namedType)
	typeSym := &symbol{name: def.name, kind: semantic.SymbolType, typ: classType, declaration: decl}

	w.idx.declared[decl] = typeSym
	w.declare(sc, typeSym)

	classScope := newScope(sc, decl)
	classScope.classType = classType

	w.declare(classScope, typeSym)

	if classType != nil {
		seen := make(map[string]bool)

		for _, declaredMember := range def.members {
			if declaredMember.kind == semantic.MemberIndexer || seen[declaredMember.name] {
				continue
			}

			seen[declaredMember.name] = true

			for _, member := range classType.MembersNamed(declaredMember.name) {
				sym := w.memberSymbol(member)
				if sym.declaration != nil {
					w.idx.declared[sym.declaration] = sym
				}

				w.declare(classScope, sym)
			}
		}
	}

	parts := syntax.MemberDeclarationParts(decl)
	if parts.Name != nil {
		w.idx.references[parts.Name] = typeSym
	}

	for _, child := range decl.ChildNodes() {
		if child.Is(syntax.KindBaseList) {
			for _, base := range child.ChildNodes() {
				w.typeOfSyntax(base)
			}
		}
	}

	if parts.Body != nil {
		w.visitChildren(parts.Body, classScope)
	}
}

func typeParameterSuffix(def *typeDef) string {
	if len(def.params) == 0 {
		return ""
	}

	return "<" + strings.Join(def.params, ",") + ">"
}

func (w *walker) visitMemberDeclaration(decl *syntax.Node, sc *scope) {
	parts := syntax.MemberDeclarationParts(decl)
	memberScope := newScope(sc, decl)

	var memberType semantic.Type
	if parts.Type != nil {
		memberType = w.typeOfSyntax(parts.Type)
	}

	if sym, ok := w.idx.declared[decl]; ok && parts.Name != nil {
		w.idx.references[parts.Name] = sym
	}

	if parts.Parameters != nil {
		w.declareParameters(syntax.Parameters(parts.Parameters), memberScope)
	}

	if decl.Is(syntax.KindPropertyDeclaration, syntax.KindIndexerDeclaration) && memberType != nil {
		w.declare(memberScope, &symbol{name: "value", kind: semantic.SymbolParameter, typ: memberType})
	}

	if parts.Body != nil {
		w.visit(parts.Body, memberScope)
	}
}

// declareParameters declares parameters in sc. A bare IdentifierName is an
// implicitly typed lambda parameter.
func (w *walker) declareParameters(parameters []*syntax.Node, sc *scope) {
	for _, param := range parameters {
		name := param
		sym := &symbol{kind: semantic.SymbolParameter, typ: &errorType{name: "?"}, declaration: param}

		if !param.Is(syntax.KindIdentifierName) {
			var typeSyntax *syntax.Node

			typeSyntax, name = syntax.ParameterParts(param)
			sym.typ = w.typeOfSyntax(typeSyntax)
		}

		if name == nil {
			continue
		}

		sym.name = name.Text()
		w.idx.declared[param] = sym
		w.idx.references[name] = sym
		w.declare(sc, sym)
	}
}

// visitLocalFunction declares the function in the enclosing block and its
// parameters in a scope of their own.
func (w *walker) visitLocalFunction(function *syntax.Node, sc *scope) {
	parts := syntax.MemberDeclarationParts(function)

	if parts.Name != nil {
		sym := &symbol{
			name:        parts.Name.Text(),
			kind:        semantic.SymbolMethod,
			typ:         w.typeOfSyntax(parts.Type),
			declaration: function,
		}

		w.idx.declared[function] = sym
		w.idx.references[parts.Name] = sym
		w.declare(sc, sym)
	}

	inner := newScope(sc, nil)

	if parts.Parameters != nil {
		w.declareParameters(syntax.Parameters(parts.Parameters), inner)
	}

	w.visit(parts.Body, inner)
}

func (w *walker) visitVariableDeclaration(declaration *syntax.Node, sc *scope, isField bool) {
	if declaration == nil {
		return
	}

	typeSyntax, declarators := syntax.VariableDeclarationParts(declaration)
	implicit := syntax.IsVar(typeSyntax)

	var declaredType semantic.Type
	if !implicit {
		declaredType = w.typeOfSyntax(typeSyntax)
	}

	for _, declarator := range declarators {
		name, value := syntax.DeclaratorParts(declarator)

		valueType := w.visit(value, sc)

		typ := declaredType
		if implicit {
			typ = valueType
			if typ == nil {
				typ = &errorType{name: "var"}
			}

			w.idx.types[typeSyntax] = typ
		}

		if name == nil {
			continue
		}

		if isField {
			if sym, ok := w.idx.declared[declarator]; ok {
				w.idx.references[name] = sym
			}

			continue
		}

		sym := &symbol{name: name.Text(), kind: semantic.SymbolLocal, typ: typ, declaration: declarator}
		w.idx.declared[declarator] = sym
		w.idx.references[name] = sym
		w.declare(sc, sym)
	}
}

func (w *walker) visitForEach(forEach *syntax.Node, sc *scope) {
	parts := syntax.ForEachStatementParts(forEach)

	collectionType := w.visit(parts.Expression, sc)

	var element semantic.Type
	if collectionType != nil {
		element = collectionType.ElementType()
	}

	if element == nil {
		element = &errorType{name: "?"}
	}

	var typ semantic.Type

	if syntax.IsVar(parts.Type) {
		typ = element
		w.idx.types[parts.Type] = element
	} else if parts.Type != nil {
		typ = w.typeOfSyntax(parts.Type)
	}

	inner := newScope(sc, nil)

	if parts.Identifier != nil {
		sym := &symbol{name: parts.Identifier.Text(), kind: semantic.SymbolForEachVariable, typ: typ, declaration: forEach}
		w.idx.declared[forEach] = sym
		w.idx.references[parts.Identifier] = sym
		w.declare(inner, sym)
	}

	w.visit(parts.Statement, inner)
}

func (w *walker) visitExpression(node *syntax.Node, sc *scope) semantic.Type {
	switch node.Kind() {
	case syntax.KindIdentifierName:
		return w.visitName(node, sc)
	case syntax.KindGenericName:
		return w.typeOfSyntax(node)
	case syntax.KindPredefinedType, syntax.KindArrayType, syntax.KindNullableType, syntax.KindQualifiedName:
		return w.typeOfSyntax(node)
	case syntax.KindLiteralExpression:
		return w.literalType(node)
	case syntax.KindParenthesizedExpression:
		return w.visit(syntax.ParenthesizedInner(node), sc)
	case syntax.KindArgument:
		_, expression := syntax.ArgumentParts(node)

		return w.visit(expression, sc)
	case syntax.KindMemberAccessExpression:
		return w.visitMemberAccess(node, sc)
	case syntax.KindInvocationExpression:
		return w.visitInvocation(node, sc)
	case syntax.KindElementAccessExpression:
		return w.visitElementAccess(node, sc)
	case syntax.KindBinaryExpression:
		return w.visitBinary(node, sc)
	case syntax.KindPrefixUnaryExpression:
		operator, operand := syntax.UnaryParts(node)
		typ := w.visit(operand, sc)

		if operator != nil && operator.Text() == "!" {
			return w.idx.universe.named("bool")
		}

		return typ
	case syntax.KindPostfixUnaryExpression:
		_, operand := syntax.UnaryParts(node)

		return w.visit(operand, sc)
	case syntax.KindAssignmentExpression:
		var left semantic.Type

		for idx, child := range node.ChildNodes() {
			typ := w.visit(child, sc)
			if idx == 0 {
				left = typ
			}
		}

		return left
	case syntax.KindObjectCreationExpression, syntax.KindArrayCreationExpression:
		return w.visitCreation(node, sc)
	case syntax.KindThisExpression:
		if sc.classType != nil {
			return sc.classType
		}

		return &errorType{name: "this"}
	case syntax.KindOther:
		w.visitChildren(node, sc)

		if strings.HasPrefix(node.Label(), "interpolated_string") {
			return w.idx.universe.named("string")
		}

		return nil
	default:
		w.visitChildren(node, sc)

		return nil
	}
}

func (w *walker) visitName(name *syntax.Node, sc *scope) semantic.Type {
	sym := sc.lookup(name.Text())
	if sym == ambiguous {
		return &errorType{name: name.Text()}
	}

	if sym != nil {
		w.idx.references[name] = sym

		if sym.typ == nil {
			return &errorType{name: name.Text()}
		}

		return sym.typ
	}

	typ := w.idx.universe.named(name.Text())
	if !typ.IsError() {
		w.idx.references[name] = w.typeSymbol(typ)
	}

	return typ
}

func (w *walker) typeSymbol(typ semantic.Type) *symbol {
	key := memberKey{owner: typ.Name()}
	if sym, ok := w.idx.members[key]; ok {
		return sym
	}

	sym := &symbol{name: typ.Name(), kind: semantic.SymbolType, typ: typ}
	w.idx.members[key] = sym

	return sym
}

func (w *walker) literalType(literal *syntax.Node) semantic.Type {
	text := literal.Text()

	switch {
	case strings.HasPrefix(text, "\""), strings.HasPrefix(text, "@\""), strings.HasPrefix(text, "$"):
		return w.idx.universe.named("string")
	case strings.HasPrefix(text, "'"):
		return w.idx.universe.named("char")
	case text == "true" || text == "false":
		return w.idx.universe.named("bool")
	case text == "null":
		return &errorType{name: "null"}
	case strings.ContainsAny(text, ".eEfFdDmM") && !strings.HasPrefix(text, "0x"):
		return w.idx.universe.named("double")
	case strings.HasSuffix(text, "L") || strings.HasSuffix(text, "l"):
		return w.idx.universe.named("long")
	default:
		return w.idx.universe.named("int")
	}
}

func (w *walker) visitMemberAccess(access *syntax.Node, sc *scope) semantic.Type {
	nodes := access.ChildNodes()
	if len(nodes) < 2 { //nolint:mnd // base.Name has a keyword receiver.
		return &errorType{name: access.Text()}
	}

	receiverType := w.visit(nodes[0], sc)
	name := memberName(access)

	if receiverType == nil || name == nil {
		return &errorType{name: access.Text()}
	}

	for _, member := range receiverType.MembersNamed(name.Text()) {
		if member.Kind() == semantic.MemberMethod {
			continue
		}

		sym := w.memberSymbol(member)
		w.idx.references[name] = sym

		return member.Type()
	}

	return &errorType{name: access.Text()}
}

func (w *walker) visitInvocation(invocation *syntax.Node, sc *scope) semantic.Type {
	callee := invocationCallee(invocation)
	args := invocation.ChildOfKind(syntax.KindArgumentList)

	argumentCount := 0
	if args != nil {
		argumentCount = len(syntax.Arguments(args))
		w.visitChildren(args, sc)
	}

	switch {
	case callee.Is(syntax.KindMemberAccessExpression):
		nodes := callee.ChildNodes()
		if len(nodes) < 2 { //nolint:mnd // receiver and name.
			return &errorType{name: invocation.Text()}
		}

		receiverType := w.visit(nodes[0], sc)
		name := memberName(callee)

		if receiverType == nil || name == nil {
			return &errorType{name: invocation.Text()}
		}

		sym, typ := w.resolveMethod(receiverType, name.Text(), argumentCount)
		if sym != nil {
			w.idx.references[name] = sym
		}

		return typ
	case callee.Is(syntax.KindIdentifierName, syntax.KindGenericName):
		name := calleeName(invocation)
		sym := sc.lookup(name.Text())

		if sym == nil || sym == ambiguous || sym.kind != semantic.SymbolMethod {
			return &errorType{name: invocation.Text()}
		}

		w.idx.references[name] = sym

		return sym.typ
	default:
		w.visit(callee, sc)

		return &errorType{name: invocation.Text()}
	}
}

// resolveMethod binds receiver.name(args): instance methods first, then
// extension methods on enumerable receivers.
func (w *walker) resolveMethod(receiverType semantic.Type, name string, argumentCount int) (*symbol, semantic.Type) {
	var candidates []semantic.Member

	for _, member := range receiverType.MembersNamed(name) {
		if member.Kind() == semantic.MemberMethod && len(member.Parameters()) == argumentCount {
			candidates = append(candidates, member)
		}
	}

	switch len(candidates) {
	case 1:
		return w.memberSymbol(candidates[0]), candidates[0].Type()
	case 0:
	default:
		return nil, &errorType{name: name}
	}

	ext, ok := w.idx.universe.extensions[name]
	if !ok || len(ext.params) != argumentCount || !receiverType.Implements(semantic.CapabilityEnumerable) {
		return nil, &errorType{name: name}
	}

	var returnType semantic.Type

	if ext.returns == returnsElement {
		returnType = receiverType.ElementType()
	} else {
		returnType = w.idx.universe.named(ext.returns)
	}

	if returnType == nil {
		returnType = &errorType{name: name}
	}

	key := memberKey{owner: ext.container + "/" + receiverType.Name(), name: name}

	sym, ok := w.idx.members[key]
	if !ok {
		sym = &symbol{
			name:      name,
			kind:      semantic.SymbolMethod,
			typ:       returnType,
			extension: true,
			container: ext.container,
		}
		w.idx.members[key] = sym
	}

	return sym, returnType
}

func (w *walker) visitElementAccess(access *syntax.Node, sc *scope) semantic.Type {
	nodes := access.ChildNodes()
	if len(nodes) == 0 {
		return nil
	}

	receiverType := w.visit(nodes[0], sc)

	for _, child := range nodes[1:] {
		w.visit(child, sc)
	}

	if receiverType == nil {
		return &errorType{name: access.Text()}
	}

	for _, indexer := range receiverType.MembersNamed(semantic.IndexerName) {
		return indexer.Type()
	}

	return &errorType{name: access.Text()}
}

func (w *walker) visitBinary(binary *syntax.Node, sc *scope) semantic.Type {
	left, operator, right := syntax.BinaryParts(binary)
	leftType := w.visit(left, sc)
	rightType := w.visit(right, sc)

	if operator == nil {
		return leftType
	}

	switch operator.Text() {
	case "==", "!=", "<", ">", "<=", ">=", "&&", "||", "is":
		return w.idx.universe.named("bool")
	case "+":
		if (leftType != nil && leftType.IsTextual()) || (rightType != nil && rightType.IsTextual()) {
			return w.idx.universe.named("string")
		}
	}

	if leftType == nil {
		return &errorType{name: binary.Text()}
	}

	return leftType
}

func (w *walker) visitCreation(creation *syntax.Node, sc *scope) semantic.Type {
	var typ semantic.Type

	for _, child := range creation.ChildNodes() {
		switch {
		case typ == nil && child.Kind().IsTypeSyntax():
			typ = w.typeOfSyntax(child)
		case child.Is(syntax.KindOther) && child.Label() == "initializer_expression":
			w.visitInitializer(child, typ, sc)
		default:
			w.visit(child, sc)
		}
	}

	if typ == nil {
		return &errorType{name: creation.Text()}
	}

	return typ
}

// visitInitializer binds the targets of an object initializer against the
// created type. Collection initializer elements are plain expressions.
func (w *walker) visitInitializer(initializer *syntax.Node, created semantic.Type, sc *scope) {
	for _, child := range initializer.ChildNodes() {
		sides := child.ChildNodes()
		if !child.Is(syntax.KindAssignmentExpression) || len(sides) < 2 || !sides[0].Is(syntax.KindIdentifierName) {
			w.visit(child, sc)

			continue
		}

		if created != nil {
			for _, member := range created.MembersNamed(sides[0].Text()) {
				if member.Kind() != semantic.MemberMethod {
					w.idx.references[sides[0]] = w.memberSymbol(member)

					break
				}
			}
		}

		for _, value := range sides[1:] {
			w.visit(value, sc)
		}
	}
}
