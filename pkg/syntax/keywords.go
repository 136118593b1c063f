package syntax

//nolint:gochecknoglobals // Read-only keyword set.
var keywords = map[string]bool{
	"abstract": true, "as": true, "base": true, "bool": true, "break": true, "byte": true,
	"case": true, "catch": true, "char": true, "checked": true, "class": true, "const": true,
	"continue": true, "decimal": true, "default": true, "delegate": true, "do": true,
	"double": true, "else": true, "enum": true, "event": true, "explicit": true, "extern": true,
	"false": true, "finally": true, "fixed": true, "float": true, "for": true, "foreach": true,
	"goto": true, "if": true, "implicit": true, "in": true, "int": true, "interface": true,
	"internal": true, "is": true, "lock": true, "long": true, "namespace": true, "new": true,
	"null": true, "object": true, "operator": true, "out": true, "override": true,
	"params": true, "private": true, "protected": true, "public": true, "readonly": true,
	"ref": true, "return": true, "sbyte": true, "sealed": true, "short": true, "sizeof": true,
	"stackalloc": true, "static": true, "string": true, "struct": true, "switch": true,
	"this": true, "throw": true, "true": true, "try": true, "typeof": true, "uint": true,
	"ulong": true, "unchecked": true, "unsafe": true, "ushort": true, "using": true,
	"virtual": true, "void": true, "volatile": true, "while": true,
}

//nolint:gochecknoglobals // Read-only keyword set.
var predefinedTypes = map[string]bool{
	"bool": true, "byte": true, "char": true, "decimal": true, "double": true,
	"float": true, "int": true, "long": true, "object": true, "sbyte": true,
	"short": true, "string": true, "uint": true, "ulong": true, "ushort": true,
	"void": true,
}

// IsKeyword reports whether name is a reserved C# keyword.
func IsKeyword(name string) bool {
	return keywords[name]
}

// IsPredefinedType reports whether name is a keyword type such as int.
func IsPredefinedType(name string) bool {
	return predefinedTypes[name]
}
