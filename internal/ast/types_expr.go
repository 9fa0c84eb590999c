package ast

// Type-expression variants: the syntax that names a type at a declaration
// site, before internal/registry.TypeParser turns it into a types.Type.

// StaticTypeExpr names a declared type by its glyph path, with an optional
// generic-argument list and the optional/meta modifiers applied at the
// syntax level.
type StaticTypeExpr struct {
	typeExprBase
	Namespace string
	Name      string
	Generics  []TypeExpr
	Optional  bool
	Meta      bool
}

// ThisTypeExpr is the `🐕` self-type reference used in initializer and
// method return positions.
type ThisTypeExpr struct {
	typeExprBase
}

// InferTypeExpr marks a position where the type must be inferred from
// context (e.g. an untyped `let`).
type InferTypeExpr struct {
	typeExprBase
}

// TypeFromValueExpr projects the type of an already-parsed expression, used
// by `sizeof`-like constructs that accept either a type or an expression.
type TypeFromValueExpr struct {
	typeExprBase
	Value Expression
}

// TypeAsValueExpr names a type used in meta position (the class/protocol
// itself, for a type-method call or a meta-type instantiation).
type TypeAsValueExpr struct {
	typeExprBase
	Inner TypeExpr
}

// SizeofTypeExpr computes a type's backend storage size; purely a code-gen
// concern surfaced at the type-expression level because the grammar allows
// it wherever a type is expected.
type SizeofTypeExpr struct {
	typeExprBase
	Of TypeExpr
}

// GenericVariableTypeExpr names one of the enclosing declaration's own
// generic parameters by name; TypeParser resolves the name to an index.
type GenericVariableTypeExpr struct {
	typeExprBase
	Name string
}

// CallableTypeExpr is a `🍡(params)return` function-value type.
type CallableTypeExpr struct {
	typeExprBase
	Params []TypeExpr
	Return TypeExpr
}

// ErrorTypeExpr is a `🚨 enum, payload` error type.
type ErrorTypeExpr struct {
	typeExprBase
	Enum    TypeExpr
	Payload TypeExpr
}

// MultiProtocolTypeExpr is a `🔗(p1 & p2 & …)` protocol intersection.
type MultiProtocolTypeExpr struct {
	typeExprBase
	Protocols []TypeExpr
}
