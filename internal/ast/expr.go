package ast

import "github.com/emojicode/ecc/internal/types"

// MemoryFlow is set by internal/memflow on every Expression it visits.
// Zero value is Unclassified, which memflow must never leave behind on a
// node it actually walked.
type MemoryFlow int

const (
	Unclassified MemoryFlow = iota
	Borrowing
	Escaping
	Returned
)

// flowable is embedded by expressions the memory-flow analyser labels —
// which in practice is all of them, but keeping it a distinct embed keeps
// the field next to the accessors that guard it instead of sitting bare on
// exprBase.
type flowable struct {
	flow MemoryFlow
}

func (f *flowable) Flow() MemoryFlow     { return f.flow }
func (f *flowable) SetFlow(m MemoryFlow) { f.flow = m }

// GetVariableExpr reads a local, instance, or captured variable by name.
type GetVariableExpr struct {
	exprBase
	flowable
	Name string
}

// LiteralKind tags which kind of literal a LiteralExpr holds.
type LiteralKind int

const (
	LitInteger LiteralKind = iota
	LitDouble
	LitSymbol
	LitString
	LitBoolean
	LitNothingness
)

// LiteralExpr is a scalar literal: number, symbol, string, boolean, or the
// `🚫` nothingness literal.
type LiteralExpr struct {
	exprBase
	flowable
	Kind       LiteralKind
	IntValue   int64
	FloatValue float64
	StrValue   string
	BoolValue  bool
}

// ListLiteralExpr is a `🍦` list literal; its element type is the join of
// every Elements[i]'s analysed type (CommonTypeFinder).
type ListLiteralExpr struct {
	exprBase
	flowable
	Elements []Expression
}

// DictionaryLiteralExpr is a `🍯` dictionary literal of alternating key,
// value expressions.
type DictionaryLiteralExpr struct {
	exprBase
	flowable
	Keys   []Expression
	Values []Expression
}

// ConcatenateExpr is the `🍪` string-concatenation operator, kept distinct
// from BinaryOperatorExpr because its operand types are heterogeneous
// (anything with a string conversion, not just two strings).
type ConcatenateExpr struct {
	exprBase
	flowable
	Parts []Expression
}

// MethodCallExpr calls an instance method on Receiver.
type MethodCallExpr struct {
	exprBase
	flowable
	Receiver       Expression
	Method         string
	Args           []Expression
	GenericArgs    []TypeExpr
	ResolvedMethod interface{} // *registry.Method, set by the analyser; kept as interface{} to avoid an import cycle
}

// SuperMethodCallExpr calls a method on the statically-known superclass,
// bypassing virtual dispatch (`⤴️`).
type SuperMethodCallExpr struct {
	exprBase
	flowable
	Method string
	Args   []Expression
}

// TypeMethodCallExpr calls a class/type method (`🐇` receiver position is a
// meta-type, not an instance).
type TypeMethodCallExpr struct {
	exprBase
	flowable
	Receiver TypeExpr
	Method   string
	Args     []Expression
}

// InitializationExpr invokes an initializer (`🆕`-style construct) on Type
// with the named initializer and arguments.
type InitializationExpr struct {
	exprBase
	flowable
	Type        TypeExpr
	Initializer string
	Args        []Expression
}

// CallableCallExpr invokes a callable value with `⁉️`.
type CallableCallExpr struct {
	exprBase
	flowable
	Callee Expression
	Args   []Expression
}

// CaptureMethodExpr captures a bound method reference as a callable value
// (`🎣`), consumed by the boxing-layer synthesiser's thunk generation.
type CaptureMethodExpr struct {
	exprBase
	flowable
	Receiver Expression
	Method   string
}

// BinaryOperatorExpr is an infix operator application (comparisons,
// arithmetic, logical).
type BinaryOperatorExpr struct {
	exprBase
	flowable
	Operator string
	Left     Expression
	Right    Expression
}

// CastExpr is an explicit downcast (`🔲`) to a named type, producing
// `optional(target)`.
type CastExpr struct {
	exprBase
	flowable
	Target TypeExpr
	Value  Expression
}

// IsErrorExpr is `🚥 v` — tests whether an error value carries an error tag.
type IsErrorExpr struct {
	exprBase
	flowable
	Value Expression
}

// UnwrapExpr is `🍺 v` — asserts non-nothingness/non-error and produces the
// inner type.
type UnwrapExpr struct {
	exprBase
	flowable
	Value Expression
}

// ThisExpr is the `🐕` receiver reference inside an instance method.
type ThisExpr struct {
	exprBase
	flowable
}

// MetaTypeInstantiationExpr constructs a meta-type value for a declared
// type, used where a class/protocol/enum itself (not an instance) is
// passed as a first-class value.
type MetaTypeInstantiationExpr struct {
	exprBase
	flowable
	Of TypeExpr
}

// ErrorLiteralExpr constructs the raised value of `raise v`, holding the
// declared enum and the tag expression.
type ErrorLiteralExpr struct {
	exprBase
	flowable
	Enum types.Ref
	Tag  Expression
}

// ConditionalBindExpr is the `expr ➡️ name` construct: it evaluates Source
// then, if compatible, binds the unwrapped value to Name inside the
// true-branch scope of its enclosing condition.
type ConditionalBindExpr struct {
	exprBase
	flowable
	Source Expression
	Name   string
}
