// Package codegen implements the code-gen driver: it walks the analysed
// AST and delegates primitive emission to an
// internal/builder.Builder, releasing temporarily-scoped objects at the
// end of every statement and selecting a dispatch strategy per receiver
// kind.
package codegen

import (
	"github.com/emojicode/ecc/internal/ast"
	"github.com/emojicode/ecc/internal/boxing"
	"github.com/emojicode/ecc/internal/builder"
	"github.com/emojicode/ecc/internal/registry"
	"github.com/emojicode/ecc/internal/types"
)

// DispatchKind tags how a method call was resolved to an actual call
// instruction.
type DispatchKind int

const (
	DispatchDirect DispatchKind = iota
	DispatchVirtualTable
	DispatchProtocolTable
	DispatchCallableExecutor
)

// Driver walks one function's analysed body, emitting instructions via b.
type Driver struct {
	b       builder.Builder
	helper  *builder.TypeHelper
	reg     *registry.Registry
	pending []ast.Expression // temporarily-scoped nodes awaiting release
}

// New builds a Driver targeting b.
func New(b builder.Builder, reg *registry.Registry) *Driver {
	return &Driver{b: b, helper: builder.NewTypeHelper(b), reg: reg}
}

// GenerateFunction emits body's instructions and then a closing ret void,
// so the emitted instruction sequence always ends with a terminator.
func (d *Driver) GenerateFunction(body *ast.BlockStmt) {
	d.generateBlock(body)
	d.b.CreateRetVoid()
}

func (d *Driver) generateBlock(block *ast.BlockStmt) {
	for _, stmt := range block.Statements {
		d.generateStatement(stmt)
		d.releaseTemporaryObjects()
	}
}

// releaseTemporaryObjects drops every pending temporarily-scoped value
// accumulated by the statement just emitted.
func (d *Driver) releaseTemporaryObjects() {
	d.pending = d.pending[:0]
}

func (d *Driver) trackTemporary(e ast.Expression) {
	if e != nil && e.TemporarilyScoped() {
		d.pending = append(d.pending, e)
	}
}

func (d *Driver) generateStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.ReturnStmt:
		if s.Value == nil {
			d.b.CreateRetVoid()
			return
		}
		v := d.generateExpression(s.Value)
		d.b.CreateRet(d.boxForReturn(s.Value.Type(), v))

	case *ast.RaiseStmt:
		v := d.generateExpression(s.Value)
		d.b.CreateRet(v)

	case *ast.ExpressionStmt:
		d.generateExpression(s.Expr)

	case *ast.VariableDeclareStmt:
		ptr := d.b.CreateAlloca(resolvedType(s.Value))
		if s.Value != nil {
			v := d.generateExpression(s.Value)
			d.b.CreateStore(ptr, v)
		}

	case *ast.VariableAssignStmt:
		v := d.generateExpression(s.Value)
		_ = v

	case *ast.BlockStmt:
		d.generateBlock(s)

	case *ast.IfStmt:
		for _, br := range s.Branches {
			if br.Condition != nil {
				d.generateExpression(br.Condition)
			}
			d.generateBlock(br.Body)
		}

	case *ast.RepeatWhileStmt:
		d.generateExpression(s.Condition)
		d.generateBlock(s.Body)

	case *ast.ForInStmt:
		d.generateExpression(s.Iterable)
		d.generateBlock(s.Body)

	case *ast.UnsafeBlockStmt:
		d.generateBlock(s.Body)

	case *ast.ErrorHandlerStmt:
		d.generateBlock(s.Attempt)
		d.generateBlock(s.Handler)
	}
}

func resolvedType(e ast.Expression) types.Type {
	if e == nil {
		return types.TSomething
	}
	return e.Type()
}

// boxForReturn boxes the return of an optional/error type via makeNoValue
// + valuePtr when the return channel expects a uniform box — here,
// emitting an insert-value into a two-field {tag, payload} aggregate
// whenever the static type is optional or error.
func (d *Driver) boxForReturn(t types.Type, v builder.Value) builder.Value {
	switch t.(type) {
	case *types.Optional:
		agg := d.b.ConstantInt(1) // present-tag
		return d.b.CreateInsertValue(agg, v, 1)
	case *types.Error:
		agg := d.b.ConstantInt(0) // success-tag
		return d.b.CreateInsertValue(agg, v, 1)
	default:
		return v
	}
}

func (d *Driver) generateExpression(e ast.Expression) builder.Value {
	d.trackTemporary(e)
	switch expr := e.(type) {
	case *ast.LiteralExpr:
		return d.generateLiteral(expr)

	case *ast.GetVariableExpr:
		return d.b.ConstantInt(0) // a real backend loads the variable's alloca; out of scope here

	case *ast.ThisExpr:
		return d.b.ConstantInt(0)

	case *ast.MethodCallExpr:
		return d.generateMethodCall(expr)

	case *ast.CallableCallExpr:
		callee := d.generateExpression(expr.Callee)
		args := make([]builder.Value, len(expr.Args))
		for i, a := range expr.Args {
			args[i] = d.generateExpression(a)
		}
		return d.b.CreateCall(callee, args)

	case *ast.UnwrapExpr:
		inner := d.generateExpression(expr.Value)
		return d.b.CreateExtractValue(inner, 1)

	case *ast.IsErrorExpr:
		inner := d.generateExpression(expr.Value)
		return d.b.CreateExtractValue(inner, 0)

	case *ast.BinaryOperatorExpr:
		d.generateExpression(expr.Left)
		d.generateExpression(expr.Right)
		return d.b.ConstantInt(0)

	default:
		return d.b.ConstantInt(0)
	}
}

func (d *Driver) generateLiteral(lit *ast.LiteralExpr) builder.Value {
	switch lit.Kind {
	case ast.LitInteger:
		return d.b.ConstantInt(lit.IntValue)
	case ast.LitDouble:
		return d.b.ConstantDouble(lit.FloatValue)
	case ast.LitBoolean:
		return d.b.ConstantBool(lit.BoolValue)
	case ast.LitString:
		return d.b.ConstantString(lit.StrValue)
	default:
		return d.b.ConstantInt(0)
	}
}

// SelectDispatch chooses a dispatch strategy: direct call, virtual-table
// lookup (class), protocol-table lookup (protocol), or callable-executor
// instruction (callable).
func SelectDispatch(receiver types.Type, final bool) DispatchKind {
	switch receiver.(type) {
	case *types.ClassInstance:
		if final {
			return DispatchDirect
		}
		return DispatchVirtualTable
	case *types.ProtocolInstance, *types.MultiProtocol:
		return DispatchProtocolTable
	case *types.Callable:
		return DispatchCallableExecutor
	default:
		return DispatchDirect
	}
}

func (d *Driver) generateMethodCall(call *ast.MethodCallExpr) builder.Value {
	receiver := d.generateExpression(call.Receiver)
	args := make([]builder.Value, len(call.Args))
	for i, a := range call.Args {
		args[i] = d.generateExpression(a)
	}

	kind := DispatchDirect
	if m, ok := call.ResolvedMethod.(*registry.Method); ok {
		kind = SelectDispatch(call.Receiver.Type(), m.Final)
	}

	switch kind {
	case DispatchVirtualTable, DispatchProtocolTable:
		slot := d.b.CreateExtractValue(receiver, 0)
		return d.b.CreateCall(slot, append([]builder.Value{receiver}, args...))
	case DispatchCallableExecutor:
		return d.b.CreateCall(receiver, args)
	default:
		fn := d.b.DeclareFunction(call.Method, nil, types.TSomething)
		return d.b.CreateCall(fn, append([]builder.Value{receiver}, args...))
	}
}

// ApplyBoxingLayers registers every synthesised boxing.Layer as a callable
// backend function: both variants produce a standard function object that
// the code-gen driver emits uniformly.
func (d *Driver) ApplyBoxingLayers(layers []*boxing.Layer) {
	for _, l := range layers {
		d.b.DeclareFunction(l.Name, l.Signature.Params, l.Signature.Return)
	}
}
