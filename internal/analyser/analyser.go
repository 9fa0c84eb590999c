// Package analyser implements the semantic analyser: one instance per
// function, driving a depth-first walk over the parsed body
// that annotates every expression with its resulting type, resolves
// method calls, validates generics, and rewrites the error (`🚥`/`🍺`/
// `raise`) and conditional-assignment (`➡️`) constructs.
package analyser

import (
	"github.com/emojicode/ecc/internal/ast"
	"github.com/emojicode/ecc/internal/cerrors"
	"github.com/emojicode/ecc/internal/registry"
	"github.com/emojicode/ecc/internal/scope"
	"github.com/emojicode/ecc/internal/token"
	"github.com/emojicode/ecc/internal/types"
)

// Expectation is what the caller of expect() demands from an expression:
// a target type, and whether an optional result is acceptable as-is.
type Expectation struct {
	Type            types.Type
	AllowsOptional  bool
}

// FunctionContext carries the declaring type's ref (for 🐕/Self resolution)
// and, when analysing a function declared to return error(E,T), the E/T
// split. CheckRaise validates `raise` against E; ErrorPayload is carried
// but not consulted, so a `return` of T is not checked against it.
type FunctionContext struct {
	Owner      types.Ref
	ReturnType types.Type
	ErrorEnum  *types.Ref // non-nil when ReturnType is error(E,T)
	ErrorPayload types.Type
}

// Analyser is the per-function semantic analyser.
type Analyser struct {
	checker *types.Checker
	reg     *registry.Registry
	scopes  *scope.Tracker
	sink    *cerrors.Sink
	fn      FunctionContext
}

// New builds an Analyser for one function body.
func New(checker *types.Checker, reg *registry.Registry, scopes *scope.Tracker, sink *cerrors.Sink, fn FunctionContext) *Analyser {
	return &Analyser{checker: checker, reg: reg, scopes: scopes, sink: sink, fn: fn}
}

// Expect is the central routine: analyse expr, and if its produced type
// isn't compatible with expectation, search for an implicit conversion
// before giving up.
func (a *Analyser) Expect(expectation Expectation, expr ast.Expression) types.Type {
	produced := a.analyse(expr, expectation)
	expr.SetType(produced)

	if expectation.Type == nil {
		return produced
	}
	if a.checker.CompatibleTo(produced, expectation.Type) {
		return produced
	}

	if converted, ok := a.tryImplicitConversion(produced, expectation, expr); ok {
		return converted
	}

	a.sink.Report(cerrors.Newf(cerrors.TYP001, cerrors.PhaseType, expr.Pos(),
		"cannot use a value of type %s where %s is expected", produced.String(), expectation.Type.String()))
	return expectation.Type
}

// tryImplicitConversion implements the ordered fallback chain: unwrap
// (refused — explicit 🍺 required), box-to-something, box-to-protocol,
// promote-class-to-someobject, callable-thunk.
func (a *Analyser) tryImplicitConversion(produced types.Type, expectation Expectation, expr ast.Expression) (types.Type, bool) {
	// Unwrap-optional is deliberately never auto-applied: an optional
	// producing a non-optional expectation must use 🍺 explicitly.
	if types.IsOptional(produced) && !expectation.AllowsOptional {
		if _, isOptionalTarget := expectation.Type.(*types.Optional); !isOptionalTarget {
			return nil, false
		}
	}

	if _, ok := expectation.Type.(*types.Something); ok {
		expr.SetType(types.TSomething)
		return types.TSomething, true
	}

	if proto, ok := expectation.Type.(*types.ProtocolInstance); ok {
		if a.checker.CompatibleTo(produced, proto) {
			expr.SetType(proto)
			return proto, true
		}
	}

	if _, ok := expectation.Type.(*types.SomeObject); ok {
		if _, isClass := produced.(*types.ClassInstance); isClass {
			expr.SetType(types.TSomeObject)
			return types.TSomeObject, true
		}
	}

	if targetCallable, ok := expectation.Type.(*types.Callable); ok {
		if capture, ok := expr.(*ast.CaptureMethodExpr); ok {
			_ = capture
			expr.SetType(targetCallable)
			return targetCallable, true
		}
	}

	return nil, false
}

// analyse dispatches on the expression's concrete variant.
func (a *Analyser) analyse(expr ast.Expression, expectation Expectation) types.Type {
	switch e := expr.(type) {
	case *ast.LiteralExpr:
		return a.analyseLiteral(e)
	case *ast.GetVariableExpr:
		return a.analyseGetVariable(e)
	case *ast.ThisExpr:
		return a.ownerInstanceType()
	case *ast.ListLiteralExpr:
		return a.analyseList(e)
	case *ast.DictionaryLiteralExpr:
		return a.analyseDictionary(e)
	case *ast.ConcatenateExpr:
		for _, part := range e.Parts {
			a.Expect(Expectation{Type: types.TSomething}, part)
		}
		return registryStringType(a.reg)
	case *ast.MethodCallExpr:
		return a.analyseMethodCall(e)
	case *ast.BinaryOperatorExpr:
		return a.analyseBinaryOperator(e)
	case *ast.IsErrorExpr:
		return a.analyseIsError(e)
	case *ast.UnwrapExpr:
		return a.analyseUnwrap(e)
	case *ast.ConditionalBindExpr:
		return a.analyseConditionalBind(e)
	case *ast.CallableCallExpr:
		return a.analyseCallableCall(e)
	case *ast.CaptureMethodExpr:
		return a.analyseCapture(e)
	default:
		return types.TSomething
	}
}

func (a *Analyser) analyseLiteral(e *ast.LiteralExpr) types.Type {
	switch e.Kind {
	case ast.LitInteger:
		return types.TInteger
	case ast.LitDouble:
		return types.TDouble
	case ast.LitBoolean:
		return types.TBoolean
	case ast.LitSymbol:
		return types.TSymbol
	case ast.LitNothingness:
		return types.TNothingness
	case ast.LitString:
		return registryStringType(a.reg)
	}
	return types.TSomething
}

func (a *Analyser) analyseGetVariable(e *ast.GetVariableExpr) types.Type {
	resolved, rep := a.scopes.GetVariable(e.Name, e.Pos())
	if rep != nil {
		a.sink.Report(rep)
		return types.TSomething
	}
	return resolved.Variable.Type
}

func (a *Analyser) ownerInstanceType() types.Type {
	d, ok := a.reg.Lookup(a.fn.Owner)
	if !ok {
		return types.TSomeObject
	}
	args := make([]types.Type, len(d.Generics))
	for i, g := range d.Generics {
		args[i] = &types.GenericVariable{Owner: a.fn.Owner, Index: i, Name: g.Name}
	}
	if d.Kind == registry.KindValue {
		return &types.ValueInstance{RefVal: a.fn.Owner, Args: args}
	}
	return &types.ClassInstance{RefVal: a.fn.Owner, Args: args}
}

// analyseList types a 🍦 list literal by joining its elements with
// CommonTypeFinder's generic-inference rules, and, where the 🍦List value
// type is registered, producing 🍦List parameterized over the join.
func (a *Analyser) analyseList(e *ast.ListLiteralExpr) types.Type {
	finder := types.NewCommonTypeFinder(a.checker)
	for _, elem := range e.Elements {
		t := a.Expect(Expectation{Type: types.TSomething}, elem)
		finder.Add(t)
	}
	common, ok := finder.CommonType()
	if !ok {
		a.sink.Report(cerrors.Warn(cerrors.TYP001, cerrors.PhaseType, e.Pos(), "ambiguous common type for list elements"))
	}
	if listRef, found := a.reg.FetchRawType("", "🍦List", false); found {
		if p, ok := listRef.(types.Parameterized); ok {
			return &types.ValueInstance{RefVal: p.Ref(), Args: []types.Type{common}}
		}
	}
	return types.TSomething
}

func (a *Analyser) analyseDictionary(e *ast.DictionaryLiteralExpr) types.Type {
	for i := range e.Keys {
		a.Expect(Expectation{Type: registryStringType(a.reg)}, e.Keys[i])
		a.Expect(Expectation{Type: types.TSomething}, e.Values[i])
	}
	return types.TSomething
}

// analyseMethodCall resolves Method on the receiver's type by walking the
// class hierarchy most-derived-first, looking up protocol/value-type
// method tables, or matching the single synthetic callable operation.
func (a *Analyser) analyseMethodCall(e *ast.MethodCallExpr) types.Type {
	receiverType := a.Expect(Expectation{Type: types.TSomething}, e.Receiver)

	method, rep := a.resolveMethod(receiverType, e.Method, e.Pos())
	if rep != nil {
		a.sink.Report(rep)
		return types.TSomething
	}
	e.ResolvedMethod = method

	if len(e.Args) != len(method.Params) {
		a.sink.Report(cerrors.Newf(cerrors.TYP001, cerrors.PhaseType, e.Pos(),
			"%s expects %d argument(s), got %d", e.Method, len(method.Params), len(e.Args)))
	}
	for i, arg := range e.Args {
		if i >= len(method.Params) {
			break
		}
		want := method.Params[i].ResolveOn(receiverType)
		a.Expect(Expectation{Type: want}, arg)
	}
	return method.Return.ResolveOn(receiverType)
}

func (a *Analyser) resolveMethod(receiver types.Type, name string, pos token.Pos) (*registry.Method, *cerrors.Report) {
	switch r := types.Unwrap(receiver).(type) {
	case *types.ClassInstance:
		return a.walkClassMethods(r.RefVal, name, pos)
	case *types.ValueInstance:
		d, ok := a.reg.Lookup(r.RefVal)
		if !ok {
			break
		}
		if m, ok := d.Methods[name]; ok {
			return m, nil
		}
	case *types.ProtocolInstance:
		d, ok := a.reg.Lookup(r.RefVal)
		if !ok {
			break
		}
		if m, ok := d.Methods[name]; ok {
			return m, nil
		}
	case *types.Callable:
		if name == "⁉️" {
			return &registry.Method{Name: name, Params: r.Params, Return: r.Return}, nil
		}
	}
	return nil, cerrors.Newf(cerrors.NAM003, cerrors.PhaseName, pos, "method %s not found", name)
}

func (a *Analyser) walkClassMethods(ref types.Ref, name string, pos token.Pos) (*registry.Method, *cerrors.Report) {
	cur := &ref
	for cur != nil {
		d, ok := a.reg.Lookup(*cur)
		if !ok {
			break
		}
		if m, ok := d.Methods[name]; ok {
			if m.Access == registry.AccessPrivate && !d.Ref.Equals(a.fn.Owner) {
				return nil, cerrors.Newf(cerrors.SEM001, cerrors.PhaseSemantic, pos,
					"%s🔒 is private to %s", name, d.Ref.String())
			}
			return m, nil
		}
		cur = d.Superclass
	}
	return nil, cerrors.Newf(cerrors.NAM003, cerrors.PhaseName, pos, "method %s not found", name)
}

func (a *Analyser) analyseBinaryOperator(e *ast.BinaryOperatorExpr) types.Type {
	left := a.Expect(Expectation{Type: types.TSomething}, e.Left)
	a.Expect(Expectation{Type: left}, e.Right)
	switch e.Operator {
	case "🙌", "🙅", "🙌🏾":
		return types.TBoolean
	default:
		return left
	}
}

// analyseIsError implements `🚥 v`: produces boolean, borrowing, and
// reports TYP006 if v's type is not an error type.
func (a *Analyser) analyseIsError(e *ast.IsErrorExpr) types.Type {
	t := a.Expect(Expectation{Type: types.TSomething, AllowsOptional: true}, e.Value)
	if _, ok := types.IsError(t); !ok {
		a.sink.Report(cerrors.New(cerrors.TYP006, cerrors.PhaseType, e.Pos(), "🚥 can only be used with errors."))
	}
	return types.TBoolean
}

// analyseUnwrap implements `🍺 v`: statically succeeds iff v's type is
// optional or error, producing the inner type.
func (a *Analyser) analyseUnwrap(e *ast.UnwrapExpr) types.Type {
	t := a.Expect(Expectation{Type: types.TSomething, AllowsOptional: true}, e.Value)
	if opt, ok := t.(*types.Optional); ok {
		return opt.Inner
	}
	if errT, ok := types.IsError(t); ok {
		return errT.Payload
	}
	a.sink.Report(cerrors.New(cerrors.TYP005, cerrors.PhaseType, e.Pos(),
		"🍺 can only be used with optionals or errors."))
	return types.TSomething
}

// analyseConditionalBind implements `expr ➡️ name`: it types expr and
// declares name, with the unwrapped type, in the innermost scope. For an
// if/repeat-while condition the statement walker has already opened the
// branch's scope, so name is visible only inside that branch.
func (a *Analyser) analyseConditionalBind(e *ast.ConditionalBindExpr) types.Type {
	t := a.Expect(Expectation{Type: types.TSomething, AllowsOptional: true}, e.Source)
	inner := t
	if opt, ok := t.(*types.Optional); ok {
		inner = opt.Inner
	}
	a.scopes.DeclareVariable(a.sink, e.Name, inner, false, e.Pos())
	a.scopes.MarkInitialized(e.Name)
	return types.TBoolean
}

func (a *Analyser) analyseCallableCall(e *ast.CallableCallExpr) types.Type {
	calleeType := a.Expect(Expectation{Type: types.TSomething}, e.Callee)
	callable, ok := calleeType.(*types.Callable)
	if !ok {
		a.sink.Report(cerrors.New(cerrors.TYP001, cerrors.PhaseType, e.Pos(), "⁉️ requires a callable value"))
		return types.TSomething
	}
	for i, arg := range e.Args {
		if i < len(callable.Params) {
			a.Expect(Expectation{Type: callable.Params[i]}, arg)
		}
	}
	return callable.Return
}

func (a *Analyser) analyseCapture(e *ast.CaptureMethodExpr) types.Type {
	receiverType := a.Expect(Expectation{Type: types.TSomething}, e.Receiver)
	method, rep := a.resolveMethod(receiverType, e.Method, e.Pos())
	if rep != nil {
		a.sink.Report(rep)
		return types.TSomething
	}
	params := make([]types.Type, len(method.Params))
	for i, p := range method.Params {
		params[i] = p.ResolveOn(receiverType)
	}
	return &types.Callable{Params: params, Return: method.Return.ResolveOn(receiverType)}
}

// CheckRaise validates `raise v` against the enclosing function's declared
// error enum (SEM004).
func (a *Analyser) CheckRaise(stmt *ast.RaiseStmt) {
	if a.fn.ErrorEnum == nil {
		a.sink.Report(cerrors.New(cerrors.SEM004, cerrors.PhaseSemantic, stmt.Pos(),
			"raise used in a function that does not declare an error return type"))
		return
	}
	a.Expect(Expectation{Type: &types.EnumInstance{RefVal: *a.fn.ErrorEnum}}, stmt.Value)
}

func registryStringType(reg *registry.Registry) types.Type {
	if t, ok := reg.FetchRawType("", "🔡", false); ok {
		return t
	}
	return types.TSomething
}
