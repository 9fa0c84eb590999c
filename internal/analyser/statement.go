package analyser

import (
	"github.com/emojicode/ecc/internal/ast"
	"github.com/emojicode/ecc/internal/types"
)

// AnalyseBlock drives Expect/CheckRaise over every statement in block,
// opening and closing a.scopes' scope stack around the constructs that
// introduce one — the statement-level half that sits above the purely
// expression-level Expect this file's sibling declares.
func (a *Analyser) AnalyseBlock(block *ast.BlockStmt) {
	for _, stmt := range block.Statements {
		a.analyseStatement(stmt)
	}
}

func (a *Analyser) analyseStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.ReturnStmt:
		if s.Value != nil {
			a.Expect(Expectation{Type: a.fn.ReturnType, AllowsOptional: true}, s.Value)
		}

	case *ast.RaiseStmt:
		a.CheckRaise(s)

	case *ast.ExpressionStmt:
		if s.Expr != nil {
			a.Expect(Expectation{Type: types.TSomething, AllowsOptional: true}, s.Expr)
		}

	case *ast.VariableDeclareStmt:
		declType := types.Type(types.TSomething)
		if s.Value != nil {
			declType = a.Expect(Expectation{Type: types.TSomething, AllowsOptional: true}, s.Value)
		}
		if _, rep := a.scopes.DeclareVariable(a.sink, s.Name, declType, s.Mutable, s.Pos()); rep != nil {
			a.sink.Report(rep)
		} else if s.Value != nil {
			a.scopes.MarkInitialized(s.Name)
		}

	case *ast.VariableAssignStmt:
		resolved, rep := a.scopes.GetVariable(s.Name, s.Pos())
		if rep != nil {
			a.sink.Report(rep)
			return
		}
		a.Expect(Expectation{Type: resolved.Variable.Type, AllowsOptional: true}, s.Value)
		a.scopes.MarkReassigned(s.Name)
		a.scopes.MarkInitialized(s.Name)

	case *ast.OperatorAssignStmt:
		resolved, rep := a.scopes.GetVariable(s.Name, s.Pos())
		if rep != nil {
			a.sink.Report(rep)
			return
		}
		a.Expect(Expectation{Type: resolved.Variable.Type, AllowsOptional: true}, s.Value)
		a.scopes.MarkReassigned(s.Name)

	case *ast.ConstantBindStmt:
		t := a.Expect(Expectation{Type: types.TSomething, AllowsOptional: true}, s.Value)
		if _, rep := a.scopes.DeclareVariable(a.sink, s.Name, t, false, s.Pos()); rep != nil {
			a.sink.Report(rep)
		} else {
			a.scopes.MarkInitialized(s.Name)
		}

	case *ast.BlockStmt:
		a.scopes.PushScope()
		a.AnalyseBlock(s)
		a.scopes.PopScope(a.sink)

	case *ast.IfStmt:
		for _, br := range s.Branches {
			a.scopes.PushScope()
			if br.Condition != nil {
				a.Expect(Expectation{Type: types.TBoolean, AllowsOptional: true}, br.Condition)
			}
			a.AnalyseBlock(br.Body)
			a.scopes.PopScope(a.sink)
		}

	case *ast.RepeatWhileStmt:
		a.scopes.PushScope()
		a.Expect(Expectation{Type: types.TBoolean, AllowsOptional: true}, s.Condition)
		a.AnalyseBlock(s.Body)
		a.scopes.PopScope(a.sink)

	case *ast.ForInStmt:
		iterable := a.Expect(Expectation{Type: types.TSomething}, s.Iterable)
		a.scopes.PushScope()
		elem := a.elementTypeOf(iterable)
		if _, rep := a.scopes.DeclareVariable(a.sink, s.VariableName, elem, true, s.Pos()); rep == nil {
			a.scopes.MarkInitialized(s.VariableName)
		}
		a.AnalyseBlock(s.Body)
		a.scopes.PopScope(a.sink)

	case *ast.UnsafeBlockStmt:
		a.scopes.PushScope()
		a.AnalyseBlock(s.Body)
		a.scopes.PopScope(a.sink)

	case *ast.ErrorHandlerStmt:
		a.scopes.PushScope()
		a.AnalyseBlock(s.Attempt)
		a.scopes.PopScope(a.sink)

		a.scopes.PushScope()
		if a.fn.ErrorEnum != nil {
			if _, rep := a.scopes.DeclareVariable(a.sink, s.CaughtName, &types.EnumInstance{RefVal: *a.fn.ErrorEnum}, false, s.Pos()); rep == nil {
				a.scopes.MarkInitialized(s.CaughtName)
			}
		}
		a.AnalyseBlock(s.Handler)
		a.scopes.PopScope(a.sink)

	case *ast.ConditionalAssignStmt:
		if s.Bind != nil {
			a.Expect(Expectation{Type: types.TBoolean, AllowsOptional: true}, s.Bind)
		}
	}
}

// elementTypeOf extracts a 🔂-loop's per-iteration variable type from the
// iterable's first generic argument, falling back to Something when the
// iterable isn't itself parameterized (e.g. it already failed to resolve).
func (a *Analyser) elementTypeOf(t types.Type) types.Type {
	if p, ok := types.Unwrap(t).(types.Parameterized); ok {
		if args := p.GenericArgs(); len(args) > 0 {
			return args[0]
		}
	}
	return types.TSomething
}
