package codegen

import (
	"fmt"
	"testing"

	"github.com/emojicode/ecc/internal/ast"
	"github.com/emojicode/ecc/internal/builder"
	"github.com/emojicode/ecc/internal/registry"
	"github.com/emojicode/ecc/internal/types"
)

// fakeBuilder records emitted instructions instead of lowering them to any
// real backend, the way internal/builder's doc comment describes the
// collaborator boundary.
type fakeBuilder struct {
	calls   []string
	counter int
}

func (f *fakeBuilder) log(format string, args ...interface{}) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeBuilder) CreateRet(v builder.Value)    { f.log("ret %v", v) }
func (f *fakeBuilder) CreateRetVoid()               { f.log("ret void") }
func (f *fakeBuilder) CreateLoad(ptr builder.Value) builder.Value {
	f.log("load %v", ptr)
	return "loaded"
}
func (f *fakeBuilder) CreateStore(ptr, v builder.Value) { f.log("store %v -> %v", v, ptr) }
func (f *fakeBuilder) CreateAlloca(t types.Type) builder.Value {
	f.counter++
	f.log("alloca %s", t.String())
	return fmt.Sprintf("slot%d", f.counter)
}
func (f *fakeBuilder) CreateBr(builder.BasicBlock) { f.log("br") }
func (f *fakeBuilder) CreateCondBr(c builder.Value, a, b builder.BasicBlock) { f.log("condbr") }
func (f *fakeBuilder) CreateCall(fn builder.Value, args []builder.Value) builder.Value {
	f.log("call %v with %d args", fn, len(args))
	return "callresult"
}
func (f *fakeBuilder) CreateExtractValue(agg builder.Value, idx int) builder.Value {
	f.log("extract %d from %v", idx, agg)
	return "extracted"
}
func (f *fakeBuilder) CreateInsertValue(agg, elem builder.Value, idx int) builder.Value {
	f.log("insert %v into %v at %d", elem, agg, idx)
	return "inserted"
}
func (f *fakeBuilder) ConstantInt(v int64) builder.Value      { return v }
func (f *fakeBuilder) ConstantDouble(v float64) builder.Value { return v }
func (f *fakeBuilder) ConstantBool(v bool) builder.Value      { return v }
func (f *fakeBuilder) ConstantString(v string) builder.Value  { return v }
func (f *fakeBuilder) NewBasicBlock(name string) builder.BasicBlock { return name }
func (f *fakeBuilder) SetInsertPoint(builder.BasicBlock)             {}
func (f *fakeBuilder) DeclareFunction(name string, params []types.Type, ret types.Type) builder.Value {
	f.log("declare %s", name)
	return name
}

func TestGenerateFunction_ReturnLiteral(t *testing.T) {
	fb := &fakeBuilder{}
	reg := registry.New()
	d := New(fb, reg)

	lit := &ast.LiteralExpr{Kind: ast.LitInteger, IntValue: 42}
	lit.SetType(types.TInteger)
	body := &ast.BlockStmt{Statements: []ast.Statement{&ast.ReturnStmt{Value: lit}}}

	d.GenerateFunction(body)

	found := false
	for _, c := range fb.calls {
		if c == "ret 42" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a ret of the literal value, got calls: %v", fb.calls)
	}
}

func TestBoxForReturn_OptionalWrapsInAggregate(t *testing.T) {
	fb := &fakeBuilder{}
	reg := registry.New()
	d := New(fb, reg)

	v := d.boxForReturn(&types.Optional{Inner: types.TInteger}, int64(7))
	if v != "inserted" {
		t.Errorf("expected boxed optional return to go through CreateInsertValue, got %v", v)
	}
}

func TestSelectDispatch_ClassNonFinalUsesVirtualTable(t *testing.T) {
	recv := &types.ClassInstance{RefVal: types.Ref{Package: "🌍", Name: "Cat"}}
	if SelectDispatch(recv, false) != DispatchVirtualTable {
		t.Error("expected a non-final class receiver to dispatch via virtual table")
	}
	if SelectDispatch(recv, true) != DispatchDirect {
		t.Error("expected a final class receiver to dispatch directly")
	}
}

func TestSelectDispatch_CallableUsesExecutor(t *testing.T) {
	c := &types.Callable{Params: nil, Return: types.TSomething}
	if SelectDispatch(c, false) != DispatchCallableExecutor {
		t.Error("expected a callable receiver to dispatch via the callable executor")
	}
}

func TestSelectDispatch_ProtocolUsesProtocolTable(t *testing.T) {
	p := &types.ProtocolInstance{RefVal: types.Ref{Package: "🌍", Name: "Purrer"}}
	if SelectDispatch(p, false) != DispatchProtocolTable {
		t.Error("expected a protocol receiver to dispatch via the protocol table")
	}
}

func TestGenerateMethodCall_VirtualDispatchExtractsSlot(t *testing.T) {
	fb := &fakeBuilder{}
	reg := registry.New()
	d := New(fb, reg)

	recv := &ast.ThisExpr{}
	recv.SetType(&types.ClassInstance{RefVal: types.Ref{Package: "🌍", Name: "Cat"}})
	call := &ast.MethodCallExpr{
		Receiver:       recv,
		Method:         "🔊",
		ResolvedMethod: &registry.Method{Name: "🔊", Final: false},
	}

	d.generateMethodCall(call)

	sawExtract := false
	for _, c := range fb.calls {
		if c == "extract 0 from 0" {
			sawExtract = true
		}
	}
	if !sawExtract {
		t.Errorf("expected virtual dispatch to extract the v-table slot, got calls: %v", fb.calls)
	}
}

func TestReleaseTemporaryObjects_ClearsPendingAfterEachStatement(t *testing.T) {
	fb := &fakeBuilder{}
	reg := registry.New()
	d := New(fb, reg)

	lit := &ast.LiteralExpr{Kind: ast.LitInteger, IntValue: 1}
	lit.SetType(types.TInteger)
	lit.SetTemporarilyScoped(true)

	block := &ast.BlockStmt{Statements: []ast.Statement{&ast.ExpressionStmt{Expr: lit}}}
	d.generateBlock(block)

	if len(d.pending) != 0 {
		t.Errorf("expected pending temporaries to be released after the statement, got %d", len(d.pending))
	}
}
