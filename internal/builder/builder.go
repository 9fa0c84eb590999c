// Package builder declares the opaque instruction-builder interface the
// code generator emits against. No implementation lives here — a concrete
// backend is out of scope for this repository, same as the lexer.
package builder

import "github.com/emojicode/ecc/internal/types"

// Value is an opaque backend value handle (an SSA value, a register, a
// constant — the builder implementation decides).
type Value interface{}

// BasicBlock is an opaque backend control-flow block handle.
type BasicBlock interface{}

// Builder is the external instruction-emission collaborator. internal/codegen
// calls it exclusively through this interface; it never constructs backend
// values itself.
type Builder interface {
	CreateRet(value Value)
	CreateRetVoid()
	CreateLoad(ptr Value) Value
	CreateStore(ptr Value, value Value)
	CreateAlloca(t types.Type) Value
	CreateBr(target BasicBlock)
	CreateCondBr(cond Value, then, els BasicBlock)
	CreateCall(fn Value, args []Value) Value
	CreateExtractValue(agg Value, index int) Value
	CreateInsertValue(agg Value, elem Value, index int) Value

	ConstantInt(v int64) Value
	ConstantDouble(v float64) Value
	ConstantBool(v bool) Value
	ConstantString(v string) Value

	NewBasicBlock(name string) BasicBlock
	SetInsertPoint(b BasicBlock)

	DeclareFunction(name string, params []types.Type, ret types.Type) Value
}

// TypeHelper caches the backend-type equivalent of each compiler Type:
// types surfaced to the builder are the compiler's Types mapped through a
// TypeHelper that caches equivalent backend types.
type TypeHelper struct {
	builder Builder
	cache   map[string]types.Type
}

// NewTypeHelper builds a TypeHelper over b.
func NewTypeHelper(b Builder) *TypeHelper {
	return &TypeHelper{builder: b, cache: make(map[string]types.Type)}
}

// Lower returns the backend-facing representation of t, memoized by its
// string form. The "backend type" here is the compiler's own Type — a real
// backend would map this to its IR type instead.
func (h *TypeHelper) Lower(t types.Type) types.Type {
	key := t.String()
	if cached, ok := h.cache[key]; ok {
		return cached
	}
	h.cache[key] = t
	return t
}
