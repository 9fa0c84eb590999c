// Package boxing implements the boxing-layer synthesiser: for
// every (protocol-method, implementing-function) pair whose boxed
// calling convention differs from the native one, and for every callable
// value needing interop with a boxed executor context, it synthesises an
// adapter function with the uniform signature the analyser registers into
// the owning type's method table.
//
// Grounded on the original compiler's Functions/BoxingLayer.hpp concept
// and generalized the way internal/types.Checker generalizes the type
// lattice: a small registry of adapters keyed by (owner, method) rather
// than one-off per-call-site code.
package boxing

import (
	"fmt"

	"github.com/emojicode/ecc/internal/registry"
	"github.com/emojicode/ecc/internal/types"
)

// Convention distinguishes a function's native calling convention from the
// uniform "boxed" convention every protocol/callable dispatch site expects.
type Convention int

const (
	Native Convention = iota
	Boxed
)

// Layer is one synthesised adapter: a function with Boxed.Signature that
// converts each argument, calls Native's implementing function, and
// converts the result back.
type Layer struct {
	Name      string
	Owner     types.Ref
	Method    string
	Native    *registry.Method
	Signature *registry.Method // the boxed-convention signature callers see
}

// Synthesiser builds and caches Layer adapters for one CompilerSession.
type Synthesiser struct {
	reg    *registry.Registry
	layers map[string]*Layer
}

// New builds a Synthesiser over reg.
func New(reg *registry.Registry) *Synthesiser {
	return &Synthesiser{reg: reg, layers: make(map[string]*Layer)}
}

// SynthesiseProtocolConformances walks every declared class and value type, and for each
// protocol it conforms to, synthesises a boxing layer for any method whose
// native signature differs from the protocol's declared signature (most
// commonly: the receiver's concrete type vs. the protocol's Self).
func (s *Synthesiser) SynthesiseProtocolConformances() []*Layer {
	var out []*Layer
	for _, decl := range s.reg.Declarations() {
		if decl.Kind != registry.KindClass && decl.Kind != registry.KindValue {
			continue
		}
		for _, protoRef := range decl.Conformances {
			proto, ok := s.reg.Lookup(protoRef)
			if !ok {
				continue
			}
			for name, protoMethod := range proto.Methods {
				native, ok := decl.Methods[name]
				if !ok {
					continue
				}
				if s.needsBoxing(native, protoMethod) {
					out = append(out, s.synthesise(decl.Ref, name, native, protoMethod))
				}
			}
		}
	}
	return out
}

// needsBoxing reports whether native's signature differs structurally from
// boxed (the protocol's declared signature) — arity or shape mismatch
// means a plain direct call cannot satisfy the protocol's v-table slot.
func (s *Synthesiser) needsBoxing(native, boxed *registry.Method) bool {
	if len(native.Params) != len(boxed.Params) {
		return true
	}
	for i := range native.Params {
		if native.Params[i].String() != boxed.Params[i].String() {
			return true
		}
	}
	return native.Return.String() != boxed.Return.String()
}

func (s *Synthesiser) synthesise(owner types.Ref, method string, native, boxed *registry.Method) *Layer {
	key := fmt.Sprintf("%s#%s", owner.String(), method)
	if existing, ok := s.layers[key]; ok {
		return existing
	}
	layer := &Layer{
		Name:      fmt.Sprintf("$box$%s$%s", owner.String(), method),
		Owner:     owner,
		Method:    method,
		Native:    native,
		Signature: boxed,
	}
	s.layers[key] = layer
	return layer
}

// SynthesiseCallableThunk builds the adapter for a captured method
// reference used as a callable value: a function matching callableType's
// signature whose body applies the executor instruction to the `this`
// context captured at the call site.
func (s *Synthesiser) SynthesiseCallableThunk(owner types.Ref, method string, callableType *types.Callable) *Layer {
	key := fmt.Sprintf("thunk:%s#%s", owner.String(), method)
	if existing, ok := s.layers[key]; ok {
		return existing
	}
	sig := &registry.Method{Name: method, Params: callableType.Params, Return: callableType.Return}
	layer := &Layer{
		Name:      fmt.Sprintf("$thunk$%s$%s", owner.String(), method),
		Owner:     owner,
		Method:    method,
		Signature: sig,
	}
	s.layers[key] = layer
	return layer
}

// Layers returns every synthesised adapter so far, for the code-gen driver
// to emit uniformly alongside ordinary methods.
func (s *Synthesiser) Layers() []*Layer {
	out := make([]*Layer, 0, len(s.layers))
	for _, l := range s.layers {
		out = append(out, l)
	}
	return out
}
