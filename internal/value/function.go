package value

import (
	"fmt"
	"strings"

	"anilang/internal/bytecode"
)

// NativeFn is a function implemented in Go rather than compiled anilang
// bytecode.
type NativeFn func(args []Value) (Value, *OpError)

// Function is a callable value: either a user-defined function with
// compiled bytecode and a declared parameter list, or a native function.
// Either kind may carry a bound receiver ("this"), used for property-access
// method calls.
type Function struct {
	params  []string
	body    bytecode.Program
	native  NativeFn
	this    *Value
	statics map[string]Value
}

// NewUserFunction builds a function whose body is compiled bytecode.
// body[0] must be a PushVar instruction carrying the function's own top
// scope; this invariant is what lets DuplicateBody locate it.
func NewUserFunction(params []string, body bytecode.Program) *Function {
	return &Function{params: params, body: body}
}

// NewNativeFunction builds a function backed by Go code.
func NewNativeFunction(native NativeFn) *Function {
	return &Function{native: native}
}

// WithThis returns a copy of f bound to receiver this.
func (f *Function) WithThis(this Value) *Function {
	cp := *f
	cp.this = &this
	return &cp
}

// WithStatics returns a copy of f carrying the unbound `Name::member` table
// an interface's desugared constructor exposes.
func (f *Function) WithStatics(statics map[string]Value) *Function {
	cp := *f
	cp.statics = statics
	return &cp
}

// Static looks up a `Name::member` entry.
func (f *Function) Static(name string) (Value, bool) {
	v, ok := f.statics[name]
	return v, ok
}

func (f *Function) IsNative() bool    { return f.native != nil }
func (f *Function) Params() []string  { return f.params }
func (f *Function) Body() bytecode.Program { return f.body }
func (f *Function) Native() NativeFn  { return f.native }
func (f *Function) This() *Value      { return f.this }

// Scope returns the function's own top scope, extracted from body[0] per
// the PushVar-first invariant; it panics if the invariant is violated, since
// that is a lowerer bug, not a user-facing error.
func (f *Function) Scope() *Scope {
	if len(f.body) == 0 {
		panic("value: user function body must start with PushVar")
	}
	instr := f.body[0]
	if instr.Op != bytecode.PushVar {
		panic("value: user function body must start with PushVar")
	}
	return instr.Operand.(*Scope)
}

// DuplicateBody returns a copy of f's bytecode with every embedded scope
// (including those of nested function-literal values) replaced by a fresh,
// correctly-parented Scope instance. This is run on every CallFunction so
// recursive or concurrent activations of the same function never share
// local state.
func (f *Function) DuplicateBody() bytecode.Program {
	if f.IsNative() || len(f.body) == 0 {
		return nil
	}

	body := make(bytecode.Program, len(f.body))
	copy(body, f.body)

	delta := f.Scope().ID()
	newScopes := make(map[ScopeID]*Scope, len(body))

	for i, instr := range body {
		switch instr.Op {
		case bytecode.PushVar:
			oldScope := instr.Operand.(*Scope)
			var newScope *Scope
			if oldScope.ID() == delta {
				newScope = oldScope.duplicate()
			} else {
				var parent *Scope
				if pid, ok := oldScope.ParentID(); ok {
					parent = newScopes[pid]
				}
				newScope = NewScope(oldScope.ID(), parent)
			}
			newScopes[oldScope.ID()] = newScope
			body[i].Operand = newScope

		case bytecode.Push:
			v, ok := instr.Operand.(Value)
			if !ok || v.kind != KindFunction || v.fn == nil || v.fn.IsNative() {
				continue
			}
			nested := v.fn
			nestedBody := nested.DuplicateBody()
			nestedScope := nestedBody[0].Operand.(*Scope)

			var parent *Scope
			if pid, ok := nestedScope.ParentID(); ok {
				parent = newScopes[pid]
			}
			rewired := NewScope(nestedScope.ID(), parent)
			nestedBody[0].Operand = rewired

			newFn := NewUserFunction(nested.params, nestedBody)
			newFn.this = nested.this
			newFn.statics = nested.statics
			body[i].Operand = FuncValue(newFn)
		}
	}

	return body
}

func (f *Function) String() string {
	if f.IsNative() {
		if f.this != nil {
			return fmt.Sprintf("native function on %s", f.this.String())
		}
		return "native function"
	}
	var b strings.Builder
	b.WriteString("fn (")
	b.WriteString(strings.Join(f.params, ", "))
	b.WriteByte(')')
	if f.this != nil {
		fmt.Fprintf(&b, " on %s", f.this.String())
	}
	return b.String()
}
