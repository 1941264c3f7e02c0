// Package vm is the stack evaluator: it executes a
// bytecode.Program against an operand stack and a stack of lexical scopes,
// resolving labels to instruction indices once on entry to each program it
// runs (the top-level program, and again for every function body a
// CallFunction invokes).
package vm

import (
	"anilang/internal/bytecode"
	"anilang/internal/diag"
	"anilang/internal/source"
	"anilang/internal/value"
)

// VM holds the evaluator's whole runtime state. A single VM instance is
// reused across a CallFunction's recursive invocation of a function body:
// the operand stack and scope stack are shared, so a caller's locals and
// in-flight values stay exactly where the caller's block balance left them
// while the callee runs its own PushVar..PopVar pair on top.
type VM struct {
	rep    *diag.Reporter
	stack  []value.Value
	scopes []*value.Scope
}

// New creates a VM reporting operational errors through rep.
func New(rep *diag.Reporter) *VM {
	return &VM{rep: rep}
}

// Run executes prog from its first instruction and returns the single value
// it leaves on the stack, or Null if it leaves none or if the reporter holds
// any error once prog stops.
func (vm *VM) Run(prog bytecode.Program) value.Value {
	base := len(vm.stack)
	vm.run(prog)

	if vm.rep.Any() {
		vm.stack = vm.stack[:base]
		return value.Null()
	}
	if len(vm.stack) <= base {
		return value.Null()
	}
	result := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:base]
	return result
}

func (vm *VM) push(v value.Value) { vm.stack = append(vm.stack, v) }

func (vm *VM) pop() value.Value {
	n := len(vm.stack) - 1
	v := vm.stack[n]
	vm.stack = vm.stack[:n]
	return v
}

func (vm *VM) peek() value.Value { return vm.stack[len(vm.stack)-1] }

func (vm *VM) scope() *value.Scope { return vm.scopes[len(vm.scopes)-1] }

// report halts the current run by recording an operational error and
// leaving it for the caller's Reporter.Any() check to notice.
func (vm *VM) report(kind diag.Kind, span source.Span, format string, args ...any) {
	vm.rep.Report(kind, span, format, args...)
}

// run drives the fetch/decode/execute loop over one bytecode vector. It is
// called once for the top-level program and once more, recursively, for
// every user function CallFunction invokes — each call gets its own label
// table but shares this VM's operand and scope stacks.
func (vm *VM) run(prog bytecode.Program) {
	labels := prog.Labels()
	ip := 0
	for ip < len(prog) {
		if vm.rep.Any() {
			return
		}
		instr := prog[ip]
		jumped := false

		switch instr.Op {
		case bytecode.Push:
			vm.push(instr.Operand.(value.Value))

		case bytecode.Pop:
			vm.pop()

		case bytecode.BinaryAdd, bytecode.BinarySubtract, bytecode.BinaryMultiply,
			bytecode.BinaryDivide, bytecode.BinaryMod, bytecode.BinaryPower,
			bytecode.CompareLT, bytecode.CompareLE, bytecode.CompareGT,
			bytecode.CompareGE, bytecode.CompareEQ, bytecode.CompareNE:
			left := vm.pop()
			right := vm.pop()
			if !vm.binary(instr, left, right) {
				return
			}

		case bytecode.BinaryOr:
			left := vm.pop()
			right := vm.pop()
			if left.IsTruthy() {
				vm.push(left)
			} else {
				vm.push(right)
			}

		case bytecode.BinaryAnd:
			left := vm.pop()
			right := vm.pop()
			if !left.IsTruthy() {
				vm.push(left)
			} else {
				vm.push(right)
			}

		case bytecode.UnaryPositive:
			v, err := vm.pop().Plus()
			if err != nil {
				vm.report(err.Kind, instr.Span, "%s", err.Message)
				return
			}
			vm.push(v)

		case bytecode.UnaryNegative:
			v, err := vm.pop().Neg()
			if err != nil {
				vm.report(err.Kind, instr.Span, "%s", err.Message)
				return
			}
			vm.push(v)

		case bytecode.UnaryNot:
			vm.push(vm.pop().Not())

		case bytecode.Store:
			op := instr.Operand.(bytecode.StoreOperand)
			v := vm.peek()
			var err *value.OpError
			if op.Declaration {
				err = vm.scope().Declare(op.Ident, v)
			} else {
				err = vm.scope().Set(op.Ident, v)
			}
			if err != nil {
				vm.report(err.Kind, instr.Span, "%s", err.Message)
				return
			}

		case bytecode.Load:
			ident := instr.Operand.(string)
			v, ok := vm.scope().TryGet(ident)
			if !ok {
				vm.report(diag.UnknownReference, instr.Span, "unknown reference %q", ident)
				return
			}
			vm.push(v)

		case bytecode.PushVar:
			vm.scopes = append(vm.scopes, instr.Operand.(*value.Scope))

		case bytecode.PopVar:
			vm.scopes = vm.scopes[:len(vm.scopes)-1]

		case bytecode.GetIndex:
			indexed := vm.pop()
			index := vm.pop()
			v, err := indexed.GetAt(index)
			if err != nil {
				vm.report(err.Kind, instr.Span, "%s", err.Message)
				return
			}
			vm.push(v)

		case bytecode.SetIndex:
			indexed := vm.pop()
			index := vm.pop()
			val := vm.pop()
			v, err := indexed.SetAt(index, val)
			if err != nil {
				vm.report(err.Kind, instr.Span, "%s", err.Message)
				return
			}
			vm.push(v)

		case bytecode.MakeList:
			n := instr.Operand.(int)
			elems := make([]value.Value, n)
			for i := 0; i < n; i++ {
				elems[i] = vm.pop()
			}
			vm.push(value.List(elems))
			vm.collectIfNeeded()

		case bytecode.MakeObject:
			n := instr.Operand.(int)
			fields := make(map[string]value.Value, n)
			for i := 0; i < n; i++ {
				key := vm.pop()
				val := vm.pop()
				if key.Kind() != value.KindString {
					vm.report(diag.Other, instr.Span, "object keys must be strings, got %s", key.Kind())
					return
				}
				fields[key.AsString()] = val
			}
			vm.push(value.Object(fields))
			vm.collectIfNeeded()

		case bytecode.MakeRange:
			left := vm.pop()
			right := vm.pop()
			v, err := left.RangeTo(right)
			if err != nil {
				vm.report(err.Kind, instr.Span, "%s", err.Message)
				return
			}
			vm.push(v)

		case bytecode.JumpTo:
			ip = labels[instr.Operand.(bytecode.LabelNumber)]
			jumped = true

		case bytecode.PopJumpIfTrue:
			if vm.pop().IsTruthy() {
				ip = labels[instr.Operand.(bytecode.LabelNumber)]
				jumped = true
			}

		case bytecode.Label:
			// no-op at run time; labels are resolved once on entry.

		case bytecode.CallFunction:
			if !vm.call(instr) {
				return
			}

		default:
			panic("vm: unhandled opcode " + instr.Op.String())
		}

		if !jumped {
			ip++
		}
	}
}

// binary applies a BinaryXxx/CompareXxx opcode already decoded by run's
// caller. Equality/inequality fold into Equals rather than order() since
// Null, List, Object, Range, Function all support == without a total order.
func (vm *VM) binary(instr bytecode.Instr, left, right value.Value) bool {
	var result value.Value
	var err *value.OpError

	switch instr.Op {
	case bytecode.BinaryAdd:
		result, err = left.Add(right)
	case bytecode.BinarySubtract:
		result, err = left.Sub(right)
	case bytecode.BinaryMultiply:
		result, err = left.Mul(right)
	case bytecode.BinaryDivide:
		result, err = left.Div(right)
	case bytecode.BinaryMod:
		result, err = left.Mod(right)
	case bytecode.BinaryPower:
		result, err = left.Pow(right)
	case bytecode.CompareLT:
		result, err = left.Lt(right)
	case bytecode.CompareLE:
		result, err = left.Le(right)
	case bytecode.CompareGT:
		result, err = left.Gt(right)
	case bytecode.CompareGE:
		result, err = left.Ge(right)
	case bytecode.CompareEQ:
		eq, cmpErr := left.Equals(right)
		result, err = value.Bool(eq), cmpErr
	case bytecode.CompareNE:
		eq, cmpErr := left.Equals(right)
		result, err = value.Bool(!eq), cmpErr
	}

	if err != nil {
		vm.report(err.Kind, instr.Span, "%s", err.Message)
		return false
	}
	vm.push(result)
	return true
}

// call implements CallFunction's semantics:
// bound-receiver prepending, native dispatch, and — for a user function —
// duplicating the body's scope graph before declaring parameters and
// recursing into run so concurrent/recursive activations never share
// locals.
func (vm *VM) call(instr bytecode.Instr) bool {
	numArgs := instr.Operand.(int)
	calleeVal := vm.pop()
	args := make([]value.Value, numArgs)
	for i := 0; i < numArgs; i++ {
		args[i] = vm.pop()
	}

	if calleeVal.Kind() != value.KindFunction {
		vm.report(diag.IncorrectType, instr.Span, "expected function, got %s", calleeVal.Kind())
		return false
	}
	fn := calleeVal.AsFunc()
	if this := fn.This(); this != nil {
		args = append([]value.Value{*this}, args...)
	}

	if fn.IsNative() {
		result, err := fn.Native()(args)
		if err != nil {
			vm.report(err.Kind, instr.Span, "%s", err.Message)
			return false
		}
		vm.push(result)
		return true
	}

	if len(args) != len(fn.Params()) {
		vm.report(diag.IncorrectArgCount, instr.Span,
			"expected %d argument(s), got %d", len(fn.Params()), len(args))
		return false
	}

	body := fn.DuplicateBody()
	scope0 := body[0].Operand.(*value.Scope)
	for i, param := range fn.Params() {
		if err := scope0.Declare(param, args[i]); err != nil {
			vm.report(err.Kind, instr.Span, "%s", err.Message)
			return false
		}
	}

	vm.run(body)
	return !vm.rep.Any()
}

// collectIfNeeded runs a GC pass when the allocator threshold has been
// crossed, rooted at every value currently reachable from this VM: the
// operand stack (in-flight intermediate results) and every active scope's
// locals (declared variables no longer on the stack).
func (vm *VM) collectIfNeeded() {
	roots := make([]value.Value, 0, len(vm.stack)+len(vm.scopes)*4)
	roots = append(roots, vm.stack...)
	for _, sc := range vm.scopes {
		roots = append(roots, sc.Values()...)
	}
	value.CollectIfNeeded(roots)
}
