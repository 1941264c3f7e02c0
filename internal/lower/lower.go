// Package lower translates an AST into linear bytecode: it
// builds the scope graph, threads break/return targets through nested
// control flow, and optionally folds constant subtrees.
package lower

import (
	"anilang/internal/ast"
	"anilang/internal/bytecode"
	"anilang/internal/diag"
	"anilang/internal/source"
	"anilang/internal/value"
)

// counters are the monotonically increasing IDs shared by every Lowerer
// instance lowering the same program, including nested function bodies, so
// scope IDs and label numbers never collide across vectors.
type counters struct {
	scopeID value.ScopeID
	label   bytecode.LabelNumber
}

func (c *counters) newScopeID() value.ScopeID {
	id := c.scopeID
	c.scopeID++
	return id
}

func (c *counters) newLabel() bytecode.LabelNumber {
	l := c.label
	c.label++
	return l
}

// loopCtx records the state a `break` needs: the label to jump to and the
// scope depth at the moment the loop's own scope was pushed (so a nested
// break can compute how many PopVars to unwind through).
type loopCtx struct {
	label        bytecode.LabelNumber
	depthAtEntry int
}

// Lowerer walks one bytecode vector (the top-level program, or a single
// function body) at a time; lowering a nested function body spawns a fresh
// Lowerer that shares the counters, the reporter and the optimize setting,
// and parents the body's scope to the current scope.
type Lowerer struct {
	rep      *diag.Reporter
	optimize bool
	counters *counters

	instrs []bytecode.Instr
	scope  *value.Scope
	depth  int

	loop        *loopCtx
	inFunction  bool
	returnLabel bytecode.LabelNumber
	funcDepth   int
}

// Lower lowers a full program into one bytecode vector.
func Lower(program *ast.Block, optimize bool, rep *diag.Reporter) bytecode.Program {
	l := &Lowerer{rep: rep, optimize: optimize, counters: &counters{}}
	l.pushScope()
	l.lowerBlockBody(program.Statements, false)
	l.popScope()
	return l.instrs
}

// LowerWithScope lowers program the same way as Lower, but its top-level
// PushVar carries top itself rather than a freshly allocated scope. This is
// what lets a REPL evaluate one line at a time while keeping every earlier
// line's declarations visible to the next: each line gets its own bytecode
// vector, but all of them push the one long-lived top scope the REPL holds
// onto the VM's scope stack.
func LowerWithScope(program *ast.Block, optimize bool, rep *diag.Reporter, top *value.Scope) bytecode.Program {
	l := &Lowerer{rep: rep, optimize: optimize, counters: &counters{scopeID: top.ID() + 1}}
	l.scope = top
	l.emit(bytecode.PushVar, source.Span{}, top)
	l.lowerBlockBody(program.Statements, false)
	l.popScope()
	return l.instrs
}

func (l *Lowerer) emit(op bytecode.Op, span source.Span, operand any) {
	l.instrs = append(l.instrs, bytecode.Instr{Op: op, Span: span, Operand: operand})
}

// pushScope allocates a fresh child scope of the current one and emits its
// PushVar instruction; every block and function body gets its own scope.
func (l *Lowerer) pushScope() {
	id := l.counters.newScopeID()
	child := value.NewScope(id, l.scope)
	l.scope = child
	l.emit(bytecode.PushVar, source.Span{}, child)
	l.depth++
}

func (l *Lowerer) popScope() {
	l.emit(bytecode.PopVar, source.Span{}, nil)
	if l.scope != nil {
		l.scope = l.scope.Parent()
	}
	l.depth--
}
