package lower

import (
	"anilang/internal/ast"
	"anilang/internal/bytecode"
	"anilang/internal/diag"
	"anilang/internal/source"
	"anilang/internal/value"
)

// lowerBlockBody lowers a flat statement list the way a Block's contents are
// lowered: every non-tail statement is followed by Pop. When discardAll is
// true (a loop body, where every iteration's result is thrown away) the last
// statement is popped too and nothing is left on the stack; otherwise the
// last statement's value remains (or Null is pushed for an empty block).
func (l *Lowerer) lowerBlockBody(stmts []ast.Node, discardAll bool) {
	if len(stmts) == 0 {
		if !discardAll {
			l.emit(bytecode.Push, source.Span{}, value.Null())
		}
		return
	}
	for i, stmt := range stmts {
		isTail := i == len(stmts)-1 && !discardAll
		l.lowerStatement(stmt, !isTail)
	}
}

// lowerStatement lowers one statement. pop is true when the statement's
// value must be discarded (non-tail position); UnusedStatement fires when
// optimize is set and the statement is provably side-effect-free.
func (l *Lowerer) lowerStatement(stmt ast.Node, pop bool) {
	if pop && l.optimize && isPure(stmt) {
		l.rep.Warn(diag.UnusedStatement, stmt.Span(), "statement result is unused")
	}

	switch n := stmt.(type) {
	case *ast.Declaration:
		l.lowerExpr(n.Value)
		l.emit(bytecode.Store, n.Span(), bytecode.StoreOperand{Ident: n.Ident, Declaration: true})
	case *ast.Assignment:
		l.lowerAssignment(n)
	case *ast.If:
		l.lowerIf(n)
	case *ast.Loop:
		l.lowerLoop(n)
	case *ast.Break:
		l.lowerBreak(n)
	case *ast.Return:
		l.lowerReturn(n)
	case *ast.FnDeclaration:
		l.lowerFnDeclaration(n, true)
	case *ast.Interface:
		l.lowerInterface(n)
	case *ast.Block:
		l.pushScope()
		l.lowerBlockBody(n.Statements, false)
		l.popScope()
	default:
		l.lowerExpr(stmt)
	}

	if pop {
		switch stmt.(type) {
		case *ast.Break, *ast.Return:
			// control already transferred; nothing left to pop
		default:
			l.emit(bytecode.Pop, stmt.Span(), nil)
		}
	}
}

func (l *Lowerer) lowerAssignment(n *ast.Assignment) {
	if len(n.Indices) == 0 {
		l.lowerExpr(n.Value)
		l.emit(bytecode.Store, n.Span(), bytecode.StoreOperand{Ident: n.Ident, Declaration: false})
		return
	}

	l.lowerExpr(n.Value)
	for i := len(n.Indices) - 1; i >= 0; i-- {
		l.lowerExpr(n.Indices[i])
	}
	l.emit(bytecode.Load, n.Span(), n.Ident)

	for i := 0; i < len(n.Indices)-1; i++ {
		l.emit(bytecode.GetIndex, n.Span(), nil)
	}
	l.emit(bytecode.SetIndex, n.Span(), nil)
	if len(n.Indices) > 1 {
		// SetIndex left the innermost aggregate; a second load replaces it
		// with the root aggregate.
		l.emit(bytecode.Pop, n.Span(), nil)
		l.emit(bytecode.Load, n.Span(), n.Ident)
	}
}

func (l *Lowerer) lowerIf(n *ast.If) {
	if l.optimize {
		if b, ok := foldBool(n.Cond); ok {
			if b {
				l.pushScope()
				l.lowerBlockBody(n.Then.Statements, false)
				l.popScope()
			} else if n.Else != nil {
				l.pushScope()
				l.lowerBlockBody(n.Else.Statements, false)
				l.popScope()
			} else {
				l.emit(bytecode.Push, n.Span(), value.Null())
			}
			return
		}
	}

	thenLabel := l.counters.newLabel()
	endLabel := l.counters.newLabel()

	l.lowerExpr(n.Cond)
	l.emit(bytecode.PopJumpIfTrue, n.Cond.Span(), thenLabel)
	if n.Else != nil {
		l.pushScope()
		l.lowerBlockBody(n.Else.Statements, false)
		l.popScope()
	} else {
		l.emit(bytecode.Push, n.Span(), value.Null())
	}
	l.emit(bytecode.JumpTo, n.Span(), endLabel)
	l.emit(bytecode.Label, n.Span(), thenLabel)
	l.pushScope()
	l.lowerBlockBody(n.Then.Statements, false)
	l.popScope()
	l.emit(bytecode.Label, n.Span(), endLabel)
}

func (l *Lowerer) lowerLoop(n *ast.Loop) {
	startLabel := l.counters.newLabel()
	endLabel := l.counters.newLabel()

	prevLoop := l.loop
	l.pushScope()
	l.loop = &loopCtx{label: endLabel, depthAtEntry: l.depth}

	l.emit(bytecode.Label, n.Span(), startLabel)
	l.lowerBlockBody(n.Statements, true)
	l.emit(bytecode.JumpTo, n.Span(), startLabel)
	l.emit(bytecode.Label, n.Span(), endLabel)

	l.loop = prevLoop
	l.popScope()
	l.emit(bytecode.Push, n.Span(), value.Null())
}

func (l *Lowerer) lowerBreak(n *ast.Break) {
	if l.loop == nil {
		l.rep.Report(diag.BreakOutsideLoop, n.Span(), "break outside of a loop")
		return
	}
	unwind := l.depth - l.loop.depthAtEntry
	for i := 0; i < unwind; i++ {
		l.emit(bytecode.PopVar, n.Span(), nil)
	}
	l.emit(bytecode.JumpTo, n.Span(), l.loop.label)
}

func (l *Lowerer) lowerReturn(n *ast.Return) {
	if !l.inFunction {
		l.rep.Report(diag.ReturnOutsideFn, n.Span(), "return outside of a function")
		return
	}
	if n.Value != nil {
		l.lowerExpr(n.Value)
	} else {
		l.emit(bytecode.Push, n.Span(), value.Null())
	}
	// Unwind every scope down to and including the function's own; the
	// return label sits past the body's final PopVar.
	unwind := l.depth - l.funcDepth + 1
	for i := 0; i < unwind; i++ {
		l.emit(bytecode.PopVar, n.Span(), nil)
	}
	l.emit(bytecode.JumpTo, n.Span(), l.returnLabel)
}
