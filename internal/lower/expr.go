package lower

import (
	"anilang/internal/ast"
	"anilang/internal/bytecode"
	"anilang/internal/token"
	"anilang/internal/value"
)

var binaryOps = map[token.Kind]bytecode.Op{
	token.PlusOperator:  bytecode.BinaryAdd,
	token.MinusOperator: bytecode.BinarySubtract,
	token.StarOperator:  bytecode.BinaryMultiply,
	token.SlashOperator: bytecode.BinaryDivide,
	token.ModOperator:   bytecode.BinaryMod,
	token.CaretOperator: bytecode.BinaryPower,
	token.OrOperator:    bytecode.BinaryOr,
	token.AndOperator:   bytecode.BinaryAnd,
	token.LTOperator:    bytecode.CompareLT,
	token.LEOperator:    bytecode.CompareLE,
	token.GTOperator:    bytecode.CompareGT,
	token.GEOperator:    bytecode.CompareGE,
	token.EqOperator:    bytecode.CompareEQ,
	token.NEOperator:    bytecode.CompareNE,
}

var unaryOps = map[token.Kind]bytecode.Op{
	token.PlusOperator:  bytecode.UnaryPositive,
	token.MinusOperator: bytecode.UnaryNegative,
	token.NotOperator:   bytecode.UnaryNot,
}

// lowerExpr lowers n as a value-producing expression, leaving exactly one
// Value on the stack. Constant folding (when optimize is set) may replace an
// entire subtree with a single Push before any of this runs.
func (l *Lowerer) lowerExpr(n ast.Node) {
	if l.optimize {
		if v, ok := foldConst(n); ok {
			// The folded value lives only inside this Push operand, which
			// the collector's stack/scope root scan cannot see; pinning
			// keeps a folded aggregate alive across sweeps.
			v.Pin()
			l.emit(bytecode.Push, n.Span(), v)
			return
		}
	}

	switch e := n.(type) {
	case *ast.Literal:
		l.emit(bytecode.Push, e.Span(), e.Value)
	case *ast.Variable:
		l.emit(bytecode.Load, e.Span(), e.Ident)
	case *ast.Binary:
		l.lowerBinary(e)
	case *ast.Unary:
		l.lowerExpr(e.Child)
		l.emit(unaryOps[e.Op], e.Span(), nil)
	case *ast.Index:
		// Index mirrors binary evaluation order: right (index) then left
		// (child), so the GetIndex operand order matches the opcode table.
		l.lowerExpr(e.Index)
		l.lowerExpr(e.Child)
		l.emit(bytecode.GetIndex, e.Span(), nil)
	case *ast.List:
		for i := len(e.Elements) - 1; i >= 0; i-- {
			l.lowerExpr(e.Elements[i])
		}
		l.emit(bytecode.MakeList, e.Span(), len(e.Elements))
	case *ast.Object:
		for i := len(e.Pairs) - 1; i >= 0; i-- {
			l.lowerExpr(e.Pairs[i].Value)
			l.lowerExpr(e.Pairs[i].Key)
		}
		l.emit(bytecode.MakeObject, e.Span(), len(e.Pairs))
	case *ast.FnCall:
		l.lowerFnCall(e)
	case *ast.FnDeclaration:
		l.lowerFnDeclaration(e, false)
	case *ast.If:
		l.lowerIf(e)
	case *ast.Loop:
		l.lowerLoop(e)
	case *ast.Bad:
		l.emit(bytecode.Push, e.Span(), value.Null())
	default:
		l.emit(bytecode.Push, n.Span(), value.Null())
	}
}

// lowerBinary handles `..` (MakeRange) alongside the arithmetic/compare
// table; every binary op evaluates right, then left, so the left operand
// ends up topmost.
func (l *Lowerer) lowerBinary(e *ast.Binary) {
	l.lowerExpr(e.Right)
	l.lowerExpr(e.Left)
	if e.Op == token.RangeOperator {
		l.emit(bytecode.MakeRange, e.Span(), nil)
		return
	}
	l.emit(binaryOps[e.Op], e.Span(), nil)
}

// lowerFnCall evaluates arguments right-to-left then the callee, so the
// callee sits on top of the stack with the first argument directly below it.
func (l *Lowerer) lowerFnCall(e *ast.FnCall) {
	for i := len(e.Args) - 1; i >= 0; i-- {
		l.lowerExpr(e.Args[i])
	}
	l.lowerExpr(e.Callee)
	l.emit(bytecode.CallFunction, e.Span(), len(e.Args))
}

// lowerFnDeclaration lowers a function's body into its own bytecode vector,
// wraps it in a Function value, and either declares it (named, statement
// position) or leaves it on the stack (anonymous, expression position).
func (l *Lowerer) lowerFnDeclaration(n *ast.FnDeclaration, declare bool) {
	fn := l.lowerFunctionValue(n.Params, n.Body)
	l.emit(bytecode.Push, n.Span(), value.FuncValue(fn))
	if declare && n.Ident != "" {
		l.emit(bytecode.Store, n.Span(), bytecode.StoreOperand{Ident: n.Ident, Declaration: true})
	}
}

// lowerFunctionValue lowers params+body into a standalone bytecode vector
// with a fresh break/return context (breaks never escape into an enclosing
// loop), parented to the lexical scope active right now so the function
// closes over it.
func (l *Lowerer) lowerFunctionValue(params []string, body *ast.Block) *value.Function {
	child := &Lowerer{rep: l.rep, optimize: l.optimize, counters: l.counters, scope: l.scope}
	child.pushScope()
	child.inFunction = true
	child.funcDepth = child.depth
	child.returnLabel = child.counters.newLabel()

	// Parameters are declared into this scope directly by CallFunction's
	// evaluator-side handling; the body itself starts clean.
	// The sentinel return label sits past the final PopVar, so a return has
	// already unwound every scope (its own included) by the time it lands.
	child.lowerBlockBody(body.Statements, false)
	child.popScope()
	child.emit(bytecode.Label, body.Span(), child.returnLabel)

	return value.NewUserFunction(params, child.instrs)
}
