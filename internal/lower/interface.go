package lower

import (
	"anilang/internal/ast"
	"anilang/internal/bytecode"
	"anilang/internal/value"
)

// thisIdent is the synthetic local an interface's constructor binds the
// instance-under-construction to; methods close over the constructor's
// scope (like any nested function literal) and reach fields through it.
const thisIdent = "this"

// lowerInterface desugars `interface Name { ... }` into (1) a constructor
// function, reachable as `Name`, that builds the instance object and binds
// each method as a closure over the constructor's own scope (so the method
// reads `this` through the ordinary lexical scope chain, no dedicated
// receiver-binding opcode required), and (2) a `Name::member` static table
// of unbound method values.
func (l *Lowerer) lowerInterface(n *ast.Interface) {
	var ctor *ast.FnDeclaration
	var fields []ast.InterfaceMember
	var methods []ast.InterfaceMember

	for _, m := range n.Members {
		fn, isFn := m.Value.(*ast.FnDeclaration)
		switch {
		case m.Name == n.Name && isFn:
			ctor = fn
		case isFn:
			methods = append(methods, m)
		default:
			fields = append(fields, m)
		}
	}

	ctorBody := l.synthesizeConstructorBody(n, fields, methods, ctor)
	ctorFn := l.lowerFunctionValue(ctor.Params, ctorBody)

	statics := make(map[string]value.Value, len(methods))
	for _, m := range methods {
		fn := m.Value.(*ast.FnDeclaration)
		statics[m.Name] = value.FuncValue(l.lowerFunctionValue(fn.Params, fn.Body))
	}
	ctorFn = ctorFn.WithStatics(statics)

	l.emit(bytecode.Push, n.Span(), value.FuncValue(ctorFn))
	l.emit(bytecode.Store, n.Span(), bytecode.StoreOperand{Ident: n.Name, Declaration: true})
}

// synthesizeConstructorBody builds `let this = {}; this.field = ...;
// this.method = fn_literal; <user ctor statements>; return this` as a
// plain AST, reusing the ordinary statement/expression lowering for all of
// it rather than hand-emitting bytecode.
func (l *Lowerer) synthesizeConstructorBody(n *ast.Interface, fields, methods []ast.InterfaceMember, ctor *ast.FnDeclaration) *ast.Block {
	span := n.Span()
	var stmts []ast.Node

	stmts = append(stmts, ast.NewDeclaration(span, thisIdent, ast.NewObject(span, nil)))

	assignThisField := func(name string, val ast.Node) {
		key := ast.NewLiteral(span, value.Str(name))
		stmts = append(stmts, ast.NewAssignment(span, thisIdent, []ast.Node{key}, val))
	}
	for _, f := range fields {
		assignThisField(f.Name, f.Value)
	}
	for _, m := range methods {
		assignThisField(m.Name, m.Value)
	}

	stmts = append(stmts, ctor.Body.Statements...)
	stmts = append(stmts, ast.NewReturn(span, ast.NewVariable(span, thisIdent)))

	return ast.NewBlock(span, stmts)
}
