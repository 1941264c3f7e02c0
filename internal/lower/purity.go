package lower

import "anilang/internal/ast"

// isPure reports whether n can have no observable effect beyond producing a
// value: no calls (natives may print, mutate, or block), no assignment, no
// declaration. Used to raise UnusedStatement on a non-tail statement that
// plainly does nothing.
func isPure(n ast.Node) bool {
	switch e := n.(type) {
	case *ast.Literal, *ast.Variable, *ast.Bad:
		return true
	case *ast.Binary:
		return isPure(e.Left) && isPure(e.Right)
	case *ast.Unary:
		return isPure(e.Child)
	case *ast.Index:
		return isPure(e.Child) && isPure(e.Index)
	case *ast.List:
		for _, el := range e.Elements {
			if !isPure(el) {
				return false
			}
		}
		return true
	case *ast.Object:
		for _, pair := range e.Pairs {
			if !isPure(pair.Value) {
				return false
			}
		}
		return true
	default:
		// FnCall, Assignment, Declaration, If, Loop, Break, Return,
		// FnDeclaration, Interface, Block: all treated conservatively as
		// effectful, either because they plainly are (calls, assignment) or
		// because nothing forces their contents to be inspected here.
		return false
	}
}
