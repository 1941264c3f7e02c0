package lower

import (
	"anilang/internal/ast"
	"anilang/internal/token"
	"anilang/internal/value"
)

// foldConst attempts to fully evaluate n at lowering time. It succeeds only
// for subtrees built entirely from literals, aggregates of literals, and
// pure operators — no Loads, calls, or stores anywhere in the tree. An
// operation that would itself fail at runtime (e.g. divide by
// zero) is left unfolded so the error still surfaces when the program runs.
func foldConst(n ast.Node) (value.Value, bool) {
	switch e := n.(type) {
	case *ast.Literal:
		return e.Value, true

	case *ast.Binary:
		left, ok := foldConst(e.Left)
		if !ok {
			return value.Value{}, false
		}
		if e.Op == token.OrOperator {
			if left.IsTruthy() {
				return left, true
			}
			right, ok := foldConst(e.Right)
			return right, ok
		}
		if e.Op == token.AndOperator {
			if !left.IsTruthy() {
				return left, true
			}
			right, ok := foldConst(e.Right)
			return right, ok
		}
		right, ok := foldConst(e.Right)
		if !ok {
			return value.Value{}, false
		}
		return applyBinary(e.Op, left, right)

	case *ast.Unary:
		child, ok := foldConst(e.Child)
		if !ok {
			return value.Value{}, false
		}
		return applyUnary(e.Op, child)

	case *ast.Index:
		child, ok := foldConst(e.Child)
		if !ok {
			return value.Value{}, false
		}
		index, ok := foldConst(e.Index)
		if !ok {
			return value.Value{}, false
		}
		v, err := child.GetAt(index)
		return v, err == nil

	case *ast.List:
		elems := make([]value.Value, len(e.Elements))
		for i, el := range e.Elements {
			v, ok := foldConst(el)
			if !ok {
				return value.Value{}, false
			}
			elems[i] = v
		}
		return value.List(elems), true

	case *ast.Object:
		fields := make(map[string]value.Value, len(e.Pairs))
		for _, pair := range e.Pairs {
			k, ok := foldConst(pair.Key)
			if !ok || k.Kind() != value.KindString {
				return value.Value{}, false
			}
			v, ok := foldConst(pair.Value)
			if !ok {
				return value.Value{}, false
			}
			fields[k.AsString()] = v
		}
		return value.Object(fields), true

	default:
		return value.Value{}, false
	}
}

// foldBool folds n and, if it succeeds, reports its truthiness — used to
// eliminate a dead `if` branch outright.
func foldBool(n ast.Node) (bool, bool) {
	v, ok := foldConst(n)
	if !ok {
		return false, false
	}
	return v.IsTruthy(), true
}

func applyBinary(op token.Kind, l, r value.Value) (value.Value, bool) {
	var v value.Value
	var err *value.OpError
	switch op {
	case token.PlusOperator:
		v, err = l.Add(r)
	case token.MinusOperator:
		v, err = l.Sub(r)
	case token.StarOperator:
		v, err = l.Mul(r)
	case token.SlashOperator:
		v, err = l.Div(r)
	case token.ModOperator:
		v, err = l.Mod(r)
	case token.CaretOperator:
		v, err = l.Pow(r)
	case token.RangeOperator:
		v, err = l.RangeTo(r)
	case token.LTOperator:
		v, err = l.Lt(r)
	case token.LEOperator:
		v, err = l.Le(r)
	case token.GTOperator:
		v, err = l.Gt(r)
	case token.GEOperator:
		v, err = l.Ge(r)
	case token.EqOperator:
		eq, cmpErr := l.Equals(r)
		v, err = value.Bool(eq), cmpErr
	case token.NEOperator:
		eq, cmpErr := l.Equals(r)
		v, err = value.Bool(!eq), cmpErr
	default:
		return value.Value{}, false
	}
	return v, err == nil
}

func applyUnary(op token.Kind, v value.Value) (value.Value, bool) {
	switch op {
	case token.PlusOperator:
		r, err := v.Plus()
		return r, err == nil
	case token.MinusOperator:
		r, err := v.Neg()
		return r, err == nil
	case token.NotOperator:
		return v.Not(), true
	default:
		return value.Value{}, false
	}
}
