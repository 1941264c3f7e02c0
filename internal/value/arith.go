package value

import (
	"math"

	"anilang/internal/diag"
)

// widen finds a common numeric kind for a binary operation by first trying
// to cast right to left's kind, then left to (possibly unchanged) right's
// kind, exactly mirroring the two-step try_cast dance the arithmetic
// operators are grounded on: it lets `Int op Float` and `Float op Int` both
// settle on Float while leaving matching kinds untouched.
func widen(left, right Value) (Value, Value, *OpError) {
	castRight, ok := right.cast(left.kind)
	if !ok {
		return Value{}, Value{}, errIncorrectRightType(right.kind, left.kind)
	}
	castLeft, ok := left.cast(castRight.kind)
	if !ok {
		return Value{}, Value{}, errIncorrectLeftType(left.kind, castRight.kind)
	}
	return castLeft, castRight, nil
}

// Plus is unary `+v`.
func (v Value) Plus() (Value, *OpError) {
	switch v.kind {
	case KindInt, KindFloat:
		return v, nil
	default:
		return Value{}, errIncorrectType(v.kind, KindInt|KindFloat)
	}
}

// Neg is unary `-v`.
func (v Value) Neg() (Value, *OpError) {
	switch v.kind {
	case KindInt:
		return Int(-v.i), nil
	case KindFloat:
		return Float(-v.f), nil
	default:
		return Value{}, errIncorrectType(v.kind, KindInt|KindFloat)
	}
}

// Not is unary `!v`; truthiness-based, never fails.
func (v Value) Not() Value {
	return Bool(!v.IsTruthy())
}

// Add implements `+`: arithmetic on numbers, concatenation on strings and
// lists.
func (v Value) Add(right Value) (Value, *OpError) {
	l, r, err := widen(v, right)
	if err != nil {
		return Value{}, err
	}
	switch l.kind {
	case KindInt:
		return Int(l.i + r.i), nil
	case KindFloat:
		return Float(l.f + r.f), nil
	case KindString:
		return Str(l.str.buf + r.str.buf), nil
	case KindList:
		combined := make([]Value, 0, len(l.list.elems)+len(r.list.elems))
		combined = append(combined, l.list.elems...)
		combined = append(combined, r.list.elems...)
		return List(combined), nil
	default:
		return Value{}, errIncorrectLeftType(v.kind, KindInt|KindFloat|KindString|KindList)
	}
}

// Sub implements `-`.
func (v Value) Sub(right Value) (Value, *OpError) {
	l, r, err := widen(v, right)
	if err != nil {
		return Value{}, err
	}
	switch l.kind {
	case KindInt:
		return Int(l.i - r.i), nil
	case KindFloat:
		return Float(l.f - r.f), nil
	default:
		return Value{}, errIncorrectLeftType(v.kind, KindInt|KindFloat)
	}
}

// Mul implements `*`.
func (v Value) Mul(right Value) (Value, *OpError) {
	l, r, err := widen(v, right)
	if err != nil {
		return Value{}, err
	}
	switch l.kind {
	case KindInt:
		return Int(l.i * r.i), nil
	case KindFloat:
		return Float(l.f * r.f), nil
	default:
		return Value{}, errIncorrectLeftType(v.kind, KindInt|KindFloat)
	}
}

// Div implements `/`.
func (v Value) Div(right Value) (Value, *OpError) {
	l, r, err := widen(v, right)
	if err != nil {
		return Value{}, err
	}
	switch l.kind {
	case KindInt:
		if r.i == 0 {
			return Value{}, errDivideByZero()
		}
		return Int(l.i / r.i), nil
	case KindFloat:
		if r.f == 0 {
			return Value{}, errDivideByZero()
		}
		return Float(l.f / r.f), nil
	default:
		return Value{}, errIncorrectLeftType(v.kind, KindInt|KindFloat)
	}
}

// Mod implements `%`.
func (v Value) Mod(right Value) (Value, *OpError) {
	l, r, err := widen(v, right)
	if err != nil {
		return Value{}, err
	}
	switch l.kind {
	case KindInt:
		if r.i == 0 {
			return Value{}, errDivideByZero()
		}
		return Int(l.i % r.i), nil
	case KindFloat:
		if r.f == 0 {
			return Value{}, errDivideByZero()
		}
		return Float(math.Mod(l.f, r.f)), nil
	default:
		return Value{}, errIncorrectLeftType(v.kind, KindInt|KindFloat)
	}
}

// Pow implements `^`.
func (v Value) Pow(right Value) (Value, *OpError) {
	l, r, err := widen(v, right)
	if err != nil {
		return Value{}, err
	}
	switch l.kind {
	case KindInt:
		if r.i < 0 || r.i > math.MaxUint32 {
			return Value{}, errf(diag.OutOfBounds, "exponent %d out of range [0, %d]", r.i, uint32(math.MaxUint32))
		}
		result := int64(1)
		for i := int64(0); i < r.i; i++ {
			result *= l.i
		}
		return Int(result), nil
	case KindFloat:
		return Float(math.Pow(l.f, r.f)), nil
	default:
		return Value{}, errIncorrectLeftType(v.kind, KindInt|KindFloat)
	}
}

// RangeTo implements `..`. Only int-to-int ranges are supported.
func (v Value) RangeTo(right Value) (Value, *OpError) {
	l, r, err := widen(v, right)
	if err != nil {
		return Value{}, err
	}
	if l.kind != KindInt {
		return Value{}, errIncorrectType(v.kind, KindInt)
	}
	return Range(l.i, r.i), nil
}
