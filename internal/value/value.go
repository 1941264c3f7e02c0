// Package value implements the tagged Value model the evaluator operates
// on: nine variants, arithmetic and comparison with int/float
// widening, Python-style indexing, a lexical Scope tree, user/native
// functions with optional bound receivers, and a mark-and-sweep collector
// for cyclic List/Object aggregates.
package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// stringCell is the interior-mutable backing store a String Value points
// to; mutating one alias (e.g. via indexed assignment) is visible through
// every other alias.
type stringCell struct {
	buf string
}

// listCell is a GC-managed, interior-mutable backing store for a List
// Value.
type listCell struct {
	cellHeader
	elems []Value
}

func newListCell(elems []Value) *listCell {
	c := &listCell{elems: elems}
	register(c, listCellSize)
	return c
}

func (c *listCell) header() *cellHeader { return &c.cellHeader }
func (c *listCell) mark()               { c.cellHeader.mark(c) }
func (c *listCell) markChildren() {
	for _, v := range c.elems {
		markValue(v)
	}
}
func (c *listCell) release() { c.elems = nil }

// objectCell is a GC-managed, interior-mutable backing store for an Object
// Value.
type objectCell struct {
	cellHeader
	fields map[string]Value
}

func newObjectCell(fields map[string]Value) *objectCell {
	c := &objectCell{fields: fields}
	register(c, objectCellSize)
	return c
}

func (c *objectCell) header() *cellHeader { return &c.cellHeader }
func (c *objectCell) mark()               { c.cellHeader.mark(c) }
func (c *objectCell) markChildren() {
	for _, v := range c.fields {
		markValue(v)
	}
}
func (c *objectCell) release() { c.fields = nil }

// Value is a single runtime value of any kind. Zero value is Null.
type Value struct {
	kind Kind

	i    int64
	f    float64
	b    bool
	rs   int64 // range start
	re   int64 // range end

	str  *stringCell
	list *listCell
	obj  *objectCell
	fn   *Function
}

func Null() Value                  { return Value{kind: KindNull} }
func Int(i int64) Value            { return Value{kind: KindInt, i: i} }
func Float(f float64) Value        { return Value{kind: KindFloat, f: f} }
func Bool(b bool) Value            { return Value{kind: KindBool, b: b} }
func Range(start, end int64) Value { return Value{kind: KindRange, rs: start, re: end} }

func Str(s string) Value {
	return Value{kind: KindString, str: &stringCell{buf: s}}
}

func List(elems []Value) Value {
	return Value{kind: KindList, list: newListCell(elems)}
}

func Object(fields map[string]Value) Value {
	return Value{kind: KindObject, obj: newObjectCell(fields)}
}

func FuncValue(fn *Function) Value { return Value{kind: KindFunction, fn: fn} }

func (v Value) Kind() Kind { return v.kind }

// AsInt, AsFloat, AsBool, AsString, AsList, AsObject, AsFunc, AsRange
// return garbage if v is not of the matching kind; callers must switch on
// Kind() first.
func (v Value) AsInt() int64      { return v.i }
func (v Value) AsFloat() float64  { return v.f }
func (v Value) AsBool() bool      { return v.b }
func (v Value) AsRange() (int64, int64) { return v.rs, v.re }
func (v Value) AsString() string  { return v.str.buf }
func (v Value) AsFunc() *Function { return v.fn }

// AsList returns the live backing slice; mutate through SetAt/indexing, not
// by appending directly, so list identity (and GC registration) is kept.
func (v Value) AsList() []Value { return v.list.elems }

func (v Value) AsObject() map[string]Value { return v.obj.fields }

// IsTruthy reports the truth value used by BinaryAnd/BinaryOr short
// circuiting, UnaryNot, and PopJumpIfTrue. Float truthiness uses an epsilon
// rather than comparing to zero directly, since IEEE-754 arithmetic rarely
// produces an exact zero for a value that is conceptually zero.
func (v Value) IsTruthy() bool {
	switch v.kind {
	case KindString:
		return len(v.str.buf) != 0
	case KindList:
		return len(v.list.elems) != 0
	case KindObject:
		return len(v.obj.fields) != 0
	case KindRange:
		return v.rs != v.re
	case KindInt:
		return v.i != 0
	case KindFloat:
		return math.Abs(v.f) > epsilon
	case KindBool:
		return v.b
	case KindFunction:
		return true
	case KindNull:
		return false
	default:
		return false
	}
}

// epsilon is the difference between 1.0 and the next representable float64.
const epsilon = 2.220446049250313e-16

func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str.buf
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindRange:
		return fmt.Sprintf("%d..%d", v.rs, v.re)
	case KindNull:
		return "null"
	case KindList:
		parts := make([]string, len(v.list.elems))
		for i, e := range v.list.elems {
			parts[i] = e.debugString()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindObject:
		var b strings.Builder
		b.WriteByte('{')
		first := true
		for k, val := range v.obj.fields {
			if !first {
				b.WriteString(", ")
			}
			first = false
			fmt.Fprintf(&b, "%s: %s", k, val.debugString())
		}
		b.WriteByte('}')
		return b.String()
	case KindFunction:
		return v.fn.String()
	default:
		return "<unknown>"
	}
}

// debugString quotes strings when nested inside a List/Object display, the
// way a REPL shows a list of strings with visible quotes.
func (v Value) debugString() string {
	if v.kind == KindString {
		return strconv.Quote(v.str.buf)
	}
	return v.String()
}

// cast widens v to target if possible (only Int <-> Float via the implicit
// cast table; matching kinds are a no-op), matching Type::cast_type.
func (v Value) cast(target Kind) (Value, bool) {
	if v.kind == target {
		return v, true
	}
	if v.kind == KindInt && target == KindFloat {
		return Float(float64(v.i)), true
	}
	if v.kind == KindFloat && target == KindInt {
		// Only used to find a common comparison type; the float side does
		// not actually need int-izing for arithmetic (left stays the wider
		// type), so this leg simply confirms the cast exists.
		return v, true
	}
	return Value{}, false
}
