package value

import (
	"unicode/utf8"

	"anilang/internal/diag"
)

// normaliseIndex converts a possibly-negative i64 index into a 0-based
// position within [0, length), Python-style: -length <= index < length.
func normaliseIndex(index, length int64) (int64, *OpError) {
	if index < 0 {
		if length < -index {
			return 0, errIndexOutOfRange(index, length)
		}
		return length + index, nil
	}
	if length <= index {
		return 0, errIndexOutOfRange(index, length)
	}
	return index, nil
}

// normaliseIndexLen is normaliseIndex but additionally allows index ==
// length, for a range's exclusive end bound.
func normaliseIndexLen(index, length int64) (int64, *OpError) {
	if index < 0 {
		if length+1 < -index {
			return 0, errIndexOutOfRange(index, length)
		}
		return length + index, nil
	}
	if length < index {
		return 0, errIndexOutOfRange(index, length)
	}
	return index, nil
}

// Indexable reports whether v can be indexed by a value of kind index.
func (v Value) Indexable(index Kind) bool {
	switch v.kind {
	case KindString, KindList:
		return index&(KindInt|KindRange|KindString) != 0
	case KindFunction, KindRange, KindObject:
		return index == KindString
	default:
		return false
	}
}

// GetAt implements GetIndex: `indexed[index]`. A String index is always
// property access; everything else indexes by position or range.
func (v Value) GetAt(index Value) (Value, *OpError) {
	if !v.Indexable(index.kind) {
		return Value{}, errUnindexable(v.kind, index.kind)
	}
	if index.kind == KindString {
		return v.getProperty(index.str.buf)
	}

	switch v.kind {
	case KindString:
		runes := []rune(v.str.buf)
		length := int64(len(runes))
		switch index.kind {
		case KindInt:
			i, err := normaliseIndex(index.i, length)
			if err != nil {
				return Value{}, err
			}
			return Str(string(runes[i])), nil
		case KindRange:
			s, err := normaliseIndex(index.rs, length)
			if err != nil {
				return Value{}, err
			}
			e, err := normaliseIndexLen(index.re, length)
			if err != nil {
				return Value{}, err
			}
			if e < s {
				e = s
			}
			return Str(string(runes[s:e])), nil
		}

	case KindList:
		elems := v.list.elems
		length := int64(len(elems))
		switch index.kind {
		case KindInt:
			i, err := normaliseIndex(index.i, length)
			if err != nil {
				return Value{}, err
			}
			return elems[i], nil
		case KindRange:
			s, err := normaliseIndex(index.rs, length)
			if err != nil {
				return Value{}, err
			}
			e, err := normaliseIndexLen(index.re, length)
			if err != nil {
				return Value{}, err
			}
			if e < s {
				e = s
			}
			sliced := make([]Value, e-s)
			copy(sliced, elems[s:e])
			return List(sliced), nil
		}
	}
	panic("value: Indexable check passed but GetAt found no matching case")
}

// SetAt implements SetIndex: `indexed[index] = val`, returning the
// (possibly widened, for a range replace on a List) indexed value itself,
// so the lowerer's "second load leaves the root aggregate on the stack"
// contract holds.
func (v Value) SetAt(index, val Value) (Value, *OpError) {
	if !v.Indexable(index.kind) {
		return Value{}, errUnindexable(v.kind, index.kind)
	}
	if index.kind == KindString {
		return v.setProperty(index.str.buf, val)
	}

	switch v.kind {
	case KindString:
		runes := []rune(v.str.buf)
		length := int64(len(runes))
		replacement, ok := val.cast(KindString)
		if !ok {
			return Value{}, errIncorrectType(val.kind, KindString)
		}
		switch index.kind {
		case KindInt:
			i, err := normaliseIndex(index.i, length)
			if err != nil {
				return Value{}, err
			}
			next := append(append([]rune{}, runes[:i]...), []rune(replacement.str.buf)...)
			next = append(next, runes[i+1:]...)
			v.str.buf = string(next)
			return v, nil
		case KindRange:
			s, err := normaliseIndex(index.rs, length)
			if err != nil {
				return Value{}, err
			}
			e, err := normaliseIndexLen(index.re, length)
			if err != nil {
				return Value{}, err
			}
			if e < s {
				e = s
			}
			next := append(append([]rune{}, runes[:s]...), []rune(replacement.str.buf)...)
			next = append(next, runes[e:]...)
			v.str.buf = string(next)
			return v, nil
		}

	case KindList:
		elems := v.list.elems
		length := int64(len(elems))
		switch index.kind {
		case KindInt:
			i, err := normaliseIndex(index.i, length)
			if err != nil {
				return Value{}, err
			}
			elems[i] = val
			return v, nil
		case KindRange:
			replacement, ok := val.cast(KindList)
			if !ok {
				return Value{}, errIncorrectType(val.kind, KindList)
			}
			s, err := normaliseIndex(index.rs, length)
			if err != nil {
				return Value{}, err
			}
			e, err := normaliseIndexLen(index.re, length)
			if err != nil {
				return Value{}, err
			}
			if e < s {
				e = s
			}
			next := make([]Value, 0, length-(e-s)+int64(len(replacement.list.elems)))
			next = append(next, elems[:s]...)
			next = append(next, replacement.list.elems...)
			next = append(next, elems[e:]...)
			v.list.elems = next
			return v, nil
		}
	}
	panic("value: Indexable check passed but SetAt found no matching case")
}

// getProperty / setProperty back both `.prop` sugar and direct
// `v["prop"]` indexing; the built-in members each kind exposes are grounded
// directly on the reference implementation's property table.
func (v Value) getProperty(prop string) (Value, *OpError) {
	invalid := func() (Value, *OpError) {
		return Value{}, errf(diag.InvalidProperty, "value of type %s has no property %q", v.kind, prop)
	}
	switch v.kind {
	case KindString:
		if prop == "len" {
			return Int(int64(utf8.RuneCountInString(v.str.buf))), nil
		}
		return invalid()
	case KindList:
		switch prop {
		case "len":
			return Int(int64(len(v.list.elems))), nil
		case "push":
			return FuncValue(NewNativeFunction(nativePush).WithThis(v)), nil
		case "pop":
			return FuncValue(NewNativeFunction(nativePop).WithThis(v)), nil
		}
		return invalid()
	case KindObject:
		if val, ok := v.obj.fields[prop]; ok {
			return val, nil
		}
		return invalid()
	case KindRange:
		switch prop {
		case "start":
			return Int(v.rs), nil
		case "end":
			return Int(v.re), nil
		}
		return invalid()
	case KindFunction:
		if prop == "call" {
			return v, nil
		}
		if static, ok := v.fn.Static(prop); ok {
			return static, nil
		}
		return invalid()
	default:
		return invalid()
	}
}

func (v Value) setProperty(prop string, val Value) (Value, *OpError) {
	readonly := func() (Value, *OpError) {
		return Value{}, errf(diag.ReadonlyProperty, "property %q of %s is read-only", prop, v.kind)
	}
	invalid := func() (Value, *OpError) {
		return Value{}, errf(diag.InvalidProperty, "value of type %s has no property %q", v.kind, prop)
	}
	switch v.kind {
	case KindString:
		if prop == "len" {
			return readonly()
		}
		return invalid()
	case KindList:
		switch prop {
		case "len", "push", "pop":
			return readonly()
		}
		return invalid()
	case KindObject:
		v.obj.fields[prop] = val
		return v, nil
	case KindRange:
		switch prop {
		case "start", "end":
			return readonly()
		}
		return invalid()
	case KindFunction:
		if prop == "call" {
			return readonly()
		}
		return invalid()
	default:
		return invalid()
	}
}

func nativePush(args []Value) (Value, *OpError) {
	if len(args) != 2 {
		return Value{}, errf(diag.IncorrectArgCount, "push expects 2 arguments (receiver, value), got %d", len(args))
	}
	this := args[0]
	this.list.elems = append(this.list.elems, args[1])
	return this, nil
}

func nativePop(args []Value) (Value, *OpError) {
	if len(args) != 1 {
		return Value{}, errf(diag.IncorrectArgCount, "pop expects 1 argument (receiver), got %d", len(args))
	}
	this := args[0]
	elems := this.list.elems
	if len(elems) == 0 {
		return Null(), nil
	}
	last := elems[len(elems)-1]
	this.list.elems = elems[:len(elems)-1]
	return last, nil
}
