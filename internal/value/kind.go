package value

import (
	"fmt"
	"strings"
)

// Kind is the runtime type tag of a Value. It is a bit flag so a set of
// expected kinds can be reported in a single diagnostic (e.g. "expected int |
// float, got string").
type Kind uint16

const (
	KindInt Kind = 1 << iota
	KindFloat
	KindString
	KindList
	KindObject
	KindRange
	KindBool
	KindFunction
	KindNull
)

var kindNames = map[Kind]string{
	KindInt:      "int",
	KindFloat:    "float",
	KindString:   "string",
	KindList:     "list",
	KindObject:   "object",
	KindRange:    "range",
	KindBool:     "bool",
	KindFunction: "function",
	KindNull:     "null",
}

var singleKinds = []Kind{
	KindInt, KindFloat, KindString, KindList, KindObject, KindRange, KindBool, KindFunction, KindNull,
}

// Contains reports whether the single kind k is one of the bits set in the
// receiver, which is normally used as a set of expected kinds.
func (k Kind) Contains(single Kind) bool {
	return k&single != 0
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	var parts []string
	for _, s := range singleKinds {
		if k.Contains(s) {
			parts = append(parts, kindNames[s])
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("Kind(%d)", uint16(k))
	}
	return strings.Join(parts, " | ")
}

// castTo reports whether a value of kind k widens implicitly to target, and
// if so, the resulting kind (only Int -> Float is a widening cast; every
// other pair either matches already or requires no implicit cast at all).
func (k Kind) castTo(target Kind) (Kind, bool) {
	if k == target {
		return k, true
	}
	if k == KindInt && target == KindFloat {
		return KindFloat, true
	}
	if k == KindFloat && target == KindInt {
		return KindFloat, true
	}
	return 0, false
}
