package value

import "testing"

func TestArithmeticWidening(t *testing.T) {
	tests := []struct {
		name    string
		op      func(a, b Value) (Value, *OpError)
		a, b    Value
		want    Value
		wantErr bool
	}{
		{"int+int", Value.Add, Int(1), Int(2), Int(3), false},
		{"int+float widens", Value.Add, Int(1), Float(2.5), Float(3.5), false},
		{"float+int widens", Value.Add, Float(2.5), Int(1), Float(3.5), false},
		{"string+string concat", Value.Add, Str("a"), Str("b"), Str("ab"), false},
		{"int+string errors", Value.Add, Int(1), Str("b"), Value{}, true},
		{"div by zero", Value.Div, Int(1), Int(0), Value{}, true},
		{"mod by zero float", Value.Mod, Float(1), Float(0), Value{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.op(tt.a, tt.b)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			eq, cmpErr := got.Equals(tt.want)
			if cmpErr != nil || !eq {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestListConcatenation(t *testing.T) {
	a := List([]Value{Int(1), Int(2)})
	b := List([]Value{Int(3)})
	got, err := a.Add(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.AsList()) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(got.AsList()))
	}
}

func TestTruthiness(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want bool
	}{
		{"zero int", Int(0), false},
		{"nonzero int", Int(1), true},
		{"empty string", Str(""), false},
		{"nonempty string", Str("x"), true},
		{"empty list", List(nil), false},
		{"nonempty list", List([]Value{Int(1)}), true},
		{"null", Null(), false},
		{"tiny float above epsilon", Float(1e-10), true},
		{"float exactly zero", Float(0), false},
		{"empty range", Range(2, 2), false},
		{"nonempty range", Range(0, 2), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.IsTruthy(); got != tt.want {
				t.Fatalf("IsTruthy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNegativeIndexing(t *testing.T) {
	l := List([]Value{Int(10), Int(20), Int(30)})

	got, err := l.GetAt(Int(-1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AsInt() != 30 {
		t.Fatalf("l[-1] = %d, want 30", got.AsInt())
	}

	if _, err := l.GetAt(Int(-4)); err == nil {
		t.Fatalf("expected out-of-range error for index -4")
	}
}

func TestRangeSlicing(t *testing.T) {
	l := List([]Value{Int(0), Int(1), Int(2), Int(3), Int(4)})

	got, err := l.GetAt(Range(1, 3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sliced := got.AsList()
	if len(sliced) != 2 || sliced[0].AsInt() != 1 || sliced[1].AsInt() != 2 {
		t.Fatalf("l[1..3] = %v, want [1, 2]", sliced)
	}
}

func TestRangeAssignResizesList(t *testing.T) {
	l := List([]Value{Int(0), Int(1), Int(2), Int(3)})

	// Replace a 2-element window with a 4-element one: list should grow.
	_, err := l.SetAt(Range(1, 3), List([]Value{Int(9), Int(9), Int(9), Int(9)}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	elems := l.AsList()
	want := []int64{0, 9, 9, 9, 9, 3}
	if len(elems) != len(want) {
		t.Fatalf("got %d elements, want %d", len(elems), len(want))
	}
	for i, w := range want {
		if elems[i].AsInt() != w {
			t.Fatalf("elems[%d] = %d, want %d", i, elems[i].AsInt(), w)
		}
	}
}

func TestListPropertyMethods(t *testing.T) {
	l := List([]Value{Int(1)})

	pushFn, err := l.getProperty("push")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := pushFn.AsFunc().Native()([]Value{l, Int(2)}); err != nil {
		t.Fatalf("push failed: %v", err)
	}
	if len(l.AsList()) != 2 {
		t.Fatalf("expected push to grow the list, got %d elements", len(l.AsList()))
	}

	popFn, _ := l.getProperty("pop")
	popped, err := popFn.AsFunc().Native()([]Value{l})
	if err != nil {
		t.Fatalf("pop failed: %v", err)
	}
	if popped.AsInt() != 2 {
		t.Fatalf("pop() = %d, want 2", popped.AsInt())
	}
}

func TestCannotCompareIncompatibleKinds(t *testing.T) {
	_, err := Str("a").Lt(Int(1))
	if err == nil {
		t.Fatalf("expected CannotCompare error")
	}
}

// resetGC reinitializes the collector's registry so a test observes only the
// cells it allocates itself, not leftovers from every other test in the
// package that happened to build a List or Object.
func resetGC() {
	gcState.mu.Lock()
	defer gcState.mu.Unlock()
	gcState.root = nil
	gcState.bytesAllocated = 0
	gcState.maxBytes = 256
	gcState.sweeping = false
}

func liveCellCount() int {
	n := 0
	for c := gcState.root; c != nil; c = c.header().next {
		n++
	}
	return n
}

func TestGCCollectBreaksCycle(t *testing.T) {
	resetGC()
	a := List([]Value{Null()})
	b := List([]Value{a})
	a.list.elems[0] = b // a -> b -> a cycle

	Collect(nil) // no external roots: the cycle should be fully unreachable

	if gcState.root != nil {
		t.Fatalf("expected the a<->b cycle to be collected")
	}
}

func TestPinnedCellSurvivesCollection(t *testing.T) {
	resetGC()
	constant := List([]Value{Int(7), Int(8), Int(9)})
	constant.Pin()
	List([]Value{Int(1)}) // unpinned churn, reclaimable

	Collect(nil)

	if n := liveCellCount(); n != 1 {
		t.Fatalf("expected only the pinned cell to survive, got %d", n)
	}
	elems := constant.AsList()
	if len(elems) != 3 || elems[1].AsInt() != 8 {
		t.Fatalf("pinned list was swept: %v", constant)
	}

	// Pinning is permanent: a second sweep must not touch it either.
	Collect(nil)
	if len(constant.AsList()) != 3 {
		t.Fatalf("pinned list lost its elements on the second sweep")
	}
}
