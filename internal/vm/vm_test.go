package vm

import (
	"testing"

	"anilang/internal/diag"
	"anilang/internal/lexer"
	"anilang/internal/lower"
	"anilang/internal/parser"
	"anilang/internal/source"
	"anilang/internal/stdlib"
	"anilang/internal/value"
)

func eval(t *testing.T, src string) (value.Value, *diag.Reporter) {
	t.Helper()
	text := source.New(src)
	rep := diag.NewSilentReporter(text)
	toks := lexer.Lex(text, rep)
	block := parser.Parse(toks, text, rep)
	prog := lower.Lower(block, true, rep)
	if len(prog) > 0 {
		if sc, ok := prog[0].Operand.(*value.Scope); ok {
			stdlib.Install(sc)
		}
	}
	return New(rep).Run(prog), rep
}

func TestArithmeticPrecedence(t *testing.T) {
	got, rep := eval(t, "1 + 2 * 3")
	if rep.Any() {
		t.Fatalf("unexpected diagnostics")
	}
	if got.Kind() != value.KindInt || got.AsInt() != 7 {
		t.Fatalf("got %v", got)
	}
}

func TestCompoundAssignment(t *testing.T) {
	got, rep := eval(t, "let a = 2; a *= 3; a + 1")
	if rep.Any() {
		t.Fatalf("unexpected diagnostics")
	}
	if got.AsInt() != 7 {
		t.Fatalf("got %v", got)
	}
}

func TestListIndexing(t *testing.T) {
	got, rep := eval(t, "let xs = [10, 20, 30]; xs[1]")
	if rep.Any() {
		t.Fatalf("unexpected diagnostics")
	}
	if got.AsInt() != 20 {
		t.Fatalf("got %v", got)
	}
}

func TestListIndexedAssignment(t *testing.T) {
	got, rep := eval(t, "let xs = [1, 2, 3]; xs[0] = 9; xs[0] + xs[2]")
	if rep.Any() {
		t.Fatalf("unexpected diagnostics")
	}
	if got.AsInt() != 12 {
		t.Fatalf("got %v", got)
	}
}

func TestStringIndexedAssignmentGrowsBuffer(t *testing.T) {
	got, rep := eval(t, `let s = "abc"; s[1] = "ZZ"; s`)
	if rep.Any() {
		t.Fatalf("unexpected diagnostics")
	}
	if got.Kind() != value.KindString || got.AsString() != "aZZc" {
		t.Fatalf("got %v", got)
	}
}

func TestStringIndexOutOfRangeDiagnoses(t *testing.T) {
	got, rep := eval(t, `let s = "ab"; s[5] = "z"; s`)
	if !rep.Any() {
		t.Fatalf("expected IndexOutOfRange diagnostic")
	}
	if got.Kind() != value.KindNull {
		t.Fatalf("got %v", got)
	}
}

func TestRecursiveFibonacci(t *testing.T) {
	src := `
let fib = fn(n) {
	if n < 2 {
		return n;
	}
	return fib(n - 1) + fib(n - 2);
};
fib(10)
`
	got, rep := eval(t, src)
	if rep.Any() {
		t.Fatalf("unexpected diagnostics")
	}
	if got.AsInt() != 55 {
		t.Fatalf("got %v", got)
	}
}

func TestObjectPropertyReadWrite(t *testing.T) {
	got, rep := eval(t, `let o = { x: 1 }; o.x = o.x + 41; o.x`)
	if rep.Any() {
		t.Fatalf("unexpected diagnostics")
	}
	if got.AsInt() != 42 {
		t.Fatalf("got %v", got)
	}
}

func TestWhileLoopAccumulates(t *testing.T) {
	got, rep := eval(t, `
let i = 0;
let total = 0;
while i < 5 {
	total = total + i;
	i = i + 1;
}
total
`)
	if rep.Any() {
		t.Fatalf("unexpected diagnostics")
	}
	if got.AsInt() != 10 {
		t.Fatalf("got %v", got)
	}
}

func TestDivideByZeroHaltsWithNull(t *testing.T) {
	got, rep := eval(t, "0 / 0")
	if !rep.Any() {
		t.Fatalf("expected a diagnostic")
	}
	if got.Kind() != value.KindNull {
		t.Fatalf("got %v", got)
	}
}

func TestRecursionDoesNotShareLocals(t *testing.T) {
	src := `
let counter = fn(n) {
	let acc = 0;
	let step = fn(i) {
		if i > n {
			return acc;
		}
		acc = acc + i;
		return step(i + 1);
	};
	return step(1);
};
counter(4) + counter(2)
`
	got, rep := eval(t, src)
	if rep.Any() {
		t.Fatalf("unexpected diagnostics")
	}
	if got.AsInt() != 13 {
		t.Fatalf("got %v", got)
	}
}

// TestFoldedConstantSurvivesCollection: a constant-folded aggregate lives
// only inside a bytecode Push operand, which the collector's stack/scope
// root scan never sees. It must survive both a sweep that runs before the
// constant is ever pushed and the threshold-triggered sweeps caused by
// runtime allocation churn (the forced sweep below sets the threshold to the
// next power of two above the live bytes and list cells count 64 bytes, so
// the alloc calls below cross it mid-run).
func TestFoldedConstantSurvivesCollection(t *testing.T) {
	const src = `
let alloc = fn(n) { return [n]; };
let get = fn() { return [7, 8, 9]; };
alloc(1); alloc(2); alloc(3); alloc(4); alloc(5);
get()[1]
`
	text := source.New(src)
	rep := diag.NewSilentReporter(text)
	toks := lexer.Lex(text, rep)
	block := parser.Parse(toks, text, rep)
	prog := lower.Lower(block, true, rep)
	if rep.Any() {
		t.Fatalf("unexpected diagnostics lowering")
	}

	// Force a rootless sweep while the folded [7, 8, 9] exists only inside
	// get's body; only its pin can keep it alive here.
	value.Collect(nil)

	if len(prog) > 0 {
		if sc, ok := prog[0].Operand.(*value.Scope); ok {
			stdlib.Install(sc)
		}
	}
	got := New(rep).Run(prog)
	if rep.Any() {
		t.Fatalf("unexpected diagnostics")
	}
	if got.AsInt() != 8 {
		t.Fatalf("got %v, want 8", got)
	}
}

func TestInterfaceConstructorAndMethodCall(t *testing.T) {
	src := `
interface Point {
	Point(x, y) {
		this.x = x;
		this.y = y;
	}
	sum() {
		return this.x + this.y;
	}
}
let p = Point(3, 4);
p.sum()
`
	got, rep := eval(t, src)
	if rep.Any() {
		t.Fatalf("unexpected diagnostics")
	}
	if got.AsInt() != 7 {
		t.Fatalf("got %v", got)
	}
}

func TestInterfaceUnboundStaticMethodAccess(t *testing.T) {
	src := `
interface Greeter {
	Greeter() { }
	shout(name) {
		return name;
	}
}
let unbound = Greeter::shout;
unbound("hi")
`
	got, rep := eval(t, src)
	if rep.Any() {
		t.Fatalf("unexpected diagnostics")
	}
	if got.Kind() != value.KindString || got.AsString() != "hi" {
		t.Fatalf("got %v", got)
	}
}
