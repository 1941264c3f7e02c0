package parser

import (
	"testing"

	"anilang/internal/ast"
	"anilang/internal/diag"
	"anilang/internal/lexer"
	"anilang/internal/source"
	"anilang/internal/token"
	"anilang/internal/value"
)

func parseSrc(t *testing.T, src string) (*ast.Block, *diag.Reporter) {
	t.Helper()
	text := source.New(src)
	rep := diag.NewSilentReporter(text)
	toks := lexer.Lex(text, rep)
	return Parse(toks, text, rep), rep
}

func TestParsePrecedence(t *testing.T) {
	block, rep := parseSrc(t, "1 + 2 * 3")
	if rep.Any() {
		t.Fatalf("unexpected diagnostics")
	}
	if len(block.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(block.Statements))
	}
	add, ok := block.Statements[0].(*ast.Binary)
	if !ok || add.Op != token.PlusOperator {
		t.Fatalf("expected top-level +, got %#v", block.Statements[0])
	}
	mul, ok := add.Right.(*ast.Binary)
	if !ok || mul.Op != token.StarOperator {
		t.Fatalf("expected 2 * 3 to bind tighter than +, got %#v", add.Right)
	}
}

func TestParsePowerIsRightAssociative(t *testing.T) {
	block, rep := parseSrc(t, "2 ^ 3 ^ 2")
	if rep.Any() {
		t.Fatalf("unexpected diagnostics")
	}
	top, ok := block.Statements[0].(*ast.Binary)
	if !ok || top.Op != token.CaretOperator {
		t.Fatalf("expected top-level ^, got %#v", block.Statements[0])
	}
	if _, ok := top.Right.(*ast.Binary); !ok {
		t.Fatalf("expected right-associative nesting, got %#v", top.Right)
	}
	if _, ok := top.Left.(*ast.Literal); !ok {
		t.Fatalf("expected left operand to be a bare literal, got %#v", top.Left)
	}
}

func TestParseRangeBindsLooserThanEverything(t *testing.T) {
	block, rep := parseSrc(t, "1 + 1 .. 2 * 2")
	if rep.Any() {
		t.Fatalf("unexpected diagnostics")
	}
	rng, ok := block.Statements[0].(*ast.Binary)
	if !ok || rng.Op != token.RangeOperator {
		t.Fatalf("expected top-level range, got %#v", block.Statements[0])
	}
	if _, ok := rng.Left.(*ast.Binary); !ok {
		t.Fatalf("expected left side to already be reduced to 1 + 1, got %#v", rng.Left)
	}
}

func TestParseAssignment(t *testing.T) {
	block, rep := parseSrc(t, "x = 5")
	if rep.Any() {
		t.Fatalf("unexpected diagnostics")
	}
	assign, ok := block.Statements[0].(*ast.Assignment)
	if !ok {
		t.Fatalf("expected Assignment, got %#v", block.Statements[0])
	}
	if assign.Ident != "x" || len(assign.Indices) != 0 {
		t.Fatalf("got %#v", assign)
	}
}

func TestParseCalcAssignDesugarsToBinary(t *testing.T) {
	block, rep := parseSrc(t, "x += 1")
	if rep.Any() {
		t.Fatalf("unexpected diagnostics")
	}
	assign, ok := block.Statements[0].(*ast.Assignment)
	if !ok {
		t.Fatalf("expected Assignment, got %#v", block.Statements[0])
	}
	bin, ok := assign.Value.(*ast.Binary)
	if !ok || bin.Op != token.PlusOperator {
		t.Fatalf("expected x += 1 to desugar to x + 1, got %#v", assign.Value)
	}
}

func TestParseIndexedAssignment(t *testing.T) {
	block, rep := parseSrc(t, "a[0].b = 1")
	if rep.Any() {
		t.Fatalf("unexpected diagnostics")
	}
	assign, ok := block.Statements[0].(*ast.Assignment)
	if !ok {
		t.Fatalf("expected Assignment, got %#v", block.Statements[0])
	}
	if assign.Ident != "a" || len(assign.Indices) != 2 {
		t.Fatalf("got %#v", assign)
	}
	if _, ok := assign.Indices[0].(*ast.Literal); !ok {
		t.Fatalf("expected first index to be the literal 0, got %#v", assign.Indices[0])
	}
	if _, ok := assign.Indices[1].(*ast.Literal); !ok {
		t.Fatalf("expected property access to desugar to a string-literal index, got %#v", assign.Indices[1])
	}
}

func TestParseWhileDesugarsToLoop(t *testing.T) {
	block, rep := parseSrc(t, "while x { break }")
	if rep.Any() {
		t.Fatalf("unexpected diagnostics")
	}
	loop, ok := block.Statements[0].(*ast.Loop)
	if !ok {
		t.Fatalf("expected while to desugar to Loop, got %#v", block.Statements[0])
	}
	if len(loop.Statements) != 2 {
		t.Fatalf("expected guard + body statement, got %d", len(loop.Statements))
	}
	guard, ok := loop.Statements[0].(*ast.If)
	if !ok {
		t.Fatalf("expected first loop statement to be the negated guard, got %#v", loop.Statements[0])
	}
	if _, ok := guard.Cond.(*ast.Unary); !ok {
		t.Fatalf("expected guard condition to be a negation, got %#v", guard.Cond)
	}
}

func TestParseElseIfDesugarsToNestedIf(t *testing.T) {
	block, rep := parseSrc(t, "if a { 1 } else if b { 2 } else { 3 }")
	if rep.Any() {
		t.Fatalf("unexpected diagnostics")
	}
	outer, ok := block.Statements[0].(*ast.If)
	if !ok {
		t.Fatalf("expected If, got %#v", block.Statements[0])
	}
	if len(outer.Else.Statements) != 1 {
		t.Fatalf("expected else-if to desugar into a one-statement Else block, got %d statements", len(outer.Else.Statements))
	}
	if _, ok := outer.Else.Statements[0].(*ast.If); !ok {
		t.Fatalf("expected nested If inside Else, got %#v", outer.Else.Statements[0])
	}
}

func TestParseObjectLiteralVsBlockDisambiguation(t *testing.T) {
	block, rep := parseSrc(t, "{ a: 1, b: 2 }")
	if rep.Any() {
		t.Fatalf("unexpected diagnostics")
	}
	obj, ok := block.Statements[0].(*ast.Object)
	if !ok {
		t.Fatalf("expected `{ a: 1 }` to parse as an object literal, got %#v", block.Statements[0])
	}
	if len(obj.Pairs) != 2 {
		t.Fatalf("got %d pairs, want 2", len(obj.Pairs))
	}
}

func TestParseBareBraceIsBlock(t *testing.T) {
	block, rep := parseSrc(t, "{ 1 + 1 }")
	if rep.Any() {
		t.Fatalf("unexpected diagnostics")
	}
	if _, ok := block.Statements[0].(*ast.Block); !ok {
		t.Fatalf("expected a bare `{ 1 + 1 }` to parse as a Block, got %#v", block.Statements[0])
	}
}

func TestParseEmptyObjectLiteral(t *testing.T) {
	block, rep := parseSrc(t, "x = {}")
	if rep.Any() {
		t.Fatalf("unexpected diagnostics")
	}
	assign := block.Statements[0].(*ast.Assignment)
	if _, ok := assign.Value.(*ast.Object); !ok {
		t.Fatalf("expected empty `{}` to parse as an object literal, got %#v", assign.Value)
	}
}

func TestParseInterfaceSynthesizesEmptyConstructor(t *testing.T) {
	block, rep := parseSrc(t, "interface Point { x = 0, y = 0 }")
	if rep.Any() {
		t.Fatalf("unexpected diagnostics")
	}
	iface, ok := block.Statements[0].(*ast.Interface)
	if !ok {
		t.Fatalf("expected Interface, got %#v", block.Statements[0])
	}
	found := false
	for _, m := range iface.Members {
		if m.Name == "Point" {
			found = true
			if _, ok := m.Value.(*ast.FnDeclaration); !ok {
				t.Fatalf("expected synthesized constructor to be an FnDeclaration, got %#v", m.Value)
			}
		}
	}
	if !found {
		t.Fatalf("expected a synthesized constructor member named %q", "Point")
	}
}

func TestParseInterfaceDuplicateConstructorDiagnoses(t *testing.T) {
	_, rep := parseSrc(t, "interface Point { Point(x) { return x }, Point(y) { return y } }")
	if !rep.Any() {
		t.Fatalf("expected AlreadyDeclared diagnostic for duplicate constructor")
	}
}

func TestParseFnCallAndMethodShorthand(t *testing.T) {
	block, rep := parseSrc(t, "foo(1, 2)")
	if rep.Any() {
		t.Fatalf("unexpected diagnostics")
	}
	call, ok := block.Statements[0].(*ast.FnCall)
	if !ok || len(call.Args) != 2 {
		t.Fatalf("got %#v", block.Statements[0])
	}

	block, rep = parseSrc(t, "let o = { f(x) { x } }")
	if rep.Any() {
		t.Fatalf("unexpected diagnostics parsing method shorthand")
	}
	decl, ok := block.Statements[0].(*ast.Declaration)
	if !ok {
		t.Fatalf("expected Declaration, got %#v", block.Statements[0])
	}
	obj, ok := decl.Value.(*ast.Object)
	if !ok || len(obj.Pairs) != 1 {
		t.Fatalf("expected a one-pair Object, got %#v", decl.Value)
	}
	if _, ok := obj.Pairs[0].Value.(*ast.FnDeclaration); !ok {
		t.Fatalf("expected method shorthand to be an FnDeclaration, got %#v", obj.Pairs[0].Value)
	}
}

func TestParseListLiteral(t *testing.T) {
	block, rep := parseSrc(t, "[1, 2, 3]")
	if rep.Any() {
		t.Fatalf("unexpected diagnostics")
	}
	list, ok := block.Statements[0].(*ast.List)
	if !ok || len(list.Elements) != 3 {
		t.Fatalf("got %#v", block.Statements[0])
	}
}

func TestParseBareReturnBeforeBlockEnd(t *testing.T) {
	block, rep := parseSrc(t, "fn f() { return }")
	if rep.Any() {
		t.Fatalf("unexpected diagnostics")
	}
	fn, ok := block.Statements[0].(*ast.FnDeclaration)
	if !ok {
		t.Fatalf("expected FnDeclaration, got %#v", block.Statements[0])
	}
	ret, ok := fn.Body.Statements[0].(*ast.Return)
	if !ok || ret.Value != nil {
		t.Fatalf("expected a bare return with nil Value, got %#v", fn.Body.Statements[0])
	}
}

func TestParseIncorrectTokenDiagnoses(t *testing.T) {
	_, rep := parseSrc(t, "let = 1")
	if !rep.Any() {
		t.Fatalf("expected IncorrectToken diagnostic for a missing identifier")
	}
}

// TestParseLeadingDotFloatLiteral and TestParseTrailingDotFloatLiteral cover
// the `. Number` and `Number .` float forms alongside the already-merged
// `Number . Number` lexer form (TestLexFloatLiteral).
func TestParseLeadingDotFloatLiteral(t *testing.T) {
	block, rep := parseSrc(t, "let x = .5;")
	if rep.Any() {
		t.Fatalf("unexpected diagnostics")
	}
	decl, ok := block.Statements[0].(*ast.Declaration)
	if !ok {
		t.Fatalf("expected Declaration, got %#v", block.Statements[0])
	}
	lit, ok := decl.Value.(*ast.Literal)
	if !ok || lit.Value.Kind() != value.KindFloat || lit.Value.AsFloat() != 0.5 {
		t.Fatalf("expected Float(0.5), got %#v", decl.Value)
	}
}

func TestParseTrailingDotFloatLiteral(t *testing.T) {
	block, rep := parseSrc(t, "let x = 3.;")
	if rep.Any() {
		t.Fatalf("unexpected diagnostics")
	}
	decl, ok := block.Statements[0].(*ast.Declaration)
	if !ok {
		t.Fatalf("expected Declaration, got %#v", block.Statements[0])
	}
	lit, ok := decl.Value.(*ast.Literal)
	if !ok || lit.Value.Kind() != value.KindFloat || lit.Value.AsFloat() != 3.0 {
		t.Fatalf("expected Float(3.0), got %#v", decl.Value)
	}
}

// TestParsePropertyAccessOnIntLiteralStillWorks guards the ambiguity-breaking
// rule in parsePostfix: when an identifier follows the dot, `.` is still
// ordinary property access, even when the receiver is an int literal.
func TestParsePropertyAccessOnIntLiteralStillWorks(t *testing.T) {
	block, rep := parseSrc(t, "3.foo")
	if rep.Any() {
		t.Fatalf("unexpected diagnostics")
	}
	idx, ok := block.Statements[0].(*ast.Index)
	if !ok {
		t.Fatalf("expected Index (property access desugars to Index), got %#v", block.Statements[0])
	}
	key, ok := idx.Index.(*ast.Literal)
	if !ok || key.Value.Kind() != value.KindString || key.Value.AsString() != "foo" {
		t.Fatalf("expected string-literal index %q, got %#v", "foo", idx.Index)
	}
}
