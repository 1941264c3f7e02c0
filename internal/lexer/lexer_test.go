package lexer

import (
	"testing"

	"anilang/internal/diag"
	"anilang/internal/source"
	"anilang/internal/token"
)

func kinds(toks []token.Token) []token.Kind {
	ks := make([]token.Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

func lexNonTrivial(t *testing.T, src string) ([]token.Token, *diag.Reporter) {
	t.Helper()
	text := source.New(src)
	rep := diag.NewSilentReporter(text)
	var out []token.Token
	for _, tok := range Lex(text, rep) {
		if tok.Kind == token.Whitespace || tok.Kind == token.Comment {
			continue
		}
		out = append(out, tok)
	}
	return out, rep
}

func TestLexBasicTokens(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []token.Kind
	}{
		{"empty", "", []token.Kind{token.EOF}},
		{"arithmetic", "1 + 2 * 3", []token.Kind{
			token.Number, token.PlusOperator, token.Number, token.StarOperator, token.Number, token.EOF,
		}},
		{"two char ops", "a == b != c", []token.Kind{
			token.Ident, token.EqOperator, token.Ident, token.NEOperator, token.Ident, token.EOF,
		}},
		{"keywords", "let x = if true { 1 } else { 2 }", []token.Kind{
			token.LetKeyword, token.Ident, token.AssignmentOperator, token.IfKeyword, token.Boolean,
			token.OpenBrace, token.Number, token.CloseBrace, token.ElseKeyword, token.OpenBrace,
			token.Number, token.CloseBrace, token.EOF,
		}},
		{"range and colon-colon", "0..5 Name::member", []token.Kind{
			token.Number, token.RangeOperator, token.Number, token.Ident, token.ColonColonOperator, token.Ident, token.EOF,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, rep := lexNonTrivial(t, tt.src)
			if rep.Any() {
				t.Fatalf("unexpected diagnostics for %q", tt.src)
			}
			got := kinds(toks)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("token %d: got %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLexStringEscapes(t *testing.T) {
	toks, rep := lexNonTrivial(t, `"a\"b"`)
	if rep.Any() {
		t.Fatalf("unexpected diagnostics")
	}
	if len(toks) != 2 || toks[0].Kind != token.String {
		t.Fatalf("got %v", toks)
	}
}

func TestLexUnterminatedStringDiagnoses(t *testing.T) {
	_, rep := lexNonTrivial(t, `"abc`)
	if !rep.Any() {
		t.Fatalf("expected UnexpectedEOF diagnostic")
	}
}

func TestLexUnterminatedBlockComment(t *testing.T) {
	_, rep := lexNonTrivial(t, "/* never closed")
	if !rep.Any() {
		t.Fatalf("expected UnexpectedEOF diagnostic")
	}
}

func TestLexBadCharacter(t *testing.T) {
	toks, rep := lexNonTrivial(t, "1 @ 2")
	if !rep.Any() {
		t.Fatalf("expected BadChar diagnostic")
	}
	found := false
	for _, tok := range toks {
		if tok.Kind == token.Bad {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a Bad token, got %v", toks)
	}
}

func TestLexWhitespaceRunCoalesces(t *testing.T) {
	text := source.New("1    +     2")
	rep := diag.NewSilentReporter(text)
	toks := Lex(text, rep)
	count := 0
	for _, tok := range toks {
		if tok.Kind == token.Whitespace {
			count++
		}
	}
	if count != 2 {
		t.Fatalf("expected exactly 2 coalesced whitespace tokens, got %d", count)
	}
}

func TestLexFloatLiteral(t *testing.T) {
	toks, rep := lexNonTrivial(t, "3.14")
	if rep.Any() || len(toks) != 2 || toks[0].Kind != token.Number {
		t.Fatalf("got %v, diags=%v", toks, rep.Any())
	}
}

// TestLexLeadingDotFloatSplitsIntoDotAndNumber documents that the lexer never
// merges a leading `.`; `.5` comes out as DotOperator, Number, leaving the
// float reinterpretation to the parser.
func TestLexLeadingDotFloatSplitsIntoDotAndNumber(t *testing.T) {
	toks, rep := lexNonTrivial(t, ".5")
	if rep.Any() {
		t.Fatalf("unexpected diagnostics")
	}
	want := []token.Kind{token.DotOperator, token.Number, token.EOF}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

// TestLexTrailingDotFloatSplitsIntoNumberAndDot documents that a `.` is only
// merged into a Number when a digit immediately follows it; `3.` comes out as
// Number, DotOperator, leaving the float reinterpretation to the parser.
func TestLexTrailingDotFloatSplitsIntoNumberAndDot(t *testing.T) {
	toks, rep := lexNonTrivial(t, "3.")
	if rep.Any() {
		t.Fatalf("unexpected diagnostics")
	}
	want := []token.Kind{token.Number, token.DotOperator, token.EOF}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
}
