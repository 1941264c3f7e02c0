// Package parser builds an AST from a token stream via operator-precedence
// recursive descent.
package parser

import (
	"anilang/internal/ast"
	"anilang/internal/diag"
	"anilang/internal/source"
	"anilang/internal/token"
	"anilang/internal/value"
)

// Parser consumes a token slice (whitespace and comments already filtered
// out) and builds an AST, recording diagnostics for every failure mode
// rather than stopping at the first one.
type Parser struct {
	tokens []token.Token
	pos    int
	rep    *diag.Reporter
	text   *source.Text
}

// New filters Comment/Whitespace tokens out of toks and returns a Parser
// ready to parse the remainder.
func New(toks []token.Token, text *source.Text, rep *diag.Reporter) *Parser {
	filtered := make([]token.Token, 0, len(toks))
	for _, t := range toks {
		if t.Kind == token.Whitespace || t.Kind == token.Comment {
			continue
		}
		filtered = append(filtered, t)
	}
	return &Parser{tokens: filtered, text: text, rep: rep}
}

// Parse parses every statement up to EOF into a top-level Block.
func Parse(toks []token.Token, text *source.Text, rep *diag.Reporter) *ast.Block {
	p := New(toks, text, rep)
	return p.parseStatements(token.EOF)
}

func (p *Parser) peek() token.Token  { return p.peekAt(0) }
func (p *Parser) peek2() token.Token { return p.peekAt(1) }

func (p *Parser) peekAt(offset int) token.Token {
	i := p.pos + offset
	if i >= len(p.tokens) {
		last := source.NewSpan(p.endOffset(), p.endOffset())
		return token.Token{Kind: token.EOF, Span: last}
	}
	return p.tokens[i]
}

func (p *Parser) endOffset() int {
	if len(p.tokens) == 0 {
		return 0
	}
	return p.tokens[len(p.tokens)-1].Span.End()
}

func (p *Parser) advance() token.Token {
	t := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return t
}

// adjacent reports whether a and b are directly back to back in the source
// (no whitespace/comment between them), used to recognise calc-assign sugar
// (`+=` as the adjacent pair PlusOperator, AssignmentOperator) without a
// dedicated token kind.
func adjacent(a, b token.Token) bool {
	return a.Span.End() == b.Span.Start
}

// expect consumes the current token if it matches kind; otherwise it
// reports IncorrectToken and returns the unconsumed token unchanged so
// callers can still make progress.
func (p *Parser) expect(kind token.Kind) token.Token {
	t := p.peek()
	if t.Kind != kind {
		p.rep.Report(diag.IncorrectToken, t.Span, "expected %s, got %s", kind, t.Kind)
		return t
	}
	return p.advance()
}

func (p *Parser) bad(span source.Span) *ast.Bad {
	return ast.NewBad(span)
}

// parseStatements parses statements until it sees `until` (not consumed) or
// EOF.
func (p *Parser) parseStatements(until token.Kind) *ast.Block {
	start := p.peek().Span
	var stmts []ast.Node
	for p.peek().Kind != until && p.peek().Kind != token.EOF {
		stmts = append(stmts, p.parseStatement())
	}
	end := p.peek().Span
	return ast.NewBlock(start.Cover(end), stmts)
}

func (p *Parser) parseStatement() ast.Node {
	switch p.peek().Kind {
	case token.LetKeyword:
		return p.parseDeclaration()
	case token.FnKeyword:
		return p.parseFnDeclaration()
	case token.InterfaceKeyword:
		return p.parseInterface()
	case token.IfKeyword:
		return p.parseIf()
	case token.LoopKeyword:
		return p.parseLoop()
	case token.WhileKeyword:
		return p.parseWhile()
	case token.BreakKeyword:
		return p.parseBreak()
	case token.ReturnKeyword:
		return p.parseReturn()
	case token.OpenBrace:
		return p.parseBraceConstruct()
	case token.EOF:
		t := p.peek()
		p.rep.Report(diag.UnexpectedEOF, t.Span, "unexpected end of input")
		return p.bad(t.Span)
	default:
		return p.parseExprOrAssignmentStatement()
	}
}

func (p *Parser) parseDeclaration() ast.Node {
	start := p.advance().Span // `let`
	ident := p.expect(token.Ident)
	p.expect(token.AssignmentOperator)
	value := p.parseRangeExpr()
	return ast.NewDeclaration(start.Cover(value.Span()), p.text.Slice(ident.Span), value)
}

func (p *Parser) parseBreak() ast.Node {
	t := p.advance()
	return ast.NewBreak(t.Span)
}

func (p *Parser) parseReturn() ast.Node {
	start := p.advance().Span
	if p.atStatementTerminator() {
		return ast.NewReturn(start, nil)
	}
	v := p.parseRangeExpr()
	return ast.NewReturn(start.Cover(v.Span()), v)
}

// atStatementTerminator reports whether the current token ends a bare
// `return` or a block: a bare return directly before `}` or `)` is valid.
func (p *Parser) atStatementTerminator() bool {
	switch p.peek().Kind {
	case token.CloseBrace, token.CloseParan, token.EOF:
		return true
	default:
		return false
	}
}

func (p *Parser) parseIf() ast.Node {
	start := p.advance().Span // `if`
	cond := p.parseRangeExpr()
	then := p.parseBlock()
	var els *ast.Block
	end := then.Span()
	if p.peek().Kind == token.ElseKeyword {
		elseStart := p.advance().Span
		if p.peek().Kind == token.IfKeyword {
			nested := p.parseIf()
			els = ast.NewBlock(elseStart.Cover(nested.Span()), []ast.Node{nested})
		} else {
			els = p.parseBlock()
		}
		end = els.Span()
	}
	return ast.NewIf(start.Cover(end), cond, then, els)
}

func (p *Parser) parseLoop() *ast.Loop {
	start := p.advance().Span // `loop`
	body := p.parseBlock()
	return ast.NewLoop(start.Cover(body.Span()), body.Statements)
}

// parseWhile desugars `while cond {body}` into
// `loop { if !cond {break}; body }`.
func (p *Parser) parseWhile() ast.Node {
	start := p.advance().Span // `while`
	cond := p.parseRangeExpr()
	body := p.parseBlock()

	notCond := ast.NewUnary(cond.Span(), token.NotOperator, cond)
	breakBlock := ast.NewBlock(cond.Span(), []ast.Node{ast.NewBreak(cond.Span())})
	guard := ast.NewIf(cond.Span(), notCond, breakBlock, nil)

	stmts := append([]ast.Node{guard}, body.Statements...)
	return ast.NewLoop(start.Cover(body.Span()), stmts)
}

func (p *Parser) parseBlock() *ast.Block {
	start := p.expect(token.OpenBrace).Span
	body := p.parseStatements(token.CloseBrace)
	end := p.expect(token.CloseBrace).Span
	return ast.NewBlock(start.Cover(end), body.Statements)
}

// parseBraceConstruct disambiguates an object literal from a block using
// bounded lookahead: empty `{}`, `{ ident ,`, `{ ident :`, or `{ ident (args)
// {` (method shorthand) indicate an object literal; otherwise it is a block.
// A colon further along than the token after the first identifier is not
// looked at.
func (p *Parser) parseBraceConstruct() ast.Node {
	if p.looksLikeObjectLiteral() {
		return p.parseObjectLiteral()
	}
	return p.parseBlock()
}

func (p *Parser) looksLikeObjectLiteral() bool {
	if p.peek().Kind != token.OpenBrace {
		return false
	}
	next := p.peek2()
	if next.Kind == token.CloseBrace {
		return true
	}
	if next.Kind != token.Ident {
		return false
	}
	third := p.peekAt(2)
	switch third.Kind {
	case token.CommaOperator, token.ColonOperator:
		return true
	case token.OpenParan:
		// method shorthand `{ ident(args) { ... } }` only when a brace follows
		// the closing paren; `{ f(x) }` is a block holding a call.
		depth := 0
		for i := 2; ; i++ {
			switch p.peekAt(i).Kind {
			case token.OpenParan:
				depth++
			case token.CloseParan:
				if depth--; depth == 0 {
					return p.peekAt(i+1).Kind == token.OpenBrace
				}
			case token.EOF:
				return false
			}
		}
	default:
		return false
	}
}

func (p *Parser) parseObjectLiteral() ast.Node {
	start := p.advance().Span // `{`
	var pairs []ast.ObjectPair
	for p.peek().Kind != token.CloseBrace && p.peek().Kind != token.EOF {
		keyTok := p.expect(token.Ident)
		key := ast.NewLiteral(keyTok.Span, value.Str(p.text.Slice(keyTok.Span)))

		var val ast.Node
		if p.peek().Kind == token.OpenParan {
			val = p.parseMethodShorthand(keyTok.Span)
		} else {
			p.expect(token.ColonOperator)
			val = p.parseRangeExpr()
		}
		pairs = append(pairs, ast.ObjectPair{Key: key, Value: val})

		if p.peek().Kind == token.CommaOperator {
			p.advance()
		} else {
			break
		}
	}
	end := p.expect(token.CloseBrace).Span
	return ast.NewObject(start.Cover(end), pairs)
}

// parseMethodShorthand parses `ident(params) { body }` as an anonymous
// function literal value for an object-literal method entry.
func (p *Parser) parseMethodShorthand(nameSpan source.Span) ast.Node {
	params := p.parseParamList()
	body := p.parseBlock()
	return ast.NewFnDeclaration(nameSpan.Cover(body.Span()), "", params, body)
}

func (p *Parser) parseParamList() []string {
	p.expect(token.OpenParan)
	var params []string
	for p.peek().Kind != token.CloseParan && p.peek().Kind != token.EOF {
		ident := p.expect(token.Ident)
		params = append(params, p.text.Slice(ident.Span))
		if p.peek().Kind == token.CommaOperator {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.CloseParan)
	return params
}

func (p *Parser) parseFnDeclaration() ast.Node {
	start := p.advance().Span // `fn`
	ident := ""
	if p.peek().Kind == token.Ident {
		ident = p.text.Slice(p.advance().Span)
	}
	params := p.parseParamList()
	body := p.parseBlock()
	return ast.NewFnDeclaration(start.Cover(body.Span()), ident, params, body)
}

// parseInterface parses `interface Name { members }`: a
// collection of `ident = value` property initializers and
// `ident(params){body}` method declarations. The member whose name matches
// the interface name is its constructor; a duplicate reports
// AlreadyDeclared.
func (p *Parser) parseInterface() ast.Node {
	start := p.advance().Span // `interface`
	nameTok := p.expect(token.Ident)
	name := p.text.Slice(nameTok.Span)

	p.expect(token.OpenBrace)
	var members []ast.InterfaceMember
	haveCtor := false
	for p.peek().Kind != token.CloseBrace && p.peek().Kind != token.EOF {
		memberTok := p.expect(token.Ident)
		memberName := p.text.Slice(memberTok.Span)

		isMethod := p.peek().Kind == token.OpenParan
		var memberVal ast.Node
		if isMethod {
			memberVal = p.parseMethodShorthand(memberTok.Span)
		} else {
			p.expect(token.AssignmentOperator)
			memberVal = p.parseRangeExpr()
		}

		// Only a method-form member counts as the constructor; a plain
		// property initializer that happens to share the interface's name is
		// just a field.
		if memberName == name && isMethod {
			if haveCtor {
				p.rep.Report(diag.AlreadyDeclared, memberTok.Span, "interface %q already has a constructor", name)
			}
			haveCtor = true
		}
		members = append(members, ast.InterfaceMember{Name: memberName, Value: memberVal})

		if p.peek().Kind == token.CommaOperator {
			p.advance()
		}
	}
	end := p.expect(token.CloseBrace).Span

	if !haveCtor {
		members = append(members, ast.InterfaceMember{
			Name:  name,
			Value: ast.NewFnDeclaration(end, name, nil, ast.NewBlock(end, nil)),
		})
	}
	return ast.NewInterface(start.Cover(end), name, members)
}

// parseExprOrAssignmentStatement parses a full range-level expression and,
// if it is immediately followed by an assignment (plain or calc-assign),
// reinterprets it as an Assignment.
func (p *Parser) parseExprOrAssignmentStatement() ast.Node {
	start := p.peek().Span
	expr := p.parseRangeExpr()

	if p.peek().Kind == token.AssignmentOperator {
		p.advance()
		rhs := p.parseRangeExpr()
		return p.makeAssignment(start, expr, rhs)
	}

	if calcOp, ok := p.peekCalcAssign(); ok {
		p.advance() // arithmetic op
		p.advance() // `=`
		rhs := p.parseRangeExpr()
		combined := ast.NewBinary(expr.Span().Cover(rhs.Span()), calcOp, expr, rhs)
		return p.makeAssignment(start, expr, combined)
	}

	return expr
}

var calcAssignOps = map[token.Kind]bool{
	token.PlusOperator:  true,
	token.MinusOperator: true,
	token.StarOperator:  true,
	token.SlashOperator: true,
	token.ModOperator:   true,
}

func (p *Parser) peekCalcAssign() (token.Kind, bool) {
	op := p.peek()
	if !calcAssignOps[op.Kind] {
		return 0, false
	}
	eq := p.peek2()
	if eq.Kind != token.AssignmentOperator || !adjacent(op, eq) {
		return 0, false
	}
	return op.Kind, true
}

func (p *Parser) makeAssignment(start source.Span, lvalue, rhs ast.Node) ast.Node {
	ident, indices, ok := decomposeLValue(lvalue)
	if !ok {
		p.rep.Report(diag.UnexpectedToken, lvalue.Span(), "left side of assignment is not assignable")
		return p.bad(start.Cover(rhs.Span()))
	}
	return ast.NewAssignment(start.Cover(rhs.Span()), ident, indices, rhs)
}

// decomposeLValue walks an Index chain back to its root Variable, collecting
// index expressions in left-to-right order. Property access (`.ident`) was
// already lowered by the parser to an Index-by-string-literal, so this one
// walk covers both `.prop` and `[expr]` uniformly.
func decomposeLValue(n ast.Node) (string, []ast.Node, bool) {
	var indices []ast.Node
	cur := n
	for {
		switch v := cur.(type) {
		case *ast.Variable:
			for i, j := 0, len(indices)-1; i < j; i, j = i+1, j-1 {
				indices[i], indices[j] = indices[j], indices[i]
			}
			return v.Ident, indices, true
		case *ast.Index:
			indices = append(indices, v.Index)
			cur = v.Child
		default:
			return "", nil, false
		}
	}
}
