package parser

import (
	"strconv"
	"strings"

	"anilang/internal/ast"
	"anilang/internal/diag"
	"anilang/internal/source"
	"anilang/internal/token"
	"anilang/internal/value"
)

// parseRangeExpr is the entry point for any expression appearing as a full
// statement, an assignment's right-hand side, a call argument, or a
// condition: `or_expr ('..' or_expr)?`. The range operator binds looser
// than every other binary operator.
func (p *Parser) parseRangeExpr() ast.Node {
	left := p.parseOr()
	if p.peek().Kind == token.RangeOperator {
		p.advance()
		right := p.parseOr()
		return ast.NewBinary(left.Span().Cover(right.Span()), token.RangeOperator, left, right)
	}
	return left
}

func (p *Parser) parseOr() ast.Node {
	left := p.parseAnd()
	for p.peek().Kind == token.OrOperator {
		op := p.advance()
		right := p.parseAnd()
		left = ast.NewBinary(left.Span().Cover(right.Span()), op.Kind, left, right)
	}
	return left
}

func (p *Parser) parseAnd() ast.Node {
	left := p.parseComparison()
	for p.peek().Kind == token.AndOperator {
		op := p.advance()
		right := p.parseComparison()
		left = ast.NewBinary(left.Span().Cover(right.Span()), op.Kind, left, right)
	}
	return left
}

var comparisonOps = map[token.Kind]bool{
	token.LTOperator: true, token.GTOperator: true,
	token.LEOperator: true, token.GEOperator: true,
	token.EqOperator: true, token.NEOperator: true,
}

func (p *Parser) parseComparison() ast.Node {
	left := p.parseAdditive()
	for comparisonOps[p.peek().Kind] {
		op := p.advance()
		right := p.parseAdditive()
		left = ast.NewBinary(left.Span().Cover(right.Span()), op.Kind, left, right)
	}
	return left
}

func (p *Parser) parseAdditive() ast.Node {
	left := p.parseMultiplicative()
	for p.peek().Kind == token.PlusOperator || p.peek().Kind == token.MinusOperator {
		if calcOp, ok := p.peekCalcAssign(); ok {
			_ = calcOp
			break // an adjacent `+=`/`-=` belongs to the statement level, not here
		}
		op := p.advance()
		right := p.parseMultiplicative()
		left = ast.NewBinary(left.Span().Cover(right.Span()), op.Kind, left, right)
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.Node {
	left := p.parsePower()
	for p.peek().Kind == token.StarOperator || p.peek().Kind == token.SlashOperator || p.peek().Kind == token.ModOperator {
		if _, ok := p.peekCalcAssign(); ok {
			break
		}
		op := p.advance()
		right := p.parsePower()
		left = ast.NewBinary(left.Span().Cover(right.Span()), op.Kind, left, right)
	}
	return left
}

// parsePower is right-associative: `2 ^ 3 ^ 2` is `2 ^ (3 ^ 2)`.
func (p *Parser) parsePower() ast.Node {
	left := p.parseUnary()
	if p.peek().Kind == token.CaretOperator {
		op := p.advance()
		right := p.parsePower()
		return ast.NewBinary(left.Span().Cover(right.Span()), op.Kind, left, right)
	}
	return left
}

func (p *Parser) parseUnary() ast.Node {
	switch p.peek().Kind {
	case token.PlusOperator, token.MinusOperator, token.NotOperator:
		op := p.advance()
		child := p.parseUnary()
		return ast.NewUnary(op.Span.Cover(child.Span()), op.Kind, child)
	default:
		return p.parsePostfix()
	}
}

// parsePostfix applies any run of `[index]`, `.ident`, `(args)`, and
// `Name::member` suffixes to a primary expression. `.ident` desugars
// directly to an Index-by-string-literal so assignment decomposition and
// GetIndex evaluation both see one uniform shape.
//
// A `.` directly after an integer literal is ambiguous with property
// access; it is only property access when an identifier actually follows
// the dot. Otherwise `expr` is reinterpreted as a float literal: `3.`,
// `3.5`, and `3 . 5` all parse as floats.
func (p *Parser) parsePostfix() ast.Node {
	expr := p.parsePrimary()
	for {
		switch p.peek().Kind {
		case token.OpenBracket:
			p.advance()
			idx := p.parseRangeExpr()
			end := p.expect(token.CloseBracket).Span
			expr = ast.NewIndex(expr.Span().Cover(end), expr, idx)
		case token.DotOperator:
			if lit, ok := expr.(*ast.Literal); ok && lit.Value.Kind() == value.KindInt && p.peek2().Kind != token.Ident {
				expr = p.parseDotFloatSuffix(lit)
				continue
			}
			p.advance()
			prop := p.expect(token.Ident)
			key := ast.NewLiteral(prop.Span, value.Str(p.text.Slice(prop.Span)))
			expr = ast.NewIndex(expr.Span().Cover(prop.Span), expr, key)
		case token.ColonColonOperator:
			p.advance()
			member := p.expect(token.Ident)
			key := ast.NewLiteral(member.Span, value.Str(p.text.Slice(member.Span)))
			expr = ast.NewIndex(expr.Span().Cover(member.Span), expr, key)
		case token.OpenParan:
			args, end := p.parseArgList()
			expr = ast.NewFnCall(expr.Span().Cover(end), expr, args)
		default:
			return expr
		}
	}
}

func (p *Parser) parseArgList() ([]ast.Node, source.Span) {
	p.expect(token.OpenParan)
	var args []ast.Node
	for p.peek().Kind != token.CloseParan && p.peek().Kind != token.EOF {
		args = append(args, p.parseRangeExpr())
		if p.peek().Kind == token.CommaOperator {
			p.advance()
		} else {
			break
		}
	}
	end := p.expect(token.CloseParan).Span
	return args, end
}

func (p *Parser) parsePrimary() ast.Node {
	t := p.peek()
	switch t.Kind {
	case token.Number:
		p.advance()
		return p.parseNumberLiteral(t)
	case token.String:
		p.advance()
		return ast.NewLiteral(t.Span, value.Str(decodeStringLiteral(p.text.Slice(t.Span))))
	case token.Boolean:
		p.advance()
		return ast.NewLiteral(t.Span, value.Bool(p.text.Slice(t.Span) == "true"))
	case token.Ident:
		p.advance()
		return ast.NewVariable(t.Span, p.text.Slice(t.Span))
	case token.FnKeyword:
		return p.parseFnDeclaration()
	case token.OpenParan:
		p.advance()
		inner := p.parseRangeExpr()
		p.expect(token.CloseParan)
		return inner
	case token.OpenBracket:
		return p.parseListLiteral()
	case token.OpenBrace:
		return p.parseBraceConstruct()
	case token.IfKeyword:
		return p.parseIf()
	case token.LoopKeyword:
		return p.parseLoop()
	case token.DotOperator:
		// Leading-dot float literal: `.5`.
		dot := p.advance()
		num := p.expect(token.Number)
		return p.parseFloatSpan(dot.Span.Cover(num.Span))
	default:
		p.rep.Report(diag.UnexpectedToken, t.Span, "unexpected token %s", t.Kind)
		p.advance()
		return p.bad(t.Span)
	}
}

func (p *Parser) parseNumberLiteral(t token.Token) *ast.Literal {
	text := p.text.Slice(t.Span)
	if strings.Contains(text, ".") {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			p.rep.Report(diag.FailedParse, t.Span, "invalid float literal %q", text)
		}
		return ast.NewLiteral(t.Span, value.Float(f))
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		p.rep.Report(diag.FailedParse, t.Span, "invalid integer literal %q", text)
	}
	return ast.NewLiteral(t.Span, value.Int(n))
}

// parseDotFloatSuffix reinterprets an integer literal followed by a `.` as
// a float, covering the `Number . Number` and `Number .` forms. lit's
// int-ness and the lack of a following identifier have already been
// checked by the caller (parsePostfix).
func (p *Parser) parseDotFloatSuffix(lit *ast.Literal) ast.Node {
	dot := p.advance() // '.'
	if p.peek().Kind == token.Number {
		num := p.advance()
		return p.parseFloatSpan(lit.Span().Cover(num.Span))
	}
	return p.parseFloatSpan(lit.Span().Cover(dot.Span))
}

// parseFloatSpan parses the source text spanned by span as a float literal,
// reporting FailedParse if it is malformed. The span may cover whitespace
// between the merged tokens (`3 . 5`), which is stripped before parsing.
func (p *Parser) parseFloatSpan(span source.Span) ast.Node {
	text := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, p.text.Slice(span))
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		p.rep.Report(diag.FailedParse, span, "invalid float literal %q", text)
	}
	return ast.NewLiteral(span, value.Float(f))
}

func (p *Parser) parseListLiteral() ast.Node {
	start := p.expect(token.OpenBracket).Span
	var elems []ast.Node
	for p.peek().Kind != token.CloseBracket && p.peek().Kind != token.EOF {
		elems = append(elems, p.parseRangeExpr())
		if p.peek().Kind == token.CommaOperator {
			p.advance()
		} else {
			break
		}
	}
	end := p.expect(token.CloseBracket).Span
	return ast.NewList(start.Cover(end), elems)
}

// decodeStringLiteral strips the surrounding quotes and resolves the
// backslash escapes the lexer passed through unevaluated.
func decodeStringLiteral(raw string) string {
	if len(raw) < 2 {
		return raw
	}
	body := raw[1 : len(raw)-1]
	out := make([]byte, 0, len(body))
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' && i+1 < len(body) {
			i++
			switch body[i] {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case 'r':
				out = append(out, '\r')
			case '0':
				out = append(out, 0)
			default:
				out = append(out, body[i])
			}
			continue
		}
		out = append(out, body[i])
	}
	return string(out)
}

