// Package token defines the closed set of lexical token kinds produced by
// the lexer and consumed by the parser.
package token

import (
	"fmt"

	"anilang/internal/source"
)

// Kind identifies the category of a lexed token. The set is closed.
type Kind int

const (
	Whitespace Kind = iota
	Comment
	Number
	Boolean
	String
	Ident
	EOF

	AssignmentOperator
	DotOperator
	CommaOperator
	ColonOperator
	ColonColonOperator
	RangeOperator

	PlusOperator
	MinusOperator
	StarOperator
	SlashOperator
	ModOperator
	CaretOperator

	OrOperator
	AndOperator
	NotOperator

	NEOperator
	EqOperator
	LTOperator
	GTOperator
	LEOperator
	GEOperator

	OpenParan
	CloseParan
	OpenBrace
	CloseBrace
	OpenBracket
	CloseBracket

	IfKeyword
	ElseKeyword
	BreakKeyword
	ReturnKeyword
	LoopKeyword
	WhileKeyword
	LetKeyword
	FnKeyword
	InterfaceKeyword

	Bad
)

// kindNames is indexed by Kind; keep in lockstep with the const block above.
var kindNames = [...]string{
	Whitespace:          "Whitespace",
	Comment:             "Comment",
	Number:              "Number",
	Boolean:             "Boolean",
	String:              "String",
	Ident:               "Ident",
	EOF:                 "EOF",
	AssignmentOperator:  "AssignmentOperator",
	DotOperator:         "DotOperator",
	CommaOperator:       "CommaOperator",
	ColonOperator:       "ColonOperator",
	ColonColonOperator:  "ColonColonOperator",
	RangeOperator:       "RangeOperator",
	PlusOperator:        "PlusOperator",
	MinusOperator:       "MinusOperator",
	StarOperator:        "StarOperator",
	SlashOperator:       "SlashOperator",
	ModOperator:         "ModOperator",
	CaretOperator:       "CaretOperator",
	OrOperator:          "OrOperator",
	AndOperator:         "AndOperator",
	NotOperator:         "NotOperator",
	NEOperator:          "NEOperator",
	EqOperator:          "EqOperator",
	LTOperator:          "LTOperator",
	GTOperator:          "GTOperator",
	LEOperator:          "LEOperator",
	GEOperator:          "GEOperator",
	OpenParan:           "OpenParan",
	CloseParan:          "CloseParan",
	OpenBrace:           "OpenBrace",
	CloseBrace:          "CloseBrace",
	OpenBracket:         "OpenBracket",
	CloseBracket:        "CloseBracket",
	IfKeyword:           "IfKeyword",
	ElseKeyword:         "ElseKeyword",
	BreakKeyword:        "BreakKeyword",
	ReturnKeyword:       "ReturnKeyword",
	LoopKeyword:         "LoopKeyword",
	WhileKeyword:        "WhileKeyword",
	LetKeyword:          "LetKeyword",
	FnKeyword:           "FnKeyword",
	InterfaceKeyword:    "InterfaceKeyword",
	Bad:                 "Bad",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Keywords maps source text to its keyword Kind.
var Keywords = map[string]Kind{
	"true":      Boolean,
	"false":     Boolean,
	"if":        IfKeyword,
	"else":      ElseKeyword,
	"break":     BreakKeyword,
	"return":    ReturnKeyword,
	"loop":      LoopKeyword,
	"while":     WhileKeyword,
	"let":       LetKeyword,
	"fn":        FnKeyword,
	"interface": InterfaceKeyword,
}

// Token is a single lexical unit: a kind and the span of source it covers.
type Token struct {
	Kind Kind
	Span source.Span
}

func (t Token) String() string {
	return fmt.Sprintf("%-20s %s", t.Kind, t.Span)
}
