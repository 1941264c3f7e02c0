// Package diag is the single error channel of the pipeline: a reporter that
// accumulates typed diagnostics against a source.Text and renders them with
// caret highlighting. Every stage from the lexer through the evaluator
// checks Reporter.Any before doing further work.
package diag

import "fmt"

// Kind is the closed set of diagnostics the pipeline can record.
// UnusedStatement is the only warning; every other kind is an error.
type Kind int

const (
	BadChar Kind = iota
	UnexpectedEOF
	FailedParse
	IncorrectToken
	UnexpectedToken
	BreakOutsideLoop
	ReturnOutsideFn
	UnusedStatement // warning
	UnknownReference
	AlreadyDeclared
	DivideByZero
	OutOfBounds
	IncorrectType
	IncorrectLeftType
	IncorrectRightType
	Unindexable
	IndexOutOfRange
	CannotCompare
	IncorrectArgCount
	InvalidProperty
	ReadonlyProperty
	Other
)

var kindNames = [...]string{
	BadChar:            "BadChar",
	UnexpectedEOF:      "UnexpectedEOF",
	FailedParse:        "FailedParse",
	IncorrectToken:     "IncorrectToken",
	UnexpectedToken:    "UnexpectedToken",
	BreakOutsideLoop:   "BreakOutsideLoop",
	ReturnOutsideFn:    "ReturnOutsideFn",
	UnusedStatement:    "UnusedStatement",
	UnknownReference:   "UnknownReference",
	AlreadyDeclared:    "AlreadyDeclared",
	DivideByZero:       "DivideByZero",
	OutOfBounds:        "OutOfBounds",
	IncorrectType:      "IncorrectType",
	IncorrectLeftType:  "IncorrectLeftType",
	IncorrectRightType: "IncorrectRightType",
	Unindexable:        "Unindexable",
	IndexOutOfRange:    "IndexOutOfRange",
	CannotCompare:      "CannotCompare",
	IncorrectArgCount:  "IncorrectArgCount",
	InvalidProperty:    "InvalidProperty",
	ReadonlyProperty:   "ReadonlyProperty",
	Other:              "Other",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsWarning reports whether k is recorded as a warning rather than an error.
func (k Kind) IsWarning() bool {
	return k == UnusedStatement
}
