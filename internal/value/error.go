package value

import (
	"fmt"

	"anilang/internal/diag"
)

// OpError is returned by value operations that fail (wrong type, divide by
// zero, bad index, ...). It carries the diag.Kind the caller should report,
// so the evaluator can hand it straight to a diag.Reporter without
// re-deriving which diagnostic applies.
type OpError struct {
	Kind    diag.Kind
	Message string
}

func (e *OpError) Error() string { return e.Message }

func errf(kind diag.Kind, format string, args ...any) *OpError {
	return &OpError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func errIncorrectLeftType(got Kind, expected Kind) *OpError {
	return errf(diag.IncorrectLeftType, "expected %s, got %s", expected, got)
}

func errIncorrectRightType(got Kind, expected Kind) *OpError {
	return errf(diag.IncorrectRightType, "expected %s, got %s", expected, got)
}

func errIncorrectType(got Kind, expected Kind) *OpError {
	return errf(diag.IncorrectType, "expected %s, got %s", expected, got)
}

func errCannotCompare(left, right Kind) *OpError {
	return errf(diag.CannotCompare, "cannot compare %s with %s", left, right)
}

func errDivideByZero() *OpError {
	return errf(diag.DivideByZero, "division by zero")
}

func errUnindexable(val, index Kind) *OpError {
	return errf(diag.Unindexable, "value of type %s cannot be indexed by %s", val, index)
}

func errIndexOutOfRange(index, length int64) *OpError {
	return errf(diag.IndexOutOfRange, "index %d out of range for length %d", index, length)
}
