// Package stdlib is the native function interface: a small,
// fixed set of host-provided builtins installed into a program's top-level
// scope before it runs. List push/pop are not here — they are properties
// of the List value itself (internal/value/indexing.go), natives bound to
// the list as their receiver.
package stdlib

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"anilang/internal/diag"
	"anilang/internal/value"
)

// Install declares every builtin into scope, the same top-level scope a
// program's leading PushVar instruction carries. Called once per run before
// the VM executes the program, so the native functions are reachable by
// name from the very first statement.
func Install(scope *value.Scope) {
	for name, fn := range builtins(os.Stdin, os.Stdout) {
		_ = scope.Declare(name, value.FuncValue(value.NewNativeFunction(fn)))
	}
}

// builtins returns the table bound to the given streams, so tests can swap
// in an in-memory reader/writer instead of the process's real stdio.
func builtins(in io.Reader, out io.Writer) map[string]value.NativeFn {
	input := newLineReader(in)
	return map[string]value.NativeFn{
		"print":  func(args []value.Value) (value.Value, *value.OpError) { return nativePrint(out, args) },
		"input":  func(args []value.Value) (value.Value, *value.OpError) { return nativeInput(out, input, args) },
		"assert": nativeAssert,
	}
}

func nativePrint(out io.Writer, args []value.Value) (value.Value, *value.OpError) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	fmt.Fprintln(out, strings.Join(parts, " "))
	return value.Null(), nil
}

// lineReader wraps bufio.Reader so input() can be called repeatedly across
// a program's lifetime without re-buffering stdin each time.
type lineReader struct {
	r *bufio.Reader
}

func newLineReader(in io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReader(in)}
}

func nativeInput(out io.Writer, in *lineReader, args []value.Value) (value.Value, *value.OpError) {
	if len(args) > 1 {
		return value.Value{}, &value.OpError{
			Kind:    diag.IncorrectArgCount,
			Message: fmt.Sprintf("input expects 0 or 1 arguments (prompt), got %d", len(args)),
		}
	}
	if len(args) == 1 {
		fmt.Fprint(out, args[0].String())
	}
	line, err := in.r.ReadString('\n')
	if err != nil && line == "" {
		return value.Str(""), nil
	}
	return value.Str(strings.TrimRight(line, "\r\n")), nil
}

func nativeAssert(args []value.Value) (value.Value, *value.OpError) {
	if len(args) != 1 {
		return value.Value{}, &value.OpError{
			Kind:    diag.IncorrectArgCount,
			Message: fmt.Sprintf("assert expects 1 argument, got %d", len(args)),
		}
	}
	if !args[0].IsTruthy() {
		return value.Value{}, &value.OpError{Kind: diag.Other, Message: "assertion failed"}
	}
	return value.Null(), nil
}
