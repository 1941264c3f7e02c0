package diag

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"anilang/internal/source"
)

func TestAnyOnlyCountsErrors(t *testing.T) {
	text := source.New("let a = 1")
	r := NewSilentReporter(text)

	require.False(t, r.Any())

	r.Warn(UnusedStatement, source.NewSpan(0, 3), "statement result discarded")
	require.False(t, r.Any())
	require.Equal(t, 1, r.WarningCount())

	r.Report(UnknownReference, source.NewSpan(4, 5), "unknown reference %q", "a")
	require.True(t, r.Any())
	require.Equal(t, 1, r.ErrorCount())
}

func TestRenderDoesNotPanicAcrossLines(t *testing.T) {
	text := source.New("let a = {\n  1,\n}")
	r := NewSilentReporter(text)
	r.Report(Other, source.NewSpan(8, len("let a = {\n  1,\n}")), "bad object literal")

	var buf bytes.Buffer
	r.Render(&buf, r.Diagnostics()[0])
	require.NotEmpty(t, buf.String())
}

func TestSilentReporterDoesNotWrite(t *testing.T) {
	text := source.New("1")
	r := NewSilentReporter(text)
	r.Report(DivideByZero, source.NewSpan(0, 1), "division by zero")
	require.True(t, r.Any())
}
