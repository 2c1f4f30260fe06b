package diagnostics_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mjc-lang/minijavac/internal/diagnostics"
	"github.com/mjc-lang/minijavac/internal/sourceview"
	"github.com/mjc-lang/minijavac/internal/testing/require"
)

func TestEmitSpannedRendersGutterAndCaret(t *testing.T) {
	v, err := sourceview.New("t.java", []byte("if (1) {}\n"))
	require.NoError(t, err)

	var buf bytes.Buffer
	sink := diagnostics.New(&buf, false)
	span := sourceview.NewSpan(v.At(4), v.At(4)) // the "1"
	sink.EmitSpanned(diagnostics.Error, "condition must be boolean", span)

	out := buf.String()
	require.Contains(t, out, "error: condition must be boolean")
	require.Contains(t, out, "if (1) {}")
	require.True(t, strings.Contains(out, "^"))
	require.True(t, sink.Errored())
}

func TestWriteStatistics(t *testing.T) {
	var buf bytes.Buffer
	sink := diagnostics.New(&buf, false)
	sink.WriteStatistics()
	require.Contains(t, buf.String(), "Compilation finished successfully")

	buf.Reset()
	sink.Emit(diagnostics.Error, "boom")
	sink.WriteStatistics()
	require.Contains(t, buf.String(), "Compilation aborted due to 1 error")
}

func TestErroredOnlyTrueForErrors(t *testing.T) {
	var buf bytes.Buffer
	sink := diagnostics.New(&buf, false)
	sink.Emit(diagnostics.Warning, "just a warning")
	require.False(t, sink.Errored())
	errs, warns := sink.Counts()
	require.Equal(t, 0, errs)
	require.Equal(t, 1, warns)
}

func TestEmitSpannedKindIsObservableOnTheRecordedMessage(t *testing.T) {
	v, err := sourceview.New("t.java", []byte("class A { int f; int f; }\n"))
	require.NoError(t, err)

	var buf bytes.Buffer
	sink := diagnostics.New(&buf, false)
	span := sourceview.NewSpan(v.At(0), v.At(0))
	sink.EmitSpannedKind(diagnostics.Error, "RedefinitionError", "redefinition of field f", span)
	sink.EmitSpanned(diagnostics.Error, "some other unclassified error", span)

	msgs := sink.Messages()
	require.Equal(t, 2, len(msgs))
	require.Equal(t, "RedefinitionError", msgs[0].Kind)
	require.Equal(t, "", msgs[1].Kind)
}
