package symbol_test

import (
	"testing"

	"github.com/mjc-lang/minijavac/internal/symbol"
	"github.com/mjc-lang/minijavac/internal/testing/require"
)

func TestInternIsStable(t *testing.T) {
	tbl := symbol.NewTable()
	a := tbl.Intern("foo")
	b := tbl.Intern("bar")
	c := tbl.Intern("foo")

	require.Equal(t, a, c)
	require.NotEqual(t, a, b)
	require.Equal(t, "foo", tbl.Text(a))
	require.Equal(t, "bar", tbl.Text(b))
	require.Equal(t, 2, tbl.Len())
}

func TestEqualityMatchesUnderlyingBytes(t *testing.T) {
	tbl := symbol.NewTable()
	x := tbl.Intern("same")
	y := tbl.Intern("same")
	z := tbl.Intern("different")

	require.True(t, x == y)
	require.False(t, x == z)
}
