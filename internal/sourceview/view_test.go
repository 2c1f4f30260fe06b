package sourceview_test

import (
	"testing"

	"github.com/mjc-lang/minijavac/internal/sourceview"
	"github.com/mjc-lang/minijavac/internal/testing/require"
)

func TestNew_RejectsNonAscii(t *testing.T) {
	_, err := sourceview.New("t.java", []byte{'a', 'b', 0x80})
	require.Error(t, err)
	var nae *sourceview.NotAsciiError
	require.True(t, errorsAs(err, &nae))
	require.Equal(t, 2, nae.ByteOffset)
}

func errorsAs(err error, target **sourceview.NotAsciiError) bool {
	if nae, ok := err.(*sourceview.NotAsciiError); ok {
		*target = nae
		return true
	}
	return false
}

func TestPositionNextPrevRoundTrip(t *testing.T) {
	v, err := sourceview.New("t.java", []byte("ab\ncd"))
	require.NoError(t, err)

	p := v.Begin()
	for p.Valid() {
		if prev, ok := p.Next(); ok {
			back, ok2 := prev.Prev()
			require.True(t, ok2)
			require.True(t, back.Equal(p))
		}
		n, ok := p.Next()
		if !ok {
			break
		}
		p = n
	}
}

func TestRowColTracksNewlines(t *testing.T) {
	v, err := sourceview.New("t.java", []byte("ab\ncd"))
	require.NoError(t, err)

	p := v.At(3) // 'c'
	require.Equal(t, 2, p.Row())
	require.Equal(t, 1, p.Col())
}

func TestPeekExactlyAndAtMost(t *testing.T) {
	v, err := sourceview.New("t.java", []byte("hello"))
	require.NoError(t, err)

	s, ok := v.PeekExactly(v.Begin(), 3)
	require.True(t, ok)
	require.Equal(t, "hel", s.Text())

	_, ok = v.PeekExactly(v.Begin(), 100)
	require.False(t, ok)

	s, ok = v.PeekAtMost(v.Begin(), 100)
	require.True(t, ok)
	require.Equal(t, "hello", s.Text())
}

func TestMatches(t *testing.T) {
	v, err := sourceview.New("t.java", []byte("class A"))
	require.NoError(t, err)

	require.True(t, v.Matches(v.Begin(), "class"))
	require.True(t, v.Matches(v.Begin(), ""))
	require.False(t, v.Matches(v.Begin(), "classy"))
}

func TestSpanLines(t *testing.T) {
	v, err := sourceview.New("t.java", []byte("ab\ncd\nef"))
	require.NoError(t, err)

	span := sourceview.NewSpan(v.At(1), v.At(6)) // "b\ncd\ne"
	lines := span.Lines()
	require.Equal(t, 3, len(lines))
	require.Equal(t, "b", lines[0].Text())
	require.Equal(t, "cd", lines[1].Text())
	require.Equal(t, "e", lines[2].Text())
}
