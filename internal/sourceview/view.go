package sourceview

import (
	"fmt"
	"sort"
)

// NotAsciiError is returned by New when the input is not 7-bit ASCII.
type NotAsciiError struct {
	ByteOffset        int
	PrecedingLinePrefix string
}

func (e *NotAsciiError) Error() string {
	return fmt.Sprintf("cannot decode input file: non-ASCII byte at offset %d", e.ByteOffset)
}

// View is a validated, immutable 7-bit ASCII source buffer. It owns the
// byte slice and a line-start index used to answer row/column queries in
// O(log n) without rescanning from the start.
type View struct {
	name       string
	bytes      []byte
	lineStarts []int // byteOffset of the first byte of each line; lineStarts[0] == 0
}

// New validates that src is entirely 7-bit ASCII and builds a View over it.
// LF and CRLF line endings are both accepted; CR is treated as an ordinary
// character (not a line separator) except when immediately followed by LF.
func New(name string, src []byte) (*View, error) {
	for i, b := range src {
		if b > 0x7f {
			return nil, &NotAsciiError{ByteOffset: i, PrecedingLinePrefix: precedingLinePrefix(src, i)}
		}
	}
	v := &View{name: name, bytes: src, lineStarts: []int{0}}
	for i, b := range src {
		if b == '\n' {
			v.lineStarts = append(v.lineStarts, i+1)
		}
	}
	return v, nil
}

func precedingLinePrefix(src []byte, offset int) string {
	start := offset
	for start > 0 && src[start-1] != '\n' {
		start--
	}
	return string(src[start:offset])
}

// Name returns the display name of the source (typically a file path).
func (v *View) Name() string { return v.name }

// Len returns the number of bytes in the source.
func (v *View) Len() int { return len(v.bytes) }

// Bytes returns the raw source bytes. Callers must not mutate the result.
func (v *View) Bytes() []byte { return v.bytes }

// Line returns the content of the 1-based line n, without its terminator.
func (v *View) Line(n int) string {
	if n < 1 || n > len(v.lineStarts) {
		return ""
	}
	start := v.lineStarts[n-1]
	end := len(v.bytes)
	if n < len(v.lineStarts) {
		end = v.lineStarts[n] - 1 // exclude the \n
	}
	if end > start && v.bytes[end-1] == '\r' {
		end--
	}
	return string(v.bytes[start:end])
}

// LineCount returns the number of lines in the source.
func (v *View) LineCount() int { return len(v.lineStarts) }

func (v *View) rowColAt(offset int) (row, col int) {
	// lineStarts is sorted ascending; find the last start <= offset.
	i := sort.Search(len(v.lineStarts), func(i int) bool { return v.lineStarts[i] > offset })
	row = i // i is 1-based line index already since lineStarts[0]==0 maps to row 1
	return row, offset - v.lineStarts[i-1] + 1
}

// Begin returns the Position of the first character in the source.
func (v *View) Begin() Position {
	if len(v.bytes) == 0 {
		return v.End()
	}
	return Position{view: v, byteOffset: 0, row: 1, col: 1}
}

// End returns the one-past-the-end Position (never Valid).
func (v *View) End() Position {
	row, col := v.rowColAt(len(v.bytes))
	return Position{view: v, byteOffset: len(v.bytes), row: row, col: col}
}

// At returns the Position for a given byte offset.
func (v *View) At(offset int) Position {
	row, col := v.rowColAt(offset)
	return Position{view: v, byteOffset: offset, row: row, col: col}
}

// PeekExactly returns the Span of exactly n characters starting at p, or
// false if fewer than n characters remain.
func (v *View) PeekExactly(p Position, n int) (Span, bool) {
	if n <= 0 || p.byteOffset+n > len(v.bytes) {
		return Span{}, false
	}
	end := v.At(p.byteOffset + n - 1)
	return NewSpan(p, end), true
}

// PeekAtMost returns the longest available prefix Span of up to n
// characters starting at p, or false if no characters remain.
func (v *View) PeekAtMost(p Position, n int) (Span, bool) {
	remaining := len(v.bytes) - p.byteOffset
	if remaining <= 0 || n <= 0 {
		return Span{}, false
	}
	if n > remaining {
		n = remaining
	}
	end := v.At(p.byteOffset + n - 1)
	return NewSpan(p, end), true
}

// Matches reports whether the characters starting at p equal s exactly.
// The empty string always matches.
func (v *View) Matches(p Position, s string) bool {
	if len(s) == 0 {
		return true
	}
	end := p.byteOffset + len(s)
	if end > len(v.bytes) {
		return false
	}
	return string(v.bytes[p.byteOffset:end]) == s
}
