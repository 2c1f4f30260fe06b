// Package sourceview provides a validated ASCII source buffer with
// position-tracked iteration, used to build spans for every later stage
// of the pipeline.
package sourceview

import "fmt"

// Position is a single character location inside a View. Positions with
// equal ByteOffset in the same View always compare equal.
type Position struct {
	view       *View
	byteOffset int
	row        int // 1-based
	col        int // 1-based, in bytes (tabs are not expanded here)
}

// ByteOffset returns the 0-based byte offset of this position in the source.
func (p Position) ByteOffset() int { return p.byteOffset }

// Row returns the 1-based source row.
func (p Position) Row() int { return p.row }

// Col returns the 1-based source column, counted in bytes.
func (p Position) Col() int { return p.col }

// Char returns the byte at this position. Valid only if Valid() is true.
func (p Position) Char() byte { return p.view.bytes[p.byteOffset] }

// View returns the View this position belongs to.
func (p Position) View() *View { return p.view }

// Valid reports whether this position addresses a real character (as
// opposed to the one-past-the-end EOF position).
func (p Position) Valid() bool { return p.byteOffset < len(p.view.bytes) }

// Equal reports whether two positions refer to the same offset in the same View.
func (p Position) Equal(o Position) bool {
	return p.view == o.view && p.byteOffset == o.byteOffset
}

// Next returns the position immediately following p, and true if it exists.
func (p Position) Next() (Position, bool) {
	if p.byteOffset+1 > len(p.view.bytes) {
		return Position{}, false
	}
	n := p
	n.byteOffset++
	if p.Valid() && p.Char() == '\n' {
		n.row = p.row + 1
		n.col = 1
	} else {
		n.col = p.col + 1
	}
	return n, true
}

// Prev returns the position immediately preceding p, and true if it exists.
//
// Prev finds its row and column by a binary search of the View's
// line-start index (O(log n) in the number of lines); it never re-scans
// the whole buffer.
func (p Position) Prev() (Position, bool) {
	if p.byteOffset == 0 {
		return Position{}, false
	}
	prevOffset := p.byteOffset - 1
	row, col := p.view.rowColAt(prevOffset)
	return Position{view: p.view, byteOffset: prevOffset, row: row, col: col}, true
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.row, p.col)
}
