package sourceview

// Span is a half-open range of source positions, inclusive of the
// character at End. A Span always covers at least one character: the
// invariant End >= Start always holds, never End < Start.
type Span struct {
	Start, End Position
}

// NewSpan builds a Span from start to end inclusive. Panics if end precedes
// start or the positions belong to different views, since no caller should
// ever construct a backwards or cross-file span.
func NewSpan(start, end Position) Span {
	if start.view != end.view {
		panic("sourceview: span across two different views")
	}
	if end.byteOffset < start.byteOffset {
		panic("sourceview: span end precedes start")
	}
	return Span{Start: start, End: end}
}

// SingleChar returns the one-character Span at p.
func SingleChar(p Position) Span { return Span{Start: p, End: p} }

// Len returns the number of characters covered by the span.
func (s Span) Len() int { return s.End.byteOffset - s.Start.byteOffset + 1 }

// Text returns the source text covered by the span.
func (s Span) Text() string {
	return string(s.Start.view.bytes[s.Start.byteOffset : s.End.byteOffset+1])
}

// Merge returns the smallest span covering both s and o. Both must belong
// to the same View.
func (s Span) Merge(o Span) Span {
	start, end := s.Start, s.End
	if o.Start.byteOffset < start.byteOffset {
		start = o.Start
	}
	if o.End.byteOffset > end.byteOffset {
		end = o.End
	}
	return Span{Start: start, End: end}
}

// Lines splits the span into one sub-span per source line it touches.
func (s Span) Lines() []Span {
	if s.Start.row == s.End.row {
		return []Span{s}
	}
	var out []Span
	cur := s.Start
	for cur.row < s.End.row {
		lineEndOffset := cur.view.lineStarts[cur.row] - 2 // last byte before \n, minus CR if present
		if lineEndOffset < cur.byteOffset {
			lineEndOffset = cur.byteOffset
		}
		lineEnd := cur.view.At(lineEndOffset)
		out = append(out, Span{Start: cur, End: lineEnd})
		next := cur.view.At(cur.view.lineStarts[cur.row])
		cur = next
	}
	out = append(out, Span{Start: cur, End: s.End})
	return out
}

// Spanned attaches a Span to a payload. Equality of two Spanned values
// (as used throughout the AST/IR) ignores the Span.
type Spanned[T any] struct {
	Span  Span
	Value T
}

// NewSpanned builds a Spanned wrapping value with the given span.
func NewSpanned[T any](span Span, value T) Spanned[T] {
	return Spanned[T]{Span: span, Value: value}
}
