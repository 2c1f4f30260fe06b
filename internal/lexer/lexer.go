// Package lexer turns a validated ASCII sourceview.View into a stream of
// spanned tokens via longest-match rules, recovering from unexpected
// characters by skipping one byte and continuing.
package lexer

import (
	"github.com/mjc-lang/minijavac/internal/sourceview"
	"github.com/mjc-lang/minijavac/internal/symbol"
	"github.com/mjc-lang/minijavac/internal/token"
)

// SpannedError pairs a lexical Error with the span of the offending text.
type SpannedError struct {
	Span sourceview.Span
	Err  *Error
}

func (e *SpannedError) Error() string { return e.Err.Error() }

// Lexer produces one token.Spanned (or *SpannedError) per call to Next,
// in source order, until the underlying view is exhausted.
type Lexer struct {
	view *sourceview.View
	syms *symbol.Table
	pos  sourceview.Position
}

// New returns a Lexer reading from view and interning into syms.
func New(view *sourceview.View, syms *symbol.Table) *Lexer {
	return &Lexer{view: view, syms: syms, pos: view.Begin()}
}

// Done reports whether the lexer has reached the end of the source.
func (l *Lexer) Done() bool { return !l.pos.Valid() }

// Next returns the next token (including whitespace and comments), or an
// error if the character stream cannot be lexed at the current position.
// On error the lexer has already advanced past the offending character,
// so calling Next again resumes the scan.
func (l *Lexer) Next() (token.Spanned, error) {
	start := l.pos
	c := start.Char()

	switch {
	case isSpace(c):
		return l.lexWhitespace(start), nil
	case c == '/' && l.view.Matches(start, "/*"):
		return l.lexComment(start)
	case isIdentStart(c):
		return l.lexIdentifierOrKeyword(start), nil
	case isDigit(c):
		return l.lexInteger(start), nil
	default:
		return l.lexOperatorOrError(start)
	}
}

func (l *Lexer) advance() { l.pos, _ = l.pos.Next() }

func (l *Lexer) lexWhitespace(start sourceview.Position) token.Spanned {
	for l.pos.Valid() && isSpace(l.pos.Char()) {
		l.advance()
	}
	span := sourceview.NewSpan(start, prevOf(l.pos))
	return sourceview.NewSpanned(span, token.Token{Kind: token.KindWhitespace})
}

func (l *Lexer) lexComment(start sourceview.Position) (token.Spanned, error) {
	l.advance() // '/'
	l.advance() // '*'
	for {
		if !l.pos.Valid() {
			end := prevOf(l.pos)
			return token.Spanned{}, &SpannedError{
				Span: sourceview.NewSpan(start, end),
				Err:  &Error{Kind: UnterminatedComment},
			}
		}
		if l.view.Matches(l.pos, "*/") {
			l.advance()
			l.advance()
			break
		}
		l.advance()
	}
	span := sourceview.NewSpan(start, prevOf(l.pos))
	sym := l.syms.Intern(span.Text())
	return sourceview.NewSpanned(span, token.Token{Kind: token.KindComment, Text: sym}), nil
}

func (l *Lexer) lexIdentifierOrKeyword(start sourceview.Position) token.Spanned {
	for l.pos.Valid() && isIdentContinue(l.pos.Char()) {
		l.advance()
	}
	span := sourceview.NewSpan(start, prevOf(l.pos))
	text := span.Text()
	if kind, ok := token.LookupKeyword(text); ok {
		return sourceview.NewSpanned(span, token.Token{Kind: kind})
	}
	sym := l.syms.Intern(text)
	return sourceview.NewSpanned(span, token.Token{Kind: token.KindIdentifier, Text: sym})
}

// lexInteger accepts "0" or "[1-9][0-9]*"; a lone "0" followed by more
// digits lexes only the "0" (so "007" is "0" "0" "7"), matching the
// grammar's "0 | [1-9][0-9]*" rule.
func (l *Lexer) lexInteger(start sourceview.Position) token.Spanned {
	if start.Char() == '0' {
		l.advance()
	} else {
		for l.pos.Valid() && isDigit(l.pos.Char()) {
			l.advance()
		}
	}
	span := sourceview.NewSpan(start, prevOf(l.pos))
	sym := l.syms.Intern(span.Text())
	return sourceview.NewSpanned(span, token.Token{Kind: token.KindIntegerLiteral, Text: sym})
}

func (l *Lexer) lexOperatorOrError(start sourceview.Position) (token.Spanned, error) {
	for _, op := range token.Operators() {
		if l.view.Matches(start, op.Spelling) {
			for range op.Spelling {
				l.advance()
			}
			span := sourceview.NewSpan(start, prevOf(l.pos))
			return sourceview.NewSpanned(span, token.Token{Kind: op.Kind}), nil
		}
	}
	l.advance()
	span := sourceview.SingleChar(start)
	return token.Spanned{}, &SpannedError{
		Span: span,
		Err:  &Error{Kind: UnexpectedCharacter, Char: start.Char()},
	}
}

// prevOf returns the position immediately before p, used to close off a
// span at the last character actually consumed.
func prevOf(p sourceview.Position) sourceview.Position {
	prev, ok := p.Prev()
	if !ok {
		return p
	}
	return prev
}

func isSpace(c byte) bool      { return c == ' ' || c == '\t' || c == '\r' || c == '\n' }
func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool { return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isIdentContinue(c byte) bool { return isIdentStart(c) || isDigit(c) }
