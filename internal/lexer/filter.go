package lexer

import (
	"github.com/mjc-lang/minijavac/internal/sourceview"
	"github.com/mjc-lang/minijavac/internal/token"
)

// TokenStream is the filtered, EOF-terminated sequence the parser
// consumes: whitespace and comments are dropped, and a synthetic EOF
// token is appended at the end so the parser never needs a separate
// "exhausted" signal.
type TokenStream struct {
	lex  *Lexer
	done bool
}

// Filter wraps lex into a TokenStream with whitespace/comments removed.
func Filter(lex *Lexer) *TokenStream { return &TokenStream{lex: lex} }

// Next returns the next non-trivia token, or a synthetic EOF once the
// source is exhausted. Returns an error (and does not advance further)
// on the first lexical error, per the lexer's single-character recovery
// policy — the caller (driver or parser front door) decides whether to
// abort.
func (s *TokenStream) Next() (token.Spanned, error) {
	if s.done {
		return s.eofToken(), nil
	}
	for !s.lex.Done() {
		tok, err := s.lex.Next()
		if err != nil {
			return token.Spanned{}, err
		}
		if tok.Value.Kind == token.KindWhitespace || tok.Value.Kind == token.KindComment {
			continue
		}
		return tok, nil
	}
	s.done = true
	return s.eofToken(), nil
}

func (s *TokenStream) eofToken() token.Spanned {
	end := s.lex.view.End()
	at := end
	if p, ok := end.Prev(); ok {
		at = p
	}
	return sourceview.NewSpanned(sourceview.SingleChar(at), token.Token{Kind: token.KindEOF})
}

// All drains the stream into a slice, stopping at the first error. Useful
// for --lextest and tests; the parser itself pulls tokens one at a time.
func All(lex *Lexer) ([]token.Spanned, error) {
	s := Filter(lex)
	var out []token.Spanned
	for {
		tok, err := s.Next()
		if err != nil {
			return out, err
		}
		out = append(out, tok)
		if tok.Value.Kind == token.KindEOF {
			return out, nil
		}
	}
}
