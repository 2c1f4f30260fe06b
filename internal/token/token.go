package token

import (
	"fmt"

	"github.com/mjc-lang/minijavac/internal/sourceview"
	"github.com/mjc-lang/minijavac/internal/symbol"
)

// Token is a tagged union over keyword/operator kinds, identifiers,
// integer literals, comments, whitespace, and EOF. Identifier and
// IntegerLiteral carry a Symbol; the literal's digits are stored verbatim
// as interned text, range-checking is deferred to semantic analysis.
type Token struct {
	Kind Kind
	Text symbol.Symbol // valid for KindIdentifier and KindIntegerLiteral
}

func (t Token) String() string {
	switch t.Kind {
	case KindIdentifier:
		return fmt.Sprintf("identifier <%d>", t.Text)
	case KindIntegerLiteral:
		return fmt.Sprintf("integer literal <%d>", t.Text)
	default:
		return t.Kind.String()
	}
}

// CanonicalText renders a token's canonical textual form as required by
// the --lextest CLI contract, resolving interned symbols through tbl.
func (t Token) CanonicalText(tbl *symbol.Table) string {
	switch t.Kind {
	case KindIdentifier:
		return "identifier " + tbl.Text(t.Text)
	case KindIntegerLiteral:
		return "integer literal " + tbl.Text(t.Text)
	default:
		return t.Kind.String()
	}
}

// Spanned is a Token carrying its source span.
type Spanned = sourceview.Spanned[Token]
