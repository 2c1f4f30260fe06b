package lexer_test

import (
	"testing"

	"github.com/mjc-lang/minijavac/internal/lexer"
	"github.com/mjc-lang/minijavac/internal/sourceview"
	"github.com/mjc-lang/minijavac/internal/symbol"
	"github.com/mjc-lang/minijavac/internal/testing/require"
	"github.com/mjc-lang/minijavac/internal/token"
)

func lexAll(t *testing.T, src string) ([]token.Spanned, *symbol.Table) {
	t.Helper()
	v, err := sourceview.New("t.java", []byte(src))
	require.NoError(t, err)
	syms := symbol.NewTable()
	toks, err := lexer.All(lexer.New(v, syms))
	require.NoError(t, err)
	return toks, syms
}

func TestScenarioOneMainMethod(t *testing.T) {
	toks, syms := lexAll(t, "class A { public static void main(String[] a) {} }")

	var got []string
	for _, tok := range toks {
		got = append(got, tok.Value.CanonicalText(syms))
	}

	want := []string{
		"class", "identifier A", "{", "public", "static", "void", "identifier main",
		"(", "identifier String", "[", "]", "identifier a", ")", "{", "}", "}", "EOF",
	}
	require.Equal(t, len(want), len(got))
	for i := range want {
		require.Equal(t, want[i], got[i])
	}
}

func TestIntegerLiteralsLeadingZero(t *testing.T) {
	toks, syms := lexAll(t, "007")
	// "0" "0" "7" then EOF
	require.Equal(t, 4, len(toks))
	require.Equal(t, "0", syms.Text(toks[0].Value.Text))
	require.Equal(t, "0", syms.Text(toks[1].Value.Text))
	require.Equal(t, "7", syms.Text(toks[2].Value.Text))
}

func TestUnterminatedCommentErrors(t *testing.T) {
	v, err := sourceview.New("t.java", []byte("/* never closed"))
	require.NoError(t, err)
	_, err = lexer.All(lexer.New(v, symbol.NewTable()))
	require.Error(t, err)
	var se *lexer.SpannedError
	require.True(t, asSpannedError(err, &se))
	require.Equal(t, lexer.UnterminatedComment, se.Err.Kind)
}

func TestUnexpectedCharacterRecovers(t *testing.T) {
	v, err := sourceview.New("t.java", []byte("a $ b"))
	require.NoError(t, err)
	_, err = lexer.All(lexer.New(v, symbol.NewTable()))
	require.Error(t, err)
	var se *lexer.SpannedError
	require.True(t, asSpannedError(err, &se))
	require.Equal(t, lexer.UnexpectedCharacter, se.Err.Kind)
	require.Equal(t, byte('$'), se.Err.Char)

	// Calling Next past the error resumes the scan after the '$'.
	lx := lexer.New(v, symbol.NewTable())
	var kinds []token.Kind
	for !lx.Done() {
		tok, err := lx.Next()
		if err == nil {
			kinds = append(kinds, tok.Value.Kind)
		}
	}
	require.Equal(t, []token.Kind{token.KindIdentifier, token.KindWhitespace, token.KindWhitespace, token.KindIdentifier}, kinds)
}

func asSpannedError(err error, target **lexer.SpannedError) bool {
	if se, ok := err.(*lexer.SpannedError); ok {
		*target = se
		return true
	}
	return false
}
