package token

// Kind enumerates the token classes the lexer produces. Keyword and
// operator spellings are fixed; Identifier and IntegerLiteral carry a
// Symbol payload on the Token itself.
type Kind uint8

const (
	KindInvalid Kind = iota

	KindIdentifier
	KindIntegerLiteral
	KindComment
	KindWhitespace

	// Keywords.
	KindClass
	KindPublic
	KindStatic
	KindVoid
	KindInt
	KindBoolean
	KindIf
	KindElse
	KindWhile
	KindReturn
	KindThis
	KindNew
	KindTrue
	KindFalse
	KindNull
	KindExtends // reserved spelling, rejected semantically (no inheritance)

	// Punctuation / operators, longest-match.
	KindLBrace
	KindRBrace
	KindLParen
	KindRParen
	KindLBracket
	KindRBracket
	KindSemicolon
	KindComma
	KindDot
	KindAssign
	KindPlus
	KindMinus
	KindStar
	KindSlash
	KindPercent
	KindLess
	KindLessEqual
	KindGreater
	KindGreaterEqual
	KindEqualEqual
	KindNotEqual
	KindNot
	KindAndAnd
	KindOrOr

	KindEOF
)

var keywords = map[string]Kind{
	"class":   KindClass,
	"public":  KindPublic,
	"static":  KindStatic,
	"void":    KindVoid,
	"int":     KindInt,
	"boolean": KindBoolean,
	"if":      KindIf,
	"else":    KindElse,
	"while":   KindWhile,
	"return":  KindReturn,
	"this":    KindThis,
	"new":     KindNew,
	"true":    KindTrue,
	"false":   KindFalse,
	"null":    KindNull,
	"extends": KindExtends,
}

// LookupKeyword returns the Kind for s if it is a keyword, and ok=true.
func LookupKeyword(s string) (Kind, bool) {
	k, ok := keywords[s]
	return k, ok
}

// operators is ordered longest-spelling-first so greedy longest-match
// lexing can walk it top to bottom.
var operators = []struct {
	spelling string
	kind     Kind
}{
	{"<=", KindLessEqual},
	{">=", KindGreaterEqual},
	{"==", KindEqualEqual},
	{"!=", KindNotEqual},
	{"&&", KindAndAnd},
	{"||", KindOrOr},
	{"{", KindLBrace},
	{"}", KindRBrace},
	{"(", KindLParen},
	{")", KindRParen},
	{"[", KindLBracket},
	{"]", KindRBracket},
	{";", KindSemicolon},
	{",", KindComma},
	{".", KindDot},
	{"=", KindAssign},
	{"+", KindPlus},
	{"-", KindMinus},
	{"*", KindStar},
	{"/", KindSlash},
	{"%", KindPercent},
	{"<", KindLess},
	{">", KindGreater},
	{"!", KindNot},
}

// Operators returns the operator table in longest-match order.
func Operators() []struct {
	Spelling string
	Kind     Kind
} {
	out := make([]struct {
		Spelling string
		Kind     Kind
	}, len(operators))
	for i, o := range operators {
		out[i] = struct {
			Spelling string
			Kind     Kind
		}{o.spelling, o.kind}
	}
	return out
}

func (k Kind) String() string {
	if s, ok := kindSpellings[k]; ok {
		return s
	}
	return "<unknown>"
}

var kindSpellings = buildSpellings()

func buildSpellings() map[Kind]string {
	m := map[Kind]string{
		KindIdentifier:     "identifier",
		KindIntegerLiteral: "integer literal",
		KindEOF:            "EOF",
	}
	for spelling, k := range keywords {
		m[k] = spelling
	}
	for _, o := range operators {
		m[o.kind] = o.spelling
	}
	return m
}
