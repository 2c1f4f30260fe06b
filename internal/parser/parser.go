// Package parser is a hand-written recursive-descent parser producing a
// spanned ast.Program from a filtered token.Spanned stream. Binary
// expressions use Pratt-style precedence climbing. Parsing returns
// (partial AST, error) on the first error and does not attempt recovery,
// per spec.md §4.3.
package parser

import (
	"github.com/mjc-lang/minijavac/internal/ast"
	"github.com/mjc-lang/minijavac/internal/sourceview"
	"github.com/mjc-lang/minijavac/internal/symbol"
	"github.com/mjc-lang/minijavac/internal/token"
)

// Parser holds a fully materialized filtered token stream plus a cursor.
// Materializing the stream up front (rather than pulling lazily) is what
// makes the Type-vs-Expression-statement lookahead in parseStatement a
// plain save/restore of an integer index instead of a token pushback
// buffer.
type Parser struct {
	toks    []token.Spanned
	pos     int
	syms    *symbol.Table
	sawMain bool
}

// Parse parses toks (as produced by lexer.All) into a Program.
func Parse(toks []token.Spanned, syms *symbol.Table) (*ast.Program, error) {
	p := &Parser{toks: toks, syms: syms}
	return p.parseProgram()
}

func (p *Parser) peek() token.Spanned   { return p.toks[p.pos] }
func (p *Parser) peekKind() token.Kind  { return p.toks[p.pos].Value.Kind }
func (p *Parser) peekAt(n int) token.Spanned {
	i := p.pos + n
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[i]
}

func (p *Parser) advance() token.Spanned {
	t := p.toks[p.pos]
	if t.Value.Kind != token.KindEOF {
		p.pos++
	}
	return t
}

func (p *Parser) at(k token.Kind) bool { return p.peekKind() == k }

func (p *Parser) expect(k token.Kind) (token.Spanned, error) {
	if p.peekKind() == token.KindEOF && k != token.KindEOF {
		return token.Spanned{}, &Error{Kind: UnexpectedEOF, Span: p.peek().Span}
	}
	if !p.at(k) {
		return token.Spanned{}, &Error{
			Kind: UnexpectedToken, Expected: k.String(), Found: p.peekKind(), Span: p.peek().Span,
		}
	}
	return p.advance(), nil
}

func (p *Parser) parseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	for !p.at(token.KindEOF) {
		cls, err := p.parseClassDecl()
		if err != nil {
			return prog, err
		}
		prog.Classes = append(prog.Classes, cls)
	}
	return prog, nil
}

func (p *Parser) parseClassDecl() (ast.Spanned[*ast.ClassDecl], error) {
	start := p.peek().Span
	if _, err := p.expect(token.KindClass); err != nil {
		return ast.Spanned[*ast.ClassDecl]{}, err
	}
	name, err := p.expectIdentifier()
	if err != nil {
		return ast.Spanned[*ast.ClassDecl]{}, err
	}
	if _, err := p.expect(token.KindLBrace); err != nil {
		return ast.Spanned[*ast.ClassDecl]{}, err
	}
	decl := &ast.ClassDecl{Name: name}
	for !p.at(token.KindRBrace) {
		m, err := p.parseMember()
		if err != nil {
			return ast.Spanned[*ast.ClassDecl]{}, err
		}
		decl.Members = append(decl.Members, m)
	}
	end, err := p.expect(token.KindRBrace)
	if err != nil {
		return ast.Spanned[*ast.ClassDecl]{}, err
	}
	return sourceview.NewSpanned(start.Merge(end.Span), decl), nil
}

func (p *Parser) expectIdentifier() (symbol.Symbol, error) {
	t, err := p.expect(token.KindIdentifier)
	if err != nil {
		return 0, err
	}
	return t.Value.Text, nil
}

// parseMember implements spec.md §4.3's member-kind decision: after
// "public", a "static" marks the (unique) main method; otherwise a
// type+name is read, and the following token ('(' vs ';') decides between
// Method and Field.
func (p *Parser) parseMember() (ast.Spanned[ast.Member], error) {
	start := p.peek().Span
	if _, err := p.expect(token.KindPublic); err != nil {
		return ast.Spanned[ast.Member]{}, err
	}
	if p.at(token.KindStatic) {
		return p.parseMainMethod(start)
	}

	typ, err := p.parseType()
	if err != nil {
		return ast.Spanned[ast.Member]{}, err
	}
	name, err := p.expectIdentifier()
	if err != nil {
		return ast.Spanned[ast.Member]{}, err
	}

	if p.at(token.KindSemicolon) {
		end, _ := p.expect(token.KindSemicolon)
		m := ast.Member{Kind: ast.MemberField, FieldType: typ, FieldName: name}
		return sourceview.NewSpanned(start.Merge(end.Span), m), nil
	}
	if p.at(token.KindLParen) {
		params, err := p.parseFormalParams()
		if err != nil {
			return ast.Spanned[ast.Member]{}, err
		}
		body, err := p.parseBlock()
		if err != nil {
			return ast.Spanned[ast.Member]{}, err
		}
		m := ast.Member{
			Kind: ast.MemberMethod, ReturnType: typ, MethodName: name,
			Params: params, Body: body,
		}
		return sourceview.NewSpanned(start.Merge(body.Span), m), nil
	}
	return ast.Spanned[ast.Member]{}, &Error{Kind: InvalidMemberDeclaration, Span: p.peek().Span}
}

func (p *Parser) parseMainMethod(start sourceview.Span) (ast.Spanned[ast.Member], error) {
	if p.sawMain {
		return ast.Spanned[ast.Member]{}, &Error{Kind: DuplicateMainMethod, Span: p.peek().Span}
	}
	p.sawMain = true
	if _, err := p.expect(token.KindStatic); err != nil {
		return ast.Spanned[ast.Member]{}, err
	}
	if _, err := p.expect(token.KindVoid); err != nil {
		return ast.Spanned[ast.Member]{}, err
	}
	name, err := p.expectIdentifier()
	if err != nil {
		return ast.Spanned[ast.Member]{}, err
	}
	if _, err := p.expect(token.KindLParen); err != nil {
		return ast.Spanned[ast.Member]{}, err
	}
	if _, err := p.expect(token.KindIdentifier); err != nil { // "String"
		return ast.Spanned[ast.Member]{}, err
	}
	if _, err := p.expect(token.KindLBracket); err != nil {
		return ast.Spanned[ast.Member]{}, err
	}
	if _, err := p.expect(token.KindRBracket); err != nil {
		return ast.Spanned[ast.Member]{}, err
	}
	paramName, err := p.expectIdentifier()
	if err != nil {
		return ast.Spanned[ast.Member]{}, err
	}
	if _, err := p.expect(token.KindRParen); err != nil {
		return ast.Spanned[ast.Member]{}, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return ast.Spanned[ast.Member]{}, err
	}
	m := ast.Member{Kind: ast.MemberMain, MethodName: name, MainParamName: paramName, Body: body}
	return sourceview.NewSpanned(start.Merge(body.Span), m), nil
}

func (p *Parser) parseFormalParams() ([]ast.Param, error) {
	if _, err := p.expect(token.KindLParen); err != nil {
		return nil, err
	}
	var params []ast.Param
	if !p.at(token.KindRParen) {
		for {
			typ, err := p.parseType()
			if err != nil {
				return nil, err
			}
			name, err := p.expectIdentifier()
			if err != nil {
				return nil, err
			}
			params = append(params, ast.Param{Type: typ, Name: name})
			if !p.at(token.KindComma) {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(token.KindRParen); err != nil {
		return nil, err
	}
	return params, nil
}

// parseType reads a BasicType or class name followed by zero or more "[]"
// pairs recording the array depth.
func (p *Parser) parseType() (ast.Type, error) {
	var t ast.Type
	switch p.peekKind() {
	case token.KindInt:
		p.advance()
		t.Basic = ast.BasicInt
	case token.KindBoolean:
		p.advance()
		t.Basic = ast.BasicBoolean
	case token.KindVoid:
		p.advance()
		t.Basic = ast.BasicVoid
	case token.KindIdentifier:
		name := p.advance().Value.Text
		t.Basic = ast.BasicCustom
		t.Custom = name
	default:
		return ast.Type{}, &Error{
			Kind: UnexpectedToken, Expected: "a type", Found: p.peekKind(), Span: p.peek().Span,
		}
	}
	for p.at(token.KindLBracket) && p.peekAt(1).Value.Kind == token.KindRBracket {
		p.advance()
		p.advance()
		t.ArrayDepth++
	}
	return t, nil
}
