package parser

import (
	"github.com/mjc-lang/minijavac/internal/ast"
	"github.com/mjc-lang/minijavac/internal/sourceview"
	"github.com/mjc-lang/minijavac/internal/token"
)

func (p *Parser) parseBlock() (ast.Spanned[*ast.Block], error) {
	start, err := p.expect(token.KindLBrace)
	if err != nil {
		return ast.Spanned[*ast.Block]{}, err
	}
	block := &ast.Block{}
	for !p.at(token.KindRBrace) {
		s, err := p.parseStatement()
		if err != nil {
			return ast.Spanned[*ast.Block]{}, err
		}
		block.Stmts = append(block.Stmts, s)
	}
	end, err := p.expect(token.KindRBrace)
	if err != nil {
		return ast.Spanned[*ast.Block]{}, err
	}
	return sourceview.NewSpanned(start.Span.Merge(end.Span), block), nil
}

func (p *Parser) parseStatement() (ast.Spanned[*ast.Stmt], error) {
	switch p.peekKind() {
	case token.KindLBrace:
		b, err := p.parseBlock()
		if err != nil {
			return ast.Spanned[*ast.Stmt]{}, err
		}
		return sourceview.NewSpanned(b.Span, &ast.Stmt{Kind: ast.StmtBlock, Block: b.Value}), nil
	case token.KindSemicolon:
		t := p.advance()
		return sourceview.NewSpanned(t.Span, &ast.Stmt{Kind: ast.StmtEmpty}), nil
	case token.KindIf:
		return p.parseIf()
	case token.KindWhile:
		return p.parseWhile()
	case token.KindReturn:
		return p.parseReturn()
	case token.KindInt, token.KindBoolean:
		return p.parseLocalDecl()
	default:
		if p.looksLikeLocalDecl() {
			return p.parseLocalDecl()
		}
		return p.parseExpressionStatement()
	}
}

// looksLikeLocalDecl disambiguates "Foo x;"/"Foo[] x;" (a declaration)
// from an identifier-led expression statement ("foo();", "foo = 1;",
// "foo.bar();"): a declaration is only possible when the current
// identifier is immediately followed by "[]"-pairs and then another
// identifier, or directly by another identifier.
func (p *Parser) looksLikeLocalDecl() bool {
	if !p.at(token.KindIdentifier) {
		return false
	}
	i := 1
	for p.peekAt(i).Value.Kind == token.KindLBracket && p.peekAt(i+1).Value.Kind == token.KindRBracket {
		i += 2
	}
	return p.peekAt(i).Value.Kind == token.KindIdentifier
}

func (p *Parser) parseLocalDecl() (ast.Spanned[*ast.Stmt], error) {
	start := p.peek().Span
	typ, err := p.parseType()
	if err != nil {
		return ast.Spanned[*ast.Stmt]{}, err
	}
	name, err := p.expectIdentifier()
	if err != nil {
		return ast.Spanned[*ast.Stmt]{}, err
	}
	stmt := &ast.Stmt{Kind: ast.StmtDecl, DeclType: typ, DeclName: name}
	if p.at(token.KindAssign) {
		p.advance()
		init, err := p.parseExpr()
		if err != nil {
			return ast.Spanned[*ast.Stmt]{}, err
		}
		stmt.DeclInit = init
		stmt.HasExpr = true
	}
	end, err := p.expect(token.KindSemicolon)
	if err != nil {
		return ast.Spanned[*ast.Stmt]{}, err
	}
	return sourceview.NewSpanned(start.Merge(end.Span), stmt), nil
}

func (p *Parser) parseIf() (ast.Spanned[*ast.Stmt], error) {
	start, _ := p.expect(token.KindIf)
	if _, err := p.expect(token.KindLParen); err != nil {
		return ast.Spanned[*ast.Stmt]{}, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return ast.Spanned[*ast.Stmt]{}, err
	}
	if _, err := p.expect(token.KindRParen); err != nil {
		return ast.Spanned[*ast.Stmt]{}, err
	}
	then, err := p.parseStatement()
	if err != nil {
		return ast.Spanned[*ast.Stmt]{}, err
	}
	stmt := &ast.Stmt{Kind: ast.StmtIf, Cond: cond, Then: then}
	end := then.Span
	if p.at(token.KindElse) {
		p.advance()
		elseStmt, err := p.parseStatement()
		if err != nil {
			return ast.Spanned[*ast.Stmt]{}, err
		}
		stmt.Else = elseStmt
		end = elseStmt.Span
	}
	return sourceview.NewSpanned(start.Span.Merge(end), stmt), nil
}

func (p *Parser) parseWhile() (ast.Spanned[*ast.Stmt], error) {
	start, _ := p.expect(token.KindWhile)
	if _, err := p.expect(token.KindLParen); err != nil {
		return ast.Spanned[*ast.Stmt]{}, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return ast.Spanned[*ast.Stmt]{}, err
	}
	if _, err := p.expect(token.KindRParen); err != nil {
		return ast.Spanned[*ast.Stmt]{}, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return ast.Spanned[*ast.Stmt]{}, err
	}
	stmt := &ast.Stmt{Kind: ast.StmtWhile, Cond: cond, Then: body}
	return sourceview.NewSpanned(start.Span.Merge(body.Span), stmt), nil
}

func (p *Parser) parseReturn() (ast.Spanned[*ast.Stmt], error) {
	start, _ := p.expect(token.KindReturn)
	stmt := &ast.Stmt{Kind: ast.StmtReturn}
	if !p.at(token.KindSemicolon) {
		e, err := p.parseExpr()
		if err != nil {
			return ast.Spanned[*ast.Stmt]{}, err
		}
		stmt.Expr = e
		stmt.HasExpr = true
	}
	end, err := p.expect(token.KindSemicolon)
	if err != nil {
		return ast.Spanned[*ast.Stmt]{}, err
	}
	return sourceview.NewSpanned(start.Span.Merge(end.Span), stmt), nil
}

func (p *Parser) parseExpressionStatement() (ast.Spanned[*ast.Stmt], error) {
	e, err := p.parseExpr()
	if err != nil {
		return ast.Spanned[*ast.Stmt]{}, err
	}
	end, err := p.expect(token.KindSemicolon)
	if err != nil {
		return ast.Spanned[*ast.Stmt]{}, err
	}
	stmt := &ast.Stmt{Kind: ast.StmtExpression, Expr: e}
	return sourceview.NewSpanned(e.Span.Merge(end.Span), stmt), nil
}
