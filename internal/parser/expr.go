package parser

import (
	"github.com/mjc-lang/minijavac/internal/ast"
	"github.com/mjc-lang/minijavac/internal/sourceview"
	"github.com/mjc-lang/minijavac/internal/token"
)

// binOpInfo gives each binary operator's precedence (higher binds
// tighter) and whether it is right-associative. Assignment is the only
// right-associative, lowest-precedence operator; everything else is
// left-associative, per the standard MiniJava grammar.
type binOpInfo struct {
	op         ast.BinaryOp
	prec       int
	rightAssoc bool
}

var binOpTable = map[token.Kind]binOpInfo{
	token.KindAssign:       {ast.OpAssign, 1, true},
	token.KindOrOr:         {ast.OpOr, 2, false},
	token.KindAndAnd:       {ast.OpAnd, 3, false},
	token.KindEqualEqual:   {ast.OpEqual, 4, false},
	token.KindNotEqual:     {ast.OpNotEqual, 4, false},
	token.KindLess:         {ast.OpLess, 5, false},
	token.KindLessEqual:    {ast.OpLessEqual, 5, false},
	token.KindGreater:      {ast.OpGreater, 5, false},
	token.KindGreaterEqual: {ast.OpGreaterEqual, 5, false},
	token.KindPlus:         {ast.OpAdd, 6, false},
	token.KindMinus:        {ast.OpSub, 6, false},
	token.KindStar:         {ast.OpMul, 7, false},
	token.KindSlash:        {ast.OpDiv, 7, false},
	token.KindPercent:      {ast.OpMod, 7, false},
}

func (p *Parser) parseExpr() (ast.ExprRef, error) {
	return p.parseBinary(1)
}

func (p *Parser) parseBinary(minPrec int) (ast.ExprRef, error) {
	left, err := p.parseUnary()
	if err != nil {
		return ast.ExprRef{}, err
	}
	for {
		info, ok := binOpTable[p.peekKind()]
		if !ok || info.prec < minPrec {
			return left, nil
		}
		p.advance()
		nextMin := info.prec + 1
		if info.rightAssoc {
			nextMin = info.prec
		}
		right, err := p.parseBinary(nextMin)
		if err != nil {
			return ast.ExprRef{}, err
		}
		span := left.Span.Merge(right.Span)
		left = sourceview.NewSpanned(span, &ast.Expr{Kind: ast.ExprBinary, BinOp: info.op, Left: left, Right: right})
	}
}

// parseUnary implements spec.md §4.3: unary "-" binds tighter than "*",
// and a leading "-" directly before a decimal literal fuses into a
// negative-int literal node rather than Unary(Neg, Int(..)), so that
// -2147483648 is representable.
func (p *Parser) parseUnary() (ast.ExprRef, error) {
	switch p.peekKind() {
	case token.KindMinus:
		minus := p.advance()
		if p.at(token.KindIntegerLiteral) {
			lit := p.advance()
			span := minus.Span.Merge(lit.Span)
			digits := "-" + p.syms.Text(lit.Value.Text)
			sym := p.syms.Intern(digits)
			return sourceview.NewSpanned(span, &ast.Expr{Kind: ast.ExprInt, IntDigits: sym}), nil
		}
		operand, err := p.parseUnary()
		if err != nil {
			return ast.ExprRef{}, err
		}
		span := minus.Span.Merge(operand.Span)
		return sourceview.NewSpanned(span, &ast.Expr{Kind: ast.ExprUnary, UnOp: ast.OpNeg, Operand: operand}), nil
	case token.KindNot:
		bang := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return ast.ExprRef{}, err
		}
		span := bang.Span.Merge(operand.Span)
		return sourceview.NewSpanned(span, &ast.Expr{Kind: ast.ExprUnary, UnOp: ast.OpNot, Operand: operand}), nil
	default:
		return p.parsePostfix()
	}
}

// parsePostfix parses: primary ('.' ident | '.' ident '(' args ')' | '[' expr ']')*
// left-associatively.
func (p *Parser) parsePostfix() (ast.ExprRef, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return ast.ExprRef{}, err
	}
	for {
		switch p.peekKind() {
		case token.KindDot:
			p.advance()
			nameTok, err := p.expect(token.KindIdentifier)
			if err != nil {
				return ast.ExprRef{}, err
			}
			name := nameTok.Value.Text
			if p.at(token.KindLParen) {
				args, end, err := p.parseArgs()
				if err != nil {
					return ast.ExprRef{}, err
				}
				span := e.Span.Merge(end)
				e = sourceview.NewSpanned(span, &ast.Expr{
					Kind: ast.ExprMethodInvocation, Receiver: e, MethodName: name, Args: args,
				})
			} else {
				span := e.Span.Merge(nameTok.Span)
				e = sourceview.NewSpanned(span, &ast.Expr{Kind: ast.ExprFieldAccess, Receiver: e, FieldName: name})
			}
		case token.KindLBracket:
			p.advance()
			idx, err := p.parseExpr()
			if err != nil {
				return ast.ExprRef{}, err
			}
			end, err := p.expect(token.KindRBracket)
			if err != nil {
				return ast.ExprRef{}, err
			}
			span := e.Span.Merge(end.Span)
			e = sourceview.NewSpanned(span, &ast.Expr{Kind: ast.ExprArrayAccess, Receiver: e, Index: idx})
		default:
			return e, nil
		}
	}
}

// parseArgs parses "(" (expr ("," expr)*)? ")" and returns the closing span.
func (p *Parser) parseArgs() ([]ast.ExprRef, sourceview.Span, error) {
	if _, err := p.expect(token.KindLParen); err != nil {
		return nil, sourceview.Span{}, err
	}
	var args []ast.ExprRef
	if !p.at(token.KindRParen) {
		for {
			e, err := p.parseExpr()
			if err != nil {
				return nil, sourceview.Span{}, err
			}
			args = append(args, e)
			if !p.at(token.KindComma) {
				break
			}
			p.advance()
		}
	}
	end, err := p.expect(token.KindRParen)
	if err != nil {
		return nil, sourceview.Span{}, err
	}
	return args, end.Span, nil
}

func (p *Parser) parsePrimary() (ast.ExprRef, error) {
	tok := p.peek()
	switch tok.Value.Kind {
	case token.KindIntegerLiteral:
		p.advance()
		return sourceview.NewSpanned(tok.Span, &ast.Expr{Kind: ast.ExprInt, IntDigits: tok.Value.Text}), nil
	case token.KindTrue:
		p.advance()
		return sourceview.NewSpanned(tok.Span, &ast.Expr{Kind: ast.ExprBool, BoolValue: true}), nil
	case token.KindFalse:
		p.advance()
		return sourceview.NewSpanned(tok.Span, &ast.Expr{Kind: ast.ExprBool, BoolValue: false}), nil
	case token.KindNull:
		p.advance()
		return sourceview.NewSpanned(tok.Span, &ast.Expr{Kind: ast.ExprNull}), nil
	case token.KindThis:
		p.advance()
		return sourceview.NewSpanned(tok.Span, &ast.Expr{Kind: ast.ExprThis}), nil
	case token.KindLParen:
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return ast.ExprRef{}, err
		}
		end, err := p.expect(token.KindRParen)
		if err != nil {
			return ast.ExprRef{}, err
		}
		return sourceview.NewSpanned(tok.Span.Merge(end.Span), e.Value), nil
	case token.KindNew:
		return p.parseNew()
	case token.KindIdentifier:
		p.advance()
		if p.at(token.KindLParen) {
			args, end, err := p.parseArgs()
			if err != nil {
				return ast.ExprRef{}, err
			}
			span := tok.Span.Merge(end)
			return sourceview.NewSpanned(span, &ast.Expr{
				Kind: ast.ExprThisMethodInvocation, MethodName: tok.Value.Text, Args: args,
			}), nil
		}
		return sourceview.NewSpanned(tok.Span, &ast.Expr{Kind: ast.ExprVar, VarName: tok.Value.Text}), nil
	default:
		return ast.ExprRef{}, &Error{
			Kind: UnexpectedToken, Expected: "an expression", Found: tok.Value.Kind, Span: tok.Span,
		}
	}
}

// parseNew handles both "new T()" (object creation) and
// "new BasicOrClass[e][][]..." (array creation, recording extra_depth as
// the count of trailing empty brackets).
func (p *Parser) parseNew() (ast.ExprRef, error) {
	start := p.peek().Span
	p.advance() // "new"

	var basic ast.Type
	switch p.peekKind() {
	case token.KindInt:
		p.advance()
		basic.Basic = ast.BasicInt
	case token.KindBoolean:
		p.advance()
		basic.Basic = ast.BasicBoolean
	case token.KindIdentifier:
		name := p.advance().Value.Text
		if p.at(token.KindLParen) {
			_, end, err := p.parseArgs()
			if err != nil {
				return ast.ExprRef{}, err
			}
			span := start.Merge(end)
			return sourceview.NewSpanned(span, &ast.Expr{Kind: ast.ExprNewObject, ClassName: name}), nil
		}
		basic.Basic = ast.BasicCustom
		basic.Custom = name
	default:
		return ast.ExprRef{}, &Error{
			Kind: UnexpectedToken, Expected: "a type after 'new'", Found: p.peekKind(), Span: p.peek().Span,
		}
	}

	if _, err := p.expect(token.KindLBracket); err != nil {
		return ast.ExprRef{}, err
	}
	size, err := p.parseExpr()
	if err != nil {
		return ast.ExprRef{}, err
	}
	end, err := p.expect(token.KindRBracket)
	if err != nil {
		return ast.ExprRef{}, err
	}
	var extra uint
	for p.at(token.KindLBracket) && p.peekAt(1).Value.Kind == token.KindRBracket {
		p.advance()
		end, _ = p.expect(token.KindRBracket)
		extra++
	}
	span := start.Merge(end.Span)
	return sourceview.NewSpanned(span, &ast.Expr{
		Kind: ast.ExprNewArray, ArrayBasic: basic, ArraySize: size, ArrayExtraDepth: extra,
	}), nil
}
