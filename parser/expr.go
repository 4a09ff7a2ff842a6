package parser

import (
	"github.com/thsl-lang/thslc/ast"
	"github.com/thsl-lang/thslc/token"
)

// The 14-level precedence cascade from spec.md §4.4, mirroring the
// teacher's one-function-per-level chain (expression -> assignment ->
// ... -> primary), lowest precedence first:
//
//  14 assignment (right-assoc)      -> assignment
//  13 ternary (reserved)            -> ternary
//  12 logical or                    -> logicalOr
//  11 logical and                   -> logicalAnd
//  10 bitwise or                    -> bitwiseOr
//   9 bitwise xor                   -> bitwiseXor
//   8 bitwise and                   -> bitwiseAnd
//   7 equality                      -> equality
//   6 comparison                    -> comparison
//   5 shift                         -> shift
//   4 additive                      -> additive
//   3 multiplicative                -> multiplicative
//   2 unary / cast                  -> unary
//   1 postfix / primary             -> postfix / primary

func (p *Parser) expression() ast.Expr {
	return p.assignment()
}

func (p *Parser) isAssignOp() (ast.AssignOp, bool) {
	switch p.peek().Kind {
	case token.Assign:
		return ast.AssignSet, true
	case token.AddAssign:
		return ast.AssignAdd, true
	case token.SubAssign:
		return ast.AssignSub, true
	case token.MulAssign:
		return ast.AssignMul, true
	case token.DivAssign:
		return ast.AssignDiv, true
	}
	return 0, false
}

func (p *Parser) assignment() ast.Expr {
	left := p.ternary()
	if op, ok := p.isAssignOp(); ok {
		pos := p.pos()
		p.advance()
		right := p.assignment() // right-associative
		return &ast.AssignExpr{Position: pos, Op: op, Target: left, Value: right}
	}
	return left
}

func (p *Parser) ternary() ast.Expr {
	cond := p.logicalOr()
	if p.check(token.Question) {
		pos := p.pos()
		p.advance()
		then := p.expression()
		p.expect(token.Colon, ":")
		els := p.ternary()
		return &ast.CondExpr{Position: pos, Cond: cond, Then: then, Else: els}
	}
	return cond
}

func (p *Parser) logicalOr() ast.Expr {
	left := p.logicalAnd()
	for p.check(token.LogicalOr) {
		pos := p.pos()
		p.advance()
		right := p.logicalAnd()
		left = &ast.BinaryExpr{Position: pos, Op: ast.OpLogicalOr, Left: left, Right: right}
	}
	return left
}

func (p *Parser) logicalAnd() ast.Expr {
	left := p.bitwiseOr()
	for p.check(token.LogicalAnd) {
		pos := p.pos()
		p.advance()
		right := p.bitwiseOr()
		left = &ast.BinaryExpr{Position: pos, Op: ast.OpLogicalAnd, Left: left, Right: right}
	}
	return left
}

func (p *Parser) bitwiseOr() ast.Expr {
	left := p.bitwiseXor()
	for p.check(token.BitOr) {
		pos := p.pos()
		p.advance()
		right := p.bitwiseXor()
		left = &ast.BinaryExpr{Position: pos, Op: ast.OpBitOr, Left: left, Right: right}
	}
	return left
}

func (p *Parser) bitwiseXor() ast.Expr {
	left := p.bitwiseAnd()
	for p.check(token.BitXor) {
		pos := p.pos()
		p.advance()
		right := p.bitwiseAnd()
		left = &ast.BinaryExpr{Position: pos, Op: ast.OpBitXor, Left: left, Right: right}
	}
	return left
}

func (p *Parser) bitwiseAnd() ast.Expr {
	left := p.equality()
	for p.check(token.BitAnd) {
		pos := p.pos()
		p.advance()
		right := p.equality()
		left = &ast.BinaryExpr{Position: pos, Op: ast.OpBitAnd, Left: left, Right: right}
	}
	return left
}

func (p *Parser) equality() ast.Expr {
	left := p.comparison()
	for p.check(token.Equal) || p.check(token.NotEqual) {
		pos := p.pos()
		op := ast.OpEq
		if p.peek().Kind == token.NotEqual {
			op = ast.OpNe
		}
		p.advance()
		right := p.comparison()
		left = &ast.BinaryExpr{Position: pos, Op: op, Left: left, Right: right}
	}
	return left
}

func (p *Parser) comparison() ast.Expr {
	left := p.shift()
	for {
		var op ast.BinaryOp
		switch p.peek().Kind {
		case token.Less:
			op = ast.OpLt
		case token.LessEqual:
			op = ast.OpLe
		case token.Greater:
			op = ast.OpGt
		case token.GreaterEqual:
			op = ast.OpGe
		default:
			return left
		}
		pos := p.pos()
		p.advance()
		right := p.shift()
		left = &ast.BinaryExpr{Position: pos, Op: op, Left: left, Right: right}
	}
}

func (p *Parser) shift() ast.Expr {
	left := p.additive()
	for {
		var op ast.BinaryOp
		switch p.peek().Kind {
		case token.ShiftLeft:
			op = ast.OpShl
		case token.ShiftRight:
			op = ast.OpShr
		default:
			return left
		}
		pos := p.pos()
		p.advance()
		right := p.additive()
		left = &ast.BinaryExpr{Position: pos, Op: op, Left: left, Right: right}
	}
}

func (p *Parser) additive() ast.Expr {
	left := p.multiplicative()
	for {
		var op ast.BinaryOp
		switch p.peek().Kind {
		case token.Plus:
			op = ast.OpAdd
		case token.Minus:
			op = ast.OpSub
		default:
			return left
		}
		pos := p.pos()
		p.advance()
		right := p.multiplicative()
		left = &ast.BinaryExpr{Position: pos, Op: op, Left: left, Right: right}
	}
}

func (p *Parser) multiplicative() ast.Expr {
	left := p.unary()
	for {
		var op ast.BinaryOp
		switch p.peek().Kind {
		case token.Star:
			op = ast.OpMul
		case token.Slash:
			op = ast.OpDiv
		default:
			return left
		}
		pos := p.pos()
		p.advance()
		right := p.unary()
		left = &ast.BinaryExpr{Position: pos, Op: op, Left: left, Right: right}
	}
}

func (p *Parser) unary() ast.Expr {
	pos := p.pos()
	switch p.peek().Kind {
	case token.LogicalNot:
		p.advance()
		return &ast.UnaryExpr{Position: pos, Op: ast.UnaryNot, X: p.unary()}
	case token.BitNot:
		p.advance()
		return &ast.UnaryExpr{Position: pos, Op: ast.UnaryBitNot, X: p.unary()}
	case token.Increment:
		p.advance()
		return &ast.UnaryExpr{Position: pos, Op: ast.UnaryPreInc, X: p.unary()}
	case token.Decrement:
		p.advance()
		return &ast.UnaryExpr{Position: pos, Op: ast.UnaryPreDec, X: p.unary()}
	case token.Minus:
		p.advance()
		return &ast.UnaryExpr{Position: pos, Op: ast.UnaryNeg, X: p.unary()}
	case token.LParen:
		if p.isCastAhead() {
			p.advance()
			ty := p.typeSpec()
			p.expect(token.RParen, ")")
			return &ast.CastExpr{Position: pos, Type: ty, X: p.unary()}
		}
	}
	return p.postfix()
}

// isCastAhead reports whether the current '(' opens a C-style cast
// `(TYPE)` rather than a parenthesized sub-expression: true only when
// the token after '(' is a type keyword and the token after that is ')'.
func (p *Parser) isCastAhead() bool {
	switch p.peekAt(1).Kind {
	case token.KwVoid, token.KwBool, token.KwInt, token.KwUint, token.KwFloat, token.KwDouble, token.KwVec, token.KwMat:
		return p.peekAt(2).Kind == token.RParen
	}
	return false
}

func (p *Parser) postfix() ast.Expr {
	expr := p.primary()
	for {
		pos := p.pos()
		switch {
		case p.match(token.LBracket):
			idx := p.expression()
			p.expect(token.RBracket, "]")
			expr = &ast.IndexExpr{Position: pos, Base: expr, Index: idx}
		case p.match(token.Dot):
			name := p.expect(token.Ident, "member name").Lexeme
			expr = &ast.MemberExpr{Position: pos, Base: expr, Name: name}
		case p.match(token.Increment):
			expr = &ast.PostfixExpr{Position: pos, Op: ast.UnaryPreInc, X: expr}
		case p.match(token.Decrement):
			expr = &ast.PostfixExpr{Position: pos, Op: ast.UnaryPreDec, X: expr}
		default:
			return expr
		}
	}
}

func (p *Parser) primary() ast.Expr {
	t := p.peek()
	pos := p.pos()
	switch t.Kind {
	case token.Value:
		p.advance()
		if t.NumKind == token.NumFloat {
			return &ast.FloatLit{Position: pos, Value: t.FloatValue}
		}
		return &ast.IntLit{Position: pos, Value: t.IntValue, Signed: t.Signed}
	case token.LParen:
		p.advance()
		inner := p.expression()
		p.expect(token.RParen, ")")
		return inner
	case token.KwVec, token.KwMat, token.KwInt, token.KwUint, token.KwFloat, token.KwDouble, token.KwBool:
		ty := p.typeSpec()
		p.expect(token.LParen, "(")
		args := p.argList()
		return &ast.ConstructExpr{Position: pos, Type: ty, Args: args}
	case token.Ident:
		p.advance()
		if t.Lexeme == "true" || t.Lexeme == "false" {
			return &ast.BoolLit{Position: pos, Value: t.Lexeme == "true"}
		}
		if p.check(token.LParen) {
			p.advance()
			args := p.argList()
			return &ast.CallExpr{Position: pos, Callee: t.Lexeme, Args: args}
		}
		return &ast.Ident{Position: pos, Name: t.Lexeme}
	default:
		p.errAt(t, "unexpected token %q in expression", t.Lexeme)
		p.advance()
		return &ast.Ident{Position: pos, Name: "<error>"}
	}
}

func (p *Parser) argList() []ast.Expr {
	var args []ast.Expr
	for !p.check(token.RParen) && !p.isAtEnd() {
		args = append(args, p.expression())
		if !p.match(token.Comma) {
			break
		}
	}
	p.expect(token.RParen, ")")
	return args
}
