package parser

import (
	"ea/src/ast"
	"ea/src/token"
)

// maxRecoveryIterations bounds the non-progress guard: if the parser's
// position hasn't advanced for this many consecutive recovery loops, it
// force-advances one token.
const maxRecoveryIterations = 5

func (p *Parser) parseBlockStmt() *ast.BlockStmt {
	span := p.cur().Span
	p.expect(token.LBRACE)
	b := &ast.BlockStmt{StmtBase: ast.NewStmtBase(span)}
	for !p.at(token.RBRACE) && !p.atEOF() {
		startPos := p.pos
		s := p.parseStmt()
		if s != nil {
			b.Stmts = append(b.Stmts, s)
		}
		if p.pos == startPos {
			p.recoverToStmtBoundary()
		}
	}
	p.expect(token.RBRACE)
	return b
}

// recoverToStmtBoundary implements the parser's recovery mode: it
// advances to the next statement boundary (`;`, `}`, or a top-level
// keyword), guarded against non-progress by maxRecoveryIterations.
func (p *Parser) recoverToStmtBoundary() {
	iterations := 0
	lastPos := p.pos
	for !p.atEOF() {
		switch p.cur().Kind {
		case token.SEMI:
			p.advance()
			return
		case token.RBRACE, token.FUNC, token.STRUCT, token.IMPORT:
			return
		}
		p.advance()
		if p.pos == lastPos {
			iterations++
		} else {
			iterations = 0
		}
		lastPos = p.pos
		if iterations >= maxRecoveryIterations {
			// Force past the token that's stalling recovery.
			p.advance()
			return
		}
	}
}

func (p *Parser) parseStmt() ast.Stmt {
	switch p.cur().Kind {
	case token.LET:
		return p.parseLetStmt()
	case token.RETURN:
		return p.parseReturnStmt()
	case token.IF:
		return p.parseIfStmt()
	case token.WHILE:
		return p.parseWhileStmt()
	case token.FOR:
		return p.parseForStmt()
	case token.LBRACE:
		return p.parseBlockStmt()
	default:
		return p.parseSimpleStmt()
	}
}

func (p *Parser) parseReturnStmt() ast.Stmt {
	span := p.cur().Span
	p.advance() // return
	var val ast.Expr
	if !p.at(token.SEMI) {
		val = p.parseExpr(precAssign)
	}
	p.expect(token.SEMI)
	return &ast.ReturnStmt{StmtBase: ast.NewStmtBase(span), Value: val}
}

func (p *Parser) parseIfStmt() ast.Stmt {
	span := p.cur().Span
	p.advance() // if
	p.expect(token.LPAREN)
	cond := p.parseExpr(precAssign)
	p.expect(token.RPAREN)
	then := p.parseBlockStmt()
	var els *ast.BlockStmt
	if p.at(token.ELSE) {
		p.advance()
		if p.at(token.IF) {
			// `else if` is sugar for an else-block containing a single if
			// statement, keeping IfStmt's shape binary (then/else only).
			inner := p.parseIfStmt()
			els = &ast.BlockStmt{StmtBase: ast.NewStmtBase(inner.Span()), Stmts: []ast.Stmt{inner}}
		} else {
			els = p.parseBlockStmt()
		}
	}
	return &ast.IfStmt{StmtBase: ast.NewStmtBase(span), Cond: cond, Then: then, Else: els}
}

func (p *Parser) parseWhileStmt() ast.Stmt {
	span := p.cur().Span
	p.advance() // while
	p.expect(token.LPAREN)
	cond := p.parseExpr(precAssign)
	p.expect(token.RPAREN)
	body := p.parseBlockStmt()
	return &ast.WhileStmt{StmtBase: ast.NewStmtBase(span), Cond: cond, Body: body}
}

func (p *Parser) parseForStmt() ast.Stmt {
	span := p.cur().Span
	p.advance() // for
	p.expect(token.LPAREN)

	var init ast.Stmt
	if !p.at(token.SEMI) {
		init = p.parseSimpleStmt()
	} else {
		p.advance()
	}

	var cond ast.Expr
	if !p.at(token.SEMI) {
		cond = p.parseExpr(precAssign)
	}
	p.expect(token.SEMI)

	var step ast.Stmt
	if !p.at(token.RPAREN) {
		step = p.parseSimpleStmtNoSemi()
	}
	p.expect(token.RPAREN)

	body := p.parseBlockStmt()
	return &ast.ForStmt{StmtBase: ast.NewStmtBase(span), Init: init, Cond: cond, Step: step, Body: body}
}

// parseSimpleStmt parses an assignment or expression statement terminated
// by `;` — the statement forms legal standalone or as a for-loop's init
// clause.
func (p *Parser) parseSimpleStmt() ast.Stmt {
	s := p.parseSimpleStmtNoSemi()
	p.expect(token.SEMI)
	return s
}

// parseSimpleStmtNoSemi parses an assignment or expression statement
// without consuming a trailing `;`, for use as a for-loop step clause.
func (p *Parser) parseSimpleStmtNoSemi() ast.Stmt {
	span := p.cur().Span
	e := p.parseExpr(precAssign)
	if p.at(token.ASSIGN) {
		p.advance()
		val := p.parseExpr(precAssign)
		return &ast.AssignStmt{StmtBase: ast.NewStmtBase(span), Target: e, Value: val}
	}
	return &ast.ExprStmt{StmtBase: ast.NewStmtBase(span), X: e}
}
