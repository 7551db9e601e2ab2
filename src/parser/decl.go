package parser

import (
	"ea/src/ast"
	"ea/src/diag"
	"ea/src/token"
)

// parseFuncDecl parses `func name(p1: T1, ...) -> Tr { body }`.
func (p *Parser) parseFuncDecl() ast.Stmt {
	span := p.cur().Span
	p.advance() // func
	name := p.expect(token.IDENT).Text
	p.expect(token.LPAREN)
	var params []ast.Param
	for !p.at(token.RPAREN) && !p.atEOF() {
		pname := p.expect(token.IDENT).Text
		p.expect(token.COLON)
		ptyp := p.parseType()
		params = append(params, ast.Param{Name: pname, Typ: ptyp})
		if p.at(token.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RPAREN)

	var ret ast.EaType = ast.Unit{}
	if p.at(token.ARROW) {
		p.advance()
		ret = p.parseType()
	}

	body := p.parseBlockStmt()
	return &ast.FuncDecl{StmtBase: ast.NewStmtBase(span), Name: name, Params: params, Ret: ret, Body: body}
}

// parseStructDecl parses `struct name { field: T, ... }`.
func (p *Parser) parseStructDecl() ast.Stmt {
	span := p.cur().Span
	p.advance() // struct
	name := p.expect(token.IDENT).Text
	p.expect(token.LBRACE)
	var fields []ast.StructField
	for !p.at(token.RBRACE) && !p.atEOF() {
		fname := p.expect(token.IDENT).Text
		p.expect(token.COLON)
		ftyp := p.parseType()
		fields = append(fields, ast.StructField{Name: fname, Typ: ftyp})
		if p.at(token.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RBRACE)
	return &ast.StructDecl{StmtBase: ast.NewStmtBase(span), Name: name, Fields: fields}
}

// parseLetStmt parses `let [mut] name[: T] [= expr];`.
func (p *Parser) parseLetStmt() ast.Stmt {
	span := p.cur().Span
	p.advance() // let
	mut := false
	if p.at(token.MUT) {
		mut = true
		p.advance()
	}
	name := p.expect(token.IDENT).Text

	var typ ast.EaType
	if p.at(token.COLON) {
		p.advance()
		typ = p.parseType()
	}

	var init ast.Expr
	if p.at(token.ASSIGN) {
		p.advance()
		init = p.parseExpr(precAssign)
	}
	p.expect(token.SEMI)

	if typ == nil && init == nil {
		p.errAt(diag.ParseMalformedDecl, span, "let %q needs either a type annotation or an initializer", name)
	}

	return &ast.LetStmt{StmtBase: ast.NewStmtBase(span), Name: name, Mutable: mut, Typ: typ, Init: init}
}
