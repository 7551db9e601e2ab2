package parser

import (
	"ea/src/ast"
	"ea/src/diag"
	"ea/src/token"
)

// parseType parses a type annotation: a primitive, stdlib, vector, or
// custom (identifier) type name, optionally an array `[T; N]`.
func (p *Parser) parseType() ast.EaType {
	if p.at(token.LBRACKET) {
		return p.parseArrayType()
	}
	t := p.cur()
	switch t.Kind {
	case token.I8, token.I16, token.I32, token.I64, token.U8, token.U16, token.U32, token.U64,
		token.F32, token.F64, token.BOOL_TYPE, token.STRING_TYPE:
		p.advance()
		return ast.Primitive{Kind: t.Kind}
	case token.VECTOR_TYPE:
		p.advance()
		v, _ := token.IsVectorTypeName(t.Text)
		return ast.Vector{Elem: v.Elem, Lanes: v.Lanes}
	case token.VEC, token.HASHMAP, token.HASHSET, token.STD_STRING, token.FILE:
		p.advance()
		return ast.Custom{Name: t.Text}
	case token.IDENT:
		p.advance()
		return ast.Custom{Name: t.Text}
	case token.LPAREN:
		// `()` is the Unit type spelled like an empty tuple.
		p.advance()
		p.expect(token.RPAREN)
		return ast.Unit{}
	default:
		p.errAt(diag.ParseMalformedDecl, t.Span, "expected a type, found %s", t.Kind)
		return ast.Poison{}
	}
}

func (p *Parser) parseArrayType() ast.EaType {
	p.advance() // [
	elem := p.parseType()
	p.expect(token.SEMI)
	lenTok := p.expect(token.INT)
	n := parseIntLiteral(lenTok.Text)
	p.expect(token.RBRACKET)
	return ast.Array{Elem: elem, Len: n}
}
