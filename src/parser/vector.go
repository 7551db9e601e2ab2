package parser

import (
	"ea/src/ast"
	"ea/src/diag"
	"ea/src/token"
)

// parseVectorLiteral parses `[e0, e1, ..., en]TYPE`. The lane count
// must equal the number of values; a mismatch is a ParseError, not a
// TypeError, because the suffix is part of the literal's syntax.
func (p *Parser) parseVectorLiteral() ast.Expr {
	span := p.cur().Span
	p.expect(token.LBRACKET)
	var values []ast.Expr
	for !p.at(token.RBRACKET) && !p.atEOF() {
		values = append(values, p.parseExpr(precAssign))
		if p.at(token.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RBRACKET)

	typTok := p.expect(token.VECTOR_TYPE)
	vt, ok := token.IsVectorTypeName(typTok.Text)
	if !ok {
		p.errAt(diag.LexInvalidVectorSuffix, typTok.Span, "%q is not one of the 32 legal vector type spellings", typTok.Text)
	}
	if ok && vt.Lanes != len(values) {
		p.errAt(diag.ParseVectorLaneMismatch, span,
			"vector literal has %d value(s) but type %s declares %d lane(s)", len(values), vt, vt.Lanes)
	}
	return &ast.VectorLit{ExprBase: ast.NewExprBase(span), Values: values, VecTyp: vt}
}
