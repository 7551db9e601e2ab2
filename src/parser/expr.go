package parser

import (
	"ea/src/ast"
	"ea/src/diag"
	"ea/src/token"
)

// Precedence tiers, lowest to highest. Assignment is not an
// expression-level operator in this grammar — `=` only appears in
// AssignStmt — so precAssign is simply an alias for the lowest binary tier
// and is what statement parsers pass as the starting minimum precedence.
const (
	_ = iota
	precOr
	precAnd
	precBitwise
	precEquality
	precRelational
	precShift
	precAdditive
	precMultiplicative
)

const precAssign = precOr

// binOp describes one binary operator's precedence and whether it is a
// dotted (element-wise) variant, which produces a SimdBinaryExpr node
// instead of a BinaryExpr even though it shares its scalar kin's
// precedence.
type binOp struct {
	prec   int
	dotted bool
}

var binOps = map[token.Kind]binOp{
	token.OR_OR: {precOr, false},

	token.AND_AND: {precAnd, false},

	token.PIPE:     {precBitwise, false},
	token.CARET:    {precBitwise, false},
	token.AMP:      {precBitwise, false},
	token.DOT_PIPE:  {precBitwise, true},
	token.DOT_CARET: {precBitwise, true},
	token.DOT_AMP:   {precBitwise, true},

	token.EQ:      {precEquality, false},
	token.NEQ:     {precEquality, false},
	token.DOT_EQ:  {precEquality, true},
	token.DOT_NEQ: {precEquality, true},

	token.LT:     {precRelational, false},
	token.LE:     {precRelational, false},
	token.GT:     {precRelational, false},
	token.GE:     {precRelational, false},
	token.DOT_LT: {precRelational, true},
	token.DOT_LE: {precRelational, true},
	token.DOT_GT: {precRelational, true},
	token.DOT_GE: {precRelational, true},

	token.SHL: {precShift, false},
	token.SHR: {precShift, false},

	token.PLUS:      {precAdditive, false},
	token.MINUS:     {precAdditive, false},
	token.DOT_PLUS:  {precAdditive, true},
	token.DOT_MINUS: {precAdditive, true},

	token.STAR:     {precMultiplicative, false},
	token.SLASH:    {precMultiplicative, false},
	token.PERCENT:  {precMultiplicative, false},
	token.DOT_STAR: {precMultiplicative, true},
	token.DOT_SLASH: {precMultiplicative, true},
}

// parseExpr parses a binary expression tree via precedence climbing,
// starting from a prefix (unary/postfix) operand.
func (p *Parser) parseExpr(minPrec int) ast.Expr {
	left := p.parseUnary()
	for {
		op, ok := binOps[p.cur().Kind]
		if !ok || op.prec < minPrec {
			return left
		}
		opTok := p.advance()
		right := p.parseExpr(op.prec + 1)
		if op.dotted {
			left = &ast.SimdBinaryExpr{ExprBase: ast.NewExprBase(opTok.Span), Op: opTok.Kind, Left: left, Right: right}
		} else {
			left = &ast.BinaryExpr{ExprBase: ast.NewExprBase(opTok.Span), Op: opTok.Kind, Left: left, Right: right}
		}
	}
}

func (p *Parser) parseUnary() ast.Expr {
	switch p.cur().Kind {
	case token.MINUS, token.NOT, token.AMP:
		t := p.advance()
		x := p.parseUnary()
		return &ast.UnaryExpr{ExprBase: ast.NewExprBase(t.Span), Op: t.Kind, X: x}
	default:
		return p.parsePostfix(p.parsePrimary())
	}
}

// parsePostfix wraps base with zero or more postfix operators: call,
// method call, index, field access.
func (p *Parser) parsePostfix(base ast.Expr) ast.Expr {
	for {
		switch p.cur().Kind {
		case token.LPAREN:
			base = p.finishCall(base)
		case token.LBRACKET:
			span := p.cur().Span
			p.advance()
			idx := p.parseExpr(precAssign)
			p.expect(token.RBRACKET)
			base = &ast.IndexExpr{ExprBase: ast.NewExprBase(span), Base: base, Index: idx}
		case token.DOT:
			span := p.cur().Span
			p.advance()
			name := p.expect(token.IDENT).Text
			if p.at(token.LPAREN) {
				p.advance()
				args := p.parseArgs()
				base = &ast.MethodCall{ExprBase: ast.NewExprBase(span), Receiver: base, Method: name, Args: args}
			} else {
				base = &ast.FieldAccess{ExprBase: ast.NewExprBase(span), Base: base, Field: name}
			}
		default:
			return base
		}
	}
}

func (p *Parser) finishCall(callee ast.Expr) ast.Expr {
	span := callee.Span()
	p.advance() // (
	args := p.parseArgs()
	ident, ok := callee.(*ast.Ident)
	if !ok {
		p.errAt(diag.ParseMalformedDecl, span, "call target must be a plain function name")
		return &ast.CallExpr{ExprBase: ast.NewExprBase(span), Args: args}
	}
	return &ast.CallExpr{ExprBase: ast.NewExprBase(span), Callee: ident.Name, Args: args}
}

// parseArgs parses a comma-separated argument list up to and including the
// closing `)`, which the caller has not yet consumed.
func (p *Parser) parseArgs() []ast.Expr {
	var args []ast.Expr
	for !p.at(token.RPAREN) && !p.atEOF() {
		args = append(args, p.parseExpr(precAssign))
		if p.at(token.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RPAREN)
	return args
}

func (p *Parser) parsePrimary() ast.Expr {
	t := p.cur()
	switch t.Kind {
	case token.INT:
		p.advance()
		return &ast.IntLit{ExprBase: ast.NewExprBase(t.Span), Value: parseInt64Literal(t.Text)}
	case token.FLOAT:
		p.advance()
		return &ast.FloatLit{ExprBase: ast.NewExprBase(t.Span), Value: parseFloatLiteral(t.Text)}
	case token.BOOL:
		p.advance()
		return &ast.BoolLit{ExprBase: ast.NewExprBase(t.Span), Value: t.Text == "true"}
	case token.STRING:
		p.advance()
		return &ast.StringLit{ExprBase: ast.NewExprBase(t.Span), Value: t.Text}
	case token.IDENT:
		p.advance()
		if p.at(token.COLONCOLON) {
			return p.parseStaticOrEnum(t)
		}
		return &ast.Ident{ExprBase: ast.NewExprBase(t.Span), Name: t.Text}
	case token.VEC, token.HASHMAP, token.HASHSET, token.STD_STRING, token.FILE:
		p.advance()
		if p.at(token.COLONCOLON) {
			return p.parseStaticOrEnum(t)
		}
		return &ast.Ident{ExprBase: ast.NewExprBase(t.Span), Name: t.Text}
	case token.LPAREN:
		p.advance()
		e := p.parseExpr(precAssign)
		p.expect(token.RPAREN)
		return e
	case token.LBRACKET:
		return p.parseVectorLiteral()
	case token.LOAD_VECTOR:
		return p.parseLoadVector()
	case token.STORE_VECTOR:
		return p.parseStoreVector()
	case token.HORIZONTAL_SUM:
		return p.parseReduction(t, ast.ReduceSum)
	case token.HORIZONTAL_MIN:
		return p.parseReduction(t, ast.ReduceMin)
	case token.HORIZONTAL_MAX:
		return p.parseReduction(t, ast.ReduceMax)
	case token.DOT_PRODUCT:
		return p.parseDotProduct()
	case token.PRINT, token.PRINTLN, token.READ_LINE:
		p.advance()
		name := t.Kind.String()
		if !p.at(token.LPAREN) {
			return &ast.Ident{ExprBase: ast.NewExprBase(t.Span), Name: name}
		}
		p.advance()
		args := p.parseArgs()
		return &ast.CallExpr{ExprBase: ast.NewExprBase(t.Span), Callee: name, Args: args}
	case token.LBRACE:
		return p.parseBlockExpr()
	default:
		p.didYouMeanReplace(t, "an expression")
		p.advance()
		return &ast.Ident{ExprBase: ast.NewExprBase(t.Span), Name: "<error>"}
	}
}

// parseStaticOrEnum parses `TypeName::method(args)` or `TypeName::Variant`.
// The parser does not distinguish a stdlib type from a user type or
// an enum from a zero-arg static call here — that's the checker's job; it
// only distinguishes call syntax (trailing parens) from bare-variant
// syntax.
//
// `from` is a contextual keyword: everywhere else it
// introduces an import clause, but directly after `::` it names String's
// conversion constructor, so it's accepted here alongside IDENT.
func (p *Parser) parseStaticOrEnum(typeTok token.Token) ast.Expr {
	p.advance() // ::
	var member token.Token
	if p.at(token.FROM) {
		member = p.advance()
	} else {
		member = p.expect(token.IDENT)
	}
	if p.at(token.LPAREN) {
		p.advance()
		args := p.parseArgs()
		return &ast.StaticMethodCall{ExprBase: ast.NewExprBase(typeTok.Span), TypeName: typeTok.Text, Method: member.Text, Args: args}
	}
	return &ast.EnumLit{ExprBase: ast.NewExprBase(typeTok.Span), TypeName: typeTok.Text, Variant: member.Text}
}

func (p *Parser) parseReduction(t token.Token, kind ast.ReductionKind) ast.Expr {
	p.advance()
	p.expect(token.LPAREN)
	x := p.parseExpr(precAssign)
	p.expect(token.RPAREN)
	return &ast.Reduction{ExprBase: ast.NewExprBase(t.Span), Kind: kind, X: x}
}

func (p *Parser) parseDotProduct() ast.Expr {
	span := p.cur().Span
	p.advance()
	p.expect(token.LPAREN)
	a := p.parseExpr(precAssign)
	p.expect(token.COMMA)
	b := p.parseExpr(precAssign)
	p.expect(token.RPAREN)
	return &ast.DotProduct{ExprBase: ast.NewExprBase(span), Left: a, Right: b}
}

// parseAlignment parses an optional trailing `, align` argument, validating
// it is a power of two in [1, 64] at parse time.
func (p *Parser) parseAlignment() int {
	if !p.at(token.COMMA) {
		return 0
	}
	p.advance()
	t := p.expect(token.INT)
	n := parseIntLiteral(t.Text)
	if n < 1 || n > 64 || n&(n-1) != 0 {
		p.errAt(diag.ParseInvalidAlignment, t.Span, "alignment must be a power of two in [1, 64], got %d", n)
	}
	return n
}

func (p *Parser) parseLoadVector() ast.Expr {
	span := p.cur().Span
	p.advance()
	p.expect(token.LPAREN)
	ptr := p.parseExpr(precAssign)
	p.expect(token.COMMA)
	typTok := p.expect(token.VECTOR_TYPE)
	vt, _ := token.IsVectorTypeName(typTok.Text)
	align := p.parseAlignment()
	p.expect(token.RPAREN)
	return &ast.VectorLoad{ExprBase: ast.NewExprBase(span), Ptr: ptr, VecTyp: vt, Align: align}
}

func (p *Parser) parseStoreVector() ast.Expr {
	span := p.cur().Span
	p.advance()
	p.expect(token.LPAREN)
	ptr := p.parseExpr(precAssign)
	p.expect(token.COMMA)
	val := p.parseExpr(precAssign)
	align := p.parseAlignment()
	p.expect(token.RPAREN)
	return &ast.VectorStore{ExprBase: ast.NewExprBase(span), Ptr: ptr, Value: val, Align: align}
}

// parseBlockExpr parses a brace-delimited block used in expression
// position.
func (p *Parser) parseBlockExpr() ast.Expr {
	b := p.parseBlockStmt()
	return &ast.BlockExpr{ExprBase: ast.NewExprBase(b.Span()), Stmts: b.Stmts}
}
