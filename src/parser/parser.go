// Package parser implements Eä's recursive-descent, Pratt-precedence
// parser.
//
// vslc parses VSL with a goyacc-generated LALR grammar
// (frontend/tree.go, frontend/lang.go) driven by a channel-fed lexer.
// Eä's error-recovery contract — skip/synchronize/insert-token/
// replace-token recovery actions, a five-iteration non-progress guard, and
// Levenshtein-based suggestions — is a precise imperative algorithm that a
// generated LALR parser cannot express without hand-authoring error
// productions for every one of those cases, which is just a hand-written
// parser by another name. So this package is hand-written, but keeps
// vslc's idioms: positions carried on every node, errors collected
// rather than thrown, and a "never panic, always produce something"
// contract at the top level.
package parser

import (
	"ea/src/ast"
	"ea/src/diag"
	"ea/src/lexer"
	"ea/src/token"
)

// Parser holds the state of one parse: the full token slice (the Pratt
// precedence climber and the recovery mode both need backtracking-style
// lookahead, so tokens are buffered rather than streamed), a cursor, and
// the diagnostic bag errors are collected into.
type Parser struct {
	toks []token.Token
	pos  int
	bag  *diag.Bag
}

// New returns a Parser over toks, reporting into bag.
func New(toks []token.Token, bag *diag.Bag) *Parser {
	return &Parser{toks: toks, bag: bag}
}

// Parse tokenizes and parses src in one call, returning the partial or
// complete Program and the diagnostics bag that accumulated lex and parse
// errors together: the type checker should not need to re-report lex/parse
// errors, which implies lex and parse share one bag up front.
func Parse(src string) (*ast.Program, *diag.Bag) {
	bag := diag.NewBag()
	toks, lexErrs := lexer.Tokenize(src)
	for _, le := range lexErrs {
		bag.Errorf(lexKindOf(le), le.Span, "%s", le.Msg)
	}
	p := New(toks, bag)
	return p.ParseProgram(), bag
}

func lexKindOf(le lexer.LexError) diag.Kind {
	return diag.LexUnexpectedChar
}

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[p.pos]
}

func (p *Parser) peekAt(off int) token.Token {
	i := p.pos + off
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) at(k token.Kind) bool { return p.cur().Kind == k }

func (p *Parser) atEOF() bool { return p.cur().Kind == token.EOF }

// expect consumes a token of kind k, or reports a ParseMissingToken
// diagnostic and performs an insert-token recovery: it proceeds without
// consuming anything, treating the missing token as though it were there.
func (p *Parser) expect(k token.Kind) token.Token {
	if p.at(k) {
		return p.advance()
	}
	p.bag.Add(diag.Diagnostic{
		Kind:        diag.ParseMissingToken,
		Message:     "expected " + k.String() + ", found " + p.cur().Kind.String(),
		PrimarySpan: p.cur().Span,
		Suggestions: []diag.Suggestion{{Kind: diag.SuggestInsertToken, Text: "insert '" + k.String() + "'"}},
	})
	return token.Token{Kind: k, Span: p.cur().Span}
}

// errAt reports a ParseError at span with the given kind/message.
func (p *Parser) errAt(kind diag.Kind, span token.Span, format string, args ...interface{}) {
	p.bag.Errorf(kind, span, format, args...)
}

// didYouMeanReplace reports an unexpected-token error, suggesting a
// replace-token recovery (e.g. `fn` -> `func`) when the offending token's
// text is within edit distance of a keyword (the "replace-token" recovery
// action).
func (p *Parser) didYouMeanReplace(got token.Token, wanted string) {
	d := diag.Diagnostic{
		Kind:        diag.ParseUnexpectedToken,
		Message:     "unexpected token " + got.Kind.String() + " " + quote(got.Text),
		PrimarySpan: got.Span,
	}
	if sugg, ok := diag.SuggestDidYouMeanFor(got.Text, diag.Vocabulary); ok {
		sugg.Kind = diag.SuggestReplaceToken
		d.Suggestions = append(d.Suggestions, sugg)
	}
	p.bag.Add(d)
}

func quote(s string) string { return "'" + s + "'" }

// ParseProgram parses a whole compilation unit: a sequence of top-level
// declarations, recovering from malformed ones at declaration boundaries.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}
	for !p.atEOF() {
		startPos := p.pos
		decl := p.parseTopLevelDecl()
		if decl != nil {
			prog.Decls = append(prog.Decls, decl)
		}
		if p.pos == startPos {
			// No progress was made (an unrecognized top-level token): force
			// past it to guarantee termination (the non-progress guard,
			// applied immediately at the top level since declaration
			// boundaries are coarser than statement boundaries).
			p.recoverPastDecl()
		}
	}
	return prog
}

func (p *Parser) parseTopLevelDecl() ast.Stmt {
	switch p.cur().Kind {
	case token.FUNC:
		return p.parseFuncDecl()
	case token.STRUCT:
		return p.parseStructDecl()
	case token.IMPORT:
		return p.parseImport()
	default:
		p.didYouMeanReplace(p.cur(), "func/struct/import")
		return nil
	}
}

// recoverPastDecl advances to the next top-level keyword or EOF.
func (p *Parser) recoverPastDecl() {
	for !p.atEOF() {
		switch p.cur().Kind {
		case token.FUNC, token.STRUCT, token.IMPORT:
			return
		}
		p.advance()
	}
}

func (p *Parser) parseImport() ast.Stmt {
	span := p.cur().Span
	p.advance() // import
	path := p.expect(token.STRING).Text
	p.expect(token.SEMI)
	return &ast.ImportStmt{StmtBase: ast.NewStmtBase(span), Path: path}
}
