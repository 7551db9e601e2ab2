// Verifies the scanner against a short program exercising identifiers,
// keywords, scalar and dotted operators, and a vector type name, in the
// same tuple-comparison style as vslc's own lexer_test.go.
package lexer

import (
	"testing"

	"ea/src/token"
)

func TestTokenizeSimple(t *testing.T) {
	src := `func add(a: i32, b: i32) -> i32 {
	return a + b;
}`
	toks, errs := Tokenize(src)
	if len(errs) != 0 {
		t.Fatalf("unexpected lex errors: %v", errs)
	}

	want := []token.Kind{
		token.FUNC, token.IDENT, token.LPAREN,
		token.IDENT, token.COLON, token.I32, token.COMMA,
		token.IDENT, token.COLON, token.I32, token.RPAREN,
		token.ARROW, token.I32, token.LBRACE,
		token.RETURN, token.IDENT, token.PLUS, token.IDENT, token.SEMI,
		token.RBRACE,
		token.EOF,
	}
	if len(toks) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(toks), toks)
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: expected %s, got %s (%q)", i, k, toks[i].Kind, toks[i].Text)
		}
	}
}

func TestTokenizeVectorTypeName(t *testing.T) {
	toks, errs := Tokenize("let v: f32x4;")
	if len(errs) != 0 {
		t.Fatalf("unexpected lex errors: %v", errs)
	}
	found := false
	for _, tk := range toks {
		if tk.Kind == token.VECTOR_TYPE && tk.Text == "f32x4" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a VECTOR_TYPE token spelled f32x4, got %v", toks)
	}
}

func TestTokenizeDottedOperators(t *testing.T) {
	toks, errs := Tokenize("a .+ b .== c")
	if len(errs) != 0 {
		t.Fatalf("unexpected lex errors: %v", errs)
	}
	want := []token.Kind{token.IDENT, token.DOT_PLUS, token.IDENT, token.DOT_EQ, token.IDENT, token.EOF}
	if len(toks) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(toks), toks)
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: expected %s, got %s", i, k, toks[i].Kind)
		}
	}
}

func TestTokenizeRecoversFromIllegalByte(t *testing.T) {
	toks, errs := Tokenize("let a = 1 ` let b = 2;")
	if len(errs) == 0 {
		t.Fatalf("expected a lex error for the illegal byte")
	}
	// The scanner must not abort: tokens on both sides of the bad byte
	// are still produced.
	sawB := false
	for _, tk := range toks {
		if tk.Kind == token.IDENT && tk.Text == "b" {
			sawB = true
		}
	}
	if !sawB {
		t.Fatalf("expected scanning to continue past the illegal byte, got %v", toks)
	}
}

func TestStringFromAfterColonColonIsContextual(t *testing.T) {
	// `from` is reserved everywhere else, but names String's conversion
	// constructor right after `::`.
	toks, errs := Tokenize(`String::from(a)`)
	if len(errs) != 0 {
		t.Fatalf("unexpected lex errors: %v", errs)
	}
	want := []token.Kind{token.STD_STRING, token.COLONCOLON, token.FROM, token.LPAREN, token.IDENT, token.RPAREN, token.EOF}
	if len(toks) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(toks), toks)
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: expected %s, got %s", i, k, toks[i].Kind)
		}
	}
}
