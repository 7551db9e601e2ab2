package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ea/src/ast"
	"ea/src/token"
)

func TestParseFuncDecl(t *testing.T) {
	prog, bag := Parse(`func add(a: i32, b: i32) -> i32 {
	return a + b;
}`)
	require.False(t, bag.HasErrors(), "unexpected diagnostics: %v", bag.Diagnostics())
	require.Len(t, prog.Decls, 1)

	fn, ok := prog.Decls[0].(*ast.FuncDecl)
	require.True(t, ok, "expected a FuncDecl, got %T", prog.Decls[0])
	assert.Equal(t, "add", fn.Name)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, "a", fn.Params[0].Name)
	assert.Equal(t, ast.Primitive{Kind: token.I32}, fn.Params[0].Typ)
	assert.Equal(t, ast.Primitive{Kind: token.I32}, fn.Ret)
}

func TestParseSimdDottedBinary(t *testing.T) {
	prog, bag := Parse(`func f(a: f32x4, b: f32x4) -> f32x4 {
	return a .+ b;
}`)
	require.False(t, bag.HasErrors(), "unexpected diagnostics: %v", bag.Diagnostics())
	fn := prog.Decls[0].(*ast.FuncDecl)
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)
	bin, ok := ret.Value.(*ast.SimdBinaryExpr)
	require.True(t, ok, "expected a SimdBinaryExpr, got %T", ret.Value)
	assert.Equal(t, token.DOT_PLUS, bin.Op)
}

func TestParseStaticMethodCallWithFromAfterColonColon(t *testing.T) {
	prog, bag := Parse(`func f() -> String {
	return String::from(a);
}`)
	require.False(t, bag.HasErrors(), "unexpected diagnostics: %v", bag.Diagnostics())
	fn := prog.Decls[0].(*ast.FuncDecl)
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)
	call, ok := ret.Value.(*ast.StaticMethodCall)
	require.True(t, ok, "expected a StaticMethodCall, got %T", ret.Value)
	assert.Equal(t, "String", call.TypeName)
	assert.Equal(t, "from", call.Method)
}

func TestParseRecoversFromMisspelledKeyword(t *testing.T) {
	// "retrun" is within edit distance of "return"; the parser should
	// recover with a suggestion rather than aborting the whole function.
	prog, bag := Parse(`func f() -> i32 {
	retrun 1;
}`)
	require.True(t, bag.HasErrors())
	require.Len(t, prog.Decls, 1)
	_, ok := prog.Decls[0].(*ast.FuncDecl)
	assert.True(t, ok, "parser should still have produced a FuncDecl despite the error")
}
