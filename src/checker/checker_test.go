package checker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ea/src/parser"
)

func TestCheckAcceptsWellTypedFunction(t *testing.T) {
	prog, parseBag := parser.Parse(`func add(a: i32, b: i32) -> i32 {
	return a + b;
}`)
	require.False(t, parseBag.HasErrors())

	bag := Check(prog)
	assert.False(t, bag.HasErrors(), "unexpected diagnostics: %v", bag.Diagnostics())
}

func TestCheckRejectsSignedUnsignedMismatchWithoutCast(t *testing.T) {
	prog, parseBag := parser.Parse(`func f(a: i32, b: u32) -> i32 {
	return a + b;
}`)
	require.False(t, parseBag.HasErrors())

	bag := Check(prog)
	assert.True(t, bag.HasErrors(), "expected a type error for signed/unsigned addition without a cast")
}

func TestCheckRejectsDuplicateFunctionNoOverloading(t *testing.T) {
	prog, parseBag := parser.Parse(`
func f() -> i32 { return 1; }
func f() -> i32 { return 2; }
`)
	require.False(t, parseBag.HasErrors())

	bag := Check(prog)
	assert.True(t, bag.HasErrors(), "expected a redeclaration error, Eä has no overloading")
}

func TestCheckDottedOperatorOnVectors(t *testing.T) {
	prog, parseBag := parser.Parse(`func f(a: f32x4, b: f32x4) -> f32x4 {
	return a .+ b;
}`)
	require.False(t, parseBag.HasErrors())

	bag := Check(prog)
	assert.False(t, bag.HasErrors(), "unexpected diagnostics: %v", bag.Diagnostics())
}

func TestCheckRejectsScalarOperatorOnVectors(t *testing.T) {
	prog, parseBag := parser.Parse(`func f(a: f32x4, b: f32x4) -> f32x4 {
	return a + b;
}`)
	require.False(t, parseBag.HasErrors())

	bag := Check(prog)
	assert.True(t, bag.HasErrors(), "plain `+` should be rejected between vectors; dotted operators are required")
}

func TestCheckVecGetAndPopResolveToElementTypeNotVec(t *testing.T) {
	prog, parseBag := parser.Parse(`func f(v: Vec) -> i32 {
	let a: i32 = v.get(0);
	let b: i32 = v.pop();
	return a + b;
}`)
	require.False(t, parseBag.HasErrors())

	bag := Check(prog)
	assert.False(t, bag.HasErrors(), "Vec.get/Vec.pop should resolve to the element type i32, not StdVec itself: %v", bag.Diagnostics())
}
