package llvm

import (
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"ea/src/checker"
	"ea/src/parser"
)

// compileIR parses and checks src, failing the test on any diagnostic, and
// returns the lowered module text.
func compileIR(t *testing.T, src string) string {
	t.Helper()
	prog, parseBag := parser.Parse(src)
	if parseBag.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", parseBag.Diagnostics())
	}
	if bag := checker.Check(prog); bag.HasErrors() {
		t.Fatalf("unexpected type errors: %v", bag.Diagnostics())
	}
	em := New("snapshot_module", Full)
	defer em.Dispose()
	if err := em.GenModule(prog); err != nil {
		t.Fatalf("unexpected codegen error: %v", err)
	}
	return em.Module().String()
}

func TestGenModuleScalarFunctionSnapshot(t *testing.T) {
	ir := compileIR(t, `func add(a: i32, b: i32) -> i32 {
	return a + b;
}
func main() -> i32 {
	return add(2, 3);
}`)
	snaps.MatchSnapshot(t, ir)
}

func TestGenModuleDottedVectorAddSnapshot(t *testing.T) {
	ir := compileIR(t, `func f(a: f32x4, b: f32x4) -> f32x4 {
	return a .+ b;
}
func main() -> i32 {
	return 0;
}`)
	snaps.MatchSnapshot(t, ir)
}

func TestGenModuleSynthesizesDefaultMainWhenAbsent(t *testing.T) {
	ir := compileIR(t, `func helper() -> i32 { return 7; }`)
	if !strings.Contains(ir, "@main") {
		t.Errorf("expected a synthesized @main definition in the module, got:\n%s", ir)
	}
}
