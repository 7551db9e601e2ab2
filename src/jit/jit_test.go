package jit

import (
	"strings"
	"testing"
	"time"

	"ea/src/checker"
	"ea/src/codegen/llvm"
	"ea/src/parser"
)

// compile parses, checks, and lowers src to an LLVM module, failing the
// test immediately on any diagnostic or codegen error.
func compile(t *testing.T, src string) *llvm.Emitter {
	t.Helper()
	prog, parseBag := parser.Parse(src)
	if parseBag.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", parseBag.Diagnostics())
	}
	checkBag := checker.Check(prog)
	if checkBag.HasErrors() {
		t.Fatalf("unexpected type errors: %v", checkBag.Diagnostics())
	}
	em := llvm.New("jit_test_module", llvm.Full)
	if err := em.GenModule(prog); err != nil {
		t.Fatalf("unexpected codegen error: %v", err)
	}
	return em
}

func TestOptimizeCountsFunctionsWithoutPasses(t *testing.T) {
	em := compile(t, `func main() -> i32 { return 0; }`)
	defer em.Dispose()

	rep := Optimize(em.Module(), false)
	if rep.FunctionsTotal == 0 {
		t.Error("expected at least the defined function to be counted")
	}
	if rep.FunctionsOptimized != 0 {
		t.Error("FunctionsOptimized should stay zero when opt=false")
	}
}

func TestOptimizeRunsPassesOverEveryDefinedFunction(t *testing.T) {
	em := compile(t, `func add(a: i32, b: i32) -> i32 {
	return a + b;
}
func main() -> i32 {
	return add(1, 2);
}`)
	defer em.Dispose()

	rep := Optimize(em.Module(), true)
	if rep.FunctionsTotal != 2 {
		t.Fatalf("expected 2 defined functions, got %d", rep.FunctionsTotal)
	}
	if rep.FunctionsOptimized != rep.FunctionsTotal {
		t.Errorf("expected every function to optimize cleanly, failed: %v", rep.FunctionsFailed)
	}
}

func TestEngineRunMainReturnsExitCode(t *testing.T) {
	em := compile(t, `func main() -> i32 { return 42; }`)
	defer em.Dispose()
	Optimize(em.Module(), true)

	engine, err := NewEngine(em.Module())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	defer engine.Dispose()

	if err := engine.VerifySymbols(em.Module()); err != nil {
		t.Fatalf("VerifySymbols failed: %v", err)
	}

	code, err := engine.RunMain(em.Module(), 5*time.Second)
	if err != nil {
		t.Fatalf("RunMain failed: %v", err)
	}
	if code != 42 {
		t.Errorf("expected exit code 42, got %d", code)
	}
}

func TestReportStringReportsUnresolvedSymbols(t *testing.T) {
	rep := Report{FunctionsTotal: 2, FunctionsOptimized: 1, FunctionsFailed: []string{"weird_fn"}, Unresolved: []string{"vec_push"}}
	s := rep.String()
	if !strings.Contains(s, "weird_fn") || !strings.Contains(s, "vec_push") {
		t.Errorf("expected the failed function and unresolved symbol to appear, got %q", s)
	}
}

func TestReportStringAllResolvedWhenUnresolvedEmpty(t *testing.T) {
	rep := Report{FunctionsTotal: 1, FunctionsOptimized: 1}
	s := rep.String()
	if !strings.Contains(s, "all runtime symbols resolved") {
		t.Errorf("expected the all-resolved line, got %q", s)
	}
}

func TestEngineRunMainRunsSynthesizedDefaultMain(t *testing.T) {
	em := compile(t, `func helper() -> i32 { return 1; }`)
	defer em.Dispose()

	engine, err := NewEngine(em.Module())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	defer engine.Dispose()

	// helper() is not named main, so GenModule synthesized a default main;
	// renaming it out from under the engine isn't possible here, so instead
	// this asserts the synthesized main still runs and returns cleanly.
	code, err := engine.RunMain(em.Module(), 5*time.Second)
	if err != nil {
		t.Fatalf("RunMain failed on the synthesized default main: %v", err)
	}
	if code != 0 {
		t.Errorf("expected the synthesized default main to return 0, got %d", code)
	}
}
