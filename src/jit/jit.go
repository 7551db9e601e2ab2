// Package jit owns the optimizer pass pipeline and the JIT execution
// engine that turns a lowered LLVM module into a running process.
//
// The shape mirrors vslc's own optimise-then-execute split
// (ir/optimise.go feeding a separate backend stage), generalized from
// vslc's handwritten peephole passes to LLVM's own PassManager, since
// vslc never had an LLVM module to hand off to in the first place.
package jit

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"tinygo.org/x/go-llvm"

	"ea/src/util"
)

// Report summarizes one compilation's optimization coverage for
// `--diagnose-jit`.
type Report struct {
	FunctionsTotal    int
	FunctionsOptimized int
	FunctionsFailed   []string
	Symbols           []string
	Unresolved        []string
	ElapsedOptimize   time.Duration
	ElapsedExecute    time.Duration
}

// JitError reports a failure at JIT construction or execution time,
// distinct from a CodeGenError: the module was well-formed IR, but either
// a symbol could not be resolved or running it did not complete in time.
type JitError struct {
	Msg string
}

func (e *JitError) Error() string { return e.Msg }

// ErrUnresolvedSymbol reports a call to a runtime/libc symbol the engine
// could not bind before execution.
func ErrUnresolvedSymbol(symbol string) error {
	return &JitError{Msg: fmt.Sprintf("unresolved symbol %q", symbol)}
}

// ErrTimeout reports the watchdog firing.
func ErrTimeout(d time.Duration) error {
	return &JitError{Msg: fmt.Sprintf("execution exceeded %s", d)}
}

// Optimize runs the module through a conservative pass pipeline:
// instruction combining, CFG simplification, dead code elimination, and
// constant folding. GVN and reassociation are deliberately left
// out of the default pipeline — the goal here is cheap, always-safe
// cleanup, not a competitive optimization level, and both passes have
// historically interacted badly with vslc's own lightly-tested peephole
// optimizer, carried over here as the same conservative default.
//
// Each function is optimized independently and guarded against a pass
// panicking (observed from malformed IR slipping past codegen); a
// panicking function is recorded in the report rather than aborting the
// whole module.
func Optimize(mod llvm.Module, opt bool) (rep Report) {
	rep = Report{}
	start := time.Now()
	defer func() { rep.ElapsedOptimize = time.Since(start) }()

	if !opt {
		for fn := mod.FirstFunction(); !fn.IsNil(); fn = llvm.NextFunction(fn) {
			if !fn.IsDeclaration() {
				rep.FunctionsTotal++
			}
		}
		return rep
	}

	fpm := llvm.NewFunctionPassManagerForModule(mod)
	defer fpm.Dispose()
	fpm.AddInstructionCombiningPass()
	fpm.AddCFGSimplificationPass()
	fpm.AddAggressiveDCEPass()
	fpm.AddConstantPropagationPass()
	fpm.InitializeFunc()

	for fn := mod.FirstFunction(); !fn.IsNil(); fn = llvm.NextFunction(fn) {
		if fn.IsDeclaration() {
			continue
		}
		rep.FunctionsTotal++
		if optimizeOne(fpm, fn) {
			rep.FunctionsOptimized++
		} else {
			rep.FunctionsFailed = append(rep.FunctionsFailed, fn.Name())
		}
	}
	fpm.FinalizeFunc()
	return rep
}

func optimizeOne(fpm llvm.PassManager, fn llvm.Value) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			util.Log.Warn().Str("function", fn.Name()).Interface("panic", r).Msg("optimizer pass panicked, skipping function")
			ok = false
		}
	}()
	fpm.RunFunc(fn)
	return true
}

// Engine wraps an llvm.ExecutionEngine with the watchdog and symbol
// verification required before a JIT run is allowed to start.
type Engine struct {
	engine llvm.ExecutionEngine
}

// NewEngine constructs an MCJIT execution engine over mod at the
// CodeGenLevelNone optimization level: Optimize above already ran (or was
// explicitly skipped with --no-optimize), so the engine itself performs no
// additional codegen-time optimization.
func NewEngine(mod llvm.Module) (*Engine, error) {
	opts := llvm.NewMCJITCompilerOptions()
	opts.SetMCJITOptimizationLevel(0)
	engine, err := llvm.NewMCJITCompiler(mod, opts)
	if err != nil {
		return nil, &JitError{Msg: "could not construct execution engine: " + err.Error()}
	}
	return &Engine{engine: engine}, nil
}

func (e *Engine) Dispose() { e.engine.Dispose() }

// VerifySymbols checks that every declared-but-undefined function in the
// module resolves to a process-global symbol before RunMain is attempted,
// surfacing JitError::UnresolvedSymbol ahead of execution instead of
// letting the engine segfault on a call to address zero.
func (e *Engine) VerifySymbols(mod llvm.Module) error {
	for fn := mod.FirstFunction(); !fn.IsNil(); fn = llvm.NextFunction(fn) {
		if !fn.IsDeclaration() || fn.Name() == "" {
			continue
		}
		if ptr := e.engine.PointerToGlobal(fn); ptr == nil {
			return ErrUnresolvedSymbol(fn.Name())
		}
	}
	return nil
}

// RunMain executes `main` under a timeout watchdog. The watchdog is
// advisory only — Go cannot forcibly preempt a JIT-compiled native call —
// so a runaway program still blocks the host goroutine. When the timeout
// elapses first, RunMain keeps waiting for the native call to return and
// then reports ErrTimeout instead of main's result; it never returns
// before the call does.
func (e *Engine) RunMain(mod llvm.Module, timeout time.Duration) (int, error) {
	mainFn := mod.NamedFunction("main")
	if mainFn.IsNil() {
		return 0, &JitError{Msg: "module has no `main` function"}
	}

	done := make(chan struct{})
	var result llvm.GenericValue
	var timedOut atomic.Bool

	go func() {
		defer close(done)
		result = e.engine.RunFunction(mainFn, nil)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	select {
	case <-done:
		return int(int32(result.Int(true))), nil
	case <-ctx.Done():
		timedOut.Store(true)
		<-done // still wait: there is no safe way to abandon the native call.
		return 0, ErrTimeout(timeout)
	}
}
