package llvm

import (
	"tinygo.org/x/go-llvm"

	"ea/src/runtimeabi"
)

// libcSurface is the ten libc symbols spec.md's Minimal/Full declaration
// modes are defined over: puts/printf/fgets for text I/O, strlen/fopen/
// fclose/fread/fwrite for file I/O, malloc/free for the runtime's
// explicit-call heap ownership.
var libcSurface = []string{
	"puts", "printf", "fgets",
	"strlen", "fopen", "fclose", "fread", "fwrite",
	"malloc", "free",
}

// declareFullRuntime declares every symbol in runtimeabi.Table plus the
// full libc surface, regardless of whether the program uses them (Full
// mode).
func (e *Emitter) declareFullRuntime() {
	e.declareRuntimeMethods(runtimeabi.Table)
	all := make(map[string]bool, len(libcSurface))
	for _, name := range libcSurface {
		all[name] = true
	}
	e.declareLibc(all)
}

// declareMinimalRuntime declares only the symbols scanUsage found
// referenced: the runtime entry points the program actually calls, plus
// whichever of the ten libc names scanUsage marked used.
func (e *Emitter) declareMinimalRuntime() {
	e.declareRuntimeMethods(runtimeabi.MinimalDecls(e.used))
	e.declareLibc(e.used)
}

func (e *Emitter) declareRuntimeMethods(methods []runtimeabi.Method) {
	for _, m := range methods {
		if !e.funcExists(m.Symbol) {
			params := make([]llvm.Type, len(m.Params))
			for i, p := range m.Params {
				params[i] = e.abiLLVMType(p)
			}
			fnType := llvm.FunctionType(e.abiLLVMType(m.Ret), params, false)
			llvm.AddFunction(e.mod, m.Symbol, fnType)
		}
	}
}

// declareLibc declares whichever of the ten libc symbols in libcSurface
// needed marks true, with their standard C signatures.
func (e *Emitter) declareLibc(needed map[string]bool) {
	i8p := llvm.PointerType(e.ctx.Int8Type(), 0)
	i32 := e.ctx.Int32Type()
	i64 := e.ctx.Int64Type()

	declare := func(name string, fnType llvm.Type) {
		if needed[name] && !e.funcExists(name) {
			llvm.AddFunction(e.mod, name, fnType)
		}
	}
	declare("puts", llvm.FunctionType(i32, []llvm.Type{i8p}, false))
	declare("printf", llvm.FunctionType(i32, []llvm.Type{i8p}, true))
	declare("fgets", llvm.FunctionType(i8p, []llvm.Type{i8p, i32, i8p}, false))
	declare("strlen", llvm.FunctionType(i64, []llvm.Type{i8p}, false))
	declare("fopen", llvm.FunctionType(i8p, []llvm.Type{i8p, i8p}, false))
	declare("fclose", llvm.FunctionType(i32, []llvm.Type{i8p}, false))
	declare("fread", llvm.FunctionType(i64, []llvm.Type{i8p, i64, i64, i8p}, false))
	declare("fwrite", llvm.FunctionType(i64, []llvm.Type{i8p, i64, i64, i8p}, false))
	declare("malloc", llvm.FunctionType(i8p, []llvm.Type{i64}, false))
	declare("free", llvm.FunctionType(e.ctx.VoidType(), []llvm.Type{i8p}, false))
}

func (e *Emitter) funcExists(name string) bool {
	fn := e.mod.NamedFunction(name)
	return !fn.IsNil()
}
