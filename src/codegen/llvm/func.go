package llvm

import (
	"tinygo.org/x/go-llvm"

	"ea/src/ast"
)

// declareFunc emits fn's LLVM declaration (signature only) so calls made
// before its body is generated still resolve, mirroring vslc's
// two-pass genFuncHeader/genFuncBody split.
func (e *Emitter) declareFunc(fn *ast.FuncDecl) {
	params := make([]llvm.Type, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = e.llvmType(p.Typ)
	}
	fnType := llvm.FunctionType(e.llvmType(fn.Ret), params, false)
	llvmFn := llvm.AddFunction(e.mod, fn.Name, fnType)
	for i, p := range fn.Params {
		llvmFn.Param(i).SetName(p.Name)
	}
	e.funcs[fn.Name] = llvmFn
}

// genFunc emits fn's body. Every local is an entry-block alloca — no
// SSA-form locals, mem2reg is left to the optimizer pass rather than hand
// rolled here — matching vslc's own approach of always spilling to
// memory and trusting the pass pipeline to promote back to registers.
func (e *Emitter) genFunc(fn *ast.FuncDecl) error {
	llvmFn, ok := e.funcs[fn.Name]
	if !ok {
		return &CodeGenError{Msg: "internal: " + fn.Name + " was not predeclared"}
	}

	entry := e.ctx.AddBasicBlock(llvmFn, "entry")
	e.builder.SetInsertPointAtEnd(entry)

	e.syms.push()
	defer e.syms.pop()

	for i, p := range fn.Params {
		alloca := e.builder.CreateAlloca(e.llvmType(p.Typ), p.Name+".addr")
		e.builder.CreateStore(llvmFn.Param(i), alloca)
		e.syms.declare(p.Name, alloca, p.Typ)
	}

	e.genBlock(fn.Body)

	// A Unit-returning function whose body fell through without an
	// explicit `return;` still needs a terminator: the checker's
	// statement-returns analysis only requires explicit returns for
	// non-Unit functions.
	last := e.builder.GetInsertBlock()
	if last.LastInstruction().IsNil() || !isTerminator(last.LastInstruction()) {
		if _, isUnit := fn.Ret.(ast.Unit); isUnit {
			e.builder.CreateRetVoid()
		} else {
			e.builder.CreateUnreachable()
		}
	}
	return e.err
}

func isTerminator(instr llvm.Value) bool {
	switch instr.InstructionOpcode() {
	case llvm.Ret, llvm.Br, llvm.Switch, llvm.Unreachable:
		return true
	default:
		return false
	}
}

// genDefaultMain synthesizes an empty `i32 main()` returning 0, used when a
// program under `--run` declares no `main` of its own.
func (e *Emitter) genDefaultMain() {
	fnType := llvm.FunctionType(e.ctx.Int32Type(), nil, false)
	fn := llvm.AddFunction(e.mod, "main", fnType)
	entry := e.ctx.AddBasicBlock(fn, "entry")
	e.builder.SetInsertPointAtEnd(entry)
	e.builder.CreateRet(llvm.ConstInt(e.ctx.Int32Type(), 0, false))
}
