package main

import (
	"fmt"
	"os"
	"time"

	"tinygo.org/x/go-llvm"

	"ea/src/ast"
	"ea/src/checker"
	codegen "ea/src/codegen/llvm"
	"ea/src/diag"
	"ea/src/jit"
	"ea/src/lexer"
	"ea/src/parser"
	"ea/src/util"
)

func init() {
	llvm.InitializeNativeTarget()
	llvm.InitializeNativeAsmPrinter()
}

// run drives the pipeline stage by stage, the same left-to-right shape as
// vslc's own run: read source, lex/parse, check, emit, optimize,
// execute. Each stage's own diagnostics decide the process's eventual
// exit code rather than a single top-level error, since lex/parse/type
// errors (ExitCompileErr) and JIT failures (ExitJitErr) are distinguished
// at the CLI boundary.
func run(opt util.Options) int {
	src, err := util.ReadSource(opt)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not read source: %s\n", err)
		return util.ExitIOErr
	}

	if opt.EmitTokens {
		return runEmitTokens(src)
	}

	var prog *ast.Program
	var parseBag *diag.Bag
	util.Phase("parse", func() error {
		prog, parseBag = parser.Parse(src)
		return nil
	})
	if parseBag.HasErrors() {
		printDiagnostics(parseBag)
		return util.ExitCompileErr
	}

	if opt.EmitAST {
		for _, d := range prog.Decls {
			fmt.Printf("%#v\n", d)
		}
	}

	var checkBag *diag.Bag
	util.Phase("check", func() error {
		checkBag = checker.Check(prog)
		return nil
	})
	if checkBag.HasErrors() {
		printDiagnostics(checkBag)
		return util.ExitCompileErr
	}

	em := codegen.New("ea_module", codegen.Full)
	defer em.Dispose()

	if err := em.GenModule(prog); err != nil {
		fmt.Fprintf(os.Stderr, "codegen error: %s\n", err)
		return util.ExitCompileErr
	}

	if opt.EmitLLVM || opt.EmitLLVMOnly {
		fmt.Println(em.Module().String())
		if opt.EmitLLVMOnly {
			return util.ExitOK
		}
	}

	rep := jit.Optimize(em.Module(), opt.Optimize)

	if !opt.Run && !opt.DiagnoseJIT {
		return util.ExitOK
	}

	engine, err := jit.NewEngine(em.Module())
	if err != nil {
		fmt.Fprintf(os.Stderr, "jit error: %s\n", err)
		return util.ExitJitErr
	}
	defer engine.Dispose()

	if err := engine.VerifySymbols(em.Module()); err != nil {
		fmt.Fprintf(os.Stderr, "jit error: %s\n", err)
		return util.ExitJitErr
	}

	if opt.DiagnoseJIT {
		fmt.Fprint(os.Stderr, rep.String())
		if !opt.Run {
			return util.ExitOK
		}
	}

	start := time.Now()
	code, err := engine.RunMain(em.Module(), 30*time.Second)
	rep.ElapsedExecute = time.Since(start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "jit error: %s\n", err)
		return util.ExitJitErr
	}
	return code
}

func runEmitTokens(src string) int {
	toks, errs := lexer.Tokenize(src)
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "lex error: %s\n", e)
		}
		return util.ExitCompileErr
	}
	for _, t := range toks {
		fmt.Println(t)
	}
	return util.ExitOK
}

func printDiagnostics(bag *diag.Bag) {
	for _, d := range bag.Diagnostics() {
		fmt.Fprintln(os.Stderr, d)
	}
}

func main() {
	opt, err := util.ParseArgs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "argument error: %s\n", err)
		os.Exit(util.ExitIOErr)
	}
	util.ConfigureLog(opt)
	os.Exit(run(opt))
}
