// Package llvm lowers a checked Eä ast.Program into an LLVM IR module.
//
// The shape is adapted from vslc's ir/llvm/transform.go: a single
// emitter owns one llvm.Builder and one scope-stack-of-llvm.Value (vslc's
// symTab), and a recursive gen/genExpression/genAssign dispatch
// walks the tree once, emitting instructions as it goes. What changes is
// the type system the dispatch is retargeted against: VSL's two scalar
// types (int, float) become Eä's full primitive/vector/stdlib surface, and
// SIMD lowering (entirely absent from vslc, which never saw a
// vector type) is new.
package llvm

import (
	"fmt"
	"runtime"

	"tinygo.org/x/go-llvm"

	"ea/src/ast"
	"ea/src/runtimeabi"
)

// CodeGenError reports an internal inconsistency, an unsupported
// construct, or a target/feature mismatch during lowering. Unlike
// TypeError, a CodeGenError aborts the module: the type
// checker should have already caught anything that would otherwise reach
// here as a user-facing error.
type CodeGenError struct {
	Msg string
}

func (e *CodeGenError) Error() string { return e.Msg }

// RuntimeMode selects which runtime declarations the emitter writes:
// Minimal declares only the symbols a usage scan over the AST found;
// Full unconditionally declares the entire runtime table.
type RuntimeMode int

const (
	Minimal RuntimeMode = iota
	Full
)

// symTab is a scope stack of name -> (llvm.Value, EaType) for lvalues, the
// same shape as vslc's symTab (ir/llvm/transform.go), generalized to
// carry the Eä type alongside the pointer so SIMD/stdlib lowering can tell
// what it's loading or storing without re-deriving it from the IR type.
type symTab struct {
	scopes []map[string]symEntry
}

type symEntry struct {
	ptr llvm.Value
	typ ast.EaType
}

func newSymTab() *symTab { return &symTab{scopes: []map[string]symEntry{{}}} }

func (s *symTab) push() { s.scopes = append(s.scopes, map[string]symEntry{}) }
func (s *symTab) pop()  { s.scopes = s.scopes[:len(s.scopes)-1] }

func (s *symTab) declare(name string, ptr llvm.Value, typ ast.EaType) {
	s.scopes[len(s.scopes)-1][name] = symEntry{ptr, typ}
}

func (s *symTab) lookup(name string) (symEntry, bool) {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if e, ok := s.scopes[i][name]; ok {
			return e, true
		}
	}
	return symEntry{}, false
}

// Emitter owns the LLVM context, module, and builder for one compilation,
// plus the scope stack and the set of runtime/libc symbols referenced so
// far (used to drive Minimal-mode declaration emission).
type Emitter struct {
	ctx     llvm.Context
	mod     llvm.Module
	builder llvm.Builder
	syms    *symTab
	funcs   map[string]llvm.Value
	used    map[string]bool
	mode    RuntimeMode
	err     error
}

// New creates an Emitter for a fresh module named moduleName.
func New(moduleName string, mode RuntimeMode) *Emitter {
	ctx := llvm.NewContext()
	mod := ctx.NewModule(moduleName)
	return &Emitter{
		ctx:     ctx,
		mod:     mod,
		builder: ctx.NewBuilder(),
		syms:    newSymTab(),
		funcs:   make(map[string]llvm.Value),
		used:    make(map[string]bool),
		mode:    mode,
	}
}

// Dispose releases the builder. The context and the module are not
// disposed: the module is handed off to the JIT harness, which owns it
// from here on.
func (e *Emitter) Dispose() {
	e.builder.Dispose()
}

// Module returns the in-progress (or completed) LLVM module.
func (e *Emitter) Module() llvm.Module { return e.mod }

// GenModule lowers prog into e's module: the preamble, runtime
// declarations, every function, and a synthesized `main` if none was
// declared explicitly with that name (vslc's genMain synthesizes an
// argv-parsing wrapper around the first declared
// function; Eä programs declare `main` directly, so here an empty
// `i32 main()` returning 0 is emitted only when the user supplies none, to
// keep `--run` always having an entry point).
func (e *Emitter) GenModule(prog *ast.Program) error {
	e.genPreamble()

	if e.mode == Full {
		e.declareFullRuntime()
	} else {
		e.scanUsage(prog)
		e.declareMinimalRuntime()
	}

	// Pass 1: declare every function so forward calls resolve.
	for _, d := range prog.Decls {
		if fn, ok := d.(*ast.FuncDecl); ok {
			e.declareFunc(fn)
		}
	}

	hasMain := false
	for _, d := range prog.Decls {
		if fn, ok := d.(*ast.FuncDecl); ok {
			if fn.Name == "main" {
				hasMain = true
			}
			if err := e.genFunc(fn); err != nil {
				return err
			}
		}
	}
	if !hasMain {
		e.genDefaultMain()
	}
	return e.err
}

// genPreamble sets the module's target triple and data layout. The target
// is always the host the compiler itself runs on — cross-compilation is out
// of scope. No per-function target attributes are emitted.
func (e *Emitter) genPreamble() {
	triple := llvm.DefaultTargetTriple()
	e.mod.SetTarget(triple)

	target, err := llvm.GetTargetFromTriple(triple)
	if err != nil {
		e.err = &CodeGenError{Msg: "could not resolve host target: " + err.Error()}
		return
	}
	tm := target.CreateTargetMachine(triple, "generic", hostFeatures(),
		llvm.CodeGenLevelDefault, llvm.RelocDefault, llvm.CodeModelDefault)
	e.mod.SetDataLayout(tm.CreateTargetData().String())
}

// hostFeatures returns the feature string used to create the target
// machine whose data layout the module takes: AVX2/SSE4.2/FMA on x86_64
// hosts, otherwise an empty feature set. The host's actual features are
// not detected, and the string is not attached to emitted functions as an
// attribute.
func hostFeatures() string {
	if runtime.GOARCH == "amd64" {
		return "+avx2,+sse4.2,+fma"
	}
	return ""
}

// vectorAlignment returns the natural alignment in bytes for a vector of
// the given total bit width.
func vectorAlignment(bitWidth int) int {
	switch {
	case bitWidth <= 64:
		return 8
	case bitWidth <= 128:
		return 16
	case bitWidth <= 256:
		return 32
	default:
		return 64
	}
}

// scanUsage walks prog recording every runtime ABI symbol referenced, to
// drive Minimal-mode declaration emission.
func (e *Emitter) scanUsage(prog *ast.Program) {
	var walkExpr func(ast.Expr)
	var walkStmt func(ast.Stmt)

	markMethod := func(typeName, method string, static bool) {
		if m, ok := runtimeabi.Lookup(typeName, method, static); ok {
			e.used[m.Symbol] = true
		}
	}

	walkExpr = func(x ast.Expr) {
		if x == nil {
			return
		}
		switch n := x.(type) {
		case *ast.UnaryExpr:
			walkExpr(n.X)
		case *ast.BinaryExpr:
			walkExpr(n.Left)
			walkExpr(n.Right)
		case *ast.SimdBinaryExpr:
			walkExpr(n.Left)
			walkExpr(n.Right)
		case *ast.VectorLit:
			for _, v := range n.Values {
				walkExpr(v)
			}
		case *ast.VectorLoad:
			walkExpr(n.Ptr)
		case *ast.VectorStore:
			walkExpr(n.Ptr)
			walkExpr(n.Value)
		case *ast.Reduction:
			walkExpr(n.X)
		case *ast.DotProduct:
			walkExpr(n.Left)
			walkExpr(n.Right)
		case *ast.CallExpr:
			switch n.Callee {
			case "print", "println":
				e.used["puts"] = true
			case "print_i32":
				e.used["printf"] = true
			case "read_line":
				e.used["fgets"] = true
			}
			for _, a := range n.Args {
				walkExpr(a)
			}
		case *ast.MethodCall:
			walkExpr(n.Receiver)
			if typeName := stdTypeNameOf(n.Receiver.Type()); typeName != "" {
				markMethod(typeName, n.Method, false)
			}
			for _, a := range n.Args {
				walkExpr(a)
			}
		case *ast.StaticMethodCall:
			markMethod(n.TypeName, n.Method, true)
			for _, a := range n.Args {
				walkExpr(a)
			}
		case *ast.FieldAccess:
			walkExpr(n.Base)
		case *ast.IndexExpr:
			walkExpr(n.Base)
			walkExpr(n.Index)
		case *ast.BlockExpr:
			for _, s := range n.Stmts {
				walkStmt(s)
			}
		}
	}

	walkStmt = func(s ast.Stmt) {
		switch n := s.(type) {
		case *ast.LetStmt:
			walkExpr(n.Init)
		case *ast.AssignStmt:
			walkExpr(n.Target)
			walkExpr(n.Value)
		case *ast.ExprStmt:
			walkExpr(n.X)
		case *ast.ReturnStmt:
			walkExpr(n.Value)
		case *ast.IfStmt:
			walkExpr(n.Cond)
			walkStmt(n.Then)
			if n.Else != nil {
				walkStmt(n.Else)
			}
		case *ast.WhileStmt:
			walkExpr(n.Cond)
			walkStmt(n.Body)
		case *ast.ForStmt:
			if n.Init != nil {
				walkStmt(n.Init)
			}
			walkExpr(n.Cond)
			if n.Step != nil {
				walkStmt(n.Step)
			}
			walkStmt(n.Body)
		case *ast.BlockStmt:
			for _, st := range n.Stmts {
				walkStmt(st)
			}
		case *ast.FuncDecl:
			walkStmt(n.Body)
		}
	}

	for _, d := range prog.Decls {
		walkStmt(d)
	}
}

func stdTypeNameOf(t ast.EaType) string {
	switch t.(type) {
	case ast.StdVec:
		return "Vec"
	case ast.StdHashMap:
		return "HashMap"
	case ast.StdHashSet:
		return "HashSet"
	case ast.StdString:
		return "String"
	case ast.StdFile:
		return "File"
	default:
		return ""
	}
}

func (e *Emitter) fail(format string, args ...interface{}) {
	if e.err == nil {
		e.err = &CodeGenError{Msg: fmt.Sprintf(format, args...)}
	}
}
