// Package checker implements the Eä type checker: it walks a parsed
// ast.Program, resolves names against a scope stack, infers and validates
// types in place on every expression, and collects TypeErrors into a
// diag.Bag. Checking never stops at the first error — a poison type
// (ast.Poison) is substituted wherever an expression's real type could not
// be determined, so that later errors are not needlessly cascaded.
//
// The shape mirrors vslc's two-piece design (ir/symtab.go +
// ir/validate.go): a flat scope stack plus a recursive tree-walk that both
// validates and decorates nodes, generalized from VSL's int/float-only rule
// table to Eä's primitive/vector/stdlib type system.
package checker

import (
	"ea/src/ast"
	"ea/src/diag"
	"ea/src/runtimeabi"
	"ea/src/token"
)

// builtins are the reserved free functions with fixed signatures that are
// not stdlib methods: print/println take a string,
// print_i32 takes an i32, read_line takes nothing and returns a string.
var builtins = map[string]ast.Function{
	"print":     {Params: []ast.EaType{ast.Primitive{Kind: token.STRING_TYPE}}, Ret: ast.Unit{}},
	"println":   {Params: []ast.EaType{ast.Primitive{Kind: token.STRING_TYPE}}, Ret: ast.Unit{}},
	"print_i32":  {Params: []ast.EaType{ast.Primitive{Kind: token.I32}}, Ret: ast.Unit{}},
	"read_line":  {Params: nil, Ret: ast.Primitive{Kind: token.STRING_TYPE}},
}

// Checker holds the state threaded through one type-checking pass.
type Checker struct {
	bag       *diag.Bag
	syms      *SymbolTable
	funcs     *FuncTable
	structs   map[string][]ast.StructField
	retStack  []ast.EaType // Return type of the function(s) currently being checked.
}

// New returns a Checker with empty tables.
func New() *Checker {
	return &Checker{
		bag:     diag.NewBag(),
		syms:    NewSymbolTable(),
		funcs:   NewFuncTable(),
		structs: make(map[string][]ast.StructField),
	}
}

// Check type-checks prog in place and returns the diagnostics collected.
// The annotated AST is prog itself: every Expr's SetType has been called by
// the time Check returns.
func Check(prog *ast.Program) *diag.Bag {
	c := New()

	// Pass 1: register every top-level struct and function signature, so
	// forward references (a function calling one declared later in the
	// file) resolve: name resolution is static, but that does not mean
	// declaration-order-only.
	for _, d := range prog.Decls {
		switch n := d.(type) {
		case *ast.StructDecl:
			c.structs[n.Name] = n.Fields
		case *ast.FuncDecl:
			sig := ast.Function{Ret: c.resolveAnnotation(n.Ret)}
			for _, p := range n.Params {
				sig.Params = append(sig.Params, c.resolveAnnotation(p.Typ))
			}
			if !c.funcs.Declare(n.Name, sig) {
				c.bag.Errorf(diag.TypeSignatureMismatch, n.Span(), "function %q redeclared (no overloading)", n.Name)
			}
		}
	}

	// Pass 2: check every function body.
	for _, d := range prog.Decls {
		if fn, ok := d.(*ast.FuncDecl); ok {
			c.checkFunc(fn)
		}
	}
	return c.bag
}

// resolveAnnotation converts a parser-supplied type annotation into its
// checked form: Custom(stdlib-name) is promoted to the matching StdXxx;
// nil means "no annotation" and is passed through.
func (c *Checker) resolveAnnotation(t ast.EaType) ast.EaType {
	if t == nil {
		return nil
	}
	if cu, ok := t.(ast.Custom); ok {
		if std, ok := resolveCustom(cu); ok {
			return std
		}
		// Not a sealed stdlib name: treat as an opaque user struct type,
		// which the checker accepts nominally without field inference
		// when used only for typed let/param/return annotations.
		return cu
	}
	if v, ok := t.(ast.Vector); ok && !v.Valid() {
		return ast.Poison{}
	}
	return t
}

func (c *Checker) checkFunc(fn *ast.FuncDecl) {
	c.syms.Push()
	defer c.syms.Pop()

	retType := c.resolveAnnotation(fn.Ret)
	c.retStack = append(c.retStack, retType)
	defer func() { c.retStack = c.retStack[:len(c.retStack)-1] }()

	for _, p := range fn.Params {
		c.syms.Declare(p.Name, Symbol{Type: c.resolveAnnotation(p.Typ), Span: fn.Span()})
	}

	c.checkBlock(fn.Body)

	if _, isUnit := retType.(ast.Unit); !isUnit && retType != nil {
		if !blockReturns(fn.Body) {
			c.bag.Errorf(diag.TypeMissingReturn, fn.Span(),
				"function %q must return %s on every path", fn.Name, retType)
		}
	}
}

func (c *Checker) currentRet() ast.EaType {
	if len(c.retStack) == 0 {
		return ast.Unit{}
	}
	return c.retStack[len(c.retStack)-1]
}

func (c *Checker) checkBlock(b *ast.BlockStmt) {
	c.syms.Push()
	defer c.syms.Pop()
	for _, s := range b.Stmts {
		c.checkStmt(s)
	}
}

func (c *Checker) checkStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.LetStmt:
		c.checkLet(n)
	case *ast.AssignStmt:
		c.checkAssign(n)
	case *ast.ExprStmt:
		c.checkExpr(n.X)
	case *ast.ReturnStmt:
		c.checkReturn(n)
	case *ast.IfStmt:
		c.checkExpr(n.Cond)
		c.checkBlock(n.Then)
		if n.Else != nil {
			c.checkBlock(n.Else)
		}
	case *ast.WhileStmt:
		c.checkExpr(n.Cond)
		c.checkBlock(n.Body)
	case *ast.ForStmt:
		c.syms.Push()
		defer c.syms.Pop()
		if n.Init != nil {
			c.checkStmt(n.Init)
		}
		if n.Cond != nil {
			c.checkExpr(n.Cond)
		}
		if n.Step != nil {
			c.checkStmt(n.Step)
		}
		c.checkBlock(n.Body)
	case *ast.BlockStmt:
		c.checkBlock(n)
	case *ast.ImportStmt:
		// Reserved but not semantically active.
	}
}

func (c *Checker) checkLet(n *ast.LetStmt) {
	var initType ast.EaType = ast.Poison{}
	if n.Init != nil {
		initType = c.checkExpr(n.Init)
	}
	declared := c.resolveAnnotation(n.Typ)
	var final ast.EaType
	switch {
	case declared != nil && n.Init != nil:
		if !assignable(declared, initType) {
			c.bag.Errorf(diag.TypeSignatureMismatch, n.Span(),
				"cannot initialize %q of type %s with value of type %s", n.Name, declared, initType)
		}
		final = declared
	case declared != nil:
		final = declared
	default:
		final = initType
	}
	if !c.syms.Declare(n.Name, Symbol{Type: final, Mutable: n.Mutable, Span: n.Span()}) {
		c.bag.Errorf(diag.TypeSignatureMismatch, n.Span(), "%q redeclared in this scope", n.Name)
	}
}

func (c *Checker) checkAssign(n *ast.AssignStmt) {
	valType := c.checkExpr(n.Value)
	var targetType ast.EaType = ast.Poison{}
	switch t := n.Target.(type) {
	case *ast.Ident:
		sym, ok := c.syms.Resolve(t.Name)
		if !ok {
			c.bag.Errorf(diag.TypeUndefinedName, t.Span(), "undefined name %q", t.Name)
			break
		}
		if !sym.Mutable {
			c.bag.Errorf(diag.TypeImmutableAssignment, n.Span(), "cannot assign to immutable binding %q", t.Name)
		}
		targetType = sym.Type
	default:
		targetType = c.checkExpr(n.Target)
	}
	if !assignable(targetType, valType) {
		c.bag.Errorf(diag.TypeSignatureMismatch, n.Span(), "cannot assign value of type %s to target of type %s", valType, targetType)
	}
}

func (c *Checker) checkReturn(n *ast.ReturnStmt) {
	want := c.currentRet()
	if n.Value == nil {
		if _, isUnit := want.(ast.Unit); !isUnit {
			c.bag.Errorf(diag.TypeSignatureMismatch, n.Span(), "expected return value of type %s", want)
		}
		return
	}
	got := c.checkExpr(n.Value)
	if !assignable(want, got) {
		c.bag.Errorf(diag.TypeSignatureMismatch, n.Span(), "return type mismatch: expected %s, got %s", want, got)
	}
}

// assignable reports whether a value of type src can be used where dst is
// expected: exact structural match, implicit same-signedness widening,
// or either side being poison.
func assignable(dst, src ast.EaType) bool {
	if dst == nil || src == nil || ast.IsPoison(dst) || ast.IsPoison(src) {
		return true
	}
	if ast.TypesEqual(dst, src) {
		return true
	}
	if ast.IsInteger(dst) && ast.IsInteger(src) &&
		ast.IsSignedInteger(dst) == ast.IsSignedInteger(src) &&
		ast.IntWidth(dst) >= ast.IntWidth(src) {
		return true
	}
	return false
}
