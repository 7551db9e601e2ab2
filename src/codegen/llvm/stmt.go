package llvm

import (
	"tinygo.org/x/go-llvm"

	"ea/src/ast"
)

// genBlock emits every statement in b in a fresh lexical scope.
func (e *Emitter) genBlock(b *ast.BlockStmt) {
	e.syms.push()
	defer e.syms.pop()
	for _, s := range b.Stmts {
		e.genStmt(s)
		if e.err != nil {
			return
		}
	}
}

func (e *Emitter) genStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.LetStmt:
		e.genLet(n)
	case *ast.AssignStmt:
		e.genAssign(n)
	case *ast.ExprStmt:
		e.genExpr(n.X)
	case *ast.ReturnStmt:
		e.genReturn(n)
	case *ast.IfStmt:
		e.genIf(n)
	case *ast.WhileStmt:
		e.genWhile(n)
	case *ast.ForStmt:
		e.genFor(n)
	case *ast.BlockStmt:
		e.genBlock(n)
	default:
		e.fail("codegen: unhandled statement %T", s)
	}
}

func (e *Emitter) genLet(n *ast.LetStmt) {
	typ := n.Typ
	var val llvm.Value
	if n.Init != nil {
		val = e.genExpr(n.Init)
		if typ == nil {
			typ = n.Init.Type()
		}
	}
	// The slot goes at the top of the entry block, so a let inside a loop
	// body does not allocate on every iteration.
	entry := e.builder.GetInsertBlock().Parent().EntryBasicBlock()
	ab := e.ctx.NewBuilder()
	defer ab.Dispose()
	if first := entry.FirstInstruction(); first.IsNil() {
		ab.SetInsertPointAtEnd(entry)
	} else {
		ab.SetInsertPointBefore(first)
	}
	alloca := ab.CreateAlloca(e.llvmType(typ), n.Name+".addr")
	if n.Init != nil {
		e.builder.CreateStore(val, alloca)
	}
	e.syms.declare(n.Name, alloca, typ)
}

// genAssign lowers `target = value`. Only Ident targets are
// supported here: FieldAccess/IndexExpr lvalues are part of the struct/Vec
// surface vslc never modeled, left to future work
// (struct-field and Vec-index assignment are both parsed and type-checked,
// but codegen for them currently reports a CodeGenError rather than
// silently miscompiling).
func (e *Emitter) genAssign(n *ast.AssignStmt) {
	val := e.genExpr(n.Value)
	ident, ok := n.Target.(*ast.Ident)
	if !ok {
		e.fail("codegen: assignment to %T is not yet lowered", n.Target)
		return
	}
	entry, ok := e.syms.lookup(ident.Name)
	if !ok {
		e.fail("codegen: undeclared lvalue %q reached codegen", ident.Name)
		return
	}
	e.builder.CreateStore(val, entry.ptr)
}

func (e *Emitter) genReturn(n *ast.ReturnStmt) {
	if n.Value == nil {
		e.builder.CreateRetVoid()
		return
	}
	v := e.genExpr(n.Value)
	e.builder.CreateRet(v)
}

// genIf lowers an if/else into a diamond of basic blocks. The merge block
// is always created, but only arms left unterminated branch to it, so an
// arm ending in `return` gets no extra branch; when every arm returns, the
// merge block stays empty until later code or genFunc terminates it.
func (e *Emitter) genIf(n *ast.IfStmt) {
	cond := e.genExpr(n.Cond)
	fn := e.builder.GetInsertBlock().Parent()

	thenBlk := e.ctx.AddBasicBlock(fn, "if.then")
	elseBlk := e.ctx.AddBasicBlock(fn, "if.else")
	mergeBlk := e.ctx.AddBasicBlock(fn, "if.merge")

	e.builder.CreateCondBr(cond, thenBlk, elseBlk)

	e.builder.SetInsertPointAtEnd(thenBlk)
	e.genBlock(n.Then)
	e.branchToMergeIfOpen(mergeBlk)

	e.builder.SetInsertPointAtEnd(elseBlk)
	if n.Else != nil {
		e.genBlock(n.Else)
	}
	e.branchToMergeIfOpen(mergeBlk)

	e.builder.SetInsertPointAtEnd(mergeBlk)
}

func (e *Emitter) branchToMergeIfOpen(merge llvm.BasicBlock) {
	cur := e.builder.GetInsertBlock()
	if last := cur.LastInstruction(); last.IsNil() || !isTerminator(last) {
		e.builder.CreateBr(merge)
	}
}

func (e *Emitter) genWhile(n *ast.WhileStmt) {
	fn := e.builder.GetInsertBlock().Parent()
	condBlk := e.ctx.AddBasicBlock(fn, "while.cond")
	bodyBlk := e.ctx.AddBasicBlock(fn, "while.body")
	endBlk := e.ctx.AddBasicBlock(fn, "while.end")

	e.builder.CreateBr(condBlk)
	e.builder.SetInsertPointAtEnd(condBlk)
	cond := e.genExpr(n.Cond)
	e.builder.CreateCondBr(cond, bodyBlk, endBlk)

	e.builder.SetInsertPointAtEnd(bodyBlk)
	e.genBlock(n.Body)
	e.branchToMergeIfOpen(condBlk)

	e.builder.SetInsertPointAtEnd(endBlk)
}

func (e *Emitter) genFor(n *ast.ForStmt) {
	e.syms.push()
	defer e.syms.pop()

	if n.Init != nil {
		e.genStmt(n.Init)
	}

	fn := e.builder.GetInsertBlock().Parent()
	condBlk := e.ctx.AddBasicBlock(fn, "for.cond")
	bodyBlk := e.ctx.AddBasicBlock(fn, "for.body")
	stepBlk := e.ctx.AddBasicBlock(fn, "for.step")
	endBlk := e.ctx.AddBasicBlock(fn, "for.end")

	e.builder.CreateBr(condBlk)
	e.builder.SetInsertPointAtEnd(condBlk)
	if n.Cond != nil {
		cond := e.genExpr(n.Cond)
		e.builder.CreateCondBr(cond, bodyBlk, endBlk)
	} else {
		e.builder.CreateBr(bodyBlk)
	}

	e.builder.SetInsertPointAtEnd(bodyBlk)
	e.genBlock(n.Body)
	e.branchToMergeIfOpen(stepBlk)

	e.builder.SetInsertPointAtEnd(stepBlk)
	if n.Step != nil {
		e.genStmt(n.Step)
	}
	e.branchToMergeIfOpen(condBlk)

	e.builder.SetInsertPointAtEnd(endBlk)
}
