package llvm

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"ea/src/ast"
	"ea/src/runtimeabi"
	"ea/src/token"
)

// genExpr lowers x to the llvm.Value computing its result. Every
// Expr reaching here has already been decorated with a resolved type by
// the checker, so genExpr trusts x.Type() rather than re-deriving it.
func (e *Emitter) genExpr(x ast.Expr) llvm.Value {
	switch n := x.(type) {
	case *ast.IntLit:
		return llvm.ConstInt(e.llvmType(n.Type()), uint64(n.Value), true)
	case *ast.FloatLit:
		return llvm.ConstFloat(e.llvmType(n.Type()), n.Value)
	case *ast.BoolLit:
		v := uint64(0)
		if n.Value {
			v = 1
		}
		return llvm.ConstInt(e.ctx.Int1Type(), v, false)
	case *ast.StringLit:
		return e.builder.CreateGlobalStringPtr(n.Value, "str")
	case *ast.Ident:
		return e.genIdent(n)
	case *ast.UnaryExpr:
		return e.genUnary(n)
	case *ast.BinaryExpr:
		return e.genBinary(n)
	case *ast.SimdBinaryExpr:
		return e.genSimdBinary(n)
	case *ast.VectorLit:
		return e.genVectorLit(n)
	case *ast.VectorLoad:
		return e.genVectorLoad(n)
	case *ast.VectorStore:
		return e.genVectorStore(n)
	case *ast.Reduction:
		return e.genReduction(n)
	case *ast.DotProduct:
		return e.genDotProduct(n)
	case *ast.CallExpr:
		return e.genCall(n)
	case *ast.MethodCall:
		return e.genMethodCall(n)
	case *ast.StaticMethodCall:
		return e.genStaticMethodCall(n)
	case *ast.BlockExpr:
		return e.genBlockExpr(n)
	default:
		e.fail("codegen: unhandled expression %T", x)
		return llvm.Value{}
	}
}

func (e *Emitter) genIdent(n *ast.Ident) llvm.Value {
	entry, ok := e.syms.lookup(n.Name)
	if !ok {
		e.fail("codegen: undeclared identifier %q reached codegen", n.Name)
		return llvm.Value{}
	}
	return e.builder.CreateLoad(e.llvmType(entry.typ), entry.ptr, n.Name)
}

func (e *Emitter) genUnary(n *ast.UnaryExpr) llvm.Value {
	if n.Op == token.AMP {
		ident, ok := n.X.(*ast.Ident)
		if !ok {
			e.fail("codegen: `&` only supported on a plain local")
			return llvm.Value{}
		}
		entry, ok := e.syms.lookup(ident.Name)
		if !ok {
			e.fail("codegen: undeclared identifier %q reached codegen", ident.Name)
			return llvm.Value{}
		}
		return entry.ptr
	}
	x := e.genExpr(n.X)
	switch n.Op {
	case token.MINUS:
		if ast.IsFloat(n.X.Type()) {
			return e.builder.CreateFNeg(x, "neg")
		}
		return e.builder.CreateNeg(x, "neg")
	case token.NOT:
		return e.builder.CreateNot(x, "not")
	default:
		e.fail("codegen: unsupported unary operator %s", n.Op)
		return llvm.Value{}
	}
}

func (e *Emitter) genBinary(n *ast.BinaryExpr) llvm.Value {
	l := e.genExpr(n.Left)
	r := e.genExpr(n.Right)
	isFloat := ast.IsFloat(n.Left.Type()) || ast.IsFloat(n.Right.Type())
	signed := ast.IsSignedInteger(n.Left.Type()) || ast.IsSignedInteger(n.Right.Type())
	return e.arith(n.Op, l, r, isFloat, signed, "bin")
}

// arith lowers a scalar or (when called from genSimdBinary) element-wise
// binary operator to the matching LLVM instruction, dispatching on whether
// the operand type is floating point and, for integer comparisons, whether
// either operand is signed (the checker's implicit-widening rule means a
// mixed signed/unsigned pair has already been rejected, so by the time
// codegen sees one operand signed, both effectively are for this purpose).
func (e *Emitter) arith(op token.Kind, l, r llvm.Value, isFloat, signed bool, name string) llvm.Value {
	if isFloat {
		switch op {
		case token.PLUS, token.DOT_PLUS:
			return e.builder.CreateFAdd(l, r, name)
		case token.MINUS, token.DOT_MINUS:
			return e.builder.CreateFSub(l, r, name)
		case token.STAR, token.DOT_STAR:
			return e.builder.CreateFMul(l, r, name)
		case token.SLASH, token.DOT_SLASH:
			return e.builder.CreateFDiv(l, r, name)
		case token.EQ, token.DOT_EQ:
			return e.builder.CreateFCmp(llvm.FloatOEQ, l, r, name)
		case token.NEQ, token.DOT_NEQ:
			return e.builder.CreateFCmp(llvm.FloatONE, l, r, name)
		case token.LT, token.DOT_LT:
			return e.builder.CreateFCmp(llvm.FloatOLT, l, r, name)
		case token.LE, token.DOT_LE:
			return e.builder.CreateFCmp(llvm.FloatOLE, l, r, name)
		case token.GT, token.DOT_GT:
			return e.builder.CreateFCmp(llvm.FloatOGT, l, r, name)
		case token.GE, token.DOT_GE:
			return e.builder.CreateFCmp(llvm.FloatOGE, l, r, name)
		default:
			e.fail("codegen: operator %s is not valid on floating point operands", op)
			return llvm.Value{}
		}
	}

	switch op {
	case token.PLUS, token.DOT_PLUS:
		return e.builder.CreateAdd(l, r, name)
	case token.MINUS, token.DOT_MINUS:
		return e.builder.CreateSub(l, r, name)
	case token.STAR, token.DOT_STAR:
		return e.builder.CreateMul(l, r, name)
	case token.SLASH, token.DOT_SLASH:
		if signed {
			return e.builder.CreateSDiv(l, r, name)
		}
		return e.builder.CreateUDiv(l, r, name)
	case token.PERCENT:
		if signed {
			return e.builder.CreateSRem(l, r, name)
		}
		return e.builder.CreateURem(l, r, name)
	case token.AMP, token.DOT_AMP:
		return e.builder.CreateAnd(l, r, name)
	case token.PIPE, token.DOT_PIPE:
		return e.builder.CreateOr(l, r, name)
	case token.CARET, token.DOT_CARET:
		return e.builder.CreateXor(l, r, name)
	case token.SHL:
		return e.builder.CreateShl(l, r, name)
	case token.SHR:
		if signed {
			return e.builder.CreateAShr(l, r, name)
		}
		return e.builder.CreateLShr(l, r, name)
	case token.AND_AND:
		return e.builder.CreateAnd(l, r, name)
	case token.OR_OR:
		return e.builder.CreateOr(l, r, name)
	case token.EQ, token.DOT_EQ:
		return e.builder.CreateICmp(llvm.IntEQ, l, r, name)
	case token.NEQ, token.DOT_NEQ:
		return e.builder.CreateICmp(llvm.IntNE, l, r, name)
	case token.LT, token.DOT_LT:
		return e.builder.CreateICmp(signedPred(signed, llvm.IntSLT, llvm.IntULT), l, r, name)
	case token.LE, token.DOT_LE:
		return e.builder.CreateICmp(signedPred(signed, llvm.IntSLE, llvm.IntULE), l, r, name)
	case token.GT, token.DOT_GT:
		return e.builder.CreateICmp(signedPred(signed, llvm.IntSGT, llvm.IntUGT), l, r, name)
	case token.GE, token.DOT_GE:
		return e.builder.CreateICmp(signedPred(signed, llvm.IntSGE, llvm.IntUGE), l, r, name)
	default:
		e.fail("codegen: unsupported binary operator %s", op)
		return llvm.Value{}
	}
}

func signedPred(signed bool, s, u llvm.IntPredicate) llvm.IntPredicate {
	if signed {
		return s
	}
	return u
}

// genSimdBinary lowers a dotted element-wise operator. Arithmetic dotted
// ops reduce to the plain vector instruction (LLVM's add/fadd/etc. are
// already element-wise over vector operands); dotted comparisons produce
// an <N x i1> mask that must be sign-extended to the integer mask vector
// type ast.VectorMaskType names, since Eä masks are same-width integer
// vectors rather than raw i1 vectors.
func (e *Emitter) genSimdBinary(n *ast.SimdBinaryExpr) llvm.Value {
	l := e.genExpr(n.Left)
	r := e.genExpr(n.Right)
	vecType, ok := n.Left.Type().(ast.Vector)
	if !ok {
		e.fail("codegen: internal: dotted operator operand is not a vector type")
		return llvm.Value{}
	}
	isFloat := !vecType.Elem.IsInteger()
	signed := vecType.Elem.IsSigned()

	switch n.Op {
	case token.DOT_EQ, token.DOT_NEQ, token.DOT_LT, token.DOT_LE, token.DOT_GT, token.DOT_GE:
		mask := e.arith(n.Op, l, r, isFloat, signed, "simd.cmp")
		maskType := ast.VectorMaskType(vecType)
		return e.builder.CreateSExt(mask, e.llvmType(maskType), "simd.mask")
	default:
		return e.arith(n.Op, l, r, isFloat, signed, "simd")
	}
}

func (e *Emitter) genVectorLit(n *ast.VectorLit) llvm.Value {
	elemKind := elemToPrimitiveKind(n.VecTyp.Elem)
	elemType := e.primitiveType(elemKind)
	vecType := llvm.VectorType(elemType, n.VecTyp.Lanes)
	acc := llvm.Undef(vecType)
	for i, v := range n.Values {
		val := e.genExpr(v)
		idx := llvm.ConstInt(e.ctx.Int32Type(), uint64(i), false)
		acc = e.builder.CreateInsertElement(acc, val, idx, fmt.Sprintf("vlit%d", i))
	}
	return acc
}

func (e *Emitter) genVectorLoad(n *ast.VectorLoad) llvm.Value {
	ptr := e.genExpr(n.Ptr)
	elemType := e.primitiveType(elemToPrimitiveKind(n.VecTyp.Elem))
	vecType := llvm.VectorType(elemType, n.VecTyp.Lanes)
	castPtr := e.builder.CreateBitCast(ptr, llvm.PointerType(vecType, 0), "load_vector.ptr")
	load := e.builder.CreateLoad(vecType, castPtr, "load_vector")
	align := n.Align
	if align == 0 {
		align = vectorAlignment(n.VecTyp.Width())
	}
	load.SetAlignment(align)
	return load
}

func (e *Emitter) genVectorStore(n *ast.VectorStore) llvm.Value {
	val := e.genExpr(n.Value)
	ptr := e.genExpr(n.Ptr)
	vt, ok := n.Value.Type().(ast.Vector)
	if !ok {
		e.fail("codegen: internal: store_vector value is not a vector type")
		return llvm.Value{}
	}
	vecType := e.llvmType(vt)
	castPtr := e.builder.CreateBitCast(ptr, llvm.PointerType(vecType, 0), "store_vector.ptr")
	store := e.builder.CreateStore(val, castPtr)
	align := n.Align
	if align == 0 {
		align = vectorAlignment(token.VectorSpelling{Elem: vt.Elem, Lanes: vt.Lanes}.Width())
	}
	store.SetAlignment(align)
	return store
}

// genReduction lowers horizontal_sum/min/max to an extract/fold tree over
// the vector's lanes. LLVM's experimental.vector.reduce intrinsics
// would also serve here; extract/fold is used instead because it needs no
// intrinsic-signature bookkeeping and the optimizer recognizes the pattern
// and vectorizes the reduction itself.
func (e *Emitter) genReduction(n *ast.Reduction) llvm.Value {
	vec := e.genExpr(n.X)
	vt, ok := n.X.Type().(ast.Vector)
	if !ok {
		e.fail("codegen: internal: reduction operand is not a vector type")
		return llvm.Value{}
	}
	isFloat := !vt.Elem.IsInteger()
	signed := vt.Elem.IsSigned()

	extract := func(i int) llvm.Value {
		idx := llvm.ConstInt(e.ctx.Int32Type(), uint64(i), false)
		return e.builder.CreateExtractElement(vec, idx, fmt.Sprintf("lane%d", i))
	}

	acc := extract(0)
	for i := 1; i < vt.Lanes; i++ {
		lane := extract(i)
		switch n.Kind {
		case ast.ReduceSum:
			if isFloat {
				acc = e.builder.CreateFAdd(acc, lane, "hsum")
			} else {
				acc = e.builder.CreateAdd(acc, lane, "hsum")
			}
		case ast.ReduceMin:
			acc = e.selectMinMax(acc, lane, isFloat, signed, true)
		case ast.ReduceMax:
			acc = e.selectMinMax(acc, lane, isFloat, signed, false)
		}
	}
	return acc
}

func (e *Emitter) selectMinMax(a, b llvm.Value, isFloat, signed, wantMin bool) llvm.Value {
	var cond llvm.Value
	if isFloat {
		pred := llvm.FloatOGT
		if wantMin {
			pred = llvm.FloatOLT
		}
		cond = e.builder.CreateFCmp(pred, a, b, "minmax.cmp")
	} else {
		var pred llvm.IntPredicate
		switch {
		case wantMin && signed:
			pred = llvm.IntSLT
		case wantMin && !signed:
			pred = llvm.IntULT
		case !wantMin && signed:
			pred = llvm.IntSGT
		default:
			pred = llvm.IntUGT
		}
		cond = e.builder.CreateICmp(pred, a, b, "minmax.cmp")
	}
	return e.builder.CreateSelect(cond, a, b, "minmax")
}

// genDotProduct lowers dot_product(a, b) as an elementwise multiply
// followed by the same extract/fold sum a horizontal_sum would use. Per
// the resolved open question on integer overflow (ast/checker records the
// decision that dot_product wraps rather than widens), no extending
// multiply is emitted even for integer lanes.
func (e *Emitter) genDotProduct(n *ast.DotProduct) llvm.Value {
	l := e.genExpr(n.Left)
	r := e.genExpr(n.Right)
	vt, ok := n.Left.Type().(ast.Vector)
	if !ok {
		e.fail("codegen: internal: dot_product operand is not a vector type")
		return llvm.Value{}
	}
	isFloat := !vt.Elem.IsInteger()
	var prod llvm.Value
	if isFloat {
		prod = e.builder.CreateFMul(l, r, "dotprod.mul")
	} else {
		prod = e.builder.CreateMul(l, r, "dotprod.mul")
	}
	acc := e.builder.CreateExtractElement(prod, llvm.ConstInt(e.ctx.Int32Type(), 0, false), "dotprod.lane0")
	for i := 1; i < vt.Lanes; i++ {
		lane := e.builder.CreateExtractElement(prod, llvm.ConstInt(e.ctx.Int32Type(), uint64(i), false), fmt.Sprintf("dotprod.lane%d", i))
		if isFloat {
			acc = e.builder.CreateFAdd(acc, lane, "dotprod.sum")
		} else {
			acc = e.builder.CreateAdd(acc, lane, "dotprod.sum")
		}
	}
	return acc
}

// genCall lowers builtin calls (print/println/print_i32/read_line) and
// plain user function calls.
func (e *Emitter) genCall(n *ast.CallExpr) llvm.Value {
	switch n.Callee {
	case "print", "println":
		return e.genPrint(n)
	case "print_i32":
		return e.genPrintI32(n)
	case "read_line":
		return e.genReadLine(n)
	}
	fn, ok := e.funcs[n.Callee]
	if !ok {
		e.fail("codegen: undeclared function %q reached codegen", n.Callee)
		return llvm.Value{}
	}
	args := make([]llvm.Value, len(n.Args))
	for i, a := range n.Args {
		args[i] = e.genExpr(a)
	}
	name := ""
	if _, isUnit := n.Type().(ast.Unit); !isUnit {
		name = "call"
	}
	return e.builder.CreateCall(fn.GlobalValueType(), fn, args, name)
}

func (e *Emitter) genPrint(n *ast.CallExpr) llvm.Value {
	puts := e.mod.NamedFunction("puts")
	var str llvm.Value
	if len(n.Args) > 0 {
		str = e.genExpr(n.Args[0])
	} else {
		str = e.builder.CreateGlobalStringPtr("", "empty")
	}
	return e.builder.CreateCall(puts.GlobalValueType(), puts, []llvm.Value{str}, "")
}

func (e *Emitter) genPrintI32(n *ast.CallExpr) llvm.Value {
	printf := e.mod.NamedFunction("printf")
	fmtStr := e.builder.CreateGlobalStringPtr("%d\n", "fmt.i32")
	v := e.genExpr(n.Args[0])
	return e.builder.CreateCall(printf.GlobalValueType(), printf, []llvm.Value{fmtStr, v}, "")
}

// genReadLine lowers `read_line()` to a fixed-size 1 KiB stack buffer
// passed to fgets(3); the line is read into that bounded buffer rather
// than a dynamically growing one.
func (e *Emitter) genReadLine(n *ast.CallExpr) llvm.Value {
	const bufSize = 1024
	fgets := e.mod.NamedFunction("fgets")
	i8p := llvm.PointerType(e.ctx.Int8Type(), 0)
	buf := e.builder.CreateAlloca(llvm.ArrayType(e.ctx.Int8Type(), bufSize), "readline.buf")
	bufPtr := e.builder.CreateBitCast(buf, i8p, "readline.ptr")
	size := llvm.ConstInt(e.ctx.Int32Type(), bufSize, false)
	stdin := e.stdinHandle()
	e.builder.CreateCall(fgets.GlobalValueType(), fgets, []llvm.Value{bufPtr, size, stdin}, "readline.call")
	return bufPtr
}

// stdinHandle returns a declared-on-demand reference to libc's stdin
// FILE* global, which glibc and most libcs export directly.
func (e *Emitter) stdinHandle() llvm.Value {
	const name = "stdin"
	if g := e.mod.NamedGlobal(name); !g.IsNil() {
		return e.builder.CreateLoad(llvm.PointerType(e.ctx.Int8Type(), 0), g, "stdin")
	}
	g := llvm.AddGlobal(e.mod, llvm.PointerType(e.ctx.Int8Type(), 0), name)
	return e.builder.CreateLoad(llvm.PointerType(e.ctx.Int8Type(), 0), g, "stdin")
}

// genMethodCall and genStaticMethodCall lower stdlib calls against the
// runtime ABI table, the single source of truth both the checker and this
// emitter read from.
func (e *Emitter) genMethodCall(n *ast.MethodCall) llvm.Value {
	typeName := stdTypeNameOf(n.Receiver.Type())
	m, ok := runtimeabi.Lookup(typeName, n.Method, false)
	if !ok {
		e.fail("codegen: internal: unresolved method %s.%s reached codegen", typeName, n.Method)
		return llvm.Value{}
	}
	recv := e.genExpr(n.Receiver)
	args := append([]llvm.Value{recv}, e.genArgs(n.Args)...)
	return e.genRuntimeCall(m, args)
}

func (e *Emitter) genStaticMethodCall(n *ast.StaticMethodCall) llvm.Value {
	m, ok := runtimeabi.Lookup(n.TypeName, n.Method, true)
	if !ok {
		e.fail("codegen: internal: unresolved static method %s::%s reached codegen", n.TypeName, n.Method)
		return llvm.Value{}
	}
	args := e.genArgs(n.Args)
	return e.genRuntimeCall(m, args)
}

func (e *Emitter) genArgs(args []ast.Expr) []llvm.Value {
	out := make([]llvm.Value, len(args))
	for i, a := range args {
		out[i] = e.genExpr(a)
	}
	return out
}

func (e *Emitter) genRuntimeCall(m runtimeabi.Method, args []llvm.Value) llvm.Value {
	fn := e.mod.NamedFunction(m.Symbol)
	if fn.IsNil() {
		e.fail("codegen: internal: runtime symbol %q was not declared", m.Symbol)
		return llvm.Value{}
	}
	name := ""
	if m.Ret != runtimeabi.Void {
		name = m.Symbol + ".call"
	}
	return e.builder.CreateCall(fn.GlobalValueType(), fn, args, name)
}

func (e *Emitter) genBlockExpr(n *ast.BlockExpr) llvm.Value {
	e.syms.push()
	defer e.syms.pop()
	var last llvm.Value
	for i, s := range n.Stmts {
		if i == len(n.Stmts)-1 {
			if es, ok := s.(*ast.ExprStmt); ok {
				last = e.genExpr(es.X)
				continue
			}
		}
		e.genStmt(s)
	}
	return last
}
