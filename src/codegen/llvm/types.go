package llvm

import (
	"tinygo.org/x/go-llvm"

	"ea/src/ast"
	"ea/src/runtimeabi"
	"ea/src/token"
)

// llvmType lowers an Eä type to its LLVM representation. Stdlib
// handles and C strings both lower to i8*, matching the runtime ABI's
// Opaque/CString convention (runtimeabi.ABIType).
func (e *Emitter) llvmType(t ast.EaType) llvm.Type {
	switch v := t.(type) {
	case ast.Primitive:
		return e.primitiveType(v.Kind)
	case ast.Vector:
		return llvm.VectorType(e.primitiveType(elemToPrimitiveKind(v.Elem)), v.Lanes)
	case ast.Array:
		return llvm.ArrayType(e.llvmType(v.Elem), v.Len)
	case ast.StdVec, ast.StdHashMap, ast.StdHashSet, ast.StdString, ast.StdFile:
		return llvm.PointerType(e.ctx.Int8Type(), 0)
	case ast.Unit:
		return e.ctx.VoidType()
	default:
		e.fail("no LLVM representation for type %s", t)
		return e.ctx.VoidType()
	}
}

func (e *Emitter) primitiveType(k token.Kind) llvm.Type {
	switch k {
	case token.I8, token.U8:
		return e.ctx.Int8Type()
	case token.I16, token.U16:
		return e.ctx.Int16Type()
	case token.I32, token.U32:
		return e.ctx.Int32Type()
	case token.I64, token.U64:
		return e.ctx.Int64Type()
	case token.F32:
		return e.ctx.FloatType()
	case token.F64:
		return e.ctx.DoubleType()
	case token.BOOL_TYPE:
		return e.ctx.Int1Type()
	case token.STRING_TYPE:
		return llvm.PointerType(e.ctx.Int8Type(), 0)
	default:
		e.fail("unsupported primitive kind %s", k)
		return e.ctx.VoidType()
	}
}

func elemToPrimitiveKind(e token.ElementKind) token.Kind {
	switch e {
	case token.ElemI8:
		return token.I8
	case token.ElemI16:
		return token.I16
	case token.ElemI32:
		return token.I32
	case token.ElemI64:
		return token.I64
	case token.ElemU8:
		return token.U8
	case token.ElemU16:
		return token.U16
	case token.ElemU32:
		return token.U32
	case token.ElemU64:
		return token.U64
	case token.ElemF32:
		return token.F32
	default:
		return token.F64
	}
}

// abiLLVMType lowers a runtimeabi.ABIType, the fixed C-side calling
// convention, to its LLVM representation.
func (e *Emitter) abiLLVMType(t runtimeabi.ABIType) llvm.Type {
	switch t {
	case runtimeabi.I32:
		return e.ctx.Int32Type()
	case runtimeabi.I64:
		return e.ctx.Int64Type()
	case runtimeabi.Void:
		return e.ctx.VoidType()
	default: // Opaque, CString
		return llvm.PointerType(e.ctx.Int8Type(), 0)
	}
}
