package checker

import (
	"fmt"

	"ea/src/ast"
	"ea/src/diag"
	"ea/src/token"
)

// checkExpr resolves and records the type of e, returning it for callers
// that need it immediately (e.g. to check an enclosing operator). Every
// call path sets e's type via SetType before returning, so every checked
// expression carries a type even when an error was reported (ast.Poison is
// set instead of leaving the type nil).
func (c *Checker) checkExpr(e ast.Expr) ast.EaType {
	t := c.checkExprInner(e)
	e.SetType(t)
	return t
}

func (c *Checker) checkExprInner(e ast.Expr) ast.EaType {
	switch n := e.(type) {
	case *ast.IntLit:
		return ast.Primitive{Kind: token.I64}
	case *ast.FloatLit:
		return ast.Primitive{Kind: token.F64}
	case *ast.BoolLit:
		return ast.Primitive{Kind: token.BOOL_TYPE}
	case *ast.StringLit:
		return ast.Primitive{Kind: token.STRING_TYPE}
	case *ast.Ident:
		if sym, ok := c.syms.Resolve(n.Name); ok {
			return sym.Type
		}
		if sugg, ok := diag.SuggestDidYouMeanFor(n.Name, c.localNames()); ok {
			c.bag.Add(diag.Diagnostic{Kind: diag.TypeUndefinedName, Message: "undefined name " + n.Name,
				PrimarySpan: n.Span(), Suggestions: []diag.Suggestion{sugg}})
		} else {
			c.bag.Errorf(diag.TypeUndefinedName, n.Span(), "undefined name %q", n.Name)
		}
		return ast.Poison{}
	case *ast.UnaryExpr:
		return c.checkUnary(n)
	case *ast.BinaryExpr:
		return c.checkBinary(n)
	case *ast.SimdBinaryExpr:
		return c.checkSimdBinary(n)
	case *ast.VectorLit:
		return c.checkVectorLit(n)
	case *ast.VectorLoad:
		return c.checkVectorLoad(n)
	case *ast.VectorStore:
		return c.checkVectorStore(n)
	case *ast.Reduction:
		return c.checkReduction(n)
	case *ast.DotProduct:
		return c.checkDotProduct(n)
	case *ast.CallExpr:
		return c.checkCall(n)
	case *ast.MethodCall:
		return c.checkMethodCall(n)
	case *ast.StaticMethodCall:
		return c.checkStaticMethodCall(n)
	case *ast.FieldAccess:
		return c.checkFieldAccess(n)
	case *ast.IndexExpr:
		return c.checkIndex(n)
	case *ast.EnumLit:
		return ast.Custom{Name: n.TypeName}
	case *ast.BlockExpr:
		return c.checkBlockExpr(n)
	default:
		return ast.Poison{}
	}
}

// localNames collects every name visible to name resolution for
// did-you-mean suggestions: declared identifiers plus the fixed keyword
// vocabulary.
func (c *Checker) localNames() []string {
	names := append([]string(nil), diag.Vocabulary...)
	for _, sc := range c.syms.scopes {
		for name := range sc.vars {
			names = append(names, name)
		}
	}
	return names
}

func (c *Checker) checkUnary(n *ast.UnaryExpr) ast.EaType {
	xt := c.checkExpr(n.X)
	switch n.Op {
	case token.MINUS:
		if !ast.IsInteger(xt) && !ast.IsFloat(xt) {
			c.bag.Errorf(diag.TypeSignatureMismatch, n.Span(), "unary '-' requires a numeric operand, got %s", xt)
			return ast.Poison{}
		}
		return xt
	case token.NOT:
		if _, ok := xt.(ast.Primitive); !ok || xt.(ast.Primitive).Kind != token.BOOL_TYPE {
			c.bag.Errorf(diag.TypeSignatureMismatch, n.Span(), "unary '!' requires a bool operand, got %s", xt)
			return ast.Poison{}
		}
		return xt
	case token.AMP:
		return xt // Address-of: modeled as the pointee's type.
	default:
		return ast.Poison{}
	}
}

func (c *Checker) checkBinary(n *ast.BinaryExpr) ast.EaType {
	lt := c.checkExpr(n.Left)
	rt := c.checkExpr(n.Right)
	if ast.IsPoison(lt) || ast.IsPoison(rt) {
		return ast.Poison{}
	}

	switch n.Op {
	case token.EQ, token.NEQ, token.LT, token.LE, token.GT, token.GE:
		if !comparablePeer(lt, rt) {
			c.bag.Errorf(diag.TypeSignatureMismatch, n.Span(), "cannot compare %s with %s", lt, rt)
			return ast.Poison{}
		}
		return ast.Primitive{Kind: token.BOOL_TYPE}
	case token.AND_AND, token.OR_OR:
		return ast.Primitive{Kind: token.BOOL_TYPE}
	default:
		if _, lok := lt.(ast.StdString); lok {
			if _, rok := rt.(ast.StdString); rok && n.Op == token.PLUS {
				return ast.StdString{}
			}
		}
		return c.checkNumericPeer(n.Span(), lt, rt)
	}
}

// comparablePeer allows same-type or, for numerics, same-signed-ness
// comparisons; mismatched signedness requires an explicit cast.
func comparablePeer(a, b ast.EaType) bool {
	if ast.TypesEqual(a, b) {
		return true
	}
	if ast.IsInteger(a) && ast.IsInteger(b) {
		return ast.IsSignedInteger(a) == ast.IsSignedInteger(b)
	}
	return false
}

// checkNumericPeer implements the implicit-widening and sign-mismatch rule
// for scalar binary arithmetic/bitwise operators.
func (c *Checker) checkNumericPeer(span token.Span, lt, rt ast.EaType) ast.EaType {
	if ast.IsFloat(lt) && ast.IsFloat(rt) {
		if ast.TypesEqual(lt, rt) {
			return lt
		}
		c.bag.Errorf(diag.TypeSignatureMismatch, span, "mismatched float types %s and %s", lt, rt)
		return ast.Poison{}
	}
	if ast.IsInteger(lt) && ast.IsInteger(rt) {
		if ast.IsSignedInteger(lt) != ast.IsSignedInteger(rt) {
			c.bag.Errorf(diag.TypeSignMismatch, span, "mixed-signedness operation between %s and %s requires an explicit cast", lt, rt)
			return ast.Poison{}
		}
		if ast.IntWidth(lt) >= ast.IntWidth(rt) {
			return lt
		}
		return rt
	}
	c.bag.Errorf(diag.TypeSignatureMismatch, span, "no implicit conversion between %s and %s", lt, rt)
	return ast.Poison{}
}

// checkSimdBinary implements the dotted-operator rules: both
// operands must have identical Vector(E,N) types; bitwise dotted operators
// require an integer element kind; equality/relational dotted operators
// produce a mask vector with an integer element kind sized to match.
func (c *Checker) checkSimdBinary(n *ast.SimdBinaryExpr) ast.EaType {
	lt := c.checkExpr(n.Left)
	rt := c.checkExpr(n.Right)
	if ast.IsPoison(lt) || ast.IsPoison(rt) {
		return ast.Poison{}
	}
	lv, lok := lt.(ast.Vector)
	rv, rok := rt.(ast.Vector)
	if !lok || !rok {
		c.bag.Errorf(diag.TypeVectorElementMismatch, n.Span(), "dotted operator requires vector operands, got %s and %s", lt, rt)
		return ast.Poison{}
	}
	if lv.Elem != rv.Elem || lv.Lanes != rv.Lanes {
		c.bag.Errorf(diag.TypeVectorElementMismatch, n.Span(), "dotted operator requires identical vector types, got %s and %s", lv, rv)
		return ast.Poison{}
	}
	switch n.Op {
	case token.DOT_AMP, token.DOT_PIPE, token.DOT_CARET:
		if !lv.Elem.IsInteger() {
			c.bag.Errorf(diag.TypeNonIntegerBitwiseVector, n.Span(), "bitwise dotted operator %s requires an integer element kind, got %s", n.Op, lv.Elem)
			return ast.Poison{}
		}
		return lv
	case token.DOT_EQ, token.DOT_NEQ, token.DOT_LT, token.DOT_LE, token.DOT_GT, token.DOT_GE:
		return ast.VectorMaskType(lv)
	default:
		return lv
	}
}

func (c *Checker) checkVectorLit(n *ast.VectorLit) ast.EaType {
	vt := ast.Vector{Elem: n.VecTyp.Elem, Lanes: n.VecTyp.Lanes}
	if !vt.Valid() {
		c.bag.Errorf(diag.TypeVectorElementMismatch, n.Span(), "%s is not one of the 32 legal vector types", vt)
	}
	// Lane-count-vs-value-count mismatch is already rejected at parse time;
	// here we only check that each value's type is compatible with the
	// declared element kind.
	elemType := elementPrimitive(n.VecTyp.Elem)
	for _, v := range n.Values {
		vtType := c.checkExpr(v)
		if !assignable(elemType, vtType) {
			c.bag.Errorf(diag.TypeVectorElementMismatch, v.Span(), "vector element has type %s, want %s", vtType, elemType)
		}
	}
	return vt
}

func elementPrimitive(e token.ElementKind) ast.EaType {
	switch e {
	case token.ElemI8:
		return ast.Primitive{Kind: token.I8}
	case token.ElemI16:
		return ast.Primitive{Kind: token.I16}
	case token.ElemI32:
		return ast.Primitive{Kind: token.I32}
	case token.ElemI64:
		return ast.Primitive{Kind: token.I64}
	case token.ElemU8:
		return ast.Primitive{Kind: token.U8}
	case token.ElemU16:
		return ast.Primitive{Kind: token.U16}
	case token.ElemU32:
		return ast.Primitive{Kind: token.U32}
	case token.ElemU64:
		return ast.Primitive{Kind: token.U64}
	case token.ElemF32:
		return ast.Primitive{Kind: token.F32}
	default:
		return ast.Primitive{Kind: token.F64}
	}
}

// checkVectorLoad validates `load_vector(ptr, T, align?)`.
func (c *Checker) checkVectorLoad(n *ast.VectorLoad) ast.EaType {
	c.checkExpr(n.Ptr)
	vt := ast.Vector{Elem: n.VecTyp.Elem, Lanes: n.VecTyp.Lanes}
	if !vt.Valid() {
		c.bag.Errorf(diag.TypeVectorElementMismatch, n.Span(), "%s is not one of the 32 legal vector types", vt)
		return ast.Poison{}
	}
	return vt
}

func (c *Checker) checkVectorStore(n *ast.VectorStore) ast.EaType {
	c.checkExpr(n.Ptr)
	vt := c.checkExpr(n.Value)
	if _, ok := vt.(ast.Vector); !ok && !ast.IsPoison(vt) {
		c.bag.Errorf(diag.TypeVectorElementMismatch, n.Span(), "store_vector requires a vector value, got %s", vt)
	}
	return ast.Unit{}
}

// checkReduction handles horizontal_sum/min/max(v): result type E.
func (c *Checker) checkReduction(n *ast.Reduction) ast.EaType {
	xt := c.checkExpr(n.X)
	v, ok := xt.(ast.Vector)
	if !ok {
		if !ast.IsPoison(xt) {
			c.bag.Errorf(diag.TypeVectorElementMismatch, n.Span(), "horizontal reduction requires a vector operand, got %s", xt)
		}
		return ast.Poison{}
	}
	return elementPrimitive(v.Elem)
}

// checkDotProduct handles dot_product(a, b): both operands must be
// identical Vector(E,N); result is E. Integer dot products wrap on
// overflow at the element width rather than widening, matching how the
// element-wise `mul`/horizontal-add lowering composes in codegen — see
// DESIGN.md for the open-question rationale.
func (c *Checker) checkDotProduct(n *ast.DotProduct) ast.EaType {
	lt := c.checkExpr(n.Left)
	rt := c.checkExpr(n.Right)
	lv, lok := lt.(ast.Vector)
	rv, rok := rt.(ast.Vector)
	if !lok || !rok || lv.Elem != rv.Elem || lv.Lanes != rv.Lanes {
		if !ast.IsPoison(lt) && !ast.IsPoison(rt) {
			c.bag.Errorf(diag.TypeVectorElementMismatch, n.Span(), "dot_product requires identical vector operands, got %s and %s", lt, rt)
		}
		return ast.Poison{}
	}
	return elementPrimitive(lv.Elem)
}

func (c *Checker) checkCall(n *ast.CallExpr) ast.EaType {
	sig, ok := builtins[n.Callee]
	if !ok {
		sig, ok = c.funcs.Lookup(n.Callee)
	}
	if !ok {
		if sugg, sok := diag.SuggestDidYouMeanFor(n.Callee, c.localNames()); sok {
			c.bag.Add(diag.Diagnostic{Kind: diag.TypeUndefinedName, Message: "undefined function " + n.Callee,
				PrimarySpan: n.Span(), Suggestions: []diag.Suggestion{sugg}})
		} else {
			c.bag.Errorf(diag.TypeUndefinedName, n.Span(), "undefined function %q", n.Callee)
		}
		for _, a := range n.Args {
			c.checkExpr(a)
		}
		return ast.Poison{}
	}
	if len(sig.Params) != len(n.Args) {
		c.bag.Errorf(diag.TypeWrongArity, n.Span(), "%q expects %d argument(s), got %d", n.Callee, len(sig.Params), len(n.Args))
	}
	for i, a := range n.Args {
		at := c.checkExpr(a)
		if i < len(sig.Params) && !assignable(sig.Params[i], at) {
			c.bag.Errorf(diag.TypeSignatureMismatch, a.Span(), "argument %d to %q: expected %s, got %s", i+1, n.Callee, sig.Params[i], at)
		}
	}
	return sig.Ret
}

func (c *Checker) checkMethodCall(n *ast.MethodCall) ast.EaType {
	rt := c.checkExpr(n.Receiver)
	typeName := stdTypeName(rt)
	if typeName == "" {
		if !ast.IsPoison(rt) {
			c.bag.Errorf(diag.TypeUnknownMethod, n.Span(), "type %s has no methods", rt)
		}
		for _, a := range n.Args {
			c.checkExpr(a)
		}
		return ast.Poison{}
	}
	params, ret, ok := stdMethodSignature(typeName, n.Method, false)
	if !ok {
		c.reportUnknownMethod(n.Span(), typeName, n.Method)
		for _, a := range n.Args {
			c.checkExpr(a)
		}
		return ast.Poison{}
	}
	c.checkArgs(n.Span(), typeName+"."+n.Method, params, n.Args)
	return ret
}

func (c *Checker) checkStaticMethodCall(n *ast.StaticMethodCall) ast.EaType {
	params, ret, ok := stdMethodSignature(n.TypeName, n.Method, true)
	if !ok {
		c.reportUnknownStaticMethod(n.Span(), n.TypeName, n.Method)
		for _, a := range n.Args {
			c.checkExpr(a)
		}
		return ast.Poison{}
	}
	c.checkArgs(n.Span(), n.TypeName+"::"+n.Method, params, n.Args)
	return ret
}

func (c *Checker) checkArgs(span token.Span, label string, params []ast.EaType, args []ast.Expr) {
	if len(params) != len(args) {
		c.bag.Errorf(diag.TypeWrongArity, span, "%s expects %d argument(s), got %d", label, len(params), len(args))
	}
	for i, a := range args {
		at := c.checkExpr(a)
		if i < len(params) && !assignable(params[i], at) {
			c.bag.Errorf(diag.TypeSignatureMismatch, a.Span(), "argument %d to %s: expected %s, got %s", i+1, label, params[i], at)
		}
	}
}

func (c *Checker) reportUnknownMethod(span token.Span, typeName, method string) {
	c.bag.Errorf(diag.TypeUnknownMethod, span, "%s has no method %q", typeName, method)
}

// reportUnknownStaticMethod reports TypeError::UnknownStaticMethod with a
// Levenshtein-based stdlib-type suggestion when the type name itself is the
// typo, e.g. `Vecc::new()` suggests `Vec`.
func (c *Checker) reportUnknownStaticMethod(span token.Span, typeName, method string) {
	if sugg, ok := diag.SuggestDidYouMeanFor(typeName, stdTypeNames); ok {
		c.bag.Add(diag.Diagnostic{Kind: diag.TypeUnknownStaticMethod,
			Message:     fmt.Sprintf("unknown static method %s::%s", typeName, method),
			PrimarySpan: span, Suggestions: []diag.Suggestion{sugg}})
		return
	}
	c.bag.Errorf(diag.TypeUnknownStaticMethod, span, "unknown static method %s::%s", typeName, method)
}

func stdTypeName(t ast.EaType) string {
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

func (c *Checker) checkFieldAccess(n *ast.FieldAccess) ast.EaType {
	bt := c.checkExpr(n.Base)
	cu, ok := bt.(ast.Custom)
	if !ok {
		if !ast.IsPoison(bt) {
			c.bag.Errorf(diag.TypeUnknownMethod, n.Span(), "type %s has no field %q", bt, n.Field)
		}
		return ast.Poison{}
	}
	fields, ok := c.structs[cu.Name]
	if !ok {
		c.bag.Errorf(diag.TypeUndefinedName, n.Span(), "undefined struct type %q", cu.Name)
		return ast.Poison{}
	}
	for _, f := range fields {
		if f.Name == n.Field {
			return c.resolveAnnotation(f.Typ)
		}
	}
	c.bag.Errorf(diag.TypeUnknownMethod, n.Span(), "struct %q has no field %q", cu.Name, n.Field)
	return ast.Poison{}
}

func (c *Checker) checkIndex(n *ast.IndexExpr) ast.EaType {
	bt := c.checkExpr(n.Base)
	it := c.checkExpr(n.Index)
	if !ast.IsInteger(it) && !ast.IsPoison(it) {
		c.bag.Errorf(diag.TypeSignatureMismatch, n.Index.Span(), "index must be an integer, got %s", it)
	}
	switch b := bt.(type) {
	case ast.Array:
		return b.Elem
	case ast.StdVec:
		return b.Elem
	default:
		if !ast.IsPoison(bt) {
			c.bag.Errorf(diag.TypeSignatureMismatch, n.Span(), "type %s is not indexable", bt)
		}
		return ast.Poison{}
	}
}

func (c *Checker) checkBlockExpr(n *ast.BlockExpr) ast.EaType {
	c.syms.Push()
	defer c.syms.Pop()
	var last ast.EaType = ast.Unit{}
	for i, s := range n.Stmts {
		c.checkStmt(s)
		if i == len(n.Stmts)-1 {
			if es, ok := s.(*ast.ExprStmt); ok {
				last = es.X.Type()
			}
		}
	}
	return last
}
