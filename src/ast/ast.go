package ast

import "ea/src/token"

// Node is implemented by every Expr and Stmt variant. Every node carries a
// span.
type Node interface {
	Span() token.Span
}

// Expr is the sum type of expression nodes. The type checker decorates each
// Expr with a resolved EaType via SetType; before checking, Type() returns
// nil.
type Expr interface {
	Node
	expr()
	Type() EaType
	SetType(EaType)
}

// ExprBase is embedded by every concrete Expr to provide the span and
// resolved-type bookkeeping the checker needs. It is exported (unlike
// vslc's internal-only node helpers) so the parser, which lives in a
// different package, can populate it directly in struct literals.
type ExprBase struct {
	Sp token.Span
	Ty EaType
}

func (e ExprBase) Span() token.Span  { return e.Sp }
func (e ExprBase) expr()             {}
func (e ExprBase) Type() EaType      { return e.Ty }
func (e *ExprBase) SetType(t EaType) { e.Ty = t }

// NewExprBase returns an ExprBase spanning sp with no resolved type yet.
func NewExprBase(sp token.Span) ExprBase { return ExprBase{Sp: sp} }

// IntLit is an integer literal.
type IntLit struct {
	ExprBase
	Value int64
}

// FloatLit is a floating point literal.
type FloatLit struct {
	ExprBase
	Value float64
}

// BoolLit is a boolean literal.
type BoolLit struct {
	ExprBase
	Value bool
}

// StringLit is a string literal.
type StringLit struct {
	ExprBase
	Value string
}

// Ident is an identifier reference.
type Ident struct {
	ExprBase
	Name string
}

// UnaryExpr applies a scalar unary operator (- ! &) to an operand.
type UnaryExpr struct {
	ExprBase
	Op   token.Kind
	X    Expr
}

// BinaryExpr applies a scalar binary operator to two operands.
type BinaryExpr struct {
	ExprBase
	Op          token.Kind
	Left, Right Expr
}

// SimdBinaryExpr applies an element-wise (dotted) operator to two vector
// operands, producing a distinct node from BinaryExpr even though the two
// share operator precedence.
type SimdBinaryExpr struct {
	ExprBase
	Op          token.Kind
	Left, Right Expr
}

// VectorLit is a vector literal: a bracketed list of scalar values plus its
// declared vector type suffix.
type VectorLit struct {
	ExprBase
	Values []Expr
	VecTyp token.VectorSpelling
}

// VectorLoad is `load_vector(ptr, type, align?)`.
type VectorLoad struct {
	ExprBase
	Ptr    Expr
	VecTyp token.VectorSpelling
	Align  int // 0 means "natural alignment", i.e. not specified.
}

// VectorStore is `store_vector(ptr, value, align?)`.
type VectorStore struct {
	ExprBase
	Ptr   Expr
	Value Expr
	Align int
}

// ReductionKind differentiates the horizontal reduction operators.
type ReductionKind int

const (
	ReduceSum ReductionKind = iota
	ReduceMin
	ReduceMax
)

// Reduction is a unary horizontal reduction: horizontal_sum/min/max(v).
type Reduction struct {
	ExprBase
	Kind ReductionKind
	X    Expr
}

// DotProduct is the binary reduction dot_product(a, b).
type DotProduct struct {
	ExprBase
	Left, Right Expr
}

// CallExpr is a free function call.
type CallExpr struct {
	ExprBase
	Callee string
	Args   []Expr
}

// MethodCall is `receiver.method(args)`.
type MethodCall struct {
	ExprBase
	Receiver Expr
	Method   string
	Args     []Expr
}

// StaticMethodCall is `TypeName::method(args)`.
type StaticMethodCall struct {
	ExprBase
	TypeName string
	Method   string
	Args     []Expr
}

// FieldAccess is `base.field`.
type FieldAccess struct {
	ExprBase
	Base  Expr
	Field string
}

// IndexExpr is `base[index]`.
type IndexExpr struct {
	ExprBase
	Base  Expr
	Index Expr
}

// EnumLit is a bare enum-style constant literal (`EnumName::Variant`),
// parsed identically to a StaticMethodCall with zero arguments but kept
// distinct so the checker need not special-case an empty-arg static call.
type EnumLit struct {
	ExprBase
	TypeName string
	Variant  string
}

// BlockExpr is a brace-delimited sequence of statements used in expression
// position (e.g. as an if-expression's arm), evaluating to its last
// expression statement's value, or Unit if empty / if the last statement is
// not an expression.
type BlockExpr struct {
	ExprBase
	Stmts []Stmt
}

// --- Stmt ---

// Stmt is the sum type of statement nodes.
type Stmt interface {
	Node
	stmt()
}

// StmtBase is embedded by every concrete Stmt to provide its span. Exported
// for the same reason as ExprBase: the parser constructs these in a
// different package.
type StmtBase struct{ Sp token.Span }

func (s StmtBase) Span() token.Span { return s.Sp }
func (s StmtBase) stmt()            {}

// NewStmtBase returns a StmtBase spanning sp.
func NewStmtBase(sp token.Span) StmtBase { return StmtBase{Sp: sp} }

// LetStmt declares a new local variable.
type LetStmt struct {
	StmtBase
	Name    string
	Mutable bool
	Typ     EaType // nil if not annotated; filled by parser only when present.
	Init    Expr   // nil if no initializer.
}

// AssignStmt assigns a new value to an existing lvalue.
type AssignStmt struct {
	StmtBase
	Target Expr // Ident, FieldAccess, or IndexExpr.
	Value  Expr
}

// ExprStmt evaluates an expression for its side effects.
type ExprStmt struct {
	StmtBase
	X Expr
}

// ReturnStmt returns from the enclosing function.
type ReturnStmt struct {
	StmtBase
	Value Expr // nil for `return;` in a Unit-returning function.
}

// IfStmt is `if (cond) { then } [else { else }]`.
type IfStmt struct {
	StmtBase
	Cond       Expr
	Then       *BlockStmt
	Else       *BlockStmt // nil if no else-branch.
}

// WhileStmt is `while (cond) { body }`.
type WhileStmt struct {
	StmtBase
	Cond Expr
	Body *BlockStmt
}

// ForStmt is the C-style `for (init; cond; step) { body }`.
type ForStmt struct {
	StmtBase
	Init Stmt // nil if omitted.
	Cond Expr // nil if omitted.
	Step Stmt // nil if omitted.
	Body *BlockStmt
}

// BlockStmt is a brace-delimited statement sequence introducing a new
// lexical scope.
type BlockStmt struct {
	StmtBase
	Stmts []Stmt
}

// Param is a single function parameter.
type Param struct {
	Name string
	Typ  EaType
}

// FuncDecl is a top-level function declaration.
type FuncDecl struct {
	StmtBase
	Name   string
	Params []Param
	Ret    EaType
	Body   *BlockStmt
}

// StructField is a single field in a struct declaration.
type StructField struct {
	Name string
	Typ  EaType
}

// StructDecl is a top-level struct declaration.
type StructDecl struct {
	StmtBase
	Name   string
	Fields []StructField
}

// ImportStmt is `import path;`. Parsed but not semantically active.
type ImportStmt struct {
	StmtBase
	Path string
}

// Program is the root of a parsed compilation unit: an ordered list of
// top-level declarations.
type Program struct {
	Decls []Stmt // FuncDecl, StructDecl, or ImportStmt.
}
