// Package ast defines the THSL abstract syntax tree produced by the
// parser and consumed by sema.
package ast

// Module is the root of one compiled translation unit.
type Module struct {
	Layouts   []*LayoutDecl
	Builtins  []*BuiltinDecl
	Structs   []*StructDecl
	Globals   []*GlobalVarDecl
	Functions []*FunctionDecl
}

// Node is implemented by every AST node; Pos reports its source origin.
type Node interface {
	Pos() Position
}

// Position is a 1-based source location.
type Position struct {
	File   string
	Line   int
	Column int
}

func (p Position) Pos() Position { return p }

// Decl is implemented by top-level declarations.
type Decl interface {
	Node
	declNode()
}

// Stmt is implemented by statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is implemented by expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Type is implemented by type-spec nodes as written in source (before
// sema resolves them against the ir type registry).
type Type interface {
	Node
	typeNode()
}

// ScalarType names a built-in scalar or shaped vector/matrix type.
type ScalarType struct {
	Position
	Name    string // "void","bool","int","uint","float","double","vec3","mat4",...
	Bits    uint8
	Signed  bool
	Rows    uint8
	Columns uint8
}

func (*ScalarType) typeNode() {}

// NamedType references a struct type by name.
type NamedType struct {
	Position
	Name string
}

func (*NamedType) typeNode() {}

// LayoutQualifier is one `location=N` / `binding=N` / `set=N` entry.
type LayoutQualifier struct {
	Name  string
	Value uint32
}

// LayoutDecl is a `layout(spec...) {in|out|uniform} decl;` declaration.
type LayoutDecl struct {
	Position
	Qualifiers []LayoutQualifier
	Direction  LayoutDirection
	// For In/Out: the declared primitive type and name.
	VarType Type
	Name    string
	// For Uniform: the struct body fields, emitted with a synthesized
	// "<Name>_uniform_type" struct type.
	Members []StructMember
}

func (*LayoutDecl) declNode() {}

// LayoutDirection distinguishes in/out/uniform layout declarations.
type LayoutDirection uint8

const (
	LayoutIn LayoutDirection = iota
	LayoutOut
	LayoutUniform
)

// BuiltinDecl is `{in|out} TYPE NAME = INTRINSIC_NAME;`, binding a
// stage builtin such as THSL_Position.
type BuiltinDecl struct {
	Position
	Direction LayoutDirection // LayoutIn or LayoutOut
	VarType   Type
	Name      string
	Builtin   string // e.g. "THSL_Position"
}

func (*BuiltinDecl) declNode() {}

// StructDecl is `struct NAME { TYPE MEMBER; ... };`.
type StructDecl struct {
	Position
	Name    string
	Members []StructMember
}

func (*StructDecl) declNode() {}

// StructMember is one member of a StructDecl or a uniform block body.
type StructMember struct {
	Position
	Type Type
	Name string
}

// GlobalVarDecl is `[const] TYPE NAME [= EXPR];` at private scope.
type GlobalVarDecl struct {
	Position
	Const bool
	Type  Type
	Name  string
	Init  Expr
}

func (*GlobalVarDecl) declNode() {}

// Param is one function parameter.
type Param struct {
	Position
	Const     bool
	ByRef     bool
	Type      Type
	Name      string // may be empty for unnamed parameters
}

// FunctionDecl is a function definition or forward declaration.
type FunctionDecl struct {
	Position
	Name       string
	ReturnType Type
	Params     []Param
	Body       *BlockStmt // nil for a forward declaration
}

func (*FunctionDecl) declNode() {}

// ---- Statements ----

// BlockStmt is a `{ ... }` statement sequence with its own scope frame.
type BlockStmt struct {
	Position
	Stmts []Stmt
}

func (*BlockStmt) stmtNode() {}

// LocalVarStmt declares a function-local variable.
type LocalVarStmt struct {
	Position
	Const bool
	Type  Type
	Name  string
	Init  Expr
}

func (*LocalVarStmt) stmtNode() {}

// ExprStmt wraps an expression (call, assignment) used as a statement.
type ExprStmt struct {
	Position
	X Expr
}

func (*ExprStmt) stmtNode() {}

// ReturnStmt is `return [EXPR];`.
type ReturnStmt struct {
	Position
	Value Expr // nil for bare `return;`
}

func (*ReturnStmt) stmtNode() {}

// IfStmt is `if (EXPR) THEN [else ELSE]`.
type IfStmt struct {
	Position
	Cond Expr
	Then Stmt
	Else Stmt // nil if no else clause
}

func (*IfStmt) stmtNode() {}

// The following statement kinds are reserved by the grammar per
// spec.md §4.4 and §9 ("accepted but evaluation is an extension
// point"): the parser produces these nodes, but sema rejects a
// function body that reaches one with an "unimplemented construct"
// diagnostic rather than lowering it.

// ForStmt is `for (init; cond; post) body`.
type ForStmt struct {
	Position
	Init Stmt
	Cond Expr
	Post Stmt
	Body Stmt
}

func (*ForStmt) stmtNode() {}

// WhileStmt is `while (cond) body`.
type WhileStmt struct {
	Position
	Cond Expr
	Body Stmt
}

func (*WhileStmt) stmtNode() {}

// SwitchStmt is `switch (x) { case ...: ... default: ... }`.
type SwitchStmt struct {
	Position
	Tag   Expr
	Cases []SwitchCase
}

func (*SwitchStmt) stmtNode() {}

// SwitchCase is one `case EXPR:` or `default:` clause.
type SwitchCase struct {
	Value   Expr // nil for default
	IsDefault bool
	Stmts   []Stmt
}

// BreakStmt is `break;`.
type BreakStmt struct{ Position }

func (*BreakStmt) stmtNode() {}

// ContinueStmt is `continue;`.
type ContinueStmt struct{ Position }

func (*ContinueStmt) stmtNode() {}

// ---- Expressions ----

// Ident is a bare name reference.
type Ident struct {
	Position
	Name string
}

func (*Ident) exprNode() {}

// IntLit is an integer literal.
type IntLit struct {
	Position
	Value  uint64
	Signed bool
}

func (*IntLit) exprNode() {}

// FloatLit is a floating-point literal.
type FloatLit struct {
	Position
	Value float64
}

func (*FloatLit) exprNode() {}

// BoolLit is `true`/`false` — spelled as identifiers in THSL source
// but recognized and folded by the parser into a literal node.
type BoolLit struct {
	Position
	Value bool
}

func (*BoolLit) exprNode() {}

// UnaryExpr is a prefix operator application.
type UnaryExpr struct {
	Position
	Op UnaryOp
	X  Expr
}

func (*UnaryExpr) exprNode() {}

// UnaryOp enumerates prefix operators.
type UnaryOp uint8

const (
	UnaryNeg UnaryOp = iota
	UnaryNot
	UnaryBitNot
	UnaryPreInc
	UnaryPreDec
)

// PostfixExpr is a postfix ++/-- application.
type PostfixExpr struct {
	Position
	Op UnaryOp // UnaryPreInc/UnaryPreDec reused for post inc/dec
	X  Expr
}

func (*PostfixExpr) exprNode() {}

// CastExpr is a C-style `(TYPE)expr` cast.
type CastExpr struct {
	Position
	Type Type
	X    Expr
}

func (*CastExpr) exprNode() {}

// BinaryExpr is a binary operator application.
type BinaryExpr struct {
	Position
	Op          BinaryOp
	Left, Right Expr
}

func (*BinaryExpr) exprNode() {}

// BinaryOp enumerates binary operators in spec.md §4.4's 14-level
// cascade (levels 3 through 12; level 1/2 are postfix/prefix above,
// level 14 is AssignExpr below, level 13 is the reserved ternary).
type BinaryOp uint8

const (
	OpMul BinaryOp = iota
	OpDiv
	OpAdd
	OpSub
	OpShl
	OpShr
	OpLt
	OpLe
	OpGt
	OpGe
	OpEq
	OpNe
	OpBitAnd
	OpBitXor
	OpBitOr
	OpLogicalAnd
	OpLogicalOr
)

// CondExpr is the reserved ternary `cond ? a : b` (precedence level
// 13); parsed but, per spec.md §9, not lowered by sema.
type CondExpr struct {
	Position
	Cond, Then, Else Expr
}

func (*CondExpr) exprNode() {}

// AssignExpr is `=` or a compound assignment (precedence level 14,
// right-associative).
type AssignExpr struct {
	Position
	Op     AssignOp
	Target Expr
	Value  Expr
}

func (*AssignExpr) exprNode() {}

// AssignOp enumerates assignment operators.
type AssignOp uint8

const (
	AssignSet AssignOp = iota
	AssignAdd
	AssignSub
	AssignMul
	AssignDiv
)

// CallExpr is `name(args...)` — a user function call or, if name
// matches the intrinsic table, a built-in/intrinsic invocation.
type CallExpr struct {
	Position
	Callee string
	Args   []Expr
}

func (*CallExpr) exprNode() {}

// ConstructExpr is `TYPE(args...)` — a vector/matrix/struct type
// constructor, distinguished from CallExpr by the callee naming a type.
type ConstructExpr struct {
	Position
	Type Type
	Args []Expr
}

func (*ConstructExpr) exprNode() {}

// IndexExpr is `base[index]`.
type IndexExpr struct {
	Position
	Base, Index Expr
}

func (*IndexExpr) exprNode() {}

// MemberExpr is `base.name` — struct field access or vector swizzle;
// sema disambiguates using the resolved type of Base.
type MemberExpr struct {
	Position
	Base Expr
	Name string
}

func (*MemberExpr) exprNode() {}
