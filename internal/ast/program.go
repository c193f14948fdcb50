package ast

// Program represents one translation unit handed over by the frontend
// Example: "int main() { return 0; } int add(int a, int b) { return a + b; }"
type Program struct {
	Filename  string
	Functions []*Function
}

// Position tracks location information for error reporting and tooling
type Position struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}

// IsValid reports whether the position points into a source file
func (p Position) IsValid() bool {
	return p.Line > 0
}

// Ident represents any identifier like variable, parameter or function names
// Example: "main", "counter", "i"
type Ident struct {
	Pos   Position
	Value string
}

// Function represents a function definition
// Example: "int add(int a, int b) { return a + b; }"
type Function struct {
	Pos        Position
	EndPos     Position
	ReturnType string
	Name       Ident
	Params     []*Param
	Body       *BlockStmt
}

// Param represents a function parameter
// Example: "int a"
type Param struct {
	Pos  Position
	Type string
	Name Ident
}

// BlockStmt represents a braced statement list
// Example: "{ a = 1; b = 2; }"
type BlockStmt struct {
	Pos   Position
	Stmts []Stmt
}

// ExprStmt represents an expression evaluated for its effect
// Example: "x = x + 1;"
type ExprStmt struct {
	Pos  Position
	Expr Expr
}

// DeclStmt represents a local variable declaration with an optional initializer
// Example: "int x = 1;", "int y;"
type DeclStmt struct {
	Pos  Position
	Type string
	Name Ident
	Init Expr // nil if declared without initializer
}

// IfStmt represents a conditional with an optional else branch
// Example: "if (a) { b = 1; } else { b = 2; }"
type IfStmt struct {
	Pos  Position
	Cond Expr
	Then *BlockStmt
	Else *BlockStmt // nil if there is no else branch
}

// WhileStmt represents a pre-tested loop
// Example: "while (i < 10) { i = i + 1; }"
type WhileStmt struct {
	Pos  Position
	Cond Expr
	Body *BlockStmt
}

// ForStmt represents a C-style counted loop
// Example: "for (int i = 0; i < n; i = i + 1) { s = s + i; }"
type ForStmt struct {
	Pos  Position
	Init Stmt // DeclStmt or ExprStmt
	Cond Expr
	Post Expr
	Body *BlockStmt
}

// ReturnStmt represents return statements
// Example: "return x;", "return;"
type ReturnStmt struct {
	Pos   Position
	Value Expr // nil if plain `return;`
}

// IntLiteral represents an integer constant
// Example: "42"
type IntLiteral struct {
	Pos   Position
	Value int64
}

// IdentExpr represents a variable reference
// Example: "counter"
type IdentExpr struct {
	Pos  Position
	Name string
}

// BinaryExpr represents a binary operation
// Example: "a + b", "i < n"
type BinaryExpr struct {
	Pos   Position
	Op    BinaryOp
	Left  Expr
	Right Expr
}

// UnaryExpr represents a prefix operation
// Example: "-x", "!done"
type UnaryExpr struct {
	Pos     Position
	Op      UnaryOp
	Operand Expr
}

// AssignExpr represents an assignment; the target must be a bare variable to be lowered
// Example: "x = 1"
type AssignExpr struct {
	Pos    Position
	Target Expr
	Value  Expr
}

// IndexExpr represents an array access
// Example: "buf[i]"
type IndexExpr struct {
	Pos    Position
	Target Expr
	Index  Expr
}

// FieldExpr represents a member access
// Example: "point.x"
type FieldExpr struct {
	Pos    Position
	Target Expr
	Field  Ident
}

// BinaryOp is the operator of a BinaryExpr
type BinaryOp string

const (
	Add BinaryOp = "+"
	Sub BinaryOp = "-"
	Mul BinaryOp = "*"
	Div BinaryOp = "/"
	Mod BinaryOp = "%"
	Lt  BinaryOp = "<"
	Le  BinaryOp = "<="
	Gt  BinaryOp = ">"
	Ge  BinaryOp = ">="
	Eq  BinaryOp = "=="
	Neq BinaryOp = "!="
	And BinaryOp = "&&"
	Or  BinaryOp = "||"
)

// UnaryOp is the operator of a UnaryExpr
type UnaryOp string

const (
	Neg UnaryOp = "-"
	Not UnaryOp = "!"
)
