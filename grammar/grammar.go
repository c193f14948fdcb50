package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

type File struct {
	Pos       lexer.Position
	Functions []*Function `@@*`
}

type PosIdent struct {
	Pos    lexer.Position
	EndPos lexer.Position
	Value  string `@Ident`
}

type Function struct {
	Pos        lexer.Position
	EndPos     lexer.Position
	ReturnType string   `@("int" | "void")`
	Name       PosIdent `@@ "("`
	Params     []*Param `[ @@ { "," @@ } ] ")"`
	Body       *Block   `@@`
}

type Param struct {
	Pos  lexer.Position
	Type string   `@"int"`
	Name PosIdent `@@`
}

type Block struct {
	Pos   lexer.Position
	Stmts []*Statement `"{" @@* "}"`
}

type Statement struct {
	Pos    lexer.Position
	Block  *Block      `  @@`
	If     *IfStmt     `| @@`
	While  *WhileStmt  `| @@`
	For    *ForStmt    `| @@`
	Return *ReturnStmt `| @@`
	Decl   *VarDecl    `| @@ ";"`
	Expr   *Expr       `| @@ ";"`
}

type IfStmt struct {
	Pos  lexer.Position
	Cond *Expr       `"if" "(" @@ ")"`
	Then *Block      `@@`
	Else *ElseClause `[ "else" @@ ]`
}

type ElseClause struct {
	Pos   lexer.Position
	If    *IfStmt `  @@`
	Block *Block  `| @@`
}

type WhileStmt struct {
	Pos  lexer.Position
	Cond *Expr  `"while" "(" @@ ")"`
	Body *Block `@@`
}

type ForStmt struct {
	Pos  lexer.Position
	Init *ForInit `"for" "(" [ @@ ] ";"`
	Cond *Expr    `[ @@ ] ";"`
	Post *Expr    `[ @@ ] ")"`
	Body *Block   `@@`
}

type ForInit struct {
	Pos  lexer.Position
	Decl *VarDecl `  @@`
	Expr *Expr    `| @@`
}

type ReturnStmt struct {
	Pos   lexer.Position
	Value *Expr `"return" [ @@ ] ";"`
}

type VarDecl struct {
	Pos  lexer.Position
	Type string   `@"int"`
	Name PosIdent `@@`
	Init *Expr    `[ "=" @@ ]`
}

// Expressions, loosest binding first. Assignment is right associative.

type Expr struct {
	Pos    lexer.Position
	Target *LogicalOr `@@`
	Value  *Expr      `[ "=" @@ ]`
}

type LogicalOr struct {
	Pos  lexer.Position
	Left *LogicalAnd `@@`
	Ops  []*OrOp     `{ @@ }`
}

type OrOp struct {
	Pos      lexer.Position
	Operator string      `@"||"`
	Right    *LogicalAnd `@@`
}

type LogicalAnd struct {
	Pos  lexer.Position
	Left *Equality `@@`
	Ops  []*AndOp  `{ @@ }`
}

type AndOp struct {
	Pos      lexer.Position
	Operator string    `@"&&"`
	Right    *Equality `@@`
}

type Equality struct {
	Pos  lexer.Position
	Left *Relational   `@@`
	Ops  []*EqualityOp `{ @@ }`
}

type EqualityOp struct {
	Pos      lexer.Position
	Operator string      `@("==" | "!=")`
	Right    *Relational `@@`
}

type Relational struct {
	Pos  lexer.Position
	Left *Additive       `@@`
	Ops  []*RelationalOp `{ @@ }`
}

type RelationalOp struct {
	Pos      lexer.Position
	Operator string    `@("<=" | ">=" | "<" | ">")`
	Right    *Additive `@@`
}

type Additive struct {
	Pos  lexer.Position
	Left *Multiplicative `@@`
	Ops  []*AdditiveOp   `{ @@ }`
}

type AdditiveOp struct {
	Pos      lexer.Position
	Operator string          `@("+" | "-")`
	Right    *Multiplicative `@@`
}

type Multiplicative struct {
	Pos  lexer.Position
	Left *Unary              `@@`
	Ops  []*MultiplicativeOp `{ @@ }`
}

type MultiplicativeOp struct {
	Pos      lexer.Position
	Operator string `@("*" | "/" | "%")`
	Right    *Unary `@@`
}

type Unary struct {
	Pos      lexer.Position
	Operator string   `(  @("-" | "!")`
	Operand  *Unary   `   @@ )`
	Postfix  *Postfix `| @@`
}

type Postfix struct {
	Pos      lexer.Position
	Primary  *Primary  `@@`
	Suffixes []*Suffix `{ @@ }`
}

type Suffix struct {
	Pos   lexer.Position
	Index *Expr     `  "[" @@ "]"`
	Field *PosIdent `| "." @@`
}

type Primary struct {
	Pos    lexer.Position
	Number *string   `  @Integer`
	Ident  *PosIdent `| @@`
	Parens *Expr     `| "(" @@ ")"`
}
