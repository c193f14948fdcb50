package ast

type Node interface {
	NodePos() Position
	NodeType() NodeType
	String() string
}

// Stmt is implemented by every statement node
type Stmt interface {
	Node
	isStmt()
}

// Expr is implemented by every expression node
type Expr interface {
	Node
	isExpr()
}

func (p *Program) NodePos() Position { return Position{Filename: p.Filename, Line: 1, Column: 1} }
func (*Program) NodeType() NodeType  { return PROGRAM }

func (i *Ident) NodePos() Position { return i.Pos }
func (*Ident) NodeType() NodeType  { return IDENT }

func (f *Function) NodePos() Position { return f.Pos }
func (*Function) NodeType() NodeType  { return FUNCTION }

func (p *Param) NodePos() Position { return p.Pos }
func (*Param) NodeType() NodeType  { return PARAM }

func (b *BlockStmt) NodePos() Position { return b.Pos }
func (*BlockStmt) NodeType() NodeType  { return BLOCK_STMT }

func (e *ExprStmt) NodePos() Position { return e.Pos }
func (*ExprStmt) NodeType() NodeType  { return EXPR_STMT }

func (d *DeclStmt) NodePos() Position { return d.Pos }
func (*DeclStmt) NodeType() NodeType  { return DECL_STMT }

func (i *IfStmt) NodePos() Position { return i.Pos }
func (*IfStmt) NodeType() NodeType  { return IF_STMT }

func (w *WhileStmt) NodePos() Position { return w.Pos }
func (*WhileStmt) NodeType() NodeType  { return WHILE_STMT }

func (f *ForStmt) NodePos() Position { return f.Pos }
func (*ForStmt) NodeType() NodeType  { return FOR_STMT }

func (r *ReturnStmt) NodePos() Position { return r.Pos }
func (*ReturnStmt) NodeType() NodeType  { return RETURN_STMT }

func (l *IntLiteral) NodePos() Position { return l.Pos }
func (*IntLiteral) NodeType() NodeType  { return INT_LITERAL }

func (i *IdentExpr) NodePos() Position { return i.Pos }
func (*IdentExpr) NodeType() NodeType  { return IDENT_EXPR }

func (b *BinaryExpr) NodePos() Position { return b.Pos }
func (*BinaryExpr) NodeType() NodeType  { return BINARY_EXPR }

func (u *UnaryExpr) NodePos() Position { return u.Pos }
func (*UnaryExpr) NodeType() NodeType  { return UNARY_EXPR }

func (a *AssignExpr) NodePos() Position { return a.Pos }
func (*AssignExpr) NodeType() NodeType  { return ASSIGN_EXPR }

func (i *IndexExpr) NodePos() Position { return i.Pos }
func (*IndexExpr) NodeType() NodeType  { return INDEX_EXPR }

func (f *FieldExpr) NodePos() Position { return f.Pos }
func (*FieldExpr) NodeType() NodeType  { return FIELD_EXPR }

func (*BlockStmt) isStmt()  {}
func (*ExprStmt) isStmt()   {}
func (*DeclStmt) isStmt()   {}
func (*IfStmt) isStmt()     {}
func (*WhileStmt) isStmt()  {}
func (*ForStmt) isStmt()    {}
func (*ReturnStmt) isStmt() {}

func (*IntLiteral) isExpr() {}
func (*IdentExpr) isExpr()  {}
func (*BinaryExpr) isExpr() {}
func (*UnaryExpr) isExpr()  {}
func (*AssignExpr) isExpr() {}
func (*IndexExpr) isExpr()  {}
func (*FieldExpr) isExpr()  {}
