package parser

import (
	"fmt"
	"strconv"

	"github.com/alecthomas/participle/v2/lexer"

	"taco/grammar"
	"taco/internal/ast"
	"taco/internal/errors"
)

// converter turns the participle parse tree into ast nodes. The first
// malformed literal is kept in err and conversion carries on.
type converter struct {
	err error
}

func (c *converter) fail(pos lexer.Position, format string, args ...any) {
	if c.err == nil {
		c.err = &errors.SyntaxError{Message: fmt.Sprintf(format, args...), Position: position(pos)}
	}
}

func ident(id grammar.PosIdent) ast.Ident {
	return ast.Ident{Pos: position(id.Pos), Value: id.Value}
}

func (c *converter) function(fn *grammar.Function) *ast.Function {
	out := &ast.Function{
		Pos:        position(fn.Pos),
		EndPos:     position(fn.EndPos),
		ReturnType: fn.ReturnType,
		Name:       ident(fn.Name),
		Body:       c.block(fn.Body),
	}
	for _, p := range fn.Params {
		out.Params = append(out.Params, &ast.Param{Pos: position(p.Pos), Type: p.Type, Name: ident(p.Name)})
	}
	return out
}

func (c *converter) block(b *grammar.Block) *ast.BlockStmt {
	out := &ast.BlockStmt{Pos: position(b.Pos)}
	for _, s := range b.Stmts {
		out.Stmts = append(out.Stmts, c.stmt(s))
	}
	return out
}

func (c *converter) stmt(s *grammar.Statement) ast.Stmt {
	switch {
	case s.Block != nil:
		return c.block(s.Block)
	case s.If != nil:
		return c.ifStmt(s.If)
	case s.While != nil:
		return &ast.WhileStmt{Pos: position(s.Pos), Cond: c.expr(s.While.Cond), Body: c.block(s.While.Body)}
	case s.For != nil:
		return c.forStmt(s.For)
	case s.Return != nil:
		ret := &ast.ReturnStmt{Pos: position(s.Pos)}
		if s.Return.Value != nil {
			ret.Value = c.expr(s.Return.Value)
		}
		return ret
	case s.Decl != nil:
		return c.decl(s.Decl)
	default:
		return &ast.ExprStmt{Pos: position(s.Pos), Expr: c.expr(s.Expr)}
	}
}

// ifStmt folds "else if" chains into an else block holding the nested if
func (c *converter) ifStmt(s *grammar.IfStmt) *ast.IfStmt {
	out := &ast.IfStmt{Pos: position(s.Pos), Cond: c.expr(s.Cond), Then: c.block(s.Then)}
	if s.Else == nil {
		return out
	}
	if s.Else.If != nil {
		nested := c.ifStmt(s.Else.If)
		out.Else = &ast.BlockStmt{Pos: nested.Pos, Stmts: []ast.Stmt{nested}}
	} else {
		out.Else = c.block(s.Else.Block)
	}
	return out
}

func (c *converter) forStmt(s *grammar.ForStmt) *ast.ForStmt {
	out := &ast.ForStmt{Pos: position(s.Pos), Body: c.block(s.Body)}
	if s.Init != nil {
		if s.Init.Decl != nil {
			out.Init = c.decl(s.Init.Decl)
		} else {
			out.Init = &ast.ExprStmt{Pos: position(s.Init.Pos), Expr: c.expr(s.Init.Expr)}
		}
	}
	if s.Cond != nil {
		out.Cond = c.expr(s.Cond)
	}
	if s.Post != nil {
		out.Post = c.expr(s.Post)
	}
	return out
}

func (c *converter) decl(d *grammar.VarDecl) *ast.DeclStmt {
	out := &ast.DeclStmt{Pos: position(d.Pos), Type: d.Type, Name: ident(d.Name)}
	if d.Init != nil {
		out.Init = c.expr(d.Init)
	}
	return out
}

func (c *converter) expr(e *grammar.Expr) ast.Expr {
	target := c.logicalOr(e.Target)
	if e.Value == nil {
		return target
	}
	return &ast.AssignExpr{Pos: position(e.Pos), Target: target, Value: c.expr(e.Value)}
}

func binary(pos lexer.Position, op string, left, right ast.Expr) ast.Expr {
	return &ast.BinaryExpr{Pos: position(pos), Op: ast.BinaryOp(op), Left: left, Right: right}
}

func (c *converter) logicalOr(e *grammar.LogicalOr) ast.Expr {
	out := c.logicalAnd(e.Left)
	for _, op := range e.Ops {
		out = binary(op.Pos, op.Operator, out, c.logicalAnd(op.Right))
	}
	return out
}

func (c *converter) logicalAnd(e *grammar.LogicalAnd) ast.Expr {
	out := c.equality(e.Left)
	for _, op := range e.Ops {
		out = binary(op.Pos, op.Operator, out, c.equality(op.Right))
	}
	return out
}

func (c *converter) equality(e *grammar.Equality) ast.Expr {
	out := c.relational(e.Left)
	for _, op := range e.Ops {
		out = binary(op.Pos, op.Operator, out, c.relational(op.Right))
	}
	return out
}

func (c *converter) relational(e *grammar.Relational) ast.Expr {
	out := c.additive(e.Left)
	for _, op := range e.Ops {
		out = binary(op.Pos, op.Operator, out, c.additive(op.Right))
	}
	return out
}

func (c *converter) additive(e *grammar.Additive) ast.Expr {
	out := c.multiplicative(e.Left)
	for _, op := range e.Ops {
		out = binary(op.Pos, op.Operator, out, c.multiplicative(op.Right))
	}
	return out
}

func (c *converter) multiplicative(e *grammar.Multiplicative) ast.Expr {
	out := c.unary(e.Left)
	for _, op := range e.Ops {
		out = binary(op.Pos, op.Operator, out, c.unary(op.Right))
	}
	return out
}

func (c *converter) unary(e *grammar.Unary) ast.Expr {
	if e.Postfix != nil {
		return c.postfix(e.Postfix)
	}
	return &ast.UnaryExpr{Pos: position(e.Pos), Op: ast.UnaryOp(e.Operator), Operand: c.unary(e.Operand)}
}

func (c *converter) postfix(e *grammar.Postfix) ast.Expr {
	out := c.primary(e.Primary)
	for _, s := range e.Suffixes {
		if s.Index != nil {
			out = &ast.IndexExpr{Pos: position(e.Pos), Target: out, Index: c.expr(s.Index)}
		} else {
			out = &ast.FieldExpr{Pos: position(e.Pos), Target: out, Field: ident(*s.Field)}
		}
	}
	return out
}

func (c *converter) primary(e *grammar.Primary) ast.Expr {
	switch {
	case e.Number != nil:
		value, err := strconv.ParseInt(*e.Number, 0, 64)
		if err != nil {
			c.fail(e.Pos, "integer literal %s does not fit in 64 bits", *e.Number)
		}
		return &ast.IntLiteral{Pos: position(e.Pos), Value: value}
	case e.Ident != nil:
		return &ast.IdentExpr{Pos: position(e.Ident.Pos), Name: e.Ident.Value}
	default:
		return c.expr(e.Parens)
	}
}
