package ast

import (
	"fmt"
	"strconv"
	"strings"
)

func (p *Program) String() string {
	var b strings.Builder

	for i, fn := range p.Functions {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(fn.String())
		b.WriteString("\n")
	}

	return b.String()
}

func (i *Ident) String() string {
	return i.Value
}

func (f *Function) String() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.String()
	}

	body := "{}"
	if f.Body != nil {
		body = f.Body.String()
	}

	return fmt.Sprintf("%s %s(%s) %s", f.ReturnType, f.Name.Value, strings.Join(params, ", "), body)
}

func (p *Param) String() string {
	return p.Type + " " + p.Name.Value
}

func (b *BlockStmt) String() string {
	if len(b.Stmts) == 0 {
		return "{}"
	}

	var out strings.Builder
	out.WriteString("{\n")
	for _, stmt := range b.Stmts {
		out.WriteString("  " + strings.ReplaceAll(stmt.String(), "\n", "\n  ") + "\n")
	}
	out.WriteString("}")

	return out.String()
}

func (e *ExprStmt) String() string {
	return e.Expr.String() + ";"
}

func (d *DeclStmt) String() string {
	if d.Init == nil {
		return fmt.Sprintf("%s %s;", d.Type, d.Name.Value)
	}
	return fmt.Sprintf("%s %s = %s;", d.Type, d.Name.Value, d.Init.String())
}

func (i *IfStmt) String() string {
	s := fmt.Sprintf("if (%s) %s", i.Cond.String(), blockString(i.Then))
	if i.Else != nil {
		s += " else " + i.Else.String()
	}
	return s
}

func (w *WhileStmt) String() string {
	return fmt.Sprintf("while (%s) %s", w.Cond.String(), blockString(w.Body))
}

func (f *ForStmt) String() string {
	init := ";"
	if f.Init != nil {
		init = f.Init.String()
	}
	cond := ""
	if f.Cond != nil {
		cond = f.Cond.String()
	}
	post := ""
	if f.Post != nil {
		post = f.Post.String()
	}
	return fmt.Sprintf("for (%s %s; %s) %s", init, cond, post, blockString(f.Body))
}

func (r *ReturnStmt) String() string {
	if r.Value == nil {
		return "return;"
	}
	return "return " + r.Value.String() + ";"
}

func (l *IntLiteral) String() string {
	return strconv.FormatInt(l.Value, 10)
}

func (i *IdentExpr) String() string {
	return i.Name
}

func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left.String(), b.Op, b.Right.String())
}

func (u *UnaryExpr) String() string {
	return fmt.Sprintf("%s%s", u.Op, u.Operand.String())
}

func (a *AssignExpr) String() string {
	return fmt.Sprintf("%s = %s", a.Target.String(), a.Value.String())
}

func (i *IndexExpr) String() string {
	return fmt.Sprintf("%s[%s]", i.Target.String(), i.Index.String())
}

func (f *FieldExpr) String() string {
	return fmt.Sprintf("%s.%s", f.Target.String(), f.Field.Value)
}

func blockString(b *BlockStmt) string {
	if b == nil {
		return "{}"
	}
	return b.String()
}
