package lower

import (
	stderrors "errors"
	"fmt"

	"taco/internal/ast"
	"taco/internal/errors"
	"taco/internal/ir"
)

var binaryOps = map[ast.BinaryOp]ir.BinOp{
	ast.Add: ir.OpAdd,
	ast.Sub: ir.OpSub,
	ast.Mul: ir.OpMul,
	ast.Div: ir.OpDiv,
	ast.Mod: ir.OpMod,
	ast.Lt:  ir.OpLt,
	ast.Le:  ir.OpLe,
	ast.Gt:  ir.OpGt,
	ast.Ge:  ir.OpGe,
	ast.Eq:  ir.OpEq,
	ast.Neq: ir.OpNeq,
	ast.And: ir.OpAnd,
	ast.Or:  ir.OpOr,
}

var unaryOps = map[ast.UnaryOp]ir.UnOp{
	ast.Neg: ir.OpNeg,
	ast.Not: ir.OpNot,
}

// Lowerer carries the per-function naming state of lowering. Every function
// gets its own Lowerer, so temporaries and labels restart at zero and no
// state is shared between functions.
type Lowerer struct {
	function string
	reserved map[string]bool // identifiers spelled in the function
	temps    int
	labels   int
}

// NewLowerer creates the lowering context for fn
func NewLowerer(fn *ast.Function) *Lowerer {
	return &Lowerer{
		function: fn.Name.Value,
		reserved: ast.Identifiers(fn),
	}
}

// LowerFunction lowers a whole function body to flat IR
func LowerFunction(fn *ast.Function) (*ir.Function, error) {
	l := NewLowerer(fn)

	params := make([]ir.Var, len(fn.Params))
	for i, param := range fn.Params {
		params[i] = ir.Name(param.Name.Value)
	}

	var body []ir.Instruction
	if fn.Body != nil {
		_, insts, err := l.Lower(fn.Body)
		if err != nil {
			return nil, err
		}
		body = insts
	}

	return &ir.Function{
		Name:         fn.Name.Value,
		Params:       params,
		Instructions: body,
	}, nil
}

// LowerProgram lowers every function of prog independently. A function that
// fails to lower is left out of the result and its error is collected; the
// remaining functions are still lowered.
func LowerProgram(prog *ast.Program) ([]*ir.Function, error) {
	var (
		functions []*ir.Function
		errs      []error
	)
	for _, fn := range prog.Functions {
		lowered, err := LowerFunction(fn)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		functions = append(functions, lowered)
	}
	return functions, stderrors.Join(errs...)
}

// Lower translates one statement or expression. Expressions yield the name
// holding their value; statements yield a nil name.
func (l *Lowerer) Lower(node ast.Node) (*ir.Var, []ir.Instruction, error) {
	switch n := node.(type) {
	case ast.Expr:
		result, insts, err := l.lowerExpr(n)
		if err != nil {
			return nil, nil, err
		}
		return &result, insts, nil
	case ast.Stmt:
		insts, err := l.lowerStmt(n)
		return nil, insts, err
	default:
		return nil, nil, l.fail(node, fmt.Sprintf("cannot lower %s outside of a function body", node.NodeType()))
	}
}

func (l *Lowerer) lowerStmt(stmt ast.Stmt) ([]ir.Instruction, error) {
	switch s := stmt.(type) {
	case *ast.BlockStmt:
		var insts []ir.Instruction
		for _, inner := range s.Stmts {
			lowered, err := l.lowerStmt(inner)
			if err != nil {
				return nil, err
			}
			insts = append(insts, lowered...)
		}
		return insts, nil

	case *ast.ExprStmt:
		_, insts, err := l.lowerExpr(s.Expr)
		return insts, err

	case *ast.DeclStmt:
		name := ir.Name(s.Name.Value)
		if s.Init == nil {
			return []ir.Instruction{&ir.VarDecl{Name: name}}, nil
		}
		value, insts, err := l.lowerExpr(s.Init)
		if err != nil {
			return nil, err
		}
		return append(insts, &ir.VarDecl{Name: name, Src: &value}), nil

	case *ast.IfStmt:
		return l.lowerIf(s)

	case *ast.WhileStmt:
		return l.lowerWhile(s)

	case *ast.ForStmt:
		return l.lowerFor(s)

	case *ast.ReturnStmt:
		if s.Value == nil {
			return []ir.Instruction{&ir.Return{}}, nil
		}
		value, insts, err := l.lowerExpr(s.Value)
		if err != nil {
			return nil, err
		}
		return append(insts, &ir.Return{Value: &value}), nil
	}

	return nil, l.fail(stmt, fmt.Sprintf("cannot lower statement %s", stmt.NodeType()))
}

// lowerIf emits
//
//	Branch c then else; then: ...; Jump end; else: ...; Jump end; end:
//
// An absent else branch still gets its label and jumps straight to end.
func (l *Lowerer) lowerIf(s *ast.IfStmt) ([]ir.Instruction, error) {
	id := l.labelID()
	thenLabel, elseLabel, endLabel := label("then", id), label("else", id), label("end", id)

	cond, insts, err := l.lowerExpr(s.Cond)
	if err != nil {
		return nil, err
	}
	insts = append(insts, &ir.Branch{Cond: cond, True: thenLabel, False: elseLabel})

	thenBody, err := l.lowerStmt(s.Then)
	if err != nil {
		return nil, err
	}
	insts = append(insts, &ir.Label{Name: thenLabel})
	insts = append(insts, thenBody...)
	insts = append(insts, &ir.Jump{Target: endLabel})

	insts = append(insts, &ir.Label{Name: elseLabel})
	if s.Else != nil {
		elseBody, err := l.lowerStmt(s.Else)
		if err != nil {
			return nil, err
		}
		insts = append(insts, elseBody...)
	}
	insts = append(insts, &ir.Jump{Target: endLabel}, &ir.Label{Name: endLabel})
	return insts, nil
}

// lowerWhile tests the condition before the first iteration
func (l *Lowerer) lowerWhile(s *ast.WhileStmt) ([]ir.Instruction, error) {
	return l.lowerLoop(nil, s.Cond, nil, s.Body)
}

// lowerFor runs the initializer once, then loops like while with the
// increment placed at the end of the body
func (l *Lowerer) lowerFor(s *ast.ForStmt) ([]ir.Instruction, error) {
	return l.lowerLoop(s.Init, s.Cond, s.Post, s.Body)
}

func (l *Lowerer) lowerLoop(init ast.Stmt, condExpr, post ast.Expr, body *ast.BlockStmt) ([]ir.Instruction, error) {
	id := l.labelID()
	condLabel, bodyLabel, endLabel := label("cond", id), label("body", id), label("end", id)

	var insts []ir.Instruction
	if init != nil {
		lowered, err := l.lowerStmt(init)
		if err != nil {
			return nil, err
		}
		insts = append(insts, lowered...)
	}

	insts = append(insts, &ir.Jump{Target: condLabel}, &ir.Label{Name: condLabel})
	if condExpr != nil {
		cond, condInsts, err := l.lowerExpr(condExpr)
		if err != nil {
			return nil, err
		}
		insts = append(insts, condInsts...)
		insts = append(insts, &ir.Branch{Cond: cond, True: bodyLabel, False: endLabel})
	} else {
		insts = append(insts, &ir.Jump{Target: bodyLabel})
	}

	insts = append(insts, &ir.Label{Name: bodyLabel})
	bodyInsts, err := l.lowerStmt(body)
	if err != nil {
		return nil, err
	}
	insts = append(insts, bodyInsts...)

	if post != nil {
		_, postInsts, err := l.lowerExpr(post)
		if err != nil {
			return nil, err
		}
		insts = append(insts, postInsts...)
	}

	insts = append(insts, &ir.Jump{Target: condLabel}, &ir.Label{Name: endLabel})
	return insts, nil
}

func (l *Lowerer) lowerExpr(expr ast.Expr) (ir.Var, []ir.Instruction, error) {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		dest := l.newTemp()
		return dest, []ir.Instruction{&ir.LoadConst{Dest: dest, Value: e.Value}}, nil

	case *ast.IdentExpr:
		return ir.Name(e.Name), nil, nil

	case *ast.BinaryExpr:
		op, ok := binaryOps[e.Op]
		if !ok {
			return ir.Var{}, nil, l.fail(e, fmt.Sprintf("unknown binary operator %q", e.Op))
		}
		left, insts, err := l.lowerExpr(e.Left)
		if err != nil {
			return ir.Var{}, nil, err
		}
		// A variable read on the left must not observe a store made on the right.
		if !left.Temp && assigns(e.Right) {
			snapshot := l.newTemp()
			insts = append(insts, &ir.Assign{Dest: snapshot, Src: left})
			left = snapshot
		}
		right, rightInsts, err := l.lowerExpr(e.Right)
		if err != nil {
			return ir.Var{}, nil, err
		}
		insts = append(insts, rightInsts...)
		dest := l.newTemp()
		return dest, append(insts, &ir.BinaryOp{Dest: dest, Op: op, Left: left, Right: right}), nil

	case *ast.UnaryExpr:
		op, ok := unaryOps[e.Op]
		if !ok {
			return ir.Var{}, nil, l.fail(e, fmt.Sprintf("unknown unary operator %q", e.Op))
		}
		operand, insts, err := l.lowerExpr(e.Operand)
		if err != nil {
			return ir.Var{}, nil, err
		}
		dest := l.newTemp()
		return dest, append(insts, &ir.UnaryOp{Dest: dest, Op: op, Operand: operand}), nil

	case *ast.AssignExpr:
		target, ok := e.Target.(*ast.IdentExpr)
		if !ok {
			return ir.Var{}, nil, l.fail(e.Target, fmt.Sprintf("cannot assign to %s; assignment target must be a variable", describe(e.Target)))
		}
		value, insts, err := l.lowerExpr(e.Value)
		if err != nil {
			return ir.Var{}, nil, err
		}
		dest := ir.Name(target.Name)
		return dest, append(insts, &ir.Assign{Dest: dest, Src: value}), nil

	case *ast.IndexExpr, *ast.FieldExpr:
		return ir.Var{}, nil, l.fail(e, fmt.Sprintf("cannot lower %s", describe(e)))
	}

	return ir.Var{}, nil, l.fail(expr, fmt.Sprintf("cannot lower expression %s", expr.NodeType()))
}

func assigns(expr ast.Expr) bool {
	found := false
	ast.Inspect(expr, func(n ast.Node) bool {
		if _, ok := n.(*ast.AssignExpr); ok {
			found = true
		}
		return !found
	})
	return found
}

// newTemp mints the next temporary, skipping names the source already uses
func (l *Lowerer) newTemp() ir.Var {
	for {
		name := fmt.Sprintf("%s%d", ir.TempPrefix, l.temps)
		l.temps++
		if !l.reserved[name] {
			return ir.Temp(name)
		}
	}
}

func (l *Lowerer) labelID() int {
	id := l.labels
	l.labels++
	return id
}

func label(prefix string, id int) string {
	return fmt.Sprintf("%s%d", prefix, id)
}

func (l *Lowerer) fail(node ast.Node, message string) error {
	return &errors.LoweringError{
		Function: l.function,
		Message:  message,
		Position: node.NodePos(),
		Node:     node.NodeType(),
	}
}

func describe(expr ast.Expr) string {
	switch expr.(type) {
	case *ast.IndexExpr:
		return "index expression " + expr.String()
	case *ast.FieldExpr:
		return "field access " + expr.String()
	default:
		return expr.String()
	}
}
