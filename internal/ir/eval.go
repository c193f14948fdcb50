package ir

import (
	stderrors "errors"
	"fmt"
)

// MaxSteps bounds the number of instructions a single evaluation executes
const MaxSteps = 1 << 20

var (
	ErrStepLimit      = stderrors.New("step limit exceeded")
	ErrDivisionByZero = stderrors.New("division by zero")
)

// frame holds the values of one evaluation
type frame struct {
	function string
	values   map[Var]int64
	steps    int
}

func newFrame(function string, params []Var, args []int64) (*frame, error) {
	if len(args) != len(params) {
		return nil, fmt.Errorf("function %s takes %d arguments, got %d", function, len(params), len(args))
	}
	f := &frame{function: function, values: make(map[Var]int64, len(params))}
	for i, param := range params {
		f.values[param] = args[i]
	}
	return f, nil
}

func (f *frame) read(v Var) (int64, error) {
	value, ok := f.values[v]
	if !ok {
		return 0, fmt.Errorf("function %s: read of undefined %s", f.function, v)
	}
	return value, nil
}

func (f *frame) tick() error {
	f.steps++
	if f.steps > MaxSteps {
		return fmt.Errorf("function %s: %w", f.function, ErrStepLimit)
	}
	return nil
}

// exec runs one non-control instruction
func (f *frame) exec(inst Instruction) error {
	if err := f.tick(); err != nil {
		return err
	}

	switch i := inst.(type) {
	case *LoadConst:
		f.values[i.Dest] = i.Value
	case *BinaryOp:
		left, err := f.read(i.Left)
		if err != nil {
			return err
		}
		right, err := f.read(i.Right)
		if err != nil {
			return err
		}
		result, err := binary(i.Op, left, right)
		if err != nil {
			return fmt.Errorf("function %s: %w", f.function, err)
		}
		f.values[i.Dest] = result
	case *UnaryOp:
		operand, err := f.read(i.Operand)
		if err != nil {
			return err
		}
		switch i.Op {
		case OpNeg:
			f.values[i.Dest] = -operand
		case OpNot:
			f.values[i.Dest] = truth(operand == 0)
		default:
			return fmt.Errorf("function %s: unknown unary operator %s", f.function, i.Op)
		}
	case *Assign:
		value, err := f.read(i.Src)
		if err != nil {
			return err
		}
		f.values[i.Dest] = value
	case *VarDecl:
		if i.Src == nil {
			return nil
		}
		value, err := f.read(*i.Src)
		if err != nil {
			return err
		}
		f.values[i.Name] = value
	case *Label:
	default:
		return fmt.Errorf("function %s: cannot execute %s", f.function, inst)
	}
	return nil
}

func binary(op BinOp, left, right int64) (int64, error) {
	switch op {
	case OpAdd:
		return left + right, nil
	case OpSub:
		return left - right, nil
	case OpMul:
		return left * right, nil
	case OpDiv:
		if right == 0 {
			return 0, ErrDivisionByZero
		}
		return left / right, nil
	case OpMod:
		if right == 0 {
			return 0, ErrDivisionByZero
		}
		return left % right, nil
	case OpLt:
		return truth(left < right), nil
	case OpLe:
		return truth(left <= right), nil
	case OpGt:
		return truth(left > right), nil
	case OpGe:
		return truth(left >= right), nil
	case OpEq:
		return truth(left == right), nil
	case OpNeq:
		return truth(left != right), nil
	case OpAnd:
		return truth(left != 0 && right != 0), nil
	case OpOr:
		return truth(left != 0 || right != 0), nil
	}
	return 0, fmt.Errorf("unknown binary operator %s", op)
}

func truth(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// Eval interprets the flat instruction sequence of fn. Booleans are 0 and 1.
// Falling off the end of the sequence, or a bare Return, yields 0.
func Eval(fn *Function, args ...int64) (int64, error) {
	f, err := newFrame(fn.Name, fn.Params, args)
	if err != nil {
		return 0, err
	}

	labels := make(map[string]int)
	for pc, inst := range fn.Instructions {
		if label, ok := inst.(*Label); ok {
			labels[label.Name] = pc
		}
	}

	jump := func(target string) (int, error) {
		pc, ok := labels[target]
		if !ok {
			return 0, fmt.Errorf("function %s: jump to unknown label %s", fn.Name, target)
		}
		return pc, nil
	}

	for pc := 0; pc < len(fn.Instructions); {
		switch i := fn.Instructions[pc].(type) {
		case *Jump:
			if err := f.tick(); err != nil {
				return 0, err
			}
			if pc, err = jump(i.Target); err != nil {
				return 0, err
			}
		case *Branch:
			if err := f.tick(); err != nil {
				return 0, err
			}
			cond, err := f.read(i.Cond)
			if err != nil {
				return 0, err
			}
			target := i.False
			if cond != 0 {
				target = i.True
			}
			if pc, err = jump(target); err != nil {
				return 0, err
			}
		case *Return:
			if i.Value == nil {
				return 0, nil
			}
			return f.read(*i.Value)
		default:
			if err := f.exec(i); err != nil {
				return 0, err
			}
			pc++
		}
	}
	return 0, nil
}

// EvalCFG interprets a graph in CFG or SSA form. Phis read the values
// reaching them along the edge control arrived from, all at once.
func EvalCFG(g *ControlFlowGraph, args ...int64) (int64, error) {
	f, err := newFrame(g.Name, g.Params, args)
	if err != nil {
		return 0, err
	}

	prev := ""
	block := g.EntryBlock()
	for block != nil {
		if err := f.enter(block, prev); err != nil {
			return 0, err
		}
		for _, inst := range block.Instructions {
			if err := f.exec(inst); err != nil {
				return 0, err
			}
		}

		var next string
		switch t := block.Terminator.(type) {
		case nil:
			if len(block.Succs) == 0 {
				return 0, nil
			}
			next = block.Succs[0]
		case *Jump:
			next = t.Target
		case *Branch:
			cond, err := f.read(t.Cond)
			if err != nil {
				return 0, err
			}
			next = t.False
			if cond != 0 {
				next = t.True
			}
		case *Return:
			if t.Value == nil {
				return 0, nil
			}
			return f.read(*t.Value)
		}

		if err := f.tick(); err != nil {
			return 0, err
		}
		prev, block = block.Label, g.Block(next)
	}
	return 0, fmt.Errorf("function %s: control left the graph", g.Name)
}

// enter evaluates the phis of block for the edge from prev
func (f *frame) enter(block *BasicBlock, prev string) error {
	if len(block.Phis) == 0 {
		return nil
	}

	type binding struct {
		dest  Var
		value int64
		undef bool
	}
	bindings := make([]binding, 0, len(block.Phis))
	for _, phi := range block.Phis {
		found := false
		for _, in := range phi.Incoming {
			if in.Pred != prev {
				continue
			}
			found = true
			// an operand that is itself undefined on this path stays undefined
			value, ok := f.values[in.Value]
			bindings = append(bindings, binding{dest: phi.Dest, value: value, undef: in.Undef || !ok})
			break
		}
		if !found {
			return fmt.Errorf("function %s: phi %s has no slot for %s", f.function, phi.Dest, prev)
		}
	}

	for _, b := range bindings {
		if b.undef {
			delete(f.values, b.dest)
			continue
		}
		f.values[b.dest] = b.value
	}
	return nil
}
