package passes

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taco/internal/ast"
	"taco/internal/ir"
	"taco/internal/lower"
)

// programGen builds random structured functions over the parameters a, b
// and c. Every read is of a parameter, so each use has a reaching
// definition, and every loop runs a bounded number of times.
type programGen struct {
	r     *rand.Rand
	loops int
}

var readable = []string{"a", "b", "c"}
var writable = []string{"a", "b", "c", "d"}

func (p *programGen) expr(depth int) ast.Expr {
	if depth == 0 || p.r.Intn(3) == 0 {
		if p.r.Intn(2) == 0 {
			return lit(int64(p.r.Intn(7) - 3))
		}
		return ident(readable[p.r.Intn(len(readable))])
	}
	ops := []ast.BinaryOp{ast.Add, ast.Sub, ast.Mul, ast.Lt, ast.Eq, ast.And}
	if p.r.Intn(5) == 0 {
		return &ast.UnaryExpr{Op: ast.Not, Operand: p.expr(depth - 1)}
	}
	return bin(ops[p.r.Intn(len(ops))], p.expr(depth-1), p.expr(depth-1))
}

func (p *programGen) stmts(depth int) []ast.Stmt {
	n := 1 + p.r.Intn(3)
	out := make([]ast.Stmt, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, p.stmt(depth))
	}
	return out
}

func (p *programGen) stmt(depth int) ast.Stmt {
	choice := p.r.Intn(6)
	if depth == 0 {
		choice = 0
	}
	switch choice {
	case 1:
		s := &ast.IfStmt{Cond: p.expr(2), Then: block(p.stmts(depth - 1)...)}
		if p.r.Intn(2) == 0 {
			s.Else = block(p.stmts(depth - 1)...)
		}
		return s
	case 2:
		k := fmt.Sprintf("k%d", p.loops)
		p.loops++
		return &ast.ForStmt{
			Init: assign(k, lit(0)),
			Cond: bin(ast.Lt, ident(k), lit(int64(1+p.r.Intn(3)))),
			Post: &ast.AssignExpr{Target: ident(k), Value: bin(ast.Add, ident(k), lit(1))},
			Body: block(p.stmts(depth - 1)...),
		}
	case 3:
		if p.r.Intn(3) == 0 {
			return &ast.ReturnStmt{Value: p.expr(2)}
		}
		fallthrough
	default:
		return assign(writable[p.r.Intn(len(writable))], p.expr(2))
	}
}

func (p *programGen) function() *ast.Function {
	p.loops = 0
	body := p.stmts(3)
	body = append(body, &ast.ReturnStmt{Value: p.expr(2)})
	return function("rand", readable, body...)
}

func checkSingleAssignment(t *testing.T, g *ir.ControlFlowGraph) {
	t.Helper()
	dom := ComputeDominators(g)
	count := make(map[ir.Var]int)
	for _, p := range g.Params {
		count[p]++
	}
	for _, b := range dom.Order() {
		for _, phi := range b.Phis {
			count[phi.Dest]++
		}
		for _, inst := range blockBody(b) {
			if def := inst.Def(); def != nil {
				count[*def]++
			}
		}
	}
	for v, n := range count {
		assert.Equal(t, 1, n, "%s has %d definitions", v, n)
	}
}

func checkLivenessSound(t *testing.T, g *ir.ControlFlowGraph) {
	t.Helper()
	dom := ComputeDominators(g)
	for _, b := range dom.Order() {
		defined := ir.NewVarSet()
		for _, phi := range b.Phis {
			defined.Add(phi.Dest)
		}
		for _, inst := range blockBody(b) {
			for _, use := range inst.Uses() {
				if !defined.Has(*use) {
					assert.True(t, b.LiveIn.Has(*use), "%s used in %s but not live-in", *use, b.Label)
				}
			}
			if def := inst.Def(); def != nil {
				defined.Add(*def)
			}
		}

		for _, succ := range b.Succs {
			s := g.Block(succ)
			for v := range s.LiveIn {
				assert.True(t, b.LiveOut.Has(v), "%s live into %s but not out of %s", v, succ, b.Label)
			}
			for _, phi := range s.Phis {
				for _, slot := range phi.Incoming {
					if slot.Pred == b.Label && !slot.Undef {
						assert.True(t, b.LiveOut.Has(slot.Value), "phi operand %s not live out of %s", slot.Value, b.Label)
					}
				}
			}
		}
	}
}

func TestRandomProgramsKeepInvariants(t *testing.T) {
	gen := &programGen{r: rand.New(rand.NewSource(42))}
	inputs := [][]int64{{0, 0, 0}, {1, 2, 3}, {-3, 5, 1}, {4, -1, 0}}

	for i := 0; i < 150; i++ {
		fn := gen.function()

		flat, err := lower.LowerFunction(fn)
		require.NoError(t, err, fn.String())

		unit, err := DefaultPipeline(SSAForm, true).Run(NewUnit(flat))
		require.NoError(t, err, fn.String())
		g := unit.CFG

		checkSingleAssignment(t, g)
		checkLivenessSound(t, g)

		names := ir.NewVarSet()
		for _, b := range g.Blocks {
			names.AddAll(b.LiveIn)
			names.AddAll(b.LiveOut)
		}
		assert.LessOrEqual(t, unit.LivenessSweeps, len(g.Blocks)*(len(names)+1)+1)

		reference, err := lower.LowerFunction(fn)
		require.NoError(t, err)
		for _, args := range inputs {
			want, err := ir.Eval(reference, args...)
			require.NoError(t, err, fn.String())
			got, err := ir.EvalCFG(g, args...)
			require.NoError(t, err, "%s\n%s", fn, ir.PrintCFG(g))
			assert.Equal(t, want, got, "args %v\n%s", args, fn)
		}
	}
}
