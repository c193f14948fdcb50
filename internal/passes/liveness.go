package passes

import (
	"fmt"

	"taco/internal/errors"
	"taco/internal/ir"
)

// localSets are the per-block summaries the equations are built from
type localSets struct {
	uses    ir.VarSet // read before any write in the block
	defs    ir.VarSet // written in the block, phis included
	phiUses ir.VarSet // operands of successor phis along edges leaving the block
}

func summarize(g *ir.ControlFlowGraph, dom *DomTree) map[string]*localSets {
	sets := make(map[string]*localSets, len(dom.Order()))
	for _, b := range dom.Order() {
		s := &localSets{uses: ir.NewVarSet(), defs: ir.NewVarSet(), phiUses: ir.NewVarSet()}
		for _, phi := range b.Phis {
			s.defs.Add(phi.Dest)
		}
		for _, inst := range blockBody(b) {
			for _, use := range inst.Uses() {
				if !s.defs.Has(*use) {
					s.uses.Add(*use)
				}
			}
			if def := inst.Def(); def != nil {
				s.defs.Add(*def)
			}
		}
		sets[b.Label] = s
	}

	for _, b := range dom.Order() {
		for _, succ := range b.Succs {
			for _, phi := range g.Block(succ).Phis {
				for _, slot := range phi.Incoming {
					if slot.Pred == b.Label && !slot.Undef {
						sets[b.Label].phiUses.Add(slot.Value)
					}
				}
			}
		}
	}
	return sets
}

// ComputeLiveness solves
//
//	live_out[B] = phi operands on edges out of B ∪ live_in[S] for S in succ(B)
//	live_in[B]  = uses[B] ∪ (live_out[B] − defs[B])
//
// by full sweeps over the blocks in reverse postorder until nothing changes,
// and returns the number of sweeps. Phi operands are live out of the
// predecessor they flow from, never uses of the phi's own block. Blocks
// without successors start with an empty live-out; unreachable blocks get
// empty sets. Instructions are not modified.
func ComputeLiveness(g *ir.ControlFlowGraph) (int, error) {
	dom := ComputeDominators(g)
	local := summarize(g, dom)

	for _, b := range g.Blocks {
		b.LiveIn = ir.NewVarSet()
		b.LiveOut = ir.NewVarSet()
	}

	// Each productive sweep adds at least one name to some set.
	names := ir.NewVarSet()
	for _, s := range local {
		names.AddAll(s.uses)
		names.AddAll(s.defs)
		names.AddAll(s.phiUses)
	}
	limit := 2*len(dom.Order())*len(names) + 1

	sweeps := 0
	for changed := true; changed; {
		if sweeps >= limit {
			return sweeps, &errors.InternalInvariantViolation{
				Pass:     "liveness",
				Function: g.Name,
				Detail:   fmt.Sprintf("no fixpoint after %d sweeps", sweeps),
			}
		}
		sweeps++
		changed = false
		for _, b := range dom.Order() {
			out, in := equations(g, b, local[b.Label])
			if b.LiveOut.AddAll(out) {
				changed = true
			}
			if b.LiveIn.AddAll(in) {
				changed = true
			}
		}
	}

	if err := checkLiveness(g, "liveness"); err != nil {
		return sweeps, err
	}
	return sweeps, nil
}

// equations evaluates both dataflow equations for b against the current sets
func equations(g *ir.ControlFlowGraph, b *ir.BasicBlock, local *localSets) (out, in ir.VarSet) {
	out = local.phiUses.Clone()
	for _, succ := range b.Succs {
		out.AddAll(g.Block(succ).LiveIn)
	}

	in = local.uses.Clone()
	for v := range out {
		if !local.defs.Has(v) {
			in.Add(v)
		}
	}
	return out, in
}

// checkLiveness confirms the attached sets are a fixpoint: one more sweep
// over the equations must reproduce every set exactly
func checkLiveness(g *ir.ControlFlowGraph, pass string) error {
	dom := ComputeDominators(g)
	local := summarize(g, dom)

	fail := func(format string, args ...any) error {
		return &errors.InternalInvariantViolation{Pass: pass, Function: g.Name, Detail: fmt.Sprintf(format, args...)}
	}

	for _, b := range g.Blocks {
		if !dom.Reachable(b.Label) {
			if len(b.LiveIn) != 0 || len(b.LiveOut) != 0 {
				return fail("unreachable block %s carries liveness", b.Label)
			}
			continue
		}
		out, in := equations(g, b, local[b.Label])
		if !out.Equal(b.LiveOut) {
			return fail("live-out of %s is %s, equations give %s", b.Label, b.LiveOut, out)
		}
		if !in.Equal(b.LiveIn) {
			return fail("live-in of %s is %s, equations give %s", b.Label, b.LiveIn, in)
		}
	}
	return nil
}
