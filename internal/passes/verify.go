package passes

import (
	"fmt"

	"taco/internal/errors"
	"taco/internal/ir"
)

// Positions inside a block. Parameters precede everything in the entry and
// phis all take effect on entry to their block.
const (
	paramPos = -2
	phiPos   = -1
)

type defSite struct {
	block string
	pos   int
}

// VerifySSA checks that every reachable name has exactly one definition,
// that every use is dominated by its definition and that every phi has one
// slot per predecessor, each holding a value available on exit of that
// predecessor.
func VerifySSA(g *ir.ControlFlowGraph) error {
	return verifySSA(g, "verify")
}

func verifySSA(g *ir.ControlFlowGraph, pass string) error {
	dom := ComputeDominators(g)
	fail := func(format string, args ...any) error {
		return &errors.InternalInvariantViolation{Pass: pass, Function: g.Name, Detail: fmt.Sprintf(format, args...)}
	}

	defs := make(map[ir.Var]defSite)
	define := func(v ir.Var, site defSite) error {
		if !v.Temp && !v.IsVersioned() {
			return fail("%s defined in block %s without a version", v, site.block)
		}
		if prev, dup := defs[v]; dup {
			return fail("%s defined in block %s and again in block %s", v, prev.block, site.block)
		}
		defs[v] = site
		return nil
	}

	for _, param := range g.Params {
		if err := define(param, defSite{block: g.Entry, pos: paramPos}); err != nil {
			return err
		}
	}
	for _, b := range dom.Order() {
		for _, phi := range b.Phis {
			if err := define(phi.Dest, defSite{block: b.Label, pos: phiPos}); err != nil {
				return err
			}
		}
		for i, inst := range blockBody(b) {
			if def := inst.Def(); def != nil {
				if err := define(*def, defSite{block: b.Label, pos: i}); err != nil {
					return err
				}
			}
		}
	}

	for _, b := range dom.Order() {
		for i, inst := range blockBody(b) {
			for _, use := range inst.Uses() {
				site, ok := defs[*use]
				if !ok {
					return fail("%s used in block %s has no definition", *use, b.Label)
				}
				if site.block == b.Label && site.pos >= i {
					return fail("%s used in block %s before its definition", *use, b.Label)
				}
				if !dom.Dominates(site.block, b.Label) {
					return fail("definition of %s in block %s does not dominate its use in block %s", *use, site.block, b.Label)
				}
			}
		}

		for _, phi := range b.Phis {
			if len(phi.Incoming) != len(b.Preds) {
				return fail("phi %s in block %s has %d slots for %d predecessors", phi.Dest, b.Label, len(phi.Incoming), len(b.Preds))
			}
			for k, slot := range phi.Incoming {
				if slot.Pred != b.Preds[k] {
					return fail("phi %s in block %s lists %s where predecessor %s is expected", phi.Dest, b.Label, slot.Pred, b.Preds[k])
				}
				if slot.Undef || !dom.Reachable(slot.Pred) {
					continue
				}
				site, ok := defs[slot.Value]
				if !ok {
					return fail("phi %s in block %s reads undefined %s", phi.Dest, b.Label, slot.Value)
				}
				if !dom.Dominates(site.block, slot.Pred) {
					return fail("phi %s in block %s reads %s, which is not available on exit of %s", phi.Dest, b.Label, slot.Value, slot.Pred)
				}
			}
		}
	}
	return nil
}

// blockBody returns the instructions of b followed by its terminator
func blockBody(b *ir.BasicBlock) []ir.Instruction {
	if b.Terminator == nil {
		return b.Instructions
	}
	return append(b.Instructions[:len(b.Instructions):len(b.Instructions)], b.Terminator)
}
