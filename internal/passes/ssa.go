package passes

import (
	"fmt"

	"taco/internal/errors"
	"taco/internal/ir"
)

// ConvertToSSA rewrites g into minimal SSA form in place:
//
//  1. dominators and dominance frontiers over the reachable blocks
//  2. phis at the iterated dominance frontier of each variable's definition
//     sites, the entry counting as a site of every variable
//  3. renaming along a pre-order walk of the dominator tree, with one stack
//     of live versions per variable
//
// Variables are handled in first-definition order and blocks in creation
// order, so equal input always yields equal versions and phis. Temporaries
// are assigned exactly once by lowering and keep their names. Unreachable
// blocks are left untouched.
func ConvertToSSA(g *ir.ControlFlowGraph) error {
	dom := ComputeDominators(g)
	if len(dom.Order()) == 0 {
		return nil
	}

	r := &renamer{
		g:        g,
		dom:      dom,
		counters: make(map[string]int),
		stacks:   make(map[string][]int),
	}

	vars, sites := r.collectDefinitions()
	r.placePhis(vars, sites)

	for i, param := range g.Params {
		g.Params[i] = ir.Versioned(param.Base, r.push(param.Base))
	}
	if err := r.rename(g.Entry); err != nil {
		return err
	}

	return verifySSA(g, "ssa")
}

type renamer struct {
	g        *ir.ControlFlowGraph
	dom      *DomTree
	counters map[string]int   // next version per variable
	stacks   map[string][]int // versions live on the current dominator path
}

// collectDefinitions returns the assigned variables in first-definition
// order, with the blocks defining each of them in creation order
func (r *renamer) collectDefinitions() ([]string, map[string][]string) {
	var vars []string
	sites := make(map[string][]string)

	define := func(name, block string) {
		defined, seen := sites[name]
		if !seen {
			vars = append(vars, name)
		}
		if !contains(defined, block) {
			sites[name] = append(defined, block)
		}
	}

	for _, param := range r.g.Params {
		define(param.Base, r.g.Entry)
	}
	for _, block := range r.g.Blocks {
		if !r.dom.Reachable(block.Label) {
			continue
		}
		for _, inst := range block.Instructions {
			if def := inst.Def(); def != nil && !def.Temp {
				define(def.Base, block.Label)
			}
		}
	}
	return vars, sites
}

func (r *renamer) placePhis(vars []string, sites map[string][]string) {
	for _, name := range vars {
		defBlocks := sites[name]
		if !contains(defBlocks, r.g.Entry) {
			defBlocks = append([]string{r.g.Entry}, defBlocks...)
		}
		if len(defBlocks) < 2 {
			continue
		}

		queued := make(map[string]bool, len(defBlocks))
		for _, b := range defBlocks {
			queued[b] = true
		}
		hasPhi := make(map[string]bool)

		for work := defBlocks; len(work) > 0; {
			x := work[0]
			work = work[1:]
			for _, y := range r.dom.Frontier(x) {
				if hasPhi[y] {
					continue
				}
				hasPhi[y] = true
				r.insertPhi(r.g.Block(y), name)
				if !queued[y] {
					queued[y] = true
					work = append(work, y)
				}
			}
		}
	}
}

// insertPhi adds an empty phi with one slot per predecessor, in the
// block's predecessor order
func (r *renamer) insertPhi(block *ir.BasicBlock, name string) {
	phi := &ir.Phi{Dest: ir.Name(name), Incoming: make([]ir.PhiIncoming, len(block.Preds))}
	for i, pred := range block.Preds {
		phi.Incoming[i] = ir.PhiIncoming{Pred: pred, Undef: true}
	}
	block.Phis = append(block.Phis, phi)
}

func (r *renamer) push(name string) int {
	version := r.counters[name]
	r.counters[name] = version + 1
	r.stacks[name] = append(r.stacks[name], version)
	return version
}

func (r *renamer) top(name string) (int, bool) {
	stack := r.stacks[name]
	if len(stack) == 0 {
		return 0, false
	}
	return stack[len(stack)-1], true
}

func (r *renamer) rename(label string) error {
	block := r.g.Block(label)
	var pushed []string

	for _, phi := range block.Phis {
		name := phi.Dest.Base
		phi.Dest = ir.Versioned(name, r.push(name))
		pushed = append(pushed, name)
	}

	for _, inst := range blockBody(block) {
		for _, use := range inst.Uses() {
			if use.Temp {
				continue
			}
			version, ok := r.top(use.Base)
			if !ok {
				return &errors.InternalInvariantViolation{
					Pass:     "ssa",
					Function: r.g.Name,
					Detail:   fmt.Sprintf("use of %s in block %s has no reaching definition", use.Base, label),
				}
			}
			*use = ir.Versioned(use.Base, version)
		}
		if def := inst.Def(); def != nil && !def.Temp {
			*def = ir.Versioned(def.Base, r.push(def.Base))
			pushed = append(pushed, def.Base)
		}
	}

	for _, succ := range block.Succs {
		for _, phi := range r.g.Block(succ).Phis {
			for i := range phi.Incoming {
				slot := &phi.Incoming[i]
				if slot.Pred != label {
					continue
				}
				if version, ok := r.top(phi.Dest.Base); ok {
					slot.Value = ir.Versioned(phi.Dest.Base, version)
					slot.Undef = false
				}
			}
		}
	}

	for _, child := range r.dom.Children(label) {
		if err := r.rename(child); err != nil {
			return err
		}
	}

	for _, name := range pushed {
		r.stacks[name] = r.stacks[name][:len(r.stacks[name])-1]
	}
	return nil
}
