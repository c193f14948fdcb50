package ir

import (
	"fmt"

	"taco/internal/errors"
)

// EntryLabel is the name of the block control enters a function through
const EntryLabel = "entry"

// BuildCFG partitions the flat instruction sequence of fn into basic blocks
// and links them. A block starts at every label and after every terminator.
// Edges come from terminators, or from fall-through to the next block when a
// block has none. Unreachable blocks are kept.
func BuildCFG(fn *Function) (*ControlFlowGraph, error) {
	labels, err := collectLabels(fn)
	if err != nil {
		return nil, err
	}

	names := &blockNamer{taken: labels}
	g := NewControlFlowGraph(fn.Name, fn.Params)
	cur := g.AddBlock(names.fresh(EntryLabel))

	for _, inst := range fn.Instructions {
		switch i := inst.(type) {
		case *Label:
			cur = g.AddBlock(i.Name)
		case *Phi:
			return nil, fmt.Errorf("function %s: phi in flat instruction sequence", fn.Name)
		default:
			if cur == nil {
				cur = g.AddBlock(names.fresh("bb"))
			}
			if inst.IsTerminator() {
				cur.Terminator = inst
				cur = nil
				continue
			}
			cur.Instructions = append(cur.Instructions, inst)
		}
	}

	for idx, block := range g.Blocks {
		if block.Terminator == nil {
			if idx+1 < len(g.Blocks) {
				g.AddEdge(block.Label, g.Blocks[idx+1].Label)
			}
			continue
		}
		for _, target := range Targets(block.Terminator) {
			g.AddEdge(block.Label, target)
		}
	}

	return g, nil
}

// collectLabels returns the label set of fn, failing on duplicates and on
// jumps or branches whose target is missing
func collectLabels(fn *Function) (map[string]bool, error) {
	labels := make(map[string]bool)
	for _, inst := range fn.Instructions {
		label, ok := inst.(*Label)
		if !ok {
			continue
		}
		if labels[label.Name] {
			return nil, &errors.LabelResolutionError{
				Function: fn.Name,
				Label:    label.Name,
				Reason:   "is defined more than once",
			}
		}
		labels[label.Name] = true
	}

	for _, inst := range fn.Instructions {
		for _, target := range Targets(inst) {
			if !labels[target] {
				return nil, &errors.LabelResolutionError{
					Function: fn.Name,
					Label:    target,
					Reason:   "is not defined",
				}
			}
		}
	}
	return labels, nil
}

// blockNamer hands out block names that do not clash with source labels
type blockNamer struct {
	taken map[string]bool
	next  int
}

func (n *blockNamer) fresh(prefix string) string {
	if prefix == EntryLabel && !n.taken[EntryLabel] {
		n.taken[EntryLabel] = true
		return EntryLabel
	}
	for {
		name := fmt.Sprintf("%s%d", prefix, n.next)
		n.next++
		if !n.taken[name] {
			n.taken[name] = true
			return name
		}
	}
}
