package passes

import (
	"sort"

	"taco/internal/ir"
)

// DomTree holds the dominator tree and dominance frontiers of the blocks
// reachable from the entry of a graph
type DomTree struct {
	g        *ir.ControlFlowGraph
	order    []*ir.BasicBlock // reverse postorder
	rpo      map[string]int
	idom     map[string]string
	children map[string][]string
	frontier map[string][]string
}

// ComputeDominators finds immediate dominators with the iterative algorithm
// of Cooper, Harvey and Kennedy, then derives the tree and the frontiers.
// Tree children and frontier members are listed in block creation order.
func ComputeDominators(g *ir.ControlFlowGraph) *DomTree {
	d := &DomTree{
		g:        g,
		order:    g.ReversePostorder(),
		rpo:      make(map[string]int),
		idom:     make(map[string]string),
		children: make(map[string][]string),
		frontier: make(map[string][]string),
	}
	if len(d.order) == 0 {
		return d
	}
	for i, b := range d.order {
		d.rpo[b.Label] = i
	}

	entry := d.order[0].Label
	d.idom[entry] = entry

	for changed := true; changed; {
		changed = false
		for _, b := range d.order[1:] {
			newIdom := ""
			for _, pred := range b.Preds {
				if _, done := d.idom[pred]; !done {
					continue
				}
				if newIdom == "" {
					newIdom = pred
				} else {
					newIdom = d.intersect(pred, newIdom)
				}
			}
			if d.idom[b.Label] != newIdom {
				d.idom[b.Label] = newIdom
				changed = true
			}
		}
	}

	for _, b := range d.order[1:] {
		parent := d.idom[b.Label]
		d.children[parent] = append(d.children[parent], b.Label)
	}

	for _, b := range d.order {
		preds := d.reachablePreds(b)
		if len(preds) < 2 {
			continue
		}
		for _, pred := range preds {
			for runner := pred; runner != d.idom[b.Label]; runner = d.idom[runner] {
				if !contains(d.frontier[runner], b.Label) {
					d.frontier[runner] = append(d.frontier[runner], b.Label)
				}
				if runner == entry {
					break
				}
			}
		}
	}

	for label := range d.children {
		d.sortByCreation(d.children[label])
	}
	for label := range d.frontier {
		d.sortByCreation(d.frontier[label])
	}
	return d
}

// intersect walks both fingers up the partial tree until they meet
func (d *DomTree) intersect(a, b string) string {
	for a != b {
		for d.rpo[a] > d.rpo[b] {
			a = d.idom[a]
		}
		for d.rpo[b] > d.rpo[a] {
			b = d.idom[b]
		}
	}
	return a
}

func (d *DomTree) reachablePreds(b *ir.BasicBlock) []string {
	var preds []string
	for _, pred := range b.Preds {
		if _, ok := d.rpo[pred]; ok {
			preds = append(preds, pred)
		}
	}
	return preds
}

func (d *DomTree) sortByCreation(labels []string) {
	sort.Slice(labels, func(i, j int) bool {
		return d.g.Block(labels[i]).Index < d.g.Block(labels[j]).Index
	})
}

// Reachable reports whether label is reachable from the entry
func (d *DomTree) Reachable(label string) bool {
	_, ok := d.rpo[label]
	return ok
}

// Order returns the reachable blocks in reverse postorder
func (d *DomTree) Order() []*ir.BasicBlock {
	return d.order
}

// IDom returns the immediate dominator of label. The entry and unreachable
// blocks have none.
func (d *DomTree) IDom(label string) (string, bool) {
	parent, ok := d.idom[label]
	if !ok || parent == label {
		return "", false
	}
	return parent, true
}

// Children returns the blocks label immediately dominates
func (d *DomTree) Children(label string) []string {
	return d.children[label]
}

// Frontier returns the dominance frontier of label
func (d *DomTree) Frontier(label string) []string {
	return d.frontier[label]
}

// Dominates reports whether every path from the entry to b passes through a.
// Every block dominates itself; unreachable blocks dominate nothing.
func (d *DomTree) Dominates(a, b string) bool {
	if !d.Reachable(a) || !d.Reachable(b) {
		return false
	}
	for {
		if a == b {
			return true
		}
		parent, ok := d.IDom(b)
		if !ok {
			return false
		}
		b = parent
	}
}

// PreOrder returns the reachable blocks in dominator-tree pre-order,
// visiting children in creation order
func (d *DomTree) PreOrder() []string {
	if len(d.order) == 0 {
		return nil
	}
	var out []string
	stack := []string{d.order[0].Label}
	for len(stack) > 0 {
		label := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, label)
		kids := d.children[label]
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
