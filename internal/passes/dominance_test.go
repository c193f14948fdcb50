package passes

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"taco/internal/ir"
)

// loopGraph builds
//
//	entry -> a, b;  a, b -> c;  c -> d;  d -> c, e;  f is unreachable
func loopGraph() *ir.ControlFlowGraph {
	g := ir.NewControlFlowGraph("loop", nil)
	for _, label := range []string{"entry", "a", "b", "c", "d", "e", "f"} {
		g.AddBlock(label)
	}
	for _, edge := range [][2]string{
		{"entry", "a"}, {"entry", "b"},
		{"a", "c"}, {"b", "c"},
		{"c", "d"},
		{"d", "c"}, {"d", "e"},
		{"f", "e"},
	} {
		g.AddEdge(edge[0], edge[1])
	}
	return g
}

func TestImmediateDominators(t *testing.T) {
	d := ComputeDominators(loopGraph())

	want := map[string]string{"a": "entry", "b": "entry", "c": "entry", "d": "c", "e": "d"}
	for block, idom := range want {
		got, ok := d.IDom(block)
		assert.True(t, ok, block)
		assert.Equal(t, idom, got, "idom of %s", block)
	}

	_, ok := d.IDom("entry")
	assert.False(t, ok)
	_, ok = d.IDom("f")
	assert.False(t, ok)
}

func TestDominatorTree(t *testing.T) {
	d := ComputeDominators(loopGraph())

	assert.Equal(t, []string{"a", "b", "c"}, d.Children("entry"))
	assert.Equal(t, []string{"d"}, d.Children("c"))
	assert.Equal(t, []string{"entry", "a", "b", "c", "d", "e"}, d.PreOrder())

	assert.True(t, d.Dominates("entry", "e"))
	assert.True(t, d.Dominates("c", "e"))
	assert.True(t, d.Dominates("d", "d"))
	assert.False(t, d.Dominates("a", "c"))
	assert.False(t, d.Dominates("f", "e"))
	assert.False(t, d.Reachable("f"))
}

func TestDominanceFrontiers(t *testing.T) {
	d := ComputeDominators(loopGraph())

	assert.Equal(t, []string{"c"}, d.Frontier("a"))
	assert.Equal(t, []string{"c"}, d.Frontier("b"))
	assert.Equal(t, []string{"c"}, d.Frontier("c"))
	assert.Equal(t, []string{"c"}, d.Frontier("d"))
	assert.Empty(t, d.Frontier("entry"))
	assert.Empty(t, d.Frontier("e"))
}

func TestDominatorsEmptyGraph(t *testing.T) {
	d := ComputeDominators(ir.NewControlFlowGraph("empty", nil))
	assert.Empty(t, d.Order())
	assert.Nil(t, d.PreOrder())
}
