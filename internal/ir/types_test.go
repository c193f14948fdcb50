package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVarString(t *testing.T) {
	assert.Equal(t, "x", Name("x").String())
	assert.Equal(t, "t4", Temp("t4").String())
	assert.Equal(t, "b2", Versioned("b", 2).String())
	assert.Equal(t, "x1_0", Versioned("x1", 0).String())
	assert.Equal(t, "t_0", Versioned(TempPrefix, 0).String())
	assert.NotEqual(t, Temp("t0").String(), Versioned("t", 0).String())
	assert.Equal(t, "tmp3", Versioned("tmp", 3).String())
	assert.False(t, Name("x").IsVersioned())
	assert.Equal(t, Name("b"), Versioned("b", 3).Unversioned())
}

func TestDefsAndUses(t *testing.T) {
	bin := &BinaryOp{Dest: Temp("t2"), Op: OpMul, Left: Name("a"), Right: Name("b")}
	assert.Equal(t, Temp("t2"), *bin.Def())
	uses := bin.Uses()
	assert.Len(t, uses, 2)

	*uses[0] = Versioned("a", 1)
	assert.Equal(t, Versioned("a", 1), bin.Left, "uses alias the operands")

	assert.Nil(t, (&VarDecl{Name: Name("x")}).Def())
	assert.Empty(t, (&VarDecl{Name: Name("x")}).Uses())
	assert.NotNil(t, (&VarDecl{Name: Name("x"), Src: ptr(Temp("t0"))}).Def())
	assert.Empty(t, (&Return{}).Uses())
	assert.Nil(t, (&Jump{Target: "l"}).Def())

	phi := &Phi{Dest: Versioned("x", 2), Incoming: []PhiIncoming{
		{Pred: "entry", Undef: true},
		{Pred: "body0", Value: Versioned("x", 1)},
	}}
	assert.Len(t, phi.Uses(), 1)
}

func TestTerminators(t *testing.T) {
	assert.True(t, (&Jump{}).IsTerminator())
	assert.True(t, (&Branch{}).IsTerminator())
	assert.True(t, (&Return{}).IsTerminator())
	assert.False(t, (&Label{}).IsTerminator())
	assert.False(t, (&Assign{}).IsTerminator())

	assert.Equal(t, []string{"a", "b"}, Targets(&Branch{True: "a", False: "b"}))
	assert.Nil(t, Targets(&Return{}))
}

func TestVarSet(t *testing.T) {
	s := NewVarSet(Versioned("b", 1), Versioned("a", 2), Versioned("a", 0))
	assert.Equal(t, "{a0, a2, b1}", s.String())
	assert.True(t, s.Has(Versioned("a", 2)))
	assert.False(t, s.Has(Name("a")))

	other := NewVarSet(Versioned("a", 0))
	assert.False(t, s.AddAll(other))
	assert.True(t, other.AddAll(NewVarSet(Temp("t0"))))

	c := s.Clone()
	assert.True(t, c.Equal(s))
	c.Add(Temp("t9"))
	assert.False(t, c.Equal(s))
}

func TestFunctionClone(t *testing.T) {
	fn := &Function{
		Name:   "f",
		Params: []Var{Name("a")},
		Instructions: []Instruction{
			&VarDecl{Name: Name("x"), Src: ptr(Name("a"))},
			&Return{Value: ptr(Name("x"))},
		},
	}

	clone := fn.Clone()
	clone.Params[0] = Versioned("a", 0)
	*clone.Instructions[0].Uses()[0] = Versioned("a", 0)
	*clone.Instructions[1].Uses()[0] = Versioned("x", 0)

	assert.Equal(t, "a", fn.Params[0].String())
	assert.Equal(t, "VarDecl x a", fn.Instructions[0].String())
	assert.Equal(t, "Return x", fn.Instructions[1].String())
	assert.Equal(t, "Return x0", clone.Instructions[1].String())
}
