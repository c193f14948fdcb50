package ir

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrinter(t *testing.T) {
	printer := NewPrinter()

	if printer == nil {
		t.Fatal("NewPrinter should not return nil")
	}
	if printer.output.Len() != 0 {
		t.Error("NewPrinter should have empty output buffer")
	}
}

func TestInstructionStrings(t *testing.T) {
	tests := []struct {
		inst     Instruction
		expected string
	}{
		{&LoadConst{Dest: Temp("t0"), Value: 1}, "t0 = LoadConst 1"},
		{&LoadConst{Dest: Temp("t3"), Value: -4}, "t3 = LoadConst -4"},
		{&BinaryOp{Dest: Temp("t2"), Op: OpAdd, Left: Temp("t0"), Right: Temp("t1")}, "t2 = BinaryOp Add t0 t1"},
		{&UnaryOp{Dest: Temp("t1"), Op: OpNeg, Operand: Temp("t0")}, "t1 = UnaryOp Neg t0"},
		{&UnaryOp{Dest: Temp("t1"), Op: OpNot, Operand: Name("ok")}, "t1 = UnaryOp Not ok"},
		{&Assign{Dest: Name("x"), Src: Temp("t2")}, "Assign x t2"},
		{&VarDecl{Name: Name("x"), Src: ptr(Temp("t0"))}, "VarDecl x t0"},
		{&VarDecl{Name: Name("x")}, "VarDecl x"},
		{&Label{Name: "end0"}, "end0:"},
		{&Jump{Target: "end0"}, "Jump end0"},
		{&Branch{Cond: Name("a"), True: "then0", False: "else0"}, "Branch a then0 else0"},
		{&Return{Value: ptr(Temp("t0"))}, "Return t0"},
		{&Return{}, "Return"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.inst.String())
	}
}

func TestPhiString(t *testing.T) {
	phi := &Phi{
		Dest: Versioned("b", 2),
		Incoming: []PhiIncoming{
			{Pred: "then0", Value: Versioned("b", 0)},
			{Pred: "else0", Value: Versioned("b", 1)},
		},
	}
	assert.Equal(t, "b2 = phi(then0: b0, else0: b1)", phi.String())

	phi.Incoming[1] = PhiIncoming{Pred: "else0", Undef: true}
	assert.Equal(t, "b2 = phi(then0: b0, else0: undef)", phi.String())
}

func TestPrintFunction(t *testing.T) {
	output := Print(diamond())

	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	require.Len(t, lines, 12)
	assert.Equal(t, "function pick(a)", lines[0])
	assert.Equal(t, "  Branch a then0 else0", lines[1])
	assert.Equal(t, "then0:", lines[2])
	assert.Equal(t, "  t0 = LoadConst 1", lines[3])
	assert.Equal(t, "end0:", lines[10])
	assert.Equal(t, "  Return b", lines[11])
}

func TestPrintCFG(t *testing.T) {
	g, err := BuildCFG(diamond())
	require.NoError(t, err)

	g.Block("end0").LiveIn = NewVarSet(Name("b"))
	g.Block("end0").LiveOut = NewVarSet()

	output := PrintCFG(g)

	assert.Contains(t, output, "entry:\n  Branch a then0 else0\n")
	assert.Contains(t, output, "end0:  ; preds: then0, else0\n")
	assert.Contains(t, output, "; live-in: {b}")
	assert.Contains(t, output, "; live-out: {}")
	assert.NotContains(t, output, "then0:  ; preds: entry\n  ; live-in")
}

func TestPrintCFGFallThrough(t *testing.T) {
	fn := &Function{
		Name: "f",
		Instructions: []Instruction{
			&Label{Name: "top"},
			&Return{},
		},
	}
	g, err := BuildCFG(fn)
	require.NoError(t, err)

	assert.Contains(t, PrintCFG(g), "entry:\n  ; falls through to top\n")
}
