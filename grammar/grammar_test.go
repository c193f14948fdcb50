package grammar_test

import (
	"testing"

	"github.com/alecthomas/participle/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taco/grammar"
)

const sample = `// running sum
int sum(int n) {
    int s = 0;
    for (int i = 0; i < n; i = i + 1) {
        if (i % 2 == 0) { s = s + i; } else if (i > 7) { s = s - 1; } else { s = -s; }
    }
    /* done */
    return s;
}

void noop() { return; }
`

func TestParseFunctions(t *testing.T) {
	file, err := grammar.ParseString("sum.c", sample)
	require.NoError(t, err)
	require.Len(t, file.Functions, 2)

	sum := file.Functions[0]
	assert.Equal(t, "int", sum.ReturnType)
	assert.Equal(t, "sum", sum.Name.Value)
	require.Len(t, sum.Params, 1)
	assert.Equal(t, "n", sum.Params[0].Name.Value)
	assert.Equal(t, 2, sum.Pos.Line)

	require.Len(t, sum.Body.Stmts, 3)
	assert.NotNil(t, sum.Body.Stmts[0].Decl)
	assert.Equal(t, "s", sum.Body.Stmts[0].Decl.Name.Value)

	loop := sum.Body.Stmts[1].For
	require.NotNil(t, loop)
	require.NotNil(t, loop.Init)
	assert.NotNil(t, loop.Init.Decl)
	assert.NotNil(t, loop.Cond)
	assert.NotNil(t, loop.Post)
	require.Len(t, loop.Body.Stmts, 1)

	branch := loop.Body.Stmts[0].If
	require.NotNil(t, branch)
	require.NotNil(t, branch.Else)
	require.NotNil(t, branch.Else.If)
	assert.NotNil(t, branch.Else.If.Else.Block)

	assert.NotNil(t, sum.Body.Stmts[2].Return)
	assert.Equal(t, "void", file.Functions[1].ReturnType)
	assert.Nil(t, file.Functions[1].Body.Stmts[0].Return.Value)
}

func TestParseAssignmentIsRightAssociative(t *testing.T) {
	file, err := grammar.ParseString("a.c", "int f() { a = b = 3; }")
	require.NoError(t, err)

	expr := file.Functions[0].Body.Stmts[0].Expr
	require.NotNil(t, expr)
	require.NotNil(t, expr.Value)
	require.NotNil(t, expr.Value.Value)
	assert.Nil(t, expr.Value.Value.Value)
}

func TestParsePostfix(t *testing.T) {
	file, err := grammar.ParseString("p.c", "int f() { buf[i] = p.x; }")
	require.NoError(t, err)

	expr := file.Functions[0].Body.Stmts[0].Expr
	target := expr.Target.Left.Left.Left.Left.Left.Left.Postfix
	require.Len(t, target.Suffixes, 1)
	assert.NotNil(t, target.Suffixes[0].Index)

	value := expr.Value.Target.Left.Left.Left.Left.Left.Left.Postfix
	require.Len(t, value.Suffixes, 1)
	assert.Equal(t, "x", value.Suffixes[0].Field.Value)
}

func TestParseError(t *testing.T) {
	_, err := grammar.ParseString("bad.c", "int f() {\n  x = ;\n}")
	require.Error(t, err)

	var pe participle.Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, pe.Position().Line)
	assert.Equal(t, "bad.c", pe.Position().Filename)
}

func TestEBNF(t *testing.T) {
	assert.Contains(t, grammar.EBNF(), "Function")
}
