package errors

import (
	"fmt"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"taco/internal/ast"
)

func init() {
	color.NoColor = true
}

func TestErrorReporter(t *testing.T) {
	source := `int main() {
    int a[4];
    a[0] = 1;
    return 0;
}`

	reporter := NewErrorReporter("test.c", source)

	err := &LoweringError{
		Function: "main",
		Message:  "assignment target must be a variable",
		Position: ast.Position{Filename: "test.c", Line: 3, Column: 5},
		Node:     ast.INDEX_EXPR,
	}
	diag, ok := FromError(err)
	require.True(t, ok)

	formatted := reporter.FormatError(diag)

	assert.Contains(t, formatted, "error["+ErrorLowering+"]")
	assert.Contains(t, formatted, "assignment target must be a variable")
	assert.Contains(t, formatted, "test.c:3:5")
	assert.Contains(t, formatted, "a[0] = 1;")
	assert.Contains(t, formatted, "lowering of function 'main' was aborted")
}

func TestLoweringErrorMessage(t *testing.T) {
	err := &LoweringError{
		Function: "f",
		Message:  "cannot lower field access",
		Position: ast.Position{Filename: "x.c", Line: 2, Column: 7},
	}
	assert.Equal(t, "x.c:2:7: in function f: cannot lower field access", err.Error())

	err.Position = ast.Position{}
	assert.Equal(t, "in function f: cannot lower field access", err.Error())
}

func TestLabelResolutionDiagnostic(t *testing.T) {
	err := &LabelResolutionError{Function: "loop", Label: "end4", Reason: "is not defined"}
	assert.Equal(t, `in function loop: label "end4" is not defined`, err.Error())

	diag, ok := FromError(fmt.Errorf("building CFG: %w", err))
	require.True(t, ok)
	assert.Equal(t, ErrorLabelResolution, diag.Code)
	assert.Equal(t, Error, diag.Level)

	formatted := NewErrorReporter("loop.c", "").FormatError(diag)
	assert.Contains(t, formatted, "label 'end4' is not defined")
	assert.Contains(t, formatted, "in function 'loop'")
	assert.NotContains(t, formatted, "-->")
}

func TestInternalInvariantIsDistinct(t *testing.T) {
	err := &InternalInvariantViolation{Pass: "ssa", Function: "f", Detail: "x1 defined twice"}
	diag, ok := FromError(err)
	require.True(t, ok)

	assert.Equal(t, Internal, diag.Level)
	assert.True(t, IsInternal(diag.Code))
	assert.Equal(t, "Internal", GetErrorCategory(diag.Code))

	formatted := NewErrorReporter("f.c", "").FormatError(diag)
	assert.True(t, strings.HasPrefix(formatted, "internal compiler error["+ErrorInternalInvariant+"]"))
	assert.Contains(t, formatted, "compiler bug")
}

func TestPassContractDiagnostic(t *testing.T) {
	err := &PassContractError{Pass: "liveness", Want: "ssa", Got: "cfg"}
	assert.Equal(t, `pass "liveness" requires ssa input, pipeline holds cfg`, err.Error())

	diag, ok := FromError(err)
	require.True(t, ok)
	assert.Equal(t, ErrorPassContract, diag.Code)
	assert.False(t, IsInternal(diag.Code))
	assert.Equal(t, "Middle-end", GetErrorCategory(diag.Code))
}

func TestFromErrorUnknown(t *testing.T) {
	_, ok := FromError(fmt.Errorf("plain failure"))
	assert.False(t, ok)

	formatted := NewErrorReporter("a.c", "").FormatErrors([]error{fmt.Errorf("plain failure")})
	assert.Contains(t, formatted, "error: plain failure")
}

func TestErrorMarkerCreation(t *testing.T) {
	underline := marker(5, 5, styleFor(Error)) // "value" is 5 chars at column 5

	spaces := strings.Count(underline, " ")
	assert.Equal(t, 4, spaces) // column 5 means 4 spaces before
	carets := strings.Count(underline, "^")
	assert.Equal(t, 5, carets)

	assert.Equal(t, 1, strings.Count(marker(1, 0, styleFor(Warning)), "^"))
}

func TestFormatErrorExcerpt(t *testing.T) {
	source := "int f() {\n  return q.x;\n}"
	diag := NewDiagnostic(ErrorLowering, "cannot lower field access", ast.Position{Line: 2, Column: 10}).
		WithLength(3).
		WithHelp("fields are not supported").
		Build()

	formatted := NewErrorReporter("f.c", source).FormatError(diag)
	lines := strings.Split(formatted, "\n")
	require.GreaterOrEqual(t, len(lines), 8)

	assert.Equal(t, "error["+ErrorLowering+"]: cannot lower field access", lines[0])
	assert.Contains(t, lines[1], "--> f.c:2:10")
	assert.Contains(t, lines[3], "  1 │ int f() {")
	assert.Contains(t, lines[4], "  2 │   return q.x;")
	assert.Contains(t, lines[5], "│          ^^^")
	assert.Contains(t, lines[6], "  3 │ }")
	assert.Contains(t, lines[7], "help: fields are not supported")
}

func TestFormatErrorFirstLine(t *testing.T) {
	diag := NewDiagnostic(ErrorSyntax, "unexpected token", ast.Position{Line: 1, Column: 1}).Build()
	formatted := NewErrorReporter("one.c", "int").FormatError(diag)

	assert.NotContains(t, formatted, "  0 │")
	assert.NotContains(t, formatted, "  2 │")
	assert.Contains(t, formatted, "  1 │ int")
}

func TestErrorDescriptions(t *testing.T) {
	codes := []string{ErrorSyntax, ErrorLowering, ErrorLabelResolution, ErrorPassContract, ErrorInternalInvariant}
	for _, code := range codes {
		assert.NotEqual(t, "Unknown error code", GetErrorDescription(code), code)
	}
	assert.Equal(t, "Unknown error code", GetErrorDescription("E9999"))
	assert.Equal(t, "Parser", GetErrorCategory(ErrorSyntax))
}
