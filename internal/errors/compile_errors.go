package errors

import (
	stderrors "errors"
	"fmt"

	"taco/internal/ast"
)

// LoweringError reports an AST shape the lowering rules cannot express.
// It aborts lowering of the enclosing function only.
type LoweringError struct {
	Function string
	Message  string
	Position ast.Position
	Node     ast.NodeType
}

func (e *LoweringError) Error() string {
	return fmt.Sprintf("%s: %s", locate(e.Function, e.Position), e.Message)
}

// LabelResolutionError reports a jump or branch whose target label does not
// exist in the function, or a label defined more than once.
type LabelResolutionError struct {
	Function string
	Label    string
	Reason   string
}

func (e *LabelResolutionError) Error() string {
	return fmt.Sprintf("%s: label %q %s", locate(e.Function, ast.Position{}), e.Label, e.Reason)
}

// PassContractError reports a pass scheduled against a representation it
// does not accept, or a pass that produced something other than what it
// declared. It is a pipeline configuration bug and fails the whole run.
type PassContractError struct {
	Pass   string
	Want   string
	Got    string
	Output bool // the mismatch is on the produced side
}

func (e *PassContractError) Error() string {
	if e.Output {
		return fmt.Sprintf("pass %q must produce %s, produced %s", e.Pass, e.Want, e.Got)
	}
	return fmt.Sprintf("pass %q requires %s input, pipeline holds %s", e.Pass, e.Want, e.Got)
}

// InternalInvariantViolation reports a broken SSA or liveness property after
// a pass ran. It is never recovered.
type InternalInvariantViolation struct {
	Pass     string
	Function string
	Detail   string
}

func (e *InternalInvariantViolation) Error() string {
	return fmt.Sprintf("internal error in pass %q (function %s): %s", e.Pass, e.Function, e.Detail)
}

func locate(function string, pos ast.Position) string {
	switch {
	case pos.IsValid() && pos.Filename != "":
		return fmt.Sprintf("%s:%d:%d: in function %s", pos.Filename, pos.Line, pos.Column, function)
	case pos.IsValid():
		return fmt.Sprintf("%d:%d: in function %s", pos.Line, pos.Column, function)
	default:
		return "in function " + function
	}
}

// FromError converts a middle-end error into a structured diagnostic.
// The boolean result is false for errors outside the taxonomy.
func FromError(err error) (CompilerError, bool) {
	var (
		lowering  *LoweringError
		label     *LabelResolutionError
		contract  *PassContractError
		invariant *InternalInvariantViolation
		syntax    *SyntaxError
	)

	switch {
	case stderrors.As(err, &lowering):
		return NewDiagnostic(ErrorLowering, lowering.Message, lowering.Position).
			WithNote(fmt.Sprintf("lowering of function '%s' was aborted", lowering.Function)).
			Build(), true
	case stderrors.As(err, &label):
		return NewDiagnostic(ErrorLabelResolution, fmt.Sprintf("label '%s' %s", label.Label, label.Reason), ast.Position{}).
			WithNote(fmt.Sprintf("in function '%s'", label.Function)).
			Build(), true
	case stderrors.As(err, &contract):
		return NewDiagnostic(ErrorPassContract, contract.Error(), ast.Position{}).
			WithHelp("passes run in registration order; check the pipeline configuration").
			Build(), true
	case stderrors.As(err, &invariant):
		return CompilerError{
			Level:   Internal,
			Code:    ErrorInternalInvariant,
			Message: invariant.Error(),
			Length:  1,
			Notes:   []string{"this is a compiler bug; no IR was emitted for this function"},
		}, true
	case stderrors.As(err, &syntax):
		return NewDiagnostic(ErrorSyntax, syntax.Message, syntax.Position).Build(), true
	}
	return CompilerError{}, false
}

// SyntaxError is produced by the frontend when source text does not parse.
type SyntaxError struct {
	Message  string
	Position ast.Position
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Position.Filename, e.Position.Line, e.Position.Column, e.Message)
}
