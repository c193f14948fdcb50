package lsp

import (
	stderrors "errors"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"taco/internal/ast"
	"taco/internal/compiler"
	"taco/internal/errors"
)

// ConvertSyntaxError turns a frontend failure into a single diagnostic at
// the offending token
func ConvertSyntaxError(err error) []protocol.Diagnostic {
	var syntax *errors.SyntaxError
	if !stderrors.As(err, &syntax) {
		return []protocol.Diagnostic{newDiagnostic(ast.Position{Line: 1, Column: 1}, 1, errors.ErrorSyntax, err.Error(), protocol.DiagnosticSeverityError, "taco-parser")}
	}
	return []protocol.Diagnostic{newDiagnostic(syntax.Position, 1, errors.ErrorSyntax, syntax.Message, protocol.DiagnosticSeverityError, "taco-parser")}
}

// ConvertCompileErrors transforms per-function middle-end failures into
// diagnostics. Errors that carry no source position are anchored at the
// name of the function they belong to.
func ConvertCompileErrors(out *compiler.Output) []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}

	for i, result := range out.Results {
		if result.Err == nil {
			continue
		}
		fn := out.Program.Functions[i]

		diag, ok := errors.FromError(result.Err)
		if !ok {
			diag = errors.CompilerError{Level: errors.Error, Message: result.Err.Error()}
		}

		pos, length := diag.Position, diag.Length
		if !pos.IsValid() {
			pos, length = fn.Name.Pos, len(fn.Name.Value)
		}

		severity := protocol.DiagnosticSeverityError
		if diag.Level == errors.Warning {
			severity = protocol.DiagnosticSeverityWarning
		}

		diagnostics = append(diagnostics, newDiagnostic(pos, length, diag.Code, diag.Message, severity, "taco"))
	}

	return diagnostics
}

func newDiagnostic(pos ast.Position, length int, code, message string, severity protocol.DiagnosticSeverity, source string) protocol.Diagnostic {
	if length < 1 {
		length = 1
	}
	line := uint32(max(pos.Line-1, 0))     // Convert to 0-based indexing
	start := uint32(max(pos.Column-1, 0)) // Convert to 0-based indexing

	diagnostic := protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: line, Character: start},
			End:   protocol.Position{Line: line, Character: start + uint32(length)},
		},
		Severity: ptrSeverity(severity),
		Source:   ptrString(source),
		Message:  message,
	}
	if code != "" {
		diagnostic.Code = &protocol.IntegerOrString{Value: code}
	}
	return diagnostic
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func ptrString(s string) *string {
	return &s
}
