package errors

// Error codes for the taco middle-end
// These codes are used in error messages and documentation
// to provide consistent error identification across the toolchain.
//
// Error code ranges:
// E0100-E0199: Parser errors
// E0700-E0799: Middle-end (IR) errors
// E0900-E0999: Internal compiler errors

const (
	// E0100: Syntax errors reported by the frontend
	ErrorSyntax = "E0100"

	// E0700: AST shape the lowering rules cannot express
	ErrorLowering = "E0700"

	// E0701: Jump or branch target without a matching label
	ErrorLabelResolution = "E0701"

	// E0702: Pass run against a representation it does not accept
	ErrorPassContract = "E0702"

	// E0900: SSA or liveness invariant broken by a pass
	ErrorInternalInvariant = "E0900"
)

// GetErrorDescription returns a human-readable description of the error code
func GetErrorDescription(code string) string {
	switch code {
	case ErrorSyntax:
		return "Source text could not be parsed"
	case ErrorLowering:
		return "Construct cannot be lowered to IR"
	case ErrorLabelResolution:
		return "Control transfer targets an unknown or duplicate label"
	case ErrorPassContract:
		return "Pass input representation does not match the pipeline state"
	case ErrorInternalInvariant:
		return "Internal compiler invariant violated"
	default:
		return "Unknown error code"
	}
}

// IsInternal returns true if the code denotes a compiler defect rather than a user error
func IsInternal(code string) bool {
	return code >= "E0900" && code < "E1000"
}

// GetErrorCategory returns the category of the error based on its code
func GetErrorCategory(code string) string {
	switch {
	case code >= "E0100" && code < "E0200":
		return "Parser"
	case code >= "E0700" && code < "E0800":
		return "Middle-end"
	case code >= "E0900" && code < "E1000":
		return "Internal"
	default:
		return "Unknown"
	}
}
