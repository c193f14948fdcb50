package errors

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"taco/internal/ast"
)

// ErrorLevel is the severity printed in a diagnostic header
type ErrorLevel string

const (
	Error    ErrorLevel = "error"
	Warning  ErrorLevel = "warning"
	Internal ErrorLevel = "internal compiler error"
)

var levelStyles = map[ErrorLevel]*color.Color{
	Error:    color.New(color.FgRed, color.Bold),
	Warning:  color.New(color.FgYellow, color.Bold),
	Internal: color.New(color.FgMagenta, color.Bold),
}

func styleFor(level ErrorLevel) *color.Color {
	if style, ok := levelStyles[level]; ok {
		return style
	}
	return levelStyles[Error]
}

var (
	faint   = color.New(color.Faint).SprintFunc()
	bold    = color.New(color.Bold).SprintFunc()
	blue    = color.New(color.FgBlue).SprintFunc()
	green   = color.New(color.FgGreen).SprintFunc()
)

const minGutter = 3

// CompilerError is a diagnostic ready for rendering. Position may be the
// zero value for failures that have no source location, such as label,
// pass contract and internal errors.
type CompilerError struct {
	Level    ErrorLevel
	Code     string // E0700 and friends, see codes.go
	Message  string
	Position ast.Position
	Length   int // columns underlined at Position
	Notes    []string
	HelpText string
}

// ErrorReporter renders diagnostics against the source of one file
type ErrorReporter struct {
	filename string
	lines    []string
}

func NewErrorReporter(filename, source string) *ErrorReporter {
	return &ErrorReporter{filename: filename, lines: strings.Split(source, "\n")}
}

// FormatError renders err as a header, an excerpt of the offending line
// with one line of context on each side, and any notes and help.
func (r *ErrorReporter) FormatError(err CompilerError) string {
	var b strings.Builder
	style := styleFor(err.Level)

	header := style.Sprint(string(err.Level))
	if err.Code != "" {
		header += "[" + err.Code + "]"
	}
	fmt.Fprintf(&b, "%s: %s\n", header, err.Message)

	pos := err.Position
	width := gutterWidth(pos.Line)
	pad := strings.Repeat(" ", width)

	if pos.IsValid() {
		fmt.Fprintf(&b, "%s %s %s:%d:%d\n", pad, faint("-->"), r.filename, pos.Line, pos.Column)
		fmt.Fprintf(&b, "%s %s\n", pad, faint("│"))

		for line := pos.Line - 1; line <= pos.Line+1; line++ {
			text, ok := r.line(line)
			if !ok {
				continue
			}
			number := fmt.Sprintf("%*d", width, line)
			if line != pos.Line {
				fmt.Fprintf(&b, "%s %s %s\n", faint(number), faint("│"), text)
				continue
			}
			fmt.Fprintf(&b, "%s %s %s\n", bold(number), faint("│"), text)
			fmt.Fprintf(&b, "%s %s %s\n", pad, faint("│"), marker(pos.Column, err.Length, style))
		}
	}

	for _, note := range err.Notes {
		fmt.Fprintf(&b, "%s %s %s %s\n", pad, faint("│"), blue("note:"), note)
	}
	if err.HelpText != "" {
		fmt.Fprintf(&b, "%s %s %s %s\n", pad, faint("│"), green("help:"), err.HelpText)
	}

	b.WriteString("\n")
	return b.String()
}

// FormatErrors renders errs in order. Errors that FromError does not know
// are shown as plain error-level diagnostics.
func (r *ErrorReporter) FormatErrors(errs []error) string {
	var b strings.Builder
	for _, err := range errs {
		diag, ok := FromError(err)
		if !ok {
			diag = CompilerError{Level: Error, Message: err.Error(), Length: 1}
		}
		b.WriteString(r.FormatError(diag))
	}
	return b.String()
}

// line returns the 1-based source line n
func (r *ErrorReporter) line(n int) (string, bool) {
	if n < 1 || n > len(r.lines) {
		return "", false
	}
	return r.lines[n-1], true
}

// marker underlines length columns starting at column
func marker(column, length int, style *color.Color) string {
	return strings.Repeat(" ", max(0, column-1)) + style.Sprint(strings.Repeat("^", max(1, length)))
}

func gutterWidth(line int) int {
	return max(minGutter, len(strconv.Itoa(line)))
}
