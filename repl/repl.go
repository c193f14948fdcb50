// Package repl reads function definitions interactively and prints their
// SSA form with liveness.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"taco/internal/compiler"
	"taco/internal/config"
	"taco/internal/errors"
	"taco/internal/parser"
)

const (
	PROMPT     = ">> "
	CONTINUE   = ".. "
	sourceName = "<repl>"
)

// Start runs the loop until in is exhausted. Input is collected until the
// braces balance, then compiled with opts.
func Start(in io.Reader, out io.Writer, opts config.Options) {
	scanner := bufio.NewScanner(in)
	var pending strings.Builder
	depth := 0

	fmt.Fprint(out, PROMPT)
	for scanner.Scan() {
		line := scanner.Text()
		pending.WriteString(line)
		pending.WriteString("\n")
		depth += strings.Count(line, "{") - strings.Count(line, "}")

		if depth > 0 || strings.TrimSpace(pending.String()) == "" {
			if depth > 0 {
				fmt.Fprint(out, CONTINUE)
			} else {
				pending.Reset()
				fmt.Fprint(out, PROMPT)
			}
			continue
		}

		fmt.Fprint(out, Eval(pending.String(), opts))
		pending.Reset()
		depth = 0
		fmt.Fprint(out, PROMPT)
	}
}

// Eval compiles one chunk of source and returns what the loop prints for it
func Eval(source string, opts config.Options) string {
	reporter := errors.NewErrorReporter(sourceName, source)

	prog, err := parser.ParseSource(sourceName, source)
	if err != nil {
		return reporter.FormatErrors([]error{err})
	}

	result, err := compiler.Compile(context.Background(), prog, opts)
	if err != nil {
		return err.Error() + "\n"
	}

	var b strings.Builder
	if err := result.Emit(&b); err != nil {
		return err.Error() + "\n"
	}
	b.WriteString(reporter.FormatErrors(result.Errors()))
	return b.String()
}
