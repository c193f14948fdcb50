package compiler

import (
	"io"
	"strings"

	"taco/internal/ir"
	"taco/internal/passes"
)

// Emit writes every successfully compiled function in the form its
// pipeline reached, separated by blank lines
func (o *Output) Emit(w io.Writer) error {
	var b strings.Builder
	first := true
	for _, r := range o.Results {
		if r.Unit == nil {
			continue
		}
		if !first {
			b.WriteString("\n")
		}
		first = false
		b.WriteString(render(r.Unit))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func render(unit *passes.Unit) string {
	if unit.Repr == passes.FlatIR {
		return ir.Print(unit.Flat)
	}
	return ir.PrintCFG(unit.CFG)
}
