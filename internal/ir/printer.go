package ir

import (
	"fmt"
	"strings"
)

// Printer provides pretty-printing for IR
type Printer struct {
	indent int
	output strings.Builder
}

// NewPrinter creates a new IR printer
func NewPrinter() *Printer {
	return &Printer{indent: 0}
}

// Print returns the flat listing of a function, one instruction per line
func Print(fn *Function) string {
	p := NewPrinter()
	p.printFunction(fn)
	return p.output.String()
}

// PrintCFG returns the block listing of a graph. Phis, when present, head
// their block; liveness sets are shown once computed.
func PrintCFG(g *ControlFlowGraph) string {
	p := NewPrinter()
	p.printCFG(g)
	return p.output.String()
}

// Helper methods

func (p *Printer) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.output.WriteString("  ")
	}
}

func (p *Printer) writeLine(format string, args ...interface{}) {
	p.writeIndent()
	p.output.WriteString(fmt.Sprintf(format, args...))
	p.output.WriteString("\n")
}

func (p *Printer) printFunction(fn *Function) {
	p.writeLine("function %s(%s)", fn.Name, varList(fn.Params))
	for _, inst := range fn.Instructions {
		if _, ok := inst.(*Label); ok {
			p.writeLine("%s", inst)
			continue
		}
		p.indent++
		p.writeLine("%s", inst)
		p.indent--
	}
}

func (p *Printer) printCFG(g *ControlFlowGraph) {
	p.writeLine("function %s(%s)", g.Name, varList(g.Params))
	for _, block := range g.Blocks {
		p.printBasicBlock(block)
	}
}

// printBasicBlock prints a basic block with its edges as trailing comments
func (p *Printer) printBasicBlock(block *BasicBlock) {
	header := block.Label + ":"
	if len(block.Preds) > 0 {
		header += fmt.Sprintf("  ; preds: %s", strings.Join(block.Preds, ", "))
	}
	p.writeLine("%s", header)

	p.indent++
	for _, phi := range block.Phis {
		p.writeLine("%s", phi)
	}
	for _, inst := range block.Instructions {
		p.writeLine("%s", inst)
	}
	if block.Terminator != nil {
		p.writeLine("%s", block.Terminator)
	} else if len(block.Succs) > 0 {
		p.writeLine("; falls through to %s", block.Succs[0])
	}
	if block.LiveIn != nil || block.LiveOut != nil {
		p.writeLine("; live-in: %s", block.LiveIn)
		p.writeLine("; live-out: %s", block.LiveOut)
	}
	p.indent--
}

func varList(vars []Var) string {
	names := make([]string, len(vars))
	for i, v := range vars {
		names[i] = v.String()
	}
	return strings.Join(names, ", ")
}

func (i *LoadConst) String() string { return fmt.Sprintf("%s = LoadConst %d", i.Dest, i.Value) }
func (i *BinaryOp) String() string {
	return fmt.Sprintf("%s = BinaryOp %s %s %s", i.Dest, i.Op, i.Left, i.Right)
}
func (i *UnaryOp) String() string { return fmt.Sprintf("%s = UnaryOp %s %s", i.Dest, i.Op, i.Operand) }
func (i *Assign) String() string  { return fmt.Sprintf("Assign %s %s", i.Dest, i.Src) }
func (i *Label) String() string   { return i.Name + ":" }
func (i *Jump) String() string    { return "Jump " + i.Target }
func (i *Branch) String() string  { return fmt.Sprintf("Branch %s %s %s", i.Cond, i.True, i.False) }

func (i *VarDecl) String() string {
	if i.Src == nil {
		return "VarDecl " + i.Name.String()
	}
	return fmt.Sprintf("VarDecl %s %s", i.Name, *i.Src)
}

func (i *Return) String() string {
	if i.Value == nil {
		return "Return"
	}
	return "Return " + i.Value.String()
}

// String renders incoming slots in the block's predecessor order
func (i *Phi) String() string {
	slots := make([]string, len(i.Incoming))
	for k, in := range i.Incoming {
		if in.Undef {
			slots[k] = in.Pred + ": undef"
		} else {
			slots[k] = fmt.Sprintf("%s: %s", in.Pred, in.Value)
		}
	}
	return fmt.Sprintf("%s = phi(%s)", i.Dest, strings.Join(slots, ", "))
}
