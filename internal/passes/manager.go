package passes

import (
	"fmt"
	"strings"

	"github.com/tliron/commonlog"

	"taco/internal/errors"
	"taco/internal/ir"
)

var log = commonlog.GetLogger("taco.passes")

// Representation tags the form of the IR a pipeline currently holds
type Representation int

const (
	FlatIR Representation = iota
	CFGForm
	SSAForm
)

func (r Representation) String() string {
	switch r {
	case FlatIR:
		return "flat"
	case CFGForm:
		return "cfg"
	case SSAForm:
		return "ssa"
	default:
		return fmt.Sprintf("Representation(%d)", int(r))
	}
}

// ParseRepresentation maps "ir", "flat", "cfg" or "ssa" to its tag
func ParseRepresentation(s string) (Representation, error) {
	switch s {
	case "ir", "flat":
		return FlatIR, nil
	case "cfg":
		return CFGForm, nil
	case "ssa":
		return SSAForm, nil
	}
	return 0, fmt.Errorf("unknown representation %q (want ir, cfg or ssa)", s)
}

// Unit is the IR of one function as it moves through a pipeline. Flat holds
// the instruction sequence until a CFG is built; CFG holds the graph after.
type Unit struct {
	Name string
	Repr Representation
	Flat *ir.Function
	CFG  *ir.ControlFlowGraph

	// LivenessSweeps is the number of sweeps liveness needed to converge,
	// zero if liveness has not run
	LivenessSweeps int
}

// NewUnit wraps a lowered function
func NewUnit(fn *ir.Function) *Unit {
	return &Unit{Name: fn.Name, Repr: FlatIR, Flat: fn}
}

// Pass is one step of a pipeline. It declares the representation it accepts
// and the one it produces; it must not keep state between runs.
type Pass interface {
	Name() string
	Description() string
	Input() Representation
	Output() Representation
	Run(unit *Unit) (*Unit, error)
}

// PassManager runs passes strictly in registration order
type PassManager struct {
	passes []Pass
}

// NewPassManager creates a manager holding the given passes
func NewPassManager(passes ...Pass) *PassManager {
	m := &PassManager{}
	for _, pass := range passes {
		m.AddPass(pass)
	}
	return m
}

// AddPass appends a pass to the pipeline
func (m *PassManager) AddPass(pass Pass) {
	m.passes = append(m.passes, pass)
}

// Passes returns the registered passes in order
func (m *PassManager) Passes() []Pass {
	return m.passes
}

// Describe lists the pipeline one pass per line, in run order
func (m *PassManager) Describe() string {
	var b strings.Builder
	for i, pass := range m.passes {
		fmt.Fprintf(&b, "%d. %s\n", i+1, describe(pass))
	}
	return b.String()
}

func describe(pass Pass) string {
	return fmt.Sprintf("%s: %s (%s -> %s)", pass.Name(), pass.Description(), pass.Input(), pass.Output())
}

// Validate checks statically that each pass accepts what the previous one
// produces, starting from start. It lets a driver reject a misconfigured
// pipeline before compiling anything.
func (m *PassManager) Validate(start Representation) error {
	current := start
	for _, pass := range m.passes {
		if pass.Input() != current {
			return &errors.PassContractError{Pass: pass.Name(), Want: pass.Input().String(), Got: current.String()}
		}
		current = pass.Output()
	}
	return nil
}

// Run applies every pass to unit. The input tag is checked before and the
// output tag after each pass; any mismatch stops the run.
func (m *PassManager) Run(unit *Unit) (*Unit, error) {
	for _, pass := range m.passes {
		if unit.Repr != pass.Input() {
			return nil, &errors.PassContractError{
				Pass: pass.Name(),
				Want: pass.Input().String(),
				Got:  unit.Repr.String(),
			}
		}

		log.Debugf("%s: running %s", unit.Name, describe(pass))
		out, err := pass.Run(unit)
		if err != nil {
			return nil, err
		}

		if out.Repr != pass.Output() {
			return nil, &errors.PassContractError{
				Pass:   pass.Name(),
				Want:   pass.Output().String(),
				Got:    out.Repr.String(),
				Output: true,
			}
		}
		unit = out
	}
	return unit, nil
}

// DefaultPipeline assembles the passes that bring a lowered function to
// target. With verify set, an SSA pipeline re-checks its result at the end.
func DefaultPipeline(target Representation, verify bool) *PassManager {
	m := NewPassManager()
	if target >= CFGForm {
		m.AddPass(BuildCFG{})
	}
	if target >= SSAForm {
		m.AddPass(SSA{})
		m.AddPass(Liveness{})
		if verify {
			m.AddPass(Verify{})
		}
	}
	return m
}

// BuildCFG partitions flat IR into a control-flow graph
type BuildCFG struct{}

func (BuildCFG) Name() string           { return "build-cfg" }
func (BuildCFG) Description() string    { return "Partition flat IR into basic blocks" }
func (BuildCFG) Input() Representation  { return FlatIR }
func (BuildCFG) Output() Representation { return CFGForm }

func (BuildCFG) Run(unit *Unit) (*Unit, error) {
	g, err := ir.BuildCFG(unit.Flat)
	if err != nil {
		return nil, err
	}
	return &Unit{Name: unit.Name, Repr: CFGForm, CFG: g}, nil
}

// SSA rewrites a CFG into SSA form in place
type SSA struct{}

func (SSA) Name() string           { return "ssa" }
func (SSA) Description() string    { return "Insert phis and rename variables" }
func (SSA) Input() Representation  { return CFGForm }
func (SSA) Output() Representation { return SSAForm }

func (SSA) Run(unit *Unit) (*Unit, error) {
	if err := ConvertToSSA(unit.CFG); err != nil {
		return nil, err
	}
	return &Unit{Name: unit.Name, Repr: SSAForm, CFG: unit.CFG}, nil
}

// Liveness attaches live-in and live-out sets to every block
type Liveness struct{}

func (Liveness) Name() string           { return "liveness" }
func (Liveness) Description() string    { return "Compute per-block live variables" }
func (Liveness) Input() Representation  { return SSAForm }
func (Liveness) Output() Representation { return SSAForm }

func (Liveness) Run(unit *Unit) (*Unit, error) {
	sweeps, err := ComputeLiveness(unit.CFG)
	if err != nil {
		return nil, err
	}
	log.Debugf("%s: liveness converged after %d sweeps", unit.Name, sweeps)
	return &Unit{Name: unit.Name, Repr: SSAForm, CFG: unit.CFG, LivenessSweeps: sweeps}, nil
}

// Verify re-checks SSA invariants, and liveness when it has been computed
type Verify struct{}

func (Verify) Name() string           { return "verify" }
func (Verify) Description() string    { return "Check SSA and liveness invariants" }
func (Verify) Input() Representation  { return SSAForm }
func (Verify) Output() Representation { return SSAForm }

func (Verify) Run(unit *Unit) (*Unit, error) {
	if err := verifySSA(unit.CFG, "verify"); err != nil {
		return nil, err
	}
	if unit.LivenessSweeps > 0 {
		if err := checkLiveness(unit.CFG, "verify"); err != nil {
			return nil, err
		}
	}
	return unit, nil
}
