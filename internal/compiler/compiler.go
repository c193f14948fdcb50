package compiler

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"taco/internal/ast"
	"taco/internal/config"
	"taco/internal/errors"
	"taco/internal/ir"
	"taco/internal/lower"
	"taco/internal/passes"
)

var log = commonlog.GetLogger("taco.compiler")

// Result is the outcome of compiling one function. Flat is kept even after
// the pipeline has moved on to a CFG so callers can dump both. SSA holds the
// SSA form of the function when the pipeline reached it or a dump asked for it.
type Result struct {
	Function string
	Flat     *ir.Function
	Unit     *passes.Unit
	SSA      *passes.Unit
	Err      error
}

// Output collects per-function results in source order
type Output struct {
	Program *ast.Program
	Results []Result
}

// Errors returns the per-function failures in source order
func (o *Output) Errors() []error {
	var errs []error
	for _, r := range o.Results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return errs
}

// Failed reports whether any function failed to compile
func (o *Output) Failed() bool {
	return len(o.Errors()) > 0
}

// Compile runs lowering, CFG construction and the pass pipeline for every
// function of prog, at most opts.Jobs at a time. A function that fails does
// not stop the others; its error is kept in its Result. The run error is
// reserved for a broken pipeline contract or a cancelled ctx.
//
// With opts.DebugIR at 3 or more, functions emitted below SSA form are also
// taken through a separate SSA pipeline for dumping. That run never changes
// what is emitted.
func Compile(ctx context.Context, prog *ast.Program, opts config.Options) (*Output, error) {
	pipeline := passes.DefaultPipeline(opts.Emit, opts.Verify)
	if err := pipeline.Validate(passes.FlatIR); err != nil {
		return nil, err
	}
	log.Debugf("pipeline to %s:\n%s", opts.Emit, pipeline.Describe())

	var dump *passes.PassManager
	if opts.DebugIR >= 3 && opts.Emit < passes.SSAForm {
		dump = passes.DefaultPipeline(passes.SSAForm, opts.Verify)
	}
	return compile(ctx, prog, pipeline, dump, opts.Jobs)
}

func compile(ctx context.Context, prog *ast.Program, pipeline, dump *passes.PassManager, jobs int) (*Output, error) {
	out := &Output{Program: prog, Results: make([]Result, len(prog.Functions))}

	g, ctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}

	for i, fn := range prog.Functions {
		out.Results[i].Function = fn.Name.Value
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				out.Results[i].Err = err
				return err
			}
			out.Results[i] = compileFunction(fn, pipeline, dump)

			var contract *errors.PassContractError
			if stderrors.As(out.Results[i].Err, &contract) {
				return out.Results[i].Err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return out, fmt.Errorf("compilation aborted: %w", err)
	}
	log.Debugf("compiled %d functions from %s", len(prog.Functions), prog.Filename)
	return out, nil
}

func compileFunction(fn *ast.Function, pipeline, dump *passes.PassManager) Result {
	result := Result{Function: fn.Name.Value}

	flat, err := lower.LowerFunction(fn)
	if err != nil {
		result.Err = err
		return result
	}
	result.Flat = flat

	unit, err := pipeline.Run(passes.NewUnit(flat.Clone()))
	if err != nil {
		result.Err = err
		return result
	}
	result.Unit = unit
	log.Debugf("%s: reached %s", fn.Name.Value, unit.Repr)

	switch {
	case unit.Repr == passes.SSAForm:
		result.SSA = unit
	case dump != nil:
		if ssa, err := dump.Run(passes.NewUnit(flat.Clone())); err != nil {
			log.Warningf("%s: no SSA dump: %s", fn.Name.Value, err)
		} else {
			result.SSA = ssa
		}
	}
	return result
}
