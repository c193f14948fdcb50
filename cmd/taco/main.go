// SPDX-License-Identifier: Apache-2.0
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"os/user"
	"time"

	"github.com/fatih/color"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"taco/internal/compiler"
	"taco/internal/config"
	"taco/internal/errors"
	"taco/internal/ir"
	"taco/internal/parser"
	"taco/repl"
)

func main() {
	opts, err := config.Parse(os.Args[1:])
	if stderrors.Is(err, config.ErrHelp) {
		fmt.Println(config.Usage)
		return
	}
	if err != nil {
		color.Red("error: %s", err)
		fmt.Fprintln(os.Stderr, config.Usage)
		os.Exit(2)
	}

	verbosity := 0
	if opts.Debug {
		verbosity = 2
	}
	commonlog.Configure(verbosity, nil)

	if opts.Repl {
		startRepl(opts)
		return
	}
	os.Exit(run(opts))
}

func startRepl(opts config.Options) {
	name := "there"
	if currentUser, err := user.Current(); err == nil {
		name = currentUser.Username
	}
	fmt.Printf("Welcome to the taco REPL, %s! Enter a function; emitting %s.\n", name, opts.Emit)
	repl.Start(os.Stdin, os.Stdout, opts)
}

func run(opts config.Options) int {
	startTime := time.Now()
	path := opts.Input

	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read file: %v\n", err)
		return 1
	}

	errorReporter := errors.NewErrorReporter(path, string(source))

	prog, err := parser.ParseSource(path, string(source))
	if err != nil {
		fmt.Print(errorReporter.FormatErrors([]error{err}))
		color.Red("Compilation failed after %s", formatDuration(time.Since(startTime)))
		return 1
	}

	if opts.DebugAST {
		color.Cyan("== AST ==")
		fmt.Print(prog.String())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out, err := compiler.Compile(ctx, prog, opts)
	if err != nil {
		color.Red("%s", err)
		return 1
	}

	if opts.DebugIR > 0 {
		dumpIR(out, opts.DebugIR)
	}

	hasErrors := out.Failed()
	if hasErrors {
		fmt.Print(errorReporter.FormatErrors(out.Errors()))
	}

	if err := emit(out, opts.Output); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write output: %v\n", err)
		return 1
	}

	duration := formatDuration(time.Since(startTime))
	if hasErrors {
		color.Red("Compilation failed after %s", duration)
		return 1
	}
	color.Green("Successfully processed %s in %s", path, duration)
	return 0
}

// dumpIR prints the intermediate forms of every function up to level
func dumpIR(out *compiler.Output, level int) {
	for _, r := range out.Results {
		if r.Flat == nil {
			continue
		}
		color.Cyan("== %s: flat IR ==", r.Function)
		fmt.Print(ir.Print(r.Flat))

		if level >= 2 {
			g, err := ir.BuildCFG(r.Flat.Clone())
			if err == nil {
				color.Cyan("== %s: CFG ==", r.Function)
				fmt.Print(ir.PrintCFG(g))
			}
		}
		if level >= 3 && r.SSA != nil {
			color.Cyan("== %s: SSA (liveness after %d sweeps) ==", r.Function, r.SSA.LivenessSweeps)
			fmt.Print(ir.PrintCFG(r.SSA.CFG))
		}
	}
}

func emit(out *compiler.Output, path string) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return out.Emit(w)
}

func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		return fmt.Sprintf("%.2fmin", d.Minutes())
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.1fms", float64(d.Nanoseconds())/1000000.0)
	case d >= time.Microsecond:
		return fmt.Sprintf("%.1fμs", float64(d.Nanoseconds())/1000.0)
	default:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
}
