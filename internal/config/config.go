package config

import (
	stderrors "errors"
	"fmt"
	"runtime"
	"strconv"

	"taco/internal/passes"
)

const Usage = "Usage: taco [-O0..-O3] [-j n] [-o file] [--emit ir|cfg|ssa] [--verify] [--debug] [--debug-ast] [--debug-ir <0-3>] <input>\n       taco --repl"

// ErrHelp is returned when the arguments ask for usage text
var ErrHelp = stderrors.New("help requested")

// Options is everything the driver needs to know about one invocation
type Options struct {
	Input  string
	Output string // empty means stdout

	// OptLevel is accepted for command-line compatibility; there are no
	// optimization passes to select yet
	OptLevel int

	Debug    bool
	DebugAST bool

	// DebugIR dumps intermediate forms: 1 flat IR, 2 adds the CFG, 3 adds
	// SSA with liveness
	DebugIR int

	Emit   passes.Representation
	Jobs   int
	Verify bool

	// Repl reads functions from stdin instead of compiling Input
	Repl bool
}

// Default returns the options used when no flag overrides them
func Default() Options {
	return Options{Emit: passes.SSAForm, Jobs: runtime.NumCPU()}
}

// Parse reads command-line arguments, without the program name
func Parse(args []string) (Options, error) {
	opts := Default()

	value := func(i int, flag string) (string, error) {
		if i+1 >= len(args) {
			return "", fmt.Errorf("missing value for %s", flag)
		}
		return args[i+1], nil
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-h", "--help":
			return opts, ErrHelp
		case "-O0", "-O1", "-O2", "-O3":
			opts.OptLevel = int(arg[2] - '0')
		case "-d", "--debug":
			opts.Debug = true
		case "--debug-ast":
			opts.DebugAST = true
		case "--verify":
			opts.Verify = true
		case "-i", "--repl":
			opts.Repl = true
		case "--debug-ir":
			v, err := value(i, arg)
			if err != nil {
				return opts, err
			}
			level, err := strconv.Atoi(v)
			if err != nil || level < 0 || level > 3 {
				return opts, fmt.Errorf("invalid --debug-ir level %q (want 0-3)", v)
			}
			opts.DebugIR = level
			i++
		case "--emit":
			v, err := value(i, arg)
			if err != nil {
				return opts, err
			}
			repr, err := passes.ParseRepresentation(v)
			if err != nil {
				return opts, fmt.Errorf("invalid --emit: %w", err)
			}
			opts.Emit = repr
			i++
		case "-j", "--jobs":
			v, err := value(i, arg)
			if err != nil {
				return opts, err
			}
			jobs, err := strconv.Atoi(v)
			if err != nil || jobs < 1 {
				return opts, fmt.Errorf("invalid job count %q", v)
			}
			opts.Jobs = jobs
			i++
		case "-o", "--output-file":
			v, err := value(i, arg)
			if err != nil {
				return opts, err
			}
			opts.Output = v
			i++
		default:
			if len(arg) > 1 && arg[0] == '-' {
				return opts, fmt.Errorf("unknown option %s", arg)
			}
			if opts.Input != "" {
				return opts, fmt.Errorf("unexpected argument: %s", arg)
			}
			opts.Input = arg
		}
	}

	if opts.Input == "" && !opts.Repl {
		return opts, fmt.Errorf("no input file")
	}
	if opts.Debug {
		opts.Verify = true
	}
	return opts, nil
}
