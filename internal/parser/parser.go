package parser

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"taco/grammar"
	"taco/internal/ast"
	"taco/internal/errors"
)

func ParseFile(path string) (*ast.Program, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return ParseSource(path, string(source))
}

// ParseSource parses source into an ast.Program. Syntax problems are
// reported as *errors.SyntaxError carrying the offending position.
func ParseSource(sourceName string, source string) (*ast.Program, error) {
	file, err := grammar.ParseString(sourceName, source)
	if err != nil {
		return nil, syntaxError(sourceName, err)
	}

	c := &converter{}
	prog := &ast.Program{Filename: sourceName}
	for _, fn := range file.Functions {
		prog.Functions = append(prog.Functions, c.function(fn))
	}
	if c.err != nil {
		return nil, c.err
	}
	return prog, nil
}

func syntaxError(sourceName string, err error) error {
	var pe participle.Error
	if stderrors.As(err, &pe) {
		return &errors.SyntaxError{Message: pe.Message(), Position: position(pe.Position())}
	}
	return &errors.SyntaxError{
		Message:  err.Error(),
		Position: ast.Position{Filename: sourceName, Line: 1, Column: 1},
	}
}

func position(pos lexer.Position) ast.Position {
	return ast.Position{
		Filename: pos.Filename,
		Offset:   pos.Offset,
		Line:     pos.Line,
		Column:   pos.Column,
	}
}
