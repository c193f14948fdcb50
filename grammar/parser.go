package grammar

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
)

var parser = buildParser()

func buildParser() *participle.Parser[File] {
	p, err := participle.Build[File](
		participle.Lexer(TacoLexer),
		participle.Elide("Whitespace", "Comment", "BlockComment"),
		participle.UseLookahead(3),
	)
	if err != nil {
		panic(fmt.Errorf("failed to build parser: %w", err))
	}

	return p
}

// ParseString parses one translation unit
func ParseString(filename, source string) (*File, error) {
	return parser.ParseString(filename, source)
}

// EBNF returns the grammar in EBNF notation
func EBNF() string {
	return parser.String()
}
