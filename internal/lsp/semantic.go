package lsp

import (
	"sort"

	"taco/internal/ast"
)

// SemanticToken represents a single LSP semantic token entry
// Line and StartChar are 0-based positions
// TokenType is an index into SemanticTokenTypes
// TokenModifiers is a bitmask based on SemanticTokenModifiers
type SemanticToken struct {
	Line           uint32
	StartChar      uint32
	Length         uint32
	TokenType      int
	TokenModifiers int
}

func collectSemanticTokens(prog *ast.Program) []SemanticToken {
	var tokens []SemanticToken

	if prog == nil {
		return tokens
	}

	for _, fn := range prog.Functions {
		tokens = append(tokens, walkFunction(fn)...)
	}

	sort.SliceStable(tokens, func(i, j int) bool {
		if tokens[i].Line != tokens[j].Line {
			return tokens[i].Line < tokens[j].Line
		}
		return tokens[i].StartChar < tokens[j].StartChar
	})
	return tokens
}

func walkFunction(fn *ast.Function) []SemanticToken {
	var tokens []SemanticToken

	tokens = append(tokens, makeToken(fn.Name.Pos, fn.Name.Value, "function", 1)...)

	params := make(map[string]bool, len(fn.Params))
	for _, p := range fn.Params {
		params[p.Name.Value] = true
		tokens = append(tokens, makeToken(p.Name.Pos, p.Name.Value, "parameter", 1)...)
	}

	if fn.Body == nil {
		return tokens
	}

	ast.Inspect(fn.Body, func(node ast.Node) bool {
		switch n := node.(type) {
		case *ast.DeclStmt:
			tokens = append(tokens, makeToken(n.Name.Pos, n.Name.Value, "variable", 1)...)
		case *ast.IdentExpr:
			kind := "variable"
			if params[n.Name] {
				kind = "parameter"
			}
			tokens = append(tokens, makeToken(n.Pos, n.Name, kind, 0)...)
		case *ast.FieldExpr:
			tokens = append(tokens, makeToken(n.Field.Pos, n.Field.Value, "property", 0)...)
		}
		return true
	})

	return tokens
}

func makeToken(pos ast.Position, value, tokenType string, declModifier int) []SemanticToken {
	if value == "" || !pos.IsValid() {
		return nil
	}

	return []SemanticToken{{
		Line:           uint32(pos.Line - 1),   // LSP uses 0-based line numbers
		StartChar:      uint32(pos.Column - 1), // LSP uses 0-based column numbers
		Length:         uint32(len(value)),
		TokenType:      indexOf(tokenType, SemanticTokenTypes),
		TokenModifiers: declModifier << indexOf("declaration", SemanticTokenModifiers),
	}}
}

// indexOf returns the index of a string in a slice, or 0 if not found
func indexOf(target string, list []string) int {
	for i, v := range list {
		if v == target {
			return i
		}
	}
	return 0
}

// encodeSemanticTokens packs tokens into the LSP wire format of
// delta-line, delta-start, length, type and modifiers
func encodeSemanticTokens(tokens []SemanticToken) []uint32 {
	var data []uint32
	var prevLine, prevStart uint32

	for _, token := range tokens {
		deltaLine := token.Line - prevLine
		deltaStart := token.StartChar
		if deltaLine == 0 {
			deltaStart = token.StartChar - prevStart
		}

		data = append(data, deltaLine, deltaStart, token.Length, uint32(token.TokenType), uint32(token.TokenModifiers))

		prevLine = token.Line
		prevStart = token.StartChar
	}

	return data
}
