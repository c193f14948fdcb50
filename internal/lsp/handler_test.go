package lsp_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"taco/internal/lsp"
)

const program = `int sum(int n) {
    int s = 0;
    while (n > 0) {
        s = s + n;
        n = n - 1;
    }
    return s;
}
`

type published struct {
	uri         string
	diagnostics []protocol.Diagnostic
}

func recorder() (*glsp.Context, *[]published) {
	var sent []published
	ctx := &glsp.Context{
		Notify: func(method string, params any) {
			if method != protocol.ServerTextDocumentPublishDiagnostics {
				return
			}
			p := params.(*protocol.PublishDiagnosticsParams)
			sent = append(sent, published{uri: p.URI, diagnostics: p.Diagnostics})
		},
	}
	return ctx, &sent
}

func writeSource(t *testing.T, name, source string) (string, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	absPath, err := filepath.Abs(path)
	require.NoError(t, err)
	return absPath, "file://" + filepath.ToSlash(absPath)
}

func open(t *testing.T, h *lsp.TacoHandler, ctx *glsp.Context, uri, text string) {
	t.Helper()
	err := h.TextDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, LanguageID: "c", Version: 1, Text: text},
	})
	require.NoError(t, err)
}

func TestDidOpenCleanProgram(t *testing.T) {
	h := lsp.NewTacoHandler()
	ctx, sent := recorder()
	_, uri := writeSource(t, "sum.c", program)

	open(t, h, ctx, uri, program)

	require.Len(t, *sent, 1)
	assert.Equal(t, uri, (*sent)[0].uri)
	assert.Empty(t, (*sent)[0].diagnostics)
}

func TestDidOpenSyntaxError(t *testing.T) {
	h := lsp.NewTacoHandler()
	ctx, sent := recorder()
	source := "int f() {\n  return 1\n}\n"
	_, uri := writeSource(t, "bad.c", source)

	open(t, h, ctx, uri, source)

	require.Len(t, *sent, 1)
	diags := (*sent)[0].diagnostics
	require.Len(t, diags, 1)
	assert.Equal(t, uint32(2), diags[0].Range.Start.Line)
	assert.Equal(t, "taco-parser", *diags[0].Source)
	assert.Equal(t, "E0100", diags[0].Code.Value)
	assert.Equal(t, protocol.DiagnosticSeverityError, *diags[0].Severity)
}

func TestDidOpenLoweringError(t *testing.T) {
	h := lsp.NewTacoHandler()
	ctx, sent := recorder()
	source := "int ok() { return 1; }\n\nint get(int p) {\n    return p.x;\n}\n"
	_, uri := writeSource(t, "field.c", source)

	open(t, h, ctx, uri, source)

	diags := (*sent)[0].diagnostics
	require.Len(t, diags, 1)
	assert.Equal(t, "E0700", diags[0].Code.Value)
	assert.Contains(t, diags[0].Message, "field access p.x")
	assert.Equal(t, uint32(3), diags[0].Range.Start.Line)
	assert.Equal(t, uint32(11), diags[0].Range.Start.Character)
}

func TestUndefinedVariableAnchorsAtFunction(t *testing.T) {
	h := lsp.NewTacoHandler()
	source := "int f() {\n    return y;\n}\n"

	diags := h.Diagnostics("undef.c", source)
	require.Len(t, diags, 1)
	assert.Equal(t, "E0900", diags[0].Code.Value)
	assert.Contains(t, diags[0].Message, "no reaching definition")
	assert.Equal(t, uint32(0), diags[0].Range.Start.Line)
	assert.Equal(t, uint32(4), diags[0].Range.Start.Character)
	assert.Equal(t, uint32(5), diags[0].Range.End.Character)
}

func TestDidChangeRepublishes(t *testing.T) {
	h := lsp.NewTacoHandler()
	ctx, sent := recorder()
	_, uri := writeSource(t, "sum.c", program)
	open(t, h, ctx, uri, program)

	err := h.TextDocumentDidChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
			Version:                2,
		},
		ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: "int f() { a[0] = 1; }"}},
	})
	require.NoError(t, err)

	require.Len(t, *sent, 2)
	require.Len(t, (*sent)[1].diagnostics, 1)
	assert.Contains(t, (*sent)[1].diagnostics[0].Message, "index expression a[0]")
}

func TestDidClose(t *testing.T) {
	h := lsp.NewTacoHandler()
	ctx, _ := recorder()
	_, uri := writeSource(t, "sum.c", program)
	open(t, h, ctx, uri, program)

	err := h.TextDocumentDidClose(ctx, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	assert.NoError(t, err)
}

func TestTextDocumentSemanticTokensFull(t *testing.T) {
	handler := lsp.NewTacoHandler()
	_, uri := writeSource(t, "sum.c", program)

	ctx, sent := recorder()
	params := &protocol.SemanticTokensParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	}

	tokens, err := handler.TextDocumentSemanticTokensFull(ctx, params)
	require.NoError(t, err, "TextDocumentSemanticTokensFull returned error")
	require.NotNil(t, tokens, "Returned tokens should not be nil")
	require.NotEmpty(t, tokens.Data, "Returned token data should not be empty")
	assert.Len(t, *sent, 1, "first request analyzes the file and publishes diagnostics")

	decoded, err := decodeSemanticTokens(tokens.Data)
	require.NoError(t, err, "Failed to decode semantic tokens")
	require.Len(t, decoded, 10)

	assertToken(t, &decoded[0], 1, 5, 3, "function", []string{"declaration"})
	assertToken(t, &decoded[1], 1, 13, 1, "parameter", []string{"declaration"})
	assertToken(t, &decoded[2], 2, 9, 1, "variable", []string{"declaration"})
	assertToken(t, &decoded[3], 3, 12, 1, "parameter", nil)
	assertToken(t, &decoded[4], 4, 9, 1, "variable", nil)
	assertToken(t, &decoded[5], 4, 13, 1, "variable", nil)
	assertToken(t, &decoded[6], 4, 17, 1, "parameter", nil)
	assertToken(t, &decoded[7], 5, 9, 1, "parameter", nil)
	assertToken(t, &decoded[8], 5, 13, 1, "parameter", nil)
	assertToken(t, &decoded[9], 7, 12, 1, "variable", nil)
}

type DecodedToken struct {
	Index     int
	Line      uint32
	Char      uint32
	Length    uint32
	Type      string
	Modifiers []string
}

func decodeSemanticTokens(raw []uint32) ([]DecodedToken, error) {
	if len(raw)%5 != 0 {
		return nil, fmt.Errorf("raw token data length %d is not a multiple of 5", len(raw))
	}

	var (
		decoded []DecodedToken
		line    uint32
		char    uint32
	)

	for i := 0; i < len(raw); i += 5 {
		deltaLine := raw[i]
		deltaStart := raw[i+1]
		length := raw[i+2]
		tokenTypeIdx := raw[i+3]
		tokenModMask := raw[i+4]

		if deltaLine == 0 {
			char += deltaStart
		} else {
			line += deltaLine
			char = deltaStart
		}

		var modifiers []string
		for j, name := range lsp.SemanticTokenModifiers {
			if tokenModMask&(1<<j) != 0 {
				modifiers = append(modifiers, name)
			}
		}

		decoded = append(decoded, DecodedToken{
			Index:     i / 5,
			Line:      line + 1, // LSP uses 0-based indexing
			Char:      char + 1, // LSP uses 0-based indexing
			Length:    length,
			Type:      lsp.SemanticTokenTypes[tokenTypeIdx],
			Modifiers: modifiers,
		})
	}

	return decoded, nil
}

func assertToken(t *testing.T, token *DecodedToken, expectedLine, expectedChar, expectedLength uint32, expectedType string, expectedModifiers []string) {
	require.Equal(t, expectedLine, token.Line, "line mismatch (expected line %d)", expectedLine)
	require.Equal(t, expectedChar, token.Char, "char mismatch (expected char %d)", expectedChar)
	require.Equal(t, expectedLength, token.Length, "length mismatch")
	require.Equal(t, expectedType, token.Type, "type mismatch")
	require.ElementsMatch(t, expectedModifiers, token.Modifiers, "modifiers mismatch")
}
