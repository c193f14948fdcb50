package lsp

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"taco/internal/ast"
	"taco/internal/compiler"
	"taco/internal/config"
	"taco/internal/parser"
)

var log = commonlog.GetLogger("taco.lsp")

// Define the set of supported semantic token types (as required by the LSP spec)
var SemanticTokenTypes = []string{
	"function",
	"variable",
	"parameter",
	"property",
	"number",
	"operator",
}

// Define the set of supported semantic token modifiers
var SemanticTokenModifiers = []string{
	"declaration",
	"definition",
	"readonly",
}

// TacoHandler implements the LSP server handlers. Every open document is
// parsed and run through the middle-end on each change so lowering, label
// and SSA failures show up as diagnostics.
type TacoHandler struct {
	mu       sync.RWMutex
	programs map[string]*ast.Program
	options  config.Options
}

// NewTacoHandler creates and returns a new TacoHandler instance
func NewTacoHandler() *TacoHandler {
	opts := config.Default()
	opts.Verify = true

	return &TacoHandler{
		programs: make(map[string]*ast.Program),
		options:  opts,
	}
}

// Initialize responds to the LSP client's initialize request and advertises the server's capabilities
func (h *TacoHandler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Info("initialize")

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
			SemanticTokensProvider: &protocol.SemanticTokensOptions{
				Legend: protocol.SemanticTokensLegend{
					TokenTypes:     SemanticTokenTypes,
					TokenModifiers: SemanticTokenModifiers,
				},
				Full: ptrBool(true),
			},
		},
	}, nil
}

// Initialized is called after the client receives the server's capabilities
func (h *TacoHandler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	log.Info("initialized")
	return nil
}

// Shutdown handles the LSP shutdown request
func (h *TacoHandler) Shutdown(ctx *glsp.Context) error {
	log.Info("shutdown")
	return nil
}

func (h *TacoHandler) SetTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

// TextDocumentDidOpen handles file open notifications from the editor
func (h *TacoHandler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	log.Infof("opened %s", params.TextDocument.URI)

	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return err
	}

	sendDiagnosticNotification(ctx, params.TextDocument.URI, h.update(path, params.TextDocument.Text))
	return nil
}

// TextDocumentDidClose handles file close notifications from the editor
func (h *TacoHandler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	log.Infof("closed %s", params.TextDocument.URI)

	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.programs, path)

	return nil
}

// TextDocumentDidChange handles file change notifications from the editor.
// The server asks for full sync, so the last whole-text change wins; a
// client that still sends ranges makes the server reread the file.
func (h *TacoHandler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	log.Debugf("changed %s", params.TextDocument.URI)

	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return err
	}

	text, ok := "", false
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			text, ok = c.Text, true
		case *protocol.TextDocumentContentChangeEventWhole:
			text, ok = c.Text, true
		}
	}
	if !ok {
		source, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", path, err)
		}
		text = string(source)
	}

	sendDiagnosticNotification(ctx, params.TextDocument.URI, h.update(path, text))
	return nil
}

// TextDocumentSemanticTokensFull handles semantic token requests for the entire document
func (h *TacoHandler) TextDocumentSemanticTokensFull(ctx *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}

	h.mu.RLock()
	prog, ok := h.programs[path]
	h.mu.RUnlock()

	if !ok {
		source, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", path, err)
		}
		diagnostics := h.update(path, string(source))
		if ctx.Notify != nil {
			sendDiagnosticNotification(ctx, params.TextDocument.URI, diagnostics)
		}

		h.mu.RLock()
		prog = h.programs[path]
		h.mu.RUnlock()
	}

	return &protocol.SemanticTokens{Data: encodeSemanticTokens(collectSemanticTokens(prog))}, nil
}

// Diagnostics parses and compiles source without touching the document
// cache
func (h *TacoHandler) Diagnostics(path, source string) []protocol.Diagnostic {
	diagnostics, _ := h.analyze(path, source)
	return diagnostics
}

// update reanalyzes a document and caches its AST. A document that no
// longer parses keeps its last good AST for semantic tokens.
func (h *TacoHandler) update(path, source string) []protocol.Diagnostic {
	diagnostics, prog := h.analyze(path, source)

	h.mu.Lock()
	if prog != nil {
		h.programs[path] = prog
	}
	h.mu.Unlock()

	return diagnostics
}

func (h *TacoHandler) analyze(path, source string) ([]protocol.Diagnostic, *ast.Program) {
	prog, err := parser.ParseSource(path, source)
	if err != nil {
		return ConvertSyntaxError(err), nil
	}

	out, err := compiler.Compile(context.Background(), prog, h.options)
	if err != nil {
		log.Errorf("%s: %s", path, err)
		return []protocol.Diagnostic{}, prog
	}
	return ConvertCompileErrors(out), prog
}

// Convert URI to platform-local file path
func uriToPath(rawURI string) (string, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return "", fmt.Errorf("invalid URI %s: %w", rawURI, err)
	}

	path := u.Path

	// On Windows, remove leading slash (e.g., /C:/...) to get C:/...
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 3 && path[2] == ':' {
		path = path[1:]
	}

	return filepath.FromSlash(path), nil
}

func sendDiagnosticNotification(ctx *glsp.Context, uri protocol.URI, diagnostics []protocol.Diagnostic) {
	log.Debugf("publishing %d diagnostics for %s", len(diagnostics), uri)

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func ptrBool(b bool) *bool {
	return &b
}

func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
