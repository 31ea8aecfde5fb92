// SPDX-License-Identifier: Apache-2.0
package lsp

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"ori/internal/arcir"
	"ori/internal/classify"
	"ori/internal/irtext"
)

// OriHandler implements the LSP server handlers for the textual ARC IR
// format, running the borrow/reset-reuse/RC-elim pipeline on every open or
// changed buffer and publishing diagnostics for parse failures.
type OriHandler struct {
	mu      sync.RWMutex
	content map[string]string
	progs   map[string]*arcir.Program
}

// NewOriHandler creates and returns a new OriHandler instance.
func NewOriHandler() *OriHandler {
	return &OriHandler{
		content: make(map[string]string),
		progs:   make(map[string]*arcir.Program),
	}
}

// Initialize responds to the LSP client's initialize request and advertises the server's capabilities.
func (h *OriHandler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Println("LSP Initialize called")

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
		},
	}, nil
}

// Initialized is called after the client receives the server's capabilities and completes initialization.
func (h *OriHandler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	log.Println("Ori LSP Initialized")
	return nil
}

// Shutdown handles the LSP shutdown request.
func (h *OriHandler) Shutdown(ctx *glsp.Context) error {
	log.Println("Ori LSP Shutdown")
	return nil
}

// TextDocumentDidOpen handles file open notifications from the editor.
func (h *OriHandler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	log.Printf("Opened file: %s\n", params.TextDocument.URI)
	return h.refresh(ctx, params.TextDocument.URI)
}

// TextDocumentDidClose handles file close notifications from the editor.
func (h *OriHandler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	log.Printf("Closed file: %s\n", params.TextDocument.URI)

	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return fmt.Errorf("failed to convert URI %s: %w", params.TextDocument.URI, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.content, path)
	delete(h.progs, path)

	return nil
}

// TextDocumentDidChange handles file change notifications from the editor.
func (h *OriHandler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	log.Printf("Changed file: %s\n", params.TextDocument.URI)
	return h.refresh(ctx, params.TextDocument.URI)
}

// refresh re-reads the buffer's backing file, parses it, and runs the
// pipeline, publishing diagnostics for a parse failure or clearing them on
// success.
func (h *OriHandler) refresh(ctx *glsp.Context, rawURI protocol.DocumentUri) error {
	path, err := uriToPath(rawURI)
	if err != nil {
		return fmt.Errorf("failed to convert URI %s: %w", rawURI, err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", path, err)
	}
	text := string(content)

	ast, parseErr := irtext.Parse(path, text)
	if parseErr != nil {
		sendDiagnosticNotification(ctx, rawURI, ConvertParseError(parseErr))
		return nil
	}

	prog, lowerErr := irtext.Lower(ast)
	if lowerErr != nil {
		sendDiagnosticNotification(ctx, rawURI, ConvertLowerError(lowerErr))
		return nil
	}

	cls := classify.NewRegistry()
	for _, fn := range prog.Functions {
		types := make([]string, 0, len(fn.VarTypes))
		for _, t := range fn.VarTypes {
			types = append(types, t)
		}
		cls.RegisterObservedTypes(types)
	}

	sig := arcir.InferBorrows(prog, cls)
	arcir.ApplyBorrows(prog, sig)
	for _, fn := range prog.Functions {
		arcir.ExpandResetReuse(fn, cls)
		arcir.EliminateRC(fn)
	}

	h.mu.Lock()
	h.content[path] = text
	h.progs[path] = prog
	h.mu.Unlock()

	sendDiagnosticNotification(ctx, rawURI, nil)
	return nil
}

// uriToPath converts a document URI to a platform-local file path.
func uriToPath(rawURI string) (string, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return "", fmt.Errorf("invalid URI %s: %w", rawURI, err)
	}

	path := u.Path

	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 3 && path[2] == ':' {
		path = path[1:]
	}

	return filepath.FromSlash(path), nil
}

func sendDiagnosticNotification(ctx *glsp.Context, uri protocol.URI, diagnostics []protocol.Diagnostic) {
	if diagnostics == nil {
		diagnostics = []protocol.Diagnostic{}
	}
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
