// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package builtin

import (
	"context"
	"net/url"

	"github.com/weftrun/weftcore/internal/lspprotocol"
	"github.com/weftrun/weftcore/pkg/lsp"
	"github.com/weftrun/weftcore/pkg/shuttle"
)

// lspBridge is embedded by every LSP-backed tool: it shares one
// pkg/lsp.Client and reports a uniform "not connected" result when the
// workspace has no language server wired up, instead of each tool
// duplicating that check.
type lspBridge struct {
	client  *lsp.Client
	baseDir string
}

func newLSPBridge(client *lsp.Client, baseDir string) lspBridge {
	if client == nil {
		client = lsp.NewClient()
	}
	return lspBridge{client: client, baseDir: baseDir}
}

func (b lspBridge) unavailable() *shuttle.Result {
	return &shuttle.Result{
		Success: false,
		Error: &shuttle.Error{
			Code:      "lsp_unavailable",
			Message:   "no language server connected: " + b.client.GetStatus(),
			Retryable: true,
		},
	}
}

// fileURI resolves a workspace-relative path against baseDir and renders
// it as the file:// URI the LSP wire protocol expects.
func (b lspBridge) fileURI(path string) (string, error) {
	resolved, err := resolvePath(b.baseDir, path)
	if err != nil {
		return "", err
	}
	return (&url.URL{Scheme: "file", Path: resolved}).String(), nil
}

func filePathSchema() map[string]*shuttle.JSONSchema {
	return map[string]*shuttle.JSONSchema{
		"path":      shuttle.NewStringSchema("File path, relative to the workspace root."),
		"line":      shuttle.NewNumberSchema("Zero-based line number."),
		"character": shuttle.NewNumberSchema("Zero-based column number."),
	}
}

func position(params map[string]interface{}) lspprotocol.Position {
	line, _ := params["line"].(float64)
	character, _ := params["character"].(float64)
	return lspprotocol.Position{Line: int(line), Character: int(character)}
}

// LSPDiagnosticsTool reports compiler/linter diagnostics for a file.
type LSPDiagnosticsTool struct{ lspBridge }

func NewLSPDiagnosticsTool(client *lsp.Client, baseDir string) *LSPDiagnosticsTool {
	return &LSPDiagnosticsTool{newLSPBridge(client, baseDir)}
}

func (t *LSPDiagnosticsTool) Name() string    { return string(shuttle.ToolTypeLSPDiagnostics) }
func (t *LSPDiagnosticsTool) Backend() string { return "" }
func (t *LSPDiagnosticsTool) Description() string {
	return "Returns language-server diagnostics (errors, warnings) for a file."
}
func (t *LSPDiagnosticsTool) InputSchema() *shuttle.JSONSchema {
	return shuttle.NewObjectSchema("Parameters for a diagnostics request", map[string]*shuttle.JSONSchema{
		"path": shuttle.NewStringSchema("File path, relative to the workspace root."),
	}, []string{"path"})
}
func (t *LSPDiagnosticsTool) Execute(ctx context.Context, params map[string]interface{}) (*shuttle.Result, error) {
	if !t.client.IsConnected() {
		return t.unavailable(), nil
	}
	path, _ := params["path"].(string)
	uri, err := t.fileURI(path)
	if err != nil {
		return &shuttle.Result{Success: false, Error: &shuttle.Error{Code: "invalid_path", Message: err.Error()}}, nil
	}
	return &shuttle.Result{Success: true, Data: map[string]interface{}{
		"summary":     t.client.GetDiagnosticSummary(),
		"diagnostics": t.client.Diagnostics(uri),
	}}, nil
}

// lspPositionKind distinguishes the three goto-* position requests the
// shared lspPositionTool serves; inlay hints has its own range-shaped
// request and doesn't use it.
type lspPositionKind int

const (
	positionDefinition lspPositionKind = iota
	positionReferences
	positionImplementation
)

// lspPositionTool is the shared shape of goto-definition/references/
// implementation: each needs a file position and reports unavailable
// identically when no server is connected.
type lspPositionTool struct {
	lspBridge
	toolType shuttle.ToolType
	desc     string
	kind     lspPositionKind
}

func (t *lspPositionTool) Name() string        { return string(t.toolType) }
func (t *lspPositionTool) Backend() string     { return "" }
func (t *lspPositionTool) Description() string { return t.desc }
func (t *lspPositionTool) InputSchema() *shuttle.JSONSchema {
	return shuttle.NewObjectSchema("Parameters for a position-based LSP request", filePathSchema(), []string{"path", "line", "character"})
}
func (t *lspPositionTool) Execute(ctx context.Context, params map[string]interface{}) (*shuttle.Result, error) {
	if !t.client.IsConnected() {
		return t.unavailable(), nil
	}
	path, _ := params["path"].(string)
	uri, err := t.fileURI(path)
	if err != nil {
		return &shuttle.Result{Success: false, Error: &shuttle.Error{Code: "invalid_path", Message: err.Error()}}, nil
	}
	pos := position(params)

	var locs []lspprotocol.Location
	switch t.kind {
	case positionDefinition:
		locs, err = t.client.Definition(ctx, uri, pos)
	case positionReferences:
		locs, err = t.client.References(ctx, uri, pos, true)
	case positionImplementation:
		locs, err = t.client.Implementation(ctx, uri, pos)
	}
	if err != nil {
		return &shuttle.Result{Success: false, Error: &shuttle.Error{Code: "lsp_request_failed", Message: err.Error(), Retryable: true}}, nil
	}
	return &shuttle.Result{Success: true, Data: locs}, nil
}

func NewLSPGotoDefinitionTool(client *lsp.Client, baseDir string) shuttle.Tool {
	return &lspPositionTool{lspBridge: newLSPBridge(client, baseDir), toolType: shuttle.ToolTypeLSPGotoDefinition,
		kind: positionDefinition, desc: "Finds the definition site of the symbol at a file position."}
}

func NewLSPGotoReferencesTool(client *lsp.Client, baseDir string) shuttle.Tool {
	return &lspPositionTool{lspBridge: newLSPBridge(client, baseDir), toolType: shuttle.ToolTypeLSPGotoReferences,
		kind: positionReferences, desc: "Finds every reference to the symbol at a file position."}
}

func NewLSPGotoImplementationTool(client *lsp.Client, baseDir string) shuttle.Tool {
	return &lspPositionTool{lspBridge: newLSPBridge(client, baseDir), toolType: shuttle.ToolTypeLSPGotoImplementation,
		kind: positionImplementation, desc: "Finds concrete implementations of the interface method at a file position."}
}

// LSPInlayHintsTool reports inferred-type inlay hints for a file range.
type LSPInlayHintsTool struct{ lspBridge }

func NewLSPInlayHintsTool(client *lsp.Client, baseDir string) shuttle.Tool {
	return &LSPInlayHintsTool{newLSPBridge(client, baseDir)}
}

func (t *LSPInlayHintsTool) Name() string    { return string(shuttle.ToolTypeLSPInlayHints) }
func (t *LSPInlayHintsTool) Backend() string { return "" }
func (t *LSPInlayHintsTool) Description() string {
	return "Returns inferred-type inlay hints for a file range."
}
func (t *LSPInlayHintsTool) InputSchema() *shuttle.JSONSchema {
	schema := map[string]*shuttle.JSONSchema{
		"path":       shuttle.NewStringSchema("File path, relative to the workspace root."),
		"start_line": shuttle.NewNumberSchema("Zero-based start line of the range."),
		"end_line":   shuttle.NewNumberSchema("Zero-based end line of the range."),
	}
	return shuttle.NewObjectSchema("Parameters for an inlay hints request", schema, []string{"path", "start_line", "end_line"})
}
func (t *LSPInlayHintsTool) Execute(ctx context.Context, params map[string]interface{}) (*shuttle.Result, error) {
	if !t.client.IsConnected() {
		return t.unavailable(), nil
	}
	path, _ := params["path"].(string)
	uri, err := t.fileURI(path)
	if err != nil {
		return &shuttle.Result{Success: false, Error: &shuttle.Error{Code: "invalid_path", Message: err.Error()}}, nil
	}
	startLine, _ := params["start_line"].(float64)
	endLine, _ := params["end_line"].(float64)
	rng := lspprotocol.Range{
		Start: lspprotocol.Position{Line: int(startLine)},
		End:   lspprotocol.Position{Line: int(endLine)},
	}
	hints, err := t.client.InlayHints(ctx, uri, rng)
	if err != nil {
		return &shuttle.Result{Success: false, Error: &shuttle.Error{Code: "lsp_request_failed", Message: err.Error(), Retryable: true}}, nil
	}
	return &shuttle.Result{Success: true, Data: hints}, nil
}
