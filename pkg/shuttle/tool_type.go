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
package shuttle

// ToolType is the closed set of tools this core dispatches. It mirrors the
// ToolInputPartial variants of the agentic IDE backend this package's tool
// taxonomy was modeled on, trimmed to the subset a headless code-editing
// runtime uses.
type ToolType string

const (
	ToolTypeCodeEdit              ToolType = "code_edit"
	ToolTypeSearchAndReplace      ToolType = "search_and_replace"
	ToolTypeTerminalCommand       ToolType = "terminal_command"
	ToolTypeTestRunner            ToolType = "test_runner"
	ToolTypeRepoMap               ToolType = "repo_map"
	ToolTypeSemanticSearch        ToolType = "semantic_search"
	ToolTypeFileFind              ToolType = "file_find"
	ToolTypeFileOpen              ToolType = "file_open"
	ToolTypeListFiles             ToolType = "list_files"
	ToolTypeLSPDiagnostics        ToolType = "lsp_diagnostics"
	ToolTypeLSPGotoDefinition     ToolType = "lsp_goto_definition"
	ToolTypeLSPGotoReferences     ToolType = "lsp_goto_references"
	ToolTypeLSPGotoImplementation ToolType = "lsp_goto_implementation"
	ToolTypeLSPInlayHints         ToolType = "lsp_inlay_hints"
	ToolTypeAttemptCompletion     ToolType = "attempt_completion"
	ToolTypeAskFollowupQuestion   ToolType = "ask_followup_question"
)

// String returns the wire name of the tool type.
func (t ToolType) String() string {
	return string(t)
}
