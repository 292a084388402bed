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
	"os"
	"time"

	"github.com/weftrun/weftcore/pkg/edit"
	"github.com/weftrun/weftcore/pkg/shuttle"
)

// CodeEditTool overwrites a file's full content and returns the unified
// diff plus an inverse patch an undo operation can replay.
type CodeEditTool struct {
	baseDir string
}

func NewCodeEditTool(baseDir string) *CodeEditTool {
	if baseDir == "" {
		baseDir, _ = os.Getwd()
	}
	return &CodeEditTool{baseDir: baseDir}
}

func (t *CodeEditTool) Name() string    { return string(shuttle.ToolTypeCodeEdit) }
func (t *CodeEditTool) Backend() string { return "" }
func (t *CodeEditTool) Description() string {
	return `Writes new full content to a file, creating it if it doesn't exist.
Returns a unified diff against the prior content. Prefer search_and_replace for small, targeted edits to large files.`
}

func (t *CodeEditTool) InputSchema() *shuttle.JSONSchema {
	return shuttle.NewObjectSchema(
		"Parameters for a full-file code edit",
		map[string]*shuttle.JSONSchema{
			"path":    shuttle.NewStringSchema("File path to write, relative to the workspace root unless absolute."),
			"content": shuttle.NewStringSchema("The complete new content of the file."),
		},
		[]string{"path", "content"},
	)
}

func (t *CodeEditTool) Execute(ctx context.Context, params map[string]interface{}) (*shuttle.Result, error) {
	start := time.Now()
	path, _ := params["path"].(string)
	content, hasContent := params["content"].(string)
	if path == "" || !hasContent {
		return errResult("invalid_input", "path and content are required", start), nil
	}

	resolved, err := resolvePath(t.baseDir, path)
	if err != nil {
		return errResult("unsafe_path", err.Error(), start), nil
	}

	var oldContent string
	if existing, readErr := os.ReadFile(resolved); readErr == nil {
		oldContent = string(existing)
	}

	if err := os.MkdirAll(parentDir(resolved), 0o755); err != nil {
		return errResult("write_failed", err.Error(), start), nil
	}
	if err := os.WriteFile(resolved, []byte(content), 0o644); err != nil {
		return errResult("write_failed", err.Error(), start), nil
	}

	patch := edit.Compute(path, oldContent, content)

	return &shuttle.Result{
		Success: true,
		Data: map[string]interface{}{
			"path":         path,
			"diff":         patch.Unified,
			"lines_added":  patch.LinesAdded,
			"lines_removed": patch.LinesDel,
			"created":      oldContent == "" && content != "",
		},
		Metadata: map[string]interface{}{
			"undo_diff": patch.Invert().Unified,
		},
		ExecutionTimeMs: time.Since(start).Milliseconds(),
	}, nil
}
