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

// SearchAndReplaceTool applies a targeted find/replace to a single file.
// It requires the search text to match exactly once, rejecting ambiguous
// or missing matches rather than guessing.
type SearchAndReplaceTool struct {
	baseDir string
}

func NewSearchAndReplaceTool(baseDir string) *SearchAndReplaceTool {
	if baseDir == "" {
		baseDir, _ = os.Getwd()
	}
	return &SearchAndReplaceTool{baseDir: baseDir}
}

func (t *SearchAndReplaceTool) Name() string    { return string(shuttle.ToolTypeSearchAndReplace) }
func (t *SearchAndReplaceTool) Backend() string { return "" }
func (t *SearchAndReplaceTool) Description() string {
	return `Replaces an exact, unique substring of a file with new text.
Fails if the search text is missing or matches more than once — widen the search text with surrounding context to disambiguate.`
}

func (t *SearchAndReplaceTool) InputSchema() *shuttle.JSONSchema {
	return shuttle.NewObjectSchema(
		"Parameters for a targeted search-and-replace edit",
		map[string]*shuttle.JSONSchema{
			"path":   shuttle.NewStringSchema("File path to edit, relative to the workspace root unless absolute."),
			"search": shuttle.NewStringSchema("Exact text to find. Must appear exactly once in the file."),
			"replace": shuttle.NewStringSchema("Text to replace the match with."),
		},
		[]string{"path", "search", "replace"},
	)
}

func (t *SearchAndReplaceTool) Execute(ctx context.Context, params map[string]interface{}) (*shuttle.Result, error) {
	start := time.Now()
	path, _ := params["path"].(string)
	search, hasSearch := params["search"].(string)
	replace, hasReplace := params["replace"].(string)
	if path == "" || !hasSearch || !hasReplace {
		return errResult("invalid_input", "path, search, and replace are required", start), nil
	}

	resolved, err := resolvePath(t.baseDir, path)
	if err != nil {
		return errResult("unsafe_path", err.Error(), start), nil
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return errResult("file_not_found", err.Error(), start), nil
	}

	newContent, err := edit.ReplaceOnce(string(data), search, replace)
	if err != nil {
		return errResult("no_match", err.Error(), start), nil
	}

	if err := os.WriteFile(resolved, []byte(newContent), 0o644); err != nil {
		return errResult("write_failed", err.Error(), start), nil
	}

	patch := edit.Compute(path, string(data), newContent)

	return &shuttle.Result{
		Success: true,
		Data: map[string]interface{}{
			"path":          path,
			"diff":          patch.Unified,
			"lines_added":   patch.LinesAdded,
			"lines_removed": patch.LinesDel,
		},
		Metadata: map[string]interface{}{
			"undo_diff": patch.Invert().Unified,
		},
		ExecutionTimeMs: time.Since(start).Milliseconds(),
	}, nil
}
