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
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/weftrun/weftcore/pkg/shuttle"
)

const (
	// MaxFileOpenSize caps how much of a file is returned inline (10MB).
	MaxFileOpenSize = 10 * 1024 * 1024

	// DefaultMaxLines limits text output to prevent context bloat.
	DefaultMaxLines = 1000
)

// FileOpenTool reads file content into context, optionally windowed to a
// line range. It is the read half of the edit loop: code_edit and
// search_and_replace both expect the caller to have opened the file first.
type FileOpenTool struct {
	baseDir string
}

// NewFileOpenTool creates a file_open tool rooted at baseDir. An empty
// baseDir resolves to the current working directory.
func NewFileOpenTool(baseDir string) *FileOpenTool {
	if baseDir == "" {
		baseDir, _ = os.Getwd()
	}
	return &FileOpenTool{baseDir: baseDir}
}

func (t *FileOpenTool) Name() string        { return string(shuttle.ToolTypeFileOpen) }
func (t *FileOpenTool) Backend() string     { return "" }
func (t *FileOpenTool) Description() string {
	return `Opens a file and returns its content, optionally windowed to a line range.
Use this before code_edit or search_and_replace so the exact current content is grounded rather than assumed.`
}

func (t *FileOpenTool) InputSchema() *shuttle.JSONSchema {
	return shuttle.NewObjectSchema(
		"Parameters for opening a file",
		map[string]*shuttle.JSONSchema{
			"path":       shuttle.NewStringSchema("File path to open, relative to the workspace root unless absolute."),
			"start_line": shuttle.NewNumberSchema("First line to include, 1-based (default: 1)."),
			"max_lines":  shuttle.NewNumberSchema("Maximum number of lines to return, 0 = unlimited (default: 1000)."),
		},
		[]string{"path"},
	)
}

func (t *FileOpenTool) Execute(ctx context.Context, params map[string]interface{}) (*shuttle.Result, error) {
	start := time.Now()
	path, _ := params["path"].(string)
	if path == "" {
		return errResult("invalid_input", "path is required", start), nil
	}

	resolved, err := resolvePath(t.baseDir, path)
	if err != nil {
		return errResult("unsafe_path", err.Error(), start), nil
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return errResult("file_not_found", fmt.Sprintf("cannot stat %s: %v", path, err), start), nil
	}
	if info.IsDir() {
		return errResult("is_directory", fmt.Sprintf("%s is a directory", path), start), nil
	}
	if info.Size() > MaxFileOpenSize {
		return errResult("file_too_large", fmt.Sprintf("%s is %d bytes, max %d", path, info.Size(), MaxFileOpenSize), start), nil
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return errResult("read_failed", err.Error(), start), nil
	}

	startLine := 1
	if v, ok := params["start_line"].(float64); ok && v > 0 {
		startLine = int(v)
	}
	maxLines := DefaultMaxLines
	if v, ok := params["max_lines"].(float64); ok {
		maxLines = int(v)
	}

	lines := strings.Split(string(data), "\n")
	totalLines := len(lines)
	if startLine > 1 {
		if startLine > len(lines) {
			lines = nil
		} else {
			lines = lines[startLine-1:]
		}
	}
	truncated := false
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
		truncated = true
	}

	return &shuttle.Result{
		Success: true,
		Data: map[string]interface{}{
			"path":        path,
			"content":     strings.Join(lines, "\n"),
			"start_line":  startLine,
			"lines_read":  len(lines),
			"total_lines": totalLines,
			"truncated":   truncated,
			"modified_at": info.ModTime().Format(time.RFC3339),
		},
		ExecutionTimeMs: time.Since(start).Milliseconds(),
	}, nil
}

func errResult(code, message string, start time.Time) *shuttle.Result {
	return &shuttle.Result{
		Success:         false,
		Error:           &shuttle.Error{Code: code, Message: message},
		ExecutionTimeMs: time.Since(start).Milliseconds(),
	}
}
