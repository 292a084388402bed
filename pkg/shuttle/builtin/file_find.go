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
	"path/filepath"
	"strings"
	"time"

	"github.com/weftrun/weftcore/pkg/shuttle"
)

// FileFindTool locates files by name glob or substring under a root
// directory, skipping common VCS and dependency directories.
type FileFindTool struct {
	baseDir string
}

func NewFileFindTool(baseDir string) *FileFindTool {
	if baseDir == "" {
		baseDir, _ = os.Getwd()
	}
	return &FileFindTool{baseDir: baseDir}
}

func (t *FileFindTool) Name() string    { return string(shuttle.ToolTypeFileFind) }
func (t *FileFindTool) Backend() string { return "" }
func (t *FileFindTool) Description() string {
	return "Finds files by filename glob (e.g. '*.go') or substring match under the workspace."
}

func (t *FileFindTool) InputSchema() *shuttle.JSONSchema {
	return shuttle.NewObjectSchema(
		"Parameters for finding files by name",
		map[string]*shuttle.JSONSchema{
			"pattern": shuttle.NewStringSchema("Glob pattern (e.g. '*_test.go') or plain substring to match against file names."),
			"path":    shuttle.NewStringSchema("Root directory to search from (default: workspace root)."),
		},
		[]string{"pattern"},
	)
}

var skipDirNames = map[string]bool{
	".git": true, "node_modules": true, "vendor": true, ".hg": true, ".svn": true,
}

func (t *FileFindTool) Execute(ctx context.Context, params map[string]interface{}) (*shuttle.Result, error) {
	start := time.Now()
	pattern, _ := params["pattern"].(string)
	if pattern == "" {
		return errResult("invalid_input", "pattern is required", start), nil
	}
	path, _ := params["path"].(string)
	if path == "" {
		path = "."
	}

	root, err := resolvePath(t.baseDir, path)
	if err != nil {
		return errResult("unsafe_path", err.Error(), start), nil
	}

	isGlob := strings.ContainsAny(pattern, "*?[")

	var matches []string
	err = filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if skipDirNames[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		name := d.Name()
		var matched bool
		if isGlob {
			matched, _ = filepath.Match(pattern, name)
		} else {
			matched = strings.Contains(name, pattern)
		}
		if matched {
			rel, relErr := filepath.Rel(root, p)
			if relErr != nil {
				rel = p
			}
			matches = append(matches, rel)
		}
		if len(matches) >= DefaultMaxEntries {
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil && err != filepath.SkipAll {
		return errResult("walk_failed", err.Error(), start), nil
	}

	return &shuttle.Result{
		Success: true,
		Data: map[string]interface{}{
			"pattern": pattern,
			"matches": matches,
			"count":   len(matches),
		},
		ExecutionTimeMs: time.Since(start).Milliseconds(),
	}, nil
}
