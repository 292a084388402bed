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
	"sort"
	"time"

	"github.com/weftrun/weftcore/pkg/shuttle"
)

// DefaultMaxEntries bounds how many directory entries list_files returns
// before truncating, to keep the result context-sized.
const DefaultMaxEntries = 500

// ListFilesTool lists the immediate or recursive contents of a directory.
// Grounded in the original agent's ListFiles/FindFiles split: list_files
// enumerates a known directory, file_find searches by name pattern.
type ListFilesTool struct {
	baseDir string
}

func NewListFilesTool(baseDir string) *ListFilesTool {
	if baseDir == "" {
		baseDir, _ = os.Getwd()
	}
	return &ListFilesTool{baseDir: baseDir}
}

func (t *ListFilesTool) Name() string    { return string(shuttle.ToolTypeListFiles) }
func (t *ListFilesTool) Backend() string { return "" }
func (t *ListFilesTool) Description() string {
	return "Lists files and subdirectories under a path, optionally recursive."
}

func (t *ListFilesTool) InputSchema() *shuttle.JSONSchema {
	return shuttle.NewObjectSchema(
		"Parameters for listing a directory",
		map[string]*shuttle.JSONSchema{
			"path":      shuttle.NewStringSchema("Directory to list, relative to the workspace root unless absolute. Defaults to the root."),
			"recursive": shuttle.NewBooleanSchema("Walk subdirectories too (default: false).").WithDefault(false),
		},
		nil,
	)
}

func (t *ListFilesTool) Execute(ctx context.Context, params map[string]interface{}) (*shuttle.Result, error) {
	start := time.Now()
	path, _ := params["path"].(string)
	if path == "" {
		path = "."
	}
	recursive, _ := params["recursive"].(bool)

	root, err := resolvePath(t.baseDir, path)
	if err != nil {
		return errResult("unsafe_path", err.Error(), start), nil
	}

	info, err := os.Stat(root)
	if err != nil {
		return errResult("not_found", err.Error(), start), nil
	}
	if !info.IsDir() {
		return errResult("not_a_directory", path+" is not a directory", start), nil
	}

	var entries []string
	truncated := false

	walk := func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if p == root {
			return nil
		}
		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			rel = p
		}
		if d.IsDir() {
			rel += "/"
		}
		entries = append(entries, rel)
		if len(entries) >= DefaultMaxEntries {
			truncated = true
			return filepath.SkipAll
		}
		if d.IsDir() && !recursive {
			return filepath.SkipDir
		}
		return nil
	}

	if err := filepath.WalkDir(root, walk); err != nil && err != filepath.SkipAll {
		return errResult("walk_failed", err.Error(), start), nil
	}

	sort.Strings(entries)

	return &shuttle.Result{
		Success: true,
		Data: map[string]interface{}{
			"path":      path,
			"entries":   entries,
			"count":     len(entries),
			"truncated": truncated,
		},
		ExecutionTimeMs: time.Since(start).Milliseconds(),
	}, nil
}
