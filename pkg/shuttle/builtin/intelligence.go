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
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/weftrun/weftcore/pkg/shuttle"
)

// topLevelDeclPattern matches a top-level Go func/type/const/var
// declaration line, used by RepoMapTool as a cheap structural index in
// place of a full language-server symbol table. No example repo in this
// corpus carries a ctags/tree-sitter-backed repo-map generator, so this
// stays a direct regexp scan rather than reaching for a library (see
// DESIGN.md).
var topLevelDeclPattern = regexp.MustCompile(`^(func|type|const|var)\s+([A-Za-z_][A-Za-z0-9_]*)`)

// RepoMapTool builds a lightweight structural map of the workspace: every
// Go file's package line plus its top-level declarations, so a model can
// orient itself before requesting full file contents.
type RepoMapTool struct {
	baseDir string
}

func NewRepoMapTool(baseDir string) *RepoMapTool {
	if baseDir == "" {
		baseDir, _ = os.Getwd()
	}
	return &RepoMapTool{baseDir: baseDir}
}

func (t *RepoMapTool) Name() string    { return string(shuttle.ToolTypeRepoMap) }
func (t *RepoMapTool) Backend() string { return "" }
func (t *RepoMapTool) Description() string {
	return "Returns a structural map of Go files under a directory: package names and top-level declarations, without full source."
}

func (t *RepoMapTool) InputSchema() *shuttle.JSONSchema {
	return shuttle.NewObjectSchema(
		"Parameters for repo map generation",
		map[string]*shuttle.JSONSchema{
			"path": shuttle.NewStringSchema("Directory to map, relative to the workspace root. Defaults to the whole workspace."),
		},
		nil,
	)
}

func (t *RepoMapTool) Execute(ctx context.Context, params map[string]interface{}) (*shuttle.Result, error) {
	start := time.Now()
	rel, _ := params["path"].(string)
	root, err := resolvePath(t.baseDir, rel)
	if err != nil {
		return &shuttle.Result{Success: false, Error: &shuttle.Error{Code: "invalid_path", Message: err.Error()}}, nil
	}

	type fileMap struct {
		Path    string   `json:"path"`
		Package string   `json:"package"`
		Decls   []string `json:"decls"`
	}
	var out []fileMap

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") {
			return nil
		}
		fm, ferr := mapGoFile(path)
		if ferr != nil {
			return nil
		}
		rel, _ := filepath.Rel(t.baseDir, path)
		fm.Path = rel
		out = append(out, fm)
		return nil
	})
	if err != nil {
		return &shuttle.Result{Success: false, Error: &shuttle.Error{Code: "walk_failed", Message: err.Error()}}, nil
	}

	return &shuttle.Result{Success: true, Data: out, ExecutionTimeMs: time.Since(start).Milliseconds()}, nil
}

func mapGoFile(path string) (struct {
	Path    string   `json:"path"`
	Package string   `json:"package"`
	Decls   []string `json:"decls"`
}, error) {
	var fm struct {
		Path    string   `json:"path"`
		Package string   `json:"package"`
		Decls   []string `json:"decls"`
	}
	f, err := os.Open(path)
	if err != nil {
		return fm, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if fm.Package == "" && strings.HasPrefix(line, "package ") {
			fm.Package = strings.TrimSpace(strings.TrimPrefix(line, "package"))
			continue
		}
		if m := topLevelDeclPattern.FindStringSubmatch(line); m != nil {
			fm.Decls = append(fm.Decls, fmt.Sprintf("%s %s", m[1], m[2]))
		}
	}
	return fm, scanner.Err()
}

// SemanticSearchTool ranks files by keyword overlap with a free-form query
// against their content. It is a keyword-overlap approximation, not an
// embedding search: the corpus carries no vector-store client this runtime
// could wire a real semantic index through (see DESIGN.md).
type SemanticSearchTool struct {
	baseDir string
}

func NewSemanticSearchTool(baseDir string) *SemanticSearchTool {
	if baseDir == "" {
		baseDir, _ = os.Getwd()
	}
	return &SemanticSearchTool{baseDir: baseDir}
}

func (t *SemanticSearchTool) Name() string    { return string(shuttle.ToolTypeSemanticSearch) }
func (t *SemanticSearchTool) Backend() string { return "" }
func (t *SemanticSearchTool) Description() string {
	return "Ranks files under the workspace by keyword overlap with a natural-language query."
}

func (t *SemanticSearchTool) InputSchema() *shuttle.JSONSchema {
	return shuttle.NewObjectSchema(
		"Parameters for semantic search",
		map[string]*shuttle.JSONSchema{
			"query": shuttle.NewStringSchema("Natural-language description of what to find."),
			"limit": shuttle.NewNumberSchema("Maximum number of results. Defaults to 10."),
		},
		[]string{"query"},
	)
}

func (t *SemanticSearchTool) Execute(ctx context.Context, params map[string]interface{}) (*shuttle.Result, error) {
	query, _ := params["query"].(string)
	if query == "" {
		return &shuttle.Result{Success: false, Error: &shuttle.Error{Code: "invalid_input", Message: "query is required"}}, nil
	}
	limit := 10
	if l, ok := params["limit"].(float64); ok && l > 0 {
		limit = int(l)
	}

	terms := strings.Fields(strings.ToLower(query))

	type scored struct {
		Path  string `json:"path"`
		Score int    `json:"score"`
	}
	var results []scored

	err := filepath.WalkDir(t.baseDir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || ctx.Err() != nil {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		lower := strings.ToLower(string(content))
		score := 0
		for _, term := range terms {
			score += strings.Count(lower, term)
		}
		if score > 0 {
			rel, _ := filepath.Rel(t.baseDir, path)
			results = append(results, scored{Path: rel, Score: score})
		}
		return nil
	})
	if err != nil {
		return &shuttle.Result{Success: false, Error: &shuttle.Error{Code: "walk_failed", Message: err.Error()}}, nil
	}

	for i := 0; i < len(results); i++ {
		for j := i + 1; j < len(results); j++ {
			if results[j].Score > results[i].Score {
				results[i], results[j] = results[j], results[i]
			}
		}
	}
	if len(results) > limit {
		results = results[:limit]
	}

	return &shuttle.Result{Success: true, Data: results}, nil
}
