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

// Package builtin implements the closed set of tools named by
// shuttle.ToolType: file and filesystem tools, the code editor, terminal
// and test runner, code intelligence (repo map, semantic search, LSP
// bridge), and the two control tools agents use to end a turn.
package builtin

import (
	"fmt"
	"path/filepath"
	"strings"
)

var protectedDirs = []string{"/proc", "/sys", "/dev"}

var protectedFiles = []string{
	"/etc/shadow",
	"/etc/passwd",
	"/etc/sudoers",
}

// parentDir returns the directory containing path.
func parentDir(path string) string {
	return filepath.Dir(path)
}

// resolvePath cleans path, anchors it under baseDir when relative, and
// rejects paths that reach into sensitive system locations.
func resolvePath(baseDir, path string) (string, error) {
	clean := filepath.Clean(path)
	if !filepath.IsAbs(clean) {
		clean = filepath.Join(baseDir, clean)
	}

	for _, f := range protectedFiles {
		if clean == f {
			return "", fmt.Errorf("refusing to touch sensitive file: %s", clean)
		}
	}
	for _, d := range protectedDirs {
		if clean == d || strings.HasPrefix(clean, d+"/") {
			return "", fmt.Errorf("refusing to touch protected directory: %s", clean)
		}
	}
	return clean, nil
}
