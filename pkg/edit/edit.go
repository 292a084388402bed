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

// Package edit computes unified diffs for file edits applied by the
// code_edit and search_and_replace tools, and the inverse patch needed to
// undo them.
package edit

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Patch describes a single file change and its inverse.
type Patch struct {
	Path       string
	OldContent string
	NewContent string
	Unified    string
	LinesAdded int
	LinesDel   int
}

// Compute builds a Patch for path given its old and new full content.
func Compute(path, oldContent, newContent string) *Patch {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(oldContent, newContent, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	added, deleted := countChangedLines(diffs)

	return &Patch{
		Path:       path,
		OldContent: oldContent,
		NewContent: newContent,
		Unified:    unified(path, diffs),
		LinesAdded: added,
		LinesDel:   deleted,
	}
}

// Invert returns the patch that undoes p: applying it restores OldContent.
func (p *Patch) Invert() *Patch {
	return Compute(p.Path, p.NewContent, p.OldContent)
}

func countChangedLines(diffs []diffmatchpatch.Diff) (added, deleted int) {
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			added += strings.Count(d.Text, "\n") + boolToInt(d.Text != "")
		case diffmatchpatch.DiffDelete:
			deleted += strings.Count(d.Text, "\n") + boolToInt(d.Text != "")
		}
	}
	return added, deleted
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func unified(path string, diffs []diffmatchpatch.Diff) string {
	var b strings.Builder
	fmt.Fprintf(&b, "--- a/%s\n", path)
	fmt.Fprintf(&b, "+++ b/%s\n", path)

	for _, d := range diffs {
		text := d.Text
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			for _, line := range strings.Split(strings.TrimSuffix(text, "\n"), "\n") {
				fmt.Fprintf(&b, "+%s\n", line)
			}
		case diffmatchpatch.DiffDelete:
			for _, line := range strings.Split(strings.TrimSuffix(text, "\n"), "\n") {
				fmt.Fprintf(&b, "-%s\n", line)
			}
		case diffmatchpatch.DiffEqual:
			lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
			switch {
			case len(lines) > 4:
				fmt.Fprintf(&b, " %s\n", lines[0])
				b.WriteString(" ...\n")
				fmt.Fprintf(&b, " %s\n", lines[len(lines)-1])
			default:
				for _, line := range lines {
					fmt.Fprintf(&b, " %s\n", line)
				}
			}
		}
	}
	return b.String()
}

// Similarity reports how much of a and b is shared content, in [0, 1].
// 1 means identical, 0 means entirely disjoint.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(a, b, false)

	var common, total int
	for _, d := range diffs {
		total += len(d.Text)
		if d.Type == diffmatchpatch.DiffEqual {
			common += len(d.Text)
		}
	}
	if total == 0 {
		return 1.0
	}
	return float64(common) / float64(total)
}

// ReplaceOnce replaces the first occurrence of oldText in content with
// newText, returning an error if oldText does not appear exactly once —
// the search_and_replace tool's core matching rule.
func ReplaceOnce(content, oldText, newText string) (string, error) {
	count := strings.Count(content, oldText)
	switch count {
	case 0:
		return "", fmt.Errorf("search text not found")
	case 1:
		return strings.Replace(content, oldText, newText, 1), nil
	default:
		return "", fmt.Errorf("search text is ambiguous: matched %d times, expected exactly 1", count)
	}
}
