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
package session

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// VariableType tags one attached-context variable per spec §6.
type VariableType string

const (
	VariableFile       VariableType = "file"
	VariableCodeSymbol VariableType = "code-symbol"
	VariableSelection  VariableType = "selection"
)

// Range is a half-open [Start, End) line range, 0-indexed.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Variable is one entry of user_context.variables (spec §6): a reference
// into the workspace the user attached to their turn.
type Variable struct {
	FSPath  string       `json:"fs_path"`
	Range   *Range       `json:"range,omitempty"`
	Content string       `json:"content"`
	Type    VariableType `json:"type"`
}

// Image is one entry of user_context.images (spec §6).
type Image struct {
	Base64    string `json:"base64"`
	MediaType string `json:"media_type"`
}

// UserContext is the incoming request's user_context object (spec §6): the
// structured attachments carried alongside the free-form query.
type UserContext struct {
	Variables         []Variable        `json:"variables"`
	FileContentMap    map[string]string `json:"file_content_map"`
	TerminalSelection string            `json:"terminal_selection,omitempty"`
	FolderPaths       []string          `json:"folder_paths,omitempty"`
	Images            []Image           `json:"images,omitempty"`
}

// ParseUserContext decodes a raw user_context JSON object. An empty body
// decodes to the zero value (no attached context).
func ParseUserContext(raw []byte) (UserContext, error) {
	var uc UserContext
	if len(raw) == 0 {
		return uc, nil
	}
	if err := json.Unmarshal(raw, &uc); err != nil {
		return uc, fmt.Errorf("session: parse user_context: %w", err)
	}
	return uc, nil
}

// Parts renders the attached context as structured message parts (spec
// §3: "attached context as structured parts"), in a stable order: one
// text part per variable, one per whole file in file_content_map, one for
// the terminal selection if present, then one image part per attached
// image. It does not include the query text itself — callers append that
// as the final text part.
func (uc UserContext) Parts() []MessagePart {
	var parts []MessagePart

	for _, v := range uc.Variables {
		parts = append(parts, MessagePart{Kind: PartText, Text: formatVariable(v)})
	}

	if len(uc.FileContentMap) > 0 {
		paths := make([]string, 0, len(uc.FileContentMap))
		for path := range uc.FileContentMap {
			paths = append(paths, path)
		}
		sort.Strings(paths)
		for _, path := range paths {
			parts = append(parts, MessagePart{Kind: PartText, Text: fmt.Sprintf("File %s:\n%s", path, uc.FileContentMap[path])})
		}
	}

	if uc.TerminalSelection != "" {
		parts = append(parts, MessagePart{Kind: PartText, Text: "Terminal selection:\n" + uc.TerminalSelection})
	}

	for _, img := range uc.Images {
		parts = append(parts, MessagePart{Kind: PartImage, ImageData: img.Base64, ImageMediaType: img.MediaType})
	}

	return parts
}

func formatVariable(v Variable) string {
	var b strings.Builder
	switch v.Type {
	case VariableSelection:
		b.WriteString("Selection in ")
	case VariableCodeSymbol:
		b.WriteString("Symbol in ")
	default:
		b.WriteString("File ")
	}
	b.WriteString(v.FSPath)
	if v.Range != nil {
		fmt.Fprintf(&b, " (lines %d-%d)", v.Range.Start, v.Range.End)
	}
	b.WriteString(":\n")
	b.WriteString(v.Content)
	return b.String()
}
