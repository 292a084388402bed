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
package parser

import (
	"encoding/json"
	"fmt"
)

// ToolUseRecord is one already-demultiplexed tool-use block reported by the
// Provider Client: a tool name, its provider-assigned id, and the raw
// argument text accumulated across partial-json deltas.
type ToolUseRecord struct {
	ToolID       string
	ToolName     string
	ArgumentText string
}

// ErrToolNotFound indicates the model named a tool the registry doesn't
// recognize.
type ErrToolNotFound struct {
	ToolName string
}

func (e *ErrToolNotFound) Error() string {
	return fmt.Sprintf("tool not found: %s", e.ToolName)
}

// ErrSerdeConversionFailed indicates the accumulated argument text could
// not be structured into the tool's expected input shape.
type ErrSerdeConversionFailed struct {
	ToolName string
	Cause    error
}

func (e *ErrSerdeConversionFailed) Error() string {
	return fmt.Sprintf("could not structure arguments for %s: %v", e.ToolName, e.Cause)
}

func (e *ErrSerdeConversionFailed) Unwrap() error { return e.Cause }

// KnownTool reports whether name is a recognized tool. The tool-use parser doesn't own the
// registry; callers (the Agent Loop) supply this as a narrow dependency so
// the parser package stays free of the shuttle.Registry import cycle.
type KnownTool func(name string) bool

// ToolUseParser turns Provider-Client tool-use records into typed tool
// inputs. Unlike the plan and edit parsers, it does not re-parse raw text:
// the Provider Client already demultiplexed content-block boundaries, so
// this parser's only job is argument-text -> structured-value conversion.
type ToolUseParser struct {
	known KnownTool
}

// NewToolUseParser creates a parser that validates tool names against known.
func NewToolUseParser(known KnownTool) *ToolUseParser {
	return &ToolUseParser{known: known}
}

// Parse decodes rec.ArgumentText as a JSON object keyed by rec.ToolName. It
// returns ErrToolNotFound if known rejects the name, or
// ErrSerdeConversionFailed if the argument text isn't valid JSON.
func (p *ToolUseParser) Parse(rec ToolUseRecord) (map[string]interface{}, error) {
	if p.known != nil && !p.known(rec.ToolName) {
		return nil, &ErrToolNotFound{ToolName: rec.ToolName}
	}
	if rec.ArgumentText == "" {
		return map[string]interface{}{}, nil
	}
	var input map[string]interface{}
	if err := json.Unmarshal([]byte(rec.ArgumentText), &input); err != nil {
		return nil, &ErrSerdeConversionFailed{ToolName: rec.ToolName, Cause: err}
	}
	return input, nil
}
