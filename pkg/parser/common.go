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

// Package parser implements the incremental, line-oriented state machines
// that recognize plan-step boundaries, edit-block markers, and tool-use
// arguments inside a streaming model response. Each parser consumes the
// running "answer-up-until-now" string one delta at a time and only
// advances over complete lines; a partial final line is held back until the
// next delta completes it. This mirrors sidecar's PlanStepGenerator and
// CodeToAddAccumulator: the cursor is an explicit line number, not a
// generator coroutine, so the same parser produces identical sub-events
// regardless of how the caller chunks its input.
package parser

import "strings"

// lastCompleteLineIndex returns the index of the last line in s that is
// followed by a newline, i.e. one less than the number of complete lines
// currently available. It returns -1 if s has no newline yet.
func lastCompleteLineIndex(s string) int {
	last := strings.LastIndexByte(s, '\n')
	if last < 0 {
		return -1
	}
	return strings.Count(s[:last+1], "\n") - 1
}

// splitLines splits s on '\n' without the trailing empty element that
// strings.Split produces for a string ending in '\n'. Line indices returned
// by lastCompleteLineIndex index into this slice.
func splitLines(s string) []string {
	lines := strings.Split(s, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
