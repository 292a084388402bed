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

import "strings"

// EditBlockState is one state of the edit-block accumulator.
type EditBlockState int

const (
	EditNoBlock EditBlockState = iota
	EditBlockStart
	EditBlockAccumulating
)

var editBlockOpeners = []string{"<code_to_add>", "<code_edited>"}
var editBlockClosers = []string{"</code_to_add>", "</code_edited>"}

// EditSink receives edit-block parser sub-events.
type EditSink interface {
	OnEditStart()
	OnEditDelta(line string)
	OnEditEnd()
}

// EditParser recognizes the <code_to_add>/<code_edited> opening markers
// (treated as equivalent, per spec §9 open question 3) and emits
// Start/Delta*/End sub-events for the fenced code block between them. It is
// tolerant of a missing opening/closing fence: if the first line after the
// opener is not itself a fence header, one is synthesized, and a closing
// fence is synthesized on End if the accumulated body didn't already end
// with one.
type EditParser struct {
	answerUpUntilNow string
	state            EditBlockState
	prevLine         int
	accumulated      string
	sink             EditSink
}

// NewEditParser creates a parser that reports sub-events to sink.
func NewEditParser(sink EditSink) *EditParser {
	return &EditParser{state: EditNoBlock, prevLine: -1, sink: sink}
}

// AddDelta appends delta to the running answer and advances the state
// machine over every newly completed line.
func (p *EditParser) AddDelta(delta string) {
	p.answerUpUntilNow += delta
	p.processAnswer()
}

func (p *EditParser) processAnswer() {
	lastLine := lastCompleteLineIndex(p.answerUpUntilNow)
	if lastLine < 0 {
		return
	}
	lines := splitLines(p.answerUpUntilNow)

	start := p.prevLine + 1
	for i := start; i <= lastLine; i++ {
		p.prevLine = i
		line := lines[i]

		switch p.state {
		case EditNoBlock:
			if matchesAny(line, editBlockOpeners) {
				p.state = EditBlockStart
				p.sink.OnEditStart()
			}

		case EditBlockStart:
			if !strings.HasPrefix(line, "```") {
				body := "```\n" + line
				p.accumulated = body
				p.sink.OnEditDelta(body)
			} else {
				p.accumulated = line
				p.sink.OnEditDelta(line)
			}
			p.state = EditBlockAccumulating

		case EditBlockAccumulating:
			if matchesAny(line, editBlockClosers) {
				if !strings.HasSuffix(p.accumulated, "```") {
					p.sink.OnEditDelta("\n```")
				}
				p.state = EditNoBlock
				p.sink.OnEditEnd()
			} else {
				p.sink.OnEditDelta("\n" + line)
				p.accumulated += "\n" + line
			}
		}
	}
}

func matchesAny(line string, candidates []string) bool {
	for _, c := range candidates {
		if line == c {
			return true
		}
	}
	return false
}
