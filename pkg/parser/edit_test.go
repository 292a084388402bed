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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingEditSink struct {
	starts int
	deltas []string
	ends   int
}

func (r *recordingEditSink) OnEditStart()         { r.starts++ }
func (r *recordingEditSink) OnEditDelta(l string) { r.deltas = append(r.deltas, l) }
func (r *recordingEditSink) OnEditEnd()           { r.ends++ }

func (r *recordingEditSink) body() string { return strings.Join(r.deltas, "") }

func TestEditParserWellFormedFence(t *testing.T) {
	sink := &recordingEditSink{}
	p := NewEditParser(sink)
	p.AddDelta("<code_edited>\n```rust\nfn bar(){}\n```\n</code_edited>\n")

	assert.Equal(t, 1, sink.starts)
	assert.Equal(t, 1, sink.ends)
	assert.Equal(t, "```rust\nfn bar(){}\n```", sink.body())
}

func TestEditParserSynthesizesMissingFences(t *testing.T) {
	sink := &recordingEditSink{}
	p := NewEditParser(sink)
	// no fence header at all, and no closing fence before the end marker.
	p.AddDelta("<code_to_add>\nfn bar(){}\n</code_to_add>\n")

	assert.Equal(t, 1, sink.starts)
	assert.Equal(t, 1, sink.ends)
	assert.Equal(t, "```\nfn bar(){}\n```", sink.body())
}

func TestEditParserOrderAndSingleStartEnd(t *testing.T) {
	sink := &recordingEditSink{}
	p := NewEditParser(sink)
	p.AddDelta("<code_edited>\n```go\n")
	require.Equal(t, 1, sink.starts)
	require.Equal(t, 0, sink.ends)
	p.AddDelta("package a\n```\n</code_edited>\n")
	assert.Equal(t, 1, sink.starts)
	assert.Equal(t, 1, sink.ends)
}

func TestEditParserPrefixStable(t *testing.T) {
	input := "<code_edited>\n```go\nfunc f() {}\n```\n</code_edited>\n"

	whole := &recordingEditSink{}
	NewEditParser(whole).AddDelta(input)

	chunked := &recordingEditSink{}
	cp := NewEditParser(chunked)
	feedInChunks(cp, input, 3)

	assert.Equal(t, whole.deltas, chunked.deltas)
	assert.Equal(t, whole.starts, chunked.starts)
	assert.Equal(t, whole.ends, chunked.ends)
}
