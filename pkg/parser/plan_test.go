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

type recordingPlanSink struct {
	devDeltas    []DeveloperMessageDelta
	titles       []NewStepTitle
	descriptions []NewStepDescription
	steps        []NewStep
}

func (r *recordingPlanSink) OnDeveloperMessageDelta(d DeveloperMessageDelta) {
	r.devDeltas = append(r.devDeltas, d)
}
func (r *recordingPlanSink) OnNewStepTitle(t NewStepTitle)             { r.titles = append(r.titles, t) }
func (r *recordingPlanSink) OnNewStepDescription(d NewStepDescription) { r.descriptions = append(r.descriptions, d) }
func (r *recordingPlanSink) OnNewStep(s NewStep)                       { r.steps = append(r.steps, s) }

const samplePlan = `<step>
<file>
/x.rs
</file>
<title>
Rename foo
</title>
<changes>
rename foo to bar
across the file
</changes>
</step>
<step>
<file>
/y.rs
</file>
<title>
Add logging
</title>
<changes>
add a log line
</changes>
</step>
`

func feedInChunks(parser interface{ AddDelta(string) }, text string, chunkSize int) {
	for i := 0; i < len(text); i += chunkSize {
		end := i + chunkSize
		if end > len(text) {
			end = len(text)
		}
		parser.AddDelta(text[i:end])
	}
}

func TestPlanParserTwoSteps(t *testing.T) {
	sink := &recordingPlanSink{}
	p := NewPlanParser(sink)
	p.AddDelta(samplePlan)

	require.Len(t, sink.steps, 2)
	assert.Equal(t, 0, sink.steps[0].StepIndex)
	assert.Equal(t, "Rename foo", sink.steps[0].Step.Title)
	assert.Equal(t, "rename foo to bar\nacross the file", sink.steps[0].Step.Description)
	assert.Equal(t, []string{"/x.rs"}, sink.steps[0].Step.FilesToEdit)

	assert.Equal(t, 1, sink.steps[1].StepIndex)
	assert.Equal(t, "Add logging", sink.steps[1].Step.Title)

	require.Len(t, sink.titles, 2)
	assert.Equal(t, "Rename foo", sink.titles[0].Title)

	// the NewStep description equals the concatenation of all
	// NewStepDescription deltas observed for that index, per spec §8.
	var cum0 strings.Builder
	for _, d := range sink.descriptions {
		if d.StepIndex != 0 {
			continue
		}
		if cum0.Len() > 0 {
			cum0.WriteByte('\n')
		}
		cum0.WriteString(d.Delta)
	}
	assert.Equal(t, sink.steps[0].Step.Description, cum0.String())
}

func TestPlanParserPrefixStable(t *testing.T) {
	whole := &recordingPlanSink{}
	wp := NewPlanParser(whole)
	wp.AddDelta(samplePlan)

	chunked := &recordingPlanSink{}
	cp := NewPlanParser(chunked)
	feedInChunks(cp, samplePlan, 7)

	assert.Equal(t, whole.steps, chunked.steps)
	assert.Equal(t, whole.titles, chunked.titles)
	assert.Equal(t, whole.descriptions, chunked.descriptions)
}

func TestPlanParserIgnoresTrailingPartialLine(t *testing.T) {
	sink := &recordingPlanSink{}
	p := NewPlanParser(sink)
	p.AddDelta("<step>\n<file>\n/x.rs\n</file>\n<title>\nfoo")
	assert.Empty(t, sink.titles, "partial final line must not be consumed yet")
	p.AddDelta("\n</title>\n<changes>\nbar\n</changes>\n</step>\n")
	require.Len(t, sink.titles, 1)
	assert.Equal(t, "foo", sink.titles[0].Title)
}
