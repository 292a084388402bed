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

// PlanStepState is one state of the plan-step state machine.
type PlanStepState int

const (
	NoBlock PlanStepState = iota
	DeveloperMessage
	StepStart
	StepFile
	StepTitle
	StepDescription
)

// Step is one frozen, fully-parsed plan step.
type Step struct {
	FilesToEdit []string
	Title       string
	Description string
}

// NewStepTitle is emitted when a step's </title> marker closes.
type NewStepTitle struct {
	StepIndex   int
	Title       string
	FilesToEdit []string
}

// NewStepDescription is emitted for every description line appended while
// in the StepDescription state.
type NewStepDescription struct {
	StepIndex   int
	Delta       string
	Cumulative  string
	FilesToEdit []string
}

// NewStep is emitted once a step's </step> marker closes and both its title
// and description are present.
type NewStep struct {
	StepIndex int
	Step      Step
}

// DeveloperMessageDelta is emitted for every line inside a
// <developer_message> block.
type DeveloperMessageDelta struct {
	Delta string
}

// PlanSink receives plan-parser sub-events. Implementations must not block;
// the parser calls back synchronously from AddDelta.
type PlanSink interface {
	OnDeveloperMessageDelta(DeveloperMessageDelta)
	OnNewStepTitle(NewStepTitle)
	OnNewStepDescription(NewStepDescription)
	OnNewStep(NewStep)
}

// PlanParser recognizes <step>/<file>/<title>/<changes>/<developer_message>
// markers on their own line inside a streaming answer and emits structured
// sub-events as described in spec §4.3.1.
type PlanParser struct {
	answerUpUntilNow    string
	state               PlanStepState
	prevLine            int // -1 = nothing consumed yet
	currentFiles        []string
	currentTitle        string
	haveTitle           bool
	currentDescription  string
	haveDescription     bool
	currentDevMessage   string
	haveDevMessage      bool
	stepIndex           int
	sink                PlanSink
}

// NewPlanParser creates a parser that reports sub-events to sink.
func NewPlanParser(sink PlanSink) *PlanParser {
	return &PlanParser{state: NoBlock, prevLine: -1, sink: sink}
}

// AddDelta appends delta to the running answer and advances the state
// machine over every newly completed line.
func (p *PlanParser) AddDelta(delta string) {
	p.answerUpUntilNow += delta
	p.processAnswer()
}

// Done is called when the underlying stream closes; plan parsing has no
// special end-of-stream event beyond whatever steps were already emitted.
func (p *PlanParser) Done() {}

func (p *PlanParser) processAnswer() {
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
		case NoBlock:
			switch line {
			case "<step>":
				p.state = StepStart
			case "<developer_message>":
				p.state = DeveloperMessage
			}

		case DeveloperMessage:
			if line == "</developer_message>" {
				p.haveDevMessage = false
				p.currentDevMessage = ""
				p.state = NoBlock
				continue
			}
			if !p.haveDevMessage {
				p.currentDevMessage = line
				p.haveDevMessage = true
				p.sink.OnDeveloperMessageDelta(DeveloperMessageDelta{Delta: line})
			} else {
				p.currentDevMessage += "\n" + line
				p.sink.OnDeveloperMessageDelta(DeveloperMessageDelta{Delta: "\n" + line})
			}

		case StepStart:
			switch line {
			case "<file>":
				p.state = StepFile
			case "<title>":
				p.state = StepTitle
			case "<changes>":
				p.state = StepDescription
			case "</step>":
				p.generateStepIfPossible()
				p.stepIndex++
				p.state = NoBlock
			}

		case StepFile:
			if line == "</file>" {
				p.state = StepStart
			} else {
				p.currentFiles = append(p.currentFiles, line)
			}

		case StepTitle:
			if line == "</title>" {
				if p.haveTitle {
					p.sink.OnNewStepTitle(NewStepTitle{
						StepIndex:   p.stepIndex,
						Title:       p.currentTitle,
						FilesToEdit: append([]string(nil), p.currentFiles...),
					})
				}
				p.state = StepStart
			} else if p.haveTitle {
				p.currentTitle += "\n" + line
			} else {
				p.currentTitle = line
				p.haveTitle = true
			}

		case StepDescription:
			if line == "</changes>" {
				p.state = StepStart
			} else {
				if p.haveDescription {
					p.currentDescription += "\n" + line
				} else {
					p.currentDescription = line
					p.haveDescription = true
				}
				p.sink.OnNewStepDescription(NewStepDescription{
					StepIndex:   p.stepIndex,
					Delta:       line,
					Cumulative:  p.currentDescription,
					FilesToEdit: append([]string(nil), p.currentFiles...),
				})
			}
		}
	}
}

func (p *PlanParser) generateStepIfPossible() {
	if p.haveTitle && p.haveDescription {
		step := Step{
			FilesToEdit: append([]string(nil), p.currentFiles...),
			Title:       p.currentTitle,
			Description: p.currentDescription,
		}
		p.sink.OnNewStep(NewStep{StepIndex: p.stepIndex, Step: step})
	}
	p.haveTitle = false
	p.currentTitle = ""
	p.haveDescription = false
	p.currentDescription = ""
	p.currentFiles = nil
}
