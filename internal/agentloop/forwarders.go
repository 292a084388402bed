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
package agentloop

import (
	"github.com/google/uuid"

	"github.com/weftrun/weftcore/pkg/event"
	"github.com/weftrun/weftcore/pkg/parser"
)

// planForwarder adapts parser.PlanSink sub-events onto the UI event bus
// (spec §4.3.1, §4.6).
type planForwarder struct {
	sink event.Sink
	sid  string
	eid  string
}

func (f *planForwarder) OnDeveloperMessageDelta(d parser.DeveloperMessageDelta) {
	f.sink.Publish(event.New(f.sid, f.eid, event.KindChatEvent, event.ChatEvent{Delta: d.Delta}))
}

func (f *planForwarder) OnNewStepTitle(s parser.NewStepTitle) {
	f.sink.Publish(event.New(f.sid, f.eid, event.KindPlanStepTitleAdded, event.PlanStepTitleAddedEvent{
		StepIndex: s.StepIndex, Title: s.Title, FilesToEdit: s.FilesToEdit,
	}))
}

func (f *planForwarder) OnNewStepDescription(s parser.NewStepDescription) {
	f.sink.Publish(event.New(f.sid, f.eid, event.KindPlanStepDescriptionUpdate, event.PlanStepDescriptionUpdateEvent{
		StepIndex: s.StepIndex, Delta: s.Delta, Cumulative: s.Cumulative,
	}))
}

func (f *planForwarder) OnNewStep(s parser.NewStep) {
	f.sink.Publish(event.New(f.sid, f.eid, event.KindPlanStepCompleteAdded, event.PlanStepCompleteAddedEvent{
		StepIndex: s.StepIndex, FilesToEdit: s.Step.FilesToEdit, Title: s.Step.Title, Description: s.Step.Description,
	}))
}

// editForwarder adapts parser.EditSink sub-events onto the UI event bus
// (spec §4.3.2, §4.6). It mints one edit-request id per open block so
// Start/Delta*/End can be correlated by a UI observer.
type editForwarder struct {
	sink          event.Sink
	sid           string
	eid           string
	currentEditID string
}

func (f *editForwarder) OnEditStart() {
	f.currentEditID = uuid.NewString()
	f.sink.Publish(event.New(f.sid, f.eid, event.KindEditStart, event.EditStartEvent{EditRequestID: f.currentEditID}))
}

func (f *editForwarder) OnEditDelta(delta string) {
	f.sink.Publish(event.New(f.sid, f.eid, event.KindEditDelta, event.EditDeltaEvent{EditRequestID: f.currentEditID, Delta: delta}))
}

func (f *editForwarder) OnEditEnd() {
	f.sink.Publish(event.New(f.sid, f.eid, event.KindEditEnd, event.EditEndEvent{EditRequestID: f.currentEditID}))
	f.currentEditID = ""
}
