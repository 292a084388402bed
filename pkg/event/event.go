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

// Package event is the UI Event Bus: a typed event enum plus a per-session
// fan-out channel that carries parser sub-events, tool lifecycle markers,
// chat deltas, and exchange state transitions to an SSE sink (spec §4.6).
// The event taxonomy is grounded in sidecar's agentic/symbol/ui_event.rs
// UIEvent/FrameworkEvent/ExchangeMessageEvent/PlanMessageEvent enums; the
// bus itself generalizes internal/pubsub's Event[T] envelope pattern to a
// sum type instead of a generic payload.
package event

// Kind identifies which UIEvent variant an Event carries.
type Kind string

const (
	// Chat message deltas.
	KindChatEvent Kind = "chat_event"

	// Sub-step / framework events (§4.6).
	KindSymbolEventSubStep      Kind = "symbol_event_sub_step"
	KindProbingStart            Kind = "probing_start"
	KindProbingFinished         Kind = "probing_finished"
	KindEditRequestFinished     Kind = "edit_request_finished"
	KindReferenceFound          Kind = "reference_found"
	KindToolThinking            Kind = "tool_thinking"
	KindToolTypeFound           Kind = "tool_type_found"
	KindToolParameterFound      Kind = "tool_parameter_found"
	KindToolOutputDelta         Kind = "tool_output_delta"
	KindToolNotFound            Kind = "tool_not_found"
	KindToolCallError           Kind = "tool_call_error"
	KindAgenticTopLevelThinking Kind = "agentic_top_level_thinking"
	KindInitialSearchSymbols    Kind = "initial_search_symbols"
	KindRepoMapGenStart         Kind = "repo_map_gen_start"
	KindRepoMapGenFinish        Kind = "repo_map_gen_finish"
	KindTerminalCommand         Kind = "terminal_command"

	// Exchange state transitions (§3, §4.6).
	KindExecutionState   Kind = "execution_state"
	KindFinishedExchange Kind = "finished_exchange"

	// Edit-block streaming events (§4.3.2, §4.6).
	KindEditStart Kind = "edit_start"
	KindEditDelta Kind = "edit_delta"
	KindEditEnd   Kind = "edit_end"

	// Plan-step events (§4.3.1, §4.6).
	KindPlanStepTitleAdded       Kind = "plan_step_title_added"
	KindPlanStepDescriptionUpdate Kind = "plan_step_description_update"
	KindPlanStepCompleteAdded    Kind = "plan_step_complete_added"

	// KindError is a terminal runtime error surfaced to the UI.
	KindError Kind = "error"
)

// ExecutionState mirrors the exchange's lattice-constrained states that are
// worth surfacing to a UI (a subset of session.ExchangeState, spelled out
// here so pkg/event has no dependency on pkg/session).
type ExecutionState string

const (
	ExecStateInference ExecutionState = "inference"
	ExecStateInReview  ExecutionState = "in_review"
	ExecStateCancelled ExecutionState = "cancelled"
	ExecStateAccepted  ExecutionState = "accepted"
	ExecStateFinished  ExecutionState = "finished"
)

// ChatEvent carries one incremental chat delta.
type ChatEvent struct {
	Delta      string `json:"delta"`
	Cumulative string `json:"cumulative"`
}

// ToolTypeFoundEvent announces that the model selected a tool.
type ToolTypeFoundEvent struct {
	ToolType string `json:"tool_type"`
}

// ToolParameterFoundEvent carries an incremental tool-input argument delta.
type ToolParameterFoundEvent struct {
	FieldName string `json:"field_name"`
	Delta     string `json:"delta"`
}

// ToolOutputDeltaEvent carries incremental output from a streaming tool
// (terminal stdout/stderr, code-edit completion text).
type ToolOutputDeltaEvent struct {
	Delta string `json:"delta"`
}

// ToolNotFoundEvent is emitted when the model names an unrecognized tool.
type ToolNotFoundEvent struct {
	ToolName string `json:"tool_name"`
}

// ToolCallErrorEvent is emitted when tool dispatch or execution fails.
type ToolCallErrorEvent struct {
	ToolType string `json:"tool_type"`
	Message  string `json:"message"`
}

// ReferenceFoundEvent reports a cross-reference surfaced by a search tool.
type ReferenceFoundEvent struct {
	FsFilePath string `json:"fs_file_path"`
	Symbol     string `json:"symbol,omitempty"`
}

// RepoMapGenEvent marks the start or finish of repo-map generation.
type RepoMapGenEvent struct {
	Detail string `json:"detail,omitempty"`
}

// TerminalCommandEvent streams terminal tool output.
type TerminalCommandEvent struct {
	Command string `json:"command"`
	Output  string `json:"output"`
	Done    bool   `json:"done"`
}

// ExecutionStateEvent reports an exchange's new execution state.
type ExecutionStateEvent struct {
	State ExecutionState `json:"state"`
}

// FinishedExchangeEvent marks an exchange as finished.
type FinishedExchangeEvent struct{}

// EditStartEvent opens an edit-block stream.
type EditStartEvent struct {
	EditRequestID string `json:"edit_request_id"`
	FilePath      string `json:"file_path"`
	PlanStepID    string `json:"plan_step_id,omitempty"`
}

// EditDeltaEvent carries one line of a streaming edit block.
type EditDeltaEvent struct {
	EditRequestID string `json:"edit_request_id"`
	Delta         string `json:"delta"`
}

// EditEndEvent closes an edit-block stream.
type EditEndEvent struct {
	EditRequestID string `json:"edit_request_id"`
}

// PlanStepTitleAddedEvent reports a completed step title.
type PlanStepTitleAddedEvent struct {
	StepIndex   int      `json:"step_index"`
	Title       string   `json:"title"`
	FilesToEdit []string `json:"files_to_edit"`
}

// PlanStepDescriptionUpdateEvent reports an incremental description delta.
type PlanStepDescriptionUpdateEvent struct {
	StepIndex  int    `json:"step_index"`
	Delta      string `json:"delta"`
	Cumulative string `json:"cumulative"`
}

// PlanStepCompleteAddedEvent reports a fully-frozen plan step.
type PlanStepCompleteAddedEvent struct {
	StepIndex   int      `json:"step_index"`
	FilesToEdit []string `json:"files_to_edit"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
}

// ErrorEvent surfaces a runtime error kind to the UI (spec §7).
type ErrorEvent struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Event is one UIEvent, tagged by Kind with exactly one populated payload
// field. Payload is typed per-Kind by convention only; callers
// type-assert Payload, and New builds an Envelope from a Kind and its
// payload without checking that they match.
type Event struct {
	Kind    Kind        `json:"kind"`
	Payload interface{} `json:"payload"`
}

// Envelope wraps an Event with the session/exchange routing info every
// external observer needs (spec §6's UIEventWithID / {request_id,
// exchange_id, event} shape).
type Envelope struct {
	SessionID  string `json:"request_id"`
	ExchangeID string `json:"exchange_id"`
	Event      Event  `json:"event"`
}

func New(sessionID, exchangeID string, kind Kind, payload interface{}) Envelope {
	return Envelope{
		SessionID:  sessionID,
		ExchangeID: exchangeID,
		Event:      Event{Kind: kind, Payload: payload},
	}
}
