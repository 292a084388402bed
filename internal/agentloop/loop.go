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

// Package agentloop is the Agent Loop (spec §4.8): the turn scheduler that
// assembles a prompt from tool-registry descriptions and trimmed exchange
// history, drives the LLM Broker's streaming response through the plan,
// edit, and tool-use parsers, dispatches resolved tool calls through the
// Tool Registry, and advances the exchange state lattice until the turn
// finishes, is cancelled, or exhausts its tool-call budget. It is grounded
// in the teacher's pkg/agent.Coordinator (round-based tool dispatch loop,
// retry/failover pair of model properties) generalized from a single
// in-process Chat call to the broker/parser/bus pipeline this runtime adds.
package agentloop

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/weftrun/weftcore/pkg/event"
	"github.com/weftrun/weftcore/pkg/llm/broker"
	"github.com/weftrun/weftcore/pkg/llm/types"
	"github.com/weftrun/weftcore/pkg/parser"
	"github.com/weftrun/weftcore/pkg/session"
	"github.com/weftrun/weftcore/pkg/shuttle"
	"github.com/weftrun/weftcore/pkg/tracker"
)

// Terminal tool names that end a turn without a further model round (spec
// §4.8 step 6).
const (
	toolAttemptCompletion   = string(shuttle.ToolTypeAttemptCompletion)
	toolAskFollowupQuestion = string(shuttle.ToolTypeAskFollowupQuestion)
)

// defaultMaxToolRounds bounds how many model round-trips one turn may take
// before the loop gives up with an error and the exchange is cancelled,
// so a model that never calls attempt_completion can't run forever.
const defaultMaxToolRounds = 25

// defaultMaxRetries is the retry budget for one streaming call: 4 attempts
// total, alternating the primary and backup provider tags on odd retries
// (DESIGN.md's open-question resolution).
const defaultMaxRetries = 4

// Params is one turn request, matching spec §6's incoming-request shape.
type Params struct {
	SessionID      string
	Provider       string // primary provider tag registered with the Broker
	BackupProvider string // provider tag used on alternating retries; may be empty
	Model          string // model-tag Configuration Assembly resolved for this exchange; empty uses the Provider Client's default
	Query          string
	UserContext    session.UserContext
	AideRules      string // optional free-form per-session system instruction
	MaxHistoryTokens int
	MaxToolRounds  int
}

// Loop wires the Broker, Tool Registry/Executor, UI Event Bus, Session
// Store, and Request Tracker into one turn-scheduling unit.
type Loop struct {
	broker   *broker.Broker
	registry *shuttle.Registry
	executor *shuttle.Executor
	bus      *event.Bus
	store    *session.Store
	tracker  *tracker.Tracker
}

// New creates an Agent Loop over the given collaborators.
func New(b *broker.Broker, registry *shuttle.Registry, executor *shuttle.Executor, bus *event.Bus, store *session.Store, trk *tracker.Tracker) *Loop {
	return &Loop{broker: b, registry: registry, executor: executor, bus: bus, store: store, tracker: trk}
}

// Run drives one user turn to completion: it creates the user exchange,
// tracks it for external cancellation, runs the round loop, and leaves the
// exchange in a terminal state (finished, accepted, or cancelled) before
// returning. It returns the user exchange's id.
func (l *Loop) Run(ctx context.Context, p Params) (string, error) {
	if p.MaxToolRounds <= 0 {
		p.MaxToolRounds = defaultMaxToolRounds
	}

	sink := l.bus.SinkFor(p.SessionID)

	exchangeID, err := l.store.NewExchange(ctx, p.SessionID, session.RoleUser, session.Payload{ChatText: p.Query})
	if err != nil {
		return "", fmt.Errorf("agentloop: create exchange: %w", err)
	}
	userParts := append(p.UserContext.Parts(), session.MessagePart{Kind: session.PartText, Text: p.Query})
	if err := l.store.AppendMessage(p.SessionID, exchangeID, session.Message{Role: session.MessageRoleUser, Parts: userParts}); err != nil {
		return exchangeID, fmt.Errorf("agentloop: append user message: %w", err)
	}
	if err := l.store.SetState(p.SessionID, exchangeID, session.StateInference); err != nil {
		return exchangeID, fmt.Errorf("agentloop: enter inference: %w", err)
	}
	sink.Publish(event.New(p.SessionID, exchangeID, event.KindExecutionState, event.ExecutionStateEvent{State: event.ExecStateInference}))

	ex, ok := l.store.GetExchange(p.SessionID, exchangeID)
	if !ok {
		return exchangeID, fmt.Errorf("agentloop: exchange %s vanished after creation", exchangeID)
	}

	done := make(chan struct{})
	l.tracker.Track(p.SessionID, exchangeID, tracker.Handle{
		Cancel: func() { l.store.Cancel(p.SessionID, exchangeID) },
		Done:   done,
	})
	defer close(done)
	defer l.tracker.Untrack(p.SessionID, exchangeID)

	runErr := l.runRounds(ex.Token(), p, exchangeID, sink)

	switch {
	case errors.Is(runErr, context.Canceled) || isUserCancellation(runErr):
		l.store.SetState(p.SessionID, exchangeID, session.StateCancelled)
		sink.Publish(event.New(p.SessionID, exchangeID, event.KindExecutionState, event.ExecutionStateEvent{State: event.ExecStateCancelled}))
		return exchangeID, nil
	case runErr != nil:
		sink.Publish(event.New(p.SessionID, exchangeID, event.KindError, event.ErrorEvent{Kind: "agent_loop", Message: runErr.Error()}))
		l.store.SetState(p.SessionID, exchangeID, session.StateCancelled)
		return exchangeID, runErr
	default:
		l.store.SetState(p.SessionID, exchangeID, session.StateFinished)
		sink.Publish(event.New(p.SessionID, exchangeID, event.KindFinishedExchange, event.FinishedExchangeEvent{}))
		return exchangeID, nil
	}
}

// runRounds is the model-round loop proper (spec §4.8 steps 2-7).
func (l *Loop) runRounds(ctx context.Context, p Params, exchangeID string, sink event.Sink) error {
	for round := 0; round < p.MaxToolRounds; round++ {
		messages, err := l.assemblePrompt(p)
		if err != nil {
			return err
		}

		planSink := &planForwarder{sink: sink, sid: p.SessionID, eid: exchangeID}
		editSink := &editForwarder{sink: sink, sid: p.SessionID, eid: exchangeID}
		planParser := parser.NewPlanParser(planSink)
		editParser := parser.NewEditParser(editSink)
		toolParser := parser.NewToolUseParser(func(name string) bool {
			_, ok := l.registry.Get(name)
			return ok
		})

		var lastText string
		var pendingToolCalls []parser.ToolUseRecord
		streamSink := func(rec types.StreamRecord) {
			if rec.Delta != "" {
				lastText = rec.AnswerSoFar
				planParser.AddDelta(rec.Delta)
				editParser.AddDelta(rec.Delta)
				sink.Publish(event.New(p.SessionID, exchangeID, event.KindChatEvent, event.ChatEvent{Delta: rec.Delta, Cumulative: rec.AnswerSoFar}))
			}
			if rec.ToolUse != nil {
				pendingToolCalls = append(pendingToolCalls, parser.ToolUseRecord{
					ToolID: rec.ToolUse.ID, ToolName: rec.ToolUse.Name, ArgumentText: rec.ToolUse.ArgumentText,
				})
				sink.Publish(event.New(p.SessionID, exchangeID, event.KindToolTypeFound, event.ToolTypeFoundEvent{ToolType: rec.ToolUse.Name}))
			}
		}

		resp, err := l.streamWithRetry(ctx, p, exchangeID, messages, streamSink)
		if err != nil {
			return err
		}
		if lastText == "" {
			lastText = resp.Content
		}

		if err := l.store.AppendMessage(p.SessionID, exchangeID, session.NewTextMessage(session.MessageRoleAssistant, lastText)); err != nil {
			return err
		}

		if len(pendingToolCalls) == 0 {
			return nil
		}

		terminal, err := l.dispatchToolCalls(ctx, p, exchangeID, pendingToolCalls, toolParser, sink)
		if err != nil {
			return err
		}
		if terminal {
			return nil
		}
	}
	return fmt.Errorf("agentloop: exceeded %d tool rounds without reaching a terminal tool", p.MaxToolRounds)
}

// dispatchToolCalls executes every tool call the model requested this
// round, appends each tool-return to history, and reports whether a
// terminal tool (attempt_completion / ask_followup_question) ended the
// turn.
func (l *Loop) dispatchToolCalls(ctx context.Context, p Params, exchangeID string, calls []parser.ToolUseRecord, toolParser *parser.ToolUseParser, sink event.Sink) (bool, error) {
	for _, tc := range calls {
		input, err := toolParser.Parse(tc)
		if err != nil {
			var notFound *parser.ErrToolNotFound
			if errors.As(err, &notFound) {
				sink.Publish(event.New(p.SessionID, exchangeID, event.KindToolNotFound, event.ToolNotFoundEvent{ToolName: tc.ToolName}))
			} else {
				sink.Publish(event.New(p.SessionID, exchangeID, event.KindToolCallError, event.ToolCallErrorEvent{ToolType: tc.ToolName, Message: err.Error()}))
			}
			continue
		}

		if tc.ToolName == toolAttemptCompletion || tc.ToolName == toolAskFollowupQuestion {
			l.recordToolReturn(p.SessionID, exchangeID, tc.ToolID, tc.ToolName, "")
			return true, nil
		}

		result, err := l.executor.Execute(ctx, tc.ToolName, input)
		if err != nil {
			sink.Publish(event.New(p.SessionID, exchangeID, event.KindToolCallError, event.ToolCallErrorEvent{ToolType: tc.ToolName, Message: err.Error()}))
			continue
		}
		if result != nil && !result.Success && result.Error != nil {
			sink.Publish(event.New(p.SessionID, exchangeID, event.KindToolCallError, event.ToolCallErrorEvent{ToolType: tc.ToolName, Message: result.Error.Message}))
		}

		sink.Publish(event.New(p.SessionID, exchangeID, event.KindToolOutputDelta, event.ToolOutputDeltaEvent{Delta: resultSummary(result)}))
		l.recordToolReturn(p.SessionID, exchangeID, tc.ToolID, tc.ToolName, resultSummary(result))
	}
	return false, nil
}

func (l *Loop) recordToolReturn(sessionID, exchangeID, toolUseID, toolName, content string) {
	l.store.AppendMessage(sessionID, exchangeID, session.Message{
		Role: session.MessageRoleToolReturn,
		Parts: []session.MessagePart{{
			Kind:         session.PartToolReturn,
			ToolReturnOf: toolUseID,
			ToolName:     toolName,
			ToolContent:  content,
		}},
	})
}

func resultSummary(r *shuttle.Result) string {
	if r == nil {
		return ""
	}
	b, err := json.Marshal(r.Data)
	if err != nil {
		return fmt.Sprintf("%v", r.Data)
	}
	return string(b)
}

// assemblePrompt builds the full message list for one model round (spec
// §4.8 step 2): a system message from tool descriptions plus optional aide
// rules, the history trimmed to budget, and the current turn's messages
// already appended to the exchange.
func (l *Loop) assemblePrompt(p Params) ([]types.Message, error) {
	system := l.systemPrompt(p.AideRules)

	exchanges := l.store.List(p.SessionID)
	var history []session.Message
	for _, ex := range exchanges {
		history = append(history, ex.Messages...)
	}

	budget := p.MaxHistoryTokens
	if budget <= 0 {
		budget = 100_000
	}
	trimmed := trimHistory(history, budget)

	out := make([]types.Message, 0, len(trimmed)+1)
	out = append(out, types.Message{Role: "system", Content: system})
	for _, m := range trimmed {
		out = append(out, toProviderMessage(m))
	}
	return out, nil
}

func (l *Loop) systemPrompt(aideRules string) string {
	var b strings.Builder
	b.WriteString("You are an autonomous code-editing agent. Use the available tools to satisfy the user's request, then call attempt_completion.\n\n")
	b.WriteString("Available tools:\n")
	for _, tool := range l.registry.ListTools() {
		fmt.Fprintf(&b, "- %s: %s\n", tool.Name(), tool.Description())
	}
	if aideRules != "" {
		b.WriteString("\n")
		b.WriteString(aideRules)
	}
	return b.String()
}

// toProviderMessage converts a stored session.Message into the wire shape
// the Broker's Provider Clients expect.
func toProviderMessage(m session.Message) types.Message {
	out := types.Message{Role: string(m.Role), CacheHint: m.CacheHint}
	if m.Role == session.MessageRoleToolReturn {
		out.Role = "tool"
	}
	for _, p := range m.Parts {
		switch p.Kind {
		case session.PartText:
			out.Content += p.Text
		case session.PartToolUse:
			out.ToolCalls = append(out.ToolCalls, types.ToolCall{ID: p.ToolUseID, Name: p.ToolName, Input: p.ToolInput})
		case session.PartToolReturn:
			out.ToolUseID = p.ToolReturnOf
			out.Content += p.ToolContent
			out.ToolResult = &shuttle.Result{Success: true, Data: p.ToolContent}
		case session.PartImage:
			out.ContentBlocks = append(out.ContentBlocks, types.ContentBlock{
				Type:  "image",
				Image: &types.ImageContent{Type: "image", Source: types.ImageSource{Type: "base64", MediaType: p.ImageMediaType, Data: p.ImageData}},
			})
		}
	}
	return out
}

// streamWithRetry calls the Broker, making up to defaultMaxRetries attempts
// in total on transport failures and alternating between the primary and backup
// provider tags on odd retries. UnauthorizedAccess and UserCancellation are
// never retried (spec §4.1, §7).
func (l *Loop) streamWithRetry(ctx context.Context, p Params, exchangeID string, messages []types.Message, sink types.DeltaSink) (*types.LLMResponse, error) {
	tag := p.Provider
	var lastErr error

	for attempt := 1; attempt <= defaultMaxRetries; attempt++ {
		if attempt%2 == 0 && p.BackupProvider != "" {
			tag = p.BackupProvider
		} else {
			tag = p.Provider
		}

		req := broker.Request{Provider: tag, Model: p.Model, Messages: messages, Tools: l.registry.ListTools()}
		meta := broker.Metadata{RootID: exchangeID, EventType: "chat"}

		resp, err := l.broker.Stream(ctx, req, meta, sink)
		if err == nil {
			return resp, nil
		}

		var unauthorized *types.ErrUnauthorizedAccess
		if errors.As(err, &unauthorized) {
			return nil, err
		}
		if isUserCancellation(err) || ctx.Err() != nil {
			return nil, err
		}

		lastErr = err
		var transportErr *types.ErrTransport
		if !errors.As(err, &transportErr) {
			return nil, err
		}

		select {
		case <-time.After(time.Duration(attempt) * 200 * time.Millisecond):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("agentloop: exhausted retries against %q/%q: %w", p.Provider, p.BackupProvider, lastErr)
}

func isUserCancellation(err error) bool {
	var cancellation *types.ErrUserCancellation
	return errors.As(err, &cancellation)
}
