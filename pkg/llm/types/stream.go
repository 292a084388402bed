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
package types

import (
	"context"
	"fmt"

	"github.com/weftrun/weftcore/pkg/shuttle"
)

// ToolUseDelta is emitted once a tool-use content block closes: the
// provider client accumulates partial-json argument deltas internally and
// hands the caller the complete argument text in one record (spec §4.1).
type ToolUseDelta struct {
	ID           string
	Name         string
	ArgumentText string
}

// StreamRecord is one record of the Provider Client's lazy, finite,
// non-restartable delta sequence (spec §4.1). Records arrive in the order
// the provider produced them and are never reordered. Exactly one of Delta
// and ToolUse is meaningful per record that carries either; Usage is set
// incrementally as the provider reports it.
type StreamRecord struct {
	AnswerSoFar string
	Delta       string
	ToolUse     *ToolUseDelta
	Usage       *Usage

	// Metadata carries observability tags the Broker attaches (root-id,
	// event-type); Provider Clients never set it themselves.
	Metadata map[string]string
}

// DeltaSink receives StreamRecords as they're produced. It must not block:
// callers that need to fan out further should buffer internally (mirrors
// the UI sink's unbounded-channel contract in spec §5).
type DeltaSink func(StreamRecord)

// ErrUnauthorizedAccess indicates the provider rejected credentials
// (HTTP 401-equivalent). It is never retried (spec §4.1, §7).
type ErrUnauthorizedAccess struct {
	Provider string
	Detail   string
}

func (e *ErrUnauthorizedAccess) Error() string {
	return fmt.Sprintf("%s: unauthorized: %s", e.Provider, e.Detail)
}

// ErrTransport wraps a network/transport failure talking to the provider.
// The Broker's caller (ultimately the Agent Loop) is responsible for
// retrying it, up to a configured limit, with failover (spec §4.1, §7).
type ErrTransport struct {
	Provider string
	Cause    error
}

func (e *ErrTransport) Error() string {
	return fmt.Sprintf("%s: transport error: %v", e.Provider, e.Cause)
}

func (e *ErrTransport) Unwrap() error { return e.Cause }

// ErrUserCancellation indicates the caller's context was cancelled; it is
// never retried and is not logged as an error (spec §7).
type ErrUserCancellation struct{}

func (e *ErrUserCancellation) Error() string { return "user cancellation" }

// StreamingChatProvider is the Provider Client contract (spec §4.1):
// consume a request, produce a lazy sequence of normalized deltas plus a
// final usage record. Per-vendor quirks are hidden behind this single
// method. model overrides the Client's configured default for this one
// call — Configuration Assembly (spec §4.9) resolves a concrete model id
// per exchange; an empty model falls back to the Client's own default.
type StreamingChatProvider interface {
	LLMProvider
	StreamChat(ctx context.Context, messages []Message, tools []shuttle.Tool, model string, sink DeltaSink) (*LLMResponse, error)
}
