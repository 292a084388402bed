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

// Package broker is the LLM Broker (spec §4.2): it chooses a Provider
// Client by provider-tag, forwards a normalized request, and re-emits its
// delta stream while attaching metadata tags for observability. It is
// stateless. The vendor-selection shape is grounded in the teacher's
// pkg/llm/factory.ProviderFactory (tag -> constructor dispatch); the
// wrap-and-inject-metadata behavior generalizes
// pkg/llm/instrumented_provider.go's span-wrapping pattern, retargeted from
// tracing spans to the root-id/event-type header pair spec §4.2 names.
//
// Request rate limiting lives one layer down, inside each Provider Client
// (pkg/llm.RateLimiter), not here: a Client already throttles and retries
// its own vendor's calls, so a second limiter at this layer would only
// queue the same request twice.
package broker

import (
	"context"
	"fmt"

	"github.com/weftrun/weftcore/pkg/llm/types"
	"github.com/weftrun/weftcore/pkg/shuttle"
)

// Request is the Broker's normalized input: everything a Provider Client
// needs, independent of vendor.
type Request struct {
	Provider string // provider-tag selecting the client implementation
	Model    string // model-tag Configuration Assembly resolved for this exchange; empty uses the client's default
	Messages []types.Message
	Tools    []shuttle.Tool
}

// Metadata carries the observability tags spec §4.2 attaches to every
// forwarded request: a root-id correlating this call to its originating
// exchange, and an event-type distinguishing chat turns from tool-input
// completions.
type Metadata struct {
	RootID    string
	EventType string
}

// Broker chooses a types.StreamingChatProvider by provider-tag and forwards
// requests to it unchanged.
type Broker struct {
	providers map[string]types.StreamingChatProvider
}

// New creates a Broker with no registered providers.
func New() *Broker {
	return &Broker{providers: make(map[string]types.StreamingChatProvider)}
}

// Register associates tag with a Provider Client implementation.
func (b *Broker) Register(tag string, provider types.StreamingChatProvider) {
	b.providers[tag] = provider
}

// Stream chooses a provider by req.Provider, attaches meta as a
// StreamRecord decoration (via the sink wrapper below), and forwards the
// delta stream unchanged otherwise. It returns the final LLMResponse or the
// provider's error, which the caller (the Agent Loop's retry/failover
// layer) interprets per spec §7.
func (b *Broker) Stream(ctx context.Context, req Request, meta Metadata, sink types.DeltaSink) (*types.LLMResponse, error) {
	provider, ok := b.providers[req.Provider]
	if !ok {
		return nil, fmt.Errorf("broker: no provider client registered for tag %q", req.Provider)
	}

	taggedSink := func(rec types.StreamRecord) {
		if rec.Metadata == nil {
			rec.Metadata = map[string]string{}
		}
		rec.Metadata["root_id"] = meta.RootID
		rec.Metadata["event_type"] = meta.EventType
		sink(rec)
	}

	return provider.StreamChat(ctx, req.Messages, req.Tools, req.Model, taggedSink)
}
