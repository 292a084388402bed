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

// Package types contains the shared wire-level types passed between the LLM
// Broker and each Provider Client: messages, content blocks, tool calls, and
// usage accounting.
package types

import (
	"context"
	"time"

	"github.com/weftrun/weftcore/pkg/shuttle"
)

// ToolCall represents a tool invocation requested by the model.
type ToolCall struct {
	ID    string
	Name  string
	Input map[string]interface{}
}

// ContentBlock is a piece of content in a multi-modal message: text or image.
type ContentBlock struct {
	Type  string // "text" or "image"
	Text  string
	Image *ImageContent
}

// ImageContent is an image attached to a message.
type ImageContent struct {
	Type   string
	Source ImageSource
}

// ImageSource carries the actual image bytes or URL.
type ImageSource struct {
	Type      string // "base64" or "url"
	MediaType string // "image/png", "image/jpeg", ...
	Data      string
	URL       string
}

// Message is a single turn in the conversation sent to a Provider Client.
type Message struct {
	ID            string
	Role          string // user, assistant, tool, system
	Content       string
	ContentBlocks []ContentBlock
	ToolCalls     []ToolCall
	ToolUseID     string
	ToolResult    *shuttle.Result

	// CacheHint, when set, marks this message as a stable prefix boundary for
	// prompt caching. It is advisory: no Provider Client in this module reads
	// it, so no cache_control marker reaches the wire request.
	CacheHint bool

	Timestamp  time.Time
	TokenCount int
	CostUSD    float64
}

// Usage tracks token consumption and estimated cost for one exchange.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
	CostUSD      float64
}

// LLMResponse is the complete (non-streaming, or fully drained streaming)
// result of one model turn.
type LLMResponse struct {
	Content    string
	ToolCalls  []ToolCall
	StopReason string
	Usage      Usage
	Metadata   map[string]interface{}
	Thinking   string
}

// LLMProvider is the Provider Client contract: one implementation per
// vendor wire protocol (Anthropic, Bedrock, OpenAI-compatible, ...).
type LLMProvider interface {
	Chat(ctx context.Context, messages []Message, tools []shuttle.Tool) (*LLMResponse, error)
	Name() string
	Model() string
}

// TokenCallback is invoked for each chunk received during streaming. It must
// not block.
type TokenCallback func(token string)

// StreamingLLMProvider extends LLMProvider with incremental token delivery.
type StreamingLLMProvider interface {
	LLMProvider

	ChatStream(ctx context.Context, messages []Message, tools []shuttle.Tool,
		tokenCallback TokenCallback) (*LLMResponse, error)
}

// SupportsStreaming reports whether a provider implements StreamingLLMProvider.
func SupportsStreaming(provider LLMProvider) bool {
	_, ok := provider.(StreamingLLMProvider)
	return ok
}
