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
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/weftrun/weftcore/pkg/session"
)

// tokenCounter wraps a cl100k_base tiktoken encoder as a model-agnostic
// approximation, same tradeoff pkg/agent.TokenCounter makes in the teacher:
// exact for OpenAI-family models, a good-enough estimate elsewhere.
type tokenCounter struct {
	mu      sync.Mutex
	encoder *tiktoken.Tiktoken
}

var (
	globalCounter     *tokenCounter
	globalCounterOnce sync.Once
)

func getTokenCounter() *tokenCounter {
	globalCounterOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			globalCounter = &tokenCounter{}
			return
		}
		globalCounter = &tokenCounter{encoder: enc}
	})
	return globalCounter
}

func (c *tokenCounter) count(text string) int {
	if c.encoder == nil {
		return len(text) / 4
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.encoder.Encode(text, nil, nil))
}

// countMessage estimates a session.Message's token footprint: fixed
// per-message overhead plus its text and tool-use/tool-return parts.
func (c *tokenCounter) countMessage(msg session.Message) int {
	total := 10
	for _, p := range msg.Parts {
		switch p.Kind {
		case session.PartText:
			total += c.count(p.Text)
		case session.PartToolUse:
			total += c.count(p.ToolName) + 20
			for k, v := range p.ToolInput {
				total += c.count(k) + c.count(toDisplayString(v))
			}
		case session.PartToolReturn:
			total += c.count(p.ToolContent) + 20
		case session.PartImage:
			total += 256 // flat estimate; vision token cost varies per provider
		}
	}
	return total
}

func toDisplayString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	default:
		return ""
	}
}

// trimHistory implements spec §4.8.1: drop the oldest non-system prior
// message, one whole turn (a tool-use message plus its paired tool-return)
// at a time, until the remaining history's token count is at most budget.
// The current user turn (always last in messages) and any system message
// are never dropped.
func trimHistory(messages []session.Message, budget int) []session.Message {
	if budget <= 0 || len(messages) == 0 {
		return messages
	}
	counter := getTokenCounter()

	total := func(msgs []session.Message) int {
		sum := 0
		for _, m := range msgs {
			sum += counter.countMessage(m)
		}
		return sum
	}

	trimmed := append([]session.Message(nil), messages...)
	for total(trimmed) > budget && len(trimmed) > 1 {
		cut := firstDroppableIndex(trimmed)
		if cut < 0 {
			break
		}
		end := cut + 1
		if end < len(trimmed) && turnsPair(trimmed[cut], trimmed[end]) {
			end++
		}
		trimmed = append(trimmed[:cut], trimmed[end:]...)
	}
	return trimmed
}

// firstDroppableIndex returns the index of the oldest message that isn't a
// system message and isn't the final (current) turn.
func firstDroppableIndex(messages []session.Message) int {
	for i, m := range messages {
		if i == len(messages)-1 {
			break
		}
		if m.Role == session.MessageRoleSystem {
			continue
		}
		return i
	}
	return -1
}

// turnsPair reports whether a is a tool-use assistant turn answered by b's
// tool-return, so the pair is dropped atomically rather than orphaning one
// half (spec §9's resolved open question on history trimming).
func turnsPair(a, b session.Message) bool {
	if a.Role != session.MessageRoleAssistant || b.Role != session.MessageRoleToolReturn {
		return false
	}
	for _, p := range a.Parts {
		if p.Kind == session.PartToolUse {
			return true
		}
	}
	return false
}
