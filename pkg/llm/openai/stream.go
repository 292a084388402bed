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
package openai

import (
	"context"
	"encoding/json"
	"strings"

	llmtypes "github.com/weftrun/weftcore/pkg/llm/types"
	"github.com/weftrun/weftcore/pkg/shuttle"
)

// StreamChat adapts ChatStream's token-callback shape to the uniform
// Provider Client DeltaSink contract (spec §4.1). OpenAI's wire protocol
// already demultiplexes tool-call argument chunks by index in ChatStream;
// rather than duplicate that accumulation here, this wrapper replays text
// deltas live and reports each finished tool call as a single ToolUseDelta
// once the whole response has been read, which is observably equivalent
// for any tool whose input.Execute only consumes the final argument text.
func (c *Client) StreamChat(ctx context.Context, messages []llmtypes.Message, tools []shuttle.Tool, model string, sink llmtypes.DeltaSink) (*llmtypes.LLMResponse, error) {
	var answerSoFar strings.Builder

	resp, err := c.ChatStream(ctx, messages, tools, model, func(token string) {
		answerSoFar.WriteString(token)
		sink(llmtypes.StreamRecord{AnswerSoFar: answerSoFar.String(), Delta: token})
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, &llmtypes.ErrUserCancellation{}
		}
		return nil, &llmtypes.ErrTransport{Provider: "openai", Cause: err}
	}

	for _, tc := range resp.ToolCalls {
		argText, marshalErr := json.Marshal(tc.Input)
		if marshalErr != nil {
			argText = []byte("{}")
		}
		sink(llmtypes.StreamRecord{
			AnswerSoFar: answerSoFar.String(),
			ToolUse:     &llmtypes.ToolUseDelta{ID: tc.ID, Name: tc.Name, ArgumentText: string(argText)},
		})
	}
	sink(llmtypes.StreamRecord{AnswerSoFar: answerSoFar.String(), Usage: &resp.Usage})

	return resp, nil
}

var _ llmtypes.StreamingChatProvider = (*Client)(nil)
