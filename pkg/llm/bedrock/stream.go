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
package bedrock

import (
	"context"
	"encoding/json"

	llmtypes "github.com/weftrun/weftcore/pkg/llm/types"
	"github.com/weftrun/weftcore/pkg/shuttle"
)

// StreamChat satisfies the Provider Client contract for callers that
// select Bedrock through the Broker. It does not stream: a single Chat call
// (the InvokeModel API) produces the full response, which is then replayed through sink as one
// text record and one record per tool call, so the Agent Loop's parser
// pipeline sees the same event shape regardless of which vendor answered.
//
// model is accepted to satisfy StreamingChatProvider but not honored per
// call: a Bedrock Client is bound to one model id at construction
// (Chat always sends c.modelID). To offer a fast/slow tier on
// Bedrock, register two Clients under two provider tags (e.g.
// "bedrock-fast", "bedrock-slow") instead.
func (c *Client) StreamChat(ctx context.Context, messages []llmtypes.Message, tools []shuttle.Tool, model string, sink llmtypes.DeltaSink) (*llmtypes.LLMResponse, error) {
	resp, err := c.Chat(ctx, messages, tools)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &llmtypes.ErrUserCancellation{}
		}
		return nil, &llmtypes.ErrTransport{Provider: "bedrock", Cause: err}
	}

	if resp.Content != "" {
		sink(llmtypes.StreamRecord{AnswerSoFar: resp.Content, Delta: resp.Content})
	}
	for _, tc := range resp.ToolCalls {
		argText, marshalErr := json.Marshal(tc.Input)
		if marshalErr != nil {
			argText = []byte("{}")
		}
		sink(llmtypes.StreamRecord{
			AnswerSoFar: resp.Content,
			ToolUse:     &llmtypes.ToolUseDelta{ID: tc.ID, Name: tc.Name, ArgumentText: string(argText)},
		})
	}
	sink(llmtypes.StreamRecord{AnswerSoFar: resp.Content, Usage: &resp.Usage})

	return resp, nil
}

var _ llmtypes.StreamingChatProvider = (*Client)(nil)
