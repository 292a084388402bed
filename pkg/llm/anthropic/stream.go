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
package anthropic

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/weftrun/weftcore/pkg/llm"
	llmtypes "github.com/weftrun/weftcore/pkg/llm/types"
	"github.com/weftrun/weftcore/pkg/shuttle"
)

// blockAccumulator tracks one in-progress content block keyed by its
// stream index, so interleaved text and tool-use blocks never corrupt each
// other's accumulated state (spec §4.1's "accumulates its arguments across
// partial-json deltas until its stop").
type blockAccumulator struct {
	isToolUse bool
	toolID    string
	toolName  string
	argBuf    strings.Builder
}

// StreamChat implements the Provider Client contract of spec §4.1 exactly:
// it streams message-start/content_block_start/content_block_delta/
// content_block_stop/message_delta/message_stop events, mirrors every text
// delta into sink immediately, and emits one ToolUseDelta record per
// tool-use block at its content_block_stop with the fully accumulated
// argument text.
func (c *Client) StreamChat(ctx context.Context, messages []llmtypes.Message, tools []shuttle.Tool, model string, sink llmtypes.DeltaSink) (*llmtypes.LLMResponse, error) {
	systemPrompt, apiMessages := c.convertMessages(messages)
	c.toolNameMap = make(map[string]string)
	apiTools := c.convertTools(tools)
	if model == "" {
		model = c.model
	}

	req := &MessagesRequest{
		Model:       model,
		Messages:    apiMessages,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		Stream:      true,
	}
	if systemPrompt != "" {
		req.System = systemPrompt
	}
	if len(apiTools) > 0 {
		req.Tools = apiTools
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	var httpResp *http.Response
	if c.rateLimiter != nil {
		result, err := c.rateLimiter.Do(ctx, func(ctx context.Context) (interface{}, error) {
			return c.httpClient.Do(httpReq)
		})
		if err != nil {
			return nil, &llmtypes.ErrTransport{Provider: "anthropic", Cause: err}
		}
		httpResp = result.(*http.Response)
	} else {
		httpResp, err = c.httpClient.Do(httpReq)
		if err != nil {
			return nil, &llmtypes.ErrTransport{Provider: "anthropic", Cause: err}
		}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode == http.StatusUnauthorized || httpResp.StatusCode == http.StatusForbidden {
		respBody, _ := io.ReadAll(httpResp.Body)
		return nil, &llmtypes.ErrUnauthorizedAccess{Provider: "anthropic", Detail: string(respBody)}
	}
	if httpResp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(httpResp.Body)
		return nil, &llmtypes.ErrTransport{Provider: "anthropic", Cause: fmt.Errorf("API error (status %d): %s", httpResp.StatusCode, string(respBody))}
	}

	var answerSoFar strings.Builder
	usage := llmtypes.Usage{}
	var stopReason string
	var toolCalls []llmtypes.ToolCall
	blocks := make(map[int]*blockAccumulator)

	scanner := bufio.NewScanner(httpResp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil, &llmtypes.ErrUserCancellation{}
		default:
		}

		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		jsonData := strings.TrimPrefix(line, "data: ")

		var evt StreamEvent
		if err := json.Unmarshal([]byte(jsonData), &evt); err != nil {
			continue
		}

		switch evt.Type {
		case "message_start":
			if evt.Message != nil {
				// Initial usage, if the vendor includes it inline, is
				// picked up via message_delta/message_stop below.
			}

		case "content_block_start":
			if evt.ContentBlock == nil {
				break
			}
			acc := &blockAccumulator{}
			if evt.ContentBlock.Type == "tool_use" {
				acc.isToolUse = true
				acc.toolID = evt.ContentBlock.ID
				acc.toolName = llm.ReverseToolName(c.toolNameMap, evt.ContentBlock.Name)
			}
			blocks[evt.Index] = acc

		case "content_block_delta":
			if evt.Delta == nil {
				break
			}
			acc := blocks[evt.Index]
			if acc == nil {
				acc = &blockAccumulator{}
				blocks[evt.Index] = acc
			}
			switch evt.Delta.Type {
			case "text_delta":
				if evt.Delta.Text != "" {
					answerSoFar.WriteString(evt.Delta.Text)
					sink(llmtypes.StreamRecord{AnswerSoFar: answerSoFar.String(), Delta: evt.Delta.Text})
				}
			case "input_json_delta":
				acc.argBuf.WriteString(evt.Delta.PartialJSON)
			}

		case "content_block_stop":
			acc := blocks[evt.Index]
			if acc != nil && acc.isToolUse {
				argText := acc.argBuf.String()
				toolCalls = append(toolCalls, llmtypes.ToolCall{ID: acc.toolID, Name: acc.toolName})
				sink(llmtypes.StreamRecord{
					AnswerSoFar: answerSoFar.String(),
					ToolUse: &llmtypes.ToolUseDelta{
						ID:           acc.toolID,
						Name:         acc.toolName,
						ArgumentText: argText,
					},
				})
			}
			delete(blocks, evt.Index)

		case "message_delta":
			if evt.Delta != nil && evt.Delta.StopReason != "" {
				stopReason = evt.Delta.StopReason
			}
			if evt.Usage != nil {
				usage.OutputTokens = evt.Usage.OutputTokens
				sink(llmtypes.StreamRecord{AnswerSoFar: answerSoFar.String(), Usage: &llmtypes.Usage{OutputTokens: usage.OutputTokens}})
			}

		case "message_stop":
			if evt.Usage != nil {
				usage.InputTokens = evt.Usage.InputTokens
				usage.OutputTokens = evt.Usage.OutputTokens
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &llmtypes.ErrTransport{Provider: "anthropic", Cause: err}
	}

	usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	usage.CostUSD = c.calculateCost(usage.InputTokens, usage.OutputTokens)
	if c.rateLimiter != nil {
		c.rateLimiter.RecordTokenUsage(int64(usage.TotalTokens))
	}

	return &llmtypes.LLMResponse{
		Content:    answerSoFar.String(),
		StopReason: stopReason,
		Usage:      usage,
		ToolCalls:  toolCalls,
		Metadata: map[string]interface{}{
			"model":       c.model,
			"stop_reason": stopReason,
			"streaming":   true,
		},
	}, nil
}

var _ llmtypes.StreamingChatProvider = (*Client)(nil)
