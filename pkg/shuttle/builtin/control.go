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
package builtin

import (
	"context"

	"github.com/weftrun/weftcore/pkg/shuttle"
)

// AttemptCompletionTool is the terminal tool a model calls to end a turn
// with a final answer (spec §4.8 step 6). The Agent Loop recognizes its
// name before dispatch and never actually calls Execute; it is registered
// so the tool-use parser and system prompt see it as a known, described
// tool.
type AttemptCompletionTool struct{}

func NewAttemptCompletionTool() *AttemptCompletionTool { return &AttemptCompletionTool{} }

func (t *AttemptCompletionTool) Name() string    { return string(shuttle.ToolTypeAttemptCompletion) }
func (t *AttemptCompletionTool) Backend() string { return "" }
func (t *AttemptCompletionTool) Description() string {
	return "Ends the current turn with a final result for the user. Call this once the requested change is complete and verified."
}

func (t *AttemptCompletionTool) InputSchema() *shuttle.JSONSchema {
	return shuttle.NewObjectSchema(
		"Parameters for ending a turn",
		map[string]*shuttle.JSONSchema{
			"result": shuttle.NewStringSchema("A summary of what was done."),
		},
		[]string{"result"},
	)
}

func (t *AttemptCompletionTool) Execute(ctx context.Context, params map[string]interface{}) (*shuttle.Result, error) {
	return &shuttle.Result{Success: true, Data: params["result"]}, nil
}

// AskFollowupQuestionTool is the terminal tool a model calls when it needs
// clarification before it can proceed (spec §4.8 step 6).
type AskFollowupQuestionTool struct{}

func NewAskFollowupQuestionTool() *AskFollowupQuestionTool { return &AskFollowupQuestionTool{} }

func (t *AskFollowupQuestionTool) Name() string { return string(shuttle.ToolTypeAskFollowupQuestion) }
func (t *AskFollowupQuestionTool) Backend() string { return "" }
func (t *AskFollowupQuestionTool) Description() string {
	return "Ends the current turn by asking the user a clarifying question. Use this only when the request is genuinely ambiguous."
}

func (t *AskFollowupQuestionTool) InputSchema() *shuttle.JSONSchema {
	return shuttle.NewObjectSchema(
		"Parameters for a clarifying question",
		map[string]*shuttle.JSONSchema{
			"question": shuttle.NewStringSchema("The question to ask the user."),
		},
		[]string{"question"},
	)
}

func (t *AskFollowupQuestionTool) Execute(ctx context.Context, params map[string]interface{}) (*shuttle.Result, error) {
	return &shuttle.Result{Success: true, Data: params["question"]}, nil
}
