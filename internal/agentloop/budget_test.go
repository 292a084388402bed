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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftrun/weftcore/pkg/session"
)

func TestTrimHistoryNeverDropsSystemOrCurrentTurn(t *testing.T) {
	messages := []session.Message{
		session.NewTextMessage(session.MessageRoleSystem, "you are an agent"),
		session.NewTextMessage(session.MessageRoleUser, strings.Repeat("old turn ", 500)),
		session.NewTextMessage(session.MessageRoleUser, "current turn"),
	}

	trimmed := trimHistory(messages, 5)

	require.Len(t, trimmed, 2)
	assert.Equal(t, session.MessageRoleSystem, trimmed[0].Role)
	assert.Equal(t, "current turn", trimmed[len(trimmed)-1].Text())
}

func TestTrimHistoryDropsToolUseAndReturnTogether(t *testing.T) {
	messages := []session.Message{
		session.NewTextMessage(session.MessageRoleUser, strings.Repeat("pad ", 2000)),
		{
			Role: session.MessageRoleAssistant,
			Parts: []session.MessagePart{
				{Kind: session.PartToolUse, ToolUseID: "t1", ToolName: "file_find", ToolInput: map[string]interface{}{"q": strings.Repeat("x", 2000)}},
			},
		},
		{
			Role: session.MessageRoleToolReturn,
			Parts: []session.MessagePart{
				{Kind: session.PartToolReturn, ToolReturnOf: "t1", ToolContent: strings.Repeat("result ", 2000)},
			},
		},
		session.NewTextMessage(session.MessageRoleUser, "current turn"),
	}

	trimmed := trimHistory(messages, 10)

	require.Len(t, trimmed, 1)
	assert.Equal(t, "current turn", trimmed[0].Text())
}

func TestTrimHistoryNoOpWhenWithinBudget(t *testing.T) {
	messages := []session.Message{
		session.NewTextMessage(session.MessageRoleUser, "hi"),
		session.NewTextMessage(session.MessageRoleUser, "current turn"),
	}

	trimmed := trimHistory(messages, 1_000_000)

	assert.Equal(t, messages, trimmed)
}
