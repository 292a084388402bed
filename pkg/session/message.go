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
package session

// MessageRole is the role of a Message, per spec §3.
type MessageRole string

const (
	MessageRoleSystem    MessageRole = "system"
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
	MessageRoleToolReturn MessageRole = "tool-return"
)

// PartKind tags the variant of a MessagePart.
type PartKind string

const (
	PartText     PartKind = "text"
	PartImage    PartKind = "image"
	PartToolUse  PartKind = "tool-use"
	PartToolReturn PartKind = "tool-return"
)

// MessagePart is one element of a Message's content sequence (spec §3):
// text, an image, a tool-use request, or a tool-return.
type MessagePart struct {
	Kind PartKind

	Text string

	ImageData      string // base64
	ImageMediaType string

	ToolUseID    string
	ToolName     string
	ToolInput    map[string]interface{}
	ToolReturnOf string // tool-use-id this tool-return answers
	ToolContent  string
}

// Message is one role-tagged sequence of parts, per spec §3. CacheHint
// marks "everything up to and including this message is stable and may be
// cached by the provider". It is copied onto the provider message, where no
// Provider Client reads it.
type Message struct {
	Role      MessageRole
	Parts     []MessagePart
	CacheHint bool
}

// Text returns the concatenation of all text parts, for callers that only
// care about plain chat content.
func (m Message) Text() string {
	var out string
	for _, p := range m.Parts {
		if p.Kind == PartText {
			out += p.Text
		}
	}
	return out
}

// NewTextMessage is a convenience constructor for a single-part text
// message.
func NewTextMessage(role MessageRole, text string) Message {
	return Message{Role: role, Parts: []MessagePart{{Kind: PartText, Text: text}}}
}
