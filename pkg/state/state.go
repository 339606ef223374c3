// Copyright 2026 © The Argonaut Authors
// SPDX-License-Identifier: Apache-2.0

// Package state defines the chat-style message model exchanged with the
// agent: typed messages and the input/output state envelopes that wrap them.
package state

import (
	"encoding/json"
	"fmt"
)

// MsgType identifies the author of a message.
type MsgType string

const (
	// MsgTypeHuman marks a message authored by the user.
	MsgTypeHuman MsgType = "human"
	// MsgTypeAssistant marks a message authored by the agent.
	MsgTypeAssistant MsgType = "assistant"
	// MsgTypeAI is an alternate spelling of assistant used by some
	// frameworks. Both are accepted and treated as assistant-authored.
	MsgTypeAI MsgType = "ai"
)

// Valid reports whether the message type is one of the declared values.
func (t MsgType) Valid() bool {
	switch t {
	case MsgTypeHuman, MsgTypeAssistant, MsgTypeAI:
		return true
	}
	return false
}

// IsAssistant reports whether the type denotes an assistant-authored message.
func (t MsgType) IsAssistant() bool {
	return t == MsgTypeAssistant || t == MsgTypeAI
}

// Message is a single chat message.
type Message struct {
	Type    MsgType `json:"type"`
	Content string  `json:"content"`
}

// UnmarshalJSON validates the message type on decode.
func (m *Message) UnmarshalJSON(data []byte) error {
	type alias Message
	var decoded alias
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	if !MsgType(decoded.Type).Valid() {
		return fmt.Errorf("state: invalid message type %q", decoded.Type)
	}
	*m = Message(decoded)
	return nil
}

// InputState is the ordered message sequence handed to the agent.
type InputState struct {
	Messages []Message `json:"messages,omitempty"`
}

// OutputState is the ordered message sequence produced by the agent.
type OutputState struct {
	Messages []Message `json:"messages,omitempty"`
}

// AgentState is the full graph state: the input handed to the agent node and
// the output it produced.
type AgentState struct {
	Input  InputState   `json:"argocd_input"`
	Output *OutputState `json:"argocd_output,omitempty"`
}

// LastHuman returns the content of the most recent human message, or false
// when none is present.
func LastHuman(messages []Message) (string, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Type == MsgTypeHuman {
			return messages[i].Content, true
		}
	}
	return "", false
}

// LastAssistant returns the content of the most recent assistant-authored
// message, or false when none is present.
func LastAssistant(messages []Message) (string, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Type.IsAssistant() && messages[i].Content != "" {
			return messages[i].Content, true
		}
	}
	return "", false
}

// Interleave combines human and assistant messages in natural conversation
// order: pairs alternate, then whichever side is longer trails.
func Interleave(human, assistant []Message) []Message {
	out := make([]Message, 0, len(human)+len(assistant))
	n := len(human)
	if len(assistant) < n {
		n = len(assistant)
	}
	for i := 0; i < n; i++ {
		out = append(out, human[i], assistant[i])
	}
	out = append(out, human[n:]...)
	out = append(out, assistant[n:]...)
	return out
}
