// Copyright 2026 © The Argonaut Authors
// SPDX-License-Identifier: Apache-2.0

package anthropic

import (
	"strings"
	"testing"

	"github.com/jllopis/argonaut/pkg/llm"
)

func TestProviderImplementsInterface(t *testing.T) {
	var _ llm.Provider = (*Provider)(nil)
}

func TestNewProvider(t *testing.T) {
	p := New()
	if p == nil {
		t.Fatal("expected non-nil provider")
	}
	if p.model != defaultModel {
		t.Errorf("expected model %s, got %s", defaultModel, p.model)
	}
	if p.maxTokens != defaultMaxTokens {
		t.Errorf("expected maxTokens %d, got %d", defaultMaxTokens, p.maxTokens)
	}
}

func TestWithModel(t *testing.T) {
	p := New(WithModel("claude-opus-4-20250514"))
	if p.model != "claude-opus-4-20250514" {
		t.Errorf("expected model claude-opus-4-20250514, got %s", p.model)
	}
}

func TestWithMaxTokens(t *testing.T) {
	p := New(WithMaxTokens(8192))
	if p.maxTokens != 8192 {
		t.Errorf("expected maxTokens 8192, got %d", p.maxTokens)
	}
}

func TestClientOptionsCompose(t *testing.T) {
	p := New(WithAPIKey("test-key"), WithBaseURL("http://localhost:9999"))
	if len(p.clientOpts) != 2 {
		t.Errorf("expected both client options to apply, got %d", len(p.clientOpts))
	}
}

func TestNewWithAPIKey(t *testing.T) {
	p := NewWithAPIKey("test-key")
	if p == nil {
		t.Fatal("expected non-nil provider")
	}
	if len(p.clientOpts) != 1 {
		t.Errorf("expected API key client option, got %d options", len(p.clientOpts))
	}
}

func TestBuildParamsJoinsSystemMessages(t *testing.T) {
	p := New(WithModel("claude-test"))
	params := p.buildParams(llm.ChatRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: "You manage ArgoCD resources."},
			{Role: llm.RoleSystem, Content: "Decline unrelated requests."},
			{Role: llm.RoleUser, Content: "List the applications"},
		},
	})

	if params.Model != "claude-test" {
		t.Errorf("expected configured model, got %s", params.Model)
	}
	if len(params.Messages) != 1 {
		t.Fatalf("system messages must not appear as turns, got %d turns", len(params.Messages))
	}
	if len(params.System) != 1 {
		t.Fatalf("expected one system block, got %d", len(params.System))
	}
	joined := params.System[0].Text
	if !strings.Contains(joined, "ArgoCD resources") || !strings.Contains(joined, "unrelated requests") {
		t.Errorf("system prompts not joined: %q", joined)
	}
}

func TestBuildParamsModelAndTemperature(t *testing.T) {
	p := New()
	params := p.buildParams(llm.ChatRequest{
		Model:       "claude-override",
		Temperature: 0.2,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
	})
	if params.Model != "claude-override" {
		t.Errorf("request model should win, got %s", params.Model)
	}
	if !params.Temperature.Valid() || params.Temperature.Value != 0.2 {
		t.Errorf("expected temperature 0.2, got %+v", params.Temperature)
	}
}

func TestAssistantToolUseKeepsText(t *testing.T) {
	msg := llm.Message{
		Role:    llm.RoleAssistant,
		Content: "Checking the project list first.",
		ToolCalls: []llm.ToolCall{
			{
				ID:   "toolu_123",
				Type: llm.ToolTypeFunction,
				Function: llm.FunctionCall{
					Name:      "ProjectService_List",
					Arguments: `{}`,
				},
			},
		},
	}
	turn := convertMessage(msg)
	if len(turn.Content) != 2 {
		t.Fatalf("expected text block plus tool_use block, got %d blocks", len(turn.Content))
	}
}

func TestAssistantToolUseMalformedArguments(t *testing.T) {
	msg := llm.Message{
		Role: llm.RoleAssistant,
		ToolCalls: []llm.ToolCall{
			{
				ID:   "toolu_456",
				Type: llm.ToolTypeFunction,
				Function: llm.FunctionCall{
					Name:      "ApplicationService_Get",
					Arguments: `{not json`,
				},
			},
		},
	}
	turn := convertMessage(msg)
	if len(turn.Content) != 1 {
		t.Fatalf("malformed arguments must still produce the tool_use block, got %d blocks", len(turn.Content))
	}
}

func TestConvertMessages(t *testing.T) {
	tests := []struct {
		name string
		msg  llm.Message
	}{
		{
			name: "user message",
			msg:  llm.Message{Role: llm.RoleUser, Content: "Hello"},
		},
		{
			name: "assistant message",
			msg:  llm.Message{Role: llm.RoleAssistant, Content: "Hi there"},
		},
		{
			name: "tool message",
			msg:  llm.Message{Role: llm.RoleTool, Content: "result", ToolCallID: "toolu_123"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			turn := convertMessage(tt.msg)
			if len(turn.Content) == 0 {
				t.Error("expected at least one content block")
			}
		})
	}
}

func TestConvertTool(t *testing.T) {
	tool := llm.Tool{
		Type: llm.ToolTypeFunction,
		Function: llm.FunctionDef{
			Name:        "ClusterService_List",
			Description: "List registered clusters",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"server": map[string]interface{}{
						"type":        "string",
						"description": "Cluster server URL filter",
					},
				},
			},
		},
	}

	converted := convertTool(tool)
	if converted.OfTool == nil || converted.OfTool.Name != "ClusterService_List" {
		t.Fatalf("unexpected tool conversion: %+v", converted)
	}
	if converted.OfTool.InputSchema.Type != "object" {
		t.Errorf("input schema type not carried over: %+v", converted.OfTool.InputSchema)
	}
}
