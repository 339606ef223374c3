// Copyright 2026 © The Argonaut Authors
// SPDX-License-Identifier: Apache-2.0

// Package anthropic provides an Anthropic Claude API provider for Argonaut.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/jllopis/argonaut/pkg/llm"
)

const (
	defaultModel     = "claude-sonnet-4-20250514"
	defaultMaxTokens = 4096
)

// Provider implements llm.Provider for the Anthropic Claude API.
type Provider struct {
	client     anthropic.Client
	clientOpts []option.RequestOption
	model      string
	maxTokens  int64
}

// Option configures the Provider.
type Option func(*Provider)

// WithModel sets the default model.
func WithModel(model string) Option {
	return func(p *Provider) {
		p.model = model
	}
}

// WithMaxTokens sets the maximum tokens for responses.
func WithMaxTokens(tokens int64) Option {
	return func(p *Provider) {
		p.maxTokens = tokens
	}
}

// WithBaseURL sets a custom base URL. Composes with WithAPIKey.
func WithBaseURL(url string) Option {
	return func(p *Provider) {
		p.clientOpts = append(p.clientOpts, option.WithBaseURL(url))
	}
}

// WithAPIKey sets the API key. Composes with WithBaseURL.
func WithAPIKey(apiKey string) Option {
	return func(p *Provider) {
		p.clientOpts = append(p.clientOpts, option.WithAPIKey(apiKey))
	}
}

// New creates a new Anthropic provider. With no options the SDK reads the
// API key from the ANTHROPIC_API_KEY environment variable.
func New(opts ...Option) *Provider {
	p := &Provider{
		model:     defaultModel,
		maxTokens: defaultMaxTokens,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.client = anthropic.NewClient(p.clientOpts...)
	return p
}

// NewWithAPIKey creates a new Anthropic provider with explicit API key.
func NewWithAPIKey(apiKey string, opts ...Option) *Provider {
	return New(append([]Option{WithAPIKey(apiKey)}, opts...)...)
}

// Chat implements llm.Provider.
func (p *Provider) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	message, err := p.client.Messages.New(ctx, p.buildParams(req))
	if err != nil {
		return nil, fmt.Errorf("anthropic message failed: %w", err)
	}
	return convertResponse(message), nil
}

// buildParams maps the request onto Anthropic message params. System
// messages travel in a dedicated field, not in the turn list; multiple
// system messages are joined in order.
func (p *Provider) buildParams(req llm.ChatRequest) anthropic.MessageNewParams {
	model := req.Model
	if model == "" {
		model = p.model
	}

	var system []string
	turns := make([]anthropic.MessageParam, 0, len(req.Messages))
	for _, msg := range req.Messages {
		if msg.Role == llm.RoleSystem {
			system = append(system, msg.Content)
			continue
		}
		turns = append(turns, convertMessage(msg))
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: p.maxTokens,
		Messages:  turns,
	}
	if len(system) > 0 {
		params.System = []anthropic.TextBlockParam{
			{Type: "text", Text: strings.Join(system, "\n\n")},
		}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}
	if len(req.Tools) > 0 {
		tools := make([]anthropic.ToolUnionParam, 0, len(req.Tools))
		for _, tool := range req.Tools {
			tools = append(tools, convertTool(tool))
		}
		params.Tools = tools
	}
	return params
}

// convertMessage converts an Argonaut message to an Anthropic turn.
func convertMessage(msg llm.Message) anthropic.MessageParam {
	switch msg.Role {
	case llm.RoleAssistant:
		if len(msg.ToolCalls) > 0 {
			return assistantToolUseMessage(msg)
		}
		return anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content))
	case llm.RoleTool:
		// Anthropic requires tool results as user messages.
		toolResult := anthropic.NewToolResultBlock(msg.ToolCallID)
		toolResult.OfToolResult.Content = []anthropic.ToolResultBlockParamContentUnion{
			{OfText: &anthropic.TextBlockParam{Text: msg.Content}},
		}
		toolResult.OfToolResult.IsError = anthropic.Bool(false)
		return anthropic.NewUserMessage(toolResult)
	default:
		return anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content))
	}
}

// assistantToolUseMessage rebuilds an assistant turn that requested tool
// calls, preserving any text that accompanied the request.
func assistantToolUseMessage(msg llm.Message) anthropic.MessageParam {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(msg.ToolCalls)+1)
	if msg.Content != "" {
		blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
	}
	for _, tc := range msg.ToolCalls {
		input := map[string]interface{}{}
		if tc.Function.Arguments != "" {
			// Malformed arguments degrade to an empty input rather than
			// dropping the block, so the turn list stays consistent with
			// the tool results that follow.
			_ = json.Unmarshal([]byte(tc.Function.Arguments), &input)
		}
		blocks = append(blocks, anthropic.NewToolUseBlock(tc.ID, input, tc.Function.Name))
	}
	return anthropic.MessageParam{
		Role:    "assistant",
		Content: blocks,
	}
}

// convertTool converts an Argonaut tool to Anthropic format.
func convertTool(tool llm.Tool) anthropic.ToolUnionParam {
	var inputSchema anthropic.ToolInputSchemaParam
	if payload, err := json.Marshal(tool.Function.Parameters); err == nil {
		_ = json.Unmarshal(payload, &inputSchema)
	}
	return anthropic.ToolUnionParam{
		OfTool: &anthropic.ToolParam{
			Name:        tool.Function.Name,
			Description: anthropic.String(tool.Function.Description),
			InputSchema: inputSchema,
		},
	}
}

// convertResponse converts an Anthropic response to Argonaut format.
func convertResponse(message *anthropic.Message) *llm.ChatResponse {
	var text strings.Builder
	var toolCalls []llm.ToolCall

	for _, block := range message.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.Text)
		case "tool_use":
			argsJSON, _ := json.Marshal(block.Input)
			toolCalls = append(toolCalls, llm.ToolCall{
				ID:   block.ID,
				Type: llm.ToolTypeFunction,
				Function: llm.FunctionCall{
					Name:      block.Name,
					Arguments: string(argsJSON),
				},
			})
		}
	}

	return &llm.ChatResponse{
		Content:   text.String(),
		ToolCalls: toolCalls,
		Usage: llm.Usage{
			PromptTokens:     int(message.Usage.InputTokens),
			CompletionTokens: int(message.Usage.OutputTokens),
			TotalTokens:      int(message.Usage.InputTokens + message.Usage.OutputTokens),
		},
	}
}

// Ensure Provider implements llm.Provider.
var _ llm.Provider = (*Provider)(nil)
