// Copyright 2026 © The Argonaut Authors
// SPDX-License-Identifier: Apache-2.0

// Package agent implements the ArgoCD operations agent: an LLM tool-call
// loop over the ArgoCD MCP toolset with OTEL tracing and structured logging.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jllopis/argonaut/pkg/errors"
	"github.com/jllopis/argonaut/pkg/llm"
	"github.com/jllopis/argonaut/pkg/mcp"
	"github.com/jllopis/argonaut/pkg/state"
	"github.com/jllopis/argonaut/pkg/telemetry"
)

// SystemInstruction is the agent's system prompt. It scopes the model to
// ArgoCD resource management and instructs it to rely on the mounted tools.
const SystemInstruction = "You are an expert assistant for managing ArgoCD resources. " +
	"Your sole purpose is to help users perform CRUD (Create, Read, Update, Delete) operations " +
	"on ArgoCD applications, projects, and related resources. " +
	"Always use the available ArgoCD tools to interact with the ArgoCD API and provide accurate, " +
	"actionable responses. " +
	"If the user asks about anything unrelated to ArgoCD or its resources, politely state that " +
	"you can only assist with ArgoCD operations. " +
	"Do not attempt to answer unrelated questions or use tools for other purposes."

// DefaultMaxIterations bounds how many LLM round-trips a single run may take.
const DefaultMaxIterations = 10

// Status is the terminal state of an agent run.
type Status string

const (
	StatusCompleted     Status = "completed"
	StatusInputRequired Status = "input_required"
	StatusError         Status = "error"
)

// Result is the outcome of an agent run: the full output conversation, the
// terminal status, and aggregate token usage across all LLM calls.
type Result struct {
	Output state.OutputState `json:"output"`
	Status Status            `json:"status"`
	Usage  llm.Usage         `json:"usage"`
}

// Agent runs the tool-call loop against an LLM provider and a toolset.
type Agent struct {
	id            string
	provider      llm.Provider
	model         string
	tools         []mcp.Tool
	toolsByName   map[string]mcp.Tool
	toolDefs      []llm.Tool
	instruction   string
	maxIterations int
	logger        *slog.Logger
	tracer        trace.Tracer
}

// Option configures an Agent instance.
type Option func(*Agent) error

// New creates an agent bound to an LLM provider. Tools are optional; an
// agent without tools degrades to a plain chat turn.
func New(id string, provider llm.Provider, opts ...Option) (*Agent, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New(errors.CodeInvalidInput, "agent id is required", nil)
	}
	if provider == nil {
		return nil, errors.New(errors.CodeConfig, "agent requires an LLM provider", nil)
	}
	a := &Agent{
		id:            id,
		provider:      provider,
		instruction:   SystemInstruction,
		maxIterations: DefaultMaxIterations,
		logger:        slog.Default(),
		tracer:        otel.Tracer("argonaut/agent"),
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// WithModel sets the model identifier passed on chat requests. Providers
// apply their own default when empty.
func WithModel(model string) Option {
	return func(a *Agent) error {
		a.model = model
		return nil
	}
}

// WithTools mounts the toolset the model may call.
func WithTools(tools []mcp.Tool) Option {
	return func(a *Agent) error {
		a.tools = append([]mcp.Tool(nil), tools...)
		a.toolsByName = make(map[string]mcp.Tool, len(tools))
		a.toolDefs = make([]llm.Tool, 0, len(tools))
		for _, tool := range tools {
			if tool == nil {
				return errors.New(errors.CodeConfig, "nil tool in agent toolset", nil)
			}
			a.toolsByName[tool.Name()] = tool
			a.toolDefs = append(a.toolDefs, tool.ToolDefinition())
		}
		return nil
	}
}

// WithSystemInstruction overrides the default system prompt.
func WithSystemInstruction(instruction string) Option {
	return func(a *Agent) error {
		if strings.TrimSpace(instruction) == "" {
			return errors.New(errors.CodeInvalidInput, "system instruction cannot be empty", nil)
		}
		a.instruction = instruction
		return nil
	}
}

// WithMaxIterations bounds the number of LLM round-trips per run.
func WithMaxIterations(n int) Option {
	return func(a *Agent) error {
		if n < 1 {
			return errors.New(errors.CodeInvalidInput, "max iterations must be at least 1", nil)
		}
		a.maxIterations = n
		return nil
	}
}

// WithLogger sets the structured logger used for run events.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) error {
		if logger != nil {
			a.logger = logger
		}
		return nil
	}
}

// ID returns the agent identifier.
func (a *Agent) ID() string { return a.id }

// ToolNames returns the names of the mounted tools in mount order.
func (a *Agent) ToolNames() []string {
	names := make([]string, len(a.tools))
	for i, tool := range a.tools {
		names[i] = tool.Name()
	}
	return names
}

// Run executes one agent turn: it takes the most recent human message from
// the input conversation, drives the tool-call loop until the model produces
// a final answer, and returns the input messages extended with the
// assistant's reply.
func (a *Agent) Run(ctx context.Context, input state.InputState) (*Result, error) {
	runID := uuid.NewString()
	ctx, span := a.tracer.Start(ctx, "Agent.Run")
	defer span.End()
	span.SetAttributes(telemetry.AgentAttributes(a.id, runID, 0, a.maxIterations)...)

	question, ok := state.LastHuman(input.Messages)
	if !ok || strings.TrimSpace(question) == "" {
		err := errors.New(errors.CodeInvalidInput, "no human message found in input", nil).
			WithContext("run_id", runID)
		span.SetAttributes(telemetry.RunAttributes(runID, a.id, string(StatusInputRequired))...)
		return &Result{Status: StatusInputRequired}, err
	}

	initMetrics()
	runCounter.Add(ctx, 1)
	start := time.Now()
	// Latency is recorded for every terminal path, not only completions.
	defer func() {
		runLatencyMs.Record(ctx, time.Since(start).Seconds()*1000)
	}()

	a.logger.InfoContext(ctx, "agent.run.start",
		slog.String("agent_id", a.id),
		slog.String("run_id", runID),
		slog.Int("tools", len(a.tools)),
	)

	messages := a.seedMessages(input)
	var usage llm.Usage
	final := ""

	for iteration := 1; iteration <= a.maxIterations; iteration++ {
		span.SetAttributes(telemetry.AgentAttributes(a.id, runID, iteration, a.maxIterations)...)

		resp, err := a.chat(ctx, messages)
		if err != nil {
			errorCounter.Add(ctx, 1)
			ae := WrapLLMError(err, a.model)
			if em := GetErrorMetrics(); em != nil {
				em.RecordError(ctx, ae, "agent-llm")
			}
			a.logger.ErrorContext(ctx, "agent.llm.error",
				slog.String("agent_id", a.id),
				slog.String("run_id", runID),
				slog.Int("iteration", iteration),
				slog.String("error", err.Error()),
			)
			span.SetAttributes(telemetry.RunAttributes(runID, a.id, string(StatusError))...)
			return &Result{Status: StatusError, Usage: usage}, ae
		}
		usage.PromptTokens += resp.Usage.PromptTokens
		usage.CompletionTokens += resp.Usage.CompletionTokens
		usage.TotalTokens += resp.Usage.TotalTokens

		if len(resp.ToolCalls) == 0 {
			final = strings.TrimSpace(resp.Content)
			break
		}

		messages = append(messages, llm.Message{
			Role:      llm.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})
		for _, call := range resp.ToolCalls {
			messages = append(messages, a.executeToolCall(ctx, runID, call))
		}
	}

	if final == "" {
		// The model never produced a closing answer. Surface the raw tool
		// results rather than an empty reply, matching how operators expect
		// a truncated run to degrade.
		final = lastToolResults(messages)
	}
	if final == "" {
		errorCounter.Add(ctx, 1)
		ae := WrapTimeoutError(
			fmt.Errorf("no final response after %d iterations", a.maxIterations),
			"agent.run", a.maxIterations,
		)
		span.SetAttributes(telemetry.RunAttributes(runID, a.id, string(StatusError))...)
		return &Result{Status: StatusError, Usage: usage}, ae
	}

	span.SetAttributes(telemetry.RunAttributes(runID, a.id, string(StatusCompleted))...)
	a.logger.InfoContext(ctx, "agent.run.complete",
		slog.String("agent_id", a.id),
		slog.String("run_id", runID),
		slog.Int("total_tokens", usage.TotalTokens),
	)

	output := make([]state.Message, 0, len(input.Messages)+1)
	output = append(output, input.Messages...)
	output = append(output, state.Message{Type: state.MsgTypeAssistant, Content: final})
	return &Result{
		Output: state.OutputState{Messages: output},
		Status: StatusCompleted,
		Usage:  usage,
	}, nil
}

// seedMessages builds the provider conversation from the system instruction
// and the input history.
func (a *Agent) seedMessages(input state.InputState) []llm.Message {
	messages := make([]llm.Message, 0, len(input.Messages)+1)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: a.instruction})
	for _, msg := range input.Messages {
		role := llm.RoleUser
		if msg.Type.IsAssistant() {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.Message{Role: role, Content: msg.Content})
	}
	return messages
}

func (a *Agent) chat(ctx context.Context, messages []llm.Message) (*llm.ChatResponse, error) {
	llmStart := time.Now()
	llmCtx, llmSpan := a.tracer.Start(ctx, "Agent.LLM.Chat")
	llmSpan.SetAttributes(telemetry.LLMAttributes(a.model, "", len(messages), 0)...)
	resp, err := a.provider.Chat(llmCtx, llm.ChatRequest{
		Model:    a.model,
		Messages: messages,
		Tools:    a.toolDefs,
	})
	durationMs := time.Since(llmStart).Seconds() * 1000
	if resp != nil {
		llmSpan.SetAttributes(telemetry.LLMAttributes(a.model, "", len(messages), len(resp.ToolCalls))...)
		llmSpan.SetAttributes(telemetry.LLMUsageAttributes(resp.Usage.PromptTokens, resp.Usage.CompletionTokens, durationMs)...)
	}
	llmSpan.End()
	llmLatencyMs.Record(ctx, durationMs)
	return resp, err
}

// executeToolCall runs a single tool call and returns the tool-role message
// to feed back to the model. Tool failures become message content, not run
// failures: the model sees the error and can adjust or report it.
func (a *Agent) executeToolCall(ctx context.Context, runID string, call llm.ToolCall) llm.Message {
	name := call.Function.Name
	tool := a.toolsByName[name]

	toolStart := time.Now()
	toolCtx, toolSpan := a.tracer.Start(ctx, "Agent.Tool.Call")

	var content string
	var callErr error
	if tool == nil {
		callErr = errors.New(errors.CodeNotFound, fmt.Sprintf("tool %q is not available", name), nil)
	} else {
		var result any
		result, callErr = tool.Call(toolCtx, call.Function.Arguments)
		if callErr == nil {
			content = stringifyToolResult(result)
		}
	}
	durationMs := time.Since(toolStart).Seconds() * 1000
	toolSpan.SetAttributes(telemetry.ToolCallAttributes(name, call.ID, durationMs, callErr == nil)...)
	toolSpan.SetAttributes(telemetry.ToolCallArgsResult(call.Function.Arguments, content, 500)...)
	toolSpan.End()
	toolLatencyMs.Record(ctx, durationMs, metric.WithAttributes(
		attribute.String("tool.name", name),
	))

	if callErr != nil {
		ae := WrapToolError(callErr, name, call.ID)
		if em := GetErrorMetrics(); em != nil {
			em.RecordError(ctx, ae, "agent-tool")
		}
		a.logger.WarnContext(ctx, "agent.tool.error",
			slog.String("agent_id", a.id),
			slog.String("run_id", runID),
			slog.String("tool", name),
			slog.String("tool_call_id", call.ID),
			slog.String("error", callErr.Error()),
		)
		content = "tool error: " + callErr.Error()
	} else {
		a.logger.InfoContext(ctx, "agent.tool.complete",
			slog.String("agent_id", a.id),
			slog.String("run_id", runID),
			slog.String("tool", name),
			slog.String("tool_call_id", call.ID),
		)
	}

	return llm.Message{
		Role:       llm.RoleTool,
		Content:    content,
		ToolCallID: call.ID,
	}
}

func stringifyToolResult(result any) string {
	switch v := result.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// lastToolResults joins the tool outputs from the most recent round of tool
// calls, newest round only.
func lastToolResults(messages []llm.Message) string {
	var results []string
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != llm.RoleTool {
			break
		}
		if content := strings.TrimSpace(messages[i].Content); content != "" {
			results = append([]string{content}, results...)
		}
	}
	return strings.Join(results, "\n")
}
