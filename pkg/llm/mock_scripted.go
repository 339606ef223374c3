package llm

import (
	"context"
	"errors"
	"sync"
)

// ScriptedMockProvider is a mock provider that returns a pre-defined sequence
// of responses. Useful for testing multi-turn interactions (e.g. the
// tool-call loop).
type ScriptedMockProvider struct {
	mu        sync.Mutex
	Responses []ChatResponse
	Err       error
	// CallCount tracks how many times Chat has been called
	CallCount int
	// Requests records every request received, newest last.
	Requests []ChatRequest
}

// NewScriptedMockProvider creates a new ScriptedMockProvider with plain text
// responses.
func NewScriptedMockProvider(responses ...string) *ScriptedMockProvider {
	s := &ScriptedMockProvider{}
	for _, content := range responses {
		s.AddResponse(content)
	}
	return s
}

// Chat pops the next scripted response or returns the configured error.
func (s *ScriptedMockProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.CallCount++
	s.Requests = append(s.Requests, req)

	if s.Err != nil {
		return nil, s.Err
	}

	if len(s.Responses) == 0 {
		return nil, errors.New("scripted mock: no more responses available")
	}

	// Pop the first response
	resp := s.Responses[0]
	s.Responses = s.Responses[1:]
	if resp.Usage == (Usage{}) {
		resp.Usage = Usage{PromptTokens: 10, CompletionTokens: 10, TotalTokens: 20}
	}
	return &resp, nil
}

// AddResponse appends a plain text response to the queue.
func (s *ScriptedMockProvider) AddResponse(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Responses = append(s.Responses, ChatResponse{Content: content})
}

// AddToolCall appends a response requesting a single tool call.
func (s *ScriptedMockProvider) AddToolCall(id, name, arguments string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Responses = append(s.Responses, ChatResponse{
		ToolCalls: []ToolCall{{
			ID:   id,
			Type: ToolTypeFunction,
			Function: FunctionCall{
				Name:      name,
				Arguments: arguments,
			},
		}},
	})
}
