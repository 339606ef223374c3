// Copyright 2026 © The Argonaut Authors
// SPDX-License-Identifier: Apache-2.0

package acp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jllopis/argonaut/pkg/errors"
	"github.com/jllopis/argonaut/pkg/state"
)

// Client talks to a run server.
type Client struct {
	baseURL    string
	apiKey     string
	agentID    string
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithClientHTTPClient overrides the underlying HTTP client.
func WithClientHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithClientAPIKey sets the x-api-key header on every request.
func WithClientAPIKey(key string) ClientOption {
	return func(c *Client) { c.apiKey = key }
}

// NewClient creates a run client for the given server and agent.
func NewClient(baseURL, agentID string, opts ...ClientOption) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New(errors.CodeConfig, "base URL is required", nil)
	}
	if strings.TrimSpace(agentID) == "" {
		return nil, errors.New(errors.CodeConfig, "agent id is required", nil)
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		agentID:    agentID,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CreateAndWait creates a stateless run and blocks until its output.
func (c *Client) CreateAndWait(ctx context.Context, input state.InputState) (*RunWaitResponse, error) {
	req := RunCreateStateless{
		AgentID: c.agentID,
		Input:   state.AgentState{Input: input},
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, errors.New(errors.CodeInternal, "failed to encode run request", err)
	}
	body, err := c.post(ctx, "/runs/stateless/wait", payload)
	if err != nil {
		return nil, err
	}
	resp := &RunWaitResponse{}
	if err := json.Unmarshal(body, resp); err != nil {
		return nil, errors.New(errors.CodeAPIFailure, "failed to decode run response", err)
	}
	return resp, nil
}

// GetRun fetches a run and its output, if terminal.
func (c *Client) GetRun(ctx context.Context, runID string) (*RunWaitResponse, error) {
	body, err := c.get(ctx, "/runs/stateless/"+runID)
	if err != nil {
		return nil, err
	}
	resp := &RunWaitResponse{}
	if err := json.Unmarshal(body, resp); err != nil {
		return nil, errors.New(errors.CodeAPIFailure, "failed to decode run response", err)
	}
	return resp, nil
}

// Ask runs a single question through the agent and returns its answer.
func (c *Client) Ask(ctx context.Context, question string) (string, error) {
	input := state.InputState{Messages: []state.Message{
		{Type: state.MsgTypeHuman, Content: question},
	}}
	resp, err := c.CreateAndWait(ctx, input)
	if err != nil {
		return "", err
	}
	if resp.Output.Error != nil {
		return "", errors.New(errors.CodeAPIFailure, "run failed", nil).
			WithContext("run_id", resp.Output.Error.RunID).
			WithContext("errcode", resp.Output.Error.Errcode).
			WithContext("description", resp.Output.Error.Description)
	}
	if resp.Output.Result == nil || resp.Output.Result.Values.Output == nil {
		return "", errors.New(errors.CodeAPIFailure, "run produced no output", nil)
	}
	answer, ok := state.LastAssistant(resp.Output.Result.Values.Output.Messages)
	if !ok {
		return "", errors.New(errors.CodeAPIFailure, "run output has no assistant message", nil)
	}
	return answer, nil
}

func (c *Client) post(ctx context.Context, path string, payload []byte) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, payload)
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, errors.New(errors.CodeInternal, "failed to build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.New(errors.CodeAPIFailure, "run server request failed", err).
			WithRecoverable(true)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.New(errors.CodeAPIFailure, "failed to read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, clientError(resp.StatusCode, body)
	}
	return body, nil
}

func clientError(statusCode int, body []byte) error {
	detail := strings.TrimSpace(string(body))
	var problem struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &problem); err == nil && problem.Detail != "" {
		detail = problem.Detail
	}
	code := errors.CodeAPIFailure
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		code = errors.CodeUnauthorized
	case http.StatusNotFound:
		code = errors.CodeNotFound
	case http.StatusTooManyRequests:
		code = errors.CodeRateLimit
	case http.StatusGatewayTimeout:
		code = errors.CodeTimeout
	}
	ae := errors.New(code, fmt.Sprintf("run server returned %d: %s", statusCode, detail), nil)
	ae.StatusCode = statusCode
	if statusCode >= 500 || statusCode == http.StatusTooManyRequests {
		ae = ae.WithRecoverable(true)
	}
	return ae
}
