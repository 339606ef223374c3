// Copyright 2026 © The Argonaut Authors
// SPDX-License-Identifier: Apache-2.0

// Package acp implements the workflow-server protocol binding: stateless
// agent runs created, fetched and streamed over HTTP+JSON.
package acp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jllopis/argonaut/pkg/state"
)

// RunStatus is the lifecycle state of a stateless run.
type RunStatus string

const (
	RunPending RunStatus = "pending"
	RunSuccess RunStatus = "success"
	RunError   RunStatus = "error"
	RunTimeout RunStatus = "timeout"
)

// RunCreateStateless is the request body for creating a stateless run.
type RunCreateStateless struct {
	AgentID  string           `json:"agent_id"`
	Input    state.AgentState `json:"input"`
	Metadata map[string]any   `json:"metadata,omitempty"`
}

// RunStateless describes a run and its lifecycle state.
type RunStateless struct {
	RunID     string    `json:"run_id"`
	AgentID   string    `json:"agent_id"`
	Status    RunStatus `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ResultPayload is the terminal output of a successful run. Values carries
// the full agent state including argocd_output.
type ResultPayload struct {
	Type   string           `json:"type"` // always "result"
	Values state.AgentState `json:"values"`
}

// ErrorPayload is the terminal output of a failed run.
type ErrorPayload struct {
	Type        string `json:"type"` // always "error"
	RunID       string `json:"run_id"`
	Errcode     string `json:"errcode"`
	Description string `json:"description"`
}

// RunOutput is the union of result and error payloads, discriminated by the
// "type" field on the wire.
type RunOutput struct {
	Result *ResultPayload
	Error  *ErrorPayload
}

// MarshalJSON emits whichever branch is set.
func (o RunOutput) MarshalJSON() ([]byte, error) {
	switch {
	case o.Result != nil:
		return json.Marshal(o.Result)
	case o.Error != nil:
		return json.Marshal(o.Error)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes the union by its "type" discriminator.
func (o *RunOutput) UnmarshalJSON(data []byte) error {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	switch head.Type {
	case "result":
		o.Result = &ResultPayload{}
		return json.Unmarshal(data, o.Result)
	case "error":
		o.Error = &ErrorPayload{}
		return json.Unmarshal(data, o.Error)
	case "":
		return nil
	default:
		return fmt.Errorf("acp: unknown run output type %q", head.Type)
	}
}

// RunWaitResponse pairs a run with its terminal output.
type RunWaitResponse struct {
	Run    RunStateless `json:"run"`
	Output RunOutput    `json:"output"`
}
