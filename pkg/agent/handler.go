// Copyright 2026 © The Argonaut Authors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"context"

	"github.com/jllopis/argonaut/pkg/graph"
	"github.com/jllopis/argonaut/pkg/state"
)

// GraphHandler adapts the agent to a graph node handler. The handler reads
// the input conversation from the run state, executes the agent, and stores
// the produced conversation as the run output.
func (a *Agent) GraphHandler() graph.Handler {
	return func(ctx context.Context, _ graph.Node, st *graph.State) (any, error) {
		result, err := a.Run(ctx, st.Agent.Input)
		if err != nil {
			return nil, err
		}
		st.Agent.Output = &result.Output
		if reply, ok := state.LastAssistant(result.Output.Messages); ok {
			return reply, nil
		}
		return "", nil
	}
}

// Handlers returns the handler map for executing the default agent graph.
func (a *Agent) Handlers() map[string]graph.Handler {
	return map[string]graph.Handler{
		graph.TypeAgent: a.GraphHandler(),
	}
}
