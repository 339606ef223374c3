// Copyright 2026 © The Argonaut Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/jllopis/argonaut/pkg/config"
	"github.com/jllopis/argonaut/pkg/graph"
	"github.com/jllopis/argonaut/pkg/state"
)

// runCmd executes a single agent turn through the execution graph and
// prints the output state as JSON.
func runCmd(ctx context.Context, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	var human, assistant stringList
	fs.Var(&human, "human", "human message (repeatable)")
	fs.Var(&assistant, "assistant", "assistant message for conversation history (repeatable)")
	model := fs.String("model", "", "override the configured model")
	graphPath := fs.String("graph", "", "execution graph file (YAML or JSON); defaults to the single-agent graph")
	if err := fs.Parse(args); err != nil {
		fatal(err)
	}
	if len(human) == 0 {
		fatal(fmt.Errorf("at least one --human message is required"))
	}
	if *model != "" {
		cfg.LLM.Model = *model
	}

	logger := setupLogging(cfg)
	shutdown, err := setupTelemetry(cfg)
	if err != nil {
		fatal(err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	a, cleanup, err := buildAgent(ctx, cfg, logger)
	if err != nil {
		fatal(err)
	}
	defer func() { _ = cleanup() }()

	humanMsgs := make([]state.Message, len(human))
	for i, content := range human {
		humanMsgs[i] = state.Message{Type: state.MsgTypeHuman, Content: content}
	}
	assistantMsgs := make([]state.Message, len(assistant))
	for i, content := range assistant {
		assistantMsgs[i] = state.Message{Type: state.MsgTypeAssistant, Content: content}
	}
	input := state.InputState{Messages: state.Interleave(humanMsgs, assistantMsgs)}

	g := graph.Default()
	if *graphPath != "" {
		g, err = graph.Load(*graphPath)
		if err != nil {
			fatal(err)
		}
	}
	exec := graph.NewExecutor(a.Handlers())
	final, err := exec.Execute(ctx, g, graph.NewState(input))
	if err != nil {
		fatal(err)
	}
	payload, err := json.MarshalIndent(final.Agent, "", "  ")
	if err != nil {
		fatal(err)
	}
	fmt.Fprintln(os.Stdout, string(payload))
}
