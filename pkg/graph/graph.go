// Copyright 2026 © The Argonaut Authors
// SPDX-License-Identifier: Apache-2.0

// Package graph defines the deterministic execution graph the agent runs
// under. The default topology is a single agent node; graphs can also be
// loaded from YAML or JSON files.
package graph

import "fmt"

// Node type identifiers the executor knows about.
const (
	TypeAgent = "agent"
)

// AgentNode is the ID of the agent node in the default topology.
const AgentNode = "agent-argocd"

// Graph defines a deterministic execution graph.
type Graph struct {
	ID    string          `json:"id" yaml:"id"`
	Start string          `json:"start" yaml:"start"`
	Nodes map[string]Node `json:"nodes" yaml:"nodes"`
	Edges []Edge          `json:"edges" yaml:"edges"`
}

// Node represents a step in the graph.
type Node struct {
	ID       string            `json:"id" yaml:"id"`
	Type     string            `json:"type" yaml:"type"`
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Edge defines a transition between nodes.
type Edge struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// Default returns the standard single-agent topology.
func Default() *Graph {
	return &Graph{
		ID:    "agent-argocd",
		Start: AgentNode,
		Nodes: map[string]Node{
			AgentNode: {ID: AgentNode, Type: TypeAgent},
		},
	}
}

// Validate ensures the graph is well-formed for execution.
func (g *Graph) Validate() error {
	if g == nil {
		return fmt.Errorf("graph is nil")
	}
	if len(g.Nodes) == 0 {
		return fmt.Errorf("graph has no nodes")
	}

	for id, node := range g.Nodes {
		if node.ID == "" {
			node.ID = id
			g.Nodes[id] = node
		}
		if node.Type == "" {
			return fmt.Errorf("node %q missing type", node.ID)
		}
	}

	for _, edge := range g.Edges {
		if edge.From == "" || edge.To == "" {
			return fmt.Errorf("edge must include from/to")
		}
		if _, ok := g.Nodes[edge.From]; !ok {
			return fmt.Errorf("edge from %q not found", edge.From)
		}
		if _, ok := g.Nodes[edge.To]; !ok {
			return fmt.Errorf("edge to %q not found", edge.To)
		}
	}
	return nil
}
