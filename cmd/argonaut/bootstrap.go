// Copyright 2026 © The Argonaut Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/jllopis/argonaut/pkg/agent"
	"github.com/jllopis/argonaut/pkg/config"
	"github.com/jllopis/argonaut/pkg/llm/factory"
	"github.com/jllopis/argonaut/pkg/mcp"
	"github.com/jllopis/argonaut/pkg/telemetry"
)

func setupLogging(cfg *config.Config) *slog.Logger {
	return telemetry.ConfigureSlog(os.Stderr, cfg.Log.Level, cfg.Log.Format)
}

func setupTelemetry(cfg *config.Config) (telemetry.ShutdownFunc, error) {
	if !cfg.Telemetry.Enabled {
		return func(context.Context) error { return nil }, nil
	}
	shutdown, err := telemetry.InitWithConfig("argonaut", version, telemetry.Config{
		Exporter:     cfg.Telemetry.Exporter,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		OTLPInsecure: cfg.Telemetry.OTLPInsecure,
	})
	if err != nil {
		return nil, err
	}
	agent.InitErrorMetrics(context.Background())
	return shutdown, nil
}

// buildAgent wires the full agent: the LLM provider from config, the ArgoCD
// tool server spawned as an MCP subprocess of this same binary, and the tool
// adapters bridging the two. The returned cleanup stops the subprocess.
func buildAgent(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*agent.Agent, func() error, error) {
	if err := cfg.ValidateProvider(); err != nil {
		return nil, nil, err
	}
	if err := cfg.ValidateArgoCD(); err != nil {
		return nil, nil, err
	}

	provider, err := factory.New(ctx, cfg.LLM.Provider, cfg.LLM.Model)
	if err != nil {
		return nil, nil, err
	}

	exe, err := os.Executable()
	if err != nil {
		return nil, nil, fmt.Errorf("cannot locate own binary for tool server: %w", err)
	}
	env := []string{
		"ARGOCD_TOKEN=" + cfg.ArgoCD.Token,
		"ARGOCD_API_URL=" + cfg.ArgoCD.APIURL,
		"ARGOCD_VERIFY_SSL=" + strconv.FormatBool(cfg.ArgoCD.VerifySSL),
	}
	client, err := mcp.NewClientWithStdioEnv(exe, env, []string{"mcp"})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start tool server: %w", err)
	}

	tools, err := client.ListTools(ctx)
	if err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to list tools: %w", err)
	}
	adapters, err := mcp.ToolAdapters(tools, client)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	logger.Info("tool server ready", slog.Int("tools", len(adapters)))

	a, err := agent.New(cfg.Server.AgentID, provider,
		agent.WithModel(cfg.LLM.Model),
		agent.WithTools(adapters),
		agent.WithLogger(logger),
	)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return a, client.Close, nil
}
