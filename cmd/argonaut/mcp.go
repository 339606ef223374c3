// Copyright 2026 © The Argonaut Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"log/slog"

	"github.com/jllopis/argonaut/pkg/argocd"
	"github.com/jllopis/argonaut/pkg/argocd/toolserver"
	"github.com/jllopis/argonaut/pkg/config"
)

// mcpCmd runs the ArgoCD MCP tool server on stdio (the subprocess transport
// used by the agent) or on streamable HTTP.
func mcpCmd(_ context.Context, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	httpAddr := fs.String("http", "", "serve streamable HTTP on this address instead of stdio")
	if err := fs.Parse(args); err != nil {
		fatal(err)
	}
	if err := cfg.ValidateArgoCD(); err != nil {
		fatal(err)
	}

	// On stdio, stdout belongs to the protocol: logs must go to stderr,
	// which setupLogging already guarantees.
	logger := setupLogging(cfg)

	var opts []argocd.Option
	if !cfg.ArgoCD.VerifySSL {
		opts = append(opts, argocd.WithInsecureSkipVerify())
	}
	opts = append(opts, argocd.WithLogger(logger))
	client, err := argocd.New(cfg.ArgoCD.APIURL, cfg.ArgoCD.Token, opts...)
	if err != nil {
		fatal(err)
	}

	srv := toolserver.New(client, version, toolserver.WithLogger(logger))
	if *httpAddr != "" {
		logger.Info("tool server listening", slog.String("addr", *httpAddr))
		if err := srv.ServeHTTP(*httpAddr); err != nil {
			fatal(err)
		}
		return
	}
	if err := srv.ServeStdio(); err != nil {
		fatal(err)
	}
}
