// Copyright 2026 © The Argonaut Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jllopis/argonaut/pkg/acp"
	"github.com/jllopis/argonaut/pkg/config"
)

// serveCmd runs the workflow server until interrupted.
func serveCmd(ctx context.Context, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", "", "listen address (default from config host:port)")
	if err := fs.Parse(args); err != nil {
		fatal(err)
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

	opts := []acp.ServerOption{acp.WithServerLogger(logger)}
	if cfg.Server.APIKey != "" {
		opts = append(opts, acp.WithAPIKey(cfg.Server.APIKey))
	}
	if cfg.Server.StorePath != "" {
		store, err := acp.OpenSQLiteRunStore(cfg.Server.StorePath)
		if err != nil {
			fatal(err)
		}
		defer store.Close()
		opts = append(opts, acp.WithStore(store))
	}
	srv, err := acp.NewServer(cfg.Server.AgentID, a, opts...)
	if err != nil {
		fatal(err)
	}

	listenAddr := *addr
	if listenAddr == "" {
		listenAddr = fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	}
	httpServer := &http.Server{
		Addr:              listenAddr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("workflow server listening",
		slog.String("addr", listenAddr),
		slog.String("agent_id", cfg.Server.AgentID),
		slog.Bool("auth", cfg.Server.APIKey != ""),
	)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fatal(err)
	}
}
