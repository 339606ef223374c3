// Copyright 2026 © The Argonaut Authors
// SPDX-License-Identifier: Apache-2.0

// Package toolserver exposes the ArgoCD REST API as MCP tools. Each tool
// corresponds to one API operation and is named after the upstream gRPC
// service method, so models can map documentation onto tool calls.
package toolserver

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/jllopis/argonaut/pkg/argocd"
	"github.com/jllopis/argonaut/pkg/telemetry"
)

// Server is an MCP server backed by an ArgoCD API client.
type Server struct {
	client    *argocd.Client
	logger    *slog.Logger
	tracer    trace.Tracer
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a tool server with the full ArgoCD tool catalog registered.
func New(client *argocd.Client, version string, opts ...Option) *Server {
	s := &Server{
		client: client,
		logger: slog.Default(),
		tracer: otel.Tracer("argonaut/toolserver"),
		mcpServer: server.NewMCPServer(
			"argonaut-argocd",
			version,
			server.WithToolCapabilities(false),
		),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	for _, def := range catalog {
		s.register(def)
	}
	return s
}

// ServeStdio serves the MCP protocol over stdin/stdout. Blocks until the
// stream closes.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeHTTP serves the MCP protocol over streamable HTTP on addr.
func (s *Server) ServeHTTP(addr string) error {
	return server.NewStreamableHTTPServer(s.mcpServer).Start(addr)
}

// MCPServer exposes the underlying server, mainly for in-process transports
// in tests.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ToolNames returns the registered tool names in catalog order.
func ToolNames() []string {
	names := make([]string, 0, len(catalog))
	for _, def := range catalog {
		names = append(names, def.Name)
	}
	return names
}

func (s *Server) register(def toolDef) {
	opts := []mcp.ToolOption{mcp.WithDescription(def.Description)}
	if def.HasBody {
		opts = append(opts, mcp.WithString("body",
			mcp.Required(),
			mcp.Description(def.BodyDesc),
		))
	}
	for _, p := range def.Params {
		opts = append(opts, mcp.WithString(p.Arg, mcp.Description(p.Description)))
	}

	s.mcpServer.AddTool(mcp.NewTool(def.Name, opts...), s.handler(def))
}

// handler builds the tool handler for one catalog entry. Errors from the
// API surface as tool errors, never as protocol errors, so the model can
// react to them.
func (s *Server) handler(def toolDef) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx, span := s.tracer.Start(ctx, "tool."+def.Name)
		defer span.End()
		start := time.Now()

		args := request.GetArguments()

		var body []byte
		if def.HasBody {
			raw, ok := args["body"].(string)
			if !ok || raw == "" {
				return mcp.NewToolResultError("body argument is required"), nil
			}
			body = []byte(raw)
		}

		query := url.Values{}
		for _, p := range def.Params {
			if v, ok := args[p.Arg].(string); ok && v != "" {
				key := p.Query
				if key == "" {
					key = p.Arg
				}
				query.Set(key, v)
			}
		}

		payload, err := s.client.Do(ctx, def.Method, def.Path, query, body)
		elapsed := float64(time.Since(start).Microseconds()) / 1000
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(telemetry.ToolCallAttributes(def.Name, "", elapsed, false)...)
			s.logger.ErrorContext(ctx, "tool call failed", "tool", def.Name, "error", err)
			return mcp.NewToolResultError(err.Error()), nil
		}

		span.SetAttributes(telemetry.ToolCallAttributes(def.Name, "", elapsed, true)...)
		s.logger.DebugContext(ctx, "tool call completed", "tool", def.Name, "duration_ms", elapsed)
		return mcp.NewToolResultText(string(payload)), nil
	}
}
