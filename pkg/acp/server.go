// Copyright 2026 © The Argonaut Authors
// SPDX-License-Identifier: Apache-2.0

package acp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/jllopis/argonaut/pkg/agent"
	"github.com/jllopis/argonaut/pkg/errors"
	"github.com/jllopis/argonaut/pkg/state"
	"github.com/jllopis/argonaut/pkg/telemetry"
)

// Runner executes one agent turn. *agent.Agent satisfies it.
type Runner interface {
	Run(ctx context.Context, input state.InputState) (*agent.Result, error)
}

// DefaultRunTimeout bounds background run execution.
const DefaultRunTimeout = 5 * time.Minute

// Server exposes stateless agent runs over HTTP+JSON.
type Server struct {
	agentID    string
	apiKey     string
	runner     Runner
	store      RunStore
	runTimeout time.Duration
	logger     *slog.Logger
	tracer     trace.Tracer

	waiters *waiterSet
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithAPIKey enables x-api-key authentication.
func WithAPIKey(key string) ServerOption {
	return func(s *Server) { s.apiKey = key }
}

// WithStore sets the run store. Defaults to in-memory.
func WithStore(store RunStore) ServerOption {
	return func(s *Server) {
		if store != nil {
			s.store = store
		}
	}
}

// WithRunTimeout bounds background run execution.
func WithRunTimeout(d time.Duration) ServerOption {
	return func(s *Server) {
		if d > 0 {
			s.runTimeout = d
		}
	}
}

// WithServerLogger sets the structured logger used for request events.
func WithServerLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a run server for a single agent.
func NewServer(agentID string, runner Runner, opts ...ServerOption) (*Server, error) {
	if strings.TrimSpace(agentID) == "" {
		return nil, errors.New(errors.CodeConfig, "agent id is required", nil)
	}
	if runner == nil {
		return nil, errors.New(errors.CodeConfig, "runner is required", nil)
	}
	s := &Server{
		agentID:    agentID,
		runner:     runner,
		store:      NewMemoryRunStore(),
		runTimeout: DefaultRunTimeout,
		logger:     slog.Default(),
		tracer:     otel.Tracer("argonaut/acp"),
		waiters:    newWaiterSet(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ServeHTTP routes run requests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(r) {
		writeError(w, status.Error(codes.Unauthenticated, "invalid or missing x-api-key"))
		return
	}
	segments := splitPath(r.URL.Path)
	if len(segments) < 2 || segments[0] != "runs" || segments[1] != "stateless" {
		http.NotFound(w, r)
		return
	}
	rest := segments[2:]
	switch {
	case len(rest) == 0:
		if r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		s.handleCreate(w, r)
	case len(rest) == 1 && rest[0] == "wait":
		if r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		s.handleCreateAndWait(w, r)
	case len(rest) == 1:
		if r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		s.handleGet(w, r, rest[0])
	case len(rest) == 2 && rest[1] == "stream":
		if r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		s.handleStream(w, r, rest[0])
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) authorize(r *http.Request) bool {
	if s.apiKey == "" {
		return true
	}
	return r.Header.Get("x-api-key") == s.apiKey
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeCreate(r)
	if err != nil {
		writeError(w, err)
		return
	}
	run, err := s.createRun(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	// Execute in the background, detached from the request context.
	go s.execute(context.WithoutCancel(r.Context()), run.RunID, req.Input.Input)
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleCreateAndWait(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeCreate(r)
	if err != nil {
		writeError(w, err)
		return
	}
	run, err := s.createRun(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	s.execute(r.Context(), run.RunID, req.Input.Input)
	rec, err := s.store.Get(r.Context(), run.RunID)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := RunWaitResponse{Run: rec.Run}
	if rec.Output != nil {
		resp.Output = *rec.Output
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request, runID string) {
	rec, err := s.store.Get(r.Context(), runID)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := RunWaitResponse{Run: rec.Run}
	if rec.Output != nil {
		resp.Output = *rec.Output
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request, runID string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, status.Error(codes.Internal, "streaming not supported"))
		return
	}
	if _, err := s.store.Get(r.Context(), runID); err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	select {
	case <-s.waiters.done(runID):
	case <-r.Context().Done():
		return
	}

	rec, err := s.store.Get(r.Context(), runID)
	if err != nil {
		return
	}
	resp := RunWaitResponse{Run: rec.Run}
	if rec.Output != nil {
		resp.Output = *rec.Output
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		return
	}
	_, _ = w.Write([]byte("data: "))
	_, _ = w.Write(payload)
	_, _ = w.Write([]byte("\n\n"))
	flusher.Flush()
}

func (s *Server) decodeCreate(r *http.Request) (*RunCreateStateless, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid body")
	}
	if len(body) == 0 {
		return nil, status.Error(codes.InvalidArgument, "empty body")
	}
	req := &RunCreateStateless{}
	if err := json.Unmarshal(body, req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if req.AgentID != "" && req.AgentID != s.agentID {
		return nil, status.Errorf(codes.NotFound, "unknown agent %q", req.AgentID)
	}
	return req, nil
}

func (s *Server) createRun(ctx context.Context, req *RunCreateStateless) (RunStateless, error) {
	now := time.Now().UTC()
	run := RunStateless{
		RunID:     uuid.NewString(),
		AgentID:   s.agentID,
		Status:    RunPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, run); err != nil {
		return RunStateless{}, err
	}
	s.waiters.register(run.RunID)
	s.logger.InfoContext(ctx, "acp.run.created",
		slog.String("run_id", run.RunID),
		slog.String("agent_id", run.AgentID),
	)
	return run, nil
}

// execute drives a run to its terminal state and records the outcome.
func (s *Server) execute(ctx context.Context, runID string, input state.InputState) {
	ctx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()
	ctx, span := s.tracer.Start(ctx, "ACP.Run")
	defer span.End()
	defer s.waiters.complete(runID)

	// Store writes must land even when the run context expired.
	storeCtx := context.WithoutCancel(ctx)

	result, err := s.runner.Run(ctx, input)
	if err != nil {
		runStatus := RunError
		if ctx.Err() != nil {
			runStatus = RunTimeout
		}
		span.SetAttributes(telemetry.RunAttributes(runID, s.agentID, string(runStatus))...)
		s.logger.ErrorContext(ctx, "acp.run.failed",
			slog.String("run_id", runID),
			slog.String("error", err.Error()),
		)
		output := RunOutput{Error: &ErrorPayload{
			Type:        "error",
			RunID:       runID,
			Errcode:     errcodeFromError(err),
			Description: err.Error(),
		}}
		if storeErr := s.store.Complete(storeCtx, runID, runStatus, output); storeErr != nil {
			s.logger.ErrorContext(ctx, "acp.run.store_error",
				slog.String("run_id", runID),
				slog.String("error", storeErr.Error()),
			)
		}
		return
	}

	values := state.AgentState{Input: input, Output: &result.Output}
	output := RunOutput{Result: &ResultPayload{Type: "result", Values: values}}
	span.SetAttributes(telemetry.RunAttributes(runID, s.agentID, string(RunSuccess))...)
	s.logger.InfoContext(ctx, "acp.run.completed",
		slog.String("run_id", runID),
		slog.String("status", string(result.Status)),
	)
	if storeErr := s.store.Complete(storeCtx, runID, RunSuccess, output); storeErr != nil {
		s.logger.ErrorContext(ctx, "acp.run.store_error",
			slog.String("run_id", runID),
			slog.String("error", storeErr.Error()),
		)
	}
}

func errcodeFromError(err error) string {
	if ae := errors.AsArgonautError(err); ae != nil {
		return string(ae.Code)
	}
	return string(errors.CodeInternal)
}

// waiterSet tracks completion channels for in-flight runs.
type waiterSet struct {
	mu    sync.Mutex
	chans map[string]chan struct{}
}

func newWaiterSet() *waiterSet {
	return &waiterSet{chans: make(map[string]chan struct{})}
}

func (w *waiterSet) register(runID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.chans[runID]; !ok {
		w.chans[runID] = make(chan struct{})
	}
}

// done returns a channel closed when the run completes. Unknown runs get a
// closed channel: their record is already terminal or absent.
func (w *waiterSet) done(runID string) <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	if ch, ok := w.chans[runID]; ok {
		return ch
	}
	closed := make(chan struct{})
	close(closed)
	return closed
}

func (w *waiterSet) complete(runID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if ch, ok := w.chans[runID]; ok {
		close(ch)
		delete(w.chans, runID)
	}
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError renders a problem+json body from a gRPC status or a typed
// domain error.
func writeError(w http.ResponseWriter, err error) {
	st, ok := status.FromError(err)
	if !ok {
		st = status.New(grpcCodeFromError(err), err.Error())
	}
	code := httpStatusFromCode(st.Code())
	body := map[string]interface{}{
		"type":   "about:blank",
		"title":  st.Code().String(),
		"detail": st.Message(),
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func grpcCodeFromError(err error) codes.Code {
	ae := errors.AsArgonautError(err)
	if ae == nil {
		return codes.Unknown
	}
	switch ae.Code {
	case errors.CodeInvalidInput:
		return codes.InvalidArgument
	case errors.CodeNotFound:
		return codes.NotFound
	case errors.CodeUnauthorized:
		return codes.Unauthenticated
	case errors.CodeTimeout:
		return codes.DeadlineExceeded
	case errors.CodeRateLimit:
		return codes.ResourceExhausted
	case errors.CodeConfig:
		return codes.FailedPrecondition
	default:
		return codes.Internal
	}
}

func httpStatusFromCode(code codes.Code) int {
	switch code {
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.NotFound:
		return http.StatusNotFound
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.Unimplemented:
		return http.StatusNotImplemented
	case codes.FailedPrecondition:
		return http.StatusConflict
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
