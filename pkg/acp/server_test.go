// Copyright 2026 © The Argonaut Authors
// SPDX-License-Identifier: Apache-2.0

package acp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jllopis/argonaut/pkg/agent"
	"github.com/jllopis/argonaut/pkg/errors"
	"github.com/jllopis/argonaut/pkg/state"
)

// stubRunner answers every run with a fixed reply or error.
type stubRunner struct {
	reply string
	err   error
	delay time.Duration
}

func (r *stubRunner) Run(ctx context.Context, input state.InputState) (*agent.Result, error) {
	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	output := append([]state.Message(nil), input.Messages...)
	output = append(output, state.Message{Type: state.MsgTypeAssistant, Content: r.reply})
	return &agent.Result{
		Output: state.OutputState{Messages: output},
		Status: agent.StatusCompleted,
	}, nil
}

func newTestServer(t *testing.T, runner Runner, opts ...ServerOption) (*Server, *httptest.Server) {
	t.Helper()
	srv, err := NewServer("agent-argocd", runner, opts...)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return srv, ts
}

func createBody(t *testing.T, agentID, question string) []byte {
	t.Helper()
	req := RunCreateStateless{
		AgentID: agentID,
		Input: state.AgentState{Input: state.InputState{Messages: []state.Message{
			{Type: state.MsgTypeHuman, Content: question},
		}}},
	}
	payload, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return payload
}

func TestServerCreateAndWait(t *testing.T) {
	_, ts := newTestServer(t, &stubRunner{reply: "guestbook is Synced"})

	resp, err := http.Post(ts.URL+"/runs/stateless/wait", "application/json",
		bytes.NewReader(createBody(t, "agent-argocd", "status of guestbook?")))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var wait RunWaitResponse
	if err := json.NewDecoder(resp.Body).Decode(&wait); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if wait.Run.Status != RunSuccess {
		t.Fatalf("run status = %q, want success", wait.Run.Status)
	}
	if wait.Output.Result == nil {
		t.Fatal("missing result output")
	}
	answer, ok := state.LastAssistant(wait.Output.Result.Values.Output.Messages)
	if !ok || answer != "guestbook is Synced" {
		t.Fatalf("answer = %q, ok = %v", answer, ok)
	}
}

func TestServerRunFailure(t *testing.T) {
	runErr := errors.New(errors.CodeLLMError, "LLM call failed", nil)
	_, ts := newTestServer(t, &stubRunner{err: runErr})

	resp, err := http.Post(ts.URL+"/runs/stateless/wait", "application/json",
		bytes.NewReader(createBody(t, "agent-argocd", "status?")))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()

	var wait RunWaitResponse
	if err := json.NewDecoder(resp.Body).Decode(&wait); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if wait.Run.Status != RunError {
		t.Fatalf("run status = %q, want error", wait.Run.Status)
	}
	if wait.Output.Error == nil {
		t.Fatal("missing error output")
	}
	if wait.Output.Error.Errcode != string(errors.CodeLLMError) {
		t.Fatalf("errcode = %q", wait.Output.Error.Errcode)
	}
}

func TestServerAuth(t *testing.T) {
	_, ts := newTestServer(t, &stubRunner{reply: "ok"}, WithAPIKey("secret"))

	resp, err := http.Post(ts.URL+"/runs/stateless/wait", "application/json",
		bytes.NewReader(createBody(t, "agent-argocd", "hello")))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("content type = %q", ct)
	}
	var problem struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&problem); err != nil {
		t.Fatalf("decode problem: %v", err)
	}
	if problem.Title != "Unauthenticated" {
		t.Fatalf("title = %q", problem.Title)
	}

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/runs/stateless/wait",
		bytes.NewReader(createBody(t, "agent-argocd", "hello")))
	req.Header.Set("x-api-key", "secret")
	authed, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("authed POST: %v", err)
	}
	defer authed.Body.Close()
	if authed.StatusCode != http.StatusOK {
		t.Fatalf("authed status = %d, want 200", authed.StatusCode)
	}
}

func TestServerUnknownAgent(t *testing.T) {
	_, ts := newTestServer(t, &stubRunner{reply: "ok"})

	resp, err := http.Post(ts.URL+"/runs/stateless", "application/json",
		bytes.NewReader(createBody(t, "someone-else", "hello")))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestServerBadBody(t *testing.T) {
	_, ts := newTestServer(t, &stubRunner{reply: "ok"})

	for _, body := range []string{"", "{not json"} {
		resp, err := http.Post(ts.URL+"/runs/stateless/wait", "application/json",
			strings.NewReader(body))
		if err != nil {
			t.Fatalf("POST: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("status = %d for body %q, want 400", resp.StatusCode, body)
		}
	}
}

func TestServerGetRun(t *testing.T) {
	_, ts := newTestServer(t, &stubRunner{reply: "done"})

	resp, err := http.Post(ts.URL+"/runs/stateless", "application/json",
		bytes.NewReader(createBody(t, "", "hello")))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	var run RunStateless
	if err := json.NewDecoder(resp.Body).Decode(&run); err != nil {
		t.Fatalf("decode: %v", err)
	}
	resp.Body.Close()
	if run.RunID == "" || run.AgentID != "agent-argocd" {
		t.Fatalf("unexpected run: %+v", run)
	}

	// Poll until the background execution lands.
	deadline := time.Now().Add(5 * time.Second)
	for {
		got, err := http.Get(ts.URL + "/runs/stateless/" + run.RunID)
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		var wait RunWaitResponse
		if err := json.NewDecoder(got.Body).Decode(&wait); err != nil {
			t.Fatalf("decode: %v", err)
		}
		got.Body.Close()
		if wait.Run.Status == RunSuccess {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("run never completed: %+v", wait.Run)
		}
		time.Sleep(10 * time.Millisecond)
	}

	missing, err := http.Get(ts.URL + "/runs/stateless/absent")
	if err != nil {
		t.Fatalf("GET missing: %v", err)
	}
	missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Fatalf("missing status = %d, want 404", missing.StatusCode)
	}
}

func TestServerStream(t *testing.T) {
	_, ts := newTestServer(t, &stubRunner{reply: "streamed answer", delay: 50 * time.Millisecond})

	resp, err := http.Post(ts.URL+"/runs/stateless", "application/json",
		bytes.NewReader(createBody(t, "agent-argocd", "hello")))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	var run RunStateless
	if err := json.NewDecoder(resp.Body).Decode(&run); err != nil {
		t.Fatalf("decode: %v", err)
	}
	resp.Body.Close()

	stream, err := http.Get(ts.URL + "/runs/stateless/" + run.RunID + "/stream")
	if err != nil {
		t.Fatalf("GET stream: %v", err)
	}
	defer stream.Body.Close()
	if ct := stream.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type = %q", ct)
	}

	reader := bufio.NewReader(stream.Body)
	var data string
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read stream: %v", err)
		}
		if strings.HasPrefix(line, "data: ") {
			data = strings.TrimPrefix(strings.TrimSpace(line), "data: ")
			break
		}
	}
	var wait RunWaitResponse
	if err := json.Unmarshal([]byte(data), &wait); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if wait.Run.Status != RunSuccess || wait.Output.Result == nil {
		t.Fatalf("unexpected event: %+v", wait.Run)
	}
}

func TestServerSQLiteStore(t *testing.T) {
	store, err := OpenSQLiteRunStore(t.TempDir() + "/runs.db")
	if err != nil {
		t.Fatalf("OpenSQLiteRunStore: %v", err)
	}
	defer store.Close()
	_, ts := newTestServer(t, &stubRunner{reply: "persisted"}, WithStore(store))

	resp, err := http.Post(ts.URL+"/runs/stateless/wait", "application/json",
		bytes.NewReader(createBody(t, "agent-argocd", "hello")))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()

	var wait RunWaitResponse
	if err := json.NewDecoder(resp.Body).Decode(&wait); err != nil {
		t.Fatalf("decode: %v", err)
	}
	rec, err := store.Get(context.Background(), wait.Run.RunID)
	if err != nil {
		t.Fatalf("store Get: %v", err)
	}
	if rec.Run.Status != RunSuccess {
		t.Fatalf("persisted status = %q", rec.Run.Status)
	}
}

func TestClientAsk(t *testing.T) {
	_, ts := newTestServer(t, &stubRunner{reply: "you have one application: guestbook"}, WithAPIKey("secret"))

	client, err := NewClient(ts.URL, "agent-argocd", WithClientAPIKey("secret"))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	answer, err := client.Ask(context.Background(), "list applications")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if answer != "you have one application: guestbook" {
		t.Fatalf("answer = %q", answer)
	}
}

func TestClientAskRunError(t *testing.T) {
	_, ts := newTestServer(t, &stubRunner{err: errors.New(errors.CodeToolFailure, "tool execution failed", nil)})

	client, err := NewClient(ts.URL, "agent-argocd")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.Ask(context.Background(), "break something"); err == nil {
		t.Fatal("expected error")
	}
}

func TestClientUnauthorized(t *testing.T) {
	_, ts := newTestServer(t, &stubRunner{reply: "ok"}, WithAPIKey("secret"))

	client, err := NewClient(ts.URL, "agent-argocd", WithClientAPIKey("wrong"))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	_, err = client.Ask(context.Background(), "hello")
	ae := errors.AsArgonautError(err)
	if ae == nil || ae.Code != errors.CodeUnauthorized {
		t.Fatalf("unexpected error: %v", err)
	}
}
