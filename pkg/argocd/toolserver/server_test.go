// Copyright 2026 © The Argonaut Authors
// SPDX-License-Identifier: Apache-2.0

package toolserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jllopis/argonaut/pkg/argocd"
)

func TestCatalogIntegrity(t *testing.T) {
	seen := make(map[string]bool)
	for _, def := range catalog {
		if seen[def.Name] {
			t.Errorf("duplicate tool name %s", def.Name)
		}
		seen[def.Name] = true

		if !strings.Contains(def.Name, "Service_") {
			t.Errorf("tool %s does not follow the service naming convention", def.Name)
		}
		if !strings.HasPrefix(def.Path, "/api/") {
			t.Errorf("tool %s has unexpected path %s", def.Name, def.Path)
		}
		switch def.Method {
		case http.MethodGet, http.MethodDelete:
			if def.HasBody {
				t.Errorf("tool %s: %s requests must not carry a body", def.Name, def.Method)
			}
		case http.MethodPost, http.MethodPut:
			if !def.HasBody {
				t.Errorf("tool %s: %s requests must carry a body", def.Name, def.Method)
			}
		default:
			t.Errorf("tool %s has unexpected method %s", def.Name, def.Method)
		}
	}

	for _, name := range []string{
		"ApplicationService_List",
		"ApplicationService_Create",
		"ClusterService_List",
		"ProjectService_Create",
		"SessionService_GetUserInfo",
		"VersionService_Version",
	} {
		if !seen[name] {
			t.Errorf("expected tool %s in catalog", name)
		}
	}
}

func newTestServer(t *testing.T, backend http.HandlerFunc) *Server {
	t.Helper()
	api := httptest.NewServer(backend)
	t.Cleanup(api.Close)

	client, err := argocd.New(api.URL, "test-token")
	if err != nil {
		t.Fatalf("argocd.New failed: %v", err)
	}
	return New(client, "0.1.0-test")
}

func findDef(t *testing.T, name string) toolDef {
	t.Helper()
	for _, def := range catalog {
		if def.Name == name {
			return def
		}
	}
	t.Fatalf("tool %s not in catalog", name)
	return toolDef{}
}

func callReq(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := mcp.AsTextContent(result.Content[0])
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	return text.Text
}

func TestListToolForwardsQueryParams(t *testing.T) {
	var gotPath, gotQuery string
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("project")
		w.Write([]byte(`{"items":[{"metadata":{"name":"guestbook"}}]}`))
	})

	handler := srv.handler(findDef(t, "ApplicationService_List"))
	result, err := handler(context.Background(), callReq(map[string]interface{}{
		"project": "default",
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, result))
	}
	if gotPath != "/api/v1/applications" {
		t.Errorf("expected applications path, got %s", gotPath)
	}
	if gotQuery != "default" {
		t.Errorf("expected project=default, got %q", gotQuery)
	}
	if !strings.Contains(resultText(t, result), "guestbook") {
		t.Errorf("expected backend payload in result")
	}
}

func TestRenamedQueryParam(t *testing.T) {
	var gotIDType string
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotIDType = r.URL.Query().Get("id.type")
		w.Write([]byte(`{}`))
	})

	handler := srv.handler(findDef(t, "ClusterService_List"))
	if _, err := handler(context.Background(), callReq(map[string]interface{}{
		"idType": "name",
	})); err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if gotIDType != "name" {
		t.Errorf("expected id.type=name, got %q", gotIDType)
	}
}

func TestCreateToolRequiresBody(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("backend must not be called without a body")
	})

	handler := srv.handler(findDef(t, "ApplicationService_Create"))
	result, err := handler(context.Background(), callReq(nil))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if !result.IsError {
		t.Error("expected tool error when body is missing")
	}
}

func TestCreateToolSendsBody(t *testing.T) {
	var gotMethod, gotBody string
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = string(buf)
		w.Write([]byte(`{"metadata":{"name":"guestbook"}}`))
	})

	handler := srv.handler(findDef(t, "ApplicationService_Create"))
	result, err := handler(context.Background(), callReq(map[string]interface{}{
		"body":   `{"metadata":{"name":"guestbook"}}`,
		"upsert": "true",
	}))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, result))
	}
	if gotMethod != http.MethodPost {
		t.Errorf("expected POST, got %s", gotMethod)
	}
	if !strings.Contains(gotBody, "guestbook") {
		t.Errorf("expected body forwarded, got %q", gotBody)
	}
}

func TestAPIErrorsBecomeToolErrors(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid session"}`))
	})

	handler := srv.handler(findDef(t, "SessionService_GetUserInfo"))
	result, err := handler(context.Background(), callReq(nil))
	if err != nil {
		t.Fatalf("handler must not return protocol errors, got %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error for 401")
	}
	if !strings.Contains(resultText(t, result), "invalid session") {
		t.Errorf("expected upstream detail in tool error, got %s", resultText(t, result))
	}
}

func TestToolNames(t *testing.T) {
	names := ToolNames()
	if len(names) != len(catalog) {
		t.Fatalf("expected %d names, got %d", len(catalog), len(names))
	}
	if names[0] != catalog[0].Name {
		t.Errorf("expected catalog order preserved")
	}
}
