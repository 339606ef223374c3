// Copyright 2026 © The Argonaut Authors
// SPDX-License-Identifier: Apache-2.0

package factory

import (
	"context"
	"strings"
	"testing"

	"github.com/jllopis/argonaut/pkg/errors"
)

func TestUnsupportedProvider(t *testing.T) {
	_, err := New(context.Background(), "mistral", "")
	if err == nil {
		t.Fatal("expected error for unsupported provider")
	}
	ae := errors.AsArgonautError(err)
	if ae == nil || ae.Code != errors.CodeConfig {
		t.Errorf("expected config error, got %v", err)
	}
	if !strings.Contains(ae.Message, "azure-openai") {
		t.Errorf("expected supported provider list in message, got %q", ae.Message)
	}
}

func TestOpenAIRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := New(context.Background(), "openai", ""); err == nil {
		t.Fatal("expected error without OPENAI_API_KEY")
	}
}

func TestOpenAIProvider(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_MODEL_NAME", "gpt-4o")
	p, err := New(context.Background(), "openai", "")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if p == nil {
		t.Fatal("expected non-nil provider")
	}
}

func TestAzureRequiresAllVars(t *testing.T) {
	t.Setenv("AZURE_OPENAI_ENDPOINT", "https://example.openai.azure.com")
	t.Setenv("AZURE_OPENAI_API_KEY", "test-key")
	t.Setenv("AZURE_OPENAI_API_VERSION", "")
	t.Setenv("AZURE_OPENAI_DEPLOYMENT", "gpt-4o")
	if _, err := New(context.Background(), "azure-openai", ""); err == nil {
		t.Fatal("expected error with missing AZURE_OPENAI_API_VERSION")
	}
}

func TestAzureProvider(t *testing.T) {
	t.Setenv("AZURE_OPENAI_ENDPOINT", "https://example.openai.azure.com")
	t.Setenv("AZURE_OPENAI_API_KEY", "test-key")
	t.Setenv("AZURE_OPENAI_API_VERSION", "2024-06-01")
	t.Setenv("AZURE_OPENAI_DEPLOYMENT", "gpt-4o")
	p, err := New(context.Background(), "azure-openai", "")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if p == nil {
		t.Fatal("expected non-nil provider")
	}
}

func TestAnthropicProvider(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	p, err := New(context.Background(), "anthropic-claude", "claude-sonnet-4-20250514")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if p == nil {
		t.Fatal("expected non-nil provider")
	}
}

func TestGeminiRequiresAPIKey(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")
	if _, err := New(context.Background(), "google-gemini", ""); err == nil {
		t.Fatal("expected error without GOOGLE_API_KEY")
	}
}

func TestProviderNameIsCaseInsensitive(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	p, err := New(context.Background(), " Anthropic-Claude ", "")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if p == nil {
		t.Fatal("expected non-nil provider")
	}
}
