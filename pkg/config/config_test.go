package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8123 {
		t.Errorf("expected default port 8123, got %d", cfg.Server.Port)
	}
	if cfg.Server.AgentID != "agent-argocd" {
		t.Errorf("expected default agent id agent-argocd, got %s", cfg.Server.AgentID)
	}
	if !cfg.ArgoCD.VerifySSL {
		t.Errorf("expected verify_ssl to default to true")
	}
}

func TestLoadWellKnownEnv(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("ARGOCD_API_URL", "https://argocd.example.com")
	t.Setenv("ARGOCD_TOKEN", "secret")
	t.Setenv("ARGOCD_VERIFY_SSL", "false")
	t.Setenv("WFSM_PORT", "9000")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.LLM.Provider != "openai" {
		t.Errorf("expected provider openai from env, got %s", cfg.LLM.Provider)
	}
	if cfg.ArgoCD.APIURL != "https://argocd.example.com" {
		t.Errorf("expected api url from env, got %s", cfg.ArgoCD.APIURL)
	}
	if cfg.ArgoCD.VerifySSL {
		t.Errorf("expected verify_ssl false from env")
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000 from WFSM_PORT, got %d", cfg.Server.Port)
	}
}

func TestLoadFile(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
llm:
  provider: "anthropic-claude"
  model: "claude-sonnet-4-5"
argocd:
  api_url: "https://argocd.internal"
log:
  level: "debug"
`
	path := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LLM.Provider != "anthropic-claude" {
		t.Errorf("expected provider anthropic-claude, got %s", cfg.LLM.Provider)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Log.Level)
	}
}

func TestLoadEnvFileRequiredMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.env")
	err := LoadEnvFile(missing, true)
	if err == nil {
		t.Fatal("expected error for missing required env file")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected 'not found' in error, got %v", err)
	}
}

func TestLoadEnvFileOptionalMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.env")
	if err := LoadEnvFile(missing, false); err != nil {
		t.Errorf("expected optional missing env file to be skipped, got %v", err)
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("ARGONAUT_TEST_VALUE=42\n"), 0644); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	defer os.Unsetenv("ARGONAUT_TEST_VALUE")

	if err := LoadEnvFile(path, true); err != nil {
		t.Fatalf("LoadEnvFile failed: %v", err)
	}
	if os.Getenv("ARGONAUT_TEST_VALUE") != "42" {
		t.Errorf("expected env var from file to be set")
	}
}

func TestValidateArgoCD(t *testing.T) {
	cfg := &Config{}
	if err := cfg.ValidateArgoCD(); err == nil {
		t.Error("expected error for missing api url")
	}
	cfg.ArgoCD.APIURL = "https://argocd.example.com"
	if err := cfg.ValidateArgoCD(); err == nil {
		t.Error("expected error for missing token")
	}
	cfg.ArgoCD.Token = "token"
	if err := cfg.ValidateArgoCD(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestValidateProvider(t *testing.T) {
	cfg := &Config{}
	if err := cfg.ValidateProvider(); err == nil {
		t.Error("expected error for empty provider")
	}

	cfg.LLM.Provider = "watsonx"
	if err := cfg.ValidateProvider(); err == nil {
		t.Error("expected error for unsupported provider")
	}

	cfg.LLM.Provider = "openai"
	t.Setenv("OPENAI_API_KEY", "")
	if err := cfg.ValidateProvider(); err == nil {
		t.Error("expected error for missing OPENAI_API_KEY")
	}
	t.Setenv("OPENAI_API_KEY", "sk-test")
	if err := cfg.ValidateProvider(); err != nil {
		t.Errorf("expected valid provider, got %v", err)
	}

	cfg.LLM.Provider = "azure-openai"
	t.Setenv("AZURE_OPENAI_ENDPOINT", "https://example.openai.azure.com")
	t.Setenv("AZURE_OPENAI_DEPLOYMENT", "gpt-4o")
	t.Setenv("AZURE_OPENAI_API_KEY", "key")
	if err := cfg.ValidateProvider(); err == nil {
		t.Error("expected error while AZURE_OPENAI_API_VERSION is missing")
	}
	t.Setenv("AZURE_OPENAI_API_VERSION", "2024-06-01")
	if err := cfg.ValidateProvider(); err != nil {
		t.Errorf("expected valid azure provider, got %v", err)
	}
}
