// Copyright 2026 © The Argonaut Authors
// SPDX-License-Identifier: Apache-2.0

// Package manifest defines the static capability descriptor for the agent:
// its identity, the environment variables it requires, and the JSON-schema
// shape of the chat-style states it accepts and returns.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"

	"github.com/jllopis/argonaut/pkg/errors"
	"github.com/jllopis/argonaut/pkg/state"
)

// EnvVar declares an environment variable the agent deployment consumes.
type EnvVar struct {
	Name         string `json:"name" yaml:"name"`
	Description  string `json:"description,omitempty" yaml:"description,omitempty"`
	Required     bool   `json:"required,omitempty" yaml:"required,omitempty"`
	DefaultValue string `json:"default_value,omitempty" yaml:"default_value,omitempty"`
}

// Specs carries the JSON schemas of the agent's input and output states.
type Specs struct {
	Input  json.RawMessage `json:"input,omitempty" yaml:"input,omitempty"`
	Output json.RawMessage `json:"output,omitempty" yaml:"output,omitempty"`
}

// Manifest is the agent capability descriptor consumed by the deployment
// tooling.
type Manifest struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Version     string   `json:"version" yaml:"version"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	EnvVars     []EnvVar `json:"env_vars,omitempty" yaml:"env_vars,omitempty"`
	Specs       Specs    `json:"specs" yaml:"specs"`
}

// Default returns the built-in manifest for the ArgoCD agent with schemas
// generated from the state types.
func Default(version string) (*Manifest, error) {
	input, err := generateSchema[state.InputState]()
	if err != nil {
		return nil, err
	}
	output, err := generateSchema[state.OutputState]()
	if err != nil {
		return nil, err
	}
	return &Manifest{
		ID:          "agent-argocd",
		Name:        "ArgoCD Operations Agent",
		Version:     version,
		Description: "Performs create, read, update, and delete operations on ArgoCD applications, projects, and related resources.",
		EnvVars: []EnvVar{
			{Name: "LLM_PROVIDER", Description: "LLM backend: azure-openai, openai, anthropic-claude, google-gemini", Required: true},
			{Name: "ARGOCD_API_URL", Description: "Base URL of the ArgoCD API server", Required: true},
			{Name: "ARGOCD_TOKEN", Description: "ArgoCD API bearer token", Required: true},
			{Name: "ARGOCD_VERIFY_SSL", Description: "Verify the ArgoCD TLS certificate", DefaultValue: "true"},
			{Name: "AZURE_OPENAI_ENDPOINT", Description: "Azure OpenAI endpoint (azure-openai provider)"},
			{Name: "AZURE_OPENAI_DEPLOYMENT", Description: "Azure OpenAI deployment name (azure-openai provider)"},
			{Name: "AZURE_OPENAI_API_KEY", Description: "Azure OpenAI API key (azure-openai provider)"},
			{Name: "AZURE_OPENAI_API_VERSION", Description: "Azure OpenAI API version (azure-openai provider)"},
			{Name: "OPENAI_API_KEY", Description: "OpenAI API key (openai provider)"},
			{Name: "OPENAI_ENDPOINT", Description: "OpenAI-compatible endpoint", DefaultValue: "https://api.openai.com/v1"},
			{Name: "OPENAI_MODEL_NAME", Description: "OpenAI model name", DefaultValue: "gpt-4o-mini"},
			{Name: "ANTHROPIC_API_KEY", Description: "Anthropic API key (anthropic-claude provider)"},
			{Name: "ANTHROPIC_MODEL_NAME", Description: "Anthropic model name"},
			{Name: "GOOGLE_API_KEY", Description: "Google API key (google-gemini provider)"},
			{Name: "GOOGLE_GEMINI_MODEL_NAME", Description: "Gemini model name", DefaultValue: "gemini-2.0-flash"},
			{Name: "WFSM_PORT", Description: "Workflow server listen port"},
			{Name: "API_KEY", Description: "API key required by the workflow server"},
			{Name: "AGENT_ID", Description: "Agent identifier presented to clients", DefaultValue: "agent-argocd"},
		},
		Specs: Specs{Input: input, Output: output},
	}, nil
}

// generateSchema reflects a JSON schema from a Go type. Schemas are inlined
// so the manifest document is self-contained.
func generateSchema[T any]() (json.RawMessage, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)
	payload, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("manifest: schema generation failed: %w", err)
	}
	return payload, nil
}

// Load reads a manifest from a JSON or YAML file, selected by extension.
func Load(path string) (*Manifest, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.CodeConfig, "cannot read manifest", err)
	}
	var m Manifest
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		// Decode YAML through JSON so the schema fields land in the raw
		// JSON specs instead of failing on mapping nodes.
		var doc any
		if err := yaml.Unmarshal(payload, &doc); err != nil {
			return nil, errors.New(errors.CodeInvalidInput, "invalid manifest YAML", err)
		}
		encoded, err := json.Marshal(normalizeYAML(doc))
		if err != nil {
			return nil, errors.New(errors.CodeInvalidInput, "invalid manifest YAML", err)
		}
		if err := json.Unmarshal(encoded, &m); err != nil {
			return nil, errors.New(errors.CodeInvalidInput, "invalid manifest YAML", err)
		}
	default:
		if err := json.Unmarshal(payload, &m); err != nil {
			return nil, errors.New(errors.CodeInvalidInput, "invalid manifest JSON", err)
		}
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// normalizeYAML rewrites interface-keyed maps into string-keyed ones so the
// document can be re-encoded as JSON.
func normalizeYAML(v any) any {
	switch value := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(value))
		for k, item := range value {
			out[k] = normalizeYAML(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(value))
		for k, item := range value {
			out[fmt.Sprint(k)] = normalizeYAML(item)
		}
		return out
	case []any:
		out := make([]any, len(value))
		for i, item := range value {
			out[i] = normalizeYAML(item)
		}
		return out
	default:
		return v
	}
}

// Validate checks identity fields and env var declarations.
func (m *Manifest) Validate() error {
	if m.ID == "" {
		return errors.New(errors.CodeInvalidInput, "manifest id is required", nil)
	}
	if m.Name == "" {
		return errors.New(errors.CodeInvalidInput, "manifest name is required", nil)
	}
	if m.Version == "" {
		return errors.New(errors.CodeInvalidInput, "manifest version is required", nil)
	}
	seen := make(map[string]bool, len(m.EnvVars))
	for _, ev := range m.EnvVars {
		if ev.Name == "" {
			return errors.New(errors.CodeInvalidInput, "env var declaration missing name", nil)
		}
		if seen[ev.Name] {
			return errors.New(errors.CodeInvalidInput,
				fmt.Sprintf("duplicate env var declaration %q", ev.Name), nil)
		}
		seen[ev.Name] = true
	}
	return nil
}

// Check returns the names of declared required environment variables that
// lookup cannot resolve. A nil lookup uses the process environment.
func (m *Manifest) Check(lookup func(string) (string, bool)) []string {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	var missing []string
	for _, ev := range m.EnvVars {
		if !ev.Required {
			continue
		}
		if value, ok := lookup(ev.Name); !ok || value == "" {
			missing = append(missing, ev.Name)
		}
	}
	return missing
}

// JSON renders the manifest as indented JSON.
func (m *Manifest) JSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}
