// Copyright 2026 © The Argonaut Authors
// SPDX-License-Identifier: Apache-2.0

// Package factory builds llm.Provider instances from the LLM_PROVIDER
// contract. Credentials and model names are read from the environment;
// an explicit model argument wins over the environment.
package factory

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jllopis/argonaut/pkg/errors"
	"github.com/jllopis/argonaut/pkg/llm"
	"github.com/jllopis/argonaut/pkg/llm/anthropic"
	"github.com/jllopis/argonaut/pkg/llm/gemini"
	"github.com/jllopis/argonaut/pkg/llm/openai"
)

// Provider identifiers accepted by New.
const (
	ProviderAzureOpenAI     = "azure-openai"
	ProviderOpenAI          = "openai"
	ProviderAnthropicClaude = "anthropic-claude"
	ProviderGoogleGemini    = "google-gemini"
)

// Supported lists the provider identifiers New accepts, in display order.
var Supported = []string{
	ProviderAzureOpenAI,
	ProviderOpenAI,
	ProviderAnthropicClaude,
	ProviderGoogleGemini,
}

// New builds a provider for the given identifier. The identifier is
// case-insensitive. An empty model falls back to the provider's
// environment-configured model name, then its SDK default.
func New(ctx context.Context, provider, model string) (llm.Provider, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case ProviderAzureOpenAI:
		return newAzureOpenAI(model)
	case ProviderOpenAI:
		return newOpenAI(model)
	case ProviderAnthropicClaude:
		return newAnthropic(model)
	case ProviderGoogleGemini:
		return newGemini(ctx, model)
	default:
		return nil, errors.New(errors.CodeConfig,
			fmt.Sprintf("unsupported LLM provider %q (supported: %s)",
				provider, strings.Join(Supported, ", ")), nil)
	}
}

func newAzureOpenAI(model string) (llm.Provider, error) {
	endpoint := os.Getenv("AZURE_OPENAI_ENDPOINT")
	apiKey := os.Getenv("AZURE_OPENAI_API_KEY")
	apiVersion := os.Getenv("AZURE_OPENAI_API_VERSION")
	deployment := os.Getenv("AZURE_OPENAI_DEPLOYMENT")

	for name, v := range map[string]string{
		"AZURE_OPENAI_ENDPOINT":    endpoint,
		"AZURE_OPENAI_API_KEY":     apiKey,
		"AZURE_OPENAI_API_VERSION": apiVersion,
		"AZURE_OPENAI_DEPLOYMENT":  deployment,
	} {
		if v == "" {
			return nil, errors.New(errors.CodeConfig,
				fmt.Sprintf("azure-openai provider requires %s", name), nil)
		}
	}

	if model != "" {
		deployment = model
	}
	return openai.NewAzure(endpoint, apiKey, apiVersion, deployment), nil
}

func newOpenAI(model string) (llm.Provider, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New(errors.CodeConfig, "openai provider requires OPENAI_API_KEY", nil)
	}

	opts := []openai.Option{openai.WithAPIKey(apiKey)}
	if endpoint := os.Getenv("OPENAI_ENDPOINT"); endpoint != "" {
		opts = append(opts, openai.WithBaseURL(endpoint))
	}
	if model == "" {
		model = os.Getenv("OPENAI_MODEL_NAME")
	}
	if model != "" {
		opts = append(opts, openai.WithModel(model))
	}
	return openai.New(opts...), nil
}

func newAnthropic(model string) (llm.Provider, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil, errors.New(errors.CodeConfig, "anthropic-claude provider requires ANTHROPIC_API_KEY", nil)
	}

	opts := []anthropic.Option{}
	if model == "" {
		model = os.Getenv("ANTHROPIC_MODEL_NAME")
	}
	if model != "" {
		opts = append(opts, anthropic.WithModel(model))
	}
	return anthropic.NewWithAPIKey(apiKey, opts...), nil
}

func newGemini(ctx context.Context, model string) (llm.Provider, error) {
	apiKey := os.Getenv("GOOGLE_API_KEY")
	if apiKey == "" {
		return nil, errors.New(errors.CodeConfig, "google-gemini provider requires GOOGLE_API_KEY", nil)
	}

	opts := []gemini.Option{}
	if model == "" {
		model = os.Getenv("GOOGLE_GEMINI_MODEL_NAME")
	}
	if model != "" {
		opts = append(opts, gemini.WithModel(model))
	}
	p, err := gemini.NewWithAPIKey(ctx, apiKey, opts...)
	if err != nil {
		return nil, errors.New(errors.CodeConfig, "failed to initialize google-gemini provider", err)
	}
	return p, nil
}
