// Package config loads Argonaut configuration from defaults, an optional
// YAML file, and the environment. Well-known environment variables declared
// by the agent manifest (ARGOCD_API_URL, ARGOCD_TOKEN, LLM_PROVIDER, ...)
// take precedence over file values.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/jllopis/argonaut/pkg/errors"
)

type Config struct {
	Log       LogConfig       `koanf:"log"`
	LLM       LLMConfig       `koanf:"llm"`
	ArgoCD    ArgoCDConfig    `koanf:"argocd"`
	Server    ServerConfig    `koanf:"server"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, text
}

type LLMConfig struct {
	Provider string `koanf:"provider"` // azure-openai, openai, anthropic-claude, google-gemini
	Model    string `koanf:"model"`
}

type ArgoCDConfig struct {
	APIURL    string `koanf:"api_url"`
	Token     string `koanf:"token"`
	VerifySSL bool   `koanf:"verify_ssl"`
}

type ServerConfig struct {
	Host      string `koanf:"host"`
	Port      int    `koanf:"port"`
	APIKey    string `koanf:"api_key"`
	AgentID   string `koanf:"agent_id"`
	StorePath string `koanf:"store_path"` // SQLite run store; empty means in-memory
}

type TelemetryConfig struct {
	Enabled      bool   `koanf:"enabled"`
	Exporter     string `koanf:"exporter"` // stdout, otlp
	OTLPEndpoint string `koanf:"otlp_endpoint"`
	OTLPInsecure bool   `koanf:"otlp_insecure"`
}

// SupportedProviders lists the LLM backends the factory can build.
var SupportedProviders = []string{"azure-openai", "openai", "anthropic-claude", "google-gemini"}

// Global k instance
var k = koanf.New(".")

func Load(path string) (*Config, error) {
	// Defaults
	k.Set("log.level", "info")
	k.Set("log.format", "text")
	k.Set("llm.provider", "")
	k.Set("llm.model", "")
	k.Set("argocd.verify_ssl", true)
	k.Set("server.host", "localhost")
	k.Set("server.port", 8123)
	k.Set("server.agent_id", "agent-argocd")
	k.Set("telemetry.enabled", true)
	k.Set("telemetry.exporter", "stdout")

	// 1. Load from file
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// 2. Load from ENV (ARGONAUT_LLM_PROVIDER -> llm.provider)
	if err := k.Load(env.Provider("ARGONAUT_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "ARGONAUT_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	// 3. Overlay the well-known variables declared by the agent manifest.
	overlayWellKnownEnv()

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// overlayWellKnownEnv maps the manifest-declared environment variables onto
// config keys. These names are fixed by the deployment contract and win over
// file values.
func overlayWellKnownEnv() {
	direct := map[string]string{
		"LLM_PROVIDER":   "llm.provider",
		"ARGOCD_API_URL": "argocd.api_url",
		"ARGOCD_TOKEN":   "argocd.token",
		"API_KEY":        "server.api_key",
		"AGENT_ID":       "server.agent_id",
	}
	for name, key := range direct {
		if value, ok := os.LookupEnv(name); ok && value != "" {
			k.Set(key, value)
		}
	}
	if value, ok := os.LookupEnv("ARGOCD_VERIFY_SSL"); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			k.Set("argocd.verify_ssl", parsed)
		}
	}
	if value, ok := os.LookupEnv("WFSM_PORT"); ok {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			k.Set("server.port", parsed)
		}
	}
}

// LoadEnvFile loads variables from a dotenv file into the process
// environment. When required is true a missing file aborts with a config
// error; otherwise it is silently skipped.
func LoadEnvFile(path string, required bool) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			if required {
				return errors.New(errors.CodeConfig,
					fmt.Sprintf("required env file %s not found", path), err)
			}
			return nil
		}
		return errors.New(errors.CodeConfig, "cannot read env file", err)
	}
	if err := godotenv.Load(path); err != nil {
		return errors.New(errors.CodeConfig, "cannot parse env file", err)
	}
	return nil
}

// ValidateArgoCD checks that the ArgoCD connection settings are present.
func (c *Config) ValidateArgoCD() error {
	if c.ArgoCD.APIURL == "" {
		return errors.New(errors.CodeConfig, "ARGOCD_API_URL must be set", nil)
	}
	if c.ArgoCD.Token == "" {
		return errors.New(errors.CodeConfig, "ARGOCD_TOKEN must be set", nil)
	}
	return nil
}

// ValidateProvider checks that the configured LLM provider is supported and
// that its credential environment variables are present.
func (c *Config) ValidateProvider() error {
	provider := c.LLM.Provider
	if provider == "" {
		return errors.New(errors.CodeConfig,
			fmt.Sprintf("provider must be one of %s, or set the LLM_PROVIDER environment variable",
				strings.Join(SupportedProviders, ", ")), nil)
	}
	switch provider {
	case "azure-openai":
		return requireEnv("AZURE_OPENAI_ENDPOINT", "AZURE_OPENAI_DEPLOYMENT",
			"AZURE_OPENAI_API_KEY", "AZURE_OPENAI_API_VERSION")
	case "openai":
		return requireEnv("OPENAI_API_KEY")
	case "anthropic-claude":
		return requireEnv("ANTHROPIC_API_KEY")
	case "google-gemini":
		return requireEnv("GOOGLE_API_KEY")
	default:
		return errors.New(errors.CodeConfig,
			fmt.Sprintf("unsupported provider %q, supported providers are: %s",
				provider, strings.Join(SupportedProviders, ", ")), nil)
	}
}

func requireEnv(names ...string) error {
	var missing []string
	for _, name := range names {
		if os.Getenv(name) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return errors.New(errors.CodeConfig,
			fmt.Sprintf("missing environment variables: %s", strings.Join(missing, ", ")), nil)
	}
	return nil
}
