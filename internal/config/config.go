// Package config loads suite configuration from an optional YAML file with
// environment variable overrides. Environment variables use the names the
// upstream services conventionally use (AAP_URL, AAP_TOKEN,
// INSIGHTS_CLIENT_ID, and so on).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ansible-mcp/ansiblemcp/internal/errors"
)

// Config holds global configuration for ansiblemcp.
type Config struct {
	AAP      AAPConfig      `yaml:"aap"`
	EDA      EDAConfig      `yaml:"eda"`
	Insights InsightsConfig `yaml:"insights"`
	Stack    StackConfig    `yaml:"stack"`
	Auth     AuthConfig     `yaml:"auth"`
}

// AAPConfig holds Ansible Automation Platform controller settings.
type AAPConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

// EDAConfig holds Event-Driven Ansible settings.
type EDAConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

// InsightsConfig holds Red Hat Insights service account settings.
type InsightsConfig struct {
	BaseURL      string `yaml:"base_url"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	SSOURL       string `yaml:"sso_url"`
}

// StackConfig holds llama-stack distribution settings.
type StackConfig struct {
	BaseURL string `yaml:"base_url"`
}

// AuthConfig holds bearer-token verification settings for SSE serving.
type AuthConfig struct {
	JWTSecret     string `yaml:"jwt_secret"`
	ServerURI     string `yaml:"server_uri"`
	AuthServerURI string `yaml:"auth_server_uri"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Insights: InsightsConfig{
			BaseURL: "https://console.redhat.com/api",
			SSOURL:  "https://sso.redhat.com/auth/realms/redhat-external/protocol/openid-connect/token",
		},
		Stack: StackConfig{
			BaseURL: "http://localhost:8321",
		},
		Auth: AuthConfig{
			ServerURI:     "http://localhost:8001",
			AuthServerURI: "http://localhost:8002",
		},
	}
}

// Path returns the config file path. ANSIBLEMCP_CONFIG overrides the
// default of ~/.config/ansiblemcp/config.yaml.
func Path() (string, error) {
	if path := os.Getenv("ANSIBLEMCP_CONFIG"); path != "" {
		return path, nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config directory: %w", err)
	}
	return filepath.Join(configDir, "ansiblemcp", "config.yaml"), nil
}

// Load loads configuration from the config file, falling back to defaults
// if the file doesn't exist. Environment variables override both.
func Load() (*Config, error) {
	cfg := Default()

	path, err := Path()
	if err != nil {
		return nil, err
	}

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	// If file doesn't exist, we continue with defaults

	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	setIfEnv(&cfg.AAP.URL, "AAP_URL")
	setIfEnv(&cfg.AAP.Token, "AAP_TOKEN")
	setIfEnv(&cfg.EDA.URL, "EDA_URL")
	setIfEnv(&cfg.EDA.Token, "EDA_TOKEN")
	setIfEnv(&cfg.Insights.BaseURL, "INSIGHTS_BASE_URL")
	setIfEnv(&cfg.Insights.ClientID, "INSIGHTS_CLIENT_ID")
	setIfEnv(&cfg.Insights.ClientSecret, "INSIGHTS_CLIENT_SECRET")
	setIfEnv(&cfg.Insights.SSOURL, "SSO_URL")
	setIfEnv(&cfg.Stack.BaseURL, "LLAMA_STACK_URL")
	setIfEnv(&cfg.Auth.JWTSecret, "JWT_SECRET")
	setIfEnv(&cfg.Auth.ServerURI, "MCP_SERVER_URI")
	setIfEnv(&cfg.Auth.AuthServerURI, "AUTH_SERVER_URI")
}

func setIfEnv(dst *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		*dst = val
	}
}

// ValidateAAP checks that the AAP catalog can be served.
func (c *Config) ValidateAAP() error {
	if c.AAP.URL == "" {
		return errors.ConfigMissing("AAP_URL")
	}
	if c.AAP.Token == "" {
		return errors.ConfigMissing("AAP_TOKEN")
	}
	return nil
}

// ValidateEDA checks that the EDA catalog can be served.
func (c *Config) ValidateEDA() error {
	if c.EDA.URL == "" {
		return errors.ConfigMissing("EDA_URL")
	}
	if c.EDA.Token == "" {
		return errors.ConfigMissing("EDA_TOKEN")
	}
	return nil
}

// ValidateInsights checks that the Insights catalog can be served.
func (c *Config) ValidateInsights() error {
	if c.Insights.ClientID == "" {
		return errors.ConfigMissing("INSIGHTS_CLIENT_ID")
	}
	if c.Insights.ClientSecret == "" {
		return errors.ConfigMissing("INSIGHTS_CLIENT_SECRET")
	}
	return nil
}

// Redacted returns a copy safe for logging, with secrets masked.
func (c *Config) Redacted() Config {
	out := *c
	out.AAP.Token = mask(out.AAP.Token)
	out.EDA.Token = mask(out.EDA.Token)
	out.Insights.ClientSecret = mask(out.Insights.ClientSecret)
	out.Auth.JWTSecret = mask(out.Auth.JWTSecret)
	return out
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
