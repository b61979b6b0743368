// Package config loads moniker-strip configuration from file and
// environment.
//
// Precedence (highest to lowest):
//  1. Environment variables (MONIKER_STRIP_*)
//  2. Config file
//  3. Built-in defaults
//
// Config file search order:
//  1. .moniker-strip.yaml in current directory
//  2. ~/.config/moniker-strip/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all moniker-strip configuration.
type Config struct {
	// Moniker settings
	PurgeMoniker  string `yaml:"purge_moniker"`  // moniker whose blocks are deleted
	UnwrapMoniker string `yaml:"unwrap_moniker"` // moniker whose content is kept

	// LLM settings (judge command and eval grader deployment)
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	APIKey    string `yaml:"api_key"`
	MaxTokens int64  `yaml:"max_tokens"`

	// Strip settings
	Parallel int `yaml:"parallel"`

	// Eval run polling
	PollInterval string `yaml:"poll_interval"` // Go duration string, e.g. "3s"

	// OTEL
	OTELEndpoint string `yaml:"otel_endpoint"`
	OTELHeaders  string `yaml:"otel_headers"` // Comma-separated key=value pairs

	// Parsed durations (not from YAML, set after loading)
	PollIntervalDuration time.Duration `yaml:"-"`

	// ConfigFile is the path to the config file that was loaded (empty if none).
	ConfigFile string `yaml:"-"`
}

// Defaults returns a Config with all default values.
func Defaults() *Config {
	return &Config{
		PurgeMoniker:  "foundry-classic",
		UnwrapMoniker: "foundry",
		Provider:      "anthropic",
		Model:         "claude-sonnet-4-5",
		MaxTokens:     4096,
		Parallel:      8,
		PollInterval:  "3s",
	}
}

// Load reads configuration from file and environment variables.
// Environment variables always override file values.
func Load() (*Config, error) {
	cfg := Defaults()

	if path, data, err := findConfigFile(); err == nil {
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		cfg.ConfigFile = path
		mergeFile(cfg, &fileCfg)
	}

	mergeEnv(cfg)

	var err error
	cfg.PollIntervalDuration, err = parseDurationOrDisable(cfg.PollInterval, 3*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid poll interval %q: %w", cfg.PollInterval, err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file and returns its path and contents.
func findConfigFile() (string, []byte, error) {
	// 1. Current directory
	if data, err := os.ReadFile(".moniker-strip.yaml"); err == nil {
		return ".moniker-strip.yaml", data, nil
	}

	// 2. XDG config dir / ~/.config
	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, ".config", "moniker-strip", "config.yaml")
		if data, err := os.ReadFile(path); err == nil {
			return path, data, nil
		}
	}

	return "", nil, fmt.Errorf("no config file found")
}

// mergeFile applies non-zero file values onto cfg.
func mergeFile(cfg *Config, file *Config) {
	if file.PurgeMoniker != "" {
		cfg.PurgeMoniker = file.PurgeMoniker
	}
	if file.UnwrapMoniker != "" {
		cfg.UnwrapMoniker = file.UnwrapMoniker
	}
	if file.Provider != "" {
		cfg.Provider = file.Provider
	}
	if file.Model != "" {
		cfg.Model = file.Model
	}
	if file.BaseURL != "" {
		cfg.BaseURL = file.BaseURL
	}
	if file.APIKey != "" {
		cfg.APIKey = file.APIKey
	}
	if file.MaxTokens > 0 {
		cfg.MaxTokens = file.MaxTokens
	}
	if file.Parallel > 0 {
		cfg.Parallel = file.Parallel
	}
	if file.PollInterval != "" {
		cfg.PollInterval = file.PollInterval
	}
	if file.OTELEndpoint != "" {
		cfg.OTELEndpoint = file.OTELEndpoint
	}
	if file.OTELHeaders != "" {
		cfg.OTELHeaders = file.OTELHeaders
	}
}

// mergeEnv applies environment variables onto cfg. Env always wins.
func mergeEnv(cfg *Config) {
	if v := os.Getenv("MONIKER_STRIP_PURGE"); v != "" {
		cfg.PurgeMoniker = v
	}
	if v := os.Getenv("MONIKER_STRIP_UNWRAP"); v != "" {
		cfg.UnwrapMoniker = v
	}
	if v := os.Getenv("MONIKER_STRIP_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("MONIKER_STRIP_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("MONIKER_STRIP_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("MONIKER_STRIP_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("MONIKER_STRIP_POLL_INTERVAL"); v != "" {
		cfg.PollInterval = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.OTELEndpoint = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"); v != "" {
		cfg.OTELHeaders = v
	}

	// Judge deployment fallback used by the documentation pipeline.
	if os.Getenv("MONIKER_STRIP_MODEL") == "" {
		if v := os.Getenv("AZURE_AI_MODEL_DEPLOYMENT_NAME"); v != "" {
			cfg.Model = v
		}
	}

	// API key fallbacks
	if cfg.APIKey == "" {
		if v := os.Getenv("AZURE_OPENAI_API_KEY"); v != "" {
			cfg.APIKey = v
		}
	}
	if cfg.APIKey == "" {
		if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
			cfg.APIKey = v
		}
	}
	if cfg.APIKey == "" {
		if v := os.Getenv("OPENAI_API_KEY"); v != "" {
			cfg.APIKey = v
		}
	}

	// Azure base URL fallback
	if cfg.BaseURL == "" {
		if rn := os.Getenv("AZURE_RESOURCE_NAME"); rn != "" {
			switch cfg.Provider {
			case "anthropic":
				cfg.BaseURL = fmt.Sprintf("https://%s.services.ai.azure.com/anthropic/", rn)
			case "openai":
				cfg.BaseURL = fmt.Sprintf("https://%s.openai.azure.com/openai/v1", rn)
			}
		}
	}
}

// parseDurationOrDisable parses a duration string. "0", "off", "disable" return 0.
// Empty string returns the fallback value.
func parseDurationOrDisable(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	if s == "0" || s == "off" || s == "disable" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

// IsAzureEndpoint returns true if the URL is an Azure endpoint.
func IsAzureEndpoint(url string) bool {
	return strings.Contains(url, ".azure.com") || strings.Contains(url, ".azure.us")
}
