package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.PurgeMoniker != "foundry-classic" {
		t.Errorf("PurgeMoniker: got %q, want %q", cfg.PurgeMoniker, "foundry-classic")
	}
	if cfg.UnwrapMoniker != "foundry" {
		t.Errorf("UnwrapMoniker: got %q, want %q", cfg.UnwrapMoniker, "foundry")
	}
	if cfg.Provider != "anthropic" {
		t.Errorf("Provider: got %q, want %q", cfg.Provider, "anthropic")
	}
	if cfg.MaxTokens != 4096 {
		t.Errorf("MaxTokens: got %d, want %d", cfg.MaxTokens, 4096)
	}
	if cfg.Parallel != 8 {
		t.Errorf("Parallel: got %d, want %d", cfg.Parallel, 8)
	}
	if cfg.PollInterval != "3s" {
		t.Errorf("PollInterval: got %q, want %q", cfg.PollInterval, "3s")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".moniker-strip.yaml")
	content := `purge_moniker: v1
unwrap_moniker: v2
provider: openai
model: gpt-4o-mini
parallel: 4
poll_interval: 10s
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	old, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(old) }()

	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PurgeMoniker != "v1" {
		t.Errorf("PurgeMoniker: got %q, want %q", cfg.PurgeMoniker, "v1")
	}
	if cfg.UnwrapMoniker != "v2" {
		t.Errorf("UnwrapMoniker: got %q, want %q", cfg.UnwrapMoniker, "v2")
	}
	if cfg.Provider != "openai" {
		t.Errorf("Provider: got %q, want %q", cfg.Provider, "openai")
	}
	if cfg.Parallel != 4 {
		t.Errorf("Parallel: got %d, want %d", cfg.Parallel, 4)
	}
	if cfg.PollIntervalDuration != 10*time.Second {
		t.Errorf("PollIntervalDuration: got %v, want %v", cfg.PollIntervalDuration, 10*time.Second)
	}
	if cfg.ConfigFile != ".moniker-strip.yaml" {
		t.Errorf("ConfigFile: got %q", cfg.ConfigFile)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".moniker-strip.yaml")
	if err := os.WriteFile(path, []byte("purge_moniker: from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	old, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(old) }()

	clearEnv(t)
	t.Setenv("MONIKER_STRIP_PURGE", "from-env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PurgeMoniker != "from-env" {
		t.Errorf("PurgeMoniker: got %q, want %q", cfg.PurgeMoniker, "from-env")
	}
}

func TestAzureBaseURLFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("AZURE_RESOURCE_NAME", "my-resource")

	cfg := Defaults()
	mergeEnv(cfg)
	want := "https://my-resource.services.ai.azure.com/anthropic/"
	if cfg.BaseURL != want {
		t.Errorf("BaseURL: got %q, want %q", cfg.BaseURL, want)
	}

	cfg = Defaults()
	cfg.Provider = "openai"
	mergeEnv(cfg)
	want = "https://my-resource.openai.azure.com/openai/v1"
	if cfg.BaseURL != want {
		t.Errorf("BaseURL: got %q, want %q", cfg.BaseURL, want)
	}
}

func TestParseDurationOrDisable(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"", 3 * time.Second},
		{"0", 0},
		{"off", 0},
		{"disable", 0},
		{"45s", 45 * time.Second},
		{"2m", 2 * time.Minute},
	}
	for _, tt := range tests {
		got, err := parseDurationOrDisable(tt.input, 3*time.Second)
		if err != nil {
			t.Errorf("parseDurationOrDisable(%q): %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseDurationOrDisable(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}

	if _, err := parseDurationOrDisable("not-a-duration", 0); err == nil {
		t.Error("expected error for invalid duration")
	}
}

func TestIsAzureEndpoint(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://foo.openai.azure.com/openai/v1", true},
		{"https://foo.services.ai.azure.us/anthropic/", true},
		{"https://api.anthropic.com", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsAzureEndpoint(tt.url); got != tt.want {
			t.Errorf("IsAzureEndpoint(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

// clearEnv unsets every variable Load consults so tests are hermetic.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"MONIKER_STRIP_PURGE", "MONIKER_STRIP_UNWRAP", "MONIKER_STRIP_PROVIDER",
		"MONIKER_STRIP_MODEL", "MONIKER_STRIP_BASE_URL", "MONIKER_STRIP_API_KEY",
		"MONIKER_STRIP_POLL_INTERVAL", "OTEL_EXPORTER_OTLP_ENDPOINT",
		"OTEL_EXPORTER_OTLP_HEADERS", "AZURE_AI_MODEL_DEPLOYMENT_NAME",
		"AZURE_OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENAI_API_KEY",
		"AZURE_RESOURCE_NAME",
	} {
		t.Setenv(key, "")
	}
}
