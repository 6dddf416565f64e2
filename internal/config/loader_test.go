package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "{}\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Gateway.Host != "127.0.0.1" {
		t.Errorf("default host = %q", cfg.Gateway.Host)
	}
	if cfg.Gateway.Port != 8930 {
		t.Errorf("default port = %d", cfg.Gateway.Port)
	}
	if cfg.Pipeline.EndUserRounds != 2 {
		t.Errorf("default end user rounds = %d", cfg.Pipeline.EndUserRounds)
	}
	if cfg.Pipeline.MaxRetries != 3 {
		t.Errorf("default max retries = %d", cfg.Pipeline.MaxRetries)
	}
	if cfg.Pipeline.RetryBackoff.Duration() != 500*time.Millisecond {
		t.Errorf("default retry backoff = %v", cfg.Pipeline.RetryBackoff.Duration())
	}
	if len(cfg.Pipeline.DefaultRoles) != 2 {
		t.Errorf("default roles = %v", cfg.Pipeline.DefaultRoles)
	}
	if cfg.Tasks.Retention.Duration() != 24*time.Hour {
		t.Errorf("default retention = %v", cfg.Tasks.Retention.Duration())
	}
}

func TestLoad_EnvTemplateExpansion(t *testing.T) {
	t.Setenv("ELICIT_TEST_KEY", "sk-test-123")

	path := writeConfig(t, `
models:
  default: main
  providers:
    main:
      driver: openai
      model: gpt-4o-mini
      auth:
        api_key: ${{ .Env.ELICIT_TEST_KEY }}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	prov, ok := cfg.Models.Providers["main"]
	if !ok {
		t.Fatal("provider 'main' not found")
	}
	if prov.Auth.APIKey != "sk-test-123" {
		t.Errorf("api key = %q, want expanded env value", prov.Auth.APIKey)
	}
}

func TestLoad_DurationParsing(t *testing.T) {
	path := writeConfig(t, `
pipeline:
  retry_backoff: 2s
tasks:
  retention: 1h30m
models:
  providers:
    local:
      driver: ollama
      model: llama3
      timeout: 5m
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Pipeline.RetryBackoff.Duration() != 2*time.Second {
		t.Errorf("retry backoff = %v", cfg.Pipeline.RetryBackoff.Duration())
	}
	if cfg.Tasks.Retention.Duration() != 90*time.Minute {
		t.Errorf("retention = %v", cfg.Tasks.Retention.Duration())
	}
	if cfg.Models.Providers["local"].Timeout.Duration() != 5*time.Minute {
		t.Errorf("timeout = %v", cfg.Models.Providers["local"].Timeout.Duration())
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "gateway: [unclosed\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid yaml")
	}
}
