package models

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/elicit-dev/elicit/internal/config"
)

func TestResolveAPIKey_Direct(t *testing.T) {
	cfg := config.ProviderConfig{
		Driver: "openai",
		Auth:   config.AuthConfig{APIKey: "sk-test-123"},
	}
	key, err := ResolveAPIKey(cfg)
	if err != nil {
		t.Fatalf("ResolveAPIKey: %v", err)
	}
	if key != "sk-test-123" {
		t.Fatalf("expected %q, got %q", "sk-test-123", key)
	}
}

func TestResolveAPIKey_EnvVarSyntax(t *testing.T) {
	t.Setenv("MY_CUSTOM_KEY", "custom-api-key-value")

	cfg := config.ProviderConfig{
		Driver: "anthropic",
		Auth:   config.AuthConfig{APIKey: "${MY_CUSTOM_KEY}"},
	}
	key, err := ResolveAPIKey(cfg)
	if err != nil {
		t.Fatalf("ResolveAPIKey: %v", err)
	}
	if key != "custom-api-key-value" {
		t.Fatalf("expected env value, got %q", key)
	}
}

func TestResolveAPIKey_FallbackOpenAIEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-openai-key")

	cfg := config.ProviderConfig{Driver: "openai"}
	key, err := ResolveAPIKey(cfg)
	if err != nil {
		t.Fatalf("ResolveAPIKey: %v", err)
	}
	if key != "env-openai-key" {
		t.Fatalf("expected env fallback, got %q", key)
	}
}

func TestResolveAPIKey_NothingSet(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	os.Unsetenv("ANTHROPIC_API_KEY")

	cfg := config.ProviderConfig{Driver: "anthropic"}
	_, err := ResolveAPIKey(cfg)
	if err == nil {
		t.Fatal("expected error when no auth is available")
	}
	if !strings.Contains(err.Error(), "ANTHROPIC_API_KEY not set") {
		t.Fatalf("expected 'ANTHROPIC_API_KEY not set' error, got %v", err)
	}
}

func TestRegistry_GetUnknown(t *testing.T) {
	cfg := config.ModelsConfig{
		Default:   "main",
		Providers: map[string]config.ProviderConfig{},
	}
	reg := NewRegistry(cfg)

	_, err := reg.Get(context.Background(), "nonexistent")
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected 'not found' error, got %v", err)
	}
}

func TestRegistry_DefaultName(t *testing.T) {
	cfg := config.ModelsConfig{
		Default: "main",
		Providers: map[string]config.ProviderConfig{
			"main": {Driver: "openai"},
		},
	}
	reg := NewRegistry(cfg)

	if reg.DefaultName() != "main" {
		t.Fatalf("expected default name %q, got %q", "main", reg.DefaultName())
	}
}

func TestRegistry_NoDefault(t *testing.T) {
	reg := NewRegistry(config.ModelsConfig{})
	if _, err := reg.Default(context.Background()); err == nil {
		t.Fatal("expected error when no default is configured")
	}
}

func TestCreateModel_UnknownDriver(t *testing.T) {
	cfg := config.ProviderConfig{Driver: "unknown-driver"}
	_, err := CreateModel(context.Background(), cfg)
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
	if !strings.Contains(err.Error(), "unknown driver") {
		t.Fatalf("expected 'unknown driver' error, got %v", err)
	}
}

func TestHandleError_Classification(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"401 unauthorized", "authentication failed"},
		{"429 too many requests", "rate limited"},
		{"context length exceeded", "context too long"},
		{"model not found", "model not found"},
		{"dial tcp: connection refused", "connection error"},
	}
	for _, c := range cases {
		got := HandleError(errors.New(c.in))
		if !strings.Contains(got.Error(), c.want) {
			t.Errorf("HandleError(%q) = %v, want substring %q", c.in, got, c.want)
		}
	}

	if HandleError(nil) != nil {
		t.Error("HandleError(nil) should be nil")
	}
}
