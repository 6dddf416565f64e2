package models

import (
	"fmt"
	"os"
	"strings"

	"github.com/elicit-dev/elicit/internal/config"
)

// ResolveAPIKey resolves the API key for a provider.
// Resolution order: direct api_key (with ${VAR} expansion) → driver default env var.
func ResolveAPIKey(cfg config.ProviderConfig) (string, error) {
	trimmed := strings.TrimSpace(cfg.Auth.APIKey)
	if strings.HasPrefix(trimmed, "${") && strings.HasSuffix(trimmed, "}") {
		trimmed = os.Getenv(trimmed[2 : len(trimmed)-1])
	}
	if trimmed != "" {
		return trimmed, nil
	}

	// Default env vars per driver
	switch strings.ToLower(cfg.Driver) {
	case "anthropic":
		if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
			return key, nil
		}
		return "", fmt.Errorf("ANTHROPIC_API_KEY not set")
	case "openai":
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			return key, nil
		}
		return "", fmt.Errorf("OPENAI_API_KEY not set")
	case "mistral":
		if key := os.Getenv("MISTRAL_API_KEY"); key != "" {
			return key, nil
		}
		return "", fmt.Errorf("MISTRAL_API_KEY not set")
	default:
		return "", fmt.Errorf("unknown driver %q: cannot resolve auth", cfg.Driver)
	}
}
