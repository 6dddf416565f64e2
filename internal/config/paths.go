package config

import (
	"os"
	"path/filepath"
)

// ElicitPath returns the root directory for elicit data.
// It uses $ELICIT_PATH if set, otherwise defaults to ~/.elicit.
func ElicitPath() string {
	if v := os.Getenv("ELICIT_PATH"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".elicit")
	}
	return filepath.Join(home, ".elicit")
}

// ConfigPath returns the path to the elicit config file.
func ConfigPath() string {
	return filepath.Join(ElicitPath(), "config.yaml")
}

// DotenvPath returns the path to the elicit .env file.
func DotenvPath() string {
	return filepath.Join(ElicitPath(), ".env")
}
