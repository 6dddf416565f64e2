package config

import "time"

// Config is the root configuration for elicit.
type Config struct {
	Gateway  GatewayConfig  `yaml:"gateway"`
	Models   ModelsConfig   `yaml:"models"`
	Events   EventsConfig   `yaml:"events"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Tasks    TasksConfig    `yaml:"tasks"`
	Archive  ArchiveConfig  `yaml:"archive"`
}

// GatewayConfig holds the gateway server settings.
type GatewayConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// ModelsConfig holds model provider configuration.
type ModelsConfig struct {
	Default   string                    `yaml:"default"`
	Providers map[string]ProviderConfig `yaml:"providers"`
}

// ProviderConfig configures a single LLM provider.
type ProviderConfig struct {
	Driver    string         `yaml:"driver"` // "anthropic", "openai", "mistral", "ollama"
	Model     string         `yaml:"model"`
	BaseURL   string         `yaml:"base_url,omitempty"`
	Auth      AuthConfig     `yaml:"auth"`
	MaxTokens int            `yaml:"max_tokens,omitempty"`
	Timeout   Duration       `yaml:"timeout,omitempty"`
	Options   map[string]any `yaml:"options,omitempty"`
}

// AuthConfig configures API key resolution.
type AuthConfig struct {
	APIKey string `yaml:"api_key,omitempty"` // Direct API key or ${{ .Env.VAR }} template
}

// EventsConfig holds event bus settings.
type EventsConfig struct {
	BufferSize int `yaml:"buffer_size"`
}

// PipelineConfig holds interview pipeline settings.
type PipelineConfig struct {
	EndUserRounds  int      `yaml:"end_user_rounds"`  // dialogue rounds per end-user type
	MaxRetries     int      `yaml:"max_retries"`      // generation retry attempts
	RetryBackoff   Duration `yaml:"retry_backoff"`    // base backoff between retries
	DefaultRoles   []string `yaml:"default_roles"`    // fallback end-user roles when list parsing fails
}

// TasksConfig holds task registry settings.
type TasksConfig struct {
	Retention Duration `yaml:"retention"` // how long finished tasks are kept before eviction
}

// ArchiveConfig holds the completed-task archive settings.
type ArchiveConfig struct {
	Path string `yaml:"path"` // SQLite database path; empty disables archiving
}

// Duration wraps time.Duration for YAML unmarshaling.
type Duration time.Duration

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}
