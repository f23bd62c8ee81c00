package config

import (
	"fmt"
	"time"
)

// Config represents the complete configuration for campusadmin
type Config struct {
	// Version of the configuration format
	Version string `json:"version" yaml:"version" toml:"version"`

	// API configuration
	API APIConfig `json:"api" yaml:"api" toml:"api"`

	// Agent loop configuration
	Agent AgentConfig `json:"agent" yaml:"agent" toml:"agent"`

	// Storage configuration
	Storage StorageConfig `json:"storage" yaml:"storage" toml:"storage"`

	// Conversation memory configuration
	Memory MemoryConfig `json:"memory" yaml:"memory" toml:"memory"`

	// Campus information served by the info tools
	Campus CampusConfig `json:"campus" yaml:"campus" toml:"campus"`

	// Metrics export configuration
	Metrics MetricsConfig `json:"metrics" yaml:"metrics" toml:"metrics"`

	// LogLevel is the minimum log level (debug, info, warn, error)
	LogLevel string `json:"log_level,omitempty" yaml:"log_level,omitempty" toml:"log_level,omitempty" validate:"log_level"`
}

// APIConfig holds completion provider configuration
type APIConfig struct {
	// Provider selects the completion client ("openrouter" or "openai")
	Provider string `json:"provider" yaml:"provider" toml:"provider" validate:"provider"`

	// BaseURL overrides the provider's default endpoint
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" toml:"base_url,omitempty" validate:"omitempty,url"`

	// APIKey for authentication (can be omitted if using env vars)
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" toml:"api_key,omitempty"`

	// APIKeyEnvVar names the environment variable to read the API key from
	APIKeyEnvVar string `json:"api_key_env_var,omitempty" yaml:"api_key_env_var,omitempty" toml:"api_key_env_var,omitempty"`

	// Timeout for a single HTTP request
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty" toml:"timeout,omitempty"`

	MaxRetries int      `json:"max_retries" yaml:"max_retries" toml:"max_retries" validate:"min=0,max=10"`
	RetryDelay Duration `json:"retry_delay,omitempty" yaml:"retry_delay,omitempty" toml:"retry_delay,omitempty"`

	// SiteURL and SiteName are sent to OpenRouter for attribution
	SiteURL  string `json:"site_url,omitempty" yaml:"site_url,omitempty" toml:"site_url,omitempty"`
	SiteName string `json:"site_name,omitempty" yaml:"site_name,omitempty" toml:"site_name,omitempty"`
}

// AgentConfig holds the conversation loop settings
type AgentConfig struct {
	Model             string   `json:"model" yaml:"model" toml:"model" validate:"required"`
	Temperature       float32  `json:"temperature" yaml:"temperature" toml:"temperature" validate:"min=0,max=2"`
	MaxTokens         int      `json:"max_tokens" yaml:"max_tokens" toml:"max_tokens" validate:"min=1"`
	MaxTurns          int      `json:"max_turns" yaml:"max_turns" toml:"max_turns" validate:"min=0"`
	CompletionTimeout Duration `json:"completion_timeout" yaml:"completion_timeout" toml:"completion_timeout"`
	ToolTimeout       Duration `json:"tool_timeout" yaml:"tool_timeout" toml:"tool_timeout"`

	// SystemPrompt replaces the generated prompt when set
	SystemPrompt string `json:"system_prompt,omitempty" yaml:"system_prompt,omitempty" toml:"system_prompt,omitempty"`
}

// StorageConfig locates the SQLite database
type StorageConfig struct {
	DatabasePath string `json:"database_path,omitempty" yaml:"database_path,omitempty" toml:"database_path,omitempty"`
}

// MemoryConfig selects where conversation threads persist
type MemoryConfig struct {
	// Backend is "memory", "sqlite" or "redis"
	Backend string `json:"backend" yaml:"backend" toml:"backend" validate:"memory_backend"`

	// PersistByDefault writes every thread through after each run
	PersistByDefault bool `json:"persist_by_default" yaml:"persist_by_default" toml:"persist_by_default"`

	Redis RedisConfig `json:"redis" yaml:"redis" toml:"redis"`
}

// RedisConfig configures the redis thread backend
type RedisConfig struct {
	Addr     string   `json:"addr" yaml:"addr" toml:"addr"`
	Password string   `json:"password,omitempty" yaml:"password,omitempty" toml:"password,omitempty"`
	DB       int      `json:"db" yaml:"db" toml:"db" validate:"min=0"`
	Prefix   string   `json:"prefix" yaml:"prefix" toml:"prefix"`
	TTL      Duration `json:"ttl,omitempty" yaml:"ttl,omitempty" toml:"ttl,omitempty"`
}

// CampusConfig is the static campus information
type CampusConfig struct {
	Name      string   `json:"name" yaml:"name" toml:"name"`
	Timezone  string   `json:"timezone" yaml:"timezone" toml:"timezone" validate:"omitempty,timezone"`
	Cafeteria []Timing `json:"cafeteria" yaml:"cafeteria" toml:"cafeteria" validate:"dive"`
	Library   []Timing `json:"library" yaml:"library" toml:"library" validate:"dive"`
}

// Timing is one row of an opening-hours table
type Timing struct {
	Label string `json:"label" yaml:"label" toml:"label" validate:"required"`
	Hours string `json:"hours" yaml:"hours" toml:"hours" validate:"required"`
}

// Location resolves Timezone, defaulting to UTC.
func (c CampusConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// MetricsConfig configures the Prometheus textfile export
type MetricsConfig struct {
	// TextfilePath, when set, receives the metrics after each command
	TextfilePath string `json:"textfile_path,omitempty" yaml:"textfile_path,omitempty" toml:"textfile_path,omitempty"`
}

// ConfigPrecedence defines the order of configuration loading
type ConfigPrecedence struct {
	SystemConfig  string
	UserConfig    string
	ProjectConfig string
	LocalConfig   string

	// EnvironmentPrefix for env var overrides
	EnvironmentPrefix string
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
	Value   any
}

func (e ValidationError) Error() string {
	return e.Message
}

// ConfigSource indicates where a configuration value came from
type ConfigSource string

const (
	SourceDefault     ConfigSource = "default"
	SourceSystem      ConfigSource = "system"
	SourceUser        ConfigSource = "user"
	SourceProject     ConfigSource = "project"
	SourceLocal       ConfigSource = "local"
	SourceEnvironment ConfigSource = "environment"
	SourceCLI         ConfigSource = "cli"
)

// Duration is a time.Duration written as a string ("30s") in every format.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}
