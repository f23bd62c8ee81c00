package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Extensions are the supported config file formats, in lookup order.
var Extensions = []string{".json", ".yaml", ".yml", ".toml"}

var ErrUnknownFormat = errors.New("unknown config format")

// Loader handles loading and merging configurations from multiple sources
type Loader struct {
	fs         afero.Fs
	precedence ConfigPrecedence
	validator  *Validator
	getenv     func(string) string

	// Sources lists the files that contributed to the last Load.
	Sources []string
}

// NewLoader creates a new configuration loader over fs. A nil fs means the
// OS filesystem.
func NewLoader(fs afero.Fs, precedence ConfigPrecedence) *Loader {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Loader{
		fs:         fs,
		precedence: precedence,
		validator:  NewValidator(),
		getenv:     os.Getenv,
	}
}

// WithEnv replaces the environment lookup.
func (l *Loader) WithEnv(getenv func(string) string) *Loader {
	l.getenv = getenv
	return l
}

// Load loads configuration from all sources and merges them. Later sources
// override earlier ones field by field. explicit, when set, is loaded last
// and must exist.
func (l *Loader) Load(explicit string) (*Config, error) {
	// Start with default configuration
	config := DefaultConfig()
	l.Sources = nil

	sources := []struct {
		path   string
		source ConfigSource
	}{
		{l.precedence.SystemConfig, SourceSystem},
		{l.precedence.UserConfig, SourceUser},
		{l.precedence.ProjectConfig, SourceProject},
		{l.precedence.LocalConfig, SourceLocal},
	}

	for _, src := range sources {
		if src.path == "" {
			continue
		}
		path, ok := l.find(src.path)
		if !ok {
			continue
		}
		if err := l.loadInto(config, path); err != nil {
			return nil, fmt.Errorf("failed to load %s config from %s: %w", src.source, path, err)
		}
		l.Sources = append(l.Sources, path)
	}

	if explicit != "" {
		if err := l.loadInto(config, explicit); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", explicit, err)
		}
		l.Sources = append(l.Sources, explicit)
	}

	if l.precedence.EnvironmentPrefix != "" {
		l.applyEnvironmentOverrides(config)
	}
	l.resolveAPIKey(config)

	if err := l.validator.Validate(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// find returns the first existing file for base. A base that already has a
// supported extension is used as is.
func (l *Loader) find(base string) (string, bool) {
	candidates := []string{base}
	if formatOf(base) == "" {
		candidates = candidates[:0]
		for _, ext := range Extensions {
			candidates = append(candidates, base+ext)
		}
	}
	for _, path := range candidates {
		if info, err := l.fs.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// loadInto decodes path over config, leaving fields the file omits untouched.
func (l *Loader) loadInto(config *Config, path string) error {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return err
	}
	return Decode(config, data, formatOf(path))
}

// Decode decodes data in format ("json", "yaml" or "toml") over config.
func Decode(config *Config, data []byte, format string) error {
	switch format {
	case "json":
		if err := json.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse JSON: %w", err)
		}
	case "yaml":
		if len(bytes.TrimSpace(data)) == 0 {
			return nil
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse YAML: %w", err)
		}
	case "toml":
		if _, err := toml.Decode(string(data), config); err != nil {
			return fmt.Errorf("failed to parse TOML: %w", err)
		}
	default:
		return ErrUnknownFormat
	}
	return nil
}

// Encode renders config in format.
func Encode(config *Config, format string) ([]byte, error) {
	switch format {
	case "json":
		return json.MarshalIndent(config, "", "  ")
	case "yaml":
		return yaml.Marshal(config)
	case "toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(config); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, ErrUnknownFormat
	}
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	}
	return ""
}

// SaveFile saves configuration to a file, choosing the format by extension
func (l *Loader) SaveFile(config *Config, path string) error {
	if err := l.validator.Validate(config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	data, err := Encode(config, formatOf(path))
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := l.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	// the file may carry an API key
	if err := afero.WriteFile(l.fs, path, data, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// applyEnvironmentOverrides applies environment variable overrides to config
func (l *Loader) applyEnvironmentOverrides(config *Config) {
	env := func(name string) string {
		return l.getenv(l.precedence.EnvironmentPrefix + "_" + name)
	}

	if v := env("API_KEY"); v != "" {
		config.API.APIKey = v
	}
	if v := env("PROVIDER"); v != "" {
		config.API.Provider = v
		if config.API.Provider == ProviderOpenAI && config.API.APIKeyEnvVar == "OPENROUTER_API_KEY" {
			preset := DefaultOpenAIConfig()
			config.API.APIKeyEnvVar = preset.API.APIKeyEnvVar
			config.API.BaseURL = preset.API.BaseURL
		}
	}
	if v := env("BASE_URL"); v != "" {
		config.API.BaseURL = v
	}
	if v := env("MODEL"); v != "" {
		config.Agent.Model = v
	}
	if v := env("DB"); v != "" {
		config.Storage.DatabasePath = v
	}
	if v := env("MEMORY_BACKEND"); v != "" {
		config.Memory.Backend = v
	}
	if v := env("REDIS_ADDR"); v != "" {
		config.Memory.Redis.Addr = v
	}
	if v := env("REDIS_PASSWORD"); v != "" {
		config.Memory.Redis.Password = v
	}
	if v := env("MAX_TURNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Agent.MaxTurns = n
		}
	}
	if v := env("LOG_LEVEL"); v != "" {
		config.LogLevel = v
	}
	if v := env("METRICS_FILE"); v != "" {
		config.Metrics.TextfilePath = v
	}
}

// resolveAPIKey fills the API key from the provider's key variable when the
// config does not carry one.
func (l *Loader) resolveAPIKey(config *Config) {
	if config.API.APIKey != "" || config.API.APIKeyEnvVar == "" {
		return
	}
	config.API.APIKey = l.getenv(config.API.APIKeyEnvVar)
}
