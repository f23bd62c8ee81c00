package config

import (
	"time"
)

const (
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"

	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// DefaultConfig returns a default configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		API: APIConfig{
			Provider:     ProviderOpenRouter,
			BaseURL:      "https://openrouter.ai/api/v1",
			APIKeyEnvVar: "OPENROUTER_API_KEY",
			Timeout:      Duration{60 * time.Second},
			MaxRetries:   3,
			RetryDelay:   Duration{time.Second},
			SiteName:     "campusadmin",
		},

		Agent: AgentConfig{
			Model:             "google/gemini-2.5-flash",
			Temperature:       0.3,
			MaxTokens:         2048,
			MaxTurns:          10,
			CompletionTimeout: Duration{30 * time.Second},
			ToolTimeout:       Duration{10 * time.Second},
		},

		Storage: StorageConfig{
			DatabasePath: GetDefaultStoragePaths().DatabasePath,
		},

		Memory: MemoryConfig{
			Backend: BackendSQLite,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "campus",
				TTL:    Duration{30 * 24 * time.Hour},
			},
		},

		Campus: CampusConfig{
			Name:     "Campus",
			Timezone: "UTC",
			Cafeteria: []Timing{
				{Label: "Breakfast", Hours: "7:00 AM - 10:00 AM"},
				{Label: "Lunch", Hours: "12:00 PM - 3:00 PM"},
				{Label: "Dinner", Hours: "7:00 PM - 10:00 PM"},
			},
			Library: []Timing{
				{Label: "Monday - Friday", Hours: "8:00 AM - 10:00 PM"},
				{Label: "Saturday", Hours: "9:00 AM - 6:00 PM"},
				{Label: "Sunday", Hours: "Closed"},
			},
		},

		LogLevel: "warn",
	}
}

// DefaultOpenAIConfig returns default configuration for the OpenAI API
func DefaultOpenAIConfig() *Config {
	config := DefaultConfig()
	config.API.Provider = ProviderOpenAI
	config.API.BaseURL = "https://api.openai.com/v1"
	config.API.APIKeyEnvVar = "OPENAI_API_KEY"
	config.API.SiteName = ""
	config.Agent.Model = "gpt-4o-mini"
	return config
}

// GenerateDefaultConfig generates a default configuration for provider
func GenerateDefaultConfig(provider string) *Config {
	switch provider {
	case ProviderOpenAI:
		return DefaultOpenAIConfig()
	default:
		return DefaultConfig()
	}
}
