package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validator validates configuration values using go-playground/validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	v := validator.New()

	// Register custom validation functions
	v.RegisterValidation("provider", validateProvider)
	v.RegisterValidation("memory_backend", validateMemoryBackend)
	v.RegisterValidation("log_level", validateLogLevel)
	v.RegisterStructValidation(validateMemoryConfig, MemoryConfig{})

	return &Validator{
		validate: v,
	}
}

// Validate validates a complete configuration
func (v *Validator) Validate(config *Config) error {
	// Set default version if empty
	if config.Version == "" {
		config.Version = "1.0"
	}

	if err := v.validate.Struct(config); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			e := validationErrors[0]
			return ValidationError{
				Field:   e.Namespace(),
				Message: fmt.Sprintf("%s: validation failed on tag '%s' with value '%v'", e.Namespace(), e.Tag(), e.Value()),
				Value:   e.Value(),
			}
		}
		return err
	}

	return nil
}

// validateProvider validates API provider values
func validateProvider(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // Allow empty, will be filled by defaults
	}
	return contains([]string{ProviderOpenRouter, ProviderOpenAI}, value)
}

func validateMemoryBackend(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return contains([]string{BackendMemory, BackendSQLite, BackendRedis}, value)
}

func validateLogLevel(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return contains([]string{"debug", "info", "warn", "error"}, value)
}

// validateMemoryConfig requires a redis address when redis is selected.
func validateMemoryConfig(sl validator.StructLevel) {
	m := sl.Current().Interface().(MemoryConfig)
	if m.Backend == BackendRedis && m.Redis.Addr == "" {
		sl.ReportError(m.Redis.Addr, "Redis.Addr", "Addr", "required_for_redis", "")
	}
}

// contains checks if a string is in a slice
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
