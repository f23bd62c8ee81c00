package orclient

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// ErrNoAPIKey indicates the API key is missing
	ErrNoAPIKey = errors.New("API key is required")

	// ErrEmptyResponse indicates the API returned no choices
	ErrEmptyResponse = errors.New("empty response from API")

	// ErrModelNotFound indicates the models endpoint does not list the model
	ErrModelNotFound = errors.New("model not found")

	// ErrTimeout indicates a timeout occurred
	ErrTimeout = errors.New("operation timed out")

	// ErrRateLimited indicates rate limiting
	ErrRateLimited = errors.New("rate limited")
)

// ErrorResponse represents a standard error response from the API
// This matches the OpenRouter error format: {"error":{"message":"...","code":"..."}}
type ErrorResponse struct {
	Error struct {
		Type    string         `json:"type"`
		Message string         `json:"message"`
		Code    any            `json:"code"`
		Param   string         `json:"param"`
		Details map[string]any `json:"metadata"`
	} `json:"error"`
}

// APIError represents an error response from the OpenRouter API.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
	Code       string
	Param      string
	Details    map[string]interface{}
	RequestID  string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("API error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
}

// Is lets callers match rate limiting with errors.Is.
func (e *APIError) Is(target error) bool {
	return target == ErrRateLimited && e.IsRateLimit()
}

// IsRetryable returns true if the error is retryable.
func (e *APIError) IsRetryable() bool {
	// 5xx errors are generally retryable
	if e.StatusCode >= 500 && e.StatusCode < 600 {
		return true
	}

	if e.StatusCode == http.StatusTooManyRequests {
		return true
	}

	switch e.Code {
	case "timeout", "connection_error", "server_error":
		return true
	}

	return false
}

// IsRateLimit returns true if this is a rate limit error.
func (e *APIError) IsRateLimit() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.Code == "rate_limit_exceeded"
}

// IsAuthError returns true if this is an authentication error.
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == http.StatusUnauthorized || e.Code == "invalid_api_key"
}

// RetryableError wraps the last failure of a retried request.
type RetryableError struct {
	Err         error
	RetryAfter  time.Duration
	AttemptNum  int
	MaxAttempts int
}

// Error implements the error interface.
func (e *RetryableError) Error() string {
	return fmt.Sprintf("attempt %d/%d failed: %v (retry after %v)",
		e.AttemptNum, e.MaxAttempts, e.Err, e.RetryAfter)
}

// Unwrap returns the underlying error.
func (e *RetryableError) Unwrap() error {
	return e.Err
}

// ShouldRetry returns true if the operation should be retried.
func (e *RetryableError) ShouldRetry() bool {
	return e.AttemptNum < e.MaxAttempts
}

// TimeoutError represents a timeout error with context.
type TimeoutError struct {
	Operation string
	Duration  time.Duration
	Cause     error
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s timed out after %v: %v", e.Operation, e.Duration, e.Cause)
	}
	return fmt.Sprintf("%s timed out after %v", e.Operation, e.Duration)
}

// Unwrap returns the underlying error.
func (e *TimeoutError) Unwrap() error {
	return e.Cause
}

// Is implements error matching.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsRetryable()
	}

	var retryErr *RetryableError
	if errors.As(err, &retryErr) {
		return retryErr.ShouldRetry()
	}

	if errors.Is(err, ErrTimeout) {
		return true
	}

	if errors.Is(err, ErrRateLimited) {
		return true
	}

	return false
}

// GetRetryDelay returns the delay before retry number attempt (1-based).
// A rate limit's Retry-After wins; otherwise the delay doubles from base,
// capped at a minute.
func GetRetryDelay(err error, attempt int, base time.Duration) time.Duration {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.IsRateLimit() {
		if retryAfter, ok := apiErr.Details["retry_after"].(float64); ok {
			return time.Duration(retryAfter) * time.Second
		}
	}

	if base <= 0 {
		base = time.Second
	}
	if attempt < 1 {
		attempt = 1
	}
	delay := base * time.Duration(1<<uint(min(attempt-1, 16)))
	if delay > time.Minute {
		delay = time.Minute
	}

	return delay
}
