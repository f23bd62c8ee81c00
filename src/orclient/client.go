package orclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/elee1766/campusadmin/src/aisdk"
)

const (
	defaultBaseURL = "https://openrouter.ai/api/v1"
	defaultTimeout = 30 * time.Second
)

var _ aisdk.Provider = (*Client)(nil)

// Client is the OpenRouter API client.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
	modelCache *ModelCache
}

// NewClient creates a new OpenRouter API client.
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.RetryCount == 0 {
		config.RetryCount = 3
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = time.Second
	}
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}
	if config.ModelTTL == 0 {
		config.ModelTTL = time.Hour
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "openrouter_client")

	client := &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger,
	}
	client.modelCache = NewModelCache(client, config.ModelTTL)

	return client
}

// wireMessage is the message shape sent on the wire. Every provider behind
// OpenRouter accepts plain role/content pairs.
type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type wireRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
	TopP        *float64      `json:"top_p,omitempty"`
	Stop        []string      `json:"stop,omitempty"`
	User        string        `json:"user,omitempty"`
}

// wireRole maps internal roles onto the three roles the API understands.
// Tool results travel as assistant turns.
func wireRole(role string) string {
	switch role {
	case aisdk.RoleSystem, aisdk.RoleUser, aisdk.RoleAssistant:
		return role
	case aisdk.RoleToolResult:
		return aisdk.RoleAssistant
	default:
		return aisdk.RoleUser
	}
}

func formatRequest(req *aisdk.ChatCompletionRequest) wireRequest {
	msgs := make([]wireMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		if msg == nil {
			continue
		}
		msgs = append(msgs, wireMessage{Role: wireRole(msg.Role), Content: msg.Content})
	}
	return wireRequest{
		Model:       req.Model,
		Messages:    msgs,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		TopP:        req.TopP,
		Stop:        req.Stop,
		User:        req.User,
	}
}

// createChatCompletion sends a chat completion request to OpenRouter.
func (c *Client) createChatCompletion(ctx context.Context, req *aisdk.ChatCompletionRequest) (*aisdk.ChatCompletionResponse, error) {
	if c.config.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	logger := c.logger.With("method", "CreateChatCompletion", "model", req.Model)
	logger.Debug("sending chat completion request", "messages", len(req.Messages))

	body, err := json.Marshal(formatRequest(req))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	start := time.Now()
	resp, err := c.doRequestWithRetry(ctx, http.MethodPost, "/chat/completions", body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &TimeoutError{Operation: "chat completion", Duration: time.Since(start), Cause: err}
		}
		logger.Error("request failed", "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	var result aisdk.ChatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		logger.Error("failed to decode response", "error", err)
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	logger.Info("chat completion successful",
		"usage_prompt", result.Usage.PromptTokens,
		"usage_completion", result.Usage.CompletionTokens,
		"duration", time.Since(start))
	return &result, nil
}

// newRequest creates a new HTTP request with the appropriate headers.
func (c *Client) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	// Optional headers for ranking
	if c.config.SiteURL != "" {
		req.Header.Set("HTTP-Referer", c.config.SiteURL)
	}
	if c.config.SiteName != "" {
		req.Header.Set("X-Title", c.config.SiteName)
	}

	return req, nil
}

// doRequestWithRetry performs an HTTP request, retrying transport failures,
// rate limits and server errors. Any other non-2xx status is returned as an
// *APIError without retrying. Waits between attempts end early when ctx is
// done.
func (c *Client) doRequestWithRetry(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var lastErr error

	logger := c.logger.With("method", "doRequestWithRetry", "path", path)

	for attempt := 1; attempt <= c.config.RetryCount; attempt++ {
		req, err := c.newRequest(ctx, method, path, body)
		if err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(req)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
		case resp.StatusCode < 400:
			return resp, nil
		default:
			lastErr = c.handleError(resp)
			resp.Body.Close()
			if !IsRetryable(lastErr) {
				return nil, lastErr
			}
		}

		if attempt == c.config.RetryCount {
			break
		}

		delay := GetRetryDelay(lastErr, attempt, c.config.RetryDelay)
		logger.Debug("request attempt failed, retrying", "attempt", attempt, "delay", delay, "error", lastErr)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	logger.Error("request failed after all retries", "retry_count", c.config.RetryCount, "error", lastErr)
	return nil, &RetryableError{Err: lastErr, AttemptNum: c.config.RetryCount, MaxAttempts: c.config.RetryCount}
}

// handleError processes error responses from the API.
func (c *Client) handleError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read error response: %w", err)
	}

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    string(body),
		RequestID:  resp.Header.Get("X-Request-ID"),
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		apiErr.Type = errResp.Error.Type
		apiErr.Message = errResp.Error.Message
		apiErr.Param = errResp.Error.Param
		apiErr.Details = errResp.Error.Details
		if errResp.Error.Code != nil {
			apiErr.Code = fmt.Sprint(errResp.Error.Code)
		}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		if secs, err := strconv.ParseFloat(resp.Header.Get("Retry-After"), 64); err == nil {
			if apiErr.Details == nil {
				apiErr.Details = make(map[string]interface{})
			}
			apiErr.Details["retry_after"] = secs
		}
	}

	return apiErr
}

// GetModels implements aisdk.Provider.
func (c *Client) GetModels(ctx context.Context) ([]*aisdk.ModelInfo, error) {
	return c.ListModels(ctx)
}
