// Package oaiclient adapts the official OpenAI SDK to aisdk.Provider so
// any OpenAI-compatible endpoint can serve completions.
package oaiclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/elee1766/campusadmin/src/aisdk"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const defaultBaseURL = "https://api.openai.com/v1"

// ErrNoAPIKey indicates the API key is missing.
var ErrNoAPIKey = errors.New("API key is required")

var (
	_ aisdk.Provider    = (*Client)(nil)
	_ aisdk.ModelClient = (*ModelClient)(nil)
)

// Client talks to an OpenAI-compatible API.
type Client struct {
	client openai.Client
	logger *slog.Logger
}

// NewClient creates a client from the shared client configuration.
func NewClient(cfg aisdk.ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	opts := []option.RequestOption{
		option.WithBaseURL(cfg.BaseURL),
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.RetryCount > 0 {
		opts = append(opts, option.WithMaxRetries(cfg.RetryCount))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		client: openai.NewClient(opts...),
		logger: logger.With("component", "openai_client"),
	}, nil
}

// GetModels lists the models the endpoint serves.
func (c *Client) GetModels(ctx context.Context) ([]*aisdk.ModelInfo, error) {
	page, err := c.client.Models.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	out := make([]*aisdk.ModelInfo, 0, len(page.Data))
	for _, m := range page.Data {
		out = append(out, &aisdk.ModelInfo{ID: m.ID, Name: m.ID, Created: m.Created})
	}
	return out, nil
}

// Model binds a model. Metadata lookups that fail leave a bare ModelInfo.
func (c *Client) Model(ctx context.Context, modelName string) (aisdk.ModelClient, error) {
	info := &aisdk.ModelInfo{ID: modelName, Name: modelName}
	if m, err := c.client.Models.Get(ctx, modelName); err == nil {
		info.Created = m.Created
		info.Description = "owned by " + m.OwnedBy
	} else {
		c.logger.Debug("model metadata unavailable", "model", modelName, "error", err)
	}
	return &ModelClient{client: c, model: info}, nil
}

// ModelClient is a Client bound to one model.
type ModelClient struct {
	client *Client
	model  *aisdk.ModelInfo
}

// GetModelInfo returns the model information
func (mc *ModelClient) GetModelInfo() *aisdk.ModelInfo {
	return mc.model
}

// CreateChatCompletion sends the conversation and maps the SDK response
// back into aisdk types.
func (mc *ModelClient) CreateChatCompletion(ctx context.Context, req *aisdk.ChatCompletionRequest) (*aisdk.ChatCompletionResponse, error) {
	params := openai.ChatCompletionNewParams{
		Messages: convertMessages(req.Messages),
		Model:    openai.ChatModel(mc.model.ID),
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}
	if req.MaxTokens != nil {
		params.MaxCompletionTokens = openai.Int(int64(*req.MaxTokens))
	}
	if req.TopP != nil {
		params.TopP = openai.Float(*req.TopP)
	}
	if req.User != "" {
		params.User = openai.String(req.User)
	}

	start := time.Now()
	resp, err := mc.client.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	out := &aisdk.ChatCompletionResponse{
		ID:      resp.ID,
		Object:  string(resp.Object),
		Created: resp.Created,
		Model:   resp.Model,
		Usage: aisdk.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}
	for _, ch := range resp.Choices {
		out.Choices = append(out.Choices, aisdk.Choice{
			Index:        int(ch.Index),
			Message:      aisdk.Message{Role: aisdk.RoleAssistant, Content: ch.Message.Content},
			FinishReason: ch.FinishReason,
		})
	}

	mc.client.logger.Info("chat completion successful",
		"model", mc.model.ID,
		"usage_prompt", out.Usage.PromptTokens,
		"usage_completion", out.Usage.CompletionTokens,
		"duration", time.Since(start))
	return out, nil
}

// convertMessages maps aisdk roles onto SDK message params. Tool results
// travel as assistant turns and unknown roles as user turns.
func convertMessages(msgs []*aisdk.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, msg := range msgs {
		if msg == nil {
			continue
		}
		switch msg.Role {
		case aisdk.RoleSystem:
			out = append(out, openai.SystemMessage(msg.Content))
		case aisdk.RoleAssistant, aisdk.RoleToolResult:
			out = append(out, openai.AssistantMessage(msg.Content))
		default:
			out = append(out, openai.UserMessage(msg.Content))
		}
	}
	return out
}
