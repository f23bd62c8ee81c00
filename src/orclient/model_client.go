package orclient

import (
	"context"
	"errors"

	"github.com/elee1766/campusadmin/src/aisdk"
)

var _ aisdk.ModelClient = (*ModelClient)(nil)

// ModelClient represents a client bound to a specific model
type ModelClient struct {
	client *Client
	model  *aisdk.ModelInfo
}

// Model creates a ModelClient bound to the specified model. Model metadata
// is informational, so when the models endpoint cannot be reached the
// client is still returned with a bare ModelInfo. A model the endpoint
// does not list is an error.
func (c *Client) Model(ctx context.Context, modelName string) (aisdk.ModelClient, error) {
	modelInfo, err := c.modelCache.GetModel(ctx, modelName)
	if err != nil {
		if errors.Is(err, ErrModelNotFound) {
			return nil, err
		}
		c.logger.Warn("model metadata unavailable", "model", modelName, "error", err)
		modelInfo = &aisdk.ModelInfo{ID: modelName, Name: modelName}
	}

	return &ModelClient{
		client: c,
		model:  modelInfo,
	}, nil
}

// CreateChatCompletion creates a chat completion with the bound model
func (mc *ModelClient) CreateChatCompletion(ctx context.Context, req *aisdk.ChatCompletionRequest) (*aisdk.ChatCompletionResponse, error) {
	bound := *req
	bound.Model = mc.model.ID
	return mc.client.createChatCompletion(ctx, &bound)
}

// GetModelInfo returns the model information
func (mc *ModelClient) GetModelInfo() *aisdk.ModelInfo {
	return mc.model
}
