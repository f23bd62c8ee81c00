package orclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/elee1766/campusadmin/src/aisdk"
)

// ModelsResponse represents the response from the OpenRouter models API
type ModelsResponse struct {
	Data []*aisdk.ModelInfo `json:"data"`
}

// getModelInfo finds a model in the (cached) model list.
func (c *Client) getModelInfo(ctx context.Context, modelName string) (*aisdk.ModelInfo, error) {
	models, err := c.ListModels(ctx)
	if err != nil {
		return nil, err
	}

	for _, model := range models {
		if model.ID == modelName {
			return model, nil
		}
	}

	return nil, fmt.Errorf("%s: %w", modelName, ErrModelNotFound)
}

// ListModels returns all available models (with caching)
func (c *Client) ListModels(ctx context.Context) ([]*aisdk.ModelInfo, error) {
	return c.modelCache.GetModelList(ctx)
}

// listModelsUncached returns all available models without caching
func (c *Client) listModelsUncached(ctx context.Context) ([]*aisdk.ModelInfo, error) {
	resp, err := c.doRequestWithRetry(ctx, http.MethodGet, "/models", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	defer resp.Body.Close()

	var modelsResp ModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&modelsResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return modelsResp.Data, nil
}

// FindModelByName searches for a model by name (case-insensitive)
func (c *Client) FindModelByName(ctx context.Context, name string) (*aisdk.ModelInfo, error) {
	models, err := c.ListModels(ctx)
	if err != nil {
		return nil, err
	}

	searchName := strings.ToLower(name)

	// First try exact match on ID
	for _, model := range models {
		if strings.ToLower(model.ID) == searchName {
			return model, nil
		}
	}

	// Then try partial match on ID or name
	for _, model := range models {
		if strings.Contains(strings.ToLower(model.ID), searchName) ||
			strings.Contains(strings.ToLower(model.Name), searchName) {
			return model, nil
		}
	}

	return nil, fmt.Errorf("model matching %s: %w", name, ErrModelNotFound)
}
