package orclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/elee1766/campusadmin/src/aisdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		APIKey:     "test-key",
		BaseURL:    srv.URL,
		RetryCount: 3,
		RetryDelay: time.Millisecond,
	})
}

func completionBody(text string) string {
	b, _ := json.Marshal(aisdk.ChatCompletionResponse{
		ID:      "gen-1",
		Model:   "test/model",
		Choices: []aisdk.Choice{{Message: aisdk.Message{Role: "assistant", Content: text}}},
		Usage:   aisdk.Usage{PromptTokens: 12, CompletionTokens: 3, TotalTokens: 15},
	})
	return string(b)
}

func TestCreateChatCompletion(t *testing.T) {
	var got wireRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/models":
			w.Write([]byte(`{"data":[{"id":"test/model","name":"Test Model","context_length":8192}]}`))
		case "/chat/completions":
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Write([]byte(completionBody("hello")))
		default:
			http.NotFound(w, r)
		}
	})

	mc, err := client.Model(context.Background(), "test/model")
	require.NoError(t, err)
	assert.Equal(t, 8192, mc.GetModelInfo().ContextLength)

	resp, err := mc.CreateChatCompletion(context.Background(), &aisdk.ChatCompletionRequest{
		Messages: []*aisdk.Message{
			{Role: aisdk.RoleSystem, Content: "sys"},
			{Role: aisdk.RoleUser, Content: "hi"},
			{Role: aisdk.RoleToolResult, Content: "[TOOL_RESULT:x]: 1"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Text())
	assert.Equal(t, 12, resp.Usage.PromptTokens)

	assert.Equal(t, "test/model", got.Model)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, "assistant", got.Messages[2].Role, "tool results travel as assistant turns")
}

func TestModelFallsBackWhenMetadataUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"unauthorized","code":401}}`, http.StatusUnauthorized)
	})

	mc, err := client.Model(context.Background(), "some/model")
	require.NoError(t, err)
	assert.Equal(t, "some/model", mc.GetModelInfo().ID)
}

func TestModelNotListed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"id":"other/model"}]}`))
	})

	_, err := client.Model(context.Background(), "some/model")
	assert.ErrorIs(t, err, ErrModelNotFound)
}

func TestRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(completionBody("ok")))
	})

	resp, err := client.createChatCompletion(context.Background(), &aisdk.ChatCompletionRequest{Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text())
	assert.EqualValues(t, 3, calls.Load())
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"bad model","code":"invalid_model"}}`))
	})

	_, err := client.createChatCompletion(context.Background(), &aisdk.ChatCompletionRequest{Model: "m"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "bad model", apiErr.Message)
	assert.Equal(t, "invalid_model", apiErr.Code)
	assert.EqualValues(t, 1, calls.Load())
}

func TestEmptyChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"x","choices":[]}`))
	})

	_, err := client.createChatCompletion(context.Background(), &aisdk.ChatCompletionRequest{Model: "m"})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestMissingAPIKey(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:0"})
	_, err := client.createChatCompletion(context.Background(), &aisdk.ChatCompletionRequest{Model: "m"})
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestDeadlineBecomesTimeoutError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.createChatCompletion(ctx, &aisdk.ChatCompletionRequest{Model: "m"})
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestModelListIsCached(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"data":[{"id":"a/one","name":"One"},{"id":"b/two","name":"Two"}]}`))
	})

	m, err := client.FindModelByName(context.Background(), "two")
	require.NoError(t, err)
	assert.Equal(t, "b/two", m.ID)

	_, err = client.GetModels(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, calls.Load())
	assert.True(t, client.Cache().Stats().ListCacheValid)

	client.Cache().ClearCache()
	assert.False(t, client.Cache().Stats().ListCacheValid)
}
