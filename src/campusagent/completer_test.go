package campusagent

import (
	"context"
	"testing"

	"github.com/elee1766/campusadmin/src/aisdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModel struct {
	req  *aisdk.ChatCompletionRequest
	resp *aisdk.ChatCompletionResponse
}

func (f *fakeModel) CreateChatCompletion(ctx context.Context, req *aisdk.ChatCompletionRequest) (*aisdk.ChatCompletionResponse, error) {
	f.req = req
	return f.resp, nil
}

func (f *fakeModel) GetModelInfo() *aisdk.ModelInfo {
	return &aisdk.ModelInfo{ID: "test/model"}
}

func TestModelCompleter(t *testing.T) {
	model := &fakeModel{resp: &aisdk.ChatCompletionResponse{
		Choices: []aisdk.Choice{{Message: aisdk.Message{Content: "hi"}}},
		Usage:   aisdk.Usage{PromptTokens: 10, CompletionTokens: 2, TotalTokens: 12},
	}}

	var gotModel string
	var gotUsage aisdk.Usage
	c := NewModelCompleter(model,
		WithTemperature(0.2),
		WithMaxTokens(256),
		WithUsage(func(ctx context.Context, m string, u aisdk.Usage) {
			gotModel, gotUsage = m, u
		}))

	ctx := withIdentity(context.Background(), identityOf(Request{UserID: "admin"}))
	out, err := c.Complete(ctx, []aisdk.Message{{Role: aisdk.RoleUser, Content: "hello"}})
	require.NoError(t, err)

	assert.Equal(t, "hi", out)
	assert.Equal(t, "test/model", gotModel)
	assert.Equal(t, 12, gotUsage.TotalTokens)
	assert.Equal(t, "admin", model.req.User)
	assert.Equal(t, 0.2, *model.req.Temperature)
	assert.Equal(t, 256, *model.req.MaxTokens)
}

func TestModelCompleterNoUsage(t *testing.T) {
	model := &fakeModel{resp: &aisdk.ChatCompletionResponse{}}
	called := false
	c := NewModelCompleter(model, WithMaxTokens(0), WithUsage(func(context.Context, string, aisdk.Usage) { called = true }))

	out, err := c.Complete(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "", out)
	assert.False(t, called)
	assert.Nil(t, model.req.MaxTokens)
}
