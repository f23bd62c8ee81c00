package campusagent

import (
	"context"
	"errors"

	"github.com/elee1766/campusadmin/src/aisdk"
)

// ErrNoCompleter is returned by New when no completer is configured.
var ErrNoCompleter = errors.New("no completer configured")

// Completer turns a conversation into the model's next reply.
type Completer interface {
	Complete(ctx context.Context, messages []aisdk.Message) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, messages []aisdk.Message) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, messages []aisdk.Message) (string, error) {
	return f(ctx, messages)
}

// UsageFunc receives the token usage of each completion. The identity of
// the run is available through IdentityFromContext.
type UsageFunc func(ctx context.Context, model string, usage aisdk.Usage)

// ModelCompleter is a Completer over an aisdk.ModelClient.
type ModelCompleter struct {
	client      aisdk.ModelClient
	temperature *float64
	maxTokens   *int
	onUsage     UsageFunc
}

// CompleterOption configures a ModelCompleter.
type CompleterOption func(*ModelCompleter)

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) CompleterOption {
	return func(c *ModelCompleter) { c.temperature = &t }
}

// WithMaxTokens bounds the completion length.
func WithMaxTokens(n int) CompleterOption {
	return func(c *ModelCompleter) {
		if n > 0 {
			c.maxTokens = &n
		}
	}
}

// WithUsage registers a callback for token usage.
func WithUsage(fn UsageFunc) CompleterOption {
	return func(c *ModelCompleter) { c.onUsage = fn }
}

// NewModelCompleter creates a Completer bound to client's model.
func NewModelCompleter(client aisdk.ModelClient, opts ...CompleterOption) *ModelCompleter {
	c := &ModelCompleter{client: client}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *ModelCompleter) Complete(ctx context.Context, messages []aisdk.Message) (string, error) {
	msgs := make([]*aisdk.Message, len(messages))
	for i := range messages {
		msgs[i] = &messages[i]
	}

	req := &aisdk.ChatCompletionRequest{
		Messages:    msgs,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
	if id, ok := IdentityFromContext(ctx); ok {
		req.User = id.UserID
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}

	if c.onUsage != nil && resp.Usage != (aisdk.Usage{}) {
		model := resp.Model
		if model == "" {
			model = c.client.GetModelInfo().ID
		}
		c.onUsage(ctx, model, resp.Usage)
	}
	return resp.Text(), nil
}

var _ Completer = (*ModelCompleter)(nil)
