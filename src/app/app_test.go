package app

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/elee1766/campusadmin/src/aisdk"
	"github.com/elee1766/campusadmin/src/campusagent"
	"github.com/elee1766/campusadmin/src/config"
	"github.com/elee1766/campusadmin/src/storage"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedModel answers each completion with the next scripted reply.
type scriptedModel struct {
	replies []string
	calls   [][]*aisdk.Message
}

func (m *scriptedModel) GetModelInfo() *aisdk.ModelInfo { return &aisdk.ModelInfo{ID: "test/model"} }

func (m *scriptedModel) CreateChatCompletion(ctx context.Context, req *aisdk.ChatCompletionRequest) (*aisdk.ChatCompletionResponse, error) {
	m.calls = append(m.calls, req.Messages)
	reply := ""
	if len(m.replies) > 0 {
		reply, m.replies = m.replies[0], m.replies[1:]
	}
	return &aisdk.ChatCompletionResponse{
		Model:   "test/model",
		Choices: []aisdk.Choice{{Message: aisdk.Message{Role: aisdk.RoleAssistant, Content: reply}}},
		Usage:   aisdk.Usage{PromptTokens: 10, CompletionTokens: 2, TotalTokens: 12},
	}, nil
}

type fakeProvider struct{ model *scriptedModel }

func (p fakeProvider) GetModels(ctx context.Context) ([]*aisdk.ModelInfo, error) {
	return []*aisdk.ModelInfo{p.model.GetModelInfo()}, nil
}

func (p fakeProvider) Model(ctx context.Context, name string) (aisdk.ModelClient, error) {
	return p.model, nil
}

func newTestApp(t *testing.T, backend string) *App {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Storage.DatabasePath = filepath.Join(t.TempDir(), "campus.db")
	cfg.Memory.Backend = backend
	cfg.Metrics.TextfilePath = filepath.Join(t.TempDir(), "campus.prom")

	a, err := New(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestSeed(t *testing.T) {
	a := newTestApp(t, config.BackendMemory)
	ctx := context.Background()

	n, err := a.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = a.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "seeding is idempotent")

	count, err := storage.CountActiveStudents(ctx, a.DB.DB())
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestToolboxRegistered(t *testing.T) {
	a := newTestApp(t, config.BackendMemory)
	assert.Equal(t, 17, a.Toolbox.Len())
	assert.Contains(t, a.Toolbox.Describe(), "Tool: send_email")
}

func TestAgentEndToEnd(t *testing.T) {
	a := newTestApp(t, config.BackendSQLite)
	ctx := context.Background()
	_, err := a.Seed(ctx)
	require.NoError(t, err)

	model := &scriptedModel{replies: []string{
		"Let me check. [TOOL_CALL:get_total_students:{}]",
		"There are 5 students enrolled.",
	}}
	a.Provider = fakeProvider{model: model}

	ag, err := a.Agent(ctx)
	require.NoError(t, err)

	res := ag.Run(ctx, campusagent.Request{UserID: "admin", ThreadID: "t1", Message: "How many students?", Persist: true})
	require.NoError(t, res.Err)
	assert.Equal(t, "There are 5 students enrolled.", res.Answer)
	assert.Equal(t, []string{"get_total_students"}, res.ToolsUsed)

	require.Len(t, model.calls, 2)
	assert.True(t, strings.Contains(model.calls[0][0].Content, "get_total_students"), "system prompt carries the catalog")

	summary, err := storage.SummarizeUsage(ctx, a.DB.DB(), time.Time{})
	require.NoError(t, err)
	require.Len(t, summary, 1)
	assert.Equal(t, 2, summary[0].Requests)
	assert.Equal(t, 20, summary[0].PromptTokens)

	thread, err := storage.GetThread(ctx, a.DB.DB(), "admin", "t1")
	require.NoError(t, err)
	require.NotNil(t, thread, "persisted through the sqlite backend")

	assert.Equal(t, 1.0, testutil.ToFloat64(a.Metrics.Runs.WithLabelValues("answered")))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.Metrics.ToolCalls.WithLabelValues("get_total_students", "ok")))
	require.NoError(t, a.FlushMetrics())
}

func TestAgentNeedsAPIKey(t *testing.T) {
	a := newTestApp(t, config.BackendMemory)
	a.Config.API.APIKey = ""
	_, err := a.Agent(context.Background())
	assert.Error(t, err)
}

func TestNewProvider(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.API.APIKey = "k"
	p, err := NewProvider(cfg, nil)
	require.NoError(t, err)
	assert.NotNil(t, p)

	cfg = config.DefaultOpenAIConfig()
	cfg.API.APIKey = "k"
	p, err = NewProvider(cfg, nil)
	require.NoError(t, err)
	assert.NotNil(t, p)

	cfg.API.APIKey = ""
	_, err = NewProvider(cfg, nil)
	assert.Error(t, err)
}
