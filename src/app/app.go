package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/elee1766/campusadmin/src/agent"
	"github.com/elee1766/campusadmin/src/aisdk"
	"github.com/elee1766/campusadmin/src/campusagent"
	"github.com/elee1766/campusadmin/src/campusagent/tools"
	"github.com/elee1766/campusadmin/src/campusagent/toolsutil"
	"github.com/elee1766/campusadmin/src/config"
	"github.com/elee1766/campusadmin/src/memory"
	"github.com/elee1766/campusadmin/src/oaiclient"
	"github.com/elee1766/campusadmin/src/orclient"
	"github.com/elee1766/campusadmin/src/storage"
	"github.com/elee1766/campusadmin/src/telemetry"
	"github.com/go-redis/redis/v8"
)

// App represents the main application with all services
type App struct {
	Config  *config.Config
	DB      *storage.DB
	Store   *memory.Store
	Toolbox *agent.DefaultToolbox
	Metrics *telemetry.Metrics
	Logger  *slog.Logger

	// Provider overrides the completion provider built from Config.
	Provider aisdk.Provider

	// Now is the clock handed to the tools. Defaults to time.Now.
	Now func() time.Time

	redis *redis.Client

	agentOnce sync.Once
	agent     *campusagent.Agent
	agentErr  error
}

// New opens storage, the conversation store and the toolbox. The completion
// provider is created lazily so commands that never talk to a model work
// without an API key.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	toolsutil.SetLogger(logger.With("component", "tools"))

	dbPath := cfg.Storage.DatabasePath
	if dbPath == "" {
		dbPath = config.GetDefaultStoragePaths().DatabasePath
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	a := &App{
		Config:  cfg,
		DB:      db,
		Metrics: telemetry.New(),
		Logger:  logger,
		Now:     time.Now,
	}

	durable, err := a.durable(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}
	opts := []memory.Option{memory.WithLogger(logger.With("component", "memory"))}
	if durable != nil {
		opts = append(opts, memory.WithDurable(durable))
	}
	a.Store = memory.NewStore(opts...)

	a.Toolbox, err = a.buildToolbox()
	if err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

func (a *App) durable(ctx context.Context) (memory.Durable, error) {
	switch a.Config.Memory.Backend {
	case config.BackendMemory:
		return nil, nil
	case config.BackendRedis:
		rc := a.Config.Memory.Redis
		a.redis = redis.NewClient(&redis.Options{
			Addr:     rc.Addr,
			Password: rc.Password,
			DB:       rc.DB,
		})
		d, err := memory.NewRedisDurable(ctx, a.redis, rc.Prefix, rc.TTL.Duration)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", rc.Addr, err)
		}
		return d, nil
	default:
		return memory.NewSQLDurable(a.DB), nil
	}
}

func (a *App) buildToolbox() (*agent.DefaultToolbox, error) {
	tb := agent.NewToolbox[agent.Tool]()
	tb.RegisterMiddleware(agent.LoggingMiddleware(a.Logger.With("component", "toolbox")))
	tb.RegisterMiddleware(a.Metrics.ToolMiddleware())

	err := tools.Register(tb, tools.Deps{
		DB:       a.DB,
		Info:     CampusInfo(a.Config.Campus),
		Location: a.Config.Campus.Location(),
		Now:      func() time.Time { return a.Now() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}
	return tb, nil
}

// CampusInfo converts the configured hours tables for the info tools.
func CampusInfo(c config.CampusConfig) tools.CampusInfo {
	conv := func(rows []config.Timing) []tools.Timing {
		out := make([]tools.Timing, 0, len(rows))
		for _, r := range rows {
			out = append(out, tools.Timing{Label: r.Label, Hours: r.Hours})
		}
		return out
	}
	return tools.CampusInfo{Cafeteria: conv(c.Cafeteria), Library: conv(c.Library)}
}

// NewProvider builds the completion provider the config selects.
func NewProvider(cfg *config.Config, logger *slog.Logger) (aisdk.Provider, error) {
	api := cfg.API
	switch api.Provider {
	case config.ProviderOpenAI:
		return oaiclient.NewClient(aisdk.ClientConfig{
			APIKey:     api.APIKey,
			BaseURL:    api.BaseURL,
			Timeout:    api.Timeout.Duration,
			RetryCount: api.MaxRetries,
			RetryDelay: api.RetryDelay.Duration,
			Logger:     logger,
		})
	default:
		if api.APIKey == "" {
			return nil, orclient.ErrNoAPIKey
		}
		return orclient.NewClient(orclient.Config{
			APIKey:     api.APIKey,
			BaseURL:    api.BaseURL,
			Logger:     logger,
			Timeout:    api.Timeout.Duration,
			RetryCount: api.MaxRetries,
			RetryDelay: api.RetryDelay.Duration,
			SiteURL:    api.SiteURL,
			SiteName:   api.SiteName,
		}), nil
	}
}

// ModelProvider returns the override Provider or one built from Config.
func (a *App) ModelProvider() (aisdk.Provider, error) {
	if a.Provider != nil {
		return a.Provider, nil
	}
	provider, err := NewProvider(a.Config, a.Logger.With("component", "provider"))
	if err != nil {
		return nil, fmt.Errorf("failed to create completion provider: %w", err)
	}
	a.Provider = provider
	return provider, nil
}

// Agent returns the conversation loop, creating the provider on first use.
func (a *App) Agent(ctx context.Context) (*campusagent.Agent, error) {
	a.agentOnce.Do(func() {
		a.agent, a.agentErr = a.buildAgent(ctx)
	})
	return a.agent, a.agentErr
}

func (a *App) buildAgent(ctx context.Context) (*campusagent.Agent, error) {
	provider, err := a.ModelProvider()
	if err != nil {
		return nil, err
	}

	model, err := provider.Model(ctx, a.Config.Agent.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to load model %s: %w", a.Config.Agent.Model, err)
	}

	completer := campusagent.NewModelCompleter(model,
		campusagent.WithTemperature(float64(a.Config.Agent.Temperature)),
		campusagent.WithMaxTokens(a.Config.Agent.MaxTokens),
		campusagent.WithUsage(a.recordUsage),
	)

	systemPrompt := a.Config.Agent.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = campusagent.GenerateSystemPrompt(a.Toolbox, a.Config.Campus.Name, a.Now())
	}

	return campusagent.New(campusagent.Config{
		SystemPrompt:      systemPrompt,
		MaxTurns:          a.Config.Agent.MaxTurns,
		CompletionTimeout: a.Config.Agent.CompletionTimeout.Duration,
		ToolTimeout:       a.Config.Agent.ToolTimeout.Duration,
		Logger:            a.Logger.With("component", "agent"),
	}, completer, a.Toolbox, a.Store,
		campusagent.OnRun(a.Metrics.ObserveRun),
		campusagent.OnTool(a.observeTool),
	)
}

// recordUsage stores the token usage of one completion.
func (a *App) recordUsage(ctx context.Context, model string, usage aisdk.Usage) {
	a.Metrics.ObserveUsage(ctx, model, usage)

	rec := &storage.UsageRecord{
		Model:            model,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
	}
	if id, ok := campusagent.IdentityFromContext(ctx); ok {
		rec.UserID = id.UserID
		rec.ThreadID = id.ThreadID
	}
	// the run's context may already be past its deadline
	if err := storage.CreateUsageRecord(context.WithoutCancel(ctx), a.DB.DB(), rec); err != nil {
		a.Logger.Warn("failed to record usage", "model", model, "error", err)
	}
}

func (a *App) observeTool(ctx context.Context, id memory.Identity, res campusagent.ToolResult) {
	a.Logger.Debug("tool finished",
		"identity", id.String(),
		"tool", res.Name,
		"failed", res.Failed,
		"duration", res.Duration,
	)
}

// FlushMetrics writes the metrics textfile when one is configured.
func (a *App) FlushMetrics() error {
	if a.Config.Metrics.TextfilePath == "" {
		return nil
	}
	return a.Metrics.WriteTextfile(a.Config.Metrics.TextfilePath)
}

// Close closes all resources held by the app
func (a *App) Close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}
