// Package telemetry exposes Prometheus metrics for agent runs, tool calls
// and token usage.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/elee1766/campusadmin/src/agent"
	"github.com/elee1766/campusadmin/src/aisdk"
	"github.com/elee1766/campusadmin/src/campusagent"
	"github.com/elee1766/campusadmin/src/memory"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "campus"

// Metrics holds the collectors. Each Metrics owns its registry so several
// can coexist in one process.
type Metrics struct {
	Registry *prometheus.Registry

	ToolCalls    *prometheus.CounterVec
	ToolDuration *prometheus.HistogramVec
	Runs         *prometheus.CounterVec
	RunDuration  prometheus.Histogram
	Tokens       *prometheus.CounterVec
	Completions  *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		ToolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Tool executions by tool and status.",
		}, []string{"tool", "status"}),
		ToolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tool_duration_seconds",
			Help:      "Tool execution latency.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"tool"}),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "agent_runs_total",
			Help:      "Agent runs by outcome.",
		}, []string{"outcome"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "agent_run_duration_seconds",
			Help:      "End-to-end agent run latency.",
			Buckets:   prometheus.DefBuckets,
		}),
		Tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_total",
			Help:      "Tokens consumed by model and kind.",
		}, []string{"model", "kind"}),
		Completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completions_total",
			Help:      "Completion calls that reported usage, by model.",
		}, []string{"model"}),
	}
	m.Registry.MustRegister(m.ToolCalls, m.ToolDuration, m.Runs, m.RunDuration, m.Tokens, m.Completions)
	return m
}

// ToolMiddleware records every toolbox execution.
func (m *Metrics) ToolMiddleware() agent.ToolMiddleware {
	return func(next agent.ToolExecutor) agent.ToolExecutor {
		return func(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error) {
			start := time.Now()
			resp, err := next(ctx, call)
			status := "ok"
			if err != nil || (resp != nil && resp.IsError) {
				status = "error"
			}
			m.ToolCalls.WithLabelValues(call.Function.Name, status).Inc()
			m.ToolDuration.WithLabelValues(call.Function.Name).Observe(time.Since(start).Seconds())
			return resp, err
		}
	}
}

// ObserveRun is a campusagent.RunObserver.
func (m *Metrics) ObserveRun(ctx context.Context, id memory.Identity, res *campusagent.Result, elapsed time.Duration) {
	outcome := "answered"
	switch {
	case res.Err != nil:
		outcome = "error"
	case res.Fallback:
		outcome = "fallback"
	}
	m.Runs.WithLabelValues(outcome).Inc()
	m.RunDuration.Observe(elapsed.Seconds())
}

// ObserveUsage is a campusagent.UsageFunc.
func (m *Metrics) ObserveUsage(ctx context.Context, model string, usage aisdk.Usage) {
	m.Completions.WithLabelValues(model).Inc()
	m.Tokens.WithLabelValues(model, "prompt").Add(float64(usage.PromptTokens))
	m.Tokens.WithLabelValues(model, "completion").Add(float64(usage.CompletionTokens))
}

// WriteTextfile writes the current values in the node_exporter textfile
// format. The write is atomic.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}

var (
	_ campusagent.RunObserver = (*Metrics)(nil).ObserveRun
	_ campusagent.UsageFunc   = (*Metrics)(nil).ObserveUsage
)
