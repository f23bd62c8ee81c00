// Package campusagent runs the campus administration conversation loop:
// one model turn, at most one round of tool calls, and a summarizing turn.
package campusagent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/elee1766/campusadmin/src/agent"
	"github.com/elee1766/campusadmin/src/aisdk"
	"github.com/elee1766/campusadmin/src/memory"
)

const (
	DefaultUserID   = "default_user"
	DefaultThreadID = "default"
)

// Config holds the loop's tunables.
type Config struct {
	// SystemPrompt is sent as the first message of every prompt.
	SystemPrompt string

	// MaxTurns bounds the history included in each prompt. <= 0 means all.
	MaxTurns int

	// CompletionTimeout bounds each completion call. Zero disables it.
	CompletionTimeout time.Duration

	// ToolTimeout bounds tools whose MaySuspend is true. Zero disables it.
	ToolTimeout time.Duration

	Logger *slog.Logger
}

// Request is one inbound user message.
type Request struct {
	UserID   string
	ThreadID string
	Message  string
	// Attachment, when set, replaces the thread's document text.
	Attachment string
	// Persist writes the thread through to the durable store after the run.
	Persist bool
}

// ToolResult is the outcome of one executed call.
type ToolResult struct {
	Name      string
	Arguments map[string]any
	Output    string
	Failed    bool
	Duration  time.Duration
}

// Result is the outcome of a run. Err is set only for diagnostics; Answer
// always carries user-facing text.
type Result struct {
	Answer      string
	ToolsUsed   []string
	ToolResults []ToolResult
	Fallback    bool
	Err         error
}

// Chunk is one piece of a streamed answer.
type Chunk struct {
	Text      string
	ToolsUsed []string
	Err       error
}

// ToolObserver is notified after each tool execution.
type ToolObserver func(ctx context.Context, id memory.Identity, res ToolResult)

// RunObserver is notified after each run.
type RunObserver func(ctx context.Context, id memory.Identity, res *Result, elapsed time.Duration)

// Agent is the conversation loop. It is safe for concurrent use; requests
// for the same identity are serialized.
type Agent struct {
	cfg       Config
	completer Completer
	toolbox   *agent.DefaultToolbox
	store     *memory.Store
	formatter Formatter
	onTool    []ToolObserver
	onRun     []RunObserver
	logger    *slog.Logger
}

// Option configures an Agent.
type Option func(*Agent)

// WithFormatter replaces the fallback formatter.
func WithFormatter(f Formatter) Option {
	return func(a *Agent) { a.formatter = f }
}

// OnTool registers a tool observer.
func OnTool(fn ToolObserver) Option {
	return func(a *Agent) { a.onTool = append(a.onTool, fn) }
}

// OnRun registers a run observer.
func OnRun(fn RunObserver) Option {
	return func(a *Agent) { a.onRun = append(a.onRun, fn) }
}

// New creates an Agent. The toolbox is sealed if it is not already.
func New(cfg Config, completer Completer, toolbox *agent.DefaultToolbox, store *memory.Store, opts ...Option) (*Agent, error) {
	if completer == nil {
		return nil, ErrNoCompleter
	}
	if toolbox == nil {
		toolbox = agent.NewToolbox[agent.Tool]()
	}
	toolbox.Seal()
	if store == nil {
		store = memory.NewStore()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	a := &Agent{
		cfg:       cfg,
		completer: completer,
		toolbox:   toolbox,
		store:     store,
		formatter: KeywordFormatter{},
		logger:    logger.With("component", "campusagent"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Store returns the agent's conversation store.
func (a *Agent) Store() *memory.Store {
	return a.store
}

// Toolbox returns the agent's tool registry.
func (a *Agent) Toolbox() *agent.DefaultToolbox {
	return a.toolbox
}

// Stream runs the request and delivers the whole answer as a single chunk.
func (a *Agent) Stream(ctx context.Context, req Request) <-chan Chunk {
	ch := make(chan Chunk, 1)
	go func() {
		defer close(ch)
		res := a.Run(ctx, req)
		ch <- Chunk{Text: res.Answer, ToolsUsed: res.ToolsUsed, Err: res.Err}
	}()
	return ch
}

// Run handles one user message end to end. It never panics on model or
// tool failures and always returns a non-nil Result.
func (a *Agent) Run(ctx context.Context, req Request) *Result {
	id := identityOf(req)
	ctx = withIdentity(ctx, id)

	start := time.Now()
	res := a.run(ctx, id, req)
	for _, fn := range a.onRun {
		fn(ctx, id, res, time.Since(start))
	}
	return res
}

func identityOf(req Request) memory.Identity {
	id := memory.Identity{UserID: req.UserID, ThreadID: req.ThreadID}
	if id.UserID == "" {
		id.UserID = DefaultUserID
	}
	if id.ThreadID == "" {
		id.ThreadID = DefaultThreadID
	}
	return id
}

func apology(err error) string {
	return "I apologize, but I encountered an error: " + err.Error()
}

func (a *Agent) run(ctx context.Context, id memory.Identity, req Request) *Result {
	logger := a.logger.With("user", id.UserID, "thread", id.ThreadID)

	unlock, err := a.store.Lock(ctx, id)
	if err != nil {
		return &Result{Answer: apology(err), Err: err}
	}
	defer unlock()

	working := a.prompt(ctx, id, req.Message, req.Attachment)

	logger.Debug("requesting first completion", "messages", len(working))
	first, err := a.complete(ctx, working)
	if err != nil {
		logger.Error("completion failed", "error", err)
		return &Result{Answer: apology(err), Err: fmt.Errorf("first completion: %w", err)}
	}

	res := &Result{Answer: first}

	calls := ParseToolCalls(first)
	if len(calls) > 0 {
		logger.Info("executing tool calls", "count", len(calls))

		summaries := make([]string, 0, len(calls))
		for _, call := range calls {
			tr := a.execute(ctx, id, call)
			res.ToolsUsed = append(res.ToolsUsed, call.Name)
			res.ToolResults = append(res.ToolResults, tr)
			summaries = append(summaries, call.Name+": "+tr.Output)
			working = append(working, aisdk.Message{
				Role:    aisdk.RoleToolResult,
				Content: agent.FormatResult(call.Name, tr.Output),
			})
		}

		second, err := a.complete(ctx, working)
		if err != nil {
			logger.Warn("final completion failed, using fallback", "error", err)
			second = ""
		}

		trimmed := strings.TrimSpace(second)
		if trimmed == "" || trimmed == strings.TrimSpace(first) {
			res.Answer = a.formatter.Format(req.Message, calls, summaries)
			res.Fallback = true
		} else {
			res.Answer = second
		}
	}

	// a run that ends in an apology leaves the thread untouched
	if req.Attachment != "" {
		a.store.SetAttachment(ctx, id, req.Attachment)
	}
	a.store.Append(ctx, id,
		aisdk.Message{Role: aisdk.RoleUser, Content: req.Message},
		aisdk.Message{Role: aisdk.RoleAssistant, Content: res.Answer},
	)

	if req.Persist {
		if err := a.store.Persist(ctx, id); err != nil {
			logger.Warn("failed to persist thread", "error", err)
		}
	}

	return res
}

// prompt assembles system instructions, the thread's attachment, bounded
// history and the new user turn. A non-empty attachment takes the place of
// the stored one.
func (a *Agent) prompt(ctx context.Context, id memory.Identity, message, attachment string) []aisdk.Message {
	history := a.store.History(ctx, id, a.cfg.MaxTurns)

	msgs := make([]aisdk.Message, 0, len(history)+3)
	if a.cfg.SystemPrompt != "" {
		msgs = append(msgs, aisdk.Message{Role: aisdk.RoleSystem, Content: a.cfg.SystemPrompt})
	}
	doc := attachment
	if doc == "" {
		doc = a.store.Attachment(ctx, id)
	}
	if doc != "" {
		msgs = append(msgs, aisdk.Message{
			Role:    aisdk.RoleSystem,
			Content: "Document provided by the user for this conversation:\n\n" + doc,
		})
	}
	msgs = append(msgs, history...)
	msgs = append(msgs, aisdk.Message{Role: aisdk.RoleUser, Content: message})
	return msgs
}

func (a *Agent) complete(ctx context.Context, msgs []aisdk.Message) (string, error) {
	if a.cfg.CompletionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.CompletionTimeout)
		defer cancel()
	}
	return a.completer.Complete(ctx, msgs)
}

// execute runs one call and always produces a textual result.
func (a *Agent) execute(ctx context.Context, id memory.Identity, call ToolCallRequest) ToolResult {
	start := time.Now()
	tr := ToolResult{Name: call.Name, Arguments: call.Arguments}

	out, err := a.invoke(ctx, call)
	if err != nil {
		tr.Output = fmt.Sprintf("Error executing %s: %s", call.Name, err)
		tr.Failed = true
	} else {
		tr.Output = out
	}
	tr.Duration = time.Since(start)

	for _, fn := range a.onTool {
		fn(ctx, id, tr)
	}
	return tr
}

type toolOutcome struct {
	resp *aisdk.ToolResponse
	err  error
}

func (a *Agent) invoke(ctx context.Context, call ToolCallRequest) (string, error) {
	tool, ok := a.toolbox.Resolve(call.Name)
	if !ok {
		return "", agent.ErrToolNotFound
	}

	tc := &aisdk.ToolCall{
		Type:     "function",
		Function: aisdk.FunctionCall{Name: call.Name, Arguments: call.Raw},
	}

	var resp *aisdk.ToolResponse
	var err error
	if tool.MaySuspend() && a.cfg.ToolTimeout > 0 {
		tctx, cancel := context.WithTimeout(ctx, a.cfg.ToolTimeout)
		defer cancel()

		done := make(chan toolOutcome, 1)
		go func() {
			r, e := a.toolbox.ExecuteTool(tctx, tc)
			done <- toolOutcome{r, e}
		}()
		select {
		case o := <-done:
			resp, err = o.resp, o.err
		case <-tctx.Done():
			return "", fmt.Errorf("timed out after %s", a.cfg.ToolTimeout)
		}
	} else {
		resp, err = a.toolbox.ExecuteTool(ctx, tc)
	}

	switch {
	case errors.Is(err, agent.ErrToolNotFound):
		return "", agent.ErrToolNotFound
	case err != nil:
		return "", err
	case resp == nil:
		return "", errors.New("no response")
	case resp.IsError:
		return "", errors.New(string(resp.Content))
	}
	return string(resp.Content), nil
}
