package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/elee1766/campusadmin/src/aisdk"
)

var (
	// ErrToolNotFound is returned when a call names an unregistered tool.
	ErrToolNotFound = errors.New("tool not found")

	// ErrSealed is returned when registering after the toolbox was sealed.
	ErrSealed = errors.New("toolbox is sealed")
)

// ToolExecutor is a function type for tool execution
type ToolExecutor func(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error)

// DefaultToolbox is the toolbox over the Tool interface.
type DefaultToolbox = Toolbox[Tool]

// Toolbox is the tool registry. Tools and middleware are registered during
// startup; after Seal the registry is read-only and safe for concurrent use
// without locking.
type Toolbox[T Tool] struct {
	tools      map[string]T
	middleware []ToolMiddleware
	sealed     bool
}

// ToolMiddleware is a function that wraps a ToolExecutor to add functionality.
type ToolMiddleware func(next ToolExecutor) ToolExecutor

// NewToolbox creates a new tool manager.
func NewToolbox[T Tool]() *Toolbox[T] {
	return &Toolbox[T]{
		tools: make(map[string]T),
	}
}

// RegisterTool registers a tool.
func (tm *Toolbox[T]) RegisterTool(tool T) error {
	if tm.sealed {
		return fmt.Errorf("register %s: %w", tool.GetName(), ErrSealed)
	}
	if tool.GetName() == "" {
		return fmt.Errorf("tool name cannot be empty")
	}

	if _, exists := tm.tools[tool.GetName()]; exists {
		return fmt.Errorf("tool %s is already registered", tool.GetName())
	}

	tm.tools[tool.GetName()] = tool
	return nil
}

// RegisterMiddleware registers middleware that will be applied to all tool executions.
// Middleware is applied in the order it's registered (first registered = outermost layer).
func (tm *Toolbox[T]) RegisterMiddleware(middleware ToolMiddleware) {
	if tm.sealed {
		return
	}
	tm.middleware = append(tm.middleware, middleware)
}

// Seal ends registration.
func (tm *Toolbox[T]) Seal() {
	tm.sealed = true
}

// Sealed reports whether Seal was called.
func (tm *Toolbox[T]) Sealed() bool {
	return tm.sealed
}

// Tools returns the registered tools sorted by name.
func (tm *Toolbox[T]) Tools() []T {
	out := make([]T, 0, len(tm.tools))
	for _, tool := range tm.tools {
		out = append(out, tool)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GetName() < out[j].GetName() })
	return out
}

// Resolve looks a tool up by name. A false result is the NotFound case.
func (tm *Toolbox[T]) Resolve(name string) (T, bool) {
	tool, exists := tm.tools[name]
	return tool, exists
}

// HasTool checks if a tool is available.
func (tm *Toolbox[T]) HasTool(name string) bool {
	_, exists := tm.tools[name]
	return exists
}

// Len returns the number of registered tools.
func (tm *Toolbox[T]) Len() int {
	return len(tm.tools)
}

// ExecuteTool executes a tool call with middleware applied.
func (tm *Toolbox[T]) ExecuteTool(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error) {
	tool, exists := tm.tools[call.Function.Name]
	if !exists {
		return nil, fmt.Errorf("%s: %w", call.Function.Name, ErrToolNotFound)
	}

	toolExecutor := ToolExecutor(func(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error) {
		return tool.Execute(ctx, call)
	})

	finalExecutor := toolExecutor
	for i := len(tm.middleware) - 1; i >= 0; i-- {
		finalExecutor = tm.middleware[i](finalExecutor)
	}

	return finalExecutor(ctx, call)
}

// LoggingMiddleware logs tool execution details.
func LoggingMiddleware(logger *slog.Logger) ToolMiddleware {
	return func(next ToolExecutor) ToolExecutor {
		return func(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error) {
			start := time.Now()
			logger.Info("executing tool", "tool", call.Function.Name, "params", string(call.Function.Arguments))
			result, err := next(ctx, call)
			switch {
			case err != nil:
				logger.Warn("tool execution failed", "tool", call.Function.Name, "error", err, "duration", time.Since(start))
			case result != nil && result.IsError:
				logger.Warn("tool returned error", "tool", call.Function.Name, "error", string(result.Content), "duration", time.Since(start))
			default:
				logger.Info("tool execution completed", "tool", call.Function.Name, "duration", time.Since(start))
			}
			return result, err
		}
	}
}
