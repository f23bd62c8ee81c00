package agent

import (
	"context"

	"github.com/elee1766/campusadmin/src/aisdk"
	jsonschema "github.com/swaggest/jsonschema-go"
)

// Tool is the interface that all tools must implement
type Tool interface {
	// GetType returns the tool type (always "function" for now)
	GetType() string

	// GetName returns the tool's name
	GetName() string

	// GetDescription returns the tool's description
	GetDescription() string

	// GetParameters returns the JSON schema for the tool's parameters
	GetParameters() *jsonschema.Schema

	// MaySuspend reports whether Execute can block on I/O. Only such tools
	// are bounded by the agent's tool timeout.
	MaySuspend() bool

	// Execute runs the tool with the given parameters
	Execute(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error)
}

// ToolOption configures a tool at construction time.
type ToolOption func(*toolOptions)

type toolOptions struct {
	maySuspend bool
}

// Suspending marks a tool as I/O bound.
func Suspending() ToolOption {
	return func(o *toolOptions) { o.maySuspend = true }
}

func applyOptions(opts []ToolOption) toolOptions {
	var o toolOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
