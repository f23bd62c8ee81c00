package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elee1766/campusadmin/src/aisdk"
	jsonschema "github.com/swaggest/jsonschema-go"
)

// FuncHandler receives the decoded argument object and returns the tool's
// textual result verbatim.
type FuncHandler func(ctx context.Context, args map[string]any) (string, error)

// FuncTool is a tool backed by a plain function and a hand-written schema.
// Unlike GenericTool its result text is not JSON-encoded.
type FuncTool struct {
	Name        string
	Description string
	Parameters  *jsonschema.Schema
	Handler     FuncHandler
	suspends    bool
}

// NewFuncTool builds a FuncTool. A nil schema means the tool takes no arguments.
func NewFuncTool(name, description string, params *jsonschema.Schema, handler FuncHandler, opts ...ToolOption) *FuncTool {
	o := applyOptions(opts)
	return &FuncTool{
		Name:        name,
		Description: description,
		Parameters:  params,
		Handler:     handler,
		suspends:    o.maySuspend,
	}
}

func (t *FuncTool) GetType() string {
	return "function"
}

func (t *FuncTool) GetName() string {
	return t.Name
}

func (t *FuncTool) GetDescription() string {
	return t.Description
}

func (t *FuncTool) GetParameters() *jsonschema.Schema {
	return t.Parameters
}

func (t *FuncTool) MaySuspend() bool {
	return t.suspends
}

// Execute decodes the arguments and runs the handler.
func (t *FuncTool) Execute(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error) {
	if t.Handler == nil {
		return nil, fmt.Errorf("tool %s has no handler", t.Name)
	}

	args := map[string]any{}
	if raw := strings.TrimSpace(string(call.Function.Arguments)); raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			return errorResponse(fmt.Sprintf("failed to parse input: %v", err)), nil
		}
	}

	out, err := t.Handler(ctx, args)
	if err != nil {
		return errorResponse(err.Error()), nil
	}
	return &aisdk.ToolResponse{Type: "success", Content: []byte(out)}, nil
}

var _ Tool = (*FuncTool)(nil)
