package agent

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/elee1766/campusadmin/src/aisdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoTool(name string) *FuncTool {
	return NewFuncTool(name, "echo", nil, func(ctx context.Context, args map[string]any) (string, error) {
		return name, nil
	})
}

func call(name, args string) *aisdk.ToolCall {
	return &aisdk.ToolCall{Type: "function", Function: aisdk.FunctionCall{Name: name, Arguments: json.RawMessage(args)}}
}

func TestRegisterTool(t *testing.T) {
	tb := NewToolbox[Tool]()

	require.NoError(t, tb.RegisterTool(echoTool("a")))
	assert.Error(t, tb.RegisterTool(echoTool("a")), "duplicate names are rejected")
	assert.Error(t, tb.RegisterTool(echoTool("")), "empty names are rejected")

	tb.Seal()
	err := tb.RegisterTool(echoTool("b"))
	assert.ErrorIs(t, err, ErrSealed)
	assert.Equal(t, 1, tb.Len())
}

func TestResolve(t *testing.T) {
	tb := NewToolbox[Tool]()
	require.NoError(t, tb.RegisterTool(echoTool("a")))
	tb.Seal()

	tool, ok := tb.Resolve("a")
	require.True(t, ok)
	assert.Equal(t, "a", tool.GetName())

	_, ok = tb.Resolve("missing")
	assert.False(t, ok)
}

func TestConcurrentResolve(t *testing.T) {
	tb := NewToolbox[Tool]()
	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, tb.RegisterTool(echoTool(name)))
	}
	tb.Seal()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, name := range []string{"a", "b", "c", "d"} {
				tb.Resolve(name)
				tb.Describe()
			}
		}()
	}
	wg.Wait()
}

func TestExecuteToolNotFound(t *testing.T) {
	tb := NewToolbox[Tool]()
	_, err := tb.ExecuteTool(context.Background(), call("nope", "{}"))
	assert.ErrorIs(t, err, ErrToolNotFound)
}

func TestMiddlewareOrder(t *testing.T) {
	tb := NewToolbox[Tool]()
	require.NoError(t, tb.RegisterTool(echoTool("a")))

	var order []string
	mark := func(label string) ToolMiddleware {
		return func(next ToolExecutor) ToolExecutor {
			return func(ctx context.Context, c *aisdk.ToolCall) (*aisdk.ToolResponse, error) {
				order = append(order, label)
				return next(ctx, c)
			}
		}
	}
	tb.RegisterMiddleware(mark("outer"))
	tb.RegisterMiddleware(mark("inner"))
	tb.Seal()

	resp, err := tb.ExecuteTool(context.Background(), call("a", "{}"))
	require.NoError(t, err)
	assert.Equal(t, "a", string(resp.Content))
	assert.Equal(t, []string{"outer", "inner"}, order)
}

type addStudentInput struct {
	Name  string `json:"name" required:"true" description:"Full name"`
	Email string `json:"email" required:"true" validate:"email" description:"Email address"`
}

type addStudentOutput struct {
	Message string `json:"message"`
}

func TestGenericToolExecute(t *testing.T) {
	tool, err := NewGenericTool("add_student", "Add a student",
		func(ctx context.Context, in addStudentInput) (addStudentOutput, error) {
			if in.Name == "boom" {
				return addStudentOutput{}, errors.New("database is down")
			}
			return addStudentOutput{Message: "added " + in.Name}, nil
		}, Suspending())
	require.NoError(t, err)
	assert.True(t, tool.MaySuspend())
	assert.Equal(t, []string{"name", "email"}, tool.GetParameters().Required)

	tests := []struct {
		name     string
		args     string
		isError  bool
		contains string
	}{
		{name: "success", args: `{"name":"Ann","email":"ann@uni.edu"}`, contains: `"added Ann"`},
		{name: "missing required", args: `{"name":"Ann"}`, isError: true, contains: "required field 'email' is missing"},
		{name: "invalid email", args: `{"name":"Ann","email":"nope"}`, isError: true, contains: "field 'email' failed 'email' check"},
		{name: "bad json", args: `{"name":`, isError: true, contains: "failed to parse input"},
		{name: "handler error", args: `{"name":"boom","email":"b@uni.edu"}`, isError: true, contains: "database is down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := tool.Execute(context.Background(), call("add_student", tt.args))
			require.NoError(t, err)
			assert.Equal(t, tt.isError, resp.IsError)
			assert.Contains(t, string(resp.Content), tt.contains)
		})
	}
}

func TestGenericToolEmptyArguments(t *testing.T) {
	tool := MustNewGenericTool("count", "Count", func(ctx context.Context, in struct{}) (int, error) {
		return 3, nil
	})
	assert.False(t, tool.MaySuspend())

	resp, err := tool.Execute(context.Background(), call("count", ""))
	require.NoError(t, err)
	assert.False(t, resp.IsError)
	assert.Equal(t, "3", string(resp.Content))
}

func TestGenericToolRejectsNonStructInput(t *testing.T) {
	_, err := NewGenericTool("bad", "bad", func(ctx context.Context, in string) (int, error) { return 0, nil })
	assert.Error(t, err)
}

func TestFuncToolExecute(t *testing.T) {
	tool := NewFuncTool("greet", "Greets", nil, func(ctx context.Context, args map[string]any) (string, error) {
		if args["fail"] == true {
			return "", errors.New("nope")
		}
		return "hello", nil
	})

	resp, err := tool.Execute(context.Background(), call("greet", "{}"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(resp.Content))

	resp, err = tool.Execute(context.Background(), call("greet", `{"fail":true}`))
	require.NoError(t, err)
	assert.True(t, resp.IsError)
	assert.Equal(t, "nope", string(resp.Content))
}
