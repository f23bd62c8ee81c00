package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	jsonschema "github.com/swaggest/jsonschema-go"
)

func TestFormatSchemaForPrompt(t *testing.T) {
	tests := []struct {
		name     string
		schema   *jsonschema.Schema
		expected []string
	}{
		{
			name: "simple string schema",
			schema: &jsonschema.Schema{
				Type:        &jsonschema.Type{SimpleTypes: ptr(jsonschema.SimpleType("string"))},
				Description: ptr("A simple string field"),
			},
			expected: []string{
				"# A simple string field",
				"string",
			},
		},
		{
			name: "object with properties",
			schema: &jsonschema.Schema{
				Type: &jsonschema.Type{SimpleTypes: ptr(jsonschema.SimpleType("object"))},
				Properties: map[string]jsonschema.SchemaOrBool{
					"name": {
						TypeObject: &jsonschema.Schema{
							Type:        &jsonschema.Type{SimpleTypes: ptr(jsonschema.SimpleType("string"))},
							Description: ptr("Full name"),
						},
					},
					"limit": {
						TypeObject: &jsonschema.Schema{
							Type:        &jsonschema.Type{SimpleTypes: ptr(jsonschema.SimpleType("integer"))},
							Description: ptr("Maximum rows"),
						},
					},
				},
				Required: []string{"name"},
			},
			expected: []string{
				"object (required: name)",
				"name: string # Full name",
				"limit: integer # Maximum rows",
			},
		},
		{
			name: "array with items",
			schema: &jsonschema.Schema{
				Type: &jsonschema.Type{SimpleTypes: ptr(jsonschema.SimpleType("array"))},
				Items: &jsonschema.Items{
					SchemaOrBool: &jsonschema.SchemaOrBool{
						TypeObject: &jsonschema.Schema{
							Type: &jsonschema.Type{SimpleTypes: ptr(jsonschema.SimpleType("string"))},
						},
					},
				},
			},
			expected: []string{
				"array",
				"items: string",
			},
		},
		{
			name: "enum field",
			schema: &jsonschema.Schema{
				Type: &jsonschema.Type{SimpleTypes: ptr(jsonschema.SimpleType("string"))},
				Enum: []interface{}{"name", "department", "email"},
			},
			expected: []string{
				`string (enum: "name" | "department" | "email")`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatSchemaForPrompt(tt.schema, 0)
			for _, expected := range tt.expected {
				assert.Contains(t, result, expected)
			}
		})
	}
}

func TestFormatSchemaSortsProperties(t *testing.T) {
	schema := &jsonschema.Schema{
		Properties: map[string]jsonschema.SchemaOrBool{
			"zeta":  {TypeObject: &jsonschema.Schema{}},
			"alpha": {TypeObject: &jsonschema.Schema{}},
			"mid":   {TypeObject: &jsonschema.Schema{}},
		},
	}
	out := FormatSchemaForPrompt(schema, 0)
	assert.Less(t, strings.Index(out, "alpha"), strings.Index(out, "mid"))
	assert.Less(t, strings.Index(out, "mid"), strings.Index(out, "zeta"))
}

type lookupInput struct {
	StudentID string `json:"student_id" required:"true" description:"The student's ID"`
}

func TestDescribe(t *testing.T) {
	toolbox := NewToolbox[Tool]()

	lookup := MustNewGenericTool("get_student", "Get a student by ID",
		func(ctx context.Context, in lookupInput) (map[string]string, error) {
			return map[string]string{"student_id": in.StudentID}, nil
		})
	require.NoError(t, toolbox.RegisterTool(lookup))
	require.NoError(t, toolbox.RegisterTool(NewFuncTool("list_students", "List all students", nil,
		func(ctx context.Context, args map[string]any) (string, error) { return "[]", nil })))

	out := toolbox.Describe()

	for _, expected := range []string{
		"You have access to the following tools:",
		"Tool: get_student",
		"Description: Get a student by ID",
		"object (required: student_id)",
		"student_id: string # The student's ID",
		"Tool: list_students",
		"(no parameters)",
		"[TOOL_CALL:tool_name:{}]",
	} {
		assert.Contains(t, out, expected)
	}

	// catalog order is by name, independent of registration order
	assert.Less(t, strings.Index(out, "Tool: get_student"), strings.Index(out, "Tool: list_students"))
	assert.Equal(t, out, toolbox.Describe())
}

func TestDescribeEmpty(t *testing.T) {
	assert.Equal(t, "No tools available.", NewToolbox[Tool]().Describe())
}

func TestFormatCallAndResult(t *testing.T) {
	assert.Equal(t, "[TOOL_CALL:list_students:{}]", FormatCall("list_students", ""))
	assert.Equal(t, `[TOOL_CALL:get_student:{"student_id":"S1"}]`, FormatCall("get_student", `{"student_id":"S1"}`))
	assert.Equal(t, "[TOOL_RESULT:list_students]: []", FormatResult("list_students", "[]"))
}

func ptr[T any](v T) *T {
	return &v
}
