package campusagent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(calls []ToolCallRequest) []string {
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Name
	}
	return out
}

func TestParseToolCalls(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  []string
		check func(t *testing.T, calls []ToolCallRequest)
	}{
		{
			name: "no markers",
			text: "Hello! How can I help?",
			want: nil,
		},
		{
			name: "zero-arg call",
			text: "[TOOL_CALL:list_students:{}]",
			want: []string{"list_students"},
			check: func(t *testing.T, calls []ToolCallRequest) {
				assert.Empty(t, calls[0].Arguments)
			},
		},
		{
			name: "zero-arg call with whitespace",
			text: "[TOOL_CALL:list_students:{ }]",
			want: []string{"list_students"},
		},
		{
			name: "empty argument block",
			text: "[TOOL_CALL:get_total_students:] and [TOOL_CALL:list_students: ]",
			want: []string{"get_total_students", "list_students"},
			check: func(t *testing.T, calls []ToolCallRequest) {
				assert.Empty(t, calls[0].Arguments)
				assert.Equal(t, "{}", string(calls[0].Raw))
			},
		},
		{
			name: "arguments",
			text: `Let me look. [TOOL_CALL:get_student:{"student_id": "STU001"}] one moment`,
			want: []string{"get_student"},
			check: func(t *testing.T, calls []ToolCallRequest) {
				assert.Equal(t, "STU001", calls[0].Arguments["student_id"])
				assert.JSONEq(t, `{"student_id": "STU001"}`, string(calls[0].Raw))
			},
		},
		{
			name: "order preserved",
			text: "[TOOL_CALL:b:{}] then [TOOL_CALL:a:{}] then [TOOL_CALL:b:{}]",
			want: []string{"b", "a", "b"},
		},
		{
			name: "nested objects and braces in strings",
			text: `[TOOL_CALL:send_email:{"student_id":"S1","message":"use {curly} braces and ] brackets","meta":{"k":"v"}}]`,
			want: []string{"send_email"},
			check: func(t *testing.T, calls []ToolCallRequest) {
				assert.Equal(t, "use {curly} braces and ] brackets", calls[0].Arguments["message"])
			},
		},
		{
			name: "escaped quote in string",
			text: `[TOOL_CALL:send_email:{"message":"say \"hi\" {"}]`,
			want: []string{"send_email"},
		},
		{
			name: "malformed json drops only that call",
			text: `[TOOL_CALL:get_student:{student_id: S1}] [TOOL_CALL:list_students:{}]`,
			want: []string{"list_students"},
		},
		{
			name: "unterminated object does not swallow the next marker",
			text: `[TOOL_CALL:a:{"x": 1] [TOOL_CALL:b:{}]`,
			want: []string{"b"},
		},
		{
			name: "missing closing bracket",
			text: `[TOOL_CALL:a:{} and [TOOL_CALL:b:{}]`,
			want: []string{"b"},
		},
		{
			name: "non-object arguments",
			text: `[TOOL_CALL:a:["x"]] [TOOL_CALL:b:{}]`,
			want: []string{"b"},
		},
		{
			name: "identifier characters",
			text: `[TOOL_CALL:campus.info-v2_x:{}]`,
			want: []string{"campus.info-v2_x"},
		},
		{
			name: "invalid identifier",
			text: `[TOOL_CALL:bad name:{}] [TOOL_CALL::{}]`,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := ParseToolCalls(tt.text)
			if tt.want == nil {
				assert.Empty(t, calls)
				assert.False(t, HasToolCalls(tt.text))
				return
			}
			require.Equal(t, tt.want, names(calls))
			assert.True(t, HasToolCalls(tt.text))
			if tt.check != nil {
				tt.check(t, calls)
			}
		})
	}
}
