package campusagent

import (
	"fmt"
	"strings"
	"time"

	"github.com/elee1766/campusadmin/src/agent"
)

const mainPromptTemplate = `You are an AI Campus Admin Agent for %s. You help manage student records and campus events, provide campus information, and generate analytics.

IMPORTANT: When users ask for data, you MUST call the appropriate tool first, then provide a helpful response based on the tool results.
IMPORTANT: Never invent student records, counts or IDs. If a tool reports an error, tell the user what went wrong.`

const examplesSection = `Examples:
- User asks "list all students" → [TOOL_CALL:list_students:{}]
- User asks "how many students total" → [TOOL_CALL:get_total_students:{}]
- User asks "add student John Doe" → [TOOL_CALL:add_student:{"name": "John Doe", "student_id": "12345", "department": "CS", "email": "john@uni.edu"}]

Tool results come back as turns of the form [TOOL_RESULT:tool_name]: result.
After calling tools, provide a clear, well-formatted response that summarizes the results in a user-friendly way. Use markdown formatting for better readability.`

// GenerateSystemPrompt renders the system prompt: instructions, the tool
// catalog with call syntax, examples and today's date.
func GenerateSystemPrompt(toolbox *agent.DefaultToolbox, campusName string, now time.Time) string {
	if campusName == "" {
		campusName = "the university"
	}

	sections := []string{
		fmt.Sprintf(mainPromptTemplate, campusName),
		toolbox.Describe(),
		examplesSection,
		"Today's date: " + now.Format("2006-01-02"),
	}
	return strings.Join(sections, "\n\n")
}
