package campusagent

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Formatter builds the fallback answer when the model does not summarize
// tool results itself. results holds one "<name>: <output>" string per
// call, in call order, and every one of them appears in the answer.
type Formatter interface {
	Format(message string, calls []ToolCallRequest, results []string) string
}

// KeywordFormatter picks a presentation template from keywords in the
// user's message. The first matching rule wins.
type KeywordFormatter struct{}

var _ Formatter = KeywordFormatter{}

const (
	headingStudentList = "📋 **Student List**"
	headingStatistics  = "📊 **Campus Statistics**"
	headingDepartments = "🏫 **Students by Department**"
	headingRecent      = "🆕 **Recent Enrollments**"
	headingGeneric     = "✅ **Request Completed Successfully**"
)

func (KeywordFormatter) Format(message string, calls []ToolCallRequest, results []string) string {
	msg := strings.ToLower(message)

	first := ""
	if len(results) > 0 {
		first = results[0]
	}

	var out string
	switch {
	case strings.Contains(msg, "list") && strings.Contains(msg, "student"):
		out = formatStudentList(first)
	case strings.Contains(msg, "total"), strings.Contains(msg, "count"), strings.Contains(msg, "how many"):
		out = formatCount(first)
	case strings.Contains(msg, "department"):
		out = formatDepartments(first)
	case strings.Contains(msg, "recent"):
		out = formatRecent(first)
	default:
		return headingGeneric + "\n\n" + strings.Join(results, "\n\n")
	}

	// templates present the first result; the others follow as-is
	if len(results) > 1 {
		out += "\n\n" + strings.Join(results[1:], "\n\n")
	}
	return out
}

// payload returns the text after "<tool>:" in result.
func payload(result, tool string) (string, bool) {
	_, after, ok := strings.Cut(result, tool+":")
	if !ok {
		return "", false
	}
	return strings.TrimSpace(after), true
}

func field(m map[string]any, key string, fallback string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return fallback
	}
	return fmt.Sprint(v)
}

func decodeList(result, tool string) ([]map[string]any, bool) {
	data, ok := payload(result, tool)
	if !ok || !strings.HasPrefix(data, "[") || !strings.HasSuffix(data, "]") {
		return nil, false
	}
	var rows []map[string]any
	if err := json.Unmarshal([]byte(data), &rows); err != nil {
		return nil, false
	}
	return rows, true
}

func formatStudentList(result string) string {
	students, ok := decodeList(result, "list_students")
	if !ok {
		return headingStudentList + "\n\n" + result
	}
	if len(students) == 0 {
		return headingStudentList + "\n\nNo students found in the database."
	}

	var b strings.Builder
	b.WriteString(headingStudentList + "\n\n")
	for i, s := range students {
		fmt.Fprintf(&b, "**%d. %s**\n", i+1, field(s, "name", "Unknown"))
		fmt.Fprintf(&b, "   • Student ID: `%s`\n", field(s, "student_id", "N/A"))
		fmt.Fprintf(&b, "   • Department: %s\n", field(s, "department", "N/A"))
		fmt.Fprintf(&b, "   • Email: %s\n\n", field(s, "email", "N/A"))
	}
	fmt.Fprintf(&b, "**Total Students:** %d", len(students))
	return b.String()
}

func formatCount(result string) string {
	if count, ok := payload(result, "get_total_students"); ok {
		return headingStatistics + "\n\n**Total Students:** " + count
	}
	return headingStatistics + "\n\n" + result
}

func formatDepartments(result string) string {
	data, ok := payload(result, "get_students_by_department")
	if !ok || !strings.HasPrefix(data, "{") || !strings.HasSuffix(data, "}") {
		return headingDepartments + "\n\n" + result
	}
	var counts map[string]int
	if err := json.Unmarshal([]byte(data), &counts); err != nil {
		return headingDepartments + "\n\n" + result
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(headingDepartments + "\n\n")
	total := 0
	for _, name := range names {
		fmt.Fprintf(&b, "• **%s:** %d students\n", name, counts[name])
		total += counts[name]
	}
	fmt.Fprintf(&b, "\n**Total:** %d students", total)
	return b.String()
}

func formatRecent(result string) string {
	students, ok := decodeList(result, "get_recent_onboarded_students")
	if !ok {
		return headingRecent + "\n\n" + result
	}
	if len(students) == 0 {
		return headingRecent + "\n\nNo recent students found."
	}

	var b strings.Builder
	b.WriteString(headingRecent + "\n\n")
	for i, s := range students {
		fmt.Fprintf(&b, "**%d. %s**\n", i+1, field(s, "name", "Unknown"))
		fmt.Fprintf(&b, "   • Student ID: `%s`\n", field(s, "student_id", "N/A"))
		fmt.Fprintf(&b, "   • Department: %s\n", field(s, "department", "N/A"))
		fmt.Fprintf(&b, "   • Enrolled: %s\n\n", field(s, "created_at", "N/A"))
	}
	return strings.TrimRight(b.String(), "\n")
}
