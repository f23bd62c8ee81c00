package campusagent

import (
	"encoding/json"
	"strings"

	"github.com/elee1766/campusadmin/src/agent"
)

// ToolCallRequest is one tool invocation parsed from model output.
type ToolCallRequest struct {
	Name      string
	Arguments map[string]any
	// Raw is the argument object exactly as the model wrote it.
	Raw json.RawMessage
}

// HasToolCalls reports whether text contains at least one well-formed call
// marker.
func HasToolCalls(text string) bool {
	return len(ParseToolCalls(text)) > 0
}

// ParseToolCalls extracts every [TOOL_CALL:<name>:<json-object>] marker
// from text, in order of appearance. An empty argument block is read as {}. Markers are matched without overlap.
// A marker that is not well formed, or whose arguments are not a JSON
// object, is skipped and scanning resumes just past its prefix.
func ParseToolCalls(text string) []ToolCallRequest {
	var calls []ToolCallRequest
	pos := 0
	for {
		idx := strings.Index(text[pos:], agent.CallPrefix)
		if idx < 0 {
			return calls
		}
		start := pos + idx + len(agent.CallPrefix)

		call, end, ok := parseMarker(text, start)
		if !ok {
			pos = start
			continue
		}
		calls = append(calls, call)
		pos = end
	}
}

// parseMarker parses "<ident>:<object>]" or "<ident>:]" beginning at i and returns the
// offset just past the closing bracket.
func parseMarker(text string, i int) (ToolCallRequest, int, bool) {
	nameStart := i
	for i < len(text) && isIdentByte(text[i]) {
		i++
	}
	if i == nameStart || i >= len(text) || text[i] != ':' {
		return ToolCallRequest{}, 0, false
	}
	name := text[nameStart:i]
	i++

	i = skipSpace(text, i)
	if i < len(text) && text[i] == ']' {
		return ToolCallRequest{Name: name, Arguments: map[string]any{}, Raw: json.RawMessage("{}")}, i + 1, true
	}
	objEnd, ok := scanObject(text, i)
	if !ok {
		return ToolCallRequest{}, 0, false
	}
	raw := text[i:objEnd]

	i = skipSpace(text, objEnd)
	if i >= len(text) || text[i] != ']' {
		return ToolCallRequest{}, 0, false
	}

	args := map[string]any{}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return ToolCallRequest{}, 0, false
	}
	return ToolCallRequest{Name: name, Arguments: args, Raw: json.RawMessage(raw)}, i + 1, true
}

// scanObject returns the offset just past the balanced {...} that starts at
// i. Braces inside JSON strings do not count.
func scanObject(text string, i int) (int, bool) {
	if i >= len(text) || text[i] != '{' {
		return 0, false
	}

	depth := 0
	inString := false
	for ; i < len(text); i++ {
		c := text[i]
		if inString {
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
	}
	return 0, false
}

func skipSpace(text string, i int) int {
	for i < len(text) {
		switch text[i] {
		case ' ', '\t', '\n', '\r':
			i++
		default:
			return i
		}
	}
	return i
}

func isIdentByte(c byte) bool {
	return c >= 'a' && c <= 'z' ||
		c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' ||
		c == '_' || c == '.' || c == '-'
}
