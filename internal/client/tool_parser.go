package client

import (
	"encoding/json"
	"regexp"
	"strings"

	"pointer/internal/logging"
)

// ToolCall is one tool invocation extracted from model text.
type ToolCall struct {
	Name string
	Args map[string]any
}

// toolBlockPattern matches fenced blocks tagged "tool". The body is
// everything between the fences.
var toolBlockPattern = regexp.MustCompile("(?s)```tool\\s*\\n(.*?)\\n```")

// ParseToolCalls extracts tool invocations from response text. The parser is
// total: malformed blocks yield fewer invocations, never an error. Blocks
// are independent, so one bad block does not affect its neighbors.
//
// Block grammar: one `name:` line selects the tool; every other `key: value`
// line becomes an argument. Values are unquoted if quoted, then tried as
// JSON, then kept as raw strings. When a key repeats, the last occurrence
// wins.
func ParseToolCalls(text string) []ToolCall {
	if text == "" {
		return nil
	}

	var calls []ToolCall
	for _, match := range toolBlockPattern.FindAllStringSubmatch(text, -1) {
		call, ok := parseToolBlock(match[1])
		if !ok {
			logging.Debug("discarding tool block without a name")
			continue
		}
		calls = append(calls, call)
	}
	return calls
}

func parseToolBlock(body string) (ToolCall, bool) {
	call := ToolCall{Args: make(map[string]any)}

	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "name":
			call.Name = value
		case "args":
			// Introduces the key/value section; carries no value itself.
		default:
			call.Args[key] = decodeArgValue(value)
		}
	}

	if call.Name == "" {
		return ToolCall{}, false
	}
	normalizeSearchContentArgs(&call)
	return call, true
}

// decodeArgValue interprets one argument value: a quoted string is unquoted,
// anything else is tried as a JSON literal and kept raw on decode failure.
func decodeArgValue(raw string) any {
	if len(raw) >= 2 {
		if (raw[0] == '"' && raw[len(raw)-1] == '"') || (raw[0] == '\'' && raw[len(raw)-1] == '\'') {
			return raw[1 : len(raw)-1]
		}
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v
	}
	return raw
}

// normalizeSearchContentArgs papers over a common model confusion: sending
// the search text as `pattern` instead of `query`. The text moves to
// `query` and `pattern` falls back to matching every file.
func normalizeSearchContentArgs(call *ToolCall) {
	if call.Name != "search_content" {
		return
	}
	if _, hasQuery := call.Args["query"]; hasQuery {
		return
	}
	if pattern, ok := call.Args["pattern"]; ok {
		call.Args["query"] = pattern
		call.Args["pattern"] = "*"
	}
}
