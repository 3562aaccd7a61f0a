package client

import (
	"regexp"
	"strings"
)

// thinkPattern matches a complete reasoning segment. Unterminated segments
// are deliberately not matched: a stream that ends before the closing marker
// keeps all text as final content rather than leaking half a thought.
var thinkPattern = regexp.MustCompile(`(?s)<think>(.*?)</think>`)

// SplitReasoning separates reasoning-marker segments from the final answer.
// All complete segments are concatenated into the reasoning return and
// removed from the content return.
func SplitReasoning(text string) (reasoning, content string) {
	matches := thinkPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return "", strings.TrimSpace(text)
	}

	var parts []string
	for _, m := range matches {
		if seg := strings.TrimSpace(m[1]); seg != "" {
			parts = append(parts, seg)
		}
	}
	content = strings.TrimSpace(thinkPattern.ReplaceAllString(text, ""))
	return strings.Join(parts, "\n\n"), content
}
