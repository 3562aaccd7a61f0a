package agent

import (
	"fmt"
	"strings"
)

const promptHeader = `You are a coding assistant working inside the user's project.
You can call tools by emitting fenced blocks in this exact form:

` + "```tool" + `
name: tool_name
args:
  key: value
` + "```" + `

Rules:
- Use one block per tool call. Blocks run in the order they appear.
- Argument values may be quoted strings, JSON literals, or bare text.
- Only call the tools listed below. Paths are relative to the project root.
- After tool results come back you get exactly one chance to respond or
  issue more calls; make it count.`

// systemPrompt renders the full system message: grammar rules, the tool
// catalog, and the workspace summary.
func (a *Agent) systemPrompt() string {
	var out strings.Builder
	out.WriteString(promptHeader)

	out.WriteString("\n\nAvailable tools:\n")
	for _, tool := range a.registry.List() {
		first := tool.Description()
		if idx := strings.Index(first, "\n"); idx > 0 {
			first = first[:idx]
		}
		fmt.Fprintf(&out, "- %s: %s\n", tool.Name(), first)
	}

	if a.cache != nil && a.cache.Len() > 0 {
		out.WriteString("\nWorkspace:\n")
		out.WriteString(a.cache.ContextForPrompt())
	}

	return out.String()
}
