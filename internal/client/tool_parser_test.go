package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseToolCallsSingleBlock(t *testing.T) {
	text := "I'll read that file.\n\n```tool\nname: read_file\nargs:\npath: \"main.go\"\n```\n"

	calls := ParseToolCalls(text)
	require.Len(t, calls, 1)
	assert.Equal(t, "read_file", calls[0].Name)
	assert.Equal(t, "main.go", calls[0].Args["path"])
}

func TestParseToolCallsMultipleBlocks(t *testing.T) {
	text := "```tool\nname: read_file\npath: a.go\n```\n" +
		"some prose\n" +
		"```tool\nname: list_directory\npath: .\n```\n"

	calls := ParseToolCalls(text)
	require.Len(t, calls, 2)
	assert.Equal(t, "read_file", calls[0].Name)
	assert.Equal(t, "list_directory", calls[1].Name)
}

func TestParseToolCallsMissingNameIsolated(t *testing.T) {
	text := "```tool\nname: read_file\npath: a.go\n```\n" +
		"```tool\npath: orphan.go\n```\n" +
		"```tool\nname: delete_file\npath: b.go\n```\n"

	calls := ParseToolCalls(text)
	require.Len(t, calls, 2)
	assert.Equal(t, "read_file", calls[0].Name)
	assert.Equal(t, "delete_file", calls[1].Name)
}

func TestParseToolCallsValueDecoding(t *testing.T) {
	text := "```tool\nname: write_file\n" +
		"path: 'out.txt'\n" +
		"count: 42\n" +
		"enabled: true\n" +
		"items: [1, 2, 3]\n" +
		"note: just a plain sentence\n" +
		"```"

	calls := ParseToolCalls(text)
	require.Len(t, calls, 1)
	args := calls[0].Args
	assert.Equal(t, "out.txt", args["path"])
	assert.Equal(t, float64(42), args["count"])
	assert.Equal(t, true, args["enabled"])
	assert.Equal(t, []any{float64(1), float64(2), float64(3)}, args["items"])
	assert.Equal(t, "just a plain sentence", args["note"])
}

func TestParseToolCallsDuplicateKeyLastWins(t *testing.T) {
	text := "```tool\nname: read_file\npath: first.go\npath: second.go\n```"

	calls := ParseToolCalls(text)
	require.Len(t, calls, 1)
	assert.Equal(t, "second.go", calls[0].Args["path"])
}

func TestParseToolCallsSearchContentRemap(t *testing.T) {
	text := "```tool\nname: search_content\npattern: TODO\ndir: .\n```"

	calls := ParseToolCalls(text)
	require.Len(t, calls, 1)
	assert.Equal(t, "TODO", calls[0].Args["query"])
	assert.Equal(t, "*", calls[0].Args["pattern"])
}

func TestParseToolCallsSearchContentQueryPresent(t *testing.T) {
	text := "```tool\nname: search_content\nquery: TODO\npattern: *.go\n```"

	calls := ParseToolCalls(text)
	require.Len(t, calls, 1)
	assert.Equal(t, "TODO", calls[0].Args["query"])
	assert.Equal(t, "*.go", calls[0].Args["pattern"])
}

func TestParseToolCallsNoBlocks(t *testing.T) {
	assert.Empty(t, ParseToolCalls("no tools here, just an answer"))
	assert.Empty(t, ParseToolCalls(""))
}

func TestSplitReasoning(t *testing.T) {
	reasoning, content := SplitReasoning("<think>let me check</think>The answer is 4.")
	assert.Equal(t, "let me check", reasoning)
	assert.Equal(t, "The answer is 4.", content)
}

func TestSplitReasoningUnterminated(t *testing.T) {
	reasoning, content := SplitReasoning("<think>never closed, so everything stays")
	assert.Empty(t, reasoning)
	assert.Equal(t, "<think>never closed, so everything stays", content)
}

func TestSplitReasoningAbsent(t *testing.T) {
	reasoning, content := SplitReasoning("plain answer")
	assert.Empty(t, reasoning)
	assert.Equal(t, "plain answer", content)
}
