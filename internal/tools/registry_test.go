package tools

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pointer/internal/security"
)

func newTestRegistry(t *testing.T) (*Registry, string) {
	t.Helper()
	root := t.TempDir()
	paths, err := security.NewPathValidator(root)
	require.NoError(t, err)
	return DefaultRegistry(Options{Paths: paths}), root
}

func TestInvokeUnknownTool(t *testing.T) {
	reg, _ := newTestRegistry(t)

	res := reg.Invoke(context.Background(), "no_such_tool", nil)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "unknown tool")
}

func TestInvokeValidationFailure(t *testing.T) {
	reg, _ := newTestRegistry(t)

	res := reg.Invoke(context.Background(), "read_file", map[string]any{})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "path")
}

type panicTool struct{}

func (panicTool) Name() string                       { return "panicky" }
func (panicTool) Description() string                { return "always panics" }
func (panicTool) Validate(map[string]any) error      { return nil }
func (panicTool) Execute(context.Context, map[string]any) (ToolResult, error) {
	panic("boom")
}

func TestInvokeContainsPanic(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(panicTool{})

	res := reg.Invoke(context.Background(), "panicky", nil)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "crashed")
}

func TestReadWriteRoundTrip(t *testing.T) {
	reg, root := newTestRegistry(t)
	ctx := context.Background()

	res := reg.Invoke(ctx, "write_file", map[string]any{
		"path":    "notes/hello.txt",
		"content": "line one\nline two\n",
	})
	require.True(t, res.Success, res.Error)

	res = reg.Invoke(ctx, "read_file", map[string]any{"path": "notes/hello.txt"})
	require.True(t, res.Success, res.Error)
	assert.Contains(t, res.Content, "line one")
	assert.Contains(t, res.Content, "line two")

	data, err := os.ReadFile(filepath.Join(root, "notes", "hello.txt"))
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\n", string(data))
}

func TestPathEscapeIsErrorResult(t *testing.T) {
	reg, root := newTestRegistry(t)
	ctx := context.Background()

	outside := filepath.Join(filepath.Dir(root), "outside.txt")
	defer os.Remove(outside)

	for _, call := range []struct {
		tool string
		args map[string]any
	}{
		{"read_file", map[string]any{"path": "../outside.txt"}},
		{"write_file", map[string]any{"path": "../outside.txt", "content": "x"}},
		{"delete_file", map[string]any{"path": "../outside.txt"}},
		{"get_file_info", map[string]any{"path": "../outside.txt"}},
	} {
		res := reg.Invoke(ctx, call.tool, call.args)
		assert.False(t, res.Success, "%s should refuse the escape", call.tool)
		assert.Contains(t, res.Error, "outside the workspace")
	}

	// Nothing leaked out of the root.
	_, err := os.Stat(outside)
	assert.True(t, os.IsNotExist(err))
}

func TestSearchFilesStaysInsideWorkspace(t *testing.T) {
	reg, root := newTestRegistry(t)
	ctx := context.Background()

	outside := filepath.Join(filepath.Dir(root), "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0644))
	defer os.Remove(outside)
	require.NoError(t, os.WriteFile(filepath.Join(root, "inside.txt"), []byte("x"), 0644))

	res := reg.Invoke(ctx, "search_files", map[string]any{"pattern": "../*.txt", "recursive": false})
	require.True(t, res.Success, res.Error)
	assert.NotContains(t, res.Content, "secret.txt")
	assert.Equal(t, "(no matches)", res.Content)

	res = reg.Invoke(ctx, "search_files", map[string]any{"pattern": "*.txt"})
	require.True(t, res.Success, res.Error)
	assert.Contains(t, res.Content, "inside.txt")
}

func TestEditFileLineChanges(t *testing.T) {
	reg, root := newTestRegistry(t)
	ctx := context.Background()

	path := filepath.Join(root, "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("a\nb\nc\n"), 0644))

	res := reg.Invoke(ctx, "edit_file", map[string]any{
		"path": "f.txt",
		"changes": []any{
			map[string]any{"type": "replace_line", "line": float64(2), "content": "B"},
			map[string]any{"type": "insert_line", "line": float64(1), "content": "top"},
			map[string]any{"type": "delete_line", "line": float64(4)},
		},
	})
	require.True(t, res.Success, res.Error)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "top\na\nB\n", string(data))
}

func TestEditFileReplaceText(t *testing.T) {
	reg, root := newTestRegistry(t)
	ctx := context.Background()

	path := filepath.Join(root, "g.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello old world\n"), 0644))

	res := reg.Invoke(ctx, "edit_file", map[string]any{
		"path": "g.txt",
		"changes": []any{
			map[string]any{"type": "replace_text", "old_text": "old", "new_text": "new"},
		},
	})
	require.True(t, res.Success, res.Error)

	data, _ := os.ReadFile(path)
	assert.Equal(t, "hello new world\n", string(data))
}

func TestMoveRefusesOverwrite(t *testing.T) {
	reg, root := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.txt"), []byte("b"), 0644))

	res := reg.Invoke(ctx, "move_file", map[string]any{"source": "a.txt", "destination": "b.txt"})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "already exists")
}

func TestRunCommandCapturesExitCode(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	res := reg.Invoke(ctx, "run_command", map[string]any{"command": "echo hi; exit 3"})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "exited with code 3")
	assert.Contains(t, res.Content, "hi")

	data, ok := res.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 3, data["exit_code"])
}

func TestRunCommandTimeoutIsContained(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()

	res := reg.Invoke(ctx, "run_command", map[string]any{"command": "sleep 5", "timeout": float64(1)})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "timed out")
}
