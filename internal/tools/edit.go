package tools

import (
	"context"
	"fmt"
	"os"
	"strings"

	"pointer/internal/fileutil"
	"pointer/internal/security"
)

// EditFileTool applies an ordered list of line-level changes to a file.
type EditFileTool struct {
	paths *security.PathValidator
}

// NewEditFileTool creates an EditFileTool.
func NewEditFileTool(paths *security.PathValidator) *EditFileTool {
	return &EditFileTool{paths: paths}
}

func (t *EditFileTool) Name() string {
	return "edit_file"
}

func (t *EditFileTool) Description() string {
	return `Edits a file by applying changes in order.

PARAMETERS:
- path (required): file path, relative to the project root
- changes (required): JSON list of change objects, each one of:
  {"type": "replace_line", "line": N, "content": "new line"}
  {"type": "insert_line", "line": N, "content": "inserted line"}
  {"type": "delete_line", "line": N}
  {"type": "replace_text", "old_text": "...", "new_text": "..."}

Line numbers are 1-based and refer to the file as it stands when the change
is applied, so later changes see the effects of earlier ones.`
}

func (t *EditFileTool) Validate(args map[string]any) error {
	path, ok := GetString(args, "path")
	if !ok || path == "" {
		return NewValidationError("path", "is required")
	}
	raw, ok := args["changes"]
	if !ok {
		return NewValidationError("changes", "is required")
	}
	if _, ok := raw.([]any); !ok {
		return NewValidationError("changes", "must be a list of change objects")
	}
	return nil
}

func (t *EditFileTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	path, _ := GetString(args, "path")
	rawChanges := args["changes"].([]any)

	abs, err := t.paths.Resolve(path)
	if err != nil {
		return NewErrorResult(err.Error()), nil
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return NewErrorResult(fmt.Sprintf("file not found: %s", path)), nil
		}
		return NewErrorResult(fmt.Sprintf("cannot read file: %v", err)), nil
	}

	content := string(data)
	trailingNewline := strings.HasSuffix(content, "\n")
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")

	applied := 0
	for i, raw := range rawChanges {
		change, ok := raw.(map[string]any)
		if !ok {
			return NewErrorResult(fmt.Sprintf("change %d is not an object", i+1)), nil
		}
		lines, err = applyChange(lines, change)
		if err != nil {
			return NewErrorResult(fmt.Sprintf("change %d: %v", i+1, err)), nil
		}
		applied++
	}

	out := strings.Join(lines, "\n")
	if trailingNewline {
		out += "\n"
	}
	if err := fileutil.AtomicWrite(abs, []byte(out), 0644); err != nil {
		return NewErrorResult(fmt.Sprintf("cannot write file: %v", err)), nil
	}

	return NewSuccessResult(fmt.Sprintf("Applied %d change(s) to %s", applied, path)), nil
}

func applyChange(lines []string, change map[string]any) ([]string, error) {
	kind, _ := GetString(change, "type")
	switch kind {
	case "replace_line":
		n, ok := GetInt(change, "line")
		if !ok || n < 1 || n > len(lines) {
			return nil, fmt.Errorf("line %d out of range (file has %d lines)", n, len(lines))
		}
		text, _ := GetString(change, "content")
		lines[n-1] = text
		return lines, nil

	case "insert_line":
		n, ok := GetInt(change, "line")
		if !ok || n < 1 || n > len(lines)+1 {
			return nil, fmt.Errorf("line %d out of range for insert (file has %d lines)", n, len(lines))
		}
		text, _ := GetString(change, "content")
		lines = append(lines, "")
		copy(lines[n:], lines[n-1:])
		lines[n-1] = text
		return lines, nil

	case "delete_line":
		n, ok := GetInt(change, "line")
		if !ok || n < 1 || n > len(lines) {
			return nil, fmt.Errorf("line %d out of range (file has %d lines)", n, len(lines))
		}
		return append(lines[:n-1], lines[n:]...), nil

	case "replace_text":
		oldText, ok := GetString(change, "old_text")
		if !ok || oldText == "" {
			return nil, fmt.Errorf("old_text is required")
		}
		newText, _ := GetString(change, "new_text")
		joined := strings.Join(lines, "\n")
		if !strings.Contains(joined, oldText) {
			return nil, fmt.Errorf("old_text not found in file")
		}
		return strings.Split(strings.Replace(joined, oldText, newText, 1), "\n"), nil

	default:
		return nil, fmt.Errorf("unknown change type %q", kind)
	}
}
