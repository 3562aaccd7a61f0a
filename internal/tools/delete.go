package tools

import (
	"context"
	"fmt"
	"os"

	"pointer/internal/security"
)

// DeleteFileTool removes a file or an empty directory.
type DeleteFileTool struct {
	paths *security.PathValidator
}

// NewDeleteFileTool creates a DeleteFileTool.
func NewDeleteFileTool(paths *security.PathValidator) *DeleteFileTool {
	return &DeleteFileTool{paths: paths}
}

func (t *DeleteFileTool) Name() string {
	return "delete_file"
}

func (t *DeleteFileTool) Description() string {
	return `Deletes a file or an empty directory.

PARAMETERS:
- path (required): path relative to the project root

Non-empty directories are refused; delete their contents first.`
}

func (t *DeleteFileTool) Validate(args map[string]any) error {
	path, ok := GetString(args, "path")
	if !ok || path == "" {
		return NewValidationError("path", "is required")
	}
	return nil
}

func (t *DeleteFileTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	path, _ := GetString(args, "path")

	abs, err := t.paths.Resolve(path)
	if err != nil {
		return NewErrorResult(err.Error()), nil
	}

	if _, err := os.Stat(abs); err != nil {
		if os.IsNotExist(err) {
			return NewErrorResult(fmt.Sprintf("not found: %s", path)), nil
		}
		return NewErrorResult(fmt.Sprintf("cannot access %s: %v", path, err)), nil
	}

	if err := os.Remove(abs); err != nil {
		return NewErrorResult(fmt.Sprintf("cannot delete %s: %v", path, err)), nil
	}
	return NewSuccessResult(fmt.Sprintf("Deleted %s", path)), nil
}
