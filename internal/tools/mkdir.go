package tools

import (
	"context"
	"fmt"
	"os"

	"pointer/internal/security"
)

// CreateDirectoryTool creates directories, including parents.
type CreateDirectoryTool struct {
	paths *security.PathValidator
}

// NewCreateDirectoryTool creates a CreateDirectoryTool.
func NewCreateDirectoryTool(paths *security.PathValidator) *CreateDirectoryTool {
	return &CreateDirectoryTool{paths: paths}
}

func (t *CreateDirectoryTool) Name() string {
	return "create_directory"
}

func (t *CreateDirectoryTool) Description() string {
	return `Creates a directory, including any missing parents.

PARAMETERS:
- path (required): directory path, relative to the project root`
}

func (t *CreateDirectoryTool) Validate(args map[string]any) error {
	path, ok := GetString(args, "path")
	if !ok || path == "" {
		return NewValidationError("path", "is required")
	}
	return nil
}

func (t *CreateDirectoryTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	path, _ := GetString(args, "path")

	abs, err := t.paths.Resolve(path)
	if err != nil {
		return NewErrorResult(err.Error()), nil
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return NewErrorResult(fmt.Sprintf("cannot create directory: %v", err)), nil
	}
	return NewSuccessResult(fmt.Sprintf("Created directory %s", path)), nil
}
