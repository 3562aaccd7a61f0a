package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"pointer/internal/fileutil"
	"pointer/internal/security"
)

// WriteFileTool writes content to files inside the workspace.
type WriteFileTool struct {
	paths *security.PathValidator
}

// NewWriteFileTool creates a WriteFileTool.
func NewWriteFileTool(paths *security.PathValidator) *WriteFileTool {
	return &WriteFileTool{paths: paths}
}

func (t *WriteFileTool) Name() string {
	return "write_file"
}

func (t *WriteFileTool) Description() string {
	return `Writes content to a file, creating it if needed or replacing it entirely.

PARAMETERS:
- path (required): file path, relative to the project root
- content (required): full file content

Parent directories are created automatically. The write is atomic.`
}

func (t *WriteFileTool) Validate(args map[string]any) error {
	path, ok := GetString(args, "path")
	if !ok || path == "" {
		return NewValidationError("path", "is required")
	}
	if _, ok := GetString(args, "content"); !ok {
		return NewValidationError("content", "is required")
	}
	return nil
}

func (t *WriteFileTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	path, _ := GetString(args, "path")
	content, _ := GetString(args, "content")

	abs, err := t.paths.Resolve(path)
	if err != nil {
		return NewErrorResult(err.Error()), nil
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return NewErrorResult(fmt.Sprintf("cannot create directories: %v", err)), nil
	}

	_, statErr := os.Stat(abs)
	isNew := os.IsNotExist(statErr)

	if err := fileutil.AtomicWrite(abs, []byte(content), 0644); err != nil {
		return NewErrorResult(fmt.Sprintf("cannot write file: %v", err)), nil
	}

	if isNew {
		return NewSuccessResult(fmt.Sprintf("Created %s (%d bytes)", path, len(content))), nil
	}
	return NewSuccessResult(fmt.Sprintf("Updated %s (%d bytes)", path, len(content))), nil
}
