package tools

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"pointer/internal/security"
)

// CopyFileTool copies a file within the workspace.
type CopyFileTool struct {
	paths *security.PathValidator
}

// NewCopyFileTool creates a CopyFileTool.
func NewCopyFileTool(paths *security.PathValidator) *CopyFileTool {
	return &CopyFileTool{paths: paths}
}

func (t *CopyFileTool) Name() string {
	return "copy_file"
}

func (t *CopyFileTool) Description() string {
	return `Copies a file to a new location.

PARAMETERS:
- source (required): file to copy, relative to the project root
- destination (required): target path, relative to the project root

Refuses to overwrite an existing destination.`
}

func (t *CopyFileTool) Validate(args map[string]any) error {
	if src, ok := GetString(args, "source"); !ok || src == "" {
		return NewValidationError("source", "is required")
	}
	if dst, ok := GetString(args, "destination"); !ok || dst == "" {
		return NewValidationError("destination", "is required")
	}
	return nil
}

func (t *CopyFileTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	source, _ := GetString(args, "source")
	destination, _ := GetString(args, "destination")

	srcAbs, err := t.paths.Resolve(source)
	if err != nil {
		return NewErrorResult(err.Error()), nil
	}
	dstAbs, err := t.paths.Resolve(destination)
	if err != nil {
		return NewErrorResult(err.Error()), nil
	}

	info, err := os.Stat(srcAbs)
	if err != nil {
		if os.IsNotExist(err) {
			return NewErrorResult(fmt.Sprintf("source not found: %s", source)), nil
		}
		return NewErrorResult(fmt.Sprintf("cannot access source: %v", err)), nil
	}
	if info.IsDir() {
		return NewErrorResult(fmt.Sprintf("%s is a directory; only files can be copied", source)), nil
	}
	if _, err := os.Stat(dstAbs); err == nil {
		return NewErrorResult(fmt.Sprintf("destination already exists: %s", destination)), nil
	}

	if err := os.MkdirAll(filepath.Dir(dstAbs), 0755); err != nil {
		return NewErrorResult(fmt.Sprintf("cannot create destination directory: %v", err)), nil
	}

	src, err := os.Open(srcAbs)
	if err != nil {
		return NewErrorResult(fmt.Sprintf("cannot open source: %v", err)), nil
	}
	defer src.Close()

	dst, err := os.OpenFile(dstAbs, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return NewErrorResult(fmt.Sprintf("cannot create destination: %v", err)), nil
	}
	defer dst.Close()

	n, err := io.Copy(dst, src)
	if err != nil {
		os.Remove(dstAbs)
		return NewErrorResult(fmt.Sprintf("copy failed: %v", err)), nil
	}
	return NewSuccessResult(fmt.Sprintf("Copied %s to %s (%d bytes)", source, destination, n)), nil
}
