package tools

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"pointer/internal/fileutil"
	"pointer/internal/security"
)

// FileInfoTool reports metadata for one path.
type FileInfoTool struct {
	paths *security.PathValidator
}

// NewFileInfoTool creates a FileInfoTool.
func NewFileInfoTool(paths *security.PathValidator) *FileInfoTool {
	return &FileInfoTool{paths: paths}
}

func (t *FileInfoTool) Name() string {
	return "get_file_info"
}

func (t *FileInfoTool) Description() string {
	return `Returns metadata for a file or directory: type, size, permissions,
and modification time.

PARAMETERS:
- path (required): path relative to the project root`
}

func (t *FileInfoTool) Validate(args map[string]any) error {
	path, ok := GetString(args, "path")
	if !ok || path == "" {
		return NewValidationError("path", "is required")
	}
	return nil
}

func (t *FileInfoTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	path, _ := GetString(args, "path")

	abs, err := t.paths.Resolve(path)
	if err != nil {
		return NewErrorResult(err.Error()), nil
	}

	info, err := os.Stat(abs)
	if err != nil {
		return NewErrorResult(fmt.Sprintf("cannot stat %s: %v", path, err)), nil
	}

	kind := "file"
	if info.IsDir() {
		kind = "directory"
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "Path: %s\n", path)
	fmt.Fprintf(&builder, "Type: %s\n", kind)
	fmt.Fprintf(&builder, "Size: %s (%d bytes)\n", fileutil.FormatSize(info.Size()), info.Size())
	fmt.Fprintf(&builder, "Permissions: %s\n", info.Mode().Perm())
	fmt.Fprintf(&builder, "Modified: %s\n", info.ModTime().Format(time.RFC3339))

	return NewSuccessResultWithData(builder.String(), map[string]any{
		"path":     path,
		"type":     kind,
		"size":     info.Size(),
		"modified": info.ModTime().Unix(),
	}), nil
}
