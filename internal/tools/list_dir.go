package tools

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"pointer/internal/fileutil"
	"pointer/internal/security"
)

// ListDirectoryTool lists directory entries, directories first.
type ListDirectoryTool struct {
	paths *security.PathValidator
}

// NewListDirectoryTool creates a ListDirectoryTool.
func NewListDirectoryTool(paths *security.PathValidator) *ListDirectoryTool {
	return &ListDirectoryTool{paths: paths}
}

func (t *ListDirectoryTool) Name() string {
	return "list_directory"
}

func (t *ListDirectoryTool) Description() string {
	return `Lists the entries of a directory.

PARAMETERS:
- path (optional): directory path, relative to the project root (default ".")

Directories come first, then files with their sizes.`
}

func (t *ListDirectoryTool) Validate(args map[string]any) error {
	return nil
}

func (t *ListDirectoryTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	path := GetStringDefault(args, "path", ".")

	abs, err := t.paths.ResolveDir(path)
	if err != nil {
		return NewErrorResult(err.Error()), nil
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return NewErrorResult(fmt.Sprintf("cannot read directory: %v", err)), nil
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].IsDir() != entries[j].IsDir() {
			return entries[i].IsDir()
		}
		return entries[i].Name() < entries[j].Name()
	})

	var builder strings.Builder
	for _, e := range entries {
		if e.IsDir() {
			fmt.Fprintf(&builder, "%s/\n", e.Name())
			continue
		}
		info, err := e.Info()
		if err != nil {
			fmt.Fprintf(&builder, "%s\n", e.Name())
			continue
		}
		fmt.Fprintf(&builder, "%s (%s)\n", e.Name(), fileutil.FormatSize(info.Size()))
	}

	if builder.Len() == 0 {
		return NewSuccessResult("(empty directory)"), nil
	}
	return NewSuccessResult(builder.String()), nil
}
