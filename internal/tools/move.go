package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"pointer/internal/security"
)

// MoveFileTool renames a file or directory within the workspace.
type MoveFileTool struct {
	paths *security.PathValidator
}

// NewMoveFileTool creates a MoveFileTool.
func NewMoveFileTool(paths *security.PathValidator) *MoveFileTool {
	return &MoveFileTool{paths: paths}
}

func (t *MoveFileTool) Name() string {
	return "move_file"
}

func (t *MoveFileTool) Description() string {
	return `Moves or renames a file or directory.

PARAMETERS:
- source (required): current path, relative to the project root
- destination (required): new path, relative to the project root

Refuses to overwrite an existing destination.`
}

func (t *MoveFileTool) Validate(args map[string]any) error {
	if src, ok := GetString(args, "source"); !ok || src == "" {
		return NewValidationError("source", "is required")
	}
	if dst, ok := GetString(args, "destination"); !ok || dst == "" {
		return NewValidationError("destination", "is required")
	}
	return nil
}

func (t *MoveFileTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
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

	if _, err := os.Stat(srcAbs); err != nil {
		if os.IsNotExist(err) {
			return NewErrorResult(fmt.Sprintf("source not found: %s", source)), nil
		}
		return NewErrorResult(fmt.Sprintf("cannot access source: %v", err)), nil
	}
	if _, err := os.Stat(dstAbs); err == nil {
		return NewErrorResult(fmt.Sprintf("destination already exists: %s", destination)), nil
	}

	if err := os.MkdirAll(filepath.Dir(dstAbs), 0755); err != nil {
		return NewErrorResult(fmt.Sprintf("cannot create destination directory: %v", err)), nil
	}
	if err := os.Rename(srcAbs, dstAbs); err != nil {
		return NewErrorResult(fmt.Sprintf("cannot move %s: %v", source, err)), nil
	}
	return NewSuccessResult(fmt.Sprintf("Moved %s to %s", source, destination)), nil
}
