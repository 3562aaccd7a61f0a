package tools

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"pointer/internal/security"
)

const (
	defaultReadLimit = 2000
	maxLineLength    = 2000
)

// ReadFileTool returns file contents with line numbers.
type ReadFileTool struct {
	paths *security.PathValidator
}

// NewReadFileTool creates a ReadFileTool confined to the validator's directories.
func NewReadFileTool(paths *security.PathValidator) *ReadFileTool {
	return &ReadFileTool{paths: paths}
}

func (t *ReadFileTool) Name() string {
	return "read_file"
}

func (t *ReadFileTool) Description() string {
	return `Reads a text file and returns its contents with line numbers.

PARAMETERS:
- path (required): file path, relative to the project root
- offset (optional): line number to start from (1-indexed, default 1)
- limit (optional): maximum number of lines to return (default 2000)

Long lines are truncated. Use offset to continue reading a large file.`
}

func (t *ReadFileTool) Validate(args map[string]any) error {
	path, ok := GetString(args, "path")
	if !ok || path == "" {
		return NewValidationError("path", "is required")
	}
	return nil
}

func (t *ReadFileTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	path, _ := GetString(args, "path")
	offset := GetIntDefault(args, "offset", 1)
	limit := GetIntDefault(args, "limit", defaultReadLimit)
	if offset < 1 {
		offset = 1
	}
	if limit <= 0 {
		limit = defaultReadLimit
	}

	abs, err := t.paths.Resolve(path)
	if err != nil {
		return NewErrorResult(err.Error()), nil
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return NewErrorResult(fmt.Sprintf("file not found: %s", path)), nil
		}
		return NewErrorResult(fmt.Sprintf("cannot access file: %v", err)), nil
	}
	if info.IsDir() {
		return NewErrorResult(fmt.Sprintf("%s is a directory, not a file", path)), nil
	}

	f, err := os.Open(abs)
	if err != nil {
		return NewErrorResult(fmt.Sprintf("cannot open file: %v", err)), nil
	}
	defer f.Close()

	var builder strings.Builder
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	lineNum := 0
	linesRead := 0
	for scanner.Scan() {
		lineNum++
		if lineNum < offset {
			continue
		}
		if linesRead >= limit {
			break
		}
		line := scanner.Text()
		if len(line) > maxLineLength {
			line = line[:maxLineLength] + "..."
		}
		fmt.Fprintf(&builder, "%6d\t%s\n", lineNum, line)
		linesRead++
	}
	if err := scanner.Err(); err != nil {
		return NewErrorResult(fmt.Sprintf("error reading file: %v", err)), nil
	}

	content := builder.String()
	if content == "" {
		if offset > 1 && lineNum > 0 {
			content = fmt.Sprintf("(offset %d is beyond end of file, file has %d lines)", offset, lineNum)
		} else {
			content = "(empty file)"
		}
	}
	return NewSuccessResult(content), nil
}
