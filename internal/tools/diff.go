package tools

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"pointer/internal/security"
)

// CreateDiffTool compares two files, or a file against provided content.
type CreateDiffTool struct {
	paths *security.PathValidator
}

// NewCreateDiffTool creates a CreateDiffTool.
func NewCreateDiffTool(paths *security.PathValidator) *CreateDiffTool {
	return &CreateDiffTool{paths: paths}
}

func (t *CreateDiffTool) Name() string {
	return "create_diff"
}

func (t *CreateDiffTool) Description() string {
	return `Shows a line diff between two files, or between a file and given content.

PARAMETERS:
- file1 (required): path to the first file, relative to the project root
- file2 (optional): path to the second file
- content (optional): text to compare file1 against instead of file2

Exactly one of file2 or content must be supplied.`
}

func (t *CreateDiffTool) Validate(args map[string]any) error {
	file1, ok := GetString(args, "file1")
	if !ok || file1 == "" {
		return NewValidationError("file1", "is required")
	}
	_, hasFile2 := GetString(args, "file2")
	_, hasContent := GetString(args, "content")
	if !hasFile2 && !hasContent {
		return NewValidationError("file2", "either file2 or content is required")
	}
	return nil
}

func (t *CreateDiffTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	file1, _ := GetString(args, "file1")

	abs1, err := t.paths.Resolve(file1)
	if err != nil {
		return NewErrorResult(err.Error()), nil
	}
	left, err := os.ReadFile(abs1)
	if err != nil {
		return NewErrorResult(fmt.Sprintf("cannot read %s: %v", file1, err)), nil
	}

	var right []byte
	label := "provided content"
	if file2, ok := GetString(args, "file2"); ok && file2 != "" {
		abs2, err := t.paths.Resolve(file2)
		if err != nil {
			return NewErrorResult(err.Error()), nil
		}
		right, err = os.ReadFile(abs2)
		if err != nil {
			return NewErrorResult(fmt.Sprintf("cannot read %s: %v", file2, err)), nil
		}
		label = file2
	} else {
		content, _ := GetString(args, "content")
		right = []byte(content)
	}

	diff := LineDiff(string(left), string(right))
	if diff == "" {
		return NewSuccessResult(fmt.Sprintf("%s and %s are identical", file1, label)), nil
	}
	return NewSuccessResult(fmt.Sprintf("--- %s\n+++ %s\n%s", file1, label, diff)), nil
}

// LineDiff renders a line-based +/- diff between two texts, with unchanged
// runs collapsed to a count.
func LineDiff(a, b string) string {
	dmp := diffmatchpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	changed := false
	var out strings.Builder
	for _, d := range diffs {
		text := strings.TrimSuffix(d.Text, "\n")
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			changed = true
			for _, line := range strings.Split(text, "\n") {
				out.WriteString("- " + line + "\n")
			}
		case diffmatchpatch.DiffInsert:
			changed = true
			for _, line := range strings.Split(text, "\n") {
				out.WriteString("+ " + line + "\n")
			}
		case diffmatchpatch.DiffEqual:
			n := strings.Count(d.Text, "\n")
			if n > 0 {
				fmt.Fprintf(&out, "  (%d unchanged line(s))\n", n)
			}
		}
	}
	if !changed {
		return ""
	}
	return out.String()
}
