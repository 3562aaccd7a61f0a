package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"pointer/internal/security"
)

const maxSearchResults = 1000

// SearchFilesTool finds files by name pattern.
type SearchFilesTool struct {
	paths *security.PathValidator
}

// NewSearchFilesTool creates a SearchFilesTool.
func NewSearchFilesTool(paths *security.PathValidator) *SearchFilesTool {
	return &SearchFilesTool{paths: paths}
}

func (t *SearchFilesTool) Name() string {
	return "search_files"
}

func (t *SearchFilesTool) Description() string {
	return `Finds files whose names match a glob pattern.

PARAMETERS:
- pattern (required): glob pattern, e.g. "*.go" or "cmd/**/*.json"
- dir (optional): directory to search in, relative to the project root
- recursive (optional): search subdirectories too (default true)

Results are relative paths sorted by modification time, newest first.
Hidden files and directories are skipped unless the pattern names them.`
}

func (t *SearchFilesTool) Validate(args map[string]any) error {
	pattern, ok := GetString(args, "pattern")
	if !ok || pattern == "" {
		return NewValidationError("pattern", "is required")
	}
	return nil
}

func (t *SearchFilesTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	pattern, _ := GetString(args, "pattern")
	dir := GetStringDefault(args, "dir", ".")
	recursive := GetBoolDefault(args, "recursive", true)

	searchDir, err := t.paths.ResolveDir(dir)
	if err != nil {
		return NewErrorResult(err.Error()), nil
	}

	if recursive && !strings.Contains(pattern, "/") && !strings.HasPrefix(pattern, "**") {
		pattern = "**/" + pattern
	}

	matches, err := doublestar.FilepathGlob(filepath.Join(searchDir, pattern))
	if err != nil {
		return NewErrorResult(fmt.Sprintf("invalid pattern: %v", err)), nil
	}

	type entry struct {
		path    string
		modTime int64
	}
	var files []entry
	for _, match := range matches {
		// A ".." in the pattern can glob past searchDir, so each match is
		// checked for containment on its own.
		if _, err := t.paths.Resolve(match); err != nil {
			continue
		}
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}
		rel, err := filepath.Rel(t.paths.Root(), match)
		if err != nil {
			rel = match
		}
		if hasHiddenComponent(rel) {
			continue
		}
		files = append(files, entry{path: rel, modTime: info.ModTime().Unix()})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].modTime > files[j].modTime })

	totalFound := len(files)
	if len(files) > maxSearchResults {
		files = files[:maxSearchResults]
	}

	if len(files) == 0 {
		return NewSuccessResult("(no matches)"), nil
	}

	var builder strings.Builder
	if totalFound > maxSearchResults {
		fmt.Fprintf(&builder, "(showing %d of %d)\n", maxSearchResults, totalFound)
	}
	for _, f := range files {
		builder.WriteString(f.path)
		builder.WriteString("\n")
	}
	return NewSuccessResult(builder.String()), nil
}

func hasHiddenComponent(rel string) bool {
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}
