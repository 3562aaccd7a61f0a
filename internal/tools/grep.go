package tools

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"pointer/internal/fileutil"
	"pointer/internal/security"
)

const maxContentMatches = 500

// SearchContentTool searches file contents line by line.
type SearchContentTool struct {
	paths *security.PathValidator
}

// NewSearchContentTool creates a SearchContentTool.
func NewSearchContentTool(paths *security.PathValidator) *SearchContentTool {
	return &SearchContentTool{paths: paths}
}

func (t *SearchContentTool) Name() string {
	return "search_content"
}

func (t *SearchContentTool) Description() string {
	return `Searches inside files for lines containing the given text.

PARAMETERS:
- query (required): the text to look for
- pattern (optional): glob restricting which files are searched (default "*")
- dir (optional): directory to search in, relative to the project root
- case_sensitive (optional): exact-case matching (default false)

Results are "path:line: text" entries.`
}

func (t *SearchContentTool) Validate(args map[string]any) error {
	query, ok := GetString(args, "query")
	if !ok || query == "" {
		return NewValidationError("query", "is required")
	}
	return nil
}

func (t *SearchContentTool) Execute(ctx context.Context, args map[string]any) (ToolResult, error) {
	query, _ := GetString(args, "query")
	pattern := GetStringDefault(args, "pattern", "*")
	dir := GetStringDefault(args, "dir", ".")
	caseSensitive := GetBoolDefault(args, "case_sensitive", false)

	searchDir, err := t.paths.ResolveDir(dir)
	if err != nil {
		return NewErrorResult(err.Error()), nil
	}

	needle := query
	if !caseSensitive {
		needle = strings.ToLower(query)
	}

	var builder strings.Builder
	matches := 0
	walkErr := filepath.WalkDir(searchDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if matches >= maxContentMatches {
			return filepath.SkipAll
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != searchDir {
				return filepath.SkipDir
			}
			return nil
		}
		if ok, _ := doublestar.Match(pattern, d.Name()); !ok {
			return nil
		}
		if !fileutil.IsTextFile(path) {
			return nil
		}

		rel, relErr := filepath.Rel(t.paths.Root(), path)
		if relErr != nil {
			rel = path
		}
		searchFileLines(path, rel, needle, caseSensitive, &builder, &matches)
		return nil
	})
	if walkErr != nil {
		return NewErrorResult(fmt.Sprintf("search failed: %v", walkErr)), nil
	}

	if matches == 0 {
		return NewSuccessResult("(no matches)"), nil
	}
	out := builder.String()
	if matches >= maxContentMatches {
		out += fmt.Sprintf("... (stopped at %d matches)\n", maxContentMatches)
	}
	return NewSuccessResult(out), nil
}

func searchFileLines(path, rel, needle string, caseSensitive bool, out *strings.Builder, matches *int) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if *matches >= maxContentMatches {
			return
		}
		line := scanner.Text()
		haystack := line
		if !caseSensitive {
			haystack = strings.ToLower(line)
		}
		if !strings.Contains(haystack, needle) {
			continue
		}
		display := strings.TrimSpace(line)
		if len(display) > 200 {
			display = display[:200] + "..."
		}
		fmt.Fprintf(out, "%s:%d: %s\n", rel, lineNum, display)
		*matches++
	}
}
