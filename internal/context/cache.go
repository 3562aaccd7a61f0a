// Package context maintains a cached index of the workspace's text files,
// rendered into prompt context for the model.
package context

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"pointer/internal/config"
	"pointer/internal/fileutil"
	"pointer/internal/logging"
)

// File is one indexed workspace file.
type File struct {
	Path      string
	RelPath   string
	Size      int64
	ModTime   time.Time
	Preview   string
	LineCount int
}

// Name returns the file's base name.
func (f *File) Name() string {
	return filepath.Base(f.RelPath)
}

// Cache indexes the workspace. Refresh rebuilds the whole entry set; there is
// no incremental diffing.
type Cache struct {
	root string
	cfg  config.ContextConfig

	mu          sync.RWMutex
	entries     map[string]*File
	lastRefresh time.Time
	stale       bool
}

// NewCache creates a cache rooted at root. The index is empty until the
// first Refresh.
func NewCache(root string, cfg config.ContextConfig) *Cache {
	return &Cache{
		root:    root,
		cfg:     cfg,
		entries: make(map[string]*File),
	}
}

// Root returns the workspace root the cache indexes.
func (c *Cache) Root() string {
	return c.root
}

// Len returns the number of indexed files.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// LastRefresh returns when the index was last rebuilt.
func (c *Cache) LastRefresh() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastRefresh
}

// MarkStale flags the index for rebuild on the next RefreshIfDue.
func (c *Cache) MarkStale() {
	c.mu.Lock()
	c.stale = true
	c.mu.Unlock()
}

// RefreshDue reports whether the index should be rebuilt: it has been marked
// stale, auto-refresh is on, or the refresh interval has elapsed.
func (c *Cache) RefreshDue() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.stale || c.cfg.AutoRefresh {
		return true
	}
	ttl := time.Duration(c.cfg.RefreshMinutes) * time.Minute
	return ttl > 0 && time.Since(c.lastRefresh) > ttl
}

// RefreshIfDue rebuilds the index when RefreshDue says so.
func (c *Cache) RefreshIfDue() {
	if c.RefreshDue() {
		c.Refresh()
	}
}

// Refresh walks the workspace and replaces the entry set. Unreadable
// directories are skipped, never fatal.
func (c *Cache) Refresh() {
	start := time.Now()
	entries := make(map[string]*File)

	type dirItem struct {
		path  string
		depth int
	}
	worklist := []dirItem{{c.root, 0}}

	for len(worklist) > 0 {
		item := worklist[0]
		worklist = worklist[1:]

		dirEntries, err := os.ReadDir(item.path)
		if err != nil {
			logging.Debug("skipping unreadable directory", "dir", item.path, "error", err)
			continue
		}

		for _, de := range dirEntries {
			full := filepath.Join(item.path, de.Name())
			rel, err := filepath.Rel(c.root, full)
			if err != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			if c.excluded(rel, de.Name()) {
				continue
			}

			if de.IsDir() {
				if item.depth+1 <= c.cfg.MaxDepth {
					worklist = append(worklist, dirItem{full, item.depth + 1})
				}
				continue
			}

			if f := c.index(full, rel); f != nil {
				entries[rel] = f
			}
		}
	}

	c.mu.Lock()
	c.entries = entries
	c.lastRefresh = time.Now()
	c.stale = false
	c.mu.Unlock()

	logging.Info("context refreshed", "files", len(entries), "took", time.Since(start))
}

// index builds the entry for a single candidate file, or nil when the file
// does not qualify.
func (c *Cache) index(full, rel string) *File {
	ext := strings.ToLower(filepath.Ext(full))
	if !c.allowedExtension(ext) {
		return nil
	}

	info, err := os.Stat(full)
	if err != nil {
		return nil
	}
	if c.cfg.MaxFileSize > 0 && info.Size() > c.cfg.MaxFileSize {
		return nil
	}
	if !fileutil.IsTextFile(full) {
		return nil
	}

	preview, lineCount := readPreview(full)
	return &File{
		Path:      full,
		RelPath:   rel,
		Size:      info.Size(),
		ModTime:   info.ModTime(),
		Preview:   preview,
		LineCount: lineCount,
	}
}

func (c *Cache) allowedExtension(ext string) bool {
	if len(c.cfg.IncludeExtensions) == 0 {
		return true
	}
	for _, allowed := range c.cfg.IncludeExtensions {
		if strings.EqualFold(allowed, ext) {
			return true
		}
	}
	return false
}

// excluded checks a relative path against the exclude patterns. Patterns are
// tried as globs first, then as plain substrings.
func (c *Cache) excluded(rel, base string) bool {
	for _, pattern := range c.cfg.ExcludePatterns {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
		if ok, err := doublestar.Match(pattern, base); err == nil && ok {
			return true
		}
		if strings.Contains(rel, pattern) {
			return true
		}
	}
	return false
}

// readPreview reads the head of the file and returns a bounded preview plus
// the line count of the portion read.
func readPreview(path string) (string, int) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0
	}
	defer f.Close()

	buf := make([]byte, config.DefaultPreviewReadBytes)
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		return "", 0
	}
	text := string(buf[:n])

	lineCount := strings.Count(text, "\n")
	if text != "" && !strings.HasSuffix(text, "\n") {
		lineCount++
	}

	preview := text
	if len(preview) > config.DefaultPreviewChars {
		preview = preview[:config.DefaultPreviewChars]
	}
	return preview, lineCount
}

// Files returns the indexed entries sorted by relative path.
func (c *Cache) Files() []*File {
	c.mu.RLock()
	defer c.mu.RUnlock()

	files := make([]*File, 0, len(c.entries))
	for _, f := range c.entries {
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files
}

// Search returns every entry whose name, relative path, or preview contains
// query, case-insensitively.
func (c *Cache) Search(query string) []*File {
	c.mu.RLock()
	defer c.mu.RUnlock()

	q := strings.ToLower(query)
	var matches []*File
	for _, f := range c.entries {
		if strings.Contains(strings.ToLower(f.Name()), q) ||
			strings.Contains(strings.ToLower(f.RelPath), q) ||
			strings.Contains(strings.ToLower(f.Preview), q) {
			matches = append(matches, f)
		}
	}
	return matches
}

// entryPointNames are filenames that identify where a codebase starts.
var entryPointNames = map[string]bool{
	"main.go": true, "main.py": true, "app.py": true, "__main__.py": true,
	"index.js": true, "index.ts": true, "server.js": true,
	"package.json": true, "go.mod": true, "cargo.toml": true,
	"requirements.txt": true, "pyproject.toml": true, "setup.py": true,
}

const (
	readmeScore     = 1000
	entryPointScore = 500
	sizeScoreCap    = 100
	recencyScoreCap = 50
)

// score ranks a file's importance for the prompt summary.
func score(f *File, now time.Time) int {
	s := 0
	name := strings.ToLower(f.Name())
	if strings.HasPrefix(name, "readme") {
		s += readmeScore
	}
	if entryPointNames[name] {
		s += entryPointScore
	}

	sizeTerm := int(f.Size / 100)
	if sizeTerm > sizeScoreCap {
		sizeTerm = sizeScoreCap
	}
	s += sizeTerm

	// Newer files score higher, one point per day under the cap.
	ageDays := int(now.Sub(f.ModTime).Hours() / 24)
	recency := recencyScoreCap - ageDays
	if recency < 0 {
		recency = 0
	}
	s += recency

	return s
}

// KeyFiles returns the top entries by rank, at most max. Ties keep the
// stable path enumeration order.
func (c *Cache) KeyFiles(max int) []*File {
	files := c.Files()
	now := time.Now()
	sort.SliceStable(files, func(i, j int) bool {
		return score(files[i], now) > score(files[j], now)
	})
	if max > 0 && len(files) > max {
		files = files[:max]
	}
	return files
}

const previewLines = 5

// ContextForPrompt renders the bounded workspace summary injected into the
// system prompt.
func (c *Cache) ContextForPrompt() string {
	files := c.Files()
	if len(files) == 0 {
		return fmt.Sprintf("Project root: %s\n(no indexed files)", c.root)
	}

	var out strings.Builder
	fmt.Fprintf(&out, "Project root: %s\n", c.root)
	fmt.Fprintf(&out, "Total files: %d\n", len(files))

	type dirStat struct {
		count int
		size  int64
	}
	dirs := make(map[string]*dirStat)
	for _, f := range files {
		dir := filepath.Dir(f.RelPath)
		if dir == "." {
			dir = "(root)"
		}
		st := dirs[dir]
		if st == nil {
			st = &dirStat{}
			dirs[dir] = st
		}
		st.count++
		st.size += f.Size
	}

	names := make([]string, 0, len(dirs))
	for d := range dirs {
		names = append(names, d)
	}
	sort.Strings(names)

	out.WriteString("\nDirectories:\n")
	for _, d := range names {
		st := dirs[d]
		fmt.Fprintf(&out, "  %s: %d file(s), %s\n", d, st.count, fileutil.FormatSize(st.size))
	}

	out.WriteString("\nKey files:\n")
	for _, f := range c.KeyFiles(c.cfg.MaxContextFiles) {
		fmt.Fprintf(&out, "  %s (%s, %d lines)\n", f.RelPath, fileutil.FormatSize(f.Size), f.LineCount)
		for _, line := range previewHead(f.Preview, previewLines) {
			fmt.Fprintf(&out, "    %s\n", line)
		}
	}

	return out.String()
}

func previewHead(preview string, max int) []string {
	if preview == "" {
		return nil
	}
	lines := strings.Split(strings.TrimRight(preview, "\n"), "\n")
	if len(lines) > max {
		lines = lines[:max]
	}
	return lines
}
