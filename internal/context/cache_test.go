package context

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pointer/internal/config"
)

func testConfig() config.ContextConfig {
	return config.ContextConfig{
		MaxDepth:          3,
		MaxFileSize:       1024,
		MaxContextFiles:   10,
		RefreshMinutes:    5,
		ExcludePatterns:   []string{".git", "node_modules", "*.log"},
		IncludeExtensions: []string{".go", ".md", ".txt", ".py"},
	}
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func relPaths(files []*File) []string {
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.RelPath
	}
	return paths
}

func TestRefreshIndexesTextFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"README.md":        "# Demo\nA demo project.\n",
		"main.go":          "package main\n\nfunc main() {}\n",
		"docs/usage.txt":   "usage notes\n",
		"build.log":        "should be excluded\n",
		".git/config":      "excluded dir\n",
		"image.png":        "\x89PNG\x00binary",
		"scripts/run.py":   "print('hi')\n",
	})

	cache := NewCache(root, testConfig())
	cache.Refresh()

	paths := relPaths(cache.Files())
	assert.Equal(t, []string{"README.md", "docs/usage.txt", "main.go", "scripts/run.py"}, paths)
}

func TestRefreshIsIdempotent(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.go": "package a\n",
		"b.md": "# b\n",
	})

	cache := NewCache(root, testConfig())
	cache.Refresh()
	first := cache.Files()

	cache.Refresh()
	second := cache.Files()

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].RelPath, second[i].RelPath)
		assert.Equal(t, first[i].Preview, second[i].Preview)
	}
}

func TestRefreshRespectsSizeCeiling(t *testing.T) {
	root := t.TempDir()
	atLimit := strings.Repeat("x", 1024)
	overLimit := strings.Repeat("y", 1025)
	writeTree(t, root, map[string]string{
		"at_limit.txt":   atLimit,
		"over_limit.txt": overLimit,
	})

	cache := NewCache(root, testConfig())
	cache.Refresh()

	paths := relPaths(cache.Files())
	assert.Contains(t, paths, "at_limit.txt")
	assert.NotContains(t, paths, "over_limit.txt")
}

func TestRefreshRespectsDepthLimit(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"top.go":           "package top\n",
		"a/one.go":         "package a\n",
		"a/b/two.go":       "package b\n",
		"a/b/c/three.go":   "package c\n",
		"a/b/c/d/four.go":  "package d\n",
	})

	cfg := testConfig()
	cfg.MaxDepth = 2
	cache := NewCache(root, cfg)
	cache.Refresh()

	paths := relPaths(cache.Files())
	assert.Contains(t, paths, "top.go")
	assert.Contains(t, paths, "a/one.go")
	assert.Contains(t, paths, "a/b/two.go")
	assert.NotContains(t, paths, "a/b/c/three.go")
	assert.NotContains(t, paths, "a/b/c/d/four.go")
}

func TestKeyFilesRanking(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"README.md":  "# Project\n",
		"main.go":    "package main\n",
		"helper.go":  "package main\n",
	})

	cache := NewCache(root, testConfig())
	cache.Refresh()

	key := cache.KeyFiles(2)
	require.Len(t, key, 2)
	assert.Equal(t, "README.md", key[0].RelPath)
	assert.Equal(t, "main.go", key[1].RelPath)
}

func TestSearchMatchesNamePathAndPreview(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"auth/login.go": "package auth\n\nfunc Login() {}\n",
		"notes.md":      "remember the LOGIN flow\n",
		"other.go":      "package other\n",
	})

	cache := NewCache(root, testConfig())
	cache.Refresh()

	matches := relPaths(cache.Search("login"))
	assert.ElementsMatch(t, []string{"auth/login.go", "notes.md"}, matches)
}

func TestContextForPromptSummarizes(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"README.md": "# Demo\nHello.\n",
		"src/a.go":  "package a\n",
	})

	cache := NewCache(root, testConfig())
	cache.Refresh()

	out := cache.ContextForPrompt()
	assert.Contains(t, out, "Project root: ")
	assert.Contains(t, out, "Total files: 2")
	assert.Contains(t, out, "README.md")
	assert.Contains(t, out, "src: 1 file(s)")
}

func TestStalenessAndMarkStale(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.go": "package a\n"})

	cfg := testConfig()
	cfg.AutoRefresh = false
	cache := NewCache(root, cfg)
	cache.Refresh()

	assert.False(t, cache.RefreshDue())
	cache.MarkStale()
	assert.True(t, cache.RefreshDue())

	cache.Refresh()
	assert.False(t, cache.RefreshDue())
}
