package fileutil

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
)

// textExtensions are file extensions assumed to hold text without sniffing.
var textExtensions = map[string]bool{
	".txt": true, ".md": true, ".rst": true,
	".py": true, ".go": true, ".js": true, ".ts": true, ".jsx": true, ".tsx": true,
	".java": true, ".c": true, ".h": true, ".cpp": true, ".hpp": true, ".cs": true,
	".rb": true, ".php": true, ".rs": true, ".swift": true, ".kt": true,
	".sh": true, ".bash": true, ".zsh": true, ".fish": true,
	".html": true, ".htm": true, ".css": true, ".scss": true, ".less": true,
	".json": true, ".yaml": true, ".yml": true, ".toml": true, ".xml": true,
	".ini": true, ".cfg": true, ".conf": true, ".env": true,
	".sql": true, ".graphql": true, ".proto": true,
	".dockerfile": true, ".makefile": true, ".mod": true, ".sum": true,
	".gitignore": true, ".editorconfig": true,
}

const sniffLen = 1024

// IsTextFile reports whether path looks like a text file. Known text
// extensions pass immediately; otherwise the first chunk of the file is
// checked for NUL bytes.
func IsTextFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if textExtensions[ext] {
		return true
	}
	base := strings.ToLower(filepath.Base(path))
	if base == "makefile" || base == "dockerfile" || base == "license" {
		return true
	}

	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, sniffLen)
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		return false
	}
	return !bytes.ContainsRune(buf[:n], 0)
}

// FormatSize renders a byte count for human consumption, e.g. "1.2 MB".
func FormatSize(n int64) string {
	return humanize.Bytes(uint64(n))
}

// TruncateLines limits s to at most max lines, appending a marker with the
// number of lines dropped. Non-positive max means no limit.
func TruncateLines(s string, max int) string {
	if max <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) <= max {
		return s
	}
	dropped := len(lines) - max
	out := strings.Join(lines[:max], "\n")
	return out + "\n... (" + humanize.Comma(int64(dropped)) + " more lines)"
}
