// Package security confines file operations to the workspace.
package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathError reports a path that failed validation, most commonly an attempt
// to reach outside the allowed directories.
type PathError struct {
	Path   string
	Reason string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("path %q rejected: %s", e.Path, e.Reason)
}

// PathValidator resolves tool-supplied paths against a workspace root and
// rejects anything that escapes the allowed directories, including escapes
// through symlinks.
type PathValidator struct {
	root        string
	allowedDirs []string
}

// NewPathValidator creates a validator rooted at root. Relative paths resolve
// against root; extra absolute directories may be allowed on top of it.
func NewPathValidator(root string, extraDirs ...string) (*PathValidator, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace root: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(absRoot); err == nil {
		absRoot = resolved
	}

	allowed := []string{absRoot}
	for _, d := range extraDirs {
		abs, err := filepath.Abs(d)
		if err != nil {
			continue
		}
		if resolved, err := filepath.EvalSymlinks(abs); err == nil {
			abs = resolved
		}
		allowed = append(allowed, filepath.Clean(abs))
	}
	return &PathValidator{root: absRoot, allowedDirs: allowed}, nil
}

// Root returns the workspace root.
func (v *PathValidator) Root() string {
	return v.root
}

// Resolve turns a tool-supplied path into an absolute path inside the
// allowed directories. Relative paths are taken relative to the workspace
// root. Symlinks are resolved before containment is checked so a link cannot
// smuggle an operation outside.
func (v *PathValidator) Resolve(path string) (string, error) {
	if path == "" {
		return "", &PathError{Path: path, Reason: "empty path"}
	}
	if strings.ContainsRune(path, 0) {
		return "", &PathError{Path: path, Reason: "null byte in path"}
	}

	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(v.root, abs)
	}
	abs = filepath.Clean(abs)

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("resolve symlinks: %w", err)
		}
		// The path does not exist yet. Resolve the nearest existing parent
		// instead so a symlinked ancestor still cannot escape.
		parent, parentErr := filepath.EvalSymlinks(filepath.Dir(abs))
		if parentErr != nil {
			if !os.IsNotExist(parentErr) {
				return "", fmt.Errorf("resolve symlinks: %w", parentErr)
			}
			resolved = abs
		} else {
			resolved = filepath.Join(parent, filepath.Base(abs))
		}
	}

	if !v.contained(resolved) {
		return "", &PathError{Path: path, Reason: "outside the workspace"}
	}
	return resolved, nil
}

// ResolveDir is Resolve plus a check that the path is an existing directory.
func (v *PathValidator) ResolveDir(path string) (string, error) {
	abs, err := v.Resolve(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", &PathError{Path: path, Reason: "not a directory"}
	}
	return abs, nil
}

func (v *PathValidator) contained(abs string) bool {
	for _, dir := range v.allowedDirs {
		rel, err := filepath.Rel(dir, abs)
		if err != nil {
			continue
		}
		if rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))) {
			return true
		}
	}
	return false
}
