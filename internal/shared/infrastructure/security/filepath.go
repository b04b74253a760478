// Package security validates filesystem paths that come from configuration
// or from request URLs.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrEmptyPath is returned for an empty path.
	ErrEmptyPath = errors.New("path cannot be empty")
	// ErrForbiddenChar is returned for paths with control or shell characters.
	ErrForbiddenChar = errors.New("path contains forbidden character")
	// ErrEscapesDir is returned when a path resolves outside its base directory.
	ErrEscapesDir = errors.New("path escapes base directory")
	// ErrNotRegularFile is returned when a path names a directory or device.
	ErrNotRegularFile = errors.New("path is not a regular file")
)

// forbiddenChars are shell metacharacters and control characters.
const forbiddenChars = ";&|$`<>!\x00\n\r"

// ValidatePath cleans path and makes it absolute, resolving symlinks when the
// target exists.
func ValidatePath(path string) (string, error) {
	if path == "" {
		return "", ErrEmptyPath
	}
	if i := strings.IndexAny(path, forbiddenChars); i >= 0 {
		return "", fmt.Errorf("%w %q: %s", ErrForbiddenChar, path[i], path)
	}

	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	return resolveSymlinks(abs)
}

// ResolveInDir joins name onto baseDir and ensures the result, after symlink
// resolution, stays inside baseDir. name is treated as relative even when it
// starts with a slash, as URL paths do.
func ResolveInDir(baseDir, name string) (string, error) {
	if baseDir == "" {
		return "", fmt.Errorf("base directory: %w", ErrEmptyPath)
	}
	base, err := ValidatePath(baseDir)
	if err != nil {
		return "", fmt.Errorf("base directory: %w", err)
	}

	rel := strings.TrimLeft(filepath.FromSlash(name), string(filepath.Separator))
	if rel == "" {
		return "", ErrEmptyPath
	}
	if strings.ContainsAny(rel, forbiddenChars) {
		return "", fmt.Errorf("%w: %s", ErrForbiddenChar, name)
	}

	target, err := resolveSymlinks(filepath.Join(base, rel))
	if err != nil {
		return "", err
	}
	if target != base && !strings.HasPrefix(target, base+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s is not within %s", ErrEscapesDir, name, baseDir)
	}
	return target, nil
}

// OpenInDir opens a regular file inside baseDir. Missing files yield an
// error matching os.ErrNotExist.
func OpenInDir(baseDir, name string) (*os.File, os.FileInfo, error) {
	path, err := ResolveInDir(baseDir, name)
	if err != nil {
		return nil, nil, err
	}
	// #nosec G304 - path is validated above
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	if !info.Mode().IsRegular() {
		_ = f.Close()
		return nil, nil, fmt.Errorf("%w: %s", ErrNotRegularFile, name)
	}
	return f, info, nil
}

func resolveSymlinks(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		if os.IsNotExist(err) {
			return path, nil
		}
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	return resolved, nil
}
