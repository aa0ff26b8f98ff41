// Package fileutil provides small filesystem helpers shared by the ingestion
// loops and the mirror writer.
package fileutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var unsafeChars = regexp.MustCompile(`[<>:"/\\|?*]`)
var whitespaceRuns = regexp.MustCompile(`\s+`)

// SanitizeDirName converts an arbitrary label (e.g. a meeting topic) into a
// safe directory name: unsafe characters become underscores, whitespace runs
// become single dashes, and the result is capped at 100 characters. An empty
// result resolves to "untitled".
func SanitizeDirName(name string) string {
	name = unsafeChars.ReplaceAllString(name, "_")
	name = whitespaceRuns.ReplaceAllString(strings.TrimSpace(name), "-")
	if len(name) > 100 {
		name = name[:100]
	}
	if name == "" {
		return "untitled"
	}
	return name
}

// WriteFileAtomic writes data to path via a temp file and rename so readers
// never observe a partial write. Parent directories are created as needed.
func WriteFileAtomic(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

// CopyFile streams src to dst with default permissions (0o644).
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// CanonicalPath resolves path to its absolute, symlink-free form. When the
// symlink resolution fails (dangling link, racing deletion) the absolute path
// is returned so callers still get a usable identity.
func CanonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve path %s: %w", path, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return abs, nil
	}
	return resolved, nil
}
