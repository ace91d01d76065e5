package fileops

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrNotDirectory is returned when a path exists but is not a directory.
	ErrNotDirectory = errors.New("not a directory")
	// ErrOutsideBase is returned when a path escapes its base directory.
	ErrOutsideBase = errors.New("path escapes base directory")
)

// ExpandPath expands a leading "~" or "~/" to the user's home directory.
// Other paths are returned unchanged.
//
//	expanded := fileops.ExpandPath("~/prompts")
//	// "/home/user/prompts"
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

// ResolvePath expands "~" and makes the path absolute relative to the
// current working directory.
func ResolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	abs, err := filepath.Abs(ExpandPath(path))
	if err != nil {
		return "", fmt.Errorf("cannot resolve path %q: %w", path, err)
	}
	return abs, nil
}

// ValidateDirectory checks that path exists and is a directory. A missing
// path yields an error satisfying os.IsNotExist / errors.Is(err, fs.ErrNotExist).
func ValidateDirectory(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: %w", path, ErrNotDirectory)
	}
	return nil
}

// IsDirEmpty reports whether dir has no entries. A missing directory counts
// as empty.
func IsDirEmpty(dir string) (bool, error) {
	f, err := os.Open(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, err
	}
	defer f.Close()

	_, err = f.Readdirnames(1)
	if err == io.EOF {
		return true, nil
	}
	return false, err
}

// EnsureDirectoryExists creates path and any missing parents (mkdir -p).
func EnsureDirectoryExists(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

// ValidatePathWithin checks that target stays inside baseDir, both lexically
// and after resolving symlinks. Targets that do not exist yet are only checked
// lexically.
//
//	err := fileops.ValidatePathWithin("/cache/repo/prompts", "/cache/repo")
func ValidatePathWithin(target, baseDir string) error {
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return fmt.Errorf("cannot resolve path: %w", err)
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return fmt.Errorf("cannot resolve base directory: %w", err)
	}

	if !isWithin(absTarget, absBase) {
		return fmt.Errorf("%s: %w", target, ErrOutsideBase)
	}

	resolvedTarget, err := filepath.EvalSymlinks(absTarget)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("cannot resolve symlinks: %w", err)
	}
	resolvedBase, err := filepath.EvalSymlinks(absBase)
	if err != nil {
		return fmt.Errorf("cannot resolve base symlinks: %w", err)
	}

	if !isWithin(resolvedTarget, resolvedBase) {
		return fmt.Errorf("%s resolves outside %s: %w", target, baseDir, ErrOutsideBase)
	}
	return nil
}

func isWithin(target, base string) bool {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// ValidateFileSizeLimit checks that a regular file is no larger than maxSize
// bytes.
func ValidateFileSizeLimit(filePath string, maxSize int64) error {
	if maxSize <= 0 {
		return fmt.Errorf("invalid size limit: %d", maxSize)
	}

	fileInfo, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s", filepath.Base(filePath))
		}
		return fmt.Errorf("cannot access file: %w", err)
	}

	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filePath)
	}

	if fileInfo.Size() > maxSize {
		return fmt.Errorf("file size %d bytes exceeds limit %d bytes", fileInfo.Size(), maxSize)
	}

	return nil
}
