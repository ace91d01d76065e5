package filemanager

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shinkuro/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTempDirStructure creates files from a map of slash paths to content.
func createTempDirStructure(t *testing.T, structure map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for path, content := range structure {
		full := filepath.Join(root, filepath.FromSlash(path))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return root
}

func newTestFileManager(t *testing.T, root string, maxSize int64) *FileManager {
	t.Helper()
	logger, _ := logging.NewTestLogger()
	fm, err := NewFileManager(root, maxSize, logger)
	require.NoError(t, err)
	return fm
}

func TestScanMarkdown(t *testing.T) {
	root := createTempDirStructure(t, map[string]string{
		"think.md":           "Think.",
		"dev/code-review.md": "Review.",
		"dev/commit.md":      "Commit.",
		"dev/README.txt":     "not a prompt",
		"UPPER.MD":           "upper",
		".github/hidden.md":  "hidden",
	})
	fm := newTestFileManager(t, root, 0)

	items, err := fm.ScanMarkdown()
	require.NoError(t, err)

	var got []string
	for _, it := range items {
		got = append(got, it.Path)
	}
	assert.Equal(t, []string{"UPPER.MD", "dev/code-review.md", "dev/commit.md", "think.md"}, got)
}

func TestFileItem_Stem(t *testing.T) {
	tests := map[string]string{
		"commit.md":      "commit",
		"code-review.md": "code-review",
		"v1.2.md":        "v1.2",
		"noext":          "noext",
		".md":            ".md",
	}
	for name, want := range tests {
		assert.Equal(t, want, FileItem{Name: name}.Stem(), name)
	}
}

func TestReadFile(t *testing.T) {
	root := createTempDirStructure(t, map[string]string{
		"small.md": "hello",
		"big.md":   strings.Repeat("x", 64),
	})
	fm := newTestFileManager(t, root, 32)

	content, err := fm.ReadFile(FileItem{Name: "small.md", Path: "small.md"})
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))

	_, err = fm.ReadFile(FileItem{Name: "big.md", Path: "big.md"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds limit")

	_, err = fm.ReadFile(FileItem{Name: "x.md", Path: "../x.md"})
	assert.Error(t, err)
}

func TestNewFileManager_Errors(t *testing.T) {
	logger, _ := logging.NewTestLogger()

	_, err := NewFileManager(filepath.Join(t.TempDir(), "missing"), 0, logger)
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "file.md")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = NewFileManager(file, 0, logger)
	assert.Error(t, err)
}

func TestNewFileManager_Defaults(t *testing.T) {
	root := t.TempDir()
	fm, err := NewFileManager(root, 0, nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultMaxFileSize, fm.maxFileSize)
	assert.NotNil(t, fm.logger)
	assert.True(t, filepath.IsAbs(fm.Root()))
}

func TestScanMarkdown_Symlinks(t *testing.T) {
	root := createTempDirStructure(t, map[string]string{"shared/base.md": "Base prompt."})
	outside := createTempDirStructure(t, map[string]string{"secret.md": "secret"})

	if err := os.Symlink(filepath.Join(root, "shared", "base.md"), filepath.Join(root, "alias.md")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	require.NoError(t, os.Symlink(filepath.Join(outside, "secret.md"), filepath.Join(root, "escape.md")))

	logger, buf := logging.NewTestLogger()
	fm, err := NewFileManager(root, 0, logger)
	require.NoError(t, err)

	items, err := fm.ScanMarkdown()
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "alias.md", items[0].Path)
	assert.Equal(t, "shared/base.md", items[1].Path)

	content, err := fm.ReadFile(items[0])
	require.NoError(t, err)
	assert.Equal(t, "Base prompt.", string(content))

	assert.Contains(t, buf.String(), "Skipping symlinked prompt")
	assert.Contains(t, buf.String(), "escape.md")
}
