// Package filemanager discovers and reads the markdown files that make up a
// prompt library.
package filemanager

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"shinkuro/internal/logging"
	"shinkuro/pkg/fileops"
)

// DefaultMaxFileSize caps the size of a single prompt file.
const DefaultMaxFileSize int64 = 10 * 1024 * 1024

// markdownExtension is the only extension treated as a prompt file.
const markdownExtension = ".md"

// FileManager scans one root directory. The root is fixed at construction.
type FileManager struct {
	root        string
	maxFileSize int64
	logger      *logging.AppLogger
}

// NewFileManager resolves root and checks that it is a directory.
func NewFileManager(root string, maxFileSize int64, logger *logging.AppLogger) (*FileManager, error) {
	abs, err := fileops.ResolvePath(root)
	if err != nil {
		return nil, err
	}
	if err := fileops.ValidateDirectory(abs); err != nil {
		return nil, err
	}
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	if logger == nil {
		logger = logging.GetDefault()
	}

	return &FileManager{
		root:        abs,
		maxFileSize: maxFileSize,
		logger:      logger,
	}, nil
}

// Root returns the absolute scan root.
func (fm *FileManager) Root() string {
	return fm.root
}

// GetAbsolutePath maps an item back to its location on disk.
func (fm *FileManager) GetAbsolutePath(item FileItem) string {
	return filepath.Join(fm.root, filepath.FromSlash(item.Path))
}

// ScanMarkdown lists every markdown file below the root, skipping hidden
// directories, sorted by relative path.
func (fm *FileManager) ScanMarkdown() ([]FileItem, error) {
	start := time.Now()
	defer fm.logger.LogPerformance("scan_markdown", start)

	files, err := fileops.ScanFiles(fm.root, fileops.ScanOptions{
		FileFilter: isMarkdownFile,
		OnSkip: func(rel string, reason error) {
			fm.logger.Warn("Skipping symlinked prompt", "path", rel, "reason", reason)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", fm.root, err)
	}

	items := make([]FileItem, 0, len(files))
	for _, f := range files {
		items = append(items, FileItem{Name: f.Name, Path: f.Path, Size: f.Size})
	}

	fm.logger.Debug("Scanned prompt directory", "root", fm.root, "fileCount", len(items))
	return items, nil
}

// ReadFile returns the content of item after checking it is still inside the
// root and within the size limit.
func (fm *FileManager) ReadFile(item FileItem) ([]byte, error) {
	abs := fm.GetAbsolutePath(item)

	if err := fileops.ValidatePathWithin(abs, fm.root); err != nil {
		return nil, fmt.Errorf("%s: %w", item.Path, err)
	}
	if err := fileops.ValidateFileSizeLimit(abs, fm.maxFileSize); err != nil {
		return nil, fmt.Errorf("%s: %w", item.Path, err)
	}

	content, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", item.Path, err)
	}
	return content, nil
}

func isMarkdownFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), markdownExtension)
}
