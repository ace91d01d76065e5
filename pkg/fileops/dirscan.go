package fileops

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ScanOptions configures ScanFiles.
type ScanOptions struct {
	// MaxDepth limits recursion. Zero means no limit.
	MaxDepth int

	// IncludeHidden keeps directories and files whose name starts with ".".
	IncludeHidden bool

	// FileFilter selects files by base name. Nil includes every file.
	FileFilter func(name string) bool

	// OnSkip, when set, is told about matching symlinks that were left out
	// and why.
	OnSkip func(rel string, reason error)
}

// FileInfo describes a file found by ScanFiles.
type FileInfo struct {
	Name    string    // base name
	Path    string    // slash separated path relative to the scan root
	Size    int64     // size in bytes
	ModTime time.Time // last modification time
}

// ScanFiles walks root recursively and returns matching regular files sorted
// by relative path. Directories are read through an os.Root. A symlinked
// file is kept when its resolved target is a regular file inside root,
// whether the link is relative or absolute. Links that escape root, dangle
// or point at directories are skipped and reported to OnSkip. Any other
// read failure aborts the scan.
func ScanFiles(root string, opts ScanOptions) ([]FileInfo, error) {
	abs, err := ResolvePath(root)
	if err != nil {
		return nil, err
	}
	if err := ValidateDirectory(abs); err != nil {
		return nil, err
	}

	// symlink targets are compared against the real root path
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve scan root: %w", err)
	}

	r, err := os.OpenRoot(resolved)
	if err != nil {
		return nil, fmt.Errorf("cannot open scan root: %w", err)
	}
	defer r.Close()

	s := &scanner{root: r, dir: resolved, opts: opts}
	if err := s.walk(".", 1); err != nil {
		return nil, err
	}

	sort.Slice(s.results, func(i, j int) bool {
		return s.results[i].Path < s.results[j].Path
	})
	return s.results, nil
}

type scanner struct {
	root    *os.Root
	dir     string // resolved absolute root
	opts    ScanOptions
	results []FileInfo
}

func (s *scanner) walk(dir string, depth int) error {
	if s.opts.MaxDepth > 0 && depth > s.opts.MaxDepth {
		return nil
	}

	f, err := s.root.Open(dir)
	if err != nil {
		return fmt.Errorf("failed to open directory %s: %w", dir, err)
	}
	entries, err := f.ReadDir(-1)
	f.Close()
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if !s.opts.IncludeHidden && strings.HasPrefix(name, ".") {
			continue
		}
		rel := path.Join(dir, name)
		wanted := s.opts.FileFilter == nil || s.opts.FileFilter(name)

		switch {
		case entry.IsDir():
			if err := s.walk(rel, depth+1); err != nil {
				return err
			}
		case entry.Type()&fs.ModeSymlink != 0:
			if !wanted {
				continue
			}
			info, err := s.resolveLink(rel)
			if err != nil {
				s.skip(rel, err)
				continue
			}
			s.add(name, rel, info)
		case entry.Type().IsRegular():
			if !wanted {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				return fmt.Errorf("failed to stat %s: %w", rel, err)
			}
			s.add(name, rel, info)
		}
	}
	return nil
}

// resolveLink follows the symlink at rel and returns its target's info if
// the target is a regular file inside the root.
func (s *scanner) resolveLink(rel string) (fs.FileInfo, error) {
	target, err := filepath.EvalSymlinks(filepath.Join(s.dir, filepath.FromSlash(rel)))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve symlink: %w", err)
	}
	if err := ValidatePathWithin(target, s.dir); err != nil {
		return nil, err
	}
	info, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("cannot stat symlink target: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("symlink target %s is not a regular file", target)
	}
	return info, nil
}

func (s *scanner) skip(rel string, reason error) {
	if s.opts.OnSkip != nil {
		s.opts.OnSkip(rel, reason)
	}
}

func (s *scanner) add(name, rel string, info fs.FileInfo) {
	s.results = append(s.results, FileInfo{
		Name:    name,
		Path:    rel,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	})
}
