package repository

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"shinkuro/internal/logging"
	"shinkuro/pkg/fileops"
)

// Source resolves to the local directory that holds the prompts.
type Source interface {
	Prepare(logger *logging.AppLogger) (localPath string, info SyncInfo, err error)
}

// SyncInfo reports what Prepare did.
type SyncInfo struct {
	Cloned   bool   // a clone happened
	Updated  bool   // an existing entry was fetched and reset
	Recloned bool   // an unusable entry was discarded first
	Message  string // short operator-facing summary
}

// SourceSpec is the configured choice of source. With GitURL set, Folder is
// a subfolder inside the checkout; otherwise Folder is a local directory.
type SourceSpec struct {
	Folder string
	GitURL string
}

// IsRemote reports whether a git repository is configured.
func (s SourceSpec) IsRemote() bool {
	return strings.TrimSpace(s.GitURL) != ""
}

// IsEmpty reports whether neither a folder nor a URL is set.
func (s SourceSpec) IsEmpty() bool {
	return strings.TrimSpace(s.Folder) == "" && !s.IsRemote()
}

// LocalSource is a directory on disk, used as is.
type LocalSource struct {
	Path string
}

// NewLocalSource creates a LocalSource for path.
func NewLocalSource(path string) LocalSource {
	return LocalSource{Path: path}
}

// Prepare expands "~", anchors relative paths at the working directory and
// checks that the result is a directory.
func (ls LocalSource) Prepare(logger *logging.AppLogger) (string, SyncInfo, error) {
	abs, err := fileops.ResolvePath(ls.Path)
	if err != nil {
		return "", SyncInfo{}, &SourceError{Source: ls.Path, Op: "resolve", Err: err}
	}
	if err := checkDirectory(abs); err != nil {
		return "", SyncInfo{}, &SourceError{Source: ls.Path, Op: "resolve", Err: err}
	}

	if logger != nil {
		logger.Debug("Local source validated", "path", abs)
	}
	return abs, SyncInfo{Message: "Using local folder"}, nil
}

// GitSource is a remote repository served from the cache, optionally
// narrowed to a subfolder of the checkout.
type GitSource struct {
	URL       string
	Subfolder string
	Cache     *Cache
}

// NewGitSource creates a GitSource.
func NewGitSource(url, subfolder string, cache *Cache) GitSource {
	return GitSource{URL: url, Subfolder: subfolder, Cache: cache}
}

// Prepare ensures the cache entry and returns the checkout or the subfolder
// inside it. The subfolder must stay inside the checkout.
func (gs GitSource) Prepare(logger *logging.AppLogger) (string, SyncInfo, error) {
	if gs.Cache == nil {
		return "", SyncInfo{}, &SourceError{Source: gs.URL, Op: "resolve", Err: errors.New("no repository cache configured")}
	}

	checkout, info, err := gs.Cache.Ensure(gs.URL)
	if err != nil {
		return "", SyncInfo{}, err
	}

	root := checkout
	if sub := strings.TrimSpace(gs.Subfolder); sub != "" {
		if filepath.IsAbs(sub) {
			return "", SyncInfo{}, &SourceError{Source: gs.URL, Op: "resolve",
				Err: fmt.Errorf("subfolder %q must be relative to the repository", sub)}
		}
		root = filepath.Join(checkout, filepath.FromSlash(sub))
		if err := fileops.ValidatePathWithin(root, checkout); err != nil {
			return "", SyncInfo{}, &SourceError{Source: gs.URL, Op: "resolve", Err: err}
		}
	}

	if err := checkDirectory(root); err != nil {
		return "", SyncInfo{}, &SourceError{Source: gs.URL, Op: "resolve", Err: err}
	}

	if logger != nil {
		logger.Debug("Git checkout resolved", "url", gs.URL, "path", root)
	}
	return root, info, nil
}

// NewSource picks the Source for spec.
func NewSource(spec SourceSpec, cache *Cache) (Source, error) {
	switch {
	case spec.IsRemote():
		return NewGitSource(strings.TrimSpace(spec.GitURL), spec.Folder, cache), nil
	case !spec.IsEmpty():
		return NewLocalSource(strings.TrimSpace(spec.Folder)), nil
	}
	return nil, errors.New("either a folder or a git URL is required")
}

// Resolve prepares the source described by spec and returns its directory
// along with what was done to get it.
func Resolve(spec SourceSpec, cache *Cache, logger *logging.AppLogger) (string, SyncInfo, error) {
	src, err := NewSource(spec, cache)
	if err != nil {
		return "", SyncInfo{}, err
	}
	return src.Prepare(logger)
}

func checkDirectory(path string) error {
	if err := fileops.ValidateDirectory(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fileops.ErrNotDirectory) {
			return fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return err
	}
	return nil
}
