package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"shinkuro/internal/logging"
	"shinkuro/pkg/fileops"
)

// Cache keeps one working tree per remote URL below a cache directory.
type Cache struct {
	dir     string
	client  GitClient
	refresh bool
	logger  *logging.AppLogger
}

// NewCache returns a cache rooted at dir ("~" is expanded). With refresh set,
// Ensure updates existing entries instead of reusing them as they are.
func NewCache(dir string, client GitClient, refresh bool, logger *logging.AppLogger) (*Cache, error) {
	if client == nil {
		return nil, fmt.Errorf("git client is required")
	}
	root, err := fileops.ResolvePath(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid cache directory: %w", err)
	}
	if logger == nil {
		logger = logging.GetDefault()
	}

	return &Cache{
		dir:     root,
		client:  client,
		refresh: refresh,
		logger:  logger,
	}, nil
}

// Dir returns the absolute cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// Path returns the entry location for url without touching the disk.
func (c *Cache) Path(url string) (string, error) {
	return DeriveCachePath(c.dir, url)
}

// Ensure makes sure a working tree of url exists in the cache and returns
// its path. Failures are *SourceError values.
func (c *Cache) Ensure(url string) (string, SyncInfo, error) {
	start := time.Now()
	defer c.logger.LogPerformance("cache_ensure", start)

	path, err := c.Path(url)
	if err != nil {
		return "", SyncInfo{}, &SourceError{Source: url, Op: "resolve", Err: err}
	}

	status, err := InspectCacheEntry(path, url)
	if err != nil {
		return "", SyncInfo{}, &SourceError{Source: url, Op: "resolve", Err: err}
	}
	c.logger.Debug("Cache entry inspected", "url", url, "path", path, "status", status.String())

	switch status {
	case DirectoryStatusSameRepo:
		if !c.refresh {
			return path, SyncInfo{Message: "Using cached repository"}, nil
		}
		if err := c.client.Update(path); err != nil {
			return "", SyncInfo{}, &SourceError{Source: url, Op: "update", Err: err}
		}
		return path, SyncInfo{Updated: true, Message: "Repository updated"}, nil

	case DirectoryStatusDifferentRepo, DirectoryStatusCorrupt:
		c.logger.Warn("Discarding unusable cache entry", "path", path, "reason", status.String())
		if err := os.RemoveAll(path); err != nil {
			return "", SyncInfo{}, &SourceError{Source: url, Op: "clone", Err: fmt.Errorf("cannot remove stale entry: %w", err)}
		}
		if err := c.clone(url, path); err != nil {
			return "", SyncInfo{}, err
		}
		return path, SyncInfo{Cloned: true, Recloned: true, Message: "Repository re-cloned"}, nil

	default:
		if err := c.clone(url, path); err != nil {
			return "", SyncInfo{}, err
		}
		return path, SyncInfo{Cloned: true, Message: "Repository cloned"}, nil
	}
}

func (c *Cache) clone(url, path string) error {
	if err := fileops.EnsureDirectoryExists(filepath.Dir(path)); err != nil {
		return &SourceError{Source: url, Op: "clone", Err: err}
	}

	if err := c.client.Clone(url, path); err != nil {
		if rmErr := os.RemoveAll(path); rmErr != nil {
			c.logger.Warn("Failed to remove partial clone", "path", path, "error", rmErr)
		}
		return &SourceError{Source: url, Op: "clone", Err: err}
	}
	return nil
}
