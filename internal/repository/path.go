package repository

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"shinkuro/pkg/fileops"

	"github.com/go-git/go-git/v6"
)

// scpLikeURL matches git@host:owner/repo(.git) and user@host:path forms.
var scpLikeURL = regexp.MustCompile(`^[\w.-]+@([^:/]+):(.+)$`)

// GitURLInfo contains the parsed components of a Git repository URL.
type GitURLInfo struct {
	Host  string // lower-cased host name, without port
	Owner string // owner or group path, may contain "/" for nested groups
	Repo  string // repository name without ".git"
}

// Key identifies the repository independently of transport and spelling.
func (i GitURLInfo) Key() string {
	return strings.ToLower(i.Host + "/" + i.Owner + "/" + i.Repo)
}

// ParseGitURL extracts host, owner and repository from SSH
// (git@host:owner/repo.git, ssh://git@host/owner/repo.git) and HTTP(S)
// URLs.
//
//	info, err := repository.ParseGitURL("https://github.com/user/prompts.git")
//	// info.Host = "github.com", info.Owner = "user", info.Repo = "prompts"
func ParseGitURL(gitURL string) (GitURLInfo, error) {
	gitURL = strings.TrimSpace(gitURL)
	if gitURL == "" {
		return GitURLInfo{}, fmt.Errorf("%w: empty URL", ErrInvalidGitURL)
	}

	var host, path string
	if !strings.Contains(gitURL, "://") {
		m := scpLikeURL.FindStringSubmatch(gitURL)
		if m == nil {
			return GitURLInfo{}, fmt.Errorf("%w: %q is neither an SSH nor an HTTP(S) URL", ErrInvalidGitURL, gitURL)
		}
		host, path = m[1], m[2]
	} else {
		u, err := url.Parse(gitURL)
		if err != nil {
			return GitURLInfo{}, fmt.Errorf("%w: %v", ErrInvalidGitURL, err)
		}
		switch u.Scheme {
		case "https", "http", "ssh", "git":
		default:
			return GitURLInfo{}, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidGitURL, u.Scheme)
		}
		host, path = u.Hostname(), u.Path
	}

	if host == "" {
		return GitURLInfo{}, fmt.Errorf("%w: missing host in %q", ErrInvalidGitURL, gitURL)
	}

	path = strings.TrimSuffix(strings.Trim(path, "/"), ".git")
	parts := strings.Split(path, "/")
	if len(parts) < 2 {
		return GitURLInfo{}, fmt.Errorf("%w: path should contain owner/repo: %q", ErrInvalidGitURL, path)
	}
	for _, p := range parts {
		if p == "" || p == "." || p == ".." {
			return GitURLInfo{}, fmt.Errorf("%w: bad path segment in %q", ErrInvalidGitURL, path)
		}
	}

	return GitURLInfo{
		Host:  strings.ToLower(host),
		Owner: strings.Join(parts[:len(parts)-1], "/"),
		Repo:  parts[len(parts)-1],
	}, nil
}

// DeriveCachePath returns <cacheDir>/git/<host>/<owner>/<repo> for gitURL.
func DeriveCachePath(cacheDir, gitURL string) (string, error) {
	info, err := ParseGitURL(gitURL)
	if err != nil {
		return "", err
	}

	root, err := fileops.ResolvePath(cacheDir)
	if err != nil {
		return "", fmt.Errorf("invalid cache directory: %w", err)
	}

	return filepath.Join(root, "git", info.Host, filepath.FromSlash(info.Owner), info.Repo), nil
}

// sameRepository reports whether two URLs name the same repository.
func sameRepository(a, b string) bool {
	ia, errA := ParseGitURL(a)
	ib, errB := ParseGitURL(b)
	if errA != nil || errB != nil {
		return strings.TrimSuffix(strings.TrimSpace(a), ".git") == strings.TrimSuffix(strings.TrimSpace(b), ".git")
	}
	return ia.Key() == ib.Key()
}

// DirectoryStatus represents the state of a cache entry on disk.
type DirectoryStatus int

const (
	// DirectoryStatusEmpty: missing or empty, safe to clone.
	DirectoryStatusEmpty DirectoryStatus = iota
	// DirectoryStatusSameRepo: a working tree of the expected remote.
	DirectoryStatusSameRepo
	// DirectoryStatusDifferentRepo: a working tree of another remote.
	DirectoryStatusDifferentRepo
	// DirectoryStatusCorrupt: content that is not a usable working tree.
	DirectoryStatusCorrupt
)

func (ds DirectoryStatus) String() string {
	switch ds {
	case DirectoryStatusEmpty:
		return "empty or doesn't exist"
	case DirectoryStatusSameRepo:
		return "same git repository"
	case DirectoryStatusDifferentRepo:
		return "different git repository"
	case DirectoryStatusCorrupt:
		return "not a valid working tree"
	default:
		return "unknown status"
	}
}

// InspectCacheEntry classifies the directory at path for expectedURL. A
// returned error means the filesystem itself could not be read.
func InspectCacheEntry(path, expectedURL string) (DirectoryStatus, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return DirectoryStatusEmpty, nil
	}
	if err != nil {
		return DirectoryStatusCorrupt, fmt.Errorf("cannot access %s: %w", path, err)
	}
	if !info.IsDir() {
		return DirectoryStatusCorrupt, nil
	}

	empty, err := fileops.IsDirEmpty(path)
	if err != nil {
		return DirectoryStatusCorrupt, fmt.Errorf("cannot read %s: %w", path, err)
	}
	if empty {
		return DirectoryStatusEmpty, nil
	}

	remote, err := originURL(path)
	if err != nil {
		return DirectoryStatusCorrupt, nil
	}
	if !sameRepository(remote, expectedURL) {
		return DirectoryStatusDifferentRepo, nil
	}
	return DirectoryStatusSameRepo, nil
}

// originURL opens the working tree at path and returns its origin URL. It
// fails for anything that is not a non-bare repository with a checked out
// commit and an origin remote.
func originURL(path string) (string, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return "", fmt.Errorf("not a git repository: %s", path)
		}
		return "", fmt.Errorf("cannot open git repository: %w", err)
	}

	if _, err := repo.Worktree(); err != nil {
		return "", fmt.Errorf("no working tree: %w", err)
	}
	if _, err := repo.Head(); err != nil {
		return "", fmt.Errorf("no checked out commit: %w", err)
	}

	remote, err := repo.Remote("origin")
	if err != nil {
		return "", fmt.Errorf("cannot get origin remote: %w", err)
	}
	cfg := remote.Config()
	if cfg == nil || len(cfg.URLs) == 0 {
		return "", fmt.Errorf("no URLs configured for origin remote")
	}
	return cfg.URLs[0], nil
}
