package repository

import (
	"errors"
	"fmt"
	"strings"

	"shinkuro/internal/logging"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/transport"
	"github.com/go-git/go-git/v6/plumbing/transport/http"
)

// GitClient is the narrow git capability the cache needs.
type GitClient interface {
	// Clone creates a working tree of url at dest.
	Clone(url, dest string) error
	// Update moves the working tree at dest to the tip of its remote branch.
	Update(dest string) error
}

// GoGitClient implements GitClient with go-git. HTTPS operations that fail
// with an authentication error are retried once with a token from tokens.
type GoGitClient struct {
	tokens TokenSource
	logger *logging.AppLogger

	// swapped in tests
	plainClone func(path string, opts *git.CloneOptions) error
	fetch      func(remote *git.Remote, opts *git.FetchOptions) error
}

// NewGoGitClient returns a client. tokens may be nil, in which case private
// HTTPS repositories fail with ErrAuthRequired.
func NewGoGitClient(tokens TokenSource, logger *logging.AppLogger) *GoGitClient {
	if logger == nil {
		logger = logging.GetDefault()
	}
	return &GoGitClient{
		tokens: tokens,
		logger: logger,
		plainClone: func(path string, opts *git.CloneOptions) error {
			_, err := git.PlainClone(path, opts)
			return err
		},
		fetch: func(remote *git.Remote, opts *git.FetchOptions) error {
			return remote.Fetch(opts)
		},
	}
}

// Clone performs a shallow clone of url into dest.
func (c *GoGitClient) Clone(url, dest string) error {
	c.logger.Info("Cloning repository", "url", url, "path", dest)

	err := c.withAuthFallback(url, func(auth transport.AuthMethod) error {
		return c.plainClone(dest, &git.CloneOptions{
			URL:   url,
			Auth:  auth,
			Depth: 1,
		})
	})
	if err != nil {
		return translateGitError("clone", url, err)
	}

	c.logger.Debug("Repository cloned", "path", dest)
	return nil
}

// Update fetches origin and hard resets the checked out branch to the
// fetched remote-tracking ref. History is not merged.
func (c *GoGitClient) Update(dest string) error {
	repo, err := git.PlainOpen(dest)
	if err != nil {
		return fmt.Errorf("failed to open repository: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get working tree: %w", err)
	}

	remote, err := repo.Remote("origin")
	if err != nil {
		return fmt.Errorf("failed to get origin remote: %w", err)
	}
	url := ""
	if cfg := remote.Config(); cfg != nil && len(cfg.URLs) > 0 {
		url = cfg.URLs[0]
	}

	c.logger.Info("Fetching repository updates", "url", url, "path", dest)

	err = c.withAuthFallback(url, func(auth transport.AuthMethod) error {
		err := c.fetch(remote, &git.FetchOptions{
			Auth:  auth,
			Depth: 1,
			Force: true,
		})
		if errors.Is(err, git.NoErrAlreadyUpToDate) {
			return nil
		}
		return err
	})
	if err != nil {
		return translateGitError("fetch", url, err)
	}

	head, err := repo.Head()
	if err != nil {
		return fmt.Errorf("failed to read HEAD: %w", err)
	}
	branch := head.Name().Short()

	remoteRef, err := repo.Reference(plumbing.NewRemoteReferenceName("origin", branch), true)
	if err != nil {
		return fmt.Errorf("branch %q not found on origin: %w", branch, err)
	}

	if remoteRef.Hash() == head.Hash() {
		c.logger.Debug("Repository already up to date", "branch", branch)
		return nil
	}

	if err := worktree.Reset(&git.ResetOptions{
		Commit: remoteRef.Hash(),
		Mode:   git.HardReset,
	}); err != nil {
		return fmt.Errorf("failed to reset %s to origin: %w", branch, err)
	}

	c.logger.Info("Repository updated", "branch", branch, "commit", remoteRef.Hash().String())
	return nil
}

// withAuthFallback runs op anonymously and, for HTTP(S) URLs rejected with
// an authentication error, once more with the stored token.
func (c *GoGitClient) withAuthFallback(url string, op func(auth transport.AuthMethod) error) error {
	err := op(nil)
	if err == nil || !isAuthenticationError(err) || !isHTTPURL(url) {
		return err
	}

	if c.tokens == nil {
		return fmt.Errorf("%w: %v", ErrAuthRequired, err)
	}
	token, tokenErr := c.tokens.GetToken()
	if tokenErr != nil {
		return fmt.Errorf("%w: %v", ErrAuthRequired, tokenErr)
	}

	c.logger.Debug("Anonymous access rejected, retrying with stored token", "url", url)
	return op(&http.BasicAuth{
		Username: "token",
		Password: token,
	})
}

func isHTTPURL(url string) bool {
	u := strings.ToLower(url)
	return strings.HasPrefix(u, "https://") || strings.HasPrefix(u, "http://")
}

func isAuthenticationError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, transport.ErrAuthenticationRequired) || errors.Is(err, transport.ErrAuthorizationFailed) {
		return true
	}
	return containsAuthErrorPatterns(err.Error())
}

func containsAuthErrorPatterns(errMsg string) bool {
	errStr := strings.ToLower(errMsg)
	for _, pattern := range []string{
		"authentication required",
		"authorization failed",
		"401",
		"unauthorized",
		"403",
		"forbidden",
	} {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// translateGitError adds operator guidance to common failures. The original
// error stays in the chain.
func translateGitError(op, url string, err error) error {
	if errors.Is(err, ErrAuthRequired) {
		return fmt.Errorf("%s %s: %w (store a token with 'shinkuro token set' or use an SSH URL)", op, url, err)
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case isAuthenticationError(err):
		return fmt.Errorf("%s %s: access denied, check the stored token's permissions: %w", op, url, err)
	case errors.Is(err, transport.ErrRepositoryNotFound) || strings.Contains(errStr, "404") || strings.Contains(errStr, "not found"):
		return fmt.Errorf("%s %s: repository not found: %w", op, url, err)
	case strings.Contains(errStr, "network") || strings.Contains(errStr, "connection") || strings.Contains(errStr, "timeout"):
		return fmt.Errorf("%s %s: network error: %w", op, url, err)
	}
	return fmt.Errorf("%s %s: %w", op, url, err)
}
