package repository

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/config"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/stretchr/testify/require"
)

// fakeGitClient creates real local repositories instead of talking to a
// remote, and counts calls.
type fakeGitClient struct {
	t       *testing.T
	files   map[string]string
	clones  int
	updates int

	cloneErr  error
	updateErr error
	// partial leaves a half-written directory behind on cloneErr
	partial bool
}

func newFakeGitClient(t *testing.T, files map[string]string) *fakeGitClient {
	return &fakeGitClient{t: t, files: files}
}

func (f *fakeGitClient) Clone(url, dest string) error {
	f.clones++
	if f.cloneErr != nil {
		if f.partial {
			_ = os.MkdirAll(filepath.Join(dest, ".git"), 0o755)
		}
		return f.cloneErr
	}
	initRepo(f.t, dest, url, f.files)
	return nil
}

func (f *fakeGitClient) Update(dest string) error {
	f.updates++
	return f.updateErr
}

var errFakeNetwork = errors.New("connection refused")

// initRepo creates a working tree at dir with one commit and an origin
// remote pointing at url.
func initRepo(t *testing.T, dir, url string, files map[string]string) (*git.Repository, plumbing.Hash) {
	t.Helper()

	require.NoError(t, os.MkdirAll(dir, 0o755))
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	if len(files) == 0 {
		files = map[string]string{"README.md": "prompts"}
	}
	hash := commitFiles(t, repo, dir, files, "Initial commit")

	_, err = repo.CreateRemote(&config.RemoteConfig{
		Name: "origin",
		URLs: []string{url},
	})
	require.NoError(t, err)

	return repo, hash
}

func commitFiles(t *testing.T, repo *git.Repository, dir string, files map[string]string, msg string) plumbing.Hash {
	t.Helper()

	worktree, err := repo.Worktree()
	require.NoError(t, err)

	for rel, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
		_, err := worktree.Add(rel)
		require.NoError(t, err)
	}

	hash, err := worktree.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Test User",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err)
	return hash
}
