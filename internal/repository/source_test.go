package repository

import (
	"os"
	"path/filepath"
	"testing"

	"shinkuro/internal/logging"
	"shinkuro/pkg/fileops"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalSource_RelativePath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "prompts"), 0o755))
	t.Chdir(dir)

	logger, _ := logging.NewTestLogger()
	got, info, err := NewLocalSource("prompts").Prepare(logger)
	require.NoError(t, err)

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "prompts"), got)
	assert.False(t, info.Cloned)
}

func TestLocalSource_Missing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")

	_, _, err := NewLocalSource(missing).Prepare(nil)
	assert.ErrorIs(t, err, ErrSourceNotFound)

	var serr *SourceError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, missing, serr.Source)
}

func TestLocalSource_File(t *testing.T) {
	file := filepath.Join(t.TempDir(), "prompt.md")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	_, _, err := NewLocalSource(file).Prepare(nil)
	assert.ErrorIs(t, err, ErrSourceNotFound)
}

func TestGitSource_Subfolder(t *testing.T) {
	client := newFakeGitClient(t, map[string]string{
		"prompts/think.md": "Think.",
		"README.md":        "readme",
	})
	cache, _ := newTestCache(t, client, false)
	logger, _ := logging.NewTestLogger()

	root, _, err := NewGitSource(testURL, "prompts", cache).Prepare(logger)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(root, "think.md"))

	checkout, _, err := NewGitSource(testURL, "", cache).Prepare(logger)
	require.NoError(t, err)
	assert.Equal(t, filepath.Dir(root), checkout)
	assert.Equal(t, 1, client.clones)
}

func TestGitSource_SubfolderErrors(t *testing.T) {
	client := newFakeGitClient(t, nil)
	cache, _ := newTestCache(t, client, false)

	_, _, err := NewGitSource(testURL, "../escape", cache).Prepare(nil)
	assert.ErrorIs(t, err, fileops.ErrOutsideBase)

	_, _, err = NewGitSource(testURL, "missing", cache).Prepare(nil)
	assert.ErrorIs(t, err, ErrSourceNotFound)

	_, _, err = NewGitSource(testURL, "/abs", cache).Prepare(nil)
	var serr *SourceError
	assert.ErrorAs(t, err, &serr)
}

func TestNewSource(t *testing.T) {
	client := newFakeGitClient(t, nil)
	cache, _ := newTestCache(t, client, false)

	src, err := NewSource(SourceSpec{Folder: "/tmp/prompts"}, cache)
	require.NoError(t, err)
	assert.IsType(t, LocalSource{}, src)

	src, err = NewSource(SourceSpec{Folder: "sub", GitURL: testURL}, cache)
	require.NoError(t, err)
	gs, ok := src.(GitSource)
	require.True(t, ok)
	assert.Equal(t, "sub", gs.Subfolder)

	_, err = NewSource(SourceSpec{}, cache)
	assert.Error(t, err)
}

func TestResolve_Git(t *testing.T) {
	client := newFakeGitClient(t, map[string]string{"commit.md": "Commit."})
	cache, _ := newTestCache(t, client, false)

	first, info, err := Resolve(SourceSpec{GitURL: testURL}, cache, nil)
	require.NoError(t, err)
	assert.True(t, info.Cloned)
	assert.Equal(t, "Repository cloned", info.Message)

	second, info, err := Resolve(SourceSpec{GitURL: testURL}, cache, nil)
	require.NoError(t, err)
	assert.False(t, info.Cloned)
	assert.False(t, info.Updated)
	assert.Equal(t, "Using cached repository", info.Message)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, client.clones)
}

func TestSourceSpec(t *testing.T) {
	assert.True(t, SourceSpec{}.IsEmpty())
	assert.False(t, SourceSpec{Folder: "x"}.IsEmpty())
	assert.True(t, SourceSpec{GitURL: "u"}.IsRemote())
	assert.False(t, SourceSpec{GitURL: "  "}.IsRemote())
}
