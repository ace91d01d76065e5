package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceNotFound means the resolved prompt directory is missing or
	// not a directory.
	ErrSourceNotFound = errors.New("source directory not found")

	// ErrInvalidGitURL means an owner and repository could not be read from
	// the URL.
	ErrInvalidGitURL = errors.New("invalid git URL")

	// ErrAuthRequired means the remote rejected anonymous access and no
	// usable token is stored.
	ErrAuthRequired = errors.New("authentication required")

	// ErrNoToken is returned by CredentialManager when nothing is stored.
	ErrNoToken = errors.New("no git token stored")
)

// SourceError is a fatal problem preparing the prompt source: a missing
// directory, a failed clone or fetch, or an unusable cache entry.
type SourceError struct {
	Source string // folder path or remote URL
	Op     string // "resolve", "clone", "update"
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s %s: %v", e.Op, e.Source, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

var _ error = (*SourceError)(nil)
