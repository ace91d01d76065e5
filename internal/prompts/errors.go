package prompts

import (
	"errors"
	"fmt"
)

var (
	// ErrUnclosedFrontmatter means the opening fence has no closing fence.
	ErrUnclosedFrontmatter = errors.New("frontmatter fence opened but never closed")

	// ErrIndentedFence means a metadata value contains an indented "---"
	// line, which would otherwise end the metadata early.
	ErrIndentedFence = errors.New("indented fence line inside metadata")

	// ErrInvalidArgument covers argument declarations with a missing,
	// malformed or repeated name.
	ErrInvalidArgument = errors.New("invalid argument declaration")

	// ErrPromptNotFound is returned for names absent from the catalog.
	ErrPromptNotFound = errors.New("prompt not found")
)

// ParseError reports a prompt file that cannot be turned into a prompt.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var _ error = (*ParseError)(nil)
