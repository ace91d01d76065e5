package variables

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownFormat is returned by New for a syntax name other than
	// "brace" or "dollar".
	ErrUnknownFormat = errors.New("variables: unknown variable format")

	// ErrMissingArgument is wrapped by MissingArgumentError.
	ErrMissingArgument = errors.New("variables: missing argument")
)

// MissingArgumentError names the placeholder that had neither a supplied
// value nor a default. Match with errors.Is(err, ErrMissingArgument) or
// errors.As(err, &missing).
type MissingArgumentError struct {
	Name string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("missing required argument %q", e.Name)
}

func (e *MissingArgumentError) Unwrap() error { return ErrMissingArgument }

var _ error = (*MissingArgumentError)(nil)
