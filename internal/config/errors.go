package config

import (
	"errors"
	"fmt"
)

// ErrNoSource means neither a folder nor a git URL was configured.
var ErrNoSource = errors.New("either --folder or --git-url must be set")

// ConfigError reports an invalid or unreadable setting. Key is empty when
// the problem is not tied to a single setting.
type ConfigError struct {
	Key string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Key, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

var _ error = (*ConfigError)(nil)
