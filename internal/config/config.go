// Package config loads runtime settings from command line flags, the
// environment and an optional YAML file, in that order of precedence.
//
// Environment variables use the flag name upper-cased with dashes replaced
// by underscores (--git-url becomes GIT_URL). The config file lives at
// $XDG_CONFIG_HOME/shinkuro/config.yaml unless --config or SHINKURO_CONFIG
// names another one, and uses the flag names as keys.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"shinkuro/internal/logging"
	"shinkuro/internal/repository"
	"shinkuro/internal/variables"

	"github.com/adrg/xdg"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const AppName = "shinkuro" // application name used for config and cache directories

// Setting keys, shared by flags, environment and config file.
const (
	KeyFolder               = "folder"
	KeyGitURL               = "git-url"
	KeyCacheDir             = "cache-dir"
	KeyAutoPull             = "auto-pull"
	KeyVariableFormat       = "variable-format"
	KeyAutoDiscoverArgs     = "auto-discover-args"
	KeyAutoDiscoverRequired = "auto-discover-required"
	KeySkipFrontmatter      = "skip-frontmatter"
	KeyConfig               = "config"
)

// Settings is the resolved configuration for one run.
type Settings struct {
	Folder   string
	GitURL   string
	CacheDir string
	AutoPull bool

	VariableFormat       string
	AutoDiscoverArgs     bool
	AutoDiscoverRequired bool
	SkipFrontmatter      bool
}

// ConfigPath returns the default config file location.
func ConfigPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// DefaultCacheDir returns the default directory for cached git checkouts.
func DefaultCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName, "remote")
}

// RegisterFlags defines the command line flags on flags.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String(KeyFolder, "", "prompt folder, or a subfolder of the repository when --git-url is set")
	flags.String(KeyGitURL, "", "git repository to serve prompts from")
	flags.String(KeyCacheDir, DefaultCacheDir(), "directory for cached git checkouts")
	flags.Bool(KeyAutoPull, false, "fetch and reset the cached checkout on startup")
	flags.String(KeyVariableFormat, string(variables.DefaultFormat), "placeholder syntax: brace or dollar")
	flags.Bool(KeyAutoDiscoverArgs, false, "expose undeclared placeholders as arguments")
	flags.Bool(KeyAutoDiscoverRequired, false, "make auto-discovered arguments required")
	flags.Bool(KeySkipFrontmatter, false, "treat whole files as prompt bodies")
	flags.String(KeyConfig, "", "config file (default "+ConfigPath()+")")
}

// NewViper returns a viper instance with defaults and environment binding.
// flags may be nil.
func NewViper(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv(KeyConfig, "SHINKURO_CONFIG"); err != nil {
		return nil, fmt.Errorf("failed to bind environment: %w", err)
	}

	v.SetDefault(KeyCacheDir, DefaultCacheDir())
	v.SetDefault(KeyVariableFormat, string(variables.DefaultFormat))

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}
	return v, nil
}

// Load reads the config file (if any) into v and returns validated
// settings. An explicitly named file must exist; the default one is
// optional.
func Load(v *viper.Viper) (Settings, error) {
	path := v.GetString(KeyConfig)
	explicit := path != ""
	if !explicit {
		path = ConfigPath()
	}

	if err := readConfigFile(v, path, explicit); err != nil {
		return Settings{}, err
	}

	s := Settings{
		Folder:               strings.TrimSpace(v.GetString(KeyFolder)),
		GitURL:               strings.TrimSpace(v.GetString(KeyGitURL)),
		CacheDir:             strings.TrimSpace(v.GetString(KeyCacheDir)),
		AutoPull:             v.GetBool(KeyAutoPull),
		VariableFormat:       strings.TrimSpace(v.GetString(KeyVariableFormat)),
		AutoDiscoverArgs:     v.GetBool(KeyAutoDiscoverArgs),
		AutoDiscoverRequired: v.GetBool(KeyAutoDiscoverRequired),
		SkipFrontmatter:      v.GetBool(KeySkipFrontmatter),
	}
	if s.CacheDir == "" {
		s.CacheDir = DefaultCacheDir()
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}

	logging.Debug("Configuration loaded",
		"folder", s.Folder,
		"git_url", s.GitURL,
		"cache_dir", s.CacheDir,
		"variable_format", s.VariableFormat)
	return s, nil
}

func readConfigFile(v *viper.Viper, path string, explicit bool) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return nil
		}
		return &ConfigError{Key: KeyConfig, Err: err}
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return &ConfigError{Key: KeyConfig, Err: fmt.Errorf("failed to parse %s: %w", path, err)}
	}
	logging.Debug("Config file read", "path", path)
	return nil
}

// Validate checks that a source is set and the variable format is known.
func (s Settings) Validate() error {
	if s.Source().IsEmpty() {
		return &ConfigError{Err: ErrNoSource}
	}
	if _, err := variables.ParseFormat(s.VariableFormat); err != nil {
		return &ConfigError{Key: KeyVariableFormat, Err: err}
	}
	return nil
}

// Source returns the prompt source described by the settings.
func (s Settings) Source() repository.SourceSpec {
	return repository.SourceSpec{Folder: s.Folder, GitURL: s.GitURL}
}
