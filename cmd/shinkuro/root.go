package main

import (
	"fmt"
	"io"
	"runtime/debug"
	"time"

	"shinkuro/internal/config"
	"shinkuro/internal/filemanager"
	"shinkuro/internal/logging"
	"shinkuro/internal/mcp"
	"shinkuro/internal/prompts"
	"shinkuro/internal/repository"
	"shinkuro/internal/variables"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"
)

// version is set with -ldflags "-X main.version=..." at release time.
var version = ""

func buildVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shinkuro",
		Short: "Serve markdown prompts over MCP stdio",
		Long: `shinkuro serves markdown files as MCP prompts.

Prompts come from --folder, or from --git-url (cloned into --cache-dir,
with --folder naming a subfolder of the repository). Every flag can also be
set through the environment, e.g. GIT_URL or VARIABLE_FORMAT.`,
		Version:       buildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := config.NewViper(cmd.Flags())
			if err != nil {
				return err
			}
			settings, err := config.Load(v)
			if err != nil {
				return err
			}
			return serve(settings, cmd.InOrStdin(), cmd.OutOrStdout(), logging.GetDefault())
		},
	}

	config.RegisterFlags(cmd.Flags())
	cmd.AddCommand(newTokenCmd())
	return cmd
}

// serve builds the catalog and runs the protocol loop on in/out.
func serve(settings config.Settings, in io.Reader, out io.Writer, logger *logging.AppLogger) error {
	catalog, err := loadCatalog(settings, logger)
	if err != nil {
		return err
	}

	server := mcp.NewServer(catalog, mcpgo.Implementation{
		Name:    config.AppName,
		Version: buildVersion(),
	}, logger)
	return server.Serve(in, out)
}

// loadCatalog resolves the source and parses every prompt below it.
func loadCatalog(settings config.Settings, logger *logging.AppLogger) (*prompts.Catalog, error) {
	start := time.Now()
	defer logger.LogPerformance("startup", start)

	spec := settings.Source()

	var cache *repository.Cache
	if spec.IsRemote() {
		client := repository.NewGoGitClient(repository.NewCredentialManager(), logger)
		c, err := repository.NewCache(settings.CacheDir, client, settings.AutoPull, logger)
		if err != nil {
			return nil, &config.ConfigError{Key: config.KeyCacheDir, Err: err}
		}
		cache = c
	}

	root, info, err := repository.Resolve(spec, cache, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("Prompt source ready",
		"path", root,
		"status", info.Message,
		"cloned", info.Cloned,
		"updated", info.Updated,
		"recloned", info.Recloned,
	)

	fm, err := filemanager.NewFileManager(root, 0, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open prompt directory: %w", err)
	}

	formatter, err := variables.New(settings.VariableFormat)
	if err != nil {
		return nil, &config.ConfigError{Key: config.KeyVariableFormat, Err: err}
	}

	return prompts.Build(fm, formatter, prompts.Options{
		SkipFrontmatter:      settings.SkipFrontmatter,
		AutoDiscoverArgs:     settings.AutoDiscoverArgs,
		AutoDiscoverRequired: settings.AutoDiscoverRequired,
	}, logger)
}
