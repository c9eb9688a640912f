package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/debgems/pkg/buildinfo"
	"github.com/matzehuels/debgems/pkg/cache"
	"github.com/matzehuels/debgems/pkg/config"
	"github.com/matzehuels/debgems/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "debgems"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a new CLI instance logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "debgems reports how much of a Ruby application is packaged in Debian",
		Long: `debgems reads a Gemfile or gemspec, looks up every gem and its transitive
dependencies in the Debian archive, checks the packaged versions against the
declared requirements and writes a status file, a dependency graph and an
optional HTML report.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default: debgems.toml or debgems.yml in the working directory)")

	root.AddCommand(c.checkCommand())
	root.AddCommand(c.statusCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.runsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads the config file and fills in the CLI's default cache
// directory.
func (c *CLI) loadConfig() (*config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	cfg, err := config.Load(c.configPath, wd)
	if err != nil {
		return nil, err
	}
	if path := cfg.Path(); path != "" {
		c.Logger.Debug("loaded config", "path", path)
	}
	if cfg.Cache.Dir == "" {
		if dir, err := cacheDir(); err == nil {
			cfg.Cache.Dir = dir
		}
	}
	return cfg, nil
}

// newRunner opens the configured cache and returns a runner using it. The
// caller closes the cache.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config) (*pipeline.Runner, cache.Cache, error) {
	backend, err := pipeline.OpenCache(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return pipeline.NewRunner(cfg, backend, c.Logger), backend, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/debgems/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
