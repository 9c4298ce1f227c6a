// Package cli implements the stratum command-line interface.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stratum/pkg/buildinfo"
	"github.com/matzehuels/stratum/pkg/cache"
	"github.com/matzehuels/stratum/pkg/config"
	"github.com/matzehuels/stratum/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "stratum"

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

	// Config is loaded before any command runs.
	Config config.Config

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Stratum levels and scores problem networks",
		Long: `Stratum analyses a network of problems and their influence links.

It partitions problems into hierarchy levels (ISM), scores how much each
problem drives or depends on the rest (MICMAC), routes every problem by its
impact and uncertainty ratings, and publishes the results as tables.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: stratum.toml or stratum.yaml in the working directory)")

	root.AddCommand(c.analyzeCommand())
	root.AddCommand(c.ismCommand())
	root.AddCommand(c.micmacCommand())
	root.AddCommand(c.triageCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.publishCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads --config, or a discovered config file, over the
// defaults and the environment.
func (c *CLI) loadConfig() error {
	path := c.configPath
	if path == "" {
		path = config.Discover(".")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if path != "" {
		c.Logger.Debug("loaded config", "path", path)
	}
	c.Config = cfg
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner over the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.openCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if p := c.Config.Cache.Project; p != "" {
		keyer = cache.NewScopedKeyer(nil, "project:"+p+":")
	}
	r := pipeline.NewRunner(cc, keyer, c.Logger)
	if ttl, err := c.Config.CacheTTL(); err == nil {
		r.TTL = ttl
	}
	return r, nil
}

// openCache opens the configured backend. An unusable file cache degrades to
// no cache; an unreachable Redis is an error.
func (c *CLI) openCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	backend := c.Config.Cache.Backend
	if noCache {
		backend = cache.BackendNone
	}
	cc, err := cache.Open(ctx, cache.Options{
		Backend:   backend,
		Dir:       c.Config.Cache.Dir,
		RedisAddr: c.Config.Cache.RedisAddr,
		Prefix:    appName + ":",
	})
	if err != nil {
		if backend == cache.BackendFile || backend == "" {
			c.Logger.Warn("cache disabled", "error", err)
			return cache.NewNullCache(), nil
		}
		return nil, err
	}
	return cc, nil
}

// pipelineOptions builds run options from the config.
func (c *CLI) pipelineOptions(refresh bool) pipeline.Options {
	return pipeline.Options{
		Mode:       c.Config.Analysis.Mode,
		Thresholds: c.Config.Triage,
		TopDrivers: c.Config.Output.TopDrivers,
		Refresh:    refresh,
		Logger:     c.Logger,
	}
}
