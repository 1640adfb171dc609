package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/rfit/pkg/buildinfo"
	"github.com/matzehuels/rfit/pkg/cache"
	"github.com/matzehuels/rfit/pkg/pipeline"
	"github.com/matzehuels/rfit/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "rfit"

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
	config     *Config
}

// New creates a new CLI instance with a default logger.
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
		Short: "rfit picks buildable envelope assemblies for target R-values",
		Long: `rfit resolves a target assembly R-value into a concrete layered construction.

For every surface it walks the family's ordered catalog of templates, solves
the first one that can reach the target for its single free quantity, builds
the construction and checks that it reproduces the target.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $RFIT_CONFIG or $XDG_CONFIG_HOME/rfit/rfit.toml)")

	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.runCommand())
	root.AddCommand(c.catalogCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.diagramCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file once per process.
func (c *CLI) loadConfig() (*Config, error) {
	if c.config != nil {
		return c.config, nil
	}
	cfg, err := LoadConfig(c.configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Path != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path)
	}
	c.config = cfg
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. Cache keys are scoped to
// the build version so a catalog change never serves stale results.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	ch, err := c.openCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}

	r := pipeline.NewRunner(ch, cache.NewScopedKeyer(nil, buildinfo.Version+":"), c.Logger)
	if cfg.Run.Jobs > 0 {
		r.Concurrency = cfg.Run.Jobs
	}
	r.TTL = cfg.Cache.TTL
	return r, nil
}

func (c *CLI) openCache(ctx context.Context, cfg *Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cc := cfg.Cache.backend()
	if cc.Backend == cache.BackendFile && cc.Dir == "" {
		dir, err := cache.DefaultDir(appName)
		if err != nil {
			c.Logger.Debug("no cache directory, caching disabled", "error", err)
			return cache.NewNullCache(), nil
		}
		cc.Dir = dir
	}
	c.Logger.Debug("opening cache", "backend", cc.Backend, "dir", cc.Dir, "redis", cc.RedisAddr)
	return cache.Open(ctx, cc)
}

// openStore opens the run history database.
func (c *CLI) openStore(ctx context.Context) (*store.Store, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	path, err := cfg.storePath()
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("opening run history", "path", path)
	return store.Open(ctx, path)
}
