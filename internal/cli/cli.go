// Package cli implements the matlayer command-line interface.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/matlayer/pkg/buildinfo"
	"github.com/matzehuels/matlayer/pkg/cache"
	"github.com/matzehuels/matlayer/pkg/config"
	"github.com/matzehuels/matlayer/pkg/material"
	"github.com/matzehuels/matlayer/pkg/project"
	"github.com/matzehuels/matlayer/pkg/templates"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogError = log.ErrorLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string // --config, empty for the default path
	backend    string // --store, overrides the configured backend
	noCache    bool   // --no-cache

	cfg config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), cfg: config.Default()}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Matlayer keeps layer and mask stacks in sync with a material node graph",
		Long:         `Matlayer manages Photoshop-style layer and mask stacks for materials and keeps the generated shader node graph consistent with them: node names, links, and layout follow every add, delete, move, and duplicate.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/matlayer/config.toml)")
	root.PersistentFlags().StringVar(&c.backend, "store", "", "document store: file, memory, redis, mongo")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the render cache")

	// Register all subcommands
	root.AddCommand(c.initCommand())
	root.AddCommand(c.stackCommand(material.TargetLayer))
	root.AddCommand(c.stackCommand(material.TargetMask))
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Shared setup
// =============================================================================

// loadConfig reads the config file and applies flag overrides.
func (c *CLI) loadConfig() error {
	path := c.configPath
	if path == "" {
		p, err := config.Path()
		if err != nil {
			return err
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if c.backend != "" {
		cfg.Store.Backend = c.backend
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	// --verbose wins over the configured level.
	if c.Logger.GetLevel() > LogDebug {
		if level, err := log.ParseLevel(cfg.Logging.Level); err == nil {
			c.Logger.SetLevel(level)
		}
		if !cfg.Logging.Trace && c.Logger.GetLevel() < log.WarnLevel {
			c.Logger.SetLevel(log.WarnLevel)
		}
	}
	c.cfg = cfg
	c.Logger.Debug("config loaded", "path", path, "store", cfg.Store.Backend)
	return nil
}

// openStore opens the configured document store.
func (c *CLI) openStore(ctx context.Context) (project.Store, error) {
	return project.Open(ctx, c.cfg.Store)
}

// newCache opens the file render cache, or a null cache when disabled or
// the cache directory is unavailable.
func (c *CLI) newCache() (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// materialOptions builds the engine options from the config.
func (c *CLI) materialOptions() ([]material.Option, error) {
	lib, err := templates.Default()
	if err != nil {
		return nil, err
	}
	if c.cfg.Templates != "" {
		if err := lib.MergeFile(c.cfg.Templates); err != nil {
			return nil, err
		}
	}
	return []material.Option{
		material.WithLogger(c.Logger),
		material.WithLibrary(lib),
		material.WithLayout(material.Layout{
			MaskPitch:    c.cfg.Layout.MaskPitch,
			MaskWidth:    c.cfg.Layout.MaskWidth,
			LayerWidth:   c.cfg.Layout.LayerWidth,
			LayerSpacing: c.cfg.Layout.LayerSpacing,
		}),
	}, nil
}

// withMaterial loads the named material, runs fn, and saves the material
// when fn succeeds and save is set.
func (c *CLI) withMaterial(ctx context.Context, name string, save bool, fn func(*material.Material) error) error {
	store, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	opts, err := c.materialOptions()
	if err != nil {
		return err
	}
	m, err := project.Load(ctx, store, name, opts...)
	if err != nil {
		return err
	}
	if err := fn(m); err != nil {
		return err
	}
	if !save {
		return nil
	}
	return project.Save(ctx, store, m)
}

// cacheDir returns the render cache directory (~/.cache/matlayer/).
func cacheDir() (string, error) {
	return config.CacheDir()
}
