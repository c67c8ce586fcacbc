// Package cli implements the cardgrid command-line interface.
//
// # Commands
//
//   - layout: print the layout metrics and row partition for a width
//   - render: lay out an items report and export the node tree
//   - view: browse a report interactively in the terminal
//   - serve: expose grid views over HTTP
//   - prefetch: download thumbnails into the cache
//   - cache: inspect and clear the cache
//   - config: print the effective configuration
//
// Every command reads the TOML configuration from --config (default
// ~/.config/cardgrid/config.toml); flags override file values. --verbose
// switches logging to debug and registers log-backed observability hooks.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cardgrid/pkg/buildinfo"
	"github.com/matzehuels/cardgrid/pkg/cache"
	"github.com/matzehuels/cardgrid/pkg/card"
	"github.com/matzehuels/cardgrid/pkg/config"
	"github.com/matzehuels/cardgrid/pkg/grid"
	"github.com/matzehuels/cardgrid/pkg/prefetch"
)

const appName = "cardgrid"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        config.Config
}

// New creates a CLI logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level. At debug level the grid, cache
// and HTTP hooks report through the logger.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		registerLogHooks(c.Logger)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "cardgrid lays out card usage reports as tiered grids",
		Long:         `cardgrid arranges card usage reports in rows of large, medium and small cards that fit the available width, reflows them on resize and pages through them on demand.`,
		Version:      buildinfo.Current(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default: "+config.DefaultPath()+")")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.prefetchCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())
	registerCompletions(root)

	return root
}

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	c.cfg = cfg
	return nil
}

// gridOptions returns grid options for the loaded configuration with the
// given render options.
func (c *CLI) gridOptions(opts grid.RenderOptions, pf grid.Prefetcher) grid.Options {
	factory := grid.NewCardFactory()
	factory.Thumbnails = c.cfg.Resolver()
	factory.Overrides = c.cfg.Thumbnails.Overrides
	factory.SmallThumbnails = c.cfg.Thumbnails.Small
	return grid.Options{
		Config:     c.cfg.GridConfig(),
		Factory:    factory,
		Prefetcher: pf,
		Render:     opts,
		Logger:     c.Logger,
	}
}

// renderFlags are the flags shared by commands that lay out a report.
type renderFlags struct {
	width     float64
	mode      string
	showPrice bool
}

// register adds the flags to cmd. A non-positive defaultWidth leaves out
// --width.
func (f *renderFlags) register(cmd *cobra.Command, defaultWidth float64) {
	if defaultWidth > 0 {
		cmd.Flags().Float64VarP(&f.width, "width", "w", defaultWidth, "container width in pixels")
	}
	cmd.Flags().StringVarP(&f.mode, "mode", "m", "", "layout mode: auto, standard, compact (default from config)")
	cmd.Flags().BoolVar(&f.showPrice, "price", false, "show price badges")
}

func (c *CLI) renderOptions(cmd *cobra.Command, f renderFlags) (grid.RenderOptions, error) {
	opts := c.cfg.RenderOptions()
	if f.mode != "" {
		mode, err := grid.ParseLayoutMode(f.mode)
		if err != nil {
			return opts, err
		}
		opts.LayoutMode = mode
	}
	if cmd.Flags().Changed("price") {
		opts.ShowPrice = f.showPrice
	}
	return opts, nil
}

func loadItems(path string) ([]card.Item, error) {
	report, err := card.LoadReport(path)
	if err != nil {
		return nil, err
	}
	return report.Items, nil
}

// openCache opens the configured cache, or the null cache when noCache is set.
func (c *CLI) openCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cc, err := c.cfg.OpenCache(ctx)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return cc, nil
}

// newPrefetcher builds a thumbnail prefetcher on cc logging to logger.
func (c *CLI) newPrefetcher(cc cache.Cache, logger *log.Logger) *prefetch.Prefetcher {
	opts := c.cfg.PrefetchOptions()
	opts.Logger = logger
	return prefetch.New(c.cfg.Resolver(), cc, opts)
}
