package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/cardgrid/pkg/card"
	"github.com/matzehuels/cardgrid/pkg/errors"
	"github.com/matzehuels/cardgrid/pkg/grid"
	"github.com/matzehuels/cardgrid/pkg/schedule"
	"github.com/matzehuels/cardgrid/pkg/surface"
	"github.com/matzehuels/cardgrid/pkg/viewstate"
)

type viewOpts struct {
	flags     renderFlags
	watch     bool
	viewID    string
	save      bool
	pxPerCell float64
	noCache   bool
	logFile   string
}

// viewCommand browses a report in the terminal.
func (c *CLI) viewCommand() *cobra.Command {
	var opts viewOpts

	cmd := &cobra.Command{
		Use:   "view [report]",
		Short: "Browse a report interactively",
		Long: `Browse a card usage report in the terminal.

The terminal width, times --cell-width, is the container width: resizing the
terminal reflows the grid. Arrow keys or hjkl move focus, the load-more key
(m by default) pages in more rows, p toggles prices, t cycles the layout mode
and / filters cards by name.

With --save the pagination depth and render options are stored on exit and
can be restored later with --view-id.`,
		Example: `  cardgrid view report.json
  cardgrid view report.json --watch --save
  cardgrid view report.json --view-id 6f1c...`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ro, err := c.renderOptions(cmd, opts.flags)
			if err != nil {
				return err
			}
			return c.runView(cmd.Context(), args[0], ro, opts)
		},
	}

	opts.flags.register(cmd, 0)
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "reload the report when the file changes")
	cmd.Flags().StringVar(&opts.viewID, "view-id", "", "restore a saved view")
	cmd.Flags().BoolVar(&opts.save, "save", false, "save the view on exit")
	cmd.Flags().Float64Var(&opts.pxPerCell, "cell-width", defaultPxPerCell, "pixels per terminal column")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "do not cache thumbnails")
	cmd.Flags().StringVar(&opts.logFile, "log-file", "", "write logs to this file while the view is open")
	return cmd
}

func (c *CLI) runView(ctx context.Context, path string, ro grid.RenderOptions, opts viewOpts) error {
	items, err := loadItems(path)
	if err != nil {
		return err
	}

	// The alternate screen owns the terminal; logs go to --log-file or nowhere.
	logger := log.New(io.Discard)
	if opts.logFile != "" {
		f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logger = newLogger(f, c.Logger.GetLevel())
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cc, err := c.openCache(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer cc.Close()

	var (
		store viewstate.Store
		snap  *viewstate.Snapshot
	)
	if opts.save || opts.viewID != "" {
		if store, err = c.cfg.OpenStore(ctx, cc); err != nil {
			return err
		}
		defer store.Close()
	}
	if opts.viewID != "" {
		s, err := store.Get(ctx, opts.viewID)
		switch {
		case errors.Is(err, errors.ErrCodeViewNotFound):
			c.Logger.Warn("view not found, starting fresh", "id", opts.viewID)
		case err != nil:
			return err
		default:
			snap = &s
		}
	} else if opts.save {
		opts.viewID = viewstate.NewID()
	}

	pf := c.newPrefetcher(cc, logger)
	var gpf grid.Prefetcher
	if c.cfg.Prefetch.Enabled {
		gpf = pf
	}

	var p *tea.Program
	gopts := c.gridOptions(ro, gpf)
	gopts.Logger = logger
	gopts.Schedule = []schedule.Option{
		schedule.WithDispatch(func(fn func()) { p.Send(runMsg(fn)) }),
	}
	g := grid.New(surface.New(), gopts)
	defer g.Unmount()

	m := newGridModel(g, items, opts.pxPerCell, c.cfg.GridConfig().LoadMoreKey)
	m.restore = snap
	p = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error { return pf.Run(egCtx) })
	if opts.watch {
		eg.Go(func() error {
			return card.Watch(egCtx, path, card.WatchOptions{Logger: logger}, func(r *card.Report) {
				p.Send(itemsMsg(r.Items))
			})
		})
	}

	_, runErr := p.Run()
	cancel()
	if err := eg.Wait(); err != nil {
		c.Logger.Warn("background task failed", "error", err)
	}
	if runErr != nil {
		return fmt.Errorf("run view: %w", runErr)
	}

	if store == nil {
		return nil
	}
	// ctx is cancelled by now.
	if err := store.Save(context.Background(), viewstate.Capture(opts.viewID, g)); err != nil {
		return err
	}
	printSuccess("Saved view %s", opts.viewID)
	printNextStep("Restore it", fmt.Sprintf("%s view %s --view-id %s", appName, path, opts.viewID))
	return nil
}
