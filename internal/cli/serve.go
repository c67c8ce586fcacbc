package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/cardgrid/pkg/card"
	"github.com/matzehuels/cardgrid/pkg/grid"
	"github.com/matzehuels/cardgrid/pkg/server"
)

type serveOpts struct {
	flags   renderFlags
	addr    string
	watch   bool
	noCache bool
	origins []string
	timeout time.Duration
}

// serveCommand serves grid views of a report over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve [report]",
		Short: "Serve grid views over HTTP",
		Long: `Serve grid views of a report over HTTP.

Clients create a view at a container width and drive it with resize, load-more
and key requests; every response carries the view summary and its node tree.
Views are persisted to the configured store (cache or MongoDB) and restored
after a restart. Cached thumbnails are served from /api/v1/thumbnails.`,
		Example: `  cardgrid serve report.json
  cardgrid serve report.json --addr :9000 --watch --cors-origin http://localhost:5173`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ro, err := c.renderOptions(cmd, opts.flags)
			if err != nil {
				return err
			}
			if opts.addr == "" {
				opts.addr = c.cfg.Server.Addr
			}
			return c.runServe(cmd.Context(), args[0], ro, opts)
		},
	}

	opts.flags.register(cmd, 0)
	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "reload the report when the file changes")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "do not cache thumbnails or views")
	cmd.Flags().StringSliceVar(&opts.origins, "cors-origin", nil, "allowed CORS origin (repeatable)")
	cmd.Flags().DurationVar(&opts.timeout, "request-timeout", 30*time.Second, "per-request timeout")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, path string, ro grid.RenderOptions, opts serveOpts) error {
	items, err := loadItems(path)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cc, err := c.openCache(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer cc.Close()

	// The server closes the store.
	store, err := c.cfg.OpenStore(ctx, cc)
	if err != nil {
		return err
	}

	pf := c.newPrefetcher(cc, c.Logger.WithPrefix("prefetch"))
	gopts := c.gridOptions(ro, nil)
	sopts := server.Options{
		Config:         gopts.Config,
		Render:         ro,
		Factory:        gopts.Factory,
		Store:          store,
		Thumbnails:     pf,
		Logger:         c.Logger.WithPrefix("http"),
		AllowedOrigins: opts.origins,
		RequestTimeout: opts.timeout,
	}
	if c.cfg.Prefetch.Enabled {
		sopts.Prefetcher = pf
	}
	srv := server.New(items, sopts)
	defer srv.Close()

	printKeyValue("Report", fmt.Sprintf("%s (%d cards)", path, len(items)))
	printKeyValue("Listening", StyleHighlight.Render(opts.addr))
	printKeyValue("Store", c.cfg.Store.Backend)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error { return pf.Run(egCtx) })
	if opts.watch {
		eg.Go(func() error {
			return card.Watch(egCtx, path, card.WatchOptions{Logger: c.Logger}, func(r *card.Report) {
				srv.SetItems(r.Items)
			})
		})
	}
	eg.Go(func() error {
		err := srv.ListenAndServe(egCtx, opts.addr)
		stop()
		return err
	})
	return eg.Wait()
}
