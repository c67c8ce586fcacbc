package cli

import (
	"github.com/spf13/cobra"
)

// prefetchCommand downloads the thumbnails of a report into the cache.
func (c *CLI) prefetchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prefetch [report]",
		Short: "Download thumbnails into the cache",
		Long: `Download the thumbnail of every card in a report into the configured cache,
so later views and the HTTP server render without waiting on the network.

Requests are rate limited and retried according to the [prefetch] section of
the configuration. Thumbnails already in the cache are skipped.`,
		Example: `  cardgrid prefetch report.json`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			items, err := loadItems(args[0])
			if err != nil {
				return err
			}

			cc, err := c.openCache(ctx, false)
			if err != nil {
				return err
			}
			defer cc.Close()

			pf := c.newPrefetcher(cc, c.Logger)
			total := len(pf.URLs(items))
			if total == 0 {
				printInfo("No thumbnails to fetch")
				return nil
			}

			prog := newProgress(c.Logger)
			spin := startSpinner(ctx, "Prefetching", total)
			st, err := pf.Warm(ctx, items, spin.Progress)
			if err != nil {
				spin.Fail("Prefetch cancelled")
				return err
			}
			spin.Succeed("Prefetched %d thumbnails", total)
			printPrefetchStats(st)
			if st.Failed > 0 {
				printWarning("%d thumbnails failed; run with --verbose for details", st.Failed)
			}
			prog.done("prefetch finished", "fetched", st.Fetched, "cached", st.Cached, "failed", st.Failed)
			return nil
		},
	}
}
