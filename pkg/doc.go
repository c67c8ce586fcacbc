// Package pkg provides the core libraries of cardgrid.
//
// # Overview
//
// cardgrid lays out card usage reports as rows of large, medium and small
// cards that fit a container width. It keeps a node tree in sync with the
// item list, reusing nodes by identity, reflows rows when the width changes
// and pages in more rows on demand.
//
// The typical data flow:
//
//	items report (JSON)
//	     ↓
//	[card] package (decode items, identity keys)
//	     ↓
//	[grid/layout] + [grid/rows] (metrics and row partition for a width)
//	     ↓
//	[grid] package (reconcile, paginate, resize, navigate)
//	     ↓
//	[surface] tree → terminal, HTTP JSON, DOT/SVG
//
// # Quick Start
//
//	report, err := card.LoadReport("report.json")
//	if err != nil {
//	    return err
//	}
//	tree := surface.New()
//	g := grid.New(tree, grid.Options{})
//	defer g.Unmount()
//
//	g.Render(report.Items, 1000)
//	g.LoadMore()
//	g.Resize(720)
//
// # Main Packages
//
// ## Layout
//
// [grid/layout] - Pure layout metrics: base card width, cards per row and
// tier scales for a container width, with a compact algorithm for narrow
// containers and a single-column fallback.
//
// [grid/rows] - Splits an item count into tiered rows and exposes the
// grouping tuple used to decide whether a resize can restyle rows in place.
//
// ## Reconciliation
//
// [surface] - The node tree the engine mutates, with a JSON snapshot.
//
// [grid] - The reconciliation engine, paginator, resize coordinator and
// keyboard navigation, tied together by [grid.Grid].
//
// [schedule] - Trailing-edge throttle, frame coalescer and debouncer with
// injectable clocks and event-loop dispatch.
//
// ## Collaborators
//
// [card] - Card items, report decoding and file watching.
//
// [present] - Thumbnail resolution, price labels and card links.
//
// [prefetch] - Rate-limited background thumbnail downloads.
//
// ## Infrastructure
//
// [cache] - Cache interface with file, Redis and null backends.
//
// [viewstate] - Persisted pagination depth, width and render options, backed
// by the cache or MongoDB.
//
// [server] - HTTP API exposing grid views.
//
// [render] - DOT, SVG, PNG and PDF export of the node tree.
//
// [config] - TOML configuration.
//
// [errors] - Coded errors and validation helpers.
//
// [observability] - Hooks for grid, cache and HTTP events.
//
// [card]: github.com/matzehuels/cardgrid/pkg/card
// [grid]: github.com/matzehuels/cardgrid/pkg/grid
// [grid/layout]: github.com/matzehuels/cardgrid/pkg/grid/layout
// [grid/rows]: github.com/matzehuels/cardgrid/pkg/grid/rows
// [surface]: github.com/matzehuels/cardgrid/pkg/surface
// [schedule]: github.com/matzehuels/cardgrid/pkg/schedule
// [present]: github.com/matzehuels/cardgrid/pkg/present
// [prefetch]: github.com/matzehuels/cardgrid/pkg/prefetch
// [cache]: github.com/matzehuels/cardgrid/pkg/cache
// [viewstate]: github.com/matzehuels/cardgrid/pkg/viewstate
// [server]: github.com/matzehuels/cardgrid/pkg/server
// [render]: github.com/matzehuels/cardgrid/pkg/render
// [config]: github.com/matzehuels/cardgrid/pkg/config
// [errors]: github.com/matzehuels/cardgrid/pkg/errors
// [observability]: github.com/matzehuels/cardgrid/pkg/observability
// [grid.Grid]: github.com/matzehuels/cardgrid/pkg/grid#Grid
package pkg
