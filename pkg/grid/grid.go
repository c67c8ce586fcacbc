// Package grid lays out card items in tiered rows and keeps a node tree in
// sync with them.
//
// The pieces are usable on their own:
//
//   - [Engine] reconciles an item list against a [surface.Tree], reusing
//     nodes by identity key.
//   - [Paginator] appends rows without touching the ones already shown.
//   - [Coordinator] applies container width changes, restyling rows in place
//     when the grouping of items into rows is unchanged.
//   - [Navigator] and [Move] handle keyboard focus.
//
// [Grid] ties them to one [State] and one tree, throttles resizes and
// coalesces data updates. A Grid whose tree is nil (never mounted, or
// unmounted) ignores every call.
package grid

import (
	"io"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cardgrid/pkg/card"
	"github.com/matzehuels/cardgrid/pkg/schedule"
	"github.com/matzehuels/cardgrid/pkg/surface"
)

// Options configures a Grid.
type Options struct {
	Config     Config
	Factory    NodeFactory
	Prefetcher Prefetcher
	Render     RenderOptions
	Logger     *log.Logger

	// Schedule is passed to the grid's schedulers (clock, dispatch).
	Schedule []schedule.Option
}

// Grid is a mounted card grid.
type Grid struct {
	mu sync.Mutex

	cfg    Config
	tree   *surface.Tree
	state  State
	items  []card.Item
	logger *log.Logger

	engine *Engine
	pager  *Paginator
	resize *Coordinator
	nav    Navigator

	updates *schedule.Coalescer
	settle  *schedule.Coalescer
}

// New mounts a grid on tree. A zero Options.Config means DefaultConfig.
func New(tree *surface.Tree, opts Options) *Grid {
	cfg := opts.Config
	if cfg.InitialVisibleRows == 0 {
		cfg = DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	factory := opts.Factory
	if factory == nil {
		factory = NewCardFactory()
	}
	render := opts.Render
	if render.LayoutMode == "" {
		render.LayoutMode = ModeAuto
	}

	engine := &Engine{Factory: factory, Prefetcher: opts.Prefetcher, Logger: logger}
	return &Grid{
		cfg:     cfg,
		tree:    tree,
		state:   State{VisibleRowsLimit: cfg.InitialVisibleRows, Render: render},
		logger:  logger,
		engine:  engine,
		pager:   &Paginator{Engine: engine, RowsPerLoad: cfg.RowsPerLoad},
		resize:  NewCoordinator(cfg, engine, opts.Schedule...),
		nav:     Navigator{LoadMoreKey: cfg.LoadMoreKey},
		updates: schedule.NewCoalescer(schedule.FrameInterval, opts.Schedule...),
		settle:  schedule.NewCoalescer(cfg.EnterTransition, opts.Schedule...),
	}
}

// Tree returns the mounted tree, nil after Unmount.
func (g *Grid) Tree() *surface.Tree {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.tree
}

// State returns a copy of the grid state.
func (g *Grid) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Summary returns the row and card counts for summary text.
func (g *Grid) Summary() Summary {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.Summary()
}

// Inspect calls fn with the tree and state while holding the grid lock, so
// scheduled callbacks cannot mutate the tree underneath it. fn must not call
// back into g. The tree is nil after Unmount.
func (g *Grid) Inspect(fn func(tree *surface.Tree, st State)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(g.tree, g.state)
}

// Items returns the items of the last render.
func (g *Grid) Items() []card.Item {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.items)
}

// Render lays out items at width. A width without room for a card renders
// the single-column fallback.
func (g *Grid) Render(items []card.Item, width float64) RenderResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.renderLocked(items, width)
}

func (g *Grid) renderLocked(items []card.Item, width float64) RenderResult {
	if g.tree == nil {
		return RenderResult{}
	}
	limit := g.state.VisibleRowsLimit
	opts := g.state.Render
	if limit < 1 {
		limit = g.cfg.InitialVisibleRows
	}

	p := g.cfg.Partitioner(width, opts.LayoutMode)
	res := g.engine.Render(g.tree, items, p, limit, opts)

	g.items = slices.Clone(items)
	g.state.commitLayout(width, p)
	g.state.TotalRows = res.TotalRows
	g.state.TotalCards = len(items)
	if len(items) == 0 {
		g.state.VisibleRowsLimit = g.cfg.InitialVisibleRows
	} else {
		g.state.VisibleRowsLimit = limit
	}

	if res.Created > 0 {
		g.settle.Schedule(g.clearEntering)
	}
	return res
}

func (g *Grid) clearEntering() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.tree != nil {
		g.tree.ClearEntering()
	}
}

// Update re-renders with items at the last width on the next frame.
// Updates requested before the frame collapse into the latest one.
func (g *Grid) Update(items []card.Item) {
	items = slices.Clone(items)
	g.updates.Schedule(func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		g.renderLocked(items, g.state.LastContainerWidth)
	})
}

// Resize requests a relayout at width. It reports whether the request was
// accepted; changes within the noise floor and unusable widths are dropped.
// Accepted requests are throttled and the final width of a burst always
// gets applied.
func (g *Grid) Resize(width float64) bool {
	g.mu.Lock()
	if g.tree == nil || !g.resize.Accept(&g.state, width) {
		g.mu.Unlock()
		return false
	}
	g.mu.Unlock()

	g.resize.Schedule(func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		g.relayoutLocked(width)
	})
	return true
}

// Relayout applies width immediately.
func (g *Grid) Relayout(width float64) RelayoutResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.relayoutLocked(width)
}

func (g *Grid) relayoutLocked(width float64) RelayoutResult {
	if g.tree == nil {
		return RelayoutResult{}
	}
	return g.resize.Relayout(g.tree, &g.state, g.items, width)
}

// LoadMore materializes the next batch of rows.
func (g *Grid) LoadMore() ExpandResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pager.Next(g.tree, &g.state, g.items)
}

// Expand materializes rows up to target.
func (g *Grid) Expand(target int) ExpandResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pager.Expand(g.tree, &g.state, g.items, target)
}

// Key handles a key press and returns the action taken.
func (g *Grid) Key(key string, inTextInput bool) Action {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.tree == nil {
		return Action{}
	}
	a := g.nav.HandleKey(key, inTextInput)
	switch a.Kind {
	case ActionMove:
		Move(g.tree, a.Dir)
	case ActionLoadMore:
		g.pager.Next(g.tree, &g.state, g.items)
	}
	return a
}

// Focused returns the focused card.
func (g *Grid) Focused() *surface.Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.tree == nil {
		return nil
	}
	return g.tree.Focused()
}

// SetRenderOptions changes the layout mode or price display and re-renders
// the current items.
func (g *Grid) SetRenderOptions(opts RenderOptions) RenderResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	if opts.LayoutMode == "" {
		opts.LayoutMode = ModeAuto
	}
	g.state.Render = opts
	if g.state.CachedMetrics == nil {
		return RenderResult{}
	}
	return g.renderLocked(g.items, g.state.LastContainerWidth)
}

// Restore applies persisted pagination depth and render options, then
// renders items at width.
func (g *Grid) Restore(items []card.Item, width float64, visibleRows int, opts RenderOptions) RenderResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	if opts.LayoutMode == "" {
		opts.LayoutMode = ModeAuto
	}
	g.state.Render = opts
	if visibleRows > 0 {
		g.state.VisibleRowsLimit = visibleRows
	}
	return g.renderLocked(items, width)
}

// Flush runs every pending scheduled call now: updates, then resizes, then
// the entering-flag settle.
func (g *Grid) Flush() {
	g.updates.Flush()
	g.resize.Flush()
	g.settle.Flush()
}

// Unmount detaches the tree and stops the schedulers. Pending calls are
// dropped and later calls are ignored.
func (g *Grid) Unmount() {
	g.updates.Stop()
	g.resize.Stop()
	g.settle.Stop()

	g.mu.Lock()
	defer g.mu.Unlock()
	g.tree = nil
	g.items = nil
	g.state = State{Render: g.state.Render}
}
