package grid

import (
	"math"
	"slices"
	"time"

	"github.com/matzehuels/cardgrid/pkg/card"
	"github.com/matzehuels/cardgrid/pkg/errors"
	"github.com/matzehuels/cardgrid/pkg/grid/rows"
	"github.com/matzehuels/cardgrid/pkg/observability"
	"github.com/matzehuels/cardgrid/pkg/schedule"
	"github.com/matzehuels/cardgrid/pkg/surface"
)

// Coordinator decides how a grid responds to container width changes.
//
// Coordinator is not safe for concurrent use; [Grid] serializes access.
type Coordinator struct {
	Config Config
	Engine *Engine

	throttle *schedule.Throttle

	// pending is the width of the scheduled but not yet applied relayout.
	pending    float64
	hasPending bool
}

// NewCoordinator returns a coordinator throttling at cfg.ResizeInterval.
func NewCoordinator(cfg Config, engine *Engine, opts ...schedule.Option) *Coordinator {
	return &Coordinator{
		Config:   cfg,
		Engine:   engine,
		throttle: schedule.NewThrottle(cfg.ResizeInterval, opts...),
	}
}

// Accept reports whether a resize to width should trigger a relayout.
// Changes within the noise floor of the last applied or pending width are
// ignored, as are widths that cannot be laid out.
func (c *Coordinator) Accept(state *State, width float64) bool {
	if errors.ValidateWidth(width) != nil || width <= 0 {
		return false
	}
	ref := state.LastContainerWidth
	if c.hasPending {
		ref = c.pending
	}
	if state.CachedMetrics != nil && math.Abs(width-ref) <= c.Config.NoiseFloor {
		return false
	}
	c.pending, c.hasPending = width, true
	return true
}

// Schedule hands the relayout to the throttle. It must be called without
// holding any lock run takes: the first call of a burst runs immediately.
func (c *Coordinator) Schedule(run func()) {
	c.throttle.Schedule(run)
}

// Flush runs a pending throttled relayout now.
func (c *Coordinator) Flush() bool { return c.throttle.Flush() }

// Stop drops a pending relayout.
func (c *Coordinator) Stop() { c.throttle.Stop() }

// RelayoutResult describes a relayout pass.
type RelayoutResult struct {
	// Path is one of observability.PathFast, PathRebuild or PathSkip.
	Path      string `json:"path"`
	Rows      int    `json:"rows"`
	TotalRows int    `json:"total_rows"`

	// Mismatch is set when the structural audit failed.
	Mismatch bool `json:"mismatch,omitempty"`
}

// Relayout applies width to a rendered tree. When the row grouping is
// unchanged and every row holds its expected number of cards only the row
// styles change. Otherwise the materialized cards are redistributed over
// rows of the new sizes, keeping their nodes.
func (c *Coordinator) Relayout(tree *surface.Tree, state *State, items []card.Item, width float64) RelayoutResult {
	c.hasPending = false
	if tree == nil || errors.ValidateWidth(width) != nil || width <= 0 {
		observability.Grid().OnRelayout(width, observability.PathSkip, 0)
		return RelayoutResult{Path: observability.PathSkip}
	}
	start := time.Now()

	prev, hadLayout := state.Partitioner()
	p := c.Config.Partitioner(width, state.Render.LayoutMode)

	var res RelayoutResult
	switch {
	case len(items) == 0:
		res = RelayoutResult{Path: observability.PathFast}
	case hadLayout && prev.Grouping() == p.Grouping():
		if c.audit(tree, p) {
			res = c.restyle(tree, p, len(items))
		} else {
			res = c.rebuild(tree, p, len(items))
			res.Mismatch = true
		}
	default:
		res = c.rebuild(tree, p, len(items))
	}

	state.commitLayout(width, p)
	if res.Path == observability.PathRebuild {
		state.VisibleRowsLimit = max(1, res.Rows)
	}
	if len(items) > 0 {
		state.TotalRows = res.TotalRows
	}

	d := time.Since(start)
	observability.Grid().OnRelayout(width, res.Path, d)
	c.Engine.logger().Debug("relayout", "width", width, "path", res.Path, "rows", res.Rows, "duration", d)
	return res
}

// audit checks that every materialized row but the last is full and the
// last is not over capacity.
func (c *Coordinator) audit(tree *surface.Tree, p rows.Partitioner) bool {
	rs := tree.Rows()
	for i, row := range rs {
		want, got := p.Capacity(i), row.ChildCount()
		if got == want || (i == len(rs)-1 && got > 0 && got < want) {
			continue
		}
		c.Engine.logger().Warn("row audit mismatch, rebuilding", "row", i, "want", want, "got", got)
		observability.Grid().OnAuditMismatch(i, want, got)
		return false
	}
	return true
}

func (c *Coordinator) restyle(tree *surface.Tree, p rows.Partitioner, n int) RelayoutResult {
	rs := tree.Rows()
	start := 0
	for i, row := range rs {
		r := p.Row(i)
		r.Start = start
		styleRow(row, p, r)
		start += r.Capacity
	}
	return RelayoutResult{Path: observability.PathFast, Rows: len(rs), TotalRows: p.TotalRows(n)}
}

func (c *Coordinator) rebuild(tree *surface.Tree, p rows.Partitioner, n int) RelayoutResult {
	root := tree.Root()
	cards := tree.Cards()
	existing := tree.Rows()
	more := tree.Find(surface.KindLoadMore)

	layoutRows := p.Partition(len(cards))
	for _, r := range layoutRows {
		var row *surface.Node
		if r.Index < len(existing) {
			row = existing[r.Index]
		} else {
			row = tree.NewNode(surface.KindRow, "")
			tree.InsertBefore(root, row, more)
		}
		styleRow(row, p, r)

		members := cards[r.Start:r.End(len(cards))]
		for j, n := range members {
			n.Row, n.Col = r.Index, j
		}
		if !slices.Equal(row.Children(), members) {
			tree.ReplaceChildren(row, slices.Clone(members))
		}
	}
	for _, row := range existing[min(len(layoutRows), len(existing)):] {
		tree.Remove(row)
	}

	total := p.TotalRows(n)
	syncLoadMore(tree, remainingRows(tree, p, n))
	return RelayoutResult{Path: observability.PathRebuild, Rows: len(layoutRows), TotalRows: total}
}
