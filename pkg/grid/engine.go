package grid

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cardgrid/pkg/card"
	"github.com/matzehuels/cardgrid/pkg/grid/rows"
	"github.com/matzehuels/cardgrid/pkg/observability"
	"github.com/matzehuels/cardgrid/pkg/surface"
)

// Prefetcher warms auxiliary visuals for items about to be shown.
// Prefetch must return without waiting for any work.
type Prefetcher interface {
	Prefetch(items []card.Item)
}

// PlaceholderLabel is shown when there is nothing to lay out.
const PlaceholderLabel = "No cards match the current filters."

// Engine reconciles an item list against a tree.
type Engine struct {
	Factory    NodeFactory
	Prefetcher Prefetcher
	Logger     *log.Logger
}

// NewEngine returns an engine with the default card factory.
func NewEngine() *Engine {
	return &Engine{Factory: NewCardFactory(), Logger: log.New(io.Discard)}
}

// RenderResult describes a reconciliation pass.
type RenderResult struct {
	// TotalRows is the row count of the whole item set.
	TotalRows int `json:"total_rows"`

	// Rows is the number of rows materialized.
	Rows int `json:"rows"`

	Created  int `json:"created"`
	Replaced int `json:"replaced"`
}

// Render brings tree in line with items, materializing at most limit rows.
// Cards are matched to existing nodes by identity key and updated in place;
// a row's children are only replaced when its ordered cards differ.
func (e *Engine) Render(tree *surface.Tree, items []card.Item, p rows.Partitioner, limit int, opts RenderOptions) RenderResult {
	if tree == nil {
		return RenderResult{}
	}
	start := time.Now()
	before := tree.Stats()

	var res RenderResult
	if len(items) == 0 {
		e.renderEmpty(tree)
	} else {
		res = e.renderItems(tree, items, p, max(1, limit), opts)
	}

	after := tree.Stats()
	res.Created = after.Created - before.Created
	res.Replaced = after.Replaced - before.Replaced
	observability.Grid().OnRender(len(items), res.Rows, res.Created, res.Replaced, time.Since(start))
	e.logger().Debug("render", "items", len(items), "rows", res.Rows, "total_rows", res.TotalRows,
		"created", res.Created, "replaced", res.Replaced)
	return res
}

func (e *Engine) renderEmpty(tree *surface.Tree) {
	root := tree.Root()
	ph := tree.Find(surface.KindPlaceholder)
	if ph == nil {
		ph = tree.NewNode(surface.KindPlaceholder, "")
	}
	ph.Label = PlaceholderLabel
	if root.ChildCount() != 1 || root.Child(0) != ph {
		tree.ReplaceChildren(root, []*surface.Node{ph})
	}
}

func (e *Engine) renderItems(tree *surface.Tree, items []card.Item, p rows.Partitioner, limit int, opts RenderOptions) RenderResult {
	root := tree.Root()
	if ph := tree.Find(surface.KindPlaceholder); ph != nil {
		tree.Remove(ph)
	}

	// Identity map over the previous visible set. Nodes sharing a key are
	// handed out in their previous order, each at most once.
	prev := tree.Cards()
	byKey := make(map[string][]*surface.Node, len(prev))
	for _, n := range prev {
		byKey[n.Key] = append(byKey[n.Key], n)
	}
	visible := make(map[string]bool, len(byKey))
	for k := range byKey {
		visible[k] = true
	}

	all := p.Partition(len(items))
	materialized := all[:min(limit, len(all))]
	existing := tree.Rows()
	more := tree.Find(surface.KindLoadMore)

	var shown []card.Item
	for _, r := range materialized {
		var row *surface.Node
		if r.Index < len(existing) {
			row = existing[r.Index]
		} else {
			row = tree.NewNode(surface.KindRow, "")
			tree.InsertBefore(root, row, more)
		}
		styleRow(row, p, r)

		end := r.End(len(items))
		next := make([]*surface.Node, 0, end-r.Start)
		for i := r.Start; i < end; i++ {
			item := items[i]
			key := item.Key()
			var n *surface.Node
			if queue := byKey[key]; len(queue) > 0 {
				n, byKey[key] = queue[0], queue[1:]
				e.Factory.Populate(n, item, opts)
				n.Entering = false
			} else {
				n = e.Factory.Create(tree, item, opts)
				n.Entering = !visible[key]
			}
			n.Row, n.Col = r.Index, i-r.Start
			next = append(next, n)
		}
		if !slices.Equal(row.Children(), next) {
			tree.ReplaceChildren(row, next)
		}
		shown = append(shown, items[r.Start:end]...)
	}

	for _, row := range existing[min(len(materialized), len(existing)):] {
		tree.Remove(row)
	}
	syncLoadMore(tree, len(all)-len(materialized))

	if e.Prefetcher != nil && len(shown) > 0 {
		e.Prefetcher.Prefetch(shown)
	}
	return RenderResult{TotalRows: len(all), Rows: len(materialized)}
}

func (e *Engine) logger() *log.Logger {
	if e.Logger == nil {
		return log.New(io.Discard)
	}
	return e.Logger
}

// styleRow writes the row descriptor onto a row node.
func styleRow(row *surface.Node, p rows.Partitioner, r rows.Row) {
	row.Row = r.Index
	row.Style = surface.Style{
		Tier:      r.Tier.String(),
		Capacity:  r.Capacity,
		Scale:     r.Scale,
		Width:     p.Metrics.RowWidth(r.Capacity, r.Scale),
		CardWidth: p.Metrics.CardWidth(r.Scale),
	}
}
