package grid

import (
	"slices"

	"github.com/matzehuels/cardgrid/pkg/card"
	"github.com/matzehuels/cardgrid/pkg/observability"
	"github.com/matzehuels/cardgrid/pkg/surface"
)

// Paginator grows the materialized rows of a rendered grid.
type Paginator struct {
	Engine      *Engine
	RowsPerLoad int
}

// ExpandResult describes a pagination step.
type ExpandResult struct {
	From  int `json:"from"`
	To    int `json:"to"`
	Total int `json:"total"`
	Added int `json:"added"`
}

// Next materializes RowsPerLoad more rows.
func (pg *Paginator) Next(tree *surface.Tree, state *State, items []card.Item) ExpandResult {
	if tree == nil {
		return ExpandResult{}
	}
	return pg.Expand(tree, state, items, len(tree.Rows())+max(1, pg.RowsPerLoad))
}

// Expand materializes rows up to target, capped at the total row count.
// Existing nodes are kept. A last row left short by a resize rebuild is
// filled first, then new rows continue from the last card on screen. The
// scroll offset is restored after the append.
func (pg *Paginator) Expand(tree *surface.Tree, state *State, items []card.Item, target int) ExpandResult {
	if tree == nil || len(items) == 0 {
		return ExpandResult{}
	}
	p, ok := state.Partitioner()
	if !ok {
		return ExpandResult{}
	}
	scroll := tree.Scroll()
	opts := state.Render

	existing := tree.Rows()
	from := len(existing)
	total := p.TotalRows(len(items))
	to := max(from, min(target, total))
	shown := len(tree.Cards())

	var added []card.Item
	if from > 0 && shown < len(items) {
		last := existing[from-1]
		if fill := min(p.Capacity(from-1)-last.ChildCount(), len(items)-shown); fill > 0 {
			children := slices.Clone(last.Children())
			for j := shown; j < shown+fill; j++ {
				children = append(children, pg.newCard(tree, items[j], opts, from-1, len(children)))
			}
			tree.ReplaceChildren(last, children)
			added = append(added, items[shown:shown+fill]...)
			shown += fill
		}
	}

	root := tree.Root()
	more := tree.Find(surface.KindLoadMore)
	for i := from; i < to && shown < len(items); i++ {
		r := p.Row(i)
		r.Start = shown
		row := tree.NewNode(surface.KindRow, "")
		styleRow(row, p, r)

		end := r.End(len(items))
		cards := make([]*surface.Node, 0, end-r.Start)
		for j := r.Start; j < end; j++ {
			cards = append(cards, pg.newCard(tree, items[j], opts, i, j-r.Start))
		}
		tree.ReplaceChildren(row, cards)
		tree.InsertBefore(root, row, more)
		added = append(added, items[r.Start:end]...)
		shown = end
	}
	to = len(tree.Rows())
	syncLoadMore(tree, remainingRows(tree, p, len(items)))
	tree.SetScroll(scroll)

	if pg.Engine.Prefetcher != nil && len(added) > 0 {
		pg.Engine.Prefetcher.Prefetch(added)
	}

	state.VisibleRowsLimit = to
	state.TotalRows = total
	state.TotalCards = len(items)

	observability.Grid().OnExpand(from, to, total)
	pg.Engine.logger().Debug("expand", "from", from, "to", to, "total", total, "added", len(added))
	return ExpandResult{From: from, To: to, Total: total, Added: len(added)}
}

func (pg *Paginator) newCard(tree *surface.Tree, item card.Item, opts RenderOptions, row, col int) *surface.Node {
	n := pg.Engine.Factory.Create(tree, item, opts)
	n.Entering = true
	n.Row, n.Col = row, col
	return n
}
