package grid

import (
	"fmt"
	"slices"

	"github.com/matzehuels/cardgrid/pkg/card"
	"github.com/matzehuels/cardgrid/pkg/present"
	"github.com/matzehuels/cardgrid/pkg/surface"
)

// NodeFactory creates card nodes and writes item data onto them.
//
// Populate must set every presentation field from the item alone, so a
// reused node ends up identical to a freshly created one.
type NodeFactory interface {
	Create(tree *surface.Tree, item card.Item, opts RenderOptions) *surface.Node
	Populate(node *surface.Node, item card.Item, opts RenderOptions)
}

// CardFactory is the default NodeFactory.
type CardFactory struct {
	Thumbnails present.ThumbnailResolver
	Prices     present.PriceFormatter
	Paths      present.PathBuilder

	// Overrides maps card names to preferred thumbnail locations.
	Overrides map[string]string

	// SmallThumbnails selects the XS image variant.
	SmallThumbnails bool
}

// NewCardFactory returns a factory using the default collaborators.
func NewCardFactory() *CardFactory {
	return &CardFactory{
		Thumbnails: present.Thumbnails{BaseURL: present.DefaultBaseURL},
		Prices:     present.USD{},
		Paths:      present.CardPaths{},
	}
}

// Create implements NodeFactory.
func (f *CardFactory) Create(tree *surface.Tree, item card.Item, opts RenderOptions) *surface.Node {
	n := tree.NewNode(surface.KindCard, item.Key())
	f.Populate(n, item, opts)
	return n
}

// Populate implements NodeFactory.
func (f *CardFactory) Populate(n *surface.Node, item card.Item, opts RenderOptions) {
	pct := item.Percent()
	c := surface.Content{
		Name:     item.Name,
		Found:    item.Found,
		Total:    item.Total,
		Pct:      pct,
		PctWidth: max(0, min(100, pct)),
		Counts:   fmt.Sprintf("%d/%d", item.Found, item.Total),
		Bars:     Histogram(item.Dist),
		Category: item.Category,
	}
	if f.Thumbnails != nil {
		ref := present.Ref{Set: item.Set, Number: string(item.Number)}
		c.Thumbnails = f.Thumbnails.Candidates(item.Name, f.SmallThumbnails, f.Overrides, ref)
	}
	if f.Paths != nil {
		c.Href = f.Paths.Path(item.Key())
	}
	if opts.ShowPrice && item.Price != nil && f.Prices != nil {
		c.PriceLabel = f.Prices.FormatPrice(*item.Price)
	}
	n.Key = item.Key()
	n.Content = c
}

// Histogram converts a copy-count distribution into bars ordered by copies,
// with heights relative to the most common count.
func Histogram(dist []card.DistEntry) []surface.Bar {
	if len(dist) == 0 {
		return nil
	}
	sorted := slices.Clone(dist)
	slices.SortStableFunc(sorted, func(a, b card.DistEntry) int { return a.Copies - b.Copies })

	peak := 0.0
	for _, d := range sorted {
		peak = max(peak, d.Percent)
	}
	bars := make([]surface.Bar, len(sorted))
	for i, d := range sorted {
		h := 0.0
		if peak > 0 {
			h = d.Percent / peak * 100
		}
		bars[i] = surface.Bar{Copies: d.Copies, Percent: d.Percent, Height: h}
	}
	return bars
}

var _ NodeFactory = (*CardFactory)(nil)
