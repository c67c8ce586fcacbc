package grid

import (
	"fmt"
	"testing"
	"time"

	"github.com/matzehuels/cardgrid/pkg/card"
	"github.com/matzehuels/cardgrid/pkg/grid/rows"
	"github.com/matzehuels/cardgrid/pkg/schedule"
	"github.com/matzehuels/cardgrid/pkg/surface"
)

func makeItems(n int) []card.Item {
	items := make([]card.Item, n)
	for i := range items {
		items[i] = card.Item{
			Name:   fmt.Sprintf("Card %02d", i),
			UID:    fmt.Sprintf("uid-%02d", i),
			Found:  n - i,
			Total:  n,
			Rank:   i + 1,
			Number: card.Number(fmt.Sprint(i + 1)),
			Set:    "PAR",
		}
	}
	return items
}

func partitioner(t *testing.T, width float64) rows.Partitioner {
	t.Helper()
	return DefaultConfig().Partitioner(width, ModeAuto)
}

// rowSizes returns the number of cards in every row node.
func rowSizes(tree *surface.Tree) []int {
	var out []int
	for _, r := range tree.Rows() {
		out = append(out, r.ChildCount())
	}
	return out
}

// ids maps identity keys to node IDs.
func ids(tree *surface.Tree) map[string]string {
	out := make(map[string]string)
	for _, c := range tree.Cards() {
		out[c.Key] = c.ID.String()
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

type fakePrefetcher struct {
	calls [][]card.Item
}

func (f *fakePrefetcher) Prefetch(items []card.Item) {
	f.calls = append(f.calls, items)
}

func newTestGrid(t *testing.T) (*Grid, *schedule.ManualClock) {
	t.Helper()
	clock := schedule.NewManualClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	g := New(surface.New(), Options{
		Config:   DefaultConfig(),
		Schedule: []schedule.Option{schedule.WithClock(clock)},
	})
	return g, clock
}
