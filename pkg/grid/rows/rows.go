// Package rows assigns items to tiered grid rows.
//
// A [Partitioner] is a pure view over [layout.Metrics]: row i always has the
// same tier, capacity and scale for the same metrics, so the partition of
// any item count can be recomputed at will. Rows are 0-indexed and
// contiguous; rows 0..BigRows-1 are large, the next MediumRows rows are
// medium and the rest are small when small rows are in use, medium otherwise.
// In forced-compact mode every row uses the small tier.
package rows

import (
	"fmt"

	"github.com/matzehuels/cardgrid/pkg/grid/layout"
)

// Tier is a row's visual tier.
type Tier uint8

const (
	Large Tier = iota
	Medium
	Small
)

// String returns the lowercase tier name.
func (t Tier) String() string {
	switch t {
	case Large:
		return "large"
	case Medium:
		return "medium"
	case Small:
		return "small"
	}
	return fmt.Sprintf("tier(%d)", uint8(t))
}

// MarshalText implements encoding.TextMarshaler.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Row describes one grid row.
type Row struct {
	Index    int     `json:"index"`
	Tier     Tier    `json:"tier"`
	Capacity int     `json:"capacity"`
	Scale    float64 `json:"scale"`

	// Start is the offset of the row's first item in the item sequence.
	Start int `json:"start"`
}

// End returns the exclusive end offset of the row for n items.
func (r Row) End(n int) int {
	return min(r.Start+r.Capacity, n)
}

// Grouping is the subset of layout state that decides which item lands in
// which row. Two layouts with equal groupings place every item identically
// and differ only in scale and width.
type Grouping struct {
	PerRowBig     int
	ForcedCompact bool
	TargetMedium  int
	TargetSmall   int
	BigRows       int
	MediumRows    int
	UseSmallRows  bool
}

// Partitioner maps row indexes to row descriptors.
type Partitioner struct {
	Metrics       layout.Metrics
	ForcedCompact bool
}

// New returns a partitioner for m.
func New(m layout.Metrics, forcedCompact bool) Partitioner {
	return Partitioner{Metrics: m, ForcedCompact: forcedCompact}
}

// UseSmallRows reports whether rows after the medium tier use the small tier.
func (p Partitioner) UseSmallRows() bool {
	if p.ForcedCompact {
		return true
	}
	return p.Metrics.PerRowBig >= 6 && p.Metrics.TargetSmall > p.Metrics.TargetMedium
}

// Grouping returns the comparison tuple for p.
func (p Partitioner) Grouping() Grouping {
	m := p.Metrics
	return Grouping{
		PerRowBig:     m.PerRowBig,
		ForcedCompact: p.ForcedCompact,
		TargetMedium:  m.TargetMedium,
		TargetSmall:   m.TargetSmall,
		BigRows:       m.BigRows,
		MediumRows:    m.MediumRows,
		UseSmallRows:  p.UseSmallRows(),
	}
}

// shape returns the tier, capacity and scale of row i.
func (p Partitioner) shape(i int) (Tier, int, float64) {
	m := p.Metrics
	switch {
	case p.ForcedCompact:
		return Small, max(1, m.TargetSmall), m.SmallScale
	case i < m.BigRows:
		return Large, max(1, m.PerRowBig), 1
	case i < m.BigRows+m.MediumRows || !p.UseSmallRows():
		return Medium, max(1, m.TargetMedium), m.MediumScale
	default:
		return Small, max(1, m.TargetSmall), m.SmallScale
	}
}

// Capacity returns the number of items row i holds when full.
func (p Partitioner) Capacity(i int) int {
	_, c, _ := p.shape(i)
	return c
}

// Row returns the descriptor of row i, including its start offset.
func (p Partitioner) Row(i int) Row {
	start := 0
	for j := 0; j < i; j++ {
		start += p.Capacity(j)
	}
	return p.row(i, start)
}

func (p Partitioner) row(i, start int) Row {
	tier, capacity, scale := p.shape(i)
	return Row{Index: i, Tier: tier, Capacity: capacity, Scale: scale, Start: start}
}

// Partition returns the rows needed to hold n items. The cumulative capacity
// first reaches n at the last returned row; zero items need no rows.
func (p Partitioner) Partition(n int) []Row {
	var out []Row
	for start, i := 0, 0; start < n; i++ {
		r := p.row(i, start)
		out = append(out, r)
		start += r.Capacity
	}
	return out
}

// TotalRows returns len(p.Partition(n)) without allocating.
func (p Partitioner) TotalRows(n int) int {
	rows := 0
	for start := 0; start < n; rows++ {
		start += p.Capacity(rows)
	}
	return rows
}

// ItemsIn returns how many items the first k rows hold when full.
func (p Partitioner) ItemsIn(k int) int {
	total := 0
	for i := 0; i < k; i++ {
		total += p.Capacity(i)
	}
	return total
}
