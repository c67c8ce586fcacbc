package grid

import (
	"github.com/matzehuels/cardgrid/pkg/grid/layout"
	"github.com/matzehuels/cardgrid/pkg/grid/rows"
)

// State is the mutable state of one mounted grid. It lives as long as the
// surface is mounted and is owned by whoever mounted it; the paginator and
// resize coordinator receive it by pointer.
type State struct {
	// VisibleRowsLimit is the number of rows the engine materializes.
	VisibleRowsLimit int `json:"visible_rows_limit"`

	// TotalRows is the row count of the whole item set at the current layout.
	TotalRows int `json:"total_rows"`

	TotalCards         int     `json:"total_cards"`
	LastContainerWidth float64 `json:"last_container_width"`

	// CachedMetrics is nil until the first render.
	CachedMetrics *layout.Metrics `json:"cached_metrics,omitempty"`

	// ForcedCompact records whether the cached metrics were laid out in
	// compact mode.
	ForcedCompact bool `json:"forced_compact"`

	Render RenderOptions `json:"render"`
}

// Summary is the triple shown by summary text renderers.
type Summary struct {
	TotalRows   int `json:"total_rows"`
	TotalCards  int `json:"total_cards"`
	VisibleRows int `json:"visible_rows"`
}

// Summary returns the row and card counts of s.
func (s *State) Summary() Summary {
	return Summary{
		TotalRows:   s.TotalRows,
		TotalCards:  s.TotalCards,
		VisibleRows: min(s.VisibleRowsLimit, s.TotalRows),
	}
}

// Partitioner returns the partitioner of the cached layout. ok is false
// before the first render.
func (s *State) Partitioner() (p rows.Partitioner, ok bool) {
	if s.CachedMetrics == nil {
		return rows.Partitioner{}, false
	}
	return rows.New(*s.CachedMetrics, s.ForcedCompact), true
}

// commitLayout records the layout a pass has just applied.
func (s *State) commitLayout(width float64, p rows.Partitioner) {
	m := p.Metrics
	s.LastContainerWidth = width
	s.CachedMetrics = &m
	s.ForcedCompact = p.ForcedCompact
}
