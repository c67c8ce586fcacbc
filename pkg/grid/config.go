package grid

import (
	"time"

	"github.com/matzehuels/cardgrid/pkg/errors"
	"github.com/matzehuels/cardgrid/pkg/grid/layout"
	"github.com/matzehuels/cardgrid/pkg/grid/rows"
	"github.com/matzehuels/cardgrid/pkg/schedule"
)

// LayoutMode selects how compact mode is decided.
type LayoutMode string

const (
	// ModeAuto uses compact rows at or below the compact breakpoint.
	ModeAuto LayoutMode = "auto"
	// ModeStandard never uses compact rows.
	ModeStandard LayoutMode = "standard"
	// ModeCompact always uses compact rows.
	ModeCompact LayoutMode = "compact"
)

// LayoutModes lists the accepted layout mode names.
var LayoutModes = []string{string(ModeAuto), string(ModeStandard), string(ModeCompact)}

// ParseLayoutMode validates s. The empty string means ModeAuto.
func ParseLayoutMode(s string) (LayoutMode, error) {
	if err := errors.ValidateOneOf(errors.ErrCodeInvalidLayoutMode, "layout mode", s, true, LayoutModes...); err != nil {
		return "", err
	}
	if s == "" {
		return ModeAuto, nil
	}
	return LayoutMode(s), nil
}

// RenderOptions are the user-facing toggles that affect presentation.
type RenderOptions struct {
	LayoutMode LayoutMode `json:"layout_mode" bson:"layout_mode"`
	ShowPrice  bool       `json:"show_price" bson:"show_price"`
}

// Default grid tunables.
const (
	DefaultInitialVisibleRows      = 6
	DefaultRowsPerLoad             = 8
	DefaultCompactBreakpoint       = 880.0
	DefaultReducedColumnBreakpoint = 720.0
	DefaultNoiseFloor              = 1.0
	DefaultResizeInterval          = schedule.DefaultThrottleInterval
	DefaultEnterTransition         = 250 * time.Millisecond
	DefaultLoadMoreKey             = "m"
)

// Config holds every grid tunable.
type Config struct {
	Layout layout.Config

	InitialVisibleRows int
	RowsPerLoad        int

	// CompactBreakpoint is the width at or below which ModeAuto uses compact rows.
	CompactBreakpoint float64

	// ReducedColumnBreakpoint is the width at or below which compact layout
	// may squeeze in one extra column at a reduced scale.
	ReducedColumnBreakpoint float64

	// NoiseFloor is the largest width change ignored by Resize.
	NoiseFloor float64

	ResizeInterval  time.Duration
	EnterTransition time.Duration
	LoadMoreKey     string
}

// DefaultConfig returns the stock grid configuration.
func DefaultConfig() Config {
	return Config{
		Layout:                  layout.DefaultConfig(),
		InitialVisibleRows:      DefaultInitialVisibleRows,
		RowsPerLoad:             DefaultRowsPerLoad,
		CompactBreakpoint:       DefaultCompactBreakpoint,
		ReducedColumnBreakpoint: DefaultReducedColumnBreakpoint,
		NoiseFloor:              DefaultNoiseFloor,
		ResizeInterval:          DefaultResizeInterval,
		EnterTransition:         DefaultEnterTransition,
		LoadMoreKey:             DefaultLoadMoreKey,
	}
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	return errors.Join(
		c.Layout.Validate(),
		errors.ValidatePositive("grid.initial_visible_rows", float64(c.InitialVisibleRows)),
		errors.ValidatePositive("grid.rows_per_load", float64(c.RowsPerLoad)),
		errors.ValidateNonNegative("grid.compact_breakpoint", c.CompactBreakpoint),
		errors.ValidateNonNegative("grid.reduced_column_breakpoint", c.ReducedColumnBreakpoint),
		errors.ValidateOrdered("grid.reduced_column_breakpoint", c.ReducedColumnBreakpoint, "grid.compact_breakpoint", c.CompactBreakpoint),
		errors.ValidateNonNegative("grid.noise_floor", c.NoiseFloor),
		errors.ValidatePositive("grid.resize_interval", float64(c.ResizeInterval)),
		errors.ValidateNonNegative("grid.enter_transition", float64(c.EnterTransition)),
	)
}

// Hint derives the layout hint for a container width under mode.
func (c Config) Hint(width float64, mode LayoutMode) layout.Hint {
	switch mode {
	case ModeStandard:
		return layout.Hint{}
	case ModeCompact:
		return layout.Hint{Compact: true, ExtraColumn: width <= c.ReducedColumnBreakpoint}
	default:
		return layout.Hint{
			Compact:     width <= c.CompactBreakpoint,
			ExtraColumn: width <= c.ReducedColumnBreakpoint,
		}
	}
}

// Partitioner computes metrics for width and wraps them in a row partitioner.
func (c Config) Partitioner(width float64, mode LayoutMode) rows.Partitioner {
	hint := c.Hint(width, mode)
	return rows.New(layout.Compute(c.Layout, width, hint), hint.Compact)
}
