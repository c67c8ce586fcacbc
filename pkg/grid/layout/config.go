package layout

import (
	"github.com/matzehuels/cardgrid/pkg/errors"
)

// Default layout tunables.
const (
	DefaultGap                 = 12.0
	DefaultBaseCardWidth       = 200.0
	DefaultMinBaseCardWidth    = 140.0
	DefaultCompactMinCardWidth = 105.0
	DefaultMinScale            = 0.5
	DefaultBigRows             = 1
	DefaultMediumRows          = 1
	DefaultPadding             = 16.0
	DefaultCompactScaleFloor   = 0.75
)

// Config holds the layout tunables. All widths are in surface units (pixels
// in a browser, scaled cells in the terminal front end).
type Config struct {
	Gap                 float64 `toml:"gap" json:"gap"`
	BaseCardWidth       float64 `toml:"base_card_width" json:"base_card_width"`
	MinBaseCardWidth    float64 `toml:"min_base_card_width" json:"min_base_card_width"`
	CompactMinCardWidth float64 `toml:"compact_min_card_width" json:"compact_min_card_width"`
	MinScale            float64 `toml:"min_scale" json:"min_scale"`
	BigRows             int     `toml:"big_rows" json:"big_rows"`
	MediumRows          int     `toml:"medium_rows" json:"medium_rows"`

	// Padding is subtracted from the container width before anything else.
	Padding float64 `toml:"padding" json:"padding"`

	// CompactScaleFloor is the lowest scale accepted for the extra compact column.
	CompactScaleFloor float64 `toml:"compact_scale_floor" json:"compact_scale_floor"`
}

// DefaultConfig returns the stock layout configuration.
func DefaultConfig() Config {
	return Config{
		Gap:                 DefaultGap,
		BaseCardWidth:       DefaultBaseCardWidth,
		MinBaseCardWidth:    DefaultMinBaseCardWidth,
		CompactMinCardWidth: DefaultCompactMinCardWidth,
		MinScale:            DefaultMinScale,
		BigRows:             DefaultBigRows,
		MediumRows:          DefaultMediumRows,
		Padding:             DefaultPadding,
		CompactScaleFloor:   DefaultCompactScaleFloor,
	}
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	return errors.Join(
		errors.ValidateNonNegative("layout.gap", c.Gap),
		errors.ValidatePositive("layout.base_card_width", c.BaseCardWidth),
		errors.ValidatePositive("layout.min_base_card_width", c.MinBaseCardWidth),
		errors.ValidatePositive("layout.compact_min_card_width", c.CompactMinCardWidth),
		errors.ValidateOrdered("layout.min_base_card_width", c.MinBaseCardWidth, "layout.base_card_width", c.BaseCardWidth),
		errors.ValidateOrdered("layout.compact_min_card_width", c.CompactMinCardWidth, "layout.base_card_width", c.BaseCardWidth),
		errors.ValidateFraction("layout.min_scale", c.MinScale),
		errors.ValidateFraction("layout.compact_scale_floor", c.CompactScaleFloor),
		errors.ValidateNonNegative("layout.big_rows", float64(c.BigRows)),
		errors.ValidateNonNegative("layout.medium_rows", float64(c.MediumRows)),
		errors.ValidateNonNegative("layout.padding", c.Padding),
	)
}
