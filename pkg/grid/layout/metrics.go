package layout

import "math"

// eps absorbs float noise when a width fits a column count exactly.
const eps = 1e-9

// Hint carries viewport signals supplied by the caller on every call.
type Hint struct {
	// Compact selects uniform compact rows (narrow viewport).
	Compact bool

	// ExtraColumn allows the "+1 column at reduced scale" compact variant.
	ExtraColumn bool
}

// Metrics is the result of a layout computation. It is never mutated after
// [Compute] returns.
type Metrics struct {
	Gap                float64 `json:"gap"`
	Base               float64 `json:"base"`
	PerRowBig          int     `json:"per_row_big"`
	BigRowContentWidth float64 `json:"big_row_content_width"`
	TargetMedium       int     `json:"target_medium"`
	MediumScale        float64 `json:"medium_scale"`
	TargetSmall        int     `json:"target_small"`
	SmallScale         float64 `json:"small_scale"`
	BigRows            int     `json:"big_rows"`
	MediumRows         int     `json:"medium_rows"`

	// Compact is set when the compact algorithm produced the metrics.
	Compact bool `json:"compact,omitempty"`

	// Degenerate is set for the single-column fallback used when the
	// container has no usable width.
	Degenerate bool `json:"degenerate,omitempty"`
}

// CardWidth returns the rendered width of one card at scale.
func (m Metrics) CardWidth(scale float64) float64 {
	return m.Base * scale
}

// RowWidth returns the rendered width of a full row of capacity cards.
func (m Metrics) RowWidth(capacity int, scale float64) float64 {
	if capacity < 1 {
		return 0
	}
	return float64(capacity)*m.Base*scale + float64(capacity-1)*m.Gap
}

// Compute derives the layout metrics for containerWidth.
func Compute(cfg Config, containerWidth float64, hint Hint) Metrics {
	width := containerWidth - cfg.Padding
	if !(width > 0) {
		return degenerate(cfg)
	}
	if hint.Compact {
		return compact(cfg, width, hint.ExtraColumn)
	}
	return standard(cfg, width)
}

func degenerate(cfg Config) Metrics {
	return Metrics{
		Gap:                cfg.Gap,
		Base:               cfg.MinBaseCardWidth,
		PerRowBig:          1,
		BigRowContentWidth: cfg.MinBaseCardWidth,
		TargetMedium:       1,
		MediumScale:        1,
		TargetSmall:        1,
		SmallScale:         1,
		BigRows:            1,
		MediumRows:         1,
		Degenerate:         true,
	}
}

func standard(cfg Config, width float64) Metrics {
	gap := cfg.Gap

	// Shrink the card so two fit side by side, within [min, preferred].
	fitTwo := math.Floor((width - gap) / 2)
	base := math.Min(cfg.BaseCardWidth, math.Max(cfg.MinBaseCardWidth, fitTwo))

	perRowBig := columns(width, base, gap)
	content := float64(perRowBig)*base + float64(perRowBig-1)*gap

	m := Metrics{
		Gap:                gap,
		Base:               base,
		PerRowBig:          perRowBig,
		BigRowContentWidth: content,
		BigRows:            cfg.BigRows,
		MediumRows:         cfg.MediumRows,
	}
	m.TargetMedium, m.MediumScale = fitTier(perRowBig+1, perRowBig, base, gap, content, cfg.MinScale)
	m.TargetSmall, m.SmallScale = fitTier(perRowBig+2, perRowBig, base, gap, content, cfg.MinScale)

	// A small tier that collapsed while the medium tier held would be wider
	// than the medium tier; fold it onto the medium tier instead.
	if m.SmallScale > m.MediumScale {
		m.TargetSmall, m.SmallScale = m.TargetMedium, m.MediumScale
	}
	return m
}

func compact(cfg Config, width float64, extraColumn bool) Metrics {
	gap := cfg.Gap

	cols := max(1, int(math.Ceil((width+gap)/(cfg.BaseCardWidth+gap)-eps)))
	base := fill(width, cols, gap)
	for cols > 1 && base < cfg.CompactMinCardWidth {
		cols--
		base = fill(width, cols, gap)
	}

	target, scale := cols, 1.0
	if extraColumn {
		s := (width - float64(cols)*gap) / (float64(cols+1) * base)
		if s >= cfg.CompactScaleFloor {
			target, scale = cols+1, math.Min(s, 1)
		}
	}

	return Metrics{
		Gap:                gap,
		Base:               base,
		PerRowBig:          cols,
		BigRowContentWidth: float64(cols)*base + float64(cols-1)*gap,
		TargetMedium:       target,
		MediumScale:        scale,
		TargetSmall:        target,
		SmallScale:         scale,
		BigRows:            cfg.BigRows,
		MediumRows:         cfg.MediumRows,
		Compact:            true,
	}
}

// columns returns how many cards of width base fit in width, at least one.
func columns(width, base, gap float64) int {
	return max(1, int(math.Floor((width+gap)/(base+gap)+eps)))
}

// fill returns the card width that makes cols columns span width exactly.
func fill(width float64, cols int, gap float64) float64 {
	return (width - float64(cols-1)*gap) / float64(cols)
}

// fitTier tries to fit want columns inside content. If the scale needed is
// below minScale the tier falls back to fallback columns at scale 1.
func fitTier(want, fallback int, base, gap, content, minScale float64) (int, float64) {
	scale := (content - float64(want-1)*gap) / (float64(want) * base)
	if scale < minScale {
		return fallback, 1
	}
	return want, math.Min(scale, 1)
}
