package layout

import (
	"math"
	"testing"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestComputeStandardScenario(t *testing.T) {
	m := Compute(DefaultConfig(), 1000, Hint{})

	if m.Compact || m.Degenerate {
		t.Fatalf("unexpected mode flags: %+v", m)
	}
	if m.Base != 200 {
		t.Errorf("Base = %v, want 200", m.Base)
	}
	if m.PerRowBig != 4 {
		t.Errorf("PerRowBig = %d, want 4", m.PerRowBig)
	}
	if m.BigRowContentWidth != 836 {
		t.Errorf("BigRowContentWidth = %v, want 836", m.BigRowContentWidth)
	}
	if m.TargetMedium != 5 || !approx(m.MediumScale, 0.788) {
		t.Errorf("medium = %d @ %v, want 5 @ 0.788", m.TargetMedium, m.MediumScale)
	}
	if m.TargetSmall != 6 || !approx(m.SmallScale, 776.0/1200.0) {
		t.Errorf("small = %d @ %v, want 6 @ %v", m.TargetSmall, m.SmallScale, 776.0/1200.0)
	}
	if m.BigRows != 1 || m.MediumRows != 1 {
		t.Errorf("tier rows = %d/%d, want 1/1", m.BigRows, m.MediumRows)
	}
}

func TestComputeShrinksBaseForTwoColumns(t *testing.T) {
	m := Compute(DefaultConfig(), 320, Hint{})
	if m.Base != 146 {
		t.Errorf("Base = %v, want 146", m.Base)
	}
	if m.PerRowBig != 2 {
		t.Errorf("PerRowBig = %d, want 2", m.PerRowBig)
	}

	// Below the minimum the base stops shrinking and a single column remains.
	m = Compute(DefaultConfig(), 200, Hint{})
	if m.Base != DefaultMinBaseCardWidth {
		t.Errorf("Base = %v, want %v", m.Base, DefaultMinBaseCardWidth)
	}
	if m.PerRowBig != 1 {
		t.Errorf("PerRowBig = %d, want 1", m.PerRowBig)
	}
	if m.TargetMedium != 1 || m.MediumScale != 1 {
		t.Errorf("medium should collapse to the big tier, got %d @ %v", m.TargetMedium, m.MediumScale)
	}
}

func TestComputeDegenerate(t *testing.T) {
	for _, w := range []float64{0, -50, DefaultPadding, math.NaN()} {
		m := Compute(DefaultConfig(), w, Hint{})
		if !m.Degenerate {
			t.Errorf("Compute(%v) should be degenerate", w)
		}
		if m.PerRowBig != 1 || m.TargetMedium != 1 || m.TargetSmall != 1 {
			t.Errorf("Compute(%v) counts = %d/%d/%d, want 1/1/1", w, m.PerRowBig, m.TargetMedium, m.TargetSmall)
		}
		if m.Base != DefaultMinBaseCardWidth {
			t.Errorf("Compute(%v) Base = %v", w, m.Base)
		}
	}
}

func TestComputeCompact(t *testing.T) {
	cfg := DefaultConfig()

	m := Compute(cfg, 700, Hint{Compact: true})
	if !m.Compact {
		t.Fatal("expected compact metrics")
	}
	// 684 usable: four columns of 162 fill it exactly.
	if m.PerRowBig != 4 || !approx(m.Base, 162) {
		t.Errorf("compact columns = %d @ %v, want 4 @ 162", m.PerRowBig, m.Base)
	}
	if m.TargetSmall != 4 || m.SmallScale != 1 {
		t.Errorf("without extra column small tier = %d @ %v", m.TargetSmall, m.SmallScale)
	}
	if !approx(m.BigRowContentWidth, 684) {
		t.Errorf("content width = %v, want 684", m.BigRowContentWidth)
	}

	m = Compute(cfg, 700, Hint{Compact: true, ExtraColumn: true})
	want := (684.0 - 48.0) / (5 * 162.0)
	if m.TargetSmall != 5 || !approx(m.SmallScale, want) {
		t.Errorf("extra column = %d @ %v, want 5 @ %v", m.TargetSmall, m.SmallScale, want)
	}
	if m.TargetMedium != m.TargetSmall || m.MediumScale != m.SmallScale {
		t.Error("compact tiers should be uniform")
	}

	// Raising the floor rejects the squeezed variant.
	cfg.CompactScaleFloor = 0.9
	m = Compute(cfg, 700, Hint{Compact: true, ExtraColumn: true})
	if m.TargetSmall != 4 || m.SmallScale != 1 {
		t.Errorf("extra column should be rejected, got %d @ %v", m.TargetSmall, m.SmallScale)
	}
}

func TestComputeCompactRespectsMinimumWidth(t *testing.T) {
	m := Compute(DefaultConfig(), 300, Hint{Compact: true})
	if m.Base < DefaultCompactMinCardWidth {
		t.Errorf("Base = %v, below compact minimum", m.Base)
	}
	if m.PerRowBig != 2 {
		t.Errorf("PerRowBig = %d, want 2", m.PerRowBig)
	}
}

func TestComputeDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	for w := 0.0; w <= 2600; w += 37.5 {
		for _, hint := range []Hint{{}, {Compact: true}, {Compact: true, ExtraColumn: true}} {
			if a, b := Compute(cfg, w, hint), Compute(cfg, w, hint); a != b {
				t.Fatalf("Compute(%v, %+v) not deterministic: %+v vs %+v", w, hint, a, b)
			}
		}
	}
}

func TestComputeScaleBounds(t *testing.T) {
	cfg := DefaultConfig()
	for w := 1.0; w <= 3000; w += 1 {
		for _, hint := range []Hint{{}, {Compact: true}, {Compact: true, ExtraColumn: true}} {
			m := Compute(cfg, w, hint)
			if m.SmallScale < cfg.MinScale || m.SmallScale > m.MediumScale || m.MediumScale > 1 {
				t.Fatalf("w=%v %+v: scale bounds violated: small=%v medium=%v", w, hint, m.SmallScale, m.MediumScale)
			}
			if m.MediumScale == 1 && m.TargetMedium != m.PerRowBig {
				t.Fatalf("w=%v %+v: medium scale 1 with %d != %d columns", w, hint, m.TargetMedium, m.PerRowBig)
			}
			if m.PerRowBig < 1 || m.TargetMedium < m.PerRowBig || m.TargetSmall < m.TargetMedium {
				t.Fatalf("w=%v %+v: column targets out of order: %d/%d/%d", w, hint, m.PerRowBig, m.TargetMedium, m.TargetSmall)
			}
		}
	}
}

func TestRowWidth(t *testing.T) {
	m := Compute(DefaultConfig(), 1000, Hint{})
	if got := m.RowWidth(m.PerRowBig, 1); got != m.BigRowContentWidth {
		t.Errorf("RowWidth(big) = %v, want %v", got, m.BigRowContentWidth)
	}
	if got := m.RowWidth(m.TargetMedium, m.MediumScale); !approx(got, m.BigRowContentWidth) {
		t.Errorf("RowWidth(medium) = %v, want %v", got, m.BigRowContentWidth)
	}
	if m.RowWidth(0, 1) != 0 {
		t.Error("RowWidth(0) should be 0")
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	cfg := DefaultConfig()
	cfg.MinScale = 0
	cfg.MinBaseCardWidth = 500
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error")
	}
}
