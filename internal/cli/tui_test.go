package cli

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/cardgrid/pkg/grid"
	"github.com/matzehuels/cardgrid/pkg/schedule"
	"github.com/matzehuels/cardgrid/pkg/surface"
	"github.com/matzehuels/cardgrid/pkg/viewstate"
)

func newTestModel(t *testing.T, n int) (gridModel, *grid.Grid) {
	t.Helper()
	clock := schedule.NewManualClock(time.Unix(0, 0))
	g := grid.New(surface.New(), grid.Options{
		Schedule: []schedule.Option{schedule.WithClock(clock)},
	})
	t.Cleanup(g.Unmount)
	return newGridModel(g, makeItems(n), 8, grid.DefaultLoadMoreKey), g
}

func send(m gridModel, msg tea.Msg) (gridModel, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(gridModel), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestGridModelFirstSizeRenders(t *testing.T) {
	m, g := newTestModel(t, 60)
	if v := m.View(); !strings.Contains(v, "Loading") {
		t.Errorf("View() before sizing = %q", v)
	}

	m, _ = send(m, tea.WindowSizeMsg{Width: 125, Height: 40})

	sum := g.Summary()
	if sum != (grid.Summary{TotalRows: 13, TotalCards: 60, VisibleRows: 6}) {
		t.Errorf("summary = %+v", sum)
	}
	if w := g.State().LastContainerWidth; w != 1000 {
		t.Errorf("container width = %v, want 1000", w)
	}
	if v := m.View(); !strings.Contains(v, "Showing 6 of 13 rows") {
		t.Errorf("View() missing summary:\n%s", v)
	}
}

func TestGridModelKeys(t *testing.T) {
	m, g := newTestModel(t, 60)
	m, _ = send(m, tea.WindowSizeMsg{Width: 125, Height: 40})

	m, _ = send(m, tea.KeyMsg{Type: tea.KeyRight})
	if f := g.Focused(); f == nil || f.Key != "uid-00" {
		t.Fatalf("focused = %v, want uid-00", f)
	}

	m, _ = send(m, runes("m"))
	if got := g.Summary().VisibleRows; got != 13 {
		t.Errorf("visible rows after load more = %d, want 13", got)
	}

	m, _ = send(m, runes("p"))
	if !g.State().Render.ShowPrice {
		t.Error("p should turn prices on")
	}
	if !strings.Contains(m.status, "prices on") {
		t.Errorf("status = %q", m.status)
	}

	m, _ = send(m, runes("t"))
	if got := g.State().Render.LayoutMode; got != grid.ModeStandard {
		t.Errorf("layout mode after t = %q, want standard", got)
	}

	_, cmd := send(m, runes("q"))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should return tea.Quit")
	}
}

func TestGridModelFilter(t *testing.T) {
	m, g := newTestModel(t, 60)
	m, _ = send(m, tea.WindowSizeMsg{Width: 125, Height: 40})

	m, _ = send(m, runes("/"))
	if !m.filtering {
		t.Fatal("/ should start filtering")
	}
	// Letters belong to the filter, not to navigation or load more.
	m, _ = send(m, runes("card 0m"))
	m, _ = send(m, tea.KeyMsg{Type: tea.KeyBackspace})
	g.Flush()
	if got := g.Summary().TotalCards; got != 10 {
		t.Errorf("cards after filter %q = %d, want 10", m.filter, got)
	}

	// Arrow keys still move focus while typing.
	m, _ = send(m, tea.KeyMsg{Type: tea.KeyDown})
	if g.Focused() == nil {
		t.Error("arrow key should move focus while filtering")
	}

	m, _ = send(m, tea.KeyMsg{Type: tea.KeyEsc})
	g.Flush()
	if m.filtering || m.filter != "" {
		t.Errorf("esc should clear the filter, got filtering=%v filter=%q", m.filtering, m.filter)
	}
	if got := g.Summary().TotalCards; got != 60 {
		t.Errorf("cards after clearing filter = %d, want 60", got)
	}
}

func TestGridModelRestore(t *testing.T) {
	m, g := newTestModel(t, 60)
	m.restore = &viewstate.Snapshot{
		VisibleRows: 10,
		Render:      grid.RenderOptions{LayoutMode: grid.ModeCompact, ShowPrice: true},
	}
	send(m, tea.WindowSizeMsg{Width: 125, Height: 40})

	st := g.State()
	if st.VisibleRowsLimit != 10 {
		t.Errorf("visible rows = %d, want 10", st.VisibleRowsLimit)
	}
	if st.Render.LayoutMode != grid.ModeCompact || !st.Render.ShowPrice {
		t.Errorf("render options = %+v", st.Render)
	}
}

func TestGridModelResizeAndReload(t *testing.T) {
	m, g := newTestModel(t, 60)
	m, _ = send(m, tea.WindowSizeMsg{Width: 125, Height: 40})
	m, _ = send(m, tea.WindowSizeMsg{Width: 88, Height: 40})
	g.Flush()
	if w := g.State().LastContainerWidth; w != 704 {
		t.Errorf("container width after resize = %v, want 704", w)
	}

	m, _ = send(m, itemsMsg(makeItems(20)))
	g.Flush()
	if got := g.Summary().TotalCards; got != 20 {
		t.Errorf("cards after reload = %d, want 20", got)
	}
	if !strings.Contains(m.status, "reloaded 20") {
		t.Errorf("status = %q", m.status)
	}
}

func TestGridModelRunMsg(t *testing.T) {
	m, _ := newTestModel(t, 3)
	ran := false
	send(m, runMsg(func() { ran = true }))
	if !ran {
		t.Error("runMsg callback was not run")
	}
}

func TestGridModelFollowsFocus(t *testing.T) {
	m, g := newTestModel(t, 60)
	m, _ = send(m, tea.WindowSizeMsg{Width: 125, Height: 12})
	m, _ = send(m, runes("m"))
	for range 12 {
		m, _ = send(m, runes("j"))
	}
	f := g.Focused()
	if f == nil {
		t.Fatal("nothing focused")
	}
	if m.offset == 0 {
		t.Errorf("offset = 0 with focus on row %d and a %d line body", f.Row, m.bodyHeight())
	}
	if v := m.View(); !strings.Contains(v, f.Content.Name) {
		t.Errorf("focused card %q not on screen", f.Content.Name)
	}
}

func TestNextMode(t *testing.T) {
	tests := []struct{ in, want grid.LayoutMode }{
		{grid.ModeAuto, grid.ModeStandard},
		{grid.ModeStandard, grid.ModeCompact},
		{grid.ModeCompact, grid.ModeAuto},
	}
	for _, tt := range tests {
		if got := nextMode(tt.in); got != tt.want {
			t.Errorf("nextMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
