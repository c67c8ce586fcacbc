package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/cardgrid/pkg/card"
	"github.com/matzehuels/cardgrid/pkg/grid"
	"github.com/matzehuels/cardgrid/pkg/surface"
	"github.com/matzehuels/cardgrid/pkg/viewstate"
)

// runMsg carries a scheduled grid callback onto the event loop.
type runMsg func()

// itemsMsg delivers a reloaded report.
type itemsMsg []card.Item

// chromeLines is the number of lines the header and footer take.
const chromeLines = 4

// gridModel is the bubbletea model of the view command. Terminal columns
// map to container pixels through pxPerCell.
type gridModel struct {
	grid        *grid.Grid
	items       []card.Item
	pxPerCell   float64
	loadMoreKey string

	// restore is applied on the first size message instead of a plain render.
	restore *viewstate.Snapshot

	width, height int
	sized         bool
	offset        int

	filtering bool
	filter    string
	status    string
}

func newGridModel(g *grid.Grid, items []card.Item, pxPerCell float64, loadMoreKey string) gridModel {
	if pxPerCell <= 0 {
		pxPerCell = defaultPxPerCell
	}
	return gridModel{
		grid:        g,
		items:       items,
		pxPerCell:   pxPerCell,
		loadMoreKey: loadMoreKey,
	}
}

func (m gridModel) Init() tea.Cmd {
	return nil
}

func (m gridModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case runMsg:
		msg()
	case itemsMsg:
		m.items = msg
		if m.sized {
			m.grid.Update(m.filtered())
		}
		m.status = fmt.Sprintf("reloaded %d cards", len(msg))
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		px := float64(msg.Width) * m.pxPerCell
		if !m.sized {
			m.sized = true
			if m.restore != nil {
				m.grid.Restore(m.filtered(), px, m.restore.VisibleRows, m.restore.Render)
			} else {
				m.grid.Render(m.filtered(), px)
			}
		} else {
			m.grid.Resize(px)
		}
	case tea.KeyMsg:
		m, cmd = m.handleKey(msg)
	}
	return m.follow(), cmd
}

func (m gridModel) handleKey(msg tea.KeyMsg) (gridModel, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}

	if m.filtering {
		switch msg.Type {
		case tea.KeyEnter:
			m.filtering = false
		case tea.KeyEsc:
			m.filtering = false
			m.filter = ""
			m.grid.Update(m.filtered())
		case tea.KeyBackspace:
			if r := []rune(m.filter); len(r) > 0 {
				m.filter = string(r[:len(r)-1])
				m.grid.Update(m.filtered())
			}
		case tea.KeyRunes, tea.KeySpace:
			m.filter += string(msg.Runes)
			m.grid.Update(m.filtered())
		default:
			m.grid.Key(key, true)
		}
		return m, nil
	}

	if a := m.grid.Key(key, false); a.Kind != grid.ActionNone {
		m.status = ""
		return m, nil
	}

	switch key {
	case "q", "esc":
		return m, tea.Quit
	case "/":
		m.filtering = true
	case "p":
		opts := m.grid.State().Render
		opts.ShowPrice = !opts.ShowPrice
		m.grid.SetRenderOptions(opts)
		m.status = fmt.Sprintf("prices %s", onOff(opts.ShowPrice))
	case "t":
		opts := m.grid.State().Render
		opts.LayoutMode = nextMode(opts.LayoutMode)
		m.grid.SetRenderOptions(opts)
		m.status = fmt.Sprintf("layout mode %s", opts.LayoutMode)
	}
	return m, nil
}

// filtered returns the items whose name contains the filter text.
func (m gridModel) filtered() []card.Item {
	if m.filter == "" {
		return m.items
	}
	needle := strings.ToLower(m.filter)
	var out []card.Item
	for _, it := range m.items {
		if strings.Contains(strings.ToLower(it.Name), needle) {
			out = append(out, it)
		}
	}
	return out
}

func (m gridModel) bodyHeight() int {
	return max(m.height-chromeLines, 1)
}

// snapshot renders the tree blocks and finds the block holding focus.
func (m gridModel) snapshot() (blocks []string, focus int, sum grid.Summary) {
	focus = -1
	m.grid.Inspect(func(tree *surface.Tree, st grid.State) {
		if tree == nil {
			return
		}
		blocks = textBlocks(tree, m.pxPerCell, m.loadMoreKey)
		if f := tree.Focused(); f != nil && f.Parent() != nil {
			focus = tree.Root().IndexOf(f.Parent())
		}
		sum = st.Summary()
	})
	return blocks, focus, sum
}

// follow scrolls so the block holding focus is on screen.
func (m gridModel) follow() gridModel {
	if !m.sized {
		return m
	}
	blocks, focus, _ := m.snapshot()
	if focus < 0 {
		m.offset = min(m.offset, max(len(blocks)-1, 0))
		return m
	}
	if focus < m.offset {
		m.offset = focus
	}
	for m.offset < focus && blockHeight(blocks[m.offset:focus+1]) > m.bodyHeight() {
		m.offset++
	}
	return m
}

func blockHeight(blocks []string) int {
	h := 0
	for _, b := range blocks {
		h += lipgloss.Height(b)
	}
	return h
}

func (m gridModel) View() string {
	if !m.sized {
		return "Loading…"
	}
	blocks, _, sum := m.snapshot()

	var b strings.Builder
	b.WriteString(StyleTitle.Render("cardgrid"))
	b.WriteString("  ")
	b.WriteString(StyleDim.Render(summaryLine(sum)))
	b.WriteString("\n")

	body := m.bodyHeight()
	var shown []string
	for i := m.offset; i < len(blocks); i++ {
		if len(shown) > 0 && blockHeight(shown)+lipgloss.Height(blocks[i]) > body {
			break
		}
		shown = append(shown, blocks[i])
	}
	b.WriteString(strings.Join(shown, "\n"))
	b.WriteString("\n\n")

	switch {
	case m.filtering:
		b.WriteString(filterStyle.Render("/" + m.filter + "▏"))
	case m.filter != "":
		b.WriteString(filterStyle.Render("filter: " + m.filter))
	case m.status != "":
		b.WriteString(statusStyle.Render(m.status))
	}
	b.WriteString("\n")
	more := ""
	if m.loadMoreKey != "" {
		more = m.loadMoreKey + " more  "
	}
	b.WriteString(helpStyle.Render("←↑↓→/hjkl move  " + more + "p price  t mode  / filter  q quit"))
	return b.String()
}

func nextMode(m grid.LayoutMode) grid.LayoutMode {
	switch m {
	case grid.ModeAuto:
		return grid.ModeStandard
	case grid.ModeStandard:
		return grid.ModeCompact
	default:
		return grid.ModeAuto
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
