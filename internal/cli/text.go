package cli

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/cardgrid/pkg/surface"
)

// Terminal rendering of the node tree. Widths in the tree are pixels; one
// terminal column stands for pxPerCell pixels.
const (
	defaultPxPerCell = 8.0
	minCardCells     = 12
)

var sparkChars = []rune("▁▂▃▄▅▆▇█")

// textBlocks renders every root child of tree as a block of lines: one per
// row, plus the placeholder or load-more affordance.
func textBlocks(tree *surface.Tree, pxPerCell float64, loadMoreKey string) []string {
	if tree == nil {
		return nil
	}
	if pxPerCell <= 0 {
		pxPerCell = defaultPxPerCell
	}
	focused := tree.Focused()

	var blocks []string
	for i, n := range tree.Root().Children() {
		switch n.Kind {
		case surface.KindRow:
			blocks = append(blocks, renderRowText(n, i, focused, pxPerCell))
		case surface.KindPlaceholder:
			blocks = append(blocks, StyleDim.Render(n.Label))
		case surface.KindLoadMore:
			label := n.Label
			if loadMoreKey != "" {
				label += StyleDim.Render(fmt.Sprintf("  [%s]", loadMoreKey))
			}
			blocks = append(blocks, moreStyle.Render(label))
		}
	}
	return blocks
}

// renderText renders the whole tree.
func renderText(tree *surface.Tree, pxPerCell float64) string {
	return strings.Join(textBlocks(tree, pxPerCell, ""), "\n")
}

func renderRowText(row *surface.Node, index int, focused *surface.Node, pxPerCell float64) string {
	st := row.Style
	heading := rowHeading.Render(fmt.Sprintf("%d · %s · %d × %.2f", index, st.Tier, st.Capacity, st.Scale))

	inner := max(minCardCells, int(math.Round(st.CardWidth/pxPerCell)))-2
	cards := make([]string, 0, row.ChildCount())
	for _, c := range row.Children() {
		cards = append(cards, renderCardText(c, inner, c == focused))
	}
	return lipgloss.JoinVertical(lipgloss.Left, heading, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
}

func renderCardText(n *surface.Node, width int, focused bool) string {
	c := n.Content
	lines := []string{
		cardName.Render(truncate(c.Name, width)),
		truncate(fmt.Sprintf("%s  %.1f%%", c.Counts, c.Pct), width),
		cardBar.Render(bar(c.PctWidth, width)),
	}
	if len(c.Bars) > 0 {
		lines = append(lines, cardSpark.Render(spark(c.Bars, width)))
	}
	if c.PriceLabel != "" {
		lines = append(lines, cardPrice.Render(c.PriceLabel))
	}

	style := cardBorder
	switch {
	case focused:
		style = focusBorder
	case n.Entering:
		style = enteringBorder
	}
	return style.Width(width).Render(strings.Join(lines, "\n"))
}

// bar draws a percentage bar pct (0-100) wide relative to width cells.
func bar(pct float64, width int) string {
	filled := int(math.Round(pct / 100 * float64(width)))
	filled = min(max(filled, 0), width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func spark(bars []surface.Bar, width int) string {
	var b strings.Builder
	for i, bb := range bars {
		if i >= width {
			break
		}
		idx := int(math.Round(bb.Height / 100 * float64(len(sparkChars)-1)))
		idx = min(max(idx, 0), len(sparkChars)-1)
		b.WriteRune(sparkChars[idx])
	}
	return b.String()
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}
