package cli

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cardgrid/pkg/grid/layout"
	"github.com/matzehuels/cardgrid/pkg/grid/rows"
)

// layoutCommand prints the metrics and row partition for a width.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags  renderFlags
		items  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Show layout metrics and row partition for a container width",
		Long: `Show the layout metrics and row partition the grid would use for a
container width, without loading a report.

Rows are listed for --items cards: large rows first, then medium rows, then
small rows repeated until every card is placed.`,
		Example: `  cardgrid layout --width 1000 --items 24
  cardgrid layout -w 700 --mode compact --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.renderOptions(cmd, flags)
			if err != nil {
				return err
			}
			p := c.cfg.GridConfig().Partitioner(flags.width, opts.LayoutMode)
			if asJSON {
				return writeLayoutJSON(p, items)
			}
			printLayout(flags.width, string(opts.LayoutMode), p, items)
			return nil
		},
	}

	flags.register(cmd, 1000)
	cmd.Flags().IntVarP(&items, "items", "n", 24, "number of cards to partition")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print metrics and rows as JSON")
	return cmd
}

func writeLayoutJSON(p rows.Partitioner, items int) error {
	out := struct {
		Metrics   layout.Metrics `json:"metrics"`
		Rows      []rows.Row     `json:"rows"`
		TotalRows int            `json:"total_rows"`
	}{p.Metrics, p.Partition(items), p.TotalRows(items)}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printLayout(width float64, mode string, p rows.Partitioner, items int) {
	m := p.Metrics
	algo := "standard"
	switch {
	case m.Degenerate:
		algo = "fallback"
	case m.Compact:
		algo = "compact"
	}

	fmt.Fprintln(stdout, StyleTitle.Render("Layout"))
	printKeyValue("Width", fmt.Sprintf("%.0fpx (%s mode, %s)", width, mode, algo))
	printKeyValue("Base", fmt.Sprintf("%.1fpx, gap %.0fpx", m.Base, m.Gap))
	printKeyValue("Large", fmt.Sprintf("%d per row x %d rows", m.PerRowBig, m.BigRows))
	printKeyValue("Medium", fmt.Sprintf("%d per row @ %.3f x %d rows", m.TargetMedium, m.MediumScale, m.MediumRows))
	small := fmt.Sprintf("%d per row @ %.3f", m.TargetSmall, m.SmallScale)
	if !p.UseSmallRows() {
		small += StyleDim.Render(" (folded into medium)")
	}
	printKeyValue("Small", small)
	printNewline()

	parts := p.Partition(items)
	data := make([][]string, len(parts))
	for i, r := range parts {
		data[i] = []string{
			fmt.Sprint(r.Index),
			r.Tier.String(),
			fmt.Sprintf("%d/%d", r.End(items)-r.Start, r.Capacity),
			fmt.Sprintf("%.3f", r.Scale),
			fmt.Sprintf("%.1f", m.CardWidth(r.Scale)),
			fmt.Sprintf("%.1f", m.RowWidth(r.Capacity, r.Scale)),
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Row", "Tier", "Cards", "Scale", "Card px", "Row px").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 1 {
				return lipgloss.NewStyle().Foreground(tierColor(parts[row].Tier))
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})
	fmt.Fprintln(stdout, t.Render())
	printDetail("%d cards in %d rows", items, p.TotalRows(items))
}
