package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cardgrid/pkg/card"
	"github.com/matzehuels/cardgrid/pkg/errors"
	"github.com/matzehuels/cardgrid/pkg/grid"
	"github.com/matzehuels/cardgrid/pkg/render"
	"github.com/matzehuels/cardgrid/pkg/render/dot"
	"github.com/matzehuels/cardgrid/pkg/surface"
)

// renderFormats lists the export formats of the render command.
var renderFormats = []string{"text", "json", "dot", "svg", "png", "pdf"}

type renderOpts struct {
	flags    renderFlags
	rows     int
	format   string
	output   string
	detailed bool
	scale    float64
}

// renderCommand lays out a report once and exports the resulting tree.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [report]",
		Short: "Lay out a report and export the node tree",
		Long: `Lay out a card usage report at a container width and export the node tree.

Formats:
  text  rows and cards drawn in the terminal (default)
  json  the node tree snapshot
  dot   Graphviz source, one cluster per row
  svg   the DOT graph rendered with the embedded Graphviz
  png   the SVG rasterized with rsvg-convert
  pdf   the SVG converted with rsvg-convert

--rows materializes rows beyond the initial page, the way repeated
"load more" would.`,
		Example: `  cardgrid render report.json
  cardgrid render report.json -w 700 --rows 12
  cardgrid render report.json -f svg -o grid.svg --detailed`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidateOneOf(errors.ErrCodeInvalidFormat, "format", opts.format, false, renderFormats...); err != nil {
				return err
			}
			ro, err := c.renderOptions(cmd, opts.flags)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], ro, opts)
		},
	}

	opts.flags.register(cmd, 1000)
	cmd.Flags().IntVar(&opts.rows, "rows", 0, "materialize rows up to this count")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "output format: "+strings.Join(renderFormats, ", "))
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout for text/json/dot/svg, report name for png/pdf)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include counts and positions in DOT labels")
	cmd.Flags().Float64Var(&opts.scale, "scale", 2, "PNG scale factor")
	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, ro grid.RenderOptions, opts renderOpts) error {
	prog := newProgress(c.Logger)
	items, err := loadItems(input)
	if err != nil {
		return err
	}
	c.Logger.Debug("loaded report", "path", input, "items", len(items))

	data, err := c.renderItems(ctx, items, ro, opts)
	if err != nil {
		return err
	}

	out := opts.output
	if out == "" && (opts.format == "png" || opts.format == "pdf") {
		out = strings.TrimSuffix(input, filepath.Ext(input)) + "." + opts.format
	}
	if out == "" {
		_, err := stdout.Write(data)
		return err
	}
	if err := writeOutput(out, data); err != nil {
		return err
	}
	prog.done("Rendered "+out, "format", opts.format, "bytes", len(data))
	return nil
}

// renderItems lays out items on a fresh tree and encodes it in opts.format.
func (c *CLI) renderItems(ctx context.Context, items []card.Item, ro grid.RenderOptions, opts renderOpts) ([]byte, error) {
	g := grid.New(surface.New(), c.gridOptions(ro, nil))
	defer g.Unmount()

	res := g.Render(items, opts.flags.width)
	if opts.rows > 0 {
		g.Expand(opts.rows)
	}
	g.Flush()
	sum := g.Summary()
	c.Logger.Debug("laid out", "rows", res.TotalRows, "visible", sum.VisibleRows, "cards", sum.TotalCards)

	var (
		data []byte
		src  string
		err  error
	)
	g.Inspect(func(tree *surface.Tree, _ grid.State) {
		switch opts.format {
		case "text":
			data = []byte(renderText(tree, defaultPxPerCell) + "\n" + summaryLine(sum) + "\n")
		case "json":
			data, err = json.MarshalIndent(tree.Snapshot(), "", "  ")
		default:
			src = dot.ToDOT(tree, dot.Options{Detailed: opts.detailed})
		}
	})
	if err != nil || opts.format == "text" || opts.format == "json" {
		return data, err
	}
	return exportDOT(ctx, src, opts.format, opts.scale)
}

func exportDOT(ctx context.Context, src, format string, scale float64) ([]byte, error) {
	if format == "dot" {
		return []byte(src), nil
	}
	svg, err := dot.RenderSVG(ctx, src)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render svg")
	}
	switch format {
	case "png":
		return render.ToPNG(svg, scale)
	case "pdf":
		return render.ToPDF(svg)
	default:
		return svg, nil
	}
}

func summaryLine(s grid.Summary) string {
	return fmt.Sprintf("Showing %d of %d rows (%d cards)", s.VisibleRows, s.TotalRows, s.TotalCards)
}

func writeOutput(path string, data []byte) error {
	f, err := openOutput(path)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// openOutput creates path and its parent directories.
func openOutput(path string) (io.WriteCloser, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, nil
}
