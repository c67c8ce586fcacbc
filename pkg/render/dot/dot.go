// Package dot renders a grid node tree as a Graphviz diagram.
package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/cardgrid/pkg/surface"
)

// Options configures DOT output.
type Options struct {
	// Detailed adds counts, percentage and coordinates to card labels and
	// sizing variables to row labels.
	Detailed bool
}

// ToDOT converts the tree to DOT. Each row becomes a cluster laid out left
// to right; rows are chained top to bottom with invisible edges so Graphviz
// keeps their order.
func ToDOT(tree *surface.Tree, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  compound=true;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.15,0.08\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.2;\n")

	if tree == nil {
		buf.WriteString("}\n")
		return buf.String()
	}

	focused := tree.Focused()
	var anchors []string
	for i, n := range tree.Root().Children() {
		switch n.Kind {
		case surface.KindRow:
			if a := writeRow(&buf, n, i, focused, opts); a != "" {
				anchors = append(anchors, a)
			}
		case surface.KindPlaceholder, surface.KindLoadMore:
			id := nodeID(n)
			fmt.Fprintf(&buf, "\n  %q [label=%q, style=\"rounded,filled,dashed\", fillcolor=lightgrey];\n", id, n.Label)
			anchors = append(anchors, id)
		}
	}

	if len(anchors) > 1 {
		buf.WriteString("\n")
		for i := 1; i < len(anchors); i++ {
			fmt.Fprintf(&buf, "  %q -> %q [style=invis];\n", anchors[i-1], anchors[i])
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// writeRow emits one cluster and returns the ID of its first card, which
// anchors the row in the vertical chain.
func writeRow(buf *bytes.Buffer, row *surface.Node, index int, focused *surface.Node, opts Options) string {
	fmt.Fprintf(buf, "\n  subgraph \"cluster_row_%d\" {\n", index)
	fmt.Fprintf(buf, "    label=%q;\n", rowLabel(row, index, opts.Detailed))
	buf.WriteString("    style=\"rounded,dashed\";\n")
	buf.WriteString("    rank=same;\n")

	var anchor string
	for _, c := range row.Children() {
		id := nodeID(c)
		if anchor == "" {
			anchor = id
		}
		attrs := []string{fmt.Sprintf("label=%q", cardLabel(c, opts.Detailed))}
		if c == focused {
			attrs = append(attrs, "penwidth=3")
		}
		if c.Entering {
			attrs = append(attrs, "fillcolor=lightyellow")
		}
		fmt.Fprintf(buf, "    %q [%s];\n", id, strings.Join(attrs, ", "))
	}
	buf.WriteString("  }\n")
	return anchor
}

func rowLabel(row *surface.Node, index int, detailed bool) string {
	s := row.Style
	if !detailed {
		return fmt.Sprintf("row %d (%s)", index, s.Tier)
	}
	return fmt.Sprintf("row %d: %s, %d x %.2f, %.0fpx", index, s.Tier, s.Capacity, s.Scale, s.Width)
}

func cardLabel(n *surface.Node, detailed bool) string {
	name := n.Content.Name
	if name == "" {
		name = n.Key
	}
	if !detailed {
		return name
	}
	parts := []string{
		name,
		fmt.Sprintf("%s (%.0f%%)", n.Content.Counts, n.Content.Pct),
		fmt.Sprintf("r%d c%d", n.Row, n.Col),
	}
	if n.Content.PriceLabel != "" {
		parts = append(parts, n.Content.PriceLabel)
	}
	return strings.Join(parts, "\n")
}

func nodeID(n *surface.Node) string {
	return n.Kind.String() + "_" + n.ID.String()
}

// RenderSVG renders DOT source to SVG with the embedded Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the viewBox starts at the
// origin and width/height are unitless pixels.
func normalizeViewBox(svg []byte) []byte {
	m := viewBoxRe.FindSubmatch(svg)
	if m == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(m[3]), 64)
	h, _ := strconv.ParseFloat(string(m[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
