// Package render exports the grid's node tree for inspection.
//
// The [dot] subpackage turns a tree into Graphviz DOT and SVG, one cluster
// per row. [ToPDF] and [ToPNG] convert any SVG further through the external
// rsvg-convert tool:
//
//	src := dot.ToDOT(tree, dot.Options{Detailed: true})
//	svg, err := dot.RenderSVG(ctx, src)
//	png, err := render.ToPNG(svg, 2)
//
// [dot]: github.com/matzehuels/cardgrid/pkg/render/dot
package render
