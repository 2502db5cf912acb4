// Package render converts rendered material graphs between output formats.
//
// The [nodelink] subpackage turns a material node tree into Graphviz DOT and
// SVG. This package converts that SVG to PDF or PNG with the external
// rsvg-convert tool (from librsvg):
//
//	svg, err := nodelink.RenderSVG(ctx, nodelink.ToDOT(tree, nodelink.Options{}))
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// [nodelink]: github.com/matzehuels/matlayer/pkg/render/nodelink
package render
