package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/matlayer/pkg/cache"
	"github.com/matzehuels/matlayer/pkg/naming"
	"github.com/matzehuels/matlayer/pkg/nodetree"
	"github.com/matzehuels/matlayer/pkg/render"
)

// Options configures diagram generation.
type Options struct {
	// Groups draws the inner nodes of every node group as a cluster.
	Groups bool

	// Detailed adds node kind and properties to labels.
	Detailed bool
}

// ToDOT converts a tree to Graphviz DOT. Node IDs are used as DOT identifiers
// and names as labels, so the output is stable across renames.
func ToDOT(t *nodetree.Tree, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=10];\n")
	buf.WriteString("\n")

	for _, n := range t.Nodes() {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(fmtAttrs(n, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for _, l := range t.Links() {
		fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", l.FromNode, l.ToNode, l.ToSocket)
	}

	if opts.Groups {
		for i, g := range t.Groups() {
			writeCluster(&buf, i, g, opts.Detailed)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeCluster(buf *bytes.Buffer, i int, g *nodetree.Group, detailed bool) {
	fmt.Fprintf(buf, "\n  subgraph cluster_%d {\n", i)
	fmt.Fprintf(buf, "    label=%q;\n", g.Name)
	buf.WriteString("    style=dashed;\n")
	for _, n := range g.Nodes {
		fmt.Fprintf(buf, "    %q [%s];\n", g.Name+"/"+n.Name, strings.Join(fmtAttrs(n, detailed), ", "))
	}
	buf.WriteString("  }\n")
}

func fmtLabel(n *nodetree.Node, detailed bool) string {
	label := n.Name
	if n.Label != "" && n.Label != n.Name {
		label += "\n" + n.Label
	}
	if !detailed {
		return label
	}
	parts := []string{"kind: " + n.Kind}
	for _, k := range slices.Sorted(maps.Keys(n.Props)) {
		parts = append(parts, fmt.Sprintf("%s: %v", k, n.Props[k]))
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n *nodetree.Node, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, detailed))}
	switch {
	case naming.IsProvisional(n.Name):
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightyellow")
	case n.Props["mute"] == true:
		attrs = append(attrs, "fillcolor=lightgrey", "fontcolor=gray40")
	case n.Kind == nodetree.KindOutput:
		attrs = append(attrs, "shape=doubleoctagon")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
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

// normalizeViewBox rewrites the root svg tag to a zero-origin viewBox with
// matching width and height so the image scales cleanly when embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// =============================================================================
// Cached rendering
// =============================================================================

// Request describes one cached render.
type Request struct {
	Tree    *nodetree.Tree
	DocHash string // content hash of the document owning Tree
	Format  string // render.FormatDOT, FormatSVG, FormatPDF, or FormatPNG
	Options Options
	TTL     time.Duration
}

// Render produces the requested format, serving repeat requests for the same
// document hash from c. The boolean reports a cache hit.
func Render(ctx context.Context, c cache.Cache, keyer cache.Keyer, req Request) ([]byte, bool, error) {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	key := keyer.RenderKey(req.DocHash, cache.RenderKeyOpts{
		Format:   req.Format,
		Groups:   req.Options.Groups,
		Detailed: req.Options.Detailed,
	})
	return cache.GetOrCompute(ctx, c, key, req.Format, req.TTL, func() ([]byte, error) {
		dot := ToDOT(req.Tree, req.Options)
		switch req.Format {
		case render.FormatDOT:
			return []byte(dot), nil
		case render.FormatSVG, "":
			return RenderSVG(ctx, dot)
		case render.FormatPDF:
			svg, err := RenderSVG(ctx, dot)
			if err != nil {
				return nil, err
			}
			return render.ToPDF(ctx, svg)
		case render.FormatPNG:
			svg, err := RenderSVG(ctx, dot)
			if err != nil {
				return nil, err
			}
			return render.ToPNG(ctx, svg, 2)
		}
		return nil, fmt.Errorf("unknown render format %q", req.Format)
	})
}
