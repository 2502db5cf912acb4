// Package nodelink renders a material node tree as a node-link diagram.
//
// # Usage
//
// Convert a tree to DOT, then render to SVG with Graphviz:
//
//	dot := nodelink.ToDOT(m.Tree, nodelink.Options{Groups: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Rendering is slow compared to everything else, so callers that render
// repeatedly go through [Render], which caches output keyed by the document
// hash.
//
// # Appearance
//
// Nodes are laid out left to right following the links, so the layer chain
// reads towards the material output. Edge labels name the input socket.
// Provisional nodes (a command stopped before committing them) are dashed;
// muted nodes are grey. With Options.Groups each node group's inner nodes
// are drawn as a cluster.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
