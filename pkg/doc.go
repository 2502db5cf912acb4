// Package pkg provides the core libraries for matlayer, a layer-based texturing
// engine that keeps layer and mask stacks in sync with a material node graph.
//
// # Overview
//
// A material is painted as a stack of layers. Every layer carries its own stack
// of masks. Each stack entry is backed by a node in the material node tree whose
// name encodes its position, so every stack edit has to rename, relink and
// re-place the graph to match. The pkg directory is organized into four areas:
//
//  1. Engine - [stack], [naming], [nodetree], [templates], [material]
//  2. Persistence - [project], [cache], [config]
//  3. Output - [render], [render/nodelink], [export]
//  4. Surfaces - [api], [httputil], [observability], [errors], [buildinfo]
//
// # Architecture
//
// Every command runs its phases in a fixed order:
//
//	stack mutation (pkg/stack)
//	         ↓
//	reindex: shift encoded node names (pkg/material)
//	         ↓
//	relink: rebuild the chain of links (pkg/material)
//	         ↓
//	layout: re-place nodes in the editor (pkg/material)
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/matzehuels/matlayer/pkg/material"
//	    "github.com/matzehuels/matlayer/pkg/render/nodelink"
//	)
//
//	ctx := context.Background()
//	m, _ := material.New("Rock")
//	m.AddLayer(ctx, "COLOR")
//	m.AddMask(ctx, "EDGE_WEAR")
//	if err := m.Check(); err != nil {
//	    // the stacks and the graph disagree
//	}
//	dot := nodelink.ToDOT(m.Tree, nodelink.Options{})
//
// # Main Packages
//
// [stack] - Ordered entries with stable identities and a selection cursor.
//
// [naming] - Formatting and parsing of position-encoded node names, including
// the provisional "~" suffix.
//
// [nodetree] - In-memory material node tree: nodes, sockets, links and node
// groups. Stands in for the host application's graph.
//
// [templates] - Embedded TOML node-group templates for every layer and mask kind.
//
// [material] - The command boundary: accessor, reindexer, relinker, layout,
// consistency check and the op dispatcher shared by the CLI and the API.
//
// [project] - Document encoding and the Store backends (file, Redis, MongoDB,
// memory).
//
// [cache] - Cache interface with file, Redis and null backends, plus key
// derivation for rendered graphs and export plans.
//
// [export] - Bake job planning for texture channels.
//
// [render/nodelink] - Graphviz DOT and SVG output of the material graph.
//
// [api] - HTTP server exposing the command boundary.
//
// [stack]: https://pkg.go.dev/github.com/matzehuels/matlayer/pkg/stack
// [naming]: https://pkg.go.dev/github.com/matzehuels/matlayer/pkg/naming
// [nodetree]: https://pkg.go.dev/github.com/matzehuels/matlayer/pkg/nodetree
// [templates]: https://pkg.go.dev/github.com/matzehuels/matlayer/pkg/templates
// [material]: https://pkg.go.dev/github.com/matzehuels/matlayer/pkg/material
// [project]: https://pkg.go.dev/github.com/matzehuels/matlayer/pkg/project
// [cache]: https://pkg.go.dev/github.com/matzehuels/matlayer/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/matlayer/pkg/config
// [render]: https://pkg.go.dev/github.com/matzehuels/matlayer/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/matlayer/pkg/render/nodelink
// [export]: https://pkg.go.dev/github.com/matzehuels/matlayer/pkg/export
// [api]: https://pkg.go.dev/github.com/matzehuels/matlayer/pkg/api
// [httputil]: https://pkg.go.dev/github.com/matzehuels/matlayer/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/matlayer/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/matlayer/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/matlayer/pkg/buildinfo
package pkg
