// Package api serves the layer engine over HTTP.
//
// Every request loads the material from a [project.Store], runs one command,
// and saves the result only when the command succeeded, so a failed command
// never persists a half-synced tree. Commands against the same material are
// serialized; different materials proceed in parallel.
//
// # Routes
//
//	GET    /materials                         list material names
//	GET    /materials/{name}                  stack snapshot
//	POST   /materials/{name}                  create an empty material
//	DELETE /materials/{name}                  delete a material
//	POST   /materials/{name}/layers/{op}      layer command (add, rm, up, down, dup, hide, select)
//	POST   /materials/{name}/masks/{op}       mask command on the selected layer
//	GET    /materials/{name}/check            consistency check
//	GET    /materials/{name}/graph            node tree as DOT or SVG (?format=, ?groups=)
//	GET    /materials/{name}/export           texture export plan (?object=)
//	GET    /metrics                           Prometheus metrics, when enabled with [WithMetrics]
//
// Command bodies are optional JSON: {"kind": "EDGE_WEAR"} for add,
// {"index": 2} for hide and select.
//
// [project.Store]: github.com/matzehuels/matlayer/pkg/project
package api
