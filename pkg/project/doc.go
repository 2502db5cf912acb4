// Package project persists materials as documents.
//
// A [Document] is the serialization format for one material: its node tree
// (nodes, links, node groups), the layer stack, and one mask stack per layer
// keyed by layer identity. It is used for JSON files, API responses, cache
// keys, and every [Store] backend.
//
//	doc := project.FromMaterial(m)
//	data, _ := project.Marshal(m)
//	m2, _ := doc.Material(material.WithLogger(logger))
//
// # Stores
//
//   - [FileStore]: one JSON file per material, for the CLI
//   - [MemoryStore]: in-process map, for tests and ephemeral servers
//   - [RedisStore]: shared storage for multi-instance servers
//   - [MongoStore]: durable storage with one document per material
//
// [Open] builds the store selected in the configuration and wraps it with
// observability hooks.
package project
