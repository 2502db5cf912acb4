// Package nodetree provides the material node tree the layer engine compiles into.
//
// # Overview
//
// A [Tree] stands in for the host application's material graph. It exposes the
// small provider surface the layer engine needs:
//
//   - create and remove nodes ([Tree.NewNode], [Tree.RemoveNode])
//   - find a node by name ([Tree.Node])
//   - connect sockets and tear down input links ([Tree.Connect], [Tree.DisconnectInputs])
//   - rename nodes ([Tree.RenameNode])
//
// plus a registry of node groups ([Group]), the subgraphs that back group nodes.
// The engine never touches shader math, only topology and naming.
//
// # Identity
//
// Every node carries a stable opaque [Node.ID] (a UUID) assigned at creation.
// Links refer to nodes by ID, so renaming a node never disturbs its connections.
// The name is a unique, mutable label: the engine keeps it in sync with the stack
// position of the entry the node represents, and it is the key [Tree.Node] looks up.
//
// # Sockets
//
// Sockets are identified by name. An input socket accepts at most one link;
// connecting to an occupied input replaces the existing link, matching how
// shader editors behave. Output sockets fan out freely.
//
// # Concurrency
//
// Tree is not safe for concurrent use without external synchronization.
package nodetree
