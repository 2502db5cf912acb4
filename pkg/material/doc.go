// Package material keeps layer and mask stacks in sync with a material node tree.
//
// # Overview
//
// A [Material] owns a node tree, an ordered layer stack, and one mask stack per
// layer. Each stack entry is backed by a group node plus a node group whose
// names encode the entry's current position (see package naming):
//
//	Metal_0      layer 0
//	Metal_0_0    mask 0 of layer 0
//	Metal_0_1    mask 1 of layer 0
//	Metal_1      layer 1
//
// The engine never stores a pointer from entry to node. Nodes are found again
// by formatting the name from the entry's index, so after every change in stack
// length or order the names must again form a contiguous range that mirrors the
// stack. Every command restores that before returning.
//
// # Command Pipeline
//
// Each command runs four steps in a fixed order, synchronously:
//
//  1. Stack mutation: insert, remove, or move the entry
//  2. Reindex: rename shifted nodes (and their node groups) to match positions
//  3. Relink: tear down and rebuild the chain of links through the stack
//  4. Layout: reposition the nodes in the editor
//
// Nodes that are created or moved before their position is final carry a
// provisional name ("Metal_0_1~"); reindexing commits them once the shifted
// neighbours have made room.
//
// # Errors
//
// Commands return a [Result] with a status message for display. Precondition
// failures (no material, no selected layer, bad index) return an error coded
// NO_ACTIVE_CONTEXT or INVALID_INDEX and leave the material untouched. A node
// that is missing while reindexing is a DESYNC error: the names no longer mirror
// the stack and [Material.Check] reports the damage.
package material
