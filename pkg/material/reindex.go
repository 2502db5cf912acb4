package material

import (
	"context"
	stderrors "errors"

	"github.com/matzehuels/matlayer/pkg/errors"
	"github.com/matzehuels/matlayer/pkg/nodetree"
	"github.com/matzehuels/matlayer/pkg/observability"
)

// Change is the kind of stack mutation a reindex pass follows.
type Change int

const (
	// Added means an entry was inserted at the affected index and its node
	// still carries a provisional name.
	Added Change = iota
	// Deleted means the entry at the affected index and its node were removed.
	Deleted
)

func (c Change) String() string {
	if c == Added {
		return "ADDED"
	}
	return "DELETED"
}

// ReindexMasks renames the mask nodes of layer so their encoded indices match
// the mask stack again after a change at index affected.
//
// For Added, every node at index >= affected moves up by one, highest first, and
// the provisional node at affected is committed. For Deleted, every node above
// affected moves down by one, lowest first. A node missing from the expected
// range is a DESYNC error and stops the pass.
func (m *Material) ReindexMasks(kind Change, layer, affected int) error {
	return m.ReindexMasksContext(context.Background(), kind, layer, affected)
}

// ReindexMasksContext is [Material.ReindexMasks] with a context for hooks.
func (m *Material) ReindexMasksContext(ctx context.Context, kind Change, layer, affected int) error {
	if m == nil || m.Tree == nil || m.Layers == nil {
		return errors.New(errors.ErrCodeNoActiveContext, "no active material")
	}
	masks := m.MaskStack(layer)
	if masks == nil {
		return errors.New(errors.ErrCodeNoActiveContext, "no layer %d in material %s", layer, m.Name)
	}
	r := renamer{m: m}
	n := masks.Len()
	switch kind {
	case Added:
		for i := n - 2; i >= affected; i-- {
			r.rename(m.maskName(layer, i, false), m.maskName(layer, i+1, false))
		}
		r.rename(m.maskName(layer, affected, true), m.maskName(layer, affected, false))
	case Deleted:
		for i := affected + 1; i <= n; i++ {
			r.rename(m.maskName(layer, i, false), m.maskName(layer, i-1, false))
		}
	}
	observability.Stack().OnReindex(ctx, m.Name, kind.String(), r.renamed, r.err)
	m.Logger.Debug("reindexed masks", "layer", layer, "change", kind, "at", affected, "renamed", r.renamed)
	return r.err
}

// ReindexLayers renames layer nodes after a change at index affected, following
// the same rules as [Material.ReindexMasks]. Mask names embed the layer index,
// so every mask node of a shifted layer is renamed with it. The provisional
// layer committed on Added takes its provisional mask nodes along.
func (m *Material) ReindexLayers(kind Change, affected int) error {
	return m.ReindexLayersContext(context.Background(), kind, affected)
}

// ReindexLayersContext is [Material.ReindexLayers] with a context for hooks.
func (m *Material) ReindexLayersContext(ctx context.Context, kind Change, affected int) error {
	if m == nil || m.Tree == nil || m.Layers == nil {
		return errors.New(errors.ErrCodeNoActiveContext, "no active material")
	}
	r := renamer{m: m}
	n := m.Layers.Len()

	// shift renames the layer found at index to (stack index after the change)
	// from old to new, masks included.
	shift := func(from, to, index int, provisional bool) {
		r.rename(m.layerName(from, provisional), m.layerName(to, false))
		if masks := m.MaskStack(index); masks != nil {
			for k := range masks.Len() {
				r.rename(m.maskName(from, k, provisional), m.maskName(to, k, false))
			}
		}
	}

	switch kind {
	case Added:
		for i := n - 2; i >= affected; i-- {
			shift(i, i+1, i+1, false)
		}
		shift(affected, affected, affected, true)
	case Deleted:
		for i := affected + 1; i <= n; i++ {
			shift(i, i-1, i-1, false)
		}
	}
	observability.Stack().OnReindex(ctx, m.Name, kind.String(), r.renamed, r.err)
	m.Logger.Debug("reindexed layers", "change", kind, "at", affected, "renamed", r.renamed)
	return r.err
}

// renamer renames group nodes together with their node groups and stops at the
// first failure.
type renamer struct {
	m       *Material
	renamed int
	err     error
}

func (r *renamer) rename(oldName, newName string) {
	if r.err != nil {
		return
	}
	if err := r.m.renameEntry(oldName, newName); err != nil {
		r.err = err
		return
	}
	r.renamed++
}

// renameEntry renames the group node oldName and its node group to newName.
func (m *Material) renameEntry(oldName, newName string) error {
	node := m.Tree.Node(oldName)
	if node == nil {
		return errors.New(errors.ErrCodeDesync, "expected node %s is missing", oldName)
	}
	if err := m.Tree.RenameNode(oldName, newName); err != nil {
		return renameError(err, oldName, newName)
	}
	if node.Group != "" && node.Group != newName {
		if err := m.Tree.RenameGroup(node.Group, newName); err != nil {
			// Keep node and group names paired.
			if undo := m.Tree.RenameNode(newName, oldName); undo != nil {
				m.Logger.Error("rename rollback failed", "node", newName, "error", undo)
			}
			return renameError(err, node.Group, newName)
		}
	}
	return nil
}

func renameError(err error, oldName, newName string) error {
	if stderrors.Is(err, nodetree.ErrDuplicateName) {
		return errors.Wrap(errors.ErrCodeDesync, err, "rename %s to %s: target name in use", oldName, newName)
	}
	return errors.Wrap(errors.ErrCodeDesync, err, "rename %s to %s", oldName, newName)
}
