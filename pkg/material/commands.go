package material

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/matzehuels/matlayer/pkg/errors"
	"github.com/matzehuels/matlayer/pkg/nodetree"
	"github.com/matzehuels/matlayer/pkg/observability"
	"github.com/matzehuels/matlayer/pkg/stack"
	"github.com/matzehuels/matlayer/pkg/templates"
)

// Result is the outcome of a command.
type Result struct {
	Status   string `json:"status"`   // Human-readable status message
	Selected int    `json:"selected"` // Selected index of the affected stack afterwards
}

// PropMute is the node property that mirrors an entry's hidden flag.
const PropMute = "mute"

// run wraps a command with the active-material check, hooks, and logging.
func (m *Material) run(ctx context.Context, command string, fn func() (Result, error)) (Result, error) {
	if m == nil || m.Tree == nil || m.Layers == nil {
		err := errors.New(errors.ErrCodeNoActiveContext, "no active material")
		return Result{Status: "No active material", Selected: stack.NoSelection}, err
	}
	start := time.Now()
	observability.Stack().OnCommandStart(ctx, m.Name, command)
	res, err := fn()
	duration := time.Since(start)
	observability.Stack().OnCommandComplete(ctx, m.Name, command, duration, err)

	if err != nil {
		if res.Status == "" {
			res.Status = errors.UserMessage(err)
		}
		m.Logger.Warn("command failed", "material", m.Name, "command", command, "error", err)
		return res, err
	}
	m.Logger.Info(res.Status, "material", m.Name, "command", command, "duration", duration)
	return res, nil
}

// fail builds the result and error for a precondition failure.
func fail(code errors.Code, selected int, format string, args ...any) (Result, error) {
	err := errors.New(code, format, args...)
	return Result{Status: err.Message, Selected: selected}, err
}

// =============================================================================
// Mask commands
// =============================================================================

// activeMasks returns the selected layer and its mask stack.
func (m *Material) activeMasks() (int, *stack.Stack, error) {
	layer := m.Layers.Selected()
	masks := m.MaskStack(layer)
	if masks == nil {
		return stack.NoSelection, nil, errors.New(errors.ErrCodeNoActiveContext, "no layer selected")
	}
	return layer, masks, nil
}

// AddMask adds a mask of the given kind to the selected layer, right after
// the selected mask or at index 0 when none is selected.
func (m *Material) AddMask(ctx context.Context, kind string) (Result, error) {
	return m.run(ctx, "mask.add", func() (Result, error) {
		layer, masks, err := m.activeMasks()
		if err != nil {
			return fail(errors.ErrCodeNoActiveContext, stack.NoSelection, "%s", errors.UserMessage(err))
		}
		tmpl, err := m.Library.Mask(kind)
		if err != nil {
			return Result{Status: errors.UserMessage(err), Selected: masks.Selected()}, err
		}

		i := masks.AddSlot(kind)
		if _, err := m.createEntry(m.maskName(layer, i, true), tmpl); err != nil {
			_, _ = masks.Remove(i)
			return Result{Selected: masks.Selected()}, err
		}
		if err := m.syncMasks(ctx, Added, layer, i); err != nil {
			return Result{Selected: i}, err
		}
		return Result{Status: fmt.Sprintf("Added %s mask", tmpl.Label), Selected: i}, nil
	})
}

// DeleteMask removes the selected mask of the selected layer.
func (m *Material) DeleteMask(ctx context.Context) (Result, error) {
	return m.run(ctx, "mask.delete", func() (Result, error) {
		layer, masks, err := m.activeMasks()
		if err != nil {
			return fail(errors.ErrCodeNoActiveContext, stack.NoSelection, "%s", errors.UserMessage(err))
		}
		i := masks.Selected()
		if i == stack.NoSelection {
			return fail(errors.ErrCodeNoActiveContext, i, "no mask selected")
		}

		if _, err := masks.Remove(i); err != nil {
			return Result{Selected: i}, errors.Wrap(errors.ErrCodeInvalidIndex, err, "remove mask %d", i)
		}
		if err := m.removeEntry(m.maskName(layer, i, false)); err != nil {
			return Result{Selected: masks.Selected()}, err
		}
		if err := m.syncMasks(ctx, Deleted, layer, i); err != nil {
			return Result{Selected: masks.Selected()}, err
		}
		return Result{Status: "Deleted mask", Selected: masks.Selected()}, nil
	})
}

// MoveMaskUp moves the selected mask one position toward the top (index 0).
func (m *Material) MoveMaskUp(ctx context.Context) (Result, error) {
	return m.moveMask(ctx, "mask.up", -1)
}

// MoveMaskDown moves the selected mask one position toward the bottom.
func (m *Material) MoveMaskDown(ctx context.Context) (Result, error) {
	return m.moveMask(ctx, "mask.down", 1)
}

func (m *Material) moveMask(ctx context.Context, command string, delta int) (Result, error) {
	return m.run(ctx, command, func() (Result, error) {
		layer, masks, err := m.activeMasks()
		if err != nil {
			return fail(errors.ErrCodeNoActiveContext, stack.NoSelection, "%s", errors.UserMessage(err))
		}
		from := masks.Selected()
		if from == stack.NoSelection {
			return fail(errors.ErrCodeNoActiveContext, from, "no mask selected")
		}
		to := from + delta
		if to < 0 || to >= masks.Len() {
			return Result{Status: "Mask is already at the end of the stack", Selected: from}, nil
		}

		// Park the node under its target's provisional name, then compose the
		// move from a removal and an insertion.
		if err := m.renameEntry(m.maskName(layer, from, false), m.maskName(layer, to, true)); err != nil {
			return Result{Selected: from}, err
		}
		e, err := masks.Remove(from)
		if err != nil {
			return Result{Selected: from}, errors.Wrap(errors.ErrCodeInvalidIndex, err, "remove mask %d", from)
		}
		if err := m.ReindexMasksContext(ctx, Deleted, layer, from); err != nil {
			return Result{Selected: from}, err
		}
		if err := masks.Insert(to, e); err != nil {
			return Result{Selected: from}, errors.Wrap(errors.ErrCodeInternal, err, "insert mask %d", to)
		}
		_ = masks.Select(to)
		if err := m.syncMasks(ctx, Added, layer, to); err != nil {
			return Result{Selected: to}, err
		}
		return Result{Status: fmt.Sprintf("Moved mask to position %d", to), Selected: to}, nil
	})
}

// DuplicateMask copies the selected mask, node group included, directly
// below it and selects the copy.
func (m *Material) DuplicateMask(ctx context.Context) (Result, error) {
	return m.run(ctx, "mask.duplicate", func() (Result, error) {
		layer, masks, err := m.activeMasks()
		if err != nil {
			return fail(errors.ErrCodeNoActiveContext, stack.NoSelection, "%s", errors.UserMessage(err))
		}
		src := masks.Selected()
		e, ok := masks.Entry(src)
		if !ok {
			return fail(errors.ErrCodeNoActiveContext, src, "no mask selected")
		}
		dst := src + 1
		dup := stack.Entry{ID: masks.NewIdentity(), Kind: e.Kind, Hidden: e.Hidden}

		if err := masks.Insert(dst, dup); err != nil {
			return Result{Selected: src}, errors.Wrap(errors.ErrCodeInternal, err, "insert mask %d", dst)
		}
		if _, err := m.copyEntry(m.maskName(layer, src, false), m.maskName(layer, dst, true)); err != nil {
			_, _ = masks.Remove(dst)
			return Result{Selected: src}, err
		}
		_ = masks.Select(dst)
		if err := m.syncMasks(ctx, Added, layer, dst); err != nil {
			return Result{Selected: dst}, err
		}
		return Result{Status: "Duplicated mask", Selected: dst}, nil
	})
}

// ToggleMaskHidden flips the hidden flag of mask i of the selected layer.
func (m *Material) ToggleMaskHidden(ctx context.Context, i int) (Result, error) {
	return m.run(ctx, "mask.hide", func() (Result, error) {
		layer, masks, err := m.activeMasks()
		if err != nil {
			return fail(errors.ErrCodeNoActiveContext, stack.NoSelection, "%s", errors.UserMessage(err))
		}
		e, ok := masks.Entry(i)
		if !ok {
			return fail(errors.ErrCodeInvalidIndex, masks.Selected(), "mask index %d out of range", i)
		}
		_ = masks.SetHidden(i, !e.Hidden)
		if node := m.MaskNode(RoleMask, layer, i, false); node != nil {
			node.Props[PropMute] = !e.Hidden
		}
		return Result{Status: visibilityStatus("Mask", !e.Hidden), Selected: masks.Selected()}, nil
	})
}

// SelectMask selects mask i of the selected layer.
func (m *Material) SelectMask(ctx context.Context, i int) (Result, error) {
	return m.run(ctx, "mask.select", func() (Result, error) {
		_, masks, err := m.activeMasks()
		if err != nil {
			return fail(errors.ErrCodeNoActiveContext, stack.NoSelection, "%s", errors.UserMessage(err))
		}
		if err := masks.Select(i); err != nil {
			return fail(errors.ErrCodeInvalidIndex, masks.Selected(), "mask index %d out of range", i)
		}
		return Result{Status: fmt.Sprintf("Selected mask %d", i), Selected: i}, nil
	})
}

// syncMasks runs the reindex, relink, and layout steps for one layer.
func (m *Material) syncMasks(ctx context.Context, kind Change, layer, affected int) error {
	if err := m.ReindexMasksContext(ctx, kind, layer, affected); err != nil {
		return err
	}
	if err := m.RelinkMasksContext(ctx, layer); err != nil {
		return err
	}
	m.OrganizeMasks(layer)
	return nil
}

// =============================================================================
// Layer commands
// =============================================================================

// AddLayer adds a layer of the given kind right after the selected layer, or
// at index 0 when none is selected.
func (m *Material) AddLayer(ctx context.Context, kind string) (Result, error) {
	return m.run(ctx, "layer.add", func() (Result, error) {
		tmpl, err := m.Library.Layer(kind)
		if err != nil {
			return Result{Status: errors.UserMessage(err), Selected: m.Layers.Selected()}, err
		}

		i := m.Layers.AddSlot(kind)
		e, _ := m.Layers.Entry(i)
		if _, err := m.createEntry(m.layerName(i, true), tmpl); err != nil {
			_, _ = m.Layers.Remove(i)
			return Result{Selected: m.Layers.Selected()}, err
		}
		m.Masks[e.ID] = stack.New(m.stackOpts...)
		if err := m.syncLayers(ctx, Added, i); err != nil {
			return Result{Selected: i}, err
		}
		return Result{Status: fmt.Sprintf("Added %s layer", tmpl.Label), Selected: i}, nil
	})
}

// DeleteLayer removes the selected layer together with all of its masks.
func (m *Material) DeleteLayer(ctx context.Context) (Result, error) {
	return m.run(ctx, "layer.delete", func() (Result, error) {
		i := m.Layers.Selected()
		if i == stack.NoSelection {
			return fail(errors.ErrCodeNoActiveContext, i, "no layer selected")
		}
		e, err := m.Layers.Remove(i)
		if err != nil {
			return Result{Selected: i}, errors.Wrap(errors.ErrCodeInvalidIndex, err, "remove layer %d", i)
		}
		if masks := m.Masks[e.ID]; masks != nil {
			for k := range masks.Len() {
				if err := m.removeEntry(m.maskName(i, k, false)); err != nil {
					return Result{Selected: m.Layers.Selected()}, err
				}
			}
		}
		delete(m.Masks, e.ID)
		if err := m.removeEntry(m.layerName(i, false)); err != nil {
			return Result{Selected: m.Layers.Selected()}, err
		}
		if err := m.syncLayers(ctx, Deleted, i); err != nil {
			return Result{Selected: m.Layers.Selected()}, err
		}
		return Result{Status: "Deleted layer", Selected: m.Layers.Selected()}, nil
	})
}

// MoveLayerUp moves the selected layer one position toward the top (index 0).
func (m *Material) MoveLayerUp(ctx context.Context) (Result, error) {
	return m.moveLayer(ctx, "layer.up", -1)
}

// MoveLayerDown moves the selected layer one position toward the bottom.
func (m *Material) MoveLayerDown(ctx context.Context) (Result, error) {
	return m.moveLayer(ctx, "layer.down", 1)
}

func (m *Material) moveLayer(ctx context.Context, command string, delta int) (Result, error) {
	return m.run(ctx, command, func() (Result, error) {
		from := m.Layers.Selected()
		if from == stack.NoSelection {
			return fail(errors.ErrCodeNoActiveContext, from, "no layer selected")
		}
		to := from + delta
		if to < 0 || to >= m.Layers.Len() {
			return Result{Status: "Layer is already at the end of the stack", Selected: from}, nil
		}

		if err := m.parkLayer(from, to); err != nil {
			return Result{Selected: from}, err
		}
		e, err := m.Layers.Remove(from)
		if err != nil {
			return Result{Selected: from}, errors.Wrap(errors.ErrCodeInvalidIndex, err, "remove layer %d", from)
		}
		if err := m.ReindexLayersContext(ctx, Deleted, from); err != nil {
			return Result{Selected: from}, err
		}
		if err := m.Layers.Insert(to, e); err != nil {
			return Result{Selected: from}, errors.Wrap(errors.ErrCodeInternal, err, "insert layer %d", to)
		}
		_ = m.Layers.Select(to)
		if err := m.syncLayers(ctx, Added, to); err != nil {
			return Result{Selected: to}, err
		}
		return Result{Status: fmt.Sprintf("Moved layer to position %d", to), Selected: to}, nil
	})
}

// parkLayer renames layer from and its masks to the provisional names of
// position to.
func (m *Material) parkLayer(from, to int) error {
	if err := m.renameEntry(m.layerName(from, false), m.layerName(to, true)); err != nil {
		return err
	}
	if masks := m.MaskStack(from); masks != nil {
		for k := range masks.Len() {
			if err := m.renameEntry(m.maskName(from, k, false), m.maskName(to, k, true)); err != nil {
				return err
			}
		}
	}
	return nil
}

// DuplicateLayer copies the selected layer and all of its masks directly
// below it and selects the copy. Copies get fresh identities.
func (m *Material) DuplicateLayer(ctx context.Context) (Result, error) {
	return m.run(ctx, "layer.duplicate", func() (Result, error) {
		src := m.Layers.Selected()
		e, ok := m.Layers.Entry(src)
		if !ok {
			return fail(errors.ErrCodeNoActiveContext, src, "no layer selected")
		}
		dst := src + 1
		dup := stack.Entry{ID: m.Layers.NewIdentity(), Kind: e.Kind, Hidden: e.Hidden}

		srcMasks := m.Masks[e.ID]
		if srcMasks == nil {
			srcMasks = stack.New()
		}
		dupMasks := stack.New(m.stackOpts...)
		for _, me := range srcMasks.Entries() {
			_ = dupMasks.Insert(dupMasks.Len(), stack.Entry{ID: dupMasks.NewIdentity(), Kind: me.Kind, Hidden: me.Hidden})
		}
		if sel := srcMasks.Selected(); sel != stack.NoSelection {
			_ = dupMasks.Select(sel)
		}

		if _, err := m.copyEntry(m.layerName(src, false), m.layerName(dst, true)); err != nil {
			return Result{Selected: src}, err
		}
		for k := range dupMasks.Len() {
			if _, err := m.copyEntry(m.maskName(src, k, false), m.maskName(dst, k, true)); err != nil {
				return Result{Selected: src}, err
			}
		}
		if err := m.Layers.Insert(dst, dup); err != nil {
			return Result{Selected: src}, errors.Wrap(errors.ErrCodeInternal, err, "insert layer %d", dst)
		}
		m.Masks[dup.ID] = dupMasks
		_ = m.Layers.Select(dst)
		if err := m.syncLayers(ctx, Added, dst); err != nil {
			return Result{Selected: dst}, err
		}
		return Result{Status: "Duplicated layer", Selected: dst}, nil
	})
}

// ToggleLayerHidden flips the hidden flag of layer i.
func (m *Material) ToggleLayerHidden(ctx context.Context, i int) (Result, error) {
	return m.run(ctx, "layer.hide", func() (Result, error) {
		e, ok := m.Layers.Entry(i)
		if !ok {
			return fail(errors.ErrCodeInvalidIndex, m.Layers.Selected(), "layer index %d out of range", i)
		}
		_ = m.Layers.SetHidden(i, !e.Hidden)
		if node := m.LayerNode(RoleLayer, i, false); node != nil {
			node.Props[PropMute] = !e.Hidden
		}
		return Result{Status: visibilityStatus("Layer", !e.Hidden), Selected: m.Layers.Selected()}, nil
	})
}

// SelectLayer selects layer i.
func (m *Material) SelectLayer(ctx context.Context, i int) (Result, error) {
	return m.run(ctx, "layer.select", func() (Result, error) {
		if err := m.Layers.Select(i); err != nil {
			return fail(errors.ErrCodeInvalidIndex, m.Layers.Selected(), "layer index %d out of range", i)
		}
		return Result{Status: fmt.Sprintf("Selected layer %d", i), Selected: i}, nil
	})
}

// syncLayers runs the reindex, relink, and layout steps for the layer stack.
// Every mask chain is relinked as well since layer nodes may have moved.
func (m *Material) syncLayers(ctx context.Context, kind Change, affected int) error {
	if err := m.ReindexLayersContext(ctx, kind, affected); err != nil {
		return err
	}
	if err := m.RelinkLayersContext(ctx); err != nil {
		return err
	}
	for i := range m.Layers.Len() {
		if err := m.RelinkMasksContext(ctx, i); err != nil {
			return err
		}
	}
	m.OrganizeLayers()
	return nil
}

func visibilityStatus(what string, hidden bool) string {
	if hidden {
		return what + " hidden"
	}
	return what + " shown"
}

// =============================================================================
// Entry nodes
// =============================================================================

// createEntry instantiates tmpl as a node group and adds a group node for it,
// both named name.
func (m *Material) createEntry(name string, tmpl templates.Template) (*nodetree.Node, error) {
	g := tmpl.Instantiate(name)
	if err := m.Tree.AddGroup(g); err != nil {
		return nil, errors.Wrap(errors.ErrCodeNameCollision, err, "create node group %s", name)
	}
	node, err := m.Tree.NewGroupNode(name, g)
	if err != nil {
		_ = m.Tree.RemoveGroup(name)
		return nil, errors.Wrap(errors.ErrCodeNameCollision, err, "create node %s", name)
	}
	node.Label = tmpl.Label
	node.Props["kind"] = tmpl.Kind
	return node, nil
}

// copyEntry duplicates the group node src and its node group under dst.
func (m *Material) copyEntry(src, dst string) (*nodetree.Node, error) {
	node := m.Tree.Node(src)
	if node == nil {
		return nil, errors.New(errors.ErrCodeDesync, "expected node %s is missing", src)
	}
	g, err := m.Tree.CopyGroup(node.Group, dst)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNameCollision, err, "copy node group %s", node.Group)
	}
	cp, err := m.Tree.NewGroupNode(dst, g)
	if err != nil {
		_ = m.Tree.RemoveGroup(dst)
		return nil, errors.Wrap(errors.ErrCodeNameCollision, err, "copy node %s", src)
	}
	cp.Label = node.Label
	cp.Props = maps.Clone(node.Props)
	return cp, nil
}

// removeEntry deletes the group node name and its node group.
func (m *Material) removeEntry(name string) error {
	node := m.Tree.Node(name)
	if node == nil {
		return errors.New(errors.ErrCodeDesync, "expected node %s is missing", name)
	}
	group := node.Group
	if err := m.Tree.RemoveNode(name); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "remove node %s", name)
	}
	if group != "" {
		if err := m.Tree.RemoveGroup(group); err != nil {
			return errors.Wrap(errors.ErrCodeDesync, err, "remove node group %s", group)
		}
	}
	return nil
}
