package material

import (
	"context"
	"slices"

	"github.com/matzehuels/matlayer/pkg/errors"
)

// Target selects the stack a dispatched command operates on.
type Target string

const (
	TargetLayer Target = "layers"
	TargetMask  Target = "masks"
)

// Op names a command. The names match the CLI subcommands.
type Op string

const (
	OpAdd       Op = "add"
	OpDelete    Op = "rm"
	OpUp        Op = "up"
	OpDown      Op = "down"
	OpDuplicate Op = "dup"
	OpHide      Op = "hide"
	OpSelect    Op = "select"
)

// Ops lists every dispatchable op.
var Ops = []Op{OpAdd, OpDelete, OpUp, OpDown, OpDuplicate, OpHide, OpSelect}

// Args carries the per-op arguments. Kind is read by OpAdd, Index by OpHide
// and OpSelect.
type Args struct {
	Kind  string `json:"kind,omitempty"`
	Index int    `json:"index"`
}

// Exec runs op against target by name.
func (m *Material) Exec(ctx context.Context, target Target, op Op, args Args) (Result, error) {
	if !slices.Contains(Ops, op) {
		return fail(errors.ErrCodeInvalidInput, m.selected(target), "unknown command %q", op)
	}
	switch target {
	case TargetLayer:
		switch op {
		case OpAdd:
			return m.AddLayer(ctx, args.Kind)
		case OpDelete:
			return m.DeleteLayer(ctx)
		case OpUp:
			return m.MoveLayerUp(ctx)
		case OpDown:
			return m.MoveLayerDown(ctx)
		case OpDuplicate:
			return m.DuplicateLayer(ctx)
		case OpHide:
			return m.ToggleLayerHidden(ctx, args.Index)
		case OpSelect:
			return m.SelectLayer(ctx, args.Index)
		}
	case TargetMask:
		switch op {
		case OpAdd:
			return m.AddMask(ctx, args.Kind)
		case OpDelete:
			return m.DeleteMask(ctx)
		case OpUp:
			return m.MoveMaskUp(ctx)
		case OpDown:
			return m.MoveMaskDown(ctx)
		case OpDuplicate:
			return m.DuplicateMask(ctx)
		case OpHide:
			return m.ToggleMaskHidden(ctx, args.Index)
		case OpSelect:
			return m.SelectMask(ctx, args.Index)
		}
	}
	return fail(errors.ErrCodeInvalidInput, m.selected(target), "unknown target %q", target)
}

// selected returns the selection of target's stack, or -1.
func (m *Material) selected(target Target) int {
	if m == nil || m.Layers == nil {
		return -1
	}
	if target == TargetLayer {
		return m.Layers.Selected()
	}
	if masks := m.MaskStack(m.Layers.Selected()); masks != nil {
		return masks.Selected()
	}
	return -1
}
