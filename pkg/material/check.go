package material

import (
	stderrors "errors"
	"fmt"

	"github.com/matzehuels/matlayer/pkg/errors"
	"github.com/matzehuels/matlayer/pkg/naming"
)

// Check verifies that the generated node names mirror the stacks: for the layer
// stack and every mask stack, each index in [0, len) has exactly one node and
// node group, and no other generated name (including provisional leftovers)
// exists. All problems are reported together in one DESYNC error.
func (m *Material) Check() error {
	if m == nil || m.Tree == nil || m.Layers == nil {
		return errors.New(errors.ErrCodeNoActiveContext, "no active material")
	}
	var problems []error
	addf := func(format string, args ...any) {
		problems = append(problems, fmt.Errorf(format, args...))
	}

	seen := make(map[string]bool)
	for _, node := range m.Tree.Nodes() {
		p, ok := naming.Parse(m.Name, node.Name)
		if !ok {
			continue
		}
		seen[node.Name] = true
		switch {
		case p.Provisional:
			addf("provisional node %s was never committed", node.Name)
		case p.Layer >= m.Layers.Len():
			addf("node %s has no layer entry", node.Name)
		case p.IsMask() && (m.MaskStack(p.Layer) == nil || p.Mask >= m.MaskStack(p.Layer).Len()):
			addf("node %s has no mask entry", node.Name)
		}
		if node.Group != node.Name {
			addf("node %s is backed by node group %q", node.Name, node.Group)
		} else if m.Tree.Group(node.Group) == nil {
			addf("node group %s is missing", node.Group)
		}
	}

	for i := range m.Layers.Len() {
		if name := m.layerName(i, false); !seen[name] {
			addf("layer %d has no node %s", i, name)
		}
		masks := m.MaskStack(i)
		if masks == nil {
			addf("layer %d has no mask stack", i)
			continue
		}
		for k := range masks.Len() {
			if name := m.maskName(i, k, false); !seen[name] {
				addf("mask %d of layer %d has no node %s", k, i, name)
			}
		}
	}

	if len(problems) > 0 {
		return errors.Wrap(errors.ErrCodeDesync, stderrors.Join(problems...), "material %s is out of sync", m.Name)
	}
	return nil
}
