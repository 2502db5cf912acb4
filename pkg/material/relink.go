package material

import (
	"context"

	"github.com/matzehuels/matlayer/pkg/errors"
	"github.com/matzehuels/matlayer/pkg/nodetree"
	"github.com/matzehuels/matlayer/pkg/observability"
	"github.com/matzehuels/matlayer/pkg/templates"
)

// RelinkMasks rebuilds the mask chain of layer from scratch: every input link
// of every mask node is removed, mask i feeds the last input of mask i+1, and
// the last mask feeds the layer's LayerMask input. Running it twice yields the
// same links.
func (m *Material) RelinkMasks(layer int) error {
	return m.RelinkMasksContext(context.Background(), layer)
}

// RelinkMasksContext is [Material.RelinkMasks] with a context for hooks.
func (m *Material) RelinkMasksContext(ctx context.Context, layer int) error {
	if m == nil || m.Tree == nil || m.Layers == nil {
		return errors.New(errors.ErrCodeNoActiveContext, "no active material")
	}
	masks := m.MaskStack(layer)
	if masks == nil {
		return errors.New(errors.ErrCodeNoActiveContext, "no layer %d in material %s", layer, m.Name)
	}
	nodes := make([]*nodetree.Node, 0, masks.Len())
	for i := range masks.Len() {
		node := m.MaskNode(RoleMask, layer, i, false)
		if err := require(node, m.maskName(layer, i, false)); errors.Recoverable(err) {
			m.Logger.Debug("relink skipped node", "error", err)
			continue
		}
		m.Tree.DisconnectInputs(node)
		nodes = append(nodes, node)
	}

	layerNode := m.LayerNode(RoleLayer, layer, false)
	if layerNode != nil && len(nodes) == 0 {
		m.disconnect(layerNode, templates.SocketLayerMask)
	}
	links, err := m.chain(nodes, func(n *nodetree.Node) string { return lastInput(n) }, layerNode, templates.SocketLayerMask)
	observability.Stack().OnRelink(ctx, m.Name, links, err)
	return err
}

// RelinkLayers rebuilds the layer chain: each layer's Base input is cleared,
// layer i feeds the Base input of layer i+1, and the last layer feeds the
// output node's Surface input. Mask links into LayerMask are left alone.
func (m *Material) RelinkLayers() error {
	return m.RelinkLayersContext(context.Background())
}

// RelinkLayersContext is [Material.RelinkLayers] with a context for hooks.
func (m *Material) RelinkLayersContext(ctx context.Context) error {
	if m == nil || m.Tree == nil || m.Layers == nil {
		return errors.New(errors.ErrCodeNoActiveContext, "no active material")
	}
	nodes := make([]*nodetree.Node, 0, m.Layers.Len())
	for i := range m.Layers.Len() {
		node := m.LayerNode(RoleLayer, i, false)
		if err := require(node, m.layerName(i, false)); errors.Recoverable(err) {
			m.Logger.Debug("relink skipped node", "error", err)
			continue
		}
		m.disconnect(node, templates.SocketBase)
		nodes = append(nodes, node)
	}

	out := m.Output()
	if out != nil && len(nodes) == 0 {
		m.disconnect(out, templates.SocketSurface)
	}
	links, err := m.chain(nodes, func(*nodetree.Node) string { return templates.SocketBase }, out, templates.SocketSurface)
	observability.Stack().OnRelink(ctx, m.Name, links, err)
	return err
}

// chain links nodes in order through input(next) and the last node into
// terminal's socket. A nil terminal is skipped.
func (m *Material) chain(nodes []*nodetree.Node, input func(*nodetree.Node) string, terminal *nodetree.Node, socket string) (int, error) {
	links := 0
	for i := 0; i+1 < len(nodes); i++ {
		if err := m.connect(nodes[i], nodes[i+1], input(nodes[i+1])); err != nil {
			return links, err
		}
		links++
	}
	if terminal != nil && len(nodes) > 0 {
		if err := m.connect(nodes[len(nodes)-1], terminal, socket); err != nil {
			return links, err
		}
		links++
	}
	return links, nil
}

func (m *Material) connect(from, to *nodetree.Node, in string) error {
	if len(from.Outputs) == 0 || in == "" {
		return errors.New(errors.ErrCodeInternal, "cannot link %s to %s: missing sockets", from.Name, to.Name)
	}
	if err := m.Tree.Connect(from, from.Outputs[0], to, in); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "link %s to %s.%s", from.Name, to.Name, in)
	}
	return nil
}

// disconnect removes the link into one input socket of n.
func (m *Material) disconnect(n *nodetree.Node, in string) {
	if l, ok := m.Tree.InputLink(n, in); ok {
		m.Tree.RemoveLink(l)
	}
}

// require reports a nil lookup result for name as NODE_NOT_FOUND.
func require(node *nodetree.Node, name string) error {
	if node == nil {
		return errors.New(errors.ErrCodeNodeNotFound, "node %s not found", name)
	}
	return nil
}

func lastInput(n *nodetree.Node) string {
	if len(n.Inputs) == 0 {
		return ""
	}
	return n.Inputs[len(n.Inputs)-1]
}
