package material

import (
	"github.com/matzehuels/matlayer/pkg/nodetree"
	"github.com/matzehuels/matlayer/pkg/templates"
)

// Role selects which node of an entry an accessor returns.
type Role int

const (
	// RoleMask is a mask's own group node in the material tree.
	RoleMask Role = iota
	// RoleLayer is a layer's own group node in the material tree.
	RoleLayer
	// RoleMix is the MASK_MIX or LAYER_MIX node inside the backing node group.
	RoleMix
	// RoleProjection is the PROJECTION node inside the backing node group.
	RoleProjection
	// RoleOpacity is the OPACITY node inside a layer's node group.
	RoleOpacity
)

func (r Role) String() string {
	switch r {
	case RoleMask:
		return "mask"
	case RoleLayer:
		return "layer"
	case RoleMix:
		return "mix"
	case RoleProjection:
		return "projection"
	case RoleOpacity:
		return "opacity"
	}
	return "unknown"
}

// MaskNode returns a node belonging to mask mask of layer layer, looked up by
// its formatted name. It returns nil when the material has no tree or no such
// node exists; callers treat nil as "nothing to do".
func (m *Material) MaskNode(role Role, layer, mask int, provisional bool) *nodetree.Node {
	if m == nil || m.Tree == nil {
		return nil
	}
	node := m.Tree.Node(m.maskName(layer, mask, provisional))
	switch role {
	case RoleMask:
		return node
	case RoleMix:
		return m.inner(node, templates.NodeMaskMix)
	case RoleProjection:
		return m.inner(node, templates.NodeProjection)
	}
	return nil
}

// LayerNode returns a node belonging to layer layer. It follows the same
// nil-on-miss contract as [Material.MaskNode].
func (m *Material) LayerNode(role Role, layer int, provisional bool) *nodetree.Node {
	if m == nil || m.Tree == nil {
		return nil
	}
	node := m.Tree.Node(m.layerName(layer, provisional))
	switch role {
	case RoleLayer:
		return node
	case RoleMix:
		return m.inner(node, templates.NodeLayerMix)
	case RoleProjection:
		return m.inner(node, templates.NodeProjection)
	case RoleOpacity:
		return m.inner(node, templates.NodeOpacity)
	}
	return nil
}

func (m *Material) inner(node *nodetree.Node, name string) *nodetree.Node {
	if node == nil || node.Group == "" {
		return nil
	}
	return m.Tree.Group(node.Group).Node(name)
}
