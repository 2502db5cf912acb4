package material

import "github.com/matzehuels/matlayer/pkg/nodetree"

// OrganizeMasks stacks the mask nodes of layer in a column below the layer
// node, one MaskPitch apart, starting one pitch below it.
func (m *Material) OrganizeMasks(layer int) {
	masks := m.MaskStack(layer)
	layerNode := m.LayerNode(RoleLayer, layer, false)
	if masks == nil || layerNode == nil {
		return
	}
	y := layerNode.Location.Y - m.Layout.MaskPitch
	for i := range masks.Len() {
		if node := m.MaskNode(RoleMask, layer, i, false); node != nil {
			node.Location = nodetree.Vec2{X: layerNode.Location.X, Y: y}
			node.Width = m.Layout.MaskWidth
		}
		y -= m.Layout.MaskPitch
	}
}

// OrganizeLayers places layer nodes in a row left of the output node, the
// last layer closest to it, then organizes each layer's masks.
func (m *Material) OrganizeLayers() {
	out := m.Output()
	if out == nil || m.Layers == nil {
		return
	}
	pitch := m.Layout.LayerWidth + m.Layout.LayerSpacing
	n := m.Layers.Len()
	for i := range n {
		node := m.LayerNode(RoleLayer, i, false)
		if node == nil {
			continue
		}
		node.Location = nodetree.Vec2{X: out.Location.X - float64(n-i)*pitch, Y: out.Location.Y}
		node.Width = m.Layout.LayerWidth
		m.OrganizeMasks(i)
	}
}
