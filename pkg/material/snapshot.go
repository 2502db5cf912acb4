package material

import "github.com/matzehuels/matlayer/pkg/stack"

// Snapshot is a read-only view of both stacks with the node name each entry
// maps to. The CLI, the browser, and the HTTP API render it.
type Snapshot struct {
	Name     string          `json:"name"`
	Selected int             `json:"selected"`
	Layers   []LayerSnapshot `json:"layers"`
}

// LayerSnapshot is one layer and its masks.
type LayerSnapshot struct {
	stack.Entry
	Node         string         `json:"node"`
	SelectedMask int            `json:"selected_mask"`
	Masks        []MaskSnapshot `json:"masks"`
}

// MaskSnapshot is one mask.
type MaskSnapshot struct {
	stack.Entry
	Node string `json:"node"`
}

// Snapshot captures the current stacks.
func (m *Material) Snapshot() Snapshot {
	snap := Snapshot{Name: m.Name, Selected: m.Layers.Selected(), Layers: []LayerSnapshot{}}
	for i, e := range m.Layers.Entries() {
		ls := LayerSnapshot{Entry: e, Node: m.layerName(i, false), SelectedMask: stack.NoSelection, Masks: []MaskSnapshot{}}
		if masks := m.MaskStack(i); masks != nil {
			ls.SelectedMask = masks.Selected()
			for j, me := range masks.Entries() {
				ls.Masks = append(ls.Masks, MaskSnapshot{Entry: me, Node: m.maskName(i, j, false)})
			}
		}
		snap.Layers = append(snap.Layers, ls)
	}
	return snap
}
