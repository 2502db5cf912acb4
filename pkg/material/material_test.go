package material

import (
	"cmp"
	"context"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/matzehuels/matlayer/pkg/errors"
	"github.com/matzehuels/matlayer/pkg/nodetree"
	"github.com/matzehuels/matlayer/pkg/stack"
)

func newMaterial(t *testing.T) *Material {
	t.Helper()
	m, err := New("Metal", WithStackOptions(stack.WithSeed(1)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

// must fails the test when a command returns an error:
//
//	must(t)(m.AddLayer(ctx, "COLOR"))
func must(t *testing.T) func(Result, error) Result {
	t.Helper()
	return func(res Result, err error) Result {
		t.Helper()
		if err != nil {
			t.Fatalf("command failed: %v (status %q)", err, res.Status)
		}
		return res
	}
}

// maskIDs returns the node IDs of the masks of layer in stack order.
func maskIDs(t *testing.T, m *Material, layer int) []string {
	t.Helper()
	var ids []string
	for i := range m.MaskStack(layer).Len() {
		node := m.MaskNode(RoleMask, layer, i, false)
		if node == nil {
			t.Fatalf("mask %d of layer %d has no node", i, layer)
		}
		ids = append(ids, node.ID)
	}
	return ids
}

func sortedLinks(tr *nodetree.Tree) []nodetree.Link {
	links := tr.Links()
	slices.SortFunc(links, func(a, b nodetree.Link) int {
		return cmp.Or(
			cmp.Compare(a.ToNode, b.ToNode),
			cmp.Compare(a.ToSocket, b.ToSocket),
			cmp.Compare(a.FromNode, b.FromNode),
		)
	})
	return links
}

// withMasks returns a material with one layer holding n masks added in
// order, so mask i is the i-th one created.
func withMasks(t *testing.T, n int) *Material {
	t.Helper()
	ctx := context.Background()
	m := newMaterial(t)
	must(t)(m.AddLayer(ctx, "COLOR"))
	for range n {
		must(t)(m.AddMask(ctx, "EDGE_WEAR"))
	}
	return m
}

func TestNewMaterial(t *testing.T) {
	m := newMaterial(t)
	if m.Output() == nil {
		t.Fatal("new material has no output node")
	}
	if m.Tree.NodeCount() != 1 {
		t.Errorf("NodeCount = %d, want 1", m.Tree.NodeCount())
	}
	if err := m.Check(); err != nil {
		t.Errorf("Check = %v, want nil", err)
	}
	if _, err := New(""); !errors.Is(err, errors.ErrCodeInvalidName) {
		t.Errorf("New(\"\") error = %v, want %s", err, errors.ErrCodeInvalidName)
	}
}

func TestAddLayerAndMask(t *testing.T) {
	ctx := context.Background()
	m := newMaterial(t)

	res := must(t)(m.AddLayer(ctx, "COLOR"))
	if res.Selected != 0 {
		t.Errorf("AddLayer selected = %d, want 0", res.Selected)
	}
	layer := m.LayerNode(RoleLayer, 0, false)
	if layer == nil || m.Tree.Group("Metal_0") == nil {
		t.Fatal("layer node or node group Metal_0 missing")
	}
	if l, ok := m.Tree.InputLink(m.Output(), "Surface"); !ok || l.FromNode != layer.ID {
		t.Errorf("Surface link = %+v, want from %s", l, layer.Name)
	}

	must(t)(m.AddMask(ctx, "EDGE_WEAR"))
	mask := m.MaskNode(RoleMask, 0, 0, false)
	if mask == nil {
		t.Fatal("mask node Metal_0_0 missing")
	}
	if l, ok := m.Tree.InputLink(layer, "LayerMask"); !ok || l.FromNode != mask.ID {
		t.Errorf("LayerMask link = %+v, want from %s", l, mask.Name)
	}
	if err := m.Check(); err != nil {
		t.Errorf("Check = %v", err)
	}
	if err := m.Tree.Validate(); err != nil {
		t.Errorf("Validate = %v", err)
	}
}

func TestAddMaskInsertionPoint(t *testing.T) {
	ctx := context.Background()
	m := withMasks(t, 1)
	first := maskIDs(t, m, 0)[0]

	// No selection inserts at the top and shifts the existing mask down.
	m.MaskStack(0).Deselect()
	res := must(t)(m.AddMask(ctx, "BLACK"))
	if res.Selected != 0 {
		t.Errorf("selected = %d, want 0", res.Selected)
	}
	ids := maskIDs(t, m, 0)
	if ids[1] != first {
		t.Errorf("existing mask at %v, want index 1", ids)
	}

	// A selection inserts directly after it.
	must(t)(m.SelectMask(ctx, 0))
	res = must(t)(m.AddMask(ctx, "WHITE"))
	if res.Selected != 1 {
		t.Errorf("selected = %d, want 1", res.Selected)
	}
	if got := maskIDs(t, m, 0)[2]; got != first {
		t.Errorf("first mask moved to %s, want index 2", got)
	}
	if err := m.Check(); err != nil {
		t.Errorf("Check = %v", err)
	}
}

func TestAddWithoutSelectionIsReverseChronological(t *testing.T) {
	ctx := context.Background()
	m := withMasks(t, 0)
	var created []string
	for range 3 {
		m.MaskStack(0).Deselect()
		must(t)(m.AddMask(ctx, "EDGE_WEAR"))
		created = append(created, m.MaskNode(RoleMask, 0, 0, false).ID)
	}
	slices.Reverse(created)
	if got := maskIDs(t, m, 0); !slices.Equal(got, created) {
		t.Errorf("mask order = %v, want %v", got, created)
	}
}

func TestDeleteMiddleMask(t *testing.T) {
	ctx := context.Background()
	m := withMasks(t, 3)
	ids := maskIDs(t, m, 0)
	a, c := ids[0], ids[2]

	must(t)(m.SelectMask(ctx, 1))
	res := must(t)(m.DeleteMask(ctx))
	if res.Selected != 1 {
		t.Errorf("selected after delete = %d, want 1", res.Selected)
	}
	if got := maskIDs(t, m, 0); !slices.Equal(got, []string{a, c}) {
		t.Errorf("masks = %v, want [%s %s]", got, a, c)
	}
	if m.MaskNode(RoleMask, 0, 2, false) != nil || m.Tree.Group("Metal_0_2") != nil {
		t.Error("stale Metal_0_2 left behind")
	}

	nodeC := m.MaskNode(RoleMask, 0, 1, false)
	if l, ok := m.Tree.InputLink(nodeC, "Mask"); !ok || l.FromNode != a {
		t.Errorf("C input link = %+v, want from A", l)
	}
	layer := m.LayerNode(RoleLayer, 0, false)
	if l, ok := m.Tree.InputLink(layer, "LayerMask"); !ok || l.FromNode != c {
		t.Errorf("layer link = %+v, want from C", l)
	}
	if err := m.Check(); err != nil {
		t.Errorf("Check = %v", err)
	}
}

func TestDeleteLastMaskClearsLayerInput(t *testing.T) {
	ctx := context.Background()
	m := withMasks(t, 1)
	must(t)(m.DeleteMask(ctx))
	if _, ok := m.Tree.InputLink(m.LayerNode(RoleLayer, 0, false), "LayerMask"); ok {
		t.Error("LayerMask still linked after deleting the only mask")
	}
	if m.MaskStack(0).Selected() != stack.NoSelection {
		t.Errorf("selection = %d, want none", m.MaskStack(0).Selected())
	}
}

func TestMoveMask(t *testing.T) {
	ctx := context.Background()
	m := withMasks(t, 3)
	ids := maskIDs(t, m, 0)

	must(t)(m.SelectMask(ctx, 2))
	res := must(t)(m.MoveMaskUp(ctx))
	if res.Selected != 1 {
		t.Errorf("selected = %d, want 1", res.Selected)
	}
	want := []string{ids[0], ids[2], ids[1]}
	if got := maskIDs(t, m, 0); !slices.Equal(got, want) {
		t.Errorf("after up = %v, want %v", got, want)
	}

	must(t)(m.MoveMaskDown(ctx))
	if got := maskIDs(t, m, 0); !slices.Equal(got, ids) {
		t.Errorf("after down = %v, want %v", got, ids)
	}

	must(t)(m.SelectMask(ctx, 0))
	res = must(t)(m.MoveMaskUp(ctx))
	if res.Selected != 0 {
		t.Errorf("move past top selected = %d, want 0", res.Selected)
	}
	if got := maskIDs(t, m, 0); !slices.Equal(got, ids) {
		t.Errorf("move past top changed order: %v", got)
	}
	if err := m.Check(); err != nil {
		t.Errorf("Check = %v", err)
	}
}

func TestDuplicateMask(t *testing.T) {
	ctx := context.Background()
	m := withMasks(t, 2)
	must(t)(m.SelectMask(ctx, 0))
	must(t)(m.ToggleMaskHidden(ctx, 0))

	res := must(t)(m.DuplicateMask(ctx))
	if res.Selected != 1 {
		t.Errorf("selected = %d, want 1", res.Selected)
	}
	masks := m.MaskStack(0)
	if masks.Len() != 3 {
		t.Fatalf("Len = %d, want 3", masks.Len())
	}
	orig, _ := masks.Entry(0)
	dup, _ := masks.Entry(1)
	if dup.ID == orig.ID || dup.Kind != orig.Kind || !dup.Hidden {
		t.Errorf("duplicate = %+v, original = %+v", dup, orig)
	}
	if m.Tree.Group("Metal_0_0") == m.Tree.Group("Metal_0_1") {
		t.Error("duplicate shares the node group of the original")
	}
	if m.MaskNode(RoleMask, 0, 1, false).Props[PropMute] != true {
		t.Error("duplicate lost the mute property")
	}
	if err := m.Check(); err != nil {
		t.Errorf("Check = %v", err)
	}
}

func TestRelinkIsIdempotent(t *testing.T) {
	m := withMasks(t, 3)
	before := sortedLinks(m.Tree)
	if err := m.RelinkMasks(0); err != nil {
		t.Fatal(err)
	}
	if err := m.RelinkLayers(); err != nil {
		t.Fatal(err)
	}
	if after := sortedLinks(m.Tree); !slices.Equal(before, after) {
		t.Errorf("links changed on relink:\nbefore %v\nafter  %v", before, after)
	}
	// Three masks chained, last into the layer, layer into the output.
	if len(before) != 4 {
		t.Errorf("link count = %d, want 4", len(before))
	}
}

func TestRelinkSkipsMissingNode(t *testing.T) {
	m := withMasks(t, 3)
	first, last := m.MaskNode(RoleMask, 0, 0, false), m.MaskNode(RoleMask, 0, 2, false)
	if err := m.Tree.RemoveNode("Metal_0_1"); err != nil {
		t.Fatal(err)
	}
	if err := m.RelinkMasks(0); err != nil {
		t.Fatalf("RelinkMasks: %v", err)
	}
	l, ok := m.Tree.InputLink(last, lastInput(last))
	if !ok {
		t.Fatal("last mask has no chain input")
	}
	if l.FromNode != first.ID {
		t.Errorf("chain input from %s, want %s", l.FromNode, first.ID)
	}
}

func TestLayerCommandsCarryMasks(t *testing.T) {
	ctx := context.Background()
	m := newMaterial(t)
	must(t)(m.AddLayer(ctx, "COLOR"))
	must(t)(m.AddLayer(ctx, "IMAGE"))
	must(t)(m.AddMask(ctx, "BLACK"))
	must(t)(m.AddMask(ctx, "WHITE"))
	masks := maskIDs(t, m, 1)
	image := m.LayerNode(RoleLayer, 1, false).ID

	res := must(t)(m.MoveLayerUp(ctx))
	if res.Selected != 0 {
		t.Errorf("selected = %d, want 0", res.Selected)
	}
	if got := m.LayerNode(RoleLayer, 0, false).ID; got != image {
		t.Errorf("layer 0 = %s, want the IMAGE layer", got)
	}
	if got := maskIDs(t, m, 0); !slices.Equal(got, masks) {
		t.Errorf("masks of moved layer = %v, want %v", got, masks)
	}
	if m.MaskStack(1).Len() != 0 {
		t.Errorf("layer 1 has %d masks, want 0", m.MaskStack(1).Len())
	}
	if err := m.Check(); err != nil {
		t.Fatalf("Check after move = %v", err)
	}

	must(t)(m.DeleteLayer(ctx))
	if m.Layers.Len() != 1 || len(m.Masks) != 1 {
		t.Errorf("layers = %d, mask stacks = %d, want 1 and 1", m.Layers.Len(), len(m.Masks))
	}
	if got := len(m.Tree.Groups()); got != 1 {
		t.Errorf("node groups = %d, want 1", got)
	}
	if err := m.Check(); err != nil {
		t.Errorf("Check after delete = %v", err)
	}
}

func TestDuplicateLayer(t *testing.T) {
	ctx := context.Background()
	m := withMasks(t, 2)
	must(t)(m.SelectLayer(ctx, 0))

	res := must(t)(m.DuplicateLayer(ctx))
	if res.Selected != 1 {
		t.Errorf("selected = %d, want 1", res.Selected)
	}
	src, dst := m.MaskStack(0), m.MaskStack(1)
	if dst == nil || dst.Len() != 2 {
		t.Fatalf("duplicate has mask stack %v, want 2 masks", dst)
	}
	if src == dst {
		t.Error("duplicate shares the mask stack")
	}
	layer := m.LayerNode(RoleLayer, 1, false)
	last := m.MaskNode(RoleMask, 1, 1, false)
	if l, ok := m.Tree.InputLink(layer, "LayerMask"); !ok || l.FromNode != last.ID {
		t.Errorf("duplicate LayerMask link = %+v, want from %s", l, last.Name)
	}
	if l, ok := m.Tree.InputLink(layer, "Base"); !ok || l.FromNode != m.LayerNode(RoleLayer, 0, false).ID {
		t.Errorf("duplicate Base link = %+v, want from layer 0", l)
	}
	if err := m.Check(); err != nil {
		t.Errorf("Check = %v", err)
	}
}

func TestNoActiveContext(t *testing.T) {
	ctx := context.Background()

	var nilMaterial *Material
	res, err := nilMaterial.AddMask(ctx, "BLACK")
	if !errors.Is(err, errors.ErrCodeNoActiveContext) || res.Status == "" {
		t.Errorf("nil material AddMask = %+v, %v", res, err)
	}
	if nilMaterial.MaskNode(RoleMask, 0, 0, false) != nil {
		t.Error("nil material MaskNode should be nil")
	}

	m := newMaterial(t)
	tests := []struct {
		name string
		run  func() (Result, error)
	}{
		{"AddMask", func() (Result, error) { return m.AddMask(ctx, "BLACK") }},
		{"DeleteMask", func() (Result, error) { return m.DeleteMask(ctx) }},
		{"MoveMaskUp", func() (Result, error) { return m.MoveMaskUp(ctx) }},
		{"DuplicateMask", func() (Result, error) { return m.DuplicateMask(ctx) }},
		{"DeleteLayer", func() (Result, error) { return m.DeleteLayer(ctx) }},
		{"DuplicateLayer", func() (Result, error) { return m.DuplicateLayer(ctx) }},
		{"MoveLayerDown", func() (Result, error) { return m.MoveLayerDown(ctx) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.run()
			if !errors.Is(err, errors.ErrCodeNoActiveContext) {
				t.Errorf("error = %v, want %s", err, errors.ErrCodeNoActiveContext)
			}
			if res.Status == "" {
				t.Error("empty status")
			}
			if m.Tree.NodeCount() != 1 {
				t.Errorf("NodeCount = %d, want 1", m.Tree.NodeCount())
			}
		})
	}
}

func TestGraphPassesWithoutActiveMaterial(t *testing.T) {
	layers := stack.New(stack.WithSeed(1))
	layers.AddSlot("COLOR")
	e, _ := layers.Entry(0)
	noTree := &Material{
		Name:   "Metal",
		Layers: layers,
		Masks:  map[string]*stack.Stack{e.ID: stack.New()},
	}
	noTree.Masks[e.ID].AddSlot("BLACK")

	materials := []struct {
		name string
		m    *Material
	}{
		{"nil material", nil},
		{"nil tree", noTree},
	}
	for _, mt := range materials {
		m := mt.m
		passes := []struct {
			name string
			run  func() error
		}{
			{"ReindexMasks", func() error { return m.ReindexMasks(Added, 0, 0) }},
			{"ReindexLayers", func() error { return m.ReindexLayers(Deleted, 0) }},
			{"RelinkMasks", func() error { return m.RelinkMasks(0) }},
			{"RelinkLayers", func() error { return m.RelinkLayers() }},
			{"Check", func() error { return m.Check() }},
		}
		for _, p := range passes {
			t.Run(mt.name+"/"+p.name, func(t *testing.T) {
				if err := p.run(); !errors.Is(err, errors.ErrCodeNoActiveContext) {
					t.Errorf("error = %v, want %s", err, errors.ErrCodeNoActiveContext)
				}
			})
		}
		m.OrganizeLayers()
		m.OrganizeMasks(0)
	}
}

func TestInvalidInput(t *testing.T) {
	ctx := context.Background()
	m := withMasks(t, 1)

	if _, err := m.AddLayer(ctx, "NOPE"); !errors.Is(err, errors.ErrCodeInvalidKind) {
		t.Errorf("AddLayer(NOPE) error = %v, want %s", err, errors.ErrCodeInvalidKind)
	}
	if _, err := m.AddMask(ctx, "NOPE"); !errors.Is(err, errors.ErrCodeInvalidKind) {
		t.Errorf("AddMask(NOPE) error = %v, want %s", err, errors.ErrCodeInvalidKind)
	}
	if m.Layers.Len() != 1 || m.MaskStack(0).Len() != 1 {
		t.Error("invalid kind changed the stacks")
	}
	if _, err := m.SelectLayer(ctx, 5); !errors.Is(err, errors.ErrCodeInvalidIndex) {
		t.Errorf("SelectLayer(5) error = %v, want %s", err, errors.ErrCodeInvalidIndex)
	}
	if _, err := m.ToggleMaskHidden(ctx, -1); !errors.Is(err, errors.ErrCodeInvalidIndex) {
		t.Errorf("ToggleMaskHidden(-1) error = %v, want %s", err, errors.ErrCodeInvalidIndex)
	}
}

func TestReindexMissingNodeIsDesync(t *testing.T) {
	ctx := context.Background()
	m := withMasks(t, 3)
	if err := m.Tree.RemoveNode("Metal_0_2"); err != nil {
		t.Fatal(err)
	}
	must(t)(m.SelectMask(ctx, 0))
	_, err := m.DeleteMask(ctx)
	if !errors.Is(err, errors.ErrCodeDesync) {
		t.Errorf("DeleteMask error = %v, want %s", err, errors.ErrCodeDesync)
	}
	if err := m.Check(); !errors.Is(err, errors.ErrCodeDesync) {
		t.Errorf("Check = %v, want %s", err, errors.ErrCodeDesync)
	}
}

func TestRenameKeepsNodeAndGroupPaired(t *testing.T) {
	tests := []struct {
		name  string
		stray func(*nodetree.Tree) error
	}{
		{"node name taken", func(tr *nodetree.Tree) error {
			_, err := tr.NewNode(nodetree.KindGroup, "Metal_0_9")
			return err
		}},
		{"group name taken", func(tr *nodetree.Tree) error {
			return tr.AddGroup(&nodetree.Group{Name: "Metal_0_9"})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := withMasks(t, 1)
			if err := tt.stray(m.Tree); err != nil {
				t.Fatal(err)
			}
			err := m.renameEntry("Metal_0_0", "Metal_0_9")
			if !errors.Is(err, errors.ErrCodeDesync) {
				t.Fatalf("renameEntry error = %v, want %s", err, errors.ErrCodeDesync)
			}
			node := m.Tree.Node("Metal_0_0")
			if node == nil {
				t.Fatal("node lost its name")
			}
			if node.Group != "Metal_0_0" || m.Tree.Group("Metal_0_0") == nil {
				t.Errorf("node group = %q, want Metal_0_0 to still exist", node.Group)
			}
		})
	}
}

func TestCheckDetectsStrayNodes(t *testing.T) {
	tests := []struct {
		name  string
		nodes []string
	}{
		{"provisional", []string{"Metal_0~"}},
		{"extra layer", []string{"Metal_1"}},
		{"extra mask", []string{"Metal_0_4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := withMasks(t, 1)
			for _, name := range tt.nodes {
				if _, err := m.Tree.NewNode(nodetree.KindGroup, name); err != nil {
					t.Fatal(err)
				}
			}
			if err := m.Check(); !errors.Is(err, errors.ErrCodeDesync) {
				t.Errorf("Check = %v, want %s", err, errors.ErrCodeDesync)
			}
		})
	}
}

func TestAccessorRoles(t *testing.T) {
	m := withMasks(t, 1)
	tests := []struct {
		name string
		node *nodetree.Node
		want string
	}{
		{"layer", m.LayerNode(RoleLayer, 0, false), "Metal_0"},
		{"layer mix", m.LayerNode(RoleMix, 0, false), "LAYER_MIX"},
		{"layer opacity", m.LayerNode(RoleOpacity, 0, false), "OPACITY"},
		{"layer projection", m.LayerNode(RoleProjection, 0, false), "PROJECTION"},
		{"mask", m.MaskNode(RoleMask, 0, 0, false), "Metal_0_0"},
		{"mask mix", m.MaskNode(RoleMix, 0, 0, false), "MASK_MIX"},
		{"mask projection", m.MaskNode(RoleProjection, 0, 0, false), "PROJECTION"},
		{"mask opacity", m.MaskNode(RoleOpacity, 0, 0, false), ""},
		{"missing mask", m.MaskNode(RoleMask, 0, 7, false), ""},
		{"provisional", m.LayerNode(RoleLayer, 0, true), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ""
			if tt.node != nil {
				got = tt.node.Name
			}
			if got != tt.want {
				t.Errorf("node = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLayout(t *testing.T) {
	ctx := context.Background()
	m := withMasks(t, 2)
	must(t)(m.AddLayer(ctx, "DECAL"))

	out := m.Output()
	for i := range m.Layers.Len() {
		node := m.LayerNode(RoleLayer, i, false)
		wantX := out.Location.X - float64(m.Layers.Len()-i)*330
		if node.Location.X != wantX || node.Width != 250 {
			t.Errorf("layer %d at x=%v width=%v, want x=%v width=250", i, node.Location.X, node.Width, wantX)
		}
	}

	layer := m.LayerNode(RoleLayer, 0, false)
	for k := range 2 {
		node := m.MaskNode(RoleMask, 0, k, false)
		wantY := layer.Location.Y - float64(k+1)*600
		if node.Location != (nodetree.Vec2{X: layer.Location.X, Y: wantY}) || node.Width != 300 {
			t.Errorf("mask %d at %+v width=%v, want y=%v width=300", k, node.Location, node.Width, wantY)
		}
	}
}

func TestToggleHidden(t *testing.T) {
	ctx := context.Background()
	m := withMasks(t, 1)

	res := must(t)(m.ToggleLayerHidden(ctx, 0))
	if res.Status != "Layer hidden" {
		t.Errorf("status = %q", res.Status)
	}
	if e, _ := m.Layers.Entry(0); !e.Hidden {
		t.Error("layer entry not hidden")
	}
	if m.LayerNode(RoleLayer, 0, false).Props[PropMute] != true {
		t.Error("layer node not muted")
	}
	must(t)(m.ToggleLayerHidden(ctx, 0))
	if e, _ := m.Layers.Entry(0); e.Hidden {
		t.Error("second toggle did not show the layer")
	}
}

func TestRestore(t *testing.T) {
	m := withMasks(t, 2)
	r, err := Restore(m.Name, m.Tree, m.Layers, m.Masks)
	if err != nil {
		t.Fatalf("Restore = %v", err)
	}
	if r.MaskStack(0).Len() != 2 {
		t.Errorf("restored masks = %d, want 2", r.MaskStack(0).Len())
	}

	_, _ = m.Layers.Remove(0)
	if _, err := Restore(m.Name, m.Tree, m.Layers, m.Masks); !errors.Is(err, errors.ErrCodeDesync) {
		t.Errorf("Restore with short stack = %v, want %s", err, errors.ErrCodeDesync)
	}
}

// TestRandomCommandsKeepNamesContiguous runs a long random command sequence
// and checks the names still mirror the stacks after every step.
func TestRandomCommandsKeepNamesContiguous(t *testing.T) {
	ctx := context.Background()
	m := newMaterial(t)
	rng := rand.New(rand.NewPCG(7, 11))
	layerKinds := m.Library.LayerKinds()
	maskKinds := m.Library.MaskKinds()

	ops := []func() (Result, error){
		func() (Result, error) { return m.AddLayer(ctx, layerKinds[rng.IntN(len(layerKinds))]) },
		func() (Result, error) { return m.AddMask(ctx, maskKinds[rng.IntN(len(maskKinds))]) },
		func() (Result, error) { return m.AddMask(ctx, maskKinds[rng.IntN(len(maskKinds))]) },
		func() (Result, error) { return m.DeleteMask(ctx) },
		func() (Result, error) { return m.DeleteLayer(ctx) },
		func() (Result, error) { return m.MoveMaskUp(ctx) },
		func() (Result, error) { return m.MoveMaskDown(ctx) },
		func() (Result, error) { return m.MoveLayerUp(ctx) },
		func() (Result, error) { return m.MoveLayerDown(ctx) },
		func() (Result, error) { return m.DuplicateMask(ctx) },
		func() (Result, error) { return m.DuplicateLayer(ctx) },
		func() (Result, error) { return m.SelectLayer(ctx, rng.IntN(m.Layers.Len()+1)) },
		func() (Result, error) {
			if masks := m.MaskStack(m.Layers.Selected()); masks != nil {
				return m.SelectMask(ctx, rng.IntN(masks.Len()+1))
			}
			return Result{}, nil
		},
		func() (Result, error) { m.Layers.Deselect(); return Result{}, nil },
	}

	for step := range 400 {
		op := rng.IntN(len(ops))
		_, err := ops[op]()
		if err != nil && !errors.Is(err, errors.ErrCodeNoActiveContext) && !errors.Is(err, errors.ErrCodeInvalidIndex) {
			t.Fatalf("step %d op %d: %v", step, op, err)
		}
		if err := m.Check(); err != nil {
			t.Fatalf("step %d op %d: %v", step, op, err)
		}
		if err := m.Tree.Validate(); err != nil {
			t.Fatalf("step %d op %d: Validate = %v", step, op, err)
		}
	}
}

func TestExec(t *testing.T) {
	ctx := context.Background()
	m := newMaterial(t)

	tests := []struct {
		target Target
		op     Op
		args   Args
		want   int // selected index afterwards
	}{
		{TargetLayer, OpAdd, Args{Kind: "COLOR"}, 0},
		{TargetLayer, OpAdd, Args{Kind: "IMAGE"}, 1},
		{TargetMask, OpAdd, Args{Kind: "BLACK"}, 0},
		{TargetMask, OpDuplicate, Args{}, 1},
		{TargetMask, OpUp, Args{}, 0},
		{TargetMask, OpHide, Args{Index: 1}, 0},
		{TargetLayer, OpSelect, Args{Index: 0}, 0},
		{TargetLayer, OpDown, Args{}, 1},
	}
	for _, tt := range tests {
		res, err := m.Exec(ctx, tt.target, tt.op, tt.args)
		if err != nil {
			t.Fatalf("Exec(%s %s) error = %v", tt.target, tt.op, err)
		}
		if res.Selected != tt.want {
			t.Errorf("Exec(%s %s).Selected = %d, want %d", tt.target, tt.op, res.Selected, tt.want)
		}
	}
	if err := m.Check(); err != nil {
		t.Errorf("Check after Exec sequence: %v", err)
	}

	if _, err := m.Exec(ctx, TargetLayer, "explode", Args{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Exec(unknown op) error = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
	if _, err := m.Exec(ctx, "tables", OpAdd, Args{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Exec(unknown target) error = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
}

func TestSnapshot(t *testing.T) {
	m := withMasks(t, 2)
	snap := m.Snapshot()
	if snap.Name != "Metal" || snap.Selected != 0 || len(snap.Layers) != 1 {
		t.Fatalf("Snapshot = %+v", snap)
	}
	l := snap.Layers[0]
	if l.Node != "Metal_0" || len(l.Masks) != 2 || l.SelectedMask != 1 {
		t.Errorf("layer snapshot = %+v", l)
	}
	if l.Masks[1].Node != "Metal_0_1" {
		t.Errorf("mask node = %q, want Metal_0_1", l.Masks[1].Node)
	}
	if l.Masks[0].ID != m.MaskStack(0).Entries()[0].ID {
		t.Errorf("mask identity not carried")
	}
}
