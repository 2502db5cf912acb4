package templates

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/matlayer/pkg/errors"
)

func TestDefault(t *testing.T) {
	lib, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if got, want := lib.LayerKinds(), []string{"COLOR", "DECAL", "IMAGE"}; !slices.Equal(got, want) {
		t.Errorf("LayerKinds = %v, want %v", got, want)
	}
	if got, want := lib.MaskKinds(), []string{"BLACK", "EDGE_WEAR", "WHITE"}; !slices.Equal(got, want) {
		t.Errorf("MaskKinds = %v, want %v", got, want)
	}

	for _, kind := range lib.MaskKinds() {
		tmpl, _ := lib.Mask(kind)
		if tmpl.Kind != kind {
			t.Errorf("Mask(%s).Kind = %q", kind, tmpl.Kind)
		}
		g := tmpl.Instantiate("m")
		if g.Node(NodeMaskMix) == nil || g.Node(NodeProjection) == nil {
			t.Errorf("mask %s lacks %s or %s", kind, NodeMaskMix, NodeProjection)
		}
	}
	for _, kind := range lib.LayerKinds() {
		tmpl, _ := lib.Layer(kind)
		g := tmpl.Instantiate("l")
		for _, role := range []string{NodeLayerMix, NodeOpacity, NodeProjection} {
			if g.Node(role) == nil {
				t.Errorf("layer %s lacks %s", kind, role)
			}
		}
	}
}

func TestUnknownKind(t *testing.T) {
	lib, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := lib.Mask("RUST"); !errors.Is(err, errors.ErrCodeInvalidKind) {
		t.Errorf("Mask(RUST) error = %v, want %s", err, errors.ErrCodeInvalidKind)
	}
	if _, err := lib.Layer("EDGE_WEAR"); !errors.Is(err, errors.ErrCodeInvalidKind) {
		t.Errorf("Layer(EDGE_WEAR) error = %v, want %s", err, errors.ErrCodeInvalidKind)
	}
}

func TestInstantiateIsIndependent(t *testing.T) {
	lib, _ := Default()
	tmpl, _ := lib.Mask("WHITE")
	a := tmpl.Instantiate("a")
	b := tmpl.Instantiate("b")

	a.Node(NodeMaskMix).Props["blend_type"] = "CHANGED"
	a.Inputs[0] = "Other"
	if b.Node(NodeMaskMix).Props["blend_type"] == "CHANGED" {
		t.Errorf("instances share props")
	}
	if b.Inputs[0] == "Other" {
		t.Errorf("instances share sockets")
	}
	if a.Name != "a" || b.Name != "b" {
		t.Errorf("names = %q, %q", a.Name, b.Name)
	}
}

func TestMergeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.toml")
	user := `
[mask.DIRT]
label = "Dirt"
inputs = ["Mask"]
outputs = ["Mask"]

  [[mask.DIRT.nodes]]
  name = "MASK_MIX"
  kind = "ShaderNodeMix"

[mask.WHITE]
label = "Bright"
inputs = ["Mask"]
outputs = ["Mask"]
`
	if err := os.WriteFile(path, []byte(user), 0o644); err != nil {
		t.Fatal(err)
	}

	lib, _ := Default()
	if err := lib.MergeFile(path); err != nil {
		t.Fatalf("MergeFile: %v", err)
	}
	dirt, err := lib.Mask("DIRT")
	if err != nil {
		t.Fatalf("Mask(DIRT): %v", err)
	}
	if dirt.Kind != "DIRT" || dirt.Label != "Dirt" {
		t.Errorf("DIRT = %+v", dirt)
	}
	if white, _ := lib.Mask("WHITE"); white.Label != "Bright" {
		t.Errorf("WHITE.Label = %q, want Bright", white.Label)
	}
	if _, err := lib.Mask("EDGE_WEAR"); err != nil {
		t.Errorf("built-in kind lost after merge: %v", err)
	}

	if err := lib.MergeFile(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Errorf("MergeFile(missing) error = nil, want error")
	}
}

func TestLoadRejectsBadTemplates(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{"layer without Base", "[layer.X]\ninputs = [\"LayerMask\"]\noutputs = [\"Color\"]\n"},
		{"layer without outputs", "[layer.X]\ninputs = [\"LayerMask\", \"Base\"]\n"},
		{"mask without inputs", "[mask.X]\noutputs = [\"Mask\"]\n"},
		{"bad toml", "[mask.X\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(strings.NewReader(tt.toml)); err == nil {
				t.Errorf("Load error = nil, want error")
			}
		})
	}
}
