// Package templates defines the node groups instantiated for each layer and mask kind.
//
// Templates are declared in TOML. A built-in library is embedded in the binary;
// users can extend or override it with their own file:
//
//	lib, err := templates.Default()
//	err = lib.MergeFile("~/.config/matlayer/templates.toml")
//	tmpl, err := lib.Mask("EDGE_WEAR")
//	group := tmpl.Instantiate("Metal_0_0~")
package templates

import (
	_ "embed"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/matlayer/pkg/errors"
	"github.com/matzehuels/matlayer/pkg/nodetree"
)

//go:embed templates.toml
var builtin string

// Inner node roles shared by all templates.
const (
	NodeMaskMix    = "MASK_MIX"
	NodeLayerMix   = "LAYER_MIX"
	NodeProjection = "PROJECTION"
	NodeOpacity    = "OPACITY"
	NodeTexture    = "TEXTURE"
)

// Socket names the engine wires by.
const (
	SocketLayerMask = "LayerMask" // layer input fed by the last mask
	SocketBase      = "Base"      // layer input fed by the layer below
	SocketSurface   = "Surface"   // material output input fed by the top layer
)

// NodeSpec declares one inner node of a template.
type NodeSpec struct {
	Name  string         `toml:"name"`
	Kind  string         `toml:"kind"`
	Label string         `toml:"label"`
	Props map[string]any `toml:"props"`
}

// Template describes the node group created for one layer or mask kind.
type Template struct {
	Kind    string     `toml:"-"`
	Label   string     `toml:"label"`
	Inputs  []string   `toml:"inputs"`
	Outputs []string   `toml:"outputs"`
	Nodes   []NodeSpec `toml:"nodes"`
}

// Instantiate builds a fresh node group named name from the template.
func (t Template) Instantiate(name string) *nodetree.Group {
	g := &nodetree.Group{
		Name:    name,
		Inputs:  slices.Clone(t.Inputs),
		Outputs: slices.Clone(t.Outputs),
	}
	for _, spec := range t.Nodes {
		g.Nodes = append(g.Nodes, &nodetree.Node{
			ID:    spec.Name,
			Name:  spec.Name,
			Kind:  spec.Kind,
			Label: spec.Label,
			Props: nodetree.Props(maps.Clone(spec.Props)),
		})
		if g.Nodes[len(g.Nodes)-1].Props == nil {
			g.Nodes[len(g.Nodes)-1].Props = nodetree.Props{}
		}
	}
	return g
}

// Library holds the known layer and mask templates keyed by kind.
type Library struct {
	Layers map[string]Template `toml:"layer"`
	Masks  map[string]Template `toml:"mask"`
}

// Default returns a library loaded from the embedded templates.
func Default() (*Library, error) {
	return Load(strings.NewReader(builtin))
}

// Load decodes a library from TOML and validates it.
func Load(r io.Reader) (*Library, error) {
	var lib Library
	if _, err := toml.NewDecoder(r).Decode(&lib); err != nil {
		return nil, fmt.Errorf("decode templates: %w", err)
	}
	if err := lib.finish(); err != nil {
		return nil, err
	}
	return &lib, nil
}

// MergeFile loads templates from path and adds them to l, replacing kinds
// that already exist.
func (l *Library) MergeFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	other, err := Load(f)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	maps.Copy(l.Layers, other.Layers)
	maps.Copy(l.Masks, other.Masks)
	return nil
}

// Layer returns the layer template for kind.
func (l *Library) Layer(kind string) (Template, error) {
	t, ok := l.Layers[kind]
	if !ok {
		return Template{}, errors.New(errors.ErrCodeInvalidKind, "unknown layer kind %q (known: %s)", kind, strings.Join(l.LayerKinds(), ", "))
	}
	return t, nil
}

// Mask returns the mask template for kind.
func (l *Library) Mask(kind string) (Template, error) {
	t, ok := l.Masks[kind]
	if !ok {
		return Template{}, errors.New(errors.ErrCodeInvalidKind, "unknown mask kind %q (known: %s)", kind, strings.Join(l.MaskKinds(), ", "))
	}
	return t, nil
}

// LayerKinds returns the known layer kinds, sorted.
func (l *Library) LayerKinds() []string { return slices.Sorted(maps.Keys(l.Layers)) }

// MaskKinds returns the known mask kinds, sorted.
func (l *Library) MaskKinds() []string { return slices.Sorted(maps.Keys(l.Masks)) }

// finish fills in kinds and checks the sockets the engine relies on.
func (l *Library) finish() error {
	if l.Layers == nil {
		l.Layers = map[string]Template{}
	}
	if l.Masks == nil {
		l.Masks = map[string]Template{}
	}
	for kind, t := range l.Layers {
		t.Kind = kind
		if !slices.Contains(t.Inputs, SocketLayerMask) || !slices.Contains(t.Inputs, SocketBase) {
			return errors.New(errors.ErrCodeInvalidKind, "layer template %s must declare inputs %s and %s", kind, SocketLayerMask, SocketBase)
		}
		if len(t.Outputs) == 0 {
			return errors.New(errors.ErrCodeInvalidKind, "layer template %s declares no outputs", kind)
		}
		l.Layers[kind] = t
	}
	for kind, t := range l.Masks {
		t.Kind = kind
		if len(t.Inputs) == 0 || len(t.Outputs) == 0 {
			return errors.New(errors.ErrCodeInvalidKind, "mask template %s must declare inputs and outputs", kind)
		}
		l.Masks[kind] = t
	}
	return nil
}
