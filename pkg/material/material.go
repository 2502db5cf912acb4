package material

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/matlayer/pkg/errors"
	"github.com/matzehuels/matlayer/pkg/naming"
	"github.com/matzehuels/matlayer/pkg/nodetree"
	"github.com/matzehuels/matlayer/pkg/stack"
	"github.com/matzehuels/matlayer/pkg/templates"
)

// OutputNodeName is the name of the material output node the top layer feeds.
const OutputNodeName = "Material Output"

// Layout holds node editor spacing.
type Layout struct {
	MaskPitch    float64 // vertical distance between mask nodes
	MaskWidth    float64
	LayerWidth   float64 // node_default_width
	LayerSpacing float64 // gap between layer nodes
}

// DefaultLayout returns the spacing used by the host add-on.
func DefaultLayout() Layout {
	return Layout{
		MaskPitch:    600,
		MaskWidth:    300,
		LayerWidth:   250,
		LayerSpacing: 80,
	}
}

// Material is one material's node tree plus the layer and mask stacks that
// generate it. A Material is not safe for concurrent use.
type Material struct {
	Name   string
	Tree   *nodetree.Tree
	Layers *stack.Stack

	// Masks holds one mask stack per layer, keyed by the layer entry's identity.
	Masks map[string]*stack.Stack

	Library *templates.Library
	Layout  Layout
	Logger  *log.Logger

	stackOpts []stack.Option
}

// Option configures a Material.
type Option func(*Material)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(m *Material) {
		if l != nil {
			m.Logger = l
		}
	}
}

// WithLibrary sets the template library. The default is [templates.Default].
func WithLibrary(lib *templates.Library) Option {
	return func(m *Material) { m.Library = lib }
}

// WithLayout sets node editor spacing.
func WithLayout(l Layout) Option {
	return func(m *Material) { m.Layout = l }
}

// WithStackOptions sets the options used for every stack the material creates,
// such as a seeded identity source.
func WithStackOptions(opts ...stack.Option) Option {
	return func(m *Material) { m.stackOpts = opts }
}

// New creates an empty material with a fresh tree holding only the output node.
func New(name string, opts ...Option) (*Material, error) {
	if err := errors.ValidateMaterialName(name); err != nil {
		return nil, err
	}
	tree := nodetree.New()
	if _, err := tree.AddNode(nodetree.Node{
		Kind:   nodetree.KindOutput,
		Name:   OutputNodeName,
		Inputs: []string{templates.SocketSurface},
	}); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create output node")
	}
	m := &Material{Name: name, Tree: tree, Masks: make(map[string]*stack.Stack)}
	if err := m.apply(opts); err != nil {
		return nil, err
	}
	m.Layers = stack.New(m.stackOpts...)
	return m, nil
}

// Restore assembles a material from persisted parts and verifies that the
// tree mirrors the stacks. Layers without a mask stack get an empty one.
func Restore(name string, tree *nodetree.Tree, layers *stack.Stack, masks map[string]*stack.Stack, opts ...Option) (*Material, error) {
	if err := errors.ValidateMaterialName(name); err != nil {
		return nil, err
	}
	if tree == nil || layers == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "material %s: tree and layer stack are required", name)
	}
	if masks == nil {
		masks = make(map[string]*stack.Stack)
	}
	m := &Material{Name: name, Tree: tree, Layers: layers, Masks: masks}
	if err := m.apply(opts); err != nil {
		return nil, err
	}
	for _, e := range layers.Entries() {
		if m.Masks[e.ID] == nil {
			m.Masks[e.ID] = stack.New(m.stackOpts...)
		}
	}
	if err := m.Check(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Material) apply(opts []Option) error {
	m.Layout = DefaultLayout()
	m.Logger = log.NewWithOptions(io.Discard, log.Options{})
	for _, opt := range opts {
		opt(m)
	}
	if m.Library == nil {
		lib, err := templates.Default()
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "load built-in templates")
		}
		m.Library = lib
	}
	return nil
}

// Output returns the material output node, or nil.
func (m *Material) Output() *nodetree.Node {
	if m == nil || m.Tree == nil {
		return nil
	}
	return m.Tree.Node(OutputNodeName)
}

// MaskStack returns the mask stack of the layer at index layer, or nil.
func (m *Material) MaskStack(layer int) *stack.Stack {
	if m == nil || m.Layers == nil {
		return nil
	}
	e, ok := m.Layers.Entry(layer)
	if !ok {
		return nil
	}
	return m.Masks[e.ID]
}

// layerName and maskName format names for this material.
func (m *Material) layerName(layer int, provisional bool) string {
	name := naming.LayerName(m.Name, layer)
	if provisional {
		name = naming.Provisional(name)
	}
	return name
}

func (m *Material) maskName(layer, mask int, provisional bool) string {
	name := naming.MaskName(m.Name, layer, mask)
	if provisional {
		name = naming.Provisional(name)
	}
	return name
}
