package project

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"time"

	"github.com/matzehuels/matlayer/pkg/cache"
	"github.com/matzehuels/matlayer/pkg/errors"
	"github.com/matzehuels/matlayer/pkg/material"
	"github.com/matzehuels/matlayer/pkg/nodetree"
	"github.com/matzehuels/matlayer/pkg/stack"
)

// Document is the serialized form of a material.
type Document struct {
	Name      string                `json:"name" bson:"_id"`
	Nodes     []Node                `json:"nodes" bson:"nodes"`
	Links     []Link                `json:"links" bson:"links"`
	Groups    []Group               `json:"groups" bson:"groups"`
	Layers    StackState            `json:"layers" bson:"layers"`
	Masks     map[string]StackState `json:"masks" bson:"masks"` // layer identity -> mask stack
	UpdatedAt time.Time             `json:"updated_at" bson:"updated_at"`
}

// Node is a serialized tree or group node.
type Node struct {
	ID      string         `json:"id" bson:"id"`
	Name    string         `json:"name" bson:"name"`
	Kind    string         `json:"kind" bson:"kind"`
	Label   string         `json:"label,omitempty" bson:"label,omitempty"`
	Group   string         `json:"group,omitempty" bson:"group,omitempty"`
	Inputs  []string       `json:"inputs,omitempty" bson:"inputs,omitempty"`
	Outputs []string       `json:"outputs,omitempty" bson:"outputs,omitempty"`
	X       float64        `json:"x" bson:"x"`
	Y       float64        `json:"y" bson:"y"`
	Width   float64        `json:"width,omitempty" bson:"width,omitempty"`
	Props   map[string]any `json:"props,omitempty" bson:"props,omitempty"`
}

// Link is a serialized link between node IDs.
type Link struct {
	From       string `json:"from" bson:"from"`
	FromSocket string `json:"from_socket" bson:"from_socket"`
	To         string `json:"to" bson:"to"`
	ToSocket   string `json:"to_socket" bson:"to_socket"`
}

// Group is a serialized node group.
type Group struct {
	Name    string   `json:"name" bson:"name"`
	Inputs  []string `json:"inputs,omitempty" bson:"inputs,omitempty"`
	Outputs []string `json:"outputs,omitempty" bson:"outputs,omitempty"`
	Nodes   []Node   `json:"nodes,omitempty" bson:"nodes,omitempty"`
}

// StackState is a serialized stack.
type StackState struct {
	Entries  []stack.Entry `json:"entries" bson:"entries"`
	Selected int           `json:"selected" bson:"selected"`
}

// =============================================================================
// Conversion
// =============================================================================

// FromMaterial captures m as a document. Nodes and groups are sorted by name so
// equal materials encode to equal bytes.
func FromMaterial(m *material.Material) *Document {
	doc := &Document{
		Name:   m.Name,
		Layers: stackState(m.Layers),
		Masks:  make(map[string]StackState, len(m.Masks)),
	}
	for _, n := range m.Tree.Nodes() {
		doc.Nodes = append(doc.Nodes, fromNode(n))
	}
	for _, l := range m.Tree.Links() {
		doc.Links = append(doc.Links, Link{From: l.FromNode, FromSocket: l.FromSocket, To: l.ToNode, ToSocket: l.ToSocket})
	}
	for _, g := range m.Tree.Groups() {
		sg := Group{Name: g.Name, Inputs: slices.Clone(g.Inputs), Outputs: slices.Clone(g.Outputs)}
		for _, n := range g.Nodes {
			sg.Nodes = append(sg.Nodes, fromNode(n))
		}
		doc.Groups = append(doc.Groups, sg)
	}
	for id, s := range m.Masks {
		doc.Masks[id] = stackState(s)
	}
	return doc
}

// Material rebuilds the material from the document. The restored material
// is checked for consistency; a document whose names do not mirror its
// stacks fails with a DESYNC error.
func (d *Document) Material(opts ...material.Option) (*material.Material, error) {
	tree := nodetree.New()
	for _, g := range d.Groups {
		ng := &nodetree.Group{Name: g.Name, Inputs: slices.Clone(g.Inputs), Outputs: slices.Clone(g.Outputs)}
		for _, n := range g.Nodes {
			ng.Nodes = append(ng.Nodes, toNode(n))
		}
		if err := tree.AddGroup(ng); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "restore node group %s", g.Name)
		}
	}
	for _, n := range d.Nodes {
		if _, err := tree.AddNode(*toNode(n)); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "restore node %s", n.Name)
		}
	}
	for _, l := range d.Links {
		link := nodetree.Link{FromNode: l.From, FromSocket: l.FromSocket, ToNode: l.To, ToSocket: l.ToSocket}
		if err := tree.AddLink(link); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "restore link %s -> %s", l.From, l.To)
		}
	}

	layers, err := stack.FromEntries(d.Layers.Entries, d.Layers.Selected)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "restore layer stack")
	}
	masks := make(map[string]*stack.Stack, len(d.Masks))
	for id, s := range d.Masks {
		ms, err := stack.FromEntries(s.Entries, s.Selected)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "restore mask stack of layer %s", id)
		}
		masks[id] = ms
	}
	return material.Restore(d.Name, tree, layers, masks, opts...)
}

func stackState(s *stack.Stack) StackState {
	return StackState{Entries: s.Entries(), Selected: s.Selected()}
}

func fromNode(n *nodetree.Node) Node {
	return Node{
		ID:      n.ID,
		Name:    n.Name,
		Kind:    n.Kind,
		Label:   n.Label,
		Group:   n.Group,
		Inputs:  slices.Clone(n.Inputs),
		Outputs: slices.Clone(n.Outputs),
		X:       n.Location.X,
		Y:       n.Location.Y,
		Width:   n.Width,
		Props:   maps.Clone(n.Props),
	}
}

func toNode(n Node) *nodetree.Node {
	props := nodetree.Props(maps.Clone(n.Props))
	if props == nil {
		props = nodetree.Props{}
	}
	return &nodetree.Node{
		ID:       n.ID,
		Name:     n.Name,
		Kind:     n.Kind,
		Label:    n.Label,
		Group:    n.Group,
		Inputs:   slices.Clone(n.Inputs),
		Outputs:  slices.Clone(n.Outputs),
		Location: nodetree.Vec2{X: n.X, Y: n.Y},
		Width:    n.Width,
		Props:    props,
	}
}

// =============================================================================
// Encoding
// =============================================================================

// Marshal encodes m as indented JSON.
func Marshal(m *material.Material) ([]byte, error) {
	return json.MarshalIndent(FromMaterial(m), "", "  ")
}

// Unmarshal decodes a document and rebuilds its material.
func Unmarshal(data []byte, opts ...material.Option) (*material.Material, error) {
	doc, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return doc.Material(opts...)
}

// Decode reads a document from r.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode document")
	}
	return &doc, nil
}

// Hash returns the content hash of the document, ignoring UpdatedAt.
func (d *Document) Hash() string {
	cp := *d
	cp.UpdatedAt = time.Time{}
	data, _ := json.Marshal(cp)
	return cache.Hash(data)
}

// WriteFile writes m to path as JSON.
func WriteFile(m *material.Material, path string) error {
	data, err := Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", m.Name, err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadFile reads a material from a JSON file.
func ReadFile(path string, opts ...material.Option) (*material.Material, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := Decode(f)
	if err != nil {
		return nil, err
	}
	return doc.Material(opts...)
}
