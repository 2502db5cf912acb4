package nodetree

import (
	"cmp"
	"errors"
	"maps"
	"slices"

	"github.com/google/uuid"
)

var (
	// ErrInvalidName is returned by [Tree.NewNode] and [Tree.RenameNode] when
	// the name is empty. All nodes must have non-empty names.
	ErrInvalidName = errors.New("node name must not be empty")

	// ErrDuplicateName is returned when a node or group with the same name
	// already exists. Names are unique within a tree.
	ErrDuplicateName = errors.New("duplicate node name")

	// ErrUnknownNode is returned when a referenced node does not exist.
	ErrUnknownNode = errors.New("unknown node")

	// ErrUnknownSocket is returned by [Tree.Connect] when a socket name is not
	// declared on the node.
	ErrUnknownSocket = errors.New("unknown socket")

	// ErrUnknownGroup is returned when a referenced node group does not exist.
	ErrUnknownGroup = errors.New("unknown node group")

	// ErrInvalidLink is returned by [Tree.Validate] when a link references a
	// missing node or socket.
	ErrInvalidLink = errors.New("invalid link endpoint")
)

// Props stores arbitrary node properties (blend mode, default values, labels
// shown by the host). Props maps are never nil after a node is added.
type Props map[string]any

// Vec2 is a position in the node editor.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a node in a material tree or inside a node group.
type Node struct {
	ID       string   // Stable opaque identifier
	Name     string   // Unique lookup label
	Kind     string   // Host node type, e.g. KindGroup
	Label    string   // Display label
	Group    string   // Name of the backing node group (group nodes only)
	Inputs   []string // Input socket names in order
	Outputs  []string // Output socket names in order
	Location Vec2
	Width    float64
	Props    Props
}

// HasInput reports whether the node declares the named input socket.
func (n *Node) HasInput(name string) bool { return slices.Contains(n.Inputs, name) }

// HasOutput reports whether the node declares the named output socket.
func (n *Node) HasOutput(name string) bool { return slices.Contains(n.Outputs, name) }

// Link connects an output socket to an input socket. Endpoints are node IDs.
type Link struct {
	FromNode   string
	FromSocket string
	ToNode     string
	ToSocket   string
}

// Common node kinds.
const (
	KindGroup  = "ShaderNodeGroup"
	KindMix    = "ShaderNodeMix"
	KindOutput = "ShaderNodeOutputMaterial"
	KindMath   = "ShaderNodeMath"
	KindImage  = "ShaderNodeTexImage"
	KindMap    = "ShaderNodeMapping"
)

// Tree is a material node tree plus its node group registry.
// The zero value is not usable - use [New].
type Tree struct {
	nodes  map[string]*Node  // ID -> node
	byName map[string]string // name -> ID
	links  []Link
	groups map[string]*Group
}

// New creates an empty tree.
func New() *Tree {
	return &Tree{
		nodes:  make(map[string]*Node),
		byName: make(map[string]string),
		groups: make(map[string]*Group),
	}
}

// NewNode creates a node of the given kind under a unique name and returns it.
func (t *Tree) NewNode(kind, name string) (*Node, error) {
	return t.AddNode(Node{Kind: kind, Name: name})
}

// AddNode inserts a copy of n. A missing ID is generated; an existing ID is kept,
// which lets persisted trees round-trip with stable identities.
func (t *Tree) AddNode(n Node) (*Node, error) {
	if n.Name == "" {
		return nil, ErrInvalidName
	}
	if _, exists := t.byName[n.Name]; exists {
		return nil, ErrDuplicateName
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if _, exists := t.nodes[n.ID]; exists {
		return nil, ErrDuplicateName
	}
	if n.Props == nil {
		n.Props = Props{}
	}
	node := &n
	t.nodes[node.ID] = node
	t.byName[node.Name] = node.ID
	return node, nil
}

// RemoveNode deletes the named node and every link touching it.
func (t *Tree) RemoveNode(name string) error {
	id, ok := t.byName[name]
	if !ok {
		return ErrUnknownNode
	}
	delete(t.byName, name)
	delete(t.nodes, id)
	t.links = slices.DeleteFunc(t.links, func(l Link) bool { return l.FromNode == id || l.ToNode == id })
	return nil
}

// Node returns the node with the given name, or nil if there is none.
func (t *Tree) Node(name string) *Node {
	id, ok := t.byName[name]
	if !ok {
		return nil
	}
	return t.nodes[id]
}

// Nodes returns all nodes sorted by name.
func (t *Tree) Nodes() []*Node {
	nodes := slices.Collect(maps.Values(t.nodes))
	slices.SortFunc(nodes, func(a, b *Node) int { return cmp.Compare(a.Name, b.Name) })
	return nodes
}

// NodeCount returns the number of nodes in the tree.
func (t *Tree) NodeCount() int { return len(t.nodes) }

// RenameNode changes a node's name. Links are keyed by ID and are unaffected.
// Returns ErrInvalidName if newName is empty, ErrUnknownNode if oldName
// doesn't exist, or ErrDuplicateName if newName is already in use.
func (t *Tree) RenameNode(oldName, newName string) error {
	if newName == "" {
		return ErrInvalidName
	}
	id, ok := t.byName[oldName]
	if !ok {
		return ErrUnknownNode
	}
	if oldName == newName {
		return nil
	}
	if _, exists := t.byName[newName]; exists {
		return ErrDuplicateName
	}
	delete(t.byName, oldName)
	t.byName[newName] = id
	t.nodes[id].Name = newName
	return nil
}

// Connect links output socket out of from to input socket in of to.
// An existing link into the input is replaced.
func (t *Tree) Connect(from *Node, out string, to *Node, in string) error {
	if from == nil || to == nil || t.nodes[from.ID] != from || t.nodes[to.ID] != to {
		return ErrUnknownNode
	}
	if !from.HasOutput(out) || !to.HasInput(in) {
		return ErrUnknownSocket
	}
	t.links = slices.DeleteFunc(t.links, func(l Link) bool { return l.ToNode == to.ID && l.ToSocket == in })
	t.links = append(t.links, Link{FromNode: from.ID, FromSocket: out, ToNode: to.ID, ToSocket: in})
	return nil
}

// DisconnectInputs removes every link into n and returns how many were removed.
func (t *Tree) DisconnectInputs(n *Node) int {
	if n == nil {
		return 0
	}
	before := len(t.links)
	t.links = slices.DeleteFunc(t.links, func(l Link) bool { return l.ToNode == n.ID })
	return before - len(t.links)
}

// RemoveLink deletes l if present and reports whether it was found.
func (t *Tree) RemoveLink(l Link) bool {
	before := len(t.links)
	t.links = slices.DeleteFunc(t.links, func(x Link) bool { return x == l })
	return len(t.links) != before
}

// InputLink returns the link feeding input socket in of n.
func (t *Tree) InputLink(n *Node, in string) (Link, bool) {
	if n == nil {
		return Link{}, false
	}
	for _, l := range t.links {
		if l.ToNode == n.ID && l.ToSocket == in {
			return l, true
		}
	}
	return Link{}, false
}

// Links returns a copy of all links in insertion order.
func (t *Tree) Links() []Link { return slices.Clone(t.links) }

// AddLink restores a persisted link. Unlike [Tree.Connect] it addresses nodes by ID.
func (t *Tree) AddLink(l Link) error {
	from, to := t.nodes[l.FromNode], t.nodes[l.ToNode]
	if from == nil || to == nil {
		return ErrUnknownNode
	}
	return t.Connect(from, l.FromSocket, to, l.ToSocket)
}

// Validate checks that every link references existing nodes and declared sockets,
// that every group node's group exists, and that no input has two links.
func (t *Tree) Validate() error {
	seen := make(map[[2]string]bool, len(t.links))
	for _, l := range t.links {
		from, to := t.nodes[l.FromNode], t.nodes[l.ToNode]
		if from == nil || to == nil || !from.HasOutput(l.FromSocket) || !to.HasInput(l.ToSocket) {
			return ErrInvalidLink
		}
		key := [2]string{l.ToNode, l.ToSocket}
		if seen[key] {
			return ErrInvalidLink
		}
		seen[key] = true
	}
	for _, n := range t.nodes {
		if n.Group != "" && t.groups[n.Group] == nil {
			return ErrUnknownGroup
		}
	}
	return nil
}
