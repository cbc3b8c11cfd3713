package ontology

import (
	"errors"
	"fmt"
)

// NodeID indexes a node in a Tree.
type NodeID int

const (
	// NoNode is the id of no node at all.
	NoNode NodeID = -1
	// NoParent marks a root node.
	NoParent = NoNode
)

var (
	ErrNotFound      = errors.New("concept not found")
	ErrDuplicateKey  = errors.New("concept key already present")
	ErrUnknownParent = errors.New("parent not present in tree")
)

// Tree is an arena of ontology nodes. A node can only be attached to a
// parent that is already in the arena, so parent chains always end at a
// root and cannot cycle.
type Tree struct {
	nodes []Node
	byKey map[string]NodeID
}

// NewTree creates an empty tree.
func NewTree() *Tree {
	return &Tree{byKey: make(map[string]NodeID)}
}

// Add appends n below parent (NoParent for a root) and returns its id.
func (t *Tree) Add(n Node, parent NodeID) (NodeID, error) {
	if _, ok := t.byKey[n.Key]; ok {
		return NoParent, fmt.Errorf("%w: %s", ErrDuplicateKey, n.Key)
	}
	if parent != NoParent && !t.valid(parent) {
		return NoParent, fmt.Errorf("%w: %d", ErrUnknownParent, parent)
	}
	id := NodeID(len(t.nodes))
	n.ID = id
	n.Parent = parent
	t.nodes = append(t.nodes, n)
	t.byKey[n.Key] = id
	return id, nil
}

// Node returns the node with the given id. The pointer stays valid until
// the next Add.
func (t *Tree) Node(id NodeID) (*Node, bool) {
	if !t.valid(id) {
		return nil, false
	}
	return &t.nodes[id], true
}

// Parent returns the parent of id, if any.
func (t *Tree) Parent(id NodeID) (*Node, bool) {
	n, ok := t.Node(id)
	if !ok || n.Parent == NoParent {
		return nil, false
	}
	return t.Node(n.Parent)
}

// Grandparent returns parent.parent of id, if both exist.
func (t *Tree) Grandparent(id NodeID) (*Node, bool) {
	p, ok := t.Parent(id)
	if !ok {
		return nil, false
	}
	return t.Parent(p.ID)
}

// Lookup finds a node by key.
func (t *Tree) Lookup(key string) (*Node, bool) {
	id, ok := t.byKey[key]
	if !ok {
		return nil, false
	}
	return &t.nodes[id], true
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	return len(t.nodes)
}

func (t *Tree) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}
