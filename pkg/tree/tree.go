package tree

import (
	"errors"
	"fmt"

	"github.com/matzehuels/jsontree/pkg/jsonvalue"
)

var (
	// ErrUnknownEndpoint is returned by [Tree.Validate] when an edge
	// references a node id that is not part of the tree.
	ErrUnknownEndpoint = errors.New("edge references unknown node")

	// ErrMultipleParents is returned by [Tree.Validate] when a node has more
	// than one incoming edge.
	ErrMultipleParents = errors.New("node has more than one parent")

	// ErrOrphan is returned by [Tree.Validate] when a non-root node has no
	// incoming edge, or when the edge count is not node count minus one.
	ErrOrphan = errors.New("non-root node without parent")

	// ErrDuplicateID is returned by [Tree.Validate] when two nodes share an id.
	ErrDuplicateID = errors.New("duplicate node id")
)

// Layout spacing in pixels between depth columns and sibling rows.
const (
	SpacingX = 220
	SpacingY = 80
)

// RootPath is the path of the root node.
const RootPath = "$"

// RootLabel is the label of the root node.
const RootLabel = "root"

// Kind classifies a node for display.
type Kind string

const (
	KindObject    Kind = "object"
	KindArray     Kind = "array"
	KindPrimitive Kind = "primitive"
)

// KindOf classifies a JSON value. Null is a primitive.
func KindOf(v jsonvalue.Value) Kind {
	switch v.Kind {
	case jsonvalue.Object:
		return KindObject
	case jsonvalue.Array:
		return KindArray
	}
	return KindPrimitive
}

// Position is a node's layout coordinate. X grows with depth, Y with the
// node's slot among all nodes at the same depth.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is one visual box in the tree. Nodes are never mutated after a build.
type Node struct {
	ID       string          `json:"id"`
	Label    string          `json:"label"`
	Path     string          `json:"path"`
	Kind     Kind            `json:"type"`
	Depth    int             `json:"depth"`
	Position Position        `json:"position"`
	Value    jsonvalue.Value `json:"value"`
}

// IsRoot reports whether n is the root of its tree.
func (n *Node) IsRoot() bool { return n.Path == RootPath && n.Depth == 0 }

// Edge connects a parent node to one of its children.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// Tree is the result of a build: nodes in pre-order and one edge per
// non-root node, in the order the children were visited.
//
// The zero value is an empty tree. Trees returned by [Build] are indexed and
// safe for concurrent reads; a Tree decoded from JSON builds its index on the
// first lookup.
type Tree struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`

	index  map[string]int
	parent map[string]string
	kids   map[string][]string
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Nodes)
}

// Root returns the root node, or nil for an empty tree.
func (t *Tree) Root() *Node {
	if t.Len() == 0 {
		return nil
	}
	return &t.Nodes[0]
}

// Node returns the node with the given id.
func (t *Tree) Node(id string) (*Node, bool) {
	if t.Len() == 0 {
		return nil, false
	}
	t.ensureIndex()
	i, ok := t.index[id]
	if !ok {
		return nil, false
	}
	return &t.Nodes[i], true
}

// Parent returns the parent id of the node, or "" for the root or an
// unknown id.
func (t *Tree) Parent(id string) string {
	if t.Len() == 0 {
		return ""
	}
	t.ensureIndex()
	return t.parent[id]
}

// Children returns the ids of the node's children in visit order.
// The returned slice must not be modified.
func (t *Tree) Children(id string) []string {
	if t.Len() == 0 {
		return nil
	}
	t.ensureIndex()
	return t.kids[id]
}

// Ancestors returns the ids from the node's parent up to the root.
func (t *Tree) Ancestors(id string) []string {
	var out []string
	seen := map[string]bool{id: true}
	for p := t.Parent(id); p != ""; p = t.Parent(p) {
		if seen[p] {
			break
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// MaxDepth returns the deepest depth in the tree, or 0 when empty.
func (t *Tree) MaxDepth() int {
	depth := 0
	if t == nil {
		return depth
	}
	for i := range t.Nodes {
		depth = max(depth, t.Nodes[i].Depth)
	}
	return depth
}

// ensureIndex lazily builds lookup tables. Builders populate them eagerly,
// so this only does work for trees decoded from JSON.
func (t *Tree) ensureIndex() {
	if t.index != nil {
		return
	}
	t.reindex()
}

func (t *Tree) reindex() {
	t.index = make(map[string]int, len(t.Nodes))
	t.parent = make(map[string]string, len(t.Edges))
	t.kids = make(map[string][]string)
	for i := range t.Nodes {
		t.index[t.Nodes[i].ID] = i
	}
	for _, e := range t.Edges {
		t.parent[e.Target] = e.Source
		t.kids[e.Source] = append(t.kids[e.Source], e.Target)
	}
}

// Validate checks the structural invariants of a built tree:
//
//  1. Node ids are unique.
//  2. Every edge connects two known nodes.
//  3. Every node except the first has exactly one incoming edge, the first
//     has none, and there are exactly len(Nodes)-1 edges.
//  4. Walking parent links from any node reaches the root without revisiting
//     a node.
func (t *Tree) Validate() error {
	if t.Len() == 0 {
		if len(t.Edges) > 0 {
			return fmt.Errorf("%w: edges without nodes", ErrUnknownEndpoint)
		}
		return nil
	}

	ids := make(map[string]bool, len(t.Nodes))
	for _, n := range t.Nodes {
		if ids[n.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateID, n.ID)
		}
		ids[n.ID] = true
	}

	incoming := make(map[string]int, len(t.Edges))
	for _, e := range t.Edges {
		if !ids[e.Source] {
			return fmt.Errorf("%w: %s (edge %s)", ErrUnknownEndpoint, e.Source, e.ID)
		}
		if !ids[e.Target] {
			return fmt.Errorf("%w: %s (edge %s)", ErrUnknownEndpoint, e.Target, e.ID)
		}
		incoming[e.Target]++
		if incoming[e.Target] > 1 {
			return fmt.Errorf("%w: %s", ErrMultipleParents, e.Target)
		}
	}

	root := t.Nodes[0].ID
	if incoming[root] != 0 {
		return fmt.Errorf("%w: root %s", ErrMultipleParents, root)
	}
	for _, n := range t.Nodes[1:] {
		if incoming[n.ID] != 1 {
			return fmt.Errorf("%w: %s", ErrOrphan, n.ID)
		}
	}

	t.reindex()
	for _, n := range t.Nodes {
		seen := map[string]bool{n.ID: true}
		cur := n.ID
		for cur != root {
			cur = t.parent[cur]
			if seen[cur] {
				return fmt.Errorf("%w: cycle through %s", ErrOrphan, n.ID)
			}
			seen[cur] = true
		}
	}
	return nil
}
