package tree

import (
	"strconv"

	"github.com/matzehuels/jsontree/pkg/jsonvalue"
)

// Build walks root in pre-order and returns its nodes and containment edges.
//
// Every call starts with fresh id and position counters, so building the same
// document twice yields identical trees. Node ids are "node_1", "node_2", ...
// in visit order and edge ids are "e_<parent>_<child>".
//
// Sibling coordinates come from one counter per depth that is shared by all
// branches: the second child of the root's second child sits below every
// depth-2 node visited before it, not next to its own first sibling.
func Build(root jsonvalue.Value) *Tree {
	b := &builder{}
	b.visit(root, key{}, 0, RootPath, "")

	t := &Tree{Nodes: b.nodes, Edges: b.edges}
	t.reindex()
	return t
}

// key is the position of a value inside its parent: an object key, an array
// index, or nothing for the root.
type key struct {
	name    string
	index   int
	isIndex bool
	present bool
}

func objectKey(name string) key { return key{name: name, present: true} }
func arrayKey(i int) key        { return key{index: i, isIndex: true, present: true} }

// label returns the display name of the key: "[i]" for indices, the key
// itself for object members and "root" when absent.
func (k key) label() string {
	switch {
	case k.isIndex:
		return "[" + strconv.Itoa(k.index) + "]"
	case k.present:
		return k.name
	}
	return RootLabel
}

// builder carries the per-build counters through the traversal.
type builder struct {
	nextID    int
	positions []int
	nodes     []Node
	edges     []Edge
}

func (b *builder) id() string {
	b.nextID++
	return "node_" + strconv.Itoa(b.nextID)
}

// slot returns the next sibling coordinate at depth and advances it.
func (b *builder) slot(depth int) int {
	for len(b.positions) <= depth {
		b.positions = append(b.positions, 0)
	}
	s := b.positions[depth]
	b.positions[depth]++
	return s
}

func (b *builder) visit(v jsonvalue.Value, k key, depth int, path, parentID string) {
	id := b.id()
	kind := KindOf(v)

	label := k.label()
	if kind == KindPrimitive {
		label += ": " + v.Text()
	}

	b.nodes = append(b.nodes, Node{
		ID:    id,
		Label: label,
		Path:  path,
		Kind:  kind,
		Depth: depth,
		Position: Position{
			X: float64(depth * SpacingX),
			Y: float64(b.slot(depth) * SpacingY),
		},
		Value: v,
	})

	if parentID != "" {
		b.edges = append(b.edges, Edge{
			ID:     "e_" + parentID + "_" + id,
			Source: parentID,
			Target: id,
		})
	}

	switch kind {
	case KindObject:
		for _, m := range v.Object {
			b.visit(m.Value, objectKey(m.Key), depth+1, childPath(path, objectKey(m.Key)), id)
		}
	case KindArray:
		for i, item := range v.Array {
			b.visit(item, arrayKey(i), depth+1, childPath(path, arrayKey(i)), id)
		}
	}
}

// childPath appends a key segment to a parent path. A key directly under the
// root drops the "$" placeholder and becomes the bare key name; an index keeps
// it, so the first element of a root array is "$[0]".
func childPath(parent string, k key) string {
	if k.isIndex {
		return parent + k.label()
	}
	if parent == RootPath || parent == "" {
		return k.name
	}
	return parent + "." + k.name
}
