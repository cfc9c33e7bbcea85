// Package tree turns a parsed JSON document into a flat node-link tree.
//
// # Overview
//
// Every object, array and primitive in the document becomes a [Node]; every
// parent/child containment becomes an [Edge]. The result is the minimal
// contract a rendering layer needs to draw boxes and arrows: node ids, labels,
// paths, kinds and positions, plus edges between ids.
//
// # Basic Usage
//
//	v, _ := jsonvalue.Parse([]byte(`{"a": {"b": 1}}`))
//	t := tree.Build(v)
//	for _, n := range t.Nodes {
//	    fmt.Println(n.ID, n.Path, n.Label)
//	}
//	// node_1 $ root
//	// node_2 a a
//	// node_3 a.b b: 1
//
// # Paths
//
// The root's path is "$". Object children append ".key" and array children
// append "[i]". Keys directly under the root drop the "$" placeholder, so the
// path of a top-level key is the bare key name ("user"). Array elements keep
// it: the first element of a root array is "$[0]". Paths are not escaped, so keys containing "." or "["
// can produce paths that collide with other nodes.
//
// # Layout
//
// Positions are assigned during the walk. X is depth*[SpacingX]. Y comes
// from a counter per depth that every branch shares, so nodes at the same
// depth are stacked in visit order regardless of their parent. This keeps
// rows from overlapping without a second layout pass, at the cost of long
// vertical gaps in unbalanced documents.
//
// # Concurrency
//
// [Build] keeps all of its counters in a per-call builder, so concurrent
// builds are independent. A built [Tree] is read-only.
package tree
