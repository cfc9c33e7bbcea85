// Package query locates tree nodes from path expressions.
//
// A path expression is a dotted key path with bracketed array indices, with
// an optional "$" root marker: "user.address.city", "$.items[0].name".
//
// [Tokenize] splits an expression on dots, keeping bracket suffixes inside
// their token. [Resolve] scans a node list in order and returns the first node
// whose path equals the joined tokens or ends with them, so "city" finds
// "user.address.city". The suffix test is plain string matching: "ity" also
// finds it, and when several nodes share a suffix the earliest in the list
// wins.
package query

import (
	"strings"

	"github.com/matzehuels/jsontree/pkg/tree"
)

// Tokenize splits a path expression into key tokens.
//
// Surrounding whitespace and one leading "$" (with its following ".") are
// removed, and whitespace left behind by the "$" is trimmed again. Empty
// segments are dropped. The result is never nil.
//
//	Tokenize("$.a.b")   // ["a", "b"]
//	Tokenize("a.b[0]")  // ["a", "b[0]"]
//	Tokenize("")        // []
func Tokenize(expr string) []string {
	s := strings.TrimSpace(trimRoot(strings.TrimSpace(expr)))
	tokens := []string{}
	for _, part := range strings.Split(s, ".") {
		if part != "" {
			tokens = append(tokens, part)
		}
	}
	return tokens
}

// trimRoot removes a leading "$" and a "." directly after it.
func trimRoot(s string) string {
	s, ok := strings.CutPrefix(s, "$")
	if ok {
		s = strings.TrimPrefix(s, ".")
	}
	return s
}

// Normalize returns the comparison form of a stored node path.
func Normalize(path string) string { return trimRoot(path) }

// Resolve returns the first node, in list order, whose normalized path equals
// the dot-joined tokens or ends with them. Nodes with an empty path are
// skipped. It reports false when nothing matches or nodes is empty.
//
// An empty token list joins to "", which every path ends with, so it matches
// the first node with a path. Callers that treat an empty query as an error
// must check before resolving.
func Resolve(nodes []tree.Node, tokens []string) (*tree.Node, bool) {
	joined := strings.Join(tokens, ".")
	for i := range nodes {
		if nodes[i].Path == "" {
			continue
		}
		norm := Normalize(nodes[i].Path)
		if norm == joined || strings.HasSuffix(norm, joined) {
			return &nodes[i], true
		}
	}
	return nil, false
}

// ResolveExact is like [Resolve] but only accepts whole-path matches.
func ResolveExact(nodes []tree.Node, tokens []string) (*tree.Node, bool) {
	joined := strings.Join(tokens, ".")
	for i := range nodes {
		if nodes[i].Path != "" && Normalize(nodes[i].Path) == joined {
			return &nodes[i], true
		}
	}
	return nil, false
}

// Find tokenizes expr and resolves it against nodes.
func Find(nodes []tree.Node, expr string) (*tree.Node, bool) {
	return Resolve(nodes, Tokenize(expr))
}

// All returns every node [Resolve] would accept, in list order. The first
// element, when present, is the node Resolve returns.
func All(nodes []tree.Node, tokens []string) []*tree.Node {
	joined := strings.Join(tokens, ".")
	var out []*tree.Node
	for i := range nodes {
		if nodes[i].Path == "" {
			continue
		}
		if strings.HasSuffix(Normalize(nodes[i].Path), joined) {
			out = append(out, &nodes[i])
		}
	}
	return out
}
