// Package pkg provides the core libraries for jsontree.
//
// # Overview
//
// jsontree turns a JSON document into a node-link tree: every value becomes a
// labelled node placed by depth and sibling order, and every containment
// becomes an edge. Nodes can then be found again by path expression and the
// tree rendered as DOT, SVG or PNG. The pkg directory is organized into:
//
//  1. [jsonvalue] - Order-preserving JSON (and YAML) document model
//  2. [tree] - Node and edge construction with layout positions
//  3. [query] - Path expression tokenizing, resolution and suggestions
//  4. [render] - Output formats and the Graphviz node-link renderer
//  5. [pipeline] - Orchestration (decode → build → search → render) with caching
//  6. [session] - Interactive view state shared by the browser and the API
//
// Supporting packages:
//
//   - [cache]: file, redis and no-op backends for documents and renders
//   - [clipboard]: OSC 52 and in-memory clipboard writers
//   - [errors]: coded errors and input validation
//   - [io]: format detection and tree JSON import/export
//   - [observability]: pipeline, cache and HTTP hooks with a Prometheus backend
//   - [buildinfo]: version information set at link time
//
// # Architecture
//
// The typical data flow through jsontree:
//
//	JSON / YAML text
//	       ↓
//	  [jsonvalue] package (decode, keep key order and number text)
//	       ↓
//	  [tree] package (pre-order walk, ids, labels, paths, positions)
//	       ↓
//	  [query] package (resolve "user.address.city" to a node)
//	       ↓
//	  [render] package (DOT, SVG, PNG or JSON)
//
// # Quick Start
//
//	v, err := jsonvalue.Parse([]byte(`{"user": {"name": "Ada"}}`))
//	if err != nil {
//	    return err
//	}
//	t := tree.Build(v)
//	n, ok := query.Resolve(t.Nodes, query.Tokenize("user.name"))
//
// Most callers go through [pipeline.Runner], which adds validation, caching
// and metrics on top of these steps.
//
// [jsonvalue]: github.com/matzehuels/jsontree/pkg/jsonvalue
// [tree]: github.com/matzehuels/jsontree/pkg/tree
// [query]: github.com/matzehuels/jsontree/pkg/query
// [render]: github.com/matzehuels/jsontree/pkg/render
// [pipeline]: github.com/matzehuels/jsontree/pkg/pipeline
// [pipeline.Runner]: github.com/matzehuels/jsontree/pkg/pipeline#Runner
// [session]: github.com/matzehuels/jsontree/pkg/session
// [cache]: github.com/matzehuels/jsontree/pkg/cache
// [clipboard]: github.com/matzehuels/jsontree/pkg/clipboard
// [errors]: github.com/matzehuels/jsontree/pkg/errors
// [io]: github.com/matzehuels/jsontree/pkg/io
// [observability]: github.com/matzehuels/jsontree/pkg/observability
// [buildinfo]: github.com/matzehuels/jsontree/pkg/buildinfo
package pkg
