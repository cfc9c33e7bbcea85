// Package io reads JSON and YAML documents and reads and writes built trees.
//
// # Overview
//
// Documents are decoded into order-preserving [jsonvalue.Value] trees. YAML
// input is converted to JSON first, so anchors, multi-line strings and the
// other YAML conveniences work for configuration files.
//
//	v, err := io.ReadFile("config.yaml")
//	t := tree.Build(v)
//
// # Tree Format
//
// [WriteTree] emits the node and edge lists a web front end needs to draw
// the tree, as indented JSON:
//
//	{
//	  "nodes": [
//	    {"id": "node_1", "label": "root", "path": "$", "type": "object",
//	     "depth": 0, "position": {"x": 0, "y": 0}, "value": {...}},
//	    ...
//	  ],
//	  "edges": [
//	    {"id": "e_node_1_node_2", "source": "node_1", "target": "node_2"}
//	  ]
//	}
//
// [ReadTree] decodes the same format and validates the structure, so a tree
// can be cached or handed between processes and re-read intact.
//
// [jsonvalue.Value]: github.com/matzehuels/jsontree/pkg/jsonvalue.Value
package io
