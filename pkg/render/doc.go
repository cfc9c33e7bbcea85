// Package render names the output formats a tree can be rendered to.
//
// # Overview
//
// A built tree is either serialized as JSON, or turned into a diagram by the
// [nodelink] subpackage:
//
//   - [FormatJSON]: the node and edge lists, for web front ends
//   - [FormatDOT]: Graphviz source with pinned node positions
//   - [FormatSVG], [FormatPNG]: diagrams rendered in-process by Graphviz
//
// # Usage
//
//	f, err := render.ParseFormat("svg")
//	dot := nodelink.ToDOT(t, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [nodelink]: github.com/matzehuels/jsontree/pkg/render/nodelink
package render
