// Package nodelink renders JSON trees as node-link diagrams.
//
// # Overview
//
// Each tree node becomes a rounded box placed at its computed layout
// position, with an edge to each child. Boxes are tinted by node kind:
// objects violet, arrays green, primitives amber.
//
// # Usage
//
// Convert a tree to DOT, then render to SVG or PNG:
//
//	dot := nodelink.ToDOT(t, nodelink.Options{Highlight: match.ID})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0) // 2x scale
//
// # DOT Format
//
// The generated DOT uses the neato engine with every node pinned
// (pos="x,y!"), so Graphviz draws the tree exactly where [tree.Build] laid
// it out instead of computing its own layout. Layout y grows downward while
// Graphviz y grows upward, so y is negated.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process rendering;
// no Graphviz installation is needed.
//
// [tree.Build]: github.com/matzehuels/jsontree/pkg/tree.Build
package nodelink
