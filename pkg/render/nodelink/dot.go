package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/jsontree/pkg/tree"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Highlight is the id of a node drawn with a heavy outline, typically
	// the current search match. Empty highlights nothing.
	Highlight string

	// Scale multiplies the output resolution (dpi=72*Scale). Zero means 1.
	Scale float64
}

type palette struct{ fill, stroke string }

var palettes = map[tree.Kind]palette{
	tree.KindObject:    {fill: "#eef2ff", stroke: "#5B21B6"},
	tree.KindArray:     {fill: "#ecfdf5", stroke: "#059669"},
	tree.KindPrimitive: {fill: "#fff7ed", stroke: "#B45309"},
}

// ToDOT converts a tree to Graphviz DOT with pinned node positions.
// The resulting DOT string can be rendered using [RenderSVG] or [RenderPNG].
func ToDOT(t *tree.Tree, opts Options) string {
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	fmt.Fprintf(&buf, "  dpi=%s;\n", strconv.FormatFloat(72*scale, 'f', -1, 64))
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontname=\"Helvetica\", fontsize=12, margin=\"0.15,0.06\", penwidth=1.5];\n")
	buf.WriteString("  edge [color=\"#94a3b8\", arrowsize=0.6];\n")
	buf.WriteString("\n")

	if t == nil {
		buf.WriteString("}\n")
		return buf.String()
	}

	for i := range t.Nodes {
		n := &t.Nodes[i]
		fmt.Fprintf(&buf, "  %s [%s];\n", quote(n.ID), strings.Join(fmtAttrs(n, opts), ", "))
	}

	buf.WriteString("\n")
	for _, e := range t.Edges {
		fmt.Fprintf(&buf, "  %s -> %s;\n", quote(e.Source), quote(e.Target))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtAttrs(n *tree.Node, opts Options) []string {
	p, ok := palettes[n.Kind]
	if !ok {
		p = palettes[tree.KindPrimitive]
	}
	attrs := []string{
		"label=" + quote(n.Label),
		"tooltip=" + quote(n.Path),
		fmt.Sprintf("pos=\"%s,%s!\"", ftoa(n.Position.X), ftoa(flipY(n.Position.Y))),
		"fillcolor=" + quote(p.fill),
		"color=" + quote(p.stroke),
	}
	if n.ID == opts.Highlight {
		attrs = append(attrs, "penwidth=4")
	}
	return attrs
}

// flipY converts a downward layout y to Graphviz's upward axis without
// producing negative zero.
func flipY(y float64) float64 {
	if y == 0 {
		return 0
	}
	return -y
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// quote renders s as a DOT double-quoted string. Backslashes are doubled so
// Graphviz does not read escString sequences such as \N or \l.
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", ``)
	return `"` + r.Replace(s) + `"`
}

// RenderSVG renders a DOT graph to SVG using the neato engine.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders a DOT graph to PNG using the neato engine. Resolution
// comes from the dpi attribute written by [ToDOT].
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.-]+)\s+([0-9.-]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-sized svg element with one
// whose width and height match the viewBox, so browsers scale it cleanly.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
