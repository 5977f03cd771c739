package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/fgraph/pkg/graph"
)

// Options configures overview rendering.
type Options struct {
	// Detailed adds the node name, class and traversal tags to labels.
	// When false, only the display lines are shown.
	Detailed bool

	// Traversal restricts edges to matching traversal names. Nil keeps all.
	Traversal *regexp.Regexp
}

// ToDOT converts a model to Graphviz DOT format. Nodes and edges are
// written in registration order, so the output is deterministic.
func ToDOT(m *graph.Model, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=10];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	nodes := m.Nodes()
	for _, n := range nodes {
		attrs := fmtAttrs(n, fmtLabel(n, opts.Detailed))
		fmt.Fprintf(&buf, "  %s [%s];\n", nodeID(n.ID), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, n := range nodes {
		for _, e := range n.Children {
			if opts.Traversal != nil && !opts.Traversal.MatchString(e.TraversalName()) {
				continue
			}
			var attrs []string
			if e.Annotation != "" {
				attrs = append(attrs, fmt.Sprintf("label=%q", e.Annotation))
			}
			if e.Depth == 0 {
				attrs = append(attrs, "style=dashed")
			}
			fmt.Fprintf(&buf, "  %s -> %s", nodeID(n.ID), nodeID(e.Node))
			if len(attrs) > 0 {
				fmt.Fprintf(&buf, " [%s]", strings.Join(attrs, ", "))
			}
			buf.WriteString(";\n")
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(id graph.NodeID) string {
	return "n" + strconv.Itoa(int(id))
}

func fmtLabel(n *graph.Node, detailed bool) string {
	label := strings.Join(n.Lines(), "\n")
	if !detailed {
		return label
	}
	parts := []string{n.Name}
	if n.CSSClass != "" {
		parts = append(parts, "class: "+n.CSSClass)
	}
	if len(n.Traversals) > 0 {
		parts = append(parts, "traversals: "+strings.Join(n.Traversals, ","))
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n *graph.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if n.HRef != "" {
		attrs = append(attrs, fmt.Sprintf("URL=%q", n.HRef))
	}
	if n.Synthetic {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=black")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based root element with one
// sized in user units.
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

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
