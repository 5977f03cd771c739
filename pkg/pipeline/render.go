package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/fgraph/pkg/diag"
	"github.com/matzehuels/fgraph/pkg/graph"
	"github.com/matzehuels/fgraph/pkg/layout"
	"github.com/matzehuels/fgraph/pkg/render/nodelink"
	"github.com/matzehuels/fgraph/pkg/render/svg"
)

// Diagram is one rendered SVG document.
type Diagram struct {
	Name      string // Output file stem
	Traversal string
	Focus     string // Name of the focus node
	SVG       []byte
	CSSFile   string // Resolved stylesheet path; empty if it was not found
	Layout    *layout.Layout
}

// FileName returns the output file name of d.
func (d *Diagram) FileName() string { return d.Name + ".svg" }

// render produces the diagrams requested by one traversal. Problems with
// individual diagrams are recorded and the diagram is skipped.
func (r *Runner) render(m *graph.Model, opts *Options, t *Traversal, dc *diag.Collector) []*Diagram {
	css, ok := findCSS(t.CSSFile, opts.InputDir())
	if !ok {
		dc.Errorf(t.Name, "css file %q not found in working directory or %q", t.CSSFile, opts.InputDir())
	}

	legend := m.Legends()
	if t.Legend != "" {
		legend = m.Legend(t.Legend)
		if len(legend) == 0 {
			dc.Warnf(t.Name, "legend %q has no entries", t.Legend)
		}
	}

	var out []*Diagram
	for _, target := range r.targets(m, t, dc) {
		d, err := r.diagram(m, target.focus, t, legend, css, dc)
		if err != nil {
			dc.Errorf(target.focus.Location, "diagram %s: %v", target.name, err)
			continue
		}
		d.Name = target.name
		d.SVG = svg.Render(d.Layout, svg.WithName(d.Name), svg.WithStylesheets(filepath.Base(t.CSSFile)))
		out = append(out, d)
	}
	return out
}

type target struct {
	name  string
	focus *graph.Node
}

// targets returns the focus nodes of t in model order. Focus and fragment
// traversals use every top-level node tagged with the traversal name, or
// every top-level node when nothing is tagged. Anchors sharing their last
// url part are told apart by resource type.
func (r *Runner) targets(m *graph.Model, t *Traversal, dc *diag.Collector) []target {
	var out []target
	switch t.Kind {
	case KindSingle:
		matches, err := m.FindByPattern(t.Start)
		if err != nil {
			dc.Errorf(t.Name, "start %q: %v", t.Start, err)
			return nil
		}
		if len(matches) == 0 {
			dc.Add(diag.Diagnostic{
				Severity: diag.SeverityError,
				Source:   t.Name,
				Message:  "no nodes match start pattern " + t.Start,
				Hints:    m.CloseMatches(t.Start),
			})
			return nil
		}
		for i, n := range matches {
			name := t.Diagram
			if i > 0 {
				name += "-" + fileStem(n.Name)
			}
			out = append(out, target{name: name, focus: n})
		}
	default:
		nodes := m.Tagged(t.Name)
		if len(nodes) == 0 {
			nodes = m.Nodes()
		}
		prefix := strings.ToUpper(t.Name[:1]) + t.Name[1:] + "Graph-"
		var focus []*graph.Node
		stems := map[string]int{}
		for _, n := range nodes {
			if n.Synthetic || !n.IsTopLevel() {
				continue
			}
			focus = append(focus, n)
			stems[n.Anchor.Name()]++
		}
		taken := map[string]bool{}
		for _, n := range focus {
			stem := n.Anchor.Name()
			if stems[stem] > 1 {
				stem = n.Anchor.ResourceType() + "-" + stem
			}
			name := prefix + fileStem(stem)
			if taken[name] {
				name += "-" + fileStem(n.Name)
			}
			taken[name] = true
			out = append(out, target{name: name, focus: n})
		}
	}
	return out
}

func (r *Runner) diagram(m *graph.Model, focus *graph.Node, t *Traversal, legend []graph.Legend, css string, dc *diag.Collector) (*Diagram, error) {
	root, err := layout.Focus(m, focus, layout.Options{
		Filter:   t.filter,
		Depth:    t.Depth,
		Keys:     t.KeyList(),
		Measurer: r.measurer(),
		Diag:     dc,
	})
	if err != nil {
		return nil, err
	}
	return &Diagram{
		Traversal: t.Name,
		Focus:     focus.Name,
		CSSFile:   css,
		Layout:    layout.Place(root, legend, layout.DefaultConfig(), r.measurer()),
	}, nil
}

// Overview renders the whole model as DOT and Graphviz SVG.
func Overview(ctx context.Context, m *graph.Model) (string, []byte, error) {
	dot := nodelink.ToDOT(m, nodelink.Options{})
	out, err := nodelink.RenderSVG(ctx, dot)
	if err != nil {
		return dot, nil, err
	}
	return dot, out, nil
}

// findCSS looks name up relative to the working directory, then dir.
func findCSS(name, dir string) (string, bool) {
	if name == "" {
		return "", false
	}
	candidates := []string{name}
	if !filepath.IsAbs(name) {
		candidates = append(candidates, filepath.Join(dir, name))
	}
	for _, c := range candidates {
		if fi, err := os.Stat(c); err == nil && !fi.IsDir() {
			return c, true
		}
	}
	return "", false
}

func fileStem(s string) string {
	return strings.NewReplacer(":", "-", "/", "-", "\\", "-").Replace(s)
}
