package layout

import (
	"math"
	"sort"

	"github.com/matzehuels/fgraph/pkg/fonts"
	"github.com/matzehuels/fgraph/pkg/graph"
)

// Config holds diagram dimensions in layout units.
type Config struct {
	BorderMargin float64 // Padding inside a box and around the diagram
	LineHeight   float64
	NodeGapX     float64
	NodeGapY     float64 // Vertical space between stacked boxes
	BorderWidth  float64
	RectRadius   float64
	MinXGap      float64 // Smallest gap on either side of a bus
	LabelOffset  float64 // Annotation text offset from its stub
	LegendGap    float64 // Space between diagram and legend row
}

// DefaultConfig returns the standard diagram dimensions.
func DefaultConfig() Config {
	return Config{
		BorderMargin: 0.5,
		LineHeight:   1.25,
		NodeGapX:     0.5,
		NodeGapY:     0.5,
		BorderWidth:  0.125,
		RectRadius:   0.25,
		MinXGap:      2,
		LabelOffset:  0.25,
		LegendGap:    5,
	}
}

// Layout is a fully positioned diagram.
type Layout struct {
	Config  Config
	Nodes   []*Node // In placement order
	Legend  []*Node
	Lines   []Line
	Labels  []Label
	Bounds  Rect
	Classes []string // Sorted classes used by diagram boxes
}

// Count returns the number of lines of kind.
func (l *Layout) Count(kind LineKind) int {
	n := 0
	for _, ln := range l.Lines {
		if ln.Kind == kind {
			n++
		}
	}
	return n
}

// TextAnchor returns the baseline position of line i of n.
func (l *Layout) TextAnchor(n *Node, i int) Point {
	return Point{
		X: (n.Box.Left + n.Box.Right) / 2,
		Y: n.Box.Top + l.Config.BorderMargin + 1 + float64(i)*l.Config.LineHeight,
	}
}

type endPoint struct {
	at         Point
	annotation string
}

type placer struct {
	cfg  Config
	out  *Layout
	used map[string]bool
	maxX float64
	maxY float64
}

// Place positions root and its descendants starting at the top left
// margin, then appends a legend row for every legend entry whose class
// is used by a box in the diagram.
func Place(root *Group, legend []graph.Legend, cfg Config, m fonts.Measurer) *Layout {
	if m == nil {
		m = fonts.Default()
	}
	p := &placer{
		cfg:  cfg,
		out:  &Layout{Config: cfg},
		used: make(map[string]bool),
	}
	var ends []endPoint
	p.group(root, cfg.BorderMargin, cfg.BorderMargin, &ends)

	for c := range p.used {
		p.out.Classes = append(p.out.Classes, c)
	}
	sort.Strings(p.out.Classes)

	p.legend(legend, m)
	p.out.Bounds = Rect{Right: p.maxX + cfg.BorderMargin, Bottom: p.maxY + cfg.BorderMargin}
	return p.out
}

// group places g at (x, y) and returns the size of the area it covers.
// Endpoints for connectors into g's nodes are appended to ends.
func (p *placer) group(g *Group, x, y float64, ends *[]endPoint) (w, h float64) {
	if len(g.Nodes) > 0 {
		return p.column(g, x, y, ends)
	}
	for _, c := range g.Children {
		cw, ch := p.group(c, x, y, ends)
		h += ch
		y += ch
		w = max(w, cw)
	}
	return w, h
}

func (p *placer) column(g *Group, x, y float64, ends *[]endPoint) (w, h float64) {
	var colW, colH float64
	top, bottom := math.Inf(1), math.Inf(-1)
	starts := make([]endPoint, 0, len(g.Nodes))

	cy := y
	for _, n := range g.Nodes {
		nw, nh := p.node(n, x, cy)
		colW = max(colW, nw)
		mid := cy + nh/2
		top, bottom = min(top, mid), max(bottom, mid)
		starts = append(starts, endPoint{Point{x + nw, mid}, n.RhsAnnotation})
		*ends = append(*ends, endPoint{Point{x, mid}, n.LhsAnnotation})
		colH += nh + p.cfg.NodeGapY
		cy += nh + p.cfg.NodeGapY
	}
	p.maxX = max(p.maxX, x+colW)

	w, h = p.children(g, x, y, colW, top, bottom, starts)
	return w, max(h, colH)
}

func (p *placer) children(g *Group, x, y, colW, top, bottom float64, starts []endPoint) (w, h float64) {
	rhsGap := p.gap(g.MaxRhsAnnotation())
	bus := x + colW + rhsGap
	linked := false

	cy := y
	for _, c := range g.Children {
		lhsGap := p.gap(c.MaxLhsAnnotation())
		cx := bus + lhsGap

		var ends []endPoint
		cw, ch := p.group(c, cx, cy, &ends)
		cy += ch
		h += ch

		if len(starts) > 0 {
			for _, e := range ends {
				linked = true
				p.line(StubEnd, Point{bus, e.at.Y}, e.at)
				p.label(e.annotation, ClassLhsText, Point{bus + p.cfg.LabelOffset, e.at.Y - p.cfg.LabelOffset})
				top, bottom = min(top, e.at.Y), max(bottom, e.at.Y)
			}
		}
		w = max(w, colW+rhsGap+lhsGap+cw)
		p.maxX = max(p.maxX, cx+cw)
	}

	if linked {
		for _, s := range starts {
			p.line(StubStart, s.at, Point{bus, s.at.Y})
			p.label(s.annotation, ClassRhsText, Point{s.at.X + p.cfg.LabelOffset, s.at.Y - p.cfg.LabelOffset})
		}
		if bottom > top {
			p.line(Bus, Point{bus, top}, Point{bus, bottom})
		}
	}
	return w, h
}

// gap converts an annotation width in pixels to a column gap.
func (p *placer) gap(px float64) float64 {
	if px == 0 {
		return p.cfg.MinXGap
	}
	return max(p.cfg.MinXGap, px/Scale+2*p.cfg.LabelOffset)
}

func (p *placer) node(n *Node, x, y float64) (w, h float64) {
	h = float64(len(n.Lines))*p.cfg.LineHeight + 2*p.cfg.BorderMargin
	w = n.Width/Scale + 2*p.cfg.BorderMargin
	n.Box = Rect{Left: x, Top: y, Right: x + w, Bottom: y + h}
	p.maxX = max(p.maxX, n.Box.Right)
	p.maxY = max(p.maxY, n.Box.Bottom)
	p.out.Nodes = append(p.out.Nodes, n)
	if n.Class != "" {
		p.used[n.Class] = true
	}
	for _, l := range n.Lines {
		if l.Class != "" {
			p.used[l.Class] = true
		}
	}
	return w, h
}

func (p *placer) line(kind LineKind, from, to Point) {
	p.out.Lines = append(p.out.Lines, Line{Kind: kind, From: from, To: to})
}

func (p *placer) label(text, class string, at Point) {
	if text == "" {
		return
	}
	p.out.Labels = append(p.out.Labels, Label{At: at, Text: text, Class: class})
}

func (p *placer) legend(entries []graph.Legend, m fonts.Measurer) {
	x := p.cfg.BorderMargin
	y := p.maxY + p.cfg.LegendGap
	for _, e := range entries {
		if !p.used[e.CSSClass] {
			continue
		}
		n := &Node{Source: -1, Class: e.CSSClass}
		n.AddLine(Text{Text: e.Item}, m)
		h := float64(len(n.Lines))*p.cfg.LineHeight + 2*p.cfg.BorderMargin
		w := n.Width/Scale + 2*p.cfg.BorderMargin
		n.Box = Rect{Left: x, Top: y, Right: x + w, Bottom: y + h}
		p.out.Legend = append(p.out.Legend, n)
		x += w + p.cfg.NodeGapX
		p.maxX = max(p.maxX, n.Box.Right)
		p.maxY = max(p.maxY, n.Box.Bottom)
	}
}
