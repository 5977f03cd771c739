package layout

import (
	"sort"
	"strings"
	"sync"

	"github.com/matzehuels/fgraph/pkg/fonts"
	"github.com/matzehuels/fgraph/pkg/graph"
)

// Text is one line of a node box.
type Text struct {
	Text  string
	HRef  string
	Class string // Overrides the node class when set
}

// Node is a box in a diagram.
type Node struct {
	Source graph.NodeID // Model node this box presents; -1 for legend boxes
	Name   string       // Model node name; breaks sort ties

	Lines         []Text
	Class         string
	HRef          string
	SortPrefix    string
	LhsAnnotation string // Label on the incoming connector
	RhsAnnotation string // Label on the outgoing connector

	Width    float64 // Widest line in pixels
	LhsWidth float64 // Rendered annotation widths in pixels
	RhsWidth float64

	Box Rect // Set by Place
}

// AddLine appends a line and widens the node to fit it.
func (n *Node) AddLine(t Text, m fonts.Measurer) *Node {
	if w := m.Width(t.Text); w > n.Width {
		n.Width = w
	}
	n.Lines = append(n.Lines, t)
	return n
}

// SetAnnotations sets both connector labels and measures them.
func (n *Node) SetAnnotations(lhs, rhs string, m fonts.Measurer) {
	n.LhsAnnotation, n.RhsAnnotation = lhs, rhs
	n.LhsWidth, n.RhsWidth = 0, 0
	if lhs != "" {
		n.LhsWidth = m.Width(lhs)
	}
	if rhs != "" {
		n.RhsWidth = m.Width(rhs)
	}
}

// AllText joins the lines, each followed by a space.
func (n *Node) AllText() string {
	var sb strings.Builder
	for _, l := range n.Lines {
		sb.WriteString(l.Text)
		sb.WriteByte(' ')
	}
	return sb.String()
}

// SortKey orders sibling nodes.
func (n *Node) SortKey() string { return n.SortPrefix + n.AllText() }

// Group is a column of sibling nodes followed by the groups drawn to their
// right. A group without nodes stacks its child groups in its own column.
type Group struct {
	Title      string
	SortPrefix string
	Nodes      []*Node
	Children   []*Group

	lhs, rhs memo
}

// memo holds an aggregate computed on first use.
type memo struct {
	once sync.Once
	v    float64
	done bool
}

func (m *memo) get(f func() float64) float64 {
	m.once.Do(func() {
		m.v = f()
		m.done = true
	})
	return m.v
}

// NewGroup returns an empty group.
func NewGroup(title string) *Group {
	return &Group{Title: title}
}

// AppendNode adds n to the group's column. Groups are frozen once their
// annotation widths have been read.
func (g *Group) AppendNode(n *Node) {
	g.mustBeOpen()
	g.Nodes = append(g.Nodes, n)
}

// AppendChild adds a group to the right of this one.
func (g *Group) AppendChild(c *Group) {
	g.mustBeOpen()
	g.Children = append(g.Children, c)
}

// AppendChildren adds several groups to the right of this one.
func (g *Group) AppendChildren(cs []*Group) {
	for _, c := range cs {
		g.AppendChild(c)
	}
}

func (g *Group) mustBeOpen() {
	if g.lhs.done || g.rhs.done {
		panic("layout: group " + g.Title + " modified after measurement")
	}
}

// SortKey orders sibling groups.
func (g *Group) SortKey() string { return g.SortPrefix + g.Title }

// Sort orders nodes and child groups by sort key, recursively.
func (g *Group) Sort() {
	sort.SliceStable(g.Nodes, func(i, j int) bool {
		a, b := g.Nodes[i], g.Nodes[j]
		if ka, kb := a.SortKey(), b.SortKey(); ka != kb {
			return ka < kb
		}
		return a.Name < b.Name
	})
	sort.SliceStable(g.Children, func(i, j int) bool {
		a, b := g.Children[i], g.Children[j]
		if ka, kb := a.SortKey(), b.SortKey(); ka != kb {
			return ka < kb
		}
		return a.tieName() < b.tieName()
	})
	for _, c := range g.Children {
		c.Sort()
	}
}

// tieName is the model name of the group's first node.
func (g *Group) tieName() string {
	if len(g.Nodes) == 0 {
		return ""
	}
	return g.Nodes[0].Name
}

// MaxLhsAnnotation returns the widest incoming label in pixels. A group
// without nodes aggregates over its child groups.
func (g *Group) MaxLhsAnnotation() float64 {
	return g.lhs.get(func() float64 {
		return g.aggregate(func(n *Node) float64 { return n.LhsWidth }, (*Group).MaxLhsAnnotation)
	})
}

// MaxRhsAnnotation returns the widest outgoing label in pixels.
func (g *Group) MaxRhsAnnotation() float64 {
	return g.rhs.get(func() float64 {
		return g.aggregate(func(n *Node) float64 { return n.RhsWidth }, (*Group).MaxRhsAnnotation)
	})
}

func (g *Group) aggregate(node func(*Node) float64, group func(*Group) float64) float64 {
	var w float64
	if len(g.Nodes) > 0 {
		for _, n := range g.Nodes {
			w = max(w, node(n))
		}
		return w
	}
	for _, c := range g.Children {
		w = max(w, group(c))
	}
	return w
}

// Walk calls fn for every node in the tree, in column order.
func (g *Group) Walk(fn func(*Node)) {
	for _, n := range g.Nodes {
		fn(n)
	}
	for _, c := range g.Children {
		c.Walk(fn)
	}
}
