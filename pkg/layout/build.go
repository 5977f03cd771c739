package layout

import (
	"errors"
	"regexp"
	"slices"
	"strings"

	"github.com/matzehuels/fgraph/pkg/diag"
	fgerrors "github.com/matzehuels/fgraph/pkg/errors"
	"github.com/matzehuels/fgraph/pkg/fonts"
	"github.com/matzehuels/fgraph/pkg/graph"
)

// ErrCycle is returned when child traversal re-enters a node that is still
// being expanded.
var ErrCycle = errors.New("cycle in link graph")

// FocusClass is the class given to the focus node box.
const FocusClass = "focus"

// DefaultDepth is the traversal budget when none is configured.
const DefaultDepth = 99999

// Group titles of the fixed columns.
const (
	TitleParents = "parents"
	TitleFocus   = "focus"
)

// Options selects which edges a focus diagram follows.
type Options struct {
	Filter   *regexp.Regexp // Traversal names to follow; nil follows all
	Depth    int            // Remaining budget; each edge consumes its own depth
	Keys     []string       // Requested keys; empty disables key filtering
	Measurer fonts.Measurer
	Diag     *diag.Collector
}

type visit int

const (
	notVisited visit = iota
	onStack
	visited
)

type builder struct {
	model *graph.Model
	opts  Options
	state map[graph.NodeID]visit
	stack []*graph.Node
}

// Focus builds the presentation tree for focus: a root group holding the
// focus node's parents, whose child is the focus group, whose children are
// the recursively expanded child groups. The tree is sorted before it is
// returned.
//
// A child edge is followed while the remaining depth is positive, its
// traversal name matches the filter and both the edge and the child pass
// the key filter. The child is expanded with the depth reduced by the
// edge's depth. Re-entering a node that is being expanded returns an
// error wrapping [ErrCycle].
func Focus(m *graph.Model, focus *graph.Node, opts Options) (*Group, error) {
	if opts.Measurer == nil {
		opts.Measurer = fonts.Default()
	}
	if opts.Diag == nil {
		opts.Diag = diag.NewCollector(nil)
	}
	b := &builder{model: m, opts: opts, state: make(map[graph.NodeID]visit)}

	parents := NewGroup(TitleParents)
	focusGroup := NewGroup(TitleFocus)
	parents.AppendChild(focusGroup)

	se := b.node(focus, "")
	se.Class = FocusClass
	focusGroup.AppendNode(se)

	for _, p := range b.parents(focus) {
		parents.AppendNode(b.node(p, ""))
	}

	children, err := b.children(focus, opts.Depth)
	if err != nil {
		return nil, err
	}
	focusGroup.AppendChildren(children)

	parents.Sort()
	return parents, nil
}

// parents returns the top-level nodes linking to focus. A parent anchored
// at a sub-element is replaced by the node it hangs off, following single
// parent links up to a top-level node.
func (b *builder) parents(focus *graph.Node) []*graph.Node {
	var out []*graph.Node
	seen := map[graph.NodeID]bool{focus.ID: true}
edges:
	for _, e := range sortedEdges(focus.Parents) {
		if !b.follow(e) {
			continue
		}
		p := b.model.Node(e.Node)
		walked := map[graph.NodeID]bool{}
		path := []string{p.Name}
		for p.Anchor != nil && !p.Anchor.IsTopLevel() {
			if len(p.Parents) != 1 {
				b.opts.Diag.Errorf(p.Location, "node %s: %d parents, can not walk up to a top level node", p.Name, len(p.Parents))
				break
			}
			walked[p.ID] = true
			p = b.model.Node(p.Parents[0].Node)
			path = append(path, p.Name)
			if walked[p.ID] {
				b.opts.Diag.Errorf(p.Location, "node %s: %v: %s", focus.Name, ErrCycle, strings.Join(path, " -> "))
				continue edges
			}
		}
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out
}

func (b *builder) children(n *graph.Node, depth int) ([]*Group, error) {
	b.state[n.ID] = onStack
	b.stack = append(b.stack, n)
	defer func() {
		b.stack = b.stack[:len(b.stack)-1]
		b.state[n.ID] = visited
	}()

	var out []*Group
	if depth <= 0 {
		return out, nil
	}
	for _, e := range sortedEdges(n.Children) {
		if e.Node == n.ID || !b.follow(e) {
			continue
		}
		child := b.model.Node(e.Node)
		if !b.keys(child.Keys) {
			continue
		}
		if b.state[child.ID] == onStack {
			return nil, b.cycle(child)
		}

		se := b.node(child, e.Annotation)
		g := NewGroup(se.AllText())
		g.SortPrefix = se.SortPrefix
		g.AppendNode(se)

		sub, err := b.children(child, depth-e.Depth)
		if err != nil {
			return nil, err
		}
		g.AppendChildren(sub)
		out = append(out, g)
	}
	return out, nil
}

func (b *builder) follow(e graph.Edge) bool {
	if b.opts.Filter != nil && !b.opts.Filter.MatchString(e.TraversalName()) {
		return false
	}
	return b.keys(e.Keys())
}

func (b *builder) keys(k graph.KeySet) bool {
	if len(b.opts.Keys) == 0 {
		return true
	}
	return k.Traverse(b.opts.Keys)
}

func (b *builder) cycle(to *graph.Node) error {
	names := make([]string, 0, len(b.stack)+1)
	start := slices.Index(b.stack, to)
	for _, n := range b.stack[max(start, 0):] {
		names = append(names, n.Name)
	}
	names = append(names, to.Name)
	return fgerrors.Wrap(fgerrors.ErrCodeCycle, ErrCycle, "%s", strings.Join(names, " -> "))
}

// node converts a model node. The annotation of the edge that led to the
// node replaces its own lhs annotation when set.
func (b *builder) node(n *graph.Node, edgeAnnotation string) *Node {
	m := b.opts.Measurer
	se := &Node{
		Source:     n.ID,
		Name:       n.Name,
		Class:      n.CSSClass,
		HRef:       n.HRef,
		SortPrefix: n.SortPrefix,
	}
	for _, l := range n.Lines() {
		se.AddLine(Text{Text: l, HRef: n.HRef}, m)
	}
	lhs := n.LhsAnnotation
	if edgeAnnotation != "" {
		lhs = edgeAnnotation
	}
	se.SetAnnotations(lhs, n.RhsAnnotation, m)
	return se
}

func sortedEdges(edges []graph.Edge) []graph.Edge {
	out := slices.Clone(edges)
	slices.SortStableFunc(out, func(a, b graph.Edge) int {
		return strings.Compare(a.TraversalName(), b.TraversalName())
	})
	return out
}
