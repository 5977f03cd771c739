package nodegraph

import (
	"github.com/matzehuels/fgraph/pkg/diag"
	"github.com/matzehuels/fgraph/pkg/graph"
)

// Register adds decoded items to m. Nodes are registered first, then
// traversal tags, links and legends, so an item may refer to a node
// declared later in the input. Duplicate nodes abort registration.
func Register(m *graph.Model, items []Item, dc *diag.Collector) error {
	if dc == nil {
		dc = diag.NewCollector(nil)
	}
	for _, it := range items {
		if n, ok := it.(*NodeItem); ok {
			if _, err := m.AddNode(n.Node()); err != nil {
				return err
			}
		}
	}
	for _, it := range items {
		switch it := it.(type) {
		case *NodeItem:
		case *GraphItem:
			nodes, err := m.FindByPattern(it.NodeName)
			if err != nil {
				dc.Errorf(it.Location(), "%v", err)
				continue
			}
			if len(nodes) == 0 {
				dc.Add(diag.Diagnostic{
					Severity: diag.SeverityWarn,
					Source:   it.Location(),
					Message:  "no nodes named '" + it.NodeName + "' found",
					Hints:    m.CloseMatches(it.NodeName),
				})
			}
			for _, n := range nodes {
				m.Tag(n.ID, it.TraversalName)
			}
		case *LinkItem:
			m.AddLink(it.Link())
		case *LegendItem:
			m.AddLegend(graph.Legend{Name: it.LegendName, Item: it.Item, CSSClass: it.CSSClass})
		}
		dc.Infof(it.Location(), "registered %s", describe(it))
	}
	return nil
}

// Node builds the graph node the item declares.
func (i *NodeItem) Node() *graph.Node {
	n := &graph.Node{
		Name:          i.NodeName,
		DisplayName:   i.DisplayName,
		CSSClass:      i.CSSClass,
		SortPrefix:    i.SortPrefix,
		LhsAnnotation: i.LhsAnnotationText,
		RhsAnnotation: i.RhsAnnotationText,
		Keys:          i.Keys.KeySet(),
		TraceMsg:      i.TraceMsg,
		Location:      i.Location(),
	}
	if i.Anchor != nil {
		n.Anchor = &graph.Anchor{URL: i.Anchor.URL, Item: i.Anchor.Item}
	}
	return n
}

// Link builds the link descriptor the item declares.
func (i *LinkItem) Link() graph.Link {
	depth := DefaultLinkDepth
	if i.Depth != nil {
		depth = *i.Depth
	}
	base := graph.LinkBase{
		TraversalName: i.TraversalName,
		Depth:         depth,
		Keys:          i.Key.KeySet(),
		Source:        i.Source,
		Location:      i.Location(),
		TraceMsg:      i.TraceMsg,
	}
	switch i.LinkKind {
	case graph.KindByBinding:
		return &graph.ByBinding{LinkBase: base, Item: i.Item}
	case graph.KindByName:
		return &graph.ByName{LinkBase: base, Target: i.Target}
	default:
		return &graph.ByReference{LinkBase: base, Item: i.Item, Bindings: i.Bindings}
	}
}
