package svg

import (
	"strings"
	"testing"

	"github.com/matzehuels/fgraph/pkg/fonts"
	"github.com/matzehuels/fgraph/pkg/graph"
	"github.com/matzehuels/fgraph/pkg/layout"
)

func testLayout(t *testing.T) *layout.Layout {
	t.Helper()
	m := graph.New()
	a, err := m.AddNode(&graph.Node{Name: "A", DisplayName: "Breast/Report", CSSClass: "profile", HRef: "StructureDefinition-A.html"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := m.AddNode(&graph.Node{Name: "B", DisplayName: "a < b & c", CSSClass: "value", RhsAnnotation: "out"})
	if err != nil {
		t.Fatal(err)
	}
	c, err := m.AddNode(&graph.Node{Name: "C", DisplayName: "C", CSSClass: "value"})
	if err != nil {
		t.Fatal(err)
	}
	l := &graph.ByName{LinkBase: graph.LinkBase{TraversalName: "focus", Depth: 1}}
	m.Connect(a.ID, b.ID, l, 1, "0..1")
	m.Connect(a.ID, c.ID, l, 1, "1..*")

	root, err := layout.Focus(m, a, layout.Options{Depth: 1, Measurer: fonts.Fixed(6)})
	if err != nil {
		t.Fatal(err)
	}
	return layout.Place(root, []graph.Legend{
		{Name: "main", Item: "Value", CSSClass: "value"},
		{Name: "main", Item: "Extension", CSSClass: "extension"},
	}, layout.DefaultConfig(), fonts.Fixed(6))
}

func TestRender(t *testing.T) {
	l := testLayout(t)
	out := string(Render(l, WithName("FocusGraph-A"), WithStylesheets("css/graph.css")))

	tests := []struct {
		name string
		want string
		n    int
	}{
		{"stylesheet", `<?xml-stylesheet type="text/css" href="graph.css" ?>`, 1},
		{"rects", "<rect ", 4},
		{"start markers", `marker-start="url(#arrowStart)"`, l.Count(layout.StubStart)},
		{"end markers", `marker-end="url(#arrowEnd)"`, l.Count(layout.StubEnd)},
		{"lhs labels", `class="lhsText"`, 2},
		{"escaped text", "a &lt; b &amp; c", 1},
		{"link", `href="StructureDefinition-A.html"`, 3 * 2},
		{"legend", `<g class="legend">`, 1},
		{"title", "<title>FocusGraph-A</title>", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := strings.Count(out, tt.want); got != tt.n {
				t.Errorf("count(%q) = %d, want %d", tt.want, got, tt.n)
			}
		})
	}

	w := px(l.Bounds.Width())
	if !strings.Contains(out, `width="`+w+`"`) {
		t.Errorf("canvas width %s missing", w)
	}
	if !strings.HasSuffix(out, "</svg>\n") {
		t.Error("document not closed")
	}
}

func TestRenderDeterministic(t *testing.T) {
	a := Render(testLayout(t), WithName("X"))
	b := Render(testLayout(t), WithName("X"))
	if string(a) != string(b) {
		t.Error("renders differ")
	}
	c := Render(testLayout(t), WithName("Y"))
	if string(a) == string(c) {
		t.Error("ids do not depend on the diagram name")
	}
}

func TestPx(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{1, "15"},
		{0.125, "1.88"},
		{2.8, "42"},
	}
	for _, tt := range tests {
		if got := px(tt.in); got != tt.want {
			t.Errorf("px(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
