package nodegraph

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/fgraph/pkg/diag"
	fgerrors "github.com/matzehuels/fgraph/pkg/errors"
	"github.com/matzehuels/fgraph/pkg/graph"
)

const sampleJSON = `
{
	"graphNode": {
		"nodeName": "Breast/Report",
		"displayName": "Breast/Radiology/Report",
		"cssClass": "profile",
		"keys": "main",
		"anchor": {"url": "http://example.org/fhir/StructureDefinition/BreastRadiologyReport"}
	}
},
{
	"node": {"nodeName": "Patient", "displayName": "Patient"},
	"graph": {"traversalName": "focus", "nodeName": "^Breast/"}
},
{
	"linkByName": {"traversalName": "focus", "source": "^Breast/Report$", "target": "^Patient$", "depth": 2, "key": "!hidden"}
},
{
	"graphLinkByReference": {"traversalName": "focus", "source": "^Breast/Report$", "item": ".subject", "bindings": true}
},
{
	"linkByBinding": {"traversalName": "focus", "source": "^Breast/Report$", "item": ".status"}
},
{
	"legend": {"legendName": "main", "item": "Profile", "cssClass": "profile"}
},
`

func TestDecodeJSON(t *testing.T) {
	items, err := DecodeJSON("sample.nodeGraph", []byte(sampleJSON))
	if err != nil {
		t.Fatalf("DecodeJSON() error = %v", err)
	}
	wantKinds := []ItemKind{KindNode, KindNode, KindGraph, KindLinkByName, KindLinkByReference, KindLinkByBinding, KindLegend}
	if len(items) != len(wantKinds) {
		t.Fatalf("len(items) = %d, want %d", len(items), len(wantKinds))
	}
	for i, it := range items {
		if it.Kind() != wantKinds[i] {
			t.Errorf("items[%d].Kind() = %v, want %v", i, it.Kind(), wantKinds[i])
		}
	}
	if loc := items[2].Location(); loc != "sample.nodeGraph#2" {
		t.Errorf("Location() = %q, want sample.nodeGraph#2", loc)
	}

	byName := items[3].(*LinkItem).Link()
	if byName.Base().Depth != 2 || len(byName.Base().Keys.Exclude) != 1 {
		t.Errorf("linkByName base = %+v", byName.Base())
	}
	ref := items[4].(*LinkItem).Link().(*graph.ByReference)
	if ref.Depth != DefaultLinkDepth || !ref.Bindings || ref.Item != ".subject" {
		t.Errorf("linkByReference = %+v", ref)
	}
}

func TestDecodeYAML(t *testing.T) {
	src := `
- graphNode:
    nodeName: A
    displayName: A
    keys: [x, "!y"]
- linkByName:
    traversalName: focus
    source: ^A$
    target: ^B$
`
	items, err := DecodeYAML("sample.nodeGraph.yaml", []byte(src))
	if err != nil {
		t.Fatalf("DecodeYAML() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	n := items[0].(*NodeItem).Node()
	if len(n.Keys.Include) != 1 || len(n.Keys.Exclude) != 1 {
		t.Errorf("Keys = %+v", n.Keys)
	}
	if items[1].Kind() != KindLinkByName {
		t.Errorf("Kind() = %v", items[1].Kind())
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code fgerrors.Code
	}{
		{"unknown item", `{"graphWidget": {}}`, fgerrors.ErrCodeUnknownItem},
		{"not an object", `{"graphNode": "A"}`, fgerrors.ErrCodeInvalidShape},
		{"item not object", `"graphNode"`, fgerrors.ErrCodeInvalidShape},
		{"missing required", `{"graphNode": {"nodeName": "A"}}`, fgerrors.ErrCodeInvalidShape},
		{"missing target", `{"linkByName": {"traversalName": "f", "source": "A"}}`, fgerrors.ErrCodeInvalidShape},
		{"missing anchor url", `{"graphNode": {"nodeName": "A", "displayName": "A", "anchor": {"item": "x"}}}`, fgerrors.ErrCodeInvalidShape},
		{"syntax", `{"graphNode": {`, fgerrors.ErrCodeInvalidShape},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeJSON("bad.nodeGraph", []byte(tt.src))
			if !fgerrors.Is(err, tt.code) {
				t.Errorf("DecodeJSON() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestDecodeJSON_Empty(t *testing.T) {
	items, err := DecodeJSON("empty.nodeGraph", []byte("  \n"))
	if err != nil || len(items) != 0 {
		t.Errorf("DecodeJSON(empty) = %v, %v", items, err)
	}
}

func TestRegister(t *testing.T) {
	items, err := DecodeJSON("sample.nodeGraph", []byte(sampleJSON))
	if err != nil {
		t.Fatal(err)
	}
	m := graph.New()
	dc := diag.NewCollector(nil)
	if err := Register(m, items, dc); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}
	report, ok := m.NodeByName("Breast/Report")
	if !ok || report.Anchor == nil || !report.InTraversal("focus") {
		t.Fatalf("Breast/Report = %+v", report)
	}
	if len(m.Links()) != 3 {
		t.Errorf("len(Links()) = %d, want 3", len(m.Links()))
	}
	if len(m.Legend("main")) != 1 {
		t.Errorf("Legend(main) = %v", m.Legend("main"))
	}
	if dc.HasErrors() {
		t.Errorf("unexpected errors: %v", dc.Diagnostics())
	}
}

func TestRegister_DuplicateNode(t *testing.T) {
	items, err := DecodeJSON("dup.nodeGraph", []byte(`{"node": {"nodeName": "A", "displayName": "A"}}, {"node": {"nodeName": "A", "displayName": "A2"}}`))
	if err != nil {
		t.Fatal(err)
	}
	if err := Register(graph.New(), items, nil); !fgerrors.Is(err, fgerrors.ErrCodeDuplicateNode) {
		t.Errorf("Register() error = %v, want DUPLICATE_NODE", err)
	}
}

func TestRegister_UnmatchedGraphTag(t *testing.T) {
	items, err := DecodeJSON("tag.nodeGraph", []byte(`{"node": {"nodeName": "Breast/Report", "displayName": "R"}}, {"graph": {"traversalName": "focus", "nodeName": "^Breast/Reprt"}}`))
	if err != nil {
		t.Fatal(err)
	}
	dc := diag.NewCollector(nil)
	if err := Register(graph.New(), items, dc); err != nil {
		t.Fatal(err)
	}
	if dc.Count(diag.SeverityWarn) != 1 {
		t.Fatalf("warnings = %d, want 1", dc.Count(diag.SeverityWarn))
	}
	for _, d := range dc.Diagnostics() {
		if d.Severity == diag.SeverityWarn && (len(d.Hints) == 0 || d.Hints[0] != "Breast/Report") {
			t.Errorf("Hints = %v, want [Breast/Report]", d.Hints)
		}
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"b.nodeGraph":          `{"node": {"nodeName": "B", "displayName": "B"}}`,
		"a.nodeGraph":          `{"node": {"nodeName": "A", "displayName": "A"}}`,
		"sub/c.nodeGraph.yaml": "- node: {nodeName: C, displayName: C}\n",
		"notes.txt":            "ignored",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	items, err := Load(context.Background(), dir, 2)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	var names []string
	for _, it := range items {
		names = append(names, it.(*NodeItem).NodeName)
	}
	want := []string{"A", "B", "C"}
	if len(names) != 3 || names[0] != want[0] || names[1] != want[1] || names[2] != want[2] {
		t.Errorf("Load() order = %v, want %v", names, want)
	}

	if _, err := Load(context.Background(), filepath.Join(dir, "missing"), 1); !fgerrors.Is(err, fgerrors.ErrCodeNotFound) {
		t.Errorf("Load(missing) error = %v", err)
	}
}
