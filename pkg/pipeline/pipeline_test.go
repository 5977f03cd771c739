package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/fgraph/pkg/diag"
	fgerrors "github.com/matzehuels/fgraph/pkg/errors"
	"github.com/matzehuels/fgraph/pkg/fonts"
	"github.com/matzehuels/fgraph/pkg/graph"
	"github.com/matzehuels/fgraph/pkg/layout"
	"github.com/matzehuels/fgraph/pkg/observability"
)

const base = "http://example.org/fhir/"

const reportJSON = `{
  "resourceType": "StructureDefinition",
  "url": "http://example.org/fhir/StructureDefinition/Report",
  "name": "Report",
  "type": "Composition",
  "baseDefinition": "http://hl7.org/fhir/StructureDefinition/Composition",
  "snapshot": {"element": [
    {"id": "Composition", "path": "Composition", "min": 0, "max": "*"},
    {"id": "Composition.subject", "path": "Composition.subject", "min": 0, "max": "1",
     "type": [{"code": "Reference", "targetProfile": ["http://example.org/fhir/StructureDefinition/BreastPatient"]}]}
  ]}
}`

const patientJSON = `{
  "resourceType": "StructureDefinition",
  "url": "http://example.org/fhir/StructureDefinition/BreastPatient",
  "name": "BreastPatient",
  "type": "Patient",
  "baseDefinition": "http://hl7.org/fhir/StructureDefinition/Patient",
  "snapshot": {"element": [{"id": "Patient", "path": "Patient", "min": 0, "max": "*"}]}
}`

const graphJSON = `
{"node": {"nodeName": "Report", "displayName": "Breast/Report", "cssClass": "profile",
  "anchor": {"url": "http://example.org/fhir/StructureDefinition/Report"}}},
{"node": {"nodeName": "Patient", "displayName": "Patient", "cssClass": "profile",
  "anchor": {"url": "http://example.org/fhir/StructureDefinition/BreastPatient"}}},
{"linkByReference": {"traversalName": "focus", "source": "^Report$", "item": "Report.subject"}},
{"legend": {"legendName": "main", "item": "Profile", "cssClass": "profile"}},
{"legend": {"legendName": "main", "item": "Value Set", "cssClass": "valueSet"}},
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// fixture writes a minimal project and returns options pointing at it.
func fixture(t *testing.T, extraGraph string) Options {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "resources/report.json", reportJSON)
	writeFile(t, dir, "resources/patient.json", patientJSON)
	writeFile(t, dir, "input/graph.nodeGraph", graphJSON+extraGraph)
	writeFile(t, dir, "input/focus.css", ".profile { fill: white; }\n")
	return Options{
		GraphName:     "test",
		InputPath:     filepath.Join(dir, "input"),
		OutputDir:     filepath.Join(dir, "out"),
		BaseURL:       base,
		ResourcePaths: []string{filepath.Join(dir, "resources")},
		Workers:       2,
		Traversals:    []Traversal{{Name: "focus", CSSFile: "focus.css"}},
	}
}

func newTestRunner() *Runner {
	r := NewRunner(nil)
	r.Measurer = fonts.Fixed(7)
	return r
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{
		GraphName: "g",
		InputPath: "in",
		BaseURL:   "http://example.org/fhir",
		Traversals: []Traversal{
			{Name: "focus", CSSFile: "a.css"},
			{Name: "frag", CSSFile: "a.css", Depth: 2},
			{Name: "single", Param1: "^Report$", Param2: "ReportOnly", Keys: "a, b"},
			{Name: "detail", Kind: "Focus", Filter: "^detail|^focus"},
		},
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}
	if opts.BaseURL != base {
		t.Errorf("BaseURL = %q, want trailing slash", opts.BaseURL)
	}
	if opts.Workers <= 0 {
		t.Errorf("Workers = %d, want default", opts.Workers)
	}

	tests := []struct {
		i      int
		kind   string
		depth  int
		filter string
	}{
		{0, KindFocus, DefaultDepth, "^focus"},
		{1, KindFrag, 2, "^frag"},
		{2, KindSingle, DefaultDepth, "^focus"},
		{3, KindFocus, DefaultDepth, "^detail|^focus"},
	}
	for _, tt := range tests {
		tr := opts.Traversals[tt.i]
		t.Run(tr.Name, func(t *testing.T) {
			if tr.Kind != tt.kind || tr.Depth != tt.depth || tr.Filter != tt.filter {
				t.Errorf("got kind=%q depth=%d filter=%q, want %q %d %q",
					tr.Kind, tr.Depth, tr.Filter, tt.kind, tt.depth, tt.filter)
			}
		})
	}

	single := opts.Traversals[2]
	if single.Start != "^Report$" || single.Diagram != "ReportOnly" {
		t.Errorf("single start/diagram = %q/%q", single.Start, single.Diagram)
	}
	if got := strings.Join(single.KeyList(), "|"); got != "a|b" {
		t.Errorf("KeyList() = %q, want a|b", got)
	}

	// A second call is a no-op.
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second ValidateAndSetDefaults() error = %v", err)
	}
}

func TestValidateAndSetDefaults_Errors(t *testing.T) {
	valid := func() Options {
		return Options{GraphName: "g", InputPath: "in", BaseURL: base}
	}
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"no graph name", func(o *Options) { o.GraphName = "" }},
		{"no input", func(o *Options) { o.InputPath = "" }},
		{"no base url", func(o *Options) { o.BaseURL = "" }},
		{"bad base url", func(o *Options) { o.BaseURL = "ftp://example.org/" }},
		{"bad kind", func(o *Options) { o.Traversals = []Traversal{{Name: "x", Kind: "tree"}} }},
		{"single without start", func(o *Options) { o.Traversals = []Traversal{{Name: "single", Param2: "d"}} }},
		{"single without diagram", func(o *Options) { o.Traversals = []Traversal{{Name: "single", Param1: "^A$"}} }},
		{"bad filter", func(o *Options) { o.Traversals = []Traversal{{Name: "focus", Filter: "("}} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := valid()
			tt.mutate(&opts)
			err := opts.ValidateAndSetDefaults()
			if err == nil {
				t.Fatal("expected error")
			}
			if fgerrors.GetCode(err) == "" {
				t.Errorf("error %v has no code", err)
			}
		})
	}
}

func TestLoadOptions(t *testing.T) {
	dir := t.TempDir()
	tomlPath := writeFile(t, dir, "fgraph.toml", `
graphName = "breast"
inputPath = "graph"
outputDir = "out"
baseUrl = "http://example.org/fhir/"
resourcePaths = ["resources", "/abs/profiles"]
overview = true

[[traversals]]
name = "focus"
cssFile = "focus.css"
depth = 3
`)
	jsonPath := writeFile(t, dir, "fgraph.json", `{
  "graphName": "breast",
  "inputPath": "graph",
  "outputDir": "out",
  "baseUrl": "http://example.org/fhir/",
  "resourcePaths": ["resources", "/abs/profiles"],
  "overview": true,
  "traversals": [{"name": "focus", "cssFile": "focus.css", "depth": 3}]
}`)

	for _, path := range []string{tomlPath, jsonPath} {
		t.Run(filepath.Ext(path), func(t *testing.T) {
			opts, err := LoadOptions(path)
			if err != nil {
				t.Fatalf("LoadOptions() error = %v", err)
			}
			if opts.GraphName != "breast" || !opts.Overview {
				t.Errorf("opts = %+v", opts)
			}
			if opts.InputPath != filepath.Join(dir, "graph") {
				t.Errorf("InputPath = %q", opts.InputPath)
			}
			if opts.ResourcePaths[0] != filepath.Join(dir, "resources") || opts.ResourcePaths[1] != "/abs/profiles" {
				t.Errorf("ResourcePaths = %v", opts.ResourcePaths)
			}
			if len(opts.Traversals) != 1 || opts.Traversals[0].Depth != 3 || opts.Traversals[0].CSSFile != "focus.css" {
				t.Errorf("Traversals = %+v", opts.Traversals)
			}
		})
	}

	bad := writeFile(t, dir, "bad.toml", "graphName = ")
	if _, err := LoadOptions(bad); !fgerrors.Is(err, fgerrors.ErrCodeInvalidConfig) {
		t.Errorf("LoadOptions(bad) error = %v, want INVALID_CONFIG", err)
	}
	if _, err := LoadOptions(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("LoadOptions(missing) succeeded")
	}
}

func TestExecute(t *testing.T) {
	opts := fixture(t, "")
	result, err := newTestRunner().Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !result.OK() {
		t.Fatalf("run reported errors: %v", result.Diagnostics)
	}
	if result.Stats.Resources.Loaded != 2 || result.Stats.Nodes != 2 || result.Stats.Resolve.Edges != 1 {
		t.Errorf("Stats = %+v", result.Stats)
	}

	var names []string
	for _, d := range result.Diagrams {
		names = append(names, d.Name)
	}
	if got := strings.Join(names, ","); got != "FocusGraph-Report,FocusGraph-BreastPatient" {
		t.Fatalf("diagrams = %s", got)
	}

	report := result.Diagrams[0]
	if n := report.Layout.Count(layout.StubEnd); n != 1 {
		t.Errorf("report end stubs = %d, want 1", n)
	}
	if len(report.Layout.Legend) != 1 {
		t.Errorf("legend entries = %d, want 1 (only used classes)", len(report.Layout.Legend))
	}
	svg := string(report.SVG)
	for _, want := range []string{`href="focus.css"`, "FocusGraph-Report", "0..1", "Breast", "StructureDefinition-BreastPatient.html"} {
		if !strings.Contains(svg, want) {
			t.Errorf("svg missing %q", want)
		}
	}

	// The patient diagram shows the report as its parent.
	patient := result.Diagrams[1]
	if len(patient.Layout.Nodes) != 2 {
		t.Errorf("patient diagram boxes = %d, want 2", len(patient.Layout.Nodes))
	}
}

func TestExecute_Save(t *testing.T) {
	opts := fixture(t, "")
	opts.Overview = true
	result, err := newTestRunner().Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	written, err := result.Save(opts.OutputDir)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	for _, name := range []string{"FocusGraph-Report.svg", "FocusGraph-BreastPatient.svg", "focus.css", OverviewDOTFile, OverviewSVGFile} {
		if _, err := os.Stat(filepath.Join(opts.OutputDir, name)); err != nil {
			t.Errorf("missing output %s: %v", name, err)
		}
	}
	if len(written) != 5 {
		t.Errorf("written = %v, want 5 files", written)
	}
}

func TestExecute_Tagged(t *testing.T) {
	opts := fixture(t, `{"graph": {"traversalName": "focus", "nodeName": "^Patient$"}},`)
	result, err := newTestRunner().Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Diagrams) != 1 || result.Diagrams[0].Name != "FocusGraph-BreastPatient" {
		t.Errorf("diagrams = %+v, want only the tagged node", result.Diagrams)
	}
}

func TestExecute_Single(t *testing.T) {
	opts := fixture(t, "")
	opts.Traversals = []Traversal{{Name: "single", Start: "^Report$", Diagram: "ReportOnly", CSSFile: "focus.css", Depth: 1}}
	result, err := newTestRunner().Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Diagrams) != 1 || result.Diagrams[0].Name != "ReportOnly" {
		t.Fatalf("diagrams = %+v", result.Diagrams)
	}

	opts = fixture(t, "")
	opts.Traversals = []Traversal{{Name: "single", Start: "^Reprt$", Diagram: "ReportOnly", CSSFile: "focus.css"}}
	result, err = newTestRunner().Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if result.OK() || len(result.Diagrams) != 0 {
		t.Errorf("unmatched start: OK=%v diagrams=%d", result.OK(), len(result.Diagrams))
	}
}

func TestTargets_Names(t *testing.T) {
	m := graph.New()
	for _, n := range []*graph.Node{
		{Name: "XProfile", Anchor: &graph.Anchor{URL: base + "StructureDefinition/X"}},
		{Name: "XValues", Anchor: &graph.Anchor{URL: base + "ValueSet/X"}},
		{Name: "Report", Anchor: &graph.Anchor{URL: base + "StructureDefinition/Report"}},
		{Name: "Report.subject", Anchor: &graph.Anchor{URL: base + "StructureDefinition/Report", Item: "subject"}},
	} {
		if _, err := m.AddNode(n); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		kind string
		want []string
	}{
		{KindFocus, []string{"FocusGraph-StructureDefinition-X", "FocusGraph-ValueSet-X", "FocusGraph-Report"}},
		{KindFrag, []string{"FragGraph-StructureDefinition-X", "FragGraph-ValueSet-X", "FragGraph-Report"}},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			dc := diag.NewCollector(nil)
			var got []string
			for _, tg := range newTestRunner().targets(m, &Traversal{Name: tt.kind, Kind: tt.kind}, dc) {
				got = append(got, tg.name)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("names = %v, want %v", got, tt.want)
			}
			if dc.HasErrors() {
				t.Errorf("unexpected diagnostics: %v", dc.Diagnostics())
			}
		})
	}
}

func TestExecute_Failures(t *testing.T) {
	tests := []struct {
		name     string
		extra    string
		css      string
		diagrams int
	}{
		// Both focus nodes sit on the cycle, so neither renders.
		{"cycle", `{"linkByName": {"traversalName": "focus", "source": "^Patient$", "target": "^Report$"}},`, "focus.css", 0},
		// The diagrams still render without their stylesheet.
		{"missing css", "", "nope.css", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := fixture(t, tt.extra)
			opts.Traversals[0].CSSFile = tt.css
			result, err := newTestRunner().Execute(context.Background(), opts)
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if result.OK() {
				t.Error("OK() = true, want false")
			}
			if len(result.Diagrams) != tt.diagrams {
				t.Errorf("diagrams = %d, want %d", len(result.Diagrams), tt.diagrams)
			}
			errs := 0
			for _, d := range result.Diagnostics {
				if d.Severity == diag.SeverityError {
					errs++
				}
			}
			if errs == 0 {
				t.Error("no error diagnostics recorded")
			}
		})
	}
}

func TestExecute_FatalLoad(t *testing.T) {
	opts := fixture(t, "")
	writeFile(t, opts.ResourcePaths[0], "dup.json", patientJSON)
	if _, err := newTestRunner().Execute(context.Background(), opts); !fgerrors.Is(err, fgerrors.ErrCodeDuplicateResource) {
		t.Errorf("Execute() error = %v, want DUPLICATE_RESOURCE", err)
	}
}

func TestSave_RejectsDuplicateNames(t *testing.T) {
	r := &Result{Diagrams: []*Diagram{{Name: "A"}, {Name: "A"}}}
	if _, err := r.Save(t.TempDir()); !fgerrors.Is(err, fgerrors.ErrCodeInvalidInput) {
		t.Errorf("Save() error = %v, want INVALID_INPUT", err)
	}
	r = &Result{Diagrams: []*Diagram{{Name: "../escape"}}}
	if _, err := r.Save(t.TempDir()); err == nil {
		t.Error("Save() accepted a path in the diagram name")
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu     sync.Mutex
	events []string
}

func (h *recordingHooks) add(e string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
}

func (h *recordingHooks) OnLoadStart(_ context.Context, graph string) { h.add("load:" + graph) }

func (h *recordingHooks) OnResolveComplete(_ context.Context, _ string, _, edges int, _ time.Duration, err error) {
	if err == nil {
		h.add("resolve:" + strings.Repeat("e", edges))
	}
}

func (h *recordingHooks) OnRenderComplete(_ context.Context, traversal string, diagrams int, _ time.Duration) {
	h.add("render:" + traversal + ":" + strings.Repeat("d", diagrams))
}

func TestExecute_Hooks(t *testing.T) {
	h := &recordingHooks{}
	observability.SetPipelineHooks(h)
	defer observability.Reset()

	if _, err := newTestRunner().Execute(context.Background(), fixture(t, "")); err != nil {
		t.Fatal(err)
	}
	want := "load:test,resolve:e,render:focus:dd"
	if got := strings.Join(h.events, ","); got != want {
		t.Errorf("events = %s, want %s", got, want)
	}
}
