package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/fgraph/pkg/buildinfo"
	"github.com/matzehuels/fgraph/pkg/diag"
	"github.com/matzehuels/fgraph/pkg/pipeline"
)

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

// project writes a one-profile project and returns its options file.
func project(t *testing.T, css string) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "resources/report.json", `{
  "resourceType": "StructureDefinition",
  "url": "http://example.org/fhir/StructureDefinition/Report",
  "name": "Report",
  "type": "Composition",
  "snapshot": {"element": [{"id": "Composition", "path": "Composition", "min": 0, "max": "*"}]}
}`)
	writeFile(t, dir, "graph/report.nodeGraph",
		`{"node": {"nodeName": "Report", "displayName": "Report", "anchor": {"url": "http://example.org/fhir/StructureDefinition/Report"}}}`)
	writeFile(t, dir, "graph/focus.css", ".focus { fill: white; }\n")
	return writeFile(t, dir, "fgraph.toml", `
graphName = "test"
inputPath = "graph"
outputDir = "out"
baseUrl = "http://example.org/fhir"
resourcePaths = ["resources"]

[[traversals]]
name = "focus"
cssFile = "`+css+`"
`)
}

func quietContext() context.Context {
	return withLogger(context.Background(), newLogger(io.Discard, log.InfoLevel))
}

func TestRootCommand(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	if root.Version != buildinfo.Version {
		t.Errorf("Version = %q, want %q", root.Version, buildinfo.Version)
	}
	for _, name := range []string{"render", "dot", "check", "completion"} {
		t.Run(name, func(t *testing.T) {
			cmd, _, err := root.Find([]string{name})
			if err != nil || cmd.Name() != name {
				t.Errorf("Find(%q) = %v, %v", name, cmd, err)
			}
		})
	}

	render, _, _ := root.Find([]string{"render"})
	for _, flag := range []string{"output", "base-url", "input", "resources", "workers", "overview"} {
		if render.Flags().Lookup(flag) == nil {
			t.Errorf("render has no --%s flag", flag)
		}
	}
}

func TestLoadOptionsOverrides(t *testing.T) {
	path := project(t, "focus.css")
	dir := filepath.Dir(path)

	tests := []struct {
		name  string
		flags runFlags
		check func(t *testing.T, o pipeline.Options)
	}{
		{
			name:  "file values",
			flags: runFlags{},
			check: func(t *testing.T, o pipeline.Options) {
				if o.OutputDir != filepath.Join(dir, "out") {
					t.Errorf("OutputDir = %q", o.OutputDir)
				}
				if o.BaseURL != "http://example.org/fhir/" {
					t.Errorf("BaseURL = %q", o.BaseURL)
				}
			},
		},
		{
			name:  "flags win",
			flags: runFlags{output: "elsewhere", baseURL: "https://other.org/fhir/", resources: []string{"a", "b"}, workers: 3},
			check: func(t *testing.T, o pipeline.Options) {
				if o.OutputDir != "elsewhere" || o.BaseURL != "https://other.org/fhir/" || o.Workers != 3 {
					t.Errorf("opts = %+v", o)
				}
				if strings.Join(o.ResourcePaths, ",") != "a,b" {
					t.Errorf("ResourcePaths = %v", o.ResourcePaths)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := tt.flags.loadOptions([]string{path})
			if err != nil {
				t.Fatalf("loadOptions() error = %v", err)
			}
			tt.check(t, opts)
		})
	}

	bad := runFlags{baseURL: "ftp://nope/"}
	if _, err := bad.loadOptions([]string{path}); err == nil {
		t.Error("loadOptions() accepted an ftp base url")
	}
}

func TestPrintDiagnostics(t *testing.T) {
	tests := []struct {
		name  string
		diags []diag.Diagnostic
		want  []string
	}{
		{"none", nil, []string{"No problems found"}},
		{"info only", []diag.Diagnostic{{Severity: diag.SeverityInfo, Message: "quiet"}}, []string{"No problems found"}},
		{
			"error with hints",
			[]diag.Diagnostic{{Severity: diag.SeverityError, Source: "links#3", Message: "no nodes match", Hints: []string{"Report"}}},
			[]string{"links#3: no nodes match", "close matches: [Report]", "errors", "warnings"},
		},
		{
			"warning",
			[]diag.Diagnostic{{Severity: diag.SeverityWarn, Message: "foreign url"}},
			[]string{"foreign url", "warnings"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printDiagnostics(&buf, tt.diags)
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output %q does not contain %q", buf.String(), want)
				}
			}
		})
	}
}

func TestRunRender(t *testing.T) {
	path := project(t, "focus.css")
	opts, err := (&runFlags{}).loadOptions([]string{path})
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := runRender(quietContext(), opts, &out); err != nil {
		t.Fatalf("runRender() error = %v", err)
	}
	for _, name := range []string{"FocusGraph-Report.svg", "focus.css"} {
		if _, err := os.Stat(filepath.Join(opts.OutputDir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	if !strings.Contains(out.String(), "No problems found") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRunRender_Diagnostics(t *testing.T) {
	path := project(t, "missing.css")
	opts, err := (&runFlags{}).loadOptions([]string{path})
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if err := runRender(quietContext(), opts, &out); !errors.Is(err, ErrDiagnostics) {
		t.Errorf("runRender() error = %v, want ErrDiagnostics", err)
	}
	if !strings.Contains(out.String(), "missing.css") {
		t.Errorf("output does not name the missing stylesheet: %q", out.String())
	}
}

func TestRunCheck(t *testing.T) {
	path := project(t, "focus.css")
	opts, err := (&runFlags{}).loadOptions([]string{path})
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if err := runCheck(quietContext(), opts, &out); err != nil {
		t.Fatalf("runCheck() error = %v", err)
	}
	if _, err := os.Stat(opts.OutputDir); !os.IsNotExist(err) {
		t.Errorf("check wrote output: %v", err)
	}
	for _, want := range []string{"diagrams", "resources"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output %q does not contain %q", out.String(), want)
		}
	}
}
