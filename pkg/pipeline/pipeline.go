// Package pipeline provides the load → resolve → render pipeline for fgraph.
//
// This package implements the complete run that the CLI drives. By
// centralizing it here, every command applies the same defaults and the
// same failure policy.
//
// # Architecture
//
// A run consists of four stages:
//
//  1. Load: Read FHIR resources into a store and declarative graph files
//     into a graph model
//  2. Resolve: Turn link descriptors into edges
//  3. Render: Lay out and draw one SVG diagram per focus node and traversal
//  4. Save: Write diagrams and their stylesheets to the output directory
//
// Fatal conditions (a duplicate resource, a base url mismatch, a malformed
// graph file) abort the run with an error. Everything else is recorded as
// a diagnostic, and [Result.OK] reports whether any of them was an error.
//
// # Usage
//
//	opts, err := pipeline.LoadOptions("fgraph.toml")
//	if err != nil {
//	    return err
//	}
//	runner := pipeline.NewRunner(logger)
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    return err
//	}
//	if !result.OK() {
//	    os.Exit(1)
//	}
package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"

	fgerrors "github.com/matzehuels/fgraph/pkg/errors"
	"github.com/matzehuels/fgraph/pkg/layout"
	"github.com/matzehuels/fgraph/pkg/resolve"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultOptionsFile is looked up in the working directory when no
	// options file is named.
	DefaultOptionsFile = "fgraph.toml"

	// LegacyOptionsFile is the JSON options file name.
	LegacyOptionsFile = "fgraph.json"

	// DefaultDepth is the traversal depth budget.
	DefaultDepth = layout.DefaultDepth
)

// Traversal kinds.
//
// A focus traversal renders one diagram per top-level node, named
// FocusGraph-<name>. A frag traversal renders exactly like focus; it only
// differs in its FragGraph- prefix and in the traversal name its links and
// tags use, so fragment diagrams can follow a separate set of links. A
// single traversal renders one diagram for the nodes matching its start
// pattern.
const (
	KindFocus  = "focus"
	KindFrag   = "frag"
	KindSingle = "single"
)

// ValidKinds is the set of supported traversal kinds.
var ValidKinds = map[string]bool{
	KindFocus:  true,
	KindFrag:   true,
	KindSingle: true,
}

// =============================================================================
// Options
// =============================================================================

// Options contains the configuration of a run. Field names follow the
// options file, which is TOML or JSON.
type Options struct {
	GraphName     string   `json:"graphName" toml:"graphName"`
	InputPath     string   `json:"inputPath" toml:"inputPath"`
	OutputDir     string   `json:"outputDir" toml:"outputDir"`
	BaseURL       string   `json:"baseUrl" toml:"baseUrl"`
	ResourcePaths []string `json:"resourcePaths" toml:"resourcePaths"`

	CSSBinding   string `json:"cssBinding,omitempty" toml:"cssBinding"`
	CSSFix       string `json:"cssFix,omitempty" toml:"cssFix"`
	CSSPattern   string `json:"cssPattern,omitempty" toml:"cssPattern"`
	CSSExtension string `json:"cssExtension,omitempty" toml:"cssExtension"`

	Workers  int  `json:"workers,omitempty" toml:"workers"`
	Overview bool `json:"overview,omitempty" toml:"overview"`

	Traversals []Traversal `json:"traversals" toml:"traversals"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Traversal requests one set of diagrams.
type Traversal struct {
	Name    string `json:"name" toml:"name"`
	Kind    string `json:"kind,omitempty" toml:"kind"`
	Filter  string `json:"filter,omitempty" toml:"filter"` // Regex over edge traversal names
	Depth   int    `json:"depth,omitempty" toml:"depth"`
	Keys    string `json:"keys,omitempty" toml:"keys"`
	CSSFile string `json:"cssFile" toml:"cssFile"`
	Legend  string `json:"legend,omitempty" toml:"legend"`

	// Start and Diagram apply to single diagrams.
	Start   string `json:"start,omitempty" toml:"start"`
	Diagram string `json:"diagram,omitempty" toml:"diagram"`

	// Param1 and Param2 are the older spellings of Start and Diagram.
	Param1 string `json:"param1,omitempty" toml:"param1"`
	Param2 string `json:"param2,omitempty" toml:"param2"`

	filter *regexp.Regexp
}

// LoadOptions reads an options file. Files ending in .json are decoded as
// JSON, everything else as TOML. Relative paths in the file are resolved
// against the file's directory.
func LoadOptions(path string) (Options, error) {
	var opts Options
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fgerrors.Wrap(fgerrors.ErrCodeInvalidConfig, err, "read options")
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &opts)
	} else {
		err = toml.Unmarshal(data, &opts)
	}
	if err != nil {
		return opts, fgerrors.Wrap(fgerrors.ErrCodeInvalidConfig, err, "decode %s", path)
	}

	dir := filepath.Dir(path)
	opts.InputPath = relTo(dir, opts.InputPath)
	opts.OutputDir = relTo(dir, opts.OutputDir)
	for i, p := range opts.ResourcePaths {
		opts.ResourcePaths[i] = relTo(dir, p)
	}
	return opts, nil
}

func relTo(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// ValidateKind checks that a traversal kind is valid.
func ValidateKind(kind string) error {
	if !ValidKinds[kind] {
		return fmt.Errorf("invalid traversal kind: %q (must be one of: focus, frag, single)", kind)
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.GraphName == "" {
		return invalid("missing 'graphName' option setting")
	}
	if o.InputPath == "" {
		return invalid("missing 'inputPath' option setting")
	}
	if o.BaseURL == "" {
		return invalid("missing 'baseUrl' option setting")
	}
	if !strings.HasSuffix(o.BaseURL, "/") {
		o.BaseURL += "/"
	}
	if err := fgerrors.ValidateURL(o.BaseURL); err != nil {
		return err
	}
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	for i := range o.Traversals {
		if err := o.Traversals[i].setDefaults(); err != nil {
			return err
		}
	}
	o.validated = true
	return nil
}

// ResolveOptions returns the resolver configuration.
func (o *Options) ResolveOptions() resolve.Options {
	return resolve.Options{
		BaseURL:      o.BaseURL,
		CSSBinding:   o.CSSBinding,
		CSSFix:       o.CSSFix,
		CSSPattern:   o.CSSPattern,
		CSSExtension: o.CSSExtension,
	}
}

// InputDir is the directory graph files are read from. Stylesheets are
// also looked up there.
func (o *Options) InputDir() string {
	if fi, err := os.Stat(o.InputPath); err == nil && fi.IsDir() {
		return o.InputPath
	}
	return filepath.Dir(o.InputPath)
}

func (t *Traversal) setDefaults() error {
	if t.Kind == "" {
		// Older files name the kind in the name field.
		if ValidKinds[strings.ToLower(t.Name)] {
			t.Kind = strings.ToLower(t.Name)
		} else {
			t.Kind = KindFocus
		}
	}
	t.Kind = strings.ToLower(t.Kind)
	if err := ValidateKind(t.Kind); err != nil {
		return fgerrors.Wrap(fgerrors.ErrCodeInvalidConfig, err, "traversal %q", t.Name)
	}
	if t.Name == "" {
		t.Name = t.Kind
	}
	if t.Depth == 0 {
		t.Depth = DefaultDepth
	}
	if t.Start == "" {
		t.Start = t.Param1
	}
	if t.Diagram == "" {
		t.Diagram = t.Param2
	}
	if t.Kind == KindSingle {
		if t.Start == "" {
			return invalid("traversal %q: start must name the start node", t.Name)
		}
		if t.Diagram == "" {
			return invalid("traversal %q: diagram must name the output", t.Name)
		}
	}
	if t.Filter == "" {
		t.Filter = "^" + regexp.QuoteMeta(filterName(t))
	}
	re, err := regexp.Compile(t.Filter)
	if err != nil {
		return fgerrors.Wrap(fgerrors.ErrCodeInvalidConfig, err, "traversal %q: filter", t.Name)
	}
	t.filter = re
	return nil
}

// filterName is the traversal name edges are matched against by default.
// Single diagrams follow focus edges.
func filterName(t *Traversal) string {
	if t.Kind == KindSingle && ValidKinds[t.Name] {
		return KindFocus
	}
	return t.Name
}

// KeyList returns the requested keys.
func (t *Traversal) KeyList() []string {
	return strings.FieldsFunc(t.Keys, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
}

func invalid(format string, args ...any) error {
	return fgerrors.New(fgerrors.ErrCodeInvalidConfig, format, args...)
}
