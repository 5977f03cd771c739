package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	fgerrors "github.com/matzehuels/fgraph/pkg/errors"
)

// Overview output file names.
const (
	OverviewDOTFile = "overview.dot"
	OverviewSVGFile = "overview.svg"
)

// Save writes every diagram to dir together with copies of the
// stylesheets they reference. It returns the written file paths.
func (r *Result) Save(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var written []string
	write := func(name string, data []byte) error {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		written = append(written, path)
		return nil
	}

	seen := make(map[string]bool)
	css := make(map[string]string)
	for _, d := range r.Diagrams {
		if err := fgerrors.ValidateDiagramName(d.Name); err != nil {
			return written, err
		}
		if seen[d.Name] {
			return written, fgerrors.New(fgerrors.ErrCodeInvalidInput, "diagram %q rendered twice", d.Name)
		}
		seen[d.Name] = true
		if err := write(d.FileName(), d.SVG); err != nil {
			return written, err
		}
		if d.CSSFile != "" {
			css[filepath.Base(d.CSSFile)] = d.CSSFile
		}
	}

	bases := make([]string, 0, len(css))
	for base := range css {
		bases = append(bases, base)
	}
	sort.Strings(bases)
	for _, base := range bases {
		src := css[base]
		data, err := os.ReadFile(src)
		if err != nil {
			return written, fmt.Errorf("read stylesheet: %w", err)
		}
		if err := write(base, data); err != nil {
			return written, err
		}
	}

	if r.OverviewDOT != "" {
		if err := write(OverviewDOTFile, []byte(r.OverviewDOT)); err != nil {
			return written, err
		}
	}
	if len(r.OverviewSVG) > 0 {
		if err := write(OverviewSVGFile, r.OverviewSVG); err != nil {
			return written, err
		}
	}
	return written, nil
}
