package nodegraph

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	fgerrors "github.com/matzehuels/fgraph/pkg/errors"
)

// Collect lists the graph description files under path, sorted. A path
// naming a single file is returned as is.
func Collect(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fgerrors.Wrap(fgerrors.ErrCodeNotFound, err, "graph input %s", path)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsGraphFile(p) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fgerrors.Wrap(fgerrors.ErrCodeNotFound, err, "walk %s", path)
	}
	sort.Strings(files)
	return files, nil
}

// Load decodes every graph file under path in parallel. Items are returned
// grouped by file in sorted file order, so registration is deterministic
// regardless of which file finished first.
func Load(ctx context.Context, path string, workers int) ([]Item, error) {
	files, err := Collect(path)
	if err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	perFile := make([][]Item, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			items, err := ReadFile(f)
			if err != nil {
				return err
			}
			perFile[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []Item
	for _, items := range perFile {
		all = append(all, items...)
	}
	return all, nil
}
