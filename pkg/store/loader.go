package store

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/fgraph/pkg/diag"
	"github.com/matzehuels/fgraph/pkg/fhir"
)

// Loader fills a Store from resource files using a bounded worker pool.
type Loader struct {
	Store   *Store
	Diag    *diag.Collector
	Logger  *log.Logger
	Workers int // Defaults to runtime.NumCPU()
}

// Stats counts what a Load call did.
type Stats struct {
	Files   int // JSON files found
	Loaded  int // Resources added to the store
	Skipped int // Files holding resource types that are not modelled
	Failed  int // Files that could not be read or decoded
}

type job struct {
	path string
}

type result struct {
	job
	res fhir.Resource
	err error
}

// Load reads every *.json file under paths (files or directories, walked
// recursively) and adds the resources to the store. It returns only after
// every file has been processed.
//
// Unreadable or undecodable files are recorded as diagnostics and skipped.
// Duplicate urls and base url mismatches are fatal and returned.
func (l *Loader) Load(ctx context.Context, paths ...string) (Stats, error) {
	logger := l.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	dc := l.Diag
	if dc == nil {
		dc = diag.NewCollector(logger)
	}

	files := l.collectFiles(paths, dc)
	stats := Stats{Files: len(files)}
	if len(files) == 0 {
		return stats, nil
	}

	workers := l.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, len(files))

	jobs := make(chan job, workers*2)
	results := make(chan result, workers*2)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if err := ctx.Err(); err != nil {
					results <- result{job: j, err: err}
					continue
				}
				res, err := readResource(j.path)
				results <- result{job: j, res: res, err: err}
			}
		}()
	}
	go func() {
		for _, f := range files {
			jobs <- job{path: f}
		}
		close(jobs)
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	var fatal error
	for r := range results {
		switch {
		case r.err == nil:
			if fatal != nil {
				continue
			}
			if err := l.Store.TryAdd(r.res.CanonicalURL(), r.res); err != nil {
				fatal = err
				continue
			}
			stats.Loaded++
			logger.Debug("loaded resource", "kind", r.res.Kind(), "url", r.res.CanonicalURL())
		case errors.Is(r.err, fhir.ErrUnsupportedResource):
			stats.Skipped++
			logger.Debug("skipping resource", "path", r.path, "reason", r.err)
		case errors.Is(r.err, context.Canceled), errors.Is(r.err, context.DeadlineExceeded):
			if fatal == nil {
				fatal = r.err
			}
		default:
			stats.Failed++
			dc.Errorf(r.path, "load resource: %v", r.err)
		}
	}
	return stats, fatal
}

func (l *Loader) collectFiles(paths []string, dc *diag.Collector) []string {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			dc.Errorf(p, "resource path not found")
			continue
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".json") {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			dc.Errorf(p, "walk resource dir: %v", err)
		}
	}
	sort.Strings(files)
	return files
}

func readResource(path string) (fhir.Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return fhir.Decode(data)
}
