package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/fgraph/pkg/diag"
	"github.com/matzehuels/fgraph/pkg/fonts"
	"github.com/matzehuels/fgraph/pkg/graph"
	"github.com/matzehuels/fgraph/pkg/nodegraph"
	"github.com/matzehuels/fgraph/pkg/observability"
	"github.com/matzehuels/fgraph/pkg/resolve"
	"github.com/matzehuels/fgraph/pkg/store"
)

// Runner executes the pipeline.
type Runner struct {
	Logger   *log.Logger
	Measurer fonts.Measurer // Text metrics; defaults to fonts.Default()
}

// NewRunner creates a runner. A nil logger discards output.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Runner{Logger: logger, Measurer: fonts.Default()}
}

// Result holds everything a run produced.
type Result struct {
	Model       *graph.Model
	Diagrams    []*Diagram
	OverviewDOT string
	OverviewSVG []byte
	Diagnostics []diag.Diagnostic
	Stats       Stats
}

// OK reports whether the run finished without error diagnostics.
func (r *Result) OK() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == diag.SeverityError {
			return false
		}
	}
	return true
}

// Stats summarizes a run.
type Stats struct {
	Resources store.Stats
	Items     int
	Nodes     int
	Resolve   resolve.Stats
	Diagrams  int
}

// Load reads resources and graph files, then resolves links. The returned
// model is ready for rendering. Fatal load conditions are returned as
// errors; everything else is recorded in dc.
func (r *Runner) Load(ctx context.Context, opts Options, dc *diag.Collector) (*graph.Model, Stats, error) {
	var stats Stats
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, stats, err
	}
	logger := r.logger()
	hooks := observability.Pipeline()

	loadStart := time.Now()
	hooks.OnLoadStart(ctx, opts.GraphName)
	m, s, err := r.load(ctx, &opts, dc, &stats)
	hooks.OnLoadComplete(ctx, opts.GraphName, stats.Resources.Loaded, stats.Nodes, time.Since(loadStart), err)
	if err != nil {
		return nil, stats, err
	}

	start := time.Now()
	res, err := resolve.New(m, s, dc, logger, opts.ResolveOptions()).Run()
	stats.Resolve = res
	hooks.OnResolveComplete(ctx, opts.GraphName, res.Links, res.Edges, time.Since(start), err)
	if err != nil {
		return nil, stats, err
	}
	logger.Info("resolved links", "links", res.Links, "edges", res.Edges,
		"synthetic", res.Synthetic, "duration", time.Since(start))

	return m, stats, nil
}

func (r *Runner) load(ctx context.Context, opts *Options, dc *diag.Collector, stats *Stats) (*graph.Model, *store.Store, error) {
	logger := r.logger()

	start := time.Now()
	s := store.New(opts.BaseURL)
	loader := &store.Loader{Store: s, Diag: dc, Logger: logger, Workers: opts.Workers}
	rs, err := loader.Load(ctx, opts.ResourcePaths...)
	stats.Resources = rs
	if err != nil {
		return nil, nil, err
	}
	logger.Info("loaded resources", "resources", rs.Loaded, "skipped", rs.Skipped,
		"failed", rs.Failed, "duration", time.Since(start))

	start = time.Now()
	items, err := nodegraph.Load(ctx, opts.InputPath, opts.Workers)
	if err != nil {
		return nil, nil, err
	}
	m := graph.New()
	if err := nodegraph.Register(m, items, dc); err != nil {
		return nil, nil, err
	}
	stats.Items = len(items)
	stats.Nodes = m.Len()
	logger.Info("registered graph items", "items", len(items), "nodes", m.Len(),
		"duration", time.Since(start))
	return m, s, nil
}

// Execute runs load, resolve and render. Diagrams are not written; call
// [Result.Save] for that.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := r.logger()
	dc := diag.NewCollector(logger)

	m, stats, err := r.Load(ctx, opts, dc)
	if err != nil {
		return nil, err
	}
	result := &Result{Model: m, Stats: stats}

	hooks := observability.Pipeline()
	start := time.Now()
	for i := range opts.Traversals {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t := &opts.Traversals[i]
		tStart := time.Now()
		hooks.OnRenderStart(ctx, t.Name)
		diagrams := r.render(m, &opts, t, dc)
		hooks.OnRenderComplete(ctx, t.Name, len(diagrams), time.Since(tStart))
		result.Diagrams = append(result.Diagrams, diagrams...)
	}
	result.Stats.Diagrams = len(result.Diagrams)
	logger.Info("rendered diagrams", "graph", opts.GraphName, "diagrams", len(result.Diagrams),
		"duration", time.Since(start))

	if opts.Overview {
		dot, svg, err := Overview(ctx, m)
		if err != nil {
			dc.Errorf(opts.GraphName, "overview: %v", err)
		}
		result.OverviewDOT, result.OverviewSVG = dot, svg
	}

	result.Diagnostics = dc.Diagnostics()
	return result, nil
}

func (r *Runner) logger() *log.Logger {
	if r.Logger == nil {
		return log.NewWithOptions(io.Discard, log.Options{})
	}
	return r.Logger
}

func (r *Runner) measurer() fonts.Measurer {
	if r.Measurer == nil {
		return fonts.Default()
	}
	return r.Measurer
}
