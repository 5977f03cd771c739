package cli

import (
	"context"
	"fmt"
	"os"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fgraph/pkg/diag"
	"github.com/matzehuels/fgraph/pkg/pipeline"
	"github.com/matzehuels/fgraph/pkg/render/nodelink"
)

type dotOpts struct {
	runFlags
	file      string // output file; stdout when empty
	svg       bool   // render through Graphviz instead of writing DOT
	detailed  bool
	traversal string
}

// dotCommand creates the dot command, which writes the resolved graph as
// Graphviz DOT (or SVG with --svg) for debugging graph files.
func (c *CLI) dotCommand() *cobra.Command {
	var opts dotOpts

	cmd := &cobra.Command{
		Use:   "dot [options-file]",
		Short: "Write the resolved graph as Graphviz DOT",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			po, err := opts.loadOptions(args)
			if err != nil {
				return err
			}
			return runDot(cmd.Context(), po, &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&opts.svg, "svg", false, "render to SVG with Graphviz")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show node names, classes and traversals")
	cmd.Flags().StringVarP(&opts.traversal, "traversal", "t", "", "only draw edges whose traversal name matches this regex")

	return cmd
}

func runDot(ctx context.Context, po pipeline.Options, opts *dotOpts) error {
	logger := loggerFromContext(ctx)

	var filter *regexp.Regexp
	if opts.traversal != "" {
		re, err := regexp.Compile(opts.traversal)
		if err != nil {
			return fmt.Errorf("invalid --traversal: %w", err)
		}
		filter = re
	}

	dc := diag.NewCollector(logger)
	prog := newProgress(logger)
	m, _, err := pipeline.NewRunner(logger).Load(ctx, po, dc)
	if err != nil {
		return err
	}
	prog.done("Resolved graph", "graph", po.GraphName, "nodes", m.Len())

	data := []byte(nodelink.ToDOT(m, nodelink.Options{Detailed: opts.detailed, Traversal: filter}))
	if opts.svg {
		if data, err = nodelink.RenderSVG(ctx, string(data)); err != nil {
			return err
		}
	}

	if opts.file == "" {
		if _, err := os.Stdout.Write(data); err != nil {
			return err
		}
	} else {
		if err := os.WriteFile(opts.file, data, 0o644); err != nil {
			return err
		}
		printSuccess(os.Stderr, "Wrote %s", opts.file)
	}

	if dc.HasErrors() {
		printDiagnostics(os.Stderr, dc.Diagnostics())
		return ErrDiagnostics
	}
	return nil
}
