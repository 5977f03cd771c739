package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fgraph/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	runFlags
	overview bool // also write the whole graph as DOT and SVG
}

// renderCommand creates the render command. It runs the whole pipeline and
// writes the diagrams, their stylesheets and optionally the overview to
// the output directory.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [options-file]",
		Short: "Render focus diagrams to SVG",
		Long: `Render loads the resources and graph files named in the options file,
resolves every link and writes one SVG per focus diagram.

Without an argument, fgraph.toml (or fgraph.json) in the working directory
is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			po, err := opts.loadOptions(args)
			if err != nil {
				return err
			}
			if opts.overview {
				po.Overview = true
			}
			return runRender(cmd.Context(), po, os.Stdout)
		},
	}

	opts.register(cmd)
	cmd.Flags().BoolVar(&opts.overview, "overview", false, "also write the whole graph as overview.dot and overview.svg")

	return cmd
}

func runRender(ctx context.Context, opts pipeline.Options, out io.Writer) error {
	logger := loggerFromContext(ctx)
	if opts.OutputDir == "" {
		return fmt.Errorf("no output directory: set outputDir or pass --output")
	}

	prog := newProgress(logger)
	result, err := pipeline.NewRunner(logger).Execute(ctx, opts)
	if err != nil {
		return err
	}
	prog.done("Rendered diagrams", "graph", opts.GraphName, "diagrams", len(result.Diagrams))

	spinner := newSpinnerWithContext(ctx, out, fmt.Sprintf("Writing %d diagrams...", len(result.Diagrams)))
	spinner.Start()
	written, err := result.Save(opts.OutputDir)
	if err != nil {
		spinner.StopWithError("Write failed")
		return err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Wrote %d files to %s", len(written), opts.OutputDir))
	for _, path := range written {
		printFile(out, path)
	}

	return reportDiagnostics(out, result)
}

// reportDiagnostics prints the diagnostics summary and returns
// ErrDiagnostics if any error was recorded.
func reportDiagnostics(out io.Writer, result *pipeline.Result) error {
	printDiagnostics(out, result.Diagnostics)
	if !result.OK() {
		return ErrDiagnostics
	}
	return nil
}
