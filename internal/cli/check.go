package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fgraph/pkg/pipeline"
)

// checkCommand creates the check command. It runs the pipeline without
// writing output, so graph files can be validated in CI.
func (c *CLI) checkCommand() *cobra.Command {
	var opts runFlags

	cmd := &cobra.Command{
		Use:   "check [options-file]",
		Short: "Validate graph files without writing diagrams",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			po, err := opts.loadOptions(args)
			if err != nil {
				return err
			}
			return runCheck(cmd.Context(), po, os.Stdout)
		},
	}

	opts.register(cmd)
	return cmd
}

func runCheck(ctx context.Context, opts pipeline.Options, out io.Writer) error {
	result, err := pipeline.NewRunner(loggerFromContext(ctx)).Execute(ctx, opts)
	if err != nil {
		return err
	}

	s := result.Stats
	printKeyValue(out, "graph", opts.GraphName)
	printKeyValue(out, "resources", fmt.Sprintf("%d", s.Resources.Loaded))
	printKeyValue(out, "nodes", fmt.Sprintf("%d", result.Model.Len()))
	printKeyValue(out, "edges", fmt.Sprintf("%d", s.Resolve.Edges))
	printKeyValue(out, "diagrams", fmt.Sprintf("%d", s.Diagrams))

	return reportDiagnostics(out, result)
}
