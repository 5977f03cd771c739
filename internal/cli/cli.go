// Package cli implements the fgraph command-line interface.
//
// Commands are built with cobra and log through charmbracelet/log. Every
// command takes an optional options file (fgraph.toml by default, or
// fgraph.json) whose settings can be overridden by flags:
//   - render: load, resolve and write one SVG per focus diagram
//   - dot: write the resolved graph as Graphviz DOT or SVG
//   - check: load, resolve and render without writing anything
//
// --verbose (-v) switches the stage log to debug level.
package cli

import (
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/fgraph/pkg/buildinfo"
	"github.com/matzehuels/fgraph/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = "fgraph"
)

// Log levels accepted by New.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// ErrDiagnostics is returned when a run recorded error diagnostics. The
// diagnostics themselves have already been printed.
var ErrDiagnostics = errors.New("run finished with errors")

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger  *log.Logger
	verbose bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "fgraph renders focus diagrams of FHIR implementation guides",
		Long: `fgraph reads FHIR profiles and value sets together with declarative graph
files, resolves the links between them and renders one SVG diagram per
focus resource.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.dotCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Options Helpers
// =============================================================================

// runFlags are the option overrides shared by all commands.
type runFlags struct {
	output    string
	baseURL   string
	input     string
	resources []string
	workers   int
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output directory (overrides outputDir)")
	cmd.Flags().StringVar(&f.baseURL, "base-url", "", "canonical base url (overrides baseUrl)")
	cmd.Flags().StringVarP(&f.input, "input", "i", "", "graph file or directory (overrides inputPath)")
	cmd.Flags().StringSliceVarP(&f.resources, "resources", "r", nil, "resource directories (overrides resourcePaths)")
	cmd.Flags().IntVarP(&f.workers, "workers", "w", 0, "loader workers (default: number of CPUs)")
}

// loadOptions reads the options file named by args, or the default file
// in the working directory, and applies flag overrides.
func (f *runFlags) loadOptions(args []string) (pipeline.Options, error) {
	path := pipeline.DefaultOptionsFile
	if len(args) > 0 {
		path = args[0]
	} else if _, err := os.Stat(path); err != nil {
		if _, err := os.Stat(pipeline.LegacyOptionsFile); err == nil {
			path = pipeline.LegacyOptionsFile
		}
	}

	opts, err := pipeline.LoadOptions(path)
	if err != nil {
		return opts, err
	}
	if f.output != "" {
		opts.OutputDir = f.output
	}
	if f.baseURL != "" {
		opts.BaseURL = f.baseURL
	}
	if f.input != "" {
		opts.InputPath = f.input
	}
	if len(f.resources) > 0 {
		opts.ResourcePaths = f.resources
	}
	if f.workers > 0 {
		opts.Workers = f.workers
	}
	return opts, opts.ValidateAndSetDefaults()
}
