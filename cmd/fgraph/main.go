package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/fgraph/internal/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	root := cli.New(os.Stderr, cli.LogInfo).RootCommand()
	err := root.ExecuteContext(ctx)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		os.Exit(130)
	case errors.Is(err, cli.ErrDiagnostics):
		// Already reported with the diagnostics summary.
		os.Exit(1)
	default:
		fmt.Fprintf(os.Stderr, "fgraph: %v\n", err)
		os.Exit(1)
	}
}
