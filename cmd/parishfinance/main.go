package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"parishfinance/internal/cli"
)

func main() {
	root := newRootCmd()
	if err := root.ExecuteContext(context.Background()); err != nil {
		cli.Fatal(slog.Default(), "parishfinance failed", err)
	}
}

func newRootCmd() *cobra.Command {
	serve := newServeCmd()
	root := &cobra.Command{
		Use:           "parishfinance",
		Short:         "Parish finance administration console",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.AddCommand(serve, newResolveCmd())
	return root
}
