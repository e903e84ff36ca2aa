package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"parishfinance/internal/shell"
)

func newResolveCmd() *cobra.Command {
	var authenticated bool
	cmd := &cobra.Command{
		Use:   "resolve <path>",
		Short: "Print the view a path resolves to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			route := shell.Resolve(args[0], authenticated)
			out := string(route.View)
			if route.Sub != "" {
				out += "/" + route.Sub
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().BoolVarP(&authenticated, "authenticated", "a", false, "resolve as a signed-in user")
	return cmd
}
