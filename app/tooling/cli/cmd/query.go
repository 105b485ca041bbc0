package cmd

import (
	"net/http"

	"github.com/spf13/cobra"
)

// getCmd constructs a command that reads a route of the node.
func getCmd(use string, short string, path string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd.OutOrStdout(), http.MethodGet, path, nil)
		},
	}
}

func init() {
	rootCmd.AddCommand(getCmd("mine", "Mine a new block", "/mine"))
	rootCmd.AddCommand(getCmd("chain", "Show the full chain", "/chain"))
	rootCmd.AddCommand(getCmd("pending", "Show the uncommitted transactions", "/transactions"))
	rootCmd.AddCommand(getCmd("nodes", "Show the known peers", "/nodes"))
	rootCmd.AddCommand(getCmd("resolve", "Resolve conflicts with the known peers", "/nodes/resolve"))
}
