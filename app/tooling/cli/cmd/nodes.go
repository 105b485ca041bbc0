package cmd

import (
	"net/http"

	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register <host:port>",
	Short: "Register a peer with the node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		node := struct {
			Node string `json:"node"`
		}{
			Node: args[0],
		}

		return call(cmd.OutOrStdout(), http.MethodPost, "/nodes/register", node)
	},
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Register the peers known by the node's peers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd.OutOrStdout(), http.MethodPost, "/get_other_nodes", nil)
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(discoverCmd)
}
