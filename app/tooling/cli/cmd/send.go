package cmd

import (
	"net/http"

	"github.com/spf13/cobra"
)

var (
	sender    string
	recipient string
	amount    uint64
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a transaction signed by the node",
	RunE: func(cmd *cobra.Command, args []string) error {
		tx := struct {
			Sender    string `json:"sender"`
			Recipient string `json:"recipient"`
			Amount    uint64 `json:"amount"`
		}{
			Sender:    sender,
			Recipient: recipient,
			Amount:    amount,
		}

		return call(cmd.OutOrStdout(), http.MethodPost, "/transactions/new", tx)
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&sender, "sender", "s", "", "Sender of the value.")
	sendCmd.Flags().StringVarP(&recipient, "recipient", "r", "", "Recipient of the value.")
	sendCmd.Flags().Uint64VarP(&amount, "amount", "a", 0, "Value to send.")
	sendCmd.MarkFlagRequired("sender")
	sendCmd.MarkFlagRequired("recipient")
}
