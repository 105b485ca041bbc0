package cmd

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var (
	publicKey string
	sig       string
)

var signCmd = &cobra.Command{
	Use:   "sign <message>",
	Short: "Sign a message with the private key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		privateKey, err := crypto.LoadECDSA(keyPath)
		if err != nil {
			return err
		}

		s, err := signature.Sign(privateKey, args[0])
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "publickey:", signature.PublicKeyString(privateKey.PublicKey))
		fmt.Fprintln(cmd.OutOrStdout(), "signature:", s)

		return nil
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify <message>",
	Short: "Verify the signature of a message",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ok, err := signature.Verify(publicKey, args[0], sig)
		if err != nil {
			return err
		}

		if !ok {
			return errors.New("signature not verified")
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Verified")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(signCmd)
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().StringVarP(&publicKey, "publickey", "p", "", "Public key of the signer.")
	verifyCmd.Flags().StringVarP(&sig, "signature", "s", "", "Signature to verify.")
	verifyCmd.MarkFlagRequired("publickey")
	verifyCmd.MarkFlagRequired("signature")
}
