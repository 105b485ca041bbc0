package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a new node key",
	RunE:  keygenRun,
}

func init() {
	rootCmd.AddCommand(keygenCmd)
}

func keygenRun(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(keyPath); err == nil {
		return fmt.Errorf("key already exists at %s", keyPath)
	}

	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(keyPath), 0o755); err != nil {
		return err
	}

	if err := crypto.SaveECDSA(keyPath, privateKey); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), signature.PublicKeyString(privateKey.PublicKey))

	return nil
}
