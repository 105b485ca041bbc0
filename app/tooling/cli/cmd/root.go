// Package cmd contains the operator cli for a ledger node.
package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	nodeURL string
	keyPath string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&nodeURL, "url", "u", "http://localhost:5000", "Url of the node.")
	rootCmd.PersistentFlags().StringVarP(&keyPath, "key", "k", "zblock/node.ecdsa", "Path to the private key.")
}

var rootCmd = &cobra.Command{
	Use:          "cli",
	Short:        "Operate a ledger node",
	SilenceUsage: true,
}

// Execute runs the command selected by the command line arguments.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// =============================================================================

// client is used for every call to the node. Mining can take a while.
var client = http.Client{
	Timeout: 5 * time.Minute,
}

// call sends the request to the node and writes the indented response body
// to the writer.
func call(w io.Writer, method string, path string, dataSend any) error {
	var body io.Reader
	if dataSend != nil {
		data, err := json.Marshal(dataSend)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, strings.TrimSuffix(nodeURL, "/")+path, body)
	if err != nil {
		return err
	}

	if dataSend != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		out.Reset()
		out.Write(data)
	}
	fmt.Fprintln(w, out.String())

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("node responded with status %d", resp.StatusCode)
	}

	return nil
}
