// Command walletcore is a CLI front end for the walletcore library:
// address/key generation, mnemonic generation, and transaction decoding.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0-dev"

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:     "walletcore",
		Short:   "A Bitcoin (pre-Genesis BSV) wallet and transaction-construction toolkit",
		Version: version,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging switch (no command writes log output)")
	root.PersistentFlags().StringP("network", "n", "mainnet", "network to operate on: mainnet or testnet")

	root.AddCommand(newAddressCmd())
	root.AddCommand(newMnemonicCmd())
	root.AddCommand(newTxCmd())
	return root
}
