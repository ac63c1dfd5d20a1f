package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bitcoinecho/walletcore/pkg/bitcoin"
)

func newMnemonicCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mnemonic",
		Short: "Generate and derive from BIP39 mnemonics",
	}
	cmd.AddCommand(newMnemonicNewCmd())
	return cmd
}

func newMnemonicNewCmd() *cobra.Command {
	var words int
	var passphrase string

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Generate a new BIP39 mnemonic and its master extended key",
		RunE: func(cmd *cobra.Command, args []string) error {
			network, err := networkFromFlag(cmd)
			if err != nil {
				return err
			}
			mnemonic, err := bitcoin.NewMnemonic(words)
			if err != nil {
				return err
			}
			seed, err := bitcoin.SeedFromMnemonic(mnemonic, passphrase)
			if err != nil {
				return err
			}
			master, err := bitcoin.NewMasterKey(seed, network)
			if err != nil {
				return err
			}
			fmt.Printf("mnemonic: %s\n", mnemonic)
			fmt.Printf("xprv:     %s\n", master.String())
			return nil
		},
	}
	cmd.Flags().IntVar(&words, "words", 12, "word count: 12, 15, 18, 21, or 24")
	cmd.Flags().StringVar(&passphrase, "passphrase", "", "optional BIP39 passphrase")
	return cmd
}
