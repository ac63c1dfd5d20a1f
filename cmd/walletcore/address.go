package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bitcoinecho/walletcore/pkg/bitcoin"
)

func newAddressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "address",
		Short: "Generate and inspect addresses",
	}
	cmd.AddCommand(newAddressNewCmd())
	cmd.AddCommand(newAddressFromKeyCmd())
	return cmd
}

func newAddressNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Generate a new random private key and its P2PKH address",
		RunE: func(cmd *cobra.Command, args []string) error {
			network, err := networkFromFlag(cmd)
			if err != nil {
				return err
			}
			key, err := bitcoin.NewPrivateKey()
			if err != nil {
				return err
			}
			addr := bitcoin.NewP2PKHAddress(key.PubKey(), network)
			fmt.Printf("address: %s\n", addr.String())
			fmt.Printf("wif:     %s\n", key.WIF(network))
			return nil
		},
	}
}

func newAddressFromKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "from-key <wif>",
		Short: "Derive the P2PKH address for a WIF-encoded private key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, network, err := bitcoin.PrivateKeyFromWIF(args[0])
			if err != nil {
				return err
			}
			addr := bitcoin.NewP2PKHAddress(key.PubKey(), network)
			fmt.Println(addr.String())
			return nil
		},
	}
}

func networkFromFlag(cmd *cobra.Command) (bitcoin.NetworkType, error) {
	name, err := cmd.Flags().GetString("network")
	if err != nil {
		return bitcoin.Mainnet, err
	}
	switch name {
	case "", "mainnet":
		return bitcoin.Mainnet, nil
	case "testnet":
		return bitcoin.Testnet, nil
	default:
		return bitcoin.Mainnet, fmt.Errorf("unknown network %q", name)
	}
}
