package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bitcoinecho/walletcore/pkg/bitcoin"
)

func newTxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Inspect raw transactions",
	}
	cmd.AddCommand(newTxDecodeCmd())
	return cmd
}

func newTxDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <hex>",
		Short: "Decode and print a raw transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := hex.DecodeString(args[0])
			if err != nil {
				return err
			}
			tx, err := bitcoin.DeserializeTransaction(raw)
			if err != nil {
				return err
			}
			fmt.Printf("txid:     %s\n", tx.Hash().String())
			fmt.Printf("version:  %d\n", tx.Version)
			fmt.Printf("locktime: %d\n", tx.LockTime)
			fmt.Printf("inputs:   %d\n", len(tx.Inputs))
			for i, in := range tx.Inputs {
				fmt.Printf("  [%d] %s sequence=%d script=%s\n", i, in.PreviousOutput.String(), in.Sequence, in.UnlockingScript.String())
			}
			fmt.Printf("outputs:  %d\n", len(tx.Outputs))
			for i, out := range tx.Outputs {
				fmt.Printf("  [%d] value=%d script=%s\n", i, out.Value, out.LockingScript.String())
			}
			return nil
		},
	}
}
