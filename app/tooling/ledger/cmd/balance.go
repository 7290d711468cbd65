package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var balanceCmd = &cobra.Command{
	Use:   "balance <address>",
	Short: "Print the balance of an address.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var bal balance
		resp, err := newClient().R().SetPathParam("address", args[0]).SetResult(&bal).Get("/v1/balances/{address}")
		if err := checkResponse(resp, err); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d (height %d)\n", bal.Address, bal.Balance, bal.Height)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}
