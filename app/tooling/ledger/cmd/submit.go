package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var submitCmd = &cobra.Command{
	Use:   "submit <from> <to> <amount>",
	Short: "Submit a transaction to the node.",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		var amount uint64
		if _, err := fmt.Sscan(args[2], &amount); err != nil {
			return fmt.Errorf("parsing amount %q: %w", args[2], err)
		}

		body := struct {
			From   string `json:"from"`
			To     string `json:"to"`
			Amount uint64 `json:"amount"`
		}{
			From:   args[0],
			To:     args[1],
			Amount: amount,
		}

		var result struct {
			Status  string `json:"status"`
			Pending int    `json:"pending"`
		}

		resp, err := newClient().R().SetBody(body).SetResult(&result).Post("/v1/tx/submit")
		if err := checkResponse(resp, err); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d pending\n", result.Status, result.Pending)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(submitCmd)
}
