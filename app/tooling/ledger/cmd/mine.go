package cmd

import (
	"github.com/spf13/cobra"
)

var mineCmd = &cobra.Command{
	Use:   "mine <reward-address>",
	Short: "Ask the node to mine the pending transactions.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := struct {
			RewardAddress string `json:"reward_address"`
		}{
			RewardAddress: args[0],
		}

		var blk block
		resp, err := newClient().R().SetBody(body).SetResult(&blk).Post("/v1/mining/mine")
		if err := checkResponse(resp, err); err != nil {
			return err
		}

		printBlock(cmd.OutOrStdout(), blk)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mineCmd)
}
