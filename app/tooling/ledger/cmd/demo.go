package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the reference scenario against an in memory chain.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDemo(cmd.Context(), cmd.OutOrStdout(), uint16(viper.GetUint("difficulty")), viper.GetUint64("reward"))
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
	demoCmd.Flags().Uint("difficulty", genesis.DefaultDifficulty, "Leading zeros required in a block hash.")
	demoCmd.Flags().Uint64("reward", genesis.DefaultMiningReward, "Amount paid for mining a block.")
}

// The addresses used by the scenario.
const (
	address1 = "address1"
	address2 = "address2"
	address3 = "address3"
)

// runDemo submits two transactions, mines a round for address3, prints the
// balances, mines a round for address2 and prints the balances again.
func runDemo(ctx context.Context, out io.Writer, difficulty uint16, reward uint64) error {
	if ctx == nil {
		ctx = context.Background()
	}

	gen := genesis.Default()
	gen.Difficulty = difficulty
	gen.MiningReward = reward

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("mining"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)

	// Every mining progress event moves the spinner.
	ev := func(v string, args ...any) {
		if strings.Contains(v, "MINING: attempts") {
			bar.Add(1)
		}
	}

	st, err := state.New(state.Config{
		Genesis:   gen,
		EvHandler: ev,
	})
	if err != nil {
		return err
	}
	defer st.Shutdown()

	st.SubmitTransaction(database.NewTx(address1, address2, 100))
	st.SubmitTransaction(database.NewTx(address2, address1, 50))

	rounds := []string{address3, address2}
	for i, rewardAddress := range rounds {
		bar.Describe(fmt.Sprintf("mining round %d for %s", i+1, rewardAddress))

		blk, err := st.MinePending(ctx, rewardAddress)
		if err != nil {
			bar.Finish()
			return fmt.Errorf("mining round %d: %w", i+1, err)
		}
		bar.Finish()
		bar.Reset()

		fmt.Fprintf(out, "round %d: mined block %s nonce %d\n", i+1, blk.Hash, blk.Nonce)
		for _, address := range []string{address1, address2, address3} {
			fmt.Fprintf(out, "  balance of %s: %d\n", address, st.QueryBalance(address))
		}
	}

	fmt.Fprintf(out, "chain valid: %t\n", st.Verify())

	return nil
}
