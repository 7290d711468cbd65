package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Truncate a stored chain back to the genesis block.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReset(cmd.OutOrStdout(), viper.GetString("db-type"), viper.GetString("db-path"), viper.GetString("genesis"))
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().String("db-type", "disk", "Storage type of the chain (disk|leveldb).")
	resetCmd.Flags().String("db-path", "zblock/blocks", "Path to the stored chain.")
	resetCmd.Flags().String("genesis", "", "Path to the genesis file, defaults are used when empty.")
}

func runReset(out io.Writer, dbType string, dbPath string, genesisPath string) error {
	st, err := openChain(dbType, dbPath, genesisPath)
	if err != nil {
		return err
	}
	defer st.Shutdown()

	height := st.QueryHeight()
	if err := st.Truncate(); err != nil {
		return err
	}

	fmt.Fprintf(out, "removed %d blocks\n", height)
	return nil
}
