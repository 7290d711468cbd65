package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/blockchain/storage/disk"
	"github.com/ardanlabs/powledger/foundation/blockchain/storage/leveldb"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Load a stored chain and check its integrity.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVerify(cmd.OutOrStdout(), viper.GetString("db-type"), viper.GetString("db-path"), viper.GetString("genesis"))
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().String("db-type", "disk", "Storage type of the chain (disk|leveldb).")
	verifyCmd.Flags().String("db-path", "zblock/blocks", "Path to the stored chain.")
	verifyCmd.Flags().String("genesis", "", "Path to the genesis file, defaults are used when empty.")
}

// errChainInvalid is returned so the command exits with a failure.
var errChainInvalid = errors.New("chain is invalid")

func runVerify(out io.Writer, dbType string, dbPath string, genesisPath string) error {
	st, err := openChain(dbType, dbPath, genesisPath)
	if err != nil {
		return err
	}
	defer st.Shutdown()

	if err := st.Validate(); err != nil {
		fmt.Fprintf(out, "height %d: %v\n", st.QueryHeight(), err)
		return errChainInvalid
	}

	fmt.Fprintf(out, "height %d: chain is valid\n", st.QueryHeight())
	return nil
}

// openChain loads the chain stored at the path.
func openChain(dbType string, dbPath string, genesisPath string) (*state.State, error) {
	gen := genesis.Default()
	if genesisPath != "" {
		var err error
		if gen, err = genesis.Load(genesisPath); err != nil {
			return nil, err
		}
	}

	var strg database.Storage
	var err error
	switch dbType {
	case "disk":
		strg, err = disk.New(dbPath)
	case "leveldb":
		strg, err = leveldb.New(dbPath, nil)
	default:
		return nil, fmt.Errorf("unknown storage type %q", dbType)
	}
	if err != nil {
		return nil, err
	}

	st, err := state.New(state.Config{
		Genesis: gen,
		Storage: strg,
	})
	if err != nil {
		strg.Close()
		return nil, err
	}

	return st, nil
}
