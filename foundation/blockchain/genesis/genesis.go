// Package genesis maintains access to the genesis settings.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// Defaults used when no genesis file is provided.
const (
	DefaultDifficulty   = 5
	DefaultMiningReward = 100
)

// Genesis represents the genesis file.
type Genesis struct {
	Date         time.Time `json:"date"`          // Fixed historical timestamp of the genesis block.
	Difficulty   uint16    `json:"difficulty"`    // Number of leading hex zeros a mined block hash needs.
	MiningReward uint64    `json:"mining_reward"` // Reward for mining a block.
}

// Default returns the genesis settings the chain starts with when there is
// no genesis file.
func Default() Genesis {
	return Genesis{
		Date:         time.Date(2018, time.June, 11, 0, 0, 0, 0, time.UTC),
		Difficulty:   DefaultDifficulty,
		MiningReward: DefaultMiningReward,
	}
}

// Load opens and consumes the genesis file. Fields missing from the file
// keep their default values.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	genesis := Default()
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, fmt.Errorf("decoding genesis: %w", err)
	}

	if err := genesis.Validate(); err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}

// Validate checks the settings can produce a working chain.
func (g Genesis) Validate() error {
	if g.Difficulty > database.HashLength {
		return fmt.Errorf("difficulty %d: %w", g.Difficulty, database.ErrInvalidDifficulty)
	}

	if g.MiningReward == 0 {
		return fmt.Errorf("mining reward must be positive")
	}

	if g.MiningReward > database.MaxAmount {
		return fmt.Errorf("mining reward %d: %w", g.MiningReward, database.ErrAmountTooLarge)
	}

	return nil
}

// Block constructs the genesis block: no transactions, no previous hash and
// the genesis date as its timestamp.
func (g Genesis) Block() database.Block {
	return database.NewBlock(uint64(g.Date.UnixMilli()), nil, "")
}
