package state

import (
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
)

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// Difficulty returns the number of leading hex zeros a mined block needs.
func (s *State) Difficulty() uint {
	return uint(s.genesis.Difficulty)
}

// MiningReward returns the amount paid for mining a block.
func (s *State) MiningReward() uint64 {
	return s.genesis.MiningReward
}

// LatestBlock returns a copy of the current latest block.
func (s *State) LatestBlock() (database.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	block, err := s.latestBlock()
	if err != nil {
		return database.Block{}, err
	}

	return block.Clone(), nil
}

// RetrieveBlocks returns a copy of every block in the chain starting with
// the genesis block.
func (s *State) RetrieveBlocks() []database.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blocks := make([]database.Block, len(s.blocks))
	for i, block := range s.blocks {
		blocks[i] = block.Clone()
	}

	return blocks
}

// RetrievePending returns a copy of the pending transactions.
func (s *State) RetrievePending() []database.Tx {
	return s.mempool.Copy()
}

// =============================================================================

// latestBlock returns the last block of the chain. The caller must hold
// the lock.
func (s *State) latestBlock() (database.Block, error) {
	if len(s.blocks) == 0 {
		return database.Block{}, ErrEmptyChain
	}

	return s.blocks[len(s.blocks)-1], nil
}
