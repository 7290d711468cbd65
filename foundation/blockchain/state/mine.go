package state

import (
	"context"
	"fmt"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// MinePending packages every pending transaction into a new block, mines it,
// and appends it to the chain. The pending set is then seeded with the
// reward for the specified address, so the reward is only mined by the next
// round. A cancelled context leaves the chain and pending set untouched.
func (s *State) MinePending(ctx context.Context, rewardAddress string) (database.Block, error) {
	s.evHandler("state: MinePending: MINING: started: reward[%s]", rewardAddress)
	defer s.evHandler("state: MinePending: MINING: completed")

	// Only one mining round can run at a time.
	s.miningMu.Lock()
	defer s.miningMu.Unlock()

	// Take a snapshot of what the new block is built from.
	s.mu.RLock()
	latestBlock, err := s.latestBlock()
	txs := s.mempool.Copy()
	s.mu.RUnlock()

	if err != nil {
		return database.Block{}, err
	}

	s.evHandler("state: MinePending: MINING: perform POW: txs[%d]", len(txs))

	// Attempt to create a new block by solving the POW puzzle. This can be
	// cancelled and the chain lock is not held while searching.
	block := database.NewBlock(uint64(time.Now().UTC().UnixMilli()), txs, latestBlock.Hash)
	if err := block.Mine(ctx, s.Difficulty(), database.EventHandler(s.evHandler)); err != nil {
		return database.Block{}, err
	}

	// Just check one more time we were not cancelled.
	if ctx.Err() != nil {
		return database.Block{}, ctx.Err()
	}

	s.evHandler("state: MinePending: MINING: update local state")

	// Finalizing the block and seeding the next round happen in the same
	// critical section.
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.finalize(block); err != nil {
		return database.Block{}, err
	}
	s.seedNext(database.NewRewardTx(rewardAddress, s.genesis.MiningReward), len(txs))

	return block.Clone(), nil
}

// =============================================================================

// finalize writes the mined block to storage and appends it to the chain.
// The caller must hold the write lock.
func (s *State) finalize(block database.Block) error {
	latestBlock, err := s.latestBlock()
	if err != nil {
		return err
	}

	if block.PrevBlockHash != latestBlock.Hash {
		return fmt.Errorf("got parent %s, exp %s: %w", block.PrevBlockHash, latestBlock.Hash, ErrChainChanged)
	}

	number := uint64(len(s.blocks))

	s.evHandler("state: finalize: write blk[%d] to storage", number)

	if err := s.storage.Write(database.NewBlockData(number, block)); err != nil {
		return fmt.Errorf("writing block %d: %w", number, err)
	}
	s.blocks = append(s.blocks, block.Clone())

	return nil
}

// seedNext replaces the transactions mined into the last block with the
// reward transaction. Transactions submitted while mining are kept behind
// the reward. The caller must hold the write lock.
func (s *State) seedNext(reward database.Tx, consumed int) {
	s.evHandler("state: seedNext: reward[%s]: consumed[%d]", reward, consumed)

	s.mempool.Replace(consumed, reward)
}
