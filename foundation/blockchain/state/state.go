// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/mempool"
	"github.com/ardanlabs/powledger/foundation/blockchain/storage/memory"
)

// ErrEmptyChain is returned when the chain has no blocks, not even the
// genesis block. The construction of the chain makes this unreachable.
var ErrEmptyChain = errors.New("chain has no blocks")

// ErrChainChanged is returned when a mined block no longer extends the
// latest block of the chain.
var ErrChainChanged = errors.New("block doesn't extend the chain")

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of blocks.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for background mining.
type Worker interface {
	Shutdown()
	SignalStartMining()
	SignalCancelMining()
}

// =============================================================================

// Config represents the configuration required to start the blockchain.
type Config struct {
	Genesis   genesis.Genesis
	Storage   database.Storage
	EvHandler EventHandler
}

// State manages the blockchain. It exclusively owns the blocks and the
// pending transactions.
type State struct {
	mu       sync.RWMutex
	miningMu sync.Mutex

	evHandler EventHandler
	genesis   genesis.Genesis
	blocks    []database.Block
	mempool   *mempool.Mempool
	storage   database.Storage

	Worker Worker
}

// New constructs a new blockchain starting with the genesis block followed
// by any blocks found in storage. Without a storage the blocks only live in
// memory.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if err := cfg.Genesis.Validate(); err != nil {
		return nil, fmt.Errorf("validating genesis: %w", err)
	}

	strg := cfg.Storage
	if strg == nil {
		var err error
		if strg, err = memory.New(); err != nil {
			return nil, err
		}
	}

	// The genesis block is never stored, it's always derived from the
	// genesis settings.
	blocks := []database.Block{cfg.Genesis.Block()}

	// Load all existing blocks from storage into memory for processing.
	stored, err := readAllBlocks(strg, ev)
	if err != nil {
		return nil, err
	}
	blocks = append(blocks, stored...)

	state := State{
		evHandler: ev,
		genesis:   cfg.Genesis,
		blocks:    blocks,
		mempool:   mempool.New(),
		storage:   strg,
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Truncate resets the chain back to the genesis block and clears the
// pending transactions and the storage. A mining round in progress will
// fail to finalize since its parent is gone.
func (s *State) Truncate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evHandler("state: truncate: height[%d]", len(s.blocks)-1)

	// Reset the state of the database.
	if err := s.storage.Reset(); err != nil {
		return fmt.Errorf("resetting storage: %w", err)
	}
	s.mempool.Truncate()
	s.blocks = s.blocks[:1:1]

	return nil
}

// Shutdown cleanly brings the blockchain down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Stop all blockchain writing activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	// Make sure the database is properly closed.
	return s.storage.Close()
}

// =============================================================================

// readAllBlocks walks the storage and returns the blocks in number order.
func readAllBlocks(strg database.Storage, ev EventHandler) ([]database.Block, error) {
	var blocks []database.Block

	iter := strg.ForEach()
	for blockData, err := iter.Next(); !iter.Done(); blockData, err = iter.Next() {
		if err != nil {
			return nil, fmt.Errorf("reading blocks: %w", err)
		}

		exp := uint64(len(blocks) + 1)
		if blockData.Number != exp {
			return nil, fmt.Errorf("reading blocks: block is out of order, got %d, exp %d", blockData.Number, exp)
		}

		ev("state: readAllBlocks: blk[%d]: hash[%s]", blockData.Number, blockData.Block.Hash)
		blocks = append(blocks, blockData.Block)
	}

	return blocks, nil
}
