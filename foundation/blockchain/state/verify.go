package state

import (
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// ValidationError describes the first integrity failure found in the chain.
type ValidationError struct {
	Number uint64
	Reason string
}

// Error implements the error interface.
func (ve *ValidationError) Error() string {
	return fmt.Sprintf("block %d: %s", ve.Number, ve.Reason)
}

// Verify reports whether every block still hashes to its stored hash and
// links to the recomputed hash of its predecessor.
func (s *State) Verify() bool {
	return s.Validate() == nil
}

// Validate walks the whole chain and returns a ValidationError for the first
// block that was changed after it was mined. Difficulty is not checked
// again, it's only enforced while mining.
func (s *State) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return validateChain(s.blocks, s.evHandler)
}

// =============================================================================

// validateChain performs the integrity checks over the blocks.
func validateChain(blocks []database.Block, ev EventHandler) error {
	if len(blocks) == 0 {
		return ErrEmptyChain
	}

	ev("state: validateChain: blk[0]: check: genesis hash")

	if hash := blocks[0].ComputeHash(); blocks[0].Hash != hash {
		return &ValidationError{Number: 0, Reason: fmt.Sprintf("stored hash %s doesn't match computed hash %s", blocks[0].Hash, hash)}
	}

	for i := 1; i < len(blocks); i++ {
		number := uint64(i)

		ev("state: validateChain: blk[%d]: check: block hash", number)

		hash := blocks[i].ComputeHash()
		if blocks[i].Hash != hash {
			return &ValidationError{Number: number, Reason: fmt.Sprintf("stored hash %s doesn't match computed hash %s", blocks[i].Hash, hash)}
		}

		ev("state: validateChain: blk[%d]: check: parent hash", number)

		parentHash := blocks[i-1].ComputeHash()
		if blocks[i].PrevBlockHash != parentHash {
			return &ValidationError{Number: number, Reason: fmt.Sprintf("parent hash %s doesn't match computed parent hash %s", blocks[i].PrevBlockHash, parentHash)}
		}

		for _, tx := range blocks[i].Transactions {
			if err := tx.Validate(); err != nil {
				return &ValidationError{Number: number, Reason: err.Error()}
			}
		}
	}

	return nil
}
