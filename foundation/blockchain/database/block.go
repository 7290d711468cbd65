// Package database handles the block and transaction types of the
// blockchain along with hashing and mining them.
package database

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
)

// HashLength is the number of hex characters in a block hash.
const HashLength = 2 * sha256.Size

// ErrInvalidDifficulty is returned when a difficulty asks for more leading
// zeros than a hash has characters, which could never be solved.
var ErrInvalidDifficulty = errors.New("difficulty exceeds hash length")

// EventHandler defines a function that is called when events occur
// while processing blocks.
type EventHandler func(v string, args ...any)

// =============================================================================

// Block represents a group of transactions batched together and bound to
// the block before it.
type Block struct {
	PrevBlockHash string `json:"previous_hash"` // Hash of the previous block in the chain, empty for genesis.
	TimeStamp     uint64 `json:"timestamp"`     // Unix milliseconds when the block was created.
	Transactions  []Tx   `json:"transactions"`  // Order is significant since it feeds the hash.
	Nonce         uint64 `json:"nonce"`         // Value identified to solve the hash solution.
	Hash          string `json:"hash"`          // Hash of the current field values.
}

// NewBlock constructs a block with a zero nonce and computes its hash. The
// block is not mined and its hash will generally not satisfy a difficulty.
func NewBlock(timeStamp uint64, txs []Tx, prevBlockHash string) Block {
	b := Block{
		PrevBlockHash: prevBlockHash,
		TimeStamp:     timeStamp,
		Transactions:  copyTxs(txs),
		Nonce:         0,
	}
	b.Hash = b.ComputeHash()

	return b
}

// ComputeHash returns the hash for the current field values of the block.
// The stored hash is not changed.
func (b Block) ComputeHash() string {
	return hash(Encode(b))
}

// Mine performs the work of finding a nonce that produces a hash with the
// specified number of leading zeros. Pointer semantics are being used since
// the nonce and hash are updated in place. Mining only ends when the hash is
// solved or the context is cancelled.
func (b *Block) Mine(ctx context.Context, difficulty uint, ev EventHandler) error {
	if difficulty > HashLength {
		return fmt.Errorf("difficulty %d: %w", difficulty, ErrInvalidDifficulty)
	}

	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	ev("database: Mine: MINING: started: difficulty[%d] txs[%d]", difficulty, len(b.Transactions))
	defer ev("database: Mine: MINING: completed")

	// Make sure the search starts from the hash of the current fields.
	b.Hash = b.ComputeHash()

	// Only the nonce changes between attempts.
	prefix := encodePrefix(*b)

	var attempts uint64
	for !IsHashSolved(difficulty, b.Hash) {
		attempts++
		if attempts%1_000_000 == 0 {
			ev("database: Mine: MINING: attempts[%d]", attempts)
		}

		// Did we get cancelled trying to solve the problem.
		if ctx.Err() != nil {
			ev("database: Mine: MINING: CANCELLED: attempts[%d]", attempts)
			return ctx.Err()
		}

		b.Nonce++
		b.Hash = hash(strconv.AppendUint(prefix, b.Nonce, 10))
	}

	ev("database: Mine: MINING: SOLVED: prevBlk[%s]: newBlk[%s]: nonce[%d]", b.PrevBlockHash, b.Hash, b.Nonce)

	return nil
}

// Clone returns a deep copy of the block so the copy can't alias the
// transactions of the original.
func (b Block) Clone() Block {
	b.Transactions = copyTxs(b.Transactions)
	return b
}

// IsHashSolved checks the hash to make sure it complies with the POW rules.
// We need to match a difficulty number of leading 0's.
func IsHashSolved(difficulty uint, hash string) bool {
	const match = "0000000000000000000000000000000000000000000000000000000000000000"

	if difficulty > HashLength || uint(len(hash)) < difficulty {
		return false
	}

	return hash[:difficulty] == match[:difficulty]
}

// =============================================================================

// hash returns the lower case hex encoded SHA-256 digest of the data.
func hash(data []byte) string {
	sum := sha256.Sum256(data)
	return common.Bytes2Hex(sum[:])
}

func copyTxs(txs []Tx) []Tx {
	if txs == nil {
		return nil
	}

	out := make([]Tx, len(txs))
	copy(out, txs)

	return out
}
