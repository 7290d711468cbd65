// Package mempool maintains the pending transactions for the blockchain.
package mempool

import (
	"sync"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// Mempool represents the transactions waiting to be mined. Insertion order
// is kept since it becomes the order of the transactions in a block.
type Mempool struct {
	pool []database.Tx
	mu   sync.RWMutex
}

// New constructs a new, empty mempool.
func New() *Mempool {
	return &Mempool{}
}

// Count returns the current number of transaction in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Add appends a transaction to the end of the pool and returns the new
// number of transactions in the pool.
func (mp *Mempool) Add(tx database.Tx) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = append(mp.pool, tx)

	return len(mp.pool)
}

// Copy returns a copy of the transactions in the pool in insertion order.
func (mp *Mempool) Copy() []database.Tx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	txs := make([]database.Tx, len(mp.pool))
	copy(txs, mp.pool)

	return txs
}

// Replace swaps the first consumed transactions of the pool for the seed
// transactions. Transactions added after the consumed ones are kept behind
// the seed, so nothing submitted while a block was being mined gets lost.
func (mp *Mempool) Replace(consumed int, seed ...database.Tx) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	consumed = min(max(consumed, 0), len(mp.pool))

	pool := make([]database.Tx, 0, len(seed)+len(mp.pool)-consumed)
	pool = append(pool, seed...)
	pool = append(pool, mp.pool[consumed:]...)

	mp.pool = pool
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = nil
}
