// Package memory keeps the stored blocks in a slice. Nothing survives the
// process, which makes it the default store and the one used by tests.
package memory

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// Set of errors the memory store can return.
var (
	ErrNotFound   = errors.New("block not found")
	ErrOutOfOrder = errors.New("block out of order")
)

// Memory stores blocks in number order. Block n lives at index n-1.
type Memory struct {
	mu     sync.RWMutex
	blocks []database.BlockData
}

// New returns an empty store.
func New() (*Memory, error) {
	return &Memory{}, nil
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}

// Write appends the block. Only the block after the last stored one
// is accepted.
func (m *Memory) Write(blockData database.BlockData) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := uint64(len(m.blocks)) + 1
	if blockData.Number != next {
		return fmt.Errorf("got %d, exp %d: %w", blockData.Number, next, ErrOutOfOrder)
	}

	m.blocks = append(m.blocks, database.NewBlockData(blockData.Number, blockData.Block))

	return nil
}

// GetBlock returns a copy of the block with the specified number.
func (m *Memory) GetBlock(num uint64) (database.BlockData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if num == 0 || num > uint64(len(m.blocks)) {
		return database.BlockData{}, fmt.Errorf("block %d: %w", num, ErrNotFound)
	}

	stored := m.blocks[num-1]
	return database.NewBlockData(stored.Number, stored.Block), nil
}

// ForEach walks the stored blocks from number 1.
func (m *Memory) ForEach() database.Iterator {
	return &iterator{m: m}
}

// Reset drops every block.
func (m *Memory) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blocks = nil
	return nil
}

// =============================================================================

type iterator struct {
	m    *Memory
	last uint64
	done bool
}

// Next returns the following block. Running past the last block marks the
// iterator done and returns ErrNotFound.
func (it *iterator) Next() (database.BlockData, error) {
	if it.done {
		return database.BlockData{}, ErrNotFound
	}

	it.last++
	blockData, err := it.m.GetBlock(it.last)
	if err != nil {
		it.done = true
	}

	return blockData, err
}

// Done reports whether the end of the chain was reached.
func (it *iterator) Done() bool {
	return it.done
}
