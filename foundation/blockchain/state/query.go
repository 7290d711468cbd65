package state

import "github.com/ardanlabs/powledger/foundation/blockchain/database"

// QueryBalance returns the signed sum of every amount sent to and from the
// address across the whole chain. An address that never appears has a zero
// balance. Reward transactions never debit anyone.
func (s *State) QueryBalance(address string) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var balance int64
	for _, block := range s.blocks {
		for _, tx := range block.Transactions {
			if !tx.IsReward() && tx.FromAddress == address {
				balance -= int64(tx.Amount)
			}
			if tx.ToAddress == address {
				balance += int64(tx.Amount)
			}
		}
	}

	return balance
}

// QueryHeight returns the number of the latest block. The genesis block
// is number 0.
func (s *State) QueryHeight() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return uint64(len(s.blocks) - 1)
}

// QueryPendingLength returns the current number of pending transactions.
func (s *State) QueryPendingLength() int {
	return s.mempool.Count()
}

// QueryBlocksByAddress returns the blocks, with their numbers, holding a
// transaction to or from the address. If the address is empty, all blocks
// are returned.
func (s *State) QueryBlocksByAddress(address string) []database.BlockData {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []database.BlockData
	for i, block := range s.blocks {
		if address == "" {
			out = append(out, database.NewBlockData(uint64(i), block))
			continue
		}

		for _, tx := range block.Transactions {
			if (!tx.IsReward() && tx.FromAddress == address) || tx.ToAddress == address {
				out = append(out, database.NewBlockData(uint64(i), block))
				break
			}
		}
	}

	return out
}
