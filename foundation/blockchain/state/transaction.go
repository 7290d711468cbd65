package state

import "github.com/ardanlabs/powledger/foundation/blockchain/database"

// SubmitTransaction accepts a transaction for inclusion in the next block
// and returns the number of pending transactions. Only the amount is
// checked, there are no balance or signature checks.
func (s *State) SubmitTransaction(tx database.Tx) (int, error) {
	if err := tx.Validate(); err != nil {
		s.evHandler("state: SubmitTransaction: tx[%s]: REJECTED: %s", tx, err)
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.mempool.Add(tx)
	s.evHandler("state: SubmitTransaction: tx[%s]: pending[%d]", tx, n)

	return n, nil
}
