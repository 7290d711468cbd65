package database

import (
	"errors"
	"fmt"
	"math"
)

// MaxAmount is the largest amount a transaction can carry. Balances are
// signed sums of amounts, so an amount must fit an int64.
const MaxAmount = math.MaxInt64

// ErrAmountTooLarge is returned for a transaction above MaxAmount.
var ErrAmountTooLarge = errors.New("amount exceeds maximum")

// Tx is the transactional information between two parties.
type Tx struct {
	FromAddress string `json:"from_address"` // Empty when the value is minted by the system as a mining reward.
	ToAddress   string `json:"to_address"`   // Address receiving the value of the transaction.
	Amount      uint64 `json:"amount"`       // Value moved by this transaction.
}

// NewTx constructs a new transaction.
func NewTx(from string, to string, amount uint64) Tx {
	return Tx{
		FromAddress: from,
		ToAddress:   to,
		Amount:      amount,
	}
}

// NewRewardTx constructs the transaction that pays the mining reward to
// the specified address.
func NewRewardTx(to string, amount uint64) Tx {
	return Tx{
		ToAddress: to,
		Amount:    amount,
	}
}

// IsReward reports whether the transaction was minted by the system.
func (tx Tx) IsReward() bool {
	return tx.FromAddress == ""
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	from := tx.FromAddress
	if tx.IsReward() {
		from = "<reward>"
	}

	return fmt.Sprintf("%s->%s:%d", from, tx.ToAddress, tx.Amount)
}

// Validate checks the transaction can be added to a block.
func (tx Tx) Validate() error {
	if tx.Amount > MaxAmount {
		return fmt.Errorf("amount %d: %w", tx.Amount, ErrAmountTooLarge)
	}

	return nil
}
