package public

import (
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

type tx struct {
	FromAddress string `json:"from_address"`
	ToAddress   string `json:"to_address"`
	Amount      uint64 `json:"amount"`
	Reward      bool   `json:"reward"`
}

func toTx(dbTx database.Tx) tx {
	return tx{
		FromAddress: dbTx.FromAddress,
		ToAddress:   dbTx.ToAddress,
		Amount:      dbTx.Amount,
		Reward:      dbTx.IsReward(),
	}
}

func toTxs(dbTxs []database.Tx) []tx {
	txs := make([]tx, len(dbTxs))
	for i, dbTx := range dbTxs {
		txs[i] = toTx(dbTx)
	}
	return txs
}

type block struct {
	Number        uint64 `json:"number"`
	PrevBlockHash string `json:"previous_hash"`
	TimeStamp     uint64 `json:"timestamp"`
	Nonce         uint64 `json:"nonce"`
	Hash          string `json:"hash"`
	Transactions  []tx   `json:"transactions"`
}

func toBlock(blockData database.BlockData) block {
	return block{
		Number:        blockData.Number,
		PrevBlockHash: blockData.Block.PrevBlockHash,
		TimeStamp:     blockData.Block.TimeStamp,
		Nonce:         blockData.Block.Nonce,
		Hash:          blockData.Block.Hash,
		Transactions:  toTxs(blockData.Block.Transactions),
	}
}

type balance struct {
	Address     string `json:"address"`
	Balance     int64  `json:"balance"`
	LatestBlock string `json:"latest_block"`
	Height      uint64 `json:"height"`
}

type pending struct {
	Count        int  `json:"count"`
	Transactions []tx `json:"transactions"`
}

type verify struct {
	Valid  bool   `json:"valid"`
	Height uint64 `json:"height"`
	Number uint64 `json:"number,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// =============================================================================

// NewTx is what a client submits to add a transaction to the pending pool.
type NewTx struct {
	From   string `json:"from" validate:"required,address"`
	To     string `json:"to" validate:"required,address"`
	Amount uint64 `json:"amount" validate:"lte=9223372036854775807"`
}

// NewMine is what a client submits to mine the pending transactions.
type NewMine struct {
	RewardAddress string `json:"reward_address" validate:"required,address"`
}
