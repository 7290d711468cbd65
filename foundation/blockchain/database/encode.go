package database

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// separator splits the encoded fields. It can't appear in a hex hash or
// a decimal number, and the transaction JSON is always bracketed.
const separator = '|'

// encodedTx is the hashing form of a transaction. The field order is fixed
// by the struct and a reward transaction has a null from address.
type encodedTx struct {
	From   *string `json:"from_address"`
	To     string  `json:"to_address"`
	Amount uint64  `json:"amount"`
}

// Encode produces the canonical byte form of the block fields that feed the
// block hash: previous hash, timestamp, transactions and nonce.
func Encode(b Block) []byte {
	prefix := encodePrefix(b)

	return strconv.AppendUint(prefix, b.Nonce, 10)
}

// encodePrefix encodes every hashed field except the nonce. Mining reuses
// the prefix since only the nonce changes between attempts.
func encodePrefix(b Block) []byte {
	var buf bytes.Buffer

	buf.WriteString(b.PrevBlockHash)
	buf.WriteByte(separator)
	buf.WriteString(strconv.FormatUint(b.TimeStamp, 10))
	buf.WriteByte(separator)
	buf.Write(encodeTransactions(b.Transactions))
	buf.WriteByte(separator)

	return buf.Bytes()
}

// encodeTransactions writes the transactions as a compact JSON array in
// insertion order. A nil set and an empty set encode the same way.
func encodeTransactions(txs []Tx) []byte {
	etxs := make([]encodedTx, len(txs))
	for i, tx := range txs {
		etx := encodedTx{
			To:     tx.ToAddress,
			Amount: tx.Amount,
		}
		if !tx.IsReward() {
			from := tx.FromAddress
			etx.From = &from
		}
		etxs[i] = etx
	}

	// Marshal can't fail for a slice of plain strings and integers.
	data, _ := json.Marshal(etxs)
	return data
}
