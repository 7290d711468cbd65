package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/viper"
)

// errorResponse is the body the node returns for a failed request.
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type tx struct {
	FromAddress string `json:"from_address"`
	ToAddress   string `json:"to_address"`
	Amount      uint64 `json:"amount"`
	Reward      bool   `json:"reward"`
}

type block struct {
	Number        uint64 `json:"number"`
	PrevBlockHash string `json:"previous_hash"`
	TimeStamp     uint64 `json:"timestamp"`
	Nonce         uint64 `json:"nonce"`
	Hash          string `json:"hash"`
	Transactions  []tx   `json:"transactions"`
}

type balance struct {
	Address     string `json:"address"`
	Balance     int64  `json:"balance"`
	LatestBlock string `json:"latest_block"`
	Height      uint64 `json:"height"`
}

// newClient constructs the http client for the configured node.
func newClient() *resty.Client {
	return resty.New().
		SetBaseURL(viper.GetString("url")).
		SetTimeout(5 * time.Minute).
		SetHeader("Content-Type", "application/json").
		SetError(&errorResponse{})
}

// checkResponse converts a failed response into an error.
func checkResponse(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}

	if resp.IsError() {
		if er, ok := resp.Error().(*errorResponse); ok && er.Error != "" {
			if len(er.Fields) > 0 {
				return fmt.Errorf("%s: %s %v", resp.Status(), er.Error, er.Fields)
			}
			return fmt.Errorf("%s: %s", resp.Status(), er.Error)
		}
		return fmt.Errorf("%s", resp.Status())
	}

	return nil
}

func printBlock(out io.Writer, blk block) {
	fmt.Fprintf(out, "block %d: hash %s nonce %d prev %s\n", blk.Number, blk.Hash, blk.Nonce, blk.PrevBlockHash)
	for _, tx := range blk.Transactions {
		from := tx.FromAddress
		if tx.Reward {
			from = "<reward>"
		}
		fmt.Fprintf(out, "  %s -> %s: %d\n", from, tx.ToAddress, tx.Amount)
	}
}
