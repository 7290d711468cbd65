package metrics_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ardanlabs/powledger/business/sys/metrics"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	gen := genesis.Default()
	gen.Difficulty = 1

	st, err := state.New(state.Config{Genesis: gen})
	require.NoError(t, err)

	st.SubmitTransaction(database.NewTx("address1", "address2", 10))
	_, err = st.MinePending(context.Background(), "address3")
	require.NoError(t, err)

	col := metrics.New(st)
	col.MinedBlock()

	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(col))

	expected := `
# HELP powledger_chain_difficulty Number of leading zeros a block hash requires.
# TYPE powledger_chain_difficulty gauge
powledger_chain_difficulty 1
# HELP powledger_chain_height Number of blocks after the genesis block.
# TYPE powledger_chain_height gauge
powledger_chain_height 1
# HELP powledger_mempool_pending Number of transactions waiting to be mined.
# TYPE powledger_mempool_pending gauge
powledger_mempool_pending 1
# HELP powledger_mining_blocks_total Number of blocks mined by this node.
# TYPE powledger_mining_blocks_total counter
powledger_mining_blocks_total 1
`
	err = testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"powledger_chain_difficulty",
		"powledger_chain_height",
		"powledger_mempool_pending",
		"powledger_mining_blocks_total",
	)
	require.NoError(t, err)
}

func TestObserveRound(t *testing.T) {
	st, err := state.New(state.Config{Genesis: genesis.Default()})
	require.NoError(t, err)

	col := metrics.New(st)
	col.ObserveRound(nil)
	col.ObserveRound(context.Canceled)
	col.ObserveRound(fmt.Errorf("mining: %w", context.DeadlineExceeded))
	col.ObserveRound(fmt.Errorf("got parent x, exp y: %w", state.ErrChainChanged))
	col.ObserveRound(errors.New("writing block: disk full"))

	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(col))

	expected := `
# HELP powledger_mining_blocks_total Number of blocks mined by this node.
# TYPE powledger_mining_blocks_total counter
powledger_mining_blocks_total 1
# HELP powledger_mining_cancelled_total Number of mining rounds cancelled or timed out.
# TYPE powledger_mining_cancelled_total counter
powledger_mining_cancelled_total 2
`
	err = testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"powledger_mining_blocks_total",
		"powledger_mining_cancelled_total",
	)
	require.NoError(t, err)
}
