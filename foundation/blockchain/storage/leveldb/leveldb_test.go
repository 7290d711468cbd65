package leveldb_test

import (
	"context"
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/storage/leveldb"
	"github.com/stretchr/testify/require"
)

func mineChain(t *testing.T, n int) []database.Block {
	t.Helper()

	prev := database.NewBlock(1528675200000, nil, "")
	blocks := make([]database.Block, 0, n)
	for i := 0; i < n; i++ {
		txs := []database.Tx{
			database.NewTx("address1", "address2", uint64(i+1)),
			database.NewRewardTx("miner", 100),
		}
		blk := database.NewBlock(prev.TimeStamp+uint64(i+1), txs, prev.Hash)
		require.NoError(t, blk.Mine(context.Background(), 1, nil))

		blocks = append(blocks, blk)
		prev = blk
	}

	return blocks
}

func TestStorage(t *testing.T) {
	strg, err := leveldb.New(t.TempDir(), nil)
	require.NoError(t, err)
	defer strg.Close()

	blocks := mineChain(t, 3)
	for i, blk := range blocks {
		require.NoError(t, strg.Write(database.NewBlockData(uint64(i+1), blk)))
	}

	t.Run("GetBlock", func(t *testing.T) {
		got, err := strg.GetBlock(2)
		require.NoError(t, err)
		require.Equal(t, uint64(2), got.Number)
		require.Equal(t, blocks[1].Hash, got.Block.Hash)
		require.Equal(t, got.Block.Hash, got.Block.ComputeHash(), "reloaded block must hash the same")
	})

	t.Run("MissingBlock", func(t *testing.T) {
		_, err := strg.GetBlock(99)
		require.Error(t, err)
	})

	t.Run("ForEach", func(t *testing.T) {
		var got []database.BlockData
		iter := strg.ForEach()
		for blockData, err := iter.Next(); !iter.Done(); blockData, err = iter.Next() {
			require.NoError(t, err)
			got = append(got, blockData)
		}

		require.Len(t, got, len(blocks))
		for i, blockData := range got {
			require.Equal(t, uint64(i+1), blockData.Number)
			require.Equal(t, blocks[i].Hash, blockData.Block.ComputeHash())
			require.Equal(t, blocks[i].Transactions, blockData.Block.Transactions)
		}
	})

	t.Run("Reset", func(t *testing.T) {
		require.NoError(t, strg.Reset())

		iter := strg.ForEach()
		_, _ = iter.Next()
		require.True(t, iter.Done())
	})
}

func TestReopen(t *testing.T) {
	path := t.TempDir()

	strg, err := leveldb.New(path, nil)
	require.NoError(t, err)

	blocks := mineChain(t, 2)
	for i, blk := range blocks {
		require.NoError(t, strg.Write(database.NewBlockData(uint64(i+1), blk)))
	}
	require.NoError(t, strg.Close())

	strg, err = leveldb.New(path, nil)
	require.NoError(t, err)
	defer strg.Close()

	got, err := strg.GetBlock(2)
	require.NoError(t, err)
	require.Equal(t, blocks[1].Hash, got.Block.ComputeHash())

	_, err = strg.GetBlock(3)
	require.ErrorIs(t, err, leveldb.ErrNotFound)
}
