package database_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// =============================================================================

func Test_ComputeHash(t *testing.T) {
	txs := []database.Tx{
		database.NewTx("address1", "address2", 100),
		database.NewTx("address2", "address1", 50),
	}

	t.Log("Given the need to compute a block hash from its fields.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen handling an unmined block.", testID)
		{
			b := database.NewBlock(1528675200000, txs, "")

			if b.Nonce != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould start with a zero nonce: got %d", failed, testID, b.Nonce)
			}
			t.Logf("\t%s\tTest %d:\tShould start with a zero nonce.", success, testID)

			if b.Hash != b.ComputeHash() {
				t.Fatalf("\t%s\tTest %d:\tShould store the hash of the fields at construction.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould store the hash of the fields at construction.", success, testID)

			if b.ComputeHash() != b.ComputeHash() {
				t.Fatalf("\t%s\tTest %d:\tShould compute the same hash twice.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould compute the same hash twice.", success, testID)

			if len(b.Hash) != database.HashLength {
				t.Fatalf("\t%s\tTest %d:\tShould produce a %d character hash: got %d", failed, testID, database.HashLength, len(b.Hash))
			}
			t.Logf("\t%s\tTest %d:\tShould produce a %d character hash.", success, testID, database.HashLength)

			if strings.ToLower(b.Hash) != b.Hash || strings.HasPrefix(b.Hash, "0x") {
				t.Fatalf("\t%s\tTest %d:\tShould produce a plain lower case hex hash: %s", failed, testID, b.Hash)
			}
			t.Logf("\t%s\tTest %d:\tShould produce a plain lower case hex hash.", success, testID)

			txs[0].Amount = 1_000_000
			if b.Transactions[0].Amount != 100 {
				t.Fatalf("\t%s\tTest %d:\tShould not alias the caller's transactions.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould not alias the caller's transactions.", success, testID)
		}
	}
}

func Test_HashChangesWithFields(t *testing.T) {
	base := func() database.Block {
		return database.NewBlock(1528675200000, []database.Tx{database.NewTx("a", "b", 10)}, "abc")
	}

	type table struct {
		name   string
		mutate func(b *database.Block)
	}

	tt := []table{
		{name: "prevhash", mutate: func(b *database.Block) { b.PrevBlockHash = "abd" }},
		{name: "timestamp", mutate: func(b *database.Block) { b.TimeStamp++ }},
		{name: "nonce", mutate: func(b *database.Block) { b.Nonce++ }},
		{name: "amount", mutate: func(b *database.Block) { b.Transactions[0].Amount = 11 }},
		{name: "from", mutate: func(b *database.Block) { b.Transactions[0].FromAddress = "c" }},
		{name: "to", mutate: func(b *database.Block) { b.Transactions[0].ToAddress = "c" }},
		{name: "reward", mutate: func(b *database.Block) { b.Transactions[0].FromAddress = "" }},
		{name: "addtx", mutate: func(b *database.Block) { b.Transactions = append(b.Transactions, database.NewTx("a", "b", 10)) }},
		{name: "droptx", mutate: func(b *database.Block) { b.Transactions = nil }},
	}

	t.Log("Given the need to have every hashed field change the hash.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen changing field %s.", testID, tst.name)
			{
				f := func(t *testing.T) {
					b := base()
					org := b.ComputeHash()

					tst.mutate(&b)
					if b.ComputeHash() == org {
						t.Fatalf("\t%s\tTest %d:\tShould get a different hash.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould get a different hash.", success, testID)

					if b.Hash != org {
						t.Fatalf("\t%s\tTest %d:\tShould not change the stored hash when computing.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould not change the stored hash when computing.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func Test_EmptyTransactionsEncodeTheSame(t *testing.T) {
	t.Log("Given the need to have a nil and empty transaction set hash the same.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen handling a genesis style block.", testID)
		{
			nilTxs := database.NewBlock(1528675200000, nil, "")
			emptyTxs := database.NewBlock(1528675200000, []database.Tx{}, "")

			if nilTxs.Hash != emptyTxs.Hash {
				t.Fatalf("\t%s\tTest %d:\tShould get the same hash.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould get the same hash.", success, testID)

			exp := "|1528675200000|[]|0"
			if got := string(database.Encode(nilTxs)); got != exp {
				t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, got)
				t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, exp)
				t.Fatalf("\t%s\tTest %d:\tShould get the expected encoding.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould get the expected encoding.", success, testID)
		}
	}
}

func Test_Encode(t *testing.T) {
	b := database.Block{
		PrevBlockHash: "00ff",
		TimeStamp:     42,
		Transactions: []database.Tx{
			database.NewRewardTx("miner", 100),
			database.NewTx("a", "b", 7),
		},
		Nonce: 9,
	}

	exp := `00ff|42|[{"from_address":null,"to_address":"miner","amount":100},{"from_address":"a","to_address":"b","amount":7}]|9`

	t.Log("Given the need to encode a block canonically.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen handling a block with a reward transaction.", testID)
		{
			got := string(database.Encode(b))
			if got != exp {
				t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, got)
				t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, exp)
				t.Fatalf("\t%s\tTest %d:\tShould get the expected encoding.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould get the expected encoding.", success, testID)
		}
	}
}

func Test_Mine(t *testing.T) {
	t.Log("Given the need to mine a block to a difficulty.")
	{
		for testID, difficulty := range []uint{0, 1, 2, 3} {
			t.Logf("\tTest %d:\tWhen mining with difficulty %d.", testID, difficulty)
			{
				b := database.NewBlock(uint64(time.Now().UnixMilli()), []database.Tx{database.NewTx("a", "b", 1)}, "")

				if err := b.Mine(context.Background(), difficulty, nil); err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to mine the block: %v", failed, testID, err)
				}
				t.Logf("\t%s\tTest %d:\tShould be able to mine the block.", success, testID)

				if b.Hash[:difficulty] != strings.Repeat("0", int(difficulty)) {
					t.Fatalf("\t%s\tTest %d:\tShould have %d leading zeros: %s", failed, testID, difficulty, b.Hash)
				}
				t.Logf("\t%s\tTest %d:\tShould have %d leading zeros.", success, testID, difficulty)

				if b.Hash != b.ComputeHash() {
					t.Fatalf("\t%s\tTest %d:\tShould store the hash of the mined fields.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould store the hash of the mined fields.", success, testID)

				if difficulty == 0 && b.Nonce != 0 {
					t.Fatalf("\t%s\tTest %d:\tShould not search with no difficulty: nonce %d", failed, testID, b.Nonce)
				}
			}
		}
	}
}

func Test_MineCancel(t *testing.T) {
	t.Log("Given the need to cancel a mining operation.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen mining an unreachable difficulty.", testID)
		{
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			b := database.NewBlock(1, nil, "")
			err := b.Mine(ctx, database.HashLength, nil)
			if !errors.Is(err, context.DeadlineExceeded) {
				t.Fatalf("\t%s\tTest %d:\tShould get a deadline error: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get a deadline error.", success, testID)

			if b.Hash != b.ComputeHash() {
				t.Fatalf("\t%s\tTest %d:\tShould keep the nonce and hash in lockstep.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould keep the nonce and hash in lockstep.", success, testID)
		}

		testID = 1
		t.Logf("\tTest %d:\tWhen mining an impossible difficulty.", testID)
		{
			b := database.NewBlock(1, nil, "")
			err := b.Mine(context.Background(), database.HashLength+1, nil)
			if !errors.Is(err, database.ErrInvalidDifficulty) {
				t.Fatalf("\t%s\tTest %d:\tShould get an invalid difficulty error: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get an invalid difficulty error.", success, testID)
		}
	}
}

func Test_IsHashSolved(t *testing.T) {
	type table struct {
		difficulty uint
		hash       string
		exp        bool
	}

	tt := []table{
		{0, "abc", true},
		{1, "0bc", true},
		{2, "0bc", false},
		{3, "000", true},
		{4, "000", false},
		{database.HashLength + 1, strings.Repeat("0", database.HashLength+1), false},
	}

	t.Log("Given the need to check a hash against a difficulty.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen checking %q at difficulty %d.", testID, tst.hash, tst.difficulty)
			{
				if got := database.IsHashSolved(tst.difficulty, tst.hash); got != tst.exp {
					t.Fatalf("\t%s\tTest %d:\tShould get %v: got %v", failed, testID, tst.exp, got)
				}
				t.Logf("\t%s\tTest %d:\tShould get %v.", success, testID, tst.exp)
			}
		}
	}
}
