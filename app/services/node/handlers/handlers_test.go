package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ardanlabs/powledger/app/services/node/handlers"
	"github.com/ardanlabs/powledger/business/sys/metrics"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/events"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func newConfig(t *testing.T) handlers.MuxConfig {
	gen := genesis.Default()
	gen.Difficulty = 1

	st, err := state.New(state.Config{Genesis: gen})
	if err != nil {
		t.Fatalf("Should be able to construct the state: %v", err)
	}

	return handlers.MuxConfig{
		Shutdown:    make(chan os.Signal, 1),
		Log:         zap.NewNop().Sugar(),
		State:       st,
		Evts:        events.New(events.DefaultBuffer),
		Metrics:     metrics.New(st),
		MineTimeout: time.Minute,
	}
}

func call(mux http.Handler, method string, path string, body string) *httptest.ResponseRecorder {
	var r *http.Request
	switch body {
	case "":
		r = httptest.NewRequest(method, path, nil)
	default:
		r = httptest.NewRequest(method, path, strings.NewReader(body))
	}

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)

	return w
}

func Test_PublicRoutes(t *testing.T) {
	t.Log("Given the need to drive the ledger over the public API.")
	{
		cfg := newConfig(t)
		mux := handlers.PublicMux(cfg)

		testID := 0
		t.Logf("\tTest %d:\tWhen submitting and mining transactions.", testID)
		{
			w := call(mux, http.MethodPost, "/v1/tx/submit", `{"from":"address1","to":"address2","amount":100}`)
			if w.Code != http.StatusOK {
				t.Fatalf("\t%s\tTest %d:\tShould be able to submit: %d %s", failed, testID, w.Code, w.Body)
			}
			call(mux, http.MethodPost, "/v1/tx/submit", `{"from":"address2","to":"address1","amount":50}`)
			t.Logf("\t%s\tTest %d:\tShould be able to submit.", success, testID)

			w = call(mux, http.MethodPost, "/v1/mining/mine", `{"reward_address":"address3"}`)
			if w.Code != http.StatusOK {
				t.Fatalf("\t%s\tTest %d:\tShould be able to mine: %d %s", failed, testID, w.Code, w.Body)
			}

			var blk struct {
				Number       uint64 `json:"number"`
				Hash         string `json:"hash"`
				Transactions []any  `json:"transactions"`
			}
			if err := json.NewDecoder(w.Body).Decode(&blk); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to decode the block: %v", failed, testID, err)
			}
			if blk.Number != 1 || len(blk.Transactions) != 2 || !strings.HasPrefix(blk.Hash, "0") {
				t.Fatalf("\t%s\tTest %d:\tShould get the mined block: %+v", failed, testID, blk)
			}
			t.Logf("\t%s\tTest %d:\tShould get the mined block.", success, testID)

			exp := map[string]int64{"address1": -50, "address2": 50, "address3": 0}
			for address, amount := range exp {
				w = call(mux, http.MethodGet, "/v1/balances/"+address, "")

				var bal struct {
					Balance int64 `json:"balance"`
				}
				json.NewDecoder(w.Body).Decode(&bal)
				if bal.Balance != amount {
					t.Fatalf("\t%s\tTest %d:\tShould have balance %d for %s: got %d", failed, testID, amount, address, bal.Balance)
				}
				t.Logf("\t%s\tTest %d:\tShould have balance %d for %s.", success, testID, amount, address)
			}

			w = call(mux, http.MethodGet, "/v1/tx/pending", "")
			if !bytes.Contains(w.Body.Bytes(), []byte(`"to_address":"address3","amount":100,"reward":true`)) {
				t.Fatalf("\t%s\tTest %d:\tShould have the reward pending: %s", failed, testID, w.Body)
			}
			t.Logf("\t%s\tTest %d:\tShould have the reward pending.", success, testID)

			w = call(mux, http.MethodGet, "/v1/chain/verify", "")
			if !bytes.Contains(w.Body.Bytes(), []byte(`"valid":true`)) {
				t.Fatalf("\t%s\tTest %d:\tShould verify the chain: %s", failed, testID, w.Body)
			}
			t.Logf("\t%s\tTest %d:\tShould verify the chain.", success, testID)

			w = call(mux, http.MethodGet, "/v1/blocks/list/address3", "")
			if w.Code != http.StatusNoContent {
				t.Fatalf("\t%s\tTest %d:\tShould find no blocks for address3 yet: %d", failed, testID, w.Code)
			}
			t.Logf("\t%s\tTest %d:\tShould find no blocks for address3 yet.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen sending bad requests.", testID)
		{
			w := call(mux, http.MethodPost, "/v1/tx/submit", `{"from":"","to":"address2","amount":1}`)
			if w.Code != http.StatusBadRequest || !bytes.Contains(w.Body.Bytes(), []byte(`"from"`)) {
				t.Fatalf("\t%s\tTest %d:\tShould reject a missing from: %d %s", failed, testID, w.Code, w.Body)
			}
			t.Logf("\t%s\tTest %d:\tShould reject a missing from.", success, testID)

			w = call(mux, http.MethodPost, "/v1/tx/submit", `{"from":"a","to":"b","amount":1,"tip":5}`)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("\t%s\tTest %d:\tShould reject unknown fields: %d", failed, testID, w.Code)
			}
			t.Logf("\t%s\tTest %d:\tShould reject unknown fields.", success, testID)

			w = call(mux, http.MethodPost, "/v1/tx/submit", `{"from":"a","to":"b","amount":9223372036854775808}`)
			if w.Code != http.StatusBadRequest || !bytes.Contains(w.Body.Bytes(), []byte(`"amount"`)) {
				t.Fatalf("\t%s\tTest %d:\tShould reject an amount above the maximum: %d %s", failed, testID, w.Code, w.Body)
			}
			t.Logf("\t%s\tTest %d:\tShould reject an amount above the maximum.", success, testID)

			w = call(mux, http.MethodGet, "/v1/mining/signal", "")
			if w.Code != http.StatusServiceUnavailable {
				t.Fatalf("\t%s\tTest %d:\tShould report no background worker: %d", failed, testID, w.Code)
			}
			t.Logf("\t%s\tTest %d:\tShould report no background worker.", success, testID)
		}
	}
}

func Test_DebugRoutes(t *testing.T) {
	t.Log("Given the need to check the health of the node.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen calling the debug endpoints.", testID)
		{
			cfg := newConfig(t)
			mux := handlers.DebugMux("test", cfg)

			w := call(mux, http.MethodGet, "/debug/readiness", "")
			if w.Code != http.StatusOK {
				t.Fatalf("\t%s\tTest %d:\tShould be ready: %d", failed, testID, w.Code)
			}
			t.Logf("\t%s\tTest %d:\tShould be ready.", success, testID)

			w = call(mux, http.MethodGet, "/metrics", "")
			if !strings.Contains(w.Body.String(), "powledger_chain_height 0") {
				t.Fatalf("\t%s\tTest %d:\tShould expose the chain height: %s", failed, testID, w.Body)
			}
			t.Logf("\t%s\tTest %d:\tShould expose the chain height.", success, testID)
		}
	}
}
