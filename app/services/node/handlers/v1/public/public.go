// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ardanlabs/powledger/business/sys/metrics"
	"github.com/ardanlabs/powledger/business/sys/validate"
	"github.com/ardanlabs/powledger/business/web/errs"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/events"
	"github.com/ardanlabs/powledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log         *zap.SugaredLogger
	State       *state.State
	Evts        *events.Events
	Metrics     *metrics.Collector
	MineTimeout time.Duration
	WS          websocket.Upgrader
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	// The upgrade took over the connection.
	web.SetStatusCode(ctx, http.StatusSwitchingProtocols)

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	g, ctx := errgroup.WithContext(ctx)

	// Read pump: the client never sends data, reading is how a close
	// from the client is noticed.
	g.Go(func() error {
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return err
			}
		}
	})

	// Write pump: closing the connection on the way out stops the read pump.
	g.Go(func() error {
		defer c.Close()

		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		for {
			select {
			case msg, wd := <-ch:
				if !wd {
					c.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "shutdown"), time.Now().Add(time.Second))
					return nil
				}

				if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
					return err
				}

			case <-ticker.C:
				if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
					return err
				}

			case <-ctx.Done():
				return nil
			}
		}
	})

	if err := g.Wait(); err != nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		h.Log.Infow("events", "traceid", v.TraceID, "status", "websocket closed", "ERROR", err)
	}

	return nil
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()
	return web.Respond(ctx, w, gen, http.StatusOK)
}

// SubmitTransaction adds a new transaction to the pending pool.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var nt NewTx
	if err := web.Decode(r, &nt); err != nil {
		return errs.NewTrusted(fmt.Errorf("unable to decode payload: %w", err), http.StatusBadRequest)
	}

	if err := validate.Check(nt); err != nil {
		return fmt.Errorf("validating data: %w", err)
	}

	h.Log.Infow("submit tx", "traceid", web.GetTraceID(ctx), "from", nt.From, "to", nt.To, "amount", nt.Amount)
	n, err := h.State.SubmitTransaction(database.NewTx(nt.From, nt.To, nt.Amount))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	resp := struct {
		Status  string `json:"status"`
		Pending int    `json:"pending"`
	}{
		Status:  "transaction added to pending pool",
		Pending: n,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Pending returns the set of transactions waiting to be mined.
func (h Handlers) Pending(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	txs := h.State.RetrievePending()

	resp := pending{
		Count:        len(txs),
		Transactions: toTxs(txs),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Mine mines the pending transactions into a block and appends it to the
// chain before responding.
func (h Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var nm NewMine
	if err := web.Decode(r, &nm); err != nil {
		return errs.NewTrusted(fmt.Errorf("unable to decode payload: %w", err), http.StatusBadRequest)
	}

	if err := validate.Check(nm); err != nil {
		return fmt.Errorf("validating data: %w", err)
	}

	if h.MineTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.MineTimeout)
		defer cancel()
	}

	blk, err := h.State.MinePending(ctx, nm.RewardAddress)
	h.Metrics.ObserveRound(err)
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return errs.NewTrusted(fmt.Errorf("mining timed out: %w", err), http.StatusServiceUnavailable)
		case errors.Is(err, context.Canceled):
			return errs.NewTrusted(fmt.Errorf("mining cancelled: %w", err), http.StatusServiceUnavailable)
		case errors.Is(err, state.ErrChainChanged):
			return errs.NewTrusted(err, http.StatusConflict)
		}
		return err
	}

	return web.Respond(ctx, w, toBlock(database.NewBlockData(h.State.QueryHeight(), blk)), http.StatusOK)
}

// SignalMining signals the background worker to mine the pending transactions.
func (h Handlers) SignalMining(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if h.State.Worker == nil {
		return errs.NewTrusted(errors.New("background mining is not running"), http.StatusServiceUnavailable)
	}
	h.State.Worker.SignalStartMining()

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "mining signalled",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// CancelMining signals the background worker to stop the current round.
func (h Handlers) CancelMining(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if h.State.Worker == nil {
		return errs.NewTrusted(errors.New("background mining is not running"), http.StatusServiceUnavailable)
	}
	h.State.Worker.SignalCancelMining()

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "mining cancel signalled",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Balance returns the balance of the specified address.
func (h Handlers) Balance(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	address := web.Param(r, "address")

	latest, err := h.State.LatestBlock()
	if err != nil {
		return err
	}

	resp := balance{
		Address:     address,
		Balance:     h.State.QueryBalance(address),
		LatestBlock: latest.Hash,
		Height:      h.State.QueryHeight(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Blocks returns the blocks of the chain, optionally only the ones that
// involve the specified address.
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	dbBlocks := h.State.QueryBlocksByAddress(web.Param(r, "address"))
	if len(dbBlocks) == 0 {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	blocks := make([]block, len(dbBlocks))
	for i, blockData := range dbBlocks {
		blocks[i] = toBlock(blockData)
	}

	return web.Respond(ctx, w, blocks, http.StatusOK)
}

// Verify walks the chain and reports the first block that fails the
// integrity checks.
func (h Handlers) Verify(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := verify{
		Valid:  true,
		Height: h.State.QueryHeight(),
	}

	if err := h.State.Validate(); err != nil {
		var ve *state.ValidationError
		if !errors.As(err, &ve) {
			return err
		}

		resp.Valid = false
		resp.Number = ve.Number
		resp.Reason = ve.Reason
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
