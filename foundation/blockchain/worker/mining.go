package worker

import (
	"context"
	"time"
)

// miningOperations waits for start signals and runs one round per signal
// until shutdown.
func (w *Worker) miningOperations() {
	w.evHandler("worker: miningOperations: G started")
	defer w.evHandler("worker: miningOperations: G completed")

	for {
		select {
		case <-w.start:
			if !w.runMiningOperation() {
				return
			}

		case <-w.shut:
			w.evHandler("worker: miningOperations: received shut signal")
			return
		}
	}
}

// runMiningOperation mines the pending transactions into a new block. It
// returns false when the round was ended by a shutdown.
func (w *Worker) runMiningOperation() bool {
	w.evHandler("worker: runMiningOperation: MINING: started")
	defer w.evHandler("worker: runMiningOperation: MINING: completed")

	// A cancel sent while no round was running must not end this one.
	select {
	case <-w.cancel:
		w.evHandler("worker: runMiningOperation: MINING: stale cancel dropped")
	default:
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan Result, 1)
	go func() {
		t := time.Now()
		block, err := w.state.MinePending(ctx, w.beneficiary)
		w.evHandler("worker: runMiningOperation: MINING: duration[%v]", time.Since(t))

		done <- Result{Block: block, Err: err}
	}()

	// Each signal is handled once. A nil channel blocks its case, so after
	// that only the round ending is waited on.
	shut, cancelReq := w.shut, w.cancel
	running := true
	for {
		select {
		case result := <-done:
			switch {
			case result.Err == nil:
				w.evHandler("worker: runMiningOperation: MINING: mined blk[%s]", result.Block.Hash)
			case ctx.Err() != nil:
				w.evHandler("worker: runMiningOperation: MINING: CANCEL: complete")
			default:
				w.evHandler("worker: runMiningOperation: MINING: ERROR: %s", result.Err)
			}

			w.report(result)
			return running

		case <-cancelReq:
			w.evHandler("worker: runMiningOperation: MINING: CANCEL: requested")
			cancel()
			cancelReq = nil

		case <-shut:
			w.evHandler("worker: runMiningOperation: MINING: CANCEL: shutdown")
			cancel()
			running = false
			shut, cancelReq = nil, nil
		}
	}
}
