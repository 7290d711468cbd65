// Package worker runs mining rounds in the background so a round can be
// started and cancelled without blocking the caller.
package worker

import (
	"sync"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
)

// maxResults is how many results are held for a slow reader. Results past
// that are dropped.
const maxResults = 10

// Result is the outcome of one mining round: the mined block, or the error
// that ended the round. A cancelled round carries context.Canceled.
type Result struct {
	Block database.Block
	Err   error
}

// =============================================================================

// Worker owns the mining goroutine of a node.
type Worker struct {
	state       *state.State
	beneficiary string
	evHandler   state.EventHandler

	wg      sync.WaitGroup
	shut    chan struct{}
	start   chan struct{}
	cancel  chan struct{}
	results chan Result
	once    sync.Once
}

// Run registers a new worker with the state and starts the mining
// goroutine. Rewards of background rounds are paid to the beneficiary.
func Run(st *state.State, beneficiary string, evHandler state.EventHandler) *Worker {
	if evHandler == nil {
		evHandler = func(v string, args ...any) {}
	}

	w := Worker{
		state:       st,
		beneficiary: beneficiary,
		evHandler:   evHandler,
		shut:        make(chan struct{}),
		start:       make(chan struct{}, 1),
		cancel:      make(chan struct{}, 1),
		results:     make(chan Result, maxResults),
	}

	st.Worker = &w

	started := make(chan struct{})

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		close(started)
		w.miningOperations()
	}()

	<-started

	return &w
}

// Results returns the channel results are reported on. It's only closed by
// Shutdown, so a reader ranging over it blocks until the worker is shut
// down, either directly or through the state's Shutdown.
func (w *Worker) Results() <-chan Result {
	return w.results
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown cancels any round in progress and waits for the mining goroutine
// to return. Calling it more than once is safe.
func (w *Worker) Shutdown() {
	w.once.Do(func() {
		w.evHandler("worker: shutdown: started")
		defer w.evHandler("worker: shutdown: completed")

		close(w.shut)
		w.wg.Wait()

		close(w.results)
	})
}

// SignalStartMining asks for a mining round. Signals sent while one is
// already queued are merged into it.
func (w *Worker) SignalStartMining() {
	select {
	case w.start <- struct{}{}:
		w.evHandler("worker: SignalStartMining: mining signaled")
	default:
		w.evHandler("worker: SignalStartMining: mining already signaled")
	}
}

// SignalCancelMining stops the round in progress, if any.
func (w *Worker) SignalCancelMining() {
	select {
	case w.cancel <- struct{}{}:
	default:
	}
	w.evHandler("worker: SignalCancelMining: MINING: CANCEL: signaled")
}

// =============================================================================

// report hands the result to the reader without ever blocking the worker.
func (w *Worker) report(result Result) {
	select {
	case w.results <- result:
	default:
		w.evHandler("worker: report: results full, result dropped")
	}
}
