// Package worker implements mining, conflict resolution, peer bootstrap, and
// transaction sharing for the blockchain.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
)

// Config represents the configuration of the background operations.
type Config struct {
	ResolveInterval time.Duration // Zero turns periodic resolution off.
	KnownPeers      []string      // Addresses registered when the worker starts.
	EvHandler       state.EventHandler
}

// Worker manages the POW workflows for the blockchain.
type Worker struct {
	state      *state.State
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	shut       chan struct{}
	miningMu   sync.Mutex
	txSharing  chan database.Transaction
	ticker     *time.Ticker
	knownPeers []string
	evHandler  state.EventHandler
}

// Run creates a worker, registers the worker with the state package, and
// starts up all the background processes.
func Run(st *state.State, cfg Config) *Worker {
	ev := cfg.EvHandler
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	ctx, cancel := context.WithCancel(context.Background())

	w := Worker{
		state:      st,
		ctx:        ctx,
		cancel:     cancel,
		shut:       make(chan struct{}),
		txSharing:  make(chan database.Transaction, maxTxShareRequests),
		knownPeers: cfg.KnownPeers,
		evHandler:  ev,
	}

	// Register this worker with the state package.
	st.Worker = &w

	// Load the set of operations we need to run.
	operations := []func(){
		w.shareTxOperations,
		w.bootstrapOperations,
	}

	if cfg.ResolveInterval > 0 {
		w.ticker = time.NewTicker(cfg.ResolveInterval)
		operations = append(operations, w.resolveOperations)
	}

	// Set waitgroup to match the number of G's we need for the set
	// of operations we have.
	g := len(operations)
	w.wg.Add(g)

	// We don't want to return until we know all the G's are up and running.
	hasStarted := make(chan bool)

	// Start all the operational G's.
	for _, op := range operations {
		go func(op func()) {
			defer w.wg.Done()
			hasStarted <- true
			op()
		}(op)
	}

	// Wait for the G's to report they are running.
	for i := 0; i < g; i++ {
		<-hasStarted
	}

	return &w
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown terminates the goroutine performing work.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	if w.ticker != nil {
		w.evHandler("worker: shutdown: stop ticker")
		w.ticker.Stop()
	}

	w.evHandler("worker: shutdown: terminate goroutines")
	close(w.shut)
	w.cancel()
	w.wg.Wait()
}

// SignalShareTx signals a share transaction operation. If
// maxTxShareRequests signals exist in the channel, we won't send these.
func (w *Worker) SignalShareTx(tx database.Transaction) {
	select {
	case w.txSharing <- tx:
		w.evHandler("worker: SignalShareTx: share Tx signaled")
	default:
		w.evHandler("worker: SignalShareTx: queue full, transactions won't be shared.")
	}
}

// =============================================================================

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
