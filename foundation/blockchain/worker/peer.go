package worker

import (
	"errors"
	"sync"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/jpillora/backoff"
)

// maxRegisterAttempts is the number of times a configured peer is tried
// before the worker gives up on it.
const maxRegisterAttempts = 8

// bootstrapOperations registers the peers the node was configured with and
// then resolves conflicts with them once.
func (w *Worker) bootstrapOperations() {
	w.evHandler("worker: bootstrapOperations: G started")
	defer w.evHandler("worker: bootstrapOperations: G completed")

	if len(w.knownPeers) == 0 {
		return
	}

	var wg sync.WaitGroup
	wg.Add(len(w.knownPeers))

	for _, address := range w.knownPeers {
		go func(address string) {
			defer wg.Done()
			w.runRegisterOperation(address)
		}(address)
	}

	wg.Wait()

	if !w.isShutdown() {
		w.runResolveOperation()
	}
}

// runRegisterOperation registers the peer at the address, retrying with an
// exponential backoff while the peer can't be reached.
func (w *Worker) runRegisterOperation(address string) {
	w.evHandler("worker: runRegisterOperation: started: %s", address)
	defer w.evHandler("worker: runRegisterOperation: completed: %s", address)

	b := backoff.Backoff{
		Min:    250 * time.Millisecond,
		Max:    30 * time.Second,
		Factor: 2,
		Jitter: true,
	}

	for attempt := 1; attempt <= maxRegisterAttempts; attempt++ {
		pr, err := w.state.RegisterPeer(w.ctx, address)
		if err == nil {
			w.evHandler("worker: runRegisterOperation: registered: %s: id[%s]", pr.Host, pr.ID)
			return
		}

		if errors.Is(err, state.ErrInvalidInput) || errors.Is(err, state.ErrSelfPeer) {
			w.evHandler("worker: runRegisterOperation: ERROR: %s", err)
			return
		}

		d := b.Duration()
		w.evHandler("worker: runRegisterOperation: attempt[%d]: retry in %v: WARNING: %s", attempt, d, err)

		select {
		case <-time.After(d):
		case <-w.shut:
			return
		}
	}

	w.evHandler("worker: runRegisterOperation: giving up: %s", address)
}
