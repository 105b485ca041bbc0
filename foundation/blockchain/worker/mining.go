package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
)

// ErrShutdown is returned when mining is requested after the worker was told
// to shut down.
var ErrShutdown = errors.New("worker is shutting down")

// Mine searches for the next proof and commits a new block. Only one search
// runs at a time, a second call waits for the first to finish. The search is
// cancelled when the context is done, when the chain is replaced by conflict
// resolution, or when the worker shuts down.
func (w *Worker) Mine(ctx context.Context) (database.Block, error) {
	w.evHandler("worker: Mine: MINING: started")
	defer w.evHandler("worker: Mine: MINING: completed")

	w.miningMu.Lock()
	defer w.miningMu.Unlock()

	if w.isShutdown() {
		return database.Block{}, ErrShutdown
	}

	// Create a context so mining can be cancelled.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Can't return from this function until this G is complete.
	var wg sync.WaitGroup
	wg.Add(1)

	// This G exists to cancel the mining operation on shutdown.
	go func() {
		defer wg.Done()

		select {
		case <-w.shut:
			w.evHandler("worker: Mine: MINING: CANCEL: shutdown")
			cancel()
		case <-ctx.Done():
		}
	}()

	t := time.Now()
	block, err := w.state.MineNewBlock(ctx)
	duration := time.Since(t)

	cancel()
	wg.Wait()

	w.evHandler("worker: Mine: MINING: mining duration[%v]", duration)

	if err != nil {
		switch {
		case errors.Is(err, state.ErrChainChanged):
			w.evHandler("worker: Mine: MINING: CANCEL: chain replaced")
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			w.evHandler("worker: Mine: MINING: CANCEL: complete")
		default:
			w.evHandler("worker: Mine: MINING: ERROR: %s", err)
		}
		return database.Block{}, err
	}

	return block, nil
}
