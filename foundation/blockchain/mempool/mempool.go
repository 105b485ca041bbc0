// Package mempool maintains the pool of pending transactions for the
// blockchain.
package mempool

import (
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// Mempool represents the ordered set of transactions that have been accepted
// but not yet committed to a block. Transactions keep the order they were
// added in.
type Mempool struct {
	mu   sync.RWMutex
	pool []database.Transaction
}

// New constructs a new empty mempool.
func New() *Mempool {
	return &Mempool{
		pool: []database.Transaction{},
	}
}

// Count returns the current number of transaction in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Add appends a transaction to the end of the pool and returns the new count.
func (mp *Mempool) Add(tx database.Transaction) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = append(mp.pool, tx)

	return len(mp.pool)
}

// Copy returns the transactions in pool order.
func (mp *Mempool) Copy() []database.Transaction {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	cpy := make([]database.Transaction, len(mp.pool))
	copy(cpy, mp.pool)

	return cpy
}

// Replace swaps the content of the pool for the specified transactions.
func (mp *Mempool) Replace(trans []database.Transaction) {
	cpy := make([]database.Transaction, len(trans))
	copy(cpy, trans)

	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = cpy
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = []database.Transaction{}
}
