package state

import (
	"context"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/pow"
)

// MineNewBlock searches for the proof that follows the latest block, rewards
// this node, and commits a new block holding the pending pool. The search runs
// without holding the ledger lock and can be cancelled with the context. If
// the chain is replaced while the search runs, the search is stopped or the
// proof is thrown away and ErrChainChanged is returned.
func (s *State) MineNewBlock(ctx context.Context) (database.Block, error) {
	s.evHandler("state: MineNewBlock: MINING: started")
	defer s.evHandler("state: MineNewBlock: MINING: completed")

	ctx, last, done := s.startSearch(ctx)
	defer done()

	s.evHandler("state: MineNewBlock: MINING: perform POW: block[%d]", last.Index+1)

	proof, err := pow.Search(ctx, pow.SearchArgs{
		LastProof:  last.Proof,
		Difficulty: s.genesis.Difficulty,
		Workers:    s.miningWorkers,
		EvHandler:  s.evHandler,
	})
	if err != nil {
		if s.RetrieveLatestBlock().Hash() != last.Hash() {
			return database.Block{}, fmt.Errorf("%w: block[%d] replaced: %w", ErrChainChanged, last.Index, err)
		}
		return database.Block{}, err
	}

	reward, err := s.signTransaction(MiningSender, s.nodeID, s.genesis.MiningReward)
	if err != nil {
		return database.Block{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.latestBlock().Hash() != last.Hash() {
		return database.Block{}, fmt.Errorf("%w: block[%d] replaced", ErrChainChanged, last.Index)
	}

	s.mempool.Add(reward)

	return s.mine(proof)
}

// Mine commits a new block holding the entire pending pool using the
// specified proof. The proof must solve the puzzle against the latest block.
func (s *State) Mine(proof uint64) (database.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mine(proof)
}

// =============================================================================

// startSearch reads the latest block and records the cancel function of the
// search against it. The returned function must be called once the search is
// over. It must not be called while holding the ledger lock.
func (s *State) startSearch(ctx context.Context) (context.Context, database.Block, func()) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.searchID++
	id := s.searchID
	s.searches[id] = cancel

	done := func() {
		s.mu.Lock()
		delete(s.searches, id)
		s.mu.Unlock()

		cancel()
	}

	return ctx, s.latestBlock(), done
}

// cancelSearches stops every search running against the current chain. It
// must be called while holding the ledger lock.
func (s *State) cancelSearches() {
	for id, cancel := range s.searches {
		cancel()
		delete(s.searches, id)
	}
}

// mine builds and appends the next block. It must be called while holding
// the ledger lock.
func (s *State) mine(proof uint64) (database.Block, error) {
	prev := s.latestBlock()

	block := database.NewBlock(prev, database.Now(), s.mempool.Copy(), proof)
	if err := database.ValidateNextBlock(prev, block, s.genesis.Difficulty); err != nil {
		return database.Block{}, err
	}

	s.chain = append(s.chain, block)
	s.mempool.Truncate()

	s.evHandler("state: mine: block[%d]: hash[%s]: txs[%d]", block.Index, block.Hash(), len(block.Transactions))
	s.evHandler("viewer: block mined: index[%d]: proof[%d]: txs[%d]", block.Index, block.Proof, len(block.Transactions))

	return block.Copy(), nil
}
