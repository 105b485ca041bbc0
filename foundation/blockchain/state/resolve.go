package state

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// ErrGenesisMismatch is returned when a chain does not start from the
// genesis block of this network.
var ErrGenesisMismatch = errors.New("genesis block does not match")

// ValidateChain reports if every block of the chain links to the hash of its
// parent and carries a proof that solves the puzzle against its parent. The
// first block is not compared to the genesis block of this node.
func (s *State) ValidateChain(chain []database.Block) bool {
	return database.ValidateChain(chain, s.genesis.Difficulty) == nil
}

// Resolve applies the longest valid chain rule across the known peers. The
// chain of every peer is fetched concurrently and a peer that can't be
// reached is skipped. The local chain and pending pool are replaced when a
// peer offers a valid chain strictly longer than the local chain. It reports
// if the local chain was replaced.
func (s *State) Resolve(ctx context.Context) (bool, error) {
	s.evHandler("state: Resolve: started")
	defer s.evHandler("state: Resolve: completed")

	peers := s.RetrieveKnownPeers()
	candidates := make([][]database.Block, len(peers))

	var wg sync.WaitGroup
	wg.Add(len(peers))

	for i, pr := range peers {
		go func(i int, host string) {
			defer wg.Done()

			chain, err := s.netRequestPeerChain(ctx, host)
			if err != nil {
				s.evHandler("state: Resolve: peer[%s]: WARNING: %s", host, err)
				return
			}

			if err := s.validateCandidate(chain); err != nil {
				s.evHandler("state: Resolve: peer[%s]: discarded: %s", host, err)
				return
			}

			candidates[i] = chain
		}(i, pr.Host)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return false, err
	}

	// The peers are sorted by address so the first of several longest chains
	// always wins.
	maxLength := len(s.RetrieveChain())
	winner := -1
	for i, chain := range candidates {
		if len(chain) > maxLength {
			maxLength = len(chain)
			winner = i
		}
	}

	if winner == -1 {
		s.evHandler("state: Resolve: local chain is authoritative: length[%d]", maxLength)
		return false, nil
	}

	host := peers[winner].Host
	newChain := candidates[winner]

	trans, err := s.netRequestPeerMempool(ctx, host)
	if err != nil {
		s.evHandler("state: Resolve: peer[%s]: WARNING: keeping local mempool: %s", host, err)
	}

	if !s.replaceChain(newChain, trans) {
		s.evHandler("state: Resolve: local chain grew during resolution")
		return false, nil
	}

	s.evHandler("viewer: chain replaced: peer[%s]: length[%d]", host, len(newChain))

	return true, nil
}

// =============================================================================

// validateCandidate checks the peer chain is internally valid and starts
// from the genesis block of this node.
func (s *State) validateCandidate(chain []database.Block) error {
	if err := database.ValidateChain(chain, s.genesis.Difficulty); err != nil {
		return err
	}

	if got, exp := chain[0].Hash(), s.genesis.Block().Hash(); got != exp {
		return fmt.Errorf("%w: %w: got %s, exp %s", database.ErrChainInvalid, ErrGenesisMismatch, got, exp)
	}

	return nil
}

// replaceChain substitutes the chain and, when trans is not nil, the pending
// pool as a unit. The chain is only replaced if it is still strictly longer
// than the local chain. Searches for a proof against the old chain are
// cancelled.
func (s *State) replaceChain(chain []database.Block, trans []database.Transaction) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(chain) <= len(s.chain) {
		return false
	}

	s.chain = database.CopyChain(chain)
	if trans != nil {
		s.mempool.Replace(trans)
	}

	s.cancelSearches()

	return true
}
