package state

import (
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
)

// RetrieveHost returns a copy of host information.
func (s *State) RetrieveHost() string {
	return s.host
}

// RetrieveNodeID returns the unique id of this node.
func (s *State) RetrieveNodeID() string {
	return s.nodeID
}

// RetrievePublicKey returns the public key of this node.
func (s *State) RetrievePublicKey() string {
	return s.signer.PublicKey()
}

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveLatestBlock returns a copy the current latest block.
func (s *State) RetrieveLatestBlock() database.Block {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.latestBlock().Copy()
}

// RetrieveChain returns a copy of the full chain.
func (s *State) RetrieveChain() []database.Block {
	s.mu.Lock()
	defer s.mu.Unlock()

	return database.CopyChain(s.chain)
}

// RetrieveMempool returns a copy of the mempool.
func (s *State) RetrieveMempool() []database.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mempool.Copy()
}

// RetrieveKnownPeers retrieves a copy of the known peer list.
func (s *State) RetrieveKnownPeers() []peer.Peer {
	return s.knownPeers.Copy(s.host)
}

// RetrievePeerMap retrieves the known peers keyed by their address.
func (s *State) RetrievePeerMap() map[string]peer.Peer {
	return s.knownPeers.Map()
}

// =============================================================================

// latestBlock returns the last block of the chain. It must be called while
// holding the ledger lock.
func (s *State) latestBlock() database.Block {
	return s.chain[len(s.chain)-1]
}
