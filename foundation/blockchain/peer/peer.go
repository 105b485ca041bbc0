// Package peer maintains the peer related information such as the set
// of know peers and their identity.
package peer

import (
	"errors"
	"sort"
	"sync"
)

// ErrPeerUnreachable is returned when a peer can't be reached or returns a
// non-success response.
var ErrPeerUnreachable = errors.New("peer unreachable")

// Peer represents information about a Node in the network.
type Peer struct {
	Host      string `json:"-"`
	ID        string `json:"uuid"`
	PublicKey string `json:"key"`
}

// New contructs a new info value.
func New(host string, id string, publicKey string) Peer {
	return Peer{
		Host:      host,
		ID:        id,
		PublicKey: publicKey,
	}
}

// Match validates if the specified host matches this node.
func (p Peer) Match(host string) bool {
	return p.Host == host
}

// =============================================================================

// PeerSet represents the data representation to maintain a set of known peers
// keyed by their address.
type PeerSet struct {
	mu  sync.RWMutex
	set map[string]Peer
}

// NewPeerSet constructs a new info set to manage node peer information.
func NewPeerSet() *PeerSet {
	return &PeerSet{
		set: make(map[string]Peer),
	}
}

// Upsert adds the peer to the set or overwrites the peer already registered
// at the same address. It reports if the address is new to the set.
func (ps *PeerSet) Upsert(peer Peer) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	_, exists := ps.set[peer.Host]
	ps.set[peer.Host] = peer

	return !exists
}

// Get returns the peer registered at the address.
func (ps *PeerSet) Get(host string) (Peer, bool) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	peer, exists := ps.set[host]
	return peer, exists
}

// Remove removes a node from the set.
func (ps *PeerSet) Remove(host string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	delete(ps.set, host)
}

// Len returns the number of known peers.
func (ps *PeerSet) Len() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	return len(ps.set)
}

// Copy returns a list of the known peers sorted by address, excluding the
// specified host.
func (ps *PeerSet) Copy(host string) []Peer {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	peers := make([]Peer, 0, len(ps.set))
	for _, peer := range ps.set {
		if !peer.Match(host) {
			peers = append(peers, peer)
		}
	}

	sort.Slice(peers, func(i, j int) bool {
		return peers[i].Host < peers[j].Host
	})

	return peers
}

// Map returns the known peers keyed by their address.
func (ps *PeerSet) Map() map[string]Peer {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	cpy := make(map[string]Peer, len(ps.set))
	for host, peer := range ps.set {
		cpy[host] = peer
	}

	return cpy
}
