package state

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
)

// RegisterPeer performs the handshake with the peer at the host:port address
// and records the identity and public key the peer reports. The host is
// resolved first and the raw host is used when it can't be resolved. A peer
// reporting the id of this node is rejected with ErrSelfPeer. The registry is
// only changed when the whole handshake succeeds.
func (s *State) RegisterPeer(ctx context.Context, address string) (peer.Peer, error) {
	s.evHandler("state: RegisterPeer: started: %s", address)
	defer s.evHandler("state: RegisterPeer: completed: %s", address)

	host, port, err := splitAddress(address)
	if err != nil {
		return peer.Peer{}, err
	}

	ip, err := s.resolver.Resolve(ctx, host)
	if err != nil {
		s.evHandler("state: RegisterPeer: WARNING: resolve %s: %s", host, err)
		ip = host
	}
	addr := net.JoinHostPort(ip, port)

	id, err := s.netRequestPeerID(ctx, addr)
	if err != nil {
		return peer.Peer{}, fmt.Errorf("register %s: %w", addr, err)
	}

	if id == s.nodeID {
		return peer.Peer{}, fmt.Errorf("register %s: %w", addr, ErrSelfPeer)
	}

	key, err := s.netRequestPeerPublicKey(ctx, addr)
	if err != nil {
		return peer.Peer{}, fmt.Errorf("register %s: %w", addr, err)
	}

	pr := peer.New(addr, id, key)
	if s.knownPeers.Upsert(pr) {
		s.evHandler("viewer: peer registered: %s", addr)
	}

	return pr, nil
}

// DiscoverPeers asks every known peer for the peers it knows about and
// registers the ones this node doesn't know yet. It returns the number of
// peers that were added.
func (s *State) DiscoverPeers(ctx context.Context) (int, error) {
	s.evHandler("state: DiscoverPeers: started")
	defer s.evHandler("state: DiscoverPeers: completed")

	var count int
	for _, pr := range s.RetrieveKnownPeers() {
		nodes, err := s.NetRequestPeerNodes(ctx, pr.Host)
		if err != nil {
			return count, err
		}

		for addr := range nodes {
			if addr == s.host {
				continue
			}

			if _, exists := s.knownPeers.Get(addr); exists {
				continue
			}

			if _, err := s.RegisterPeer(ctx, addr); err != nil {
				if errors.Is(err, ErrSelfPeer) {
					s.evHandler("state: DiscoverPeers: skipping this node: %s", addr)
					continue
				}
				return count, err
			}
			count++
		}
	}

	return count, nil
}

// =============================================================================

// splitAddress breaks a host:port address into its parts.
func splitAddress(address string) (string, string, error) {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return "", "", fmt.Errorf("%w: address %q: %w", ErrInvalidInput, address, err)
	}

	if host == "" {
		return "", "", fmt.Errorf("%w: address %q: missing host", ErrInvalidInput, address)
	}

	if n, err := strconv.ParseUint(port, 10, 16); err != nil || n == 0 {
		return "", "", fmt.Errorf("%w: address %q: invalid port", ErrInvalidInput, address)
	}

	return host, port, nil
}
