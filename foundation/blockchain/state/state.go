// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/mempool"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
	"github.com/ardanlabs/ledger/foundation/resolver"
)

// Set of error variables for the ledger operations.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrChainChanged = errors.New("chain changed while mining")
	ErrSelfPeer     = errors.New("peer is this node")
)

// defPeerTimeout is used when the configuration doesn't provide a timeout
// for calls made to peers.
const defPeerTimeout = 3 * time.Second

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of the ledger.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for transaction sharing.
type Worker interface {
	Shutdown()
	SignalShareTx(tx database.Transaction)
}

// Signer represents the capability of signing messages with the node's key.
type Signer interface {
	Sign(message string) (string, error)
	PublicKey() string
}

// =============================================================================

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	NodeID        string
	Host          string
	Genesis       genesis.Genesis
	Signer        Signer
	Resolver      resolver.Resolver
	PeerTimeout   time.Duration
	MiningWorkers int
	KnownPeers    *peer.PeerSet
	EvHandler     EventHandler
}

// State manages the ledger: the chain of blocks, the pending pool, and the
// registry of peers. A single mutex serializes every change to the chain and
// the pool.
type State struct {
	mu sync.Mutex

	nodeID        string
	host          string
	signer        Signer
	resolver      resolver.Resolver
	client        *http.Client
	peerTimeout   time.Duration
	miningWorkers int
	evHandler     EventHandler

	genesis    genesis.Genesis
	chain      []database.Block
	mempool    *mempool.Mempool
	knownPeers *peer.PeerSet

	// Proof searches in flight, cancelled when the chain is replaced.
	searchID uint64
	searches map[uint64]context.CancelFunc

	Worker Worker
}

// New constructs a new ledger with a chain that holds the genesis block.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if cfg.NodeID == "" {
		return nil, errors.New("node id is required")
	}

	if cfg.Signer == nil {
		return nil, errors.New("signer is required")
	}

	res := cfg.Resolver
	if res == nil {
		res = resolver.Passthrough{}
	}

	knownPeers := cfg.KnownPeers
	if knownPeers == nil {
		knownPeers = peer.NewPeerSet()
	}

	peerTimeout := cfg.PeerTimeout
	if peerTimeout <= 0 {
		peerTimeout = defPeerTimeout
	}

	miningWorkers := cfg.MiningWorkers
	if miningWorkers < 1 {
		miningWorkers = 1
	}

	// Create the State to provide support for managing the blockchain.
	state := State{
		nodeID:        cfg.NodeID,
		host:          cfg.Host,
		signer:        cfg.Signer,
		resolver:      res,
		client:        &http.Client{},
		peerTimeout:   peerTimeout,
		miningWorkers: miningWorkers,
		evHandler:     ev,

		genesis:    cfg.Genesis,
		chain:      []database.Block{cfg.Genesis.Block()},
		mempool:    mempool.New(),
		knownPeers: knownPeers,

		searches: make(map[uint64]context.CancelFunc),

		Worker: noWorker{},
	}

	// The Worker is set to a no-op value here. The call to worker.Run will
	// assign itself and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Stop all blockchain writing activity.
	s.Worker.Shutdown()

	return nil
}

// =============================================================================

// noWorker is the worker used until a real worker registers itself.
type noWorker struct{}

func (noWorker) Shutdown() {}
func (noWorker) SignalShareTx(tx database.Transaction) {}
