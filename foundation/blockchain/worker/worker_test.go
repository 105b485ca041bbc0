package worker_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/blockchain/worker"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	MINER_ECDSA = "8dc79feefd3b86e2f9991def0e5ccd9a5128e104682407b308594bc1032ac7f0"
)

func newState(t *testing.T, difficulty uint) *state.State {
	return newStateEv(t, "node1", difficulty, nil)
}

// newStateEv constructs a state that passes every event to ev.
func newStateEv(t *testing.T, nodeID string, difficulty uint, ev state.EventHandler) *state.State {
	key, err := crypto.HexToECDSA(MINER_ECDSA)
	if err != nil {
		t.Fatalf("Should be able to load the key: %s", err)
	}

	gen := genesis.Default()
	gen.Difficulty = difficulty

	st, err := state.New(state.Config{
		NodeID:        nodeID,
		Host:          nodeID + ":5000",
		Genesis:       gen,
		Signer:        signature.NewSigner(key),
		PeerTimeout:   time.Second,
		MiningWorkers: 2,
		EvHandler:     ev,
	})
	if err != nil {
		t.Fatalf("Should be able to construct the state: %s", err)
	}

	return st
}

// newPeer starts a fake peer that answers the registration handshake and
// forwards every relayed transaction to the returned channel.
func newPeer(t *testing.T) (*httptest.Server, chan database.Transaction) {
	relayed := make(chan database.Transaction, 10)

	mux := http.NewServeMux()
	mux.HandleFunc("/uuid", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"uuid": "peer1"})
	})
	mux.HandleFunc("/publickey", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"key": "0x04"})
	})
	mux.HandleFunc("/chain", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"chain": []database.Block{genesis.Default().Block()}, "length": 1})
	})
	mux.HandleFunc("/transactions/add", func(w http.ResponseWriter, r *http.Request) {
		var tx database.Transaction
		if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		relayed <- tx
		w.WriteHeader(http.StatusCreated)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv, relayed
}

// newChainPeer starts a fake peer that serves the chain and an empty
// mempool.
func newChainPeer(t *testing.T, chain []database.Block) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/uuid", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"uuid": "peer1"})
	})
	mux.HandleFunc("/publickey", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"key": "0x04"})
	})
	mux.HandleFunc("/chain", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"chain": chain, "length": len(chain)})
	})
	mux.HandleFunc("/transactions", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"transactions": []database.Transaction{}})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

// isSearchStarted reports if the event is the one sent right before the
// proof search begins.
func isSearchStarted(v string) bool {
	return strings.HasPrefix(v, "state: MineNewBlock: MINING: perform POW")
}

// =============================================================================

func Test_Mine(t *testing.T) {
	st := newState(t, 2)

	w := worker.Run(st, worker.Config{})
	defer w.Shutdown()

	block, err := w.Mine(context.Background())
	if err != nil {
		t.Fatalf("Should be able to mine a block: %s", err)
	}

	if block.Index != 2 || len(st.RetrieveChain()) != 2 {
		t.Logf("got: %d", block.Index)
		t.Logf("exp: %d", 2)
		t.Fatalf("Should commit the mined block to the chain.")
	}
}

func Test_MineCancel(t *testing.T) {
	started := make(chan struct{})
	var once sync.Once

	// This difficulty can't be solved so the search only ends by cancel.
	st := newStateEv(t, "node1", 64, func(v string, args ...any) {
		if isSearchStarted(v) {
			once.Do(func() { close(started) })
		}
	})

	w := worker.Run(st, worker.Config{})

	errs := make(chan error, 1)
	go func() {
		_, err := w.Mine(context.Background())
		errs <- err
	}()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatalf("Should start searching for a proof.")
	}

	w.Shutdown()

	select {
	case err := <-errs:
		if !errors.Is(err, context.Canceled) {
			t.Logf("got: %v", err)
			t.Logf("exp: %v", context.Canceled)
			t.Fatalf("Should get back a cancelled error.")
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Should be able to cancel mining with a shutdown.")
	}

	if len(st.RetrieveChain()) != 1 {
		t.Fatalf("Should not change the chain.")
	}
}

func Test_MineCancelledByResolve(t *testing.T) {
	remote := newState(t, 2)
	if _, err := remote.MineNewBlock(context.Background()); err != nil {
		t.Fatalf("Should be able to mine a block: %s", err)
	}
	srv := newChainPeer(t, remote.RetrieveChain())

	var local *state.State
	var once sync.Once
	resolved := make(chan error, 1)

	// Conflict resolution replaces the chain once the search has started.
	local = newStateEv(t, "local", 2, func(v string, args ...any) {
		if isSearchStarted(v) {
			once.Do(func() {
				_, err := local.Resolve(context.Background())
				resolved <- err
			})
		}
	})

	w := worker.Run(local, worker.Config{})
	defer w.Shutdown()

	if _, err := local.RegisterPeer(context.Background(), srv.Listener.Addr().String()); err != nil {
		t.Fatalf("Should be able to register the peer: %s", err)
	}

	_, err := w.Mine(context.Background())
	if err := <-resolved; err != nil {
		t.Fatalf("Should be able to resolve: %s", err)
	}

	if !errors.Is(err, state.ErrChainChanged) || !errors.Is(err, context.Canceled) {
		t.Logf("got: %v", err)
		t.Logf("exp: %v", state.ErrChainChanged)
		t.Fatalf("Should cancel the search against the replaced chain.")
	}

	if len(local.RetrieveChain()) != 2 || local.RetrieveLatestBlock().Hash() != remote.RetrieveLatestBlock().Hash() {
		t.Fatalf("Should keep the chain of the peer.")
	}

	// A later search runs against the new chain and isn't cancelled.
	block, err := w.Mine(context.Background())
	if err != nil {
		t.Fatalf("Should be able to mine after the chain was replaced: %s", err)
	}

	if block.Index != 3 {
		t.Logf("got: %d", block.Index)
		t.Logf("exp: %d", 3)
		t.Fatalf("Should mine the block that follows the replaced chain.")
	}
}

func Test_MineAfterShutdown(t *testing.T) {
	st := newState(t, 2)

	w := worker.Run(st, worker.Config{})
	w.Shutdown()

	if _, err := w.Mine(context.Background()); !errors.Is(err, worker.ErrShutdown) {
		t.Logf("got: %v", err)
		t.Logf("exp: %v", worker.ErrShutdown)
		t.Fatalf("Should not be able to mine after shutdown.")
	}
}

func Test_BootstrapAndShareTx(t *testing.T) {
	st := newState(t, 2)
	srv, relayed := newPeer(t)

	w := worker.Run(st, worker.Config{
		KnownPeers: []string{srv.Listener.Addr().String()},
	})
	defer w.Shutdown()

	deadline := time.Now().Add(5 * time.Second)
	for len(st.RetrieveKnownPeers()) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("Should register the configured peer.")
		}
		time.Sleep(10 * time.Millisecond)
	}

	tx, _, err := st.SubmitNodeTransaction("A", "B", 10)
	if err != nil {
		t.Fatalf("Should be able to submit a node transaction: %s", err)
	}

	select {
	case got := <-relayed:
		if got != tx {
			t.Logf("got: %+v", got)
			t.Logf("exp: %+v", tx)
			t.Fatalf("Should relay the transaction as submitted.")
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Should relay the transaction to the peer.")
	}
}
