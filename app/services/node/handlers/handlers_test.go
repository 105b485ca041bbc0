package handlers_test

import (
	"crypto/ecdsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/ardanlabs/ledger/app/services/node/handlers"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/blockchain/worker"
	"github.com/ardanlabs/ledger/foundation/events"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

const (
	MINER_ECDSA = "8dc79feefd3b86e2f9991def0e5ccd9a5128e104682407b308594bc1032ac7f0"
)

func newMux(t *testing.T) (http.Handler, *state.State) {
	key, err := crypto.HexToECDSA(MINER_ECDSA)
	if err != nil {
		t.Fatalf("Should be able to load the key: %s", err)
	}

	gen := genesis.Default()
	gen.Difficulty = 2

	st, err := state.New(state.Config{
		NodeID:  "node1",
		Host:    "127.0.0.1:5000",
		Genesis: gen,
		Signer:  signature.NewSigner(key),
	})
	if err != nil {
		t.Fatalf("Should be able to construct the state: %s", err)
	}

	w := worker.Run(st, worker.Config{})
	t.Cleanup(w.Shutdown)

	mux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown: make(chan os.Signal, 1),
		Log:      zap.NewNop().Sugar(),
		State:    st,
		Miner:    w,
		Evts:     events.New(),
	})

	return mux, st
}

func call(t *testing.T, mux http.Handler, method string, path string, body string, resp any) int {
	var r *http.Request
	switch body {
	case "":
		r = httptest.NewRequest(method, path, nil)
	default:
		r = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, r)

	if resp != nil {
		if err := json.NewDecoder(w.Body).Decode(resp); err != nil {
			t.Fatalf("Should be able to decode the response of %s %s: %s", method, path, err)
		}
	}

	return w.Code
}

// =============================================================================

func Test_TransactionAndMine(t *testing.T) {
	mux, st := newMux(t)

	var msg struct {
		Message string `json:"message"`
	}
	status := call(t, mux, http.MethodPost, "/transactions/new", `{"sender":"A","recipient":"B","amount":10}`, &msg)
	if status != http.StatusCreated {
		t.Logf("got: %d", status)
		t.Logf("exp: %d", http.StatusCreated)
		t.Fatalf("Should be able to submit a transaction.")
	}

	if msg.Message != "transaction append 2 into block" {
		t.Logf("got: %s", msg.Message)
		t.Fatalf("Should get back the index of the next block.")
	}

	var pending struct {
		Transactions []database.Transaction `json:"transactions"`
	}
	call(t, mux, http.MethodGet, "/transactions", "", &pending)
	if len(pending.Transactions) != 1 {
		t.Fatalf("Should have the transaction in the mempool, got %d.", len(pending.Transactions))
	}

	var mined struct {
		Index        uint64                 `json:"index"`
		Transactions []database.Transaction `json:"transactions"`
		PreviousHash string                 `json:"previous_hash"`
	}
	if status := call(t, mux, http.MethodGet, "/mine", "", &mined); status != http.StatusOK {
		t.Fatalf("Should be able to mine, got %d.", status)
	}

	if mined.Index != 2 || len(mined.Transactions) != 2 {
		t.Logf("got: %+v", mined)
		t.Fatalf("Should mine the transaction and the reward into block 2.")
	}

	var chain struct {
		Chain  []database.Block `json:"chain"`
		Length int              `json:"length"`
	}
	call(t, mux, http.MethodGet, "/chain", "", &chain)
	if chain.Length != 2 || len(chain.Chain) != 2 || chain.Chain[1].PreviousHash != chain.Chain[0].Hash() {
		t.Logf("got: %+v", chain)
		t.Fatalf("Should get back a linked chain of two blocks.")
	}

	if mined.PreviousHash != st.RetrieveChain()[0].Hash() {
		t.Fatalf("Should report the hash of the genesis block.")
	}
}

func Test_InvalidRequests(t *testing.T) {
	mux, _ := newMux(t)

	type table struct {
		name   string
		method string
		path   string
		body   string
		field  string
	}

	tt := []table{
		{name: "missing-recipient", method: http.MethodPost, path: "/transactions/new", body: `{"sender":"A","amount":10}`, field: "recipient"},
		{name: "bad-node", method: http.MethodPost, path: "/nodes/register", body: `{"node":"localhost"}`, field: "node"},
		{name: "unsigned-add", method: http.MethodPost, path: "/transactions/add", body: `{"sender":"A","recipient":"B","amount":1,"timestamp":1}`, field: "signature"},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			var resp struct {
				Error  string            `json:"error"`
				Fields map[string]string `json:"fields"`
			}

			status := call(t, mux, tst.method, tst.path, tst.body, &resp)
			if status != http.StatusBadRequest {
				t.Logf("Test %s:\tgot: %d", tst.name, status)
				t.Logf("Test %s:\texp: %d", tst.name, http.StatusBadRequest)
				t.Fatalf("Test %s:\tShould get back a bad request.", tst.name)
			}

			if _, exists := resp.Fields[tst.field]; !exists {
				t.Logf("Test %s:\tgot: %v", tst.name, resp.Fields)
				t.Fatalf("Test %s:\tShould get back an error for field %s.", tst.name, tst.field)
			}
		}

		t.Run(tst.name, f)
	}
}

func Test_MalformedRequests(t *testing.T) {
	mux, st := newMux(t)

	type table struct {
		name   string
		method string
		path   string
		body   string
	}

	tt := []table{
		{name: "negative-amount", method: http.MethodPost, path: "/transactions/new", body: `{"sender":"A","recipient":"B","amount":-5}`},
		{name: "string-amount", method: http.MethodPost, path: "/transactions/new", body: `{"sender":"A","recipient":"B","amount":"10"}`},
		{name: "fractional-amount", method: http.MethodPost, path: "/transactions/add", body: `{"sender":"A","recipient":"B","amount":1.5,"timestamp":1,"signature":"0x01"}`},
		{name: "not-json-tx", method: http.MethodPost, path: "/transactions/new", body: `not json`},
		{name: "not-json-node", method: http.MethodPost, path: "/nodes/register", body: `not json`},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			var resp struct {
				Error string `json:"error"`
			}

			status := call(t, mux, tst.method, tst.path, tst.body, &resp)
			if status != http.StatusBadRequest {
				t.Logf("Test %s:\tgot: %d", tst.name, status)
				t.Logf("Test %s:\texp: %d", tst.name, http.StatusBadRequest)
				t.Fatalf("Test %s:\tShould get back a bad request.", tst.name)
			}

			if !strings.HasPrefix(resp.Error, state.ErrInvalidInput.Error()) {
				t.Logf("Test %s:\tgot: %s", tst.name, resp.Error)
				t.Fatalf("Test %s:\tShould report the body as invalid input.", tst.name)
			}
		}

		t.Run(tst.name, f)
	}

	if n := len(st.RetrieveMempool()); n != 0 {
		t.Fatalf("Should not change the mempool, got %d.", n)
	}
}

func Test_AddTransaction(t *testing.T) {
	mux, st := newMux(t)

	status := call(t, mux, http.MethodPost, "/transactions/add", `{"sender":"A","recipient":"B","amount":5,"timestamp":1700000000.5,"signature":"0x01"}`, nil)
	if status != http.StatusCreated {
		t.Fatalf("Should be able to add a relayed transaction, got %d.", status)
	}

	exp := database.NewTransaction("A", "B", 5, 1700000000.5, "0x01")
	if pool := st.RetrieveMempool(); len(pool) != 1 || pool[0] != exp {
		t.Logf("got: %v", pool)
		t.Logf("exp: %v", exp)
		t.Fatalf("Should add the transaction as relayed.")
	}
}

func Test_Identity(t *testing.T) {
	mux, st := newMux(t)

	var id struct {
		UUID string `json:"uuid"`
	}
	call(t, mux, http.MethodGet, "/uuid", "", &id)
	if id.UUID != "node1" {
		t.Fatalf("Should get back the node id, got %q.", id.UUID)
	}

	var key struct {
		Key string `json:"key"`
	}
	call(t, mux, http.MethodGet, "/publickey", "", &key)
	if key.Key != st.RetrievePublicKey() {
		t.Fatalf("Should get back the node public key, got %q.", key.Key)
	}

	var nodes map[string]any
	call(t, mux, http.MethodGet, "/nodes", "", &nodes)
	if len(nodes) != 0 {
		t.Fatalf("Should not know any peers, got %v.", nodes)
	}
}

func Test_VerifySignature(t *testing.T) {
	mux, st := newMux(t)

	tx, _, err := st.SubmitNodeTransaction("A", "B", 10)
	if err != nil {
		t.Fatalf("Should be able to submit a transaction: %s", err)
	}

	query := func(sig string) string {
		v := url.Values{}
		v.Set("signature", sig)
		v.Set("publickey", st.RetrievePublicKey())
		v.Set("timestamp", database.TimeStampString(tx.TimeStamp))
		return "/verify_signature?" + v.Encode()
	}

	var result string
	call(t, mux, http.MethodGet, query(tx.Signature), "", &result)
	if result != "Verified" {
		t.Fatalf("Should verify the node signature, got %q.", result)
	}

	other, err := signature.NewSigner(mustKey(t)).Sign("something else")
	if err != nil {
		t.Fatalf("Should be able to sign: %s", err)
	}

	call(t, mux, http.MethodGet, query(other), "", &result)
	if result != "Not Verified" {
		t.Fatalf("Should not verify a signature of another message, got %q.", result)
	}
}

func Test_ResolveAuthoritative(t *testing.T) {
	mux, _ := newMux(t)

	var resp struct {
		Message string           `json:"message"`
		Chain   []database.Block `json:"chain"`
	}
	call(t, mux, http.MethodGet, "/nodes/resolve", "", &resp)

	if resp.Message != "chain authoritative" || len(resp.Chain) != 1 {
		t.Logf("got: %+v", resp)
		t.Fatalf("Should keep the local chain without peers.")
	}
}

func mustKey(t *testing.T) *ecdsa.PrivateKey {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("Should be able to generate a key: %s", err)
	}
	return key
}
