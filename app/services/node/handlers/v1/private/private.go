// Package private maintains the group of handlers for node to node access.
package private

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ardanlabs/ledger/business/sys/validate"
	"github.com/ardanlabs/ledger/business/web/errs"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
}

// Chain returns the full chain and its length.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	chain := h.State.RetrieveChain()

	resp := struct {
		Chain  []database.Block `json:"chain"`
		Length int              `json:"length"`
	}{
		Chain:  chain,
		Length: len(chain),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Mempool returns the set of uncommitted transactions.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := struct {
		Transactions []database.Transaction `json:"transactions"`
	}{
		Transactions: h.State.RetrieveMempool(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// AddTransaction adds a transaction that was already signed, normally
// relayed by a peer, to the mempool.
func (h Handlers) AddTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var tx database.Transaction
	if err := web.Decode(r, &tx); err != nil {
		return errs.NewTrusted(fmt.Errorf("%w: %w", state.ErrInvalidInput, err), http.StatusBadRequest)
	}

	if err := validate.Check(addTx(tx)); err != nil {
		return err
	}

	index, err := h.State.SubmitTransaction(tx)
	if err != nil {
		if errors.Is(err, state.ErrInvalidInput) {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
		return err
	}

	h.Log.Infow("add tran", "traceid", v.TraceID, "tx", tx, "index", index)

	resp := struct {
		Message string `json:"message"`
	}{
		Message: fmt.Sprintf("transaction append %d into block", index),
	}

	return web.Respond(ctx, w, resp, http.StatusCreated)
}

// Nodes returns the known peers keyed by their address.
func (h Handlers) Nodes(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrievePeerMap(), http.StatusOK)
}

// UUID returns the unique id of this node.
func (h Handlers) UUID(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := struct {
		UUID string `json:"uuid"`
	}{
		UUID: h.State.RetrieveNodeID(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// PublicKey returns the public key of this node.
func (h Handlers) PublicKey(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := struct {
		Key string `json:"key"`
	}{
		Key: h.State.RetrievePublicKey(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// =============================================================================

// addTx declares the validation rules for a relayed transaction.
type addTx struct {
	Sender    string  `json:"sender" validate:"required"`
	Recipient string  `json:"recipient" validate:"required"`
	Amount    uint64  `json:"amount"`
	TimeStamp float64 `json:"timestamp" validate:"gt=0"`
	Signature string  `json:"signature" validate:"required"`
}
