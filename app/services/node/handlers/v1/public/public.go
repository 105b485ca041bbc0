// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ardanlabs/ledger/business/sys/metrics"
	"github.com/ardanlabs/ledger/business/sys/validate"
	"github.com/ardanlabs/ledger/business/web/errs"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/events"
	"github.com/ardanlabs/ledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Miner represents the behavior of mining a block on request.
type Miner interface {
	Mine(ctx context.Context) (database.Block, error)
}

// Handlers manages the set of public endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	Miner Miner
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// SubmitTransaction signs a new transaction with the node key, adds it to
// the mempool, and shares it with the known peers.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var ntx NewTx
	if err := web.Decode(r, &ntx); err != nil {
		return invalidInput(err)
	}

	tx, index, err := h.State.SubmitNodeTransaction(ntx.Sender, ntx.Recipient, ntx.Amount)
	if err != nil {
		if errors.Is(err, state.ErrInvalidInput) {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
		return err
	}

	h.Log.Infow("submit tran", "traceid", v.TraceID, "tx", tx, "index", index)

	resp := message{
		Message: fmt.Sprintf("transaction append %d into block", index),
	}

	return web.Respond(ctx, w, resp, http.StatusCreated)
}

// Mine performs the proof of work for the next block, rewards this node,
// and commits the block holding the mempool.
func (h Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	block, err := h.Miner.Mine(ctx)
	if err != nil {
		switch {
		case errors.Is(err, state.ErrChainChanged):
			return errs.NewTrusted(err, http.StatusConflict)
		case errors.Is(err, context.Canceled):
			return errs.NewTrusted(errors.New("mining cancelled"), http.StatusConflict)
		}
		return err
	}

	metrics.AddBlocks()

	resp := minedBlock{
		Message:      "new block mined",
		Index:        block.Index,
		Transactions: block.Transactions,
		Proof:        block.Proof,
		PreviousHash: block.PreviousHash,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// RegisterNode performs the handshake with a peer and adds it to the set of
// known peers.
func (h Handlers) RegisterNode(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var rn RegisterNode
	if err := web.Decode(r, &rn); err != nil {
		return invalidInput(err)
	}

	if _, err := h.State.RegisterPeer(ctx, rn.Node); err != nil {
		switch {
		case errors.Is(err, state.ErrInvalidInput), errors.Is(err, state.ErrSelfPeer):
			return errs.NewTrusted(err, http.StatusBadRequest)
		case errors.Is(err, peer.ErrPeerUnreachable):
			return errs.NewTrusted(err, http.StatusBadGateway)
		}
		return err
	}

	resp := nodes{
		Message:    "new node registered",
		TotalNodes: h.State.RetrievePeerMap(),
	}

	return web.Respond(ctx, w, resp, http.StatusCreated)
}

// DiscoverNodes asks the known peers for their peers and registers the ones
// this node doesn't know about.
func (h Handlers) DiscoverNodes(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	count, err := h.State.DiscoverPeers(ctx)
	if err != nil {
		if errors.Is(err, peer.ErrPeerUnreachable) {
			return errs.NewTrusted(err, http.StatusBadGateway)
		}
		return err
	}

	resp := nodes{
		Message:    fmt.Sprintf("%d nodes added", count),
		TotalNodes: h.State.RetrievePeerMap(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// ResolveChain applies the longest valid chain rule across the known peers.
func (h Handlers) ResolveChain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	ok, err := h.State.Resolve(ctx)
	if err != nil {
		return err
	}

	if ok {
		resp := replaced{
			Message:  "chain replaced",
			NewChain: h.State.RetrieveChain(),
		}
		return web.Respond(ctx, w, resp, http.StatusOK)
	}

	resp := authoritative{
		Message: "chain authoritative",
		Chain:   h.State.RetrieveChain(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// VerifySignature checks the signature of a timestamp against a public key.
func (h Handlers) VerifySignature(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	qs := r.URL.Query()

	ts, err := strconv.ParseFloat(qs.Get("timestamp"), 64)
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("invalid timestamp: %w", err), http.StatusBadRequest)
	}

	ok, err := signature.Verify(qs.Get("publickey"), database.TimeStampString(ts), qs.Get("signature"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if !ok {
		return web.Respond(ctx, w, "Not Verified", http.StatusOK)
	}

	return web.Respond(ctx, w, "Verified", http.StatusOK)
}

// =============================================================================

// invalidInput reports a request body that could not be decoded or
// validated as a client error.
func invalidInput(err error) error {
	if validate.IsFieldErrors(err) {
		return err
	}

	return errs.NewTrusted(fmt.Errorf("%w: %w", state.ErrInvalidInput, err), http.StatusBadRequest)
}
