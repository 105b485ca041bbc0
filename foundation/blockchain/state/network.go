package state

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
)

// baseURL represents the base URL used to talk to a peer.
const baseURL = "http://%s"

// =============================================================================

// NetSendTxToPeers shares a transaction with the known peers. A peer that
// can't be reached is logged and skipped.
func (s *State) NetSendTxToPeers(ctx context.Context, tx database.Transaction) {
	s.evHandler("state: NetSendTxToPeers: started")
	defer s.evHandler("state: NetSendTxToPeers: completed")

	for _, pr := range s.RetrieveKnownPeers() {
		url := fmt.Sprintf("%s/transactions/add", fmt.Sprintf(baseURL, pr.Host))
		if err := s.send(ctx, http.MethodPost, url, tx, nil); err != nil {
			s.evHandler("state: NetSendTxToPeers: WARNING: %s", err)
		}
	}
}

// NetRequestPeerNodes asks the peer for the set of peers it knows about.
func (s *State) NetRequestPeerNodes(ctx context.Context, host string) (map[string]peer.Peer, error) {
	s.evHandler("state: NetRequestPeerNodes: started: %s", host)
	defer s.evHandler("state: NetRequestPeerNodes: completed: %s", host)

	url := fmt.Sprintf("%s/nodes", fmt.Sprintf(baseURL, host))

	var nodes map[string]peer.Peer
	if err := s.send(ctx, http.MethodGet, url, nil, &nodes); err != nil {
		return nil, err
	}

	return nodes, nil
}

// =============================================================================

// netRequestPeerID asks the peer for its unique id.
func (s *State) netRequestPeerID(ctx context.Context, host string) (string, error) {
	url := fmt.Sprintf("%s/uuid", fmt.Sprintf(baseURL, host))

	var resp struct {
		UUID string `json:"uuid"`
	}
	if err := s.send(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return "", err
	}

	if resp.UUID == "" {
		return "", fmt.Errorf("%w: %s: empty uuid", peer.ErrPeerUnreachable, host)
	}

	return resp.UUID, nil
}

// netRequestPeerPublicKey asks the peer for its public key.
func (s *State) netRequestPeerPublicKey(ctx context.Context, host string) (string, error) {
	url := fmt.Sprintf("%s/publickey", fmt.Sprintf(baseURL, host))

	var resp struct {
		Key string `json:"key"`
	}
	if err := s.send(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return "", err
	}

	return resp.Key, nil
}

// netRequestPeerChain asks the peer for its full chain.
func (s *State) netRequestPeerChain(ctx context.Context, host string) ([]database.Block, error) {
	url := fmt.Sprintf("%s/chain", fmt.Sprintf(baseURL, host))

	var resp struct {
		Chain  []database.Block `json:"chain"`
		Length int              `json:"length"`
	}
	if err := s.send(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return nil, err
	}

	if resp.Length != len(resp.Chain) {
		return nil, fmt.Errorf("%w: length %d, got %d blocks", database.ErrChainInvalid, resp.Length, len(resp.Chain))
	}

	return resp.Chain, nil
}

// netRequestPeerMempool asks the peer for the transactions in their mempool.
func (s *State) netRequestPeerMempool(ctx context.Context, host string) ([]database.Transaction, error) {
	url := fmt.Sprintf("%s/transactions", fmt.Sprintf(baseURL, host))

	var resp struct {
		Transactions []database.Transaction `json:"transactions"`
	}
	if err := s.send(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return nil, err
	}

	if resp.Transactions == nil {
		resp.Transactions = []database.Transaction{}
	}

	return resp.Transactions, nil
}

// =============================================================================

// send is a helper function to send an HTTP request to a node. Every call is
// bound by the peer timeout. Any failure to get a successful response is
// reported as an unreachable peer.
func (s *State) send(ctx context.Context, method string, url string, dataSend any, dataRecv any) error {
	ctx, cancel := context.WithTimeout(ctx, s.peerTimeout)
	defer cancel()

	var body io.Reader
	if dataSend != nil {
		data, err := json.Marshal(dataSend)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}

	if dataSend != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", peer.ErrPeerUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s %s: status %d: %s", peer.ErrPeerUnreachable, method, url, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if dataRecv != nil {
		if err := json.NewDecoder(resp.Body).Decode(dataRecv); err != nil {
			return fmt.Errorf("%w: decode %s: %w", peer.ErrPeerUnreachable, url, err)
		}
	}

	return nil
}
