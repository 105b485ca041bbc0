package state

import (
	"fmt"
	"unicode/utf8"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// MiningSender is the sender of the transaction that rewards the node that
// mined a block.
const MiningSender = "mining"

// SubmitTransaction accepts a transaction into the pending pool. The
// signature is not verified and there is no balance to check. It returns the
// index of the block the transaction would land in if a block was mined now.
func (s *State) SubmitTransaction(tx database.Transaction) (uint64, error) {
	if err := validateTransaction(tx); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.mempool.Add(tx)
	s.evHandler("state: SubmitTransaction: tx[%s]: mempool[%d]", tx, n)

	return s.latestBlock().Index + 1, nil
}

// SubmitNodeTransaction constructs a transaction signed by this node, accepts
// it into the pending pool, and asks the worker to share it with the known
// peers.
func (s *State) SubmitNodeTransaction(sender string, recipient string, amount uint64) (database.Transaction, uint64, error) {
	tx, err := s.signTransaction(sender, recipient, amount)
	if err != nil {
		return database.Transaction{}, 0, err
	}

	index, err := s.SubmitTransaction(tx)
	if err != nil {
		return database.Transaction{}, 0, err
	}

	s.Worker.SignalShareTx(tx)

	return tx, index, nil
}

// =============================================================================

// signTransaction constructs a transaction stamped with the current time. The
// text form of the timestamp is what gets signed.
func (s *State) signTransaction(sender string, recipient string, amount uint64) (database.Transaction, error) {
	ts := database.Now()

	sig, err := s.signer.Sign(database.TimeStampString(ts))
	if err != nil {
		return database.Transaction{}, fmt.Errorf("sign transaction: %w", err)
	}

	return database.NewTransaction(sender, recipient, amount, ts, sig), nil
}

// validateTransaction rejects a transaction with missing parties or text
// that can't be hashed as it is.
func validateTransaction(tx database.Transaction) error {
	switch {
	case tx.Sender == "":
		return fmt.Errorf("%w: sender is required", ErrInvalidInput)
	case tx.Recipient == "":
		return fmt.Errorf("%w: recipient is required", ErrInvalidInput)
	case !utf8.ValidString(tx.Sender), !utf8.ValidString(tx.Recipient), !utf8.ValidString(tx.Signature):
		return fmt.Errorf("%w: text fields must be valid utf-8", ErrInvalidInput)
	case tx.TimeStamp < 0:
		return fmt.Errorf("%w: timestamp must not be negative", ErrInvalidInput)
	}

	return nil
}
