package public

import (
	"github.com/ardanlabs/ledger/business/sys/validate"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// NewTx is what a client sends to have the node sign and submit a
// transaction.
type NewTx struct {
	Sender    string `json:"sender" validate:"required"`
	Recipient string `json:"recipient" validate:"required"`
	Amount    uint64 `json:"amount"`
}

// Validate checks the data in the model is considered clean.
func (ntx NewTx) Validate() error {
	return validate.Check(ntx)
}

// RegisterNode is what a client sends to register a peer.
type RegisterNode struct {
	Node string `json:"node" validate:"required,hostport"`
}

// Validate checks the data in the model is considered clean.
func (rn RegisterNode) Validate() error {
	return validate.Check(rn)
}

// =============================================================================

type message struct {
	Message string `json:"message"`
}

type minedBlock struct {
	Message      string                 `json:"message"`
	Index        uint64                 `json:"index"`
	Transactions []database.Transaction `json:"transactions"`
	Proof        uint64                 `json:"proof"`
	PreviousHash string                 `json:"previous_hash"`
}

type nodes struct {
	Message    string `json:"message"`
	TotalNodes any    `json:"total_nodes"`
}

type replaced struct {
	Message  string           `json:"message"`
	NewChain []database.Block `json:"new_chain"`
}

type authoritative struct {
	Message string           `json:"message"`
	Chain   []database.Block `json:"chain"`
}
