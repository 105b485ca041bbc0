// Package database holds the block and transaction types that make up the
// chain, along with the rules for validating a chain.
package database

import (
	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
)

// Block represents a group of transactions batched together. The JSON names
// are part of the peer wire contract and of the block hash.
type Block struct {
	Index        uint64        `json:"index"`
	TimeStamp    float64       `json:"timestamp"`
	Transactions []Transaction `json:"transactions"`
	Proof        uint64        `json:"proof"`
	PreviousHash string        `json:"previous_hash"`
}

// NewBlock constructs a block that follows the previous block. The block
// takes its own copy of the transactions.
func NewBlock(prevBlock Block, timeStamp float64, trans []Transaction, proof uint64) Block {
	return Block{
		Index:        prevBlock.Index + 1,
		TimeStamp:    timeStamp,
		Transactions: copyTrans(trans),
		Proof:        proof,
		PreviousHash: prevBlock.Hash(),
	}
}

// NewGenesisBlock constructs the first block of a chain. The previous hash
// is a sentinel and not the hash of anything.
func NewGenesisBlock(timeStamp float64, proof uint64, sentinel string) Block {
	return Block{
		Index:        1,
		TimeStamp:    timeStamp,
		Transactions: []Transaction{},
		Proof:        proof,
		PreviousHash: sentinel,
	}
}

// Hash returns the unique hash for the Block. A nil and an empty set of
// transactions hash the same.
func (b Block) Hash() string {
	if b.Transactions == nil {
		b.Transactions = []Transaction{}
	}

	return signature.Hash(b)
}

// Copy returns a block that shares no memory with this block.
func (b Block) Copy() Block {
	b.Transactions = copyTrans(b.Transactions)
	return b
}

// =============================================================================

// copyTrans returns a copy of the transactions, never nil.
func copyTrans(trans []Transaction) []Transaction {
	cpy := make([]Transaction, len(trans))
	copy(cpy, trans)
	return cpy
}
