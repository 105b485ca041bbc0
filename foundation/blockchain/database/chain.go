package database

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/pow"
)

// Set of errors for a chain that fails validation. Every validation failure
// wraps ErrChainInvalid.
var (
	ErrChainInvalid  = errors.New("chain invalid")
	ErrChainEmpty    = errors.New("chain has no blocks")
	ErrHashMismatch  = errors.New("previous hash does not match parent block")
	ErrProofInvalid  = errors.New("proof does not solve the puzzle")
	ErrIndexMismatch = errors.New("block index is not the next index")
)

// ValidateChain walks the chain from the first block checking that every
// block links to the hash of its parent, carries the next index, and that
// its proof solves the puzzle against the parent's proof. The first block
// is not compared against any known genesis block.
func ValidateChain(chain []Block, difficulty uint) error {
	if len(chain) == 0 {
		return fmt.Errorf("%w: %w", ErrChainInvalid, ErrChainEmpty)
	}

	prev := chain[0]
	for _, block := range chain[1:] {
		if err := ValidateNextBlock(prev, block, difficulty); err != nil {
			return err
		}
		prev = block
	}

	return nil
}

// ValidateNextBlock checks the block can follow the previous block.
func ValidateNextBlock(prev Block, block Block, difficulty uint) error {
	if block.Index != prev.Index+1 {
		return fmt.Errorf("%w: block[%d]: exp index %d: %w", ErrChainInvalid, block.Index, prev.Index+1, ErrIndexMismatch)
	}

	if hash := prev.Hash(); block.PreviousHash != hash {
		return fmt.Errorf("%w: block[%d]: got %s, exp %s: %w", ErrChainInvalid, block.Index, block.PreviousHash, hash, ErrHashMismatch)
	}

	if !pow.ValidProof(prev.Proof, block.Proof, difficulty) {
		return fmt.Errorf("%w: block[%d]: last proof %d, proof %d: %w", ErrChainInvalid, block.Index, prev.Proof, block.Proof, ErrProofInvalid)
	}

	return nil
}

// CopyChain returns a chain that shares no memory with the specified chain.
func CopyChain(chain []Block) []Block {
	cpy := make([]Block, len(chain))
	for i, block := range chain {
		cpy[i] = block.Copy()
	}
	return cpy
}
