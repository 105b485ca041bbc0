// Package genesis maintains the parameters every node of a network must agree
// on: the genesis block and the rules for mining blocks after it.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/pow"
)

// Defaults for a network that does not provide a genesis file.
const (
	DefaultProof        = 100
	DefaultPreviousHash = "1"
	DefaultMiningReward = 100
)

// defaultDate is the genesis time for the default network.
var defaultDate = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// Genesis represents the genesis file.
type Genesis struct {
	Date         time.Time `json:"date"`
	Proof        uint64    `json:"proof"`         // Proof of the genesis block, the puzzle input for block 2.
	PreviousHash string    `json:"previous_hash"` // Sentinel in place of a parent hash.
	Difficulty   uint      `json:"difficulty"`    // Number of leading zero hex digits a proof hash needs.
	MiningReward uint64    `json:"mining_reward"` // Amount credited to the node that mines a block.
}

// Default returns the genesis information for the default network.
func Default() Genesis {
	return Genesis{
		Date:         defaultDate,
		Proof:        DefaultProof,
		PreviousHash: DefaultPreviousHash,
		Difficulty:   pow.DefaultDifficulty,
		MiningReward: DefaultMiningReward,
	}
}

// Load opens and consumes the genesis file. Fields missing from the file
// keep their default values.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	genesis := Default()
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, fmt.Errorf("decode genesis file: %w", err)
	}

	return genesis, nil
}

// Block returns the genesis block. The block is the same on every call so
// every node of the network starts from the same root hash.
func (g Genesis) Block() database.Block {
	return database.NewGenesisBlock(database.TimeStamp(g.Date), g.Proof, g.PreviousHash)
}
