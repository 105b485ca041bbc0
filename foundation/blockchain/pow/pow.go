// Package pow implements the proof of work puzzle and the search for a
// proof that solves it.
package pow

import (
	"context"
	"crypto/sha256"
	"math"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// DefaultDifficulty is the number of leading zero hex digits a puzzle hash
// must have.
const DefaultDifficulty = 4

// maxDifficulty is the number of hex digits in a sha256 hash.
const maxDifficulty = 64

// notFound marks that no worker has found a proof yet.
const notFound = math.MaxUint64

// =============================================================================

// ValidProof reports if the proof solves the puzzle for the last proof. The
// two proofs are concatenated as decimal text and hashed, the hash must start
// with difficulty zero hex digits.
func ValidProof(lastProof uint64, proof uint64, difficulty uint) bool {
	guess := strconv.AppendUint(nil, lastProof, 10)
	guess = strconv.AppendUint(guess, proof, 10)

	hash := sha256.Sum256(guess)
	return isHashSolved(difficulty, hexutil.Encode(hash[:]))
}

// isHashSolved checks the hash to make sure it complies with
// the POW rules. We need to match a difficulty number of 0's.
func isHashSolved(difficulty uint, hash string) bool {
	const match = "0x0000000000000000000000000000000000000000000000000000000000000000"

	if len(hash) != len(match) || difficulty > maxDifficulty {
		return false
	}

	return hash[:difficulty+2] == match[:difficulty+2]
}

// =============================================================================

// SearchArgs represents the set of arguments required to search for a proof.
type SearchArgs struct {
	LastProof  uint64
	Difficulty uint
	Workers    int
	EvHandler  func(v string, args ...any)
}

// ProofOfWork searches proofs 0, 1, 2, ... on a single goroutine and returns
// the first proof that solves the puzzle for the last proof.
func ProofOfWork(ctx context.Context, lastProof uint64, difficulty uint) (uint64, error) {
	return Search(ctx, SearchArgs{
		LastProof:  lastProof,
		Difficulty: difficulty,
		Workers:    1,
	})
}

// Search looks for the smallest proof that solves the puzzle for the last
// proof. The search space is split across the workers by residue, worker i
// tries i, i+n, i+2n, ... and stops once its candidate passes the smallest
// proof found so far. The search only ends by finding a proof or by the
// context being cancelled.
func Search(ctx context.Context, args SearchArgs) (uint64, error) {
	ev := args.EvHandler
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	if args.Difficulty > maxDifficulty {
		args.Difficulty = maxDifficulty
	}

	workers := args.Workers
	if workers < 1 {
		workers = 1
	}
	step := uint64(workers)

	ev("pow: Search: MINING: started: lastProof[%d]: difficulty[%d]: workers[%d]", args.LastProof, args.Difficulty, workers)
	defer ev("pow: Search: MINING: completed")

	var best atomic.Uint64
	best.Store(notFound)

	var attempts atomic.Uint64

	var wg sync.WaitGroup
	wg.Add(workers)

	for i := range workers {
		go func(start uint64) {
			defer wg.Done()

			for proof := start; proof < best.Load(); proof += step {

				// Did we get told to stop trying to solve the problem.
				if ctx.Err() != nil {
					return
				}

				if n := attempts.Add(1); n%1_000_000 == 0 {
					ev("pow: Search: MINING: attempts[%d]", n)
				}

				if !ValidProof(args.LastProof, proof, args.Difficulty) {
					continue
				}

				// Keep the smallest proof found by any worker.
				for {
					current := best.Load()
					if proof >= current || best.CompareAndSwap(current, proof) {
						break
					}
				}
				return
			}
		}(uint64(i))
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		ev("pow: Search: MINING: CANCELLED")
		return 0, err
	}

	proof := best.Load()
	ev("pow: Search: MINING: SOLVED: proof[%d]: attempts[%d]", proof, attempts.Load())

	return proof, nil
}
