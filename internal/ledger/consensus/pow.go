package consensus

import (
	"context"
	"fmt"
	"strings"

	"github.com/goodnatureofminers/pocketledger/internal/ledger/model"
)

// DefaultDifficulty is the leading-zero count used when no difficulty is
// configured.
const DefaultDifficulty uint32 = 2

// checkInterval controls how often the search loop polls for cancellation.
const checkInterval = 1 << 12

// ProofOfWork seals headers by searching for a nonce whose digest carries
// the required number of leading zeros.
type ProofOfWork struct {
	difficulty uint32
	target     string
}

// NewProofOfWork returns a sealer for the given difficulty. A difficulty
// of zero still requires one leading zero.
func NewProofOfWork(difficulty uint32) *ProofOfWork {
	zeros := difficulty
	if zeros < 1 {
		zeros = 1
	}
	return &ProofOfWork{
		difficulty: difficulty,
		target:     strings.Repeat("0", int(zeros)),
	}
}

// Difficulty returns the configured difficulty.
func (p *ProofOfWork) Difficulty() uint32 {
	return p.difficulty
}

// Seal searches nonces from zero until the digest of the header's previous
// hash, merkle root, nonce and timestamp meets the target. The winning
// nonce is written into the header and its digest returned. The search only
// stops early when ctx ends, in which case the header is left untouched.
func (p *ProofOfWork) Seal(ctx context.Context, header *model.BlockHeader) (string, error) {
	for nonce := uint64(0); ; nonce++ {
		if nonce%checkInterval == 0 {
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("%w at nonce %d: %v", ErrSealInterrupted, nonce, ctx.Err())
			default:
			}
		}
		payload := fmt.Sprintf("%s%s%d%d", header.PrevHash, header.MerkleRoot, nonce, header.Timestamp)
		digest := model.HashBytes([]byte(payload))
		if strings.HasPrefix(digest, p.target) {
			header.Nonce = nonce
			return digest, nil
		}
	}
}
