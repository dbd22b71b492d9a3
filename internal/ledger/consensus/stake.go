package consensus

import (
	"context"
	"time"

	"github.com/goodnatureofminers/pocketledger/internal/ledger/model"
)

// ProofOfStake is a placeholder stake adapter. It accepts every block and
// seals headers without any search.
type ProofOfStake struct {
	validators []string
}

// NewProofOfStake returns a stake sealer aware of the given validator set.
// The set is advisory; no selection logic exists yet.
func NewProofOfStake(validators ...string) *ProofOfStake {
	return &ProofOfStake{validators: validators}
}

// Difficulty is always zero for staked headers.
func (p *ProofOfStake) Difficulty() uint32 {
	return 0
}

// Seal finalizes the header immediately with a zero nonce.
func (p *ProofOfStake) Seal(_ context.Context, header *model.BlockHeader) (string, error) {
	header.Nonce = 0
	return header.Hash(), nil
}

// ValidateBlock accepts every block.
func (p *ProofOfStake) ValidateBlock(_ *model.Block) bool {
	return true
}

// BuildBlock assembles a standalone staked block attributed to validator.
// The block carries a zero previous hash and difficulty zero; it is not
// linked into any chain until a producer commits it.
func (p *ProofOfStake) BuildBlock(txs []*model.Transaction, validator string) *model.Block {
	block := &model.Block{
		Header: model.BlockHeader{
			Version:    model.HeaderVersion,
			PrevHash:   model.ZeroHash,
			Timestamp:  time.Now().Unix(),
			Nonce:      0,
			Difficulty: 0,
			Validator:  validator,
		},
		Transactions: txs,
	}
	block.ComputeMerkleRoot()
	return block
}
