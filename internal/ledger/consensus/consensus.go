// Package consensus holds the sealing adapters a block producer chooses
// between. Sealers only stamp headers; appending sealed blocks to the
// ledger is the caller's job.
package consensus

import (
	"context"
	"errors"

	"github.com/goodnatureofminers/pocketledger/internal/ledger/model"
)

// ErrSealInterrupted reports that a seal attempt stopped before finding a
// valid header because its context ended.
var ErrSealInterrupted = errors.New("sealing interrupted")

// Sealer finalizes a block header so the block can join the chain.
type Sealer interface {
	// Seal completes the header in place and returns the winning digest.
	Seal(ctx context.Context, header *model.BlockHeader) (string, error)
	// Difficulty returns the difficulty value to stamp on new headers.
	Difficulty() uint32
}
