package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/pocketledger/internal/ledger/model"
	"github.com/goodnatureofminers/pocketledger/pkg/safe"
)

// txDelta is one transaction's effect on the unspent set, precomputed so
// the write lock only covers map mutation.
type txDelta struct {
	spent []model.Outpoint
	coins []model.UTXO
}

// ApplyBlock commits a sealed block in one step: the block is appended and
// its transaction effects are replayed in body order, each transaction
// removing its spent outpoints before adding its outputs. Everything
// happens under a single write lock, so a reader sees the ledger either
// entirely before or entirely after the block, never in between. Replay
// order matters: a transaction may spend an output created earlier in the
// same block.
func (r *Repository) ApplyBlock(ctx context.Context, block *model.Block) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("apply_block", err, start)
	}()

	if err = ctx.Err(); err != nil {
		return err
	}

	deltas := make([]txDelta, 0, len(block.Transactions))
	for _, tx := range block.Transactions {
		delta := txDelta{
			spent: make([]model.Outpoint, 0, len(tx.Inputs)),
			coins: make([]model.UTXO, 0, len(tx.Outputs)),
		}
		for _, in := range tx.Inputs {
			delta.spent = append(delta.spent, in.Outpoint())
		}
		for idx, out := range tx.Outputs {
			index, convErr := safe.Uint32(idx)
			if convErr != nil {
				err = fmt.Errorf("transaction %s output index: %w", tx.TxID, convErr)
				return err
			}
			delta.coins = append(delta.coins, model.UTXO{
				TxID:       tx.TxID,
				Index:      index,
				Amount:     out.Amount,
				Owner:      out.Address,
				LockScript: out.LockScript,
			})
		}
		deltas = append(deltas, delta)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.blocks = append(r.blocks, block)
	for _, delta := range deltas {
		for _, outpoint := range delta.spent {
			delete(r.utxos, outpoint)
		}
		for _, coin := range delta.coins {
			r.utxos[coin.Outpoint()] = coin
		}
	}
	return nil
}
