package memory

import (
	"context"
	"time"

	"github.com/goodnatureofminers/pocketledger/internal/ledger/model"
)

// AddBlock appends block at the next height. No validation happens here;
// callers decide what deserves to enter the chain.
func (r *Repository) AddBlock(ctx context.Context, block *model.Block) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("add_block", err, start)
	}()

	if err = ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.blocks = append(r.blocks, block)
	return nil
}

// GetBlock returns the block at height, reporting presence separately from
// operational failure.
func (r *Repository) GetBlock(ctx context.Context, height uint64) (*model.Block, bool, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("get_block", err, start)
	}()

	if err = ctx.Err(); err != nil {
		return nil, false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if height >= uint64(len(r.blocks)) {
		return nil, false, nil
	}
	return r.blocks[height], true, nil
}

// GetLatestBlock returns the chain tip, or ok=false on an empty chain.
func (r *Repository) GetLatestBlock(ctx context.Context) (*model.Block, bool, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("latest_block", err, start)
	}()

	if err = ctx.Err(); err != nil {
		return nil, false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.blocks) == 0 {
		return nil, false, nil
	}
	return r.blocks[len(r.blocks)-1], true, nil
}

// Height returns the number of blocks in the chain.
func (r *Repository) Height(ctx context.Context) (uint64, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("height", err, start)
	}()

	if err = ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return uint64(len(r.blocks)), nil
}
