package memory

import (
	"context"
	"sort"
	"time"

	"github.com/goodnatureofminers/pocketledger/internal/ledger/model"
)

// AddUTXO records coin as unspent, replacing any prior entry under the
// same outpoint.
func (r *Repository) AddUTXO(ctx context.Context, coin model.UTXO) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("add_utxo", err, start)
	}()

	if err = ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.utxos[coin.Outpoint()] = coin
	return nil
}

// GetUTXO returns the unspent output under outpoint, reporting presence
// separately from operational failure.
func (r *Repository) GetUTXO(ctx context.Context, outpoint model.Outpoint) (model.UTXO, bool, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("get_utxo", err, start)
	}()

	if err = ctx.Err(); err != nil {
		return model.UTXO{}, false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	coin, ok := r.utxos[outpoint]
	return coin, ok, nil
}

// RemoveUTXO deletes the output under outpoint. Removing an absent key is
// not an error; the end state is the same.
func (r *Repository) RemoveUTXO(ctx context.Context, outpoint model.Outpoint) error {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("remove_utxo", err, start)
	}()

	if err = ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.utxos, outpoint)
	return nil
}

// AllUTXOs returns a snapshot of the unspent set ordered by outpoint, tx id
// first and output index second. The fixed order keeps coin selection
// reproducible across runs.
func (r *Repository) AllUTXOs(ctx context.Context) ([]model.UTXO, error) {
	start := time.Now()
	var err error
	defer func() {
		r.metrics.Observe("all_utxos", err, start)
	}()

	if err = ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	coins := make([]model.UTXO, 0, len(r.utxos))
	for _, coin := range r.utxos {
		coins = append(coins, coin)
	}
	sort.Slice(coins, func(i, j int) bool {
		if coins[i].TxID != coins[j].TxID {
			return coins[i].TxID < coins[j].TxID
		}
		return coins[i].Index < coins[j].Index
	})
	return coins, nil
}
