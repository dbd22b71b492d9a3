// Package memory implements the ledger store over in-process maps. One
// mutex serializes all mutation; the chain and the unspent set always
// change together under it, so readers never observe a half-applied block.
package memory

import (
	"errors"
	"sync"
	"time"

	"github.com/goodnatureofminers/pocketledger/internal/ledger/model"
)

type (
	Metrics interface {
		Observe(operation string, err error, started time.Time)
	}
)

type Repository struct {
	metrics Metrics

	mu     sync.RWMutex
	blocks []*model.Block
	utxos  map[model.Outpoint]model.UTXO
}

func NewRepository(metrics Metrics) (*Repository, error) {
	if metrics == nil {
		return nil, errors.New("metrics recorder is required")
	}

	return &Repository{
		metrics: metrics,
		utxos:   make(map[model.Outpoint]model.UTXO),
	}, nil
}
