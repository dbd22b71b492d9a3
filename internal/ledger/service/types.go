package service

import (
	"context"
	"time"

	"github.com/goodnatureofminers/pocketledger/internal/ledger/model"
)

type (
	LedgerRepository interface {
		AddBlock(ctx context.Context, block *model.Block) error
		GetBlock(ctx context.Context, height uint64) (*model.Block, bool, error)
		GetLatestBlock(ctx context.Context) (*model.Block, bool, error)
		Height(ctx context.Context) (uint64, error)
		AddUTXO(ctx context.Context, coin model.UTXO) error
		GetUTXO(ctx context.Context, outpoint model.Outpoint) (model.UTXO, bool, error)
		RemoveUTXO(ctx context.Context, outpoint model.Outpoint) error
		AllUTXOs(ctx context.Context) ([]model.UTXO, error)
		ApplyBlock(ctx context.Context, block *model.Block) error
	}
	Sealer interface {
		Seal(ctx context.Context, header *model.BlockHeader) (string, error)
		Difficulty() uint32
	}
	Publisher interface {
		Publish(topic model.Topic, event any)
	}
	ProducerMetrics interface {
		ObserveSeal(consensus string, err error, started time.Time)
		ObserveCommit(consensus string, err error, txCount int, started time.Time)
	}
)
