package transport

import (
	"context"

	"github.com/goodnatureofminers/pocketledger/internal/ledger/model"
	"github.com/goodnatureofminers/pocketledger/internal/wallet"
)

type (
	LedgerReader interface {
		GetBlock(ctx context.Context, height uint64) (*model.Block, bool, error)
		GetLatestBlock(ctx context.Context) (*model.Block, bool, error)
		Height(ctx context.Context) (uint64, error)
		AllUTXOs(ctx context.Context) ([]model.UTXO, error)
	}
	WalletService interface {
		Create(name string) wallet.Wallet
		Get(name string) (wallet.Wallet, bool)
		Balance(ctx context.Context, addr model.Address) (uint64, error)
		SecretLookup(ctx context.Context) model.SecretLookup
	}
	PaymentService interface {
		CreateTransaction(ctx context.Context, from model.Address, outputs []model.TxOut) (*model.Transaction, error)
		SignTransaction(secret string, tx *model.Transaction)
		CheckAgainstLedger(ctx context.Context, tx *model.Transaction, lookup model.SecretLookup) error
	}
	BlockProducer interface {
		MineBlock(ctx context.Context, txs []*model.Transaction, validator string) (*model.Block, error)
	}
	TxSubmitter interface {
		Submit(ctx context.Context, tx *model.Transaction) error
	}
)
