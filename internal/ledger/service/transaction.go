package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/goodnatureofminers/pocketledger/internal/ledger/model"
	"go.uber.org/zap"
)

// TransactionService builds, signs and verifies transactions against the
// ledger store.
type TransactionService struct {
	repo   LedgerRepository
	bus    Publisher
	logger *zap.Logger
}

func NewTransactionService(repo LedgerRepository, bus Publisher, logger *zap.Logger) (*TransactionService, error) {
	if repo == nil {
		return nil, errors.New("ledger repository is required")
	}
	if bus == nil {
		return nil, errors.New("event publisher is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	return &TransactionService{repo: repo, bus: bus, logger: logger}, nil
}

// CreateTransaction assembles an unsigned transaction spending from's
// coins into the requested outputs. Coins are gathered first-fit in store
// order until they cover the requested total; beyond covering it, input
// value is not matched to output value and any excess is destroyed, not
// returned as change.
func (s *TransactionService) CreateTransaction(ctx context.Context, from model.Address, outputs []model.TxOut) (*model.Transaction, error) {
	var required uint64
	for _, out := range outputs {
		required += out.Amount
	}

	coins, err := s.repo.AllUTXOs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list unspent outputs: %w", err)
	}

	owned := coins[:0:0]
	for _, coin := range coins {
		if coin.SpendableBy(from) {
			owned = append(owned, coin)
		}
	}
	if len(owned) == 0 {
		return nil, &model.InsufficientFundsError{Address: from, Required: required, Available: 0}
	}

	inputs := make([]model.TxIn, 0, len(owned))
	var gathered uint64
	for _, coin := range owned {
		inputs = append(inputs, model.TxIn{PrevTxID: coin.TxID, OutputIndex: coin.Index})
		gathered += coin.Amount
		if gathered >= required {
			break
		}
	}
	if gathered < required {
		return nil, &model.InsufficientFundsError{Address: from, Required: required, Available: gathered}
	}

	tx := &model.Transaction{Inputs: inputs, Outputs: outputs}
	tx.TxID = tx.Hash()

	s.logger.Debug("transaction created",
		zap.String("tx_id", tx.TxID),
		zap.Int("inputs", len(tx.Inputs)),
		zap.Int("outputs", len(tx.Outputs)),
		zap.Uint64("required", required),
		zap.Uint64("gathered", gathered),
	)
	s.bus.Publish(model.TopicTxCreated, model.TxCreated{TxID: tx.TxID, Tx: tx})

	return tx, nil
}

// SignTransaction signs every input of tx with the one secret, overwriting
// any prior signatures.
func (s *TransactionService) SignTransaction(secret string, tx *model.Transaction) {
	txHash := tx.Hash()
	for idx := range tx.Inputs {
		tx.AddSignature(idx, model.Signature(secret, txHash))
	}
}

// VerifyTransaction checks every input's signature against the secret the
// lookup yields for it. A missing signature, a missing secret or a
// mismatch makes the transaction invalid; a lookup failure is surfaced as
// an invalid-transaction error carrying tx.
func (s *TransactionService) VerifyTransaction(tx *model.Transaction, lookup model.SecretLookup) (bool, error) {
	txHash := tx.Hash()
	for idx, in := range tx.Inputs {
		sig, ok := tx.Signatures[idx]
		if !ok {
			return false, nil
		}

		secret, err := lookup(in)
		if err != nil {
			return false, &model.InvalidTransactionError{Tx: tx, Err: err}
		}
		if secret == "" {
			return false, nil
		}
		if !bytes.Equal(sig, model.Signature(secret, txHash)) {
			return false, nil
		}
	}
	return true, nil
}

// CheckAgainstLedger decides whether tx can be applied to the current
// ledger state: every input must resolve to a live unspent output, no two
// inputs may claim the same outpoint, and every signature must verify.
func (s *TransactionService) CheckAgainstLedger(ctx context.Context, tx *model.Transaction, lookup model.SecretLookup) error {
	txHash := tx.Hash()
	claimed := make(map[model.Outpoint]struct{}, len(tx.Inputs))

	for idx, in := range tx.Inputs {
		outpoint := in.Outpoint()

		coin, ok, err := s.repo.GetUTXO(ctx, outpoint)
		if err != nil {
			return &model.InvalidTransactionError{Tx: tx, Err: fmt.Errorf("resolve input %d: %w", idx, err)}
		}
		if !ok {
			return &model.DoubleSpendError{UTXO: model.UTXO{TxID: outpoint.TxID, Index: outpoint.Index}}
		}
		if _, dup := claimed[outpoint]; dup {
			return &model.DoubleSpendError{UTXO: coin}
		}
		claimed[outpoint] = struct{}{}

		sig, present := tx.Signatures[idx]
		if !present {
			return &model.InvalidSignatureError{TxID: tx.TxID, InputIndex: idx}
		}
		secret, err := lookup(in)
		if err != nil {
			return &model.InvalidTransactionError{Tx: tx, Err: fmt.Errorf("lookup secret for input %d: %w", idx, err)}
		}
		if secret == "" || !bytes.Equal(sig, model.Signature(secret, txHash)) {
			return &model.InvalidSignatureError{TxID: tx.TxID, InputIndex: idx}
		}
	}
	return nil
}
