// Package wallet manages named wallets with deterministic stub keypairs.
// The key scheme is a placeholder shared-secret construction, not real
// public-key cryptography; it exists so ownership and signing flows can be
// exercised end to end.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goodnatureofminers/pocketledger/internal/ledger/model"
	"go.uber.org/zap"
)

type (
	LedgerReader interface {
		GetUTXO(ctx context.Context, outpoint model.Outpoint) (model.UTXO, bool, error)
		AllUTXOs(ctx context.Context) ([]model.UTXO, error)
	}
)

// Wallet is a named identity on the ledger. PrivateKey doubles as the
// signing secret of the shared-secret scheme.
type Wallet struct {
	Name       string
	PrivateKey string
	PublicKey  string
	Address    model.Address
}

type Service struct {
	repo   LedgerReader
	logger *zap.Logger

	mu      sync.RWMutex
	wallets map[string]Wallet
}

func NewService(repo LedgerReader, logger *zap.Logger) (*Service, error) {
	if repo == nil {
		return nil, errors.New("ledger reader is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	return &Service{
		repo:    repo,
		logger:  logger,
		wallets: make(map[string]Wallet),
	}, nil
}

// Create derives the wallet for name and stores it, replacing any wallet
// previously created under the same name. Derivation is deterministic:
// the private key is the hash of name+"_priv", the public key the hash of
// the private key+"_pub", and the address the hash of the public key.
func (s *Service) Create(name string) Wallet {
	priv := model.HashBytes([]byte(name + "_priv"))
	pub := model.HashBytes([]byte(priv + "_pub"))

	w := Wallet{
		Name:       name,
		PrivateKey: priv,
		PublicKey:  pub,
		Address:    model.AddressFromPublicKey(pub),
	}

	s.mu.Lock()
	s.wallets[name] = w
	s.mu.Unlock()

	s.logger.Debug("wallet created",
		zap.String("name", name),
		zap.String("address", w.Address.String()),
	)
	return w
}

// Get returns the wallet stored under name.
func (s *Service) Get(name string) (Wallet, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.wallets[name]
	return w, ok
}

// Balance sums the unspent value owned by addr.
func (s *Service) Balance(ctx context.Context, addr model.Address) (uint64, error) {
	coins, err := s.repo.AllUTXOs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list unspent outputs: %w", err)
	}

	var total uint64
	for _, coin := range coins {
		if coin.SpendableBy(addr) {
			total += coin.Amount
		}
	}
	return total, nil
}

// SecretLookup adapts the wallet store into the secret-resolution
// capability used by transaction verification. The returned lookup
// resolves an input against the live UTXO set, so it stops yielding a
// secret as soon as the referenced output is spent.
func (s *Service) SecretLookup(ctx context.Context) model.SecretLookup {
	return func(in model.TxIn) (string, error) {
		coin, ok, err := s.repo.GetUTXO(ctx, in.Outpoint())
		if err != nil {
			return "", fmt.Errorf("resolve input %s: %w", in.Outpoint(), err)
		}
		if !ok {
			return "", nil
		}

		s.mu.RLock()
		defer s.mu.RUnlock()
		for _, w := range s.wallets {
			if w.Address == coin.Owner {
				return w.PrivateKey, nil
			}
		}
		return "", nil
	}
}
