package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/pocketledger/internal/ledger/model"
	"go.uber.org/zap"
)

const (
	consensusPow   = "pow"
	consensusStake = "stake"
)

// MiningService owns the ledger's only write path: it assembles a block
// over the pending transactions, seals it with the chosen adapter and
// commits the block together with its UTXO effects in one step.
type MiningService struct {
	repo    LedgerRepository
	pow     Sealer
	stake   Sealer
	bus     Publisher
	metrics ProducerMetrics
	logger  *zap.Logger
}

func NewMiningService(
	repo LedgerRepository,
	pow Sealer,
	stake Sealer,
	bus Publisher,
	metrics ProducerMetrics,
	logger *zap.Logger,
) (*MiningService, error) {

	if repo == nil {
		return nil, errors.New("ledger repository is required")
	}
	if pow == nil {
		return nil, errors.New("proof-of-work sealer is required")
	}
	if stake == nil {
		return nil, errors.New("stake sealer is required")
	}
	if bus == nil {
		return nil, errors.New("event publisher is required")
	}
	if metrics == nil {
		return nil, errors.New("metrics recorder is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	return &MiningService{
		repo:    repo,
		pow:     pow,
		stake:   stake,
		bus:     bus,
		metrics: metrics,
		logger:  logger,
	}, nil
}

// MineBlock produces a proof-of-work block over txs attributed to
// validator and commits it.
func (s *MiningService) MineBlock(ctx context.Context, txs []*model.Transaction, validator string) (*model.Block, error) {
	return s.produce(ctx, consensusPow, s.pow, txs, validator)
}

// StakeBlock produces a staked block over txs. The stake adapter seals
// without a search and the block is accepted unconditionally.
func (s *MiningService) StakeBlock(ctx context.Context, txs []*model.Transaction, validator string) (*model.Block, error) {
	return s.produce(ctx, consensusStake, s.stake, txs, validator)
}

func (s *MiningService) produce(
	ctx context.Context,
	kind string,
	sealer Sealer,
	txs []*model.Transaction,
	validator string,
) (block *model.Block, err error) {

	started := time.Now()
	defer func() {
		s.metrics.ObserveCommit(kind, err, len(txs), started)
	}()

	prevHash := model.ZeroHash
	tip, ok, tipErr := s.repo.GetLatestBlock(ctx)
	if tipErr != nil {
		return nil, fmt.Errorf("read chain tip: %w", tipErr)
	}
	if ok {
		prevHash = tip.Hash()
	}

	block = &model.Block{
		Header: model.BlockHeader{
			Version:    model.HeaderVersion,
			PrevHash:   prevHash,
			Timestamp:  time.Now().Unix(),
			Difficulty: sealer.Difficulty(),
			Validator:  validator,
		},
		Transactions: txs,
	}
	block.ComputeMerkleRoot()

	sealStarted := time.Now()
	digest, sealErr := sealer.Seal(ctx, &block.Header)
	s.metrics.ObserveSeal(kind, sealErr, sealStarted)
	if sealErr != nil {
		// The store was never touched; an unsealed block must not exist.
		return nil, fmt.Errorf("seal block on %s: %w", prevHash, sealErr)
	}

	if commitErr := s.repo.ApplyBlock(ctx, block); commitErr != nil {
		return nil, fmt.Errorf("commit block %s: %w", block.Hash(), commitErr)
	}

	s.logger.Info("block committed",
		zap.String("block_hash", block.Hash()),
		zap.String("seal_digest", digest),
		zap.String("consensus", kind),
		zap.Uint64("nonce", block.Header.Nonce),
		zap.Int("tx_count", len(txs)),
		zap.String("validator", validator),
	)
	s.bus.Publish(model.TopicBlockMined, model.BlockMined{BlockHash: block.Hash(), Block: block})

	return block, nil
}
