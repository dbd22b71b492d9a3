package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"

	"github.com/goodnatureofminers/pocketledger/internal/bus"
	"github.com/goodnatureofminers/pocketledger/internal/clock"
	"github.com/goodnatureofminers/pocketledger/internal/ledger/consensus"
	"github.com/goodnatureofminers/pocketledger/internal/ledger/model"
	"github.com/goodnatureofminers/pocketledger/internal/ledger/repository/memory"
	"github.com/goodnatureofminers/pocketledger/internal/ledger/service"
	"github.com/goodnatureofminers/pocketledger/internal/metrics"
	"github.com/goodnatureofminers/pocketledger/internal/utils"
	"github.com/goodnatureofminers/pocketledger/internal/wallet"
	"github.com/goodnatureofminers/pocketledger/pkg/workerpool"
)

type config struct {
	Network    model.Network `long:"network" env:"SIMULATOR_NETWORK" description:"network name" default:"simnet"`
	Difficulty uint32        `long:"difficulty" env:"SIMULATOR_DIFFICULTY" description:"leading zero digits required by proof of work" default:"2"`
	Wallets    int           `long:"wallets" env:"SIMULATOR_WALLETS" description:"number of paying wallets" default:"4"`
	Waves      int           `long:"waves" env:"SIMULATOR_WAVES" description:"mined payment waves to run" default:"3"`
	Workers    int           `long:"workers" env:"SIMULATOR_WORKERS" description:"concurrent payment builders" default:"4"`
	SeedCoins  float64       `long:"seed-coins" env:"SIMULATOR_SEED_COINS" description:"coins allocated to each wallet at genesis" default:"10"`
	WavePause  time.Duration `long:"wave-pause" env:"SIMULATOR_WAVE_PAUSE" description:"pause between waves" default:"250ms"`
}

func main() {
	cfg := config{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	if _, err := flags.ParseArgs(&cfg, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		logger.Fatal("failed to parse flags", zap.Error(err))
	}

	if cfg.Wallets < 2 {
		logger.Fatal("at least two wallets are required")
	}
	if cfg.Waves < 1 {
		logger.Fatal("at least one wave is required")
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("simulation failed", zap.Error(err))
	}
}

// simulation wires the ledger stack for one scripted run: seed wallets,
// rotate value between them in mined waves, stake one block, then walk the
// ledger into the failure paths a live network would hit.
type simulation struct {
	cfg      config
	repo     *memory.Repository
	wallets  *wallet.Service
	payments *service.TransactionService
	producer *service.MiningService
	logger   *zap.Logger

	miner  wallet.Wallet
	payers []wallet.Wallet

	txsCreated  atomic.Int64
	blocksMined atomic.Int64
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	logger = logger.With(zap.String("network", string(cfg.Network)))

	repo, err := memory.NewRepository(metrics.NewLedgerRepository(cfg.Network))
	if err != nil {
		return fmt.Errorf("init repository: %w", err)
	}

	events := bus.New(logger.Named("bus"))

	wallets, err := wallet.NewService(repo, logger.Named("wallets"))
	if err != nil {
		return fmt.Errorf("init wallet service: %w", err)
	}

	payments, err := service.NewTransactionService(repo, events, logger.Named("payments"))
	if err != nil {
		return fmt.Errorf("init transaction service: %w", err)
	}

	sim := &simulation{
		cfg:      cfg,
		repo:     repo,
		wallets:  wallets,
		payments: payments,
		logger:   logger,
		miner:    wallets.Create("miner"),
	}
	for i := 0; i < cfg.Wallets; i++ {
		sim.payers = append(sim.payers, wallets.Create(fmt.Sprintf("wallet-%02d", i)))
	}

	sim.producer, err = service.NewMiningService(
		repo,
		consensus.NewProofOfWork(cfg.Difficulty),
		consensus.NewProofOfStake(string(sim.miner.Address)),
		events,
		metrics.NewBlockProducer(cfg.Network),
		logger.Named("producer"),
	)
	if err != nil {
		return fmt.Errorf("init mining service: %w", err)
	}

	events.Subscribe(model.TopicTxCreated, func(any) { sim.txsCreated.Add(1) })
	events.Subscribe(model.TopicBlockMined, func(any) { sim.blocksMined.Add(1) })

	return sim.run(ctx)
}

func (s *simulation) run(ctx context.Context) error {
	if err := s.seed(ctx); err != nil {
		return fmt.Errorf("seed genesis: %w", err)
	}

	supplyBefore, err := s.totalSupply(ctx)
	if err != nil {
		return err
	}

	var firstWave []*model.Transaction
	for wave := 1; wave <= s.cfg.Waves; wave++ {
		txs, err := s.runWave(ctx, wave, false)
		if err != nil {
			return fmt.Errorf("wave %d: %w", wave, err)
		}
		if wave == 1 {
			firstWave = txs
		}
		if err := clock.Sleep(ctx, s.cfg.WavePause); err != nil {
			return err
		}
	}

	// One extra wave settles through the stake adapter instead of the
	// nonce search.
	if _, err := s.runWave(ctx, s.cfg.Waves+1, true); err != nil {
		return fmt.Errorf("staked wave: %w", err)
	}

	if err := s.demoValueDestruction(ctx, supplyBefore); err != nil {
		return err
	}
	if err := s.demoInsufficientFunds(ctx); err != nil {
		return err
	}
	if err := s.demoDoubleSpend(ctx, firstWave); err != nil {
		return err
	}

	return s.summarize(ctx)
}

// seed mines the genesis block carrying one allocation transaction with an
// output per payer. Allocations spend nothing, so the empty ledger accepts
// them.
func (s *simulation) seed(ctx context.Context) error {
	units, err := utils.ToBaseUnits(s.cfg.SeedCoins)
	if err != nil {
		return err
	}

	alloc := &model.Transaction{}
	for _, payer := range s.payers {
		alloc.Outputs = append(alloc.Outputs, model.TxOut{Amount: units, Address: payer.Address})
	}
	alloc.TxID = alloc.Hash()

	block, err := s.producer.MineBlock(ctx, []*model.Transaction{alloc}, string(s.miner.Address))
	if err != nil {
		return err
	}

	s.logger.Info("genesis block mined",
		zap.String("block_hash", block.Hash()),
		zap.Int("funded_wallets", len(s.payers)),
		zap.Uint64("allocation_each", units),
	)
	return nil
}

// runWave has every payer send its full balance to the next payer, builds
// the payments concurrently, then settles them all in a single block.
func (s *simulation) runWave(ctx context.Context, wave int, staked bool) ([]*model.Transaction, error) {
	lookup := s.wallets.SecretLookup(ctx)
	built := make([]*model.Transaction, len(s.payers))

	indices := make([]int, len(s.payers))
	for i := range indices {
		indices[i] = i
	}

	err := workerpool.Process(ctx, s.cfg.Workers, indices, func(ctx context.Context, i int) error {
		sender := s.payers[i]
		recipient := s.payers[(i+1)%len(s.payers)]

		amount, err := s.wallets.Balance(ctx, sender.Address)
		if err != nil {
			return err
		}
		if amount == 0 {
			return nil
		}

		tx, err := s.payments.CreateTransaction(ctx, sender.Address, []model.TxOut{
			{Amount: amount, Address: recipient.Address},
		})
		if err != nil {
			return err
		}
		s.payments.SignTransaction(sender.PrivateKey, tx)
		if err := s.payments.CheckAgainstLedger(ctx, tx, lookup); err != nil {
			return err
		}

		built[i] = tx
		return nil
	}, nil)
	if err != nil {
		return nil, err
	}

	batch := make([]*model.Transaction, 0, len(built))
	for _, tx := range built {
		if tx != nil {
			batch = append(batch, tx)
		}
	}

	var block *model.Block
	if staked {
		block, err = s.producer.StakeBlock(ctx, batch, string(s.miner.Address))
	} else {
		block, err = s.producer.MineBlock(ctx, batch, string(s.miner.Address))
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("wave settled",
		zap.Int("wave", wave),
		zap.Bool("staked", staked),
		zap.String("block_hash", block.Hash()),
		zap.Int("tx_count", len(batch)),
	)
	return batch, nil
}

// demoValueDestruction pays half a balance with no change output; the
// unclaimed half of the consumed coin is destroyed, shrinking supply.
func (s *simulation) demoValueDestruction(ctx context.Context, supplyBefore uint64) error {
	sender := s.payers[0]
	recipient := s.payers[1]

	balance, err := s.wallets.Balance(ctx, sender.Address)
	if err != nil {
		return err
	}
	if balance < 2 {
		s.logger.Warn("skipping destruction demo, sender balance too small",
			zap.Uint64("balance", balance))
		return nil
	}

	tx, err := s.payments.CreateTransaction(ctx, sender.Address, []model.TxOut{
		{Amount: balance / 2, Address: recipient.Address},
	})
	if err != nil {
		return err
	}
	s.payments.SignTransaction(sender.PrivateKey, tx)
	if err := s.payments.CheckAgainstLedger(ctx, tx, s.wallets.SecretLookup(ctx)); err != nil {
		return err
	}
	if _, err := s.producer.MineBlock(ctx, []*model.Transaction{tx}, string(s.miner.Address)); err != nil {
		return err
	}

	supplyAfter, err := s.totalSupply(ctx)
	if err != nil {
		return err
	}
	s.logger.Info("partial spend settled, excess destroyed",
		zap.Uint64("supply_before", supplyBefore),
		zap.Uint64("supply_after", supplyAfter),
		zap.Float64("destroyed_coins", utils.FromBaseUnits(supplyBefore-supplyAfter)),
	)
	return nil
}

// demoInsufficientFunds proves an unfunded wallet cannot build a payment.
func (s *simulation) demoInsufficientFunds(ctx context.Context) error {
	ghost := s.wallets.Create("ghost")

	_, err := s.payments.CreateTransaction(ctx, ghost.Address, []model.TxOut{
		{Amount: 1, Address: s.payers[0].Address},
	})

	var insufficient *model.InsufficientFundsError
	if !errors.As(err, &insufficient) {
		return fmt.Errorf("expected insufficient funds rejection, got %v", err)
	}
	s.logger.Info("unfunded payment rejected", zap.String("reason", insufficient.Error()))
	return nil
}

// demoDoubleSpend replays an already settled transaction against the
// ledger and expects the spent-input rejection.
func (s *simulation) demoDoubleSpend(ctx context.Context, settled []*model.Transaction) error {
	if len(settled) == 0 {
		s.logger.Warn("skipping double spend demo, no settled transactions")
		return nil
	}

	err := s.payments.CheckAgainstLedger(ctx, settled[0], s.wallets.SecretLookup(ctx))

	var doubleSpend *model.DoubleSpendError
	if !errors.As(err, &doubleSpend) {
		return fmt.Errorf("expected double spend rejection, got %v", err)
	}
	s.logger.Info("replayed payment rejected", zap.String("reason", doubleSpend.Error()))
	return nil
}

func (s *simulation) totalSupply(ctx context.Context) (uint64, error) {
	coins, err := s.repo.AllUTXOs(ctx)
	if err != nil {
		return 0, err
	}
	var total uint64
	for _, coin := range coins {
		total += coin.Amount
	}
	return total, nil
}

func (s *simulation) summarize(ctx context.Context) error {
	height, err := s.repo.Height(ctx)
	if err != nil {
		return err
	}

	for h := uint64(0); h < height; h++ {
		block, ok, err := s.repo.GetBlock(ctx, h)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("missing block at height %d", h)
		}
		s.logger.Info("chain block",
			zap.Uint64("height", h),
			zap.String("hash", block.Hash()),
			zap.String("prev_hash", block.Header.PrevHash),
			zap.Uint64("nonce", block.Header.Nonce),
			zap.Uint32("difficulty", block.Header.Difficulty),
			zap.Int("tx_count", len(block.Transactions)),
		)
	}

	for _, w := range append([]wallet.Wallet{s.miner}, s.payers...) {
		units, err := s.wallets.Balance(ctx, w.Address)
		if err != nil {
			return err
		}
		s.logger.Info("wallet balance",
			zap.String("wallet", w.Name),
			zap.String("address", string(w.Address)),
			zap.Uint64("balance", units),
			zap.Float64("coins", utils.FromBaseUnits(units)),
		)
	}

	s.logger.Info("simulation finished",
		zap.Uint64("chain_height", height),
		zap.Int64("txs_created", s.txsCreated.Load()),
		zap.Int64("blocks_mined", s.blocksMined.Load()),
	)
	return nil
}
