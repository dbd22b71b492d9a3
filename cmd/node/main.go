package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/goodnatureofminers/pocketledger/internal/bus"
	"github.com/goodnatureofminers/pocketledger/internal/ledger/consensus"
	"github.com/goodnatureofminers/pocketledger/internal/ledger/model"
	"github.com/goodnatureofminers/pocketledger/internal/ledger/repository/memory"
	"github.com/goodnatureofminers/pocketledger/internal/ledger/service"
	"github.com/goodnatureofminers/pocketledger/internal/metrics"
	"github.com/goodnatureofminers/pocketledger/internal/transport"
	"github.com/goodnatureofminers/pocketledger/internal/utils"
	"github.com/goodnatureofminers/pocketledger/internal/wallet"
)

type config struct {
	Addr            string        `long:"addr" env:"POCKETLEDGER_ADDR" description:"address for the REST API" default:":8000"`
	MetricsAddr     string        `long:"metrics-addr" env:"POCKETLEDGER_METRICS_ADDR" description:"address for metrics server" default:":2112"`
	Network         model.Network `long:"network" env:"POCKETLEDGER_NETWORK" description:"network name" default:"devnet"`
	Difficulty      uint32        `long:"difficulty" env:"POCKETLEDGER_DIFFICULTY" description:"leading zero digits required by proof of work" default:"2"`
	ValidatorWallet string        `long:"validator-wallet" env:"POCKETLEDGER_VALIDATOR_WALLET" description:"wallet credited as validator on forged blocks" default:"node"`
	GenesisWallet   string        `long:"genesis-wallet" env:"POCKETLEDGER_GENESIS_WALLET" description:"wallet receiving the genesis allocation" default:"faucet"`
	GenesisCoins    float64       `long:"genesis-coins" env:"POCKETLEDGER_GENESIS_COINS" description:"coins allocated at genesis, 0 disables seeding" default:"100"`
	BatchSize       int           `long:"batch-size" env:"POCKETLEDGER_BATCH_SIZE" description:"transactions per forged block" default:"16"`
	FlushInterval   time.Duration `long:"flush-interval" env:"POCKETLEDGER_FLUSH_INTERVAL" description:"max wait before forging a partial batch" default:"2s"`
	ForgeRate       int           `long:"forge-rate" env:"POCKETLEDGER_FORGE_RATE" description:"max blocks forged per second" default:"4"`
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

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("ledger node failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	logger = logger.With(zap.String("network", string(cfg.Network)))

	startMetricsServer(ctx, cfg.MetricsAddr, logger)

	repo, err := memory.NewRepository(metrics.NewLedgerRepository(cfg.Network))
	if err != nil {
		return fmt.Errorf("init repository: %w", err)
	}

	events := bus.New(logger.Named("bus"))

	wallets, err := wallet.NewService(repo, logger.Named("wallets"))
	if err != nil {
		return fmt.Errorf("init wallet service: %w", err)
	}
	validator := wallets.Create(cfg.ValidatorWallet)

	payments, err := service.NewTransactionService(repo, events, logger.Named("payments"))
	if err != nil {
		return fmt.Errorf("init transaction service: %w", err)
	}

	producer, err := service.NewMiningService(
		repo,
		consensus.NewProofOfWork(cfg.Difficulty),
		consensus.NewProofOfStake(string(validator.Address)),
		events,
		metrics.NewBlockProducer(cfg.Network),
		logger.Named("producer"),
	)
	if err != nil {
		return fmt.Errorf("init mining service: %w", err)
	}

	if err := seedGenesis(ctx, cfg, wallets, producer, repo, string(validator.Address), logger); err != nil {
		return fmt.Errorf("seed genesis: %w", err)
	}

	pool, err := service.NewAssembler(
		logger.Named("assembler"),
		events,
		func(ctx context.Context, txs []*model.Transaction) (*model.Block, error) {
			return producer.MineBlock(ctx, txs, string(validator.Address))
		},
		cfg.BatchSize,
		cfg.FlushInterval,
		cfg.ForgeRate,
	)
	if err != nil {
		return fmt.Errorf("init assembler: %w", err)
	}
	pool.Start(ctx)
	defer pool.Stop()

	handler, err := transport.NewLedgerHandler(repo, wallets, payments, producer, pool, logger.Named("http"))
	if err != nil {
		return fmt.Errorf("init http handler: %w", err)
	}

	mux := http.NewServeMux()
	handler.Register(mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           cors.Default().Handler(mux),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
	}
	go func() {
		<-ctx.Done()
		logger.Info("shutting down the http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown http server", zap.Error(err))
		}
	}()

	logger.Info("starting http server",
		zap.String("addr", cfg.Addr),
		zap.String("network", string(cfg.Network)),
		zap.Uint32("difficulty", cfg.Difficulty),
	)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// seedGenesis funds the faucet wallet by mining an allocation transaction
// into the first block. An allocation spends nothing, so it passes ledger
// checks with no prior state.
func seedGenesis(
	ctx context.Context,
	cfg config,
	wallets *wallet.Service,
	producer *service.MiningService,
	repo *memory.Repository,
	validator string,
	logger *zap.Logger,
) error {

	height, err := repo.Height(ctx)
	if err != nil {
		return err
	}
	if height > 0 || cfg.GenesisCoins <= 0 {
		return nil
	}

	units, err := utils.ToBaseUnits(cfg.GenesisCoins)
	if err != nil {
		return fmt.Errorf("genesis allocation: %w", err)
	}

	faucet := wallets.Create(cfg.GenesisWallet)
	alloc := &model.Transaction{Outputs: []model.TxOut{{Amount: units, Address: faucet.Address}}}
	alloc.TxID = alloc.Hash()

	block, err := producer.MineBlock(ctx, []*model.Transaction{alloc}, validator)
	if err != nil {
		return err
	}

	logger.Info("genesis block mined",
		zap.String("block_hash", block.Hash()),
		zap.String("faucet", string(faucet.Address)),
		zap.Uint64("allocation", units),
	)
	return nil
}

func startMetricsServer(ctx context.Context, addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("starting metrics server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown metrics server", zap.Error(err))
		}
	}()
}
