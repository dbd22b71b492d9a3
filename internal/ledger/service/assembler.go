package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/goodnatureofminers/pocketledger/internal/ledger/model"
	"go.uber.org/ratelimit"
	"go.uber.org/zap"
)

// ForgeFunc produces and commits one block over a batch of transactions.
type ForgeFunc func(ctx context.Context, txs []*model.Transaction) (*model.Block, error)

// Assembler buffers submitted transactions and forges them into blocks,
// flushing either when the buffer is full or on an interval. Forging is
// rate limited so a stream of tiny batches cannot turn into a stream of
// near-empty blocks faster than the configured pace.
type Assembler struct {
	forge    ForgeFunc
	bus      Publisher
	txCh     chan *model.Transaction
	size     int
	interval time.Duration
	rl       ratelimit.Limiter
	logger   *zap.Logger

	wg   sync.WaitGroup
	stop chan struct{}
}

func NewAssembler(
	logger *zap.Logger,
	bus Publisher,
	forge ForgeFunc,
	size int,
	interval time.Duration,
	rps int,
) (*Assembler, error) {

	if logger == nil {
		return nil, errors.New("logger is required")
	}
	if bus == nil {
		return nil, errors.New("event publisher is required")
	}
	if forge == nil {
		return nil, errors.New("forge func is required")
	}
	if size < 1 {
		return nil, errors.New("flush size must be at least 1")
	}
	if interval <= 0 {
		return nil, errors.New("flush interval must be positive")
	}
	if rps < 1 {
		return nil, errors.New("rate limit must be at least 1")
	}

	return &Assembler{
		forge:    forge,
		bus:      bus,
		txCh:     make(chan *model.Transaction, size*2),
		size:     size,
		interval: interval,
		rl:       ratelimit.New(rps),
		logger:   logger,
		stop:     make(chan struct{}),
	}, nil
}

// Start begins the background forging loop.
func (a *Assembler) Start(ctx context.Context) {
	a.wg.Add(1)
	go a.run(ctx)
}

// Stop flushes whatever is buffered and stops the loop.
func (a *Assembler) Stop() {
	close(a.stop)
	a.wg.Wait()
}

// Submit queues tx for inclusion in a future block, respecting context
// cancellation.
func (a *Assembler) Submit(ctx context.Context, tx *model.Transaction) error {
	select {
	case <-a.stop:
		return context.Canceled
	default:
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case a.txCh <- tx:
		a.bus.Publish(model.TopicTxSubmitted, model.TxSubmitted{TxID: tx.TxID})
		return nil
	}
}

func (a *Assembler) run(ctx context.Context) {
	defer a.wg.Done()

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	buf := make([]*model.Transaction, 0, a.size)

	flush := func() {
		if len(buf) == 0 {
			return
		}

		// The flushed slice lives on inside the committed block, so the
		// buffer is handed off rather than reused.
		batch := buf
		buf = make([]*model.Transaction, 0, a.size)

		a.rl.Take()
		block, err := a.forge(ctx, batch)
		if err != nil {
			a.logger.Error("batch not forged", zap.Error(err), zap.Int("tx_count", len(batch)))
			return
		}
		a.logger.Debug("batch forged",
			zap.String("block_hash", block.Hash()),
			zap.Int("tx_count", len(batch)),
		)
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return

		case <-a.stop:
			flush()
			return

		case tx := <-a.txCh:
			buf = append(buf, tx)
			if len(buf) >= a.size {
				flush()
			}

		case <-ticker.C:
			flush()
		}
	}
}
