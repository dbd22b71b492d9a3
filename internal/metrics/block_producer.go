package metrics

import (
	"time"

	"github.com/goodnatureofminers/pocketledger/internal/ledger/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	producerSealTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pocketledger",
		Subsystem: "block_producer",
		Name:      "seal_total",
		Help:      "Count of header sealing attempts.",
	}, []string{"consensus", "network", "status"})

	producerSealDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pocketledger",
		Subsystem: "block_producer",
		Name:      "seal_duration_seconds",
		Help:      "Duration of the sealing search.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"consensus", "network", "status"})

	producerCommitTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pocketledger",
		Subsystem: "block_producer",
		Name:      "commit_total",
		Help:      "Count of blocks committed to the ledger.",
	}, []string{"consensus", "network", "status"})

	producerCommitDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pocketledger",
		Subsystem: "block_producer",
		Name:      "commit_duration_seconds",
		Help:      "Duration of the full produce-and-commit path.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"consensus", "network", "status"})

	producerBlockTransactions = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pocketledger",
		Subsystem: "block_producer",
		Name:      "block_transactions",
		Help:      "Number of transactions per committed block.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	}, []string{"consensus", "network"})
)

// BlockProducer tracks metrics for the mining and staking write path.
type BlockProducer struct {
	network model.Network
}

// NewBlockProducer constructs a BlockProducer metrics collector.
func NewBlockProducer(network model.Network) *BlockProducer {
	if network == "" {
		network = "unknown"
	}
	return &BlockProducer{network: network}
}

// ObserveSeal records one sealing attempt outcome and duration.
func (m BlockProducer) ObserveSeal(consensus string, err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	producerSealTotal.WithLabelValues(consensus, string(m.network), status).Inc()
	producerSealDuration.WithLabelValues(consensus, string(m.network), status).
		Observe(time.Since(started).Seconds())
}

// ObserveCommit records one block commit outcome with its body size.
func (m BlockProducer) ObserveCommit(consensus string, err error, txCount int, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	producerCommitTotal.WithLabelValues(consensus, string(m.network), status).Inc()
	producerCommitDuration.WithLabelValues(consensus, string(m.network), status).
		Observe(time.Since(started).Seconds())
	if err == nil {
		producerBlockTransactions.WithLabelValues(consensus, string(m.network)).
			Observe(float64(txCount))
	}
}
