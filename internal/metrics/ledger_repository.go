package metrics

import (
	"time"

	"github.com/goodnatureofminers/pocketledger/internal/ledger/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ledgerRepositoryOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pocketledger",
		Subsystem: "ledger_repository",
		Name:      "operations_total",
		Help:      "Count of ledger store operations.",
	}, []string{"operation", "network", "status"})
	ledgerRepositoryOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pocketledger",
		Subsystem: "ledger_repository",
		Name:      "operation_duration_seconds",
		Help:      "Duration of ledger store operations.",
		Buckets:   prometheus.ExponentialBuckets(0.000001, 4, 12),
	}, []string{"operation", "network", "status"})
)

// LedgerRepository tracks metrics for ledger store operations.
type LedgerRepository struct {
	network model.Network
}

// NewLedgerRepository creates a LedgerRepository metrics collector.
func NewLedgerRepository(network model.Network) *LedgerRepository {
	if network == "" {
		network = "unknown"
	}
	return &LedgerRepository{network: network}
}

// Observe records duration and status of a store operation.
func (m LedgerRepository) Observe(operation string, err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}

	ledgerRepositoryOperationsTotal.WithLabelValues(operation, string(m.network), status).Inc()
	ledgerRepositoryOperationDuration.WithLabelValues(operation, string(m.network), status).Observe(time.Since(started).Seconds())
}
