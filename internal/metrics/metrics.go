package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ingest holds the ingestion pipeline's counters.
type Ingest struct {
	Transactions  prometheus.Counter
	EventsDecoded prometheus.Counter
	EventsFailed  prometheus.Counter
	RowsInserted  prometheus.Counter
	RowsDuplicate prometheus.Counter
}

// NewIngest registers the ingestion counters on the given registerer.
func NewIngest(reg prometheus.Registerer) *Ingest {
	factory := promauto.With(reg)
	return &Ingest{
		Transactions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "rewardledger",
			Subsystem: "ingest",
			Name:      "transactions_total",
			Help:      "Transactions handled across webhook batches.",
		}),
		EventsDecoded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "rewardledger",
			Subsystem: "ingest",
			Name:      "events_decoded_total",
			Help:      "Domain events decoded from transaction logs.",
		}),
		EventsFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "rewardledger",
			Subsystem: "ingest",
			Name:      "events_failed_total",
			Help:      "Events dropped by decode or projection failures.",
		}),
		RowsInserted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "rewardledger",
			Subsystem: "ingest",
			Name:      "rows_inserted_total",
			Help:      "Ledger rows and subscription mutations committed.",
		}),
		RowsDuplicate: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "rewardledger",
			Subsystem: "ingest",
			Name:      "rows_duplicate_total",
			Help:      "Ledger rows skipped by the idempotency key.",
		}),
	}
}
